// Package scheduler matches configured schedule entries against the
// current UTC time on each timer tick and returns the queue entries whose
// commands should fire.
//
// Grounded on original_source/src/poudriered/poudriered.c's
// check_schedules(), which formats the current gmtime() with the entry's
// strftime pattern and compares it against the entry's literal `when`
// string; Go's time.Format uses a reference-time layout instead of
// strftime verbs, so Tick translates the small set of strftime directives
// poudriere configs actually use before formatting.
package scheduler

import (
	"strings"
	"time"

	"github.com/System233/poudriered/internal/config"
	"github.com/System233/poudriered/internal/queue"
)

// strftimeToGo translates the strftime directives this daemon supports
// into a Go reference-time layout. Unsupported directives are left
// untouched, which will simply fail to match any `when` value — a format
// producing the wrong string never fires, the same as one producing zero
// bytes.
var strftimeReplacer = strings.NewReplacer(
	"%Y", "2006",
	"%y", "06",
	"%m", "01",
	"%d", "02",
	"%H", "15",
	"%M", "04",
	"%S", "05",
	"%A", "Monday",
	"%a", "Mon",
	"%B", "January",
	"%b", "Jan",
	"%%", "%",
)

func strftimeToGo(format string) string {
	return strftimeReplacer.Replace(format)
}

// Tick formats now (which must already be in UTC) against every schedule
// entry and returns the queue entries of those that fire. An entry whose
// format produces an empty string is skipped.
//
// De-duplication: a one-second ticker can observe the same matching
// formatted value across several consecutive
// ticks (e.g. "03:00" holds for all 60 ticks within that minute), and
// without dedup every one of those ticks would re-fire the command.
// LastFired records the formatted value of the tick that last fired this
// entry; it is cleared as soon as a tick's formatted value stops matching
// `when`, so the entry is armed again for its next occurrence (the next
// day, for a time-of-day schedule) rather than being suppressed forever.
func Tick(now time.Time, entries []*config.ScheduleEntry) []queue.Entry {
	var fired []queue.Entry
	for _, entry := range entries {
		layout := strftimeToGo(entry.Format)
		formatted := now.Format(layout)
		if formatted == "" {
			continue
		}
		if formatted != entry.When {
			entry.SetLastFired("")
			continue
		}
		if formatted == entry.LastFired() {
			continue
		}
		entry.SetLastFired(formatted)
		fired = append(fired, queue.Entry{Data: entry.Cmd})
	}
	return fired
}

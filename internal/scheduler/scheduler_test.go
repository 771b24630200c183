package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/System233/poudriered/internal/config"
	"github.com/System233/poudriered/internal/wire"
)

func newEntry(format, when string) *config.ScheduleEntry {
	return &config.ScheduleEntry{Format: format, When: when, Cmd: wire.String("bulk")}
}

func TestStrftimeToGo(t *testing.T) {
	testCases := []struct {
		desc   string
		format string
		want   string
	}{
		{desc: "hour minute", format: "%H:%M", want: "15:04"},
		{desc: "full date", format: "%Y-%m-%d", want: "2006-01-02"},
		{desc: "weekday name", format: "%A", want: "Monday"},
		{desc: "literal percent", format: "100%%", want: "100%"},
	}
	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			assert.Equal(t, tc.want, strftimeToGo(tc.format))
		})
	}
}

func TestTickFiresOnExactMatch(t *testing.T) {
	now := time.Date(2026, 7, 30, 3, 0, 0, 0, time.UTC)
	entries := []*config.ScheduleEntry{newEntry("%H:%M", "03:00")}

	fired := Tick(now, entries)
	require.Len(t, fired, 1)
	cmd, _ := fired[0].Data.AsString()
	assert.Equal(t, "bulk", cmd)
}

func TestTickSkipsNonMatchingEntry(t *testing.T) {
	now := time.Date(2026, 7, 30, 3, 1, 0, 0, time.UTC)
	entries := []*config.ScheduleEntry{newEntry("%H:%M", "03:00")}

	fired := Tick(now, entries)
	assert.Empty(t, fired)
}

// TestTickDoesNotRefireSameMinute exercises the de-duplication: a second
// tick whose formatted value hasn't changed must not fire again.
func TestTickDoesNotRefireSameMinute(t *testing.T) {
	now := time.Date(2026, 7, 30, 3, 0, 0, 0, time.UTC)
	entries := []*config.ScheduleEntry{newEntry("%H:%M", "03:00")}

	first := Tick(now, entries)
	require.Len(t, first, 1)

	second := Tick(now.Add(10*time.Second), entries)
	assert.Empty(t, second)
}

// TestTickDedupesEveryTickWithinTheMatchingMinute covers the reason dedup
// exists at all: a one-second ticker fires 60 times while the formatted
// value still equals "03:00"; only the first of those may enqueue.
func TestTickDedupesEveryTickWithinTheMatchingMinute(t *testing.T) {
	entries := []*config.ScheduleEntry{newEntry("%H:%M", "03:00")}
	base := time.Date(2026, 7, 30, 3, 0, 0, 0, time.UTC)

	total := 0
	for s := 0; s < 60; s++ {
		total += len(Tick(base.Add(time.Duration(s)*time.Second), entries))
	}
	assert.Equal(t, 1, total)
}

// TestTickRefiresTheNextDayOnceTheMinuteHasMovedOn verifies the entry
// re-arms after the formatted value stops matching, so a daily schedule
// keeps firing on subsequent days instead of being suppressed forever.
func TestTickRefiresTheNextDayOnceTheMinuteHasMovedOn(t *testing.T) {
	entries := []*config.ScheduleEntry{newEntry("%H:%M", "03:00")}
	day1 := time.Date(2026, 7, 30, 3, 0, 0, 0, time.UTC)

	require.Len(t, Tick(day1, entries), 1)
	require.Empty(t, Tick(day1.Add(time.Minute), entries))

	day2 := day1.AddDate(0, 0, 1)
	require.Len(t, Tick(day2, entries), 1, "expected the entry to re-fire the next day")
}

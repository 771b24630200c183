// Package queue implements the Execution Queue: a FIFO of approved
// commands with an at-most-one-running invariant enforced by the caller
// (internal/daemon). Grounded on flextape/service/service.go's
// queue/allocation bookkeeping, simplified to a plain ordered slice since
// there is no bounded capacity or priority to model.
package queue

import "github.com/System233/poudriered/internal/wire"

// Entry is an owned reference to the `data` sub-object of an approved
// command request.
type Entry struct {
	Data wire.Node
}

// Command returns the entry's command field.
func (e Entry) Command() (string, bool) {
	v, ok := e.Data.Get("command")
	if !ok {
		return "", false
	}
	return v.AsString()
}

// Arguments returns the entry's arguments field.
func (e Entry) Arguments() (string, bool) {
	v, ok := e.Data.Get("arguments")
	if !ok {
		return "", false
	}
	return v.AsString()
}

// Log returns the entry's log field.
func (e Entry) Log() (string, bool) {
	v, ok := e.Data.Get("log")
	if !ok {
		return "", false
	}
	return v.AsString()
}

// Queue is a plain FIFO. Callers are expected to hold their own
// synchronization (internal/daemon's single mutex plays that role) — Queue
// itself performs no locking, matching the original's single-threaded
// ucl_array_* calls.
type Queue struct {
	entries []Entry
}

// Append adds entry to the back of the queue.
func (q *Queue) Append(entry Entry) {
	q.entries = append(q.entries, entry)
}

// PopFront removes and returns the front entry, or ok=false if empty.
func (q *Queue) PopFront() (Entry, bool) {
	if len(q.entries) == 0 {
		return Entry{}, false
	}
	front := q.entries[0]
	q.entries = q.entries[1:]
	return front, true
}

// Len reports the number of queued entries.
func (q *Queue) Len() int { return len(q.entries) }

// Snapshot returns a copy of the current queue contents, used by the
// `queue` operation.
func (q *Queue) Snapshot() []Entry {
	out := make([]Entry, len(q.entries))
	copy(out, q.entries)
	return out
}

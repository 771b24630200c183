package queue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/System233/poudriered/internal/wire"
)

func entry(cmd string) Entry {
	return Entry{Data: wire.Null().Set("command", wire.String(cmd))}
}

// TestQueueFIFO exercises the FIFO property: entries come back out in the
// order they were appended.
func TestQueueFIFO(t *testing.T) {
	var q Queue
	q.Append(entry("a"))
	q.Append(entry("b"))
	q.Append(entry("c"))

	for _, want := range []string{"a", "b", "c"} {
		got, ok := q.PopFront()
		require.True(t, ok)
		cmd, _ := got.Command()
		assert.Equal(t, want, cmd)
	}
	_, ok := q.PopFront()
	assert.False(t, ok)
}

func TestQueueLenAndSnapshot(t *testing.T) {
	var q Queue
	assert.Equal(t, 0, q.Len())

	q.Append(entry("a"))
	q.Append(entry("b"))
	assert.Equal(t, 2, q.Len())

	snap := q.Snapshot()
	require.Len(t, snap, 2)

	// Mutating the queue afterward must not affect an already-taken snapshot.
	q.Append(entry("c"))
	assert.Len(t, snap, 2)
	assert.Equal(t, 3, q.Len())
}

func TestEntryAccessors(t *testing.T) {
	e := Entry{Data: wire.Null().
		Set("command", wire.String("bulk")).
		Set("arguments", wire.String("-a")).
		Set("log", wire.String("/tmp/bulk.log"))}

	cmd, ok := e.Command()
	require.True(t, ok)
	assert.Equal(t, "bulk", cmd)

	args, ok := e.Arguments()
	require.True(t, ok)
	assert.Equal(t, "-a", args)

	log, ok := e.Log()
	require.True(t, ok)
	assert.Equal(t, "/tmp/bulk.log", log)
}

func TestEntryAccessorsMissingFields(t *testing.T) {
	e := Entry{Data: wire.Null().Set("command", wire.String("status"))}
	_, ok := e.Arguments()
	assert.False(t, ok)
	_, ok = e.Log()
	assert.False(t, ok)
}

package notify

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPushAssignsUniqueIDs(t *testing.T) {
	c := NewCenter()
	defer c.Close()

	a := c.Push("same text", Info, time.Minute)
	b := c.Push("same text", Info, time.Minute)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Len(t, c.Active(), 2)
}

func TestDismissIsIdempotent(t *testing.T) {
	c := NewCenter()
	defer c.Close()

	ev := c.Push("gone soon", Success, time.Minute)
	assert.True(t, c.Dismiss(ev.ID))
	assert.False(t, c.Dismiss(ev.ID))
	assert.False(t, c.Dismiss("never-existed"))
	assert.Empty(t, c.Active())
}

func TestEventsExpireOnTheirOwn(t *testing.T) {
	c := NewCenter()
	defer c.Close()

	ev := c.Push("blink", Info, 20*time.Millisecond)
	require.Len(t, c.Active(), 1)

	assert.Eventually(t, func() bool {
		return len(c.Active()) == 0
	}, time.Second, 5*time.Millisecond)

	// Dismissing after expiry is a no-op, not an error.
	assert.False(t, c.Dismiss(ev.ID))
}

func TestInsertionOrderPreserved(t *testing.T) {
	c := NewCenter()
	defer c.Close()

	c.Push("first", Info, time.Minute)
	c.Push("second", Error, time.Minute)
	c.Push("third", Success, time.Minute)

	active := c.Active()
	require.Len(t, active, 3)
	assert.Equal(t, "first", active[0].Message)
	assert.Equal(t, "third", active[2].Message)
}

func TestOnChangeFires(t *testing.T) {
	c := NewCenter()
	defer c.Close()

	var calls atomic.Int32
	c.SetOnChange(func() { calls.Add(1) })

	ev := c.Push("hello", Info, time.Minute)
	c.Dismiss(ev.ID)
	assert.Equal(t, int32(2), calls.Load())
}

func TestCloseCancelsTimersAndIgnoresPushes(t *testing.T) {
	c := NewCenter()
	c.Push("pending", Info, time.Minute)
	c.Close()
	assert.Empty(t, c.Active())

	c.Push("after close", Info, time.Minute)
	assert.Empty(t, c.Active())
}

func TestHelpersSetKind(t *testing.T) {
	c := NewCenter()
	defer c.Close()

	assert.Equal(t, Error, c.Errorf("boom: %d", 7).Kind)
	assert.Equal(t, Success, c.Successf("done").Kind)
	assert.Equal(t, Info, c.Infof("fyi").Kind)
	assert.Equal(t, "boom: 7", c.Active()[0].Message)
}

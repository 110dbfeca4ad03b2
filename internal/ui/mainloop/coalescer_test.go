package mainloop

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLoop struct {
	queue []func()
}

func (l *fakeLoop) post(fn func()) { l.queue = append(l.queue, fn) }

func (l *fakeLoop) drain() {
	queue := l.queue
	l.queue = nil
	for _, fn := range queue {
		fn()
	}
}

func TestCoalescer_LatestTaskWins(t *testing.T) {
	loop := &fakeLoop{}
	c := NewCoalescer(loop.post)

	selected := ""
	for _, id := range []string{"a", "b", "c"} {
		c.Post("select-row", func() { selected = id })
	}
	require.Len(t, loop.queue, 1)

	loop.drain()
	assert.Equal(t, "c", selected)

	c.Post("select-row", func() { selected = "d" })
	require.Len(t, loop.queue, 1, "a new burst schedules again")
	loop.drain()
	assert.Equal(t, "d", selected)
}

func TestCoalescer_KeysAreIndependent(t *testing.T) {
	loop := &fakeLoop{}
	c := NewCoalescer(loop.post)

	var ran []string
	c.Post("refresh", func() { ran = append(ran, "refresh") })
	c.Post("select-row", func() { ran = append(ran, "select") })
	require.Len(t, loop.queue, 2)

	loop.drain()
	assert.ElementsMatch(t, []string{"refresh", "select"}, ran)
}

func TestCoalescer_StopDropsWork(t *testing.T) {
	loop := &fakeLoop{}
	c := NewCoalescer(loop.post)

	ran := false
	c.Post("refresh", func() { ran = true })
	c.Stop()
	loop.drain()
	assert.False(t, ran)

	c.Post("refresh", func() { ran = true })
	assert.Empty(t, loop.queue)
}

func TestNewCoalescer_NilPostPanics(t *testing.T) {
	assert.Panics(t, func() { NewCoalescer(nil) })
}

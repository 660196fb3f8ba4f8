package schedule

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManualRunsInDeadlineOrder(t *testing.T) {
	m := NewManual()
	var got []string

	m.After(30*time.Millisecond, func() { got = append(got, "c") })
	m.After(10*time.Millisecond, func() { got = append(got, "a") })
	m.After(10*time.Millisecond, func() { got = append(got, "b") })

	m.Advance(20 * time.Millisecond)
	require.Equal(t, []string{"a", "b"}, got)

	m.Advance(10 * time.Millisecond)
	require.Equal(t, []string{"a", "b", "c"}, got)
	require.Zero(t, m.Pending())
}

func TestManualChainedCallbacks(t *testing.T) {
	m := NewManual()
	n := 0

	var tick func()
	tick = func() {
		n++
		if n < 5 {
			m.After(time.Millisecond, tick)
		}
	}
	m.After(time.Millisecond, tick)

	m.Advance(3 * time.Millisecond)
	assert.Equal(t, 3, n)

	m.Advance(time.Second)
	assert.Equal(t, 5, n)
}

func TestCancelPreventsRun(t *testing.T) {
	m := NewManual()
	ran := false

	h := m.After(time.Second, func() { ran = true })
	require.True(t, h.Cancel())
	require.False(t, h.Cancel())

	m.Advance(2 * time.Second)
	require.False(t, ran)
}

func TestGroupCancelAll(t *testing.T) {
	m := NewManual()
	g := NewGroup(m)
	var runs atomic.Int32

	g.After(time.Second, func() { runs.Add(1) })
	g.After(2*time.Second, func() { runs.Add(1) })
	require.Equal(t, 2, g.Pending())

	m.Advance(time.Second)
	require.Equal(t, int32(1), runs.Load())
	require.Equal(t, 1, g.Pending())

	g.CancelAll()
	m.Advance(time.Minute)
	require.Equal(t, int32(1), runs.Load())

	h := g.After(time.Millisecond, func() { runs.Add(1) })
	require.False(t, h.Cancel())
	m.Advance(time.Second)
	require.Equal(t, int32(1), runs.Load())
}

func TestGroupHandleCancel(t *testing.T) {
	m := NewManual()
	g := NewGroup(m)
	ran := false

	h := g.After(time.Second, func() { ran = true })
	require.True(t, h.Cancel())
	require.Zero(t, g.Pending())

	m.Advance(time.Second)
	require.False(t, ran)
}

func TestRealSchedulerFires(t *testing.T) {
	done := make(chan struct{})
	Real{}.After(time.Millisecond, func() { close(done) })

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("callback did not run")
	}
}

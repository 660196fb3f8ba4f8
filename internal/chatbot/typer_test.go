package chatbot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"WhipStore/pkg/schedule"
)

func TestTyperRevealsPrefixes(t *testing.T) {
	clock := schedule.NewManual()
	typer := Typer{Sched: clock, Delay: time.Second, Speed: 30 * time.Millisecond}

	var got []string
	done := false
	typer.Type("¡Sí!", func(p string) { got = append(got, p) }, func() { done = true })

	clock.Advance(999 * time.Millisecond)
	assert.Empty(t, got, "nothing before the reply delay")

	clock.Advance(time.Millisecond)
	assert.Equal(t, []string{"¡"}, got)

	clock.Advance(60 * time.Millisecond)
	assert.Equal(t, []string{"¡", "¡S", "¡Sí"}, got)
	assert.False(t, done)

	clock.Advance(60 * time.Millisecond)
	assert.Equal(t, "¡Sí!", got[len(got)-1])
	assert.True(t, done)
	assert.Zero(t, clock.Pending())
}

func TestTyperCancel(t *testing.T) {
	clock := schedule.NewManual()
	typer := Typer{Sched: clock, Delay: time.Second, Speed: 30 * time.Millisecond}

	var got []string
	done := false
	h := typer.Type("hola", func(p string) { got = append(got, p) }, func() { done = true })

	clock.Advance(time.Second + 30*time.Millisecond)
	assert.Len(t, got, 2)

	assert.True(t, h.Cancel())
	assert.False(t, h.Cancel())

	clock.Advance(time.Minute)
	assert.Len(t, got, 2)
	assert.False(t, done)
	assert.Zero(t, clock.Pending())
}

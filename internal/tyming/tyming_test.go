package tyming

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTymistTurn(t *testing.T) {
	ty := NewTymist(0, 0)
	assert.Equal(t, 0.0, ty.Tyme())
	assert.Equal(t, 1.0, ty.Tick)

	ty.Turn()
	assert.Equal(t, 1.0, ty.Tyme())
	ty.TurnBy(0.75)
	assert.Equal(t, 1.75, ty.Tyme())
	ty.Tick = 0.5
	ty.Turn()
	assert.Equal(t, 2.25, ty.Tyme())

	ty = NewTymist(2.0, 0.25)
	assert.Equal(t, 2.0, ty.Tyme())
	ty.Turn()
	assert.Equal(t, 2.25, ty.Tyme())
	ty.TurnBy(0.75)
	assert.Equal(t, 3.0, ty.Tyme())

	// non-positive arguments fall back to the default tick
	ty.TurnBy(0)
	assert.Equal(t, 3.25, ty.Tyme())
}

func TestTymenClosure(t *testing.T) {
	ty := NewTymist(0, 0.25)
	tymth := ty.Tymen()
	assert.Equal(t, 0.0, tymth())
	ty.Turn()
	assert.Equal(t, 0.25, tymth(), "closure tracks the tymist")
}

func TestTymerExpiry(t *testing.T) {
	// tick 0.25, duration 1.0: expired exactly after 4 turns
	ty := NewTymist(0, 0.25)
	tymer := NewTymer(ty.Tymen(), 0)
	tymer.Start(1.0)
	assert.Equal(t, 1.0, tymer.Duration())
	assert.Equal(t, 0.0, tymer.Elapsed())
	assert.Equal(t, 1.0, tymer.Remaining())
	assert.False(t, tymer.Expired())

	ty.Turn()
	assert.Equal(t, 0.25, tymer.Elapsed())
	assert.Equal(t, 0.75, tymer.Remaining())
	assert.False(t, tymer.Expired())

	ty.Turn()
	ty.Turn()
	assert.Equal(t, 0.75, tymer.Elapsed())
	assert.Equal(t, 0.25, tymer.Remaining())
	assert.False(t, tymer.Expired())

	ty.Turn()
	assert.Equal(t, 1.0, ty.Tyme())
	assert.Equal(t, 1.0, tymer.Elapsed())
	assert.Equal(t, 0.0, tymer.Remaining())
	assert.True(t, tymer.Expired())

	ty.Turn()
	assert.Equal(t, 1.25, tymer.Elapsed())
	assert.Equal(t, -0.25, tymer.Remaining())
	assert.True(t, tymer.Expired())
}

func TestTymerRestart(t *testing.T) {
	ty := NewTymist(0, 0.25)
	tymer := NewTymer(ty.Tymen(), 1.0)

	ty.TurnBy(1.25)
	assert.True(t, tymer.Expired())

	// restart anchors at the current tyme and keeps the duration
	tymer.Restart(0)
	assert.Equal(t, 1.25, tymer.Startyme())
	assert.Equal(t, 1.0, tymer.Duration())
	assert.Equal(t, 0.0, tymer.Elapsed())
	assert.False(t, tymer.Expired())

	tymer.Restart(0.25)
	assert.Equal(t, 0.25, tymer.Duration())
	ty.Turn()
	assert.Equal(t, 0.25, tymer.Elapsed())
	assert.Equal(t, 0.0, tymer.Remaining())
	assert.True(t, tymer.Expired())
}

func TestTymerWind(t *testing.T) {
	ty := NewTymist(0, 0.25)
	tymer := NewTymer(ty.Tymen(), 1.0)
	ty.Turn()

	// rewinding to another clock must not desynchronize start
	other := NewTymist(0.25, 0.25)
	tymer.Wind(other.Tymen())
	assert.Equal(t, 0.25, tymer.Elapsed())
	other.Turn()
	other.Turn()
	other.Turn()
	assert.True(t, tymer.Expired())
}

func TestTymeeDefaults(t *testing.T) {
	var tymee Tymee
	assert.Equal(t, 0.0, tymee.Tyme())
	assert.Nil(t, tymee.Tymth())
}

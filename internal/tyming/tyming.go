// Package tyming provides the virtual clock of a boxwork: the Tymist
// that owns tyme, the Tymee mixin that reads it through an injected
// closure, and the Tymer for elapsed/remaining/expired arithmetic.
package tyming

// Tymth is the read-only closure a Tymist hands out so any holder can
// read the current tyme without a back-reference.
type Tymth func() float64

// Tymist owns the virtual clock. Tyme is monotonic and non-negative
// and advances only through Turn.
type Tymist struct {
	tyme float64
	// Tick is the default advance step for Turn.
	Tick float64
}

// DefaultTick is the tick used when none is configured.
const DefaultTick = 1.0

// NewTymist creates a Tymist starting at tyme with the given tick.
// Non-positive values fall back to zero tyme and the default tick.
func NewTymist(tyme, tick float64) *Tymist {
	if tyme < 0 {
		tyme = 0
	}
	if tick <= 0 {
		tick = DefaultTick
	}
	return &Tymist{tyme: tyme, Tick: tick}
}

// Tyme returns the current virtual tyme.
func (t *Tymist) Tyme() float64 {
	return t.tyme
}

// Tymen returns a closure reading the current tyme. The closure is
// injected into every Tymee on registration.
func (t *Tymist) Tymen() Tymth {
	return func() float64 { return t.tyme }
}

// Turn advances tyme by the default tick.
func (t *Tymist) Turn() {
	t.tyme += t.Tick
}

// TurnBy advances tyme by tick, falling back to the default tick when
// tick is not positive.
func (t *Tymist) TurnBy(tick float64) {
	if tick <= 0 {
		tick = t.Tick
	}
	t.tyme += tick
}

// Tymee reads tyme through a wound tymth closure. Embed it in anything
// that must observe the virtual clock.
type Tymee struct {
	tymth Tymth
}

// NewTymee creates a Tymee wound to tymth, which may be nil.
func NewTymee(tymth Tymth) Tymee {
	return Tymee{tymth: tymth}
}

// Wind rebinds the tyme source.
func (t *Tymee) Wind(tymth Tymth) {
	t.tymth = tymth
}

// Tyme returns the current tyme, or zero when no source is wound.
func (t *Tymee) Tyme() float64 {
	if t.tymth == nil {
		return 0
	}
	return t.tymth()
}

// Tymth returns the wound closure so it can be passed on.
func (t *Tymee) Tymth() Tymth {
	return t.tymth
}

package boxing

import (
	"github.com/rs/zerolog"

	"github.com/smilemakc/boxflow/internal/acting"
	"github.com/smilemakc/boxflow/internal/dock"
	"github.com/smilemakc/boxflow/internal/doing"
	"github.com/smilemakc/boxflow/internal/hierr"
	"github.com/smilemakc/boxflow/internal/mine"
	"github.com/smilemakc/boxflow/internal/tyming"
)

// State is the execution state of a boxer.
type State string

const (
	// StateUnstarted means Prep has not run.
	StateUnstarted State = "unstarted"
	// StatePrepping means the first tick is running.
	StatePrepping State = "prepping"
	// StateRunning means the boxer is ticking on a stable pile.
	StateRunning State = "running"
	// StateTransiting means a transition was accepted this tick; the
	// pending renters and enters run at the next tick.
	StateTransiting State = "transiting"
	// StateEnding means the final exit chain is running.
	StateEnding State = "ending"
	// StateDone means the boxer has terminated.
	StateDone State = "done"
)

// desirer is the control surface of the hosting doer the boxer checks
// for exit and abort requests.
type desirer interface {
	Desire() doing.Desire
}

// Config holds boxer construction parameters.
type Config struct {
	// Name is the unique identifier of the boxer.
	Name string
	// Mine is the shared bag store; created when nil.
	Mine *mine.Mine
	// Dock is the shared durable store; may be nil.
	Dock dock.Dock
	// Tymth reads the current tyme.
	Tymth tyming.Tymth
	// Logger receives boxer events.
	Logger zerolog.Logger
}

// Boxer executes a boxwork: a tree of boxes sharing the mine and dock.
// The active pile is always the pile of the active box, which is the
// pile's bottom.
type Boxer struct {
	tyming.Tymee

	// Name is the unique identifier of the boxer.
	Name string
	// Mine is the shared bag store of the boxwork.
	Mine *mine.Mine
	// Dock is the shared durable store, may be nil.
	Dock dock.Dock
	// First is the beginning box.
	First *Box
	// Boxes maps box name to box for the whole boxwork.
	Boxes map[string]*Box

	box     *Box
	state   State
	enters  []*Box
	renters []*Box

	endKey mine.Key
	doer   desirer
	log    zerolog.Logger
}

// NewBoxer creates an empty boxer. Boxes are added through Make or by
// direct construction followed by Resolve.
func NewBoxer(cfg Config) (*Boxer, error) {
	if !mine.Renam(cfg.Name) {
		return nil, hierr.NewInvalidName("boxer", cfg.Name)
	}
	m := cfg.Mine
	if m == nil {
		m = mine.New(cfg.Tymth)
	}
	endKey, err := mine.EndKey(cfg.Name)
	if err != nil {
		return nil, err
	}
	return &Boxer{
		Tymee:  tyming.NewTymee(cfg.Tymth),
		Name:   cfg.Name,
		Mine:   m,
		Dock:   cfg.Dock,
		Boxes:  make(map[string]*Box),
		state:  StateUnstarted,
		endKey: endKey,
		log:    cfg.Logger,
	}, nil
}

// State returns the boxer's execution state.
func (b *Boxer) State() State {
	return b.state
}

// Box returns the active box: the bottom of the active pile. Nil until
// Prep has run.
func (b *Boxer) Box() *Box {
	return b.box
}

// Pile returns the active pile, nil until Prep has run.
func (b *Boxer) Pile() []*Box {
	if b.box == nil {
		return nil
	}
	return b.box.Pile()
}

// Done reports whether the boxer has terminated.
func (b *Boxer) Done() bool {
	return b.state == StateDone
}

// SetDoer wires the hosting doer so desire exit/abort terminates the
// boxer at the next tick.
func (b *Boxer) SetDoer(doer desirer) {
	b.doer = doer
}

// Resolve replaces string links with boxes: every box's over name is
// looked up in Boxes (miss is an UnresolvedLink) and every tract dest
// name is resolved, with "next" binding the box's lexical successor
// (miss is an UnresolvedDest).
func (b *Boxer) Resolve() error {
	for name, box := range b.Boxes {
		if over := box.OverName(); over != "" {
			target, ok := b.Boxes[over]
			if !ok {
				return hierr.NewUnresolvedLink(b.Name, name, over)
			}
			box.SetOver(target)
			target.AddUnder(box)
		}
		for _, tract := range box.Tracts {
			dest := tract.DestName()
			if dest == "" {
				continue
			}
			if dest == "next" {
				next := box.Next()
				if next == nil {
					return hierr.NewUnresolvedDest(name, dest)
				}
				tract.Resolve(next)
				continue
			}
			target, ok := b.Boxes[dest]
			if !ok {
				return hierr.NewUnresolvedDest(name, dest)
			}
			tract.Resolve(target)
		}
	}
	return nil
}

// Exen computes the exit/enter/re-exit/re-enter partition of a
// transition from near to far. Piles are top-down; exits and rexits
// come back bottom-up, enters and renters top-down. Forced reentry
// (far within near's pile) exits and re-enters far and everything
// below it.
func Exen(near, far *Box) (exits, enters, rexits, renters []*Box) {
	nears := near.Pile()
	fars := far.Pile()
	l := min(len(nears), len(fars))
	for i := 0; i < l; i++ {
		if far == nears[i] || fars[i] != nears[i] {
			return reversed(nears[i:]), fars[i:], reversed(nears[:i]), fars[:i]
		}
	}
	// piles share a root but never branch nor force reentry
	return reversed(nears), fars, nil, nil
}

func reversed(boxes []*Box) []*Box {
	out := make([]*Box, len(boxes))
	for i, box := range boxes {
		out[len(boxes)-1-i] = box
	}
	return out
}

// Prep runs the boxer's first tick: the initial enters are gated,
// entered, and stepped. It reports whether the boxer is already done
// (a failed initial gate or immediate termination).
func (b *Boxer) Prep() (done bool, err error) {
	if b.First == nil {
		return true, hierr.NewUnresolvedLink(b.Name, "", "first")
	}
	b.state = StatePrepping
	pile := b.First.Pile()
	b.box = pile[len(pile)-1]
	b.enters = pile
	b.renters = nil
	if !b.gate(b.enters) {
		b.log.Debug().Str("boxer", b.Name).Msg("initial precondition gate failed")
		b.state = StateDone
		return true, nil
	}
	return b.tick()
}

// Run steps the boxer one tick. It reports whether the boxer is done.
func (b *Boxer) Run() (done bool, err error) {
	if b.state == StateDone {
		return true, nil
	}
	if b.state == StateUnstarted {
		return b.Prep()
	}
	return b.tick()
}

// tick executes one tick over the active pile: pending re-enters and
// enters, the termination check, recur and last acts top-down, then
// transit evaluation. An accepted transition exits the uncommon pile
// part, installs the new active box, and yields with the enters left
// pending for the next tick.
func (b *Boxer) tick() (done bool, err error) {
	for _, box := range b.renters {
		if err := b.runActs(box.Remacts); err != nil {
			return true, b.fatal(err)
		}
		if err := b.runActs(box.Renacts); err != nil {
			return true, b.fatal(err)
		}
	}
	for _, box := range b.enters {
		if err := b.runActs(box.Emacts); err != nil {
			return true, b.fatal(err)
		}
		if err := b.runActs(box.Enacts); err != nil {
			return true, b.fatal(err)
		}
	}
	b.renters, b.enters = nil, nil

	if b.ended() {
		return true, b.terminate()
	}

	pile := b.Pile()
	for _, box := range pile {
		if err := b.runActs(box.Reacts); err != nil {
			return true, b.fatal(err)
		}
		if err := b.runActs(box.Lacts); err != nil {
			return true, b.fatal(err)
		}
	}

	for _, box := range pile {
		for _, tract := range box.Tracts {
			dest, fired, err := tract.Fire()
			if err != nil {
				if guardErr, ok := err.(*hierr.GuardError); ok {
					b.log.Warn().Str("boxer", b.Name).Str("box", box.Name).
						Err(guardErr).Msg("transit guard failed closed")
					continue
				}
				return true, b.fatal(err)
			}
			if !fired {
				continue
			}
			accepted, err := b.transit(dest)
			if err != nil {
				return true, err
			}
			if accepted {
				return false, nil
			}
		}
	}
	b.state = StateRunning
	return false, nil
}

// transit attempts the transition from the active box to far. The
// candidate's enters are gated first; a failed gate rejects the
// transition and leaves the pile untouched. On acceptance the exits
// and re-exits run bottom-up, the new active box is installed, and the
// renters and enters stay pending for the next tick.
func (b *Boxer) transit(far *Box) (accepted bool, err error) {
	exits, enters, rexits, renters := Exen(b.box, far)
	if !b.gate(enters) {
		b.log.Debug().Str("boxer", b.Name).Str("far", far.Name).
			Msg("transition rejected by precondition gate")
		return false, nil
	}
	b.state = StateTransiting
	b.log.Debug().Str("boxer", b.Name).
		Str("near", b.box.Trail()).Str("far", far.Trail()).
		Msg("transiting")
	for _, box := range exits {
		if err := b.runActs(box.Exacts); err != nil {
			return true, b.fatal(err)
		}
	}
	for _, box := range rexits {
		if err := b.runActs(box.Rexacts); err != nil {
			return true, b.fatal(err)
		}
	}
	pile := far.Pile()
	b.box = pile[len(pile)-1]
	b.renters = renters
	b.enters = enters
	return true, nil
}

// ended reports whether termination was requested through the end bag
// or the hosting doer's desire.
func (b *Boxer) ended() bool {
	if bag, err := b.Mine.Get(b.endKey); err == nil {
		if flag, ok := bag.Value.(bool); ok && flag {
			return true
		}
	}
	if b.doer != nil && b.doer.Desire() != doing.DesireRecur {
		return true
	}
	return false
}

// terminate runs the exit acts of the whole active pile bottom-up and
// marks the boxer done.
func (b *Boxer) terminate() error {
	b.state = StateEnding
	pile := b.Pile()
	for i := len(pile) - 1; i >= 0; i-- {
		if err := b.runActs(pile[i].Exacts); err != nil {
			b.state = StateDone
			return err
		}
	}
	b.log.Debug().Str("boxer", b.Name).Msg("ended")
	b.state = StateDone
	return nil
}

// fatal winds the boxer down after a runtime act error: the current
// pile's exit chain runs and the error propagates to the scheduler.
func (b *Boxer) fatal(err error) error {
	b.log.Error().Str("boxer", b.Name).Err(err).Msg("act failed, ending boxer")
	if termErr := b.terminate(); termErr != nil {
		b.log.Error().Str("boxer", b.Name).Err(termErr).
			Msg("exit chain failed during wind down")
	}
	return err
}

// Quit winds the boxer down from the hosting doer's exit: the active
// pile's exit chain runs unless the boxer already terminated.
func (b *Boxer) Quit() error {
	if b.state == StateDone || b.box == nil {
		b.state = StateDone
		return nil
	}
	return b.terminate()
}

// gate evaluates the preacts of boxes top-down. Any act returning
// false (or failing, which fails closed) refuses entry.
func (b *Boxer) gate(boxes []*Box) bool {
	for _, box := range boxes {
		for _, act := range box.Preacts {
			out, err := act.Act()
			if err != nil {
				b.log.Warn().Str("boxer", b.Name).Str("box", box.Name).
					Err(err).Msg("precondition failed closed")
				return false
			}
			if hold, ok := out.(bool); ok && !hold {
				return false
			}
		}
	}
	return true
}

// runActs invokes acts in order. The first error aborts the list.
func (b *Boxer) runActs(acts []acting.Act) error {
	for _, act := range acts {
		if _, err := act.Act(); err != nil {
			return err
		}
	}
	return nil
}

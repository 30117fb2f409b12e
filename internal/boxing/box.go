// Package boxing provides the hierarchical state machine of the
// runtime: boxes with per-context act lists, the boxer that executes a
// box tree over ticks, the transition algebra, and the builder surface
// that makes boxworks.
package boxing

import (
	"fmt"
	"strings"

	"github.com/smilemakc/boxflow/internal/acting"
	"github.com/smilemakc/boxflow/internal/hierr"
	"github.com/smilemakc/boxflow/internal/mine"
)

// Box is a hierarchical state node. A box links to its over box and
// ordered under boxes (the zeroth under is primary) and carries the
// acts to run in each context. Its pile is the full root-to-leaf chain
// through the primary unders, traced lazily.
type Box struct {
	// Name is the unique identifier of the box within its boxer.
	Name string

	over     *Box
	overName string
	// Unders are the box's under boxes; Unders[0] is primary.
	Unders []*Box
	// next is the box's lexical successor set by the builder.
	next *Box

	// Acts by context.
	Preacts []acting.Act
	Remacts []acting.Act
	Renacts []acting.Act
	Emacts  []acting.Act
	Enacts  []acting.Act
	Reacts  []acting.Act
	Lacts   []acting.Act
	Tracts  []*Goact
	Exacts  []acting.Act
	Rexacts []acting.Act

	// Lazy trace cache.
	pile  []*Box
	spot  int
	trail string
}

// NewBox creates a box with a validated name.
func NewBox(name string) (*Box, error) {
	if !mine.Renam(name) {
		return nil, hierr.NewInvalidName("box", name)
	}
	return &Box{Name: name}, nil
}

// Over returns the resolved over box, nil at top level.
func (b *Box) Over() *Box {
	return b.over
}

// OverName returns the unresolved over box name, empty once resolved
// or at top level.
func (b *Box) OverName() string {
	return b.overName
}

// SetOver links the box under over and invalidates the trace caches
// along both chains.
func (b *Box) SetOver(over *Box) {
	b.over = over
	b.overName = ""
	b.invalidate()
}

// SetOverName records an over link for later resolution.
func (b *Box) SetOverName(name string) {
	b.overName = name
}

// AddUnder appends under to the box's unders and invalidates caches.
func (b *Box) AddUnder(under *Box) {
	b.Unders = append(b.Unders, under)
	b.invalidate()
}

// Next returns the box's lexical successor, nil when last.
func (b *Box) Next() *Box {
	return b.next
}

// SetNext records the lexical successor.
func (b *Box) SetNext(next *Box) {
	b.next = next
}

// invalidate drops the trace caches of the box and every box reachable
// through its links, so the next Pile access re-traces. Link mutation
// anywhere in a pile changes the pile of every member.
func (b *Box) invalidate() {
	for over := b.over; over != nil; over = over.over {
		over.drop()
	}
	b.dropDown()
}

func (b *Box) drop() {
	b.pile = nil
	b.trail = ""
}

func (b *Box) dropDown() {
	b.drop()
	for _, under := range b.Unders {
		under.dropDown()
	}
}

// trace computes the pile by walking over links up and primary unders
// down, plus the box's spot in it and the rendered trail.
func (b *Box) trace() {
	var pile []*Box
	for over := b.over; over != nil; over = over.over {
		pile = append([]*Box{over}, pile...)
	}
	pile = append(pile, b)
	spot := len(pile) - 1
	for under := b.primary(); under != nil; under = under.primary() {
		pile = append(pile, under)
	}
	b.pile = pile
	b.spot = spot

	ups := make([]string, 0, spot)
	for _, box := range pile[:spot] {
		ups = append(ups, box.Name)
	}
	dns := make([]string, 0, len(pile)-spot-1)
	for _, box := range pile[spot+1:] {
		dns = append(dns, box.Name)
	}
	b.trail = strings.Join(ups, "<") + "<" + b.Name + ">" + strings.Join(dns, ">")
}

// primary returns the primary under, nil for a pile leaf.
func (b *Box) primary() *Box {
	if len(b.Unders) == 0 {
		return nil
	}
	return b.Unders[0]
}

// Pile returns the box's pile, root to leaf, tracing it on first
// access. The pile always contains the box itself.
func (b *Box) Pile() []*Box {
	if b.pile == nil {
		b.trace()
	}
	return b.pile
}

// Spot returns the box's zero-based offset in its pile.
func (b *Box) Spot() int {
	if b.pile == nil {
		b.trace()
	}
	return b.spot
}

// Trail returns the pile rendered as "up<name>down".
func (b *Box) Trail() string {
	if b.pile == nil {
		b.trace()
	}
	return b.trail
}

func (b *Box) String() string {
	return fmt.Sprintf("Box(%s)", b.Trail())
}

// AddAct appends act to the context list its nabe names.
func (b *Box) AddAct(act acting.Act) error {
	switch act.Nabe() {
	case acting.Predo:
		b.Preacts = append(b.Preacts, act)
	case acting.Remark:
		b.Remacts = append(b.Remacts, act)
	case acting.Rendo:
		b.Renacts = append(b.Renacts, act)
	case acting.Enmark:
		b.Emacts = append(b.Emacts, act)
	case acting.Endo:
		b.Enacts = append(b.Enacts, act)
	case acting.Redo:
		b.Reacts = append(b.Reacts, act)
	case acting.Lasdo:
		b.Lacts = append(b.Lacts, act)
	case acting.Exdo:
		b.Exacts = append(b.Exacts, act)
	case acting.Rexdo:
		b.Rexacts = append(b.Rexacts, act)
	default:
		return hierr.NewInvalidNabe(act.Name(), string(act.Nabe()))
	}
	return nil
}

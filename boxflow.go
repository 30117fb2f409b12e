// Package boxflow is a hierarchical action runtime: structured,
// cooperative workloads (doers) scheduled on a shared virtual clock,
// with hierarchical state machines (boxers over boxes) whose guarded
// transitions and per-context acts read and write a shared keyed bag
// store (the mine) and an optional durable store (the dock).
package boxflow

import (
	"github.com/smilemakc/boxflow/internal/acting"
	"github.com/smilemakc/boxflow/internal/boxing"
	"github.com/smilemakc/boxflow/internal/dock"
	"github.com/smilemakc/boxflow/internal/doing"
	"github.com/smilemakc/boxflow/internal/mine"
	"github.com/smilemakc/boxflow/internal/need"
	"github.com/smilemakc/boxflow/internal/tyming"
)

// Mine and bags.
type (
	Mine = mine.Mine
	Bag  = mine.Bag
	Key  = mine.Key
)

// Tyming.
type (
	Tymist = tyming.Tymist
	Tymer  = tyming.Tymer
	Tymth  = tyming.Tymth
)

// Doing.
type (
	Doer      = doing.Doer
	DoerBase  = doing.Base
	Deed      = doing.Deed
	Scheduler = doing.Scheduler
)

// Doer lifecycle states and desires.
const (
	StateExited    = doing.StateExited
	StateEntered   = doing.StateEntered
	StateRecurring = doing.StateRecurring
	StateExiting   = doing.StateExiting
	StateAborted   = doing.StateAborted

	DesireRecur = doing.DesireRecur
	DesireExit  = doing.DesireExit
	DesireAbort = doing.DesireAbort
)

// Boxing.
type (
	Box       = boxing.Box
	Boxer     = boxing.Boxer
	BoxerDoer = boxing.BoxerDoer
	Goact     = boxing.Goact
	Maker     = boxing.Maker
)

// Acting and needs.
type (
	Act      = acting.Act
	Nabe     = acting.Nabe
	DeedFunc = acting.DeedFunc
	Need     = need.Need
)

// Act contexts.
const (
	Predo  = acting.Predo
	Remark = acting.Remark
	Rendo  = acting.Rendo
	Enmark = acting.Enmark
	Endo   = acting.Endo
	Redo   = acting.Redo
	Lasdo  = acting.Lasdo
	Godo   = acting.Godo
	Exdo   = acting.Exdo
	Rexdo  = acting.Rexdo
)

// Dock.
type (
	Dock     = dock.Dock
	DockBag  = dock.Bag
	MemDock  = dock.MemDock
	BuntDock = dock.BuntDock
	BunDock  = dock.BunDock
)

// ParseKey builds a hierarchical key from its dotted string form.
func ParseKey(s string) (Key, error) {
	return mine.ParseKey(s)
}

// KeyFrom builds a hierarchical key from ordered segments.
func KeyFrom(segs ...string) (Key, error) {
	return mine.KeyFrom(segs...)
}

// Package need provides the boolean guard evaluator of a boxwork.
// Guards are expr expressions over the mine and dock plus the special
// conditions (updated/changed/count/elapsed) resolved against the mark
// keys of the guarding box.
package need

import (
	"fmt"
	"reflect"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/smilemakc/boxflow/internal/dock"
	"github.com/smilemakc/boxflow/internal/hierr"
	"github.com/smilemakc/boxflow/internal/mine"
)

// Config holds everything a Need resolves against at evaluation tyme.
type Config struct {
	// Expr is the guard expression. Empty evaluates to true.
	Expr string
	// Boxer and Box name the guarding context for the special
	// conditions; empty when the guard uses none.
	Boxer string
	Box   string
	// Mine backs M(key) references and the special conditions.
	Mine *mine.Mine
	// Dock backs D(key) references; may be nil.
	Dock dock.Dock
	// Tymth reads the current tyme for elapsed.
	Tymth func() float64
}

// Need holds an evaluable boolean guard expression. The expression is
// compiled once on first evaluation; the empty expression is true.
type Need struct {
	Config

	program *vm.Program
}

// New creates a Need from cfg.
func New(cfg Config) *Need {
	return &Need{Config: cfg}
}

// True creates a Need that always holds.
func True() *Need {
	return &Need{}
}

// String returns the guard expression.
func (n *Need) String() string {
	return n.Expr
}

// Eval evaluates the guard. Reference to an unknown key or an
// ill-formed expression returns a GuardError; callers inside tract
// evaluation treat that as false.
func (n *Need) Eval() (bool, error) {
	if n.Expr == "" {
		return true, nil
	}
	if n.program == nil {
		program, err := expr.Compile(n.Expr, expr.Env(n.env()))
		if err != nil {
			return false, hierr.NewGuardError(n.Expr, "compile failed", err)
		}
		n.program = program
	}
	out, err := expr.Run(n.program, n.env())
	if err != nil {
		return false, hierr.NewGuardError(n.Expr, "evaluation failed", err)
	}
	hold, ok := out.(bool)
	if !ok {
		return false, hierr.NewGuardError(n.Expr,
			fmt.Sprintf("result %T is not a bool", out), nil)
	}
	return hold, nil
}

// env builds the evaluation environment binding the mine, dock, tyme
// and the special conditions.
func (n *Need) env() map[string]any {
	return map[string]any{
		"M":       n.readMine,
		"D":       n.readDock,
		"tyme":    n.tyme,
		"updated": n.updated,
		"changed": n.changed,
		"count":   n.count,
		"elapsed": n.elapsed,
	}
}

func (n *Need) tyme() float64 {
	if n.Tymth == nil {
		return 0
	}
	return n.Tymth()
}

// readMine returns the payload of the mine bag at key.
func (n *Need) readMine(key string) (any, error) {
	k, err := mine.ParseKey(key)
	if err != nil {
		return nil, err
	}
	bag, err := n.Mine.Get(k)
	if err != nil {
		return nil, err
	}
	return bag.Value, nil
}

// readDock returns the payload of the dock bag at key.
func (n *Need) readDock(key string) (any, error) {
	if n.Dock == nil {
		return nil, hierr.NewMissingKey(key)
	}
	k, err := mine.ParseKey(key)
	if err != nil {
		return nil, err
	}
	bag, err := n.Dock.Get(k)
	if err != nil {
		return nil, err
	}
	return bag.Value, nil
}

// updated holds when the bag at key was written since the update mark
// of the guarding box was last stored.
func (n *Need) updated(key string) (bool, error) {
	k, err := mine.ParseKey(key)
	if err != nil {
		return false, err
	}
	bag, err := n.Mine.Get(k)
	if err != nil {
		return false, err
	}
	markKey, err := mine.UpdateKey(n.Boxer, n.Box, k)
	if err != nil {
		return false, err
	}
	mark, err := n.Mine.Get(markKey)
	if err != nil {
		return false, err
	}
	tyme, tymed := bag.Tyme()
	if !tymed {
		return mark.Value != nil, nil
	}
	stored, ok := mark.Value.(float64)
	if !ok {
		return true, nil // mark is nil or stale shape
	}
	return tyme != stored, nil
}

// changed holds when the bag at key's content fingerprint differs from
// the change mark of the guarding box.
func (n *Need) changed(key string) (bool, error) {
	k, err := mine.ParseKey(key)
	if err != nil {
		return false, err
	}
	bag, err := n.Mine.Get(k)
	if err != nil {
		return false, err
	}
	markKey, err := mine.ChangeKey(n.Boxer, n.Box, k)
	if err != nil {
		return false, err
	}
	mark, err := n.Mine.Get(markKey)
	if err != nil {
		return false, err
	}
	stored, ok := mark.Value.([]any)
	if !ok {
		return true, nil // no fingerprint stored yet
	}
	return !reflect.DeepEqual(bag.Astuple(), stored), nil
}

// count holds when the redo counter of the guarding box is set and has
// reached threshold.
func (n *Need) count(threshold any) (bool, error) {
	bar, err := toFloat(threshold)
	if err != nil {
		return false, hierr.NewGuardError(n.Expr, "count threshold", err)
	}
	key, err := mine.CountKey(n.Boxer, n.Box)
	if err != nil {
		return false, err
	}
	bag, err := n.Mine.Get(key)
	if err != nil {
		return false, err
	}
	if bag.Value == nil {
		return false, nil
	}
	have, err := toFloat(bag.Value)
	if err != nil {
		return false, hierr.NewGuardError(n.Expr, "count bag", err)
	}
	return have >= bar, nil
}

// elapsed holds when the tyme since the guarding box's entry-tyme mark
// has reached duration.
func (n *Need) elapsed(duration any) (bool, error) {
	span, err := toFloat(duration)
	if err != nil {
		return false, hierr.NewGuardError(n.Expr, "elapsed duration", err)
	}
	key, err := mine.TymeKey(n.Boxer, n.Box)
	if err != nil {
		return false, err
	}
	bag, err := n.Mine.Get(key)
	if err != nil {
		return false, err
	}
	if bag.Value == nil {
		return false, nil // not yet marked
	}
	entry, err := toFloat(bag.Value)
	if err != nil {
		return false, hierr.NewGuardError(n.Expr, "entry tyme bag", err)
	}
	return n.tyme()-entry >= span, nil
}

// toFloat coerces the numeric shapes guards traffic in.
func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("not a number: %T", v)
	}
}

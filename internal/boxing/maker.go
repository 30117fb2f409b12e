package boxing

import (
	"strconv"

	"github.com/smilemakc/boxflow/internal/acting"
	"github.com/smilemakc/boxflow/internal/hierr"
	"github.com/smilemakc/boxflow/internal/mine"
	"github.com/smilemakc/boxflow/internal/need"
)

// Maker is the boxwork construction context threaded through the
// builder verbs. Boxer.Make creates one, hands it to the build
// function, and resolves the boxwork afterwards.
type Maker struct {
	boxer *Boxer

	// box is the current box; builder verbs apply to it.
	box *Box
	// over is the current level's over box, nil at top level.
	over *Box
	// bxpre and bxidx generate default box names.
	bxpre string
	bxidx int
}

// Make builds the boxwork by calling fn with a fresh Maker, then
// resolves all links. The first box built becomes First unless the
// build function set one.
func (b *Boxer) Make(fn func(m *Maker) error) error {
	m := &Maker{boxer: b, bxpre: "box"}
	if err := fn(m); err != nil {
		return err
	}
	return b.Resolve()
}

// Boxer returns the boxer under construction.
func (m *Maker) Boxer() *Boxer {
	return m.boxer
}

// Box returns the current box, nil before the first Bx.
func (m *Maker) Box() *Box {
	return m.box
}

// Bx makes a box and adds it to the boxwork. An empty name generates
// the next default name. An empty over keeps the current level (top
// level until a box was made with an over); otherwise over names an
// already-made box. Consecutive Bx calls link the lexical next chain.
func (m *Maker) Bx(name, over string) (*Box, error) {
	if name == "" {
		for {
			name = m.bxpre + strconv.Itoa(m.bxidx)
			m.bxidx++
			if _, taken := m.boxer.Boxes[name]; !taken {
				break
			}
		}
	}
	if _, taken := m.boxer.Boxes[name]; taken {
		return nil, hierr.NewDuplicateBox(m.boxer.Name, name)
	}
	box, err := NewBox(name)
	if err != nil {
		return nil, err
	}

	overBox := m.over
	if over != "" {
		target, ok := m.boxer.Boxes[over]
		if !ok {
			return nil, hierr.NewUnresolvedLink(m.boxer.Name, name, over)
		}
		overBox = target
	}
	if overBox != nil {
		box.SetOver(overBox)
		overBox.AddUnder(box)
	}

	m.boxer.Boxes[name] = box
	if m.boxer.First == nil {
		m.boxer.First = box
	}
	m.over = overBox
	if m.box != nil {
		m.box.SetNext(box)
	}
	m.box = box
	return box, nil
}

// On makes a special Need guarded by cond for the current box and
// wires the mark acts the condition depends on:
//
//	updated  — key names the watched bag; update marks on enter/re-enter
//	changed  — key names the watched bag; change marks on enter/re-enter
//	count    — key is the numeric threshold; count on recur, discount on exit
//	elapsed  — key is the numeric duration; tyme mark on enter/re-enter
//
// An empty cond uses expr alone (or an always-true need). A non-empty
// expr is ANDed with the resolved condition.
func (m *Maker) On(cond, key, expr string) (*need.Need, error) {
	if m.box == nil {
		return nil, hierr.NewInvalidName("box", "")
	}
	var resolved string
	switch cond {
	case "":
		resolved = ""
	case "updated":
		if err := m.mark("update", key); err != nil {
			return nil, err
		}
		resolved = `updated(` + strconv.Quote(key) + `)`
	case "changed":
		if err := m.mark("change", key); err != nil {
			return nil, err
		}
		resolved = `changed(` + strconv.Quote(key) + `)`
	case "count":
		if _, err := strconv.ParseFloat(key, 64); err != nil {
			return nil, hierr.NewGuardError(cond, "count threshold "+key, err)
		}
		if err := m.redoMarks(); err != nil {
			return nil, err
		}
		resolved = `count(` + key + `)`
	case "elapsed":
		if _, err := strconv.ParseFloat(key, 64); err != nil {
			return nil, hierr.NewGuardError(cond, "elapsed duration "+key, err)
		}
		if err := m.mark("tyme", ""); err != nil {
			return nil, err
		}
		resolved = `elapsed(` + key + `)`
	default:
		return nil, hierr.NewGuardError(cond, "unknown condition", nil)
	}

	if expr != "" {
		if resolved == "" {
			resolved = expr
		} else {
			resolved = "(" + resolved + ") and (" + expr + ")"
		}
	}
	return m.need(resolved), nil
}

// need builds a Need bound to the current box's guarding context.
func (m *Maker) need(expr string) *need.Need {
	return need.New(need.Config{
		Expr:  expr,
		Boxer: m.boxer.Name,
		Box:   m.box.Name,
		Mine:  m.boxer.Mine,
		Dock:  m.boxer.Dock,
		Tymth: m.boxer.Tymth(),
	})
}

// mark instantiates a mark kind for the current box in both the enter
// and re-enter mark subcontexts.
func (m *Maker) mark(kind, key string) error {
	for _, nabe := range []acting.Nabe{acting.Enmark, acting.Remark} {
		act, err := acting.Make(kind, acting.Config{
			Nabe:  nabe,
			Iops:  m.iops(key),
			Mine:  m.boxer.Mine,
			Dock:  m.boxer.Dock,
			Tymth: m.boxer.Tymth(),
		})
		if err != nil {
			return err
		}
		if err := m.box.AddAct(act); err != nil {
			return err
		}
	}
	return nil
}

// redoMarks wires the redo counter: count on recur, discount on exit.
func (m *Maker) redoMarks() error {
	for _, wiring := range []struct {
		kind string
		nabe acting.Nabe
	}{
		{"count", acting.Redo},
		{"discount", acting.Exdo},
	} {
		kind, nabe := wiring.kind, wiring.nabe
		act, err := acting.Make(kind, acting.Config{
			Nabe: nabe,
			Iops: m.iops(""),
			Mine: m.boxer.Mine,
			Dock: m.boxer.Dock,
		})
		if err != nil {
			return err
		}
		if err := m.box.AddAct(act); err != nil {
			return err
		}
	}
	return nil
}

// iops builds the implicit iops of the current box, with the marked
// key when given.
func (m *Maker) iops(key string) map[string]any {
	iops := map[string]any{"_boxer": m.boxer.Name, "_box": m.box.Name}
	if key != "" {
		iops["_key"] = key
	}
	return iops
}

// Go appends a transition to the current box's tracts. An empty or
// "next" dest binds the lexical successor at resolve tyme; a name is
// resolved immediately when already made, at resolve tyme otherwise.
// An empty expr always transits.
func (m *Maker) Go(dest, expr string) (*Goact, error) {
	if m.box == nil {
		return nil, hierr.NewInvalidName("box", "")
	}
	return m.goact(dest, m.need(expr))
}

// GoWhen appends a transition guarded by an On-made need.
func (m *Maker) GoWhen(dest string, nd *need.Need) (*Goact, error) {
	if m.box == nil {
		return nil, hierr.NewInvalidName("box", "")
	}
	if nd == nil {
		nd = need.True()
	}
	return m.goact(dest, nd)
}

func (m *Maker) goact(dest string, nd *need.Need) (*Goact, error) {
	var destBox *Box
	destName := ""
	switch dest {
	case "", "next", "Next", "NEXT":
		if next := m.box.Next(); next != nil {
			destBox = next
		} else {
			destName = "next"
		}
	default:
		if !mine.Renam(dest) {
			return nil, hierr.NewInvalidName("dest", dest)
		}
		if target, ok := m.boxer.Boxes[dest]; ok {
			destBox = target
		} else {
			destName = dest
		}
	}
	tract, err := NewGoact("", destBox, destName, nd, acting.Godo)
	if err != nil {
		return nil, err
	}
	m.box.Tracts = append(m.box.Tracts, tract)
	return tract, nil
}

// Be appends a precondition to the current box: the need made by On
// for cond/key/expr must hold for the box to be entered.
func (m *Maker) Be(cond, key, expr string) (*need.Need, error) {
	nd, err := m.On(cond, key, expr)
	if err != nil {
		return nil, err
	}
	act, err := acting.Make("need", acting.Config{
		Nabe: acting.Predo,
		Need: nd,
		Iops: m.iops(""),
		Mine: m.boxer.Mine,
		Dock: m.boxer.Dock,
	})
	if err != nil {
		return nil, err
	}
	if err := m.box.AddAct(act); err != nil {
		return nil, err
	}
	return nd, nil
}

// Do instantiates a registered act kind for the current box and
// appends it to the context list of its nabe. The _boxer and _box iops
// are injected; iops may carry the rest (such as _key for marks).
func (m *Maker) Do(kind string, iops map[string]any) (acting.Act, error) {
	return m.DoIn("", kind, iops)
}

// DoIn is Do with an explicit nabe overriding the kind's default.
func (m *Maker) DoIn(nabe acting.Nabe, kind string, iops map[string]any) (acting.Act, error) {
	if m.box == nil {
		return nil, hierr.NewInvalidName("box", "")
	}
	merged := m.iops("")
	for k, v := range iops {
		merged[k] = v
	}
	act, err := acting.Make(kind, acting.Config{
		Nabe:  nabe,
		Iops:  merged,
		Mine:  m.boxer.Mine,
		Dock:  m.boxer.Dock,
		Tymth: m.boxer.Tymth(),
	})
	if err != nil {
		return nil, err
	}
	if err := m.box.AddAct(act); err != nil {
		return nil, err
	}
	return act, nil
}

// DoFunc appends a callable deed to the current box in the enter
// context.
func (m *Maker) DoFunc(fn acting.DeedFunc) (acting.Act, error) {
	return m.DoFuncIn(acting.Endo, fn)
}

// DoFuncIn appends a callable deed to the current box in the given
// context.
func (m *Maker) DoFuncIn(nabe acting.Nabe, fn acting.DeedFunc) (acting.Act, error) {
	if m.box == nil {
		return nil, hierr.NewInvalidName("box", "")
	}
	act, err := acting.Make("act", acting.Config{
		Nabe:  nabe,
		Iops:  m.iops(""),
		Mine:  m.boxer.Mine,
		Dock:  m.boxer.Dock,
		Tymth: m.boxer.Tymth(),
		Deed:  fn,
	})
	if err != nil {
		return nil, err
	}
	if err := m.box.AddAct(act); err != nil {
		return nil, err
	}
	return act, nil
}

// DoExpr appends an expression-string deed to the current box in the
// enter context. The expression is compiled once on first call with M
// and D in scope.
func (m *Maker) DoExpr(src string) (acting.Act, error) {
	if m.box == nil {
		return nil, hierr.NewInvalidName("box", "")
	}
	act, err := acting.Make("act", acting.Config{
		Iops: m.iops(""),
		Mine: m.boxer.Mine,
		Dock: m.boxer.Dock,
		Src:  src,
	})
	if err != nil {
		return nil, err
	}
	if err := m.box.AddAct(act); err != nil {
		return nil, err
	}
	return act, nil
}

// End appends an end act to the current box in the enter context:
// entering the box requests termination of the boxer.
func (m *Maker) End() (acting.Act, error) {
	return m.Do("end", nil)
}

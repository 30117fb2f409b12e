package acting

import (
	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/smilemakc/boxflow/internal/hierr"
	"github.com/smilemakc/boxflow/internal/mine"
)

func init() {
	Register(newDeedAct, "act", "do")
	Register(newEndAct, "end", "End")
	Register(newMark, "mark")
	Register(newUpdateMark, "update", "updateMark")
	Register(newChangeMark, "change", "changeMark")
	Register(newTymeMark, "tyme", "tymeMark")
	Register(newCount, "count")
	Register(newDiscount, "discount")
	Register(newNeedAct, "need")
}

// DeedAct invokes a callable deed with its iops, or evaluates an
// expression-string deed compiled once on first call with M and D in
// scope. The return value is propagated.
type DeedAct struct {
	Base

	deed    DeedFunc
	src     string
	program *vm.Program
}

func newDeedAct(cfg Config) (Act, error) {
	a := &DeedAct{
		Base: newBase("act", Endo, cfg),
		deed: cfg.Deed,
		src:  cfg.Src,
	}
	if a.deed == nil && a.src == "" {
		// default deed echoes its iops
		a.deed = func(iops map[string]any) (any, error) { return iops, nil }
	}
	return a, nil
}

// Act implements Act.
func (a *DeedAct) Act() (any, error) {
	if a.deed != nil {
		return a.deed(a.Iops())
	}
	if a.program == nil {
		program, err := expr.Compile(a.src)
		if err != nil {
			return nil, hierr.NewGuardError(a.src, "deed compile failed", err)
		}
		a.program = program
	}
	return expr.Run(a.program, a.env())
}

// env binds M, D and the iops into the string deed's scope.
func (a *DeedAct) env() map[string]any {
	env := map[string]any{
		"M": func(key string) (any, error) {
			k, err := mine.ParseKey(key)
			if err != nil {
				return nil, err
			}
			bag, err := a.Mine().Get(k)
			if err != nil {
				return nil, err
			}
			return bag.Value, nil
		},
		"D": func(key string) (any, error) {
			if a.Dock() == nil {
				return nil, hierr.NewMissingKey(key)
			}
			k, err := mine.ParseKey(key)
			if err != nil {
				return nil, err
			}
			bag, err := a.Dock().Get(k)
			if err != nil {
				return nil, err
			}
			return bag.Value, nil
		},
	}
	for k, v := range a.Iops() {
		env[k] = v
	}
	return env
}

// EndAct requests termination of its boxer by setting the end bag true.
type EndAct struct {
	Base

	endKey mine.Key
}

func newEndAct(cfg Config) (Act, error) {
	a := &EndAct{Base: newBase("end", Endo, cfg)}
	boxer := a.stringIop("_boxer")
	if boxer == "" {
		return nil, hierr.NewMissingIop(a.Name(), "_boxer")
	}
	key, err := mine.EndKey(boxer)
	if err != nil {
		return nil, err
	}
	a.endKey = key
	a.Mine().Ensure(key)
	return a, nil
}

// Act implements Act.
func (a *EndAct) Act() (any, error) {
	a.Mine().Write(a.endKey, true)
	return true, nil
}

// Mark is the abstract base of the mark acts. It requires the _boxer,
// _box and _key iops and asserts at construction that the marked bag
// exists in the mine.
type Mark struct {
	Base

	boxer string
	box   string
	key   mine.Key
}

func newMarkBase(kind string, cfg Config) (Mark, error) {
	m := Mark{Base: newBase(kind, Enmark, cfg)}
	m.boxer = m.stringIop("_boxer")
	if m.boxer == "" {
		return m, hierr.NewMissingIop(m.Name(), "_boxer")
	}
	m.box = m.stringIop("_box")
	if m.box == "" {
		return m, hierr.NewMissingIop(m.Name(), "_box")
	}
	raw := m.stringIop("_key")
	if raw == "" {
		return m, hierr.NewMissingIop(m.Name(), "_key")
	}
	key, err := mine.ParseKey(raw)
	if err != nil {
		return m, err
	}
	m.key = key
	if !m.Mine().Has(key) {
		return m, hierr.NewMissingBag(m.Name(), key.String())
	}
	return m, nil
}

func newMark(cfg Config) (Act, error) {
	m, err := newMarkBase("mark", cfg)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Act implements Act. The base mark does nothing; kinds override.
func (m *Mark) Act() (any, error) {
	return nil, nil
}

// UpdateMark stores the marked bag's write-tyme under the box's update
// key, so the updated condition is false until the bag's next write.
type UpdateMark struct {
	Mark

	markKey mine.Key
}

func newUpdateMark(cfg Config) (Act, error) {
	m, err := newMarkBase("update", cfg)
	if err != nil {
		return nil, err
	}
	markKey, err := mine.UpdateKey(m.boxer, m.box, m.key)
	if err != nil {
		return nil, err
	}
	m.Mine().Ensure(markKey)
	return &UpdateMark{Mark: m, markKey: markKey}, nil
}

// Act implements Act.
func (m *UpdateMark) Act() (any, error) {
	bag, err := m.Mine().Get(m.key)
	if err != nil {
		return nil, err
	}
	var mark any
	if tyme, tymed := bag.Tyme(); tymed {
		mark = tyme
	}
	m.Mine().Write(m.markKey, mark)
	return mark, nil
}

// ChangeMark stores the marked bag's content fingerprint under the
// box's change key.
type ChangeMark struct {
	Mark

	markKey mine.Key
}

func newChangeMark(cfg Config) (Act, error) {
	m, err := newMarkBase("change", cfg)
	if err != nil {
		return nil, err
	}
	markKey, err := mine.ChangeKey(m.boxer, m.box, m.key)
	if err != nil {
		return nil, err
	}
	m.Mine().Ensure(markKey)
	return &ChangeMark{Mark: m, markKey: markKey}, nil
}

// Act implements Act.
func (m *ChangeMark) Act() (any, error) {
	bag, err := m.Mine().Get(m.key)
	if err != nil {
		return nil, err
	}
	mark := bag.Astuple()
	m.Mine().Write(m.markKey, mark)
	return mark, nil
}

// TymeMark stores the current tyme under the box's tyme key on entry,
// backing the elapsed condition.
type TymeMark struct {
	Base

	tymth   func() float64
	markKey mine.Key
}

func newTymeMark(cfg Config) (Act, error) {
	a := &TymeMark{Base: newBase("tyme", Enmark, cfg), tymth: cfg.Tymth}
	boxer := a.stringIop("_boxer")
	if boxer == "" {
		return nil, hierr.NewMissingIop(a.Name(), "_boxer")
	}
	box := a.stringIop("_box")
	if box == "" {
		return nil, hierr.NewMissingIop(a.Name(), "_box")
	}
	key, err := mine.TymeKey(boxer, box)
	if err != nil {
		return nil, err
	}
	a.markKey = key
	a.Mine().Ensure(key)
	return a, nil
}

// Act implements Act.
func (a *TymeMark) Act() (any, error) {
	var tyme float64
	if a.tymth != nil {
		tyme = a.tymth()
	}
	a.Mine().Write(a.markKey, tyme)
	return tyme, nil
}

// Count advances the redo counter of its box: nil becomes 0 on first
// entry, then increments per recur.
type Count struct {
	Base

	countKey mine.Key
}

func newCount(cfg Config) (Act, error) {
	a := &Count{Base: newBase("count", Redo, cfg)}
	key, err := redoKey(&a.Base)
	if err != nil {
		return nil, err
	}
	a.countKey = key
	a.Mine().Ensure(key)
	return a, nil
}

// Act implements Act.
func (a *Count) Act() (any, error) {
	bag, err := a.Mine().Get(a.countKey)
	if err != nil {
		return nil, err
	}
	count := 0
	if prev, ok := bag.Value.(int); ok {
		count = prev + 1
	}
	a.Mine().Write(a.countKey, count)
	return count, nil
}

// Discount resets the redo counter of its box back to nil on exit.
type Discount struct {
	Base

	countKey mine.Key
}

func newDiscount(cfg Config) (Act, error) {
	a := &Discount{Base: newBase("discount", Exdo, cfg)}
	key, err := redoKey(&a.Base)
	if err != nil {
		return nil, err
	}
	a.countKey = key
	a.Mine().Ensure(key)
	return a, nil
}

// Act implements Act.
func (a *Discount) Act() (any, error) {
	a.Mine().Write(a.countKey, nil)
	return nil, nil
}

// redoKey resolves the count key from the _boxer and _box iops.
func redoKey(b *Base) (mine.Key, error) {
	boxer := b.stringIop("_boxer")
	if boxer == "" {
		return "", hierr.NewMissingIop(b.Name(), "_boxer")
	}
	box := b.stringIop("_box")
	if box == "" {
		return "", hierr.NewMissingIop(b.Name(), "_box")
	}
	return mine.CountKey(boxer, box)
}

// NeedAct wraps a Need as an act so guards can run in the precondition
// context. Act returns the guard's boolean.
type NeedAct struct {
	Base

	need Needer
}

// Needer is the evaluation surface NeedAct drives.
type Needer interface {
	Eval() (bool, error)
}

func newNeedAct(cfg Config) (Act, error) {
	if cfg.Need == nil {
		return nil, hierr.NewMissingIop(cfg.Name, "need")
	}
	return &NeedAct{Base: newBase("need", Predo, cfg), need: cfg.Need}, nil
}

// Act implements Act.
func (a *NeedAct) Act() (any, error) {
	return a.need.Eval()
}

// Package acting provides the action objects run by boxes in fixed
// contexts (nabes) and the process-wide registry of act kinds.
package acting

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/smilemakc/boxflow/internal/dock"
	"github.com/smilemakc/boxflow/internal/mine"
	"github.com/smilemakc/boxflow/internal/need"
)

// Nabe is the scheduling context an act runs in. Each nabe corresponds
// to one per-context act list on a box.
type Nabe string

const (
	// Predo is the precondition (pre-entry) context (preacts).
	Predo Nabe = "predo"
	// Remark is the re-enter mark subcontext (remacts).
	Remark Nabe = "remark"
	// Rendo is the re-enter context (renacts).
	Rendo Nabe = "rendo"
	// Enmark is the enter mark subcontext (emacts).
	Enmark Nabe = "enmark"
	// Endo is the enter context (enacts).
	Endo Nabe = "endo"
	// Redo is the recur context (reacts).
	Redo Nabe = "redo"
	// Lasdo is the last context (lacts), after recur.
	Lasdo Nabe = "lasdo"
	// Godo is the transit context (tracts).
	Godo Nabe = "godo"
	// Exdo is the exit context (exacts).
	Exdo Nabe = "exdo"
	// Rexdo is the re-exit context (rexacts).
	Rexdo Nabe = "rexdo"
)

// Act is an action object invoked by its box in a fixed context.
type Act interface {
	// Name is the unique name of the act instance.
	Name() string
	// Nabe is the context the act runs in.
	Nabe() Nabe
	// Iops returns the act's input-output parameter map.
	Iops() map[string]any
	// Act invokes the action and propagates its return value.
	Act() (any, error)
}

// DeedFunc is a callable deed invoked with the act's iops.
type DeedFunc func(iops map[string]any) (any, error)

// Config carries everything an act maker needs. Name and Nabe fall
// back to kind defaults when empty.
type Config struct {
	Name string
	Iops map[string]any
	Nabe Nabe

	// Mine and Dock are the shared stores of the hosting boxwork.
	Mine *mine.Mine
	Dock dock.Dock
	// Tymth reads the current tyme for mark acts that stamp it.
	Tymth func() float64

	// Deed is the callable for deed acts; Src is the expression-string
	// alternative compiled on first call.
	Deed DeedFunc
	Src  string
	// Need backs need acts (preconditions).
	Need *need.Need
}

// Base carries the common act fields. Kinds embed it.
type Base struct {
	name string
	iops map[string]any
	nabe Nabe

	mine *mine.Mine
	dock dock.Dock
}

// newBase builds the common fields, generating a default name from the
// kind's instance counter when cfg.Name is empty.
func newBase(kind string, deflt Nabe, cfg Config) Base {
	name := cfg.Name
	if name == "" {
		name = nextName(kind)
	}
	nabe := cfg.Nabe
	if nabe == "" {
		nabe = deflt
	}
	iops := cfg.Iops
	if iops == nil {
		iops = make(map[string]any)
	}
	return Base{name: name, iops: iops, nabe: nabe, mine: cfg.Mine, dock: cfg.Dock}
}

// Name implements Act.
func (b *Base) Name() string { return b.name }

// Nabe implements Act.
func (b *Base) Nabe() Nabe { return b.nabe }

// Iops implements Act.
func (b *Base) Iops() map[string]any { return b.iops }

// Mine returns the shared mine.
func (b *Base) Mine() *mine.Mine { return b.mine }

// Dock returns the shared dock.
func (b *Base) Dock() dock.Dock { return b.dock }

// stringIop returns the string iop at key, or "" when absent.
func (b *Base) stringIop(key string) string {
	v, ok := b.iops[key]
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

// indexes tracks per-kind default-name counters.
var indexes = struct {
	sync.Mutex
	byKind map[string]int
}{byKind: make(map[string]int)}

func nextName(kind string) string {
	indexes.Lock()
	defer indexes.Unlock()
	idx := indexes.byKind[kind]
	indexes.byKind[kind] = idx + 1
	return kind + strconv.Itoa(idx)
}

// Maker constructs an act kind from a Config.
type Maker func(cfg Config) (Act, error)

// registry is the process-wide mapping from act kind name (and
// aliases) to maker, populated by static registration at init.
var registry = struct {
	sync.RWMutex
	makers map[string]Maker
}{makers: make(map[string]Maker)}

// Register declares an act kind under one or more names. Duplicate
// names fail loudly; registration is an init-time side effect.
func Register(maker Maker, names ...string) {
	registry.Lock()
	defer registry.Unlock()
	if len(names) == 0 {
		panic("acting: register with no names")
	}
	for _, name := range names {
		if _, dup := registry.makers[name]; dup {
			panic(fmt.Sprintf("acting: duplicate act kind %q", name))
		}
		registry.makers[name] = maker
	}
}

// Make constructs a registered act kind by name.
func Make(kind string, cfg Config) (Act, error) {
	registry.RLock()
	maker, ok := registry.makers[kind]
	registry.RUnlock()
	if !ok {
		return nil, fmt.Errorf("acting: unknown act kind %q", kind)
	}
	return maker(cfg)
}

// Registered reports whether kind names a registered act kind.
func Registered(kind string) bool {
	registry.RLock()
	defer registry.RUnlock()
	_, ok := registry.makers[kind]
	return ok
}

package boxing

import (
	"strconv"
	"sync"

	"github.com/smilemakc/boxflow/internal/acting"
	"github.com/smilemakc/boxflow/internal/hierr"
	"github.com/smilemakc/boxflow/internal/need"
)

// goindex numbers default goact names.
var goindex = struct {
	sync.Mutex
	idx int
}{}

func nextGoName() string {
	goindex.Lock()
	defer goindex.Unlock()
	name := "go" + strconv.Itoa(goindex.idx)
	goindex.idx++
	return name
}

// Goact is a transition act: it evaluates its need and, when the need
// holds, yields the resolved destination box. Goacts run only in the
// godo nabe.
type Goact struct {
	name string
	nabe acting.Nabe

	dest     *Box
	destName string
	need     *need.Need
}

// NewGoact creates a transition act toward dest (a resolved box or a
// name such as "next" left for Boxer.Resolve) guarded by nd. A nil nd
// always holds. Any nabe other than godo is invalid.
func NewGoact(name string, dest *Box, destName string, nd *need.Need, nabe acting.Nabe) (*Goact, error) {
	if name == "" {
		name = nextGoName()
	}
	if nabe == "" {
		nabe = acting.Godo
	}
	if nabe != acting.Godo {
		return nil, hierr.NewInvalidNabe(name, string(nabe))
	}
	if nd == nil {
		nd = need.True()
	}
	if destName == "" && dest == nil {
		destName = "next"
	}
	return &Goact{name: name, nabe: nabe, dest: dest, destName: destName, need: nd}, nil
}

// Name returns the goact's unique name.
func (g *Goact) Name() string { return g.name }

// Nabe returns godo.
func (g *Goact) Nabe() acting.Nabe { return g.nabe }

// Need returns the transition guard.
func (g *Goact) Need() *need.Need { return g.need }

// Dest returns the resolved destination, nil while unresolved.
func (g *Goact) Dest() *Box { return g.dest }

// DestName returns the unresolved destination name, empty once
// resolved.
func (g *Goact) DestName() string { return g.destName }

// Resolve binds the destination box.
func (g *Goact) Resolve(dest *Box) {
	g.dest = dest
	g.destName = ""
}

// Fire evaluates the guard. When it holds the resolved destination is
// returned with fired true; a still-unresolved destination is an
// UnresolvedDest error. Guard evaluation errors propagate for the
// caller to fail closed.
func (g *Goact) Fire() (dest *Box, fired bool, err error) {
	hold, err := g.need.Eval()
	if err != nil {
		return nil, false, err
	}
	if !hold {
		return nil, false, nil
	}
	if g.dest == nil {
		return nil, false, hierr.NewUnresolvedDest(g.name, g.destName)
	}
	return g.dest, true, nil
}

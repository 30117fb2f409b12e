// Package mine provides the shared keyed bag store of a boxwork. Bags
// carry a payload value plus the virtual tyme of their last mutation;
// the write-tyme is the sole ordering witness for the updated/changed
// guard conditions.
package mine

import (
	"github.com/smilemakc/boxflow/internal/hierr"
)

// Bag is a single store element: a payload value plus the hidden tyme
// of its last mutation. The tyme is unset until the first write.
type Bag struct {
	Value any

	tyme  float64
	tymed bool
}

// NewBag creates an empty bag with a nil payload and no write-tyme.
func NewBag() *Bag {
	return &Bag{}
}

// Tyme returns the tyme of the bag's last mutation. The second return
// is false until the bag has been written through the mine.
func (b *Bag) Tyme() (float64, bool) {
	return b.tyme, b.tymed
}

// Astuple returns the bag's visible field values in declared order,
// used as a content fingerprint by change marks. Hidden fields are
// excluded.
func (b *Bag) Astuple() []any {
	return []any{b.Value}
}

// stamp records tyme as the bag's mutation tyme. It runs before the
// written value becomes observable.
func (b *Bag) stamp(tyme float64) {
	b.tyme = tyme
	b.tymed = true
}

// Mine maps hierarchical keys to bags. All mutation happens on the
// scheduling goroutine between cooperative yield points, so the store
// carries no locking.
type Mine struct {
	tymth func() float64
	bags  map[Key]*Bag
}

// New creates an empty mine reading tyme through tymth. A nil tymth
// stamps writes at tyme zero until Wind rebinds it.
func New(tymth func() float64) *Mine {
	return &Mine{tymth: tymth, bags: make(map[Key]*Bag)}
}

// Wind rebinds the mine's tyme source.
func (m *Mine) Wind(tymth func() float64) {
	m.tymth = tymth
}

func (m *Mine) now() float64 {
	if m.tymth == nil {
		return 0
	}
	return m.tymth()
}

// Get returns the bag at key or a MissingKey error.
func (m *Mine) Get(key Key) (*Bag, error) {
	bag, ok := m.bags[key]
	if !ok {
		return nil, hierr.NewMissingKey(key.String())
	}
	return bag, nil
}

// Has reports whether a bag exists at key.
func (m *Mine) Has(key Key) bool {
	_, ok := m.bags[key]
	return ok
}

// Set inserts bag at key, replacing any previous bag. Setting the same
// bag again is a no-op.
func (m *Mine) Set(key Key, bag *Bag) {
	m.bags[key] = bag
}

// Ensure returns the bag at key, creating an empty one when absent.
func (m *Mine) Ensure(key Key) *Bag {
	bag, ok := m.bags[key]
	if !ok {
		bag = NewBag()
		m.bags[key] = bag
	}
	return bag
}

// Delete removes the bag at key if present.
func (m *Mine) Delete(key Key) {
	delete(m.bags, key)
}

// Write sets the payload of the bag at key, creating the bag when
// absent. The bag's tyme is stamped with the current tyme before the
// value becomes observable.
func (m *Mine) Write(key Key, value any) *Bag {
	bag := m.Ensure(key)
	bag.stamp(m.now())
	bag.Value = value
	return bag
}

// Len returns the number of bags in the mine.
func (m *Mine) Len() int {
	return len(m.bags)
}

package dock

import (
	"encoding/json"
	"errors"

	"github.com/tidwall/buntdb"

	"github.com/smilemakc/boxflow/internal/hierr"
	"github.com/smilemakc/boxflow/internal/mine"
)

// BuntDock is a file-backed Dock on buntdb: durable bags on disc
// without a database server. Values are stored as JSON bags.
type BuntDock struct {
	tymth func() float64
	db    *buntdb.DB
}

// NewBuntDock opens (or creates) a buntdb-backed dock at path. The
// special path ":memory:" keeps the store off disc.
func NewBuntDock(path string, tymth func() float64) (*BuntDock, error) {
	db, err := buntdb.Open(path)
	if err != nil {
		return nil, err
	}
	return &BuntDock{tymth: tymth, db: db}, nil
}

// Wind rebinds the dock's tyme source.
func (d *BuntDock) Wind(tymth func() float64) {
	d.tymth = tymth
}

// Put implements Dock.
func (d *BuntDock) Put(key mine.Key, value any) error {
	bag := Bag{Value: value}
	if d.tymth != nil {
		t := d.tymth()
		bag.Tyme = &t
	}
	raw, err := json.Marshal(bag)
	if err != nil {
		return err
	}
	return d.db.Update(func(tx *buntdb.Tx) error {
		_, _, err := tx.Set(key.String(), string(raw), nil)
		return err
	})
}

// Get implements Dock.
func (d *BuntDock) Get(key mine.Key) (Bag, error) {
	var raw string
	err := d.db.View(func(tx *buntdb.Tx) error {
		var err error
		raw, err = tx.Get(key.String())
		return err
	})
	if errors.Is(err, buntdb.ErrNotFound) {
		return Bag{}, hierr.NewMissingKey(key.String())
	}
	if err != nil {
		return Bag{}, err
	}
	var bag Bag
	if err := json.Unmarshal([]byte(raw), &bag); err != nil {
		return Bag{}, err
	}
	return bag, nil
}

// Has implements Dock.
func (d *BuntDock) Has(key mine.Key) (bool, error) {
	_, err := d.Get(key)
	if err == nil {
		return true, nil
	}
	var missing *hierr.MissingKeyError
	if errors.As(err, &missing) {
		return false, nil
	}
	return false, err
}

// Delete implements Dock.
func (d *BuntDock) Delete(key mine.Key) error {
	err := d.db.Update(func(tx *buntdb.Tx) error {
		_, err := tx.Delete(key.String())
		return err
	})
	if errors.Is(err, buntdb.ErrNotFound) {
		return nil
	}
	return err
}

// Close implements Dock.
func (d *BuntDock) Close() error {
	return d.db.Close()
}

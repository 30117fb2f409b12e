package boxing

import (
	"github.com/smilemakc/boxflow/internal/doing"
)

// BoxerDoer hosts a boxer on the doer scheduler: Enter preps the
// boxwork, each Recur runs one tick, and Exit winds the active pile
// down. Setting the doer's desire to exit or abort terminates the
// boxer at its next tick.
type BoxerDoer struct {
	doing.Base

	// Boxer is the hosted boxer.
	Boxer *Boxer
}

// NewBoxerDoer hosts boxer with the given tock.
func NewBoxerDoer(boxer *Boxer, tock float64) *BoxerDoer {
	d := &BoxerDoer{Base: doing.NewBase(tock), Boxer: boxer}
	boxer.SetDoer(d)
	return d
}

// Enter implements doing.Doer by prepping the boxwork. A boxer done at
// prep (failed initial gate) flags the doer done.
func (d *BoxerDoer) Enter() error {
	done, err := d.Boxer.Prep()
	if err != nil {
		return err
	}
	if done {
		d.SetDone(true)
	}
	return nil
}

// Recur implements doing.Doer by running one tick.
func (d *BoxerDoer) Recur(tyme float64) (bool, error) {
	if d.Boxer.Done() {
		return true, nil
	}
	return d.Boxer.Run()
}

// Exit implements doing.Doer by winding the boxwork down.
func (d *BoxerDoer) Exit() {
	_ = d.Boxer.Quit()
}

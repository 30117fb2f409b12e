package doing

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/smilemakc/boxflow/internal/tyming"
)

// step is the scheduler-internal next step of a deed.
type step string

const (
	stepEnter step = "enter"
	stepRecur step = "recur"
)

// Deed is the scheduler record for one doer: the doer, the earliest
// tyme it runs again, and its next step.
type Deed struct {
	Doer   Doer
	Retyme float64

	step step
}

// Config holds scheduler configuration.
type Config struct {
	// Tyme is the starting tyme.
	Tyme float64
	// Tick is the advance step of the virtual clock.
	Tick float64
	// Real aligns virtual tyme with the wall clock per tick.
	Real bool
	// Limit stops the run once elapsed tyme reaches it; zero means none.
	Limit float64
	// Logger receives scheduler events.
	Logger zerolog.Logger
}

// Scheduler steps doers over the virtual clock. Deeds execute in
// registration order; within a tick a doer runs at most once.
type Scheduler struct {
	*tyming.Tymist

	// Real aligns virtual tyme with the wall clock per tick.
	Real bool
	// Limit stops a Run once elapsed tyme reaches it; zero means none.
	Limit float64

	deeds []*Deed
	stop  bool
	log   zerolog.Logger
}

// NewScheduler creates a scheduler with its own tymist.
func NewScheduler(cfg Config) *Scheduler {
	return &Scheduler{
		Tymist: tyming.NewTymist(cfg.Tyme, cfg.Tick),
		Real:   cfg.Real,
		Limit:  cfg.Limit,
		log:    cfg.Logger,
	}
}

// Ready registers doers, appending one deed per doer eligible at the
// current tyme. Returns the scheduler's deed list.
func (s *Scheduler) Ready(doers ...Doer) []*Deed {
	for _, doer := range doers {
		s.deeds = append(s.deeds, &Deed{Doer: doer, Retyme: s.Tyme(), step: stepEnter})
	}
	return s.deeds
}

// Deeds returns the current deed list.
func (s *Scheduler) Deeds() []*Deed {
	return s.deeds
}

// Stop requests an external stop: the next Run loop iteration winds
// down as if the limit had been reached.
func (s *Scheduler) Stop() {
	s.stop = true
}

// Once processes every eligible deed once in registration order, then
// turns the clock by one tick. Doers that finish or desire out are
// removed from the deed list.
func (s *Scheduler) Once() error {
	var errs []error
	tyme := s.Tyme()
	kept := s.deeds[:0]
	for _, deed := range s.deeds {
		if tyme < deed.Retyme {
			kept = append(kept, deed)
			continue
		}
		removed, err := s.process(deed, tyme)
		if err != nil {
			errs = append(errs, err)
		}
		if !removed {
			kept = append(kept, deed)
		}
	}
	s.deeds = kept
	s.Turn()
	return errors.Join(errs...)
}

// process runs a deed's current step at tyme. It reports whether the
// deed left the schedule.
func (s *Scheduler) process(deed *Deed, tyme float64) (removed bool, err error) {
	doer := deed.Doer
	switch deed.step {
	case stepEnter:
		if err = doer.Enter(); err != nil {
			s.fail(doer, err)
			return true, err
		}
		doer.SetState(StateEntered)
		deed.step = stepRecur
		fallthrough
	case stepRecur:
		if doer.Done() || doer.Desire() != DesireRecur {
			s.retire(doer)
			return true, nil
		}
		done, err := doer.Recur(tyme)
		if err != nil {
			s.fail(doer, err)
			return true, err
		}
		doer.SetState(StateRecurring)
		if done {
			doer.SetDone(true)
		}
		deed.Retyme = tyme + doer.Tock()
	}
	return false, nil
}

// retire runs a doer's exit chain according to its desire and done
// flag: a normal exit sets done, an abort leaves done false and runs
// Close then Abort.
func (s *Scheduler) retire(doer Doer) {
	if doer.Desire() == DesireAbort {
		s.abort(doer)
		return
	}
	doer.SetDone(true)
	doer.SetState(StateExiting)
	doer.Exit()
	doer.SetState(StateExited)
}

// abort runs the abortive exit chain: Exit, Close, Abort. Done is left
// untouched.
func (s *Scheduler) abort(doer Doer) {
	doer.SetState(StateExiting)
	doer.Exit()
	doer.SetState(StateExited)
	doer.Close()
	doer.Abort()
	doer.SetState(StateAborted)
}

// fail aborts a doer whose step returned an error.
func (s *Scheduler) fail(doer Doer, err error) {
	s.log.Error().Err(err).Msg("doer step failed, aborting")
	s.abort(doer)
}

// Run registers doers and loops Once until the deed list drains, the
// limit is reached, or Stop is requested. Limit reach is not an error:
// remaining doers are wound down abortively (their exit chains run)
// and the loop returns. Errors from doer steps abort the erring doer
// and are joined into the returned error.
func (s *Scheduler) Run(doers []Doer, limit float64) error {
	if limit <= 0 {
		limit = s.Limit
	}
	runID := uuid.NewString()
	start := s.Tyme()
	s.stop = false
	s.Ready(doers...)

	s.log.Info().
		Str("run_id", runID).
		Float64("tyme", start).
		Float64("tick", s.Tick).
		Float64("limit", limit).
		Bool("real", s.Real).
		Int("doers", len(s.deeds)).
		Msg("run started")

	var errs []error
	for len(s.deeds) > 0 {
		if s.stop || (limit > 0 && s.Tyme()-start >= limit) {
			s.windDown()
			break
		}
		wall := time.Now()
		if err := s.Once(); err != nil {
			errs = append(errs, err)
		}
		if s.Real {
			s.pace(wall)
		}
	}

	s.log.Info().
		Str("run_id", runID).
		Float64("tyme", s.Tyme()).
		Msg("run ended")
	return errors.Join(errs...)
}

// windDown abortively exits every remaining deed, in order, at the
// current tyme.
func (s *Scheduler) windDown() {
	s.log.Info().Float64("tyme", s.Tyme()).Int("deeds", len(s.deeds)).
		Msg("winding down remaining deeds")
	for _, deed := range s.deeds {
		s.abort(deed.Doer)
	}
	s.deeds = nil
}

// pace sleeps the remainder of a tick of wall clock measured from
// start. The clock never fast-forwards: a late tick just starts the
// next one immediately.
func (s *Scheduler) pace(start time.Time) {
	span := time.Duration(s.Tick * float64(time.Second))
	if left := span - time.Since(start); left > 0 {
		time.Sleep(left)
	}
}

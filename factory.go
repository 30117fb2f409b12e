package boxflow

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/smilemakc/boxflow/internal/boxing"
	"github.com/smilemakc/boxflow/internal/config"
	"github.com/smilemakc/boxflow/internal/dock"
	"github.com/smilemakc/boxflow/internal/doing"
	"github.com/smilemakc/boxflow/internal/logger"
	"github.com/smilemakc/boxflow/internal/mine"
	"github.com/smilemakc/boxflow/internal/tyming"
)

// Config is the runtime configuration surface.
type Config = config.Config

// DockConfig selects and parameterizes the dock backend.
type DockConfig = config.DockConfig

// LoadConfig builds configuration from defaults, the optional YAML
// file at path, then BOXFLOW_* environment overrides.
func LoadConfig(path string) (*Config, error) {
	return config.Load(path)
}

// SetupLogger creates the runtime's zerolog logger at level.
func SetupLogger(level string) zerolog.Logger {
	return logger.Setup(level)
}

// NewTymist creates a virtual clock starting at tyme with tick.
func NewTymist(tyme, tick float64) *Tymist {
	return tyming.NewTymist(tyme, tick)
}

// NewTymer creates a tymer wound to tymth with duration.
func NewTymer(tymth Tymth, duration float64) *Tymer {
	return tyming.NewTymer(tymth, duration)
}

// NewMine creates an empty mine stamping writes through tymth.
func NewMine(tymth Tymth) *Mine {
	return mine.New(tymth)
}

// NewScheduler creates a doer scheduler with its own tymist.
func NewScheduler(cfg SchedulerConfig) *Scheduler {
	return doing.NewScheduler(cfg)
}

// SchedulerConfig holds scheduler construction parameters.
type SchedulerConfig = doing.Config

// NewDoerBase creates doer bookkeeping with the given tock, for
// embedding in concrete doers.
func NewDoerBase(tock float64) DoerBase {
	return doing.NewBase(tock)
}

// NewBoxer creates an empty boxer sharing mn and dk, reading tyme
// through tymth.
func NewBoxer(name string, mn *Mine, dk Dock, tymth Tymth, log zerolog.Logger) (*Boxer, error) {
	return boxing.NewBoxer(boxing.Config{
		Name:   name,
		Mine:   mn,
		Dock:   dk,
		Tymth:  tymth,
		Logger: log,
	})
}

// NewBoxerDoer hosts boxer on the scheduler with the given tock.
func NewBoxerDoer(boxer *Boxer, tock float64) *BoxerDoer {
	return boxing.NewBoxerDoer(boxer, tock)
}

// NewMemDock creates an in-memory dock, suitable for boxworks that do
// not persist bags.
func NewMemDock(tymth Tymth) *MemDock {
	return dock.NewMemDock(tymth)
}

// NewFileDock opens (or creates) a buntdb-backed dock at path.
func NewFileDock(path string, tymth Tymth) (*BuntDock, error) {
	return dock.NewBuntDock(path, tymth)
}

// NewPostgresDock connects a Postgres-backed dock at dsn and ensures
// its schema.
func NewPostgresDock(dsn string, tymth Tymth) (*BunDock, error) {
	d := dock.NewBunDock(dsn, tymth)
	if err := d.InitSchema(context.Background()); err != nil {
		return nil, err
	}
	return d, nil
}

// OpenDock builds the dock selected by cfg.
func OpenDock(cfg DockConfig, tymth Tymth) (Dock, error) {
	switch cfg.Backend {
	case "", "memory":
		return dock.NewMemDock(tymth), nil
	case "file":
		return dock.NewBuntDock(cfg.Path, tymth)
	case "postgres":
		return NewPostgresDock(cfg.DSN, tymth)
	default:
		return nil, fmt.Errorf("unknown dock backend %q", cfg.Backend)
	}
}

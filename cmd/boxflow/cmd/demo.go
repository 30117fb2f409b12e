package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/smilemakc/boxflow"
)

var demoLimit float64

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run the built-in signal-lamp boxwork",
	Long: `Builds a small boxwork (a signal lamp cycling red and green on
elapsed-tyme transitions), hosts it on the scheduler, and runs it to
the tyme limit.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := boxflow.LoadConfig(configPath)
		if err != nil {
			return err
		}
		if logLevel != "" {
			cfg.LogLevel = logLevel
		}
		log := boxflow.SetupLogger(cfg.LogLevel)

		sched := boxflow.NewScheduler(boxflow.SchedulerConfig{
			Tick:   cfg.Tick,
			Real:   cfg.Real,
			Limit:  demoLimit,
			Logger: log,
		})
		tymth := sched.Tymen()

		dk, err := boxflow.OpenDock(cfg.Dock, tymth)
		if err != nil {
			return err
		}
		defer dk.Close()

		mn := boxflow.NewMine(tymth)
		boxer, err := boxflow.NewBoxer("lamp", mn, dk, tymth, log)
		if err != nil {
			return err
		}
		lamp := func(color string) boxflow.DeedFunc {
			return func(iops map[string]any) (any, error) {
				fmt.Printf("%6.2f  lamp %s\n", tymth(), color)
				return nil, nil
			}
		}
		err = boxer.Make(func(m *boxflow.Maker) error {
			if _, err := m.Bx("signal", ""); err != nil {
				return err
			}
			if _, err := m.Bx("red", "signal"); err != nil {
				return err
			}
			if _, err := m.DoFunc(lamp("red")); err != nil {
				return err
			}
			redToGreen, err := m.On("elapsed", "2", "")
			if err != nil {
				return err
			}
			if _, err := m.GoWhen("green", redToGreen); err != nil {
				return err
			}
			if _, err := m.Bx("green", "signal"); err != nil {
				return err
			}
			if _, err := m.DoFunc(lamp("green")); err != nil {
				return err
			}
			greenToRed, err := m.On("elapsed", "1", "")
			if err != nil {
				return err
			}
			_, err = m.GoWhen("red", greenToRed)
			return err
		})
		if err != nil {
			return err
		}

		doer := boxflow.NewBoxerDoer(boxer, cfg.Tick)
		return sched.Run([]boxflow.Doer{doer}, demoLimit)
	},
}

func init() {
	demoCmd.Flags().Float64Var(&demoLimit, "limit", 10, "tyme limit of the demo run")
	rootCmd.AddCommand(demoCmd)
}

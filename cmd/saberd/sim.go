package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"saberd/internal/audio"
	"saberd/internal/config"
	"saberd/internal/input"
	"saberd/internal/led"
	"saberd/internal/monitor"
	"saberd/internal/profile"
	"saberd/internal/saber"
	"saberd/internal/sim"
)

type simOptions struct {
	Script   string
	Duration time.Duration
	Every    int
}

func newSimCmd(configPath *string) *cobra.Command {
	var opts simOptions
	cmd := &cobra.Command{
		Use:   "sim",
		Short: "Run the control loop against simulated hardware",
		Long: `sim drives the engine with a simulated gyro and scripted buttons in virtual
time. Audio and LEDs are in-memory. The profile document is copied first so
profile changes do not touch the real file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return fmt.Errorf("config load failed: %w", err)
			}
			s, err := runSim(cfg, opts, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			printSimSummary(cmd.OutOrStdout(), s)
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.Script, "script", "", "YAML scenario script (default: built-in swing session)")
	cmd.Flags().DurationVar(&opts.Duration, "duration", 10*time.Second, "Virtual run time without a script")
	cmd.Flags().IntVar(&opts.Every, "every", 24, "Print a monitor line every N ticks (0 disables)")
	return cmd
}

// copyProfiles puts a private copy of the profile document in a temp dir.
func copyProfiles(src string) (string, func(), error) {
	b, err := os.ReadFile(src)
	if err != nil {
		return "", nil, err
	}
	dir, err := os.MkdirTemp("", "saberd-sim-")
	if err != nil {
		return "", nil, err
	}
	cleanup := func() { _ = os.RemoveAll(dir) }
	dst := filepath.Join(dir, filepath.Base(src))
	if err := os.WriteFile(dst, b, 0o644); err != nil {
		cleanup()
		return "", nil, err
	}
	return dst, cleanup, nil
}

func runSim(cfg config.Config, opts simOptions, out io.Writer) (simSummary, error) {
	path, cleanup, err := copyProfiles(cfg.ProfilesPath)
	if err != nil {
		return simSummary{}, fmt.Errorf("profile copy failed: %w", err)
	}
	defer cleanup()

	store, err := profile.Open(path, cfg.SoundsDir)
	if err != nil {
		return simSummary{}, fmt.Errorf("profile load failed: %w", err)
	}

	duration := opts.Duration
	if duration <= 0 {
		duration = 10 * time.Second
	}
	var src sim.RateSource = sim.SwingSim{Burst: 800 * time.Millisecond, Rest: 1200 * time.Millisecond}
	power := []time.Duration{500 * time.Millisecond}
	if duration > 4*time.Second {
		power = append(power, duration-3*time.Second)
	}
	var aux []time.Duration

	if opts.Script != "" {
		script, err := sim.LoadScenarioScript(opts.Script)
		if err != nil {
			return simSummary{}, fmt.Errorf("scenario load failed: %w", err)
		}
		scn, err := sim.NewScenario(script)
		if err != nil {
			return simSummary{}, fmt.Errorf("scenario invalid: %w", err)
		}
		src = scn
		duration = scn.Duration()
		power = scn.PressTimes(sim.ButtonPower)
		aux = scn.PressTimes(sim.ButtonAux)
	}

	clk := &sim.Clock{}
	hw := saber.Hardware{
		Audio:     audio.NewNull(),
		Blade:     led.NewBuffer(cfg.Blade.Pixels),
		Indicator: led.NewBuffer(1),
		Gyro:      sim.Gyro{Clock: clk, Source: src},
		Power:     input.NewButton("power", &sim.ScriptedButton{Clock: clk, At: power}),
		Aux:       input.NewButton("aux", &sim.ScriptedButton{Clock: clk, At: aux}),
	}
	sc := saber.ConfigFrom(cfg)
	sc.Settle = 0

	m := saber.New(sc, hw, store)
	if err := m.Boot(); err != nil {
		log.Printf("sim: %v", err)
	}

	sum := newSimSummary(m.Snapshot())
	var dt time.Duration
	for tick := 0; clk.Elapsed() < duration; tick++ {
		d := m.Tick(dt)
		snap := m.Snapshot()
		sum.observe(snap, d)
		if opts.Every > 0 && tick%opts.Every == 0 {
			fmt.Fprintf(out, "%8s %s\n", clk.Elapsed().Truncate(time.Millisecond), monitor.Render(snap))
		}
		clk.Advance(d)
		dt = d
	}
	m.Shutdown()
	return sum, nil
}

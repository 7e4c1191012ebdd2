package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"saberd/internal/config"
	"saberd/internal/profile"
	"saberd/internal/saber"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:   "saberd",
		Short: "Lightsaber controller daemon",
		Long: `saberd drives a saber hilt: buttons, a gyro, an addressable LED blade and
layered audio. Without a subcommand it runs the control loop.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDaemon(cmd.Context(), configPath)
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", "/etc/saberd.yaml", "Path to YAML config")

	root.AddCommand(
		&cobra.Command{
			Use:   "run",
			Short: "Run the control loop until interrupted",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runDaemon(cmd.Context(), configPath)
			},
		},
		&cobra.Command{
			Use:   "profiles",
			Short: "List profiles and mark the saved selection",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				store, err := openStore(configPath)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				for i, name := range store.List() {
					mark := " "
					if i == store.Index() {
						mark = "*"
					}
					fmt.Fprintf(out, "%s %d %s\n", mark, i, name)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "select <index>",
			Short: "Select a profile and persist it as the saved selection",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				i, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("invalid index %q", args[0])
				}
				store, err := openStore(configPath)
				if err != nil {
					return err
				}
				p, err := store.Select(i)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "selected %d %s\n", store.Index(), p.Name)
				return nil
			},
		},
		newSimCmd(&configPath),
	)
	return root
}

func openStore(configPath string) (*profile.Store, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("config load failed: %w", err)
	}
	store, err := profile.Open(cfg.ProfilesPath, cfg.SoundsDir)
	if err != nil {
		return nil, fmt.Errorf("profile load failed: %w", err)
	}
	return store, nil
}

func runDaemon(parent context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}
	store, err := profile.Open(cfg.ProfilesPath, cfg.SoundsDir)
	if err != nil {
		return fmt.Errorf("profile load failed: %w", err)
	}

	ctx, cancel := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	hw := openHardware(cfg)
	defer hw.Close()

	m := saber.New(saber.ConfigFrom(cfg), hw.Hardware, store)
	log.Printf("saberd starting profiles=%s sounds=%s", store.Path(), cfg.SoundsDir)
	if err := m.Boot(); err != nil {
		m.Shutdown()
		return fmt.Errorf("soundfont load failed: %w", err)
	}

	err = m.Run(ctx)
	m.Shutdown()
	log.Printf("saberd stopping")
	if err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/KirkDiggler/rpg-toolkit/events"
	"github.com/caarlos0/env/v11"
	"github.com/spf13/cobra"

	"github.com/rendaletaas/dndCombatSim/internal/loader"
	"github.com/rendaletaas/dndCombatSim/internal/orchestrators/encounter"
	"github.com/rendaletaas/dndCombatSim/internal/pkg/clock"
	"github.com/rendaletaas/dndCombatSim/internal/pkg/idgen"
	"github.com/rendaletaas/dndCombatSim/internal/transcript"
)

// envConfig carries environment-variable defaults; flags override them.
type envConfig struct {
	DataDir   string `env:"SIM_DATA_DIR" envDefault:"data"`
	Seed      int64  `env:"SIM_SEED" envDefault:"0"`
	MaxRounds int    `env:"SIM_MAX_ROUNDS" envDefault:"0"`
	Trials    int    `env:"SIM_TRIALS" envDefault:"1000"`
	Verbose   bool   `env:"SIM_VERBOSE" envDefault:"false"`
}

func loadEnvConfig() (envConfig, error) {
	var cfg envConfig
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse environment: %w", err)
	}
	return cfg, nil
}

var (
	flagDataDir   string
	flagSeed      int64
	flagMaxRounds int
	flagVerbose   bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a single encounter and print the transcript",
	RunE:  runEncounter,
}

func init() {
	runCmd.Flags().StringVar(&flagDataDir, "data", "", "data directory (default $SIM_DATA_DIR or ./data)")
	runCmd.Flags().Int64Var(&flagSeed, "seed", 0, "random seed (0 = derive from clock)")
	runCmd.Flags().IntVar(&flagMaxRounds, "rounds", 0, "round cap (0 = engine default)")
	runCmd.Flags().BoolVar(&flagVerbose, "verbose", false, "debug logging")
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func runEncounter(cmd *cobra.Command, args []string) error {
	cfg, err := loadEnvConfig()
	if err != nil {
		return err
	}
	if flagDataDir != "" {
		cfg.DataDir = flagDataDir
	}
	if flagSeed != 0 {
		cfg.Seed = flagSeed
	}
	if flagMaxRounds != 0 {
		cfg.MaxRounds = flagMaxRounds
	}
	logger := newLogger(flagVerbose || cfg.Verbose)

	catalog, err := loader.LoadCatalog(cfg.DataDir)
	if err != nil {
		return err
	}
	roster, err := loader.LoadRoster(cfg.DataDir, catalog)
	if err != nil {
		return err
	}

	svc, err := encounter.NewOrchestrator(&encounter.Config{
		IDGenerator: idgen.NewPrefixed("enc"),
		Clock:       clock.New(),
		Logger:      logger,
	})
	if err != nil {
		return err
	}

	bus := events.NewBus()
	writer := transcript.NewWriter(bus, cmd.OutOrStdout())
	defer writer.Close()

	out, err := svc.RunEncounter(cmd.Context(), &encounter.RunEncounterInput{
		Roster:    roster,
		Catalog:   catalog,
		Seed:      cfg.Seed,
		MaxRounds: cfg.MaxRounds,
		Bus:       bus,
	})
	if err != nil {
		return err
	}

	result := "stalemate"
	switch {
	case out.Outcome.Winner != "":
		result = fmt.Sprintf("%s win", out.Outcome.Winner)
	case !out.Outcome.Stalemate:
		result = "mutual destruction"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "\nresult: %s in %d rounds (seed %d)\n", result, out.Outcome.Rounds, out.Seed)
	return nil
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rendaletaas/dndCombatSim/internal/loader"
	"github.com/rendaletaas/dndCombatSim/internal/orchestrators/encounter"
	"github.com/rendaletaas/dndCombatSim/internal/pkg/clock"
	"github.com/rendaletaas/dndCombatSim/internal/pkg/idgen"
)

var (
	flagBatchData    string
	flagBatchSeed    int64
	flagBatchRounds  int
	flagBatchTrials  int
	flagBatchVerbose bool
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Run many trials of the encounter and report win rates",
	RunE:  runBatch,
}

func init() {
	batchCmd.Flags().StringVar(&flagBatchData, "data", "", "data directory (default $SIM_DATA_DIR or ./data)")
	batchCmd.Flags().Int64Var(&flagBatchSeed, "seed", 0, "base random seed (0 = derive from clock)")
	batchCmd.Flags().IntVar(&flagBatchRounds, "rounds", 0, "round cap per trial (0 = engine default)")
	batchCmd.Flags().IntVar(&flagBatchTrials, "trials", 0, "number of trials (default $SIM_TRIALS or 1000)")
	batchCmd.Flags().BoolVar(&flagBatchVerbose, "verbose", false, "debug logging")
}

func runBatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadEnvConfig()
	if err != nil {
		return err
	}
	if flagBatchData != "" {
		cfg.DataDir = flagBatchData
	}
	if flagBatchSeed != 0 {
		cfg.Seed = flagBatchSeed
	}
	if flagBatchRounds != 0 {
		cfg.MaxRounds = flagBatchRounds
	}
	if flagBatchTrials != 0 {
		cfg.Trials = flagBatchTrials
	}
	logger := newLogger(flagBatchVerbose || cfg.Verbose)

	catalog, err := loader.LoadCatalog(cfg.DataDir)
	if err != nil {
		return err
	}
	roster, err := loader.LoadRoster(cfg.DataDir, catalog)
	if err != nil {
		return err
	}

	svc, err := encounter.NewOrchestrator(&encounter.Config{
		IDGenerator: idgen.NewPrefixed("batch"),
		Clock:       clock.New(),
		Logger:      logger,
	})
	if err != nil {
		return err
	}

	out, err := svc.RunBatch(cmd.Context(), &encounter.RunBatchInput{
		Roster:    roster,
		Catalog:   catalog,
		Trials:    cfg.Trials,
		Seed:      cfg.Seed,
		MaxRounds: cfg.MaxRounds,
	})
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "trials:             %d (base seed %d)\n", out.Trials, out.Seed)
	fmt.Fprintf(w, "party win rate:     %.1f%%\n", out.PartyWinRate*100)
	for side, count := range out.Wins {
		fmt.Fprintf(w, "wins (%s):       %d\n", side, count)
	}
	fmt.Fprintf(w, "stalemates:         %d\n", out.Stalemates)
	fmt.Fprintf(w, "mutual destruction: %d\n", out.MutualDestructions)
	fmt.Fprintf(w, "average rounds:     %.1f\n", out.AvgRounds)
	fmt.Fprintf(w, "elapsed:            %s\n", out.Duration)
	return nil
}

// Package encounter implements the orchestrator that runs combat
// encounters: single fights for transcripts, batches for difficulty
// estimation.
package encounter

//go:generate mockgen -destination=mock/mock_service.go -package=encountermock github.com/rendaletaas/dndCombatSim/internal/orchestrators/encounter Service

import (
	"context"
	"log/slog"
	"sync"

	"github.com/rendaletaas/dndCombatSim/internal/engine"
	"github.com/rendaletaas/dndCombatSim/internal/entities"
	"github.com/rendaletaas/dndCombatSim/internal/errors"
	"github.com/rendaletaas/dndCombatSim/internal/pkg/clock"
	"github.com/rendaletaas/dndCombatSim/internal/pkg/idgen"
	"github.com/rendaletaas/dndCombatSim/internal/pkg/roller"
)

// Service defines the interface for encounter operations
type Service interface {
	// RunEncounter plays a single fight to completion
	RunEncounter(ctx context.Context, input *RunEncounterInput) (*RunEncounterOutput, error)

	// RunBatch runs many independent trials of the same fight and
	// aggregates win rates
	RunBatch(ctx context.Context, input *RunBatchInput) (*RunBatchOutput, error)
}

// Config holds the dependencies for the encounter orchestrator
type Config struct {
	IDGenerator idgen.Generator
	Clock       clock.Clock
	Logger      *slog.Logger
	// Policy overrides the engine's default target selection. Optional.
	Policy engine.TargetPolicy
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	if c.IDGenerator == nil {
		vb.RequiredField("IDGenerator")
	}
	if c.Clock == nil {
		vb.RequiredField("Clock")
	}

	return vb.Build()
}

type orchestrator struct {
	idGen  idgen.Generator
	clock  clock.Clock
	log    *slog.Logger
	policy engine.TargetPolicy
}

// NewOrchestrator creates a new encounter orchestrator with the provided dependencies
func NewOrchestrator(cfg *Config) (Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &orchestrator{
		idGen:  cfg.IDGenerator,
		clock:  cfg.Clock,
		log:    logger,
		policy: cfg.Policy,
	}, nil
}

func (o *orchestrator) RunEncounter(ctx context.Context, input *RunEncounterInput) (*RunEncounterOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	vb := errors.NewValidationBuilder()
	if len(input.Roster) == 0 {
		vb.RequiredField("Roster")
	}
	if input.Catalog == nil {
		vb.RequiredField("Catalog")
	}
	if err := vb.Build(); err != nil {
		return nil, err
	}

	seed := input.Seed
	if seed == 0 {
		seed = o.clock.Now().UnixNano()
	}

	enc, err := engine.NewEncounter(&engine.EncounterConfig{
		Roster:    input.Roster,
		Catalog:   input.Catalog,
		Roller:    roller.NewSeeded(seed),
		Bus:       input.Bus,
		Logger:    o.log,
		MaxRounds: input.MaxRounds,
		Policy:    o.policy,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to build encounter")
	}

	id := o.idGen.Generate()
	start := o.clock.Now()
	o.log.Info("running encounter",
		"encounter_id", id,
		"seed", seed,
		"combatants", len(input.Roster))

	outcome, err := enc.Run(ctx)
	if err != nil {
		return nil, errors.Wrapf(err, "encounter %s aborted", id)
	}

	duration := o.clock.Now().Sub(start)
	o.log.Info("encounter finished",
		"encounter_id", id,
		"winner", string(outcome.Winner),
		"stalemate", outcome.Stalemate,
		"rounds", outcome.Rounds,
		"duration", duration)

	return &RunEncounterOutput{
		EncounterID: id,
		Seed:        seed,
		Outcome:     outcome,
		Records:     enc.Records(),
		Duration:    duration,
	}, nil
}

func (o *orchestrator) RunBatch(ctx context.Context, input *RunBatchInput) (*RunBatchOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	vb := errors.NewValidationBuilder()
	if len(input.Roster) == 0 {
		vb.RequiredField("Roster")
	}
	if input.Catalog == nil {
		vb.RequiredField("Catalog")
	}
	if input.Trials <= 0 {
		vb.InvalidField("Trials", "must be positive")
	}
	if err := vb.Build(); err != nil {
		return nil, err
	}

	seed := input.Seed
	if seed == 0 {
		seed = o.clock.Now().UnixNano()
	}

	id := o.idGen.Generate()
	start := o.clock.Now()
	o.log.Info("running batch",
		"batch_id", id,
		"trials", input.Trials,
		"seed", seed)

	// Trials share nothing: each goroutine gets cloned combatants and
	// its own derived seed.
	var (
		wg         sync.WaitGroup
		mu         sync.Mutex
		firstErr   error
		wins       = make(map[entities.Side]int)
		stalemates int
		mutual     int
		roundsSum  int
	)

	for i := 0; i < input.Trials; i++ {
		wg.Add(1)
		go func(trial int) {
			defer wg.Done()

			clones := make([]*entities.Combatant, len(input.Roster))
			for j, c := range input.Roster {
				clones[j] = c.Clone()
			}

			enc, err := engine.NewEncounter(&engine.EncounterConfig{
				Roster:    clones,
				Catalog:   input.Catalog,
				Roller:    roller.NewSeeded(seed + int64(trial)),
				Logger:    o.log,
				MaxRounds: input.MaxRounds,
				Policy:    o.policy,
			})
			if err == nil {
				var outcome *engine.Outcome
				outcome, err = enc.Run(ctx)
				if err == nil {
					mu.Lock()
					roundsSum += outcome.Rounds
					switch {
					case outcome.Stalemate:
						stalemates++
					case outcome.Winner == "":
						mutual++
					default:
						wins[outcome.Winner]++
					}
					mu.Unlock()
					return
				}
			}

			mu.Lock()
			if firstErr == nil {
				firstErr = err
			}
			mu.Unlock()
		}(i)
	}
	wg.Wait()

	if firstErr != nil {
		return nil, errors.Wrapf(firstErr, "batch %s aborted", id)
	}

	duration := o.clock.Now().Sub(start)
	out := &RunBatchOutput{
		BatchID:            id,
		Seed:               seed,
		Trials:             input.Trials,
		Wins:               wins,
		Stalemates:         stalemates,
		MutualDestructions: mutual,
		PartyWinRate:       float64(wins[entities.SideParty]) / float64(input.Trials),
		AvgRounds:          float64(roundsSum) / float64(input.Trials),
		Duration:           duration,
	}

	o.log.Info("batch finished",
		"batch_id", id,
		"party_win_rate", out.PartyWinRate,
		"stalemates", out.Stalemates,
		"avg_rounds", out.AvgRounds,
		"duration", duration)

	return out, nil
}

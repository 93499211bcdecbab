package encounter

import (
	"time"

	"github.com/KirkDiggler/rpg-toolkit/events"

	"github.com/rendaletaas/dndCombatSim/internal/engine"
	"github.com/rendaletaas/dndCombatSim/internal/entities"
)

// RunEncounterInput is the input for RunEncounter
type RunEncounterInput struct {
	// Roster is the full set of combatants on both sides. The orchestrator
	// mutates these; pass clones if you need the originals afterward.
	Roster  []*entities.Combatant
	Catalog *entities.Catalog
	// Seed drives every random decision; 0 derives one from the clock.
	Seed int64
	// MaxRounds caps the fight; 0 uses the engine default.
	MaxRounds int
	// Bus, when set, receives the event stream as it happens (transcript
	// writers subscribe here). A fresh internal bus is used when nil.
	Bus events.EventBus
}

// RunEncounterOutput is the output for RunEncounter
type RunEncounterOutput struct {
	EncounterID string
	// Seed is the seed actually used; rerunning with it replays the
	// encounter exactly.
	Seed    int64
	Outcome *engine.Outcome
	// Records is the full ordered event stream of the fight.
	Records  []*engine.Record
	Duration time.Duration
}

// RunBatchInput is the input for RunBatch
type RunBatchInput struct {
	Roster  []*entities.Combatant
	Catalog *entities.Catalog
	// Trials is how many independent encounters to run.
	Trials int
	// Seed seeds trial i with Seed+i; 0 derives a base from the clock.
	Seed      int64
	MaxRounds int
}

// RunBatchOutput is the output for RunBatch
type RunBatchOutput struct {
	BatchID string
	Seed    int64
	Trials  int

	// Wins counts decisive results per side.
	Wins       map[entities.Side]int
	Stalemates int
	// MutualDestructions counts fights where both sides dropped on the
	// same turn.
	MutualDestructions int

	// PartyWinRate is Wins[party] / Trials.
	PartyWinRate float64
	AvgRounds    float64
	Duration     time.Duration
}

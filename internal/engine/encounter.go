// Package engine implements the combat core: initiative and turn
// scheduling, weighted action selection, attack and save resolution, and
// condition and resource tracking. One Encounter value runs one fight on
// a single goroutine; batches run many Encounters in parallel, each with
// its own roster copies and seeded roller.
package engine

import (
	"log/slog"

	"github.com/KirkDiggler/rpg-toolkit/dice"
	"github.com/KirkDiggler/rpg-toolkit/events"

	"github.com/rendaletaas/dndCombatSim/internal/entities"
	"github.com/rendaletaas/dndCombatSim/internal/errors"
)

// DefaultMaxRounds caps an encounter that fails to resolve decisively.
const DefaultMaxRounds = 100

// EncounterConfig configures a single encounter run.
type EncounterConfig struct {
	Roster  []*entities.Combatant
	Catalog *entities.Catalog
	// Roller supplies every random decision in the encounter. Pass a
	// seeded roller for reproducible runs.
	Roller dice.Roller
	// Bus receives the event stream; a fresh bus is created when nil.
	Bus    events.EventBus
	Logger *slog.Logger
	// MaxRounds bounds the fight; 0 means DefaultMaxRounds.
	MaxRounds int
	// Policy picks targets; nil means the lowest-HP-fraction default.
	Policy TargetPolicy
}

// Validate ensures the config has everything an encounter needs.
func (cfg *EncounterConfig) Validate() error {
	if cfg == nil {
		return errors.InvalidArgument("config is required")
	}

	vb := errors.NewValidationBuilder()
	if len(cfg.Roster) == 0 {
		vb.RequiredField("Roster")
	}
	if cfg.Catalog == nil {
		vb.RequiredField("Catalog")
	}
	if cfg.Roller == nil {
		vb.RequiredField("Roller")
	}

	seen := make(map[string]bool)
	sides := make(map[entities.Side]bool)
	for _, c := range cfg.Roster {
		if seen[c.Name] {
			vb.Fieldf("Roster", "duplicate combatant name %q", c.Name)
		}
		seen[c.Name] = true
		sides[c.Team.Side()] = true
		if c.CurHP < 0 || c.CurHP > c.MaxHP {
			vb.Fieldf("Roster", "%s: current HP %d outside [0, %d]", c.Name, c.CurHP, c.MaxHP)
		}
	}
	if len(cfg.Roster) > 0 && len(sides) < 2 {
		vb.Field("Roster", "needs combatants on both sides")
	}

	return vb.Build()
}

// Encounter is the state machine for one fight. Not safe for concurrent
// use; all mutation happens on the calling goroutine.
type Encounter struct {
	roster  []*entities.Combatant
	byName  map[string]*entities.Combatant
	catalog *entities.Catalog
	roller  dice.Roller
	bus     events.EventBus
	log     *slog.Logger
	policy  TargetPolicy

	maxRounds int
	round     int
	// order is the initiative order; dead combatants are removed.
	order   []*entities.Combatant
	records []*Record
}

// NewEncounter builds an encounter from a validated config.
func NewEncounter(cfg *EncounterConfig) (*Encounter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	bus := cfg.Bus
	if bus == nil {
		bus = events.NewBus()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	maxRounds := cfg.MaxRounds
	if maxRounds <= 0 {
		maxRounds = DefaultMaxRounds
	}
	policy := cfg.Policy
	if policy == nil {
		policy = NewLowestHPPolicy()
	}

	byName := make(map[string]*entities.Combatant, len(cfg.Roster))
	for _, c := range cfg.Roster {
		byName[c.Name] = c
	}

	return &Encounter{
		roster:    cfg.Roster,
		byName:    byName,
		catalog:   cfg.Catalog,
		roller:    cfg.Roller,
		bus:       bus,
		log:       logger,
		policy:    policy,
		maxRounds: maxRounds,
	}, nil
}

// Bus exposes the event bus so collaborators can subscribe before Run.
func (e *Encounter) Bus() events.EventBus {
	return e.bus
}

// Records returns the ordered event stream accumulated so far.
func (e *Encounter) Records() []*Record {
	return e.records
}

// Lookup returns the combatant with the given name.
func (e *Encounter) Lookup(name string) (*entities.Combatant, error) {
	c, ok := e.byName[name]
	if !ok {
		return nil, errors.NotFoundf("combatant %s not found", name)
	}
	return c, nil
}

// hostilesOf returns the non-defeated opponents of the given combatant.
func (e *Encounter) hostilesOf(c *entities.Combatant) []*entities.Combatant {
	var out []*entities.Combatant
	for _, other := range e.roster {
		if other.Team.Hostile(c.Team) && !other.Defeated() {
			out = append(out, other)
		}
	}
	return out
}

// alliesOf returns the non-defeated friendlies of the combatant,
// excluding the combatant itself.
func (e *Encounter) alliesOf(c *entities.Combatant) []*entities.Combatant {
	var out []*entities.Combatant
	for _, other := range e.roster {
		if other == c || other.Team.Hostile(c.Team) {
			continue
		}
		if !other.Defeated() {
			out = append(out, other)
		}
	}
	return out
}

// Outcome reports how an encounter ended.
type Outcome struct {
	// Winner is set for a decisive result, empty on stalemate.
	Winner entities.Side
	// Stalemate marks a fight stopped at the round cap with both sides
	// still standing.
	Stalemate bool
	// Rounds is the number of rounds elapsed.
	Rounds int

	Survivors   map[entities.Side][]string
	Dead        map[entities.Side][]string
	Unconscious map[entities.Side][]string
}

// snapshotOutcome fills the per-side rosters from current state.
func (e *Encounter) snapshotOutcome(winner entities.Side, stalemate bool) *Outcome {
	out := &Outcome{
		Winner:      winner,
		Stalemate:   stalemate,
		Rounds:      e.round,
		Survivors:   make(map[entities.Side][]string),
		Dead:        make(map[entities.Side][]string),
		Unconscious: make(map[entities.Side][]string),
	}
	for _, c := range e.roster {
		side := c.Team.Side()
		switch {
		case c.IsDead():
			out.Dead[side] = append(out.Dead[side], c.Name)
		case c.CurHP == 0:
			out.Unconscious[side] = append(out.Unconscious[side], c.Name)
		default:
			out.Survivors[side] = append(out.Survivors[side], c.Name)
		}
	}
	return out
}

// sideDefeated reports whether every member of the side is out of the
// fight: dead, at zero HP, or fled.
func (e *Encounter) sideDefeated(side entities.Side) bool {
	for _, c := range e.roster {
		if c.Team.Side() != side {
			continue
		}
		if !c.Defeated() {
			return false
		}
	}
	return true
}

// checkTermination returns the outcome if the fight is over, else nil.
func (e *Encounter) checkTermination() *Outcome {
	partyDown := e.sideDefeated(entities.SideParty)
	foesDown := e.sideDefeated(entities.SideFoes)

	switch {
	case partyDown && foesDown:
		// Mutual destruction still ends the fight; nobody wins.
		return e.snapshotOutcome("", false)
	case foesDown:
		return e.snapshotOutcome(entities.SideParty, false)
	case partyDown:
		return e.snapshotOutcome(entities.SideFoes, false)
	default:
		return nil
	}
}

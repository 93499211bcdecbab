package engine

import (
	"sort"

	"github.com/KirkDiggler/rpg-toolkit/dice"

	"github.com/rendaletaas/dndCombatSim/internal/entities"
	"github.com/rendaletaas/dndCombatSim/internal/errors"
)

//go:generate mockgen -destination=mock/mock_policy.go -package=enginemock github.com/rendaletaas/dndCombatSim/internal/engine TargetPolicy

// TargetPolicy picks one target from a legal candidate set. The engine
// ships a lowest-HP-fraction default; swap it to model smarter or
// dumber combatants.
type TargetPolicy interface {
	Pick(r dice.Roller, action *entities.ActionDef, candidates []*entities.Combatant) (*entities.Combatant, error)
}

// lowestHPPolicy focuses offense on whoever is closest to dropping:
// lowest current-HP fraction, uniform among ties. Non-offensive actions
// pick uniformly.
type lowestHPPolicy struct{}

// NewLowestHPPolicy returns the default target policy.
func NewLowestHPPolicy() TargetPolicy {
	return &lowestHPPolicy{}
}

func (p *lowestHPPolicy) Pick(r dice.Roller, action *entities.ActionDef, candidates []*entities.Combatant) (*entities.Combatant, error) {
	if len(candidates) == 0 {
		return nil, errors.InvalidArgument("empty candidate set")
	}

	pool := candidates
	if action.OffensiveToward() {
		best := candidates[0].HPFraction()
		for _, c := range candidates[1:] {
			if f := c.HPFraction(); f < best {
				best = f
			}
		}
		pool = pool[:0:0]
		for _, c := range candidates {
			if c.HPFraction() == best {
				pool = append(pool, c)
			}
		}
	}

	idx, err := UniformPick(r, len(pool))
	if err != nil {
		return nil, err
	}
	return pool[idx], nil
}

// choice is a selected action with its resolved target.
type choice struct {
	def    *entities.ActionDef
	target *entities.Combatant
}

// chooseForSlot picks an action and target for the actor's given economy
// slot. A nil choice means no candidate qualified.
func (e *Encounter) chooseForSlot(actor *entities.Combatant, econ entities.Economy) (*choice, error) {
	// Map iteration order is random; sort so seeded runs replay exactly.
	names := make([]string, 0, len(actor.Actions))
	for name := range actor.Actions {
		names = append(names, name)
	}
	sort.Strings(names)

	var (
		defs    []*entities.ActionDef
		targets [][]*entities.Combatant
		weights []int
	)
	for _, name := range names {
		bias := actor.Actions[name]
		if bias <= 0 {
			continue
		}
		def, ok := e.catalog.Actions[name]
		if !ok {
			return nil, errors.Internalf("combatant %s references unknown action %s", actor.Name, name)
		}
		if def.Economy != econ {
			continue
		}
		if !e.costAvailable(actor, def) {
			continue
		}
		candidates := e.targetsFor(actor, def)
		if len(candidates) == 0 {
			continue
		}
		defs = append(defs, def)
		targets = append(targets, candidates)
		weights = append(weights, bias)
	}

	if len(defs) == 0 {
		return nil, nil
	}

	idx, err := WeightedPick(e.roller, weights)
	if err != nil {
		return nil, err
	}
	target, err := e.policy.Pick(e.roller, defs[idx], targets[idx])
	if err != nil {
		return nil, err
	}
	return &choice{def: defs[idx], target: target}, nil
}

// costAvailable reports whether the actor can pay the action's resource
// or spell-slot cost right now.
func (e *Encounter) costAvailable(actor *entities.Combatant, def *entities.ActionDef) bool {
	if def.Resource != "" && actor.Resources[def.Resource] <= 0 {
		return false
	}
	if def.Kind == entities.KindSpell {
		spell, ok := e.catalog.Spells[def.Spell]
		if !ok {
			return false
		}
		if spell.Level > 0 && actor.NextSlot(spell.Level) == 0 {
			return false
		}
	}
	return true
}

// targetsFor builds the legal target set for the action. Downed but not
// dead allies stay targetable by healing effects.
func (e *Encounter) targetsFor(actor *entities.Combatant, def *entities.ActionDef) []*entities.Combatant {
	var out []*entities.Combatant
	for _, rel := range def.Targets {
		switch rel {
		case entities.TargetSelf:
			out = append(out, actor)
		case entities.TargetEnemy:
			out = append(out, e.hostilesOf(actor)...)
		case entities.TargetAlly:
			if e.actionAidsDowned(def) {
				out = append(out, e.downedAlliesOf(actor)...)
			}
			out = append(out, e.alliesOf(actor)...)
		}
	}
	return out
}

// actionAidsDowned reports whether the action can help an ally at zero
// HP: healing spells and stabilization.
func (e *Encounter) actionAidsDowned(def *entities.ActionDef) bool {
	if def.Kind == entities.KindSpecial && def.Category == "stabilize" {
		return true
	}
	if def.Kind != entities.KindSpell {
		return false
	}
	spell, ok := e.catalog.Spells[def.Spell]
	return ok && !spell.Heal.IsZero()
}

// downedAlliesOf returns friendlies at zero HP who can still be saved.
func (e *Encounter) downedAlliesOf(actor *entities.Combatant) []*entities.Combatant {
	var out []*entities.Combatant
	for _, other := range e.roster {
		if other == actor || other.Team.Hostile(actor.Team) {
			continue
		}
		if other.CurHP == 0 && !other.IsDead() && !other.HasCondition(entities.ConditionFled) {
			out = append(out, other)
		}
	}
	return out
}

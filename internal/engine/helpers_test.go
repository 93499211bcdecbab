package engine

import (
	"github.com/KirkDiggler/rpg-toolkit/dice"

	"github.com/rendaletaas/dndCombatSim/internal/entities"
)

// testCatalog builds a small catalog shared across engine tests.
func testCatalog() *entities.Catalog {
	cat := entities.NewCatalog()

	cat.Attacks["sword"] = &entities.AttackDef{
		Name:       "sword",
		Ability:    entities.AbilityStrength,
		Categories: []string{"martial"},
		Damage: []entities.DamageComponent{
			{Dice: entities.DiceExpr{Count: 1, Sides: 8}, Ability: entities.AbilityStrength, Type: "slashing"},
		},
	}
	cat.Attacks["flame_blade"] = &entities.AttackDef{
		Name:       "flame_blade",
		Ability:    entities.AbilityStrength,
		Categories: []string{"martial"},
		Damage: []entities.DamageComponent{
			{Dice: entities.DiceExpr{Count: 1, Sides: 6}, Type: "fire", Magical: true},
		},
	}

	cat.Actions["strike"] = &entities.ActionDef{
		Name:    "strike",
		Economy: entities.EconomyRegular,
		Kind:    entities.KindAttack,
		Targets: []entities.TargetRel{entities.TargetEnemy},
		Attack:  "sword",
	}
	cat.Actions["flame_strike"] = &entities.ActionDef{
		Name:    "flame_strike",
		Economy: entities.EconomyRegular,
		Kind:    entities.KindAttack,
		Targets: []entities.TargetRel{entities.TargetEnemy},
		Attack:  "flame_blade",
	}
	cat.Actions["move"] = &entities.ActionDef{
		Name:     "move",
		Category: "movement",
		Economy:  entities.EconomyMovement,
		Kind:     entities.KindMovement,
		Targets:  []entities.TargetRel{entities.TargetSelf},
	}
	cat.Actions["dodge"] = &entities.ActionDef{
		Name:     "dodge",
		Category: "dodge",
		Economy:  entities.EconomyRegular,
		Kind:     entities.KindAuto,
		Targets:  []entities.TargetRel{entities.TargetSelf},
	}
	cat.Actions["shove"] = &entities.ActionDef{
		Name:           "shove",
		Economy:        entities.EconomyRegular,
		Kind:           entities.KindContest,
		Targets:        []entities.TargetRel{entities.TargetEnemy},
		ContestSkill:   "athletics",
		ContestAbility: entities.AbilityStrength,
		AppliesOnWin:   entities.ConditionProne,
	}

	cat.Spells["cure_wounds"] = &entities.SpellDef{
		Name:        "cure_wounds",
		Level:       1,
		Cast:        entities.EconomyRegular,
		Targets:     []entities.TargetRel{entities.TargetAlly, entities.TargetSelf},
		Heal:        entities.DiceExpr{Count: 1, Sides: 8},
		HealAbility: entities.AbilityWisdom,
	}
	cat.Actions["heal"] = &entities.ActionDef{
		Name:    "heal",
		Economy: entities.EconomyRegular,
		Kind:    entities.KindSpell,
		Targets: []entities.TargetRel{entities.TargetAlly, entities.TargetSelf},
		Spell:   "cure_wounds",
	}

	return cat
}

// newFighter builds a martial combatant with a +5 sword attack
// (str +3, proficiency +2).
func newFighter(name string, team entities.Team) *entities.Combatant {
	return &entities.Combatant{
		Name: name,
		Team: team,
		Scores: entities.AbilityScores{
			Strength: 16, Dexterity: 12, Constitution: 10,
			Intelligence: 10, Wisdom: 10, Charisma: 10,
		},
		Proficiency: 2,
		AC:          16,
		MaxHP:       30,
		CurHP:       30,
		Speed:       30,
		Categories:  []string{"martial"},
		Skills:      []string{"athletics"},
		Actions:     map[string]int{"strike": 8},
	}
}

// newTestEncounter wires a two-sided encounter with the shared catalog.
func newTestEncounter(r dice.Roller, roster ...*entities.Combatant) (*Encounter, error) {
	return NewEncounter(&EncounterConfig{
		Roster:  roster,
		Catalog: testCatalog(),
		Roller:  r,
	})
}

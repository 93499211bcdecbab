package loader

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/rendaletaas/dndCombatSim/internal/entities"
	"github.com/rendaletaas/dndCombatSim/internal/errors"
)

// Wire formats for the JSON data files.

type damageJSON struct {
	Dice    string `json:"dice"`
	Ability string `json:"ability,omitempty"`
	Type    string `json:"type"`
	Magical bool   `json:"magical,omitempty"`
}

type attackJSON struct {
	Name       string       `json:"name"`
	Ability    string       `json:"ability"`
	Damage     []damageJSON `json:"damage"`
	Categories []string     `json:"categories,omitempty"`
	HitMod     int          `json:"hit_mod,omitempty"`
	Rolls      int          `json:"rolls,omitempty"`
	Properties []string     `json:"properties,omitempty"`
}

type attacksFileJSON struct {
	Attacks []attackJSON `json:"attacks"`
}

type durationJSON struct {
	Count int    `json:"count"`
	Unit  string `json:"unit"`
}

type spellJSON struct {
	Name          string        `json:"name"`
	Level         int           `json:"level"`
	School        string        `json:"school,omitempty"`
	Cast          string        `json:"cast"`
	Targets       []string      `json:"targets"`
	Concentration bool          `json:"concentration,omitempty"`
	Duration      *durationJSON `json:"duration,omitempty"`
	Save          string        `json:"save,omitempty"`
	Damage        []damageJSON  `json:"damage,omitempty"`
	HalfOnSave    bool          `json:"half_on_save,omitempty"`
	Heal          string        `json:"heal,omitempty"`
	HealAbility   string        `json:"heal_ability,omitempty"`
	Applies       string        `json:"applies,omitempty"`
	AppliesRounds int           `json:"applies_rounds,omitempty"`
}

type spellsFileJSON struct {
	Spells []spellJSON `json:"spells"`
}

type actionJSON struct {
	Name           string   `json:"name"`
	Category       string   `json:"category,omitempty"`
	Bias           int      `json:"default_bias,omitempty"`
	Economy        string   `json:"economy"`
	Targets        []string `json:"targets,omitempty"`
	Kind           string   `json:"kind"`
	Attack         string   `json:"attack,omitempty"`
	AttackRolls    int      `json:"attack_rolls,omitempty"`
	Offhand        bool     `json:"offhand,omitempty"`
	Spell          string   `json:"spell,omitempty"`
	Resource       string   `json:"resource,omitempty"`
	ContestSkill   string   `json:"contest_skill,omitempty"`
	ContestAbility string   `json:"contest_ability,omitempty"`
	AppliesOnWin   string   `json:"applies_on_win,omitempty"`
}

type actionsFileJSON struct {
	Actions []actionJSON `json:"actions"`
}

type combatantJSON struct {
	Name            string         `json:"name"`
	Team            string         `json:"team"`
	Abilities       map[string]int `json:"abilities"`
	Proficiency     int            `json:"proficiency"`
	AC              int            `json:"ac"`
	MaxHP           int            `json:"max_hp"`
	Speed           int            `json:"speed,omitempty"`
	Skills          []string       `json:"skills,omitempty"`
	Saves           []string       `json:"saves,omitempty"`
	Categories      []string       `json:"categories,omitempty"`
	Immunities      []string       `json:"immunities,omitempty"`
	Resistances     []string       `json:"resistances,omitempty"`
	Vulnerabilities []string       `json:"vulnerabilities,omitempty"`
	ConditionImmune []string       `json:"condition_immunities,omitempty"`
	Slots           map[string]int `json:"slots,omitempty"`
	SpellAbility    string         `json:"spell_ability,omitempty"`
	Actions         map[string]int `json:"actions"`
	Resources       map[string]int `json:"resources,omitempty"`
}

type rosterFileJSON struct {
	Combatants []combatantJSON `json:"combatants"`
}

var validEconomies = []string{"regular", "bonus", "movement", "reaction", "free", "special"}
var validKinds = []string{"attack", "spell", "movement", "auto", "contest", "special"}
var validTargets = []string{"self", "ally", "enemy"}
var validTeams = []string{"player", "ally", "enemy"}
var validAbilities = []string{"str", "dex", "con", "int", "wis", "cha"}

func parseAttacks(raw []byte, catalog *entities.Catalog) error {
	var file attacksFileJSON
	if err := json.Unmarshal(raw, &file); err != nil {
		return errors.WrapWithCode(err, errors.CodeInvalidArgument, "malformed attacks JSON")
	}

	for i, a := range file.Attacks {
		field := fmt.Sprintf("attacks[%d]", i)
		vb := errors.NewValidationBuilder()
		errors.ValidateRequired(field+".name", a.Name, vb)
		errors.ValidateEnum(field+".ability", a.Ability, validAbilities, vb)
		if len(a.Damage) == 0 {
			vb.RequiredField(field + ".damage")
		}
		if a.Rolls < 0 {
			vb.InvalidField(field+".rolls", "must not be negative")
		}
		if _, exists := catalog.Attacks[a.Name]; exists {
			vb.Fieldf(field+".name", "duplicate attack %q", a.Name)
		}

		damage := parseDamage(field, a.Damage, vb)
		if err := vb.Build(); err != nil {
			return err
		}

		catalog.Attacks[a.Name] = &entities.AttackDef{
			Name:       a.Name,
			Ability:    entities.Ability(a.Ability),
			Damage:     damage,
			Categories: a.Categories,
			HitMod:     a.HitMod,
			Rolls:      a.Rolls,
			Properties: a.Properties,
		}
	}
	return nil
}

func parseDamage(field string, in []damageJSON, vb *errors.ValidationBuilder) []entities.DamageComponent {
	out := make([]entities.DamageComponent, 0, len(in))
	for j, d := range in {
		comp := fmt.Sprintf("%s.damage[%d]", field, j)
		dice, err := entities.ParseDiceExpr(d.Dice)
		if err != nil {
			vb.InvalidField(comp+".dice", err.Error())
			continue
		}
		if d.Ability != "" {
			errors.ValidateEnum(comp+".ability", d.Ability, validAbilities, vb)
		}
		errors.ValidateRequired(comp+".type", d.Type, vb)
		out = append(out, entities.DamageComponent{
			Dice:    dice,
			Ability: entities.Ability(d.Ability),
			Type:    d.Type,
			Magical: d.Magical,
		})
	}
	return out
}

func parseSpells(raw []byte, catalog *entities.Catalog) error {
	var file spellsFileJSON
	if err := json.Unmarshal(raw, &file); err != nil {
		return errors.WrapWithCode(err, errors.CodeInvalidArgument, "malformed spells JSON")
	}

	for i, sp := range file.Spells {
		field := fmt.Sprintf("spells[%d]", i)
		vb := errors.NewValidationBuilder()
		errors.ValidateRequired(field+".name", sp.Name, vb)
		errors.ValidateRange(field+".level", sp.Level, 0, 9, vb)
		errors.ValidateEnum(field+".cast", sp.Cast, validEconomies, vb)
		for _, t := range sp.Targets {
			errors.ValidateEnum(field+".targets", t, validTargets, vb)
		}
		if sp.Save != "" {
			errors.ValidateEnum(field+".save", sp.Save, validAbilities, vb)
		}
		if sp.HealAbility != "" {
			errors.ValidateEnum(field+".heal_ability", sp.HealAbility, validAbilities, vb)
		}
		if _, exists := catalog.Spells[sp.Name]; exists {
			vb.Fieldf(field+".name", "duplicate spell %q", sp.Name)
		}

		var heal entities.DiceExpr
		if sp.Heal != "" {
			var err error
			heal, err = entities.ParseDiceExpr(sp.Heal)
			if err != nil {
				vb.InvalidField(field+".heal", err.Error())
			}
		}
		damage := parseDamage(field, sp.Damage, vb)

		var duration entities.SpellDuration
		if sp.Duration != nil {
			duration = entities.SpellDuration{Count: sp.Duration.Count, Unit: sp.Duration.Unit}
		}

		if err := vb.Build(); err != nil {
			return err
		}

		targets := make([]entities.TargetRel, len(sp.Targets))
		for j, t := range sp.Targets {
			targets[j] = entities.TargetRel(t)
		}

		catalog.Spells[sp.Name] = &entities.SpellDef{
			Name:          sp.Name,
			Level:         sp.Level,
			School:        sp.School,
			Cast:          entities.Economy(sp.Cast),
			Targets:       targets,
			Concentration: sp.Concentration,
			Duration:      duration,
			SaveAbility:   entities.Ability(sp.Save),
			Damage:        damage,
			HalfOnSave:    sp.HalfOnSave,
			Heal:          heal,
			HealAbility:   entities.Ability(sp.HealAbility),
			Applies:       sp.Applies,
			AppliesRounds: sp.AppliesRounds,
		}
	}
	return nil
}

func parseActions(raw []byte, catalog *entities.Catalog) error {
	var file actionsFileJSON
	if err := json.Unmarshal(raw, &file); err != nil {
		return errors.WrapWithCode(err, errors.CodeInvalidArgument, "malformed actions JSON")
	}

	for i, a := range file.Actions {
		field := fmt.Sprintf("actions[%d]", i)
		vb := errors.NewValidationBuilder()
		errors.ValidateRequired(field+".name", a.Name, vb)
		errors.ValidateEnum(field+".economy", a.Economy, validEconomies, vb)
		errors.ValidateEnum(field+".kind", a.Kind, validKinds, vb)
		for _, t := range a.Targets {
			errors.ValidateEnum(field+".targets", t, validTargets, vb)
		}
		if a.Bias != 0 && !entities.ValidBias(a.Bias) {
			vb.Fieldf(field+".default_bias", "must be one of 0, 1, 2, 4, 8, 16, got %d", a.Bias)
		}
		if _, exists := catalog.Actions[a.Name]; exists {
			vb.Fieldf(field+".name", "duplicate action %q", a.Name)
		}

		switch a.Kind {
		case "attack":
			if _, ok := catalog.Attacks[a.Attack]; !ok {
				vb.Fieldf(field+".attack", "unknown attack %q", a.Attack)
			}
		case "spell":
			if _, ok := catalog.Spells[a.Spell]; !ok {
				vb.Fieldf(field+".spell", "unknown spell %q", a.Spell)
			}
		case "contest":
			errors.ValidateEnum(field+".contest_ability", a.ContestAbility, validAbilities, vb)
		}

		if err := vb.Build(); err != nil {
			return err
		}

		targets := make([]entities.TargetRel, len(a.Targets))
		for j, t := range a.Targets {
			targets[j] = entities.TargetRel(t)
		}

		catalog.Actions[a.Name] = &entities.ActionDef{
			Name:           a.Name,
			Category:       a.Category,
			Bias:           a.Bias,
			Economy:        entities.Economy(a.Economy),
			Targets:        targets,
			Kind:           entities.Kind(a.Kind),
			Attack:         a.Attack,
			AttackRolls:    a.AttackRolls,
			Offhand:        a.Offhand,
			Spell:          a.Spell,
			Resource:       a.Resource,
			ContestSkill:   a.ContestSkill,
			ContestAbility: entities.Ability(a.ContestAbility),
			AppliesOnWin:   a.AppliesOnWin,
		}
	}
	return nil
}

func parseRoster(raw []byte, catalog *entities.Catalog) ([]*entities.Combatant, error) {
	var file rosterFileJSON
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeInvalidArgument, "malformed roster JSON")
	}
	if len(file.Combatants) == 0 {
		return nil, errors.InvalidArgument("roster has no combatants")
	}

	seen := make(map[string]int)
	roster := make([]*entities.Combatant, 0, len(file.Combatants))
	for i, cj := range file.Combatants {
		field := fmt.Sprintf("combatants[%d]", i)
		vb := errors.NewValidationBuilder()
		errors.ValidateRequired(field+".name", cj.Name, vb)
		errors.ValidateEnum(field+".team", cj.Team, validTeams, vb)
		errors.ValidateRange(field+".max_hp", cj.MaxHP, 1, 1000, vb)
		errors.ValidateRange(field+".ac", cj.AC, 1, 30, vb)

		scores := entities.AbilityScores{}
		for _, ab := range validAbilities {
			score, ok := cj.Abilities[ab]
			if !ok {
				vb.Fieldf(field+".abilities", "missing %s score", ab)
				continue
			}
			errors.ValidateRange(field+".abilities."+ab, score, 1, 30, vb)
			switch entities.Ability(ab) {
			case entities.AbilityStrength:
				scores.Strength = score
			case entities.AbilityDexterity:
				scores.Dexterity = score
			case entities.AbilityConstitution:
				scores.Constitution = score
			case entities.AbilityIntelligence:
				scores.Intelligence = score
			case entities.AbilityWisdom:
				scores.Wisdom = score
			case entities.AbilityCharisma:
				scores.Charisma = score
			}
		}

		saves := make([]entities.Ability, 0, len(cj.Saves))
		for _, sv := range cj.Saves {
			errors.ValidateEnum(field+".saves", sv, validAbilities, vb)
			saves = append(saves, entities.Ability(sv))
		}

		if cj.SpellAbility != "" {
			errors.ValidateEnum(field+".spell_ability", cj.SpellAbility, validAbilities, vb)
		}

		actions := make(map[string]int, len(cj.Actions))
		for name, bias := range cj.Actions {
			def, ok := catalog.Actions[name]
			if !ok {
				vb.Fieldf(field+".actions", "unknown action %q", name)
				continue
			}
			if !entities.ValidBias(bias) {
				vb.Fieldf(field+".actions", "%s: bias must be one of 0, 1, 2, 4, 8, 16, got %d", name, bias)
				continue
			}
			// A zero bias defers to the action's catalog default.
			if bias == 0 {
				bias = def.Bias
			}
			actions[name] = bias
		}
		if len(actions) == 0 {
			vb.RequiredField(field + ".actions")
		}

		slotsMax := make(map[int]int)
		for lvlStr, count := range cj.Slots {
			lvl, err := strconv.Atoi(lvlStr)
			if err != nil || lvl < 1 || lvl > 9 {
				vb.Fieldf(field+".slots", "invalid slot level %q", lvlStr)
				continue
			}
			if count < 0 {
				vb.Fieldf(field+".slots", "level %d: negative slot count", lvl)
				continue
			}
			slotsMax[lvl] = count
		}

		if err := vb.Build(); err != nil {
			return nil, err
		}

		speed := cj.Speed
		if speed == 0 {
			speed = 30
		}

		slots := make(map[int]int, len(slotsMax))
		for lvl, count := range slotsMax {
			slots[lvl] = count
		}
		resources := make(map[string]int, len(cj.Resources))
		for name, count := range cj.Resources {
			resources[name] = count
		}

		roster = append(roster, &entities.Combatant{
			Name:                uniqueName(cj.Name, seen),
			Team:                entities.Team(cj.Team),
			Scores:              scores,
			Proficiency:         cj.Proficiency,
			AC:                  cj.AC,
			MaxHP:               cj.MaxHP,
			CurHP:               cj.MaxHP,
			Speed:               speed,
			Skills:              cj.Skills,
			SaveProfs:           saves,
			Categories:          cj.Categories,
			Immunities:          cj.Immunities,
			Resistances:         cj.Resistances,
			Vulnerabilities:     cj.Vulnerabilities,
			ConditionImmunities: cj.ConditionImmune,
			SlotsMax:            slotsMax,
			Slots:               slots,
			SpellAbility:        entities.Ability(cj.SpellAbility),
			Actions:             actions,
			Resources:           resources,
			ResourcesMax:        cj.Resources,
		})
	}
	return roster, nil
}

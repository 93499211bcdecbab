package entities

// DamageComponent is one damage contribution of an attack or spell.
type DamageComponent struct {
	// Dice is the rolled portion, e.g. 1d8.
	Dice DiceExpr
	// Ability, when set, adds the actor's modifier for that ability.
	Ability Ability
	// Type is the damage type (slashing, fire, ...) used for
	// immunity/resistance/vulnerability lookups.
	Type string
	// Magical marks the component as magical for resistance purposes.
	Magical bool
}

// Attack property flags.
const (
	PropFinesse = "finesse"
	PropLight   = "light"
)

// AttackDef describes a reusable weapon or natural attack.
type AttackDef struct {
	Name string
	// Ability governs the to-hit and damage modifier. With the finesse
	// property the higher of str and dex is used instead.
	Ability Ability
	Damage  []DamageComponent
	// Categories are proficiency tags (e.g. "martial", "simple"). A
	// combatant proficient with any matching tag, or whose list contains
	// "all", adds its proficiency bonus. Empty means never proficient.
	Categories []string
	// HitMod is a flat to-hit adjustment (magic weapons, fighting styles).
	HitMod int
	// Rolls is how many attack rolls one use of this attack makes.
	Rolls int
	// Properties are weapon property flags such as finesse and light.
	Properties []string
}

// HasProperty reports whether the attack carries the named property flag.
func (a *AttackDef) HasProperty(prop string) bool {
	for _, p := range a.Properties {
		if p == prop {
			return true
		}
	}
	return false
}

// SpellDuration is a spell's duration in count+unit form. A zero value
// means instantaneous.
type SpellDuration struct {
	Count int
	// Unit is "round", "minute", "hour", or "" for instantaneous.
	Unit string
}

// Rounds converts the duration to combat rounds (6 seconds each).
func (d SpellDuration) Rounds() int {
	switch d.Unit {
	case "round":
		return d.Count
	case "minute":
		return d.Count * 10
	case "hour":
		return d.Count * 600
	default:
		return 0
	}
}

// SpellDef describes a castable spell. Effects are data driven: a spell
// heals, forces a save against damage, applies a condition, or any mix,
// so new spells need data rather than code.
type SpellDef struct {
	Name          string
	Level         int
	School        string
	Cast          Economy
	Targets       []TargetRel
	Concentration bool
	Duration      SpellDuration

	// SaveAbility, when set, forces the target to save against the
	// caster's spell DC before damage applies.
	SaveAbility Ability
	Damage      []DamageComponent
	// HalfOnSave halves damage on a successful save instead of negating it.
	HalfOnSave bool
	// Heal restores hit points to the target.
	Heal DiceExpr
	// HealAbility, when set, adds the caster's modifier to healing.
	HealAbility Ability
	// Applies names a condition put on the target (on a failed save when
	// SaveAbility is set, unconditionally otherwise).
	Applies string
	// AppliesRounds bounds the applied condition; 0 falls back to the
	// spell duration, negative means until removed.
	AppliesRounds int
}

// ActionDef describes one entry of a combatant's action catalog.
type ActionDef struct {
	Name     string
	Category string
	// Bias is the selection weight on the doubling scale {16,8,4,2,1,0}.
	// Zero keeps the action loaded but never chosen.
	Bias    int
	Economy Economy
	Targets []TargetRel
	Kind    Kind

	// Attack names the AttackDef used by attack-kind actions.
	Attack string
	// AttackRolls overrides the attack's roll count (extra-attack
	// actions); 0 defers to the attack definition.
	AttackRolls int
	// Offhand marks an off-hand strike: the damage ability modifier is
	// capped at zero.
	Offhand bool
	// Spell names the SpellDef cast by spell-kind actions.
	Spell string
	// Resource names a counter consumed per use (e.g. "ki", "rage").
	Resource string
	// ContestSkill/ContestDefense configure contest-kind actions: the
	// actor's skill check opposed by the target's choice of defense.
	ContestSkill   string
	ContestAbility Ability
	// AppliesOnWin names a condition placed on the loser of a won contest.
	AppliesOnWin string
}

// OffensiveToward reports whether the action may target hostiles.
func (a *ActionDef) OffensiveToward() bool {
	for _, t := range a.Targets {
		if t == TargetEnemy {
			return true
		}
	}
	return false
}

// AllowsTarget reports whether rel is a legal target relationship.
func (a *ActionDef) AllowsTarget(rel TargetRel) bool {
	for _, t := range a.Targets {
		if t == rel {
			return true
		}
	}
	return false
}

// Catalog is the shared library of definitions referenced by combatants.
type Catalog struct {
	Actions map[string]*ActionDef
	Attacks map[string]*AttackDef
	Spells  map[string]*SpellDef
}

// NewCatalog returns an empty catalog ready for registration.
func NewCatalog() *Catalog {
	return &Catalog{
		Actions: make(map[string]*ActionDef),
		Attacks: make(map[string]*AttackDef),
		Spells:  make(map[string]*SpellDef),
	}
}

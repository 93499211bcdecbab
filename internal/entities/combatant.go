package entities

// DeathSaves tracks death saving throw progress while a combatant is dying.
type DeathSaves struct {
	Successes int
	Failures  int
}

// Reset clears both counters.
func (d *DeathSaves) Reset() {
	d.Successes = 0
	d.Failures = 0
}

// TurnEconomy tracks which action slots remain for the current turn.
// Free actions are once per turn here; the reaction persists between
// turns and refreshes at the start of the owner's turn.
type TurnEconomy struct {
	Regular  bool
	Bonus    bool
	Movement bool
	Reaction bool
	Free     bool
	// Speed is the movement budget remaining, in feet.
	Speed int
}

// Reset restores every slot and the movement budget for a new turn.
func (e *TurnEconomy) Reset(speed int) {
	e.Regular = true
	e.Bonus = true
	e.Movement = true
	e.Reaction = true
	e.Free = true
	e.Speed = speed
}

// Has reports whether the given slot is still available.
func (e *TurnEconomy) Has(econ Economy) bool {
	switch econ {
	case EconomyRegular:
		return e.Regular
	case EconomyBonus:
		return e.Bonus
	case EconomyMovement:
		return e.Movement
	case EconomyReaction:
		return e.Reaction
	case EconomyFree:
		return e.Free
	case EconomySpecial:
		return true
	default:
		return false
	}
}

// Spend consumes the given slot. It reports false if the slot was already
// spent, which the scheduler treats as an engine defect.
func (e *TurnEconomy) Spend(econ Economy) bool {
	if !e.Has(econ) {
		return false
	}
	switch econ {
	case EconomyRegular:
		e.Regular = false
	case EconomyBonus:
		e.Bonus = false
	case EconomyMovement:
		e.Movement = false
	case EconomyReaction:
		e.Reaction = false
	case EconomyFree:
		e.Free = false
	}
	return true
}

// Combatant is one participant in an encounter. Loader-built instances are
// never shared between concurrent encounters; RunBatch clones per trial.
type Combatant struct {
	// Name is unique within an encounter and doubles as the entity ID.
	Name string
	Team Team

	Scores      AbilityScores
	Proficiency int
	AC          int
	MaxHP       int
	CurHP       int
	TempHP      int
	Speed       int

	// Proficiency lists.
	Skills     []string
	SaveProfs  []Ability
	Categories []string

	// Damage type adjustments.
	Immunities      []string
	Resistances     []string
	Vulnerabilities []string
	// ConditionImmunities lists conditions that never stick.
	ConditionImmunities []string

	// SlotsMax and Slots are spell slots by level (1..9).
	SlotsMax map[int]int
	Slots    map[int]int
	// SpellAbility governs spell save DCs and spell attack rolls.
	SpellAbility Ability

	// Actions maps action names (into the catalog) to this combatant's
	// bias; the loader resolves the references and folds in catalog
	// default biases.
	Actions map[string]int

	// Resources are named consumable counters (ki, rage, breath weapon).
	Resources    map[string]int
	ResourcesMax map[string]int

	Conditions []*Condition
	Economy    TurnEconomy
	DeathSaves DeathSaves

	// Concentrating names the spell currently concentrated on, if any.
	Concentrating string
}

// GetID implements core.Entity.
func (c *Combatant) GetID() string { return c.Name }

// GetType implements core.Entity.
func (c *Combatant) GetType() string { return string(c.Team) }

// Modifier returns the combatant's modifier for the given ability.
func (c *Combatant) Modifier(a Ability) int {
	return c.Scores.Modifier(a)
}

// SaveBonus returns the saving throw bonus for the given ability.
func (c *Combatant) SaveBonus(a Ability) int {
	bonus := c.Modifier(a)
	for _, p := range c.SaveProfs {
		if p == a {
			bonus += c.Proficiency
			break
		}
	}
	return bonus
}

// SpellDC returns the save DC for this combatant's spells.
func (c *Combatant) SpellDC() int {
	return 8 + c.Proficiency + c.Modifier(c.SpellAbility)
}

// ProficientWith reports whether any of the attack's category tags match
// this combatant's proficiencies. A "all" entry on either side matches
// everything.
func (c *Combatant) ProficientWith(categories []string) bool {
	for _, have := range c.Categories {
		if have == "all" {
			return true
		}
		for _, want := range categories {
			if want == "all" || want == have {
				return true
			}
		}
	}
	return false
}

// HasCondition reports whether the named condition is active.
func (c *Combatant) HasCondition(name string) bool {
	return c.FindCondition(name) != nil
}

// FindCondition returns the active condition with the given name, or nil.
func (c *Combatant) FindCondition(name string) *Condition {
	for _, cond := range c.Conditions {
		if cond.Name == name {
			return cond
		}
	}
	return nil
}

// ImmuneToCondition reports whether the combatant shrugs off the named
// condition entirely.
func (c *Combatant) ImmuneToCondition(name string) bool {
	for _, immune := range c.ConditionImmunities {
		if immune == name {
			return true
		}
	}
	return false
}

// IsDead reports whether the combatant has failed out of the encounter.
func (c *Combatant) IsDead() bool { return c.HasCondition(ConditionDead) }

// IsDying reports whether the combatant is at 0 HP and rolling death saves.
func (c *Combatant) IsDying() bool { return c.HasCondition(ConditionDying) }

// IsStable reports whether the combatant is at 0 HP but no longer saving.
func (c *Combatant) IsStable() bool { return c.HasCondition(ConditionStable) }

// IsUnconscious reports whether the combatant is unconscious.
func (c *Combatant) IsUnconscious() bool { return c.HasCondition(ConditionUnconscious) }

// Incapacitated reports whether the combatant can take actions at all.
func (c *Combatant) Incapacitated() bool { return c.HasCondition(ConditionIncapacitated) }

// Defeated reports whether the combatant no longer contributes to its
// side: dead, out cold, or fled.
func (c *Combatant) Defeated() bool {
	return c.IsDead() || c.CurHP == 0 || c.HasCondition(ConditionFled)
}

// HPFraction returns current HP as a fraction of maximum.
func (c *Combatant) HPFraction() float64 {
	if c.MaxHP <= 0 {
		return 0
	}
	return float64(c.CurHP) / float64(c.MaxHP)
}

// ReduceHP applies amount points of already-adjusted damage. Temporary HP
// absorbs first. Returns the damage that reached real hit points.
func (c *Combatant) ReduceHP(amount int) int {
	if amount <= 0 {
		return 0
	}
	if c.TempHP > 0 {
		if amount <= c.TempHP {
			c.TempHP -= amount
			return 0
		}
		amount -= c.TempHP
		c.TempHP = 0
	}
	if amount > c.CurHP {
		amount = c.CurHP
	}
	c.CurHP -= amount
	return amount
}

// ApplyHealing restores hit points, clamped at maximum. Returns the amount
// actually restored.
func (c *Combatant) ApplyHealing(amount int) int {
	if amount <= 0 || c.IsDead() {
		return 0
	}
	if c.CurHP+amount > c.MaxHP {
		amount = c.MaxHP - c.CurHP
	}
	c.CurHP += amount
	return amount
}

// NextSlot returns the lowest available spell slot at or above level, or 0
// if none remain.
func (c *Combatant) NextSlot(level int) int {
	for lvl := level; lvl <= 9; lvl++ {
		if c.Slots[lvl] > 0 {
			return lvl
		}
	}
	return 0
}

// SpendSlot consumes one slot of the given level, reporting success.
func (c *Combatant) SpendSlot(level int) bool {
	if c.Slots[level] <= 0 {
		return false
	}
	c.Slots[level]--
	return true
}

// Clone deep-copies the combatant for an independent trial.
func (c *Combatant) Clone() *Combatant {
	out := *c
	out.Skills = append([]string(nil), c.Skills...)
	out.SaveProfs = append([]Ability(nil), c.SaveProfs...)
	out.Categories = append([]string(nil), c.Categories...)
	out.Immunities = append([]string(nil), c.Immunities...)
	out.Resistances = append([]string(nil), c.Resistances...)
	out.Vulnerabilities = append([]string(nil), c.Vulnerabilities...)
	out.ConditionImmunities = append([]string(nil), c.ConditionImmunities...)
	out.SlotsMax = cloneIntMap(c.SlotsMax)
	out.Slots = cloneIntMap(c.Slots)
	out.Resources = cloneStringIntMap(c.Resources)
	out.ResourcesMax = cloneStringIntMap(c.ResourcesMax)
	out.Actions = cloneStringIntMap(c.Actions)
	out.Conditions = make([]*Condition, len(c.Conditions))
	for i, cond := range c.Conditions {
		copied := *cond
		out.Conditions[i] = &copied
	}
	return &out
}

func cloneIntMap(m map[int]int) map[int]int {
	if m == nil {
		return nil
	}
	out := make(map[int]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneStringIntMap(m map[string]int) map[string]int {
	if m == nil {
		return nil
	}
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

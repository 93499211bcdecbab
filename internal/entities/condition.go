package entities

// Well-known condition names the engine gives mechanical weight.
const (
	ConditionDying         = "dying"
	ConditionDead          = "dead"
	ConditionStable        = "stable"
	ConditionUnconscious   = "unconscious"
	ConditionIncapacitated = "incapacitated"
	ConditionProne         = "prone"
	ConditionRestrained    = "restrained"
	ConditionStunned       = "stunned"
	ConditionParalyzed     = "paralyzed"
	ConditionPoisoned      = "poisoned"
	ConditionFrightened    = "frightened"
	ConditionInvisible     = "invisible"
	ConditionBlinded       = "blinded"
	ConditionDodging       = "dodging"
	ConditionDisengaging   = "disengaging"
	ConditionBurning       = "burning"
	ConditionGrappled      = "grappled"
	ConditionFled          = "fled"
)

// IndefiniteRounds marks a condition with no timed expiry.
const IndefiniteRounds = -1

// Condition is an active effect on a combatant.
type Condition struct {
	Name string
	// Rounds remaining before expiry; IndefiniteRounds means until removed.
	Rounds int
	// Source names the entity that applied the condition, if any.
	Source string
	// Concentration marks the condition as sustained by the source's
	// concentration; breaking it removes the condition.
	Concentration bool
	// Damage, when set, burns the bearer at the start of its turn.
	Damage     DiceExpr
	DamageType string
}

// Timed reports whether the condition expires by duration.
func (c *Condition) Timed() bool {
	return c.Rounds != IndefiniteRounds
}

// linkedConditions maps a condition to others it carries with it. Applying
// the key applies the values; removing the key removes them unless another
// active condition still links them.
var linkedConditions = map[string][]string{
	ConditionDying:       {ConditionUnconscious},
	ConditionUnconscious: {ConditionIncapacitated, ConditionProne},
	ConditionParalyzed:   {ConditionIncapacitated},
	ConditionStunned:     {ConditionIncapacitated},
}

// LinkedConditions returns the conditions implied by name, or nil.
func LinkedConditions(name string) []string {
	return linkedConditions[name]
}

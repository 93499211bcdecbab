// Package entities defines the in-memory combat domain model: combatants,
// their action/attack/spell catalogs, conditions, and resource pools. The
// engine mutates these; loading and validation live in internal/loader.
package entities

// Team identifies which side of an encounter a combatant fights for.
type Team string

// Teams. Player characters and allies fight together against enemies.
const (
	TeamPlayer Team = "player"
	TeamAlly   Team = "ally"
	TeamEnemy  Team = "enemy"
)

// Side is one of the two opposing groups in an encounter.
type Side string

// Sides of an encounter.
const (
	SideParty Side = "party"
	SideFoes  Side = "foes"
)

// Side returns the side this team belongs to.
func (t Team) Side() Side {
	if t == TeamEnemy {
		return SideFoes
	}
	return SideParty
}

// Hostile reports whether the two teams oppose each other.
func (t Team) Hostile(other Team) bool {
	return t.Side() != other.Side()
}

// Ability is one of the six ability scores.
type Ability string

// Abilities.
const (
	AbilityStrength     Ability = "str"
	AbilityDexterity    Ability = "dex"
	AbilityConstitution Ability = "con"
	AbilityIntelligence Ability = "int"
	AbilityWisdom       Ability = "wis"
	AbilityCharisma     Ability = "cha"
)

// Abilities lists all six abilities in canonical order.
var Abilities = []Ability{
	AbilityStrength, AbilityDexterity, AbilityConstitution,
	AbilityIntelligence, AbilityWisdom, AbilityCharisma,
}

// AbilityScores holds the six core ability scores.
type AbilityScores struct {
	Strength     int
	Dexterity    int
	Constitution int
	Intelligence int
	Wisdom       int
	Charisma     int
}

// Score returns the raw score for the given ability.
func (s AbilityScores) Score(a Ability) int {
	switch a {
	case AbilityStrength:
		return s.Strength
	case AbilityDexterity:
		return s.Dexterity
	case AbilityConstitution:
		return s.Constitution
	case AbilityIntelligence:
		return s.Intelligence
	case AbilityWisdom:
		return s.Wisdom
	case AbilityCharisma:
		return s.Charisma
	default:
		return 10
	}
}

// Modifier returns the ability modifier: floor((score-10)/2).
func (s AbilityScores) Modifier(a Ability) int {
	score := s.Score(a)
	if score >= 10 {
		return (score - 10) / 2
	}
	// Go truncates toward zero; odd scores below 10 need the extra step down.
	mod := (score - 10) / 2
	if (score-10)%2 != 0 {
		mod--
	}
	return mod
}

// Economy identifies which per-turn action allowance an action spends.
type Economy string

// Economy slots.
const (
	EconomyRegular  Economy = "regular"
	EconomyBonus    Economy = "bonus"
	EconomyMovement Economy = "movement"
	EconomyReaction Economy = "reaction"
	EconomyFree     Economy = "free"
	EconomySpecial  Economy = "special"
)

// Economies lists every slot an action definition may declare.
var Economies = []Economy{
	EconomyRegular, EconomyBonus, EconomyMovement,
	EconomyReaction, EconomyFree, EconomySpecial,
}

// TargetRel describes who an action may legally target, relative to the actor.
type TargetRel string

// Target relationships.
const (
	TargetSelf  TargetRel = "self"
	TargetAlly  TargetRel = "ally"
	TargetEnemy TargetRel = "enemy"
)

// Kind selects which resolver handles an action. The set is closed: the
// engine dispatches on it with one handler per variant.
type Kind string

// Dispatch kinds.
const (
	KindAttack   Kind = "attack"
	KindSpell    Kind = "spell"
	KindMovement Kind = "movement"
	KindAuto     Kind = "auto"
	KindContest  Kind = "contest"
	KindSpecial  Kind = "special"
)

// Biases allowed for action selection. The doubling scale makes higher
// tiers proportionally far more likely than a flat distribution would.
var Biases = []int{0, 1, 2, 4, 8, 16}

// ValidBias reports whether b is on the allowed doubling scale.
func ValidBias(b int) bool {
	for _, v := range Biases {
		if b == v {
			return true
		}
	}
	return false
}

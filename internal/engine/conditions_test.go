package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/rendaletaas/dndCombatSim/internal/entities"
	"github.com/rendaletaas/dndCombatSim/internal/pkg/roller"
)

type ConditionsTestSuite struct {
	suite.Suite

	ctx context.Context
}

func TestConditionsSuite(t *testing.T) {
	suite.Run(t, new(ConditionsTestSuite))
}

func (s *ConditionsTestSuite) SetupTest() {
	s.ctx = context.Background()
}

// downedPair returns an encounter with "downed" at zero HP and dying.
func (s *ConditionsTestSuite) downedPair(r *roller.Scripted) (*Encounter, *entities.Combatant) {
	downed := newFighter("downed", entities.TeamPlayer)
	downed.CurHP = 0
	foe := newFighter("foe", entities.TeamEnemy)

	enc, err := newTestEncounter(r, downed, foe)
	s.Require().NoError(err)
	s.Require().NoError(enc.applyCondition(s.ctx, downed, &entities.Condition{
		Name:   entities.ConditionDying,
		Rounds: entities.IndefiniteRounds,
	}))
	return enc, downed
}

func (s *ConditionsTestSuite) TestDyingLinksUnconsciousAndProne() {
	_, downed := s.downedPair(roller.NewScripted())

	s.Assert().True(downed.HasCondition(entities.ConditionDying))
	s.Assert().True(downed.HasCondition(entities.ConditionUnconscious))
	s.Assert().True(downed.HasCondition(entities.ConditionIncapacitated))
	s.Assert().True(downed.HasCondition(entities.ConditionProne))
}

func (s *ConditionsTestSuite) TestThreeFailedSavesKill() {
	enc, downed := s.downedPair(roller.NewScripted(5, 9, 3))

	for i := 0; i < 3; i++ {
		s.Require().NoError(enc.rollDeathSave(s.ctx, downed))
	}
	s.Assert().True(downed.IsDead())
	s.Assert().False(downed.IsDying(), "dying ends at death")
}

func (s *ConditionsTestSuite) TestThreeSuccessfulSavesStabilize() {
	enc, downed := s.downedPair(roller.NewScripted(10, 15, 19))

	for i := 0; i < 3; i++ {
		s.Require().NoError(enc.rollDeathSave(s.ctx, downed))
	}
	s.Assert().True(downed.IsStable())
	s.Assert().True(downed.IsUnconscious(), "stable combatants stay down")
	s.Assert().False(downed.IsDying())
	s.Assert().Equal(0, downed.DeathSaves.Successes, "counters reset on stabilizing")
}

func (s *ConditionsTestSuite) TestNaturalTwentyRevivesWithOneHP() {
	enc, downed := s.downedPair(roller.NewScripted(20))

	s.Require().NoError(enc.rollDeathSave(s.ctx, downed))
	s.Assert().Equal(1, downed.CurHP)
	s.Assert().False(downed.IsDying())
	s.Assert().False(downed.IsUnconscious())
}

func (s *ConditionsTestSuite) TestNaturalOneCountsTwice() {
	enc, downed := s.downedPair(roller.NewScripted(1, 4))

	s.Require().NoError(enc.rollDeathSave(s.ctx, downed))
	s.Assert().Equal(2, downed.DeathSaves.Failures)

	s.Require().NoError(enc.rollDeathSave(s.ctx, downed))
	s.Assert().True(downed.IsDead())
}

func (s *ConditionsTestSuite) TestDamageWhileDownedAddsFailures() {
	enc, downed := s.downedPair(roller.NewScripted())
	foe, err := enc.Lookup("foe")
	s.Require().NoError(err)

	_, err = enc.dealDamage(s.ctx, foe, downed, map[string]int{"slashing": 5}, false)
	s.Require().NoError(err)
	s.Assert().Equal(1, downed.DeathSaves.Failures)

	_, err = enc.dealDamage(s.ctx, foe, downed, map[string]int{"slashing": 5}, true)
	s.Require().NoError(err)
	s.Assert().True(downed.IsDead(), "a crit adds two failures for three total")
}

func (s *ConditionsTestSuite) TestDamageWakesTheStable() {
	enc, downed := s.downedPair(roller.NewScripted())
	enc.removeCondition(downed, entities.ConditionDying)
	s.Require().NoError(enc.applyCondition(s.ctx, downed, &entities.Condition{
		Name:   entities.ConditionStable,
		Rounds: entities.IndefiniteRounds,
	}))
	downed.DeathSaves.Successes = 3

	foe, err := enc.Lookup("foe")
	s.Require().NoError(err)
	_, err = enc.dealDamage(s.ctx, foe, downed, map[string]int{"slashing": 5}, false)
	s.Require().NoError(err)

	s.Assert().False(downed.IsStable())
	s.Assert().True(downed.IsDying(), "stability is lost and dying resumes")
	s.Assert().Equal(1, downed.DeathSaves.Failures)
	s.Assert().Equal(0, downed.DeathSaves.Successes, "old progress is wiped")
}

func (s *ConditionsTestSuite) TestConditionImmunitySkipsApply() {
	fighter := newFighter("fighter", entities.TeamPlayer)
	fighter.ConditionImmunities = []string{entities.ConditionFrightened}
	foe := newFighter("foe", entities.TeamEnemy)

	enc, err := newTestEncounter(roller.NewScripted(), fighter, foe)
	s.Require().NoError(err)

	s.Require().NoError(enc.applyCondition(s.ctx, fighter, &entities.Condition{
		Name:   entities.ConditionFrightened,
		Rounds: 3,
	}))
	s.Assert().False(fighter.HasCondition(entities.ConditionFrightened))
}

func (s *ConditionsTestSuite) TestReapplyKeepsLongerDuration() {
	fighter := newFighter("fighter", entities.TeamPlayer)
	foe := newFighter("foe", entities.TeamEnemy)

	enc, err := newTestEncounter(roller.NewScripted(), fighter, foe)
	s.Require().NoError(err)

	s.Require().NoError(enc.applyCondition(s.ctx, fighter, &entities.Condition{
		Name: entities.ConditionPoisoned, Rounds: 5,
	}))
	s.Require().NoError(enc.applyCondition(s.ctx, fighter, &entities.Condition{
		Name: entities.ConditionPoisoned, Rounds: 2,
	}))
	s.Assert().Equal(5, fighter.FindCondition(entities.ConditionPoisoned).Rounds)

	s.Require().NoError(enc.applyCondition(s.ctx, fighter, &entities.Condition{
		Name: entities.ConditionPoisoned, Rounds: 8,
	}))
	s.Assert().Equal(8, fighter.FindCondition(entities.ConditionPoisoned).Rounds)
}

func (s *ConditionsTestSuite) TestRemoveConditionDropsUnsustainedLinks() {
	fighter := newFighter("fighter", entities.TeamPlayer)
	foe := newFighter("foe", entities.TeamEnemy)

	enc, err := newTestEncounter(roller.NewScripted(), fighter, foe)
	s.Require().NoError(err)

	s.Require().NoError(enc.applyCondition(s.ctx, fighter, &entities.Condition{
		Name: entities.ConditionParalyzed, Rounds: 3,
	}))
	s.Require().True(fighter.HasCondition(entities.ConditionIncapacitated))

	// A second source of incapacitated keeps it alive.
	s.Require().NoError(enc.applyCondition(s.ctx, fighter, &entities.Condition{
		Name: entities.ConditionStunned, Rounds: 2,
	}))

	enc.removeCondition(fighter, entities.ConditionParalyzed)
	s.Assert().True(fighter.HasCondition(entities.ConditionIncapacitated),
		"stunned still sustains incapacitated")

	enc.removeCondition(fighter, entities.ConditionStunned)
	s.Assert().False(fighter.HasCondition(entities.ConditionIncapacitated))
}

func (s *ConditionsTestSuite) TestStartOfTurnCountsDownAndExpires() {
	fighter := newFighter("fighter", entities.TeamPlayer)
	foe := newFighter("foe", entities.TeamEnemy)

	enc, err := newTestEncounter(roller.NewScripted(), fighter, foe)
	s.Require().NoError(err)

	fighter.Conditions = append(fighter.Conditions, &entities.Condition{
		Name: entities.ConditionPoisoned, Rounds: 2,
	})

	s.Require().NoError(enc.startOfTurn(s.ctx, fighter))
	s.Assert().Equal(1, fighter.FindCondition(entities.ConditionPoisoned).Rounds)

	s.Require().NoError(enc.startOfTurn(s.ctx, fighter))
	s.Assert().False(fighter.HasCondition(entities.ConditionPoisoned))
}

func (s *ConditionsTestSuite) TestStartOfTurnAppliesOngoingDamage() {
	fighter := newFighter("fighter", entities.TeamPlayer)
	foe := newFighter("foe", entities.TeamEnemy)

	// Burning ticks 1d4 fire at the start of the turn; scripted to 3.
	enc, err := newTestEncounter(roller.NewScripted(3), fighter, foe)
	s.Require().NoError(err)

	fighter.Conditions = append(fighter.Conditions, &entities.Condition{
		Name:       entities.ConditionBurning,
		Rounds:     2,
		Source:     "foe",
		Damage:     entities.DiceExpr{Count: 1, Sides: 4},
		DamageType: "fire",
	})

	s.Require().NoError(enc.startOfTurn(s.ctx, fighter))
	s.Assert().Equal(27, fighter.CurHP)
}

func (s *ConditionsTestSuite) TestStartOfTurnEndsDodging() {
	fighter := newFighter("fighter", entities.TeamPlayer)
	foe := newFighter("foe", entities.TeamEnemy)

	enc, err := newTestEncounter(roller.NewScripted(), fighter, foe)
	s.Require().NoError(err)

	s.Require().NoError(enc.applyCondition(s.ctx, fighter, &entities.Condition{
		Name: entities.ConditionDodging, Rounds: entities.IndefiniteRounds, Source: fighter.Name,
	}))
	s.Require().NoError(enc.startOfTurn(s.ctx, fighter))
	s.Assert().False(fighter.HasCondition(entities.ConditionDodging))
}

func (s *ConditionsTestSuite) TestDashAddsMovement() {
	fighter := newFighter("fighter", entities.TeamPlayer)
	foe := newFighter("foe", entities.TeamEnemy)

	enc, err := newTestEncounter(roller.NewScripted(), fighter, foe)
	s.Require().NoError(err)

	fighter.Economy.Reset(fighter.Speed)
	def := &entities.ActionDef{Name: "dash", Category: "dash", Kind: entities.KindAuto}
	s.Require().NoError(enc.resolveAuto(s.ctx, fighter, def))
	s.Assert().Equal(60, fighter.Economy.Speed)
}

func (s *ConditionsTestSuite) TestFleeRemovesFromTheFight() {
	fighter := newFighter("fighter", entities.TeamPlayer)
	foe := newFighter("foe", entities.TeamEnemy)

	enc, err := newTestEncounter(roller.NewScripted(), fighter, foe)
	s.Require().NoError(err)
	enc.order = []*entities.Combatant{fighter, foe}

	def := &entities.ActionDef{Name: "flee", Category: "flee", Kind: entities.KindAuto}
	s.Require().NoError(enc.resolveAuto(s.ctx, foe, def))

	s.Assert().True(foe.HasCondition(entities.ConditionFled))
	s.Assert().True(foe.Defeated(), "fled combatants count as out of the fight")
	s.Assert().Equal([]*entities.Combatant{fighter}, enc.order)

	outcome := enc.checkTermination()
	s.Require().NotNil(outcome)
	s.Assert().Equal(entities.SideParty, outcome.Winner)
}

func (s *ConditionsTestSuite) TestRefillRestoresResources() {
	fighter := newFighter("fighter", entities.TeamPlayer)
	fighter.Resources = map[string]int{"breath": 0}
	fighter.ResourcesMax = map[string]int{"breath": 2}
	foe := newFighter("foe", entities.TeamEnemy)

	enc, err := newTestEncounter(roller.NewScripted(), fighter, foe)
	s.Require().NoError(err)

	def := &entities.ActionDef{Name: "recharge", Category: "refill", Kind: entities.KindAuto}
	s.Require().NoError(enc.resolveAuto(s.ctx, fighter, def))
	s.Assert().Equal(2, fighter.Resources["breath"])
}

func (s *ConditionsTestSuite) TestStabilizeEndsDying() {
	enc, downed := s.downedPair(roller.NewScripted())
	downed.DeathSaves.Failures = 2
	medic := newFighter("medic", entities.TeamPlayer)
	enc.roster = append(enc.roster, medic)
	enc.byName[medic.Name] = medic

	def := &entities.ActionDef{
		Name:     "stabilize_ally",
		Category: "stabilize",
		Kind:     entities.KindSpecial,
		Targets:  []entities.TargetRel{entities.TargetAlly},
	}
	s.Require().NoError(enc.resolveSpecial(s.ctx, medic, downed, def))

	s.Assert().False(downed.IsDying())
	s.Assert().True(downed.IsStable())
	s.Assert().True(downed.IsUnconscious())
	s.Assert().Equal(0, downed.DeathSaves.Failures)
	s.Assert().Equal(0, downed.CurHP, "stabilizing restores no HP")
}

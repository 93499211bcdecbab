package loader

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/rendaletaas/dndCombatSim/internal/entities"
	"github.com/rendaletaas/dndCombatSim/internal/errors"
)

type LoaderTestSuite struct {
	suite.Suite
}

func TestLoaderSuite(t *testing.T) {
	suite.Run(t, new(LoaderTestSuite))
}

const attacksDoc = `{
  "attacks": [
    {
      "name": "longsword",
      "ability": "str",
      "categories": ["martial"],
      "damage": [{"dice": "1d8", "ability": "str", "type": "slashing"}]
    }
  ]
}`

const actionsDoc = `{
  "actions": [
    {
      "name": "attack_longsword",
      "default_bias": 8,
      "economy": "regular",
      "kind": "attack",
      "targets": ["enemy"],
      "attack": "longsword"
    },
    {
      "name": "move",
      "category": "movement",
      "economy": "movement",
      "kind": "movement",
      "targets": ["self"]
    }
  ]
}`

// baseCatalog parses the shared attack and action documents.
func (s *LoaderTestSuite) baseCatalog() *entities.Catalog {
	catalog := entities.NewCatalog()
	s.Require().NoError(parseAttacks([]byte(attacksDoc), catalog))
	s.Require().NoError(parseActions([]byte(actionsDoc), catalog))
	return catalog
}

func (s *LoaderTestSuite) TestParseAttacks() {
	catalog := s.baseCatalog()

	atk := catalog.Attacks["longsword"]
	s.Require().NotNil(atk)
	s.Assert().Equal(entities.AbilityStrength, atk.Ability)
	s.Require().Len(atk.Damage, 1)
	s.Assert().Equal(entities.DiceExpr{Count: 1, Sides: 8}, atk.Damage[0].Dice)
	s.Assert().Equal("slashing", atk.Damage[0].Type)
}

func (s *LoaderTestSuite) TestParseAttacksRejectsMalformedDice() {
	catalog := entities.NewCatalog()
	doc := `{"attacks": [{"name": "club", "ability": "str", "damage": [{"dice": "1dx", "type": "bludgeoning"}]}]}`
	err := parseAttacks([]byte(doc), catalog)
	s.Require().Error(err)
	s.Assert().True(errors.IsInvalidArgument(err))
	s.Assert().Contains(errors.GetMessage(err), "dice")
}

func (s *LoaderTestSuite) TestParseAttacksRejectsBadAbility() {
	catalog := entities.NewCatalog()
	doc := `{"attacks": [{"name": "club", "ability": "luck", "damage": [{"dice": "1d4", "type": "bludgeoning"}]}]}`
	err := parseAttacks([]byte(doc), catalog)
	s.Require().Error(err)
	s.Assert().True(errors.IsInvalidArgument(err))
}

func (s *LoaderTestSuite) TestParseActionsRejectsUnknownAttack() {
	catalog := entities.NewCatalog()
	doc := `{"actions": [{"name": "swing", "economy": "regular", "kind": "attack", "targets": ["enemy"], "attack": "ghost_blade"}]}`
	err := parseActions([]byte(doc), catalog)
	s.Require().Error(err)
	s.Assert().Contains(errors.GetMessage(err), "ghost_blade")
}

func (s *LoaderTestSuite) TestParseActionsRejectsOffScaleBias() {
	catalog := entities.NewCatalog()
	s.Require().NoError(parseAttacks([]byte(attacksDoc), catalog))

	doc := `{"actions": [{"name": "swing", "default_bias": 3, "economy": "regular", "kind": "attack", "targets": ["enemy"], "attack": "longsword"}]}`
	err := parseActions([]byte(doc), catalog)
	s.Require().Error(err)
	s.Assert().Contains(errors.GetMessage(err), "default_bias")
}

func (s *LoaderTestSuite) TestParseSpellsRejectsBadSave() {
	catalog := entities.NewCatalog()
	doc := `{"spells": [{"name": "zap", "level": 0, "cast": "regular", "targets": ["enemy"], "save": "luck"}]}`
	err := parseSpells([]byte(doc), catalog)
	s.Require().Error(err)
	s.Assert().True(errors.IsInvalidArgument(err))
}

func (s *LoaderTestSuite) TestParseSpellsRejectsUnknownActionSpell() {
	catalog := entities.NewCatalog()
	doc := `{"actions": [{"name": "cast_zap", "economy": "regular", "kind": "spell", "targets": ["enemy"], "spell": "zap"}]}`
	err := parseActions([]byte(doc), catalog)
	s.Require().Error(err)
	s.Assert().Contains(errors.GetMessage(err), "zap")
}

const rosterDoc = `{
  "combatants": [
    {
      "name": "fighter",
      "team": "player",
      "abilities": {"str": 16, "dex": 12, "con": 14, "int": 10, "wis": 10, "cha": 10},
      "proficiency": 2,
      "ac": 18,
      "max_hp": 28,
      "actions": {"attack_longsword": 8, "move": 4}
    },
    {
      "name": "goblin",
      "team": "enemy",
      "abilities": {"str": 8, "dex": 14, "con": 10, "int": 10, "wis": 8, "cha": 8},
      "proficiency": 2,
      "ac": 15,
      "max_hp": 7,
      "speed": 30,
      "actions": {"attack_longsword": 8}
    },
    {
      "name": "goblin",
      "team": "enemy",
      "abilities": {"str": 8, "dex": 14, "con": 10, "int": 10, "wis": 8, "cha": 8},
      "proficiency": 2,
      "ac": 15,
      "max_hp": 7,
      "actions": {"attack_longsword": 8}
    }
  ]
}`

func (s *LoaderTestSuite) TestParseRoster() {
	roster, err := parseRoster([]byte(rosterDoc), s.baseCatalog())
	s.Require().NoError(err)
	s.Require().Len(roster, 3)

	fighter := roster[0]
	s.Assert().Equal("fighter", fighter.Name)
	s.Assert().Equal(entities.TeamPlayer, fighter.Team)
	s.Assert().Equal(16, fighter.Scores.Strength)
	s.Assert().Equal(28, fighter.CurHP, "combatants start at full HP")
	s.Assert().Equal(30, fighter.Speed, "speed defaults to 30")
	s.Assert().Equal(8, fighter.Actions["attack_longsword"])
}

func (s *LoaderTestSuite) TestParseRosterSuffixesDuplicateNames() {
	roster, err := parseRoster([]byte(rosterDoc), s.baseCatalog())
	s.Require().NoError(err)

	s.Assert().Equal("goblin", roster[1].Name)
	s.Assert().Equal("goblin_2", roster[2].Name)
}

func (s *LoaderTestSuite) TestParseRosterMergesDefaultBias() {
	doc := `{"combatants": [{
      "name": "x", "team": "enemy",
      "abilities": {"str": 10, "dex": 10, "con": 10, "int": 10, "wis": 10, "cha": 10},
      "ac": 10, "max_hp": 5,
      "actions": {"attack_longsword": 0, "move": 0}}]}`
	roster, err := parseRoster([]byte(doc), s.baseCatalog())
	s.Require().NoError(err)

	s.Assert().Equal(8, roster[0].Actions["attack_longsword"],
		"zero bias falls back to the catalog default")
	s.Assert().Equal(0, roster[0].Actions["move"],
		"no catalog default leaves the action disabled")
}

func (s *LoaderTestSuite) TestParseRosterRejectsBadTeam() {
	doc := `{"combatants": [{
      "name": "x", "team": "neutral",
      "abilities": {"str": 10, "dex": 10, "con": 10, "int": 10, "wis": 10, "cha": 10},
      "ac": 10, "max_hp": 5, "actions": {"move": 4}}]}`
	_, err := parseRoster([]byte(doc), s.baseCatalog())
	s.Require().Error(err)
	s.Assert().Contains(errors.GetMessage(err), "team")
}

func (s *LoaderTestSuite) TestParseRosterRejectsMissingAbility() {
	doc := `{"combatants": [{
      "name": "x", "team": "enemy",
      "abilities": {"str": 10, "dex": 10, "con": 10, "int": 10, "wis": 10},
      "ac": 10, "max_hp": 5, "actions": {"move": 4}}]}`
	_, err := parseRoster([]byte(doc), s.baseCatalog())
	s.Require().Error(err)
	s.Assert().Contains(errors.GetMessage(err), "cha")
}

func (s *LoaderTestSuite) TestParseRosterRejectsUnknownAction() {
	doc := `{"combatants": [{
      "name": "x", "team": "enemy",
      "abilities": {"str": 10, "dex": 10, "con": 10, "int": 10, "wis": 10, "cha": 10},
      "ac": 10, "max_hp": 5, "actions": {"summon_dragon": 8}}]}`
	_, err := parseRoster([]byte(doc), s.baseCatalog())
	s.Require().Error(err)
	s.Assert().Contains(errors.GetMessage(err), "summon_dragon")
}

func (s *LoaderTestSuite) TestParseRosterRejectsOffScaleBias() {
	doc := `{"combatants": [{
      "name": "x", "team": "enemy",
      "abilities": {"str": 10, "dex": 10, "con": 10, "int": 10, "wis": 10, "cha": 10},
      "ac": 10, "max_hp": 5, "actions": {"move": 5}}]}`
	_, err := parseRoster([]byte(doc), s.baseCatalog())
	s.Require().Error(err)
	s.Assert().Contains(errors.GetMessage(err), "bias")
}

func (s *LoaderTestSuite) TestParseRosterRejectsEmpty() {
	_, err := parseRoster([]byte(`{"combatants": []}`), s.baseCatalog())
	s.Require().Error(err)
	s.Assert().True(errors.IsInvalidArgument(err))
}

func (s *LoaderTestSuite) TestParseRosterSlots() {
	doc := `{"combatants": [{
      "name": "cleric", "team": "player",
      "abilities": {"str": 10, "dex": 10, "con": 10, "int": 10, "wis": 16, "cha": 10},
      "ac": 16, "max_hp": 20,
      "slots": {"1": 4, "2": 3},
      "spell_ability": "wis",
      "actions": {"move": 4}}]}`
	roster, err := parseRoster([]byte(doc), s.baseCatalog())
	s.Require().NoError(err)

	cleric := roster[0]
	s.Assert().Equal(map[int]int{1: 4, 2: 3}, cleric.Slots)
	s.Assert().Equal(map[int]int{1: 4, 2: 3}, cleric.SlotsMax)
	s.Assert().Equal(entities.AbilityWisdom, cleric.SpellAbility)
}

func (s *LoaderTestSuite) TestParseRosterRejectsBadSlotLevel() {
	doc := `{"combatants": [{
      "name": "cleric", "team": "player",
      "abilities": {"str": 10, "dex": 10, "con": 10, "int": 10, "wis": 16, "cha": 10},
      "ac": 16, "max_hp": 20,
      "slots": {"10": 1},
      "actions": {"move": 4}}]}`
	_, err := parseRoster([]byte(doc), s.baseCatalog())
	s.Require().Error(err)
	s.Assert().Contains(errors.GetMessage(err), "slot level")
}

// TestShippedDataLoads exercises the real data files against the full
// load path.
func (s *LoaderTestSuite) TestShippedDataLoads() {
	catalog, err := LoadCatalog("../../data")
	s.Require().NoError(err)
	s.Assert().NotEmpty(catalog.Attacks)
	s.Assert().NotEmpty(catalog.Actions)
	s.Assert().NotEmpty(catalog.Spells)

	roster, err := LoadRoster("../../data", catalog)
	s.Require().NoError(err)
	s.Require().NotEmpty(roster)

	sides := make(map[entities.Side]bool)
	for _, c := range roster {
		sides[c.Team.Side()] = true
	}
	s.Assert().Len(sides, 2, "the shipped roster fields both sides")
}

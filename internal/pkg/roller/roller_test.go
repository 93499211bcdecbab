package roller_test

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/rendaletaas/dndCombatSim/internal/pkg/roller"
)

type RollerTestSuite struct {
	suite.Suite
}

func TestRollerSuite(t *testing.T) {
	suite.Run(t, new(RollerTestSuite))
}

func (s *RollerTestSuite) TestSeededBounds() {
	r := roller.NewSeeded(42)
	for i := 0; i < 1000; i++ {
		roll, err := r.Roll(20)
		s.Require().NoError(err)
		s.Require().GreaterOrEqual(roll, 1)
		s.Require().LessOrEqual(roll, 20)
	}
}

func (s *RollerTestSuite) TestSeededReplaysExactly() {
	first := roller.NewSeeded(99)
	second := roller.NewSeeded(99)

	for i := 0; i < 200; i++ {
		a, err := first.Roll(20)
		s.Require().NoError(err)
		b, err := second.Roll(20)
		s.Require().NoError(err)
		s.Require().Equal(a, b, "roll %d diverged", i)
	}
}

func (s *RollerTestSuite) TestDifferentSeedsDiverge() {
	first := roller.NewSeeded(1)
	second := roller.NewSeeded(2)

	same := true
	for i := 0; i < 50; i++ {
		a, _ := first.Roll(20)
		b, _ := second.Roll(20)
		if a != b {
			same = false
			break
		}
	}
	s.Assert().False(same, "different seeds produced identical streams")
}

func (s *RollerTestSuite) TestSeededRollN() {
	r := roller.NewSeeded(7)
	rolls, err := r.RollN(4, 6)
	s.Require().NoError(err)
	s.Require().Len(rolls, 4)
	for _, roll := range rolls {
		s.Assert().GreaterOrEqual(roll, 1)
		s.Assert().LessOrEqual(roll, 6)
	}
}

func (s *RollerTestSuite) TestSeededRejectsBadSize() {
	r := roller.NewSeeded(1)
	_, err := r.Roll(0)
	s.Assert().Error(err)
}

func (s *RollerTestSuite) TestScriptedSequence() {
	r := roller.NewScripted(20, 1, 10)

	roll, err := r.Roll(20)
	s.Require().NoError(err)
	s.Assert().Equal(20, roll)

	rolls, err := r.RollN(2, 20)
	s.Require().NoError(err)
	s.Assert().Equal([]int{1, 10}, rolls)
	s.Assert().Equal(0, r.Remaining())

	_, err = r.Roll(20)
	s.Assert().Error(err, "exhausted script fails loudly")
}

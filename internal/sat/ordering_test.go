package sat

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVarOrder_tieBreaksOnSmallestExternalID(t *testing.T) {
	// Variable 5 is registered before 3, so it has the smaller dense index,
	// but the tie must go to the smaller external id.
	s := NewDefaultSolver()
	require.NoError(t, s.AddClause([]int{5, 3}))

	l := s.order.NextDecision(s)

	require.Equal(t, 3, s.externalLit(l))
}

func TestVarOrder_higherScoreWinsOverSmallerID(t *testing.T) {
	s := NewDefaultSolver()
	require.NoError(t, s.AddClause([]int{3, 5}))

	s.order.BumpScore(s.varIndex[5])
	l := s.order.NextDecision(s)

	require.Equal(t, 5, s.externalLit(l))
}

func TestVarOrder_defaultPhaseIsTrue(t *testing.T) {
	s := NewDefaultSolver()
	require.NoError(t, s.AddClause([]int{7, 8}))

	l := s.order.NextDecision(s)

	require.True(t, l.IsPositive())
}

func TestVarOrder_reinsertSavesPhase(t *testing.T) {
	s := NewDefaultSolver()
	require.NoError(t, s.AddClause([]int{7, 8}))
	v := s.varIndex[7]

	// Assign 7 to false and undo the decision: the phase must stick and 7
	// must be selectable again.
	require.True(t, s.assume(NegativeLiteral(v)))
	s.cancelUntil(0)
	s.order.BumpScore(v)

	l := s.order.NextDecision(s)
	require.Equal(t, v, l.VarID())
	require.False(t, l.IsPositive())
}

func TestVarOrder_nextDecisionSkipsAssigned(t *testing.T) {
	s := NewDefaultSolver()
	require.NoError(t, s.AddClause([]int{1, 2}))
	require.True(t, s.enqueue(PositiveLiteral(s.varIndex[1]), nil))

	l := s.order.NextDecision(s)

	require.Equal(t, 2, s.externalLit(l))
}

func TestVarOrder_decayGrowsIncrement(t *testing.T) {
	vo := NewVarOrder(0.95)

	vo.DecayScores()

	require.InDelta(t, 1/0.95, vo.scoreInc, 1e-9)
}

func TestVarOrder_rescalePreservesOrder(t *testing.T) {
	vo := NewVarOrder(0.95)
	for ext := 1; ext <= 3; ext++ {
		vo.AddVar(ext)
	}

	vo.scoreInc = 6e99
	vo.BumpScore(0)
	vo.BumpScore(1)
	vo.BumpScore(1) // crosses the 1e100 threshold and rescales

	require.Greater(t, vo.Score(1), vo.Score(0))
	require.Greater(t, vo.Score(0), vo.Score(2))
	for v := 0; v < 3; v++ {
		require.False(t, math.IsInf(vo.Score(v), 0))
		require.GreaterOrEqual(t, vo.Score(v), 0.0)
		require.LessOrEqual(t, vo.Score(v), 1e100)
	}
	require.InDelta(t, 0.6, vo.scoreInc, 1e-9) // 6e99 * 1e-100
}

func TestVarOrder_incrementOverflowRescales(t *testing.T) {
	vo := NewVarOrder(0.5) // doubles the increment on every decay
	vo.AddVar(1)
	vo.AddVar(2)
	vo.BumpScore(0)

	for i := 0; i < 400; i++ {
		vo.DecayScores()
	}

	require.False(t, math.IsInf(vo.scoreInc, 0))
	require.Positive(t, vo.scoreInc)
	require.LessOrEqual(t, vo.scoreInc, 1e100)
	require.Greater(t, vo.Score(0), vo.Score(1))
}

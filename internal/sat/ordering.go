package sat

import (
	"log"

	"github.com/rhartert/yagh"
)

// VarOrder maintains the order in which unassigned variables are selected
// by the solver, together with each variable's saved phase.
type VarOrder struct {
	// Binary heap to access the next variable with the highest score. The
	// heap breaks ties using the dense index of its elements; NextDecision
	// refines that to the smallest external id.
	order *yagh.IntMap[float64]

	extIDs []int     // external id of each variable
	scores []float64 // in [0, 1e100]

	scoreInc   float64 // in (0, 1e100]
	scoreDecay float64 // in (0, 1]

	phases []LBool

	// Buffer reused by NextDecision to hold the equal-score candidates
	// popped while looking for the smallest external id.
	tmpTies []int
}

// NewVarOrder returns a new initialized VarOrder.
func NewVarOrder(decay float64) *VarOrder {
	return &VarOrder{
		order:      yagh.New[float64](0),
		scoreInc:   1,
		scoreDecay: decay,
	}
}

// AddVar adds a new variable with a score of zero and no saved phase.
func (vo *VarOrder) AddVar(extID int) {
	varID := len(vo.scores)
	vo.extIDs = append(vo.extIDs, extID)
	vo.scores = append(vo.scores, 0)
	vo.phases = append(vo.phases, Unknown)

	vo.order.GrowBy(1)
	vo.order.Put(varID, 0)
}

// SavePhase records the value variable v is being assigned to.
func (vo *VarOrder) SavePhase(v int, val LBool) {
	vo.phases[v] = val
}

// Reinsert adds variable v back to the set of candidates to be selected.
// This function must be called by the solver when v is being unassigned
// (e.g. when a backjump occurs) where val is the value the variable was
// assigned to.
func (vo *VarOrder) Reinsert(v int, val LBool) {
	vo.phases[v] = val
	vo.order.Put(v, -vo.scores[v])
}

// DecayScores slightly decreases the scores of the variables. This is used
// to give more importance to variables that have had their scores increased
// recently compared to variables that had their scores increased in the
// past.
func (vo *VarOrder) DecayScores() {
	vo.scoreInc /= vo.scoreDecay // decay activities by bumping the increment
	if vo.scoreInc > 1e100 {
		vo.rescaleScoresAndIncrement()
	}
}

// BumpScore increases the score of the given variable. Note that this
// operation might trigger a rescaling of all variables scores if the score
// of v exceeds a given threshold. The rescaling is done in a way that
// conserves the relative importance of each variable when compared to each
// other.
func (vo *VarOrder) BumpScore(v int) {
	newScore := vo.scores[v] + vo.scoreInc
	vo.scores[v] = newScore
	if vo.order.Contains(v) {
		vo.order.Put(v, -newScore)
	}
	if newScore > 1e100 {
		vo.rescaleScoresAndIncrement()
	}
}

// Score returns the current activity of variable v.
func (vo *VarOrder) Score(v int) float64 {
	return vo.scores[v]
}

// NextDecision returns the next decision literal: the unassigned variable
// with the highest score, set to its saved phase, or to true if the
// variable has never been assigned. Equal scores are broken in favor of the
// smallest external variable id.
func (vo *VarOrder) NextDecision(s *Solver) Literal {
	best := -1
	for best == -1 {
		next, ok := vo.order.Pop()
		if !ok {
			log.Fatalln("empty heap")
		}
		if s.VarValue(next.Elem) == Unknown {
			best = next.Elem
		}
	}

	// The heap's own tie-break follows dense indices, which reflect
	// first-appearance order rather than external id order. Drain the
	// plateau of candidates with the same score and keep the smallest id.
	bestScore := vo.scores[best]
	vo.tmpTies = vo.tmpTies[:0]
	for {
		next, ok := vo.order.Pop()
		if !ok {
			break
		}
		v := next.Elem
		if vo.scores[v] != bestScore {
			vo.order.Put(v, -vo.scores[v])
			break
		}
		if s.VarValue(v) != Unknown {
			continue // already assigned
		}
		vo.tmpTies = append(vo.tmpTies, v)
	}
	for _, v := range vo.tmpTies {
		if vo.extIDs[v] < vo.extIDs[best] {
			best, v = v, best
		}
		vo.order.Put(v, -vo.scores[v])
	}

	switch vo.phases[best] {
	case False:
		return NegativeLiteral(best)
	default:
		return PositiveLiteral(best)
	}
}

func (vo *VarOrder) rescaleScoresAndIncrement() {
	vo.scoreInc *= 1e-100 // important to keep proportions
	for v, s := range vo.scores {
		newScore := s * 1e-100
		vo.scores[v] = newScore
		if vo.order.Contains(v) {
			vo.order.Put(v, -newScore)
		}
	}
}

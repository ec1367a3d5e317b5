package sat

import (
	"fmt"
)

// Solver implements a conflict-driven clause learning (CDCL) decision
// procedure over CNF formulas. A Solver owns all of its state and is not
// safe for concurrent use.
type Solver struct {
	// Clause database. Original clauses come first, in insertion order,
	// followed by learnt clauses in learning order. Propagation scans the
	// database in that order, so the first unit or conflicting clause in
	// database order is always the witness.
	constraints []*Clause
	learnts     []*Clause

	// Variable registry. Callers identify variables with arbitrary positive
	// ints; internally variables are dense indices assigned in order of
	// first sight. varName is the inverse of varIndex.
	varIndex map[int]int
	varName  []int

	// Variable ordering (VSIDS) and phase memory.
	order *VarOrder

	// Value assigned to each literal.
	assigns []LBool

	// Trail. varPos maps a variable to its position on the trail, or -1 if
	// the variable is unassigned. Keeping value, level, and reason in one
	// trail entry guarantees they are created and destroyed together.
	trail    []trailEntry
	trailLim []int
	varPos   []int

	// Whether the problem has reached a top level conflict.
	unsat bool

	// Search statistics.
	TotalConflicts    int64
	TotalDecisions    int64
	TotalPropagations int64
	learntSize        EMA

	// Diagnostic sink. May be nil, in which case no events are emitted.
	tracer Tracer

	// Shared by operations that need to put variables in a set and empty
	// that set efficiently.
	seenVar *ResetSet

	// Temporary slice used in analyze to accumulate literals before these
	// are copied into a new learnt clause. Having one shared buffer between
	// all calls reduces the overhead of having to grow each time analyze
	// is called.
	tmpLearnts []Literal
}

type Options struct {
	// VariableDecay controls how fast old activity bumps lose weight
	// relative to new ones. Must be in (0, 1].
	VariableDecay float64

	// Tracer receives diagnostic events from the search. A nil Tracer
	// disables tracing entirely.
	Tracer Tracer
}

var DefaultOptions = Options{
	VariableDecay: 0.95,
}

// NewDefaultSolver returns a solver configured with default options. This is
// equivalent to calling NewSolver with DefaultOptions.
func NewDefaultSolver() *Solver {
	return NewSolver(DefaultOptions)
}

func NewSolver(ops Options) *Solver {
	return &Solver{
		varIndex:   map[int]int{},
		order:      NewVarOrder(ops.VariableDecay),
		seenVar:    &ResetSet{},
		tracer:     ops.Tracer,
		learntSize: NewEMA(0.95),
	}
}

func (s *Solver) NumVariables() int {
	return len(s.varName)
}

func (s *Solver) NumAssigns() int {
	return len(s.trail)
}

func (s *Solver) NumClauses() int {
	return len(s.constraints)
}

func (s *Solver) NumLearnts() int {
	return len(s.learnts)
}

// AvgLearntSize returns a moving average of the size of the clauses learnt
// so far.
func (s *Solver) AvgLearntSize() float64 {
	return s.learntSize.Val()
}

func (s *Solver) VarValue(v int) LBool {
	return s.assigns[PositiveLiteral(v)]
}

func (s *Solver) LitValue(l Literal) LBool {
	return s.assigns[l]
}

// intern returns the dense index of external variable ext, registering the
// variable on first sight with an activity of zero.
func (s *Solver) intern(ext int) int {
	if v, ok := s.varIndex[ext]; ok {
		return v
	}
	v := len(s.varName)
	s.varIndex[ext] = v
	s.varName = append(s.varName, ext)

	// One for each literal.
	s.assigns = append(s.assigns, Unknown)
	s.assigns = append(s.assigns, Unknown)

	s.varPos = append(s.varPos, -1)
	s.seenVar.Expand()
	s.order.AddVar(ext)
	return v
}

// externalLit returns l in the caller's signed form.
func (s *Solver) externalLit(l Literal) int {
	ext := s.varName[l.VarID()]
	if l.IsPositive() {
		return ext
	}
	return -ext
}

// externalClause returns c's literals in the caller's signed form.
func (s *Solver) externalClause(c *Clause) []int {
	lits := make([]int, len(c.literals))
	for i, l := range c.literals {
		lits[i] = s.externalLit(l)
	}
	return lits
}

// AddClause appends a clause to the original database. Literals are signed
// non-zero ints: a positive value asserts the variable, a negative value its
// negation. The clause is stored verbatim: duplicated literals and
// tautologies are kept as given, and the empty clause is accepted (the first
// propagation reports it as a root-level conflict). Every variable is
// registered on first sight and each literal occurrence bumps its variable's
// activity once.
func (s *Solver) AddClause(lits []int) error {
	if s.decisionLevel() != 0 {
		return fmt.Errorf("can only add clauses at the root level")
	}
	for _, l := range lits {
		if l == 0 {
			return fmt.Errorf("literal 0 is not a valid literal")
		}
	}

	literals := make([]Literal, len(lits))
	for i, l := range lits {
		if l > 0 {
			literals[i] = PositiveLiteral(s.intern(l))
		} else {
			literals[i] = NegativeLiteral(s.intern(-l))
		}
	}
	for _, l := range literals {
		s.order.BumpScore(l.VarID())
	}

	c := &Clause{literals: literals}
	s.constraints = append(s.constraints, c)

	if s.tracer != nil {
		s.tracer.Printf("added clause %v", s.externalClause(c))
	}
	return nil
}

// Solve runs the CDCL search to completion. It returns true together with a
// total assignment of every known variable if the formula is satisfiable,
// and false with a nil map otherwise. Solve may be called again after more
// clauses have been added; an unsatisfiable result is final.
func (s *Solver) Solve() (bool, map[int]bool) {
	s.cancelUntil(0)

	for !s.unsat {
		if conflict := s.propagate(); conflict != nil {
			s.TotalConflicts++
			if s.tracer != nil {
				s.tracer.Printf("conflict on clause %v at level %d", s.externalClause(conflict), s.decisionLevel())
			}

			if s.decisionLevel() == 0 {
				s.unsat = true
				break
			}

			learnt, backtrackLevel := s.analyze(conflict)
			c := s.record(learnt)
			if s.tracer != nil {
				s.tracer.Printf("learnt clause %v, backjump to level %d", s.externalClause(c), backtrackLevel)
			}
			s.cancelUntil(backtrackLevel)
			s.order.DecayScores()
			continue
		}

		// No conflict
		// -----------

		if s.NumAssigns() == s.NumVariables() { // solution candidate
			if !s.verify() {
				// A full assignment that does not satisfy the database is
				// a bug in the engine, not in the input. Refuse the model.
				if s.tracer != nil {
					s.tracer.Printf("verification failed on a full assignment")
				}
				s.cancelUntil(0)
				return false, nil
			}
			model := s.model()
			s.cancelUntil(0)
			return true, model
		}

		l := s.order.NextDecision(s)
		s.TotalDecisions++
		if s.tracer != nil {
			s.tracer.Printf("decision: %d at level %d", s.externalLit(l), s.decisionLevel()+1)
		}
		s.assume(l)
		s.order.DecayScores()
	}

	return false, nil
}

// propagate extends the assignment until no clause in the database is unit,
// or until a conflicting clause is found, in which case that clause is
// returned. The scan restarts from the first original clause after every
// assertion, so assertions always come from the first unit clause in
// database order.
func (s *Solver) propagate() *Clause {
	for {
		conflict, asserted := s.scan()
		if conflict != nil {
			return conflict
		}
		if !asserted {
			return nil // fixed point
		}
	}
}

// scan performs a single pass over the clause database, originals first in
// insertion order, then learnts in learning order. It stops at the first
// conflicting clause or after asserting the first unit clause.
func (s *Solver) scan() (conflict *Clause, asserted bool) {
	for _, c := range s.constraints {
		if conflict, asserted = s.inspect(c); conflict != nil || asserted {
			return conflict, asserted
		}
	}
	for _, c := range s.learnts {
		if conflict, asserted = s.inspect(c); conflict != nil || asserted {
			return conflict, asserted
		}
	}
	return nil, false
}

// inspect classifies clause c under the current assignment and asserts its
// remaining literal if the clause is unit.
func (s *Solver) inspect(c *Clause) (conflict *Clause, asserted bool) {
	st, unit := c.status(s)
	switch st {
	case clauseConflicting:
		return c, false
	case clauseUnit:
		s.TotalPropagations++
		if !s.enqueue(unit, c) {
			// status guarantees the unit literal is unassigned.
			panic("unit literal already assigned")
		}
		if s.tracer != nil {
			s.tracer.Printf("propagate: %d forced by %v at level %d", s.externalLit(unit), s.externalClause(c), s.decisionLevel())
		}
		return nil, true
	default:
		return nil, false
	}
}

// enqueue records the assignment making literal l true. The from clause is
// the antecedent that forced the assignment; it is nil for decisions. It
// returns false if l's variable is already assigned to the opposite
// polarity.
func (s *Solver) enqueue(l Literal, from *Clause) bool {
	switch s.LitValue(l) {
	case False:
		return false // conflicting assignment
	case True:
		return true // already assigned
	default:
		v := l.VarID()
		s.assigns[l] = True
		s.assigns[l.Opposite()] = False
		s.varPos[v] = len(s.trail)
		s.trail = append(s.trail, trailEntry{
			lit:    l,
			level:  s.decisionLevel(),
			reason: from,
		})
		s.order.SavePhase(v, Lift(l.IsPositive()))
		return true
	}
}

// analyze walks the implication graph backwards from the conflicting clause
// and resolves antecedents until a single variable of the current decision
// level remains: the first unique implication point. It returns the learnt
// literals (the FUIP literal first) and the level to backjump to. The
// returned slice is shared between calls and must be copied to be retained.
func (s *Solver) analyze(confl *Clause) ([]Literal, int) {
	// Current number of "implication" nodes encountered in the exploration
	// of the decision level. A value of 0 indicates that the exploration
	// has reached a single implication point.
	nImplicationPoints := 0

	// Empty the buffer of literals in which the learnt clause will be
	// stored. Note that the first literal is reserved for the FUIP which is
	// set at the end of this function.
	s.tmpLearnts = s.tmpLearnts[:0]
	s.tmpLearnts = append(s.tmpLearnts, -1)

	// Next trail entry to look at. This is used to iterate over the trail
	// without actually undoing the literal assignments.
	nextLiteral := len(s.trail) - 1

	s.seenVar.Clear()
	backtrackLevel := 0

	uip := Literal(-1)
	reason := confl.literals
	for {
		for _, q := range reason {
			v := q.VarID()
			if s.seenVar.Contains(v) {
				continue
			}
			s.seenVar.Add(v)
			s.order.BumpScore(v)

			if s.varLevel(v) == s.decisionLevel() {
				nImplicationPoints++
				continue
			}

			s.tmpLearnts = append(s.tmpLearnts, q)
			if level := s.varLevel(v); level > backtrackLevel {
				backtrackLevel = level
			}
		}
		if uip == -1 && nImplicationPoints == 0 {
			panic("conflict clause has no literal at the current decision level")
		}

		// Select the next literal to resolve: the latest assigned variable
		// that appears in the clauses explored so far.
		for {
			if nextLiteral < 0 {
				panic("conflict analysis ran past the start of the trail")
			}
			e := s.trail[nextLiteral]
			nextLiteral--
			if s.seenVar.Contains(e.lit.VarID()) {
				uip = e.lit
				reason = nil
				if e.reason != nil {
					reason = e.reason.literals
				}
				break
			}
		}

		nImplicationPoints--
		if nImplicationPoints <= 0 {
			break
		}
		if reason == nil {
			panic("decision reached before the first implication point")
		}
	}

	// Add the literal corresponding to the FUIP.
	s.tmpLearnts[0] = uip.Opposite()

	return s.tmpLearnts, backtrackLevel
}

// record appends a clause produced by conflict analysis to the learnt
// database. The clause is falsified by the current assignment; it becomes
// unit once the solver backjumps and is then picked up by propagation.
func (s *Solver) record(tmpLearnt []Literal) *Clause {
	c := &Clause{
		literals: append([]Literal(nil), tmpLearnt...),
		learnt:   true,
	}
	s.learnts = append(s.learnts, c)
	s.learntSize.Add(float64(len(c.literals)))
	return c
}

// verify checks that the current assignment satisfies every clause in the
// database.
func (s *Solver) verify() bool {
	for _, c := range s.constraints {
		if !c.satisfied(s) {
			return false
		}
	}
	for _, c := range s.learnts {
		if !c.satisfied(s) {
			return false
		}
	}
	return true
}

// model captures the current (full) assignment keyed by external variable
// ids.
func (s *Solver) model() map[int]bool {
	m := make(map[int]bool, s.NumVariables())
	for v, ext := range s.varName {
		m[ext] = s.VarValue(v) == True
	}
	return m
}

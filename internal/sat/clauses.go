package sat

import (
	"strings"
)

// Clause is a disjunction of literals. Original clauses are stored exactly
// as ingested: duplicated literals and tautologies are kept as given.
type Clause struct {
	literals []Literal

	// Whether the clause was learnt or not.
	learnt bool
}

// clauseStatus is the classification of a clause under a partial
// assignment.
type clauseStatus uint8

const (
	// Some literal evaluates to true.
	clauseSatisfied clauseStatus = iota
	// Exactly one literal occurrence is unassigned, no literal is true.
	clauseUnit
	// Two or more literal occurrences are unassigned, no literal is true.
	clauseUnresolved
	// Every literal evaluates to false.
	clauseConflicting
)

// status classifies c under the solver's current assignment. For unit
// clauses the second return value is the remaining literal to assert;
// it is -1 otherwise.
//
// Unassigned occurrences are counted, not distinct variables, so a clause
// that repeats its last unassigned literal stays unresolved until the
// variable is decided. The clause still cannot be violated: once fully
// assigned it is either satisfied or conflicting as usual.
func (c *Clause) status(s *Solver) (clauseStatus, Literal) {
	unassigned := 0
	unit := Literal(-1)
	for _, l := range c.literals {
		switch s.LitValue(l) {
		case True:
			return clauseSatisfied, -1
		case Unknown:
			unassigned++
			unit = l
		}
	}

	switch unassigned {
	case 0:
		return clauseConflicting, -1
	case 1:
		return clauseUnit, unit
	default:
		return clauseUnresolved, -1
	}
}

// satisfied returns true if some literal of c evaluates to true.
func (c *Clause) satisfied(s *Solver) bool {
	for _, l := range c.literals {
		if s.LitValue(l) == True {
			return true
		}
	}
	return false
}

func (c *Clause) String() string {
	name := "Clause"
	if c.learnt {
		name = "Learnt"
	}
	if len(c.literals) == 0 {
		return name + "[]"
	}
	sb := strings.Builder{}
	sb.WriteString(name)
	sb.WriteByte('[')
	sb.WriteString(c.literals[0].String())
	for _, l := range c.literals[1:] {
		sb.WriteByte(' ')
		sb.WriteString(l.String())
	}
	sb.WriteByte(']')
	return sb.String()
}

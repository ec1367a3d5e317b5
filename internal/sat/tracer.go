package sat

// Tracer receives diagnostic events emitted by the solver at well-defined
// points of the search: clause ingestion, propagation assertions, conflicts,
// learnt clauses, backjumps, and decisions.
//
// The sink is a pure side channel: implementations must not observe or
// mutate solver state, and the search behaves identically whether a Tracer
// is installed or not. A *logrus.Logger satisfies this interface.
type Tracer interface {
	Printf(format string, v ...any)
}

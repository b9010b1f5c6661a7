// Package refine improves a complete partition by exchanging border
// precincts between neighboring communities.
//
// An Engine runs one pass for one Metric. Every iteration picks the worst
// community (highest deviation, lowest ID on ties) and, while it stays above
// the threshold, applies the best improving exchange with one of its
// neighbors. An exchange moves a single precinct either out of the worst
// community or into it; its improvement is the worst community's deviation
// before the move minus the larger deviation of the two communities after
// it. Moves that would empty or disconnect the giving community are never
// considered. Candidates are scored in parallel and ties go to the lowest
// precinct ID, then to the lowest receiving community ID.
//
// A pass ends when the worst community is within the threshold, when an
// iteration changed nothing, at the iteration cap, or with
// ErrNoBorderingCommunity when the worst community has no neighbor at all.
// The worst deviation never increases from one iteration to the next.
package refine

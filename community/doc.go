// Package community holds the mutable state of a partitioning run.
//
// What:
//
//   - Community: a set of precincts with its running region (outline union),
//     total population, aggregate partisanship, per-precinct partisanship
//     standard deviation and Schwartzberg compactness.
//   - Partition: the precinct → community ownership index over a fixed
//     precinct universe. Assign and Release serve construction; Move is the
//     transactional exchange used by refinement. Assignment and Restore
//     capture and replay a whole state.
//   - Builder: the construction-time plan for one community: how many
//     precincts it takes from each island and which link precincts it must
//     start from.
//
// Concurrency:
//
//	Partition.mu guards ownership; each Community guards its own roster with
//	its own RWMutex. Mutators take the partition lock first, then community
//	locks in ascending ID order. Readers may call Community methods
//	concurrently while no mutation is in progress.
//
// Metrics:
//
//	Partisanship is R/(R+D) over the community's summed two-party votes, 0
//	when nobody voted. The standard deviation is the population standard
//	deviation of per-precinct shares, over precincts with votes. Metrics are
//	recomputed on every roster change, so Refresh is idempotent.
//
// Errors:
//
//	ErrUnknownPrecinct, ErrUnknownCommunity, ErrDuplicatePrecinct,
//	ErrAlreadyAssigned, ErrNotAssigned, ErrSameCommunity, ErrLastPrecinct,
//	ErrIncomplete.
package community

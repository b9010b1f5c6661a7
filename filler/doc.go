// Package filler grows communities precinct by precinct inside an island.
//
// Each island keeps a Pool of unclaimed precincts. Fill hands a community
// its quota on one island: first its link seeds, then randomly picked
// unclaimed precincts that border what it already holds. A pick is undone
// and marked as tried when it would split the unclaimed pool into pieces,
// because a later community could then never claim both. When no untried
// bordering precinct remains, the fill releases what it took and starts
// again, up to Options.Restarts times, before reporting ErrFillExhausted.
//
// Bordering scans run on a fixed-size worker pool; workers only read.
// Every mutation happens on the calling goroutine through
// community.Partition.
package filler

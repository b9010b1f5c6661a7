// SPDX-License-Identifier: MIT
// Package: communities/synth
//
// options.go — functional options for the synthetic precinct generators.
//
// Contract:
//   • Options are functional (type Option func(*config)).
//   • Option constructors validate and panic on meaningless inputs;
//     generators themselves return errors and never panic.
//   • Determinism is explicit: seeding is done via WithSeed or WithRand.

package synth

import (
	"math/rand"

	"github.com/katalvlaran/communities/precinct"
)

// Option customizes a generator.
type Option func(*config)

type config struct {
	rng     *rand.Rand
	cell    float64
	originX float64
	originY float64
	prefix  string
	popFn   func(r, c int, rng *rand.Rand) int
	votesFn func(r, c int, rng *rand.Rand) precinct.Votes
}

const (
	defaultSeed       = 1
	defaultCell       = 1.0
	defaultPopulation = 100
)

func newConfig(opts []Option) config {
	cfg := config{
		rng:  rand.New(rand.NewSource(defaultSeed)),
		cell: defaultCell,
		popFn: func(int, int, *rand.Rand) int {
			return defaultPopulation
		},
		votesFn: func(int, int, *rand.Rand) precinct.Votes {
			return precinct.Votes{Democratic: defaultPopulation / 2, Republican: defaultPopulation / 2}
		},
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return cfg
}

// WithSeed creates a new *rand.Rand with the given seed (deterministic).
func WithSeed(seed int64) Option {
	return func(c *config) { c.rng = rand.New(rand.NewSource(seed)) }
}

// WithRand provides an explicit RNG. Panics on nil.
func WithRand(r *rand.Rand) Option {
	if r == nil {
		panic("synth: WithRand(nil)")
	}
	return func(c *config) { c.rng = r }
}

// WithCellSize sets the side length of a grid cell. Panics if size <= 0.
func WithCellSize(size float64) Option {
	if size <= 0 {
		panic("synth: WithCellSize(size<=0)")
	}
	return func(c *config) { c.cell = size }
}

// WithOrigin moves the lower-left corner of the generated area.
func WithOrigin(x, y float64) Option {
	return func(c *config) { c.originX, c.originY = x, y }
}

// WithIDPrefix prepends prefix to every generated precinct ID.
func WithIDPrefix(prefix string) Option {
	return func(c *config) { c.prefix = prefix }
}

// WithPopulationFn sets the population of cell (r, c). Panics on nil.
func WithPopulationFn(fn func(r, c int, rng *rand.Rand) int) Option {
	if fn == nil {
		panic("synth: WithPopulationFn(nil)")
	}
	return func(c *config) { c.popFn = fn }
}

// WithVotesFn sets the votes of cell (r, c). Panics on nil.
func WithVotesFn(fn func(r, c int, rng *rand.Rand) precinct.Votes) Option {
	if fn == nil {
		panic("synth: WithVotesFn(nil)")
	}
	return func(c *config) { c.votesFn = fn }
}

// RandomPopulation draws populations uniformly from [lo, hi].
func RandomPopulation(lo, hi int) func(int, int, *rand.Rand) int {
	return func(_, _ int, rng *rand.Rand) int { return lo + rng.Intn(hi-lo+1) }
}

// RandomVotes draws a Republican share uniformly and splits turnout ballots.
func RandomVotes(turnout int) func(int, int, *rand.Rand) precinct.Votes {
	return func(_, _ int, rng *rand.Rand) precinct.Votes {
		rep := rng.Intn(turnout + 1)
		return precinct.Votes{Republican: rep, Democratic: turnout - rep}
	}
}

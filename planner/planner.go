// Package planner decides, island by island, how many whole communities each
// island holds and how many precincts are left over for multi-island
// communities.
//
// Target sizes follow Sizes(p, n): every community gets p/n precincts and the
// first p%n get one more, so at most two distinct sizes exist (large and
// small). For each island in order, Allocate enumerates every count x of small
// and y of large communities still unused with x·small + y·large not
// exceeding the island and keeps the combination with the least leftover.
// Ties prefer fewer communities, then more large ones. Leftovers are later
// chained across islands by package linker, consuming Plan.Remaining in order.
//
// Complexity: O(I · S · L) for I islands, S small and L large sizes.
package planner

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCount indicates n < 1, more communities than precincts,
	// or an empty island.
	ErrInvalidCount = errors.New("planner: invalid community count")

	// ErrInfeasible indicates the sizes cannot be realized on the islands.
	ErrInfeasible = errors.New("planner: infeasible configuration")
)

// Allocation is one whole community placed entirely on one island.
type Allocation struct {
	Island int `json:"island"`
	Size   int `json:"size"`
}

// Plan is the output of the size planner.
type Plan struct {
	// Sizes are all target sizes, large first.
	Sizes []int `json:"sizes"`

	// Whole lists single-island communities in island order, large first.
	Whole []Allocation `json:"whole"`

	// Leftover[i] is the number of precincts of island i not covered by Whole.
	Leftover []int `json:"leftover"`

	// Remaining are the target sizes not used by Whole, large first.
	Remaining []int `json:"remaining"`
}

// Sizes splits p precincts into n target sizes: p/n each, the first p%n
// getting one extra.
func Sizes(p, n int) ([]int, error) {
	if n < 1 || p < n {
		return nil, fmt.Errorf("%w: %d communities for %d precincts", ErrInvalidCount, n, p)
	}
	out := make([]int, n)
	base, extra := p/n, p%n
	for i := range out {
		out[i] = base
		if i < extra {
			out[i]++
		}
	}

	return out, nil
}

type fit struct {
	small, large, left int
}

func (f fit) better(o fit) bool {
	if f.left != o.left {
		return f.left < o.left
	}
	if f.small+f.large != o.small+o.large {
		return f.small+f.large < o.small+o.large
	}
	return f.large > o.large
}

// Allocate places whole communities to islands of the given sizes.
func Allocate(islandSizes []int, n int) (*Plan, error) {
	p := 0
	for i, s := range islandSizes {
		if s < 1 {
			return nil, fmt.Errorf("%w: island %d has %d precincts", ErrInvalidCount, i, s)
		}
		p += s
	}
	sizes, err := Sizes(p, n)
	if err != nil {
		return nil, err
	}

	small := p / n
	large := small + 1
	nLarge := p % n
	nSmall := n - nLarge

	plan := &Plan{Sizes: sizes, Leftover: make([]int, len(islandSizes))}
	for i, avail := range islandSizes {
		best := fit{left: avail}
		for x := 0; x <= nSmall; x++ {
			for y := 0; y <= nLarge; y++ {
				used := x*small + y*large
				if used > avail {
					break
				}
				if f := (fit{small: x, large: y, left: avail - used}); f.better(best) {
					best = f
				}
			}
		}
		for k := 0; k < best.large; k++ {
			plan.Whole = append(plan.Whole, Allocation{Island: i, Size: large})
		}
		for k := 0; k < best.small; k++ {
			plan.Whole = append(plan.Whole, Allocation{Island: i, Size: small})
		}
		nLarge -= best.large
		nSmall -= best.small
		plan.Leftover[i] = best.left
	}

	for k := 0; k < nLarge; k++ {
		plan.Remaining = append(plan.Remaining, large)
	}
	for k := 0; k < nSmall; k++ {
		plan.Remaining = append(plan.Remaining, small)
	}

	return plan, nil
}

// Chained reports whether any island has leftover precincts to link.
func (pl *Plan) Chained() bool {
	for _, l := range pl.Leftover {
		if l > 0 {
			return true
		}
	}

	return false
}

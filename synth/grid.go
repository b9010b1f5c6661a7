// SPDX-License-Identifier: MIT
// Package: communities/synth
//
// grid.go — rows×cols lattice of square precincts.
//
// Contract:
//   • rows ≥ 1 and cols ≥ 1 (else ErrTooFewPrecincts).
//   • IDs use the fixed scheme "<prefix>r,c" in row-major order.
//   • Cell (r, c) spans [x0+c·s, x0+(c+1)·s] × [y0+r·s, y0+(r+1)·s]; neighbors
//     share vertices exactly, so edge-adjacent cells border and diagonal
//     cells only touch.
//   • Populations and votes come from the configured functions, drawn in
//     row-major order from the configured RNG.

package synth

import (
	"errors"
	"fmt"

	"github.com/ctessum/geom"

	"github.com/katalvlaran/communities/precinct"
)

// ErrTooFewPrecincts indicates a generator asked for an empty shape.
var ErrTooFewPrecincts = errors.New("synth: too few precincts")

const (
	methodGrid = "Grid"
	minGridDim = 1
	gridIDFmt  = "%s%d,%d"
)

// Grid returns rows×cols square precincts in row-major order.
func Grid(rows, cols int, opts ...Option) ([]*precinct.Precinct, error) {
	if rows < minGridDim || cols < minGridDim {
		return nil, fmt.Errorf("%s: rows=%d, cols=%d (each must be ≥ %d): %w",
			methodGrid, rows, cols, minGridDim, ErrTooFewPrecincts)
	}
	cfg := newConfig(opts)

	return cfg.grid(rows, cols, nil)
}

// grid emits the lattice, skipping cells for which skip reports true.
func (cfg config) grid(rows, cols int, skip func(r, c int) bool) ([]*precinct.Precinct, error) {
	out := make([]*precinct.Precinct, 0, rows*cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			if skip != nil && skip(r, c) {
				continue
			}
			id := fmt.Sprintf(gridIDFmt, cfg.prefix, r, c)
			p, err := precinct.New(id, cfg.square(r, c), cfg.popFn(r, c, cfg.rng), cfg.votesFn(r, c, cfg.rng))
			if err != nil {
				return nil, fmt.Errorf("%s: %s: %w", methodGrid, id, err)
			}
			out = append(out, p)
		}
	}

	return out, nil
}

func (cfg config) square(r, c int) geom.Polygon {
	x := cfg.originX + float64(c)*cfg.cell
	y := cfg.originY + float64(r)*cfg.cell
	s := cfg.cell

	return geom.Polygon{{
		{X: x, Y: y},
		{X: x + s, Y: y},
		{X: x + s, Y: y + s},
		{X: x, Y: y + s},
		{X: x, Y: y},
	}}
}

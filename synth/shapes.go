package synth

import (
	"fmt"

	"github.com/ctessum/geom"

	"github.com/katalvlaran/communities/precinct"
)

// Island is one rectangular landmass of an Archipelago.
type Island struct {
	Rows, Cols int
	// Holes lists "r,c" cells left out (lakes, or pinch points when the
	// removed cells leave a one-cell-wide isthmus).
	Holes []string
}

// Archipelago lays islands out left to right, separated by a sea gap of
// two cells, and prefixes IDs with "i<k>:".
func Archipelago(islands []Island, opts ...Option) ([]*precinct.Precinct, error) {
	if len(islands) == 0 {
		return nil, fmt.Errorf("Archipelago: %w", ErrTooFewPrecincts)
	}
	cfg := newConfig(opts)
	baseX, baseY := cfg.originX, cfg.originY
	var out []*precinct.Precinct
	for k, isl := range islands {
		if isl.Rows < minGridDim || isl.Cols < minGridDim {
			return nil, fmt.Errorf("Archipelago: island %d %dx%d: %w", k, isl.Rows, isl.Cols, ErrTooFewPrecincts)
		}
		holes := make(map[string]bool, len(isl.Holes))
		for _, h := range isl.Holes {
			holes[h] = true
		}
		ic := cfg
		ic.prefix = fmt.Sprintf("%si%d:", cfg.prefix, k)
		ic.originX, ic.originY = baseX, baseY
		ps, err := ic.grid(isl.Rows, isl.Cols, func(r, c int) bool { return holes[fmt.Sprintf("%d,%d", r, c)] })
		if err != nil {
			return nil, err
		}
		out = append(out, ps...)
		baseX += float64(isl.Cols+2) * cfg.cell
	}

	return out, nil
}

// Wheel returns four mutually bordering precincts: a central triangle
// "hub" and three trapezoids "rim0".."rim2" around it. Cell size scales the
// shape; populations and votes are drawn as for cells (0,0)..(0,3).
func Wheel(opts ...Option) ([]*precinct.Precinct, error) {
	cfg := newConfig(opts)
	s := cfg.cell
	pt := func(x, y float64) geom.Point { return geom.Point{X: cfg.originX + x*s, Y: cfg.originY + y*s} }
	outer := []geom.Point{pt(0, 0), pt(8, 0), pt(4, 8)}
	inner := []geom.Point{pt(3, 2), pt(5, 2), pt(4, 4)}

	shapes := []struct {
		id   string
		poly geom.Polygon
	}{
		{"hub", geom.Polygon{{inner[0], inner[1], inner[2], inner[0]}}},
	}
	for k := 0; k < 3; k++ {
		n := (k + 1) % 3
		shapes = append(shapes, struct {
			id   string
			poly geom.Polygon
		}{
			fmt.Sprintf("rim%d", k),
			geom.Polygon{{outer[k], outer[n], inner[n], inner[k], outer[k]}},
		})
	}

	out := make([]*precinct.Precinct, 0, len(shapes))
	for i, sh := range shapes {
		p, err := precinct.New(cfg.prefix+sh.id, sh.poly, cfg.popFn(0, i, cfg.rng), cfg.votesFn(0, i, cfg.rng))
		if err != nil {
			return nil, fmt.Errorf("Wheel: %w", err)
		}
		out = append(out, p)
	}

	return out, nil
}

// Package dataset reads precincts from, and writes communities to, GeoJSON
// feature collections.
//
// Input features carry a Polygon or MultiPolygon geometry and numeric
// properties for population and votes; the property names are configurable
// through Keys. For a MultiPolygon only its largest part is kept. Every
// malformed feature is reported, not just the first.
package dataset

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/ctessum/geom"
	geojson "github.com/paulmach/go.geojson"
	"go.uber.org/multierr"

	"github.com/katalvlaran/communities/community"
	"github.com/katalvlaran/communities/geometry"
	"github.com/katalvlaran/communities/precinct"
)

var (
	// ErrMissingProperty indicates a required property is absent or not a
	// number.
	ErrMissingProperty = errors.New("dataset: missing property")

	// ErrGeometry indicates a feature without a usable polygon.
	ErrGeometry = errors.New("dataset: unsupported geometry")

	// ErrDuplicateID indicates two features with the same precinct ID.
	ErrDuplicateID = errors.New("dataset: duplicate precinct ID")
)

// Keys names the feature properties. Empty optional keys are not read.
type Keys struct {
	ID           string
	Population   string
	Democratic   string
	Republican   string
	Green        string
	Libertarian  string
	Reform       string
	Independent  string
	Constitution string
}

// DefaultKeys returns the property names used when nothing is configured.
func DefaultKeys() Keys {
	return Keys{
		ID:           "id",
		Population:   "population",
		Democratic:   "dem",
		Republican:   "rep",
		Green:        "green",
		Libertarian:  "lib",
		Reform:       "reform",
		Independent:  "ind",
		Constitution: "const",
	}
}

// Reader decodes precincts.
type Reader struct {
	Keys Keys

	// Snap rounds every vertex to this grid; 0 keeps coordinates as they are.
	Snap float64
}

// ReadFile decodes the feature collection at path.
func (r Reader) ReadFile(path string) ([]*precinct.Precinct, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dataset: %w", err)
	}
	defer f.Close()

	return r.Read(f)
}

// Read decodes a feature collection. Precincts keep the feature order.
func (r Reader) Read(in io.Reader) ([]*precinct.Precinct, error) {
	data, err := io.ReadAll(in)
	if err != nil {
		return nil, fmt.Errorf("dataset: %w", err)
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("dataset: %w", err)
	}

	var (
		out  = make([]*precinct.Precinct, 0, len(fc.Features))
		seen = make(map[string]int, len(fc.Features))
		errs error
	)
	for i, f := range fc.Features {
		p, err := r.feature(f)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("feature %d: %w", i, err))
			continue
		}
		if j, dup := seen[p.ID()]; dup {
			errs = multierr.Append(errs, fmt.Errorf("feature %d: %w: %q also in feature %d", i, ErrDuplicateID, p.ID(), j))
			continue
		}
		seen[p.ID()] = i
		out = append(out, p)
	}
	if errs != nil {
		return nil, errs
	}

	return out, nil
}

func (r Reader) feature(f *geojson.Feature) (*precinct.Precinct, error) {
	id := idOf(f, r.Keys.ID)
	poly, err := polygonOf(f.Geometry)
	if err != nil {
		return nil, err
	}
	poly = geometry.Snap(poly, r.Snap)

	var errs error
	need := func(key string) int {
		n, ok := number(f, key)
		if !ok {
			errs = multierr.Append(errs, fmt.Errorf("%w: %q", ErrMissingProperty, key))
		}
		return n
	}
	opt := func(key string) int {
		n, _ := number(f, key)
		return n
	}
	pop := need(r.Keys.Population)
	votes := precinct.Votes{
		Democratic:   need(r.Keys.Democratic),
		Republican:   need(r.Keys.Republican),
		Green:        opt(r.Keys.Green),
		Libertarian:  opt(r.Keys.Libertarian),
		Reform:       opt(r.Keys.Reform),
		Independent:  opt(r.Keys.Independent),
		Constitution: opt(r.Keys.Constitution),
	}
	if errs != nil {
		return nil, errs
	}

	return precinct.New(id, poly, pop, votes)
}

// idOf reads the ID property, falling back to the feature ID. Numeric IDs
// are formatted without a fraction.
func idOf(f *geojson.Feature, key string) string {
	v, ok := f.Properties[key]
	if !ok || v == nil {
		v = f.ID
	}
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case nil:
		return ""
	default:
		return fmt.Sprint(x)
	}
}

func number(f *geojson.Feature, key string) (int, bool) {
	if key == "" {
		return 0, false
	}
	switch v := f.Properties[key].(type) {
	case float64:
		return int(v), true
	case string:
		n, err := strconv.Atoi(v)
		return n, err == nil
	default:
		return 0, false
	}
}

// polygonOf converts a Polygon, or the largest part of a MultiPolygon.
func polygonOf(g *geojson.Geometry) (geom.Polygon, error) {
	if g == nil {
		return nil, fmt.Errorf("%w: none", ErrGeometry)
	}
	switch g.Type {
	case geojson.GeometryPolygon:
		return toPolygon(g.Polygon), nil
	case geojson.GeometryMultiPolygon:
		var (
			best geom.Polygon
			area float64
		)
		for _, part := range g.MultiPolygon {
			p := toPolygon(part)
			if a := geometry.NewOutline(p).Area(); best == nil || a > area {
				best, area = p, a
			}
		}
		if best == nil {
			return nil, fmt.Errorf("%w: empty MultiPolygon", ErrGeometry)
		}
		return best, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrGeometry, g.Type)
	}
}

func toPolygon(rings [][][]float64) geom.Polygon {
	out := make(geom.Polygon, 0, len(rings))
	for _, ring := range rings {
		path := make(geom.Path, 0, len(ring))
		for _, c := range ring {
			if len(c) >= 2 {
				path = append(path, geom.Point{X: c[0], Y: c[1]})
			}
		}
		out = append(out, path)
	}

	return out
}

func fromPolygon(p geom.Polygon) [][][]float64 {
	out := make([][][]float64, len(p))
	for i, ring := range p {
		out[i] = make([][]float64, len(ring))
		for j, pt := range ring {
			out[i][j] = []float64{pt.X, pt.Y}
		}
	}

	return out
}

// ReadBoundaryFile reads the first feature of the collection at path as a
// state outline.
func ReadBoundaryFile(path string) (geom.Polygon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("dataset: %w", err)
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("dataset: %w", err)
	}
	if len(fc.Features) == 0 {
		return nil, fmt.Errorf("%w: %s has no features", ErrGeometry, path)
	}

	return polygonOf(fc.Features[0].Geometry)
}

// ReadCorridors decodes a JSON array of [idA, idB] pairs.
func ReadCorridors(in io.Reader) ([][2]string, error) {
	var pairs [][2]string
	if err := json.NewDecoder(in).Decode(&pairs); err != nil {
		return nil, fmt.Errorf("dataset: corridors: %w", err)
	}

	return pairs, nil
}

// ReadCorridorsFile decodes the corridors file at path.
func ReadCorridorsFile(path string) ([][2]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dataset: %w", err)
	}
	defer f.Close()

	return ReadCorridors(f)
}

// Collection converts community views to features. Communities whose
// boundary has several exterior rings become MultiPolygons.
func Collection(views []community.View) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, v := range views {
		parts := splitParts(v.Boundary)
		var f *geojson.Feature
		if len(parts) == 1 {
			f = geojson.NewPolygonFeature(fromPolygon(parts[0]))
		} else {
			polys := make([][][][]float64, len(parts))
			for i, p := range parts {
				polys[i] = fromPolygon(p)
			}
			f = geojson.NewMultiPolygonFeature(polys...)
		}
		f.ID = v.ID
		f.SetProperty("community", v.ID)
		f.SetProperty("population", v.Population)
		f.SetProperty("partisanship", v.Partisanship)
		f.SetProperty("standard_deviation", v.StandardDeviation)
		f.SetProperty("compactness", v.Compactness)
		f.SetProperty("precincts", v.Precincts)
		fc.AddFeature(f)
	}

	return fc
}

// Write encodes views as a feature collection.
func Write(out io.Writer, views []community.View) error {
	data, err := Collection(views).MarshalJSON()
	if err != nil {
		return fmt.Errorf("dataset: %w", err)
	}
	if _, err = out.Write(data); err != nil {
		return fmt.Errorf("dataset: %w", err)
	}

	return nil
}

// WriteFile encodes views to path.
func WriteFile(path string, views []community.View) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("dataset: %w", err)
	}
	defer func() { err = multierr.Append(err, f.Close()) }()

	return Write(f, views)
}

// splitParts groups counter-clockwise exteriors with the clockwise holes
// they contain.
func splitParts(p geom.Polygon) []geom.Polygon {
	var parts []geom.Polygon
	var holes []geom.Path
	for _, ring := range p {
		if signedArea(ring) > 0 {
			parts = append(parts, geom.Polygon{ring})
		} else {
			holes = append(holes, ring)
		}
	}
	if len(parts) == 0 {
		return []geom.Polygon{p}
	}
	for _, h := range holes {
		k := 0
		for i, part := range parts {
			if len(h) > 0 && (geometry.Planar{}).Contains(part, h[0]) {
				k = i
				break
			}
		}
		parts[k] = append(parts[k], h)
	}

	return parts
}

func signedArea(r geom.Path) float64 {
	a := 0.0
	for i := 0; i+1 < len(r); i++ {
		a += r[i].X*r[i+1].Y - r[i+1].X*r[i].Y
	}

	return a / 2
}

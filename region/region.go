// Package region holds the fixed set of named neighborhood boundaries and
// answers point-in-region queries. The index is built once at startup and
// never mutated afterwards.
package region

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/conorlee8/Eppy-Events-sub001/geo"
)

// Region is one named boundary with its derived centroid and bounding box.
type Region struct {
	ID       string
	Name     string
	Boundary geo.Polygon
	Centroid geo.Point
	Bounds   geo.Bounds
}

// Index answers which region contains a point. Regions are expected to be
// non-overlapping; the first match wins and overlapping input is a
// data-quality issue, not something handled here.
type Index struct {
	regions []*Region
	byID    map[string]*Region
}

// NewIndex builds an index from named boundary polygons. Boundaries with
// fewer than 3 vertices are a caller contract violation and panic in
// geo.PolygonBounds.
func NewIndex(regions []Region) *Index {
	idx := &Index{
		regions: make([]*Region, 0, len(regions)),
		byID:    make(map[string]*Region, len(regions)),
	}
	for i := range regions {
		r := regions[i]
		r.Centroid = geo.PolygonCentroid(r.Boundary)
		r.Bounds = geo.PolygonBounds(r.Boundary)
		idx.regions = append(idx.regions, &r)
		idx.byID[r.ID] = &r
	}
	return idx
}

// RegionFor returns the first region whose polygon contains p, or nil when p
// falls outside every region. The bounding box is checked before the polygon
// test.
func (idx *Index) RegionFor(p geo.Point) *Region {
	for _, r := range idx.regions {
		if !r.Bounds.Contains(p) {
			continue
		}
		if geo.PointInPolygon(p, r.Boundary) {
			return r
		}
	}
	return nil
}

// RegionByID returns the region with the given id, or nil.
func (idx *Index) RegionByID(id string) *Region {
	return idx.byID[id]
}

// Regions returns all regions in construction order.
func (idx *Index) Regions() []*Region {
	return idx.regions
}

// Len returns the number of regions in the index.
func (idx *Index) Len() int {
	return len(idx.regions)
}

// FromGeoJSON builds an index from a GeoJSON FeatureCollection of polygon
// features. Each feature must carry "id" and "name" string properties; only
// the outer ring of each polygon is used.
func FromGeoJSON(data []byte) (*Index, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse boundary collection: %w", err)
	}

	regions := make([]Region, 0, len(fc.Features))
	for i, f := range fc.Features {
		poly, ok := f.Geometry.(orb.Polygon)
		if !ok {
			return nil, fmt.Errorf("feature %d: geometry is %T, want Polygon", i, f.Geometry)
		}
		if len(poly) == 0 {
			return nil, fmt.Errorf("feature %d: polygon has no rings", i)
		}

		id, _ := f.Properties["id"].(string)
		if id == "" {
			return nil, fmt.Errorf("feature %d: missing id property", i)
		}
		name, _ := f.Properties["name"].(string)

		regions = append(regions, Region{
			ID:       id,
			Name:     name,
			Boundary: ringToPolygon(poly[0]),
		})
	}

	return NewIndex(regions), nil
}

// ringToPolygon converts a GeoJSON outer ring to the internal vertex list.
// GeoJSON rings repeat the first vertex at the end; the internal form closes
// implicitly, so the duplicate is dropped.
func ringToPolygon(ring orb.Ring) geo.Polygon {
	n := len(ring)
	if n > 1 && ring[0] == ring[n-1] {
		n--
	}
	poly := make(geo.Polygon, n)
	for i := 0; i < n; i++ {
		poly[i] = geo.Point{Lat: ring[i].Y(), Lng: ring[i].X()}
	}
	return poly
}

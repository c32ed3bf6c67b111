package geo

import (
	"math"

	"github.com/golang/geo/s2"
)

// EarthRadiusMeters is the mean earth radius used for great-circle distances.
const EarthRadiusMeters = 6371008.8

// Point is a geographic position in degrees.
type Point struct {
	Lat float64
	Lng float64
}

// Polygon is an ordered ring of vertices. The closing edge from the last
// vertex back to the first is implicit; callers must supply at least 3
// vertices.
type Polygon []Point

// Bounds is an axis-aligned geographic bounding box.
type Bounds struct {
	North float64
	South float64
	East  float64
	West  float64
}

// Contains reports whether p falls inside the box (edges inclusive).
func (b Bounds) Contains(p Point) bool {
	return p.Lat >= b.South && p.Lat <= b.North &&
		p.Lng >= b.West && p.Lng <= b.East
}

// PointInPolygon tests p against poly using ray casting over the edge list,
// including the closing edge. Points exactly on an edge test as outside: the
// crossing test uses strict inequalities on both vertex comparisons, so the
// tie always breaks the same way.
func PointInPolygon(p Point, poly Polygon) bool {
	if len(poly) < 3 {
		panic("geo: polygon must have at least 3 vertices")
	}

	inside := false
	j := len(poly) - 1
	for i := 0; i < len(poly); i++ {
		if ((poly[i].Lat > p.Lat) != (poly[j].Lat > p.Lat)) &&
			(p.Lng < (poly[j].Lng-poly[i].Lng)*(p.Lat-poly[i].Lat)/(poly[j].Lat-poly[i].Lat)+poly[i].Lng) {
			inside = !inside
		}
		j = i
	}

	return inside
}

// PolygonCentroid returns the arithmetic mean of the polygon's vertices.
// Sufficient for the near-convex neighborhood shapes this engine works with;
// not an area-weighted centroid.
func PolygonCentroid(poly Polygon) Point {
	if len(poly) < 3 {
		panic("geo: polygon must have at least 3 vertices")
	}
	return Centroid(poly)
}

// PolygonBounds returns the min/max box over the polygon's vertices.
func PolygonBounds(poly Polygon) Bounds {
	if len(poly) < 3 {
		panic("geo: polygon must have at least 3 vertices")
	}

	b := Bounds{
		North: poly[0].Lat, South: poly[0].Lat,
		East: poly[0].Lng, West: poly[0].Lng,
	}
	for _, v := range poly[1:] {
		if v.Lat > b.North {
			b.North = v.Lat
		}
		if v.Lat < b.South {
			b.South = v.Lat
		}
		if v.Lng > b.East {
			b.East = v.Lng
		}
		if v.Lng < b.West {
			b.West = v.Lng
		}
	}
	return b
}

// Distance returns the great-circle distance between a and b in meters.
func Distance(a, b Point) float64 {
	p1 := s2.LatLngFromDegrees(a.Lat, a.Lng)
	p2 := s2.LatLngFromDegrees(b.Lat, b.Lng)
	return p1.Distance(p2).Radians() * EarthRadiusMeters
}

// Centroid returns the unweighted mean position of points.
func Centroid(points []Point) Point {
	if len(points) == 0 {
		return Point{}
	}

	var sumLat, sumLng float64
	for _, p := range points {
		sumLat += p.Lat
		sumLng += p.Lng
	}
	n := float64(len(points))
	return Point{Lat: sumLat / n, Lng: sumLng / n}
}

// WeightedCentroid returns the weighted mean position of points. Missing or
// all-zero weights fall back to the unweighted centroid.
func WeightedCentroid(points []Point, weights []float64) Point {
	if len(points) == 0 {
		return Point{}
	}

	var sumLat, sumLng, sumW float64
	for i, p := range points {
		w := 1.0
		if i < len(weights) {
			w = weights[i]
		}
		sumLat += p.Lat * w
		sumLng += p.Lng * w
		sumW += w
	}
	if sumW == 0 {
		return Centroid(points)
	}
	return Point{Lat: sumLat / sumW, Lng: sumLng / sumW}
}

// IsFinite reports whether both coordinates are finite numbers.
func (p Point) IsFinite() bool {
	return !math.IsNaN(p.Lat) && !math.IsInf(p.Lat, 0) &&
		!math.IsNaN(p.Lng) && !math.IsInf(p.Lng, 0)
}

package geo

import "math"

// TileExtent is the pixel extent of one map tile.
const TileExtent = 256

// Project converts a lat/lng to Web-Mercator world-pixel coordinates at the
// given zoom level. World pixels grow by a factor of 2 per zoom step.
func Project(p Point, zoom float64) (x, y float64) {
	sin := math.Sin(p.Lat * math.Pi / 180)
	nx := (p.Lng + 180) / 360
	ny := 0.5 - 0.25*math.Log((1+sin)/(1-sin))/math.Pi

	scale := math.Pow(2, zoom) * TileExtent
	return nx * scale, ny * scale
}

// Unproject converts world-pixel coordinates at the given zoom level back to
// lat/lng.
func Unproject(x, y float64, zoom float64) Point {
	scale := math.Pow(2, zoom) * TileExtent
	nx := x / scale
	ny := y / scale

	lng := nx*360 - 180
	lat := math.Atan(math.Sinh(math.Pi*(1-2*ny))) * 180 / math.Pi
	return Point{Lat: lat, Lng: lng}
}

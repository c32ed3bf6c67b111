// Renders a static PNG of the clustered map: region boundaries plus the
// clusters computed at a given zoom, colored by aggregate popularity and
// sized by event count. Useful for eyeballing tier behavior without the
// interactive frontend.
package main

import (
	"flag"
	"fmt"

	"github.com/fogleman/gg"
	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/conorlee8/Eppy-Events-sub001/cluster"
	"github.com/conorlee8/Eppy-Events-sub001/decluster"
	"github.com/conorlee8/Eppy-Events-sub001/events"
	"github.com/conorlee8/Eppy-Events-sub001/geo"
	"github.com/conorlee8/Eppy-Events-sub001/region"
	"github.com/conorlee8/Eppy-Events-sub001/viewport"
)

// GradientTable holds the keypoints of the popularity color map. Keypoint
// positions live in [0,1] and must be sorted.
type GradientTable []struct {
	Col colorful.Color
	Pos float64
}

// GetInterpolatedColorFor returns an HCL blend between the two keypoints
// around t.
func (gt GradientTable) GetInterpolatedColorFor(t float64) colorful.Color {
	for i := 0; i < len(gt)-1; i++ {
		c1 := gt[i]
		c2 := gt[i+1]
		if c1.Pos <= t && t <= c2.Pos {
			t := (t - c1.Pos) / (c2.Pos - c1.Pos)
			return c1.Col.BlendHcl(c2.Col, t).Clamped()
		}
	}
	return gt[len(gt)-1].Col
}

func MustParseHex(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		panic("MustParseHex: " + err.Error())
	}
	return c
}

var keypoints = GradientTable{
	{MustParseHex("#3288bd"), 0.0},
	{MustParseHex("#66c2a5"), 0.25},
	{MustParseHex("#ffffbf"), 0.5},
	{MustParseHex("#fdae61"), 0.75},
	{MustParseHex("#d53e4f"), 1.0},
}

func eventBounds(idx *region.Index) geo.Bounds {
	regions := idx.Regions()
	b := regions[0].Bounds
	for _, r := range regions[1:] {
		if r.Bounds.North > b.North {
			b.North = r.Bounds.North
		}
		if r.Bounds.South < b.South {
			b.South = r.Bounds.South
		}
		if r.Bounds.East > b.East {
			b.East = r.Bounds.East
		}
		if r.Bounds.West < b.West {
			b.West = r.Bounds.West
		}
	}
	return b
}

func main() {
	outfile := flag.String("outfile", "clusters.png", "Output PNG file name")
	width := flag.Int("width", 1280, "Image width in pixels")
	height := flag.Int("height", 800, "Image height in pixels")
	zoom := flag.Float64("zoom", 12, "Map zoom level")
	lat := flag.Float64("lat", 41.8880, "Center latitude")
	lng := flag.Float64("lng", -87.6480, "Center longitude")
	numEvents := flag.Int("events", 2000, "Number of generated events")
	seed := flag.Int64("seed", 1, "Event generator seed")
	flag.Parse()

	regions := region.DefaultIndex()
	evts := events.GenerateSeededEvents(*numEvents, eventBounds(regions), *seed)

	engine := cluster.NewEngine(cluster.DefaultOptions())
	clusters := engine.ComputeClusters(evts, *zoom, regions, decluster.NewStore())
	fmt.Printf("Computed %d clusters (%s tier) from %d events at zoom %.1f\n",
		len(clusters), engine.TierFor(*zoom), len(evts), *zoom)

	view := viewport.Viewport{
		Width:  float64(*width),
		Height: float64(*height),
		Center: geo.Point{Lat: *lat, Lng: *lng},
		Zoom:   *zoom,
	}

	dc := gg.NewContext(*width, *height)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	// Region boundaries first so cluster markers draw on top.
	dc.SetRGB(0.75, 0.75, 0.75)
	dc.SetLineWidth(1.5)
	for _, rg := range regions.Regions() {
		x, y := view.ScreenPosition(rg.Boundary[0])
		dc.MoveTo(x, y)
		for _, p := range rg.Boundary[1:] {
			x, y = view.ScreenPosition(p)
			dc.LineTo(x, y)
		}
		dc.ClosePath()
		dc.Stroke()
	}

	maxPop := 0.0
	for _, cl := range clusters {
		if cl.Popularity > maxPop {
			maxPop = cl.Popularity
		}
	}

	for _, cl := range clusters {
		x, y := view.ScreenPosition(cl.Centroid)
		if x < 0 || y < 0 || x > view.Width || y > view.Height {
			continue
		}

		t := 0.0
		if maxPop > 0 {
			t = cl.Popularity / maxPop
		}

		r := 4.0
		if n := cl.Count(); n > 1 {
			r = 6 + 2*float64(n)/10
			if r > 28 {
				r = 28
			}
		}

		dc.SetColor(keypoints.GetInterpolatedColorFor(t))
		dc.DrawCircle(x, y, r)
		dc.Fill()
		dc.SetRGB(0.2, 0.2, 0.2)
		dc.SetLineWidth(1)
		dc.DrawCircle(x, y, r)
		dc.Stroke()

		if cl.Count() > 1 {
			dc.DrawStringAnchored(fmt.Sprintf("%d", cl.Count()), x, y, 0.5, 0.5)
		}
	}

	if err := dc.SavePNG(*outfile); err != nil {
		panic(err)
	}
	fmt.Printf("Wrote %s\n", *outfile)
}

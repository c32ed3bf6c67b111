// Package cluster computes the display clusters for a zoom level. Each call
// is a pure function of the event set, the zoom, the region index, and the
// decluster state; clusters are rebuilt from scratch every time and carry no
// identity across calls.
package cluster

import (
	"math"
	"sort"

	"github.com/google/uuid"

	"github.com/conorlee8/Eppy-Events-sub001/events"
	"github.com/conorlee8/Eppy-Events-sub001/geo"
	"github.com/conorlee8/Eppy-Events-sub001/region"
)

// Tier names the three zoom-dependent clustering strategies.
type Tier string

const (
	TierPopularity   Tier = "popularity"
	TierNeighborhood Tier = "neighborhood"
	TierIndividual   Tier = "individual"
)

// Options control tier thresholds and the popularity-tier grouping radius.
type Options struct {
	// PopularityMaxZoom is the zoom below which the popularity tier applies.
	PopularityMaxZoom float64
	// IndividualMinZoom is the zoom at and above which every event stands
	// alone.
	IndividualMinZoom float64
	// BaseRadiusPx is the popularity-tier absorption radius in screen
	// pixels. The geographic radius it implies halves with every zoom step,
	// so clusters shrink as the view tightens.
	BaseRadiusPx float64
}

// DefaultOptions are the thresholds the map ships with.
func DefaultOptions() Options {
	return Options{
		PopularityMaxZoom: 11,
		IndividualMinZoom: 15,
		BaseRadiusPx:      64,
	}
}

func (o Options) withDefaults() Options {
	if o.PopularityMaxZoom <= 0 {
		o.PopularityMaxZoom = 11
	}
	if o.IndividualMinZoom <= o.PopularityMaxZoom {
		o.IndividualMinZoom = math.Max(15, o.PopularityMaxZoom+1)
	}
	if o.BaseRadiusPx <= 0 {
		o.BaseRadiusPx = 64
	}
	return o
}

// DisplayCluster is one marker the renderer draws. Popularity is the sum of
// member popularities at the popularity and neighborhood tiers, and the
// member's own popularity at the individual tier. RegionID/RegionName are
// set only for neighborhood-tier clusters.
type DisplayCluster struct {
	ID         uint32
	Tier       Tier
	Members    []events.Event
	Centroid   geo.Point
	Popularity float64
	RegionID   string
	RegionName string
}

// Count returns the number of member events.
func (c DisplayCluster) Count() int { return len(c.Members) }

// OpenSet is the read side of the decluster state store.
type OpenSet interface {
	IsOpen(regionID string) bool
}

// Engine computes display clusters. It holds only configuration; every
// ComputeClusters call is independent.
type Engine struct {
	opts Options
}

// NewEngine validates options and returns an engine.
func NewEngine(opts Options) *Engine {
	return &Engine{opts: opts.withDefaults()}
}

// TierFor returns the tier a zoom level selects.
func (e *Engine) TierFor(zoom float64) Tier {
	switch {
	case zoom < e.opts.PopularityMaxZoom:
		return TierPopularity
	case zoom < e.opts.IndividualMinZoom:
		return TierNeighborhood
	default:
		return TierIndividual
	}
}

// ComputeClusters partitions evts into display clusters for the given zoom.
// A nil region index is a wiring bug in the caller and panics. Zero events
// yields an empty list. At the popularity and individual tiers every event
// lands in exactly one cluster; at the neighborhood tier events outside
// every region are dropped (documented limitation of that view).
func (e *Engine) ComputeClusters(evts []events.Event, zoom float64, regions *region.Index, opened OpenSet) []DisplayCluster {
	if regions == nil {
		panic("cluster: nil region index")
	}

	switch e.TierFor(zoom) {
	case TierPopularity:
		return e.popularityClusters(evts, zoom)
	case TierNeighborhood:
		return e.neighborhoodClusters(evts, regions, opened)
	default:
		return individualClusters(evts)
	}
}

// popularityClusters runs the greedy proximity+popularity grouping: the
// highest-popularity unassigned event seeds a cluster and absorbs every
// unassigned event within the pixel radius at this zoom. Earlier seeds win
// contested events. O(n^2) worst case; acceptable at low zoom where the
// radius keeps candidate sets small.
func (e *Engine) popularityClusters(evts []events.Event, zoom float64) []DisplayCluster {
	clusters := make([]DisplayCluster, 0)
	if len(evts) == 0 {
		return clusters
	}

	type projected struct {
		x, y float64
		evt  events.Event
	}
	pts := make([]projected, len(evts))
	for i, evt := range evts {
		x, y := geo.Project(evt.Position, zoom)
		pts[i] = projected{x: x, y: y, evt: evt}
	}

	// Popularity descending; original order breaks ties so the result is
	// deterministic.
	order := make([]int, len(pts))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return pts[order[a]].evt.Popularity > pts[order[b]].evt.Popularity
	})

	radius := e.opts.BaseRadiusPx
	r2 := radius * radius
	assigned := make([]bool, len(pts))

	for _, seed := range order {
		if assigned[seed] {
			continue
		}
		assigned[seed] = true

		members := []events.Event{pts[seed].evt}
		positions := []geo.Point{pts[seed].evt.Position}
		weights := []float64{pts[seed].evt.Popularity}

		for _, cand := range order {
			if assigned[cand] {
				continue
			}
			dx := pts[cand].x - pts[seed].x
			dy := pts[cand].y - pts[seed].y
			if dx*dx+dy*dy <= r2 {
				assigned[cand] = true
				members = append(members, pts[cand].evt)
				positions = append(positions, pts[cand].evt.Position)
				weights = append(weights, pts[cand].evt.Popularity)
			}
		}

		clusters = append(clusters, DisplayCluster{
			ID:         uuid.New().ID(),
			Tier:       TierPopularity,
			Members:    members,
			Centroid:   geo.WeightedCentroid(positions, weights),
			Popularity: sumPopularity(members),
		})
	}

	return clusters
}

// neighborhoodClusters buckets events by containing region. Non-empty
// regions emit one cluster at the region centroid unless opened, in which
// case that region's members fall through to individual clusters.
func (e *Engine) neighborhoodClusters(evts []events.Event, regions *region.Index, opened OpenSet) []DisplayCluster {
	buckets := make(map[string][]events.Event)
	for _, evt := range evts {
		r := regions.RegionFor(evt.Position)
		if r == nil {
			continue
		}
		buckets[r.ID] = append(buckets[r.ID], evt)
	}

	clusters := make([]DisplayCluster, 0, len(buckets))
	for _, r := range regions.Regions() {
		members := buckets[r.ID]
		if len(members) == 0 {
			continue
		}

		if opened != nil && opened.IsOpen(r.ID) {
			for _, evt := range members {
				clusters = append(clusters, singleCluster(evt))
			}
			continue
		}

		clusters = append(clusters, DisplayCluster{
			ID:         uuid.New().ID(),
			Tier:       TierNeighborhood,
			Members:    members,
			Centroid:   r.Centroid,
			Popularity: sumPopularity(members),
			RegionID:   r.ID,
			RegionName: r.Name,
		})
	}

	return clusters
}

// individualClusters emits one single-member cluster per event. Decluster
// state is irrelevant here since individual sprites are already shown.
func individualClusters(evts []events.Event) []DisplayCluster {
	clusters := make([]DisplayCluster, 0, len(evts))
	for _, evt := range evts {
		clusters = append(clusters, singleCluster(evt))
	}
	return clusters
}

func singleCluster(evt events.Event) DisplayCluster {
	return DisplayCluster{
		ID:         uuid.New().ID(),
		Tier:       TierIndividual,
		Members:    []events.Event{evt},
		Centroid:   evt.Position,
		Popularity: evt.Popularity,
	}
}

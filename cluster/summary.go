package cluster

import (
	"gonum.org/v1/gonum/floats"

	"github.com/conorlee8/Eppy-Events-sub001/events"
)

// Summary condenses a computed cluster list for dashboards and the API.
type Summary struct {
	TotalEvents     int             `json:"totalEvents"`
	NumClusters     int             `json:"numClusters"`
	NumSingleEvents int             `json:"numSingleEvents"`
	TierCounts      map[Tier]int    `json:"tierCounts"`
	CategoryCounts  map[string]int  `json:"categoryCounts"`
	Popularity      PopularityStats `json:"popularity"`
}

// PopularityStats summarizes the popularity aggregates across clusters.
type PopularityStats struct {
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Sum     float64 `json:"sum"`
	Average float64 `json:"average"`
}

// Summarize computes a Summary over clusters.
func Summarize(clusters []DisplayCluster) Summary {
	s := Summary{
		TierCounts:     make(map[Tier]int),
		CategoryCounts: make(map[string]int),
	}
	if len(clusters) == 0 {
		return s
	}

	aggregates := make([]float64, len(clusters))
	for i, c := range clusters {
		aggregates[i] = c.Popularity
		s.TierCounts[c.Tier]++
		s.TotalEvents += len(c.Members)

		if len(c.Members) > 1 {
			s.NumClusters++
		} else {
			s.NumSingleEvents++
		}

		for _, evt := range c.Members {
			s.CategoryCounts[evt.Category.String()]++
		}
	}

	s.Popularity = PopularityStats{
		Min:     floats.Min(aggregates),
		Max:     floats.Max(aggregates),
		Sum:     floats.Sum(aggregates),
		Average: floats.Sum(aggregates) / float64(len(aggregates)),
	}
	return s
}

func sumPopularity(members []events.Event) float64 {
	vals := make([]float64, len(members))
	for i, evt := range members {
		vals[i] = evt.Popularity
	}
	return floats.Sum(vals)
}

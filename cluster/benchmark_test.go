package cluster

import (
	"fmt"
	"testing"

	"github.com/conorlee8/Eppy-Events-sub001/events"
	"github.com/conorlee8/Eppy-Events-sub001/geo"
)

func BenchmarkComputeClusters(b *testing.B) {
	bounds := geo.Bounds{North: 42.0, South: 41.8, East: -87.5, West: -87.8}
	regions := testRegions()
	engine := NewEngine(DefaultOptions())

	for _, size := range []int{100, 1000, 10000} {
		evts := events.GenerateSeededEvents(size, bounds, 42)

		for _, zoom := range []float64{8, 12, 16} {
			b.Run(fmt.Sprintf("%dp-z%.0f", size, zoom), func(b *testing.B) {
				b.ReportAllocs()
				for i := 0; i < b.N; i++ {
					engine.ComputeClusters(evts, zoom, regions, nil)
				}
			})
		}
	}
}

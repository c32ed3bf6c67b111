package main

import (
	"flag"
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"
	"time"

	"github.com/conorlee8/Eppy-Events-sub001/cluster"
	"github.com/conorlee8/Eppy-Events-sub001/decluster"
	"github.com/conorlee8/Eppy-Events-sub001/events"
	"github.com/conorlee8/Eppy-Events-sub001/region"
)

var (
	cpuprofile = flag.String("cpuprofile", "", "write cpu profile to file")
	memprofile = flag.String("memprofile", "", "write memory profile to file")
	numEvents  = flag.Int("events", 100000, "number of events to generate")
	zoomLevel  = flag.Float64("zoom", 8, "zoom level to profile")
	testall    = flag.Bool("testall", false, "test all configurations")
)

func generateEvents(n int, regions *region.Index) []events.Event {
	// Deterministic seed for reproducibility
	b := regions.Regions()[0].Bounds
	for _, r := range regions.Regions()[1:] {
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
	return events.GenerateSeededEvents(n, b, 42)
}

func runSingleProfile(numEvents int, zoom float64) {
	fmt.Printf("Profiling with %d events at zoom level %.1f\n", numEvents, zoom)

	engine := cluster.NewEngine(cluster.DefaultOptions())
	regions := region.DefaultIndex()
	evts := generateEvents(numEvents, regions)
	opened := decluster.NewStore()

	var memStatsBefore, memStatsAfter runtime.MemStats
	runtime.ReadMemStats(&memStatsBefore)

	start := time.Now()
	clusters := engine.ComputeClusters(evts, zoom, regions, opened)
	duration := time.Since(start)

	runtime.ReadMemStats(&memStatsAfter)
	allocMB := float64(memStatsAfter.TotalAlloc-memStatsBefore.TotalAlloc) / 1024 / 1024

	fmt.Printf("Tier: %s\n", engine.TierFor(zoom))
	fmt.Printf("Clustering completed in %v (%d clusters)\n", duration, len(clusters))
	fmt.Printf("Memory allocated: %.2f MB\n", allocMB)
	fmt.Printf("Memory usage: %.2f MB\n", float64(memStatsAfter.Alloc)/1024/1024)
}

func runProfileBattery() {
	eventCounts := []int{1000, 10000, 50000, 100000}
	zoomLevels := []float64{5, 8, 10.9, 12, 14, 16}

	fmt.Println("Running comprehensive profile battery...")
	fmt.Println("=======================================")

	fmt.Printf("%-10s | %-6s | %-14s | %-15s | %-10s | %-10s | %-8s\n",
		"Events", "Zoom", "Tier", "Duration", "Clusters", "Mem (MB)", "GC Runs")
	fmt.Printf("%s\n", "--------------------------------------------------------------------------------------")

	regions := region.DefaultIndex()
	for _, n := range eventCounts {
		evts := generateEvents(n, regions)

		for _, zoom := range zoomLevels {
			engine := cluster.NewEngine(cluster.DefaultOptions())
			opened := decluster.NewStore()

			var memStatsBefore, memStatsAfter runtime.MemStats
			runtime.ReadMemStats(&memStatsBefore)

			start := time.Now()
			clusters := engine.ComputeClusters(evts, zoom, regions, opened)
			duration := time.Since(start)

			runtime.ReadMemStats(&memStatsAfter)
			memMB := float64(memStatsAfter.TotalAlloc-memStatsBefore.TotalAlloc) / 1024 / 1024
			gcRuns := memStatsAfter.NumGC - memStatsBefore.NumGC

			fmt.Printf("%-10d | %-6.1f | %-14s | %-15s | %-10d | %-10.2f | %-8d\n",
				n, zoom, engine.TierFor(zoom), duration, len(clusters), memMB, gcRuns)
		}

		fmt.Printf("%s\n", "--------------------------------------------------------------------------------------")
	}
}

func main() {
	flag.Parse()

	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Could not create CPU profile: %v\n", err)
			return
		}
		defer f.Close()

		fmt.Println("Starting CPU profiling...")
		if err := pprof.StartCPUProfile(f); err != nil {
			fmt.Fprintf(os.Stderr, "Could not start CPU profile: %v\n", err)
			return
		}
		defer pprof.StopCPUProfile()
	}

	if *testall {
		runProfileBattery()
	} else {
		runSingleProfile(*numEvents, *zoomLevel)
	}

	if *memprofile != "" {
		f, err := os.Create(*memprofile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Could not create memory profile: %v\n", err)
			return
		}
		defer f.Close()
		runtime.GC() // Get up-to-date statistics
		if err := pprof.WriteHeapProfile(f); err != nil {
			fmt.Fprintf(os.Stderr, "Could not write memory profile: %v\n", err)
		}
	}
}

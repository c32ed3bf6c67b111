package events

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/conorlee8/Eppy-Events-sub001/geo"
)

var testBounds = geo.Bounds{North: 42.0, South: 41.8, East: -87.5, West: -87.8}

func TestGenerateTestEvents(t *testing.T) {
	evts := GenerateTestEvents(500, testBounds)
	if len(evts) != 500 {
		t.Fatalf("Expected 500 events, got %d", len(evts))
	}

	seen := make(map[uint32]bool)
	for _, e := range evts {
		if seen[e.ID] {
			t.Errorf("Duplicate event id %d", e.ID)
		}
		seen[e.ID] = true

		if !testBounds.Contains(e.Position) {
			t.Errorf("Event %d at (%f,%f) outside bounds", e.ID, e.Position.Lat, e.Position.Lng)
		}
		if e.Popularity < 0 || e.Popularity > 200 {
			t.Errorf("Event %d popularity %f outside [0,200]", e.ID, e.Popularity)
		}
		if !e.EndTime.After(e.StartTime) {
			t.Errorf("Event %d ends before it starts", e.ID)
		}
		if e.PriceMax < e.PriceMin {
			t.Errorf("Event %d has inverted price range", e.ID)
		}
	}
}

func TestGenerateSeededEventsReproducible(t *testing.T) {
	a := GenerateSeededEvents(100, testBounds, 42)
	b := GenerateSeededEvents(100, testBounds, 42)
	for i := range a {
		if a[i].Position != b[i].Position || a[i].Popularity != b[i].Popularity {
			t.Fatalf("Seeded generation diverged at event %d", i)
		}
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	dir := t.TempDir()
	evts := GenerateSeededEvents(200, testBounds, 7)

	path := SnapshotFilename(dir, len(evts))
	if err := SaveSnapshot(path, evts); err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}

	loaded, err := LoadSnapshot(path)
	if err != nil {
		t.Fatalf("LoadSnapshot failed: %v", err)
	}
	if len(loaded) != len(evts) {
		t.Fatalf("Expected %d events, got %d", len(evts), len(loaded))
	}

	for i, e := range evts {
		l := loaded[i]
		if l.ID != e.ID || l.Category != e.Category {
			t.Fatalf("Event %d identity mismatch after round trip", i)
		}
		if math.Abs(l.Position.Lat-e.Position.Lat) > 1e-12 ||
			math.Abs(l.Position.Lng-e.Position.Lng) > 1e-12 {
			t.Fatalf("Event %d position mismatch after round trip", i)
		}
		if l.Popularity != e.Popularity {
			t.Fatalf("Event %d popularity mismatch after round trip", i)
		}
		// Times are stored at second resolution.
		if l.StartTime.Unix() != e.StartTime.Unix() || l.EndTime.Unix() != e.EndTime.Unix() {
			t.Fatalf("Event %d time mismatch after round trip", i)
		}
	}
}

func TestListSnapshots(t *testing.T) {
	dir := t.TempDir()
	evts := GenerateSeededEvents(10, testBounds, 1)

	p1 := filepath.Join(dir, "events-10p-20250101-120000-aaaa1111.zst")
	p2 := filepath.Join(dir, "events-10p-20250102-120000-bbbb2222.zst")
	for _, p := range []string{p1, p2} {
		if err := SaveSnapshot(p, evts); err != nil {
			t.Fatalf("SaveSnapshot failed: %v", err)
		}
	}
	// A file that should be ignored.
	os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644)

	infos, err := ListSnapshots(dir)
	if err != nil {
		t.Fatalf("ListSnapshots failed: %v", err)
	}
	if len(infos) != 2 {
		t.Fatalf("Expected 2 snapshots, got %d", len(infos))
	}
	// Newest first.
	if infos[0].ID != "bbbb2222" || infos[1].ID != "aaaa1111" {
		t.Errorf("Expected newest-first ordering, got %s then %s", infos[0].ID, infos[1].ID)
	}
	if infos[0].NumEvents != 10 {
		t.Errorf("Expected 10 events in snapshot info, got %d", infos[0].NumEvents)
	}
	if !infos[1].Timestamp.Equal(time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)) {
		t.Errorf("Unexpected parsed timestamp %v", infos[1].Timestamp)
	}

	found, err := FindSnapshot(dir, "aaaa1111")
	if err != nil {
		t.Fatalf("FindSnapshot failed: %v", err)
	}
	if found.Path != p1 {
		t.Errorf("Expected path %s, got %s", p1, found.Path)
	}

	if _, err := FindSnapshot(dir, "missing"); err == nil {
		t.Error("Expected error for missing snapshot id")
	}
}

package events

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"
)

const snapshotVersion uint32 = 1

// SnapshotInfo describes one saved event snapshot on disk.
type SnapshotInfo struct {
	ID        string    `json:"id"`
	NumEvents int       `json:"numEvents"`
	Timestamp time.Time `json:"timestamp"`
	FileSize  int64     `json:"fileSize"`
	Path      string    `json:"-"`
}

// SnapshotFilename builds the on-disk name for a snapshot of n events.
// Format: events-{n}p-{timestamp}-{id}.zst
func SnapshotFilename(dir string, n int) string {
	timestamp := time.Now().Format("20060102-150405")
	id := uuid.New().String()[:8]
	return filepath.Join(dir, fmt.Sprintf("events-%dp-%s-%s.zst", n, timestamp, id))
}

// SaveSnapshot writes events to filename as zstd-compressed little-endian
// records.
func SaveSnapshot(filename string, evts []Event) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	bufWriter := bufio.NewWriterSize(file, 1024*1024)
	enc, err := zstd.NewWriter(bufWriter,
		zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	if err != nil {
		return fmt.Errorf("failed to create zstd writer: %w", err)
	}

	binary.Write(enc, binary.LittleEndian, snapshotVersion)
	binary.Write(enc, binary.LittleEndian, uint32(len(evts)))

	for _, e := range evts {
		binary.Write(enc, binary.LittleEndian, e.ID)
		binary.Write(enc, binary.LittleEndian, e.Position.Lat)
		binary.Write(enc, binary.LittleEndian, e.Position.Lng)
		binary.Write(enc, binary.LittleEndian, uint8(e.Category))
		binary.Write(enc, binary.LittleEndian, e.Popularity)
		binary.Write(enc, binary.LittleEndian, e.StartTime.Unix())
		binary.Write(enc, binary.LittleEndian, e.EndTime.Unix())
		binary.Write(enc, binary.LittleEndian, e.PriceMin)
		binary.Write(enc, binary.LittleEndian, e.PriceMax)
	}

	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to close encoder: %w", err)
	}
	if err := bufWriter.Flush(); err != nil {
		return fmt.Errorf("failed to flush buffer: %w", err)
	}

	return nil
}

// LoadSnapshot reads a snapshot written by SaveSnapshot.
func LoadSnapshot(filename string) ([]Event, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	dec, err := zstd.NewReader(bufio.NewReaderSize(file, 1024*1024))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd reader: %w", err)
	}
	defer dec.Close()

	var version, count uint32
	if err := binary.Read(dec, binary.LittleEndian, &version); err != nil {
		return nil, fmt.Errorf("failed to read snapshot header: %w", err)
	}
	if version != snapshotVersion {
		return nil, fmt.Errorf("unsupported snapshot version %d", version)
	}
	if err := binary.Read(dec, binary.LittleEndian, &count); err != nil {
		return nil, fmt.Errorf("failed to read snapshot header: %w", err)
	}

	evts := make([]Event, count)
	for i := range evts {
		var cat uint8
		var startUnix, endUnix int64

		if err := binary.Read(dec, binary.LittleEndian, &evts[i].ID); err != nil {
			return nil, fmt.Errorf("failed to read event %d: %w", i, err)
		}
		binary.Read(dec, binary.LittleEndian, &evts[i].Position.Lat)
		binary.Read(dec, binary.LittleEndian, &evts[i].Position.Lng)
		binary.Read(dec, binary.LittleEndian, &cat)
		binary.Read(dec, binary.LittleEndian, &evts[i].Popularity)
		binary.Read(dec, binary.LittleEndian, &startUnix)
		binary.Read(dec, binary.LittleEndian, &endUnix)
		binary.Read(dec, binary.LittleEndian, &evts[i].PriceMin)
		if err := binary.Read(dec, binary.LittleEndian, &evts[i].PriceMax); err != nil {
			return nil, fmt.Errorf("failed to read event %d: %w", i, err)
		}

		evts[i].Category = Category(cat)
		evts[i].StartTime = time.Unix(startUnix, 0)
		evts[i].EndTime = time.Unix(endUnix, 0)
	}

	return evts, nil
}

// ListSnapshots returns the snapshots in dir, newest first.
func ListSnapshots(dir string) ([]SnapshotInfo, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	infos := make([]SnapshotInfo, 0)
	for _, file := range files {
		if file.IsDir() || filepath.Ext(file.Name()) != ".zst" {
			continue
		}

		info, err := parseSnapshotName(file.Name())
		if err != nil {
			continue
		}

		fi, err := file.Info()
		if err != nil {
			continue
		}
		info.FileSize = fi.Size()
		info.Path = filepath.Join(dir, file.Name())
		infos = append(infos, info)
	}

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Timestamp.After(infos[j].Timestamp)
	})

	return infos, nil
}

// FindSnapshot returns the snapshot in dir whose id matches.
func FindSnapshot(dir, id string) (SnapshotInfo, error) {
	infos, err := ListSnapshots(dir)
	if err != nil {
		return SnapshotInfo{}, err
	}
	for _, info := range infos {
		if info.ID == id {
			return info, nil
		}
	}
	return SnapshotInfo{}, fmt.Errorf("snapshot with ID %s not found", id)
}

func parseSnapshotName(name string) (SnapshotInfo, error) {
	// Format: events-{n}p-{timestamp}-{id}.zst
	name = strings.TrimSuffix(name, ".zst")
	parts := strings.Split(name, "-")
	if len(parts) != 5 || parts[0] != "events" {
		return SnapshotInfo{}, fmt.Errorf("invalid snapshot filename %q", name)
	}

	n, err := strconv.Atoi(strings.TrimSuffix(parts[1], "p"))
	if err != nil {
		return SnapshotInfo{}, fmt.Errorf("invalid event count in %q: %w", name, err)
	}
	timestamp, err := time.Parse("20060102-150405", parts[2]+"-"+parts[3])
	if err != nil {
		return SnapshotInfo{}, fmt.Errorf("invalid timestamp in %q: %w", name, err)
	}

	return SnapshotInfo{ID: parts[4], NumEvents: n, Timestamp: timestamp}, nil
}

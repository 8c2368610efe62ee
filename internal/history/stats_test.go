package history

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestStatsWriterAppend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stats.csv")
	w := NewStatsWriter(path)
	at := time.Date(2025, 7, 2, 10, 0, 0, 0, time.UTC)

	err := w.Append(at, []RouteStat{
		{RouteID: "R1", AvgDelayMin: 2.5, Vehicles: 3},
		{RouteID: "R2", AvgDelayMin: -0.5, Vehicles: 1},
	})
	if err != nil {
		t.Fatalf("append: %v", err)
	}

	// Second cycle must not repeat the header.
	err = w.Append(at.Add(time.Minute), []RouteStat{
		{RouteID: "R1", AvgDelayMin: 3.0, Vehicles: 2},
	})
	if err != nil {
		t.Fatalf("second append: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines, want header plus three rows:\n%s", len(lines), data)
	}
	if lines[0] != "datetime;route_id;avg_delay_min;nb_vehicules" {
		t.Errorf("header = %q", lines[0])
	}
	if lines[1] != "2025-07-02 10:00:00;R1;2.50;3" {
		t.Errorf("first row = %q", lines[1])
	}
	if strings.Count(string(data), "datetime;") != 1 {
		t.Error("header written more than once")
	}
}

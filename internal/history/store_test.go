package history

import (
	"io"
	"log/slog"
	"math"
	"testing"
	"time"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s, err := OpenStore(":memory:", logger)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStoreRoundTrip(t *testing.T) {
	s := testStore(t)
	at := time.Date(2025, 7, 2, 10, 0, 0, 0, time.UTC)

	if err := s.AppendSample(at, "R1", Sample{Label: "T1", AvgDelayMin: 2.5}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := s.AppendSample(at.Add(time.Minute), "R1", Sample{Label: "T1", AvgDelayMin: 3.5}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := s.AppendSample(at, "R2", Sample{Label: "T2", AvgDelayMin: -1}); err != nil {
		t.Fatalf("append: %v", err)
	}

	h, err := s.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if avg, ok := h.Mean("R1"); !ok || math.Abs(avg-3.0) > 1e-9 {
		t.Errorf("Mean(R1) after reload = %v, want 3.0", avg)
	}
	samples := h.Samples("R1")
	if len(samples) != 2 || samples[0].AvgDelayMin != 2.5 {
		t.Errorf("samples out of order after reload: %v", samples)
	}
	if len(h.Routes()) != 2 {
		t.Errorf("Routes = %v, want two", h.Routes())
	}
}

func TestStoreMetadata(t *testing.T) {
	s := testStore(t)

	if v, err := s.GetMetadata("absent"); err != nil || v != "" {
		t.Errorf("GetMetadata(absent) = %q, %v; want empty, nil", v, err)
	}
	if err := s.SetMetadata("last_cycle", "2025-07-02T10:00:00Z"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := s.SetMetadata("last_cycle", "2025-07-02T10:01:00Z"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	v, err := s.GetMetadata("last_cycle")
	if err != nil || v != "2025-07-02T10:01:00Z" {
		t.Errorf("GetMetadata = %q, %v; want updated value", v, err)
	}
}

package history

import (
	"math"
	"reflect"
	"testing"
)

func TestHistoryMeanAndPredict(t *testing.T) {
	h := New()

	if _, ok := h.Mean("R1"); ok {
		t.Error("Mean on empty history should report no data")
	}
	if preds := h.Predict(); len(preds) != 0 {
		t.Errorf("Predict on empty history = %v, want empty", preds)
	}

	h.Append("R1", Sample{Label: "T1", AvgDelayMin: 2})
	h.Append("R1", Sample{Label: "T1", AvgDelayMin: 4})
	h.Append("R2", Sample{Label: "T2", AvgDelayMin: -1})

	if avg, ok := h.Mean("R1"); !ok || math.Abs(avg-3) > 1e-9 {
		t.Errorf("Mean(R1) = %v, want 3", avg)
	}

	preds := h.Predict()
	if math.Abs(preds["R1"]-3) > 1e-9 || math.Abs(preds["R2"]-(-1)) > 1e-9 {
		t.Errorf("Predict = %v, want R1:3 R2:-1", preds)
	}

	if got := h.Routes(); !reflect.DeepEqual(got, []string{"R1", "R2"}) {
		t.Errorf("Routes = %v, want sorted ids", got)
	}
}

func TestHistoryLabel(t *testing.T) {
	h := New()
	if got := h.Label("R1"); got != "R1" {
		t.Errorf("Label without samples = %q, want the route id back", got)
	}
	h.Append("R1", Sample{Label: "T1", AvgDelayMin: 1})
	h.Append("R1", Sample{Label: "Tram 1", AvgDelayMin: 2})
	if got := h.Label("R1"); got != "Tram 1" {
		t.Errorf("Label = %q, want the most recent", got)
	}
}

func TestHistorySamplesCopied(t *testing.T) {
	h := New()
	h.Append("R1", Sample{Label: "T1", AvgDelayMin: 1})
	s := h.Samples("R1")
	s[0].AvgDelayMin = 99
	if avg, _ := h.Mean("R1"); avg != 1 {
		t.Error("Samples must return a copy, not the backing slice")
	}
}

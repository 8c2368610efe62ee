// Package history keeps per-route delay observations across monitor cycles
// and turns them into short-horizon predictions.
package history

import (
	"sort"
	"sync"
)

// Sample is one per-route cycle average, labeled by the route's display name.
type Sample struct {
	Label       string
	AvgDelayMin float64
}

// History accumulates delay samples keyed by route id.
type History struct {
	mu      sync.RWMutex
	byRoute map[string][]Sample
}

// New creates an empty history.
func New() *History {
	return &History{byRoute: make(map[string][]Sample)}
}

// Append records one cycle average for a route.
func (h *History) Append(routeID string, s Sample) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.byRoute[routeID] = append(h.byRoute[routeID], s)
}

// Samples returns the recorded samples for a route, oldest first.
func (h *History) Samples(routeID string) []Sample {
	h.mu.RLock()
	defer h.mu.RUnlock()
	src := h.byRoute[routeID]
	out := make([]Sample, len(src))
	copy(out, src)
	return out
}

// Mean returns the average of all recorded samples for a route. The second
// return is false when the route has no samples yet.
func (h *History) Mean(routeID string) (float64, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	samples := h.byRoute[routeID]
	if len(samples) == 0 {
		return 0, false
	}
	var sum float64
	for _, s := range samples {
		sum += s.AvgDelayMin
	}
	return sum / float64(len(samples)), true
}

// Predict returns the expected delay in minutes for each route with at
// least one sample, keyed by route id.
func (h *History) Predict() map[string]float64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make(map[string]float64, len(h.byRoute))
	for routeID, samples := range h.byRoute {
		if len(samples) == 0 {
			continue
		}
		var sum float64
		for _, s := range samples {
			sum += s.AvgDelayMin
		}
		out[routeID] = sum / float64(len(samples))
	}
	return out
}

// Routes returns the route ids with recorded samples, sorted.
func (h *History) Routes() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]string, 0, len(h.byRoute))
	for routeID := range h.byRoute {
		out = append(out, routeID)
	}
	sort.Strings(out)
	return out
}

// Label returns the most recent display label recorded for a route.
func (h *History) Label(routeID string) string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	samples := h.byRoute[routeID]
	if len(samples) == 0 {
		return routeID
	}
	return samples[len(samples)-1].Label
}

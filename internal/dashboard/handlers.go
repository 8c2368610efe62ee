package dashboard

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	"rubanwatch/internal/realtime"
	"rubanwatch/internal/schedule"
	"rubanwatch/web"
)

type handlers struct {
	index  IndexProvider
	store  *realtime.Store
	logger *slog.Logger
}

func (h *handlers) indexPage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := web.IndexTemplate.Execute(w, nil); err != nil {
		h.logger.Error("render index page", "error", err)
	}
}

type stopEntry struct {
	StopName string `json:"stop_name"`
	Lines    string `json:"lines"`
}

func (h *handlers) stops(w http.ResponseWriter, r *http.Request) {
	idx := h.index()
	directory := idx.StopDirectory()
	out := make([]stopEntry, 0, len(directory))
	for _, d := range directory {
		out = append(out, stopEntry{StopName: d.StopName, Lines: strings.Join(d.Lines, ", ")})
	}
	writeJSON(w, h.logger, out)
}

// departureGrace keeps trips that just left in the plan results.
const departureGrace = 2 * time.Minute

const planLimit = 5

type planOption struct {
	Route              string  `json:"route"`
	Destination        string  `json:"destination"`
	ScheduledDeparture string  `json:"scheduled_departure"`
	ExpectedDeparture  *string `json:"expected_departure"`
	DelaySeconds       *int    `json:"delay_seconds"`
}

type planResponse struct {
	Trips       []planOption `json:"trips"`
	GeneratedAt string       `json:"generated_at"`
}

func (h *handlers) plan(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	resp := planResponse{Trips: []planOption{}, GeneratedAt: now.Format(time.RFC3339)}

	fromStop := r.URL.Query().Get("from_stop")
	toStop := r.URL.Query().Get("to_stop")
	if fromStop == "" || toStop == "" {
		writeJSON(w, h.logger, resp)
		return
	}

	idx := h.index()
	fromIDs := idx.StopIDsForName(fromStop)
	toIDs := idx.StopIDsForName(toStop)
	if len(fromIDs) == 0 || len(toIDs) == 0 {
		writeJSON(w, h.logger, resp)
		return
	}

	delays := h.delayByTrip(idx, now)
	base := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	for _, conn := range idx.Connections(fromIDs, toIDs) {
		dep, err := schedule.ParseTime(conn.Departure, base)
		if err != nil {
			continue
		}
		if dep.Before(now.Add(-departureGrace)) {
			continue
		}

		s := idx.Summary(conn.TripID)
		opt := planOption{
			Route:              s.Line,
			Destination:        s.Destination,
			ScheduledDeparture: dep.Format("15:04:05"),
		}
		if delay, ok := delays[conn.TripID]; ok {
			expected := dep.Add(time.Duration(delay) * time.Second).Format("15:04:05")
			opt.ExpectedDeparture = &expected
			d := delay
			opt.DelaySeconds = &d
		}
		resp.Trips = append(resp.Trips, opt)
	}

	sort.Slice(resp.Trips, func(i, j int) bool {
		return resp.Trips[i].ScheduledDeparture < resp.Trips[j].ScheduledDeparture
	})
	if len(resp.Trips) > planLimit {
		resp.Trips = resp.Trips[:planLimit]
	}
	writeJSON(w, h.logger, resp)
}

// delayByTrip estimates each observed trip's delay from the latest feed
// snapshot. Vehicles without a stop sequence carry no usable position.
func (h *handlers) delayByTrip(idx *schedule.Index, now time.Time) map[string]int {
	delays := make(map[string]int)
	for _, e := range h.store.Entities() {
		if e.StopSequence == nil {
			continue
		}
		observedAt := now
		if e.Timestamp != nil {
			observedAt = *e.Timestamp
		}
		delays[e.TripID] = idx.EstimateDelay(e.TripID, *e.StopSequence, observedAt, now)
	}
	return delays
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("encode response", "error", err)
	}
}

package history

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"
)

var statsHeader = []string{"datetime", "route_id", "avg_delay_min", "nb_vehicules"}

// StatsWriter appends per-route cycle averages to a semicolon-delimited CSV
// file, writing the header only when the file is created.
type StatsWriter struct {
	path string
}

// NewStatsWriter creates a stats appender for the given file path.
func NewStatsWriter(path string) *StatsWriter {
	return &StatsWriter{path: path}
}

// RouteStat is one row of per-route aggregates for a cycle.
type RouteStat struct {
	RouteID     string
	AvgDelayMin float64
	Vehicles    int
}

// Append writes one row per route for the cycle at the given time.
func (w *StatsWriter) Append(at time.Time, stats []RouteStat) error {
	_, statErr := os.Stat(w.path)
	needHeader := os.IsNotExist(statErr)

	f, err := os.OpenFile(w.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open stats file: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	cw.Comma = ';'

	if needHeader {
		if err := cw.Write(statsHeader); err != nil {
			return fmt.Errorf("write stats header: %w", err)
		}
	}

	stamp := at.Format("2006-01-02 15:04:05")
	for _, s := range stats {
		row := []string{
			stamp,
			s.RouteID,
			strconv.FormatFloat(s.AvgDelayMin, 'f', 2, 64),
			strconv.Itoa(s.Vehicles),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write stats row: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush stats file: %w", err)
	}
	return nil
}

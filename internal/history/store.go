package history

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Store persists delay samples in SQLite so history survives restarts.
type Store struct {
	*sql.DB
	logger *slog.Logger
}

// OpenStore creates or opens the history database at the given path and
// applies migrations.
func OpenStore(path string, logger *slog.Logger) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000", path)
	sqlDB, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &Store{DB: sqlDB, logger: logger}

	if err := s.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	logger.Info("history database opened", "path", path)
	return s, nil
}

func (s *Store) migrate() error {
	for i, stmt := range migrations {
		if _, err := s.Exec(stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS delay_samples (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		recorded_at   TEXT NOT NULL,
		route_id      TEXT NOT NULL,
		route_label   TEXT NOT NULL,
		avg_delay_min REAL NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_delay_samples_route ON delay_samples(route_id, recorded_at)`,

	// Monitor metadata (last cycle time, feed fingerprints, etc.)
	`CREATE TABLE IF NOT EXISTS monitor_metadata (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`,
}

// AppendSample persists one cycle average.
func (s *Store) AppendSample(at time.Time, routeID string, sample Sample) error {
	_, err := s.Exec(
		`INSERT INTO delay_samples (recorded_at, route_id, route_label, avg_delay_min) VALUES (?, ?, ?, ?)`,
		at.Format(time.RFC3339), routeID, sample.Label, sample.AvgDelayMin,
	)
	if err != nil {
		return fmt.Errorf("insert delay sample: %w", err)
	}
	return nil
}

// Load rebuilds an in-memory history from all persisted samples, oldest
// first per route.
func (s *Store) Load() (*History, error) {
	rows, err := s.Query(
		`SELECT route_id, route_label, avg_delay_min FROM delay_samples ORDER BY recorded_at, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("query delay samples: %w", err)
	}
	defer rows.Close()

	h := New()
	count := 0
	for rows.Next() {
		var routeID, label string
		var avg float64
		if err := rows.Scan(&routeID, &label, &avg); err != nil {
			return nil, fmt.Errorf("scan delay sample: %w", err)
		}
		h.Append(routeID, Sample{Label: label, AvgDelayMin: avg})
		count++
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate delay samples: %w", err)
	}

	s.logger.Info("delay history loaded", "samples", count)
	return h, nil
}

// SetMetadata stores a key/value pair in the metadata table.
func (s *Store) SetMetadata(key, value string) error {
	_, err := s.Exec(
		`INSERT INTO monitor_metadata (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	return err
}

// GetMetadata retrieves a metadata value, returning "" when absent.
func (s *Store) GetMetadata(key string) (string, error) {
	var value string
	err := s.QueryRow(`SELECT value FROM monitor_metadata WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

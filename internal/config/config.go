// Package config loads runtime settings from the environment and optional
// feed profile files.
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration from environment variables.
type Config struct {
	GTFSSource  string // local zip path or http(s) URL
	VehiclesURL string // GTFS-RT vehicle positions feed
	DBPath      string // delay history database
	StatsCSV    string // per-cycle route stats, "" disables

	IntervalSec    int // seconds between monitor cycles
	AlertThreshold int // minutes, inclusive
	GTFSRefreshMin int // minutes between static feed revalidations, 0 = never

	WebhookURL  string
	NATSURL     string
	NATSSubject string
	MetricsAddr string // "" disables the metrics endpoint

	DashboardPort int
}

// Load reads configuration from a .env file (when present) and the
// environment, with defaults matching the Dijon Divia network the monitor
// was built against.
func Load() *Config {
	godotenv.Load()

	return &Config{
		GTFSSource:  envStr("RUBAN_GTFS_SOURCE", "./gtfs.zip"),
		VehiclesURL: envStr("RUBAN_VEHICLES_URL", "https://proxy.transport.data.gouv.fr/resource/divia-dijon-gtfs-rt-vehicle-position"),
		DBPath:      envStr("RUBAN_DB_PATH", "./rubanwatch.db"),
		StatsCSV:    envStr("RUBAN_STATS_CSV", ""),

		IntervalSec:    envInt("RUBAN_INTERVAL_SEC", 30),
		AlertThreshold: envInt("RUBAN_ALERT_THRESHOLD_MIN", 10),
		GTFSRefreshMin: envInt("RUBAN_GTFS_REFRESH_MIN", 0),

		WebhookURL:  envStr("RUBAN_WEBHOOK_URL", ""),
		NATSURL:     envStr("RUBAN_NATS_URL", ""),
		NATSSubject: envStr("RUBAN_NATS_SUBJECT", "rubanwatch.alerts"),
		MetricsAddr: envStr("RUBAN_METRICS_ADDR", ""),

		DashboardPort: envInt("RUBAN_DASHBOARD_PORT", 8000),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"
	"time"

	"rubanwatch/internal/alert"
	"rubanwatch/internal/config"
	"rubanwatch/internal/display"
	"rubanwatch/internal/gtfs"
	"rubanwatch/internal/history"
	"rubanwatch/internal/metrics"
	"rubanwatch/internal/monitor"
	"rubanwatch/internal/realtime"
	"rubanwatch/internal/schedule"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	cfg := config.Load()

	interval := flag.Int("interval", cfg.IntervalSec, "Seconds between monitor cycles")
	alertOnly := flag.Bool("alert-only", false, "Show only problem blocks, skip the vehicle listing")
	follow := flag.String("follow", "", "Restrict the listing to one vehicle label")
	noBeep := flag.Bool("no-beep", false, "Disable the terminal bell on problems")
	threshold := flag.Int("alert-threshold", cfg.AlertThreshold, "Anomaly threshold in minutes, inclusive")
	webhookURL := flag.String("webhook-url", cfg.WebhookURL, "Webhook URL for JSON alerts")
	statsCSV := flag.String("stats-csv", cfg.StatsCSV, "Append per-route cycle stats to this CSV file")
	mapFile := flag.String("map", "", "Write an HTML map of vehicle positions to this file each cycle")
	refreshGTFS := flag.Int("refresh-gtfs", cfg.GTFSRefreshMin, "Minutes between static feed revalidations, 0 = load once")
	replayDir := flag.String("replay-dir", "", "Replay recorded .pb snapshots from this directory instead of polling")
	simSpeed := flag.Float64("simulation-speed", 1.0, "Replay pacing factor, 2.0 = twice as fast")
	configFile := flag.String("config", "", "YAML feed profile file")
	feedName := flag.String("feed", "", "Profile name inside the feed config file")
	flag.Parse()

	// Positional arguments override the environment: <gtfs.zip|url> [rt-url]
	if args := flag.Args(); len(args) > 0 {
		cfg.GTFSSource = args[0]
		if len(args) > 1 {
			cfg.VehiclesURL = args[1]
		}
	}

	if *configFile != "" {
		feeds, err := config.LoadFile(*configFile)
		if err != nil {
			logger.Error("load feed config", "error", err)
			os.Exit(1)
		}
		profile, err := feeds.Select(*feedName)
		if err != nil {
			logger.Error("select feed profile", "error", err)
			os.Exit(1)
		}
		cfg.GTFSSource = profile.GTFSSource
		cfg.VehiclesURL = profile.VehiclesURL
		logger.Info("feed profile selected", "name", profile.Name)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutting down")
		cancel()
	}()

	store, err := history.OpenStore(cfg.DBPath, logger)
	if err != nil {
		logger.Error("open history store", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	hist, err := store.Load()
	if err != nil {
		logger.Error("load delay history", "error", err)
		os.Exit(1)
	}

	ttl := time.Duration(*refreshGTFS) * time.Minute
	loader := gtfs.NewLoader(cfg.GTFSSource, os.TempDir(), ttl, logger)
	feed, err := loader.Feed(ctx)
	if err != nil {
		logger.Error("load static schedule", "error", err)
		os.Exit(1)
	}
	idx := schedule.NewIndex(feed)
	logger.Info("static schedule loaded", "trips", len(feed.Trips), "stops", len(feed.Stops))

	renderer := display.NewRenderer(os.Stdout, idx)
	renderer.AlertOnly = *alertOnly
	renderer.Follow = *follow
	renderer.Beep = !*noBeep

	var stats *history.StatsWriter
	if *statsCSV != "" {
		stats = history.NewStatsWriter(*statsCSV)
	}

	var vehicleMap *display.MapWriter
	if *mapFile != "" {
		vehicleMap = display.NewMapWriter(*mapFile)
	}

	var webhook *alert.Webhook
	if *webhookURL != "" {
		webhook = alert.NewWebhook(*webhookURL, logger)
	}

	var publisher *alert.NATSPublisher
	if cfg.NATSURL != "" {
		publisher, err = alert.NewNATSPublisher(cfg.NATSURL, cfg.NATSSubject, logger)
		if err != nil {
			logger.Error("connect alert publisher", "error", err)
			os.Exit(1)
		}
		defer publisher.Close()
	}

	collector := metrics.NewCollector()
	if cfg.MetricsAddr != "" {
		srv := collector.Serve(cfg.MetricsAddr, logger)
		defer srv.Close()
	}

	m := &monitorLoop{
		cfg:       cfg,
		loader:    loader,
		feed:      feed,
		idx:       idx,
		hist:      hist,
		store:     store,
		renderer:  renderer,
		stats:     stats,
		mapWriter: vehicleMap,
		webhook:   webhook,
		publisher: publisher,
		collector: collector,
		threshold: *threshold,
		logger:    logger,
	}

	if *replayDir != "" {
		if err := m.replay(ctx, *replayDir, time.Duration(*interval)*time.Second, *simSpeed); err != nil {
			logger.Error("replay failed", "error", err)
			os.Exit(1)
		}
		return
	}

	m.poll(ctx, time.Duration(*interval)*time.Second)
}

type monitorLoop struct {
	cfg       *config.Config
	loader    *gtfs.Loader
	feed      *gtfs.Feed
	idx       *schedule.Index
	hist      *history.History
	store     *history.Store
	renderer  *display.Renderer
	stats     *history.StatsWriter
	mapWriter *display.MapWriter
	webhook   *alert.Webhook
	publisher *alert.NATSPublisher
	collector *metrics.Collector
	threshold int
	logger    *slog.Logger
}

// poll runs live cycles at a fixed interval until cancelled.
func (m *monitorLoop) poll(ctx context.Context, interval time.Duration) {
	client := realtime.NewClient(m.cfg.VehiclesURL)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		entities, err := client.Fetch(ctx)
		if err != nil {
			m.collector.FeedErrors.Inc()
			m.logger.Warn("feed fetch failed", "error", err)
		} else {
			m.cycle(ctx, entities, time.Now())
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return
		}
	}
}

// replay feeds recorded snapshots through the same cycle logic, pacing
// them at interval divided by the speed factor.
func (m *monitorLoop) replay(ctx context.Context, dir string, interval time.Duration, speed float64) error {
	paths, err := filepath.Glob(filepath.Join(dir, "*.pb"))
	if err != nil {
		return err
	}
	sort.Strings(paths)
	m.logger.Info("replay started", "snapshots", len(paths), "speed", speed)

	if speed <= 0 {
		speed = 1.0
	}
	pace := time.Duration(float64(interval) / speed)

	for i, path := range paths {
		entities, err := realtime.ReadFile(path)
		if err != nil {
			m.collector.FeedErrors.Inc()
			m.logger.Warn("skip unreadable snapshot", "path", path, "error", err)
			continue
		}
		m.cycle(ctx, entities, time.Now())

		if i < len(paths)-1 {
			select {
			case <-time.After(pace):
			case <-ctx.Done():
				return nil
			}
		}
	}
	m.logger.Info("replay finished")
	return nil
}

// cycle runs one reconciliation pass end to end: schedule refresh, monitor
// run, display, persistence, metrics, alerting.
func (m *monitorLoop) cycle(ctx context.Context, entities []realtime.VehicleEntity, now time.Time) {
	started := time.Now()

	feed, err := m.loader.Feed(ctx)
	if err == nil && feed != m.feed {
		m.feed = feed
		m.idx = schedule.NewIndex(feed)
		r := display.NewRenderer(os.Stdout, m.idx)
		r.AlertOnly = m.renderer.AlertOnly
		r.Follow = m.renderer.Follow
		r.Beep = m.renderer.Beep
		m.renderer = r
		m.logger.Info("static schedule refreshed", "trips", len(feed.Trips))
	}

	report := monitor.Run(m.idx, entities, m.hist, now, m.threshold)
	m.renderer.Render(report, m.hist)

	if m.mapWriter != nil {
		if err := m.mapWriter.Write(report, m.idx); err != nil {
			m.logger.Warn("write vehicle map failed", "error", err)
		}
	}

	stats := monitor.UpdateHistory(report, m.idx, m.hist)
	for routeID, stat := range stats {
		sample := history.Sample{Label: m.hist.Label(routeID), AvgDelayMin: stat.AvgDelayMin}
		if err := m.store.AppendSample(now, routeID, sample); err != nil {
			m.logger.Warn("persist delay sample failed", "route", routeID, "error", err)
		}
	}
	if m.stats != nil && len(stats) > 0 {
		rows := make([]history.RouteStat, 0, len(stats))
		for _, stat := range stats {
			rows = append(rows, stat)
		}
		sort.Slice(rows, func(i, j int) bool { return rows[i].RouteID < rows[j].RouteID })
		if err := m.stats.Append(now, rows); err != nil {
			m.logger.Warn("append stats csv failed", "error", err)
		}
	}

	m.collector.ObserveCycle(report, time.Since(started))

	if report.HasProblem() {
		payload := alert.BuildPayload(report)
		if m.webhook != nil {
			if err := m.webhook.Notify(ctx, payload); err != nil {
				m.logger.Warn("webhook delivery failed", "error", err)
			}
		}
		if m.publisher != nil {
			if err := m.publisher.Publish(payload); err != nil {
				m.logger.Warn("alert publish failed", "error", err)
			}
		}
	}
}

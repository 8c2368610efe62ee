package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"rubanwatch/internal/config"
	"rubanwatch/internal/dashboard"
	"rubanwatch/internal/gtfs"
	"rubanwatch/internal/metrics"
	"rubanwatch/internal/realtime"
	"rubanwatch/internal/schedule"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	cfg := config.Load()

	port := flag.Int("port", cfg.DashboardPort, "HTTP listen port")
	gtfsSource := flag.String("gtfs", cfg.GTFSSource, "GTFS zip path or URL")
	vehiclesURL := flag.String("rt-url", cfg.VehiclesURL, "GTFS-RT vehicle positions URL")
	refreshGTFS := flag.Int("refresh-gtfs", cfg.GTFSRefreshMin, "Minutes between static feed revalidations, 0 = load once")
	pollSec := flag.Int("poll", 30, "Seconds between vehicle feed polls")
	withMetrics := flag.Bool("metrics", false, "Expose Prometheus metrics on /metrics")
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutting down")
		cancel()
	}()

	ttl := time.Duration(*refreshGTFS) * time.Minute
	loader := gtfs.NewLoader(*gtfsSource, os.TempDir(), ttl, logger)
	feed, err := loader.Feed(ctx)
	if err != nil {
		logger.Error("load static schedule", "error", err)
		os.Exit(1)
	}

	var mu sync.RWMutex
	idx := schedule.NewIndex(feed)
	index := func() *schedule.Index {
		mu.RLock()
		defer mu.RUnlock()
		return idx
	}
	logger.Info("static schedule loaded", "trips", len(feed.Trips), "stops", len(feed.Stops))

	store := realtime.NewStore()
	client := realtime.NewClient(*vehiclesURL)
	go pollVehicles(ctx, client, store, time.Duration(*pollSec)*time.Second, logger)

	if ttl > 0 {
		go func() {
			ticker := time.NewTicker(ttl)
			defer ticker.Stop()
			current := feed
			for {
				select {
				case <-ticker.C:
					next, err := loader.Feed(ctx)
					if err != nil || next == current {
						continue
					}
					mu.Lock()
					idx = schedule.NewIndex(next)
					mu.Unlock()
					current = next
					logger.Info("static schedule refreshed", "trips", len(next.Trips))
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	var metricsHandler http.Handler
	if *withMetrics {
		metricsHandler = metrics.NewCollector().Handler()
	}

	srv := dashboard.New(*port, index, store, metricsHandler, logger)
	if err := srv.Start(ctx); err != nil {
		logger.Error("dashboard server error", "error", err)
		os.Exit(1)
	}
}

func pollVehicles(ctx context.Context, client *realtime.Client, store *realtime.Store, interval time.Duration, logger *slog.Logger) {
	fetch := func() {
		entities, err := client.Fetch(ctx)
		if err != nil {
			logger.Warn("feed fetch failed", "error", err)
			return
		}
		store.SetEntities(entities, time.Now())
	}

	fetch()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			fetch()
		case <-ctx.Done():
			return
		}
	}
}

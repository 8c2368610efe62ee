package gtfs

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"
)

// Loader provides the current static feed, loading it from a local zip path
// or a remote URL. Remote feeds are re-checked with conditional requests when
// the cache TTL expires; local files are re-parsed when the TTL expires.
// A TTL of zero means the feed is loaded once and kept for the process lifetime.
type Loader struct {
	source     string
	downloader *Downloader // nil for local sources
	ttl        time.Duration
	logger     *slog.Logger

	mu           sync.Mutex
	feed         *Feed
	loadedAt     time.Time
	lastModified string
	etag         string
}

// NewLoader creates a Loader for a local zip path or an http(s) URL.
func NewLoader(source, dir string, ttl time.Duration, logger *slog.Logger) *Loader {
	l := &Loader{source: source, ttl: ttl, logger: logger}
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		l.downloader = NewDownloader(source, dir, logger)
	}
	return l
}

// Feed returns the cached feed, reloading it when the TTL has expired.
func (l *Loader) Feed(ctx context.Context) (*Feed, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.feed != nil && (l.ttl == 0 || time.Since(l.loadedAt) < l.ttl) {
		return l.feed, nil
	}
	if err := l.reload(ctx); err != nil {
		if l.feed != nil {
			// Keep serving the previous feed rather than failing the cycle.
			l.logger.Warn("GTFS reload failed, keeping cached feed", "error", err)
			l.loadedAt = time.Now()
			return l.feed, nil
		}
		return nil, err
	}
	return l.feed, nil
}

func (l *Loader) reload(ctx context.Context) error {
	if l.downloader == nil {
		feed, err := ParseZip(l.source, l.logger)
		if err != nil {
			return fmt.Errorf("load %s: %w", l.source, err)
		}
		l.feed = feed
		l.loadedAt = time.Now()
		return nil
	}

	if l.feed != nil {
		result, err := l.downloader.Check(ctx, l.lastModified, l.etag)
		if err != nil {
			return err
		}
		if !result.NeedsUpdate {
			l.loadedAt = time.Now()
			return nil
		}
	}

	path, lastModified, etag, err := l.downloader.Download(ctx)
	if err != nil {
		return err
	}
	defer os.Remove(path)

	feed, err := ParseZip(path, l.logger)
	if err != nil {
		return err
	}
	feed.LastModified = lastModified
	feed.ETag = etag

	l.feed = feed
	l.loadedAt = time.Now()
	l.lastModified = lastModified
	l.etag = etag
	return nil
}

package realtime

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

const userAgent = "rubanwatch/1.0"

// Client fetches a GTFS-RT vehicle positions feed over HTTP.
type Client struct {
	url    string
	client *http.Client
}

// NewClient creates a vehicle positions client for the given feed URL.
func NewClient(url string) *Client {
	return &Client{
		url:    url,
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

// Fetch downloads and decodes the current feed snapshot.
func (c *Client) Fetch(ctx context.Context) ([]VehicleEntity, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("create feed request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch vehicle positions: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("vehicle positions feed returned %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read feed body: %w", err)
	}

	entities, err := Unmarshal(body)
	if err != nil {
		return nil, fmt.Errorf("parse feed protobuf: %w", err)
	}
	return entities, nil
}

// ReadFile decodes a recorded feed snapshot from disk, used for replay.
func ReadFile(path string) ([]VehicleEntity, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	entities, err := Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return entities, nil
}

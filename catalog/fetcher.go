package catalog

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/snow-ghost/planner/pkg/limiter"
)

// maxCatalogBytes bounds the size of a remote catalog document.
const maxCatalogBytes = 1 << 20

// Fetcher downloads a YAML catalog over HTTP. Transient failures are retried with
// backoff, and repeated failures open a circuit breaker.
type Fetcher struct {
	url    string
	client *http.Client
	guard  *limiter.Guard
}

// NewFetcher creates a fetcher. A nil client gets a 10s timeout; a nil guard uses the
// default retry and breaker settings.
func NewFetcher(url string, client *http.Client, guard *limiter.Guard) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	if guard == nil {
		guard = limiter.NewGuard(limiter.DefaultRetryConfig(), limiter.DefaultCircuitBreakerConfig(), nil)
	}
	return &Fetcher{url: url, client: client, guard: guard}
}

// URL returns the catalog location.
func (f *Fetcher) URL() string { return f.url }

// Fetch downloads and parses the catalog.
func (f *Fetcher) Fetch(ctx context.Context) (*Catalog, error) {
	data, err := limiter.Do(ctx, f.guard, "catalog", f.get)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch catalog from %s: %w", f.url, err)
	}
	return LoadBytes(data)
}

func (f *Fetcher) get(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/yaml, text/yaml, */*")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, limiter.NewHTTPError(resp.StatusCode, string(body))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxCatalogBytes+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxCatalogBytes {
		return nil, fmt.Errorf("catalog exceeds %d bytes", maxCatalogBytes)
	}
	return data, nil
}

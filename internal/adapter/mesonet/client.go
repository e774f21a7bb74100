// Package mesonet implements the HTTP transport to the Oklahoma Mesonet file
// service.
package mesonet

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/mesonet-etl/internal/domain"
	"github.com/couchcryptid/mesonet-etl/internal/observability"
)

// DefaultBaseURL is the provider's file download endpoint.
const DefaultBaseURL = "http://www.mesonet.org/public/data/getfile.php"

// maxBodyBytes bounds a single file download. A full-day snapshot directory
// entry is well under 100 KiB.
const maxBodyBytes = 16 << 20

// Client fetches raw files over HTTP. It implements retrieval.Transport.
type Client struct {
	httpClient *http.Client
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a transport with the given request timeout.
func NewClient(timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		metrics: metrics,
		logger:  logger,
	}
}

// Get downloads the full body at fullURL. Any failure, including a non-200
// status, is returned as a *domain.TransportError.
func (c *Client) Get(ctx context.Context, fullURL string) ([]byte, error) {
	start := time.Now()
	body, err := c.doRequest(ctx, fullURL)
	c.metrics.TransportDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		c.metrics.TransportRequests.WithLabelValues("error").Inc()
		c.logger.Warn("mesonet request failed", "url", fullURL, "error", err)
		return nil, err
	}

	c.metrics.TransportRequests.WithLabelValues("success").Inc()
	c.metrics.ResponseBytes.Observe(float64(len(body)))
	c.logger.Debug("mesonet file fetched", "url", fullURL, "bytes", len(body))
	return body, nil
}

func (c *Client) doRequest(ctx context.Context, fullURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, &domain.TransportError{URL: fullURL, Err: fmt.Errorf("create request: %w", err)}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &domain.TransportError{URL: fullURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &domain.TransportError{
			URL:        fullURL,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected response: %s", snippet),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		return nil, &domain.TransportError{URL: fullURL, Err: fmt.Errorf("read body: %w", err)}
	}
	if len(body) > maxBodyBytes {
		return nil, &domain.TransportError{URL: fullURL, Err: fmt.Errorf("response exceeds %d bytes", maxBodyBytes)}
	}
	return body, nil
}

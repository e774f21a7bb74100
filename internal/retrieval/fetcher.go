// Package retrieval composes address construction, transport, and table
// parsing into a single fetch of a Mesonet file.
package retrieval

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/mesonet-etl/internal/domain"
	"github.com/couchcryptid/mesonet-etl/internal/observability"
)

// Transport retrieves the full body at a URL.
type Transport interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

// Request describes one fetch. A zero Time means now (UTC); an empty Station
// requests a network snapshot; empty Fields keeps every variable.
type Request struct {
	Time    time.Time
	Fields  []string
	Station string
	Unpack  bool
}

// Result is a parsed table together with the address it came from.
type Result struct {
	Address domain.ResourceAddress
	Table   domain.MaskedTable
}

// Fetcher retrieves and parses Mesonet files. It holds no mutable state and
// is safe for concurrent use. It does not retry.
type Fetcher struct {
	transport Transport
	baseURL   string
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// NewFetcher creates a Fetcher that downloads from baseURL via transport.
func NewFetcher(transport Transport, baseURL string, logger *slog.Logger, metrics *observability.Metrics) *Fetcher {
	return &Fetcher{
		transport: transport,
		baseURL:   baseURL,
		logger:    logger,
		metrics:   metrics,
	}
}

// Fetch downloads and parses the file addressed by req. Transport and parse
// errors are returned wrapped so errors.Is and errors.As still match them.
func (f *Fetcher) Fetch(ctx context.Context, req Request) (Result, error) {
	raw, addr, err := f.FetchRaw(ctx, req.Time, req.Station)
	if err != nil {
		return Result{}, err
	}

	table, err := domain.ParseTable(raw, req.Fields, req.Unpack)
	if err != nil {
		f.metrics.FetchRequests.WithLabelValues(addr.Mode.String(), "parse_error").Inc()
		return Result{}, fmt.Errorf("parse %s: %w", addr.Filename, err)
	}

	f.metrics.FetchRequests.WithLabelValues(addr.Mode.String(), "success").Inc()
	f.metrics.MaskedValues.Add(float64(countMasked(table)))
	f.logger.Debug("mesonet table parsed",
		"file", addr.Filename,
		"fields", len(table.Fields),
		"observations", table.NumObservations(),
	)
	return Result{Address: addr, Table: table}, nil
}

// FetchRaw downloads the file for t and station without parsing it.
func (f *Fetcher) FetchRaw(ctx context.Context, t time.Time, station string) ([]byte, domain.ResourceAddress, error) {
	if t.IsZero() {
		t = domain.Now()
	}
	addr := domain.BuildAddress(t, station)

	raw, err := f.transport.Get(ctx, addr.URL(f.baseURL))
	if err != nil {
		if !errors.Is(err, domain.ErrTransport) {
			err = &domain.TransportError{URL: addr.URL(f.baseURL), Err: err}
		}
		f.metrics.FetchRequests.WithLabelValues(addr.Mode.String(), "transport_error").Inc()
		return nil, addr, err
	}
	return raw, addr, nil
}

func countMasked(t domain.MaskedTable) int {
	n := 0
	rows, cols := t.Dims()
	for i := range rows {
		for j := range cols {
			if t.Masked(i, j) {
				n++
			}
		}
	}
	return n
}

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/couchcryptid/mesonet-etl/internal/domain"
	"github.com/couchcryptid/mesonet-etl/internal/observability"
	"github.com/couchcryptid/storm-data-shared/retry"
)

// Source downloads the raw file for a poll time and station.
type Source interface {
	FetchRaw(ctx context.Context, t time.Time, station string) ([]byte, domain.ResourceAddress, error)
}

// Transformer converts a raw file into observations.
type Transformer interface {
	Transform(ctx context.Context, raw []byte, addr domain.ResourceAddress) ([]domain.Observation, error)
}

// BatchLoader writes observations to the destination.
type BatchLoader interface {
	LoadBatch(ctx context.Context, observations []domain.Observation) error
}

// Options control polling.
type Options struct {
	// Station selects a time-series file; empty polls network snapshots.
	Station string
	// Interval between successful polls.
	Interval time.Duration
	// Lag is subtracted from now so the provider has published the file.
	Lag time.Duration
}

// Pipeline polls the provider and publishes observations it has not
// published before.
type Pipeline struct {
	source      Source
	transformer Transformer
	loader      BatchLoader
	logger      *slog.Logger
	metrics     *observability.Metrics
	opts        Options
	ready       atomic.Bool

	// latest published observation time per station; only touched by Run.
	watermark map[string]time.Time
}

// New creates a Pipeline with the given stages and observability.
func New(s Source, t Transformer, l BatchLoader, logger *slog.Logger, metrics *observability.Metrics, opts Options) *Pipeline {
	return &Pipeline{
		source:      s,
		transformer: t,
		loader:      l,
		logger:      logger,
		metrics:     metrics,
		opts:        opts,
		watermark:   make(map[string]time.Time),
	}
}

// CheckReadiness returns nil once the pipeline has published at least one
// batch, or an error describing why the service is not yet ready.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("pipeline has not published any observations yet")
	}
	return nil
}

// Run polls until the context is cancelled. Failed cycles are retried with
// exponential backoff instead of waiting a full interval.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline started",
		"station", p.opts.Station,
		"interval", p.opts.Interval,
		"lag", p.opts.Lag,
	)
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	bo := newBackOff(p.opts.Interval)

	for {
		wait := p.opts.Interval
		if err := p.runCycle(ctx); err != nil {
			if ctx.Err() != nil {
				p.logger.Info("pipeline stopping", "reason", ctx.Err())
				return nil
			}
			wait = bo.NextBackOff()
			if wait == backoff.Stop {
				wait = p.opts.Interval
			}
			p.logger.Error("poll cycle failed", "error", err, "retry_in", wait)
		} else {
			bo.Reset()
		}

		if !retry.SleepWithContext(ctx, wait) {
			p.logger.Info("pipeline stopping", "reason", ctx.Err())
			return nil
		}
	}
}

// runCycle fetches, transforms, and loads one file. Malformed files are
// logged and skipped; only fetch and load failures are returned.
func (p *Pipeline) runCycle(ctx context.Context) error {
	start := time.Now()

	raw, addr, err := p.source.FetchRaw(ctx, domain.Now().Add(-p.opts.Lag), p.opts.Station)
	if err != nil {
		return fmt.Errorf("fetch: %w", err)
	}

	observations, err := p.transformer.Transform(ctx, raw, addr)
	if err != nil {
		p.logger.Warn("transform failed, skipping file", "file", addr.Filename, "error", err)
		p.metrics.TransformErrors.Inc()
		return nil
	}
	p.metrics.ObservationsParsed.Add(float64(len(observations)))

	fresh := p.unpublished(observations)
	if len(fresh) == 0 {
		p.logger.Debug("no new observations", "file", addr.Filename)
		return nil
	}

	if err := p.loader.LoadBatch(ctx, fresh); err != nil {
		return fmt.Errorf("load %d observations: %w", len(fresh), err)
	}

	p.advance(fresh)
	p.metrics.ObservationsPublished.Add(float64(len(fresh)))
	p.metrics.PollCycleDuration.Observe(time.Since(start).Seconds())
	p.ready.Store(true)
	p.logger.Info("observations published", "file", addr.Filename, "count", len(fresh))
	return nil
}

// unpublished keeps observations newer than their station's watermark.
func (p *Pipeline) unpublished(observations []domain.Observation) []domain.Observation {
	out := make([]domain.Observation, 0, len(observations))
	for _, o := range observations {
		if mark, ok := p.watermark[o.StationID]; ok && !o.ObservedAt.After(mark) {
			continue
		}
		out = append(out, o)
	}
	return out
}

func (p *Pipeline) advance(published []domain.Observation) {
	for _, o := range published {
		if o.ObservedAt.After(p.watermark[o.StationID]) {
			p.watermark[o.StationID] = o.ObservedAt
		}
	}
}

// newBackOff starts at 1s (or the interval, if shorter) and grows up to the
// poll interval.
func newBackOff(interval time.Duration) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = min(interval, time.Second)
	b.MaxInterval = interval
	b.MaxElapsedTime = 0
	b.Reset()
	return b
}

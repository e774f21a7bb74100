package pipeline

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/mesonet-etl/internal/domain"
	"github.com/couchcryptid/mesonet-etl/internal/observability"
)

// ObservationTransformer implements Transformer using domain parsing with
// optional site-table enrichment.
type ObservationTransformer struct {
	fields  []string
	locator domain.StationLocator
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewTransformer creates an ObservationTransformer. Pass a nil locator to
// disable station enrichment.
func NewTransformer(fields []string, locator domain.StationLocator, logger *slog.Logger, metrics *observability.Metrics) *ObservationTransformer {
	return &ObservationTransformer{
		fields:  fields,
		locator: locator,
		logger:  logger,
		metrics: metrics,
	}
}

func (t *ObservationTransformer) Transform(ctx context.Context, raw []byte, addr domain.ResourceAddress) ([]domain.Observation, error) {
	observations, err := domain.ParseObservations(raw, addr, t.fields)
	if err != nil {
		return nil, err
	}

	for i, o := range observations {
		o = domain.EnrichWithStation(ctx, o, t.locator, t.logger)
		if t.locator != nil {
			result := "hit"
			if o.Geo == nil {
				result = "miss"
			}
			t.metrics.StationLookups.WithLabelValues(result).Inc()
		}
		observations[i] = domain.StampObservation(o)
	}
	return observations, nil
}

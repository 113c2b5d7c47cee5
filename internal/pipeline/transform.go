package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/swiss-seismological-service/hazard-threshold-etl/internal/config"
	"github.com/swiss-seismological-service/hazard-threshold-etl/internal/domain"
	"github.com/swiss-seismological-service/hazard-threshold-etl/internal/observability"
)

// ThresholdTransformer implements Transformer: it parses a raw curve-set
// message, fetches referenced curves from the engine when necessary, and
// resolves the set at every alarm level of the configured profile.
type ThresholdTransformer struct {
	profile     config.AlarmProfile
	fetcher     domain.CurveFetcher
	floor       float64
	parallelism int
	logger      *slog.Logger
	metrics     *observability.Metrics
}

// NewTransformer creates a ThresholdTransformer. Pass a nil fetcher to
// disable engine lookups; reference-only messages then fail resolution.
func NewTransformer(profile config.AlarmProfile, fetcher domain.CurveFetcher, floor float64, parallelism int, logger *slog.Logger, metrics *observability.Metrics) *ThresholdTransformer {
	return &ThresholdTransformer{
		profile:     profile,
		fetcher:     fetcher,
		floor:       floor,
		parallelism: parallelism,
		logger:      logger,
		metrics:     metrics,
	}
}

func (t *ThresholdTransformer) Transform(ctx context.Context, raw domain.RawCurveMessage) ([]domain.ResolvedThresholds, error) {
	cs, err := domain.ParseRawCurveSet(raw)
	if err != nil {
		return nil, err
	}

	if cs.IsReference() {
		if t.fetcher == nil {
			return nil, fmt.Errorf("curve set %s: reference message but engine fetching is disabled", cs.CalcID)
		}
		calcID := cs.CalcID
		cs, err = t.fetcher.FetchCurveSet(ctx, calcID)
		if err != nil {
			return nil, fmt.Errorf("fetch curve set %s: %w", calcID, err)
		}
	}

	start := time.Now()
	docs := make([]domain.ResolvedThresholds, 0, len(t.profile.Levels))
	for _, level := range t.profile.Levels {
		m, err := domain.Resolve(cs, level.Threshold,
			domain.WithFloor(t.floor),
			domain.WithParallelism(t.parallelism),
		)
		if err != nil {
			return nil, fmt.Errorf("resolve %s at level %s (p=%g): %w", cs.CalcID, level.Name, level.Threshold, err)
		}
		t.metrics.CellsResolved.Add(float64(len(m.Vals)))
		docs = append(docs, domain.NewResolvedThresholds(cs, level.Name, level.Threshold, m))
	}
	t.metrics.ResolveDuration.Observe(time.Since(start).Seconds())

	t.logger.Debug("curve set resolved",
		"calc_id", cs.CalcID,
		"levels", len(docs),
		"distances", len(cs.IVLs[0]),
	)
	return docs, nil
}

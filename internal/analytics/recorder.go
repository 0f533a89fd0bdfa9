package analytics

import (
	"context"
	"time"

	"github.com/verifi-app/verifi-backend/pkg/clock"
	"github.com/verifi-app/verifi-backend/pkg/logger"
	"github.com/verifi-app/verifi-backend/pkg/metrics"
)

// CounterRetention is how long per-day counters are kept.
const CounterRetention = 30 * 24 * time.Hour

// CounterStore persists per-day event counters. *redis.Client satisfies it.
type CounterStore interface {
	IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error)
	CounterKey(parts ...string) string
}

// Recorder validates, logs and counts analytics events.
type Recorder struct {
	metrics  *metrics.EventMetrics
	counters CounterStore
	clock    clock.Clock
	logg     *logger.Logger
}

// NewRecorder builds a Recorder. counters may be nil when no counter store
// is configured.
func NewRecorder(m *metrics.EventMetrics, counters CounterStore, clk clock.Clock, logg *logger.Logger) *Recorder {
	if clk == nil {
		clk = clock.System{}
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &Recorder{metrics: m, counters: counters, clock: clk, logg: logg}
}

// Record accepts an event. Only invalid events fail; a counter store fault
// is logged and the event still counts in the in-process metrics.
func (r *Recorder) Record(ctx context.Context, e Event) error {
	if err := e.validate(); err != nil {
		return err
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = r.clock.Now()
	}

	fields := map[string]any{"event": string(e.Type)}
	if e.BusinessID != "" {
		fields["business_id"] = e.BusinessID
	}
	if e.PromoID != "" {
		fields["promo_id"] = e.PromoID
	}
	if e.UserID != "" {
		fields["user_id"] = e.UserID
	}
	if e.Query != "" {
		fields["query"] = e.Query
	}
	if e.Rating != 0 {
		fields["rating"] = e.Rating
	}
	ctx = r.logg.WithFields(ctx, fields)
	r.logg.Info(ctx, "analytics event")

	r.metrics.Inc(string(e.Type))

	if r.counters != nil {
		key := r.counters.CounterKey(string(e.Type), e.subject(), e.OccurredAt.UTC().Format("20060102"))
		if _, err := r.counters.IncrWithTTL(ctx, key, CounterRetention); err != nil {
			r.logg.Warn(r.logg.WithField(ctx, "error", err.Error()), "analytics counter update failed")
		}
	}
	return nil
}

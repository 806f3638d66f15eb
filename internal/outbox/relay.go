package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/BruksfildServices01/care-scheduler/internal/domain/notification"
	"github.com/BruksfildServices01/care-scheduler/internal/metrics"
	"github.com/BruksfildServices01/care-scheduler/internal/models"
)

// Store is the persistence the relay needs from outbox_events.
type Store interface {
	FetchPending(ctx context.Context, limit int, maxAttempts int) ([]models.OutboxEvent, error)
	MarkDelivered(ctx context.Context, id string) error
	RecordFailure(ctx context.Context, id string, reason string) error
}

// Relay polls undelivered notification intents and stores them. Events that
// failed MaxAttempts times are no longer fetched.
type Relay struct {
	store         Store
	notifications notification.Store
	metrics       *metrics.Metrics
	logger        *zap.Logger

	batchSize   int
	interval    time.Duration
	maxAttempts int
	now         func() time.Time
}

func NewRelay(
	store Store,
	notifications notification.Store,
	m *metrics.Metrics,
	logger *zap.Logger,
) *Relay {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Relay{
		store:         store,
		notifications: notifications,
		metrics:       m,
		logger:        logger,
		batchSize:     25,
		interval:      5 * time.Second,
		maxAttempts:   10,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

func (r *Relay) WithBatchSize(size int) *Relay {
	if size > 0 {
		r.batchSize = size
	}
	return r
}

func (r *Relay) WithInterval(interval time.Duration) *Relay {
	if interval > 0 {
		r.interval = interval
	}
	return r
}

func (r *Relay) WithMaxAttempts(n int) *Relay {
	if n > 0 {
		r.maxAttempts = n
	}
	return r
}

// Start blocks until ctx is cancelled.
func (r *Relay) Start(ctx context.Context) {
	if r.store == nil || r.notifications == nil {
		return
	}
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Drain(ctx)
		}
	}
}

// Drain runs a single batch and returns how many events were delivered.
func (r *Relay) Drain(ctx context.Context) int {
	events, err := r.store.FetchPending(ctx, r.batchSize, r.maxAttempts)
	if err != nil {
		r.logger.Error("outbox fetch failed", zap.Error(err))
		return 0
	}

	delivered := 0
	for i := range events {
		ev := &events[i]
		if err := r.deliver(ctx, ev); err != nil {
			r.metrics.ObserveNotification("relay", "error")
			r.logger.Warn("outbox delivery failed",
				zap.String("event_id", ev.ID),
				zap.String("aggregate_id", ev.AggregateID),
				zap.Int("attempts", ev.Attempts+1),
				zap.Error(err),
			)
			if err := r.store.RecordFailure(ctx, ev.ID, err.Error()); err != nil {
				r.logger.Error("outbox record failure failed", zap.String("event_id", ev.ID), zap.Error(err))
			}
			continue
		}
		r.metrics.ObserveNotification("relay", "ok")

		if err := r.store.MarkDelivered(ctx, ev.ID); err != nil {
			r.logger.Error("outbox mark delivered failed", zap.String("event_id", ev.ID), zap.Error(err))
			continue
		}
		r.logger.Debug("outbox delivered", zap.String("event_id", ev.ID))
		delivered++
	}
	return delivered
}

func (r *Relay) deliver(ctx context.Context, ev *models.OutboxEvent) error {
	var intent notification.Intent
	if err := json.Unmarshal(ev.Payload, &intent); err != nil {
		return fmt.Errorf("decode intent: %w", err)
	}
	if intent.UserID == "" {
		return fmt.Errorf("intent without user_id")
	}
	return r.notifications.CreateNotification(ctx, intent.Notification(ev.ID, r.now()))
}

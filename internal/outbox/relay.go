package outbox

import (
	"context"
	"log/slog"
	"time"

	"ticket-storefront/models"
	"ticket-storefront/monitoring"
)

type Store interface {
	PendingOutbox(ctx context.Context, limit int) ([]models.OutboxMessage, error)
	MarkOutboxDispatched(ctx context.Context, id string, at time.Time) error
	MarkOutboxFailed(ctx context.Context, id string, attempts int, lastErr string, giveUp bool) error
}

type Forwarder interface {
	Forward(ctx context.Context, m models.OutboxMessage) error
}

// Relay moves committed outbox entries to the broker. An entry is marked
// dispatched only after the publish succeeded, so a crash in between
// publishes it again. The message router drops uuids a handler has
// already processed.
type Relay struct {
	store       Store
	forwarder   Forwarder
	batchSize   int
	maxAttempts int
	now         func() time.Time
}

func NewRelay(store Store, forwarder Forwarder, batchSize, maxAttempts int) *Relay {
	if batchSize <= 0 {
		batchSize = 50
	}
	if maxAttempts <= 0 {
		maxAttempts = 10
	}
	return &Relay{
		store:       store,
		forwarder:   forwarder,
		batchSize:   batchSize,
		maxAttempts: maxAttempts,
		now:         time.Now,
	}
}

// Flush forwards one batch and returns how many entries went out.
func (r *Relay) Flush(ctx context.Context) (int, error) {
	pending, err := r.store.PendingOutbox(ctx, r.batchSize)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, m := range pending {
		if err := ctx.Err(); err != nil {
			return sent, err
		}

		err := r.forwarder.Forward(ctx, m)
		monitoring.TrackOutboxForward(m.Name, err)

		if err != nil {
			attempts := m.Attempts + 1
			giveUp := attempts >= r.maxAttempts

			if markErr := r.store.MarkOutboxFailed(ctx, m.ID, attempts, err.Error(), giveUp); markErr != nil {
				slog.Error("Failed to record outbox failure", "error", markErr, "outbox_id", m.ID)
			}
			if giveUp {
				slog.Error("Giving up on outbox message", "error", err, "outbox_id", m.ID, "event", m.Name, "attempts", attempts)
			} else {
				slog.Warn("Failed to forward outbox message", "error", err, "outbox_id", m.ID, "event", m.Name, "attempts", attempts)
			}
			continue
		}

		if err := r.store.MarkOutboxDispatched(ctx, m.ID, r.now()); err != nil {
			slog.Error("Failed to mark outbox message dispatched", "error", err, "outbox_id", m.ID)
			continue
		}
		sent++
	}

	return sent, nil
}

func (r *Relay) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	slog.Info("Outbox relay started", "interval", interval, "batch_size", r.batchSize)

	for {
		n, err := r.Flush(ctx)
		if err != nil && ctx.Err() == nil {
			slog.Error("Outbox flush failed", "error", err)
		} else if n > 0 {
			slog.Debug("Outbox flushed", "count", n)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

package store

import (
	"context"
	"time"

	"ticket-storefront/models"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/types"
)

// PendingOutbox returns the oldest undelivered outbox entries.
func (s *PocketStore) PendingOutbox(ctx context.Context, limit int) ([]models.OutboxMessage, error) {
	query := s.app.RecordQuery(CollectionOutbox).
		AndWhere(dbx.HashExp{"status": models.OutboxPending}).
		OrderBy("created ASC", "rowid ASC")
	if limit > 0 {
		query.Limit(int64(limit))
	}

	var records []*core.Record
	if err := query.WithContext(ctx).All(&records); err != nil {
		return nil, err
	}

	out := make([]models.OutboxMessage, len(records))
	for i, r := range records {
		out[i] = outboxFromRecord(r)
	}
	return out, nil
}

func (s *PocketStore) MarkOutboxDispatched(ctx context.Context, id string, at time.Time) error {
	_, err := s.app.DB().
		NewQuery("UPDATE outbox SET status = {:status}, dispatched_at = {:at}, last_error = '', updated = {:now} WHERE id = {:id}").
		Bind(dbx.Params{
			"status": models.OutboxDispatched,
			"at":     dbTime(at),
			"now":    types.NowDateTime().String(),
			"id":     id,
		}).
		WithContext(ctx).
		Execute()
	return err
}

// MarkOutboxFailed records a failed forward. The entry stays pending until
// giveUp is set.
func (s *PocketStore) MarkOutboxFailed(ctx context.Context, id string, attempts int, lastErr string, giveUp bool) error {
	next := models.OutboxPending
	if giveUp {
		next = models.OutboxFailed
	}

	_, err := s.app.DB().
		NewQuery("UPDATE outbox SET status = {:status}, attempts = {:attempts}, last_error = {:err}, updated = {:now} WHERE id = {:id}").
		Bind(dbx.Params{
			"status":   next,
			"attempts": attempts,
			"err":      lastErr,
			"now":      types.NowDateTime().String(),
			"id":       id,
		}).
		WithContext(ctx).
		Execute()
	return err
}

func (s *PocketStore) CountPendingOutbox(ctx context.Context) (int, error) {
	n, err := s.app.CountRecords(CollectionOutbox, dbx.HashExp{"status": models.OutboxPending})
	return int(n), err
}

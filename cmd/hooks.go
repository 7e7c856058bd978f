package cmd

import (
	"context"
	"log/slog"

	"ticket-storefront/internal/messaging"
	"ticket-storefront/internal/store"
	"ticket-storefront/models"

	"github.com/pocketbase/pocketbase/core"
)

type outboxWriter interface {
	Enqueue(ctx context.Context, m models.OutboxMessage) error
}

func userRegisteredMessage(record *core.Record) (models.OutboxMessage, error) {
	header := messaging.NewHeader()
	return messaging.NewOutboxMessage(&messaging.UserRegistered{
		Header: header,
		UserID: record.Id,
		Email:  record.Email(),
		Name:   record.GetString("name"),
	}, header)
}

func setupEventHooks(app core.App, outbox outboxWriter) {
	// Hook: fires after a new user has been committed; queues the welcome email.
	app.OnRecordAfterCreateSuccess(store.CollectionUsers).BindFunc(func(e *core.RecordEvent) error {
		m, err := userRegisteredMessage(e.Record)
		if err != nil {
			slog.Error("Failed to build welcome message", "userID", e.Record.Id, "error", err)
			return e.Next()
		}

		// Sign-up succeeds even when the welcome email cannot be queued.
		if err := outbox.Enqueue(context.Background(), m); err != nil {
			slog.Error("Failed to queue welcome email",
				"userID", e.Record.Id,
				"error", err,
				"hook", "OnRecordAfterCreateSuccess",
			)
			return e.Next()
		}

		slog.Info("Queued welcome email", "userID", e.Record.Id)
		return e.Next()
	})
}

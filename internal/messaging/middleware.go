package messaging

import (
	"context"
	"log/slog"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/lithammer/shortuuid/v3"
	"github.com/redis/go-redis/v9"
)

const processedMarkerTTL = 48 * time.Hour

type correlationKey struct{}

func ContextWithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationKey{}, id)
}

func CorrelationIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(correlationKey{}).(string)
	return id
}

func correlationIDMiddleware(next message.HandlerFunc) message.HandlerFunc {
	return func(msg *message.Message) ([]*message.Message, error) {
		correlationID := middleware.MessageCorrelationID(msg)
		if correlationID == "" {
			correlationID = "gen_" + shortuuid.New()
		}

		msg.SetContext(ContextWithCorrelationID(msg.Context(), correlationID))

		return next(msg)
	}
}

func handlerLogMiddleware(next message.HandlerFunc) message.HandlerFunc {
	return func(msg *message.Message) ([]*message.Message, error) {
		logger := slog.With(
			"message_uuid", msg.UUID,
			"correlation_id", CorrelationIDFromContext(msg.Context()),
			"handler", message.HandlerNameFromCtx(msg.Context()),
		)
		logger.Debug("Handling a message")

		msgs, err := next(msg)
		if err != nil {
			logger.Error("Message handling error", "error", err)
		}

		return msgs, err
	}
}

// Deduplicator skips messages a handler has already processed. The outbox
// relay delivers at least once, so the same uuid can arrive twice.
type Deduplicator struct {
	Redis redis.Cmdable
	TTL   time.Duration
}

func processedKey(handler, uuid string) string {
	return "processed:" + handler + ":" + uuid
}

func (d Deduplicator) Middleware(h message.HandlerFunc) message.HandlerFunc {
	ttl := d.TTL
	if ttl <= 0 {
		ttl = processedMarkerTTL
	}

	return func(msg *message.Message) ([]*message.Message, error) {
		ctx := msg.Context()
		key := processedKey(message.HandlerNameFromCtx(ctx), msg.UUID)

		first, err := d.Redis.SetNX(ctx, key, 1, ttl).Result()
		if err != nil {
			// Redis being down must not stall delivery.
			slog.Warn("Failed to mark message as processed", "error", err, "key", key)
			return h(msg)
		}
		if !first {
			slog.Info("Skipping duplicate message", "message_uuid", msg.UUID, "key", key)
			return nil, nil
		}

		msgs, err := h(msg)
		if err != nil {
			// Let the redelivery run the handler again.
			if delErr := d.Redis.Del(ctx, key).Err(); delErr != nil {
				slog.Warn("Failed to clear processed marker", "error", delErr, "key", key)
			}
			return nil, err
		}
		return msgs, nil
	}
}

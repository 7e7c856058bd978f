package messaging

import (
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/ThreeDotsLabs/watermill/components/cqrs"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/redis/go-redis/v9"
)

type SubscriberConstructor func(handlerName string) (message.Subscriber, error)

// RedisStreamSubscribers gives every handler its own consumer group, so
// each handler sees every event once.
func RedisStreamSubscribers(client redis.UniversalClient, logger watermill.LoggerAdapter) SubscriberConstructor {
	return func(handlerName string) (message.Subscriber, error) {
		return redisstream.NewSubscriber(redisstream.SubscriberConfig{
			Client:        client,
			ConsumerGroup: "storefront." + handlerName,
		}, logger)
	}
}

type RouterDeps struct {
	Logger      watermill.LoggerAdapter
	Subscribers SubscriberConstructor
	Notifier    Notifier
	Realtime    RealtimePublisher
	MaxRetries  int
	// Redis, when set, holds the processed-message markers.
	Redis redis.Cmdable
}

func NewRouter(deps RouterDeps) (*message.Router, error) {
	router, err := message.NewRouter(message.RouterConfig{}, deps.Logger)
	if err != nil {
		return nil, fmt.Errorf("creating router: %w", err)
	}

	maxRetries := deps.MaxRetries
	if maxRetries == 0 {
		maxRetries = 10
	}

	router.AddMiddleware(correlationIDMiddleware)
	router.AddMiddleware(handlerLogMiddleware)
	if deps.Redis != nil {
		router.AddMiddleware(Deduplicator{Redis: deps.Redis}.Middleware)
	}
	router.AddMiddleware(middleware.Retry{
		MaxRetries:      maxRetries,
		InitialInterval: time.Millisecond * 100,
		MaxInterval:     time.Second,
		Multiplier:      2,
		Logger:          deps.Logger,
	}.Middleware)

	ep, err := cqrs.NewEventProcessorWithConfig(router, cqrs.EventProcessorConfig{
		SubscriberConstructor: func(params cqrs.EventProcessorSubscriberConstructorParams) (message.Subscriber, error) {
			return deps.Subscribers(params.HandlerName)
		},
		GenerateSubscribeTopic: func(params cqrs.EventProcessorGenerateSubscribeTopicParams) (string, error) {
			return params.EventName, nil
		},
		Marshaler: marshaler,
		Logger:    deps.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating event processor: %w", err)
	}

	h := NewHandler(deps.Notifier, deps.Realtime)

	handlers := []cqrs.EventHandler{
		cqrs.NewEventHandler("send-confirmation-email", h.SendConfirmationEmail),
		cqrs.NewEventHandler("publish-booking-realtime", h.PublishBookingConfirmed),
		cqrs.NewEventHandler("send-cancellation-email", h.SendCancellationEmail),
		cqrs.NewEventHandler("publish-cancellation-realtime", h.PublishBookingCancelled),
		cqrs.NewEventHandler("send-reminder-email", h.SendReminderEmail),
		cqrs.NewEventHandler("send-welcome-email", h.SendWelcomeEmail),
	}

	if err := ep.AddHandlers(handlers...); err != nil {
		return nil, fmt.Errorf("adding handlers: %w", err)
	}

	return router, nil
}

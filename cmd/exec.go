package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ticket-storefront/config"
	"ticket-storefront/internal/handlers"
	"ticket-storefront/internal/messaging"
	"ticket-storefront/internal/outbox"
	"ticket-storefront/internal/services"
	"ticket-storefront/internal/store"
	"ticket-storefront/monitoring"
	"ticket-storefront/security"
	"ticket-storefront/utils"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/plugins/migratecmd"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	pubnub "github.com/pubnub/go"
	"golang.org/x/sync/errgroup"
)

func Start() error {
	app := pocketbase.New()

	// Load configuration
	cfg := config.LoadConfig()

	// Initialize Redis
	redisClient, err := utils.NewRedisClient(cfg.RedisURL)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	// Initialize PubNub
	var realtime messaging.RealtimePublisher = services.NopPublisher{}
	if cfg.PubNubEnabled() {
		pnConfig := pubnub.NewConfig()
		pnConfig.PublishKey = cfg.PubNubPublishKey
		pnConfig.SubscribeKey = cfg.PubNubSubscribeKey
		pnConfig.SecretKey = cfg.PubNubSecretKey
		pnConfig.UUID = cfg.PubNubUserID

		realtime = services.NewPubNubPublisher(pubnub.NewPubNub(pnConfig))
	} else {
		slog.Warn("PubNub keys not set, realtime notifications disabled")
	}

	// Messaging
	watermillLogger := watermill.NewStdLogger(cfg.IsDevelopment(), false)

	publisher, err := redisstream.NewPublisher(redisstream.PublisherConfig{
		Client: redisClient,
	}, watermillLogger)
	if err != nil {
		return fmt.Errorf("creating publisher: %w", err)
	}
	defer publisher.Close()

	// Initialize services
	pocketStore := store.New(app)
	pricing := services.NewPricing(cfg.BookingFeePercent, cfg.CancellationFeePercent)

	notificationService := services.NewNotificationService(
		services.NewPocketBaseMailer(app),
		services.SenderConfig{
			Domain:  cfg.MailFromDomain,
			Name:    cfg.MailFromName,
			ReplyTo: cfg.MailReplyTo,
		},
		utils.NewCircuitBreaker("mail"),
	)

	seatService := services.NewSeatService(pocketStore, redisClient, cfg.SeatHoldTTL, cfg.MaxSeatsPerBooking)
	bookingService := services.NewBookingService(pocketStore, pricing, seatService, cfg.MaxSeatsPerBooking)
	cancellationService := services.NewCancellationService(pocketStore, pricing, cfg.CancellationWindow)
	catalogService := services.NewCatalogService(pocketStore, cfg.CatalogPageSize)
	dashboardService := services.NewDashboardService(pocketStore, cancellationService, pricing)
	reminderService := services.NewReminderService(pocketStore, redisClient)

	router, err := messaging.NewRouter(messaging.RouterDeps{
		Logger:      watermillLogger,
		Subscribers: messaging.RedisStreamSubscribers(redisClient, watermillLogger),
		Notifier:    notificationService,
		Realtime:    realtime,
		Redis:       redisClient,
	})
	if err != nil {
		return err
	}

	relay := outbox.NewRelay(pocketStore, messaging.NewForwarder(publisher), cfg.OutboxBatchSize, cfg.OutboxMaxAttempts)
	limiter := security.NewRateLimiter(redisClient, cfg.RateLimitPerMinute)

	// Initialize handlers
	catalogHandler := handlers.NewCatalogHandler(catalogService, seatService)
	seatHandler := handlers.NewSeatHandler(seatService)
	bookingHandler := handlers.NewBookingHandler(bookingService, cancellationService, dashboardService)
	adminHandler := handlers.NewAdminHandler(catalogService, dashboardService)

	// Enable migrations
	migratecmd.MustRegister(app, app.RootCmd, migratecmd.Config{
		Automigrate: cfg.IsDevelopment(),
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup graceful shutdown
	go handleShutdown(cancel)

	app.OnServe().BindFunc(func(e *core.ServeEvent) error {
		startWorkers(ctx, cfg, workers{
			router:    router,
			relay:     relay,
			reminders: reminderService,
			monitor:   monitoring.NewMonitor(pocketStore, 30*time.Second),
		})

		api := e.Router.Group("/api/v1")
		api.BindFunc(handlers.CorrelationID)

		// Catalog endpoints
		api.GET("/events", catalogHandler.ListEvents)
		api.GET("/events/{eventId}", catalogHandler.GetEvent)
		api.GET("/events/{eventId}/seats", catalogHandler.GetSeats)

		// Seat endpoints
		api.POST("/seats/hold", seatHandler.HoldSeats).BindFunc(limiter.Limit)
		api.POST("/seats/release", seatHandler.ReleaseSeats)

		// Booking endpoints
		api.POST("/bookings", bookingHandler.Book).BindFunc(limiter.Limit)
		api.GET("/bookings", bookingHandler.MyBookings)
		api.GET("/bookings/{bookingId}", bookingHandler.GetBooking)
		api.POST("/bookings/{bookingId}/cancel", bookingHandler.Cancel).BindFunc(limiter.Limit)

		// Admin endpoints
		admin := api.Group("/admin")
		admin.GET("/dashboard", adminHandler.Dashboard)
		admin.POST("/events", adminHandler.CreateEvent)
		admin.POST("/events/{eventId}/seats", adminHandler.GenerateSeats)
		admin.DELETE("/events/{eventId}", adminHandler.DeleteEvent)

		// Health check
		e.Router.GET("/health", func(e *core.RequestEvent) error {
			if err := utils.RedisHealthCheck(e.Request.Context(), redisClient); err != nil {
				return e.JSON(http.StatusServiceUnavailable, map[string]string{
					"status": "unhealthy",
					"error":  err.Error(),
				})
			}
			return e.JSON(http.StatusOK, map[string]string{"status": "healthy"})
		})

		if cfg.EnableMetrics {
			e.Router.GET("/metrics", apis.WrapStdHandler(promhttp.Handler()))
		}

		slog.Info("Server routes registered")

		return e.Next()
	})

	setupEventHooks(app, pocketStore)

	// Start server
	return app.Start()
}

type workers struct {
	router    *message.Router
	relay     *outbox.Relay
	reminders *services.ReminderService
	monitor   *monitoring.Monitor
}

// startWorkers runs the background loops until ctx is cancelled. They
// need the bootstrapped app, so they start from OnServe.
func startWorkers(ctx context.Context, cfg *config.Config, w workers) {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return w.router.Run(ctx)
	})
	g.Go(func() error {
		return w.relay.Run(ctx, cfg.OutboxPollInterval)
	})
	g.Go(func() error {
		return w.reminders.Run(ctx, cfg.ReminderScanInterval)
	})
	if cfg.EnableMetrics {
		g.Go(func() error {
			return w.monitor.Run(ctx)
		})
	}

	go func() {
		if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("Background worker stopped", "error", err)
		}
	}()
}

// handleShutdown handles graceful shutdown
func handleShutdown(cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	slog.Info("Shutdown signal received, cleaning up...")
	cancel()
}

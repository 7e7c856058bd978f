package monitoring

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	bookingsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_bookings_total",
			Help: "Booking attempts by result",
		},
		[]string{"result"},
	)

	cancellationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_cancellations_total",
			Help: "Cancellation attempts by result",
		},
		[]string{"result"},
	)

	seatsBooked = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "storefront_seats_booked_total",
			Help: "Seats sold",
		},
	)

	bookingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "storefront_booking_duration_seconds",
			Help:    "Time spent in the booking workflow",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 10),
		},
	)

	outboxPending = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "storefront_outbox_pending",
			Help: "Outbox messages waiting to be forwarded",
		},
	)

	outboxForwarded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_outbox_forwarded_total",
			Help: "Outbox forwarding attempts by event and result",
		},
		[]string{"event", "result"},
	)

	deliveries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_notification_deliveries_total",
			Help: "Notification deliveries by kind and result",
		},
		[]string{"kind", "result"},
	)

	rateLimited = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_rate_limited_total",
			Help: "Requests rejected by the rate limiter",
		},
		[]string{"reason"},
	)
)

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func TrackBooking(seats int, took time.Duration, err error) {
	bookingsTotal.WithLabelValues(result(err)).Inc()
	bookingDuration.Observe(took.Seconds())
	if err == nil {
		seatsBooked.Add(float64(seats))
	}
}

func TrackCancellation(err error) {
	cancellationsTotal.WithLabelValues(result(err)).Inc()
}

func TrackOutboxForward(event string, err error) {
	outboxForwarded.WithLabelValues(event, result(err)).Inc()
}

func TrackDelivery(kind string, err error) {
	deliveries.WithLabelValues(kind, result(err)).Inc()
}

func TrackRateLimited(reason string) {
	rateLimited.WithLabelValues(reason).Inc()
}

func SetOutboxPending(n int) {
	outboxPending.Set(float64(n))
}

type OutboxCounter interface {
	CountPendingOutbox(ctx context.Context) (int, error)
}

// Monitor samples gauges that have no natural event to update them.
type Monitor struct {
	outbox   OutboxCounter
	interval time.Duration
}

func NewMonitor(outbox OutboxCounter, interval time.Duration) *Monitor {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Monitor{outbox: outbox, interval: interval}
}

func (m *Monitor) Run(ctx context.Context) error {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		m.collect(ctx)

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (m *Monitor) collect(ctx context.Context) {
	n, err := m.outbox.CountPendingOutbox(ctx)
	if err != nil {
		slog.Warn("Failed to count pending outbox messages", "error", err)
		return
	}
	SetOutboxPending(n)
}

package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"ticket-storefront/internal/messaging"
	"ticket-storefront/models"

	"github.com/redis/go-redis/v9"
)

const reminderMarkerTTL = 48 * time.Hour

// ReminderService queues a day-before and an hour-before reminder for
// every confirmed booking. Redis markers make each (booking, variant)
// pair fire once across scans and instances.
type ReminderService struct {
	store Store
	redis redis.Cmdable
	now   func() time.Time
}

func NewReminderService(store Store, redisClient redis.Cmdable) *ReminderService {
	return &ReminderService{store: store, redis: redisClient, now: time.Now}
}

func reminderKey(bookingID string, variant models.ReminderVariant) string {
	return fmt.Sprintf("reminder:%s:%s", bookingID, variant)
}

// reminderVariant picks the reminder due for an event starting in d, if any.
func reminderVariant(d time.Duration) (models.ReminderVariant, bool) {
	switch {
	case d <= 0:
		return "", false
	case d <= models.ReminderHourBefore.Lead():
		return models.ReminderHourBefore, true
	case d <= models.ReminderDayBefore.Lead():
		return models.ReminderDayBefore, true
	}
	return "", false
}

// Scan queues the reminders due now and returns how many were queued.
func (s *ReminderService) Scan(ctx context.Context) (int, error) {
	now := s.now()

	events, err := s.store.ListEvents(ctx, models.EventQuery{
		Status:       models.EventStatusActive,
		StartsAfter:  now,
		StartsBefore: now.Add(models.ReminderDayBefore.Lead()),
	})
	if err != nil {
		return 0, fmt.Errorf("listing upcoming events: %w", err)
	}

	queued := 0
	for _, event := range events {
		variant, ok := reminderVariant(event.StartsAt.Sub(now))
		if !ok {
			continue
		}

		bookings, err := s.store.ListBookings(ctx, models.BookingQuery{
			EventID: event.ID,
			Status:  models.BookingStatusConfirmed,
		})
		if err != nil {
			return queued, fmt.Errorf("listing bookings for %s: %w", event.ID, err)
		}

		for _, booking := range bookings {
			sent, err := s.remind(ctx, booking, event, variant)
			if err != nil {
				slog.Error("Failed to queue reminder", "error", err, "booking_id", booking.ID, "variant", variant)
				continue
			}
			if sent {
				queued++
			}
		}
	}

	return queued, nil
}

func (s *ReminderService) remind(ctx context.Context, booking models.Booking, event models.Event, variant models.ReminderVariant) (bool, error) {
	key := reminderKey(booking.ID, variant)

	first, err := s.redis.SetNX(ctx, key, s.now().Unix(), reminderMarkerTTL).Result()
	if err != nil {
		return false, fmt.Errorf("marking reminder: %w", err)
	}
	if !first {
		return false, nil
	}

	err = s.enqueue(ctx, booking, event, variant)
	if err != nil {
		// Let the next scan try again.
		if delErr := s.redis.Del(ctx, key).Err(); delErr != nil {
			slog.Warn("Failed to clear reminder marker", "error", delErr, "key", key)
		}
		return false, err
	}
	return true, nil
}

func (s *ReminderService) enqueue(ctx context.Context, booking models.Booking, event models.Event, variant models.ReminderVariant) error {
	booked, err := s.store.ListBookedSeats(ctx, booking.ID)
	if err != nil {
		return fmt.Errorf("listing booked seats: %w", err)
	}
	seats, err := s.store.GetSeats(ctx, seatIDsOf(booked))
	if err != nil {
		return err
	}

	header := messaging.NewHeader()
	m, err := messaging.NewOutboxMessage(&messaging.EventReminderDue{
		Header:  header,
		Booking: bookingSummary(booking, event, seats),
		Variant: variant,
	}, header)
	if err != nil {
		return err
	}

	return s.store.Enqueue(ctx, m)
}

func (s *ReminderService) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		n, err := s.Scan(ctx)
		if err != nil {
			slog.Error("Reminder scan failed", "error", err)
		} else if n > 0 {
			slog.Info("Reminders queued", "count", n)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

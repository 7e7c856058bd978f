package messaging

import (
	"context"
	"fmt"

	"ticket-storefront/models"
)

const BroadcastChannel = "user-notifications"

func UserChannel(userID string) string {
	return "user-" + userID
}

type Notifier interface {
	BookingConfirmation(ctx context.Context, b models.BookingSummary) error
	BookingCancellation(ctx context.Context, b models.BookingSummary, refund models.RefundQuote) error
	EventReminder(ctx context.Context, b models.BookingSummary, variant models.ReminderVariant) error
	Welcome(ctx context.Context, email, name string) error
}

type RealtimePublisher interface {
	Publish(ctx context.Context, channel string, n models.RealtimeNotification) error
}

type Handler struct {
	notifier Notifier
	realtime RealtimePublisher
}

func NewHandler(n Notifier, r RealtimePublisher) Handler {
	return Handler{notifier: n, realtime: r}
}

func (h Handler) SendConfirmationEmail(ctx context.Context, e *BookingConfirmed) error {
	if err := h.notifier.BookingConfirmation(ctx, e.Booking); err != nil {
		return fmt.Errorf("sending confirmation for %s: %w", e.Booking.Reference, err)
	}
	return nil
}

func (h Handler) PublishBookingConfirmed(ctx context.Context, e *BookingConfirmed) error {
	n := models.NewBookingConfirmedNotification(e.Booking, e.Header.PublishedAt)
	n.ID = e.Header.ID
	return h.publish(ctx, e.Booking.UserID, n)
}

func (h Handler) SendCancellationEmail(ctx context.Context, e *BookingCancelled) error {
	if err := h.notifier.BookingCancellation(ctx, e.Booking, e.Refund); err != nil {
		return fmt.Errorf("sending cancellation for %s: %w", e.Booking.Reference, err)
	}
	return nil
}

func (h Handler) PublishBookingCancelled(ctx context.Context, e *BookingCancelled) error {
	n := models.NewBookingCancelledNotification(e.Booking, e.Refund.Refund.StringFixed(2), e.Header.PublishedAt)
	n.ID = e.Header.ID
	return h.publish(ctx, e.Booking.UserID, n)
}

func (h Handler) SendReminderEmail(ctx context.Context, e *EventReminderDue) error {
	if err := h.notifier.EventReminder(ctx, e.Booking, e.Variant); err != nil {
		return fmt.Errorf("sending %s reminder for %s: %w", e.Variant, e.Booking.Reference, err)
	}
	return nil
}

func (h Handler) SendWelcomeEmail(ctx context.Context, e *UserRegistered) error {
	if e.Email == "" {
		return nil
	}
	if err := h.notifier.Welcome(ctx, e.Email, e.Name); err != nil {
		return fmt.Errorf("sending welcome to user %s: %w", e.UserID, err)
	}
	return nil
}

// publish sends to the broadcast channel and to the owner's channel. The
// notification id is stable across retries so clients can drop repeats.
func (h Handler) publish(ctx context.Context, userID string, n models.RealtimeNotification) error {
	if h.realtime == nil {
		return nil
	}

	if err := h.realtime.Publish(ctx, BroadcastChannel, n); err != nil {
		return fmt.Errorf("publishing to %s: %w", BroadcastChannel, err)
	}
	if userID != "" {
		if err := h.realtime.Publish(ctx, UserChannel(userID), n); err != nil {
			return fmt.Errorf("publishing to %s: %w", UserChannel(userID), err)
		}
	}
	return nil
}

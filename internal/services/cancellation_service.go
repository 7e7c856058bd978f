package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"ticket-storefront/internal/messaging"
	"ticket-storefront/internal/status"
	"ticket-storefront/models"
	"ticket-storefront/monitoring"
)

type CancellationService struct {
	store   Store
	pricing Pricing
	window  time.Duration
	now     func() time.Time
}

func NewCancellationService(store Store, pricing Pricing, window time.Duration) *CancellationService {
	return &CancellationService{
		store:   store,
		pricing: pricing,
		window:  window,
		now:     time.Now,
	}
}

func TimeUntilEvent(e models.Event, now time.Time) time.Duration {
	return e.StartsAt.Sub(now)
}

// CanCancel reports whether the event is still far enough away. At
// exactly the window boundary cancellation is refused.
func (s *CancellationService) CanCancel(e models.Event, now time.Time) bool {
	return TimeUntilEvent(e, now) > s.window
}

// Cancel cancels a confirmed booking, returns its seats to the event and
// queues the cancellation notice.
func (s *CancellationService) Cancel(ctx context.Context, session models.Session, bookingID string) (result *models.CancellationResult, err error) {
	defer func() {
		monitoring.TrackCancellation(err)
	}()

	if !session.IsAuthenticated() {
		return nil, status.ErrUnauthenticated
	}

	booking, err := s.store.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !session.CanAccess(booking.UserID) {
		return nil, status.ErrForbidden
	}
	if booking.IsCancelled() {
		return nil, status.ErrAlreadyCancelled
	}

	event, err := s.store.GetEvent(ctx, booking.EventID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if !s.CanCancel(event, now) {
		return nil, status.ErrCancellationWindowClosed
	}

	booked, err := s.store.ListBookedSeats(ctx, booking.ID)
	if err != nil {
		return nil, fmt.Errorf("listing booked seats: %w", err)
	}
	seats, err := s.store.GetSeats(ctx, seatIDsOf(booked))
	if err != nil {
		return nil, err
	}

	quote := s.pricing.Refund(booking.TotalAmount)

	header := messaging.NewHeader()
	header.CorrelationID = messaging.CorrelationIDFromContext(ctx)
	cancelled, err := messaging.NewOutboxMessage(&messaging.BookingCancelled{
		Header:  header,
		Booking: bookingSummary(booking, event, seats),
		Refund:  quote,
	}, header)
	if err != nil {
		return nil, err
	}

	err = s.store.RunInTx(ctx, func(tx Tx) error {
		if err := tx.MarkBookingCancelled(ctx, booking.ID, now); err != nil {
			return err
		}

		for _, bs := range booked {
			if err := tx.ReleaseSeat(ctx, bs.SeatID); err != nil {
				return fmt.Errorf("releasing seat %s: %w", bs.SeatID, err)
			}
		}

		if err := tx.AdjustAvailableSeats(ctx, event.ID, len(booked)); err != nil {
			return fmt.Errorf("updating seat counter: %w", err)
		}

		return tx.Enqueue(ctx, cancelled)
	})
	if err != nil {
		return nil, err
	}

	booking.Status = models.BookingStatusCancelled
	booking.PaymentStatus = models.PaymentStatusRefunded
	booking.CancelledAt = &now

	slog.Info("Booking cancelled",
		"booking_id", booking.ID,
		"reference", booking.Reference,
		"refund", quote.Refund.StringFixed(2),
		"by", session.UserID,
	)

	return &models.CancellationResult{Booking: booking, Quote: quote}, nil
}

package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"ticket-storefront/internal/status"
	"ticket-storefront/models"

	"github.com/shopspring/decimal"
)

type DashboardService struct {
	store        Store
	cancellation *CancellationService
	pricing      Pricing
	now          func() time.Time
}

func NewDashboardService(store Store, cancellation *CancellationService, pricing Pricing) *DashboardService {
	return &DashboardService{store: store, cancellation: cancellation, pricing: pricing, now: time.Now}
}

func (s *DashboardService) AdminStats(ctx context.Context, session models.Session) (models.AdminStats, error) {
	if !session.IsAdmin() {
		return models.AdminStats{}, status.ErrForbidden
	}

	var stats models.AdminStats
	var err error

	if stats.TotalEvents, err = s.store.CountEvents(ctx, models.EventQuery{}); err != nil {
		return models.AdminStats{}, fmt.Errorf("counting events: %w", err)
	}
	if stats.UpcomingEvents, err = s.store.CountEvents(ctx, models.EventQuery{
		Status:      models.EventStatusActive,
		StartsAfter: s.now(),
	}); err != nil {
		return models.AdminStats{}, fmt.Errorf("counting upcoming events: %w", err)
	}
	if stats.TotalBookings, err = s.store.CountBookings(ctx, models.BookingQuery{}); err != nil {
		return models.AdminStats{}, fmt.Errorf("counting bookings: %w", err)
	}
	if stats.TotalRevenue, err = s.store.Revenue(ctx); err != nil {
		return models.AdminStats{}, fmt.Errorf("summing revenue: %w", err)
	}

	return stats, nil
}

// UserDashboard lists the caller's bookings, newest first, with the
// upcoming count and the amount spent on bookings that still stand.
func (s *DashboardService) UserDashboard(ctx context.Context, session models.Session) (models.UserDashboard, error) {
	if !session.IsAuthenticated() {
		return models.UserDashboard{}, status.ErrUnauthenticated
	}

	bookings, err := s.store.ListBookings(ctx, models.BookingQuery{UserID: session.UserID})
	if err != nil {
		return models.UserDashboard{}, fmt.Errorf("listing bookings: %w", err)
	}

	now := s.now()
	events := map[string]models.Event{}
	dash := models.UserDashboard{
		Bookings: make([]models.BookingHistoryItem, 0, len(bookings)),
		Stats:    models.UserStats{TotalSpent: decimal.Zero},
	}

	for _, b := range bookings {
		event, ok := events[b.EventID]
		if !ok {
			event, err = s.store.GetEvent(ctx, b.EventID)
			if err != nil && !errors.Is(err, status.ErrEventNotFound) {
				return models.UserDashboard{}, err
			}
			if err != nil {
				slog.Warn("Booking references a missing event", "booking_id", b.ID, "event_id", b.EventID)
			}
			events[b.EventID] = event
		}

		item := models.BookingHistoryItem{
			Booking:    b,
			EventTitle: event.Title,
			VenueName:  event.VenueName,
			StartsAt:   event.StartsAt,
			Upcoming:   !b.IsCancelled() && event.StartsAt.After(now),
		}
		item.CanCancel = !b.IsCancelled() && event.ID != "" && s.cancellation.CanCancel(event, now)
		dash.Bookings = append(dash.Bookings, item)

		dash.Stats.TotalBookings++
		if item.Upcoming {
			dash.Stats.UpcomingBookings++
		}
		if !b.IsCancelled() {
			dash.Stats.TotalSpent = dash.Stats.TotalSpent.Add(b.TotalAmount)
		}
	}

	return dash, nil
}

// BookingDetail backs the confirmation and cancel screens of one booking.
func (s *DashboardService) BookingDetail(ctx context.Context, session models.Session, bookingID string) (models.BookingDetail, error) {
	if !session.IsAuthenticated() {
		return models.BookingDetail{}, status.ErrUnauthenticated
	}

	booking, err := s.store.GetBooking(ctx, bookingID)
	if err != nil {
		return models.BookingDetail{}, err
	}
	if !session.CanAccess(booking.UserID) {
		return models.BookingDetail{}, status.ErrForbidden
	}

	event, err := s.store.GetEvent(ctx, booking.EventID)
	if err != nil {
		return models.BookingDetail{}, err
	}

	booked, err := s.store.ListBookedSeats(ctx, booking.ID)
	if err != nil {
		return models.BookingDetail{}, fmt.Errorf("listing booked seats: %w", err)
	}
	seats, err := s.store.GetSeats(ctx, seatIDsOf(booked))
	if err != nil {
		return models.BookingDetail{}, err
	}

	now := s.now()
	return models.BookingDetail{
		Booking:     booking,
		Event:       event,
		Seats:       seats,
		CanCancel:   !booking.IsCancelled() && s.cancellation.CanCancel(event, now),
		HoursUntil:  TimeUntilEvent(event, now).Hours(),
		RefundQuote: s.pricing.Refund(booking.TotalAmount),
		QRImageURL:  QRImageURL(booking.QRPayload),
	}, nil
}

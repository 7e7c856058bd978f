package services

import (
	"context"
	"time"

	"ticket-storefront/models"

	"github.com/shopspring/decimal"
)

// Store is the record storage the services run against. Lookups of a
// single missing record return the matching status.Err*NotFound error.
type Store interface {
	ListEvents(ctx context.Context, q models.EventQuery) ([]models.Event, error)
	CountEvents(ctx context.Context, q models.EventQuery) (int, error)
	GetEvent(ctx context.Context, id string) (models.Event, error)
	CreateEvent(ctx context.Context, e models.Event) (models.Event, error)
	DeleteEvent(ctx context.Context, id string) error

	// ListSeats returns an event's seats ordered by row then seat number.
	ListSeats(ctx context.Context, eventID string) ([]models.Seat, error)
	GetSeats(ctx context.Context, ids []string) ([]models.Seat, error)

	GetBooking(ctx context.Context, id string) (models.Booking, error)
	// ListBookings returns newest first.
	ListBookings(ctx context.Context, q models.BookingQuery) ([]models.Booking, error)
	CountBookings(ctx context.Context, q models.BookingQuery) (int, error)
	// Revenue sums total_amount over bookings that are not cancelled.
	Revenue(ctx context.Context) (decimal.Decimal, error)
	ListBookedSeats(ctx context.Context, bookingID string) ([]models.BookedSeat, error)

	Enqueue(ctx context.Context, m models.OutboxMessage) error

	// RunInTx commits when fn returns nil and rolls back otherwise.
	RunInTx(ctx context.Context, fn func(tx Tx) error) error
}

// Tx holds the writes that must commit together.
type Tx interface {
	CreateBooking(ctx context.Context, b *models.Booking) error
	CreateBookedSeat(ctx context.Context, bs *models.BookedSeat) error
	// CreateSeats inserts a generated grid and sets the event's seat
	// counters to its size.
	CreateSeats(ctx context.Context, eventID string, seats []models.Seat) ([]models.Seat, error)

	// ReserveSeat flips an available seat to booked, failing with
	// status.ErrSeatUnavailable when another writer got there first.
	ReserveSeat(ctx context.Context, seatID string) error
	// ReleaseSeat flips a booked seat back to available. Already available
	// seats are left alone.
	ReleaseSeat(ctx context.Context, seatID string) error
	// AdjustAvailableSeats moves the event counter by delta, keeping it
	// within [0, total_seats].
	AdjustAvailableSeats(ctx context.Context, eventID string, delta int) error

	// MarkBookingCancelled fails with status.ErrAlreadyCancelled when the
	// booking is no longer confirmed.
	MarkBookingCancelled(ctx context.Context, bookingID string, at time.Time) error

	Enqueue(ctx context.Context, m models.OutboxMessage) error
}

package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"ticket-storefront/internal/status"
	"ticket-storefront/models"

	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/types"
	"github.com/shopspring/decimal"
)

const (
	CollectionEvents      = "events"
	CollectionSeats       = "seats"
	CollectionBookings    = "bookings"
	CollectionBookedSeats = "booked_seats"
	CollectionOutbox      = "outbox"
	CollectionUsers       = "users"
)

var (
	bookingStatuses = []string{models.BookingStatusConfirmed, models.BookingStatusCancelled, models.BookingStatusPending}
	paymentStatuses = []string{models.PaymentStatusPending, models.PaymentStatusCompleted, models.PaymentStatusRefunded, models.PaymentStatusFailed}
)

func money(r *core.Record, field string) decimal.Decimal {
	return decimal.NewFromFloat(r.GetFloat(field)).Round(2)
}

func malformed(kind, id string, err error) error {
	return fmt.Errorf("%w: %s %s: %w", status.ErrMalformedRecord, kind, id, err)
}

func eventFromRecord(r *core.Record) (models.Event, error) {
	e := models.Event{
		ID:              r.Id,
		Title:           r.GetString("title"),
		Description:     r.GetString("description"),
		Category:        r.GetString("category"),
		VenueName:       r.GetString("venue_name"),
		VenueAddress:    r.GetString("venue_address"),
		StartsAt:        r.GetDateTime("event_date").Time(),
		EventTime:       r.GetString("event_time"),
		DurationMinutes: r.GetInt("duration"),
		ImageURL:        r.GetString("image_url"),
		BasePrice:       money(r, "base_price"),
		TotalSeats:      r.GetInt("total_seats"),
		AvailableSeats:  r.GetInt("available_seats"),
		Status:          r.GetString("status"),
		Created:         r.GetDateTime("created").Time(),
	}
	if err := e.Validate(); err != nil {
		return e, malformed("event", r.Id, err)
	}
	return e, nil
}

func setEventFields(r *core.Record, e models.Event) {
	r.Set("title", e.Title)
	r.Set("description", e.Description)
	r.Set("category", e.Category)
	r.Set("venue_name", e.VenueName)
	r.Set("venue_address", e.VenueAddress)
	r.Set("event_date", e.StartsAt)
	r.Set("event_time", e.EventTime)
	r.Set("duration", e.DurationMinutes)
	r.Set("image_url", e.ImageURL)
	r.Set("base_price", e.BasePrice.InexactFloat64())
	r.Set("total_seats", e.TotalSeats)
	r.Set("available_seats", e.AvailableSeats)
	r.Set("status", e.Status)
}

func seatFromRecord(r *core.Record) (models.Seat, error) {
	s := models.Seat{
		ID:         r.Id,
		EventID:    r.GetString("event_id"),
		RowName:    r.GetString("row_name"),
		SeatNumber: r.GetInt("seat_number"),
		SeatType:   r.GetString("seat_type"),
		Price:      money(r, "price"),
		Available:  r.GetBool("is_available"),
	}
	if err := s.Validate(); err != nil {
		return s, malformed("seat", r.Id, err)
	}
	return s, nil
}

func bookingFromRecord(r *core.Record) (models.Booking, error) {
	b := models.Booking{
		ID:            r.Id,
		Reference:     r.GetString("booking_reference"),
		UserID:        r.GetString("user_id"),
		EventID:       r.GetString("event_id"),
		TotalAmount:   money(r, "total_amount"),
		Status:        r.GetString("booking_status"),
		PaymentStatus: r.GetString("payment_status"),
		PaymentMethod: r.GetString("payment_method"),
		CustomerName:  r.GetString("customer_name"),
		CustomerEmail: r.GetString("customer_email"),
		CustomerPhone: r.GetString("customer_phone"),
		SeatCount:     r.GetInt("seat_count"),
		QRCode:        r.GetString("qr_code"),
		QRPayload:     r.GetString("qr_payload"),
		Created:       r.GetDateTime("created").Time(),
	}
	if at := r.GetDateTime("cancelled_at"); !at.IsZero() {
		t := at.Time()
		b.CancelledAt = &t
	}

	var errs []error
	if b.Reference == "" {
		errs = append(errs, errors.New("missing reference"))
	}
	if b.EventID == "" {
		errs = append(errs, errors.New("missing event"))
	}
	if !slices.Contains(bookingStatuses, b.Status) {
		errs = append(errs, fmt.Errorf("unknown booking status %q", b.Status))
	}
	if !slices.Contains(paymentStatuses, b.PaymentStatus) {
		errs = append(errs, fmt.Errorf("unknown payment status %q", b.PaymentStatus))
	}
	if b.TotalAmount.IsNegative() {
		errs = append(errs, errors.New("negative total"))
	}
	if err := errors.Join(errs...); err != nil {
		return b, malformed("booking", r.Id, err)
	}
	return b, nil
}

func setBookingFields(r *core.Record, b models.Booking) {
	r.Set("booking_reference", b.Reference)
	r.Set("user_id", b.UserID)
	r.Set("event_id", b.EventID)
	r.Set("total_amount", b.TotalAmount.InexactFloat64())
	r.Set("booking_status", b.Status)
	r.Set("payment_status", b.PaymentStatus)
	r.Set("payment_method", b.PaymentMethod)
	r.Set("customer_name", b.CustomerName)
	r.Set("customer_email", b.CustomerEmail)
	r.Set("customer_phone", b.CustomerPhone)
	r.Set("seat_count", b.SeatCount)
	r.Set("qr_code", b.QRCode)
	r.Set("qr_payload", b.QRPayload)
	if b.CancelledAt != nil {
		r.Set("cancelled_at", *b.CancelledAt)
	}
}

func bookedSeatFromRecord(r *core.Record) models.BookedSeat {
	return models.BookedSeat{
		ID:        r.Id,
		BookingID: r.GetString("booking_id"),
		SeatID:    r.GetString("seat_id"),
		Price:     money(r, "price"),
	}
}

func outboxFromRecord(r *core.Record) models.OutboxMessage {
	m := models.OutboxMessage{
		ID:            r.Id,
		UUID:          r.GetString("uuid"),
		Name:          r.GetString("name"),
		Status:        r.GetString("status"),
		Attempts:      r.GetInt("attempts"),
		LastError:     r.GetString("last_error"),
		CorrelationID: r.GetString("correlation_id"),
		Created:       r.GetDateTime("created").Time(),
	}
	if raw, ok := r.GetRaw("payload").(types.JSONRaw); ok {
		m.Payload = json.RawMessage(raw)
	}
	if at := r.GetDateTime("dispatched_at"); !at.IsZero() {
		t := at.Time()
		m.DispatchedAt = &t
	}
	return m
}

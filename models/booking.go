package models

import (
	"encoding/json"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	BookingStatusConfirmed = "confirmed"
	BookingStatusCancelled = "cancelled"
	BookingStatusPending   = "pending"
)

const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusRefunded  = "refunded"
	PaymentStatusFailed    = "failed"
)

const DefaultPaymentMethod = "card"

type Booking struct {
	ID            string          `json:"id"`
	Reference     string          `json:"booking_reference"`
	UserID        string          `json:"user_id"`
	EventID       string          `json:"event_id"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	Status        string          `json:"booking_status"`
	PaymentStatus string          `json:"payment_status"`
	PaymentMethod string          `json:"payment_method"`
	CustomerName  string          `json:"customer_name"`
	CustomerEmail string          `json:"customer_email"`
	CustomerPhone string          `json:"customer_phone,omitempty"`
	SeatCount     int             `json:"seat_count"`
	QRCode        string          `json:"qr_code"`
	QRPayload     string          `json:"qr_payload,omitempty"`
	CancelledAt   *time.Time      `json:"cancelled_at,omitempty"`
	Created       time.Time       `json:"created"`
}

func (b Booking) IsCancelled() bool {
	return b.Status == BookingStatusCancelled
}

type BookedSeat struct {
	ID        string          `json:"id"`
	BookingID string          `json:"booking_id"`
	SeatID    string          `json:"seat_id"`
	Price     decimal.Decimal `json:"price"`
}

// Customer is the contact captured on the booking form.
type Customer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}

func (c Customer) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return errors.New("customer name is required")
	}
	if strings.TrimSpace(c.Email) == "" {
		return errors.New("customer email is required")
	}
	if _, err := mail.ParseAddress(c.Email); err != nil {
		return errors.New("customer email is invalid")
	}
	return nil
}

type BookingRequest struct {
	EventID       string   `json:"event_id"`
	SeatIDs       []string `json:"seat_ids"`
	Customer      Customer `json:"customer"`
	PaymentMethod string   `json:"payment_method,omitempty"`
}

type PriceQuote struct {
	Subtotal   decimal.Decimal `json:"subtotal"`
	BookingFee decimal.Decimal `json:"booking_fee"`
	Total      decimal.Decimal `json:"total"`
}

type RefundQuote struct {
	Total           decimal.Decimal `json:"total"`
	Refund          decimal.Decimal `json:"refund"`
	CancellationFee decimal.Decimal `json:"cancellation_fee"`
}

// BookingSummary is the flattened view carried by notifications.
type BookingSummary struct {
	BookingID     string          `json:"booking_id"`
	Reference     string          `json:"reference"`
	UserID        string          `json:"user_id"`
	EventID       string          `json:"event_id"`
	EventTitle    string          `json:"event_title"`
	VenueName     string          `json:"venue_name"`
	VenueAddress  string          `json:"venue_address,omitempty"`
	StartsAt      time.Time       `json:"starts_at"`
	EventTime     string          `json:"event_time"`
	SeatIDs       []string        `json:"seat_ids"`
	SeatLabels    []string        `json:"seat_labels"`
	SeatCount     int             `json:"seat_count"`
	Total         decimal.Decimal `json:"total"`
	CustomerName  string          `json:"customer_name"`
	CustomerEmail string          `json:"customer_email"`
	CustomerPhone string          `json:"customer_phone,omitempty"`
	QRPayload     string          `json:"qr_payload"`
}

type BookingResult struct {
	Booking Booking        `json:"booking"`
	Seats   []Seat         `json:"seats"`
	Quote   PriceQuote     `json:"quote"`
	Summary BookingSummary `json:"summary"`
}

type CancellationResult struct {
	Booking Booking     `json:"booking"`
	Quote   RefundQuote `json:"refund"`
}

type BookingQuery struct {
	UserID  string
	EventID string
	Status  string
	Limit   int
}

type qrPayload struct {
	BookingID     string   `json:"bookingId"`
	EventID       string   `json:"eventId"`
	Seats         []string `json:"seats"`
	CustomerEmail string   `json:"customerEmail"`
	Reference     string   `json:"reference"`
}

// NewQRPayload encodes the ticket contents scanned at the venue gate.
func NewQRPayload(bookingID, eventID string, seatIDs []string, email, reference string) (string, error) {
	b, err := json.Marshal(qrPayload{
		BookingID:     bookingID,
		EventID:       eventID,
		Seats:         seatIDs,
		CustomerEmail: email,
		Reference:     reference,
	})
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func QRCodeValue(reference string) string {
	return "QR_" + reference
}

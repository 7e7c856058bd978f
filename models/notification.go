package models

import (
	"time"

	"github.com/google/uuid"
)

type ReminderVariant string

const (
	ReminderDayBefore  ReminderVariant = "day_before"
	ReminderHourBefore ReminderVariant = "hour_before"
)

// Lead is how long before the event the reminder goes out.
func (v ReminderVariant) Lead() time.Duration {
	if v == ReminderHourBefore {
		return time.Hour
	}
	return 24 * time.Hour
}

func (v ReminderVariant) Valid() bool {
	return v == ReminderDayBefore || v == ReminderHourBefore
}

type EmailMessage struct {
	To       string `json:"to"`
	ToName   string `json:"to_name,omitempty"`
	From     string `json:"from"`
	FromName string `json:"from_name,omitempty"`
	ReplyTo  string `json:"reply_to,omitempty"`
	Subject  string `json:"subject"`
	HTML     string `json:"html"`
	Text     string `json:"text"`
}

const (
	NotificationBookingConfirmed = "booking_confirmed"
	NotificationBookingCancelled = "booking_cancelled"
)

// RealtimeNotification is the payload pushed to connected storefront clients.
type RealtimeNotification struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
	Read      bool   `json:"read"`
	BookingID string `json:"bookingId,omitempty"`
	EventID   string `json:"eventId,omitempty"`
}

func NewBookingConfirmedNotification(b BookingSummary, at time.Time) RealtimeNotification {
	return RealtimeNotification{
		ID:        uuid.NewString(),
		Type:      NotificationBookingConfirmed,
		Title:     "Booking Confirmed",
		Message:   "Your booking " + b.Reference + " for " + b.EventTitle + " is confirmed.",
		Timestamp: at.UTC().Format(time.RFC3339),
		BookingID: b.BookingID,
		EventID:   b.EventID,
	}
}

func NewBookingCancelledNotification(b BookingSummary, refund string, at time.Time) RealtimeNotification {
	return RealtimeNotification{
		ID:        uuid.NewString(),
		Type:      NotificationBookingCancelled,
		Title:     "Booking Cancelled",
		Message:   "Your booking for " + b.EventTitle + " has been cancelled. Refund of $" + refund + " will be processed within 5-7 business days.",
		Timestamp: at.UTC().Format(time.RFC3339),
		BookingID: b.BookingID,
		EventID:   b.EventID,
	}
}

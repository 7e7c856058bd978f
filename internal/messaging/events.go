package messaging

import (
	"encoding/json"
	"fmt"
	"time"

	"ticket-storefront/models"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/components/cqrs"
)

type Header struct {
	ID            string    `json:"id"`
	PublishedAt   time.Time `json:"published_at"`
	CorrelationID string    `json:"correlation_id,omitempty"`
}

func NewHeader() Header {
	return Header{
		ID:          watermill.NewUUID(),
		PublishedAt: time.Now().UTC(),
	}
}

type BookingConfirmed struct {
	Header  Header                `json:"header"`
	Booking models.BookingSummary `json:"booking"`
}

type BookingCancelled struct {
	Header  Header                `json:"header"`
	Booking models.BookingSummary `json:"booking"`
	Refund  models.RefundQuote    `json:"refund"`
}

type EventReminderDue struct {
	Header  Header                 `json:"header"`
	Booking models.BookingSummary  `json:"booking"`
	Variant models.ReminderVariant `json:"variant"`
}

type UserRegistered struct {
	Header Header `json:"header"`
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
}

// EventName is the name an event is published under; it doubles as the
// stream topic.
func EventName(event any) string {
	return cqrs.StructName(event)
}

// NewOutboxMessage serialises an event for the outbox collection. The
// header id becomes the broker message uuid so redeliveries keep it.
func NewOutboxMessage(event any, header Header) (models.OutboxMessage, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return models.OutboxMessage{}, fmt.Errorf("marshalling %s: %w", EventName(event), err)
	}

	return models.OutboxMessage{
		UUID:          header.ID,
		Name:          EventName(event),
		Payload:       payload,
		Status:        models.OutboxPending,
		CorrelationID: header.CorrelationID,
		Created:       header.PublishedAt,
	}, nil
}

var registry = map[string]func() any{
	EventName(&BookingConfirmed{}): func() any { return &BookingConfirmed{} },
	EventName(&BookingCancelled{}): func() any { return &BookingCancelled{} },
	EventName(&EventReminderDue{}): func() any { return &EventReminderDue{} },
	EventName(&UserRegistered{}):   func() any { return &UserRegistered{} },
}

// Decode turns a stored outbox payload back into its event struct.
func Decode(name string, payload []byte) (any, error) {
	newEvent, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown event %q", name)
	}

	event := newEvent()
	if err := json.Unmarshal(payload, event); err != nil {
		return nil, fmt.Errorf("unmarshalling %s: %w", name, err)
	}
	return event, nil
}

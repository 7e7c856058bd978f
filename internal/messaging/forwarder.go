package messaging

import (
	"context"
	"fmt"

	"ticket-storefront/models"

	"github.com/ThreeDotsLabs/watermill/components/cqrs"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/lithammer/shortuuid/v3"
)

var marshaler = cqrs.JSONMarshaler{
	GenerateName: cqrs.StructName,
}

// Forwarder publishes outbox messages to the broker, one topic per event name.
type Forwarder struct {
	publisher message.Publisher
}

func NewForwarder(publisher message.Publisher) *Forwarder {
	return &Forwarder{publisher: publisher}
}

func (f *Forwarder) Forward(ctx context.Context, m models.OutboxMessage) error {
	event, err := Decode(m.Name, m.Payload)
	if err != nil {
		return err
	}

	msg, err := marshaler.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshalling %s: %w", m.Name, err)
	}
	if m.UUID != "" {
		msg.UUID = m.UUID
	}

	correlationID := m.CorrelationID
	if correlationID == "" {
		correlationID = "gen_" + shortuuid.New()
	}
	middleware.SetCorrelationID(correlationID, msg)
	msg.SetContext(ctx)

	if err := f.publisher.Publish(marshaler.Name(event), msg); err != nil {
		return fmt.Errorf("publishing %s: %w", m.Name, err)
	}
	return nil
}

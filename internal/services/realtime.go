package services

import (
	"context"
	"fmt"

	"ticket-storefront/models"

	pubnub "github.com/pubnub/go"
)

type PubNubPublisher struct {
	pn *pubnub.PubNub
}

func NewPubNubPublisher(pn *pubnub.PubNub) *PubNubPublisher {
	return &PubNubPublisher{pn: pn}
}

func (p *PubNubPublisher) Publish(ctx context.Context, channel string, n models.RealtimeNotification) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	_, st, err := p.pn.Publish().
		Channel(channel).
		Message(n).
		Execute()
	if err != nil {
		return fmt.Errorf("pubnub publish to %s: %w", channel, err)
	}
	if st.Error != nil {
		return fmt.Errorf("pubnub publish to %s: status %d: %w", channel, st.StatusCode, st.Error)
	}
	return nil
}

// NopPublisher stands in when PubNub keys are not configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, models.RealtimeNotification) error {
	return nil
}

package services

import (
	"context"
	"fmt"
	"net/mail"

	"ticket-storefront/models"

	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/mailer"
)

// PocketBaseMailer sends through the SMTP (or sendmail) settings
// configured in the PocketBase dashboard.
type PocketBaseMailer struct {
	app core.App
}

func NewPocketBaseMailer(app core.App) *PocketBaseMailer {
	return &PocketBaseMailer{app: app}
}

func (m *PocketBaseMailer) Send(ctx context.Context, msg models.EmailMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	message := &mailer.Message{
		From:    mail.Address{Address: msg.From, Name: msg.FromName},
		To:      []mail.Address{{Address: msg.To, Name: msg.ToName}},
		Subject: msg.Subject,
		HTML:    msg.HTML,
		Text:    msg.Text,
	}
	if msg.ReplyTo != "" {
		message.Headers = map[string]string{"Reply-To": msg.ReplyTo}
	}

	if err := m.app.NewMailClient().Send(message); err != nil {
		return fmt.Errorf("sending mail to %s: %w", msg.To, err)
	}
	return nil
}

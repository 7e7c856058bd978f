package services

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"ticket-storefront/models"
	"ticket-storefront/monitoring"
	"ticket-storefront/utils"
)

const qrImageEndpoint = "https://api.qrserver.com/v1/create-qr-code/?size=250x250&format=png&margin=20&data="

// QRImageURL points at a rendered PNG of the ticket payload.
func QRImageURL(payload string) string {
	if payload == "" {
		return ""
	}
	return qrImageEndpoint + url.QueryEscape(payload)
}

type Mailer interface {
	Send(ctx context.Context, msg models.EmailMessage) error
}

type SenderConfig struct {
	Domain  string
	Name    string
	ReplyTo string
}

// NotificationService renders and delivers customer emails. Delivery
// errors are returned so the message consumer can retry them.
type NotificationService struct {
	mailer  Mailer
	sender  SenderConfig
	breaker *utils.CircuitBreaker
}

func NewNotificationService(mailer Mailer, sender SenderConfig, breaker *utils.CircuitBreaker) *NotificationService {
	if breaker == nil {
		breaker = utils.NewCircuitBreaker("mail")
	}
	return &NotificationService{mailer: mailer, sender: sender, breaker: breaker}
}

type emailData struct {
	Booking      models.BookingSummary
	Date         string
	Total        string
	Refund       string
	Fee          string
	When         string
	Name         string
	QRImageURL   string
	SupportEmail string
}

func (s *NotificationService) bookingData(b models.BookingSummary) emailData {
	return emailData{
		Booking:      b,
		Date:         b.StartsAt.Format("Monday, January 2, 2006"),
		Total:        b.Total.StringFixed(2),
		QRImageURL:   QRImageURL(b.QRPayload),
		SupportEmail: s.sender.ReplyTo,
	}
}

func (s *NotificationService) BookingConfirmation(ctx context.Context, b models.BookingSummary) error {
	return s.deliver(ctx, "confirmation", "bookings", b.CustomerEmail, b.CustomerName, confirmationTemplate, s.bookingData(b))
}

func (s *NotificationService) EventReminder(ctx context.Context, b models.BookingSummary, variant models.ReminderVariant) error {
	data := s.bookingData(b)
	data.When = "tomorrow"
	if variant == models.ReminderHourBefore {
		data.When = "in 1 hour"
	}
	return s.deliver(ctx, "reminder", "reminders", b.CustomerEmail, b.CustomerName, reminderTemplate, data)
}

func (s *NotificationService) BookingCancellation(ctx context.Context, b models.BookingSummary, refund models.RefundQuote) error {
	data := s.bookingData(b)
	data.Total = refund.Total.StringFixed(2)
	data.Refund = refund.Refund.StringFixed(2)
	data.Fee = refund.CancellationFee.StringFixed(2)
	return s.deliver(ctx, "cancellation", "cancellations", b.CustomerEmail, b.CustomerName, cancellationTemplate, data)
}

func (s *NotificationService) Welcome(ctx context.Context, email, name string) error {
	if strings.TrimSpace(name) == "" {
		name = strings.SplitN(email, "@", 2)[0]
	}
	data := emailData{Name: name, SupportEmail: s.sender.ReplyTo}
	return s.deliver(ctx, "welcome", "welcome", email, name, welcomeTemplate, data)
}

func (s *NotificationService) deliver(ctx context.Context, kind, mailbox, to, toName string, tmpl emailTemplate, data emailData) (err error) {
	defer func() {
		monitoring.TrackDelivery(kind, err)
	}()

	if to == "" {
		return fmt.Errorf("%s email: missing recipient", kind)
	}

	msg, err := render(tmpl, data)
	if err != nil {
		return fmt.Errorf("%s email: %w", kind, err)
	}
	msg.To = to
	msg.ToName = toName
	msg.From = mailbox + "@" + s.sender.Domain
	msg.FromName = s.sender.Name
	msg.ReplyTo = s.sender.ReplyTo

	return s.breaker.Execute(ctx, func(ctx context.Context) error {
		return s.mailer.Send(ctx, msg)
	})
}

func render(tmpl emailTemplate, data emailData) (models.EmailMessage, error) {
	var subject, html, text bytes.Buffer

	if err := tmpl.subject.Execute(&subject, data); err != nil {
		return models.EmailMessage{}, fmt.Errorf("rendering subject: %w", err)
	}
	if err := tmpl.html.Execute(&html, data); err != nil {
		return models.EmailMessage{}, fmt.Errorf("rendering html: %w", err)
	}
	if err := tmpl.text.Execute(&text, data); err != nil {
		return models.EmailMessage{}, fmt.Errorf("rendering text: %w", err)
	}

	return models.EmailMessage{
		Subject: subject.String(),
		HTML:    html.String(),
		Text:    text.String(),
	}, nil
}

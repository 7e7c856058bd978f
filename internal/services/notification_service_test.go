package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"ticket-storefront/models"
	"ticket-storefront/utils"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMailer struct {
	mu   sync.Mutex
	sent []models.EmailMessage
	err  error
}

func (m *fakeMailer) Send(ctx context.Context, msg models.EmailMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *fakeMailer) last(t *testing.T) models.EmailMessage {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	require.NotEmpty(t, m.sent)
	return m.sent[len(m.sent)-1]
}

var testSender = SenderConfig{Domain: "tickethub.com", Name: "TicketHub", ReplyTo: "support@tickethub.com"}

func testSummary() models.BookingSummary {
	return models.BookingSummary{
		BookingID:     "b1",
		Reference:     "BK12345678ABCD",
		UserID:        "u1",
		EventID:       "e1",
		EventTitle:    "Hamlet",
		VenueName:     "Globe",
		VenueAddress:  "21 New Globe Walk",
		StartsAt:      time.Date(2030, 6, 4, 19, 30, 0, 0, time.UTC),
		EventTime:     "19:30",
		SeatIDs:       []string{"s1", "s2"},
		SeatLabels:    []string{"A1", "A2"},
		SeatCount:     2,
		Total:         decimal.RequireFromString("52.5"),
		CustomerName:  "Ada Lovelace",
		CustomerEmail: "ada@example.com",
		QRPayload:     `{"bookingId":"b1","reference":"BK12345678ABCD"}`,
	}
}

func TestBookingConfirmationEmail(t *testing.T) {
	mailer := &fakeMailer{}
	svc := NewNotificationService(mailer, testSender, nil)

	require.NoError(t, svc.BookingConfirmation(context.Background(), testSummary()))

	msg := mailer.last(t)
	assert.Equal(t, "ada@example.com", msg.To)
	assert.Equal(t, "Ada Lovelace", msg.ToName)
	assert.Equal(t, "bookings@tickethub.com", msg.From)
	assert.Equal(t, "TicketHub", msg.FromName)
	assert.Equal(t, "support@tickethub.com", msg.ReplyTo)
	assert.Equal(t, "🎫 Booking Confirmed - Hamlet | Ref: BK12345678ABCD", msg.Subject)

	assert.Contains(t, msg.Text, "Seats: A1, A2")
	assert.Contains(t, msg.Text, "Total paid: $52.50")
	assert.Contains(t, msg.Text, "Tuesday, June 4, 2030 at 19:30")
	assert.Contains(t, msg.HTML, "21 New Globe Walk")
	assert.Contains(t, msg.HTML, "https://api.qrserver.com/v1/create-qr-code/?size=250x250")
	assert.Contains(t, msg.HTML, "mailto:support@tickethub.com")
}

func TestEmailsEscapeCustomerInput(t *testing.T) {
	mailer := &fakeMailer{}
	svc := NewNotificationService(mailer, testSender, nil)

	b := testSummary()
	b.CustomerName = `<script>alert("x")</script>`
	require.NoError(t, svc.BookingConfirmation(context.Background(), b))

	msg := mailer.last(t)
	assert.NotContains(t, msg.HTML, "<script>")
	assert.Contains(t, msg.HTML, "&lt;script&gt;")
}

func TestEventReminderEmail(t *testing.T) {
	mailer := &fakeMailer{}
	svc := NewNotificationService(mailer, testSender, nil)

	require.NoError(t, svc.EventReminder(context.Background(), testSummary(), models.ReminderHourBefore))
	msg := mailer.last(t)
	assert.Equal(t, "reminders@tickethub.com", msg.From)
	assert.Equal(t, "⏰ Reminder: Hamlet is in 1 hour! | Ref: BK12345678ABCD", msg.Subject)

	require.NoError(t, svc.EventReminder(context.Background(), testSummary(), models.ReminderDayBefore))
	msg = mailer.last(t)
	assert.Contains(t, msg.Subject, "is tomorrow!")
	assert.Contains(t, msg.Text, "Don't forget your ticket and ID!")
}

func TestBookingCancellationEmail(t *testing.T) {
	mailer := &fakeMailer{}
	svc := NewNotificationService(mailer, testSender, nil)

	refund := testPricing().Refund(decimal.RequireFromString("52.50"))
	require.NoError(t, svc.BookingCancellation(context.Background(), testSummary(), refund))

	msg := mailer.last(t)
	assert.Equal(t, "cancellations@tickethub.com", msg.From)
	assert.True(t, strings.HasPrefix(msg.Subject, "❌ Booking Cancelled - Hamlet"))
	assert.Contains(t, msg.Text, "Refund of $47.25 (cancellation fee $5.25)")
	assert.Contains(t, msg.HTML, "$52.50")
}

func TestWelcomeEmail(t *testing.T) {
	mailer := &fakeMailer{}
	svc := NewNotificationService(mailer, testSender, nil)

	require.NoError(t, svc.Welcome(context.Background(), "grace@example.com", ""))

	msg := mailer.last(t)
	assert.Equal(t, "welcome@tickethub.com", msg.From)
	assert.Equal(t, "grace", msg.ToName)
	assert.Contains(t, msg.Text, "Welcome to TicketHub, grace!")
}

func TestDeliveryRequiresRecipient(t *testing.T) {
	mailer := &fakeMailer{}
	svc := NewNotificationService(mailer, testSender, nil)

	b := testSummary()
	b.CustomerEmail = ""

	assert.ErrorContains(t, svc.BookingConfirmation(context.Background(), b), "missing recipient")
	assert.Empty(t, mailer.sent)
}

func TestDeliveryFailuresOpenBreaker(t *testing.T) {
	smtpDown := errors.New("smtp: 421 service not available")
	mailer := &fakeMailer{err: smtpDown}
	breaker := utils.NewCircuitBreaker("mail", utils.WithMaxFailures(2), utils.WithCooldown(time.Minute))
	svc := NewNotificationService(mailer, testSender, breaker)

	for i := 0; i < 2; i++ {
		assert.ErrorIs(t, svc.Welcome(context.Background(), "grace@example.com", "Grace"), smtpDown)
	}

	err := svc.Welcome(context.Background(), "grace@example.com", "Grace")
	assert.ErrorIs(t, err, utils.ErrCircuitOpen)
}

func TestQRImageURL(t *testing.T) {
	assert.Empty(t, QRImageURL(""))
	assert.Equal(t,
		"https://api.qrserver.com/v1/create-qr-code/?size=250x250&format=png&margin=20&data=%7B%22reference%22%3A%22BK1%22%7D",
		QRImageURL(`{"reference":"BK1"}`),
	)
}

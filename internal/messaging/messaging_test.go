package messaging

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"ticket-storefront/models"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/go-redis/redismock/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockNotifier struct {
	mock.Mock
	calls atomic.Int32
}

func (m *mockNotifier) BookingConfirmation(ctx context.Context, b models.BookingSummary) error {
	err := m.Called(b.Reference).Error(0)
	m.calls.Add(1)
	return err
}

func (m *mockNotifier) BookingCancellation(ctx context.Context, b models.BookingSummary, refund models.RefundQuote) error {
	err := m.Called(b.Reference, refund.Refund.StringFixed(2)).Error(0)
	m.calls.Add(1)
	return err
}

func (m *mockNotifier) EventReminder(ctx context.Context, b models.BookingSummary, variant models.ReminderVariant) error {
	err := m.Called(b.Reference, variant).Error(0)
	m.calls.Add(1)
	return err
}

func (m *mockNotifier) Welcome(ctx context.Context, email, name string) error {
	err := m.Called(email, name).Error(0)
	m.calls.Add(1)
	return err
}

type recordingRealtime struct {
	mu        sync.Mutex
	published map[string][]models.RealtimeNotification
	err       error
}

func (r *recordingRealtime) Publish(ctx context.Context, channel string, n models.RealtimeNotification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	if r.published == nil {
		r.published = map[string][]models.RealtimeNotification{}
	}
	r.published[channel] = append(r.published[channel], n)
	return nil
}

func (r *recordingRealtime) count(channel string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.published[channel])
}

func summary() models.BookingSummary {
	return models.BookingSummary{
		BookingID:     "b1",
		Reference:     "BK12345678ABCD",
		UserID:        "u1",
		EventID:       "e1",
		EventTitle:    "Hamlet",
		SeatIDs:       []string{"s1", "s2"},
		SeatLabels:    []string{"A1", "A2"},
		SeatCount:     2,
		Total:         decimal.RequireFromString("52.50"),
		CustomerEmail: "ada@example.com",
	}
}

func TestDecode_RoundTripsOutboxMessage(t *testing.T) {
	header := NewHeader()
	header.CorrelationID = "corr-1"
	event := &BookingConfirmed{Header: header, Booking: summary()}

	m, err := NewOutboxMessage(event, header)
	require.NoError(t, err)

	assert.Equal(t, "BookingConfirmed", m.Name)
	assert.Equal(t, header.ID, m.UUID)
	assert.Equal(t, "corr-1", m.CorrelationID)
	assert.Equal(t, models.OutboxPending, m.Status)

	decoded, err := Decode(m.Name, m.Payload)
	require.NoError(t, err)
	got, ok := decoded.(*BookingConfirmed)
	require.True(t, ok)
	assert.Equal(t, "BK12345678ABCD", got.Booking.Reference)
	assert.True(t, got.Booking.Total.Equal(decimal.RequireFromString("52.5")))

	_, err = Decode("TicketPrinted", m.Payload)
	assert.Error(t, err)
}

func TestForwarder_PublishesUnderEventName(t *testing.T) {
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	defer pubSub.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	messages, err := pubSub.Subscribe(ctx, "UserRegistered")
	require.NoError(t, err)

	header := NewHeader()
	header.CorrelationID = "corr-42"
	m, err := NewOutboxMessage(&UserRegistered{Header: header, UserID: "u1", Email: "ada@example.com"}, header)
	require.NoError(t, err)

	require.NoError(t, NewForwarder(pubSub).Forward(ctx, m))

	select {
	case msg := <-messages:
		msg.Ack()
		assert.Equal(t, header.ID, msg.UUID)
		assert.Equal(t, "corr-42", middleware.MessageCorrelationID(msg))
		assert.Equal(t, "UserRegistered", msg.Metadata.Get("name"))
	case <-ctx.Done():
		t.Fatal("message was not forwarded")
	}
}

func TestHandler_PublishesToBroadcastAndUserChannel(t *testing.T) {
	realtime := &recordingRealtime{}
	h := NewHandler(&mockNotifier{}, realtime)

	err := h.PublishBookingCancelled(context.Background(), &BookingCancelled{
		Header:  NewHeader(),
		Booking: summary(),
		Refund:  models.RefundQuote{Refund: decimal.RequireFromString("47.25")},
	})

	require.NoError(t, err)
	assert.Equal(t, 1, realtime.count(BroadcastChannel))
	assert.Equal(t, 1, realtime.count("user-u1"))

	n := realtime.published[BroadcastChannel][0]
	assert.Equal(t, models.NotificationBookingCancelled, n.Type)
	assert.Contains(t, n.Message, "$47.25")
	assert.Equal(t, "b1", n.BookingID)
}

func TestHandler_ReturnsDeliveryErrorsForRetry(t *testing.T) {
	notifier := &mockNotifier{}
	notifier.On("BookingConfirmation", "BK12345678ABCD").Return(errors.New("smtp down"))

	h := NewHandler(notifier, &recordingRealtime{err: errors.New("pubnub down")})

	err := h.SendConfirmationEmail(context.Background(), &BookingConfirmed{Booking: summary()})
	assert.ErrorContains(t, err, "smtp down")

	err = h.PublishBookingConfirmed(context.Background(), &BookingConfirmed{Header: NewHeader(), Booking: summary()})
	assert.ErrorContains(t, err, "pubnub down")

	notifier.AssertExpectations(t)
}

func TestHandler_SkipsWelcomeWithoutEmail(t *testing.T) {
	notifier := &mockNotifier{}
	h := NewHandler(notifier, nil)

	assert.NoError(t, h.SendWelcomeEmail(context.Background(), &UserRegistered{UserID: "u1"}))
	notifier.AssertNotCalled(t, "Welcome", mock.Anything, mock.Anything)
}

func TestRouter_DeliversForwardedEvents(t *testing.T) {
	logger := watermill.NopLogger{}
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, logger)
	defer pubSub.Close()

	notifier := &mockNotifier{}
	notifier.On("EventReminder", "BK12345678ABCD", models.ReminderHourBefore).Return(nil).Once()
	notifier.On("Welcome", "ada@example.com", "Ada").Return(nil).Once()

	router, err := NewRouter(RouterDeps{
		Logger: logger,
		Subscribers: func(string) (message.Subscriber, error) {
			return pubSub, nil
		},
		Notifier:   notifier,
		Realtime:   &recordingRealtime{},
		MaxRetries: 1,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = router.Run(ctx) }()
	<-router.Running()

	forwarder := NewForwarder(pubSub)

	header := NewHeader()
	reminder, err := NewOutboxMessage(&EventReminderDue{Header: header, Booking: summary(), Variant: models.ReminderHourBefore}, header)
	require.NoError(t, err)
	require.NoError(t, forwarder.Forward(ctx, reminder))

	header = NewHeader()
	welcome, err := NewOutboxMessage(&UserRegistered{Header: header, UserID: "u1", Email: "ada@example.com", Name: "Ada"}, header)
	require.NoError(t, err)
	require.NoError(t, forwarder.Forward(ctx, welcome))

	require.Eventually(t, func() bool {
		return notifier.calls.Load() == 2
	}, 5*time.Second, 20*time.Millisecond)

	notifier.AssertExpectations(t)
	require.NoError(t, router.Close())
}

func TestDeduplicator(t *testing.T) {
	const ttl = time.Hour
	key := processedKey("", "msg-1")

	testCases := []struct {
		name       string
		expect     func(mock redismock.ClientMock)
		handlerErr error
		wantCalls  int
		wantErr    bool
	}{
		{
			name: "first delivery",
			expect: func(mock redismock.ClientMock) {
				mock.ExpectSetNX(key, 1, ttl).SetVal(true)
			},
			wantCalls: 1,
		},
		{
			name: "duplicate is skipped",
			expect: func(mock redismock.ClientMock) {
				mock.ExpectSetNX(key, 1, ttl).SetVal(false)
			},
			wantCalls: 0,
		},
		{
			name: "failure releases the marker",
			expect: func(mock redismock.ClientMock) {
				mock.ExpectSetNX(key, 1, ttl).SetVal(true)
				mock.ExpectDel(key).SetVal(1)
			},
			handlerErr: errors.New("smtp timeout"),
			wantCalls:  1,
			wantErr:    true,
		},
		{
			name: "redis outage still delivers",
			expect: func(mock redismock.ClientMock) {
				mock.ExpectSetNX(key, 1, ttl).SetErr(errors.New("connection refused"))
			},
			wantCalls: 1,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			db, mock := redismock.NewClientMock()
			tc.expect(mock)

			calls := 0
			h := Deduplicator{Redis: db, TTL: ttl}.Middleware(func(msg *message.Message) ([]*message.Message, error) {
				calls++
				return nil, tc.handlerErr
			})

			_, err := h(message.NewMessage("msg-1", nil))

			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tc.wantCalls, calls)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestDeduplicator_RedeliveredMessageHandledOnce(t *testing.T) {
	db, mock := redismock.NewClientMock()
	key := processedKey("", "msg-1")
	mock.ExpectSetNX(key, 1, processedMarkerTTL).SetVal(true)
	mock.ExpectSetNX(key, 1, processedMarkerTTL).SetVal(false)

	notifier := &mockNotifier{}
	notifier.On("Welcome", "ada@example.com", "Ada").Return(nil).Once()
	h := Deduplicator{Redis: db}.Middleware(func(msg *message.Message) ([]*message.Message, error) {
		return nil, notifier.Welcome(msg.Context(), "ada@example.com", "Ada")
	})

	for i := 0; i < 2; i++ {
		_, err := h(message.NewMessage("msg-1", nil))
		require.NoError(t, err)
	}

	notifier.AssertExpectations(t)
	assert.EqualValues(t, 1, notifier.calls.Load())
	assert.NoError(t, mock.ExpectationsWereMet())
}

package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validEvent() Event {
	return Event{
		ID:             "event-123",
		Title:          "Test Concert",
		Category:       CategoryConcert,
		VenueName:      "Test Arena",
		StartsAt:       time.Date(2030, 5, 1, 20, 0, 0, 0, time.UTC),
		EventTime:      "20:00",
		BasePrice:      decimal.RequireFromString("45.00"),
		TotalSeats:     100,
		AvailableSeats: 40,
		Status:         EventStatusActive,
	}
}

func TestEvent_Validate(t *testing.T) {
	require.NoError(t, validEvent().Validate())

	tests := []struct {
		name   string
		mutate func(e *Event)
	}{
		{"missing title", func(e *Event) { e.Title = "  " }},
		{"unknown category", func(e *Event) { e.Category = "opera" }},
		{"unknown status", func(e *Event) { e.Status = "upcoming" }},
		{"negative price", func(e *Event) { e.BasePrice = decimal.NewFromInt(-1) }},
		{"available above total", func(e *Event) { e.AvailableSeats = 101 }},
		{"available negative", func(e *Event) { e.AvailableSeats = -1 }},
		{"missing date", func(e *Event) { e.StartsAt = time.Time{} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := validEvent()
			tt.mutate(&e)
			assert.Error(t, e.Validate())
		})
	}
}

func TestEvent_IsBookable(t *testing.T) {
	e := validEvent()
	now := e.StartsAt.Add(-time.Hour)

	assert.True(t, e.IsBookable(now))
	assert.False(t, e.IsBookable(e.StartsAt))

	e.Status = EventStatusCancelled
	assert.False(t, e.IsBookable(now))
	assert.Equal(t, 60, validEvent().SeatsSold())
}

func TestEventDraft_ToEvent(t *testing.T) {
	draft := EventDraft{
		Title:      " Jazz Night ",
		Category:   CategoryConcert,
		VenueName:  "Blue Room",
		StartsAt:   time.Date(2030, 1, 2, 19, 30, 0, 0, time.UTC),
		BasePrice:  decimal.RequireFromString("12.345"),
		TotalSeats: 80,
	}

	e := draft.ToEvent()

	assert.Equal(t, "Jazz Night", e.Title)
	assert.Equal(t, "19:30", e.EventTime)
	assert.Equal(t, 80, e.AvailableSeats)
	assert.Equal(t, EventStatusActive, e.Status)
	assert.Equal(t, "12.35", e.BasePrice.StringFixed(2))
}

func TestSeat_LabelAndValidate(t *testing.T) {
	s := Seat{ID: "s1", EventID: "e1", RowName: "C", SeatNumber: 7, SeatType: SeatTypeVIP, Price: decimal.NewFromInt(90)}

	assert.Equal(t, "C7", s.Label())
	assert.NoError(t, s.Validate())

	s.SeatType = "balcony"
	s.SeatNumber = 0
	err := s.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "balcony")
	assert.Contains(t, err.Error(), "seat number")
}

func TestSeatLayout_Seats(t *testing.T) {
	layout := SeatLayout{
		Rows:         3,
		SeatsPerRow:  4,
		VIPRows:      1,
		PremiumRows:  1,
		RegularPrice: decimal.NewFromInt(20),
		PremiumPrice: decimal.NewFromInt(35),
		VIPPrice:     decimal.NewFromInt(60),
	}
	require.NoError(t, layout.Validate())

	seats := layout.Seats("e1")
	require.Len(t, seats, 12)

	assert.Equal(t, "A1", seats[0].Label())
	assert.Equal(t, SeatTypeVIP, seats[0].SeatType)
	assert.Equal(t, SeatTypePremium, seats[4].SeatType)
	assert.Equal(t, "B1", seats[4].Label())
	assert.Equal(t, SeatTypeRegular, seats[11].SeatType)
	assert.Equal(t, "C4", seats[11].Label())
	for _, s := range seats {
		assert.True(t, s.Available)
		assert.Equal(t, "e1", s.EventID)
	}

	layout.VIPRows = 3
	assert.Error(t, layout.Validate())
	assert.Error(t, SeatLayout{Rows: 27, SeatsPerRow: 1}.Validate())
}

func TestCustomer_Validate(t *testing.T) {
	assert.NoError(t, Customer{Name: "Ada", Email: "ada@example.com"}.Validate())
	assert.Error(t, Customer{Email: "ada@example.com"}.Validate())
	assert.Error(t, Customer{Name: "Ada"}.Validate())
	assert.Error(t, Customer{Name: "Ada", Email: "not-an-address"}.Validate())
}

func TestNewQRPayload(t *testing.T) {
	payload, err := NewQRPayload("b1", "e1", []string{"s1", "s2"}, "ada@example.com", "BK12345678ABCD")
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(payload), &decoded))

	assert.Equal(t, "b1", decoded["bookingId"])
	assert.Equal(t, "e1", decoded["eventId"])
	assert.Equal(t, []any{"s1", "s2"}, decoded["seats"])
	assert.Equal(t, "ada@example.com", decoded["customerEmail"])
	assert.Equal(t, "BK12345678ABCD", decoded["reference"])
	assert.Equal(t, "QR_BK12345678ABCD", QRCodeValue("BK12345678ABCD"))
}

func TestSession_Access(t *testing.T) {
	anon := Session{}
	customer := Session{UserID: "u1", Role: RoleCustomer}
	admin := Session{UserID: "a1", Role: RoleAdmin}

	assert.False(t, anon.IsAuthenticated())
	assert.False(t, anon.CanAccess(""))
	assert.True(t, customer.CanAccess("u1"))
	assert.False(t, customer.CanAccess("u2"))
	assert.True(t, admin.CanAccess("u2"))
	assert.False(t, Session{Role: RoleAdmin}.IsAdmin())
}

func TestReminderVariant(t *testing.T) {
	assert.Equal(t, 24*time.Hour, ReminderDayBefore.Lead())
	assert.Equal(t, time.Hour, ReminderHourBefore.Lead())
	assert.True(t, ReminderHourBefore.Valid())
	assert.False(t, ReminderVariant("week_before").Valid())
}

func TestNewBookingCancelledNotification(t *testing.T) {
	at := time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC)
	n := NewBookingCancelledNotification(BookingSummary{BookingID: "b1", EventID: "e1", EventTitle: "Hamlet"}, "47.25", at)

	assert.NotEmpty(t, n.ID)
	assert.Equal(t, NotificationBookingCancelled, n.Type)
	assert.Contains(t, n.Message, "Hamlet")
	assert.Contains(t, n.Message, "$47.25")
	assert.Equal(t, "2030-01-01T12:00:00Z", n.Timestamp)
	assert.False(t, n.Read)
}

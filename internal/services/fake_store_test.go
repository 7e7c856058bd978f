package services

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sort"
	"sync"
	"time"

	"ticket-storefront/internal/status"
	"ticket-storefront/models"

	"github.com/shopspring/decimal"
)

// fakeStore keeps records in memory. RunInTx holds the lock for the whole
// callback and restores a snapshot on error, so conditional writes behave
// like they do against SQLite.
type fakeStore struct {
	mu       sync.Mutex
	seq      int
	events   map[string]models.Event
	seats    map[string]models.Seat
	bookings map[string]models.Booking
	booked   []models.BookedSeat
	outbox   []models.OutboxMessage

	enqueueErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		events:   map[string]models.Event{},
		seats:    map[string]models.Seat{},
		bookings: map[string]models.Booking{},
	}
}

func (s *fakeStore) id(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s%d", prefix, s.seq)
}

func (s *fakeStore) addEvent(e models.Event) models.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e.ID == "" {
		e.ID = s.id("e")
	}
	if e.Status == "" {
		e.Status = models.EventStatusActive
	}
	s.events[e.ID] = e
	return e
}

func (s *fakeStore) addSeat(eventID, row string, number int, price string) models.Seat {
	s.mu.Lock()
	defer s.mu.Unlock()
	seat := models.Seat{
		ID:         s.id("s"),
		EventID:    eventID,
		RowName:    row,
		SeatNumber: number,
		SeatType:   models.SeatTypeRegular,
		Price:      decimal.RequireFromString(price),
		Available:  true,
	}
	s.seats[seat.ID] = seat
	return seat
}

func (s *fakeStore) event(id string) models.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.events[id]
}

func (s *fakeStore) seat(id string) models.Seat {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seats[id]
}

func (s *fakeStore) outboxNames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, len(s.outbox))
	for i, m := range s.outbox {
		names[i] = m.Name
	}
	return names
}

func (s *fakeStore) matchEvent(e models.Event, q models.EventQuery) bool {
	if q.Status != "" && e.Status != q.Status {
		return false
	}
	if !q.StartsAfter.IsZero() && !e.StartsAt.After(q.StartsAfter) {
		return false
	}
	if !q.StartsBefore.IsZero() && e.StartsAt.After(q.StartsBefore) {
		return false
	}
	return true
}

func (s *fakeStore) ListEvents(ctx context.Context, q models.EventQuery) ([]models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Event
	for _, e := range s.events {
		if s.matchEvent(e, q) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartsAt.Before(out[j].StartsAt) })
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (s *fakeStore) CountEvents(ctx context.Context, q models.EventQuery) (int, error) {
	q.Limit = 0
	events, err := s.ListEvents(ctx, q)
	return len(events), err
}

func (s *fakeStore) GetEvent(ctx context.Context, id string) (models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.events[id]
	if !ok {
		return models.Event{}, status.ErrEventNotFound
	}
	return e, nil
}

func (s *fakeStore) CreateEvent(ctx context.Context, e models.Event) (models.Event, error) {
	return s.addEvent(e), nil
}

func (s *fakeStore) DeleteEvent(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.events[id]; !ok {
		return status.ErrEventNotFound
	}
	delete(s.events, id)
	for seatID, seat := range s.seats {
		if seat.EventID == id {
			delete(s.seats, seatID)
		}
	}
	return nil
}

func (s *fakeStore) ListSeats(ctx context.Context, eventID string) ([]models.Seat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Seat
	for _, seat := range s.seats {
		if seat.EventID == eventID {
			out = append(out, seat)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].RowName != out[j].RowName {
			return out[i].RowName < out[j].RowName
		}
		return out[i].SeatNumber < out[j].SeatNumber
	})
	return out, nil
}

func (s *fakeStore) GetSeats(ctx context.Context, ids []string) ([]models.Seat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Seat, 0, len(ids))
	for _, id := range ids {
		seat, ok := s.seats[id]
		if !ok {
			return nil, fmt.Errorf("%w: %s", status.ErrSeatNotFound, id)
		}
		out = append(out, seat)
	}
	return out, nil
}

func (s *fakeStore) GetBooking(ctx context.Context, id string) (models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return models.Booking{}, status.ErrBookingNotFound
	}
	return b, nil
}

func (s *fakeStore) ListBookings(ctx context.Context, q models.BookingQuery) ([]models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Booking
	for _, b := range s.bookings {
		if q.UserID != "" && b.UserID != q.UserID {
			continue
		}
		if q.EventID != "" && b.EventID != q.EventID {
			continue
		}
		if q.Status != "" && b.Status != q.Status {
			continue
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Created.After(out[j].Created) })
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (s *fakeStore) CountBookings(ctx context.Context, q models.BookingQuery) (int, error) {
	q.Limit = 0
	bookings, err := s.ListBookings(ctx, q)
	return len(bookings), err
}

func (s *fakeStore) Revenue(ctx context.Context) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := decimal.Zero
	for _, b := range s.bookings {
		if !b.IsCancelled() {
			total = total.Add(b.TotalAmount)
		}
	}
	return total, nil
}

func (s *fakeStore) ListBookedSeats(ctx context.Context, bookingID string) ([]models.BookedSeat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.BookedSeat
	for _, bs := range s.booked {
		if bs.BookingID == bookingID {
			out = append(out, bs)
		}
	}
	return out, nil
}

func (s *fakeStore) Enqueue(ctx context.Context, m models.OutboxMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return (&fakeTx{s}).Enqueue(ctx, m)
}

func (s *fakeStore) RunInTx(ctx context.Context, fn func(tx Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	events := maps.Clone(s.events)
	seats := maps.Clone(s.seats)
	bookings := maps.Clone(s.bookings)
	booked := slices.Clone(s.booked)
	outbox := slices.Clone(s.outbox)

	if err := fn(&fakeTx{s}); err != nil {
		s.events, s.seats, s.bookings, s.booked, s.outbox = events, seats, bookings, booked, outbox
		return err
	}
	return nil
}

type fakeTx struct {
	s *fakeStore
}

func (t *fakeTx) CreateBooking(ctx context.Context, b *models.Booking) error {
	if b.ID == "" {
		b.ID = t.s.id("b")
	}
	t.s.seq++
	b.Created = time.Date(2030, 1, 1, 0, 0, t.s.seq, 0, time.UTC)
	t.s.bookings[b.ID] = *b
	return nil
}

func (t *fakeTx) CreateBookedSeat(ctx context.Context, bs *models.BookedSeat) error {
	bs.ID = t.s.id("bs")
	t.s.booked = append(t.s.booked, *bs)
	return nil
}

func (t *fakeTx) CreateSeats(ctx context.Context, eventID string, seats []models.Seat) ([]models.Seat, error) {
	e, ok := t.s.events[eventID]
	if !ok {
		return nil, status.ErrEventNotFound
	}
	out := make([]models.Seat, len(seats))
	for i, seat := range seats {
		seat.ID = t.s.id("s")
		t.s.seats[seat.ID] = seat
		out[i] = seat
	}
	e.TotalSeats = len(seats)
	e.AvailableSeats = len(seats)
	t.s.events[eventID] = e
	return out, nil
}

func (t *fakeTx) ReserveSeat(ctx context.Context, seatID string) error {
	seat, ok := t.s.seats[seatID]
	if !ok || !seat.Available {
		return status.ErrSeatUnavailable
	}
	seat.Available = false
	t.s.seats[seatID] = seat
	return nil
}

func (t *fakeTx) ReleaseSeat(ctx context.Context, seatID string) error {
	if seat, ok := t.s.seats[seatID]; ok {
		seat.Available = true
		t.s.seats[seatID] = seat
	}
	return nil
}

func (t *fakeTx) AdjustAvailableSeats(ctx context.Context, eventID string, delta int) error {
	e, ok := t.s.events[eventID]
	if !ok {
		return status.ErrEventNotFound
	}
	if e.AvailableSeats+delta < 0 {
		return status.ErrInventoryMismatch
	}
	e.AvailableSeats = min(e.TotalSeats, e.AvailableSeats+delta)
	t.s.events[eventID] = e
	return nil
}

func (t *fakeTx) MarkBookingCancelled(ctx context.Context, bookingID string, at time.Time) error {
	b, ok := t.s.bookings[bookingID]
	if !ok {
		return status.ErrBookingNotFound
	}
	if b.Status != models.BookingStatusConfirmed {
		return status.ErrAlreadyCancelled
	}
	b.Status = models.BookingStatusCancelled
	b.PaymentStatus = models.PaymentStatusRefunded
	b.CancelledAt = &at
	t.s.bookings[bookingID] = b
	return nil
}

func (t *fakeTx) Enqueue(ctx context.Context, m models.OutboxMessage) error {
	if t.s.enqueueErr != nil {
		return t.s.enqueueErr
	}
	m.ID = t.s.id("o")
	t.s.outbox = append(t.s.outbox, m)
	return nil
}

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"ticket-storefront/internal/services"
	"ticket-storefront/internal/status"
	"ticket-storefront/models"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/types"
	"github.com/shopspring/decimal"
)

// PocketStore keeps the storefront records in PocketBase collections.
type PocketStore struct {
	app core.App
}

var _ services.Store = (*PocketStore)(nil)

func New(app core.App) *PocketStore {
	return &PocketStore{app: app}
}

func dbTime(t time.Time) string {
	return t.UTC().Format(types.DefaultDateLayout)
}

func eventConditions(q models.EventQuery) []dbx.Expression {
	var conds []dbx.Expression
	if q.Status != "" {
		conds = append(conds, dbx.HashExp{"status": q.Status})
	}
	if !q.StartsAfter.IsZero() {
		conds = append(conds, dbx.NewExp("event_date > {:after}", dbx.Params{"after": dbTime(q.StartsAfter)}))
	}
	if !q.StartsBefore.IsZero() {
		conds = append(conds, dbx.NewExp("event_date <= {:before}", dbx.Params{"before": dbTime(q.StartsBefore)}))
	}
	return conds
}

// where narrows query by conds. An empty dbx.And renders as "WHERE ()",
// which SQLite rejects.
func where(query *dbx.SelectQuery, conds []dbx.Expression) *dbx.SelectQuery {
	if len(conds) == 0 {
		return query
	}
	return query.AndWhere(dbx.And(conds...))
}

func bookingConditions(q models.BookingQuery) []dbx.Expression {
	var conds []dbx.Expression
	if q.UserID != "" {
		conds = append(conds, dbx.HashExp{"user_id": q.UserID})
	}
	if q.EventID != "" {
		conds = append(conds, dbx.HashExp{"event_id": q.EventID})
	}
	if q.Status != "" {
		conds = append(conds, dbx.HashExp{"booking_status": q.Status})
	}
	return conds
}

// ListEvents returns events in start order. Records that fail validation
// are logged and left out.
func (s *PocketStore) ListEvents(ctx context.Context, q models.EventQuery) ([]models.Event, error) {
	query := where(s.app.RecordQuery(CollectionEvents), eventConditions(q)).
		OrderBy("event_date ASC", "id ASC")
	if q.Limit > 0 {
		query.Limit(int64(q.Limit))
	}

	var records []*core.Record
	if err := query.WithContext(ctx).All(&records); err != nil {
		return nil, err
	}

	events := make([]models.Event, 0, len(records))
	for _, r := range records {
		e, err := eventFromRecord(r)
		if err != nil {
			slog.Warn("Skipping event record", "error", err)
			continue
		}
		events = append(events, e)
	}
	return events, nil
}

func (s *PocketStore) CountEvents(ctx context.Context, q models.EventQuery) (int, error) {
	n, err := s.app.CountRecords(CollectionEvents, eventConditions(q)...)
	return int(n), err
}

func (s *PocketStore) GetEvent(ctx context.Context, id string) (models.Event, error) {
	r, err := s.app.FindRecordById(CollectionEvents, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Event{}, status.ErrEventNotFound
		}
		return models.Event{}, err
	}
	return eventFromRecord(r)
}

func (s *PocketStore) CreateEvent(ctx context.Context, e models.Event) (models.Event, error) {
	collection, err := s.app.FindCachedCollectionByNameOrId(CollectionEvents)
	if err != nil {
		return models.Event{}, err
	}

	r := core.NewRecord(collection)
	setEventFields(r, e)
	if err := s.app.SaveWithContext(ctx, r); err != nil {
		return models.Event{}, err
	}
	return eventFromRecord(r)
}

// DeleteEvent removes the event; its seats go with it through the
// cascading relation.
func (s *PocketStore) DeleteEvent(ctx context.Context, id string) error {
	r, err := s.app.FindRecordById(CollectionEvents, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return status.ErrEventNotFound
		}
		return err
	}
	return s.app.DeleteWithContext(ctx, r)
}

func (s *PocketStore) ListSeats(ctx context.Context, eventID string) ([]models.Seat, error) {
	var records []*core.Record
	err := s.app.RecordQuery(CollectionSeats).
		AndWhere(dbx.HashExp{"event_id": eventID}).
		OrderBy("row_name ASC", "seat_number ASC").
		WithContext(ctx).
		All(&records)
	if err != nil {
		return nil, err
	}

	seats := make([]models.Seat, 0, len(records))
	for _, r := range records {
		seat, err := seatFromRecord(r)
		if err != nil {
			slog.Warn("Skipping seat record", "error", err, "event_id", eventID)
			continue
		}
		seats = append(seats, seat)
	}
	return seats, nil
}

// GetSeats returns the seats in the order of ids.
func (s *PocketStore) GetSeats(ctx context.Context, ids []string) ([]models.Seat, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	records, err := s.app.FindRecordsByIds(CollectionSeats, ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*core.Record, len(records))
	for _, r := range records {
		byID[r.Id] = r
	}

	seats := make([]models.Seat, 0, len(ids))
	for _, id := range ids {
		r, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("%w: %s", status.ErrSeatNotFound, id)
		}
		seat, err := seatFromRecord(r)
		if err != nil {
			return nil, err
		}
		seats = append(seats, seat)
	}
	return seats, nil
}

func (s *PocketStore) GetBooking(ctx context.Context, id string) (models.Booking, error) {
	r, err := s.app.FindRecordById(CollectionBookings, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Booking{}, status.ErrBookingNotFound
		}
		return models.Booking{}, err
	}
	return bookingFromRecord(r)
}

func (s *PocketStore) ListBookings(ctx context.Context, q models.BookingQuery) ([]models.Booking, error) {
	query := where(s.app.RecordQuery(CollectionBookings), bookingConditions(q)).
		OrderBy("created DESC", "rowid DESC")
	if q.Limit > 0 {
		query.Limit(int64(q.Limit))
	}

	var records []*core.Record
	if err := query.WithContext(ctx).All(&records); err != nil {
		return nil, err
	}

	bookings := make([]models.Booking, 0, len(records))
	for _, r := range records {
		b, err := bookingFromRecord(r)
		if err != nil {
			slog.Warn("Skipping booking record", "error", err)
			continue
		}
		bookings = append(bookings, b)
	}
	return bookings, nil
}

func (s *PocketStore) CountBookings(ctx context.Context, q models.BookingQuery) (int, error) {
	n, err := s.app.CountRecords(CollectionBookings, bookingConditions(q)...)
	return int(n), err
}

func (s *PocketStore) Revenue(ctx context.Context) (decimal.Decimal, error) {
	var total float64
	err := s.app.DB().
		NewQuery("SELECT COALESCE(SUM(total_amount), 0) FROM bookings WHERE booking_status != {:cancelled}").
		Bind(dbx.Params{"cancelled": models.BookingStatusCancelled}).
		WithContext(ctx).
		Row(&total)
	if err != nil {
		return decimal.Zero, err
	}
	return decimal.NewFromFloat(total).Round(2), nil
}

// ListBookedSeats returns a booking's seats in the order they were selected.
func (s *PocketStore) ListBookedSeats(ctx context.Context, bookingID string) ([]models.BookedSeat, error) {
	var records []*core.Record
	err := s.app.RecordQuery(CollectionBookedSeats).
		AndWhere(dbx.HashExp{"booking_id": bookingID}).
		OrderBy("created ASC", "rowid ASC").
		WithContext(ctx).
		All(&records)
	if err != nil {
		return nil, err
	}

	booked := make([]models.BookedSeat, len(records))
	for i, r := range records {
		booked[i] = bookedSeatFromRecord(r)
	}
	return booked, nil
}

func (s *PocketStore) Enqueue(ctx context.Context, m models.OutboxMessage) error {
	return (&tx{app: s.app}).Enqueue(ctx, m)
}

func (s *PocketStore) RunInTx(ctx context.Context, fn func(services.Tx) error) error {
	return s.app.RunInTransaction(func(txApp core.App) error {
		return fn(&tx{app: txApp})
	})
}

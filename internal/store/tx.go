package store

import (
	"context"
	"fmt"
	"time"

	"ticket-storefront/internal/status"
	"ticket-storefront/models"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/types"
)

// tx runs against the transactional app handed out by RunInTransaction.
type tx struct {
	app core.App
}

func (t *tx) newRecord(name string) (*core.Record, error) {
	collection, err := t.app.FindCachedCollectionByNameOrId(name)
	if err != nil {
		return nil, err
	}
	return core.NewRecord(collection), nil
}

// exec runs a conditional update and reports how many rows it touched.
func (t *tx) exec(ctx context.Context, query string, params dbx.Params) (int64, error) {
	res, err := t.app.DB().NewQuery(query).Bind(params).WithContext(ctx).Execute()
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (t *tx) exists(ctx context.Context, collection, id string) (bool, error) {
	n, err := t.app.CountRecords(collection, dbx.HashExp{"id": id})
	return n > 0, err
}

func (t *tx) CreateBooking(ctx context.Context, b *models.Booking) error {
	r, err := t.newRecord(CollectionBookings)
	if err != nil {
		return err
	}
	if b.ID != "" {
		r.Set("id", b.ID)
	}
	setBookingFields(r, *b)

	if err := t.app.SaveWithContext(ctx, r); err != nil {
		return err
	}
	b.ID = r.Id
	b.Created = r.GetDateTime("created").Time()
	return nil
}

func (t *tx) CreateBookedSeat(ctx context.Context, bs *models.BookedSeat) error {
	r, err := t.newRecord(CollectionBookedSeats)
	if err != nil {
		return err
	}
	r.Set("booking_id", bs.BookingID)
	r.Set("seat_id", bs.SeatID)
	r.Set("price", bs.Price.InexactFloat64())

	if err := t.app.SaveWithContext(ctx, r); err != nil {
		return err
	}
	bs.ID = r.Id
	return nil
}

func (t *tx) CreateSeats(ctx context.Context, eventID string, seats []models.Seat) ([]models.Seat, error) {
	created := make([]models.Seat, 0, len(seats))
	for _, seat := range seats {
		r, err := t.newRecord(CollectionSeats)
		if err != nil {
			return nil, err
		}
		r.Set("event_id", eventID)
		r.Set("row_name", seat.RowName)
		r.Set("seat_number", seat.SeatNumber)
		r.Set("seat_type", seat.SeatType)
		r.Set("price", seat.Price.InexactFloat64())
		r.Set("is_available", seat.Available)

		if err := t.app.SaveWithContext(ctx, r); err != nil {
			return nil, fmt.Errorf("seat %s: %w", seat.Label(), err)
		}
		seat.ID = r.Id
		seat.EventID = eventID
		created = append(created, seat)
	}

	n, err := t.exec(ctx,
		"UPDATE events SET total_seats = {:n}, available_seats = {:n} WHERE id = {:id}",
		dbx.Params{"n": len(created), "id": eventID},
	)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, status.ErrEventNotFound
	}
	return created, nil
}

// ReserveSeat only flips a seat that is still available; of two writers
// racing for the same seat exactly one sees a row affected.
func (t *tx) ReserveSeat(ctx context.Context, seatID string) error {
	n, err := t.exec(ctx,
		"UPDATE seats SET is_available = FALSE WHERE id = {:id} AND is_available = TRUE",
		dbx.Params{"id": seatID},
	)
	if err != nil {
		return err
	}
	if n == 0 {
		return status.ErrSeatUnavailable
	}
	return nil
}

func (t *tx) ReleaseSeat(ctx context.Context, seatID string) error {
	_, err := t.exec(ctx,
		"UPDATE seats SET is_available = TRUE WHERE id = {:id}",
		dbx.Params{"id": seatID},
	)
	return err
}

func (t *tx) AdjustAvailableSeats(ctx context.Context, eventID string, delta int) error {
	if delta == 0 {
		return nil
	}

	var (
		n   int64
		err error
	)
	if delta < 0 {
		n, err = t.exec(ctx,
			"UPDATE events SET available_seats = available_seats - {:n} WHERE id = {:id} AND available_seats >= {:n}",
			dbx.Params{"n": -delta, "id": eventID},
		)
	} else {
		n, err = t.exec(ctx,
			"UPDATE events SET available_seats = MIN(total_seats, available_seats + {:n}) WHERE id = {:id}",
			dbx.Params{"n": delta, "id": eventID},
		)
	}
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	found, err := t.exists(ctx, CollectionEvents, eventID)
	if err != nil {
		return err
	}
	if !found {
		return status.ErrEventNotFound
	}
	return status.ErrInventoryMismatch
}

func (t *tx) MarkBookingCancelled(ctx context.Context, bookingID string, at time.Time) error {
	n, err := t.exec(ctx,
		`UPDATE bookings
		SET booking_status = {:cancelled}, payment_status = {:refunded}, cancelled_at = {:at}, updated = {:now}
		WHERE id = {:id} AND booking_status = {:confirmed}`,
		dbx.Params{
			"cancelled": models.BookingStatusCancelled,
			"refunded":  models.PaymentStatusRefunded,
			"confirmed": models.BookingStatusConfirmed,
			"at":        dbTime(at),
			"now":       types.NowDateTime().String(),
			"id":        bookingID,
		},
	)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	found, err := t.exists(ctx, CollectionBookings, bookingID)
	if err != nil {
		return err
	}
	if !found {
		return status.ErrBookingNotFound
	}
	return status.ErrAlreadyCancelled
}

func (t *tx) Enqueue(ctx context.Context, m models.OutboxMessage) error {
	r, err := t.newRecord(CollectionOutbox)
	if err != nil {
		return err
	}
	if m.Status == "" {
		m.Status = models.OutboxPending
	}
	r.Set("uuid", m.UUID)
	r.Set("name", m.Name)
	r.Set("payload", types.JSONRaw(m.Payload))
	r.Set("status", m.Status)
	r.Set("attempts", m.Attempts)
	r.Set("correlation_id", m.CorrelationID)

	return t.app.SaveWithContext(ctx, r)
}

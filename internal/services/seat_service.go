package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"ticket-storefront/internal/status"
	"ticket-storefront/models"

	"github.com/redis/go-redis/v9"
)

// SeatService serves the seat grid and the short-lived holds a customer
// places while filling in the booking form. Holds are advisory; the
// booking transaction decides who gets a seat.
type SeatService struct {
	store    Store
	redis    redis.Cmdable
	holdTTL  time.Duration
	maxSeats int
	now      func() time.Time
}

func NewSeatService(store Store, redisClient redis.Cmdable, holdTTL time.Duration, maxSeats int) *SeatService {
	return &SeatService{
		store:    store,
		redis:    redisClient,
		holdTTL:  holdTTL,
		maxSeats: maxSeats,
		now:      time.Now,
	}
}

func holdKey(eventID, seatID string) string {
	return fmt.Sprintf("seat:hold:%s:%s", eventID, seatID)
}

// HoldSeats places holds for the caller. Either every seat is held or none.
func (s *SeatService) HoldSeats(ctx context.Context, session models.Session, eventID string, seatIDs []string) (models.SeatHold, error) {
	if !session.IsAuthenticated() {
		return models.SeatHold{}, status.ErrUnauthenticated
	}
	if err := validateSelection(seatIDs, s.maxSeats); err != nil {
		return models.SeatHold{}, err
	}

	seats, err := s.store.GetSeats(ctx, seatIDs)
	if err != nil {
		return models.SeatHold{}, err
	}
	for _, seat := range seats {
		if seat.EventID != eventID {
			return models.SeatHold{}, fmt.Errorf("%w: %s", status.ErrSeatNotInEvent, seat.ID)
		}
		if !seat.Available {
			return models.SeatHold{}, fmt.Errorf("%w: %s", status.ErrSeatUnavailable, seat.Label())
		}
	}

	var acquired []string
	for _, seatID := range seatIDs {
		key := holdKey(eventID, seatID)

		ok, err := s.redis.SetNX(ctx, key, session.UserID, s.holdTTL).Result()
		if err != nil {
			s.rollback(ctx, acquired)
			return models.SeatHold{}, fmt.Errorf("holding seat %s: %w", seatID, err)
		}
		if ok {
			acquired = append(acquired, key)
			continue
		}

		holder, err := s.redis.Get(ctx, key).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			s.rollback(ctx, acquired)
			return models.SeatHold{}, fmt.Errorf("reading hold on %s: %w", seatID, err)
		}
		if holder != session.UserID {
			s.rollback(ctx, acquired)
			return models.SeatHold{}, fmt.Errorf("%w: %s", status.ErrSeatHeld, seatID)
		}
		// Already ours; extend it.
		if err := s.redis.Expire(ctx, key, s.holdTTL).Err(); err != nil {
			slog.Warn("Failed to extend seat hold", "error", err, "seat_id", seatID, "user_id", session.UserID)
		}
	}

	return models.SeatHold{
		EventID:   eventID,
		SeatIDs:   seatIDs,
		HeldBy:    session.UserID,
		ExpiresAt: s.now().Add(s.holdTTL),
	}, nil
}

func (s *SeatService) rollback(ctx context.Context, keys []string) {
	if len(keys) == 0 {
		return
	}
	if err := s.redis.Del(ctx, keys...).Err(); err != nil {
		slog.Error("Failed to roll back seat holds", "error", err, "keys", keys)
	}
}

// ReleaseHolds drops the caller's own holds on the given seats and
// returns how many were released.
func (s *SeatService) ReleaseHolds(ctx context.Context, session models.Session, eventID string, seatIDs []string) (int, error) {
	if !session.IsAuthenticated() {
		return 0, status.ErrUnauthenticated
	}
	if len(seatIDs) == 0 {
		return 0, nil
	}

	holders, err := s.SeatHolders(ctx, eventID, seatIDs)
	if err != nil {
		return 0, err
	}

	var keys []string
	for _, seatID := range seatIDs {
		if holders[seatID] == session.UserID {
			keys = append(keys, holdKey(eventID, seatID))
		}
	}
	if len(keys) == 0 {
		return 0, nil
	}

	n, err := s.redis.Del(ctx, keys...).Result()
	if err != nil {
		return 0, fmt.Errorf("releasing holds: %w", err)
	}
	return int(n), nil
}

// SeatHolders maps each held seat to the user holding it. Unheld seats
// are absent from the result.
func (s *SeatService) SeatHolders(ctx context.Context, eventID string, seatIDs []string) (map[string]string, error) {
	holders := make(map[string]string, len(seatIDs))
	if len(seatIDs) == 0 {
		return holders, nil
	}

	keys := make([]string, len(seatIDs))
	for i, seatID := range seatIDs {
		keys[i] = holdKey(eventID, seatID)
	}

	values, err := s.redis.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("reading seat holds: %w", err)
	}

	for i, v := range values {
		if holder, ok := v.(string); ok && holder != "" {
			holders[seatIDs[i]] = holder
		}
	}
	return holders, nil
}

// SeatGrid returns the event's seats grouped by row as seen by the
// caller. Hold lookups are best effort; the grid still renders without them.
func (s *SeatService) SeatGrid(ctx context.Context, session models.Session, eventID string) (models.SeatGrid, error) {
	event, err := s.store.GetEvent(ctx, eventID)
	if err != nil {
		return models.SeatGrid{}, err
	}

	seats, err := s.store.ListSeats(ctx, eventID)
	if err != nil {
		return models.SeatGrid{}, fmt.Errorf("listing seats: %w", err)
	}

	ids := make([]string, 0, len(seats))
	for _, seat := range seats {
		if seat.Available {
			ids = append(ids, seat.ID)
		}
	}
	holders, err := s.SeatHolders(ctx, eventID, ids)
	if err != nil {
		slog.Warn("Seat holds unavailable, serving grid without them", "error", err, "event_id", eventID)
		holders = map[string]string{}
	}

	grid := models.SeatGrid{
		EventID:        event.ID,
		TotalSeats:     event.TotalSeats,
		AvailableSeats: event.AvailableSeats,
		ByType:         map[string]int{},
	}

	for _, seat := range seats {
		gs := models.GridSeat{Seat: seat, Status: seatStatus(seat, holders[seat.ID], session.UserID)}
		grid.ByType[seat.SeatType]++

		if n := len(grid.Rows); n == 0 || grid.Rows[n-1].Name != seat.RowName {
			grid.Rows = append(grid.Rows, models.SeatRow{Name: seat.RowName})
		}
		row := &grid.Rows[len(grid.Rows)-1]
		row.Seats = append(row.Seats, gs)
	}

	return grid, nil
}

func seatStatus(seat models.Seat, holder, viewer string) string {
	switch {
	case !seat.Available:
		return models.SeatStatusBooked
	case holder == "":
		return models.SeatStatusAvailable
	case viewer != "" && holder == viewer:
		return models.SeatStatusHeldByYou
	default:
		return models.SeatStatusHeld
	}
}

func validateSelection(seatIDs []string, max int) error {
	if len(seatIDs) == 0 {
		return status.ErrEmptySeatSelection
	}
	if max > 0 && len(seatIDs) > max {
		return fmt.Errorf("%w: at most %d", status.ErrTooManySeats, max)
	}

	seen := make(map[string]struct{}, len(seatIDs))
	for _, id := range seatIDs {
		if id == "" {
			return status.ErrEmptySeatSelection
		}
		if _, ok := seen[id]; ok {
			return fmt.Errorf("%w: %s", status.ErrDuplicateSeat, id)
		}
		seen[id] = struct{}{}
	}
	return nil
}

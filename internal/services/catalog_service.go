package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"ticket-storefront/internal/status"
	"ticket-storefront/models"
)

type CatalogService struct {
	store    Store
	pageSize int
	now      func() time.Time
}

func NewCatalogService(store Store, pageSize int) *CatalogService {
	if pageSize <= 0 {
		pageSize = 20
	}
	return &CatalogService{store: store, pageSize: pageSize, now: time.Now}
}

type CatalogPage struct {
	Events        []models.Event       `json:"events"`
	Filters       models.SearchFilters `json:"filters"`
	ActiveFilters int                  `json:"active_filters"`
	Venues        []string             `json:"venues"`
	Total         int                  `json:"total"`
}

// Search filters the active events and returns at most limit of them;
// limit <= 0 uses the configured page size.
func (s *CatalogService) Search(ctx context.Context, f models.SearchFilters, limit int) (CatalogPage, error) {
	if limit <= 0 {
		limit = s.pageSize
	}

	events, err := s.store.ListEvents(ctx, models.EventQuery{Status: models.EventStatusActive})
	if err != nil {
		return CatalogPage{}, fmt.Errorf("listing events: %w", err)
	}

	matched := FilterEvents(events, f, s.now())
	total := len(matched)
	if len(matched) > limit {
		matched = matched[:limit]
	}

	return CatalogPage{
		Events:        matched,
		Filters:       f,
		ActiveFilters: ActiveFilterCount(f),
		Venues:        Venues(events),
		Total:         total,
	}, nil
}

func (s *CatalogService) Get(ctx context.Context, id string) (models.Event, error) {
	return s.store.GetEvent(ctx, id)
}

func (s *CatalogService) CreateEvent(ctx context.Context, session models.Session, draft models.EventDraft) (models.Event, error) {
	if !session.IsAdmin() {
		return models.Event{}, status.ErrForbidden
	}

	if err := draft.Validate(); err != nil {
		return models.Event{}, fmt.Errorf("%w: %w", status.ErrInvalidEvent, err)
	}

	created, err := s.store.CreateEvent(ctx, draft.ToEvent())
	if err != nil {
		return models.Event{}, fmt.Errorf("creating event: %w", err)
	}

	slog.Info("Event created", "event_id", created.ID, "title", created.Title, "by", session.UserID)
	return created, nil
}

// GenerateSeats lays out the seat grid of an event that has none yet.
func (s *CatalogService) GenerateSeats(ctx context.Context, session models.Session, eventID string, layout models.SeatLayout) ([]models.Seat, error) {
	if !session.IsAdmin() {
		return nil, status.ErrForbidden
	}
	if err := layout.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", status.ErrInvalidSeatLayout, err)
	}

	if _, err := s.store.GetEvent(ctx, eventID); err != nil {
		return nil, err
	}

	existing, err := s.store.ListSeats(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("listing seats: %w", err)
	}
	if len(existing) > 0 {
		return nil, status.ErrSeatsAlreadyGenerated
	}

	var created []models.Seat
	err = s.store.RunInTx(ctx, func(tx Tx) error {
		var err error
		created, err = tx.CreateSeats(ctx, eventID, layout.Seats(eventID))
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("creating seats: %w", err)
	}

	slog.Info("Seat grid generated", "event_id", eventID, "seats", len(created))
	return created, nil
}

// DeleteEvent removes an event and its seats. Events with bookings are kept.
func (s *CatalogService) DeleteEvent(ctx context.Context, session models.Session, eventID string) error {
	if !session.IsAdmin() {
		return status.ErrForbidden
	}

	if _, err := s.store.GetEvent(ctx, eventID); err != nil {
		return err
	}

	n, err := s.store.CountBookings(ctx, models.BookingQuery{EventID: eventID})
	if err != nil {
		return fmt.Errorf("counting bookings: %w", err)
	}
	if n > 0 {
		return status.ErrEventHasBookings
	}

	if err := s.store.DeleteEvent(ctx, eventID); err != nil {
		if errors.Is(err, status.ErrEventNotFound) {
			return err
		}
		return fmt.Errorf("deleting event: %w", err)
	}

	slog.Info("Event deleted", "event_id", eventID, "by", session.UserID)
	return nil
}

package models

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	CategoryMovie   = "movie"
	CategoryConcert = "concert"
	CategorySports  = "sports"
	CategoryTheater = "theater"
)

const (
	EventStatusActive    = "active"
	EventStatusCancelled = "cancelled"
	EventStatusSoldOut   = "sold_out"
)

var (
	Categories    = []string{CategoryMovie, CategoryConcert, CategorySports, CategoryTheater}
	EventStatuses = []string{EventStatusActive, EventStatusCancelled, EventStatusSoldOut}
)

type Event struct {
	ID              string          `json:"id"`
	Title           string          `json:"title"`
	Description     string          `json:"description"`
	Category        string          `json:"category"`
	VenueName       string          `json:"venue_name"`
	VenueAddress    string          `json:"venue_address,omitempty"`
	StartsAt        time.Time       `json:"event_date"`
	EventTime       string          `json:"event_time"`
	DurationMinutes int             `json:"duration,omitempty"`
	ImageURL        string          `json:"image_url,omitempty"`
	BasePrice       decimal.Decimal `json:"base_price"`
	TotalSeats      int             `json:"total_seats"`
	AvailableSeats  int             `json:"available_seats"`
	Status          string          `json:"status"`
	Created         time.Time       `json:"created"`
}

// SeatsSold is the popularity proxy used by the catalog sort.
func (e Event) SeatsSold() int {
	return e.TotalSeats - e.AvailableSeats
}

func (e Event) IsBookable(now time.Time) bool {
	return e.Status == EventStatusActive && e.StartsAt.After(now)
}

// Validate rejects records that cannot be served to customers.
func (e Event) Validate() error {
	var errs []error

	if e.ID == "" {
		errs = append(errs, errors.New("missing id"))
	}
	if strings.TrimSpace(e.Title) == "" {
		errs = append(errs, errors.New("missing title"))
	}
	if !slices.Contains(Categories, e.Category) {
		errs = append(errs, fmt.Errorf("unknown category %q", e.Category))
	}
	if !slices.Contains(EventStatuses, e.Status) {
		errs = append(errs, fmt.Errorf("unknown status %q", e.Status))
	}
	if e.StartsAt.IsZero() {
		errs = append(errs, errors.New("missing event date"))
	}
	if e.BasePrice.IsNegative() {
		errs = append(errs, errors.New("negative base price"))
	}
	if e.TotalSeats < 0 {
		errs = append(errs, errors.New("negative total seats"))
	}
	if e.AvailableSeats < 0 || e.AvailableSeats > e.TotalSeats {
		errs = append(errs, fmt.Errorf("available seats %d outside [0, %d]", e.AvailableSeats, e.TotalSeats))
	}

	return errors.Join(errs...)
}

// EventDraft is the admin input for a new event.
type EventDraft struct {
	Title           string          `json:"title"`
	Description     string          `json:"description"`
	Category        string          `json:"category"`
	VenueName       string          `json:"venue_name"`
	VenueAddress    string          `json:"venue_address"`
	StartsAt        time.Time       `json:"event_date"`
	EventTime       string          `json:"event_time"`
	DurationMinutes int             `json:"duration"`
	ImageURL        string          `json:"image_url"`
	BasePrice       decimal.Decimal `json:"base_price"`
	TotalSeats      int             `json:"total_seats"`
}

func (d EventDraft) Validate() error {
	var errs []error

	if strings.TrimSpace(d.Title) == "" {
		errs = append(errs, errors.New("missing title"))
	}
	if strings.TrimSpace(d.VenueName) == "" {
		errs = append(errs, errors.New("missing venue"))
	}
	if !slices.Contains(Categories, d.Category) {
		errs = append(errs, fmt.Errorf("unknown category %q", d.Category))
	}
	if d.StartsAt.IsZero() {
		errs = append(errs, errors.New("missing event date"))
	}
	if d.BasePrice.IsNegative() {
		errs = append(errs, errors.New("negative base price"))
	}
	if d.TotalSeats < 0 || d.DurationMinutes < 0 {
		errs = append(errs, errors.New("negative seats or duration"))
	}

	return errors.Join(errs...)
}

// ToEvent builds an active event whose counter starts fully available.
func (d EventDraft) ToEvent() Event {
	eventTime := d.EventTime
	if eventTime == "" && !d.StartsAt.IsZero() {
		eventTime = d.StartsAt.Format("15:04")
	}
	return Event{
		Title:           strings.TrimSpace(d.Title),
		Description:     d.Description,
		Category:        d.Category,
		VenueName:       strings.TrimSpace(d.VenueName),
		VenueAddress:    d.VenueAddress,
		StartsAt:        d.StartsAt,
		EventTime:       eventTime,
		DurationMinutes: d.DurationMinutes,
		ImageURL:        d.ImageURL,
		BasePrice:       d.BasePrice.Round(2),
		TotalSeats:      d.TotalSeats,
		AvailableSeats:  d.TotalSeats,
		Status:          EventStatusActive,
	}
}

type EventQuery struct {
	Status       string
	StartsAfter  time.Time
	StartsBefore time.Time
	Limit        int
}

package models

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

const (
	SeatTypeRegular = "regular"
	SeatTypePremium = "premium"
	SeatTypeVIP     = "vip"
)

var SeatTypes = []string{SeatTypeRegular, SeatTypePremium, SeatTypeVIP}

// Seat status as shown on the seat grid.
const (
	SeatStatusAvailable = "available"
	SeatStatusHeld      = "held"
	SeatStatusHeldByYou = "held_by_you"
	SeatStatusBooked    = "booked"
)

type Seat struct {
	ID         string          `json:"id"`
	EventID    string          `json:"event_id"`
	RowName    string          `json:"row_name"`
	SeatNumber int             `json:"seat_number"`
	SeatType   string          `json:"seat_type"`
	Price      decimal.Decimal `json:"price"`
	Available  bool            `json:"is_available"`
}

func (s Seat) Label() string {
	return fmt.Sprintf("%s%d", s.RowName, s.SeatNumber)
}

func (s Seat) Validate() error {
	var errs []error

	if s.ID == "" {
		errs = append(errs, errors.New("missing id"))
	}
	if s.EventID == "" {
		errs = append(errs, errors.New("missing event"))
	}
	if s.RowName == "" {
		errs = append(errs, errors.New("missing row"))
	}
	if s.SeatNumber <= 0 {
		errs = append(errs, fmt.Errorf("invalid seat number %d", s.SeatNumber))
	}
	if !slices.Contains(SeatTypes, s.SeatType) {
		errs = append(errs, fmt.Errorf("unknown seat type %q", s.SeatType))
	}
	if s.Price.IsNegative() {
		errs = append(errs, errors.New("negative price"))
	}

	return errors.Join(errs...)
}

// GridSeat is a seat as rendered for one viewer.
type GridSeat struct {
	Seat
	Status string `json:"status"`
}

type SeatRow struct {
	Name  string     `json:"row_name"`
	Seats []GridSeat `json:"seats"`
}

type SeatGrid struct {
	EventID        string         `json:"event_id"`
	Rows           []SeatRow      `json:"rows"`
	TotalSeats     int            `json:"total_seats"`
	AvailableSeats int            `json:"available_seats"`
	ByType         map[string]int `json:"by_type"`
}

// SeatLayout describes a generated rectangular seat grid. Rows are
// lettered from A; the first VIPRows rows are vip, the next PremiumRows
// are premium, the rest regular.
type SeatLayout struct {
	Rows         int             `json:"rows"`
	SeatsPerRow  int             `json:"seats_per_row"`
	VIPRows      int             `json:"vip_rows"`
	PremiumRows  int             `json:"premium_rows"`
	RegularPrice decimal.Decimal `json:"regular_price"`
	PremiumPrice decimal.Decimal `json:"premium_price"`
	VIPPrice     decimal.Decimal `json:"vip_price"`
}

func (l SeatLayout) Validate() error {
	switch {
	case l.Rows <= 0 || l.Rows > 26:
		return fmt.Errorf("rows must be within [1, 26], got %d", l.Rows)
	case l.SeatsPerRow <= 0 || l.SeatsPerRow > 100:
		return fmt.Errorf("seats per row must be within [1, 100], got %d", l.SeatsPerRow)
	case l.VIPRows < 0 || l.PremiumRows < 0 || l.VIPRows+l.PremiumRows > l.Rows:
		return errors.New("vip and premium rows exceed row count")
	case l.RegularPrice.IsNegative() || l.PremiumPrice.IsNegative() || l.VIPPrice.IsNegative():
		return errors.New("negative seat price")
	}
	return nil
}

// Seats expands the layout for one event. Every seat starts available.
func (l SeatLayout) Seats(eventID string) []Seat {
	seats := make([]Seat, 0, l.Rows*l.SeatsPerRow)
	for r := 0; r < l.Rows; r++ {
		seatType, price := SeatTypeRegular, l.RegularPrice
		switch {
		case r < l.VIPRows:
			seatType, price = SeatTypeVIP, l.VIPPrice
		case r < l.VIPRows+l.PremiumRows:
			seatType, price = SeatTypePremium, l.PremiumPrice
		}
		for n := 1; n <= l.SeatsPerRow; n++ {
			seats = append(seats, Seat{
				EventID:    eventID,
				RowName:    string(rune('A' + r)),
				SeatNumber: n,
				SeatType:   seatType,
				Price:      price.Round(2),
				Available:  true,
			})
		}
	}
	return seats
}

// SeatHold is a temporary claim on seats while the booking form is open.
type SeatHold struct {
	EventID   string    `json:"event_id"`
	SeatIDs   []string  `json:"seat_ids"`
	HeldBy    string    `json:"held_by"`
	ExpiresAt time.Time `json:"expires_at"`
}

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type AdminStats struct {
	TotalEvents    int             `json:"totalEvents"`
	TotalBookings  int             `json:"totalBookings"`
	TotalRevenue   decimal.Decimal `json:"totalRevenue"`
	UpcomingEvents int             `json:"upcomingEvents"`
}

// BookingHistoryItem is a booking joined with the event it is for.
type BookingHistoryItem struct {
	Booking    Booking   `json:"booking"`
	EventTitle string    `json:"event_title"`
	VenueName  string    `json:"venue_name"`
	StartsAt   time.Time `json:"event_date"`
	Upcoming   bool      `json:"upcoming"`
	CanCancel  bool      `json:"can_cancel"`
}

type UserStats struct {
	TotalBookings    int             `json:"totalBookings"`
	UpcomingBookings int             `json:"upcomingBookings"`
	TotalSpent       decimal.Decimal `json:"totalSpent"`
}

type UserDashboard struct {
	Bookings []BookingHistoryItem `json:"bookings"`
	Stats    UserStats            `json:"stats"`
}

// BookingDetail backs the booking confirmation and cancel screens.
type BookingDetail struct {
	Booking     Booking     `json:"booking"`
	Event       Event       `json:"event"`
	Seats       []Seat      `json:"seats"`
	CanCancel   bool        `json:"can_cancel"`
	HoursUntil  float64     `json:"hours_until_event"`
	RefundQuote RefundQuote `json:"refund_quote"`
	QRImageURL  string      `json:"qr_image_url"`
}

package services

import (
	"ticket-storefront/models"
)

func bookingSummary(b models.Booking, e models.Event, seats []models.Seat) models.BookingSummary {
	ids := make([]string, len(seats))
	labels := make([]string, len(seats))
	for i, s := range seats {
		ids[i] = s.ID
		labels[i] = s.Label()
	}

	return models.BookingSummary{
		BookingID:     b.ID,
		Reference:     b.Reference,
		UserID:        b.UserID,
		EventID:       e.ID,
		EventTitle:    e.Title,
		VenueName:     e.VenueName,
		VenueAddress:  e.VenueAddress,
		StartsAt:      e.StartsAt,
		EventTime:     e.EventTime,
		SeatIDs:       ids,
		SeatLabels:    labels,
		SeatCount:     len(seats),
		Total:         b.TotalAmount,
		CustomerName:  b.CustomerName,
		CustomerEmail: b.CustomerEmail,
		CustomerPhone: b.CustomerPhone,
		QRPayload:     b.QRPayload,
	}
}

func seatIDsOf(booked []models.BookedSeat) []string {
	ids := make([]string, len(booked))
	for i, bs := range booked {
		ids[i] = bs.SeatID
	}
	return ids
}

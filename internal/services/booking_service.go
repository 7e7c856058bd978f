package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"ticket-storefront/internal/messaging"
	"ticket-storefront/internal/status"
	"ticket-storefront/models"
	"ticket-storefront/monitoring"
	"ticket-storefront/utils"

	"github.com/pocketbase/pocketbase/tools/security"
)

const recordIDAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

func newRecordID() string {
	return security.RandomStringWithAlphabet(15, recordIDAlphabet)
}

type BookingService struct {
	store    Store
	pricing  Pricing
	seats    *SeatService
	maxSeats int

	now          func() time.Time
	newID        func() string
	newReference func(time.Time) (string, error)
}

// NewBookingService wires the booking workflow. seats may be nil, in
// which case holds are neither checked nor released.
func NewBookingService(store Store, pricing Pricing, seats *SeatService, maxSeats int) *BookingService {
	return &BookingService{
		store:        store,
		pricing:      pricing,
		seats:        seats,
		maxSeats:     maxSeats,
		now:          time.Now,
		newID:        newRecordID,
		newReference: utils.GenerateBookingReference,
	}
}

// Book sells the requested seats to the caller. Seat flips, the booking
// rows, the event counter and the outbox entry commit together; a seat
// taken by a concurrent booking aborts everything with
// status.ErrSeatUnavailable.
func (s *BookingService) Book(ctx context.Context, session models.Session, req models.BookingRequest) (result *models.BookingResult, err error) {
	start := s.now()
	defer func() {
		monitoring.TrackBooking(len(req.SeatIDs), s.now().Sub(start), err)
	}()

	if !session.IsAuthenticated() {
		return nil, status.ErrUnauthenticated
	}
	if err := validateSelection(req.SeatIDs, s.maxSeats); err != nil {
		return nil, err
	}
	req.Customer.Name = strings.TrimSpace(req.Customer.Name)
	req.Customer.Email = strings.TrimSpace(req.Customer.Email)
	if err := req.Customer.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", status.ErrInvalidCustomer, err)
	}

	event, err := s.store.GetEvent(ctx, req.EventID)
	if err != nil {
		return nil, err
	}
	if !event.IsBookable(s.now()) {
		return nil, status.ErrEventNotBookable
	}

	seats, err := s.store.GetSeats(ctx, req.SeatIDs)
	if err != nil {
		return nil, err
	}
	for _, seat := range seats {
		if seat.EventID != event.ID {
			return nil, fmt.Errorf("%w: %s", status.ErrSeatNotInEvent, seat.ID)
		}
		if !seat.Available {
			return nil, fmt.Errorf("%w: %s", status.ErrSeatUnavailable, seat.Label())
		}
	}
	if err := s.checkHolds(ctx, session, event.ID, req.SeatIDs); err != nil {
		return nil, err
	}

	quote := s.pricing.Quote(seats)

	reference, err := s.newReference(s.now())
	if err != nil {
		return nil, fmt.Errorf("generating reference: %w", err)
	}

	booking := models.Booking{
		ID:            s.newID(),
		Reference:     reference,
		UserID:        session.UserID,
		EventID:       event.ID,
		TotalAmount:   quote.Total,
		Status:        models.BookingStatusConfirmed,
		PaymentStatus: models.PaymentStatusCompleted,
		PaymentMethod: req.PaymentMethod,
		CustomerName:  req.Customer.Name,
		CustomerEmail: req.Customer.Email,
		CustomerPhone: strings.TrimSpace(req.Customer.Phone),
		SeatCount:     len(seats),
		QRCode:        models.QRCodeValue(reference),
	}
	if booking.PaymentMethod == "" {
		booking.PaymentMethod = models.DefaultPaymentMethod
	}

	booking.QRPayload, err = models.NewQRPayload(booking.ID, event.ID, req.SeatIDs, booking.CustomerEmail, reference)
	if err != nil {
		return nil, fmt.Errorf("encoding qr payload: %w", err)
	}

	summary := bookingSummary(booking, event, seats)
	header := messaging.NewHeader()
	header.CorrelationID = messaging.CorrelationIDFromContext(ctx)
	confirmed, err := messaging.NewOutboxMessage(&messaging.BookingConfirmed{Header: header, Booking: summary}, header)
	if err != nil {
		return nil, err
	}

	err = s.store.RunInTx(ctx, func(tx Tx) error {
		if err := tx.CreateBooking(ctx, &booking); err != nil {
			return fmt.Errorf("creating booking: %w", err)
		}

		for _, seat := range seats {
			if err := tx.ReserveSeat(ctx, seat.ID); err != nil {
				return fmt.Errorf("reserving %s: %w", seat.Label(), err)
			}

			bs := models.BookedSeat{BookingID: booking.ID, SeatID: seat.ID, Price: seat.Price}
			if err := tx.CreateBookedSeat(ctx, &bs); err != nil {
				return fmt.Errorf("recording seat %s: %w", seat.Label(), err)
			}
		}

		if err := tx.AdjustAvailableSeats(ctx, event.ID, -len(seats)); err != nil {
			return fmt.Errorf("updating seat counter: %w", err)
		}

		return tx.Enqueue(ctx, confirmed)
	})
	if err != nil {
		return nil, err
	}

	s.releaseHolds(ctx, session, event.ID, req.SeatIDs)

	slog.Info("Booking confirmed",
		"booking_id", booking.ID,
		"reference", booking.Reference,
		"event_id", event.ID,
		"seats", len(seats),
		"total", quote.Total.StringFixed(2),
	)

	for i := range seats {
		seats[i].Available = false
	}

	return &models.BookingResult{
		Booking: booking,
		Seats:   seats,
		Quote:   quote,
		Summary: summary,
	}, nil
}

// checkHolds refuses seats another customer is holding. When Redis is
// unreachable the booking goes ahead; the transaction still guards the seats.
func (s *BookingService) checkHolds(ctx context.Context, session models.Session, eventID string, seatIDs []string) error {
	if s.seats == nil {
		return nil
	}

	holders, err := s.seats.SeatHolders(ctx, eventID, seatIDs)
	if err != nil {
		slog.Warn("Skipping seat hold check", "error", err, "event_id", eventID)
		return nil
	}

	for _, id := range seatIDs {
		if holder, ok := holders[id]; ok && holder != session.UserID {
			return fmt.Errorf("%w: %s", status.ErrSeatHeld, id)
		}
	}
	return nil
}

func (s *BookingService) releaseHolds(ctx context.Context, session models.Session, eventID string, seatIDs []string) {
	if s.seats == nil {
		return
	}
	if _, err := s.seats.ReleaseHolds(ctx, session, eventID, seatIDs); err != nil {
		slog.Warn("Failed to release seat holds after booking", "error", err, "event_id", eventID)
	}
}

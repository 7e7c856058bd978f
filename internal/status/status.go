package status

import "errors"

var (
	ErrUnauthenticated = errors.New("auth: sign in required")
	ErrForbidden       = errors.New("auth: not allowed")
)

var (
	ErrEventNotFound         = errors.New("event: event not found")
	ErrEventNotBookable      = errors.New("event: event is not open for booking")
	ErrEventHasBookings      = errors.New("event: event has bookings")
	ErrSeatsAlreadyGenerated = errors.New("event: seats already generated")
	ErrInvalidEvent          = errors.New("event: invalid event")
)

var (
	ErrSeatNotFound      = errors.New("seat: seat not found")
	ErrSeatNotInEvent    = errors.New("seat: seat does not belong to event")
	ErrSeatUnavailable   = errors.New("seat: seat no longer available")
	ErrSeatHeld          = errors.New("seat: seat held by another customer")
	ErrInventoryMismatch = errors.New("seat: event seat counter out of range")
	ErrInvalidSeatLayout = errors.New("seat: invalid seat layout")
)

var (
	ErrEmptySeatSelection = errors.New("booking: no seats selected")
	ErrTooManySeats       = errors.New("booking: too many seats selected")
	ErrDuplicateSeat      = errors.New("booking: seat selected twice")
	ErrInvalidCustomer    = errors.New("booking: invalid customer details")
	ErrBookingNotFound    = errors.New("booking: booking not found")
)

var (
	ErrAlreadyCancelled         = errors.New("cancellation: booking already cancelled")
	ErrCancellationWindowClosed = errors.New("cancellation: cancellation window closed")
)

var (
	ErrMalformedRecord = errors.New("store: malformed record")
	ErrRateLimited     = errors.New("security: too many requests")
)

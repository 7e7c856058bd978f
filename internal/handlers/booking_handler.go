package handlers

import (
	"net/http"

	"ticket-storefront/internal/services"
	"ticket-storefront/models"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
)

type BookingHandler struct {
	booking      *services.BookingService
	cancellation *services.CancellationService
	dashboard    *services.DashboardService
}

func NewBookingHandler(
	booking *services.BookingService,
	cancellation *services.CancellationService,
	dashboard *services.DashboardService,
) *BookingHandler {
	return &BookingHandler{
		booking:      booking,
		cancellation: cancellation,
		dashboard:    dashboard,
	}
}

// withAccountContact fills the contact fields the form left blank from the
// signed-in account.
func withAccountContact(req models.BookingRequest, session models.Session) models.BookingRequest {
	if req.Customer.Name == "" {
		req.Customer.Name = session.Name
	}
	if req.Customer.Email == "" {
		req.Customer.Email = session.Email
	}
	return req
}

// Book - Confirm a booking for the selected seats
func (h *BookingHandler) Book(e *core.RequestEvent) error {
	session, err := requireSession(e)
	if err != nil {
		return err
	}

	var req models.BookingRequest
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request body", err)
	}

	result, err := h.booking.Book(e.Request.Context(), session, withAccountContact(req, session))
	if err != nil {
		return toAPIError(err)
	}

	return e.JSON(http.StatusCreated, result)
}

// MyBookings - Booking history and stats for the caller
func (h *BookingHandler) MyBookings(e *core.RequestEvent) error {
	session, err := requireSession(e)
	if err != nil {
		return err
	}

	dashboard, err := h.dashboard.UserDashboard(e.Request.Context(), session)
	if err != nil {
		return toAPIError(err)
	}

	return e.JSON(http.StatusOK, dashboard)
}

func (h *BookingHandler) GetBooking(e *core.RequestEvent) error {
	session, err := requireSession(e)
	if err != nil {
		return err
	}

	detail, err := h.dashboard.BookingDetail(e.Request.Context(), session, e.Request.PathValue("bookingId"))
	if err != nil {
		return toAPIError(err)
	}

	return e.JSON(http.StatusOK, detail)
}

// Cancel - Cancel a booking and restore its seats
func (h *BookingHandler) Cancel(e *core.RequestEvent) error {
	session, err := requireSession(e)
	if err != nil {
		return err
	}

	result, err := h.cancellation.Cancel(e.Request.Context(), session, e.Request.PathValue("bookingId"))
	if err != nil {
		return toAPIError(err)
	}

	return e.JSON(http.StatusOK, result)
}

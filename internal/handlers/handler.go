package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"ticket-storefront/internal/messaging"
	"ticket-storefront/internal/status"
	"ticket-storefront/models"

	"github.com/lithammer/shortuuid/v3"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/router"
)

const headerKeyCorrelationID = "Correlation-ID"

// sessionFromAuth maps the PocketBase auth record to the caller the
// services understand. Superusers act as admins.
func sessionFromAuth(e *core.RequestEvent) models.Session {
	if e.Auth == nil {
		return models.Session{}
	}

	role := e.Auth.GetString("role")
	if e.HasSuperuserAuth() {
		role = models.RoleAdmin
	}
	if role == "" {
		role = models.RoleCustomer
	}

	return models.Session{
		UserID: e.Auth.Id,
		Email:  e.Auth.Email(),
		Name:   e.Auth.GetString("name"),
		Role:   role,
	}
}

// CorrelationID carries the request's Correlation-ID header, or a fresh
// one, into the request context so outbox events keep it.
func CorrelationID(e *core.RequestEvent) error {
	correlationID := e.Request.Header.Get(headerKeyCorrelationID)
	if correlationID == "" {
		correlationID = "gen_" + shortuuid.New()
	}

	ctx := messaging.ContextWithCorrelationID(e.Request.Context(), correlationID)
	e.Request = e.Request.WithContext(ctx)
	e.Response.Header().Set(headerKeyCorrelationID, correlationID)

	return e.Next()
}

type errorMapping struct {
	target error
	status int
}

var errorMappings = []errorMapping{
	{status.ErrUnauthenticated, http.StatusUnauthorized},
	{status.ErrForbidden, http.StatusForbidden},

	{status.ErrEventNotFound, http.StatusNotFound},
	{status.ErrSeatNotFound, http.StatusNotFound},
	{status.ErrBookingNotFound, http.StatusNotFound},

	{status.ErrSeatUnavailable, http.StatusConflict},
	{status.ErrSeatHeld, http.StatusConflict},
	{status.ErrAlreadyCancelled, http.StatusConflict},
	{status.ErrSeatsAlreadyGenerated, http.StatusConflict},
	{status.ErrEventHasBookings, http.StatusConflict},
	{status.ErrInventoryMismatch, http.StatusConflict},

	{status.ErrEventNotBookable, http.StatusBadRequest},
	{status.ErrCancellationWindowClosed, http.StatusBadRequest},
	{status.ErrSeatNotInEvent, http.StatusBadRequest},
	{status.ErrEmptySeatSelection, http.StatusBadRequest},
	{status.ErrTooManySeats, http.StatusBadRequest},
	{status.ErrDuplicateSeat, http.StatusBadRequest},
	{status.ErrInvalidCustomer, http.StatusBadRequest},
	{status.ErrInvalidEvent, http.StatusBadRequest},
	{status.ErrInvalidSeatLayout, http.StatusBadRequest},

	{status.ErrRateLimited, http.StatusTooManyRequests},
}

// toAPIError translates service errors into PocketBase API errors. Anything
// unknown is logged and reported as a 500 without leaking its text.
func toAPIError(err error) *router.ApiError {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			return apis.NewApiError(m.status, err.Error(), nil)
		}
	}

	var apiErr *router.ApiError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	slog.Error("Request failed", "error", err)
	return apis.NewInternalServerError("Something went wrong while processing your request.", nil)
}

func requireSession(e *core.RequestEvent) (models.Session, error) {
	session := sessionFromAuth(e)
	if !session.IsAuthenticated() {
		return models.Session{}, apis.NewUnauthorizedError("Sign in to continue", nil)
	}
	return session, nil
}

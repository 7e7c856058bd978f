package handlers

import (
	"net/http"

	"ticket-storefront/internal/services"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
)

type SeatHandler struct {
	seatService *services.SeatService
}

func NewSeatHandler(seatService *services.SeatService) *SeatHandler {
	return &SeatHandler{
		seatService: seatService,
	}
}

type seatSelection struct {
	EventID string   `json:"event_id"`
	SeatIDs []string `json:"seat_ids"`
}

func bindSelection(e *core.RequestEvent) (seatSelection, error) {
	var req seatSelection
	if err := e.BindBody(&req); err != nil {
		return req, apis.NewBadRequestError("Invalid request body", err)
	}
	if req.EventID == "" {
		return req, apis.NewBadRequestError("event_id is required", nil)
	}
	return req, nil
}

// HoldSeats - Hold seats for the caller while they fill in the booking form
func (h *SeatHandler) HoldSeats(e *core.RequestEvent) error {
	session, err := requireSession(e)
	if err != nil {
		return err
	}

	req, err := bindSelection(e)
	if err != nil {
		return err
	}

	hold, err := h.seatService.HoldSeats(e.Request.Context(), session, req.EventID, req.SeatIDs)
	if err != nil {
		return toAPIError(err)
	}

	return e.JSON(http.StatusOK, hold)
}

// ReleaseSeats - Drop the caller's holds; other customers' holds are kept
func (h *SeatHandler) ReleaseSeats(e *core.RequestEvent) error {
	session, err := requireSession(e)
	if err != nil {
		return err
	}

	req, err := bindSelection(e)
	if err != nil {
		return err
	}

	released, err := h.seatService.ReleaseHolds(e.Request.Context(), session, req.EventID, req.SeatIDs)
	if err != nil {
		return toAPIError(err)
	}

	return e.JSON(http.StatusOK, map[string]any{
		"event_id": req.EventID,
		"released": released,
	})
}

package handlers

import (
	"net/http"

	"ticket-storefront/internal/services"
	"ticket-storefront/models"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
)

type AdminHandler struct {
	catalog   *services.CatalogService
	dashboard *services.DashboardService
}

func NewAdminHandler(catalog *services.CatalogService, dashboard *services.DashboardService) *AdminHandler {
	return &AdminHandler{
		catalog:   catalog,
		dashboard: dashboard,
	}
}

// Dashboard - Totals for the admin overview
func (h *AdminHandler) Dashboard(e *core.RequestEvent) error {
	session, err := requireSession(e)
	if err != nil {
		return err
	}

	stats, err := h.dashboard.AdminStats(e.Request.Context(), session)
	if err != nil {
		return toAPIError(err)
	}

	return e.JSON(http.StatusOK, stats)
}

func (h *AdminHandler) CreateEvent(e *core.RequestEvent) error {
	session, err := requireSession(e)
	if err != nil {
		return err
	}

	var draft models.EventDraft
	if err := e.BindBody(&draft); err != nil {
		return apis.NewBadRequestError("Invalid request body", err)
	}

	event, err := h.catalog.CreateEvent(e.Request.Context(), session, draft)
	if err != nil {
		return toAPIError(err)
	}

	return e.JSON(http.StatusCreated, event)
}

// GenerateSeats - Lay out the seat grid of an event that has none yet
func (h *AdminHandler) GenerateSeats(e *core.RequestEvent) error {
	session, err := requireSession(e)
	if err != nil {
		return err
	}

	var layout models.SeatLayout
	if err := e.BindBody(&layout); err != nil {
		return apis.NewBadRequestError("Invalid request body", err)
	}

	seats, err := h.catalog.GenerateSeats(e.Request.Context(), session, e.Request.PathValue("eventId"), layout)
	if err != nil {
		return toAPIError(err)
	}

	return e.JSON(http.StatusCreated, map[string]any{
		"event_id": e.Request.PathValue("eventId"),
		"seats":    seats,
		"count":    len(seats),
	})
}

func (h *AdminHandler) DeleteEvent(e *core.RequestEvent) error {
	session, err := requireSession(e)
	if err != nil {
		return err
	}

	if err := h.catalog.DeleteEvent(e.Request.Context(), session, e.Request.PathValue("eventId")); err != nil {
		return toAPIError(err)
	}

	return e.NoContent(http.StatusNoContent)
}

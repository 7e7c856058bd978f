package handlers

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"ticket-storefront/internal/services"
	"ticket-storefront/models"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
)

const maxPageSize = 100

type CatalogHandler struct {
	catalog *services.CatalogService
	seats   *services.SeatService
}

func NewCatalogHandler(catalog *services.CatalogService, seats *services.SeatService) *CatalogHandler {
	return &CatalogHandler{
		catalog: catalog,
		seats:   seats,
	}
}

// parseSearchFilters reads the catalog query string. Missing or empty
// parameters fall back to the pass-through defaults.
func parseSearchFilters(q url.Values) (models.SearchFilters, int, error) {
	f := models.DefaultSearchFilters()

	f.Query = strings.TrimSpace(q.Get("q"))
	if v := q.Get("category"); v != "" {
		f.Category = v
	}
	if v := q.Get("price"); v != "" {
		f.PriceRange = v
	}
	if v := q.Get("date"); v != "" {
		f.DateRange = v
	}
	if v := q.Get("venue"); v != "" {
		f.Venue = v
	}
	if v := q.Get("sort"); v != "" {
		f.SortBy = v
	}

	limit := 0
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return f, 0, apis.NewBadRequestError("Invalid limit", nil)
		}
		limit = min(n, maxPageSize)
	}

	return f, limit, nil
}

// ListEvents - Search the active catalog
func (h *CatalogHandler) ListEvents(e *core.RequestEvent) error {
	filters, limit, err := parseSearchFilters(e.Request.URL.Query())
	if err != nil {
		return err
	}

	page, err := h.catalog.Search(e.Request.Context(), filters, limit)
	if err != nil {
		return toAPIError(err)
	}

	return e.JSON(http.StatusOK, page)
}

func (h *CatalogHandler) GetEvent(e *core.RequestEvent) error {
	event, err := h.catalog.Get(e.Request.Context(), e.Request.PathValue("eventId"))
	if err != nil {
		return toAPIError(err)
	}

	return e.JSON(http.StatusOK, event)
}

// GetSeats - Seat map grouped by row, with holds overlaid for the caller
func (h *CatalogHandler) GetSeats(e *core.RequestEvent) error {
	grid, err := h.seats.SeatGrid(e.Request.Context(), sessionFromAuth(e), e.Request.PathValue("eventId"))
	if err != nil {
		return toAPIError(err)
	}

	return e.JSON(http.StatusOK, grid)
}

package services

import (
	"context"
	"testing"
	"time"

	"ticket-storefront/internal/status"
	"ticket-storefront/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCatalog(store Store) *CatalogService {
	svc := NewCatalogService(store, 3)
	svc.now = func() time.Time { return testNow }
	return svc
}

func TestCatalog_SearchOnlyActiveEventsAndPages(t *testing.T) {
	store := newFakeStore()
	for _, e := range catalogFixture() {
		store.addEvent(e)
	}
	off := searchEvent("off", "Cancelled Show", models.CategoryConcert, "Basement", "10", time.Hour, 0)
	off.Status = models.EventStatusCancelled
	store.addEvent(off)

	svc := newCatalog(store)

	page, err := svc.Search(context.Background(), models.DefaultSearchFilters(), 0)
	require.NoError(t, err)

	assert.Equal(t, 7, page.Total)
	assert.Equal(t, []string{"e5", "e4", "e1"}, ids(page.Events))
	assert.NotContains(t, page.Venues, "Basement")
	assert.Zero(t, page.ActiveFilters)

	f := models.DefaultSearchFilters()
	f.Category = models.CategoryConcert
	page, err = svc.Search(context.Background(), f, 10)
	require.NoError(t, err)
	assert.Equal(t, 4, page.Total)
	assert.Len(t, page.Events, 4)
	assert.Equal(t, 1, page.ActiveFilters)
}

func validDraft() models.EventDraft {
	return models.EventDraft{
		Title:      "Opening Night",
		Category:   models.CategoryTheater,
		VenueName:  "Globe",
		StartsAt:   testNow.Add(30 * 24 * time.Hour),
		BasePrice:  decimal.NewFromInt(35),
		TotalSeats: 0,
	}
}

func TestCatalog_CreateEvent(t *testing.T) {
	store := newFakeStore()
	svc := newCatalog(store)

	_, err := svc.CreateEvent(context.Background(), customer, validDraft())
	assert.ErrorIs(t, err, status.ErrForbidden)

	bad := validDraft()
	bad.Category = "opera"
	_, err = svc.CreateEvent(context.Background(), admin, bad)
	assert.ErrorIs(t, err, status.ErrInvalidEvent)

	created, err := svc.CreateEvent(context.Background(), admin, validDraft())
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, models.EventStatusActive, created.Status)

	got, err := svc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Opening Night", got.Title)
}

func TestCatalog_GenerateSeats(t *testing.T) {
	store := newFakeStore()
	svc := newCatalog(store)
	event, err := svc.CreateEvent(context.Background(), admin, validDraft())
	require.NoError(t, err)

	layout := models.SeatLayout{
		Rows:         4,
		SeatsPerRow:  5,
		VIPRows:      1,
		PremiumRows:  1,
		RegularPrice: decimal.NewFromInt(20),
		PremiumPrice: decimal.NewFromInt(35),
		VIPPrice:     decimal.NewFromInt(60),
	}

	_, err = svc.GenerateSeats(context.Background(), customer, event.ID, layout)
	assert.ErrorIs(t, err, status.ErrForbidden)

	_, err = svc.GenerateSeats(context.Background(), admin, event.ID, models.SeatLayout{})
	assert.ErrorIs(t, err, status.ErrInvalidSeatLayout)

	_, err = svc.GenerateSeats(context.Background(), admin, "missing", layout)
	assert.ErrorIs(t, err, status.ErrEventNotFound)

	seats, err := svc.GenerateSeats(context.Background(), admin, event.ID, layout)
	require.NoError(t, err)
	assert.Len(t, seats, 20)

	stored := store.event(event.ID)
	assert.Equal(t, 20, stored.TotalSeats)
	assert.Equal(t, 20, stored.AvailableSeats)

	listed, err := store.ListSeats(context.Background(), event.ID)
	require.NoError(t, err)
	assert.Equal(t, "A1", listed[0].Label())
	assert.Equal(t, models.SeatTypeVIP, listed[0].SeatType)
	assert.Equal(t, "D5", listed[19].Label())

	_, err = svc.GenerateSeats(context.Background(), admin, event.ID, layout)
	assert.ErrorIs(t, err, status.ErrSeatsAlreadyGenerated)
}

func TestCatalog_DeleteEvent(t *testing.T) {
	f := newBookingFixture(t)
	svc := newCatalog(f.store)
	empty := f.store.addEvent(models.Event{Title: "Empty", Category: models.CategoryMovie, StartsAt: testNow.Add(time.Hour)})
	f.store.addSeat(empty.ID, "A", 1, "9.00")

	bookBoth(t, f)

	assert.ErrorIs(t, svc.DeleteEvent(context.Background(), customer, empty.ID), status.ErrForbidden)
	assert.ErrorIs(t, svc.DeleteEvent(context.Background(), admin, f.event.ID), status.ErrEventHasBookings)
	assert.ErrorIs(t, svc.DeleteEvent(context.Background(), admin, "missing"), status.ErrEventNotFound)

	require.NoError(t, svc.DeleteEvent(context.Background(), admin, empty.ID))

	_, err := svc.Get(context.Background(), empty.ID)
	assert.ErrorIs(t, err, status.ErrEventNotFound)
	seats, err := f.store.ListSeats(context.Background(), empty.ID)
	require.NoError(t, err)
	assert.Empty(t, seats)
}

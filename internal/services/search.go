package services

import (
	"slices"
	"sort"
	"strings"
	"time"

	"ticket-storefront/models"

	"github.com/shopspring/decimal"
)

var (
	price25  = decimal.NewFromInt(25)
	price50  = decimal.NewFromInt(50)
	price100 = decimal.NewFromInt(100)
)

// FilterEvents applies the storefront search filters and sort order to
// events. The input slice is never modified.
func FilterEvents(events []models.Event, f models.SearchFilters, now time.Time) []models.Event {
	query := strings.ToLower(strings.TrimSpace(f.Query))

	out := make([]models.Event, 0, len(events))
	for _, e := range events {
		if query != "" && !matchesQuery(e, query) {
			continue
		}
		if isActive(f.Category) && e.Category != f.Category {
			continue
		}
		if isActive(f.Venue) && e.VenueName != f.Venue {
			continue
		}
		if isActive(f.PriceRange) && !inPriceRange(e.BasePrice, f.PriceRange) {
			continue
		}
		if isActive(f.DateRange) && !inDateRange(e.StartsAt, f.DateRange, now) {
			continue
		}
		out = append(out, e)
	}

	sortEvents(out, f.SortBy)
	return out
}

// ActiveFilterCount is the number of predicates that narrow the result.
func ActiveFilterCount(f models.SearchFilters) int {
	n := 0
	if strings.TrimSpace(f.Query) != "" {
		n++
	}
	for _, v := range []string{f.Category, f.PriceRange, f.DateRange, f.Venue} {
		if isActive(v) {
			n++
		}
	}
	return n
}

// Venues lists the distinct venue names, sorted.
func Venues(events []models.Event) []string {
	venues := make([]string, 0, len(events))
	for _, e := range events {
		if e.VenueName != "" {
			venues = append(venues, e.VenueName)
		}
	}
	slices.Sort(venues)
	return slices.Compact(venues)
}

func isActive(v string) bool {
	return v != "" && v != models.FilterAll
}

func matchesQuery(e models.Event, query string) bool {
	return strings.Contains(strings.ToLower(e.Title), query) ||
		strings.Contains(strings.ToLower(e.Description), query) ||
		strings.Contains(strings.ToLower(e.VenueName), query)
}

func inPriceRange(p decimal.Decimal, bracket string) bool {
	switch bracket {
	case models.PriceUnder25:
		return p.LessThan(price25)
	case models.Price25To50:
		return p.GreaterThanOrEqual(price25) && p.LessThanOrEqual(price50)
	case models.Price50To100:
		return p.GreaterThan(price50) && p.LessThanOrEqual(price100)
	case models.PriceOver100:
		return p.GreaterThan(price100)
	}
	return true
}

func inDateRange(t time.Time, bracket string, now time.Time) bool {
	t = t.In(now.Location())
	y, m, d := now.Date()

	switch bracket {
	case models.DateToday:
		ty, tm, td := t.Date()
		return ty == y && tm == m && td == d
	case models.DateThisWeek:
		return !t.Before(now) && !t.After(now.AddDate(0, 0, 7))
	case models.DateThisMonth:
		ty, tm, _ := t.Date()
		return ty == y && tm == m
	case models.DateNextMonth:
		start := time.Date(y, m+1, 1, 0, 0, 0, 0, now.Location())
		end := start.AddDate(0, 1, 0)
		return !t.Before(start) && t.Before(end)
	}
	return true
}

func sortEvents(events []models.Event, key string) {
	var less func(a, b models.Event) bool

	switch key {
	case models.SortDate:
		less = func(a, b models.Event) bool { return a.StartsAt.Before(b.StartsAt) }
	case models.SortPriceLow:
		less = func(a, b models.Event) bool { return a.BasePrice.LessThan(b.BasePrice) }
	case models.SortPriceHigh:
		less = func(a, b models.Event) bool { return a.BasePrice.GreaterThan(b.BasePrice) }
	case models.SortTitle:
		less = func(a, b models.Event) bool { return a.Title < b.Title }
	case models.SortPopularity:
		less = func(a, b models.Event) bool { return a.SeatsSold() > b.SeatsSold() }
	default:
		return
	}

	sort.SliceStable(events, func(i, j int) bool { return less(events[i], events[j]) })
}

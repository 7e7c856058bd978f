package models

// FilterAll disables a predicate.
const FilterAll = "all"

const (
	PriceUnder25 = "under-25"
	Price25To50  = "25-50"
	Price50To100 = "50-100"
	PriceOver100 = "over-100"
)

const (
	DateToday     = "today"
	DateThisWeek  = "this-week"
	DateThisMonth = "this-month"
	DateNextMonth = "next-month"
)

const (
	SortDate       = "date"
	SortPriceLow   = "price-low"
	SortPriceHigh  = "price-high"
	SortTitle      = "title"
	SortPopularity = "popularity"
)

type SearchFilters struct {
	Query      string `json:"q"`
	Category   string `json:"category"`
	PriceRange string `json:"price"`
	DateRange  string `json:"date"`
	Venue      string `json:"venue"`
	SortBy     string `json:"sort"`
}

// DefaultSearchFilters passes every event through in date order.
func DefaultSearchFilters() SearchFilters {
	return SearchFilters{
		Category:   FilterAll,
		PriceRange: FilterAll,
		DateRange:  FilterAll,
		Venue:      FilterAll,
		SortBy:     SortDate,
	}
}

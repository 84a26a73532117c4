package corpus

import "github.com/ahmednasr/restaurant-autocomplete/internal/models"

// DefaultPageSize is how many records one page of the listing holds.
const DefaultPageSize = 20

// Page is one window of the restaurant store.
type Page struct {
	Items  []models.Restaurant
	Number int // 1-based
	Size   int
	Total  int // records in the whole store
}

// TotalPages is ceil(Total/Size), never less than 1.
func (p Page) TotalPages() int {
	if p.Size <= 0 || p.Total <= 0 {
		return 1
	}
	return (p.Total + p.Size - 1) / p.Size
}

// Offset is the store offset of the page's first record.
func (p Page) Offset() int {
	return offset(p.Number, p.Size)
}

func offset(number, size int) int {
	if number < 1 {
		return 0
	}
	return (number - 1) * size
}

// clamp bounds n to [1, hi].
func clamp(n, hi int) int {
	if n > hi {
		n = hi
	}
	if n < 1 {
		n = 1
	}
	return n
}

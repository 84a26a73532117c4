package repository

import (
	"context"
	"sync"

	"github.com/ahmednasr/restaurant-autocomplete/internal/models"
)

// RestaurantMemory keeps restaurants in process memory.
type RestaurantMemory struct {
	mu   sync.RWMutex
	rows []models.Restaurant
}

// NewRestaurantMemory returns a store seeded with rows.
func NewRestaurantMemory(rows ...models.Restaurant) *RestaurantMemory {
	return &RestaurantMemory{rows: append([]models.Restaurant(nil), rows...)}
}

func (r *RestaurantMemory) All(ctx context.Context) ([]models.Restaurant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]models.Restaurant{}, r.rows...), nil
}

func (r *RestaurantMemory) List(ctx context.Context, limit, offset int) ([]models.Restaurant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return window(r.rows, limit, offset), nil
}

func (r *RestaurantMemory) Count(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rows), nil
}

func (r *RestaurantMemory) Insert(ctx context.Context, rest models.Restaurant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows = append(r.rows, rest)
	return nil
}

// window copies rows[offset:offset+limit], clipped to the slice. A limit of
// zero or less selects nothing.
func window(rows []models.Restaurant, limit, offset int) []models.Restaurant {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(rows) || limit <= 0 {
		return []models.Restaurant{}
	}
	if limit > len(rows)-offset {
		limit = len(rows) - offset
	}
	return append([]models.Restaurant{}, rows[offset:offset+limit]...)
}

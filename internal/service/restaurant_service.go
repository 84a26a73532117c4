package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/ahmednasr/restaurant-autocomplete/internal/logger"
	"github.com/ahmednasr/restaurant-autocomplete/internal/models"
)

// Sentinel errors callers may test with errors.Is.
var (
	ErrNotInitialized = errors.New("index not initialized")
	ErrAlreadyExists  = errors.New("restaurant already exists")
	ErrInvalidName    = errors.New("restaurant name is required")
)

// ---- Repository contract ---------------------------------------------------

// RestaurantRepository is the restaurant store. Implementations live in
// internal/repository (CSV file, MongoDB, memory).
type RestaurantRepository interface {
	All(ctx context.Context) ([]models.Restaurant, error)
	List(ctx context.Context, limit, offset int) ([]models.Restaurant, error)
	Count(ctx context.Context) (int, error)
	Insert(ctx context.Context, r models.Restaurant) error
}

// ---- Service interface + implementation ------------------------------------

// RestaurantService answers the four API operations on top of a store and an
// in-memory prefix index built by Initialize.
type RestaurantService interface {
	Initialize(ctx context.Context) (int, error)
	Initialized() bool
	Autocomplete(ctx context.Context, prefix string, limit int) (models.AutocompleteResponse, error)
	List(ctx context.Context, limit, offset int) (models.RestaurantListResponse, error)
	Add(ctx context.Context, name string, rating int) (string, error)
}

type entry struct {
	key    string // normalized name
	name   string
	rating int
}

type restaurantService struct {
	repo RestaurantRepository
	log  *zap.Logger

	addMu sync.Mutex // held across the duplicate check and the insert

	mu          sync.RWMutex
	index       []entry // sorted by key
	initialized bool
}

// NewRestaurantService wires the store. log may be nil.
func NewRestaurantService(repo RestaurantRepository, log *zap.Logger) RestaurantService {
	return &restaurantService{
		repo: repo,
		log:  logger.OrNop(log),
	}
}

// Initialize (re)builds the prefix index from the store and returns how many
// names it holds.
func (s *restaurantService) Initialize(ctx context.Context) (int, error) {
	rows, err := s.repo.All(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "load restaurants")
	}

	index := make([]entry, 0, len(rows))
	for _, r := range rows {
		index = append(index, entry{key: Normalize(r.DisplayName), name: r.DisplayName, rating: r.UserRatingCount})
	}
	sort.SliceStable(index, func(i, j int) bool { return index[i].key < index[j].key })

	s.mu.Lock()
	s.index = index
	s.initialized = true
	s.mu.Unlock()

	s.log.Info("index built", zap.Int("entries", len(index)))
	return len(index), nil
}

func (s *restaurantService) Initialized() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.initialized
}

// Autocomplete returns up to limit names starting with prefix, most rated first.
// Score is each hit's rating count relative to the best one returned.
func (s *restaurantService) Autocomplete(ctx context.Context, prefix string, limit int) (models.AutocompleteResponse, error) {
	s.mu.RLock()
	if !s.initialized {
		s.mu.RUnlock()
		return models.AutocompleteResponse{}, ErrNotInitialized
	}
	key := Normalize(prefix)
	start := sort.Search(len(s.index), func(i int) bool { return s.index[i].key >= key })
	var hits []entry
	for i := start; i < len(s.index) && strings.HasPrefix(s.index[i].key, key); i++ {
		hits = append(hits, s.index[i])
	}
	s.mu.RUnlock()

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].rating > hits[j].rating })
	total := len(hits)
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}

	maxRating := 0
	if len(hits) > 0 {
		maxRating = hits[0].rating
	}
	suggestions := make([]models.Suggestion, 0, len(hits))
	for _, h := range hits {
		score := 0.0
		if maxRating > 0 {
			score = math.Round(float64(h.rating)/float64(maxRating)*100) / 100
		}
		suggestions = append(suggestions, models.Suggestion{Name: h.name, RatingCount: h.rating, Score: score})
	}

	return models.AutocompleteResponse{
		Query:       prefix,
		Suggestions: suggestions,
		TotalCount:  total,
		Status:      models.StatusSuccess,
	}, nil
}

// List returns one window of the store plus its total size.
func (s *restaurantService) List(ctx context.Context, limit, offset int) (models.RestaurantListResponse, error) {
	rows, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		return models.RestaurantListResponse{}, errors.Wrap(err, "list restaurants")
	}
	total, err := s.repo.Count(ctx)
	if err != nil {
		return models.RestaurantListResponse{}, errors.Wrap(err, "count restaurants")
	}
	return models.RestaurantListResponse{Restaurants: rows, Total: total, Status: models.StatusSuccess}, nil
}

// Add stores a new restaurant and, when the index is built, makes it
// searchable at once. Names are compared in normalized form.
func (s *restaurantService) Add(ctx context.Context, name string, rating int) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrInvalidName
	}
	if rating < 0 {
		rating = 0
	}
	key := Normalize(name)

	s.addMu.Lock()
	defer s.addMu.Unlock()

	rows, err := s.repo.All(ctx)
	if err != nil {
		return "", errors.Wrap(err, "load restaurants")
	}
	for _, r := range rows {
		if Normalize(r.DisplayName) == key {
			return "", ErrAlreadyExists
		}
	}

	if err := s.repo.Insert(ctx, models.Restaurant{DisplayName: name, UserRatingCount: rating}); err != nil {
		return "", errors.Wrap(err, "store restaurant")
	}

	s.mu.Lock()
	if s.initialized {
		i := sort.Search(len(s.index), func(i int) bool { return s.index[i].key > key })
		s.index = append(s.index, entry{})
		copy(s.index[i+1:], s.index[i:])
		s.index[i] = entry{key: key, name: name, rating: rating}
	}
	s.mu.Unlock()

	s.log.Info("restaurant added", zap.String("name", name), zap.Int("rating", rating))
	return fmt.Sprintf("Added restaurant: %s", name), nil
}

var apostrophes = strings.NewReplacer("`", "'", "´", "'", "′", "'", "’", "'", "‘", "'")

// Normalize lower-cases s and folds apostrophe look-alikes to ASCII so
// "McDonald’s" and "mcdonald's" index the same.
func Normalize(s string) string {
	return apostrophes.Replace(strings.ToLower(s))
}

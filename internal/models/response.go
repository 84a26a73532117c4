package models

// Status is the outcome marker every API payload carries.
// A missing field decodes to the empty Status, which is neither success nor error.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Succeeded reports an explicit "success".
func (s Status) Succeeded() bool { return s == StatusSuccess }

// Failed reports an explicit "error".
func (s Status) Failed() bool { return s == StatusError }

// APIResponse is returned by POST /initialize and POST /restaurants.
type APIResponse struct {
	Status  Status `json:"status"`
	Message string `json:"message,omitempty"`
	Count   int    `json:"count,omitempty"`
}

// AutocompleteResponse is returned by GET /autocomplete.
type AutocompleteResponse struct {
	Query       string       `json:"query"`
	Suggestions []Suggestion `json:"suggestions"`
	TotalCount  int          `json:"total_count"`
	Status      Status       `json:"status"`
}

// RestaurantListResponse is returned by GET /restaurants.
type RestaurantListResponse struct {
	Restaurants []Restaurant `json:"restaurants"`
	Total       int          `json:"total"`
	Status      Status       `json:"status,omitempty"`
}

package models

// AutocompleteRequest is bound from GET /autocomplete query parameters.
type AutocompleteRequest struct {
	Prefix string `query:"prefix"` // required
	Limit  int    `query:"limit"`  // optional; default handled in handler
}

// ListRequest is bound from GET /restaurants query parameters.
type ListRequest struct {
	Limit  int `query:"limit"`
	Offset int `query:"offset"`
}

// AddRestaurantRequest is the JSON body of POST /restaurants.
type AddRestaurantRequest struct {
	Name   string `json:"name"`
	Rating int    `json:"rating"`
}

package models

// Restaurant is one record of the restaurant store.
type Restaurant struct {
	DisplayName     string `bson:"display_name"      json:"display_name"`
	UserRatingCount int    `bson:"user_rating_count" json:"user_rating_count"`
}

// Suggestion is a single autocomplete hit, ordered by the service (most relevant first).
type Suggestion struct {
	Name        string  `json:"name"`
	RatingCount int     `json:"rating_count"`
	Score       float64 `json:"score"` // rating count normalised to [0,1] within the result set
}

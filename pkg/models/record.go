package models

import "time"

const (
	CategoryMovie = "movie"
	CategoryBook  = "book"
	CategoryPlace = "place"
)

// Categories in display order. Top-category ties resolve to the
// first entry with the maximum count.
var Categories = []string{CategoryMovie, CategoryBook, CategoryPlace}

func ValidCategory(c string) bool {
	switch c {
	case CategoryMovie, CategoryBook, CategoryPlace:
		return true
	}
	return false
}

// Record is one review entry. Category decides which of the optional
// field groups below is populated; the others stay empty.
type Record struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Category  string    `json:"category"`
	Title     string    `json:"title"`
	Rating    int       `json:"rating"`
	Review    string    `json:"review,omitempty"`
	ImageURL  string    `json:"image_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// movie
	Director    string     `json:"director,omitempty"`
	Cast        []string   `json:"cast,omitempty"`
	DateWatched *time.Time `json:"date_watched,omitempty"`

	// book
	Author       string     `json:"author,omitempty"`
	Publisher    string     `json:"publisher,omitempty"`
	DateStarted  *time.Time `json:"date_started,omitempty"`
	DateFinished *time.Time `json:"date_finished,omitempty"`

	// place
	PlaceName   string     `json:"place_name,omitempty"`
	Location    string     `json:"location,omitempty"`
	DateVisited *time.Time `json:"date_visited,omitempty"`
}

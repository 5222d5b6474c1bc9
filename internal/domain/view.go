package domain

import "time"

// ViewRecord marks that a user has been counted toward a book's view
// statistic. One per (book, user) pair; the first view increments the
// counter, later views only refresh the timestamp.
type ViewRecord struct {
	LastViewedAt time.Time `json:"last_viewed_at"`
}

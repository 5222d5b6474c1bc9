// Package domain contains the core business entities and domain logic for the BookLend catalog.
package domain

// Popularity weights. The score is always recomputed from the full stats,
// never incrementally patched, so it can't drift from the counters.
const (
	viewWeight     = 1
	wishlistWeight = 5
	loanWeight     = 10
)

// Book is the canonical catalog record for a lendable title.
// The ID is externally assigned (it comes from the upstream metadata provider)
// and is stable across syncs.
type Book struct {
	Syncable
	Title            string   `json:"title"`
	Authors          []string `json:"authors"`
	PublishedDate    string   `json:"published_date,omitempty"`
	Description      string   `json:"description,omitempty"`
	ShortDescription string   `json:"short_description,omitempty"`
	CoverURL         string   `json:"cover_url"`
	PageCount        int      `json:"page_count"`
	Categories       []string `json:"categories,omitempty"`
	AverageRating    float64  `json:"average_rating"`
	Language         string   `json:"language,omitempty"`
	ISBN             string   `json:"isbn,omitempty"`
	PreviewLink      string   `json:"preview_link,omitempty"`

	Stock           Stock `json:"stock"`
	Stats           Stats `json:"stats"`
	PopularityScore int   `json:"popularity_score"`
}

// Stock tracks how many copies of a book exist and how many are on the shelf.
// Invariant: 0 <= Available <= Total.
type Stock struct {
	Total     int `json:"total"`
	Available int `json:"available"`
}

// ClampAvailable forces Available back into [0, Total].
func (s *Stock) ClampAvailable() {
	if s.Available < 0 {
		s.Available = 0
	}
	if s.Available > s.Total {
		s.Available = s.Total
	}
}

// Stats holds the engagement counters that drive popularity.
// All counters are non-negative.
type Stats struct {
	Views     int `json:"views"`
	Wishlists int `json:"wishlists"`
	Loans     int `json:"loans"`
}

// PopularityScore computes the weighted engagement score:
// views + wishlists*5 + loans*10.
func (s Stats) PopularityScore() int {
	return s.Views*viewWeight + s.Wishlists*wishlistWeight + s.Loans*loanWeight
}

// Floor clamps every counter at zero.
func (s *Stats) Floor() {
	if s.Views < 0 {
		s.Views = 0
	}
	if s.Wishlists < 0 {
		s.Wishlists = 0
	}
	if s.Loans < 0 {
		s.Loans = 0
	}
}

// RecalculatePopularity recomputes the stored popularity score from the
// current stats. Must be called on every stats mutation before writing back.
func (b *Book) RecalculatePopularity() {
	b.PopularityScore = b.Stats.PopularityScore()
}

// ApplyDescriptiveFields copies the descriptive metadata from src onto b,
// leaving stock, stats, and popularity untouched. This is the update half of
// the reconciler: a stale caller-provided snapshot must never reset live
// counters.
func (b *Book) ApplyDescriptiveFields(src *Book) {
	b.Title = src.Title
	b.Authors = src.Authors
	b.PublishedDate = src.PublishedDate
	b.Description = src.Description
	b.ShortDescription = src.ShortDescription
	b.CoverURL = src.CoverURL
	b.PageCount = src.PageCount
	b.Categories = src.Categories
	b.AverageRating = src.AverageRating
	b.Language = src.Language
	b.ISBN = src.ISBN
	b.PreviewLink = src.PreviewLink
}

// Snapshot returns the denormalized book view embedded in loans and wishlist
// items. Captured at creation time and never refreshed afterwards.
func (b *Book) Snapshot() BookSnapshot {
	return BookSnapshot{
		ID:               b.ID,
		Title:            b.Title,
		Authors:          b.Authors,
		CoverURL:         b.CoverURL,
		PublishedDate:    b.PublishedDate,
		ShortDescription: b.ShortDescription,
	}
}

// BookSnapshot is the frozen subset of book fields carried by loans and
// wishlist items for display without joins.
type BookSnapshot struct {
	ID               string   `json:"id"`
	Title            string   `json:"title"`
	Authors          []string `json:"authors"`
	CoverURL         string   `json:"cover_url"`
	PublishedDate    string   `json:"published_date,omitempty"`
	ShortDescription string   `json:"short_description,omitempty"`
}

// UserSnapshot is the frozen subset of user fields carried by loans and
// wishlist items.
type UserSnapshot struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

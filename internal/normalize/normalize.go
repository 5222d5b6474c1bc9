// Package normalize turns arbitrary, possibly partial book input into a
// canonical record with every field defaulted. It is pure and total: any
// input shape produces a valid record, and normalizing twice is the same as
// normalizing once.
package normalize

import (
	"strings"

	"github.com/booklendapp/booklend-server/internal/domain"
)

// Defaults applied to blank or missing fields.
const (
	DefaultTitle      = "Untitled"
	DefaultAuthor     = "Unknown Author"
	DefaultCoverURL   = "/book-placeholder.png"
	DefaultStockTotal = 5
)

// BookInput is the raw shape accepted from external callers and the metadata
// provider. Pointer fields distinguish "absent" from zero for stock, so a
// caller that omits stock gets the defaults rather than zero copies.
type BookInput struct {
	ID               string   `json:"id"`
	Title            string   `json:"title,omitempty"`
	Authors          []string `json:"authors,omitempty"`
	PublishedDate    string   `json:"published_date,omitempty"`
	Description      string   `json:"description,omitempty"`
	ShortDescription string   `json:"short_description,omitempty"`
	CoverURL         string   `json:"cover_url,omitempty"`
	PageCount        int      `json:"page_count,omitempty"`
	Categories       []string `json:"categories,omitempty"`
	AverageRating    float64  `json:"average_rating,omitempty"`
	Language         string   `json:"language,omitempty"`
	ISBN             string   `json:"isbn,omitempty"`
	PreviewLink      string   `json:"preview_link,omitempty"`

	StockTotal     *int `json:"stock_total,omitempty"`
	StockAvailable *int `json:"stock_available,omitempty"`
}

// Book produces the canonical book record for the given input. Stock and
// stats are normalized too, but the reconciler only persists them on first
// creation; updates never touch live counters.
func Book(in BookInput) *domain.Book {
	b := &domain.Book{
		Title:            strings.TrimSpace(in.Title),
		Authors:          cleanList(in.Authors),
		PublishedDate:    in.PublishedDate,
		Description:      in.Description,
		ShortDescription: in.ShortDescription,
		CoverURL:         strings.TrimSpace(in.CoverURL),
		PageCount:        in.PageCount,
		Categories:       cleanList(in.Categories),
		AverageRating:    in.AverageRating,
		Language:         in.Language,
		ISBN:             in.ISBN,
		PreviewLink:      in.PreviewLink,
	}
	b.ID = strings.TrimSpace(in.ID)

	if b.Title == "" {
		b.Title = DefaultTitle
	}
	if len(b.Authors) == 0 {
		b.Authors = []string{DefaultAuthor}
	}
	if b.CoverURL == "" {
		b.CoverURL = DefaultCoverURL
	}
	if b.PageCount < 0 {
		b.PageCount = 0
	}
	if b.AverageRating < 0 {
		b.AverageRating = 0
	}

	b.Stock = Stock(in.StockTotal, in.StockAvailable)
	b.Stats.Floor()
	b.RecalculatePopularity()

	return b
}

// Stock normalizes a total/available pair. Total defaults to
// DefaultStockTotal and is floored at 0; available defaults to total and is
// clamped into [0, total].
func Stock(total, available *int) domain.Stock {
	s := domain.Stock{Total: DefaultStockTotal}
	if total != nil {
		s.Total = *total
	}
	if s.Total < 0 {
		s.Total = 0
	}

	s.Available = s.Total
	if available != nil {
		s.Available = *available
	}
	s.ClampAvailable()

	return s
}

// Stats floors every counter at zero. Used by the stats mutator to sanitize
// the current counters before handing them to an updater.
func Stats(s domain.Stats) domain.Stats {
	s.Floor()
	return s
}

// cleanList trims entries and drops blanks, preserving order.
func cleanList(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

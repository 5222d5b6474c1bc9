package googlebooks

import (
	"errors"
	"strings"

	"github.com/booklendapp/booklend-server/internal/normalize"
)

// ErrVolumeNotFound is returned when a volume ID has no matching record.
var ErrVolumeNotFound = errors.New("volume not found")

// shortDescriptionLimit caps the teaser text embedded in list views.
const shortDescriptionLimit = 200

// convertVolume maps a Google Books volume onto the catalog input shape.
// Descriptions arrive as HTML and are converted to Markdown.
func convertVolume(v *volume) normalize.BookInput {
	info := &v.VolumeInfo

	description := htmlToMarkdown(info.Description)

	return normalize.BookInput{
		ID:               v.ID,
		Title:            info.Title,
		Authors:          info.Authors,
		PublishedDate:    info.PublishedDate,
		Description:      description,
		ShortDescription: shortDescription(description),
		CoverURL:         bestCoverURL(info.ImageLinks),
		PageCount:        info.PageCount,
		Categories:       info.Categories,
		AverageRating:    info.AverageRating,
		Language:         info.Language,
		ISBN:             bestISBN(info.IndustryIdentifiers),
		PreviewLink:      info.PreviewLink,
	}
}

// bestCoverURL prefers the larger thumbnail and upgrades the scheme; the API
// hands out http URLs that redirect anyway.
func bestCoverURL(links imageLinks) string {
	coverURL := links.Thumbnail
	if coverURL == "" {
		coverURL = links.SmallThumbnail
	}
	return strings.Replace(coverURL, "http://", "https://", 1)
}

// bestISBN prefers ISBN-13 over ISBN-10.
func bestISBN(ids []industryIdentifier) string {
	var isbn10 string
	for _, id := range ids {
		switch id.Type {
		case "ISBN_13":
			return id.Identifier
		case "ISBN_10":
			isbn10 = id.Identifier
		}
	}
	return isbn10
}

// shortDescription truncates to shortDescriptionLimit runes at a word
// boundary when possible.
func shortDescription(s string) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) <= shortDescriptionLimit {
		return s
	}

	truncated := string(runes[:shortDescriptionLimit])
	if idx := strings.LastIndex(truncated, " "); idx > shortDescriptionLimit/2 {
		truncated = truncated[:idx]
	}
	return truncated + "..."
}

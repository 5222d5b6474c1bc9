package providers

import (
	"github.com/samber/do/v2"

	"github.com/booklendapp/booklend-server/internal/config"
	"github.com/booklendapp/booklend-server/internal/logger"
	"github.com/booklendapp/booklend-server/internal/metadata/googlebooks"
)

// GoogleBooksClientHandle wraps the Google Books client with shutdown capability.
type GoogleBooksClientHandle struct {
	*googlebooks.Client
}

// Shutdown implements do.Shutdownable.
func (h *GoogleBooksClientHandle) Shutdown() error {
	h.Client.Close()
	return nil
}

// ProvideGoogleBooksClient provides the Google Books volumes API client.
func ProvideGoogleBooksClient(i do.Injector) (*GoogleBooksClientHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	client := googlebooks.NewClient(cfg.GoogleBooks.APIKey, cfg.GoogleBooks.Country, log.Logger)
	log.Info("Google Books client initialized",
		"country", cfg.GoogleBooks.Country,
		"authenticated", cfg.GoogleBooks.APIKey != "",
	)

	return &GoogleBooksClientHandle{Client: client}, nil
}

// Package server sets up the grabarr HTTP server.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"grabarr/internal/contracts"
	"grabarr/internal/domain/consts"
	"grabarr/internal/logging"
)

var (
	dm contracts.SessionManager
	mf contracts.MetadataFetcher
	hr contracts.HistoryReader
)

// Deps are the injected collaborators for the HTTP layer.
type Deps struct {
	Manager  contracts.SessionManager
	Metadata contracts.MetadataFetcher
	History  contracts.HistoryReader // nil hides the history endpoint
}

// NewRouter returns a http Handler.
func NewRouter(d Deps) http.Handler {
	// Inject collaborators
	dm = d.Manager
	mf = d.Metadata
	hr = d.History

	// Initialize router
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// --- API Routes ---
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/downloads", func(r chi.Router) {
			r.Post("/", handleStartDownload)
			r.Get("/", handleDirectDownload)
			r.Get("/{id}/events", handleProgressEvents)
			r.Delete("/{id}", handleCancelDownload)
		})

		r.Get("/metadata", handleMetadata)

		if hr != nil {
			r.Get("/history", handleHistory)
		}
	})

	return r
}

// Serve runs the HTTP server on addr until ctx is cancelled, then shuts
// down gracefully.
func Serve(ctx context.Context, addr string, d Deps) error {
	srv := &http.Server{
		Addr:        addr,
		Handler:     NewRouter(d),
		IdleTimeout: consts.ServerIdleTimeout,
	}

	errChan := make(chan error, 1)
	go func() {
		logging.L.Info().Str("addr", addr).Msg("grabarr server listening")
		errChan <- srv.ListenAndServe()
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

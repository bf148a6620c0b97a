package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ramonehamilton/pdc-decklist/internal/api/handlers"
	"github.com/ramonehamilton/pdc-decklist/internal/api/response"
)

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	// Health check endpoint (no versioning)
	s.router.Get("/health", s.healthCheck)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.healthCheck)

		if s.decks != nil {
			deckHandler := handlers.NewDeckHandler(s.decks)
			r.Route("/decks", func(r chi.Router) {
				r.Post("/render", deckHandler.RenderDeck)
				r.Post("/validate", deckHandler.ValidateDeck)
				r.Post("/export", deckHandler.ExportDeck)
			})
		}

		if s.cards != nil {
			cardHandler := handlers.NewCardHandler(s.cards)
			r.Route("/cards", func(r chi.Router) {
				r.Get("/named", cardHandler.GetCardByName)
				r.Get("/{set}/{number}", cardHandler.GetCardBySet)
			})
			r.Route("/cache", func(r chi.Router) {
				r.Delete("/", cardHandler.ClearCache)
				r.Delete("/cards/{name}", cardHandler.ClearCard)
			})
		}
	})
}

// healthCheck returns the server health status.
func (s *Server) healthCheck(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, map[string]string{
		"status": "ok",
	})
}

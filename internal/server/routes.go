package server

import (
	"database/sql"
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/swaggest/swgui/v5emb"

	"github.com/mysteryserved/tourquest/internal/store"
)

func addRoutes(r chi.Router, logger *slog.Logger, tours *store.TourStore, admin *AdminStore, db *sql.DB, spaDir string) {
	broker := NewBroker()
	sessions := NewSessionRegistry()

	r.Get("/openapi.json", handleOpenAPI())
	r.Mount("/docs", v5emb.New("TourQuest API", "/openapi.json", "/docs"))
	r.Get("/healthz", handleHealth(logger, db))

	// Player routes. Session token via Bearer header or ?token=.
	r.Route("/api/play", func(r chi.Router) {
		r.Get("/tours", handlePlayListTours(tours))
		r.Post("/tours/{tourID}/session", handlePlayCreateSession(tours, sessions, broker))
		r.Get("/session", handlePlayState(sessions))
		r.Post("/session/start", handlePlayStart(sessions))
		r.Post("/session/answer", handlePlayAnswer(sessions))
		r.Post("/session/skip", handlePlaySkip(sessions))
		r.Post("/session/advance", handlePlayAdvance(sessions))
		r.Post("/session/restart", handlePlayRestart(sessions))
		r.Get("/events", handleEvents(sessions, broker))
	})
	r.Get("/ws/play", handleWSEvents(logger, sessions, broker))

	r.Route("/api/admin", func(r chi.Router) {
		// Auth endpoints sit outside the session check.
		r.Post("/login", handleAdminLogin(admin))
		r.Post("/logout", handleAdminLogout(admin))
		r.Get("/me", handleAdminMe(admin))

		// Authoring requires the session cookie.
		r.Group(func(r chi.Router) {
			r.Use(adminAuthMiddleware(admin))

			r.Get("/tours", handleAdminListTours(tours))
			r.Post("/tours", handleAdminCreateTour(tours))
			r.Get("/tours/{id}", handleAdminGetTour(tours))
			r.Patch("/tours/{id}", handleAdminUpdateTour(tours))
			r.Delete("/tours/{id}", handleAdminDeleteTour(tours))
			r.Post("/tours/{id}/duplicate", handleAdminDuplicateTour(tours))

			r.Get("/tours/{id}/stops", handleAdminListStops(tours))
			r.Post("/tours/{id}/stops", handleAdminCreateStop(tours))
			r.Post("/tours/{id}/stops/reorder", handleAdminReorderStops(tours))
			r.Get("/stops/{stopID}", handleAdminGetStop(tours))
			r.Patch("/stops/{stopID}", handleAdminUpdateStop(tours))
			r.Delete("/stops/{stopID}", handleAdminDeleteStop(tours))

			r.Get("/sync/export", handleAdminExport(tours))
			r.Post("/sync/import", handleAdminImport(tours))
			r.Post("/sync/reset", handleAdminFactoryReset(tours))
		})
	})

	if spaDir != "" {
		if info, err := os.Stat(spaDir); err == nil && info.IsDir() {
			logger.Info("serving SPA", "dir", spaDir)
			r.NotFound(handleSPA(spaDir))
		}
	}
}

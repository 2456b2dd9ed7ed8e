package httpapi

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"roomstatus/internal/api"
	"roomstatus/internal/history"
	"roomstatus/internal/room"
	"roomstatus/internal/status"
	"roomstatus/internal/tracking"
	"roomstatus/pkg/config"
)

type Dependencies struct {
	Cfg      config.Config
	Tracking *tracking.Service
	Log      *slog.Logger
	// Ready backs /readyz; nil reports ready.
	Ready func(ctx context.Context) error
}

func NewRouter(deps Dependencies) http.Handler {
	log := deps.Log
	if log == nil {
		log = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(api.RequestLogger(log))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if deps.Ready != nil {
			if err := deps.Ready(r.Context()); err != nil {
				api.Logger(r.Context()).Warn("not ready", "err", err)
				api.WriteError(w, http.StatusServiceUnavailable, "NOT_READY", "database unavailable")
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	statusHandlers := status.Handlers{Tracking: deps.Tracking}
	roomHandlers := room.Handlers{Tracking: deps.Tracking}
	historyHandlers := history.Handlers{Tracking: deps.Tracking}

	// v1
	r.Route("/v1", func(r chi.Router) {
		// Back-office UI on a separate origin.
		r.Use(api.CORSMiddleware(api.CORSOptions{
			AllowedOrigins: deps.Cfg.AllowedOrigins,
			AllowedHeaders: []string{"Content-Type", "Authorization", "X-Staff-Id", "X-Staff-Name"},
			ExposedHeaders: []string{"Content-Disposition"},
			MaxAgeSeconds:  600,
		}))
		r.Use(api.StaffAuth(deps.Cfg))

		// Status catalog
		r.Get("/room-statuses", statusHandlers.List)
		r.Post("/room-statuses", statusHandlers.Create)
		r.Patch("/room-statuses/{id}", statusHandlers.Patch)
		r.Delete("/room-statuses/{id}", statusHandlers.Delete)

		// Rooms
		r.Get("/rooms", roomHandlers.List)
		r.Post("/rooms/{id}/status", roomHandlers.Transition)
		r.Post("/rooms/{id}/status/default", roomHandlers.AssignDefault)
		r.Get("/rooms/{id}/history", roomHandlers.History)

		// History
		r.Get("/room-status-history", historyHandlers.List)
		r.Get("/room-status-history/export", historyHandlers.Export)
	})

	return r
}

package api

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/iconidentify/farlinker/internal/api/handler"
	mw "github.com/iconidentify/farlinker/internal/api/middleware"
)

// Handlers groups the endpoint handlers mounted by NewRouter.
type Handlers struct {
	Preview *handler.PreviewHandler
	Image   *handler.ImageHandler
	Cast    *handler.CastHandler
	Health  *handler.HealthHandler
	// Metrics serves the Prometheus exposition; nil disables /metrics.
	Metrics http.Handler
}

// NewRouter creates the HTTP router with all routes configured.
func NewRouter(h Handlers, logger *slog.Logger) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CleanPath) // Normalize paths (e.g., //ready -> /ready)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(mw.Logger(logger))
	r.Use(mw.Recovery(logger))
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/health", h.Health.Live)
	r.Get("/ready", h.Health.Ready)
	if h.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", h.Metrics)
	}

	r.Get("/", handler.Index)

	r.Route("/api", func(r chi.Router) {
		r.Use(mw.CORS)

		r.Get("/og-post.png", h.Image.Post)
		r.Get("/og-image.png", h.Image.Profile)
		r.Get("/cast/{username}/{hash}", h.Cast.Get)
		r.Get("/stats", h.Health.Stats)
	})

	// Rewritten cast links: farcaster.xyz/{author}/{hash} -> farlinker.xyz/{author}/{hash}
	r.Get("/{author:[a-zA-Z0-9._-]+}/{hash:[a-zA-Z0-9]+}", h.Preview.Serve)

	r.NotFound(notFound)

	return r
}

// notFound keeps JSON errors for the API and sends any other unknown path
// back to the banner.
func notFound(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/api" || strings.HasPrefix(r.URL.Path, "/api/") {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"not found"}` + "\n"))
		return
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/Billy-Davies-2/fbb-draft-assistant/internal/auth"
)

// RouterOptions wires the HTTP surface
type RouterOptions struct {
	API         *APIHandlers
	Health      *Health
	Auth        auth.Provider
	CORSOrigins []string
	MCP         http.Handler // mounted at /mcp when set
}

// NewRouter builds the chi router. Reads are public; every mutation requires a login.
func NewRouter(opts RouterOptions) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)

	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Mcp-Session-Id"},
		ExposedHeaders:   []string{"Link", "Mcp-Session-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// long-lived streams stay outside the request timeout
	r.Get("/api/events", opts.API.Events)
	if opts.MCP != nil {
		r.Handle("/mcp", opts.MCP)
	}

	r.Group(func(r chi.Router) {
		r.Use(chimiddleware.Timeout(30 * time.Second))

		r.Get("/healthz", opts.Health.Liveness)
		r.Get("/readyz", opts.Health.Readiness)

		// Auth routes (public)
		r.Get("/auth/login", opts.Auth.LoginHandler)
		r.Get("/auth/callback", opts.Auth.CallbackHandler)
		r.Get("/auth/logout", opts.Auth.LogoutHandler)
		r.Method(http.MethodGet, "/auth/me", auth.MeHandler(opts.Auth))

		api := opts.API
		requireLogin := opts.Auth.Middleware
		r.Route("/api", func(r chi.Router) {
			r.Get("/players", api.ListPlayers)
			r.Get("/players/{id}/risk", api.PlayerRisk)
			r.Get("/tuning", api.Tuning)

			r.Get("/sessions", api.ListSessions)
			r.With(requireLogin).Post("/sessions", api.StartSession)

			r.Route("/sessions/{id}", func(r chi.Router) {
				r.Get("/", api.GetSession)
				r.Get("/recommendations", api.Recommendations)
				r.Get("/scarcity", api.Scarcity)
				r.Get("/needs", api.Needs)
				r.Get("/surplus", api.Surplus)
				r.Get("/predict", api.Predict)

				r.Group(func(r chi.Router) {
					r.Use(requireLogin)
					r.Post("/pick", api.Pick)
					r.Post("/undo", api.Undo)
					r.Post("/redo", api.Redo)
					r.Post("/undraft", api.Undraft)
					r.Post("/end", api.EndSession)
					r.Post("/import", api.Import)
				})
			})

			r.With(requireLogin).Post("/leagues/{league}/reset", api.ResetLeague)
		})
	})

	return r
}

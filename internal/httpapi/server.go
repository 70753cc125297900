package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
)

// NewRouter wires the REST surface. Health and metrics stay outside the
// authenticated group so probes and scrapers need no credentials.
func NewRouter(h *Handler, resolver ActorResolver, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	if len(allowedOrigins) > 0 {
		r.Use(cors.New(cors.Options{
			AllowedOrigins:   allowedOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
			AllowedHeaders:   []string{"Authorization", "Content-Type"},
			AllowCredentials: true,
		}).Handler)
	}

	r.Get("/health", handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(resolver))

		r.Post("/api/projects", h.createProject)
		r.Route("/api/projects/{projectID}", func(r chi.Router) {
			r.Get("/", h.getProject)
			r.Delete("/", h.deleteProject)
			r.Get("/gateway-mode", h.getGatewayMode)
			r.Put("/gateway-mode", h.setGatewayMode)
			r.Post("/members", h.addMember)

			r.Post("/servers", h.registerServer)
			r.Get("/servers", h.listServers)
			r.Delete("/servers/{serverID}", h.deleteServer)
			r.Post("/servers/{serverID}/sessions", h.openSession)
			r.Get("/servers/{serverID}/sessions", h.listActiveSessions)

			r.Get("/tools", h.listTools)
			r.Post("/tools/call", h.callTool)

			r.Get("/preferences", h.listPreferences)
			r.Put("/preferences", h.setPreference)
			r.Put("/preferences/bulk", h.bulkPreferences)
			r.Delete("/preferences", h.deletePreference)

			r.Get("/sessions", h.listSessions)
			r.Get("/sessions/{sessionID}", h.getSession)
			r.Delete("/sessions/{sessionID}", h.closeSession)
		})
	})

	return r
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

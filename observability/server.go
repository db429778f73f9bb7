package observability

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server is the optional HTTP surface a long `run` can expose: Prometheus
// scraping plus a liveness probe, nothing else — InferSim has no other
// external API (spec.md §6's Non-goals exclude a control plane).
type Server struct {
	router chi.Router
}

// NewServer builds the router. Call Handler to get an http.Handler, or
// wire it into your own http.Server.
func NewServer() *Server {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(5 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	return &Server{router: r}
}

// Handler returns the chi router as an http.Handler.
func (s *Server) Handler() http.Handler { return s.router }

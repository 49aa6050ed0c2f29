package dashboard

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/justin4957/seclab-dashboard/internal/logger"
)

// apiTimeout bounds API handlers. The websocket route is outside it.
const apiTimeout = 30 * time.Second

func (s *Server) routes() chi.Router {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(LoggerMiddleware(logger.Get()))
	router.Use(middleware.Recoverer)

	router.Get("/", s.handleIndex)
	router.Handle("/static/*", s.staticHandler())
	router.Get("/ws", s.handleWebSocket)
	router.Get("/healthz", s.handleHealth)
	router.Handle("/metrics", s.metrics.Handler())

	router.Route("/api", func(r chi.Router) {
		r.Use(middleware.Timeout(apiTimeout))
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.config.AllowedOrigins,
			AllowedMethods: []string{"GET", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			ExposedHeaders: []string{"Content-Disposition"},
			MaxAge:         300,
		}))

		r.Get("/view", s.handleView)
		r.Get("/export", s.handleExport)
		r.Get("/charts/severity.svg", s.handleSeverityChart)
		r.Get("/charts/trend/{frame}.svg", s.handleTrendChart)
	})

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "endpoint not found")
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	return router
}

// LoggerMiddleware logs every HTTP request
func LoggerMiddleware(l *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			defer func() {
				l.Debug("HTTP request",
					logger.String("request_id", middleware.GetReqID(r.Context())),
					logger.String("method", r.Method),
					logger.String("path", r.URL.Path),
					logger.String("remote_addr", r.RemoteAddr),
					logger.Int("status", ww.Status()),
					logger.Duration("duration", time.Since(start)),
				)
			}()
			next.ServeHTTP(ww, r)
		})
	}
}

package dashboard

import (
	"context"
	"embed"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/justin4957/seclab-dashboard/internal/analyzer"
	"github.com/justin4957/seclab-dashboard/internal/config"
	"github.com/justin4957/seclab-dashboard/internal/logger"
	"github.com/justin4957/seclab-dashboard/internal/metrics"
	"github.com/justin4957/seclab-dashboard/pkg/models"
)

//go:embed static/*
var staticFiles embed.FS

// ErrNoTable is returned when no event table has ever been loaded
var ErrNoTable = errors.New("event table not available")

// TableSource supplies the current event table. On a failed reload it may
// return the previous table together with the error.
type TableSource interface {
	Table() (*models.EventTable, error)
}

// Server provides the web dashboard
type Server struct {
	config   config.DashboardConfig
	tables   TableSource
	metrics  *metrics.Metrics
	renderer *analyzer.Renderer
	seed     uint64

	upgrader   websocket.Upgrader
	sessions   map[*Session]bool
	sessionsMu sync.RWMutex

	router chi.Router
}

// NewServer creates a new dashboard server. seed drives the explanation
// sampler of HTTP renders and of each session; 0 seeds from the clock.
func NewServer(cfg config.DashboardConfig, tables TableSource, m *metrics.Metrics, seed uint64) *Server {
	if m == nil {
		m = metrics.New()
	}

	s := &Server{
		config:   cfg,
		tables:   tables,
		metrics:  m,
		renderer: analyzer.NewRenderer(cfg.PreviewRows, analyzer.NewSampler(seed)),
		seed:     seed,
		sessions: make(map[*Session]bool),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin:     s.checkOrigin,
	}
	s.router = s.routes()
	return s
}

// Handler returns the HTTP handler of the dashboard
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves the dashboard until ctx is cancelled. Every path received on
// reloads causes all sessions to be re-rendered against the fresh table.
func (s *Server) Start(ctx context.Context, reloads <-chan string) error {
	go s.handleReloads(ctx, reloads)

	server := &http.Server{
		Addr:         s.config.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Dashboard server listening", logger.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.closeSessions()
	return server.Shutdown(shutdownCtx)
}

func (s *Server) handleReloads(ctx context.Context, reloads <-chan string) {
	if reloads == nil {
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case path, ok := <-reloads:
			if !ok {
				return
			}
			logger.Info("Event file changed, refreshing sessions", logger.String("path", path))
			s.broadcastReload()
		}
	}
}

// broadcastReload resets every session to the default selection of the
// fresh table and pushes a new view
func (s *Server) broadcastReload() {
	table, err := s.table()
	if err != nil && table == nil {
		logger.Error("Reload failed and no table is cached", logger.Err(err))
		return
	}
	if err != nil {
		logger.Warn("Reload failed, keeping previous table", logger.Err(err))
	}

	s.sessionsMu.RLock()
	sessions := make([]*Session, 0, len(s.sessions))
	for sess := range s.sessions {
		sessions = append(sessions, sess)
	}
	s.sessionsMu.RUnlock()

	for _, sess := range sessions {
		if err := sess.Reset(table, "reload"); err != nil {
			logger.Warn("WebSocket write error", logger.String("session", sess.ID()), logger.Err(err))
			sess.Close()
			s.removeSession(sess)
		}
	}
}

// table fetches the current table, tolerating a failed reload when an older
// table is still available
func (s *Server) table() (*models.EventTable, error) {
	table, err := s.tables.Table()
	if table == nil {
		if err == nil {
			err = ErrNoTable
		}
		return nil, err
	}
	return table, err
}

func (s *Server) addSession(sess *Session) {
	s.sessionsMu.Lock()
	s.sessions[sess] = true
	s.sessionsMu.Unlock()
	s.metrics.SessionOpened()
}

func (s *Server) removeSession(sess *Session) {
	s.sessionsMu.Lock()
	defer s.sessionsMu.Unlock()
	if _, ok := s.sessions[sess]; !ok {
		return
	}
	delete(s.sessions, sess)
	s.metrics.SessionClosed()
}

func (s *Server) closeSessions() {
	s.sessionsMu.Lock()
	defer s.sessionsMu.Unlock()
	for sess := range s.sessions {
		sess.Close()
		delete(s.sessions, sess)
		s.metrics.SessionClosed()
	}
}

// SessionCount returns the number of connected sessions
func (s *Server) SessionCount() int {
	s.sessionsMu.RLock()
	defer s.sessionsMu.RUnlock()
	return len(s.sessions)
}

// checkOrigin accepts same-host requests, requests without an Origin header
// and the configured origins
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	if strings.EqualFold(u.Host, r.Host) {
		return true
	}
	for _, allowed := range s.config.AllowedOrigins {
		if allowed == "*" || strings.EqualFold(allowed, origin) {
			return true
		}
	}
	return false
}

package dashboard

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/justin4957/seclab-dashboard/internal/analyzer"
	"github.com/justin4957/seclab-dashboard/internal/logger"
	"github.com/justin4957/seclab-dashboard/internal/metrics"
	"github.com/justin4957/seclab-dashboard/pkg/models"
)

// Message types exchanged over the websocket
const (
	MessageSelection = "selection"
	MessageReset     = "reset"
	MessageView      = "view"
	MessageError     = "error"
)

const writeWait = 10 * time.Second

// ClientMessage is sent by the page. A nil dimension in Selection keeps
// every value of that dimension; an empty list selects none.
type ClientMessage struct {
	Type      string           `json:"type"`
	Selection *SelectionUpdate `json:"selection,omitempty"`
}

// SelectionUpdate is the selection as sent by the page
type SelectionUpdate struct {
	Countries   *[]string `json:"countries"`
	AttackTypes *[]string `json:"attack_types"`
	Severities  *[]string `json:"severities"`
}

// ServerMessage is pushed to the page
type ServerMessage struct {
	Type    string            `json:"type"`
	Session string            `json:"session"`
	Trigger string            `json:"trigger,omitempty"`
	View    *models.ViewModel `json:"view,omitempty"`
	Error   string            `json:"error,omitempty"`
}

// Session is one browser connection with its own selection and sampler
type Session struct {
	id       uuid.UUID
	conn     *websocket.Conn
	renderer *analyzer.Renderer
	metrics  *metrics.Metrics

	mu        sync.Mutex
	selection models.Selection
	closed    bool
}

func newSession(conn *websocket.Conn, seed uint64, previewRows int, m *metrics.Metrics) *Session {
	id := uuid.New()
	if seed != 0 {
		// distinct but reproducible stream per session
		seed ^= uint64(id.ID())
	}
	return &Session{
		id:       id,
		conn:     conn,
		renderer: analyzer.NewRenderer(previewRows, analyzer.NewSampler(seed)),
		metrics:  m,
	}
}

// ID returns the session identifier
func (sess *Session) ID() string {
	return sess.id.String()
}

// Selection returns the current selection
func (sess *Session) Selection() models.Selection {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.selection
}

// Reset selects everything in table and pushes the resulting view
func (sess *Session) Reset(table *models.EventTable, trigger string) error {
	return sess.apply(table, analyzer.DefaultSelection(table), trigger)
}

// Update merges an update into the current selection and pushes the view
func (sess *Session) Update(table *models.EventTable, update *SelectionUpdate) error {
	sel := sess.Selection()
	if update != nil {
		all := analyzer.DefaultSelection(table)
		sel = models.Selection{
			Countries:   pick(update.Countries, all.Countries),
			AttackTypes: pick(update.AttackTypes, all.AttackTypes),
			Severities:  pick(update.Severities, all.Severities),
		}
	}
	return sess.apply(table, sel, MessageSelection)
}

func pick(values *[]string, all []string) []string {
	if values == nil {
		return all
	}
	return *values
}

// apply renders and sends under the session lock so views reach the page in
// the order their selections were applied
func (sess *Session) apply(table *models.EventTable, sel models.Selection, trigger string) error {
	sess.mu.Lock()
	defer sess.mu.Unlock()

	start := time.Now()
	view := sess.renderer.Render(table, sel)
	sess.metrics.ObserveRender(trigger, time.Since(start))
	sess.selection = view.Selection

	return sess.writeLocked(ServerMessage{
		Type:    MessageView,
		Session: sess.ID(),
		Trigger: trigger,
		View:    &view,
	})
}

// SendError reports a problem without closing the session
func (sess *Session) SendError(message string) error {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.writeLocked(ServerMessage{Type: MessageError, Session: sess.ID(), Error: message})
}

func (sess *Session) writeLocked(msg ServerMessage) error {
	if sess.closed {
		return websocket.ErrCloseSent
	}
	sess.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return sess.conn.WriteJSON(msg)
}

// Close closes the underlying connection
func (sess *Session) Close() {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.closed {
		return
	}
	sess.closed = true
	sess.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
	sess.conn.Close()
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("WebSocket upgrade error", logger.Err(err))
		return
	}

	sess := newSession(conn, s.seed, s.config.PreviewRows, s.metrics)
	s.addSession(sess)
	defer func() {
		sess.Close()
		s.removeSession(sess)
		logger.Info("WebSocket client disconnected", logger.String("session", sess.ID()))
	}()

	logger.Info("WebSocket client connected",
		logger.String("session", sess.ID()),
		logger.String("remote_addr", r.RemoteAddr))

	table, err := s.table()
	if table == nil {
		logger.Error("No event table available", logger.Err(err))
		sess.SendError("event data unavailable")
		return
	}
	if err := sess.Reset(table, "connect"); err != nil {
		logger.Warn("WebSocket write error", logger.String("session", sess.ID()), logger.Err(err))
		return
	}

	for {
		var msg ClientMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Warn("WebSocket read error", logger.String("session", sess.ID()), logger.Err(err))
			}
			return
		}

		table, err := s.table()
		if table == nil {
			if sendErr := sess.SendError("event data unavailable"); sendErr != nil {
				return
			}
			logger.Error("No event table available", logger.Err(err))
			continue
		}

		switch msg.Type {
		case MessageSelection:
			err = sess.Update(table, msg.Selection)
		case MessageReset:
			err = sess.Reset(table, MessageReset)
		default:
			err = sess.SendError("unknown message type: " + msg.Type)
		}
		if err != nil {
			logger.Warn("WebSocket write error", logger.String("session", sess.ID()), logger.Err(err))
			return
		}
	}
}

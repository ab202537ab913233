package http

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	profileUC "github.com/khoahotran/codejourney/internal/application/usecase/profile"
	"github.com/khoahotran/codejourney/internal/domain/session"
	"github.com/khoahotran/codejourney/pkg/apperror"
	"github.com/khoahotran/codejourney/pkg/logger"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	subscriberBuf  = 16
	maxClientFrame = 512
)

type subscriber struct {
	send chan session.View
}

// SessionHub fans session views out to the websocket connections of that session.
// It implements service.SessionNotifier.
type SessionHub struct {
	mu       sync.RWMutex
	subs     map[uuid.UUID]map[*subscriber]struct{}
	logger   logger.Logger
	location *time.Location
	upgrader websocket.Upgrader
}

func NewSessionHub(log logger.Logger) *SessionHub {
	return &SessionHub{
		subs:     make(map[uuid.UUID]map[*subscriber]struct{}),
		logger:   log,
		location: time.Local,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Notify never blocks: a subscriber whose buffer is full misses the view. The next
// change carries the whole state anyway.
func (h *SessionHub) Notify(v session.View) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.subs[v.SessionID] {
		select {
		case sub.send <- v:
		default:
			h.logger.Warn("Session subscriber is slow, drop view", zap.String("session_id", v.SessionID.String()))
		}
	}
}

func (h *SessionHub) subscribe(id uuid.UUID) *subscriber {
	sub := &subscriber{send: make(chan session.View, subscriberBuf)}
	h.mu.Lock()
	if h.subs[id] == nil {
		h.subs[id] = make(map[*subscriber]struct{})
	}
	h.subs[id][sub] = struct{}{}
	h.mu.Unlock()
	return sub
}

func (h *SessionHub) unsubscribe(id uuid.UUID, sub *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[id][sub]; !ok {
		return
	}
	delete(h.subs[id], sub)
	if len(h.subs[id]) == 0 {
		delete(h.subs, id)
	}
	close(sub.send)
}

// Subscribers reports the number of open connections of a session.
func (h *SessionHub) Subscribers(id uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[id])
}

// Close drops every subscriber; their connections finish on the closed channels.
func (h *SessionHub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, subs := range h.subs {
		for sub := range subs {
			close(sub.send)
		}
		delete(h.subs, id)
	}
}

// Stream upgrades the request and pushes the current view followed by every change.
func (h *SessionHub) Stream(uc *profileUC.ProfileUseCase) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, ok := GetSessionIDFromGinContext(c)
		if !ok {
			c.Error(apperror.NewUnauthorized("sessionID not found in context", nil))
			return
		}

		current, err := uc.ExecuteGetView(c.Request.Context(), sessionID)
		if err != nil {
			c.Error(err)
			return
		}

		conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			h.logger.Warn("Websocket upgrade failed", zap.Error(err))
			return
		}

		sub := h.subscribe(sessionID)
		l := h.logger.With(zap.String("session_id", sessionID.String()))
		l.Debug("Session stream opened")

		go h.readPump(conn, sessionID, sub)
		h.writePump(conn, current, sub, l)
		l.Debug("Session stream closed")
	}
}

// readPump only watches for the client going away.
func (h *SessionHub) readPump(conn *websocket.Conn, id uuid.UUID, sub *subscriber) {
	defer h.unsubscribe(id, sub)

	conn.SetReadLimit(maxClientFrame)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *SessionHub) writePump(conn *websocket.Conn, first *session.View, sub *subscriber, l logger.Logger) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = conn.Close()
	}()

	if err := h.writeView(conn, *first); err != nil {
		l.Debug("Write initial view failed", zap.Error(err))
		return
	}

	for {
		select {
		case v, ok := <-sub.send:
			if !ok {
				_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
				_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := h.writeView(conn, v); err != nil {
				l.Debug("Write view failed", zap.Error(err))
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *SessionHub) writeView(conn *websocket.Conn, v session.View) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(ToSessionDTO(&v, h.location))
}

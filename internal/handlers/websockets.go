package handlers

import (
	"net/http"
	"strconv"
	"time"

	"treadmill_pacer/internal/events"
	"treadmill_pacer/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	writeWait    = 10 * time.Second
	pongWait     = 60 * time.Second
	pingPeriod   = (pongWait * 9) / 10
	maxMsgSize   = 1 << 12
	streamBuffer = 16

	defaultInterval = time.Second
	maxInterval     = 10 * time.Second
)

// Envelope types.
const (
	msgStatus    = "status"
	msgCompleted = "completed"
	msgRecovery  = "recovery"
)

type wsEnvelope struct {
	Type  string      `json:"type"`
	Data  interface{} `json:"data,omitempty"`
	Error string      `json:"error,omitempty"`
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// subscribe tolerates a nil feed; a nil channel never fires in select.
func subscribe[T any](f *events.Feed[T]) (<-chan T, func()) {
	if f == nil {
		return nil, func() {}
	}
	return f.Subscribe(streamBuffer)
}

// streamInterval reads ?interval=2s or ?interval_ms=2000. Values outside
// (0, maxInterval] fall back to the next option, then to defaultInterval.
func streamInterval(c *gin.Context) time.Duration {
	if d, err := time.ParseDuration(c.Query("interval")); err == nil && d > 0 && d <= maxInterval {
		return d
	}
	if ms, err := strconv.Atoi(c.Query("interval_ms")); err == nil {
		if d := time.Duration(ms) * time.Millisecond; d > 0 && d <= maxInterval {
			return d
		}
	}
	return defaultInterval
}

// wsClient is one connected websocket peer.
type wsClient struct {
	conn *websocket.Conn
	log  *logger.Logger
}

func (w *wsClient) write(env wsEnvelope) error {
	_ = w.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return w.conn.WriteJSON(env)
}

func (w *wsClient) ping() error {
	_ = w.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return w.conn.WriteMessage(websocket.PingMessage, nil)
}

// drain consumes inbound frames so pongs and close frames are processed.
// closed is closed once the peer goes away.
func (w *wsClient) drain(closed chan<- struct{}) {
	defer close(closed)
	w.conn.SetReadLimit(maxMsgSize)
	_ = w.conn.SetReadDeadline(time.Now().Add(pongWait))
	w.conn.SetPongHandler(func(string) error {
		return w.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := w.conn.ReadMessage(); err != nil {
			w.log.Debugw("ws_read_closed", "err", err)
			return
		}
	}
}

// wsConnect streams controller updates to the client. The current status is
// sent on connect and again every interval while the status feed is quiet.
func (h *Handler) wsConnect(c *gin.Context) {
	interval := streamInterval(c)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		if h.log != nil {
			h.log.Errorw("ws_upgrade_failed", "err", err)
		}
		return
	}
	defer func() { _ = conn.Close() }()

	client := &wsClient{conn: conn, log: logger.OrNop(h.log)}
	closed := make(chan struct{})
	go client.drain(closed)

	statusCh, unsubStatus := subscribe(h.streams.Status)
	defer unsubStatus()
	completedCh, unsubCompleted := subscribe(h.streams.Completed)
	defer unsubCompleted()
	recoveryCh, unsubRecovery := subscribe(h.streams.Recovery)
	defer unsubRecovery()

	refresh := time.NewTicker(interval)
	defer refresh.Stop()
	keepalive := time.NewTicker(pingPeriod)
	defer keepalive.Stop()

	if err := client.write(h.statusEnvelope(c)); err != nil {
		client.log.Infow("ws_write_failed", "err", err, "type", msgStatus)
		return
	}
	lastStatus := time.Now()

	for {
		var env wsEnvelope
		select {
		case <-closed:
			return
		case <-c.Request.Context().Done():
			return
		case <-keepalive.C:
			if err := client.ping(); err != nil {
				client.log.Infow("ws_ping_failed", "err", err)
				return
			}
			continue
		case <-refresh.C:
			if time.Since(lastStatus) < interval {
				continue
			}
			env = h.statusEnvelope(c)
			lastStatus = time.Now()
		case st, ok := <-statusCh:
			if !ok {
				statusCh = nil
				continue
			}
			env = wsEnvelope{Type: msgStatus, Data: st}
			lastStatus = time.Now()
		case comp, ok := <-completedCh:
			if !ok {
				completedCh = nil
				continue
			}
			env = wsEnvelope{Type: msgCompleted, Data: comp, Error: comp.Error}
		case rec, ok := <-recoveryCh:
			if !ok {
				recoveryCh = nil
				continue
			}
			env = wsEnvelope{Type: msgRecovery, Data: rec}
		}
		if err := client.write(env); err != nil {
			client.log.Infow("ws_write_failed", "err", err, "type", env.Type)
			return
		}
	}
}

// statusEnvelope snapshots the controller, or reports that none is wired.
func (h *Handler) statusEnvelope(c *gin.Context) wsEnvelope {
	if h.services == nil || h.services.Pacer == nil {
		return wsEnvelope{Type: msgStatus, Error: "pacer unavailable"}
	}
	return wsEnvelope{Type: msgStatus, Data: h.services.Pacer.State(c.Request.Context())}
}

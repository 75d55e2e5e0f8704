package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"treadmill_pacer/internal/events"
	"treadmill_pacer/internal/models"
	"treadmill_pacer/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

func TestStreamInterval(t *testing.T) {
	cases := []struct {
		name string
		u    string
		want time.Duration
	}{
		{"default_when_missing", "/ws", 1 * time.Second},
		{"interval_string_valid", "/ws?interval=200ms", 200 * time.Millisecond},
		{"interval_ms_valid", "/ws?interval_ms=150", 150 * time.Millisecond},
		{"interval_too_large", "/ws?interval=20s", 1 * time.Second},
		{"interval_ms_too_large", "/ws?interval_ms=20000", 1 * time.Second},
		{"interval_invalid_string", "/ws?interval=bogus", 1 * time.Second},
		{"interval_ms_invalid", "/ws?interval_ms=NaN", 1 * time.Second},
		{"interval_negative", "/ws?interval=-1s", 1 * time.Second},
		{"interval_ms_zero", "/ws?interval_ms=0", 1 * time.Second},
		{"both_present_interval_wins", "/ws?interval=2s&interval_ms=150", 2 * time.Second},
		{"both_present_invalid_interval_ms_used", "/ws?interval=bogus&interval_ms=250", 250 * time.Millisecond},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, tc.u, nil)
			c, _ := gin.CreateTestContext(w)
			c.Request = req
			got := streamInterval(c)
			if got != tc.want {
				t.Fatalf("got %v, want %v for %s", got, tc.want, tc.u)
			}
		})
	}
}

type envelope struct {
	Type  string          `json:"type"`
	Data  json.RawMessage `json:"data"`
	Error string          `json:"error"`
}

func dialWS(t *testing.T, s *service.Service, streams Streams, query url.Values) *websocket.Conn {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewHandler(s, streams, nil)
	r.GET("/ws", h.wsConnect)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	u, _ := url.Parse(srv.URL)
	u.Scheme = "ws"
	u.Path = "/ws"
	u.RawQuery = query.Encode()

	dialer := websocket.Dialer{HandshakeTimeout: 2 * time.Second}
	conn, _, err := dialer.Dial(u.String(), nil)
	if err != nil {
		t.Fatalf("dial error: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readEnvelope(t *testing.T, conn *websocket.Conn) envelope {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(1 * time.Second))
	var env envelope
	if err := conn.ReadJSON(&env); err != nil {
		t.Fatalf("read: %v", err)
	}
	return env
}

// readUntil skips periodic status frames until a frame of type typ arrives.
func readUntil(t *testing.T, conn *websocket.Conn, typ string) envelope {
	t.Helper()
	for i := 0; i < 50; i++ {
		if env := readEnvelope(t, conn); env.Type == typ {
			return env
		}
	}
	t.Fatalf("no %q frame received", typ)
	return envelope{}
}

func TestWebSocket_StateStream_InitialAndPeriodic(t *testing.T) {
	p := &mockPacer{state: models.StatusUpdate{
		SessionID: "s1",
		Phase:     models.PhaseActive,
		Level:     5,
		Treadmill: models.TreadmillState{CurrentSpeed: 5.5, DistanceCovered: 120, Running: true},
	}}
	conn := dialWS(t, &service.Service{Pacer: p}, Streams{}, url.Values{"interval_ms": {"20"}})

	env := readEnvelope(t, conn)
	if env.Type != msgStatus || len(env.Data) == 0 {
		t.Fatalf("bad envelope: %+v", env)
	}
	var st models.StatusUpdate
	if err := json.Unmarshal(env.Data, &st); err != nil {
		t.Fatalf("unmarshal state: %v", err)
	}
	if st.Phase != models.PhaseActive || st.Treadmill.CurrentSpeed != 5.5 || !st.Treadmill.Running {
		t.Fatalf("unexpected state: %+v", st)
	}

	// A subsequent periodic frame
	if env := readEnvelope(t, conn); env.Type != msgStatus {
		t.Fatalf("expected type=status, got %+v", env)
	}
}

func TestWebSocket_ForwardsFeeds(t *testing.T) {
	streams := Streams{
		Status:    events.NewFeed[models.StatusUpdate](),
		Completed: events.NewFeed[models.Completion](),
		Recovery:  events.NewFeed[models.RecoveryUpdate](),
	}
	p := &mockPacer{state: models.StatusUpdate{Phase: models.PhaseIdle}}
	conn := dialWS(t, &service.Service{Pacer: p}, streams, url.Values{"interval": {"10s"}})

	if env := readEnvelope(t, conn); env.Type != msgStatus {
		t.Fatalf("expected initial status, got %+v", env)
	}
	// The handler subscribes before the first write, so feeds are live now.
	streams.Completed.Publish(models.Completion{SessionID: "s1", Reason: models.ReasonHeartRateStop})
	env := readUntil(t, conn, msgCompleted)
	var done models.Completion
	if err := json.Unmarshal(env.Data, &done); err != nil {
		t.Fatalf("unmarshal completion: %v", err)
	}
	if done.SessionID != "s1" || done.Reason != models.ReasonHeartRateStop {
		t.Fatalf("unexpected completion: %+v", done)
	}

	streams.Recovery.Publish(models.RecoveryUpdate{SessionID: "s1", SecondsLeft: 59, Average: 120, HasData: true})
	env = readUntil(t, conn, msgRecovery)
	var rec models.RecoveryUpdate
	if err := json.Unmarshal(env.Data, &rec); err != nil {
		t.Fatalf("unmarshal recovery: %v", err)
	}
	if rec.SecondsLeft != 59 || !rec.HasData {
		t.Fatalf("unexpected recovery: %+v", rec)
	}

	streams.Status.Publish(models.StatusUpdate{SessionID: "s2", Phase: models.PhaseDecelerating})
	env = readUntil(t, conn, msgStatus)
	var st models.StatusUpdate
	if err := json.Unmarshal(env.Data, &st); err != nil {
		t.Fatalf("unmarshal status: %v", err)
	}
	if st.Phase != models.PhaseDecelerating {
		t.Fatalf("unexpected status: %+v", st)
	}
}

func TestWebSocket_ClosingUnsubscribes(t *testing.T) {
	streams := Streams{Completed: events.NewFeed[models.Completion]()}
	conn := dialWS(t, &service.Service{Pacer: &mockPacer{}}, streams, url.Values{})
	_ = readEnvelope(t, conn)

	_ = conn.Close()
	deadline := time.Now().Add(2 * time.Second)
	for streams.Completed.Subscribers() != 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if n := streams.Completed.Subscribers(); n != 0 {
		t.Fatalf("subscribers after close: %d", n)
	}
}

func TestWebSocket_WithoutPacerReportsError(t *testing.T) {
	conn := dialWS(t, &service.Service{}, Streams{}, url.Values{})
	env := readEnvelope(t, conn)
	if env.Type != msgStatus || env.Error == "" {
		t.Fatalf("expected error envelope, got %+v", env)
	}
}

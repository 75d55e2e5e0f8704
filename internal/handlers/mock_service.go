package handlers

import (
	"context"
	"io"
	"net/http"
	"time"

	"treadmill_pacer/internal/curve"
	"treadmill_pacer/internal/models"
	"treadmill_pacer/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockAuth struct {
	signUpID      int
	signUpErr     error
	genTokenToken string
	genTokenErr   error
	parseID       int
	parseErr      error

	lastSignUpUsername string
	lastSignUpPassword string
	lastSignUpAge      int
	lastGenUsername    string
	lastGenPassword    string
	lastParseToken     string
}

func (m *mockAuth) SignUp(username, password string, age int) (int, error) {
	m.lastSignUpUsername = username
	m.lastSignUpPassword = password
	m.lastSignUpAge = age
	return m.signUpID, m.signUpErr
}
func (m *mockAuth) GenerateToken(username, password string) (string, error) {
	m.lastGenUsername = username
	m.lastGenPassword = password
	return m.genTokenToken, m.genTokenErr
}
func (m *mockAuth) ParseToken(token string) (int, error) {
	m.lastParseToken = token
	return m.parseID, m.parseErr
}
func (m *mockAuth) Athlete(id int) (*models.Athlete, error) {
	return &models.Athlete{ID: id}, nil
}

type mockPacer struct {
	startState  models.StatusUpdate
	startErr    error
	stopDone    models.Completion
	stopErr     error
	state       models.StatusUpdate
	curves      curve.Table
	startCalled int
	stopCalled  int
	lastAthlete int
	lastStart   service.StartParams
}

func (m *mockPacer) Start(ctx context.Context, athleteID int, p service.StartParams) (models.StatusUpdate, error) {
	m.startCalled++
	m.lastAthlete = athleteID
	m.lastStart = p
	return m.startState, m.startErr
}
func (m *mockPacer) Stop(ctx context.Context) (models.Completion, error) {
	m.stopCalled++
	return m.stopDone, m.stopErr
}
func (m *mockPacer) State(ctx context.Context) models.StatusUpdate {
	return m.state
}
func (m *mockPacer) Curves() map[int]curve.Curve {
	return m.curves
}
func (m *mockPacer) Curve(level int) (curve.Curve, error) {
	return m.curves.Lookup(level)
}

type mockHeartRate struct {
	pushErr   error
	rangeErr  error
	snapshot  models.HeartRateSnapshot
	pushed    []int
	lastRange [2]int
}

func (m *mockHeartRate) Push(bpm int) error {
	m.pushed = append(m.pushed, bpm)
	return m.pushErr
}
func (m *mockHeartRate) SetSimulatedRange(low, high int) error {
	m.lastRange = [2]int{low, high}
	return m.rangeErr
}
func (m *mockHeartRate) Snapshot() models.HeartRateSnapshot {
	return m.snapshot
}

type mockHistory struct {
	previews     []models.SessionPreview
	record       models.SessionRecord
	csv          string
	err          error
	lastAthlete  int
	lastID       string
	lastFeedback string
}

func (m *mockHistory) ListSessions(ctx context.Context, athleteID int) ([]models.SessionPreview, error) {
	m.lastAthlete = athleteID
	return m.previews, m.err
}
func (m *mockHistory) GetSession(ctx context.Context, athleteID int, id string) (models.SessionRecord, error) {
	m.lastAthlete = athleteID
	m.lastID = id
	return m.record, m.err
}
func (m *mockHistory) SetFeedback(ctx context.Context, athleteID int, id, feedback string) error {
	m.lastAthlete = athleteID
	m.lastID = id
	m.lastFeedback = feedback
	return m.err
}
func (m *mockHistory) ExportCSV(ctx context.Context, athleteID int, id string, w io.Writer) (models.SessionRecord, error) {
	m.lastID = id
	if m.err != nil {
		return models.SessionRecord{}, m.err
	}
	_, err := io.WriteString(w, m.csv)
	return m.record, err
}

type mockEventLog struct {
	resp        []models.SessionEvent
	err         error
	lastFrom    time.Time
	lastTo      time.Time
	lastType    string
	lastSession string
}

func (m *mockEventLog) List(ctx context.Context, f service.LogFilter) ([]models.SessionEvent, error) {
	m.lastFrom = f.From
	m.lastTo = f.To
	m.lastType = f.Type
	m.lastSession = f.SessionID
	return m.resp, m.err
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, Streams{}, nil)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}

// authedRequest builds a request carrying a bearer token; body may be nil.
func authedRequest(method, target string, body io.Reader) *http.Request {
	req, _ := http.NewRequest(method, target, body)
	for k, vv := range authHeader("valid") {
		for _, v := range vv {
			req.Header.Add(k, v)
		}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

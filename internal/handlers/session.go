package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"treadmill_pacer/internal/curve"
	"treadmill_pacer/internal/heartrate"
	"treadmill_pacer/internal/pacer"
	"treadmill_pacer/internal/repository"
	"treadmill_pacer/internal/service"

	"github.com/gin-gonic/gin"
)

// Common response/status constants to avoid magic strings and typos.
const (
	statusOK       = "ok"
	statusStarted  = "started"
	statusStopped  = "stopped"
	statusAccepted = "accepted"
	statusUpdated  = "updated"

	errStartSession    = "failed to start session"
	errStopSession     = "failed to stop session"
	errSaveSession     = "session stopped but its record was not saved"
	errInvalidBodyPref = "invalid body: "
	errInvalidLevel    = "invalid level"
)

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// statusFor maps domain errors onto HTTP codes; 0 means unexpected.
func statusFor(err error) int {
	switch {
	case errors.Is(err, pacer.ErrInvalidLapDistance),
		errors.Is(err, pacer.ErrInvalidAge),
		errors.Is(err, curve.ErrInvalidLevel),
		errors.Is(err, heartrate.ErrInvalidHeartRate),
		errors.Is(err, heartrate.ErrInvalidRange),
		service.IsValidationError(err):
		return http.StatusBadRequest
	case errors.Is(err, repository.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, pacer.ErrAlreadyRunning),
		errors.Is(err, pacer.ErrNotRunning),
		errors.Is(err, service.ErrSimulatorDisabled):
		return http.StatusConflict
	default:
		return 0
	}
}

// respondError writes client errors verbatim and hides internal ones behind userMsg.
func (h *Handler) respondError(c *gin.Context, err error, userMsg, logKey string, kv ...interface{}) {
	if code := statusFor(err); code != 0 {
		if h.log != nil {
			h.log.Infow(logKey, append([]interface{}{"err", err}, kv...)...)
		}
		c.JSON(code, gin.H{"error": err.Error()})
		return
	}
	h.logAndJSONError(c, http.StatusInternalServerError, userMsg, logKey, err, kv...)
}

// Request DTO for starting a session.
type startRequest struct {
	Level       int     `json:"level" binding:"required"`
	LapDistance float64 `json:"lap_distance,omitempty"`
	Age         int     `json:"age,omitempty"`
}

// StartSessionRequest is an exported model for Swagger docs of the start payload.
type StartSessionRequest struct {
	// Speed curve level, 2 to 10
	Level int `json:"level" example:"5"`
	// Lap length in meters; defaults to the configured lap distance
	LapDistance float64 `json:"lap_distance,omitempty" example:"400"`
	// Athlete age in years; defaults to the signed-in athlete's profile
	Age int `json:"age,omitempty" example:"30"`
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": statusOK,
	})
}

// @Summary      Start session
// @Description  Sets the first curve speed and starts lap-boundary regulation
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        body  body   StartSessionRequest  true  "Session parameters"
// @Success      200   {object}  map[string]interface{}  "status, state"
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/v1/session/start [post]
// @Security     BearerAuth
func (h *Handler) startSession(c *gin.Context) {
	var req startRequest
	if !h.bindJSON(c, &req) {
		return
	}
	athleteID := currentAthlete(c)
	st, err := h.services.Pacer.Start(c.Request.Context(), athleteID, service.StartParams{
		Level:       req.Level,
		LapDistance: req.LapDistance,
		Age:         req.Age,
	})
	if err != nil {
		h.respondError(c, err, errStartSession, "session_start_failed", "level", req.Level, "athlete_id", athleteID)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": statusStarted, "state": st})
}

// @Summary      Stop session
// @Description  Manual stop; returns the completion summary
// @Tags         session
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "status, completion"
// @Failure      401  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Failure      500  {object}  map[string]interface{}  "error, completion"
// @Router       /api/v1/session/stop [post]
// @Security     BearerAuth
func (h *Handler) stopSession(c *gin.Context) {
	done, err := h.services.Pacer.Stop(c.Request.Context())
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"status": statusStopped, "completion": done})
	case done.SessionID != "":
		// The session ended; only persisting it failed.
		if h.log != nil {
			h.log.Errorw("session_stop_save_failed", "err", err, "session_id", done.SessionID)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": errSaveSession, "completion": done})
	default:
		h.respondError(c, err, errStopSession, "session_stop_failed")
	}
}

// @Summary      Get session state
// @Tags         session
// @Produce      json
// @Success      200  {object}  models.StatusUpdate
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/session/state [get]
// @Security     BearerAuth
func (h *Handler) getState(c *gin.Context) {
	c.JSON(http.StatusOK, h.services.Pacer.State(c.Request.Context()))
}

// @Summary      List speed curves
// @Tags         curves
// @Produce      json
// @Success      200  {object}  map[string][]number
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/curves [get]
// @Security     BearerAuth
func (h *Handler) listCurves(c *gin.Context) {
	c.JSON(http.StatusOK, h.services.Pacer.Curves())
}

// @Summary      Get one speed curve
// @Tags         curves
// @Produce      json
// @Param        level  path  int  true  "Curve level"
// @Success      200  {object}  map[string]interface{}  "level, speeds"
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/curves/{level} [get]
// @Security     BearerAuth
func (h *Handler) getCurve(c *gin.Context) {
	level, err := strconv.Atoi(c.Param("level"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidLevel})
		return
	}
	speeds, err := h.services.Pacer.Curve(level)
	if err != nil {
		h.respondError(c, err, errInvalidLevel, "curve_lookup_failed", "level", level)
		return
	}
	c.JSON(http.StatusOK, gin.H{"level": level, "speeds": speeds})
}

package handlers

import (
	"bytes"
	"net/http"

	"treadmill_pacer/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	errListHistory = "failed to load history"
	errGetSession  = "failed to load session"
	errExportCSV   = "failed to export session"
	errSetFeedback = "failed to save feedback"
)

type feedbackRequest struct {
	Feedback string `json:"feedback" binding:"required"`
}

// FeedbackRequest is an exported model for Swagger docs of the feedback payload.
type FeedbackRequest struct {
	// One of too_easy, comfortable, moderate, uncomfortable, unbearable
	Feedback string `json:"feedback" example:"comfortable"`
}

// @Summary      List finished sessions
// @Description  Newest first, samples not included
// @Tags         history
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "count, sessions"
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/history [get]
// @Security     BearerAuth
func (h *Handler) listHistory(c *gin.Context) {
	athleteID := currentAthlete(c)
	list, err := h.services.History.ListSessions(c.Request.Context(), athleteID)
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errListHistory, "history_list_failed", err, "athlete_id", athleteID)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":    len(list),
		"sessions": list,
	})
}

// @Summary      Get a finished session
// @Tags         history
// @Produce      json
// @Param        id   path  string  true  "Session id"
// @Success      200  {object}  models.SessionRecord
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/history/{id} [get]
// @Security     BearerAuth
func (h *Handler) getHistory(c *gin.Context) {
	id := c.Param("id")
	rec, err := h.services.History.GetSession(c.Request.Context(), currentAthlete(c), id)
	if err != nil {
		h.respondError(c, err, errGetSession, "history_get_failed", "session_id", id)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// @Summary      Export a session's heart-rate log
// @Tags         history
// @Produce      text/csv
// @Param        id   path  string  true  "Session id"
// @Success      200  {string}  string  "CSV file"
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/history/{id}/csv [get]
// @Security     BearerAuth
func (h *Handler) exportHistoryCSV(c *gin.Context) {
	id := c.Param("id")
	var buf bytes.Buffer
	rec, err := h.services.History.ExportCSV(c.Request.Context(), currentAthlete(c), id, &buf)
	if err != nil {
		h.respondError(c, err, errExportCSV, "history_export_failed", "session_id", id)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+service.CSVFilename(rec)+`"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// @Summary      Record session feedback
// @Tags         history
// @Accept       json
// @Produce      json
// @Param        id    path  string           true  "Session id"
// @Param        body  body  FeedbackRequest  true  "Feedback label"
// @Success      200   {object}  map[string]string
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /api/v1/history/{id}/feedback [put]
// @Security     BearerAuth
func (h *Handler) setFeedback(c *gin.Context) {
	var req feedbackRequest
	if !h.bindJSON(c, &req) {
		return
	}
	id := c.Param("id")
	if err := h.services.History.SetFeedback(c.Request.Context(), currentAthlete(c), id, req.Feedback); err != nil {
		h.respondError(c, err, errSetFeedback, "history_feedback_failed", "session_id", id)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": statusUpdated, "feedback": req.Feedback})
}

package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"treadmill_pacer/internal/models"
	"treadmill_pacer/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	errFromInvalid  = "invalid 'from' time; use RFC3339 or YYYY-MM-DD"
	errToInvalid    = "invalid 'to' time; use RFC3339 or YYYY-MM-DD"
	errTypeInvalid  = "invalid 'type'; use START, LAP, DECELERATE, COMPLETE or ERROR"
	errRangeInvalid = "'from' must be <= 'to'"
	errLogsFailed   = "failed to load logs"

	layoutDateTime = "2006-01-02 15:04:05"
	layoutDate     = "2006-01-02"
)

var (
	queryLayouts = []string{time.RFC3339, layoutDateTime, layoutDate}

	logTypes = map[string]bool{
		models.EventStart:      true,
		models.EventLap:        true,
		models.EventDecelerate: true,
		models.EventComplete:   true,
		models.EventError:      true,
	}
)

// logFilterFromQuery builds the filter from from/to/type/session_id. A non-empty
// message means the query is invalid and should be answered with 400.
func logFilterFromQuery(c *gin.Context) (f service.LogFilter, msg string) {
	f.Type = strings.ToUpper(strings.TrimSpace(c.Query("type")))
	if f.Type != "" && !logTypes[f.Type] {
		return f, errTypeInvalid
	}
	f.SessionID = strings.TrimSpace(c.Query("session_id"))

	var err error
	if raw := c.Query("from"); raw != "" {
		if f.From, err = parseQueryTime(raw); err != nil {
			return f, errFromInvalid
		}
	}
	if raw := c.Query("to"); raw != "" {
		if f.To, err = parseQueryTime(raw); err != nil {
			return f, errToInvalid
		}
		// a bare date covers the whole day
		if !strings.ContainsAny(raw, "T ") {
			f.To = f.To.Add(24*time.Hour - time.Nanosecond)
		}
	}
	if !f.From.IsZero() && !f.To.IsZero() && f.From.After(f.To) {
		return f, errRangeInvalid
	}
	return f, ""
}

// @Summary      List logs
// @Description  Filter logs by date (RFC3339, 'YYYY-MM-DD HH:MM:SS', or 'YYYY-MM-DD'). A date-only 'to' includes the whole day.
// @Tags         logs
// @Produce      json
// @Param        from        query  string  false  "Start of range"  example(2025-08-01)
// @Param        to          query  string  false  "End of range"    example(2025-08-31)
// @Param        type        query  string  false  "Event type"  Enums(START,LAP,DECELERATE,COMPLETE,ERROR)
// @Param        session_id  query  string  false  "Only events of this session"
// @Success      200   {object}  map[string]interface{}  "count, events"
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/v1/logs [get]
// @Security     BearerAuth
func (h *Handler) getLogs(c *gin.Context) {
	filter, msg := logFilterFromQuery(c)
	if msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	events, err := h.services.EventLog.List(c.Request.Context(), filter)
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errLogsFailed, "logs_list_failed", err,
			"from", filter.From, "to", filter.To, "type", filter.Type, "session_id", filter.SessionID)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(events), "events": events})
}

// parseQueryTime accepts RFC3339, date-time and date-only layouts and
// returns the instant in UTC.
func parseQueryTime(s string) (time.Time, error) {
	for _, layout := range queryLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time %q: want RFC3339, 'YYYY-MM-DD HH:MM:SS' or 'YYYY-MM-DD'", s)
}

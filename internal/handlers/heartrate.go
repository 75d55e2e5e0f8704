package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	errPushHeartRate = "failed to record heart rate"
	errSetRange      = "failed to update heart-rate range"
)

type heartRateRequest struct {
	BPM int `json:"bpm" binding:"required"`
}

type rangeRequest struct {
	Low  int `json:"low" binding:"required"`
	High int `json:"high" binding:"required"`
}

// HeartRateRangeRequest is an exported model for Swagger docs of the range payload.
type HeartRateRangeRequest struct {
	Low  int `json:"low" example:"130"`
	High int `json:"high" example:"150"`
}

// @Summary      Heart-rate snapshot
// @Tags         heart-rate
// @Produce      json
// @Success      200  {object}  models.HeartRateSnapshot
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/heart-rate [get]
// @Security     BearerAuth
func (h *Handler) getHeartRate(c *gin.Context) {
	c.JSON(http.StatusOK, h.services.HeartRate.Snapshot())
}

// @Summary      Push a heart-rate sample
// @Description  bpm must be within 1..300
// @Tags         heart-rate
// @Accept       json
// @Produce      json
// @Param        body  body   object  true  "{\"bpm\":120}"
// @Success      202   {object}  map[string]string
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /api/v1/heart-rate [post]
// @Security     BearerAuth
func (h *Handler) pushHeartRate(c *gin.Context) {
	var req heartRateRequest
	if !h.bindJSON(c, &req) {
		return
	}
	if err := h.services.HeartRate.Push(req.BPM); err != nil {
		h.respondError(c, err, errPushHeartRate, "heart_rate_push_failed", "bpm", req.BPM)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": statusAccepted})
}

// @Summary      Retarget the simulated heart-rate source
// @Tags         heart-rate
// @Accept       json
// @Produce      json
// @Param        body  body   HeartRateRangeRequest  true  "Inclusive bpm range"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /api/v1/heart-rate/range [put]
// @Security     BearerAuth
func (h *Handler) setHeartRateRange(c *gin.Context) {
	var req rangeRequest
	if !h.bindJSON(c, &req) {
		return
	}
	if err := h.services.HeartRate.SetSimulatedRange(req.Low, req.High); err != nil {
		h.respondError(c, err, errSetRange, "heart_rate_range_failed", "low", req.Low, "high", req.High)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": statusUpdated, "low": req.Low, "high": req.High})
}

package handlers

import (
	"treadmill_pacer/internal/events"
	"treadmill_pacer/internal/logger"
	"treadmill_pacer/internal/models"
	"treadmill_pacer/internal/service"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Streams are the controller feeds pushed to websocket clients.
// Any of them may be nil.
type Streams struct {
	Status    *events.Feed[models.StatusUpdate]
	Completed *events.Feed[models.Completion]
	Recovery  *events.Feed[models.RecoveryUpdate]
}

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	streams  Streams
	log      *logger.Logger
}

// NewHandler constructs a new HTTP handler with dependencies.
func NewHandler(services *service.Service, streams Streams, log *logger.Logger) *Handler {
	return &Handler{services: services, streams: streams, log: log}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/health", h.health)

	h.registerAuthRoutes(router)
	h.registerAPIRoutes(router)

	// Live status stream on the same port
	router.GET("/ws", h.wsConnect)

	return router
}

func (h *Handler) registerAuthRoutes(r *gin.Engine) {
	auth := r.Group("/auth")
	{
		auth.POST("/sign-up", h.signUp)
		auth.POST("/sign-in", h.signIn)
	}
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api/v1", h.userIdMiddleware)
	{
		h.registerSessionRoutes(api)
		h.registerCurveRoutes(api)
		h.registerHeartRateRoutes(api)
		h.registerHistoryRoutes(api)
		h.registerLogRoutes(api)
	}
}

func (h *Handler) registerSessionRoutes(api *gin.RouterGroup) {
	session := api.Group("/session")
	{
		// Body example: {"level":5,"lap_distance":400,"age":30}
		session.POST("/start", h.startSession)
		session.POST("/stop", h.stopSession)
		session.GET("/state", h.getState)
	}
}

func (h *Handler) registerCurveRoutes(api *gin.RouterGroup) {
	curves := api.Group("/curves")
	{
		curves.GET("", h.listCurves)
		curves.GET("/:level", h.getCurve)
	}
}

func (h *Handler) registerHeartRateRoutes(api *gin.RouterGroup) {
	hr := api.Group("/heart-rate")
	{
		hr.GET("", h.getHeartRate)
		hr.POST("", h.pushHeartRate)
		hr.PUT("/range", h.setHeartRateRange)
	}
}

func (h *Handler) registerHistoryRoutes(api *gin.RouterGroup) {
	history := api.Group("/history")
	{
		history.GET("", h.listHistory)
		history.GET("/:id", h.getHistory)
		history.GET("/:id/csv", h.exportHistoryCSV)
		history.PUT("/:id/feedback", h.setFeedback)
	}
}

func (h *Handler) registerLogRoutes(api *gin.RouterGroup) {
	api.GET("/logs", h.getLogs)
}

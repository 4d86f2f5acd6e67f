// internal/routes/routes.go
package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"label-service/internal/config"
	"label-service/internal/handler"
	"label-service/internal/middleware"
	"label-service/internal/service"
	"label-service/internal/utils"
)

// Router holds all dependencies for routing
type Router struct {
	config       *config.Config
	logger       *zap.Logger
	db           handler.HealthChecker
	printService *service.PrintService
	wsHandler    *handler.WebSocketHandler
}

// NewRouter creates a new router instance. db may be nil when job history
// is kept in memory.
func NewRouter(
	config *config.Config,
	logger *zap.Logger,
	db handler.HealthChecker,
	printService *service.PrintService,
	wsHandler *handler.WebSocketHandler,
) *Router {
	return &Router{
		config:       config,
		logger:       logger,
		db:           db,
		printService: printService,
		wsHandler:    wsHandler,
	}
}

// SetupRouter creates and configures the Gin router
func (r *Router) SetupRouter() *gin.Engine {
	if r.config.IsDebugEnabled() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	r.addMiddleware(router)
	r.addRoutes(router)

	return router
}

// addMiddleware adds middleware to the router
func (r *Router) addMiddleware(router *gin.Engine) {
	router.Use(middleware.RecoveryMiddleware(r.logger))
	router.Use(middleware.RequestIDMiddleware())

	serviceLogger := utils.NewServiceLogger(r.logger, "http-server")
	router.Use(middleware.LoggingMiddleware(serviceLogger, "/live", "/ready"))

	router.Use(middleware.CORSMiddleware(&r.config.Security))

	r.logger.Info("Middleware configured")
}

// addRoutes sets up all application routes
func (r *Router) addRoutes(router *gin.Engine) {
	healthHandler := handler.NewHealthHandler(r.db, r.config, r.logger)
	labelHandler := handler.NewLabelHandler(r.printService, r.logger)

	r.addHealthRoutes(router, healthHandler)
	r.addLabelRoutes(router, labelHandler)

	if r.wsHandler != nil {
		router.GET("/ws/status", r.wsHandler.HandleStatusStream)
	}

	r.addDocumentationRoutes(router)

	r.logger.Info("All routes configured successfully")
}

// addHealthRoutes sets up health check routes
func (r *Router) addHealthRoutes(router *gin.Engine, handler *handler.HealthHandler) {
	health := router.Group("")
	{
		health.GET("/health", handler.HealthCheck)
		health.GET("/ready", handler.ReadinessCheck)
		health.GET("/live", handler.LivenessCheck)
	}
}

// addLabelRoutes mounts the printing API at the root so relay transports of
// other instances can reach /print and /status directly
func (r *Router) addLabelRoutes(router *gin.Engine, handler *handler.LabelHandler) {
	router.GET("/status", handler.GetStatus)
	router.PUT("/print", handler.Print)
	router.PUT("/preview", handler.Preview)
	router.GET("/config", handler.GetConfig)
	router.GET("/jobs", handler.ListJobs)
}

// addDocumentationRoutes sets up documentation routes
func (r *Router) addDocumentationRoutes(router *gin.Engine) {
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))

	router.GET("/docs", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "/swagger/index.html")
	})
}

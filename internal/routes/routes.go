// internal/routes/routes.go
package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"board-bridge/internal/config"
	"board-bridge/internal/handler"
	"board-bridge/internal/middleware"
	"board-bridge/internal/protocol"
	"board-bridge/internal/utils"
)

// Router holds all dependencies for routing
type Router struct {
	config    *config.Config
	logger    *zap.Logger
	bridge    handler.Bridge
	scanner   handler.PortScanner
	eventBus  *handler.EventBus
	publisher handler.PublisherStats
}

// NewRouter creates a new router instance
func NewRouter(
	config *config.Config,
	logger *zap.Logger,
	bridge handler.Bridge,
	scanner handler.PortScanner,
	eventBus *handler.EventBus,
	publisher handler.PublisherStats,
) *Router {
	return &Router{
		config:    config,
		logger:    logger,
		bridge:    bridge,
		scanner:   scanner,
		eventBus:  eventBus,
		publisher: publisher,
	}
}

// SetupRouter creates and configures the Gin router
func (r *Router) SetupRouter() (*gin.Engine, error) {
	if r.config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	r.addMiddleware(router)

	if err := r.addRoutes(router); err != nil {
		return nil, err
	}
	return router, nil
}

// addMiddleware adds middleware to the router
func (r *Router) addMiddleware(router *gin.Engine) {
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.RecoveryMiddleware(r.logger))

	serviceLogger := utils.NewServiceLogger(r.logger, "http-server")
	router.Use(middleware.LoggingMiddleware(serviceLogger))

	router.Use(middleware.CORSMiddleware(&r.config.Security))

	r.logger.Debug("Middleware configured")
}

// addRoutes sets up all application routes
func (r *Router) addRoutes(router *gin.Engine) error {
	defaultMode, err := protocol.ParseTransportMode(r.config.Bridge.DefaultMode)
	if err != nil {
		return err
	}

	healthHandler := handler.NewHealthHandler(r.bridge, r.eventBus, r.publisher, r.config, r.logger)
	connectionHandler := handler.NewConnectionHandler(r.bridge, handler.ConnectionDefaults{
		Port:     r.config.Serial.Port,
		BaudRate: r.config.Serial.BaudRate,
		Mode:     defaultMode,
	}, r.logger)
	commandHandler := handler.NewCommandHandler(r.bridge, defaultMode, r.logger)
	portHandler := handler.NewPortHandler(r.scanner, r.logger)
	wsHandler := handler.NewWebSocketHandler(r.bridge, commandHandler, r.config.Security.AllowedOrigins, r.logger)

	// Events reach websocket clients through the bus
	if r.eventBus != nil {
		r.eventBus.AddSink(wsHandler)
	}

	healthHandler.RegisterRoutes(router.Group(""))

	apiV1 := router.Group("/api/v1")
	connectionHandler.RegisterRoutes(apiV1)
	commandHandler.RegisterRoutes(apiV1)
	portHandler.RegisterRoutes(apiV1)

	wsHandler.RegisterRoutes(router.Group("/ws"))

	r.addDocumentationRoutes(router)

	r.logger.Info("All routes configured successfully")
	return nil
}

// addDocumentationRoutes sets up documentation routes
func (r *Router) addDocumentationRoutes(router *gin.Engine) {
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))

	router.GET("/docs", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "/swagger/index.html")
	})
}

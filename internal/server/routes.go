package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/voxpipe/voxpipe/internal/config"
	"github.com/voxpipe/voxpipe/pkg/Logger"
	"github.com/voxpipe/voxpipe/pkg/transcribe"
)

// Dependencies holds everything the routes need, composed once at startup.
type Dependencies struct {
	Settings *config.Settings
	Service  transcribe.Service
	Logger   *Logger.Logger
}

func NewDependencies(settings *config.Settings, service transcribe.Service, logger *Logger.Logger) Dependencies {
	return Dependencies{
		Settings: settings,
		Service:  service,
		Logger:   logger,
	}
}

// NewRouter composes the HTTP surface: a health probe and the websocket
// ingest endpoint.
func NewRouter(dep Dependencies) *gin.Engine {
	router := gin.Default()

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Server healthy"})
	})
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/ws", func(c *gin.Context) {
		handleWS(c, dep)
	})

	return router
}

package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"courses-backend/internal/courses"
	"courses-backend/internal/serve"
	"courses-backend/internal/shared/config"
	"courses-backend/internal/shared/metrics"
	"courses-backend/internal/shared/server/middleware"
	"courses-backend/internal/shared/server/respond"
)

// RouterDeps carries the handlers the router mounts.
type RouterDeps struct {
	Config         config.Config
	CoursesHandler *courses.Handler
	ServeHandler   *serve.Handler
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
	)

	// Course file surface: token-gated per course, no identity header.
	deps.ServeHandler.RegisterRoutes(r)

	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})

	authed := api.Group("", middleware.Identity())
	deps.CoursesHandler.RegisterRoutes(authed)

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}

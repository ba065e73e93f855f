package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vkovalov/chatline/internal/auth"
	"github.com/vkovalov/chatline/internal/config"
	"github.com/vkovalov/chatline/internal/core"
	"github.com/vkovalov/chatline/internal/store"
)

// NewServer builds the HTTP server with all routes registered.
func NewServer(hub *core.Hub, authService *auth.Service, st store.Store, cfg config.Config, logger *zerolog.Logger) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), LoggerMiddleware(logger))

	pages := NewPageHandlers(authService, logger)
	api := NewAPIHandlers(authService, logger)

	router.GET("/health", healthHandler)

	router.GET("/", pages.Index)
	router.GET("/login", pages.LoginForm)
	router.GET("/register", pages.RegisterForm)
	router.POST("/login", pages.Login)
	router.POST("/register", pages.Register)
	router.POST("/logout", pages.Logout)

	router.POST("/api/token", api.IssueToken)
	authorized := router.Group("/api", AuthMiddleware(authService, logger))
	authorized.GET("/me", api.Me)

	router.GET("/ws", gin.WrapH(NewWSHandler(hub, authService, st, logger)))

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

func healthHandler(c *gin.Context) {
	c.String(stdhttp.StatusOK, "ok")
}

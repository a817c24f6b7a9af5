package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vkuznets/shortlink/internal/middleware"
	"github.com/vkuznets/shortlink/internal/service"
	"go.uber.org/zap"
)

func NewRouter(
	linkService service.LinkService,
	clickProcessor service.ClickProcessor,
	authService service.AuthService,
	baseURL string,
	logger *zap.Logger,
) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()
	router.Use(gin.Recovery())

	// Middleware для логгирования
	router.Use(func(c *gin.Context) {
		logger.Info("Request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("ip", c.ClientIP()),
		)
		c.Next()
	})

	linkHandler := NewLinkHandler(linkService, clickProcessor, baseURL, logger)
	authHandler := NewAuthHandler(authService, logger)

	// API v.1
	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", HealthCheck)

		v1.POST("/auth/register", authHandler.Register)
		v1.POST("/auth/login", authHandler.Login)
		v1.POST("/auth/logout", authHandler.Logout)

		// Сокращение доступно и анонимно; владелец привязывается при наличии токена
		v1.POST("/links", middleware.OptionalAuth(authService), linkHandler.CreateLink)
		v1.GET("/links", middleware.RequireAuth(authService), linkHandler.ListLinks)
		v1.GET("/links/:code/analytics", linkHandler.GetAnalytics)
	}

	// Редирект (корневой путь) - без аутентификации
	router.GET("/:code", linkHandler.Redirect)

	return router
}

// HealthCheck godoc
// @Summary Service health check
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /api/v1/health [get]
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "shortlink",
	})
}

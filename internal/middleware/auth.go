package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/vkuznets/shortlink/internal/models"
	"github.com/vkuznets/shortlink/internal/service"
)

const identityContextKey = "identity"

// extractToken достаёт токен из заголовка Authorization (Bearer схема)
// или из query параметра token как запасного варианта
func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return c.Query("token")
}

// RequireAuth middleware, пропускающий только аутентифицированные запросы
func RequireAuth(auth service.Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "missing_token",
				"message": "Требуется токен. Передайте его через заголовок Authorization: Bearer",
			})
			c.Abort()
			return
		}

		identity, err := auth.Identity(c.Request.Context(), token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "invalid_token",
				"message": "Невалидный или истёкший токен",
			})
			c.Abort()
			return
		}

		c.Set(identityContextKey, identity)
		c.Next()
	}
}

// OptionalAuth middleware, допускающий анонимные запросы.
// Запрос без токена проходит анонимно, предъявленный невалидный токен отклоняется.
func OptionalAuth(auth service.Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			c.Next()
			return
		}

		identity, err := auth.Identity(c.Request.Context(), token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "invalid_token",
				"message": "Невалидный или истёкший токен",
			})
			c.Abort()
			return
		}

		c.Set(identityContextKey, identity)
		c.Next()
	}
}

// GetIdentity извлекает личность из контекста запроса
func GetIdentity(c *gin.Context) (*models.Identity, bool) {
	value, exists := c.Get(identityContextKey)
	if !exists {
		return nil, false
	}
	identity, ok := value.(*models.Identity)
	return identity, ok
}

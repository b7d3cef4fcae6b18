package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
)

// AuthMiddleware извлекает идентификатор пользователя из Bearer-токена.
// Выпуск и обновление токенов - зона ответственности внешнего сервиса
// аутентификации; здесь токен только проверяется, а subject используется
// как непрозрачный learner ID.
type AuthMiddleware struct {
	signingKey []byte
}

// NewAuthMiddleware создает новый middleware проверки токенов
func NewAuthMiddleware(signingKey string) *AuthMiddleware {
	return &AuthMiddleware{signingKey: []byte(signingKey)}
}

// RequireLearner проверяет токен и кладёт learner_id в контекст запроса
func (m *AuthMiddleware) RequireLearner() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized", "error_type": "token_missing"})
			c.Abort()
			return
		}

		// Проверяем формат заголовка Bearer {token}
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header format must be Bearer {token}", "error_type": "token_format"})
			c.Abort()
			return
		}

		claims := &jwt.RegisteredClaims{}
		token, err := jwt.ParseWithClaims(parts[1], claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return m.signingKey, nil
		})
		if err != nil || !token.Valid || claims.Subject == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token", "error_type": "token_invalid"})
			c.Abort()
			return
		}

		// Устанавливаем ID пользователя в контекст
		c.Set("learner_id", claims.Subject)

		c.Next()
	}
}

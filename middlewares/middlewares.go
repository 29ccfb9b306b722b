package middlewares

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/dgrijalva/jwt-go"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	log "github.com/sirupsen/logrus"
)

// Auth admits requests carrying a signed session token whose payload is
// still present in Redis, and hands the payload to handlers in the
// "payload" header.
func Auth(redis *redis.Client, key []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie("token")
		if token == "" {
			token = c.GetHeader("Authorization")
		}

		redisPayload, err := ValidateToken(c.Request.Context(), token, key, redis)
		if err != nil {
			log.WithError(err).Debug("rejecting session")
			c.JSON(http.StatusUnauthorized, gin.H{"message": "unauthorized"})
			c.Abort()
			return
		}
		c.Request.Header.Set("payload", redisPayload)
		c.Next()
	}
}

func ValidateToken(ctx context.Context, authorizationHeader string, key []byte, redis *redis.Client) (string, error) {
	if !strings.Contains(authorizationHeader, "Bearer") {
		return "", errors.New("invalid-token")
	}
	tokenString := strings.TrimSpace(strings.Replace(authorizationHeader, "Bearer ", "", -1))

	if _, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected-signing-method-%v", t.Header["alg"])
		}
		return key, nil
	}); err != nil {
		return "", err
	}

	redisPayload, err := redis.Get(ctx, tokenString).Result()
	if err != nil {
		return "", err
	}

	if redisPayload == "" {
		return "", errors.New("empty-payload")
	}

	return redisPayload, nil
}

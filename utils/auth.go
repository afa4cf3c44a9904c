// utils/auth.go
package utils

import (
	"errors"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// CheckAPIKey compares a presented ops key against the bcrypt hash stored
// in ADMIN_API_KEY_HASH. An empty hash disables the key path entirely.
func CheckAPIKey(key string) bool {
	hash := os.Getenv("ADMIN_API_KEY_HASH")
	if hash == "" || key == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(key)) == nil
}

// Auth middleware. Accepts either a bearer token issued by the main DMS
// (HS256, shared JWT_SECRET) or the operations API key in X-Api-Key.
// This service never mints tokens itself.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if apiKey := c.GetHeader("X-Api-Key"); apiKey != "" {
			if !CheckAPIKey(apiKey) {
				c.AbortWithStatusJSON(401, gin.H{"error": "Invalid API key"})
				return
			}
			c.Set("userId", "ops")
			c.Next()
			return
		}

		tokenString := c.GetHeader("Authorization")
		if tokenString == "" {
			c.AbortWithStatusJSON(401, gin.H{"error": "Authorization header required"})
			return
		}

		if len(tokenString) > 7 && strings.ToUpper(tokenString[0:6]) == "BEARER" {
			tokenString = tokenString[7:]
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return []byte(os.Getenv("JWT_SECRET")), nil
		})

		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(401, gin.H{"error": "Invalid token"})
			return
		}

		if claims, ok := token.Claims.(jwt.MapClaims); ok {
			c.Set("userId", claims["sub"])
		} else {
			c.AbortWithStatusJSON(401, gin.H{"error": "Invalid token claims"})
			return
		}

		c.Next()
	}
}

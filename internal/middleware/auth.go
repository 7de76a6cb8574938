package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/seoforge/core/internal/pkg/jwt"
	"github.com/seoforge/core/internal/pkg/response"
	"gorm.io/gorm"
)

const (
	ContextKeyUserID = "user_id"
	// APIKeyPrefix distinguishes profile API keys from JWTs in the same header.
	APIKeyPrefix = "sf-"
)

// Auth returns a middleware that enforces JWT or API key authentication.
func Auth(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := ValidateToken(db, extractToken(c))
		if err != nil {
			response.Unauthorized(c)
			return
		}
		c.Set(ContextKeyUserID, userID)
		c.Next()
	}
}

// OptionalAuth resolves the user id when a valid token is present but never
// rejects the request. Downstream middleware uses IsAuthenticated to vary
// behavior for logged-in callers.
func OptionalAuth(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID, err := ValidateToken(db, extractToken(c)); err == nil {
			c.Set(ContextKeyUserID, userID)
		}
		c.Next()
	}
}

// IsAuthenticated reports whether a user id has been resolved for the request.
func IsAuthenticated(c *gin.Context) bool {
	return CurrentUserID(c) != ""
}

// ValidateToken validates a JWT or profile API key and returns the user id.
func ValidateToken(db *gorm.DB, rawToken string) (string, error) {
	token := NormalizeToken(rawToken)
	if token == "" {
		return "", errors.New("token is required")
	}

	if strings.HasPrefix(token, APIKeyPrefix) {
		return validateAPIKey(db, token)
	}

	claims, err := jwt.Parse(token)
	if err != nil {
		return "", err
	}
	if claims.UserID == "" {
		return "", errors.New("token carries no user")
	}
	return claims.UserID, nil
}

// CurrentUserID extracts the authenticated user ID from context.
func CurrentUserID(c *gin.Context) string {
	v, _ := c.Get(ContextKeyUserID)
	id, _ := v.(string)
	return id
}

func extractToken(c *gin.Context) string {
	auth := c.GetHeader("Authorization")
	if auth != "" {
		return NormalizeToken(auth)
	}
	return NormalizeToken(c.Query("token"))
}

// NormalizeToken trims spaces and strips optional Bearer prefix.
func NormalizeToken(raw string) string {
	token := strings.TrimSpace(raw)
	if token == "" {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(token), "bearer ") {
		return strings.TrimSpace(token[7:])
	}
	return token
}

func validateAPIKey(db *gorm.DB, key string) (string, error) {
	var row struct {
		ID string
	}
	err := db.Table("profiles").
		Select("id").
		Where("api_key = ? AND deleted_at IS NULL", key).
		Scan(&row).Error
	if err != nil {
		return "", err
	}
	if row.ID == "" {
		return "", errors.New("api key not found")
	}
	return row.ID, nil
}

package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"basket-prices/models"
	"basket-prices/utils"
)

const userContextKey = "user"

// Claims carries the caller identity issued by the auth service.
type Claims struct {
	Role          string   `json:"role"`
	AllowedPages  []string `json:"allowed_pages"`
	ManagedGroups []int64  `json:"managed_groups"`
	jwt.RegisteredClaims
}

// UserContext converts the claims into the request-scoped identity.
func (c *Claims) UserContext() models.UserContext {
	role := c.Role
	if role == "" {
		role = models.RoleUser
	}
	return models.UserContext{
		UserID:          c.Subject,
		Role:            role,
		PermittedPages:  c.AllowedPages,
		ManagedGroupIDs: c.ManagedGroups,
	}
}

// AuthMiddleware validates the bearer token and stores the caller's
// UserContext on the gin context.
func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header format"})
			return
		}

		claims := &Claims{}
		token, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("invalid signing method")
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid || claims.Subject == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(userContextKey, claims.UserContext())
		c.Next()
	}
}

// CurrentUser returns the identity stored by AuthMiddleware.
func CurrentUser(c *gin.Context) (models.UserContext, bool) {
	v, ok := c.Get(userContextKey)
	if !ok {
		return models.UserContext{}, false
	}
	u, ok := v.(models.UserContext)
	return u, ok
}

// RequirePage rejects callers that may not use the named feature.
func RequirePage(page string) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, ok := CurrentUser(c)
		if !ok || !u.CanAccessPage(page) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "access denied to feature: " + page})
			return
		}
		c.Next()
	}
}

func requestLogger(logger *utils.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("[api] %s %s -> %d (%v)",
			c.Request.Method, c.FullPath(), c.Writer.Status(), time.Since(start).Round(time.Millisecond))
	}
}

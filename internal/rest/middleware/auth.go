package middleware

import (
	"strings"

	"github.com/geoforest/billing/internal/auth"
	"github.com/geoforest/billing/internal/config"
	ierr "github.com/geoforest/billing/internal/errors"
	"github.com/geoforest/billing/internal/logger"
	"github.com/geoforest/billing/internal/types"
	"github.com/gin-gonic/gin"
)

// AuthenticateMiddleware verifies the Bearer ID token of callable requests
// and sets the caller identity in the request context. A request without a
// token continues anonymously and the callable decides. A token that fails
// verification is rejected.
func AuthenticateMiddleware(provider auth.Provider, logger *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader(types.HeaderAuthorization)
		if authHeader == "" {
			c.Next()
			return
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			abortUnauthenticated(c, "Invalid authorization header format")
			return
		}

		claims, err := provider.ValidateToken(c.Request.Context(), strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			logger.Debugw("failed to validate token", "error", err)
			abortUnauthenticated(c, "Invalid token")
			return
		}
		if claims == nil || claims.UserID == "" {
			abortUnauthenticated(c, "Invalid token claims")
			return
		}

		ctx := types.SetUserID(c.Request.Context(), claims.UserID)
		ctx = types.SetEmail(ctx, claims.Email)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// TriggerKeyMiddleware admits identity trigger deliveries that present an
// active key in the x-trigger-key header
func TriggerKeyMiddleware(cfg *config.Configuration, logger *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		name, ok := auth.ValidateTriggerKey(cfg, c.GetHeader(types.HeaderTriggerKey))
		if !ok {
			logger.Warnw("rejected identity trigger with invalid key", "client_ip", c.ClientIP())
			abortUnauthenticated(c, "Invalid trigger key")
			return
		}
		c.Set("trigger_name", name)
		c.Next()
	}
}

func abortUnauthenticated(c *gin.Context, hint string) {
	_ = c.Error(ierr.NewError("unauthenticated request").
		WithHint(hint).
		Mark(ierr.ErrUnauthenticated))
	c.Abort()
}

package api

import (
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/gateward/go-core/internal/auth"
)

// principalMiddleware extracts the caller's principal from the bearer
// token, when present. Authentication is optional here: an anonymous
// request simply has no principal, and every handler abstains for it.
// Signature verification happened at the gateway edge.
func principalMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.Next()
			return
		}
		token := parts[1]

		principal, err := auth.ExtractPrincipal(token)
		if err != nil {
			logger.Warn("Failed to extract principal from token",
				zap.Error(err),
				zap.String("remote_addr", c.ClientIP()),
			)
			c.Next()
			return
		}

		c.Request = c.Request.WithContext(auth.WithPrincipal(c.Request.Context(), principal, token))
		c.Next()
	}
}

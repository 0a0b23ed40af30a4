package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/valvequote/quote_api/internal/utils"
)

// JWTMiddleware authenticates API users by bearer token. Clients that keep
// presenting bad tokens are throttled per IP.
type JWTMiddleware struct {
	rateLimiter *InvalidAuthRateLimiter
}

func NewJWTMiddleware(rateLimiter *InvalidAuthRateLimiter) *JWTMiddleware {
	return &JWTMiddleware{rateLimiter: rateLimiter}
}

func (m *JWTMiddleware) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if m.rateLimiter != nil && m.rateLimiter.Blocked(ip) {
			utils.Error(c, 429, "TOO_MANY_ATTEMPTS", "Too many invalid authentication attempts")
			c.Abort()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.Error(c, 401, "UNAUTHORIZED", "Missing authorization header")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			utils.Error(c, 401, "UNAUTHORIZED", "Invalid authorization header")
			c.Abort()
			return
		}

		claims, err := utils.ValidateJWT(parts[1])
		if err != nil {
			if m.rateLimiter != nil {
				m.rateLimiter.Record(ip)
			}
			log.Debug().Err(err).Str("ip", ip).Msg("rejected token")
			utils.Error(c, 401, "INVALID_TOKEN", "Invalid or expired token")
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("email", claims.Email)
		c.Next()
	}
}

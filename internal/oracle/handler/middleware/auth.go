package middleware

import (
	"crypto/subtle"
	"net"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
)

// TokenEnv is read when no token is configured.
const TokenEnv = "ORACLE_GATEWAY_TOKEN"

// AuthConfig holds configuration for Bearer token authentication.
type AuthConfig struct {
	// Enabled controls whether authentication is enforced.
	Enabled bool `json:"enabled"`

	// Token is the expected Bearer token value. Falls back to ORACLE_GATEWAY_TOKEN.
	Token string `json:"-"`

	// AllowLocal skips authentication for loopback clients.
	AllowLocal bool `json:"allow-local"`
}

// ResolveToken returns the effective token, checking env vars as fallback.
func (c *AuthConfig) ResolveToken() string {
	if c.Token != "" {
		return c.Token
	}
	return os.Getenv(TokenEnv)
}

// BearerAuth returns a Gin middleware that enforces Bearer token authentication.
// /healthz and /version are always public.
func BearerAuth(cfg *AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !cfg.Enabled {
			c.Next()
			return
		}

		token := cfg.ResolveToken()
		if token == "" {
			c.Next()
			return
		}

		path := c.Request.URL.Path
		if path == "/healthz" || path == "/version" {
			c.Next()
			return
		}

		if cfg.AllowLocal && isLocalRequest(c.Request) {
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abort(c, "missing Authorization header")
			return
		}

		const prefix = "Bearer "
		if !strings.HasPrefix(authHeader, prefix) {
			abort(c, "invalid Authorization header format, expected 'Bearer <token>'")
			return
		}

		provided := authHeader[len(prefix):]
		if subtle.ConstantTimeCompare([]byte(provided), []byte(token)) != 1 {
			abort(c, "invalid bearer token")
			return
		}

		c.Next()
	}
}

func abort(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error": gin.H{
			"message": msg,
			"type":    "authentication_error",
		},
	})
}

// isLocalRequest checks if a request originates from loopback address.
func isLocalRequest(r *http.Request) bool {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return false
	}
	ip := net.ParseIP(host)
	if ip == nil {
		return false
	}
	return ip.IsLoopback()
}

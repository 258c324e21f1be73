package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/kiosk404/oracle/pkg/logger"
)

// XRequestIDKey is the header carrying the request id.
const XRequestIDKey = "X-Request-ID"

// Middlewares store registered middlewares.
var Middlewares = map[string]gin.HandlerFunc{
	"recovery":  gin.Recovery(),
	"requestid": RequestID(),
	"logger":    Logger(),
	"cors":      CORS(),
}

// RequestID injects a request id into the context and the response header.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(XRequestIDKey)
		if rid == "" {
			rid = uuid.NewString()
			c.Request.Header.Set(XRequestIDKey, rid)
		}
		c.Set(XRequestIDKey, rid)
		c.Writer.Header().Set(XRequestIDKey, rid)
		c.Next()
	}
}

// Logger logs every request after it is served.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		logger.InfoX("http", "%3d | %13v | %15s | %-7s %s",
			c.Writer.Status(), time.Since(start), c.ClientIP(), c.Request.Method, path)
	}
}

// CORS allows browser clients from any origin and answers preflight requests.
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Session-Key, X-Request-ID")
		h.Set("Access-Control-Expose-Headers", "X-Session-Key, X-Request-ID")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

package middleware

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	perrors "github.com/yungbote/hetiograph/internal/pkg/errors"
	"github.com/yungbote/hetiograph/internal/platform/ctxutil"
	"github.com/yungbote/hetiograph/internal/platform/logger"
)

// quietRoutes are health and scrape endpoints logged at debug.
var quietRoutes = map[string]bool{
	"/healthcheck": true,
	"/readyz":      true,
	"/metrics":     true,
}

// RequestLogger writes one entry per request. Failed requests carry the
// failure kind and operation recorded by the handler through c.Error.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	if log == nil {
		log = logger.Nop()
	}
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := routeOf(c)
		status := c.Writer.Status()
		kv := []any{
			"method", c.Request.Method,
			"route", route,
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
			"trace_id", ctxutil.TraceID(c.Request.Context()),
		}
		if c.Request.URL.RawQuery != "" {
			kv = append(kv, "query", c.Request.URL.RawQuery)
		}
		if last := c.Errors.Last(); last != nil {
			kv = append(kv, "error", last.Err.Error())
			var pe *perrors.Error
			if errors.As(last.Err, &pe) {
				kv = append(kv, "kind", string(pe.Kind), "op", pe.Op)
				for k, v := range pe.Context {
					kv = append(kv, k, v)
				}
			}
		}

		switch {
		case status >= 500:
			log.Error("request failed", kv...)
		case status >= 400:
			log.Warn("request rejected", kv...)
		case quietRoutes[route]:
			log.Debug("request", kv...)
		default:
			log.Info("request", kv...)
		}
	}
}

func routeOf(c *gin.Context) string {
	if r := c.FullPath(); r != "" {
		return r
	}
	return "unmatched"
}

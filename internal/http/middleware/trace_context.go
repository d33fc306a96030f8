package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/hetiograph/internal/platform/ctxutil"
)

const (
	headerTraceID   = "X-Trace-Id"
	headerRequestID = "X-Request-Id"
)

// AttachTraceContext stores request and trace ids on the request context and
// echoes them as response headers. Mounted after otelgin, the active span's
// trace id wins over a client-supplied X-Trace-Id.
func AttachTraceContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		span := trace.SpanFromContext(ctx)

		var spanTrace string
		if sc := span.SpanContext(); sc.HasTraceID() {
			spanTrace = sc.TraceID().String()
		}
		ids := ctxutil.IDs{
			TraceID:   firstNonEmpty(spanTrace, c.GetHeader(headerTraceID)),
			RequestID: firstNonEmpty(c.GetHeader(headerRequestID)),
		}
		span.SetAttributes(attribute.String("http.request_id", ids.RequestID))

		c.Request = c.Request.WithContext(ctxutil.WithIDs(ctx, ids))
		c.Header(headerTraceID, ids.TraceID)
		c.Header(headerRequestID, ids.RequestID)
		c.Next()
	}
}

// firstNonEmpty returns the first non-blank value, or a fresh uuid.
func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return uuid.NewString()
}

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/yungbote/hetiograph/internal/platform/ctxutil"
)

func TestAttachTraceContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AttachTraceContext())
	var seen ctxutil.IDs
	r.GET("/api/neighborhood", func(c *gin.Context) {
		seen, _ = ctxutil.IDsFrom(c.Request.Context())
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/neighborhood", nil)
	req.Header.Set(headerRequestID, "req-1")
	req.Header.Set(headerTraceID, " trace-1 ")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, ctxutil.IDs{TraceID: "trace-1", RequestID: "req-1"}, seen)
	assert.Equal(t, "req-1", rec.Header().Get(headerRequestID))
	assert.Equal(t, "trace-1", rec.Header().Get(headerTraceID))
}

func TestAttachTraceContextGeneratesIDs(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AttachTraceContext())
	var seen ctxutil.IDs
	r.GET("/x", func(c *gin.Context) {
		seen, _ = ctxutil.IDsFrom(c.Request.Context())
		c.Status(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))

	assert.NotEmpty(t, seen.TraceID)
	assert.NotEmpty(t, seen.RequestID)
	assert.NotEqual(t, seen.TraceID, seen.RequestID)
	assert.Equal(t, seen.TraceID, rec.Header().Get(headerTraceID))
}

func TestFirstNonEmpty(t *testing.T) {
	assert.Equal(t, "b", firstNonEmpty("", "  ", "b", "c"))
	assert.Len(t, firstNonEmpty(), 36)
}

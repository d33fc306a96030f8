package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestCORSPreflight(t *testing.T) {
	gin.SetMode(gin.TestMode)
	allowed := []string{"http://localhost:5173", "http://127.0.0.1:3000"}

	cases := []struct {
		name        string
		origins     []string
		origin      string
		status      int
		allowOrigin string
	}{
		{"listed origin", allowed, "http://localhost:5173", http.StatusNoContent, "http://localhost:5173"},
		{"second listed origin", allowed, "http://127.0.0.1:3000", http.StatusNoContent, "http://127.0.0.1:3000"},
		{"unlisted origin", allowed, "http://evil.example", http.StatusForbidden, ""},
		{"wildcard", []string{"*"}, "http://example.org", http.StatusNoContent, "*"},
		{"empty list", nil, "http://example.org", http.StatusNoContent, "*"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := gin.New()
			r.Use(CORS(tc.origins))
			r.GET("/api/repurposing", func(c *gin.Context) { c.Status(http.StatusOK) })

			req := httptest.NewRequest(http.MethodOptions, "/api/repurposing", nil)
			req.Header.Set("Origin", tc.origin)
			req.Header.Set("Access-Control-Request-Method", http.MethodGet)
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, tc.allowOrigin, rec.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}

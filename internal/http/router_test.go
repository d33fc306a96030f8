package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/hetiograph/internal/data/graph"
	"github.com/yungbote/hetiograph/internal/domain"
	httpH "github.com/yungbote/hetiograph/internal/http/handlers"
	"github.com/yungbote/hetiograph/internal/labels"
	"github.com/yungbote/hetiograph/internal/observability"
	"github.com/yungbote/hetiograph/internal/platform/logger"
	"github.com/yungbote/hetiograph/internal/query"
)

func TestRouterServesQueriesAndMetrics(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := graph.NewMemoryStore()
	kind, err := labels.NodeKind("Disease")
	require.NoError(t, err)
	_, err = store.UpsertNodes(context.Background(), kind, []domain.Node{{ID: "Disease::DOID:2377", Name: "multiple sclerosis"}})
	require.NoError(t, err)

	m := observability.New()
	svc, err := query.NewService(logger.Nop(), store, domain.DefaultSchema(), m)
	require.NoError(t, err)

	r := NewRouter(RouterConfig{
		Log:           logger.Nop(),
		Metrics:       m,
		CORSOrigins:   []string{"*"},
		GraphHandler:  httpH.NewGraphHandlerWithDeps(httpH.GraphHandlerDeps{Queries: svc}),
		HealthHandler: httpH.NewHealthHandler(nil),
	})

	for _, tc := range []struct {
		target string
		status int
	}{
		{"/healthcheck", http.StatusOK},
		{"/readyz", http.StatusOK},
		{"/api/neighborhood?id=Disease::DOID:2377", http.StatusOK},
		{"/api/neighborhood?id=Disease::UNKNOWN", http.StatusNotFound},
		{"/api/repurposing?disease_id=Disease::DOID:2377", http.StatusOK},
	} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tc.target, nil))
		assert.Equal(t, tc.status, rec.Code, tc.target)
		assert.NotEmpty(t, rec.Header().Get("X-Request-Id"), tc.target)
	}

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `hetio_api_requests_total{method="GET",route="/api/neighborhood",status="404"} 1`)
	assert.Contains(t, rec.Body.String(), `hetio_queries_total{query="repurposing",status="ok"} 1`)
}

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/hetiograph/internal/domain"
	"github.com/yungbote/hetiograph/internal/http/response"
	perrors "github.com/yungbote/hetiograph/internal/pkg/errors"
)

type fakeQueries struct {
	gotLimit int
	err      error
}

func (f *fakeQueries) Neighborhood(ctx context.Context, id string) (*domain.NeighborhoodResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	if id == "Disease::UNKNOWN" {
		return nil, perrors.NotFound("neighborhood", id)
	}
	return &domain.NeighborhoodResult{ID: id, Name: "multiple sclerosis", Kind: "Disease", Drugs: []string{}, Genes: []string{"G2"}, Locations: []string{"brain"}}, nil
}

func (f *fakeQueries) RepurposingCandidates(ctx context.Context, id string, limit int) ([]domain.CandidateDrug, error) {
	f.gotLimit = limit
	if f.err != nil {
		return nil, f.err
	}
	return []domain.CandidateDrug{{ID: "Compound::Z", Name: "Zeta", MatchedGeneCount: 3}}, nil
}

type fakeLoader struct {
	nodes, edges string
	err          error
}

func (f *fakeLoader) LoadFiles(ctx context.Context, nodes, edges string) (*domain.LoadReport, error) {
	f.nodes, f.edges = nodes, edges
	if f.err != nil {
		return nil, f.err
	}
	return &domain.LoadReport{NodesWritten: 2, EdgesMerged: 1}, nil
}

func newTestRouter(q Querier, l Loader) *gin.Engine {
	return newTestRouterWithRoot(q, l, "/srv/hetio")
}

func newTestRouterWithRoot(q Querier, l Loader, root string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewGraphHandlerWithDeps(GraphHandlerDeps{Queries: q, Loader: l, InputRoot: root})
	r := gin.New()
	r.GET("/api/neighborhood", h.Neighborhood)
	r.GET("/api/repurposing", h.Repurposing)
	r.POST("/api/loads", h.Load)
	return r
}

func do(r http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) response.APIError {
	t.Helper()
	var env response.ErrorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env.Error
}

func TestNeighborhoodHandler(t *testing.T) {
	r := newTestRouter(&fakeQueries{}, nil)

	rec := do(r, http.MethodGet, "/api/neighborhood?id=Disease::DOID:2377", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var res domain.NeighborhoodResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "multiple sclerosis", res.Name)
	assert.Equal(t, []string{}, res.Drugs)

	rec = do(r, http.MethodGet, "/api/neighborhood?id=Disease::UNKNOWN", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", decodeError(t, rec).Code)

	rec = do(r, http.MethodGet, "/api/neighborhood", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "missing_id", decodeError(t, rec).Code)
}

func TestRepurposingHandler(t *testing.T) {
	q := &fakeQueries{}
	r := newTestRouter(q, nil)

	rec := do(r, http.MethodGet, "/api/repurposing?disease_id=Disease::DOID:2377&limit=5", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 5, q.gotLimit)
	var body repurposingResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Candidates, 1)
	assert.Equal(t, 3, body.Candidates[0].MatchedGeneCount)

	rec = do(r, http.MethodGet, "/api/repurposing?disease_id=D&limit=-2", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_limit", decodeError(t, rec).Code)
}

func TestStoreFailuresMapToGatewayStatuses(t *testing.T) {
	q := &fakeQueries{err: perrors.StoreConnection("expand", "neo4j", errors.New("dial tcp"))}
	r := newTestRouter(q, nil)
	rec := do(r, http.MethodGet, "/api/repurposing?disease_id=D", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "store_connection", decodeError(t, rec).Code)

	q.err = perrors.StoreQuery("expand", "neo4j", errors.New("syntax"))
	rec = do(r, http.MethodGet, "/api/neighborhood?id=D", "")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestLoadHandler(t *testing.T) {
	l := &fakeLoader{}
	r := newTestRouter(&fakeQueries{}, l)

	rec := do(r, http.MethodPost, "/api/loads", `{"nodes":"gs://b/nodes.tsv","edges":"v1/edges.tsv.gz"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "gs://b/nodes.tsv", l.nodes)
	assert.Equal(t, filepath.Join("/srv/hetio", "v1/edges.tsv.gz"), l.edges)
	var report domain.LoadReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, 2, report.NodesWritten)

	rec = do(r, http.MethodPost, "/api/loads", `{"nodes":"x"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	l.err = perrors.MalformedInput("read header", "x", "missing required columns kind", nil)
	rec = do(r, http.MethodPost, "/api/loads", `{"nodes":"x","edges":"y"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "malformed_input", decodeError(t, rec).Code)
}

func TestLoadHandlerConfinesLocalPaths(t *testing.T) {
	l := &fakeLoader{}
	r := newTestRouter(&fakeQueries{}, l)
	for _, body := range []string{
		`{"nodes":"/etc/passwd","edges":"gs://b/e.tsv"}`,
		`{"nodes":"gs://b/n.tsv","edges":"../../etc/shadow"}`,
		`{"nodes":"a/../../x.tsv","edges":"gs://b/e.tsv"}`,
	} {
		l.nodes, l.edges = "", ""
		rec := do(r, http.MethodPost, "/api/loads", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.Equal(t, "invalid_argument", decodeError(t, rec).Code, body)
		assert.Empty(t, l.nodes, body)
	}

	noRoot := newTestRouterWithRoot(&fakeQueries{}, l, "")
	rec := do(noRoot, http.MethodPost, "/api/loads", `{"nodes":"nodes.tsv","edges":"gs://b/e.tsv"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeError(t, rec).Message, "gs://")

	rec = do(noRoot, http.MethodPost, "/api/loads", `{"nodes":"gs://b/n.tsv","edges":"gs://b/e.tsv"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLoadHandlerDisabled(t *testing.T) {
	r := newTestRouter(&fakeQueries{}, nil)
	rec := do(r, http.MethodPost, "/api/loads", `{"nodes":"x","edges":"y"}`)
	assert.Equal(t, http.StatusNotImplemented, rec.Code)
}

func TestReady(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewHealthHandler(map[string]Check{
		"graph":  func(context.Context) error { return nil },
		"mirror": func(context.Context) error { return errors.New("down") },
	})
	r := gin.New()
	r.GET("/readyz", h.Ready)
	r.GET("/healthcheck", h.HealthCheck)

	rec := do(r, http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"mirror":"down"`)

	rec = do(r, http.MethodGet, "/healthcheck", "")
	assert.Equal(t, "ok", rec.Body.String())
}

package handlers

import (
	"context"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/hetiograph/internal/domain"
	"github.com/yungbote/hetiograph/internal/http/response"
	perrors "github.com/yungbote/hetiograph/internal/pkg/errors"
	"github.com/yungbote/hetiograph/internal/platform/logger"
)

// Querier is the read side served by GraphHandler.
type Querier interface {
	Neighborhood(ctx context.Context, id string) (*domain.NeighborhoodResult, error)
	RepurposingCandidates(ctx context.Context, diseaseID string, limit int) ([]domain.CandidateDrug, error)
}

// Loader is the write side served by GraphHandler.
type Loader interface {
	LoadFiles(ctx context.Context, nodesPath, edgesPath string) (*domain.LoadReport, error)
}

type GraphHandlerDeps struct {
	Log     *logger.Logger
	Queries Querier
	Loader  Loader
	// InputRoot confines local load paths. Empty allows gs:// objects only.
	InputRoot string
}

type GraphHandler struct {
	log       *logger.Logger
	queries   Querier
	loader    Loader
	inputRoot string
}

func NewGraphHandlerWithDeps(deps GraphHandlerDeps) *GraphHandler {
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}
	return &GraphHandler{
		log:       log.With("handler", "GraphHandler"),
		queries:   deps.Queries,
		loader:    deps.Loader,
		inputRoot: strings.TrimSpace(deps.InputRoot),
	}
}

// GET /api/neighborhood?id=
func (h *GraphHandler) Neighborhood(c *gin.Context) {
	id := strings.TrimSpace(c.Query("id"))
	if id == "" {
		response.RespondError(c, http.StatusBadRequest, "missing_id", nil)
		return
	}
	res, err := h.queries.Neighborhood(c.Request.Context(), id)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, res)
}

type repurposingResponse struct {
	DiseaseID  string                 `json:"disease_id"`
	Candidates []domain.CandidateDrug `json:"candidates"`
}

// GET /api/repurposing?disease_id=&limit=
func (h *GraphHandler) Repurposing(c *gin.Context) {
	diseaseID := strings.TrimSpace(c.Query("disease_id"))
	if diseaseID == "" {
		response.RespondError(c, http.StatusBadRequest, "missing_disease_id", nil)
		return
	}
	limit := 0
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			response.RespondError(c, http.StatusBadRequest, "invalid_limit", err)
			return
		}
		limit = n
	}
	out, err := h.queries.RepurposingCandidates(c.Request.Context(), diseaseID, limit)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, repurposingResponse{DiseaseID: diseaseID, Candidates: out})
}

type loadRequest struct {
	Nodes string `json:"nodes" binding:"required"`
	Edges string `json:"edges" binding:"required"`
}

// POST /api/loads
// Paths are gs:// objects or paths relative to the configured input root.
func (h *GraphHandler) Load(c *gin.Context) {
	if h.loader == nil {
		response.RespondError(c, http.StatusNotImplemented, "loads_disabled", nil)
		return
	}
	var req loadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	nodes, err := h.resolveInput(req.Nodes)
	if err == nil {
		req.Edges, err = h.resolveInput(req.Edges)
	}
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	report, err := h.loader.LoadFiles(c.Request.Context(), nodes, req.Edges)
	if err != nil {
		h.log.Warn("load request failed", "nodes", req.Nodes, "edges", req.Edges, "error", err)
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, report)
}

// resolveInput maps a requested path onto one the loader may open.
func (h *GraphHandler) resolveInput(raw string) (string, error) {
	p := strings.TrimSpace(raw)
	if strings.HasPrefix(p, "gs://") {
		return p, nil
	}
	if h.inputRoot == "" {
		return "", perrors.InvalidArgument("load request", "local paths are disabled, use gs:// objects")
	}
	if !filepath.IsLocal(p) {
		return "", perrors.InvalidArgument("load request", "path must be relative to the input root")
	}
	return filepath.Join(h.inputRoot, p), nil
}

package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/morphingprojections/projection-job/internal/domain"
	"github.com/morphingprojections/projection-job/internal/logger"
	"github.com/morphingprojections/projection-job/internal/repository"
	"github.com/morphingprojections/projection-job/internal/service"
)

// ProjectionRunner runs the projection job and reads the annotation catalog.
type ProjectionRunner interface {
	Run(ctx context.Context, caseID string, spaces []domain.Space) ([]service.SpaceResult, error)
	ListAnnotations(ctx context.Context, caseID string, group domain.Group) ([]domain.Annotation, error)
}

// ProjectionHandler exposes the projection job over HTTP.
type ProjectionHandler struct {
	runner ProjectionRunner

	mu      sync.Mutex
	running map[string]bool
}

// NewProjectionHandler creates a new projection handler.
func NewProjectionHandler(runner ProjectionRunner) *ProjectionHandler {
	return &ProjectionHandler{
		runner:  runner,
		running: make(map[string]bool),
	}
}

// RunResponse is the body returned by Run.
type RunResponse struct {
	CaseID  string                `json:"case_id"`
	JobID   string                `json:"job_id"`
	Results []service.SpaceResult `json:"results"`
}

// Run handles POST /api/v1/cases/:id/projections?spaces=primal,dual.
// The job runs synchronously; a second request for a case already running gets 409.
func (h *ProjectionHandler) Run(c *gin.Context) {
	ctx := c.Request.Context()
	caseID := c.Param("id")

	var names []string
	if raw := c.Query("spaces"); raw != "" {
		names = strings.Split(raw, ",")
	}
	spaces, err := service.ParseSpaces(names)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !h.acquire(caseID) {
		logger.CtxWarn(ctx, "Projection request rejected: case %s already running, client_ip=%s", caseID, c.ClientIP())
		c.JSON(http.StatusConflict, gin.H{"error": "projection job is already running for this case"})
		return
	}
	defer h.release(caseID)

	logger.CtxInfo(ctx, "Received projection request: case=%s, spaces=%v", caseID, spaces)

	jobID := logger.GetRequestID(ctx)
	ctx = logger.SetJobID(ctx, jobID)
	results, err := h.runner.Run(ctx, caseID, spaces)
	if err != nil {
		logger.CtxError(ctx, "Projection job failed: case=%s, error=%v", caseID, err)
		c.JSON(statusFor(err), gin.H{"error": err.Error(), "results": results})
		return
	}

	if results == nil {
		results = []service.SpaceResult{}
	}
	c.JSON(http.StatusOK, RunResponse{CaseID: caseID, JobID: jobID, Results: results})
}

// Annotations handles GET /api/v1/cases/:id/annotations?group=sample.
func (h *ProjectionHandler) Annotations(c *gin.Context) {
	ctx := c.Request.Context()
	group, err := domain.ParseGroup(c.Query("group"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	annotations, err := h.runner.ListAnnotations(ctx, c.Param("id"), group)
	if err != nil {
		logger.CtxError(ctx, "Failed to list annotations: case=%s, error=%v", c.Param("id"), err)
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"annotations": annotations,
		"total":       len(annotations),
	})
}

func (h *ProjectionHandler) acquire(caseID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.running[caseID] {
		return false
	}
	h.running[caseID] = true
	return true
}

func (h *ProjectionHandler) release(caseID string) {
	h.mu.Lock()
	delete(h.running, caseID)
	h.mu.Unlock()
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, repository.ErrCaseNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrEmptyMatrix),
		errors.Is(err, service.ErrMissingTable),
		errors.Is(err, service.ErrInvalidResourceKey),
		errors.Is(err, service.ErrInvalidAnnotation):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/morphingprojections/projection-job/internal/api/middleware"
	"github.com/morphingprojections/projection-job/internal/domain"
	"github.com/morphingprojections/projection-job/internal/repository"
	"github.com/morphingprojections/projection-job/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRunner struct {
	mu      sync.Mutex
	spaces  []domain.Space
	group   domain.Group
	err     error
	block   chan struct{}
	started chan struct{}
}

func (f *fakeRunner) Run(_ context.Context, caseID string, spaces []domain.Space) ([]service.SpaceResult, error) {
	if f.started != nil {
		close(f.started)
	}
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	f.spaces = spaces
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	results := make([]service.SpaceResult, 0, len(spaces))
	for _, s := range spaces {
		results = append(results, service.SpaceResult{Space: s, Rows: 3, Key: fmt.Sprintf("p/%s/%s_projection.csv", caseID, s)})
	}
	return results, nil
}

func (f *fakeRunner) ListAnnotations(_ context.Context, caseID string, group domain.Group) ([]domain.Annotation, error) {
	f.group = group
	if f.err != nil {
		return nil, f.err
	}
	return []domain.Annotation{{ID: "a1", CaseID: caseID, Group: group, Name: "subtype"}}, nil
}

type fakePinger struct{ err error }

func (p fakePinger) PingContext(context.Context) error { return p.err }

func do(t *testing.T, h http.Handler, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	r := SetupRouter(&fakeRunner{}, fakePinger{}, middleware.CORSConfig{}, "test")
	w := do(t, r, http.MethodGet, "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))

	r = SetupRouter(&fakeRunner{}, fakePinger{err: errors.New("down")}, middleware.CORSConfig{}, "test")
	w = do(t, r, http.MethodGet, "/health")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestRunProjections(t *testing.T) {
	runner := &fakeRunner{}
	r := SetupRouter(runner, nil, middleware.CORSConfig{}, "test")

	w := do(t, r, http.MethodPost, "/api/v1/cases/c1/projections?spaces=dual,primal")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var body struct {
		CaseID  string                `json:"case_id"`
		JobID   string                `json:"job_id"`
		Results []service.SpaceResult `json:"results"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "c1", body.CaseID)
	assert.Equal(t, w.Header().Get(middleware.RequestIDHeader), body.JobID)
	require.Len(t, body.Results, 2)
	assert.Equal(t, domain.SpaceDual, body.Results[0].Space)
	assert.Equal(t, []domain.Space{domain.SpaceDual, domain.SpacePrimal}, runner.spaces)
}

func TestRunProjections_Errors(t *testing.T) {
	tests := []struct {
		name string
		path string
		err  error
		want int
	}{
		{"bad space", "/api/v1/cases/c1/projections?spaces=diagonal", nil, http.StatusBadRequest},
		{"unknown case", "/api/v1/cases/c9/projections?spaces=primal", fmt.Errorf("wrap: %w", repository.ErrCaseNotFound), http.StatusNotFound},
		{"empty matrix", "/api/v1/cases/c1/projections?spaces=primal", service.ErrEmptyMatrix, http.StatusUnprocessableEntity},
		{"reducer failure", "/api/v1/cases/c1/projections?spaces=primal", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := SetupRouter(&fakeRunner{err: tt.err}, nil, middleware.CORSConfig{}, "test")
			w := do(t, r, http.MethodPost, tt.path)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestRunProjections_RejectsConcurrentRunForSameCase(t *testing.T) {
	runner := &fakeRunner{block: make(chan struct{}), started: make(chan struct{})}
	r := SetupRouter(runner, nil, middleware.CORSConfig{}, "test")

	done := make(chan int)
	go func() {
		done <- do(t, r, http.MethodPost, "/api/v1/cases/c1/projections?spaces=primal").Code
	}()
	<-runner.started

	w := do(t, r, http.MethodPost, "/api/v1/cases/c1/projections?spaces=primal")
	assert.Equal(t, http.StatusConflict, w.Code)

	close(runner.block)
	assert.Equal(t, http.StatusOK, <-done)
}

func TestListAnnotations(t *testing.T) {
	runner := &fakeRunner{}
	r := SetupRouter(runner, nil, middleware.CORSConfig{}, "test")

	w := do(t, r, http.MethodGet, "/api/v1/cases/c1/annotations?group=projection")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, domain.GroupProjection, runner.group)

	var body struct {
		Total       int                 `json:"total"`
		Annotations []domain.Annotation `json:"annotations"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Total)
	assert.Equal(t, "subtype", body.Annotations[0].Name)

	w = do(t, r, http.MethodGet, "/api/v1/cases/c1/annotations?group=bogus")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCORSPreflight(t *testing.T) {
	r := SetupRouter(&fakeRunner{}, nil, middleware.CORSConfig{AllowedOrigins: []string{"https://viewer.example"}}, "test")

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/cases/c1/projections", nil)
	req.Header.Set("Origin", "https://viewer.example")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://viewer.example", w.Header().Get("Access-Control-Allow-Origin"))
}

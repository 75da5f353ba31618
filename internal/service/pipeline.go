package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/morphingprojections/projection-job/internal/domain"
	"github.com/morphingprojections/projection-job/internal/logger"
)

// SpaceResult summarizes the outcome of one space.
type SpaceResult struct {
	Space       domain.Space `json:"space"`
	Skipped     bool         `json:"skipped"`
	Projections int          `json:"projections"`
	Rows        int          `json:"rows"`
	Columns     int          `json:"columns"`
	Bucket      string       `json:"bucket,omitempty"`
	Key         string       `json:"key,omitempty"`
	ResourceID  string       `json:"resource_id,omitempty"`
	Created     bool         `json:"created"`
	Bytes       int          `json:"bytes"`
}

// Pipeline runs the projection job for one case.
type Pipeline struct {
	cases       CaseStore
	resources   ResourceStore
	annotations AnnotationCatalog
	loader      *TableLoader
	builder     *ProjectionBuilder
	publisher   *Publisher
}

// NewPipeline wires the pipeline stages.
func NewPipeline(
	cases CaseStore,
	resources ResourceStore,
	annotations AnnotationCatalog,
	loader *TableLoader,
	builder *ProjectionBuilder,
	publisher *Publisher,
) *Pipeline {
	return &Pipeline{
		cases:       cases,
		resources:   resources,
		annotations: annotations,
		loader:      loader,
		builder:     builder,
		publisher:   publisher,
	}
}

// ParseSpaces parses a list of space names, dropping duplicates and keeping the first
// occurrence order.
func ParseSpaces(names []string) ([]domain.Space, error) {
	seen := make(map[domain.Space]bool, len(names))
	spaces := make([]domain.Space, 0, len(names))
	for _, name := range names {
		if name == "" {
			continue
		}
		space, err := domain.ParseSpace(name)
		if err != nil {
			return nil, err
		}
		if !seen[space] {
			seen[space] = true
			spaces = append(spaces, space)
		}
	}
	return spaces, nil
}

// Run computes and publishes the projections of every requested space for a case.
// Spaces run one after another; the first failure aborts the run and is returned along
// with the results of the spaces already published. An empty space list is a no-op.
func (p *Pipeline) Run(ctx context.Context, caseID string, spaces []domain.Space) ([]SpaceResult, error) {
	if logger.GetJobID(ctx) == "" {
		ctx = logger.SetJobID(ctx, uuid.New().String())
	}
	ctx = logger.SetCaseID(ctx, caseID)
	ctx = logger.SetComponent(ctx, "projection")

	if len(spaces) == 0 {
		logger.CtxWarn(ctx, "No spaces requested, nothing to do")
		return nil, nil
	}

	start := time.Now()
	logger.CtxInfo(ctx, "Projection for case id: %s and spaces: %v", caseID, spaces)

	logger.CtxInfo(ctx, "STEP01: Get case from case identifier %s", caseID)
	c, err := p.cases.GetByID(ctx, caseID)
	if err != nil {
		return nil, err
	}

	logger.CtxInfo(ctx, "STEP02: Get resource types from case identifier %s", caseID)
	refs, err := ListCaseResources(ctx, p.resources, caseID)
	if err != nil {
		return nil, err
	}

	logger.CtxInfo(ctx, "STEP03: Create resource type tables from case identifier %s", caseID)
	tables, err := p.loader.LoadCase(ctx, refs)
	if err != nil {
		return nil, err
	}

	results := make([]SpaceResult, 0, len(spaces))
	for _, space := range spaces {
		result, err := p.runSpace(logger.SetSpace(ctx, string(space)), c, refs, tables, space)
		if err != nil {
			return results, fmt.Errorf("space %s: %w", space, err)
		}
		results = append(results, *result)
	}

	logger.With(logger.Fields{"spaces": len(results)}).
		Since(start).
		Info(ctx, "Projection job finalized")
	return results, nil
}

func (p *Pipeline) runSpace(ctx context.Context, c *domain.Case, refs *CaseResources, tables *CaseTables, space domain.Space) (*SpaceResult, error) {
	start := time.Now()
	result := &SpaceResult{Space: space}

	logger.CtxInfo(ctx, "STEP04: Get required space annotations for space %s and case identifier %s", space, c.ID)
	annotations, err := p.annotations.ListRequiredBySpace(ctx, c.ID, space)
	if err != nil {
		return nil, fmt.Errorf("failed to list annotations: %w", err)
	}
	if err := validateAnnotations(annotations); err != nil {
		return nil, err
	}
	for _, a := range annotations {
		if a.IsProjection() {
			result.Projections++
		}
	}

	logger.CtxInfo(ctx, "STEP05: Create data matrix by space %s and case identifier %s", space, c.ID)
	view, err := MatrixView(tables.Matrix, space)
	if err != nil {
		return nil, err
	}

	logger.CtxInfo(ctx, "STEP06: Create projection table from space %s and case identifier %s", space, c.ID)
	projection, err := p.builder.Build(ctx, view, tables, space, annotations)
	if errors.Is(err, ErrNoProjections) {
		logger.CtxWarn(ctx, "No required projection annotations for space %s, skipping", space)
		result.Skipped = true
		return result, nil
	}
	if err != nil {
		return nil, err
	}
	result.Rows = projection.Len()
	result.Columns = len(projection.Columns())

	loc, err := OutputKey(refs.Matrix[0], space)
	if err != nil {
		return nil, err
	}
	result.Bucket, result.Key = loc.Bucket, loc.Key

	logger.CtxInfo(ctx, "STEP07: Exist resource from space %s and case identifier %s", space, c.ID)
	existing, err := p.publisher.Locate(ctx, c.ID, loc)
	if err != nil {
		return nil, err
	}

	logger.CtxInfo(ctx, "STEP08: Save resource from space %s and case identifier %s", space, c.ID)
	res, created, err := p.publisher.Upsert(ctx, c, space, loc, existing)
	if err != nil {
		return nil, err
	}
	result.ResourceID, result.Created = res.ID, created

	logger.CtxInfo(ctx, "STEP09: Save projection table from space %s and case identifier %s", space, c.ID)
	if result.Bytes, err = p.publisher.Write(ctx, loc, projection); err != nil {
		return nil, err
	}

	logger.With(logger.Fields{"key": loc.Key, "created": created}).
		WithShape(result.Rows, result.Columns).
		WithSize(result.Bytes).
		Since(start).
		Info(ctx, "Space %s published", space)
	return result, nil
}

// ListAnnotations returns the required annotations of one group for a case.
func (p *Pipeline) ListAnnotations(ctx context.Context, caseID string, group domain.Group) ([]domain.Annotation, error) {
	if _, err := p.cases.GetByID(ctx, caseID); err != nil {
		return nil, err
	}
	annotations, err := p.annotations.ListRequiredByGroup(ctx, caseID, group)
	if err != nil {
		return nil, err
	}
	if err := validateAnnotations(annotations); err != nil {
		return nil, err
	}
	return annotations, nil
}

// validateAnnotations checks labels and value domains against each annotation's declared type.
func validateAnnotations(annotations []domain.Annotation) error {
	for i := range annotations {
		if _, err := annotations[i].Labels(); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidAnnotation, err)
		}
		if _, err := annotations[i].ValueDomain(); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidAnnotation, err)
		}
	}
	return nil
}

package service

import (
	"context"
	"fmt"
	"time"

	"github.com/morphingprojections/projection-job/internal/domain"
	"github.com/morphingprojections/projection-job/internal/logger"
	"github.com/morphingprojections/projection-job/internal/storage"
	"github.com/morphingprojections/projection-job/internal/table"
)

// CaseResources groups the input resource records of a case by kind.
type CaseResources struct {
	Matrix                 []domain.Resource
	SampleAnnotations      []domain.Resource
	AttributeAnnotations   []domain.Resource
	SamplePrecalculated    []domain.Resource
	AttributePrecalculated []domain.Resource
}

// CaseTables holds the loaded tables of a case. Any table may be nil when the
// case has no resources of that kind or every object of the kind failed to load.
type CaseTables struct {
	Matrix                 *table.Table
	SampleAnnotations      *table.Table
	AttributeAnnotations   *table.Table
	SamplePrecalculated    *table.Table
	AttributePrecalculated *table.Table
}

// SubjectAnnotations returns the annotation table describing the entities embedded in space.
func (t *CaseTables) SubjectAnnotations(space domain.Space) *table.Table {
	if space == domain.SpaceDual {
		return t.AttributeAnnotations
	}
	return t.SampleAnnotations
}

// OppositeAnnotations returns the annotation table of the feature axis of space.
func (t *CaseTables) OppositeAnnotations(space domain.Space) *table.Table {
	if space == domain.SpaceDual {
		return t.SampleAnnotations
	}
	return t.AttributeAnnotations
}

// Precalculated returns the precomputed embedding table for space.
func (t *CaseTables) Precalculated(space domain.Space) *table.Table {
	if space == domain.SpaceDual {
		return t.AttributePrecalculated
	}
	return t.SamplePrecalculated
}

// TableLoader reads sharded delimited objects into tables.
type TableLoader struct {
	storage storage.ObjectStorage
}

// NewTableLoader creates a loader reading from objectStorage.
func NewTableLoader(objectStorage storage.ObjectStorage) *TableLoader {
	return &TableLoader{storage: objectStorage}
}

// ListCaseResources fetches the input resource records of every kind for a case.
func ListCaseResources(ctx context.Context, resources ResourceStore, caseID string) (*CaseResources, error) {
	out := &CaseResources{}
	for _, item := range []struct {
		kind domain.ResourceKind
		dst  *[]domain.Resource
	}{
		{domain.ResourceDataMatrix, &out.Matrix},
		{domain.ResourceSampleAnnotation, &out.SampleAnnotations},
		{domain.ResourceAttributeAnnotation, &out.AttributeAnnotations},
		{domain.ResourceSamplePrecalculated, &out.SamplePrecalculated},
		{domain.ResourceAttributePrecalculated, &out.AttributePrecalculated},
	} {
		list, err := resources.ListByCaseAndKind(ctx, caseID, item.kind)
		if err != nil {
			return nil, fmt.Errorf("failed to list %s resources: %w", item.kind, err)
		}
		*item.dst = list
	}
	return out, nil
}

// LoadCase loads one table per resource kind.
func (l *TableLoader) LoadCase(ctx context.Context, refs *CaseResources) (*CaseTables, error) {
	var (
		tables CaseTables
		err    error
	)
	if tables.Matrix, err = l.Load(ctx, domain.ResourceDataMatrix, refs.Matrix); err != nil {
		return nil, err
	}
	if tables.SampleAnnotations, err = l.Load(ctx, domain.ResourceSampleAnnotation, refs.SampleAnnotations); err != nil {
		return nil, err
	}
	if tables.AttributeAnnotations, err = l.Load(ctx, domain.ResourceAttributeAnnotation, refs.AttributeAnnotations); err != nil {
		return nil, err
	}
	if tables.SamplePrecalculated, err = l.Load(ctx, domain.ResourceSamplePrecalculated, refs.SamplePrecalculated); err != nil {
		return nil, err
	}
	if tables.AttributePrecalculated, err = l.Load(ctx, domain.ResourceAttributePrecalculated, refs.AttributePrecalculated); err != nil {
		return nil, err
	}
	return &tables, nil
}

// Load reads every referenced object and concatenates them, in order, into one table
// whose axes are named after kind. Objects that cannot be read or parsed are logged and
// skipped. The result is nil when refs is empty or no object could be read; the only
// error returned is context cancellation.
func (l *TableLoader) Load(ctx context.Context, kind domain.ResourceKind, refs []domain.Resource) (*table.Table, error) {
	if len(refs) == 0 {
		return nil, nil
	}

	start := time.Now()
	var merged *table.Table
	failed := 0
	for _, ref := range refs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		shard, err := l.read(ctx, ref)
		if err != nil {
			failed++
			logger.With(logger.Fields{
				"bucket": ref.Bucket,
				"file":   ref.File,
				"kind":   string(kind),
			}).Error(ctx, "Failed to load resource %s: %v", ref.ID, err)
			continue
		}
		merged = table.Concat(merged, shard)
	}
	if merged == nil {
		return nil, nil
	}

	row, column := kind.Axes()
	merged.SetAxes(row, column)

	logger.With(logger.Fields{"kind": string(kind), "failed": failed}).
		WithShape(merged.Len(), len(merged.Columns())).
		WithCount(len(refs)-failed).
		Since(start).
		Debug(ctx, "Loaded %d %s objects", len(refs)-failed, kind)
	return merged, nil
}

func (l *TableLoader) read(ctx context.Context, ref domain.Resource) (*table.Table, error) {
	rc, err := l.storage.Download(ctx, ref.Bucket, ref.File)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	t, err := table.ReadCSV(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s/%s: %w", ref.Bucket, ref.File, err)
	}
	return t, nil
}

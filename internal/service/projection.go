package service

import (
	"context"
	"fmt"
	"time"

	"github.com/morphingprojections/projection-job/internal/domain"
	"github.com/morphingprojections/projection-job/internal/logger"
	"github.com/morphingprojections/projection-job/internal/reduction"
	"github.com/morphingprojections/projection-job/internal/table"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// ProjectionConfig holds the settings the builder is constructed with.
type ProjectionConfig struct {
	// DefaultNeighbors is the neighborhood size used when the matrix has enough rows.
	DefaultNeighbors int
	// Workers bounds how many embeddings are built at once. 1 builds them one after another.
	Workers int
}

// ProjectionBuilder turns the projection annotations of a space into one merged table.
type ProjectionBuilder struct {
	reducer          reduction.Reducer
	defaultNeighbors int
	workers          int
}

// NewProjectionBuilder creates a builder driving reducer.
func NewProjectionBuilder(reducer reduction.Reducer, cfg ProjectionConfig) *ProjectionBuilder {
	if cfg.DefaultNeighbors < 1 {
		cfg.DefaultNeighbors = reduction.DefaultNeighbors
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	return &ProjectionBuilder{
		reducer:          reducer,
		defaultNeighbors: cfg.DefaultNeighbors,
		workers:          cfg.Workers,
	}
}

// Build produces the projection table of space.
//
// Every projection annotation yields an x_<name>/y_<name> pair, either selected from the
// precomputed table or computed from view. The pairs are inner-joined in annotation order
// by subject identifier, so an entity missing from any single embedding is dropped. The
// subject annotation table is then inner-joined to attach metadata.
// Parameters:
//   - ctx: context for cancellation.
//   - view: the matrix view of space, rows are the subject axis.
//   - tables: the annotation and precomputed tables of the case.
//   - space: primal or dual.
//   - annotations: required annotations of the space; non-projection entries are ignored.
// Returns:
//   - *table.Table: merged table indexed by subject identifier.
//   - error: ErrNoProjections, ErrMissingTable, or a reduction failure.
func (b *ProjectionBuilder) Build(ctx context.Context, view *table.Table, tables *CaseTables, space domain.Space, annotations []domain.Annotation) (*table.Table, error) {
	projections := make([]domain.Annotation, 0, len(annotations))
	for _, a := range annotations {
		if a.IsProjection() {
			projections = append(projections, a)
		}
	}
	if len(projections) == 0 {
		return nil, ErrNoProjections
	}

	embeddings := make([]*table.Table, len(projections))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.workers)
	for i := range projections {
		g.Go(func() error {
			e, err := b.embedding(gctx, view, tables, space, &projections[i])
			if err != nil {
				return fmt.Errorf("projection %q: %w", projections[i].Name, err)
			}
			embeddings[i] = e
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := embeddings[0]
	for _, e := range embeddings[1:] {
		merged = table.InnerJoin(merged, e)
	}

	subject := tables.SubjectAnnotations(space)
	if subject == nil {
		return nil, fmt.Errorf("%w: %s annotations", ErrMissingTable, space.SubjectGroup())
	}
	merged = table.InnerJoin(merged, subject)
	merged.IndexName = view.IndexName
	return merged, nil
}

func (b *ProjectionBuilder) embedding(ctx context.Context, view *table.Table, tables *CaseTables, space domain.Space, a *domain.Annotation) (*table.Table, error) {
	ctx = logger.SetAnnotation(ctx, a.Name)
	if a.Precalculated {
		logger.CtxInfo(ctx, "Find precalculated annotations in %s space", space)
		return b.precalculated(tables, space, a)
	}
	return b.computed(ctx, view, tables, space, a)
}

func (b *ProjectionBuilder) precalculated(tables *CaseTables, space domain.Space, a *domain.Annotation) (*table.Table, error) {
	pre := tables.Precalculated(space)
	if pre == nil {
		return nil, fmt.Errorf("%w: %s", ErrMissingTable, space.PrecalculatedKind())
	}
	return pre.Select(a.XColumn(), a.YColumn())
}

func (b *ProjectionBuilder) computed(ctx context.Context, view *table.Table, tables *CaseTables, space domain.Space, a *domain.Annotation) (*table.Table, error) {
	subset, err := b.features(view, tables, space, a)
	if err != nil {
		return nil, err
	}

	data, err := subset.Dense()
	if err != nil {
		return nil, err
	}
	rows, cols := data.Dims()
	neighbors := reduction.Neighborhood(rows, b.defaultNeighbors)

	start := time.Now()
	embedded, err := b.reducer.Reduce(ctx, data, neighbors)
	if err != nil {
		return nil, err
	}
	logger.With(logger.Fields{"neighbors": neighbors}).
		WithShape(rows, cols).
		Since(start).
		Info(ctx, "Calculated embedding")

	if r, c := embedded.Dims(); r != rows || c != reduction.Dimensions {
		return nil, fmt.Errorf("reducer returned %dx%d for %d rows", r, c, rows)
	}
	normalized := MinMaxScale(embedded)

	return table.FromDense(view.IndexName, subset.Index(), []string{a.XColumn(), a.YColumn()}, normalized)
}

// features restricts view to the feature columns selected by the annotation filter.
func (b *ProjectionBuilder) features(view *table.Table, tables *CaseTables, space domain.Space, a *domain.Annotation) (*table.Table, error) {
	if !a.HasFilter() {
		return view, nil
	}

	opposite := tables.OppositeAnnotations(space)
	if opposite == nil {
		return nil, fmt.Errorf("%w: %s annotations", ErrMissingTable, space.OppositeGroup())
	}
	ids, err := opposite.Where(a.ProjectedByAnnotation, a.ProjectedByAnnotationValue)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("filter %s=%q selects no features", a.ProjectedByAnnotation, a.ProjectedByAnnotationValue)
	}
	return view.Select(ids...)
}

// MinMaxScale rescales every column of m independently to [0, 1].
// A constant column maps to all zeros.
func MinMaxScale(m mat.Matrix) *mat.Dense {
	r, c := m.Dims()
	out := mat.NewDense(r, c, nil)
	col := make([]float64, r)
	for j := 0; j < c; j++ {
		mat.Col(col, j, m)
		lo, hi := floats.Min(col), floats.Max(col)
		floats.AddConst(-lo, col)
		span := hi - lo
		for i := range col {
			if span > 0 {
				col[i] /= span
			} else {
				col[i] = 0
			}
		}
		out.SetCol(j, col)
	}
	return out
}

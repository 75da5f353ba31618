package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/morphingprojections/projection-job/internal/domain"
	"github.com/morphingprojections/projection-job/internal/reduction"
	"github.com/morphingprojections/projection-job/internal/repository"
	"github.com/morphingprojections/projection-job/internal/storage"
	"github.com/morphingprojections/projection-job/internal/table"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const testBucket = "cases"

// recordingReducer embeds row i at (i, sum of row i) and records every call.
type recordingReducer struct {
	mu        sync.Mutex
	neighbors []int
	shapes    [][2]int
}

func (r *recordingReducer) Reduce(_ context.Context, data *mat.Dense, neighbors int) (*mat.Dense, error) {
	if err := reduction.Validate(data, neighbors); err != nil {
		return nil, err
	}
	rows, cols := data.Dims()
	r.mu.Lock()
	r.neighbors = append(r.neighbors, neighbors)
	r.shapes = append(r.shapes, [2]int{rows, cols})
	r.mu.Unlock()

	out := mat.NewDense(rows, reduction.Dimensions, nil)
	for i := 0; i < rows; i++ {
		out.Set(i, 0, float64(i))
		out.Set(i, 1, mat.Sum(data.RowView(i)))
	}
	return out, nil
}

func (r *recordingReducer) calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.neighbors)
}

func ids(prefix string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("%s%d", prefix, i)
	}
	return out
}

// matrixCSV renders a samples x attributes matrix with distinct row sums.
func matrixCSV(samples, attributes []string) string {
	var b strings.Builder
	b.WriteString("sample_id," + strings.Join(attributes, ",") + "\n")
	for i, s := range samples {
		b.WriteString(s)
		for j := range attributes {
			fmt.Fprintf(&b, ",%d", (i*7+j*3)%11+i)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// annotationCSV renders an annotation table with one column whose value cycles through values.
func annotationCSV(index string, entities []string, column string, values ...string) string {
	var b strings.Builder
	b.WriteString(index + "," + column + "\n")
	for i, e := range entities {
		fmt.Fprintf(&b, "%s,%s\n", e, values[i%len(values)])
	}
	return b.String()
}

func mustTable(t *testing.T, csv string) *table.Table {
	t.Helper()
	tbl, err := table.ReadCSV(strings.NewReader(csv))
	require.NoError(t, err)
	return tbl
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, repository.Migrate(db))
	return db
}

// fixture is a case stored in an in-memory catalog and object store.
type fixture struct {
	t           *testing.T
	ctx         context.Context
	store       *storage.MemoryStorage
	cases       *repository.CaseRepository
	resources   *repository.ResourceRepository
	annotations *repository.AnnotationRepository
	reducer     *recordingReducer
	caseID      string
	n           int
}

func newFixture(t *testing.T) *fixture {
	db := newTestDB(t)
	f := &fixture{
		t:           t,
		ctx:         context.Background(),
		store:       storage.NewMemoryStorage(),
		cases:       repository.NewCaseRepository(db),
		resources:   repository.NewResourceRepository(db),
		annotations: repository.NewAnnotationRepository(db),
		reducer:     &recordingReducer{},
		caseID:      "c1",
	}
	require.NoError(t, f.cases.Create(f.ctx, &domain.Case{
		ID: f.caseID, ProjectID: "p1", Name: "C1", Description: "Melanoma", Type: domain.CaseTypePrivate,
	}))
	return f
}

func (f *fixture) addObject(kind domain.ResourceKind, key, content string) {
	f.n++
	require.NoError(f.t, f.store.Upload(f.ctx, testBucket, key, strings.NewReader(content), int64(len(content)), "text/csv"))
	require.NoError(f.t, f.resources.Create(f.ctx, &domain.Resource{
		ID:     fmt.Sprintf("r%02d", f.n),
		CaseID: f.caseID,
		Bucket: testBucket,
		File:   key,
		Kind:   kind,
	}))
}

func (f *fixture) addAnnotation(a domain.Annotation) {
	f.n++
	a.ID = fmt.Sprintf("a%02d", f.n)
	a.CaseID = f.caseID
	a.Required = true
	if a.Type == "" {
		a.Type = domain.AnnotationTypeString
	}
	require.NoError(f.t, f.annotations.Create(f.ctx, &a))
}

func (f *fixture) pipeline(workers int) *Pipeline {
	return NewPipeline(
		f.cases,
		f.resources,
		f.annotations,
		NewTableLoader(f.store),
		NewProjectionBuilder(f.reducer, ProjectionConfig{DefaultNeighbors: reduction.DefaultNeighbors, Workers: workers}),
		NewPublisher(f.resources, f.store, "Administrator"),
	)
}

func (f *fixture) artifact(key string) *table.Table {
	rc, err := f.store.Download(f.ctx, testBucket, key)
	require.NoError(f.t, err)
	defer rc.Close()
	tbl, err := table.ReadCSV(rc)
	require.NoError(f.t, err)
	return tbl
}

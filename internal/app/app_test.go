package app

import (
	"context"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/morphingprojections/projection-job/internal/config"
	"github.com/morphingprojections/projection-job/internal/domain"
	"github.com/morphingprojections/projection-job/internal/repository"
	"github.com/morphingprojections/projection-job/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func testConfig() *config.Config {
	return &config.Config{
		Database:   config.DatabaseConfig{Driver: "sqlite"},
		Storage:    config.StorageConfig{Type: "memory"},
		Reduction:  config.ReductionConfig{Method: "pca"},
		Projection: config.ProjectionConfig{DefaultNeighbors: 20, Workers: 2, AuditUser: "Administrator"},
		Log:        config.LogConfig{Level: "info", Format: "text"},
	}
}

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, repository.Migrate(db))
	return db
}

func TestNewWithDB_RunsPipelineEndToEnd(t *testing.T) {
	ctx := context.Background()
	a, err := NewWithDB(testConfig(), testDB(t))
	require.NoError(t, err)
	defer a.Close()

	require.NoError(t, repository.NewCaseRepository(a.DB).Create(ctx, &domain.Case{ID: "c1", ProjectID: "p", Name: "c", Description: "Lung", Type: domain.CaseTypePublic}))
	resources := repository.NewResourceRepository(a.DB)
	put := func(id string, kind domain.ResourceKind, key, body string) {
		require.NoError(t, a.Storage.Upload(ctx, "b", key, strings.NewReader(body), int64(len(body)), "text/csv"))
		require.NoError(t, resources.Create(ctx, &domain.Resource{ID: id, CaseID: "c1", Bucket: "b", File: key, Kind: kind}))
	}
	put("r1", domain.ResourceDataMatrix, "p/c1/matrix.csv", "sample_id,g0,g1,g2\ns0,1,0,2\ns1,2,1,0\ns2,0,3,1\ns3,4,1,1\n")
	put("r2", domain.ResourceSampleAnnotation, "p/c1/samples.csv", "sample_id,subtype\ns0,A\ns1,A\ns2,B\ns3,B\n")
	require.NoError(t, repository.NewAnnotationRepository(a.DB).Create(ctx, &domain.Annotation{
		ID: "a1", CaseID: "c1", Group: domain.GroupProjection, Space: domain.SpacePrimal, Type: domain.AnnotationTypeNumeric, Name: "pca", Required: true,
	}))

	results, err := a.Pipeline.Run(ctx, "c1", []domain.Space{domain.SpacePrimal})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 4, results[0].Rows)

	ok, err := a.Storage.Exists(ctx, "b", "p/c1/primal_projection.csv")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.IsType(t, &storage.MemoryStorage{}, a.Storage)
}

func TestNewWithDB_RejectsUnknownReducer(t *testing.T) {
	cfg := testConfig()
	cfg.Reduction.Method = "umap"
	_, err := NewWithDB(cfg, testDB(t))
	assert.Error(t, err)
}

package repository

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/morphingprojections/projection-job/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// every connection to :memory: is a separate database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, Migrate(db))
	return db
}

func TestCaseRepository_GetByID(t *testing.T) {
	ctx := context.Background()
	repo := NewCaseRepository(newTestDB(t))

	require.NoError(t, repo.Create(ctx, &domain.Case{
		ID: "c1", ProjectID: "p1", Name: "Breast cancer", Description: "BRCA", Type: domain.CaseTypePrivate,
	}))

	got, err := repo.GetByID(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "BRCA", got.Description)

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrCaseNotFound)
}

func TestResourceRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewResourceRepository(newTestDB(t))

	for _, r := range []domain.Resource{
		{ID: "r2", CaseID: "c1", Bucket: "b", File: "p/c1/m2.csv", Kind: domain.ResourceDataMatrix},
		{ID: "r1", CaseID: "c1", Bucket: "b", File: "p/c1/m1.csv", Kind: domain.ResourceDataMatrix},
		{ID: "r3", CaseID: "c1", Bucket: "b", File: "p/c1/s.csv", Kind: domain.ResourceSampleAnnotation},
		{ID: "r4", CaseID: "c2", Bucket: "b", File: "p/c2/m.csv", Kind: domain.ResourceDataMatrix},
	} {
		r := r
		require.NoError(t, repo.Create(ctx, &r))
	}

	matrices, err := repo.ListByCaseAndKind(ctx, "c1", domain.ResourceDataMatrix)
	require.NoError(t, err)
	require.Len(t, matrices, 2)
	assert.Equal(t, "r1", matrices[0].ID)
	assert.Equal(t, "r2", matrices[1].ID)

	none, err := repo.ListByCaseAndKind(ctx, "c1", domain.ResourcePrimalProjection)
	require.NoError(t, err)
	assert.Empty(t, none)

	found, err := repo.FindByLocation(ctx, "c1", "b", "p/c1/s.csv")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "r3", found.ID)

	missing, err := repo.FindByLocation(ctx, "c2", "b", "p/c1/s.csv")
	require.NoError(t, err)
	assert.Nil(t, missing)

	found.Description = "updated"
	require.NoError(t, repo.Update(ctx, found))
	again, err := repo.FindByLocation(ctx, "c1", "b", "p/c1/s.csv")
	require.NoError(t, err)
	assert.Equal(t, "updated", again.Description)
}

func TestAnnotationRepository_ListRequired(t *testing.T) {
	ctx := context.Background()
	repo := NewAnnotationRepository(newTestDB(t))

	for _, a := range []domain.Annotation{
		{ID: "a1", CaseID: "c1", Group: domain.GroupSample, Type: domain.AnnotationTypeString, Name: "subtype", Required: true},
		{ID: "a2", CaseID: "c1", Group: domain.GroupAttribute, Type: domain.AnnotationTypeString, Name: "pathway", Required: true},
		{ID: "a3", CaseID: "c1", Group: domain.GroupProjection, Space: domain.SpacePrimal, Type: domain.AnnotationTypeNumeric, Name: "tsne", Required: true},
		{ID: "a4", CaseID: "c1", Group: domain.GroupProjection, Space: domain.SpaceDual, Type: domain.AnnotationTypeNumeric, Name: "genes", Required: true},
		{ID: "a5", CaseID: "c1", Group: domain.GroupSample, Type: domain.AnnotationTypeString, Name: "optional"},
		{ID: "a6", CaseID: "c2", Group: domain.GroupSample, Type: domain.AnnotationTypeString, Name: "other", Required: true},
	} {
		a := a
		require.NoError(t, repo.Create(ctx, &a))
	}

	names := func(list []domain.Annotation) []string {
		out := make([]string, 0, len(list))
		for _, a := range list {
			out = append(out, a.Name)
		}
		return out
	}

	primal, err := repo.ListRequiredBySpace(ctx, "c1", domain.SpacePrimal)
	require.NoError(t, err)
	assert.Equal(t, []string{"subtype", "tsne"}, names(primal))

	dual, err := repo.ListRequiredBySpace(ctx, "c1", domain.SpaceDual)
	require.NoError(t, err)
	assert.Equal(t, []string{"pathway", "genes"}, names(dual))

	projections, err := repo.ListRequiredByGroup(ctx, "c1", domain.GroupProjection)
	require.NoError(t, err)
	assert.Equal(t, []string{"tsne", "genes"}, names(projections))
}

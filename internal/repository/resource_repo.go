package repository

import (
	"context"
	"errors"

	"github.com/morphingprojections/projection-job/internal/domain"
	"gorm.io/gorm"
)

// ResourceRepository handles resource records.
type ResourceRepository struct {
	db *gorm.DB
}

// NewResourceRepository creates a new ResourceRepository.
func NewResourceRepository(db *gorm.DB) *ResourceRepository {
	return &ResourceRepository{db: db}
}

// ListByCaseAndKind returns every resource of one kind for a case in insertion order.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - caseID: owning case.
//   - kind: resource kind.
// Returns:
//   - []domain.Resource: matching resources, possibly empty.
//   - error: non-nil if the query fails.
func (r *ResourceRepository) ListByCaseAndKind(ctx context.Context, caseID string, kind domain.ResourceKind) ([]domain.Resource, error) {
	var resources []domain.Resource
	err := r.db.WithContext(ctx).
		Where("case_id = ? AND type = ?", caseID, kind).
		Order("creation_date ASC").
		Order("id ASC").
		Find(&resources).Error
	return resources, err
}

// FindByLocation returns the resource stored at (bucket, file) for a case.
// Returns nil without error when none exists.
func (r *ResourceRepository) FindByLocation(ctx context.Context, caseID, bucket, file string) (*domain.Resource, error) {
	var res domain.Resource
	err := r.db.WithContext(ctx).
		Where("case_id = ? AND bucket = ? AND file = ?", caseID, bucket, file).
		First(&res).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &res, nil
}

// Create inserts a new resource record.
func (r *ResourceRepository) Create(ctx context.Context, res *domain.Resource) error {
	return r.db.WithContext(ctx).Create(res).Error
}

// Update saves every field of an existing resource record.
func (r *ResourceRepository) Update(ctx context.Context, res *domain.Resource) error {
	return r.db.WithContext(ctx).Save(res).Error
}

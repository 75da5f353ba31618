package repository

import (
	"context"

	"github.com/morphingprojections/projection-job/internal/domain"
	"gorm.io/gorm"
)

// AnnotationRepository reads annotation records.
type AnnotationRepository struct {
	db *gorm.DB
}

// NewAnnotationRepository creates a new AnnotationRepository.
func NewAnnotationRepository(db *gorm.DB) *AnnotationRepository {
	return &AnnotationRepository{db: db}
}

// ListRequiredBySpace returns the required annotations that matter for one space:
// the subject-axis annotations of that space plus its projection annotations.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - caseID: owning case.
//   - space: primal or dual.
// Returns:
//   - []domain.Annotation: matching annotations in catalog order.
//   - error: non-nil if the query fails.
func (r *AnnotationRepository) ListRequiredBySpace(ctx context.Context, caseID string, space domain.Space) ([]domain.Annotation, error) {
	var annotations []domain.Annotation
	err := r.db.WithContext(ctx).
		Where("case_id = ? AND required = ?", caseID, true).
		Where(
			r.db.Where("annotation_group = ?", space.SubjectGroup()).
				Or("annotation_group = ? AND space = ?", domain.GroupProjection, space),
		).
		Order("creation_date ASC").
		Order("id ASC").
		Find(&annotations).Error
	return annotations, err
}

// ListRequiredByGroup returns the required annotations of one group.
func (r *AnnotationRepository) ListRequiredByGroup(ctx context.Context, caseID string, group domain.Group) ([]domain.Annotation, error) {
	var annotations []domain.Annotation
	err := r.db.WithContext(ctx).
		Where("case_id = ? AND required = ? AND annotation_group = ?", caseID, true, group).
		Order("creation_date ASC").
		Order("id ASC").
		Find(&annotations).Error
	return annotations, err
}

// Create inserts a new annotation record.
func (r *AnnotationRepository) Create(ctx context.Context, a *domain.Annotation) error {
	return r.db.WithContext(ctx).Create(a).Error
}

package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/morphingprojections/projection-job/internal/domain"
	"gorm.io/gorm"
)

// ErrCaseNotFound is returned when no case has the requested id.
var ErrCaseNotFound = errors.New("case not found")

// CaseRepository reads case records.
type CaseRepository struct {
	db *gorm.DB
}

// NewCaseRepository creates a new CaseRepository.
func NewCaseRepository(db *gorm.DB) *CaseRepository {
	return &CaseRepository{db: db}
}

// GetByID retrieves a case by its ID.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - id: case ID.
// Returns:
//   - *domain.Case: case record if found.
//   - error: ErrCaseNotFound if missing, or the lookup failure.
func (r *CaseRepository) GetByID(ctx context.Context, id string) (*domain.Case, error) {
	var c domain.Case
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrCaseNotFound, id)
		}
		return nil, err
	}
	return &c, nil
}

// Create inserts a new case record.
func (r *CaseRepository) Create(ctx context.Context, c *domain.Case) error {
	return r.db.WithContext(ctx).Create(c).Error
}

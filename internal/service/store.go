package service

import (
	"context"

	"github.com/morphingprojections/projection-job/internal/domain"
)

// CaseStore looks up cases.
type CaseStore interface {
	GetByID(ctx context.Context, id string) (*domain.Case, error)
}

// ResourceStore lists and persists resource records.
type ResourceStore interface {
	ListByCaseAndKind(ctx context.Context, caseID string, kind domain.ResourceKind) ([]domain.Resource, error)
	FindByLocation(ctx context.Context, caseID, bucket, file string) (*domain.Resource, error)
	Create(ctx context.Context, res *domain.Resource) error
	Update(ctx context.Context, res *domain.Resource) error
}

// AnnotationCatalog reads required annotations.
type AnnotationCatalog interface {
	ListRequiredBySpace(ctx context.Context, caseID string, space domain.Space) ([]domain.Annotation, error)
	ListRequiredByGroup(ctx context.Context, caseID string, group domain.Group) ([]domain.Annotation, error)
}

package service

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/morphingprojections/projection-job/internal/domain"
	"github.com/morphingprojections/projection-job/internal/storage"
	"github.com/morphingprojections/projection-job/internal/table"
)

// ArtifactContentType is the content type projection artifacts are written with.
const ArtifactContentType = "application/csv"

// OutputLocation is where the projection artifact of a space is stored.
type OutputLocation struct {
	Bucket string
	Key    string
}

// OutputKey derives the artifact location of space from the primary matrix resource:
// the bucket is reused and the key keeps the first two path segments of the matrix key.
func OutputKey(matrix domain.Resource, space domain.Space) (OutputLocation, error) {
	folders := strings.Split(matrix.File, "/")
	if len(folders) < 2 || folders[0] == "" || folders[1] == "" {
		return OutputLocation{}, fmt.Errorf("%w: %q", ErrInvalidResourceKey, matrix.File)
	}
	return OutputLocation{
		Bucket: matrix.Bucket,
		Key:    folders[0] + "/" + folders[1] + "/" + string(space.OutputKind()) + ".csv",
	}, nil
}

// Publisher records and writes projection artifacts.
type Publisher struct {
	resources ResourceStore
	storage   storage.ObjectStorage
	auditUser string
	now       func() time.Time
}

// NewPublisher creates a publisher stamping records with auditUser.
func NewPublisher(resources ResourceStore, objectStorage storage.ObjectStorage, auditUser string) *Publisher {
	return &Publisher{
		resources: resources,
		storage:   objectStorage,
		auditUser: auditUser,
		now:       time.Now,
	}
}

// Locate returns the output resource already recorded at loc, or nil.
func (p *Publisher) Locate(ctx context.Context, caseID string, loc OutputLocation) (*domain.Resource, error) {
	res, err := p.resources.FindByLocation(ctx, caseID, loc.Bucket, loc.Key)
	if err != nil {
		return nil, fmt.Errorf("failed to locate output resource: %w", err)
	}
	return res, nil
}

// Upsert creates the output resource when existing is nil, otherwise refreshes its
// audit fields. Bucket, key and kind of an existing record are left untouched.
// Returns the saved record and whether it was created.
func (p *Publisher) Upsert(ctx context.Context, c *domain.Case, space domain.Space, loc OutputLocation, existing *domain.Resource) (*domain.Resource, bool, error) {
	now := p.now()
	if existing != nil {
		existing.UpdatedBy = p.auditUser
		existing.UpdatedAt = &now
		if err := p.resources.Update(ctx, existing); err != nil {
			return nil, false, fmt.Errorf("failed to update output resource: %w", err)
		}
		return existing, false, nil
	}

	res := &domain.Resource{
		ID:          uuid.New().String(),
		CaseID:      c.ID,
		Bucket:      loc.Bucket,
		File:        loc.Key,
		Kind:        space.OutputKind(),
		Description: c.Description + " " + space.Label(),
		CreationBy:  p.auditUser,
		CreationAt:  &now,
	}
	if err := p.resources.Create(ctx, res); err != nil {
		return nil, false, fmt.Errorf("failed to create output resource: %w", err)
	}
	return res, true, nil
}

// Write serializes t with its index and overwrites the artifact at loc.
// Returns the number of bytes written.
func (p *Publisher) Write(ctx context.Context, loc OutputLocation, t *table.Table) (int, error) {
	var buf bytes.Buffer
	if err := t.WriteCSV(&buf); err != nil {
		return 0, fmt.Errorf("failed to serialize projection: %w", err)
	}
	size := buf.Len()
	if err := p.storage.Upload(ctx, loc.Bucket, loc.Key, &buf, int64(size), ArtifactContentType); err != nil {
		return 0, err
	}
	return size, nil
}

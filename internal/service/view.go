package service

import (
	"fmt"

	"github.com/morphingprojections/projection-job/internal/domain"
	"github.com/morphingprojections/projection-job/internal/table"
)

// MatrixView derives the view of the loaded data matrix for space: the matrix itself
// for primal, its transpose for dual. The loaded matrix is never modified.
func MatrixView(matrix *table.Table, space domain.Space) (*table.Table, error) {
	if matrix.Empty() {
		return nil, ErrEmptyMatrix
	}
	switch space {
	case domain.SpacePrimal:
		return matrix, nil
	case domain.SpaceDual:
		return matrix.Transpose(), nil
	default:
		return nil, fmt.Errorf("unknown space %q", space)
	}
}

// Package reduction drives the dimensionality-reduction primitive that turns a numeric
// matrix into a two column embedding.
package reduction

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gonum.org/v1/gonum/mat"
)

// Dimensions is the width of every embedding produced by a Reducer.
const Dimensions = 2

// DefaultNeighbors is the neighborhood size used when the matrix is large enough.
const DefaultNeighbors = 20

var (
	// ErrTooFewRows is returned when the matrix has fewer than two rows.
	ErrTooFewRows = errors.New("reduction needs at least two rows")
	// ErrNeighborhoodTooLarge is returned when neighbors is not below the row count.
	ErrNeighborhoodTooLarge = errors.New("neighborhood size must be smaller than the row count")
)

// Reducer embeds the rows of a matrix into Dimensions columns.
// The output has one row per input row, in the same order.
type Reducer interface {
	Reduce(ctx context.Context, data *mat.Dense, neighbors int) (*mat.Dense, error)
}

// Neighborhood caps the neighborhood size below the number of rows.
func Neighborhood(rows, defaultNeighbors int) int {
	return min(defaultNeighbors, rows-1)
}

// Validate checks the preconditions every Reducer relies on.
func Validate(data mat.Matrix, neighbors int) error {
	if data == nil {
		return ErrTooFewRows
	}
	r, c := data.Dims()
	if r < 2 {
		return fmt.Errorf("%w: got %d", ErrTooFewRows, r)
	}
	if c < 1 {
		return errors.New("reduction needs at least one feature column")
	}
	if neighbors < 1 || neighbors >= r {
		return fmt.Errorf("%w: neighbors=%d rows=%d", ErrNeighborhoodTooLarge, neighbors, r)
	}
	return nil
}

// Method selects a Reducer implementation.
type Method string

const (
	MethodRemote Method = "remote"
	MethodPCA    Method = "pca"
)

// Config holds configuration for building a Reducer.
type Config struct {
	Method       Method
	BaseURL      string
	APIKey       string
	Timeout      time.Duration
	LearningRate float64
	MaxIter      int
	Init         string
	TSNEMethod   string
}

// New builds the Reducer selected by cfg.Method.
// Parameters:
//   - cfg: reducer configuration.
// Returns:
//   - Reducer: initialized reducer.
//   - error: non-nil if the method is unknown or misconfigured.
func New(cfg *Config) (Reducer, error) {
	switch cfg.Method {
	case MethodPCA:
		return NewPCAReducer(), nil
	case MethodRemote, "":
		if cfg.BaseURL == "" {
			return nil, errors.New("reduction: base_url is required for the remote method")
		}
		return NewRemoteReducer(cfg), nil
	default:
		return nil, fmt.Errorf("reduction: unknown method %q", cfg.Method)
	}
}

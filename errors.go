package umapsgd

import (
	"errors"
	"fmt"

	"github.com/hupe1980/umapsgd/internal/kernel"
)

var (
	// ErrInvalidParams is returned when optimizer parameters fail validation.
	ErrInvalidParams = errors.New("invalid parameters")

	// ErrKernelFailure is returned when an epoch could not be executed.
	// The run is aborted and the embedding is left in a partially updated state.
	ErrKernelFailure = errors.New("kernel failure")

	// ErrNonFinite is returned when non-finite checking is enabled and an
	// embedding coordinate became NaN or Inf.
	ErrNonFinite = errors.New("non-finite embedding value")

	// ErrDimensionMismatch is the sentinel wrapped by DimensionMismatchError.
	ErrDimensionMismatch = errors.New("dimension mismatch")
)

// ParamError describes a single invalid parameter.
type ParamError struct {
	Field string
	Value any
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("invalid parameter %s: %v", e.Field, e.Value)
}

func (e *ParamError) Unwrap() error { return ErrInvalidParams }

// DimensionMismatchError indicates an embedding whose shape does not match
// the configured number of components or the edge list.
type DimensionMismatchError struct {
	Expected int
	Actual   int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

func (e *DimensionMismatchError) Unwrap() error { return ErrDimensionMismatch }

// VertexRangeError indicates an edge endpoint outside its embedding.
type VertexRangeError struct {
	Edge   int
	Vertex int32
	Limit  int
}

func (e *VertexRangeError) Error() string {
	return fmt.Sprintf("edge %d: vertex %d out of range [0,%d)", e.Edge, e.Vertex, e.Limit)
}

func (e *VertexRangeError) Unwrap() error { return ErrInvalidParams }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, kernel.ErrFailure) {
		return fmt.Errorf("%w: %w", ErrKernelFailure, err)
	}

	return err
}

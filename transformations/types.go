package transformations

import (
	"context"
	"errors"
	"fmt"
)

// Transformation is the interface that all transformations must implement
type Transformation interface {
	// Transform takes the full document text and returns the full replacement text
	Transform(ctx context.Context, input string) (string, error)
}

// TransformFunc is a Transformation represented by a single function.
type TransformFunc func(ctx context.Context, input string) (string, error)

// Transform satisfies Transformation.
func (fn TransformFunc) Transform(ctx context.Context, input string) (string, error) {
	return fn(ctx, input)
}

// Pure wraps a transformation that cannot fail.
func Pure(fn func(string) string) Transformation {
	return TransformFunc(func(_ context.Context, input string) (string, error) {
		return fn(input), nil
	})
}

// Target specifies what the transformation applies to
type Target string

const (
	TargetKey   Target = "key"
	TargetValue Target = "value"
)

// FormatError reports input that does not satisfy the grammar a transformation expects.
type FormatError struct {
	Transformation string
	Format         string
	Err            error
}

func (e *FormatError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: Invalid %s format", e.Transformation, e.Format)
	}
	return fmt.Sprintf("%s: Invalid %s format: %v", e.Transformation, e.Format, e.Err)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// IsFormatError reports whether err or anything it wraps is a *FormatError.
func IsFormatError(err error) bool {
	var fe *FormatError
	return errors.As(err, &fe)
}

func formatError(id, format string, err error) error {
	return &FormatError{Transformation: id, Format: format, Err: err}
}

func formatErrorf(id, format, msg string, args ...any) error {
	return &FormatError{Transformation: id, Format: format, Err: fmt.Errorf(msg, args...)}
}

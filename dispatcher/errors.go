package dispatcher

import (
	"errors"
	"fmt"
)

// ErrPanic indicates a transformation panicked; the document is left unchanged.
var ErrPanic = errors.New("dispatcher: transformation panic")

// UnknownTransformationError is returned in Strict mode for identifiers that have no
// catalog entry.
type UnknownTransformationError struct {
	ID string
}

func (e *UnknownTransformationError) Error() string {
	return fmt.Sprintf("unknown transformation: %q", e.ID)
}

// IsUnknown reports whether err is an *UnknownTransformationError.
func IsUnknown(err error) bool {
	var ue *UnknownTransformationError
	return errors.As(err, &ue)
}

package transformations

import "context"

// Suffix appends Value to its input.
type Suffix struct {
	Value string
}

func (t *Suffix) Transform(_ context.Context, input string) (string, error) {
	return input + t.Value, nil
}

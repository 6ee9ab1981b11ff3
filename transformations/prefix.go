package transformations

import "context"

// Prefix prepends Value to its input.
type Prefix struct {
	Value string
}

func (t *Prefix) Transform(_ context.Context, input string) (string, error) {
	return t.Value + input, nil
}

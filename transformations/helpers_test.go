package transformations

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func apply(t *testing.T, id, input string) (string, error) {
	t.Helper()
	tr, ok := Lookup(id)
	require.True(t, ok, "catalog is missing %q", id)
	return tr.Transform(context.Background(), input)
}

func mustApply(t *testing.T, id, input string) string {
	t.Helper()
	out, err := apply(t, id, input)
	require.NoError(t, err, "%s(%q)", id, input)
	return out
}

func requireFormatError(t *testing.T, err error, id, format string) {
	t.Helper()
	require.Error(t, err)
	var fe *FormatError
	require.ErrorAs(t, err, &fe)
	require.Equal(t, id, fe.Transformation)
	require.Equal(t, format, fe.Format)
	require.Contains(t, err.Error(), "Invalid "+format)
}

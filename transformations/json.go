package transformations

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
)

// Width 0 keeps every array element on its own line.
var prettyOptions = &pretty.Options{Width: 0, Indent: "  "}

// validateJSON returns a FormatError for id when input is not a single JSON value.
func validateJSON(id, input string) error {
	if gjson.Valid(input) {
		return nil
	}
	var raw json.RawMessage
	if err := json.Unmarshal([]byte(input), &raw); err != nil {
		return formatError(id, "JSON", err)
	}
	return formatError(id, "JSON", errors.New("malformed document"))
}

// prettyJSON re-indents valid JSON with two spaces, keeping key order.
func prettyJSON(input []byte) string {
	return strings.TrimSuffix(string(pretty.PrettyOptions(input, prettyOptions)), "\n")
}

// JSONPrettify re-serializes a JSON document with two-space indentation.
type JSONPrettify struct{}

func (t *JSONPrettify) Transform(_ context.Context, input string) (string, error) {
	if err := validateJSON(IDJSONPrettify, input); err != nil {
		return "", err
	}
	return prettyJSON([]byte(input)), nil
}

// JSONCompact removes all insignificant whitespace from a JSON document.
type JSONCompact struct{}

func (t *JSONCompact) Transform(_ context.Context, input string) (string, error) {
	if err := validateJSON(IDJSONCompact, input); err != nil {
		return "", err
	}
	return string(pretty.Ugly([]byte(input))), nil
}

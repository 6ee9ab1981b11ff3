package transformations

import (
	"context"
	"html"
	"strings"
)

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#39;",
)

type HTMLEncode struct{}

func (t *HTMLEncode) Transform(_ context.Context, input string) (string, error) {
	return htmlEscaper.Replace(input), nil
}

// HTMLDecode substitutes named and numeric character references. It is purely textual.
type HTMLDecode struct{}

func (t *HTMLDecode) Transform(_ context.Context, input string) (string, error) {
	return html.UnescapeString(input), nil
}

package transformations

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"unicode/utf8"
)

type Base64Encode struct{}

func (t *Base64Encode) Transform(_ context.Context, input string) (string, error) {
	return base64.StdEncoding.EncodeToString([]byte(input)), nil
}

// Base64Decode decodes standard Base64. Line breaks and surrounding whitespace are
// ignored and missing padding is tolerated. The decoded bytes must be UTF-8 text.
type Base64Decode struct{}

func (t *Base64Decode) Transform(_ context.Context, input string) (string, error) {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\r', '\n':
			return -1
		}
		return r
	}, input)

	enc := base64.StdEncoding
	if !strings.HasSuffix(cleaned, "=") && len(cleaned)%4 != 0 {
		enc = base64.RawStdEncoding
	}
	decoded, err := enc.DecodeString(cleaned)
	if err != nil {
		return "", formatError(IDBase64Decode, "Base64", err)
	}
	if !utf8.Valid(decoded) {
		return "", formatError(IDBase64Decode, "Base64", errors.New("decoded data is not valid UTF-8 text"))
	}
	return string(decoded), nil
}

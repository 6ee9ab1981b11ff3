package transformations

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"unicode/utf8"
)

const upperhex = "0123456789ABCDEF"

// URLEncode percent-encodes every byte outside the unreserved set
// A-Z a-z 0-9 - _ . ! ~ * ' ( ), so reserved characters such as / ? & = are escaped too.
type URLEncode struct{}

func (t *URLEncode) Transform(_ context.Context, input string) (string, error) {
	var sb strings.Builder
	sb.Grow(len(input))
	for i := 0; i < len(input); i++ {
		c := input[i]
		if isUnreserved(c) {
			sb.WriteByte(c)
			continue
		}
		sb.WriteByte('%')
		sb.WriteByte(upperhex[c>>4])
		sb.WriteByte(upperhex[c&0x0f])
	}
	return sb.String(), nil
}

func isUnreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	switch c {
	case '-', '_', '.', '!', '~', '*', '\'', '(', ')':
		return true
	}
	return false
}

// URLDecode reverses percent-encoding. A '+' is kept literally.
type URLDecode struct{}

func (t *URLDecode) Transform(_ context.Context, input string) (string, error) {
	decoded, err := url.PathUnescape(input)
	if err != nil {
		return "", formatError(IDURLDecode, "URL", err)
	}
	if !utf8.ValidString(decoded) {
		return "", formatError(IDURLDecode, "URL", errors.New("percent sequences do not form valid UTF-8"))
	}
	return decoded, nil
}

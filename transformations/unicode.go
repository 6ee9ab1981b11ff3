package transformations

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf16"
)

// UnicodeEscape replaces every rune above 0x7F with \uXXXX escapes of its UTF-16 code
// units. Backslashes are escaped as \u005c so that UnicodeUnescape is an exact inverse.
type UnicodeEscape struct{}

func (t *UnicodeEscape) Transform(_ context.Context, input string) (string, error) {
	var sb strings.Builder
	sb.Grow(len(input))
	for _, r := range input {
		switch {
		case r == '\\':
			sb.WriteString(`\u005c`)
		case r <= 0x7f:
			sb.WriteRune(r)
		case r > 0xffff:
			hi, lo := utf16.EncodeRune(r)
			fmt.Fprintf(&sb, `\u%04x\u%04x`, hi, lo)
		default:
			fmt.Fprintf(&sb, `\u%04x`, r)
		}
	}
	return sb.String(), nil
}

// UnicodeUnescape turns \uXXXX sequences (exactly four hex digits) back into text.
// Adjacent escapes are decoded together so surrogate pairs recombine; an unpaired
// surrogate becomes U+FFFD. Anything that is not a complete escape is left as is.
type UnicodeUnescape struct{}

func (t *UnicodeUnescape) Transform(_ context.Context, input string) (string, error) {
	var sb strings.Builder
	sb.Grow(len(input))
	var units []uint16
	flush := func() {
		if len(units) > 0 {
			sb.WriteString(string(utf16.Decode(units)))
			units = units[:0]
		}
	}
	for i := 0; i < len(input); {
		if u, ok := parseUnicodeEscape(input[i:]); ok {
			units = append(units, u)
			i += 6
			continue
		}
		flush()
		sb.WriteByte(input[i])
		i++
	}
	flush()
	return sb.String(), nil
}

func parseUnicodeEscape(s string) (uint16, bool) {
	if len(s) < 6 || s[0] != '\\' || s[1] != 'u' {
		return 0, false
	}
	for i := 2; i < 6; i++ {
		if !isHex(s[i]) {
			return 0, false
		}
	}
	v, err := strconv.ParseUint(s[2:6], 16, 16)
	if err != nil {
		return 0, false
	}
	return uint16(v), true
}

func isHex(c byte) bool {
	return '0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
}

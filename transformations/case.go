package transformations

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Casers keep per-call state, so each call builds its own.

func upperCase(input string) string {
	return cases.Upper(language.Und).String(input)
}

func lowerCase(input string) string {
	return cases.Lower(language.Und).String(input)
}

// titleCase capitalizes the first letter of every whitespace-delimited word and
// lowercases the rest of it. Whitespace is copied through untouched.
func titleCase(input string) string {
	title := cases.Title(language.Und, cases.NoLower)
	lower := cases.Lower(language.Und)

	var sb strings.Builder
	sb.Grow(len(input))
	start := -1
	word := func(end int) {
		w := input[start:end]
		_, size := utf8.DecodeRuneInString(w)
		sb.WriteString(title.String(w[:size]))
		sb.WriteString(lower.String(w[size:]))
		start = -1
	}
	for i, r := range input {
		if unicode.IsSpace(r) {
			if start >= 0 {
				word(i)
			}
			sb.WriteRune(r)
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		word(len(input))
	}
	return sb.String()
}

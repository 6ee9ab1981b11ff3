package transformations

import (
	"slices"
	"strings"
)

// splitLines splits on "\r\n" when the document uses it, otherwise on "\n".
// A single trailing terminator is held back so it stays at the end of the result.
func splitLines(input string) (lines []string, sep string, trailing bool) {
	sep = "\n"
	if strings.Contains(input, "\r\n") {
		sep = "\r\n"
	}
	if strings.HasSuffix(input, sep) {
		input = strings.TrimSuffix(input, sep)
		trailing = true
	}
	return strings.Split(input, sep), sep, trailing
}

func joinLines(lines []string, sep string, trailing bool) string {
	out := strings.Join(lines, sep)
	if trailing {
		out += sep
	}
	return out
}

func sortLines(input string) string {
	lines, sep, trailing := splitLines(input)
	slices.SortStableFunc(lines, strings.Compare)
	return joinLines(lines, sep, trailing)
}

func deduplicateLines(input string) string {
	lines, sep, trailing := splitLines(input)
	seen := make(map[string]struct{}, len(lines))
	kept := lines[:0]
	for _, line := range lines {
		if _, ok := seen[line]; ok {
			continue
		}
		seen[line] = struct{}{}
		kept = append(kept, line)
	}
	return joinLines(kept, sep, trailing)
}

func reverseLines(input string) string {
	lines, sep, trailing := splitLines(input)
	slices.Reverse(lines)
	return joinLines(lines, sep, trailing)
}

// Package ingest turns free-form dependency text into edge assertions.
//
// Each non-blank line of the form "Source -> Target" yields one edge. Lines that are blank, lack
// the "->" separator, or have an empty side are skipped without error.
package ingest

import (
	"strings"
	"unicode"

	"github.com/yungbote/twingraph-backend/internal/domain"
)

const Separator = "->"

type Result struct {
	Edges          []domain.Edge
	LinesProcessed int
	Skipped        int
}

func Parse(text string) Result {
	lines := SplitLines(text)
	res := Result{
		Edges:          make([]domain.Edge, 0, len(lines)),
		LinesProcessed: len(lines),
	}
	for _, line := range lines {
		edge, ok := ParseLine(line)
		if !ok {
			res.Skipped++
			continue
		}
		res.Edges = append(res.Edges, edge)
	}
	return res
}

// ParseLine splits on the first separator only, so "A->B->C" yields A depends on "B->C".
func ParseLine(line string) (domain.Edge, bool) {
	line = trim(line)
	if line == "" {
		return domain.Edge{}, false
	}
	source, target, found := strings.Cut(line, Separator)
	if !found {
		return domain.Edge{}, false
	}
	source = trim(source)
	target = trim(target)
	if source == "" || target == "" {
		return domain.Edge{}, false
	}
	return domain.Edge{Source: source, Target: target}, true
}

// trim strips Unicode whitespace plus the ASCII information separators (\x1c-\x1f), so a side
// made only of separators counts as empty.
func trim(s string) string {
	return strings.TrimFunc(s, isTrimmable)
}

func isTrimmable(r rune) bool {
	return unicode.IsSpace(r) || (r >= '\x1c' && r <= '\x1f')
}

// SplitLines breaks text on every line boundary: \n, \r\n, \r, \v, \f, the file/group/record
// separators (\x1c-\x1e), NEL (U+0085), LS (U+2028) and PS (U+2029). A trailing boundary does not
// produce an extra empty line and empty input has no lines.
func SplitLines(text string) []string {
	var lines []string
	start := 0
	for i, r := range text {
		if i < start {
			continue
		}
		if !isLineBoundary(r) {
			continue
		}
		lines = append(lines, text[start:i])
		next := i + len(string(r))
		if r == '\r' && next < len(text) && text[next] == '\n' {
			next++
		}
		start = next
	}
	if start < len(text) {
		lines = append(lines, text[start:])
	}
	return lines
}

func isLineBoundary(r rune) bool {
	switch r {
	case '\n', '\r', '\v', '\f', '\x1c', '\x1d', '\x1e', '\u0085', '\u2028', '\u2029':
		return true
	default:
		return false
	}
}

// Package textopt handles copy-level typography: widow and orphan
// prevention, line balancing, truncation and the text block height a layer
// needs for its content.
//
// Line metrics are estimates. A character is assumed to be 0.55× the font
// size wide, which is close for common sans-serif faces.
package textopt

import (
	"math"
	"slices"
	"strings"
	"unicode/utf8"
)

// NBSP is the non-breaking space used to glue words together.
const NBSP = "\u00a0"

const (
	// MinWidowLength is the longest final word that is glued to its
	// predecessor.
	MinWidowLength = 4

	// MaxOrphanLength is the longest leading connector that is glued to the
	// following word.
	MaxOrphanLength = 3

	// CharWidthFactor is the average glyph width as a fraction of font size.
	CharWidthFactor = 0.55

	// BalanceTolerance is the largest line-length deviation, as a fraction of
	// the mean, for lines to count as balanced.
	BalanceTolerance = 0.3
)

// Connectors are short prepositions, conjunctions and articles that should
// not stand alone at a line edge. Polish single letters come first.
var Connectors = []string{
	"a", "i", "o", "u", "w", "z",
	"an", "the", "of", "to", "in", "on", "at", "by", "or", "is",
}

func isConnector(word string) bool {
	return slices.Contains(Connectors, strings.ToLower(word))
}

// isBreak reports ASCII whitespace. NBSP is deliberately excluded so glued
// words stay a single token.
func isBreak(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', '\f', '\v':
		return true
	}
	return false
}

func notBreak(r rune) bool { return !isBreak(r) }

func words(s string) []string { return strings.FieldsFunc(s, isBreak) }

func runeLen(s string) int { return utf8.RuneCountInString(s) }

// PreventWidows glues a short final word to the one before it and binds
// every inner connector to both neighbours.
func PreventWidows(text string) string {
	text = strings.TrimSpace(text)
	ws := words(text)
	if len(ws) < 2 {
		return text
	}
	if runeLen(ws[len(ws)-1]) <= MinWidowLength {
		if i := strings.LastIndexFunc(text, isBreak); i >= 0 {
			start := strings.LastIndexFunc(text[:i], notBreak) + 1
			text = text[:start] + NBSP + text[i+1:]
		}
	}
	return bindConnectors(text)
}

// bindConnectors replaces the spaces on either side of an inner connector
// with NBSP. Connectors at the start or end of the text are left alone.
func bindConnectors(text string) string {
	ws := words(text)
	if len(ws) < 3 {
		return text
	}
	glue := make([]bool, len(ws)-1)
	for i := 1; i < len(ws)-1; i++ {
		if isConnector(ws[i]) {
			glue[i-1], glue[i] = true, true
		}
	}
	if !slices.Contains(glue, true) {
		return text
	}
	var b strings.Builder
	for i, w := range ws {
		if i > 0 {
			if glue[i-1] {
				b.WriteString(NBSP)
			} else {
				b.WriteByte(' ')
			}
		}
		b.WriteString(w)
	}
	return b.String()
}

// PreventOrphans glues a short leading connector to the second word of
// texts with at least three words.
func PreventOrphans(text string) string {
	text = strings.TrimSpace(text)
	ws := words(text)
	if len(ws) < 3 {
		return text
	}
	if first := ws[0]; runeLen(first) <= MaxOrphanLength && isConnector(first) {
		if i := strings.IndexFunc(text, isBreak); i >= 0 {
			end := i + strings.IndexFunc(text[i:], notBreak)
			text = text[:i] + NBSP + text[end:]
		}
	}
	return text
}

// CharsPerLine estimates how many characters fit in width at fontSize.
func CharsPerLine(width, fontSize float64) int {
	if fontSize <= 0 {
		return 1
	}
	return max(1, int(math.Floor(width/(fontSize*CharWidthFactor))))
}

// Lines is the outcome of [BalanceLines].
type Lines struct {
	Count     int      `json:"line_count"`
	Balanced  bool     `json:"balanced"`
	Lines     []string `json:"lines"`
	Deviation float64  `json:"deviation"`
}

// BalanceLines wraps text into lines of roughly equal length. The number of
// lines is what charsPerLine requires; words are then filled greedily up to
// the even share of characters per line.
func BalanceLines(text string, charsPerLine int) Lines {
	n := runeLen(text)
	if n <= charsPerLine || charsPerLine <= 0 {
		return Lines{Count: 1, Balanced: true, Lines: []string{text}}
	}
	target := int(math.Ceil(float64(n) / math.Ceil(float64(n)/float64(charsPerLine))))

	var lines []string
	var cur []string
	// The first word of the text counts its trailing space; lines started
	// by a wrap do not.
	length := 0
	for _, w := range words(text) {
		wl := runeLen(w)
		if length+wl+1 > target && len(cur) > 0 {
			lines = append(lines, strings.Join(cur, " "))
			cur, length = []string{w}, wl
			continue
		}
		cur = append(cur, w)
		length += wl + 1
	}
	if len(cur) > 0 {
		lines = append(lines, strings.Join(cur, " "))
	}

	var sum float64
	for _, l := range lines {
		sum += float64(runeLen(l))
	}
	avg := sum / float64(len(lines))
	var dev float64
	for _, l := range lines {
		dev = math.Max(dev, math.Abs(float64(runeLen(l))-avg))
	}
	return Lines{Count: len(lines), Balanced: dev <= avg*BalanceTolerance, Lines: lines, Deviation: dev}
}

// Result is the outcome of [Optimize].
type Result struct {
	Text     string `json:"text"`
	Original string `json:"original"`
	Modified bool   `json:"modified"`
	Lines    int    `json:"estimated_lines"`
	Balanced bool   `json:"balanced"`
}

// Optimize applies widow and orphan prevention and estimates the line
// layout at the given width and font size.
func Optimize(text string, width, fontSize float64) Result {
	out := PreventOrphans(PreventWidows(text))
	l := BalanceLines(out, CharsPerLine(width, fontSize))
	return Result{Text: out, Original: text, Modified: out != text, Lines: l.Count, Balanced: l.Balanced}
}

// RequiredHeight is the pixel height a block of text needs: the estimated
// line count times the line height, plus half a font size of padding.
func RequiredHeight(text string, width, fontSize, lineHeight float64) float64 {
	lines := BalanceLines(text, CharsPerLine(width, fontSize)).Count
	body := math.Ceil(float64(lines) * fontSize * lineHeight)
	return body + math.Floor(fontSize*0.5)
}

// Truncate shortens text to at most maxChars runes including the ellipsis.
// It prefers to cut on a word boundary in the second half of the text and
// strips trailing punctuation before appending "...".
func Truncate(text string, maxChars int) string {
	const ellipsis = "..."
	text = strings.TrimSpace(text)
	rs := []rune(text)
	if len(rs) <= maxChars {
		return text
	}
	keep := max(0, maxChars-len(ellipsis))
	cut := rs[:keep]
	if i := lastSpace(cut); i >= 0 && float64(i) > float64(maxChars)*0.5 {
		cut = cut[:i]
	}
	return strings.TrimRight(string(cut), ".,;:!?-") + ellipsis
}

func lastSpace(rs []rune) int {
	for i := len(rs) - 1; i >= 0; i-- {
		if rs[i] == ' ' {
			return i
		}
	}
	return -1
}

// HasWidowRisk reports whether a short final word is likely to end up
// alone on the last line.
func HasWidowRisk(text string, charsPerLine int) bool {
	ws := words(strings.TrimSpace(text))
	if len(ws) < 2 {
		return false
	}
	return runeLen(ws[len(ws)-1]) <= MinWidowLength && runeLen(text) > charsPerLine
}

// HasOrphanRisk reports whether a leading connector is likely to end up
// alone on the first line.
func HasOrphanRisk(text string, charsPerLine int) bool {
	ws := words(strings.TrimSpace(text))
	if len(ws) < 3 {
		return false
	}
	first := ws[0]
	return runeLen(first) <= MaxOrphanLength && isConnector(first) && runeLen(text) > charsPerLine
}

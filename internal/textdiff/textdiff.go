// Package textdiff computes word-level edit scripts between two versions of
// a free-text field. Tokens are whitespace-delimited words; alignment is
// delegated to diffmatchpatch over a word-to-rune encoding, so only the
// per-segment word counts are meaningful, not the exact alignment.
package textdiff

import (
	"strings"
	"unicode/utf8"

	"github.com/sergi/go-diff/diffmatchpatch"
)

type Kind int

const (
	Unchanged Kind = iota
	Added
	Removed
)

func (k Kind) String() string {
	switch k {
	case Unchanged:
		return "unchanged"
	case Added:
		return "added"
	case Removed:
		return "removed"
	}
	return "unknown"
}

// Segment is one run of the edit script with its word count.
type Segment struct {
	Kind  Kind
	Words int
}

// Normalize collapses line-ending variants to "\n" and trims surrounding
// whitespace, so purely cosmetic changes compare equal.
func Normalize(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return strings.TrimSpace(s)
}

// WordCount reports the number of whitespace-delimited words in s.
func WordCount(s string) int {
	return len(strings.Fields(s))
}

// Diff computes the minimal word-level edit script transforming oldText into
// newText. Inputs are expected to be normalized already. The result is an
// ordered, one-shot slice; no state is kept between calls.
func Diff(oldText, newText string) []Segment {
	index := make(map[string]rune)

	oldEnc := encodeWords(strings.Fields(oldText), index)
	newEnc := encodeWords(strings.Fields(newText), index)

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(oldEnc, newEnc, false)

	segments := make([]Segment, 0, len(diffs))
	for _, d := range diffs {
		words := utf8.RuneCountInString(d.Text)
		if words == 0 {
			continue
		}
		seg := Segment{Words: words}
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			seg.Kind = Unchanged
		case diffmatchpatch.DiffInsert:
			seg.Kind = Added
		case diffmatchpatch.DiffDelete:
			seg.Kind = Removed
		}
		segments = append(segments, seg)
	}
	return segments
}

// encodeWords maps each distinct word to a single rune so the rune-based
// diff operates on whole words.
func encodeWords(words []string, index map[string]rune) string {
	var sb strings.Builder
	for _, w := range words {
		r, ok := index[w]
		if !ok {
			r = ordinalRune(len(index))
			index[w] = r
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// ordinalRune returns a distinct valid rune for the i-th vocabulary entry,
// skipping the surrogate range.
func ordinalRune(i int) rune {
	r := rune(i + 1)
	if r >= 0xD800 {
		r += 0x800
	}
	return r
}

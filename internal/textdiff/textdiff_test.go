package textdiff

import (
	"testing"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"hello world", "hello world"},
		{"  hello world \n", "hello world"},
		{"a\r\nb\rc\nd", "a\nb\nc\nd"},
		{"\r\n\r\n", ""},
		{"", ""},
	}
	for _, tc := range cases {
		if got := Normalize(tc.in); got != tc.want {
			t.Errorf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestWordCount(t *testing.T) {
	if got := WordCount("one  two\nthree"); got != 3 {
		t.Errorf("WordCount = %d, want 3", got)
	}
	if got := WordCount(""); got != 0 {
		t.Errorf("WordCount empty = %d, want 0", got)
	}
}

func tally(segments []Segment) (unchanged, added, removed int) {
	for _, seg := range segments {
		switch seg.Kind {
		case Unchanged:
			unchanged += seg.Words
		case Added:
			added += seg.Words
		case Removed:
			removed += seg.Words
		}
	}
	return
}

func TestDiffIdentical(t *testing.T) {
	segments := Diff("one two three", "one two three")
	unchanged, added, removed := tally(segments)
	if unchanged != 3 || added != 0 || removed != 0 {
		t.Errorf("got unchanged=%d added=%d removed=%d", unchanged, added, removed)
	}
}

func TestDiffFromEmpty(t *testing.T) {
	segments := Diff("", "one two three")
	unchanged, added, removed := tally(segments)
	if unchanged != 0 || added != 3 || removed != 0 {
		t.Errorf("got unchanged=%d added=%d removed=%d", unchanged, added, removed)
	}
}

func TestDiffToEmpty(t *testing.T) {
	segments := Diff("one two three", "")
	unchanged, added, removed := tally(segments)
	if unchanged != 0 || added != 0 || removed != 3 {
		t.Errorf("got unchanged=%d added=%d removed=%d", unchanged, added, removed)
	}
}

func TestDiffDisjoint(t *testing.T) {
	segments := Diff("alpha beta", "gamma delta epsilon")
	unchanged, added, removed := tally(segments)
	if unchanged != 0 || added != 3 || removed != 2 {
		t.Errorf("got unchanged=%d added=%d removed=%d", unchanged, added, removed)
	}
}

func TestDiffAppend(t *testing.T) {
	segments := Diff("one two three", "one two three four five")
	unchanged, added, removed := tally(segments)
	if unchanged != 3 || added != 2 || removed != 0 {
		t.Errorf("got unchanged=%d added=%d removed=%d", unchanged, added, removed)
	}
}

func TestDiffReplaceMiddle(t *testing.T) {
	segments := Diff("one two three four", "one zwei three four")
	unchanged, added, removed := tally(segments)
	if unchanged != 3 || added != 1 || removed != 1 {
		t.Errorf("got unchanged=%d added=%d removed=%d", unchanged, added, removed)
	}
}

func TestDiffRepeatedWords(t *testing.T) {
	// the same word appearing many times must still count per occurrence
	segments := Diff("la la la", "la la la la")
	unchanged, added, removed := tally(segments)
	if unchanged != 3 || added != 1 || removed != 0 {
		t.Errorf("got unchanged=%d added=%d removed=%d", unchanged, added, removed)
	}
}

func TestDiffNonLatin(t *testing.T) {
	segments := Diff("خط یک خط دو", "خط یک خط دو خط سه")
	unchanged, added, removed := tally(segments)
	if unchanged != 4 || added != 2 || removed != 0 {
		t.Errorf("got unchanged=%d added=%d removed=%d", unchanged, added, removed)
	}
}

func TestDiffWhitespaceOnlyChange(t *testing.T) {
	segments := Diff(Normalize("one two\r\nthree"), Normalize("one two\nthree\n"))
	unchanged, added, removed := tally(segments)
	if unchanged != 3 || added != 0 || removed != 0 {
		t.Errorf("got unchanged=%d added=%d removed=%d", unchanged, added, removed)
	}
}

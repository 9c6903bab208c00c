package attribution

import (
	"testing"

	"github.com/verseroom/verseroom/internal/textdiff"
)

func checkSum(t *testing.T, table map[int64]int) {
	t.Helper()
	sum := 0
	for id, p := range table {
		if p < 0 || p > 100 {
			t.Fatalf("user %d has percentage %d out of range", id, p)
		}
		sum += p
	}
	if len(table) > 0 && sum != 100 {
		t.Fatalf("percentages sum to %d, want 100: %v", sum, table)
	}
}

func TestBootstrapNoPriorContributors(t *testing.T) {
	segments := []textdiff.Segment{{Kind: textdiff.Added, Words: 10}}

	got := Redistribute(segments, nil, 7)
	checkSum(t, got)

	if len(got) != 1 || got[7] != 100 {
		t.Fatalf("got %v, want {7:100}", got)
	}
}

func TestBootstrapSupersededHistory(t *testing.T) {
	// text was cleared earlier; old rows linger at zero
	segments := []textdiff.Segment{{Kind: textdiff.Added, Words: 4}}
	prior := map[int64]int{3: 0, 5: 0}

	got := Redistribute(segments, prior, 9)
	checkSum(t, got)

	want := map[int64]int{3: 0, 5: 0, 9: 100}
	for id, p := range want {
		if got[id] != p {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestFullRewrite(t *testing.T) {
	segments := []textdiff.Segment{
		{Kind: textdiff.Removed, Words: 20},
		{Kind: textdiff.Added, Words: 15},
	}
	prior := map[int64]int{1: 70, 2: 30}

	got := Redistribute(segments, prior, 3)
	checkSum(t, got)

	if got[1] != 0 || got[2] != 0 || got[3] != 100 {
		t.Fatalf("got %v, want {1:0 2:0 3:100}", got)
	}
}

func TestClearedContent(t *testing.T) {
	segments := []textdiff.Segment{{Kind: textdiff.Removed, Words: 12}}
	prior := map[int64]int{1: 60, 2: 40}

	got := Redistribute(segments, prior, 2)
	if len(got) != 0 {
		t.Fatalf("got %v, want empty table for cleared text", got)
	}
}

func TestPartialEditProportionality(t *testing.T) {
	// A=60%, B=40% over 100 unchanged words; C appends 50 new words.
	segments := []textdiff.Segment{
		{Kind: textdiff.Unchanged, Words: 100},
		{Kind: textdiff.Added, Words: 50},
	}
	prior := map[int64]int{1: 60, 2: 40}

	got := Redistribute(segments, prior, 3)
	checkSum(t, got)

	if got[1] != 40 || got[2] != 27 || got[3] != 33 {
		t.Fatalf("got %v, want {1:40 2:27 3:33}", got)
	}
}

func TestEditorWithPriorStakeKeepsIt(t *testing.T) {
	segments := []textdiff.Segment{
		{Kind: textdiff.Unchanged, Words: 50},
		{Kind: textdiff.Added, Words: 50},
	}
	prior := map[int64]int{1: 100}

	got := Redistribute(segments, prior, 1)
	checkSum(t, got)

	if got[1] != 100 {
		t.Fatalf("got %v, want {1:100}", got)
	}
}

func TestRemoveOnlyEditGetsZeroRow(t *testing.T) {
	// the editor trimmed words without adding any; they gain a zero stake
	segments := []textdiff.Segment{
		{Kind: textdiff.Unchanged, Words: 30},
		{Kind: textdiff.Removed, Words: 10},
	}
	prior := map[int64]int{1: 100}

	got := Redistribute(segments, prior, 2)
	checkSum(t, got)

	if got[1] != 100 {
		t.Fatalf("user 1 should keep 100, got %v", got)
	}
	if p, ok := got[2]; !ok || p != 0 {
		t.Fatalf("editor should be recorded at 0, got %v", got)
	}
}

func TestTwoGenerationScenario(t *testing.T) {
	// first edit on empty text
	first := Redistribute(
		[]textdiff.Segment{{Kind: textdiff.Added, Words: 4}},
		nil, 1,
	)
	checkSum(t, first)
	if first[1] != 100 {
		t.Fatalf("after first edit got %v", first)
	}

	// second editor appends two words against four unchanged
	second := Redistribute(
		[]textdiff.Segment{
			{Kind: textdiff.Unchanged, Words: 4},
			{Kind: textdiff.Added, Words: 2},
		},
		first, 2,
	)
	checkSum(t, second)
	if second[1] != 67 || second[2] != 33 {
		t.Fatalf("after second edit got %v, want {1:67 2:33}", second)
	}
}

func TestZeroHoldersReceiveNoUnchangedCredit(t *testing.T) {
	segments := []textdiff.Segment{
		{Kind: textdiff.Unchanged, Words: 10},
		{Kind: textdiff.Added, Words: 10},
	}
	prior := map[int64]int{1: 100, 2: 0}

	got := Redistribute(segments, prior, 3)
	checkSum(t, got)

	if got[1] != 50 || got[2] != 0 || got[3] != 50 {
		t.Fatalf("got %v, want {1:50 2:0 3:50}", got)
	}
}

func TestSumInvariantOverGenerations(t *testing.T) {
	prior := map[int64]int{}
	scripts := [][]textdiff.Segment{
		{{Kind: textdiff.Added, Words: 37}},
		{{Kind: textdiff.Unchanged, Words: 30}, {Kind: textdiff.Removed, Words: 7}, {Kind: textdiff.Added, Words: 11}},
		{{Kind: textdiff.Unchanged, Words: 41}},
		{{Kind: textdiff.Unchanged, Words: 13}, {Kind: textdiff.Removed, Words: 28}, {Kind: textdiff.Added, Words: 5}},
		{{Kind: textdiff.Unchanged, Words: 18}, {Kind: textdiff.Added, Words: 3}},
	}
	for gen, segments := range scripts {
		next := Redistribute(segments, prior, int64(gen+1))
		checkSum(t, next)
		if len(next) == 0 {
			t.Fatalf("generation %d unexpectedly cleared", gen)
		}
		prior = next
	}
	for id := int64(1); id <= 5; id++ {
		if _, ok := prior[id]; !ok {
			t.Fatalf("user %d missing from final table %v", id, prior)
		}
	}
}

func TestQuantizeRemainderAbsorbedByLast(t *testing.T) {
	credit := map[int64]float64{1: 1, 2: 1, 3: 1}
	got := quantize(credit, 3)
	checkSum(t, got)
	if got[1] != 33 || got[2] != 33 || got[3] != 34 {
		t.Fatalf("got %v, want {1:33 2:33 3:34}", got)
	}
}

func TestQuantizeNegativeRemainderClamped(t *testing.T) {
	// independent rounding of the first three entries yields 1+50+50=101,
	// so the last entry would go to -1; the deficit comes back out of the
	// largest holder, smaller id winning the tie.
	credit := map[int64]float64{1: 1, 2: 99, 3: 99, 4: 1}
	got := quantize(credit, 200)
	checkSum(t, got)

	want := map[int64]int{1: 1, 2: 49, 3: 50, 4: 0}
	for id, p := range want {
		if got[id] != p {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

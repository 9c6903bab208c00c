// Package attribution turns a word-level edit script into an updated
// contributor percentage table. The table always sums to exactly 100, or is
// empty when the resulting text holds no words at all. The computation is
// pure; persistence is the caller's concern.
package attribution

import (
	"math"
	"sort"

	"github.com/verseroom/verseroom/internal/textdiff"
)

// Redistribute computes the contributor table for the text produced by the
// given edit script. Added words are credited to editorID; unchanged words
// are spread over the prior holders in proportion to their percentage;
// removed words credit no one.
//
// Every user present in prior stays in the result, at 0 when they no longer
// own any of the current text. An empty result means the text was cleared.
func Redistribute(segments []textdiff.Segment, prior map[int64]int, editorID int64) map[int64]int {
	priorTotal := 0
	for _, p := range prior {
		priorTotal += p
	}

	credit := make(map[int64]float64, len(prior)+1)
	for id := range prior {
		credit[id] = 0
	}
	credit[editorID] = 0

	total := 0
	for _, seg := range segments {
		switch seg.Kind {
		case textdiff.Added:
			credit[editorID] += float64(seg.Words)
			total += seg.Words
		case textdiff.Unchanged:
			if priorTotal > 0 {
				for id, p := range prior {
					credit[id] += float64(seg.Words) * float64(p) / float64(priorTotal)
				}
			} else {
				// no prior owners to carry the surviving words
				credit[editorID] += float64(seg.Words)
			}
			total += seg.Words
		}
	}

	if total == 0 {
		return map[int64]int{}
	}

	if len(prior) == 0 || priorTotal == 0 {
		result := make(map[int64]int, len(prior)+1)
		for id := range prior {
			result[id] = 0
		}
		result[editorID] = 100
		return result
	}

	return quantize(credit, total)
}

// quantize converts real-valued word credits to an integer partition of 100.
// Users are enumerated in ascending id order and rounded independently,
// except the highest id, which absorbs the rounding remainder so the total
// is exact. A negative remainder is clamped to 0 and the deficit taken back
// from the largest holder, smaller id first on ties.
func quantize(credit map[int64]float64, total int) map[int64]int {
	ids := make([]int64, 0, len(credit))
	for id := range credit {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	result := make(map[int64]int, len(ids))
	sum := 0
	for _, id := range ids[:len(ids)-1] {
		p := int(math.Round(credit[id] / float64(total) * 100))
		if p < 0 {
			p = 0
		}
		result[id] = p
		sum += p
	}

	last := ids[len(ids)-1]
	result[last] = 100 - sum
	if result[last] < 0 {
		deficit := -result[last]
		result[last] = 0
		for deficit > 0 {
			target := int64(-1)
			largest := 0
			for _, id := range ids {
				if result[id] > largest {
					largest = result[id]
					target = id
				}
			}
			if target < 0 {
				break
			}
			take := deficit
			if take > largest {
				take = largest
			}
			result[target] -= take
			deficit -= take
		}
	}
	return result
}

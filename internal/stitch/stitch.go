// Package stitch merges ordered chunk transcripts into one transcript,
// dropping the words repeated where adjacent chunks overlap.
package stitch

import (
	"strings"
	"unicode"

	"vidrag/internal/services"
)

// DefaultMaxOverlap is the longest overlap, in words, that is searched for.
const DefaultMaxOverlap = 50

// Stitch folds transcripts left to right with Merge. Whitespace-only entries
// are skipped. When nothing remains it returns ErrEmptyTranscript.
func Stitch(transcripts []string) (string, error) {
	var acc string
	seen := false
	for _, t := range transcripts {
		if strings.TrimSpace(t) == "" {
			continue
		}
		if !seen {
			acc = t
			seen = true
			continue
		}
		acc = Merge(acc, t)
	}
	if !seen {
		return "", services.Wrap(services.ErrEmptyTranscript, "stitching", "", "no chunk produced any text", nil)
	}
	return acc, nil
}

// Merge appends next to acc. If the last K words of acc equal the first K
// words of next, acc is cut where those K words begin and next is appended
// in full; otherwise the two are joined with a single space.
func Merge(acc, next string) string {
	k := Overlap(acc, next, DefaultMaxOverlap)
	if k == 0 {
		return acc + " " + next
	}
	starts := wordStarts(acc)
	head := strings.TrimRightFunc(acc[:starts[len(starts)-k]], unicode.IsSpace)
	if head == "" {
		return next
	}
	return head + " " + strings.TrimLeftFunc(next, unicode.IsSpace)
}

// Overlap returns the largest K, at most limit, such that the last K words of
// acc equal the first K words of next. It returns 0 when there is none.
func Overlap(acc, next string, limit int) int {
	tail := strings.Fields(acc)
	head := strings.Fields(next)
	k := min(limit, len(tail), len(head))
	for ; k > 0; k-- {
		if equalWords(tail[len(tail)-k:], head[:k]) {
			return k
		}
	}
	return 0
}

func equalWords(a, b []string) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// wordStarts returns the byte offset of each word of s, using the same
// word boundaries as strings.Fields.
func wordStarts(s string) []int {
	var starts []int
	inWord := false
	for i, r := range s {
		if unicode.IsSpace(r) {
			inWord = false
			continue
		}
		if !inWord {
			starts = append(starts, i)
			inWord = true
		}
	}
	return starts
}

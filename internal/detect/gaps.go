package detect

import (
	"cmp"
	"slices"
)

const (
	gapMiddleMin   = 50000
	gapEdgeMin     = 10000
	gapSampleBytes = 4096
)

// RecoverGaps proposes low-confidence candidates for unclaimed spans around
// the existing candidates. It must run after every other scanner has
// finished, because it reasons about their combined output.
//
// Adjacent candidates (by start) separated by more than 50 KB yield a
// gap-middle candidate when the gap's leading sample looks like audio. Spans
// of at least 10 KB before the first candidate and after the last one are
// proposed unconditionally.
func RecoverGaps(buf []byte, existing []Candidate) []Candidate {
	if len(existing) == 0 {
		return nil
	}
	sorted := slices.Clone(existing)
	slices.SortFunc(sorted, compareStart)

	var out []Candidate
	for i := 0; i+1 < len(sorted); i++ {
		end := sorted[i].End()
		gap := sorted[i+1].Start - end
		if gap <= gapMiddleMin || end+gap > len(buf) {
			continue
		}
		if !looksLikeAudio(buf[end : end+min(gapSampleBytes, gap)]) {
			continue
		}
		out = append(out, Candidate{
			Start:      end,
			Length:     gap,
			Method:     MethodGapMiddle,
			Confidence: Low,
		})
	}

	if first := sorted[0]; first.Start >= gapEdgeMin {
		out = append(out, Candidate{
			Start:      0,
			Length:     first.Start,
			Method:     MethodGapBefore,
			Confidence: Low,
		})
	}
	if last := sorted[len(sorted)-1]; last.End() <= len(buf) && len(buf)-last.End() >= gapEdgeMin {
		out = append(out, Candidate{
			Start:      last.End(),
			Length:     len(buf) - last.End(),
			Method:     MethodGapAfter,
			Confidence: Low,
		})
	}
	return out
}

// compareStart orders candidates by position, breaking ties on extent and
// method so the order never depends on scanner arrival.
func compareStart(a, b Candidate) int {
	if c := cmp.Compare(a.Start, b.Start); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Length, b.Length); c != 0 {
		return c
	}
	return cmp.Compare(a.Method.rank(), b.Method.rank())
}

// SortByStart orders cands by start offset in place.
func SortByStart(cands []Candidate) {
	slices.SortFunc(cands, compareStart)
}

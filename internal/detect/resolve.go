package detect

import (
	"cmp"
	"slices"
)

// MaxOverlapRatio is the largest overlap two accepted candidates may share.
const MaxOverlapRatio = 0.3

// Resolve deduplicates candidates. Candidates are ranked by confidence, then by
// later start first, and accepted greedily unless they overlap an accepted
// candidate by more than MaxOverlapRatio of the smaller size. The result is
// in acceptance order; use SortByStart for positional order.
func Resolve(cands []Candidate) []Candidate {
	ranked := slices.Clone(cands)
	slices.SortFunc(ranked, compareRank)

	accepted := make([]Candidate, 0, len(ranked))
	for _, c := range ranked {
		if c.Length <= 0 || overlapsAccepted(accepted, c) {
			continue
		}
		accepted = append(accepted, c)
	}
	return accepted
}

func overlapsAccepted(accepted []Candidate, c Candidate) bool {
	for _, a := range accepted {
		if OverlapRatio(a, c) > MaxOverlapRatio {
			return true
		}
	}
	return false
}

func compareRank(a, b Candidate) int {
	if c := cmp.Compare(b.Confidence, a.Confidence); c != 0 {
		return c
	}
	if c := cmp.Compare(b.Start, a.Start); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Method.rank(), b.Method.rank()); c != 0 {
		return c
	}
	return cmp.Compare(b.Length, a.Length)
}

package detect

import "bytes"

const (
	minAudioSample      = 100
	audioScoreThreshold = 6.0

	frameWindowBytes = 8
	minDistinctBytes = 6
)

// looksLikeAudio reports whether a sample resembles compressed audio rather
// than structured metadata: it either carries a sync word or scores above the
// fixed audioScore cutoff.
func looksLikeAudio(sample []byte) bool {
	if len(sample) < minAudioSample {
		return false
	}
	if bytes.Contains(sample, syncWord) {
		return true
	}
	return audioScore(sample) > audioScoreThreshold
}

// audioScore is the simplified entropy heuristic -Σ p·(8p) over the byte
// histogram. It is linear in p rather than logarithmic and never positive, so
// the sync-word check is what admits samples in practice.
func audioScore(sample []byte) float64 {
	if len(sample) == 0 {
		return 0
	}
	var counts [256]int
	for _, b := range sample {
		counts[b]++
	}
	n := float64(len(sample))
	score := 0.0
	for _, c := range counts {
		if c == 0 {
			continue
		}
		p := float64(c) / n
		score -= p * (p * 8)
	}
	return score
}

// looksLikeFrame reports whether an 8-byte window could open an AC3 frame:
// a sync word in either byte order, or enough distinct byte values to
// suggest compressed payload instead of padding.
func looksLikeFrame(window []byte) bool {
	if len(window) < 4 {
		return false
	}
	if bytes.HasPrefix(window, syncWord) || bytes.HasPrefix(window, swappedSyncWord) {
		return true
	}
	if len(window) < frameWindowBytes {
		return false
	}
	var seen [256]bool
	distinct := 0
	for _, b := range window[:frameWindowBytes] {
		if !seen[b] {
			seen[b] = true
			distinct++
		}
	}
	return distinct >= minDistinctBytes
}

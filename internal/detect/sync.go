package detect

import "bytes"

// ScanSync walks buf for exact sync words. Each valid header yields a
// high-confidence candidate and the scan skips past the estimated stream body;
// an invalid header resumes the search one byte later.
func ScanSync(buf []byte) []Candidate {
	return scanSync(buf, NewEstimator(buf))
}

func scanSync(buf []byte, est *Estimator) []Candidate {
	var out []Candidate
	pos := 0
	for pos < len(buf) {
		idx := bytes.Index(buf[pos:], syncWord)
		if idx < 0 {
			break
		}
		p := pos + idx
		if !ValidHeader(buf, p) {
			pos = p + 1
			continue
		}

		size := est.Size(p)
		out = append(out, Candidate{
			Start:      p,
			Length:     size,
			Method:     MethodSync,
			Confidence: High,
		})
		pos = p + max(size, minStreamSkip)
	}
	return out
}

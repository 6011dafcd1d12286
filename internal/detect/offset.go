package detect

import "bytes"

const (
	maxPadding          = 16
	offsetWindow        = 4096
	offsetDedupDistance = 100
)

// ScanOffset finds headers hidden behind 1 to 16 bytes of padding.
//
// Every padding pass strides the buffer in offsetWindow chunks starting at the
// pass offset and checks each byte pair inside a chunk; pairs that straddle
// two chunks are not inspected. A valid header is reported at medium
// confidence unless an earlier find starts within 100 bytes of it.
func ScanOffset(buf []byte) []Candidate {
	return scanOffset(buf, NewEstimator(buf))
}

func scanOffset(buf []byte, est *Estimator) []Candidate {
	var out []Candidate
	seen := make(startIndex)
	for pad := 1; pad <= maxPadding; pad++ {
		for pos := pad; pos < len(buf)-maxPadding; pos += offsetWindow {
			window := buf[pos:min(pos+offsetWindow, len(buf))]
			for i := 0; i+1 < len(window); {
				idx := bytes.Index(window[i:], syncWord)
				if idx < 0 {
					break
				}
				p := pos + i + idx
				i += idx + 1

				if !ValidHeader(buf, p) || seen.near(p) {
					continue
				}
				seen.add(p)
				out = append(out, Candidate{
					Start:      p,
					Length:     est.Size(p),
					Method:     MethodOffset,
					Confidence: Medium,
					Offset:     pad,
				})
			}
		}
	}
	return out
}

// startIndex buckets accepted starts by offsetDedupDistance so a proximity
// check only looks at three buckets.
type startIndex map[int][]int

func (s startIndex) add(p int) {
	k := p / offsetDedupDistance
	s[k] = append(s[k], p)
}

func (s startIndex) near(p int) bool {
	k := p / offsetDedupDistance
	for b := k - 1; b <= k+1; b++ {
		for _, q := range s[b] {
			d := q - p
			if d < 0 {
				d = -d
			}
			if d < offsetDedupDistance {
				return true
			}
		}
	}
	return false
}

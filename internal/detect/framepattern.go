package detect

const (
	frameStride    = 2048
	frameGroupGap  = 50000
	minGroupFrames = 3
	frameTrailer   = 10000
)

// ScanFramePattern samples 8-byte windows every 2 KiB and groups windows that
// look like frame starts. Groups of at least three windows, each within 50 KB
// of the previous one, become medium-confidence candidates that extend 10 KB
// past the last window. This catches byte-swapped streams and streams whose
// headers were damaged.
func ScanFramePattern(buf []byte) []Candidate {
	var hits []int
	for i := 0; i < len(buf)-frameWindowBytes; i += frameStride {
		if looksLikeFrame(buf[i : i+frameWindowBytes]) {
			hits = append(hits, i)
		}
	}
	if len(hits) == 0 {
		return nil
	}

	var out []Candidate
	first, count := hits[0], 1
	flush := func(last int) {
		if count < minGroupFrames {
			return
		}
		end := min(last+frameTrailer, len(buf))
		out = append(out, Candidate{
			Start:      first,
			Length:     end - first,
			Method:     MethodFramePattern,
			Confidence: Medium,
			Frames:     count,
		})
	}

	for i := 1; i < len(hits); i++ {
		if hits[i]-hits[i-1] < frameGroupGap {
			count++
			continue
		}
		flush(hits[i-1])
		first, count = hits[i], 1
	}
	flush(hits[len(hits)-1])
	return out
}

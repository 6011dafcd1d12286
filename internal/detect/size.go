package detect

import "bytes"

const (
	// minStreamSkip is both the first probe distance and the minimum advance
	// after a sync hit.
	minStreamSkip   = 1000
	sizeProbeStride = 4096

	silenceWindow        = 1000
	silenceZeroThreshold = 900

	unrelatedStreamGap = 10 << 20
	maxStreamBytes     = 50 << 20
	defaultStreamBytes = 20 << 20

	zeroBlock = 64
)

// Estimator sizes streams within one buffer. It indexes zero bytes per
// 64-byte block once so that each silence probe costs a few lookups instead of
// a 1000-byte count. An Estimator is read-only after construction and safe for
// concurrent use.
type Estimator struct {
	buf []byte
	// zeros[k] is the number of zero bytes in buf[:k*zeroBlock].
	zeros []int
}

// NewEstimator indexes buf for repeated size estimates.
func NewEstimator(buf []byte) *Estimator {
	blocks := len(buf) / zeroBlock
	zeros := make([]int, blocks+1)
	for k := range blocks {
		zeros[k+1] = zeros[k] + bytes.Count(buf[k*zeroBlock:(k+1)*zeroBlock], []byte{0})
	}
	return &Estimator{buf: buf, zeros: zeros}
}

// EstimateSize returns the extent of the stream that begins at start. Callers
// sizing many streams in the same buffer should share a NewEstimator instead.
func EstimateSize(buf []byte, start int) int {
	return (&Estimator{buf: buf}).Size(start)
}

// Size returns the extent of the stream that begins at start.
//
// The estimator probes every sizeProbeStride bytes after the first frame. A
// sync word more than 10 MiB past start marks an unrelated stream, and a
// window that is mostly zero bytes marks trailing padding. Without either
// signal the size falls back to 20 MiB, bounded by the buffer and a 50 MiB cap.
func (e *Estimator) Size(start int) int {
	buf := e.buf
	if start < 0 || start >= len(buf) {
		return 0
	}
	limit := min(len(buf)-start, maxStreamBytes)

	for pos := start + minStreamSkip; pos < start+limit-2; pos += sizeProbeStride {
		if hasSyncAt(buf, pos) && pos-start > unrelatedStreamGap {
			return pos - start
		}
		if pos+silenceWindow < len(buf) && e.silentAt(pos) {
			return pos - start
		}
	}
	return min(limit, defaultStreamBytes)
}

// silentAt reports whether buf[pos:pos+silenceWindow] holds more than
// silenceZeroThreshold zero bytes.
func (e *Estimator) silentAt(pos int) bool {
	end := pos + silenceWindow
	if e.zeros == nil {
		return isSilence(e.buf[pos:end])
	}

	// Whole blocks covering the window bound its zero count from above.
	lo := pos / zeroBlock
	hi := (end + zeroBlock - 1) / zeroBlock
	if hi < len(e.zeros) && e.zeros[hi]-e.zeros[lo] <= silenceZeroThreshold {
		return false
	}

	first := (pos + zeroBlock - 1) / zeroBlock
	last := end / zeroBlock
	if first >= last {
		return isSilence(e.buf[pos:end])
	}
	n := e.zeros[last] - e.zeros[first] +
		countZeros(e.buf[pos:first*zeroBlock]) +
		countZeros(e.buf[last*zeroBlock:end])
	return n > silenceZeroThreshold
}

func countZeros(b []byte) int {
	return bytes.Count(b, []byte{0})
}

func isSilence(window []byte) bool {
	return countZeros(window) > silenceZeroThreshold
}

package detect

import (
	"bytes"
	"slices"
)

const (
	minRegionBytes    = 5000
	maxRegionBytes    = 50 << 20
	regionSampleBytes = 1024
)

// containerMarkers are chunk tags and size markers seen in the asset bundles.
var containerMarkers = [][]byte{
	[]byte("RIFF"),
	[]byte("WAVE"),
	[]byte("DATA"),
	[]byte("SDAT"),
	{0x00, 0x00, 0x01, 0x00},
	{0x00, 0x00, 0x02, 0x00},
	[]byte("@GG@"),
}

// ScanStructural segments buf at container markers. The span between two
// consecutive markers is reported at medium confidence when it is larger than
// 5 KB, smaller than 50 MiB, and its leading sample looks like audio.
func ScanStructural(buf []byte) []Candidate {
	points := markerPositions(buf)

	var out []Candidate
	for i := 0; i+1 < len(points); i++ {
		start, end := points[i], points[i+1]
		size := end - start
		if size <= minRegionBytes || size >= maxRegionBytes {
			continue
		}
		if !looksLikeAudio(buf[start : start+min(regionSampleBytes, size)]) {
			continue
		}
		out = append(out, Candidate{
			Start:      start,
			Length:     size,
			Method:     MethodStructural,
			Confidence: Medium,
		})
	}
	return out
}

func markerPositions(buf []byte) []int {
	var points []int
	for _, marker := range containerMarkers {
		pos := 0
		for pos < len(buf) {
			idx := bytes.Index(buf[pos:], marker)
			if idx < 0 {
				break
			}
			points = append(points, pos+idx)
			pos += idx + len(marker)
		}
	}
	slices.Sort(points)
	return points
}

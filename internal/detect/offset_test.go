package detect_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"stringpuller/internal/detect"
	"stringpuller/internal/testsupport"
)

func TestScanOffsetFindsPaddedHeader(t *testing.T) {
	buf := testsupport.NewAC3Builder(17).
		Zeros(100000).
		Bytes(0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF).
		ValidHeader().
		Noise(5000).
		Zeros(100000).
		Build()

	got := detect.ScanOffset(buf)
	if len(got) != 1 {
		t.Fatalf("expected one candidate, got %v", got)
	}
	c := got[0]
	if c.Start != 100007 || c.Confidence != detect.Medium || c.Method != detect.MethodOffset {
		t.Fatalf("unexpected candidate %v", c)
	}
	if c.Length != 5096 {
		t.Fatalf("expected estimated length 5096, got %d", c.Length)
	}
}

func TestScanOffsetWindowStraddle(t *testing.T) {
	// 102400 is the last byte of a first-pass window, so only the second
	// pass sees the whole sync word.
	buf := testsupport.NewAC3Builder(19).
		Zeros(102400).
		ValidHeader().
		Noise(5000).
		Zeros(10000).
		Build()

	got := detect.ScanOffset(buf)
	want := []detect.Candidate{{
		Start:      102400,
		Length:     5096,
		Method:     detect.MethodOffset,
		Confidence: detect.Medium,
		Offset:     2,
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("ScanOffset mismatch (-want +got):\n%s", diff)
	}
}

func TestScanOffsetSuppressesNearbyHeaders(t *testing.T) {
	tests := []struct {
		name    string
		spacing int
		want    []int
	}{
		{name: "within 100 bytes", spacing: 50, want: []int{10000}},
		{name: "beyond 100 bytes", spacing: 150, want: []int{10000, 10150}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := testsupport.NewAC3Builder(23).
				Zeros(10000).
				ValidHeader().
				Noise(tt.spacing - len(testsupport.DefaultHeader)).
				ValidHeader().
				Noise(5000).
				Zeros(10000).
				Build()

			var starts []int
			for _, c := range detect.ScanOffset(buf) {
				starts = append(starts, c.Start)
			}
			if diff := cmp.Diff(tt.want, starts); diff != "" {
				t.Fatalf("starts mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestScanOffsetShortBuffer(t *testing.T) {
	if got := detect.ScanOffset(testsupport.DefaultHeader); got != nil {
		t.Fatalf("expected nil for short buffer, got %v", got)
	}
}

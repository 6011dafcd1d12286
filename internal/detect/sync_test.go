package detect_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"stringpuller/internal/detect"
	"stringpuller/internal/testsupport"
)

func TestScanSyncFindsPlacedHeader(t *testing.T) {
	buf := testsupport.NewAC3Builder(7).
		Zeros(100000).
		ValidHeader().
		Noise(5000).
		Zeros(100000).
		Build()

	got := detect.ScanSync(buf)
	want := []detect.Candidate{{Start: 100000, Length: 5096, Method: detect.MethodSync, Confidence: detect.High}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("ScanSync mismatch (-want +got):\n%s", diff)
	}
}

func TestScanSyncRejectsZeroFrameSize(t *testing.T) {
	buf := testsupport.NewAC3Builder(7).
		Zeros(1000).
		Header(0, 0, 8).
		Noise(5000).
		Zeros(5000).
		Build()

	if got := detect.ScanSync(buf); len(got) != 0 {
		t.Fatalf("expected no candidates, got %v", got)
	}
}

func TestScanSyncResumesAfterInvalidHeader(t *testing.T) {
	buf := testsupport.NewAC3Builder(3).
		Bytes(0x0B, 0x77, 0x00, 0x00).
		ValidHeader().
		Noise(5000).
		Zeros(2000).
		Build()

	got := detect.ScanSync(buf)
	want := []detect.Candidate{{Start: 4, Length: 5096, Method: detect.MethodSync, Confidence: detect.High}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("ScanSync mismatch (-want +got):\n%s", diff)
	}
}

func TestScanSyncSkipsHeadersInsideStream(t *testing.T) {
	buf := testsupport.NewAC3Builder(5).
		ValidHeader().
		Noise(494).
		ValidHeader().
		Noise(4500).
		Zeros(10000).
		Build()

	got := detect.ScanSync(buf)
	if len(got) != 1 || got[0].Start != 0 {
		t.Fatalf("expected a single candidate at 0, got %v", got)
	}
}

func TestScanSyncEmptyBuffer(t *testing.T) {
	if got := detect.ScanSync(nil); got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
}

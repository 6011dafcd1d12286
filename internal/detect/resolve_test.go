package detect_test

import (
	"math/rand/v2"
	"testing"

	"github.com/google/go-cmp/cmp"

	"stringpuller/internal/detect"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name  string
		input []detect.Candidate
		want  []detect.Candidate
	}{
		{
			name: "higher confidence wins overlap",
			input: []detect.Candidate{
				{Start: 100, Length: 1000, Method: detect.MethodFramePattern, Confidence: detect.Medium},
				{Start: 0, Length: 1000, Method: detect.MethodSync, Confidence: detect.High},
			},
			want: []detect.Candidate{
				{Start: 0, Length: 1000, Method: detect.MethodSync, Confidence: detect.High},
			},
		},
		{
			name: "overlap at the ratio limit is kept",
			input: []detect.Candidate{
				{Start: 0, Length: 1000, Method: detect.MethodSync, Confidence: detect.High},
				{Start: 700, Length: 1000, Method: detect.MethodOffset, Confidence: detect.Medium},
			},
			want: []detect.Candidate{
				{Start: 0, Length: 1000, Method: detect.MethodSync, Confidence: detect.High},
				{Start: 700, Length: 1000, Method: detect.MethodOffset, Confidence: detect.Medium},
			},
		},
		{
			name: "overlap above the ratio limit is dropped",
			input: []detect.Candidate{
				{Start: 0, Length: 1000, Method: detect.MethodSync, Confidence: detect.High},
				{Start: 699, Length: 1000, Method: detect.MethodOffset, Confidence: detect.Medium},
			},
			want: []detect.Candidate{
				{Start: 0, Length: 1000, Method: detect.MethodSync, Confidence: detect.High},
			},
		},
		{
			name: "later start wins among equal confidence",
			input: []detect.Candidate{
				{Start: 0, Length: 1000, Method: detect.MethodFramePattern, Confidence: detect.Medium},
				{Start: 500, Length: 1000, Method: detect.MethodStructural, Confidence: detect.Medium},
			},
			want: []detect.Candidate{
				{Start: 500, Length: 1000, Method: detect.MethodStructural, Confidence: detect.Medium},
			},
		},
		{
			name: "method rank breaks position ties",
			input: []detect.Candidate{
				{Start: 0, Length: 5000, Method: detect.MethodGapBefore, Confidence: detect.Low},
				{Start: 0, Length: 5000, Method: detect.MethodGapMiddle, Confidence: detect.Low},
			},
			want: []detect.Candidate{
				{Start: 0, Length: 5000, Method: detect.MethodGapMiddle, Confidence: detect.Low},
			},
		},
		{
			name: "longer wins full ties",
			input: []detect.Candidate{
				{Start: 0, Length: 4000, Method: detect.MethodOffset, Confidence: detect.Medium},
				{Start: 0, Length: 5000, Method: detect.MethodOffset, Confidence: detect.Medium},
			},
			want: []detect.Candidate{
				{Start: 0, Length: 5000, Method: detect.MethodOffset, Confidence: detect.Medium},
			},
		},
		{
			name: "empty candidates are dropped",
			input: []detect.Candidate{
				{Start: 10, Length: 0, Method: detect.MethodSync, Confidence: detect.High},
			},
			want: []detect.Candidate{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := detect.Resolve(tt.input)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("Resolve mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestResolveKeepsPairwiseOverlapBounded(t *testing.T) {
	rng := rand.New(rand.NewPCG(41, 43))
	methods := []detect.Method{detect.MethodSync, detect.MethodOffset, detect.MethodFramePattern, detect.MethodStructural, detect.MethodGapMiddle}

	var input []detect.Candidate
	for range 500 {
		input = append(input, detect.Candidate{
			Start:      rng.IntN(1_000_000),
			Length:     1 + rng.IntN(50_000),
			Method:     methods[rng.IntN(len(methods))],
			Confidence: detect.Confidence(1 + rng.IntN(3)),
		})
	}

	got := detect.Resolve(input)
	if len(got) == 0 {
		t.Fatal("expected survivors")
	}
	for i := range got {
		for j := i + 1; j < len(got); j++ {
			if r := detect.OverlapRatio(got[i], got[j]); r > detect.MaxOverlapRatio {
				t.Fatalf("survivors %v and %v overlap by %.3f", got[i], got[j], r)
			}
		}
	}
}

func TestOverlapRatio(t *testing.T) {
	a := detect.Candidate{Start: 0, Length: 1000}
	tests := []struct {
		name string
		b    detect.Candidate
		want float64
	}{
		{name: "disjoint", b: detect.Candidate{Start: 2000, Length: 1000}, want: 0},
		{name: "touching", b: detect.Candidate{Start: 1000, Length: 1000}, want: 0},
		{name: "contained", b: detect.Candidate{Start: 100, Length: 200}, want: 1},
		{name: "half of smaller", b: detect.Candidate{Start: 500, Length: 4000}, want: 0.5},
		{name: "empty", b: detect.Candidate{Start: 10, Length: 0}, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := detect.OverlapRatio(a, tt.b); got != tt.want {
				t.Fatalf("OverlapRatio = %v, want %v", got, tt.want)
			}
			if got := detect.OverlapRatio(tt.b, a); got != tt.want {
				t.Fatalf("OverlapRatio is not symmetric: %v", got)
			}
		})
	}
}

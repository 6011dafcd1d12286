package detect

import "fmt"

// Method identifies the scanner that proposed a candidate.
type Method string

const (
	MethodSync         Method = "sync"
	MethodOffset       Method = "offset"
	MethodFramePattern Method = "frame-pattern"
	MethodStructural   Method = "structural"
	MethodGapBefore    Method = "gap-before"
	MethodGapAfter     Method = "gap-after"
	MethodGapMiddle    Method = "gap-middle"
)

// rank orders methods so resolver ties are broken deterministically.
func (m Method) rank() int {
	switch m {
	case MethodSync:
		return 0
	case MethodOffset:
		return 1
	case MethodFramePattern:
		return 2
	case MethodStructural:
		return 3
	case MethodGapMiddle:
		return 4
	case MethodGapBefore:
		return 5
	case MethodGapAfter:
		return 6
	default:
		return 7
	}
}

// Confidence is an ordered tier; larger values carry more structural evidence.
type Confidence int

const (
	Low Confidence = iota + 1
	Medium
	High
)

func (c Confidence) String() string {
	switch c {
	case High:
		return "high"
	case Medium:
		return "medium"
	case Low:
		return "low"
	default:
		return fmt.Sprintf("confidence(%d)", int(c))
	}
}

// MarshalText renders the tier name so JSON output stays readable.
func (c Confidence) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText accepts the names produced by MarshalText.
func (c *Confidence) UnmarshalText(text []byte) error {
	parsed, err := parseConfidence(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

func parseConfidence(value string) (Confidence, error) {
	switch value {
	case "high":
		return High, nil
	case "medium":
		return Medium, nil
	case "low":
		return Low, nil
	default:
		return 0, fmt.Errorf("unknown confidence %q", value)
	}
}

// Candidate is a provisionally detected stream region.
type Candidate struct {
	Start      int        `json:"start"`
	Length     int        `json:"length"`
	Method     Method     `json:"method"`
	Confidence Confidence `json:"confidence"`

	// Frames is the number of sampled frame windows behind a frame-pattern
	// candidate. Diagnostic only.
	Frames int `json:"frames,omitempty"`
	// Offset is the padding pass that found an offset candidate. Diagnostic only.
	Offset int `json:"offset,omitempty"`
}

// End returns the exclusive end offset.
func (c Candidate) End() int {
	return c.Start + c.Length
}

// Slice returns the candidate's bytes from buf.
func (c Candidate) Slice(buf []byte) []byte {
	return buf[c.Start:c.End()]
}

func (c Candidate) String() string {
	return fmt.Sprintf("%s@%d+%d(%s)", c.Method, c.Start, c.Length, c.Confidence)
}

// OverlapRatio returns the shared byte count divided by the smaller size.
func OverlapRatio(a, b Candidate) float64 {
	lo := max(a.Start, b.Start)
	hi := min(a.End(), b.End())
	shared := hi - lo
	if shared <= 0 {
		return 0
	}
	smaller := min(a.Length, b.Length)
	if smaller <= 0 {
		return 0
	}
	return float64(shared) / float64(smaller)
}

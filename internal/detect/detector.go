package detect

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"stringpuller/internal/logging"
)

// Scanner proposes candidates from a read-only buffer, sizing streams with an
// Estimator shared across the scanners of one run. Scanners never fail.
type Scanner func(buf []byte, est *Estimator) []Candidate

type namedScanner struct {
	method Method
	scan   Scanner
}

// primaryScanners run concurrently before gap recovery.
var primaryScanners = []namedScanner{
	{MethodSync, scanSync},
	{MethodOffset, scanOffset},
	{MethodFramePattern, func(buf []byte, _ *Estimator) []Candidate { return ScanFramePattern(buf) }},
	{MethodStructural, func(buf []byte, _ *Estimator) []Candidate { return ScanStructural(buf) }},
}

// Detector runs the scanner pipeline over container buffers.
type Detector struct {
	logger      *slog.Logger
	scanners    []namedScanner
	gapRecovery bool
}

// Option configures a Detector.
type Option func(*Detector)

// WithLogger sets the logger used for per-scanner diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Detector) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithoutGapRecovery skips the gap scanner.
func WithoutGapRecovery() Option {
	return func(d *Detector) {
		d.gapRecovery = false
	}
}

// WithScanners restricts the primary scanners to the given methods. Unknown
// methods are ignored.
func WithScanners(methods ...Method) Option {
	return func(d *Detector) {
		d.scanners = slices.DeleteFunc(slices.Clone(primaryScanners), func(s namedScanner) bool {
			return !slices.Contains(methods, s.method)
		})
	}
}

// ParseScannerMethod validates the name of a primary scanner.
func ParseScannerMethod(name string) (Method, error) {
	for _, s := range primaryScanners {
		if string(s.method) == name {
			return s.method, nil
		}
	}
	names := make([]string, 0, len(primaryScanners))
	for _, s := range primaryScanners {
		names = append(names, string(s.method))
	}
	return "", fmt.Errorf("unknown scanner %q (want one of %s)", name, strings.Join(names, ", "))
}

// New builds a Detector running every scanner with gap recovery enabled.
func New(opts ...Option) *Detector {
	d := &Detector{
		logger:      logging.NewNop(),
		scanners:    primaryScanners,
		gapRecovery: true,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.logger = logging.NewComponentLogger(d.logger, "detector")
	return d
}

// Result is the outcome of one detection run.
type Result struct {
	// Raw holds every candidate proposed before resolution, primary scanners
	// first in a fixed order, then gap recovery.
	Raw []Candidate `json:"raw"`
	// Streams is the resolved, non-overlapping set in acceptance order.
	Streams []Candidate `json:"streams"`
}

// Sorted returns Streams ordered by start offset.
func (r Result) Sorted() []Candidate {
	out := slices.Clone(r.Streams)
	SortByStart(out)
	return out
}

// Counts tallies raw candidates per method.
func (r Result) Counts() map[Method]int {
	counts := make(map[Method]int, len(primaryScanners)+3)
	for _, c := range r.Raw {
		counts[c.Method]++
	}
	return counts
}

// Empty reports whether no stream survived resolution.
func (r Result) Empty() bool {
	return len(r.Streams) == 0
}

// Detect runs the primary scanners concurrently over buf, then gap recovery
// and resolution. Cancellation is checked once every scanner has returned.
func (d *Detector) Detect(ctx context.Context, buf []byte) (Result, error) {
	logger := logging.WithContext(ctx, d.logger)
	started := time.Now()

	est := NewEstimator(buf)
	found := make([][]Candidate, len(d.scanners))
	var g errgroup.Group
	for i, s := range d.scanners {
		g.Go(func() error {
			found[i] = s.scan(buf, est)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	var raw []Candidate
	for i, s := range d.scanners {
		logger.Debug("scanner finished",
			logging.String("method", string(s.method)),
			logging.Int("candidates", len(found[i])),
		)
		raw = append(raw, found[i]...)
	}
	if d.gapRecovery {
		gaps := RecoverGaps(buf, raw)
		logger.Debug("gap recovery finished", logging.Int("candidates", len(gaps)))
		raw = append(raw, gaps...)
	}

	streams := Resolve(raw)
	logger.Info("detection complete",
		logging.Int("bytes", len(buf)),
		logging.Int("raw", len(raw)),
		logging.Int("streams", len(streams)),
		logging.Duration("elapsed", time.Since(started)),
	)
	return Result{Raw: raw, Streams: streams}, nil
}

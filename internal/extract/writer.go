package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"stringpuller/internal/detect"
	"stringpuller/internal/fileutil"
	"stringpuller/internal/logging"
)

// LockFileName is created inside the output directory while a writer holds it.
const LockFileName = ".stringpuller.lock"

const (
	defaultLockWait = 30 * time.Second
	lockRetryDelay  = 50 * time.Millisecond
	outputFileMode  = 0o644
	outputDirMode   = 0o755
)

// ErrLocked reports that another run kept the output directory locked for
// longer than the writer was willing to wait.
var ErrLocked = errors.New("output directory is locked")

// Output is the outcome of writing one candidate.
type Output struct {
	Index     int              `json:"index"`
	Candidate detect.Candidate `json:"candidate"`
	Path      string           `json:"path"`
	Err       error            `json:"-"`
}

// Report collects every Output for one source file.
type Report struct {
	Source  string   `json:"source"`
	Dir     string   `json:"dir"`
	Outputs []Output `json:"outputs"`
}

// Written counts outputs that reached disk.
func (r Report) Written() int {
	n := 0
	for _, o := range r.Outputs {
		if o.Err == nil {
			n++
		}
	}
	return n
}

// Failed counts outputs whose write failed.
func (r Report) Failed() int {
	return len(r.Outputs) - r.Written()
}

// Paths lists the files that were written.
func (r Report) Paths() []string {
	var paths []string
	for _, o := range r.Outputs {
		if o.Err == nil {
			paths = append(paths, o.Path)
		}
	}
	return paths
}

// Writer writes candidate byte ranges into a single output directory.
type Writer struct {
	dir      string
	logger   *slog.Logger
	lockWait time.Duration
	dryRun   bool
}

// WriterOption configures a Writer.
type WriterOption func(*Writer)

// WithLogger sets the writer logger.
func WithLogger(logger *slog.Logger) WriterOption {
	return func(w *Writer) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithLockWait bounds how long Write waits for the directory lock.
func WithLockWait(d time.Duration) WriterOption {
	return func(w *Writer) {
		if d > 0 {
			w.lockWait = d
		}
	}
}

// WithDryRun computes output names without touching the filesystem.
func WithDryRun() WriterOption {
	return func(w *Writer) {
		w.dryRun = true
	}
}

// NewWriter returns a Writer targeting dir.
func NewWriter(dir string, opts ...WriterOption) *Writer {
	w := &Writer{
		dir:      dir,
		logger:   logging.NewNop(),
		lockWait: defaultLockWait,
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = logging.NewComponentLogger(w.logger, "writer")
	return w
}

// Dir returns the output directory.
func (w *Writer) Dir() string {
	return w.dir
}

// Write stores buf[start:start+length] for every candidate under names
// derived from source. Failures are recorded per candidate and do not stop
// the remaining writes; the returned error covers only directory setup and
// locking.
func (w *Writer) Write(ctx context.Context, source string, buf []byte, cands []detect.Candidate) (Report, error) {
	base := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	category := Classify(base)
	report := Report{Source: source, Dir: w.dir, Outputs: make([]Output, 0, len(cands))}
	for i, c := range cands {
		report.Outputs = append(report.Outputs, Output{
			Index:     i + 1,
			Candidate: c,
			Path:      filepath.Join(w.dir, FileName(base, i+1, category)),
		})
	}
	if w.dryRun || len(cands) == 0 {
		return report, nil
	}

	if err := os.MkdirAll(w.dir, outputDirMode); err != nil {
		return report, fmt.Errorf("create output directory: %w", err)
	}
	unlock, err := w.lock(ctx)
	if err != nil {
		return report, err
	}
	defer unlock()

	logger := logging.WithContext(ctx, w.logger)
	for i := range report.Outputs {
		out := &report.Outputs[i]
		out.Err = writeCandidate(out.Path, buf, out.Candidate)
		if out.Err != nil {
			logging.WarnWithContext(logger, "stream write failed", "stream_write_failed",
				logging.String("file", filepath.Base(out.Path)),
				logging.String("candidate", out.Candidate.String()),
				logging.Error(out.Err),
				logging.String(logging.FieldImpact, "stream skipped; remaining streams still written"),
			)
			continue
		}
		logger.Info("stream written",
			logging.String("file", filepath.Base(out.Path)),
			logging.Int("bytes", out.Candidate.Length),
			logging.String("method", string(out.Candidate.Method)),
			logging.String("confidence", out.Candidate.Confidence.String()),
		)
	}
	return report, nil
}

func (w *Writer) lock(ctx context.Context) (func(), error) {
	lock := flock.New(filepath.Join(w.dir, LockFileName))
	lockCtx, cancel := context.WithTimeout(ctx, w.lockWait)
	defer cancel()

	ok, err := lock.TryLockContext(lockCtx, lockRetryDelay)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %s", ErrLocked, w.dir)
		}
		return nil, fmt.Errorf("acquire output lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLocked, w.dir)
	}
	return func() {
		if err := lock.Unlock(); err != nil {
			w.logger.Warn("failed to release output lock",
				logging.String(logging.FieldEventType, "output_lock_release_failed"),
				logging.String(logging.FieldImpact, "lock file remains until process exit"),
				logging.Error(err),
			)
		}
	}, nil
}

func writeCandidate(path string, buf []byte, c detect.Candidate) error {
	if c.Start < 0 || c.Length <= 0 || c.End() > len(buf) {
		return fmt.Errorf("candidate %s outside %d-byte buffer", c, len(buf))
	}
	return fileutil.WriteVerified(path, c.Slice(buf), outputFileMode)
}

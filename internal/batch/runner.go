package batch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"stringpuller/internal/config"
	"stringpuller/internal/detect"
	"stringpuller/internal/extract"
	"stringpuller/internal/history"
	"stringpuller/internal/logging"
	"stringpuller/internal/services"
	"stringpuller/internal/transcode"
)

// Recorder persists run history. *history.Store satisfies it.
type Recorder interface {
	BeginRun(ctx context.Context, startedAt time.Time) (string, error)
	RecordFile(ctx context.Context, runID string, rec history.FileRecord) error
	FinishRun(ctx context.Context, runID string, finishedAt time.Time, sum history.Summary) error
}

// FileResult is the outcome of processing one container file.
type FileResult struct {
	Source  string                `json:"source"`
	Outcome string                `json:"outcome"`
	Detail  string                `json:"detail,omitempty"`
	Bytes   int                   `json:"bytes"`
	Raw     int                   `json:"raw_candidates"`
	Methods map[detect.Method]int `json:"methods,omitempty"`
	Report  extract.Report        `json:"report"`
	WAV     []transcode.Result    `json:"wav,omitempty"`
	Err     error                 `json:"-"`
}

// Streams counts streams that reached disk. On a dry run every planned
// output counts.
func (r FileResult) Streams() int {
	return r.Report.Written()
}

// Summary collects every FileResult from a run.
type Summary struct {
	RunID      string       `json:"run_id"`
	DryRun     bool         `json:"dry_run"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
	Files      []FileResult `json:"files"`
}

// Streams totals the streams across files.
func (s Summary) Streams() int {
	n := 0
	for _, f := range s.Files {
		n += f.Streams()
	}
	return n
}

// Failures counts failed files plus individual stream writes and
// conversions that failed inside otherwise successful files.
func (s Summary) Failures() int {
	n := 0
	for _, f := range s.Files {
		if f.Outcome == services.OutcomeFailed {
			n++
			continue
		}
		n += f.Report.Failed()
		for _, w := range f.WAV {
			if w.Err != nil {
				n++
			}
		}
	}
	return n
}

// Runner processes container files with bounded concurrency.
type Runner struct {
	cfg       *config.Config
	logger    *slog.Logger
	detector  *detect.Detector
	recorder  Recorder
	converter *transcode.Converter
	dryRun    bool
	readFile  func(string) ([]byte, error)
	now       func() time.Time
}

// Option customizes a Runner.
type Option func(*Runner)

// WithLogger routes runner, detector, and writer logs to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithRecorder stores the run in history.
func WithRecorder(rec Recorder) Option {
	return func(r *Runner) {
		r.recorder = rec
	}
}

// WithConverter converts written streams to WAV with c.
func WithConverter(c *transcode.Converter) Option {
	return func(r *Runner) {
		r.converter = c
	}
}

// WithDetector replaces the detector built from configuration.
func WithDetector(d *detect.Detector) Option {
	return func(r *Runner) {
		if d != nil {
			r.detector = d
		}
	}
}

// WithDryRun plans output names without writing, converting, or recording.
func WithDryRun() Option {
	return func(r *Runner) {
		r.dryRun = true
	}
}

// New constructs a Runner for cfg.
func New(cfg *config.Config, opts ...Option) *Runner {
	r := &Runner{
		cfg:      cfg,
		logger:   logging.NewNop(),
		readFile: os.ReadFile,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.detector == nil {
		detectorOpts := []detect.Option{detect.WithLogger(r.logger)}
		if !cfg.Extraction.GapRecovery {
			detectorOpts = append(detectorOpts, detect.WithoutGapRecovery())
		}
		r.detector = detect.New(detectorOpts...)
	}
	r.logger = logging.NewComponentLogger(r.logger, "batch")
	return r
}

// Run processes files and returns a result per file in input order. The
// returned error is reserved for run-level problems such as a cancelled
// context; per-file failures live on the FileResults.
func (r *Runner) Run(ctx context.Context, files []string) (Summary, error) {
	summary := Summary{DryRun: r.dryRun, StartedAt: r.now(), Files: make([]FileResult, len(files))}
	recorder := r.recorder
	if r.dryRun {
		recorder = nil
	}

	summary.RunID = r.beginRun(ctx, recorder, summary.StartedAt)
	ctx = services.WithRunID(ctx, summary.RunID)
	logger := logging.WithContext(ctx, r.logger)

	converter := r.converter
	if converter != nil && !r.dryRun {
		if err := converter.Available(ctx); err != nil {
			logging.WarnWithContext(logger, "wav conversion disabled", "transcode_unavailable",
				logging.Error(err),
				logging.String(logging.FieldImpact, "AC3 files are still written; WAV files are not"),
			)
			converter = nil
		}
	} else {
		converter = nil
	}

	logger.Info("run started",
		logging.Int("files", len(files)),
		logging.Int("max_resident_files", r.cfg.Extraction.MaxResidentFiles),
		logging.Bool("dry_run", r.dryRun),
	)

	var g errgroup.Group
	g.SetLimit(max(r.cfg.Extraction.MaxResidentFiles, 1))
	for i, file := range files {
		g.Go(func() error {
			res := r.processFile(ctx, file, converter)
			summary.Files[i] = res
			if recorder != nil {
				r.record(ctx, recorder, summary.RunID, res)
			}
			return nil
		})
	}
	_ = g.Wait()

	summary.FinishedAt = r.now()
	if recorder != nil {
		sum := history.Summary{Files: len(files), Streams: summary.Streams(), Failures: summary.Failures()}
		if err := recorder.FinishRun(context.WithoutCancel(ctx), summary.RunID, summary.FinishedAt, sum); err != nil {
			logging.WarnWithContext(logger, "history update failed", "history_write_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "run totals missing from history"),
			)
		}
	}

	logger.Info("run complete",
		logging.Int("files", len(files)),
		logging.Int("streams", summary.Streams()),
		logging.Int("failures", summary.Failures()),
		logging.Duration("elapsed", summary.FinishedAt.Sub(summary.StartedAt)),
	)
	if err := ctx.Err(); err != nil {
		return summary, err
	}
	return summary, nil
}

func (r *Runner) beginRun(ctx context.Context, recorder Recorder, startedAt time.Time) string {
	if recorder != nil {
		id, err := recorder.BeginRun(ctx, startedAt)
		if err == nil {
			return id
		}
		logging.WarnWithContext(r.logger, "history unavailable", "history_write_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "run continues without history"),
		)
	}
	return uuid.NewString()
}

func (r *Runner) processFile(ctx context.Context, file string, converter *transcode.Converter) FileResult {
	res := FileResult{Source: file, Report: extract.Report{Source: file}}
	ctx = services.WithSource(ctx, file)
	logger := logging.WithContext(ctx, r.logger)

	if err := ctx.Err(); err != nil {
		return res.fail(err)
	}

	buf, err := r.readFile(file)
	if err != nil {
		marker := services.ErrTransient
		if errors.Is(err, fs.ErrNotExist) {
			marker = services.ErrNotFound
		}
		return res.fail(services.Wrap(marker, "read", "load container", file, err))
	}
	res.Bytes = len(buf)

	detection, err := r.detector.Detect(services.WithStage(ctx, "detect"), buf)
	if err != nil {
		return res.fail(err)
	}
	res.Raw = len(detection.Raw)
	res.Methods = detection.Counts()
	if detection.Empty() {
		res.Outcome = services.OutcomeEmpty
		logger.Info("no streams found", logging.Int("bytes", len(buf)), logging.Int("raw", res.Raw))
		return res
	}

	writerOpts := []extract.WriterOption{extract.WithLogger(r.logger)}
	if r.dryRun {
		writerOpts = append(writerOpts, extract.WithDryRun())
	}
	writer := extract.NewWriter(r.cfg.OutputDirFor(file), writerOpts...)
	res.Report, err = writer.Write(services.WithStage(ctx, "write"), file, buf, detection.Sorted())
	if err != nil {
		return res.fail(services.Wrap(services.ErrTransient, "write", "prepare output", writer.Dir(), err))
	}

	written := res.Report.Written()
	total := len(res.Report.Outputs)
	switch {
	case written == 0:
		return res.fail(fmt.Errorf("%w: all %d stream writes failed", services.ErrTransient, total))
	case written < total:
		res.Detail = fmt.Sprintf("%d of %d streams failed to write", total-written, total)
	}
	res.Outcome = services.OutcomeOK

	if converter != nil {
		res.WAV = converter.ConvertAll(ctx, res.Report.Paths())
	}
	return res
}

func (res FileResult) fail(err error) FileResult {
	res.Err = err
	res.Outcome = services.FailureOutcome(err)
	res.Detail = err.Error()
	return res
}

func (r *Runner) record(ctx context.Context, recorder Recorder, runID string, res FileResult) {
	rec := history.FileRecord{Source: res.Source, Outcome: res.Outcome, Detail: res.Detail}
	for _, out := range res.Report.Outputs {
		if out.Err != nil {
			continue
		}
		rec.Streams = append(rec.Streams, history.Stream{
			FileName:   filepath.Base(out.Path),
			Start:      out.Candidate.Start,
			Length:     out.Candidate.Length,
			Method:     out.Candidate.Method,
			Confidence: out.Candidate.Confidence,
		})
	}
	if err := recorder.RecordFile(context.WithoutCancel(ctx), runID, rec); err != nil {
		logging.WarnWithContext(logging.WithContext(services.WithSource(ctx, res.Source), r.logger),
			"history update failed", "history_write_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "file outcome missing from history"),
		)
	}
}

package logging

import (
	"context"
	"log/slog"

	"stringpuller/internal/services"
)

// Structured field keys shared by every component.
const (
	FieldComponent = "component"
	FieldRunID     = "run_id"
	FieldSource    = "source"
	FieldStage     = "stage"
	FieldEventType = "event_type"
	FieldImpact    = "impact"
)

// WithContext adds run_id, source, and stage from ctx to logger when present.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	if ctx == nil {
		return logger
	}
	var args []any
	if id, ok := services.RunIDFromContext(ctx); ok {
		args = append(args, slog.String(FieldRunID, id))
	}
	if src, ok := services.SourceFromContext(ctx); ok {
		args = append(args, slog.String(FieldSource, src))
	}
	if stage, ok := services.StageFromContext(ctx); ok {
		args = append(args, slog.String(FieldStage, stage))
	}
	if len(args) == 0 {
		return logger
	}
	return logger.With(args...)
}

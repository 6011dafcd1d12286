package services_test

import (
	"errors"
	"strings"
	"testing"

	"stringpuller/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrExternalTool, "transcode", "ffmpeg", "failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"transcode", "ffmpeg", "failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsToTransient(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected fallback detail, got %q", err.Error())
	}
}

func TestFailureOutcomeMapping(t *testing.T) {
	missing := services.Wrap(services.ErrNotFound, "transcode", "lookup", "ffmpeg missing", nil)
	if got := services.FailureOutcome(missing); got != services.OutcomeSkipped {
		t.Fatalf("expected skipped for missing tool, got %s", got)
	}

	writeErr := services.Wrap(services.ErrTransient, "write", "create", "disk full", errors.New("io"))
	if got := services.FailureOutcome(writeErr); got != services.OutcomeFailed {
		t.Fatalf("expected failed for transient error, got %s", got)
	}

	if got := services.FailureOutcome(nil); got != services.OutcomeOK {
		t.Fatalf("expected ok for nil error, got %s", got)
	}
}

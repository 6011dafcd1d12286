package main

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"stringpuller/internal/deps"
	"stringpuller/internal/preflight"
)

func TestRenderStatusLineNoColor(t *testing.T) {
	got := renderStatusLine("FFmpeg", statusError, "binary missing", false)
	want := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, "FFmpeg:", "[ERROR] binary missing")
	if got != want {
		t.Fatalf("renderStatusLine mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestRenderStatusLineWithColor(t *testing.T) {
	got := renderStatusLine("History", statusOK, "", true)
	if !strings.HasPrefix(got, ansiGreen) || !strings.HasSuffix(got, ansiReset) {
		t.Fatalf("expected green line, got %q", got)
	}
	if !strings.Contains(got, "[OK]") {
		t.Fatalf("expected OK badge, got %q", got)
	}
}

func TestDependencyLines(t *testing.T) {
	statuses := []deps.Status{
		{Name: "FFmpeg", Available: true, Command: "/usr/bin/ffmpeg"},
		{Name: "Optional", Optional: true, Detail: `binary "x" not found`},
		{Name: "Required", Detail: `binary "y" not found`},
	}
	lines := dependencyLines(statuses, false)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if !strings.Contains(lines[0], "[OK] Ready (/usr/bin/ffmpeg)") {
		t.Fatalf("unexpected ready line %q", lines[0])
	}
	if !strings.Contains(lines[1], "[WARN]") || !strings.Contains(lines[1], "WAV conversion unavailable") {
		t.Fatalf("unexpected optional line %q", lines[1])
	}
	if !strings.Contains(lines[2], "[ERROR]") {
		t.Fatalf("unexpected required line %q", lines[2])
	}
}

func TestDirectoryLines(t *testing.T) {
	lines := directoryLines([]preflight.Result{
		{Name: "State directory", Passed: true, Detail: "/state (read/write ok)"},
		{Name: "Log directory", Detail: "/logs (error: does not exist)"},
	}, false)
	if !strings.Contains(lines[0], "[OK]") || !strings.Contains(lines[1], "[ERROR]") {
		t.Fatalf("unexpected lines: %q", lines)
	}
}

func TestShouldColorizeNonTerminal(t *testing.T) {
	if shouldColorize(&bytes.Buffer{}) {
		t.Fatal("buffers must never be colorized")
	}
}

func TestRenderTablePadsRows(t *testing.T) {
	out := renderTable("Title", []string{"A", "B"}, [][]string{{"only"}}, []columnAlignment{alignRight})
	if !strings.Contains(out, "Title") || !strings.Contains(out, "only") {
		t.Fatalf("unexpected table:\n%s", out)
	}
	if renderTable("", nil, nil, nil) != "" {
		t.Fatal("expected empty table for no headers")
	}
}

func TestFormatBytes(t *testing.T) {
	cases := map[int64]string{
		512:         "512 B",
		2048:        "2.0 KiB",
		5 * 1 << 20: "5.0 MiB",
	}
	for in, want := range cases {
		if got := formatBytes(in); got != want {
			t.Fatalf("formatBytes(%d) = %q, want %q", in, got, want)
		}
	}
}

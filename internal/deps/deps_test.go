package deps

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCheckBinaries(t *testing.T) {
	binDir := t.TempDir()
	present := filepath.Join(binDir, "present")
	script := []byte("#!/bin/sh\nexit 0\n")
	if err := os.WriteFile(present, script, 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	reqs := []Requirement{
		{Name: "Present", Command: present},
		{Name: "Missing", Command: "clearly-not-present-binary"},
		{Name: "Unset", Command: "  "},
	}

	results := CheckBinaries(reqs)
	if len(results) != len(reqs) {
		t.Fatalf("expected %d results, got %d", len(reqs), len(results))
	}

	if !results[0].Available {
		t.Fatalf("expected first requirement to be available, got %#v", results[0])
	}
	if results[0].Detail != "" {
		t.Fatalf("unexpected detail for available dependency: %s", results[0].Detail)
	}

	if results[1].Available {
		t.Fatalf("expected missing binary to be unavailable")
	}
	if results[1].Detail == "" {
		t.Fatalf("expected detail message for missing binary")
	}
	if results[1].Command != "clearly-not-present-binary" {
		t.Fatalf("unexpected command recorded: %s", results[1].Command)
	}

	if results[2].Available || results[2].Detail != "command not configured" {
		t.Fatalf("unexpected status for blank command: %#v", results[2])
	}
}

func TestCheckBinariesResolvesFromPath(t *testing.T) {
	binDir := t.TempDir()
	stub := filepath.Join(binDir, "ffmpeg")
	if err := os.WriteFile(stub, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatalf("write ffmpeg stub: %v", err)
	}
	t.Setenv("PATH", binDir)

	results := CheckBinaries([]Requirement{FFmpeg("ffmpeg", true)})
	if !results[0].Available {
		t.Fatalf("expected ffmpeg to resolve from PATH, got %q", results[0].Detail)
	}
	if results[0].Command != stub {
		t.Fatalf("expected resolved command %q, got %q", stub, results[0].Command)
	}
	if results[0].Optional {
		t.Fatal("expected required ffmpeg when transcoding is enabled")
	}
}

func TestFFmpegOptionalWhenTranscodeDisabled(t *testing.T) {
	t.Setenv("PATH", "")
	results := CheckBinaries([]Requirement{FFmpeg("ffmpeg", false)})
	if results[0].Available {
		t.Fatal("expected ffmpeg resolution to fail with empty PATH")
	}
	if !results[0].Optional {
		t.Fatal("expected optional ffmpeg when transcoding is disabled")
	}
}

package preflight

import (
	"os"
	"path/filepath"
	"testing"

	"stringpuller/internal/config"
	"stringpuller/internal/testsupport"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestRunAll_NilConfig(t *testing.T) {
	if results := RunAll(nil); results != nil {
		t.Fatal("expected nil results for nil config")
	}
}

func TestRunAll_ChecksConfiguredDirectories(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	if err := os.MkdirAll(cfg.Paths.OutputDir, 0o755); err != nil {
		t.Fatalf("mkdir output: %v", err)
	}

	results := RunAll(cfg)
	if len(results) != 3 {
		t.Fatalf("expected state, log and output checks, got %d", len(results))
	}
	for _, r := range results {
		if !r.Passed {
			t.Errorf("check %q failed: %s", r.Name, r.Detail)
		}
	}
}

func TestRunAll_SkipsRelativeOutputDir(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.StateDir = t.TempDir()
	cfg.Paths.LogDir = ""
	cfg.Paths.OutputDir = "extracted_ac3"

	results := RunAll(&cfg)
	if len(results) != 1 || results[0].Name != "State directory" {
		t.Fatalf("expected only the state directory check, got %+v", results)
	}
}

func TestCheckSystemDeps(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries("ffmpeg"))
	cfg.Transcode.Enabled = true

	statuses := CheckSystemDeps(cfg)
	if len(statuses) != 1 {
		t.Fatalf("expected one dependency, got %d", len(statuses))
	}
	if !statuses[0].Available || statuses[0].Optional {
		t.Fatalf("expected required, available ffmpeg, got %+v", statuses[0])
	}
}

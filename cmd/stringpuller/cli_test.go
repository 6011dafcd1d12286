package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"stringpuller/internal/batch"
	"stringpuller/internal/config"
	"stringpuller/internal/detect"
	"stringpuller/internal/history"
	"stringpuller/internal/services"
	"stringpuller/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
}

func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t, opts...)
	base := testsupport.BaseDir(cfg)
	t.Setenv("HOME", filepath.Join(base, "home"))
	cfg.Extraction.GapRecovery = false
	cfg.Logging.Level = "error"

	configPath := filepath.Join(base, "config.toml")
	writeTestConfig(t, configPath, cfg)
	return &cliTestEnv{cfg: cfg, configPath: configPath, baseDir: base}
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	data, err := cfg.Encode()
	if err != nil {
		t.Fatalf("encode config: %v", err)
	}
	testsupport.WriteFile(t, path, data)
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected output to contain %q\noutput:\n%s", needle, haystack)
	}
}

func writeContainer(t *testing.T, path string) []byte {
	t.Helper()
	buf := testsupport.NewAC3Builder(3).
		Zeros(100000).
		ValidHeader().
		Noise(5000).
		Zeros(100000).
		Build()
	testsupport.WriteFile(t, path, buf)
	return buf
}

func TestConfigInitAndShow(t *testing.T) {
	env := setupCLITestEnv(t)

	target := filepath.Join(env.baseDir, "generated", "config.toml")
	out, _, err := runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected error when config already exists")
	}

	out, _, err = runCLI(t, []string{"config", "show"}, env.configPath)
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	requireContains(t, out, "# source: "+env.configPath)
	requireContains(t, out, "max_resident_files = 2")
}

func TestScanJSON(t *testing.T) {
	env := setupCLITestEnv(t)
	file := filepath.Join(env.baseDir, "game", "bgm01.sgb")
	writeContainer(t, file)

	out, _, err := runCLI(t, []string{"scan", "--json", "--method", "sync", file}, env.configPath)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	var report struct {
		Bytes   int                `json:"bytes"`
		Raw     []detect.Candidate `json:"raw"`
		Streams []detect.Candidate `json:"streams"`
	}
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("decode scan output: %v\n%s", err, out)
	}
	want := detect.Candidate{Start: 100000, Length: 5096, Method: detect.MethodSync, Confidence: detect.High}
	if len(report.Streams) != 1 || report.Streams[0] != want {
		t.Fatalf("unexpected streams: %+v", report.Streams)
	}
	if report.Bytes != 205006 {
		t.Fatalf("unexpected byte count %d", report.Bytes)
	}
}

func TestScanRejectsUnknownMethod(t *testing.T) {
	env := setupCLITestEnv(t)
	file := filepath.Join(env.baseDir, "game", "bgm01.sgb")
	writeContainer(t, file)

	out, _, err := runCLI(t, []string{"scan", "--method", "sycn", file}, env.configPath)
	if err == nil {
		t.Fatalf("expected error for misspelled scanner, got output:\n%s", out)
	}
	requireContains(t, err.Error(), `unknown scanner "sycn"`)
}

func TestScanTable(t *testing.T) {
	env := setupCLITestEnv(t)
	file := filepath.Join(env.baseDir, "game", "amb01.sgb")
	writeContainer(t, file)

	out, _, err := runCLI(t, []string{"scan", file}, env.configPath)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	requireContains(t, out, "Resolved streams")
	requireContains(t, out, "100000")
	requireContains(t, out, "high")
}

func TestExtractThenHistory(t *testing.T) {
	env := setupCLITestEnv(t)
	dir := filepath.Join(env.baseDir, "game")
	buf := writeContainer(t, filepath.Join(dir, "bgm01.sgb"))
	testsupport.WriteFile(t, filepath.Join(dir, "notes.txt"), []byte("ignored"))

	out, _, err := runCLI(t, []string{"extract", "--json", dir}, env.configPath)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	var summary batch.Summary
	if err := json.Unmarshal([]byte(out), &summary); err != nil {
		t.Fatalf("decode extract output: %v\n%s", err, out)
	}
	if len(summary.Files) != 1 || summary.Files[0].Outcome != services.OutcomeOK {
		t.Fatalf("unexpected summary: %+v", summary)
	}

	var syncOut string
	for _, o := range summary.Files[0].Report.Outputs {
		if o.Candidate.Method == detect.MethodSync {
			syncOut = o.Path
		}
	}
	data, err := os.ReadFile(syncOut)
	if err != nil {
		t.Fatalf("read sync output: %v", err)
	}
	if !bytes.Equal(data, buf[100000:105096]) {
		t.Fatalf("sync output does not match source slice")
	}

	out, _, err = runCLI(t, []string{"history", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	var runs []history.Run
	if err := json.Unmarshal([]byte(out), &runs); err != nil {
		t.Fatalf("decode history: %v\n%s", err, out)
	}
	if len(runs) != 1 || runs[0].ID != summary.RunID || runs[0].Files != 1 {
		t.Fatalf("unexpected runs: %+v", runs)
	}

	out, _, err = runCLI(t, []string{"history", "--run", summary.RunID}, env.configPath)
	if err != nil {
		t.Fatalf("history --run: %v", err)
	}
	requireContains(t, out, filepath.Base(syncOut))

	out, _, err = runCLI(t, []string{"history"}, env.configPath)
	if err != nil {
		t.Fatalf("history table: %v", err)
	}
	requireContains(t, out, "Recent runs")
	requireContains(t, out, summary.RunID)
}

func TestExtractDryRun(t *testing.T) {
	env := setupCLITestEnv(t)
	file := filepath.Join(env.baseDir, "game", "voice01.sgb")
	writeContainer(t, file)

	out, _, err := runCLI(t, []string{"extract", "--dry-run", file}, env.configPath)
	if err != nil {
		t.Fatalf("extract --dry-run: %v", err)
	}
	requireContains(t, out, "Extraction (dry run)")
	requireContains(t, out, "Would extract")
	if _, err := os.Stat(env.cfg.Paths.OutputDir); !os.IsNotExist(err) {
		t.Fatalf("dry run created output dir (stat err=%v)", err)
	}

	out, _, err = runCLI(t, []string{"history"}, env.configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "No runs recorded")
}

func TestExtractMissingInput(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"extract", filepath.Join(env.baseDir, "nope.sgb")}, env.configPath)
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestHistoryDisabled(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithoutHistory())

	_, _, err := runCLI(t, []string{"history"}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "history is disabled") {
		t.Fatalf("expected disabled error, got %v", err)
	}
}

func TestStatusCommand(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithStubbedBinaries())
	if err := os.MkdirAll(env.cfg.Paths.OutputDir, 0o755); err != nil {
		t.Fatalf("mkdir output: %v", err)
	}

	out, _, err := runCLI(t, []string{"status"}, env.configPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, out, "== Directories ==")
	requireContains(t, out, "State directory")
	requireContains(t, out, "[OK] Ready")
	requireContains(t, out, env.configPath)
}

// stubFFmpeg writes a shell script that produces a 2000-byte output file.
func stubFFmpeg(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "fake-ffmpeg")
	script := "#!/bin/sh\n" +
		"[ \"$1\" = \"-version\" ] && exit 0\n" +
		"for arg; do out=$arg; done\n" +
		"head -c 2000 /dev/zero > \"$out\"\n"
	testsupport.WriteFile(t, path, []byte(script))
	if err := os.Chmod(path, 0o755); err != nil {
		t.Fatalf("chmod stub: %v", err)
	}
	return path
}

func TestConvertCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	env.cfg.Transcode.FFmpegBinary = stubFFmpeg(t, env.baseDir)
	writeTestConfig(t, env.configPath, env.cfg)

	dir := filepath.Join(env.baseDir, "extracted")
	testsupport.WriteFiller(t, filepath.Join(dir, "bgm01_01_music.ac3"), 4096)
	testsupport.WriteFiller(t, filepath.Join(dir, "bgm01_02_music.ac3"), 4096)

	out, _, err := runCLI(t, []string{"convert", dir}, env.configPath)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	requireContains(t, out, "WAV conversion")
	for _, name := range []string{"bgm01_01_music.wav", "bgm01_02_music.wav"} {
		if _, err := os.Stat(filepath.Join(dir, "wav_converted", name)); err != nil {
			t.Fatalf("expected %s: %v", name, err)
		}
	}
}

func TestConvertEmptyDirectory(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"convert", t.TempDir()}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "no .ac3 files") {
		t.Fatalf("expected empty directory error, got %v", err)
	}
}

package preflight

import (
	"path/filepath"

	"stringpuller/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

// RunAll executes the directory checks that apply to cfg. Relative output
// directories depend on the input location and are not checked.
func RunAll(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result
	results = append(results, CheckDirectoryAccess("State directory", cfg.Paths.StateDir))
	if cfg.Paths.LogDir != "" {
		results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))
	}
	if out := cfg.Paths.OutputDir; out != "" && filepath.IsAbs(out) {
		results = append(results, CheckDirectoryAccess("Output directory", out))
	}
	return results
}

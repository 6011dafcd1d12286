package preflight

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"stringpuller/internal/config"
	"stringpuller/internal/deps"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckSystemDeps evaluates the external binaries cfg relies on.
func CheckSystemDeps(cfg *config.Config) []deps.Status {
	if cfg == nil {
		return nil
	}
	return deps.CheckBinaries([]deps.Requirement{
		deps.FFmpeg(cfg.Transcode.FFmpegBinary, cfg.Transcode.Enabled),
	})
}

package batch

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"stringpuller/internal/config"
	"stringpuller/internal/services"
)

// CollectInputs expands paths into the container files to process.
// Files named explicitly are kept whatever their extension; directories
// contribute their direct children that match extraction.extensions.
// The result is sorted and free of duplicates.
func CollectInputs(cfg *config.Config, paths []string) ([]string, error) {
	var files []string
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", p, err)
		}
		info, err := os.Stat(abs)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, services.Wrap(services.ErrNotFound, "inputs", "stat", p, err)
			}
			return nil, fmt.Errorf("stat %s: %w", p, err)
		}
		if !info.IsDir() {
			files = append(files, abs)
			continue
		}
		entries, err := os.ReadDir(abs)
		if err != nil {
			return nil, fmt.Errorf("read directory %s: %w", p, err)
		}
		for _, entry := range entries {
			if entry.IsDir() || !cfg.MatchesExtension(entry.Name()) {
				continue
			}
			files = append(files, filepath.Join(abs, entry.Name()))
		}
	}
	slices.Sort(files)
	return slices.Compact(files), nil
}

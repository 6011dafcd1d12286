package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteFile writes data to path, creating parent directories as needed.
func WriteFile(t testing.TB, path string, data []byte) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// WriteFiller fills path with size bytes of a repeating pattern. A size <= 0
// writes a single byte.
func WriteFiller(t testing.TB, path string, size int) {
	t.Helper()

	if size <= 0 {
		size = 1
	}
	data := make([]byte, size)
	for i := range data {
		data[i] = 0x42
	}
	WriteFile(t, path, data)
}

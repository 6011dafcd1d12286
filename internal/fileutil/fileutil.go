// Package fileutil holds small file-writing helpers shared by the writer and
// transcoder.
package fileutil

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// WriteVerified writes data to path through a temporary sibling file, checks
// the written size and SHA-256 against data, then renames it into place. A
// partially written or corrupted file never appears at path.
func WriteVerified(path string, data []byte, mode os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpPath) }

	hasher := sha256.New()
	written, err := io.Copy(io.MultiWriter(tmp, hasher), bytes.NewReader(data))
	if err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close %s: %w", filepath.Base(path), err)
	}

	if written != int64(len(data)) {
		cleanup()
		return fmt.Errorf("write size mismatch: expected %d bytes, wrote %d bytes", len(data), written)
	}
	want := sha256.Sum256(data)
	if !bytes.Equal(hasher.Sum(nil), want[:]) {
		cleanup()
		return fmt.Errorf("write hash mismatch: %s corrupted during write", filepath.Base(path))
	}

	if err := os.Chmod(tmpPath, mode); err != nil {
		cleanup()
		return fmt.Errorf("chmod %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		cleanup()
		return fmt.Errorf("rename into place: %w", err)
	}
	return nil
}

// SizeAbove reports whether path exists as a regular file larger than minBytes.
func SizeAbove(path string, minBytes int64) (bool, int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, 0, nil
		}
		return false, 0, err
	}
	if !info.Mode().IsRegular() {
		return false, info.Size(), nil
	}
	return info.Size() > minBytes, info.Size(), nil
}

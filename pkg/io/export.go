package io

import (
	"io"
	"os"
	"path/filepath"

	"github.com/matzehuels/sineshade/pkg/errors"
)

// WriteTo writes data to w, reporting short writes as WRITE_FAILED.
func WriteTo(w io.Writer, data []byte) error {
	if _, err := w.Write(data); err != nil {
		return errors.Wrap(errors.ErrCodeWrite, err, "write output")
	}
	return nil
}

// ExportFile writes data to path, creating missing parent directories.
// An existing file is replaced.
func ExportFile(path string, data []byte) error {
	if err := errors.ValidateOutputPath(path); err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrap(errors.ErrCodeWrite, err, "create directory %s", dir)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeWrite, err, "write %s", path)
	}
	return nil
}

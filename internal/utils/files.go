package utils

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
)

// SafeWriteFile writes data to a temp file next to path and atomically renames
// it into place, so readers never observe a partial export.
func SafeWriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return eris.Wrap(err, "utils: mkdir output dir")
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return eris.Wrap(err, "utils: create temp file")
	}
	name := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(name)
		return eris.Wrap(err, "utils: write temp file")
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(name)
		return eris.Wrap(err, "utils: close temp file")
	}
	if err := os.Chmod(name, 0o644); err != nil {
		_ = os.Remove(name)
		return eris.Wrap(err, "utils: chmod temp file")
	}
	if err := os.Rename(name, path); err != nil {
		_ = os.Remove(name)
		return eris.Wrap(err, "utils: atomic rename")
	}
	return nil
}

// PrettyJSON marshals a value as indented JSON.
func PrettyJSON(v any) ([]byte, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, eris.Wrap(err, "utils: marshal json")
	}
	return b, nil
}

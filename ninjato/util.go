package ninjato

import (
	"fmt"
	"path/filepath"
)

// ConvertToAbsolute returns an absolute path, resolving relative paths
// against the given base directory.
func ConvertToAbsolute(path, base string) (string, error) {
	if filepath.IsAbs(path) {
		return path, nil
	}
	abs, err := filepath.Abs(filepath.Join(base, path))
	if err != nil {
		return path, fmt.Errorf("could not make %q absolute: %v", path, err)
	}
	return abs, nil
}

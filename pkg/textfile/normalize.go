// Package textfile repairs text files copied from other platforms.
package textfile

import (
	"bytes"
	"fmt"
	"os"
)

// NormalizeCRLF rewrites a file with Windows line endings converted to Unix
// ones, preserving the file mode. A missing file is not an error, and a file
// that is already clean is left untouched.
func NormalizeCRLF(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.IsDir() {
		return false, fmt.Errorf("%s is a directory", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", path, err)
	}

	normalized := bytes.ReplaceAll(data, []byte("\r\n"), []byte("\n"))
	if bytes.Equal(data, normalized) {
		return false, nil
	}

	if err := os.WriteFile(path, normalized, info.Mode().Perm()); err != nil {
		return false, fmt.Errorf("failed to write %s: %w", path, err)
	}
	return true, nil
}

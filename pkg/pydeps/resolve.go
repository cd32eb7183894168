// Package pydeps manages the Python side of provisioning: dependency
// resolution, the virtual environment, and Playwright browser engines.
package pydeps

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// Source identifies where a dependency list came from.
type Source string

const (
	// SourceManifest means requirements.txt was present and used verbatim.
	SourceManifest Source = "manifest"
	// SourceFallback means the built-in package list was used.
	SourceFallback Source = "fallback"
)

// Resolution is the outcome of dependency resolution.
type Resolution struct {
	// Requirements are the package specifiers to install.
	Requirements []string

	// Source records which branch produced the list.
	Source Source

	// ManifestPath is set when Source is SourceManifest.
	ManifestPath string
}

// Resolve returns the dependency list for an app dir: the manifest file's
// contents when it exists, otherwise the fallback list. The two sources are
// never merged.
func Resolve(manifestPath string, fallback []string) (*Resolution, error) {
	if _, err := os.Stat(manifestPath); err != nil {
		if os.IsNotExist(err) {
			return &Resolution{
				Requirements: append([]string(nil), fallback...),
				Source:       SourceFallback,
			}, nil
		}
		return nil, fmt.Errorf("failed to stat %s: %w", manifestPath, err)
	}

	reqs, err := parseManifest(manifestPath)
	if err != nil {
		return nil, err
	}

	return &Resolution{
		Requirements: reqs,
		Source:       SourceManifest,
		ManifestPath: manifestPath,
	}, nil
}

// parseManifest reads a requirements.txt, dropping comments and blank lines.
func parseManifest(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open manifest: %w", err)
	}
	defer file.Close()

	var reqs []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		reqs = append(reqs, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	return reqs, nil
}

package config

import (
	"os"
	"path/filepath"
)

// SearchPaths returns the candidate locations for a config file named name,
// first match wins. Binary-relative paths are tried before the working
// directory. Paths are deduplicated via filepath.Abs.
func SearchPaths(name string) []string {
	candidates := []string{
		name,
		filepath.Join("config", name),
	}

	exe, err := os.Executable()
	if err != nil {
		return candidates
	}
	binDir := filepath.Dir(exe)

	paths := []string{
		filepath.Join(binDir, name),
		filepath.Join(binDir, "config", name),
	}
	paths = append(paths, candidates...)

	seen := make(map[string]bool, len(paths))
	deduped := make([]string, 0, len(paths))
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			abs = p
		}
		if seen[abs] {
			continue
		}
		seen[abs] = true
		deduped = append(deduped, p)
	}
	return deduped
}

// FindConfigFile returns the first existing file from SearchPaths, or "".
func FindConfigFile(name string) string {
	for _, path := range SearchPaths(name) {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

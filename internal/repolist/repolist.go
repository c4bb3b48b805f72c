package repolist

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Record identifies one unit of migration: a repository name, its local
// working copy location, and the branch names to track. Records are
// constructed per run from the list file and never persisted.
type Record struct {
	Name     string
	Path     string
	Branches []string
}

// Parse reads list entries from r. Blank lines and lines starting with
// '#' are ignored; surrounding whitespace is trimmed.
func Parse(r io.Reader) ([]string, error) {
	var entries []string

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		entries = append(entries, line)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read list: %w", err)
	}

	return entries, nil
}

// Load reads list entries from a file.
func Load(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open list file %q: %w\nCheck that the file exists and is readable", path, err)
	}
	defer file.Close()

	return Parse(file)
}

// ValidName reports whether a repository name is usable as both a
// filesystem and URL path segment.
func ValidName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, "/\\: \t")
}

// Locate searches the ordered directory list for a subdirectory named
// after the repository that contains git metadata. The first match wins.
func Locate(name string, searchDirs []string) (string, error) {
	for _, dir := range searchDirs {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(filepath.Join(candidate, ".git")); err == nil {
			return candidate, nil
		}
	}

	return "", fmt.Errorf("repository %q not found under %s\nEach search directory must contain <dir>/%s/.git", name, strings.Join(searchDirs, ", "), name)
}

// ValidateNames checks that every name is a usable path segment and
// unique within the run. A bad list file aborts before any repository
// is processed.
func ValidateNames(names []string) error {
	seen := make(map[string]bool)
	for _, name := range names {
		if !ValidName(name) {
			return fmt.Errorf("invalid repository name %q: must be a plain path segment", name)
		}
		if seen[name] {
			return fmt.Errorf("duplicate repository name %q in list", name)
		}
		seen[name] = true
	}
	return nil
}

// Resolve turns a list of repository names into Records, locating each
// working copy and attaching the default branch list. Names must be
// valid path segments and unique within a run; a name missing from
// every search directory fails the whole list.
func Resolve(names []string, searchDirs []string, branches []string) ([]Record, error) {
	if err := ValidateNames(names); err != nil {
		return nil, err
	}

	var records []Record
	for _, name := range names {
		path, err := Locate(name, searchDirs)
		if err != nil {
			return nil, err
		}

		records = append(records, Record{
			Name:     name,
			Path:     path,
			Branches: branches,
		})
	}

	return records, nil
}

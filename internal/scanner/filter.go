package scanner

import (
	"path/filepath"
	"strings"
)

// DefaultIgnorePatterns returns the default patterns for files that are never
// table rows: partial downloads, lock files and hidden files.
func DefaultIgnorePatterns() []string {
	return []string{
		"*.tmp",
		"*.part",
		"*.download",
		"*.crdownload", // Chrome partial downloads
		"*.partial",
		".~*", // office lock files
		"~$*",
		".DS_Store",
		"Thumbs.db",
	}
}

// FileFilter handles filtering of files based on ignore patterns.
type FileFilter struct {
	patterns []string
}

// NewFileFilter creates a new FileFilter with the given patterns.
// If patterns is nil, default patterns are used. An empty non-nil slice
// ignores nothing.
func NewFileFilter(patterns []string) *FileFilter {
	if patterns == nil {
		patterns = DefaultIgnorePatterns()
	}
	return &FileFilter{
		patterns: append([]string(nil), patterns...),
	}
}

// ShouldIgnore checks if a file path matches any of the ignore patterns.
// It matches against the filename (base name) only.
// Patterns support glob syntax:
//   - * matches any sequence of non-separator characters
//   - ? matches any single non-separator character
//   - [abc] matches any character in the set
//   - [a-z] matches any character in the range
//
// A pattern like ".tmp" without wildcards also matches as a
// case-insensitive suffix.
func (f *FileFilter) ShouldIgnore(path string) bool {
	filename := filepath.Base(path)

	for _, pattern := range f.patterns {
		if matched, err := filepath.Match(pattern, filename); err == nil && matched {
			return true
		}

		if strings.HasPrefix(pattern, ".") && !strings.ContainsAny(pattern, "*?[") {
			if strings.HasSuffix(strings.ToLower(filename), strings.ToLower(pattern)) {
				return true
			}
		}
	}
	return false
}

// Patterns returns the current ignore patterns.
func (f *FileFilter) Patterns() []string {
	result := make([]string, len(f.patterns))
	copy(result, f.patterns)
	return result
}

// AddPattern adds a new pattern to the filter.
func (f *FileFilter) AddPattern(pattern string) {
	f.patterns = append(f.patterns, pattern)
}

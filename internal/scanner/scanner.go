// Package scanner turns dropped paths into the files that feed the table.
package scanner

import (
	"errors"
	"os"
	"path/filepath"
)

// ScanErrorType represents the type of scanning error.
type ScanErrorType string

const (
	// DirectoryNotFound indicates the directory does not exist.
	DirectoryNotFound ScanErrorType = "DIRECTORY_NOT_FOUND"
	// PathNotFound indicates a dropped path does not exist.
	PathNotFound ScanErrorType = "PATH_NOT_FOUND"
	// PermissionDenied indicates insufficient permissions to read the directory.
	PermissionDenied ScanErrorType = "PERMISSION_DENIED"
	// SymlinkError indicates a symlink was encountered with "error" policy.
	SymlinkError ScanErrorType = "SYMLINK_ERROR"
)

// Symlink policy constants
const (
	SymlinkPolicyFollow = "follow"
	SymlinkPolicySkip   = "skip"
	SymlinkPolicyError  = "error"
)

// ScanError represents an error that occurred during directory scanning.
type ScanError struct {
	Type ScanErrorType
	Path string
	Err  error
}

func (e *ScanError) Error() string {
	return string(e.Type) + ": " + e.Path
}

func (e *ScanError) Unwrap() error {
	return e.Err
}

// ScanOptions configures scanning behavior.
type ScanOptions struct {
	MaxDepth      int         // Maximum depth to scan (0 = immediate only, -1 = unlimited)
	SymlinkPolicy string      // "follow", "skip", or "error"
	Filter        *FileFilter // files inside directories matching Filter are skipped; nil keeps all
}

// DefaultScanOptions returns the default scan options.
func DefaultScanOptions() ScanOptions {
	return ScanOptions{
		MaxDepth:      0,
		SymlinkPolicy: SymlinkPolicySkip,
		Filter:        NewFileFilter(nil),
	}
}

// FileEntry represents a file found during scanning.
type FileEntry struct {
	Name     string // Filename only
	FullPath string // Absolute path
}

// Scan enumerates files in the given directory without recursion.
// It returns only files, excluding subdirectories.
// This is a convenience wrapper around ScanWithOptions with default options.
func Scan(directory string) ([]FileEntry, error) {
	return ScanWithOptions(directory, DefaultScanOptions())
}

// ScanWithOptions scans directory with configurable options.
func ScanWithOptions(directory string, opts ScanOptions) ([]FileEntry, error) {
	info, err := os.Lstat(directory)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &ScanError{Type: DirectoryNotFound, Path: directory, Err: err}
		}
		if os.IsPermission(err) {
			return nil, &ScanError{Type: PermissionDenied, Path: directory, Err: err}
		}
		return nil, err
	}

	if info.Mode()&os.ModeSymlink != 0 {
		switch opts.SymlinkPolicy {
		case SymlinkPolicyError:
			return nil, &ScanError{
				Type: SymlinkError,
				Path: directory,
				Err:  errors.New("symlink encountered with error policy"),
			}
		case SymlinkPolicySkip:
			return []FileEntry{}, nil
		case SymlinkPolicyFollow:
			info, err = os.Stat(directory)
			if err != nil {
				return nil, err
			}
		}
	}

	if !info.IsDir() {
		return nil, &ScanError{
			Type: DirectoryNotFound,
			Path: directory,
			Err:  errors.New("path is not a directory"),
		}
	}

	return scanDirectory(directory, opts, 0)
}

// scanDirectory recursively scans a directory up to the specified depth.
// Entries come back in lexical order within each directory.
func scanDirectory(directory string, opts ScanOptions, currentDepth int) ([]FileEntry, error) {
	entries, err := os.ReadDir(directory)
	if err != nil {
		if os.IsPermission(err) {
			return nil, &ScanError{Type: PermissionDenied, Path: directory, Err: err}
		}
		return nil, err
	}

	var files []FileEntry
	for _, entry := range entries {
		fullPath := filepath.Join(directory, entry.Name())

		info, err := os.Lstat(fullPath)
		if err != nil {
			continue // Skip entries we can't stat
		}

		if info.Mode()&os.ModeSymlink != 0 {
			switch opts.SymlinkPolicy {
			case SymlinkPolicyError:
				return nil, &ScanError{
					Type: SymlinkError,
					Path: fullPath,
					Err:  errors.New("symlink encountered with error policy"),
				}
			case SymlinkPolicySkip:
				continue
			case SymlinkPolicyFollow:
				info, err = os.Stat(fullPath)
				if err != nil {
					continue // Skip broken symlinks
				}
			}
		}

		if info.IsDir() {
			if opts.MaxDepth == -1 || currentDepth < opts.MaxDepth {
				subFiles, err := scanDirectory(fullPath, opts, currentDepth+1)
				if err != nil {
					return nil, err
				}
				files = append(files, subFiles...)
			}
			continue
		}

		if opts.Filter != nil && opts.Filter.ShouldIgnore(fullPath) {
			continue
		}

		files = append(files, newEntry(fullPath))
	}

	return files, nil
}

func newEntry(path string) FileEntry {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return FileEntry{Name: filepath.Base(path), FullPath: abs}
}

// Expand resolves a drop of files and directories into file entries, in the
// order given. Files named directly are always kept; directories are scanned
// with opts. The same file is returned once. Paths that cannot be read are
// reported in the joined error while the rest are still returned.
func Expand(paths []string, opts ScanOptions) ([]FileEntry, error) {
	var (
		out  []FileEntry
		errs []error
		seen = make(map[string]bool)
	)

	add := func(e FileEntry) {
		if !seen[e.FullPath] {
			seen[e.FullPath] = true
			out = append(out, e)
		}
	}

	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			typ := PathNotFound
			if os.IsPermission(err) {
				typ = PermissionDenied
			}
			errs = append(errs, &ScanError{Type: typ, Path: p, Err: err})
			continue
		}

		if !info.IsDir() {
			add(newEntry(p))
			continue
		}

		entries, err := ScanWithOptions(p, opts)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		for _, e := range entries {
			add(e)
		}
	}

	return out, errors.Join(errs...)
}

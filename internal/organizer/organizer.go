// Package organizer keeps copies of dropped files in the backup directory.
package organizer

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"misterlister/internal/scanner"
)

// BackupErrorType represents the type of backup error.
type BackupErrorType string

const (
	// SourceNotFound indicates the source file does not exist.
	SourceNotFound BackupErrorType = "SOURCE_NOT_FOUND"
	// PermissionDenied indicates insufficient permissions for the operation.
	PermissionDenied BackupErrorType = "PERMISSION_DENIED"
	// CopyFailed covers any other I/O failure while copying.
	CopyFailed BackupErrorType = "COPY_FAILED"
)

// BackupError represents an error that occurred while backing up a file.
type BackupError struct {
	Type BackupErrorType
	Path string
	Err  error
}

func (e *BackupError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Type, e.Path, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Path)
}

func (e *BackupError) Unwrap() error {
	return e.Err
}

// BackupResult describes one backed-up file.
type BackupResult struct {
	SourcePath      string
	DestinationPath string
	Renamed         bool // the plain name was taken in the backup directory
	Bytes           int64
}

func classify(path string, err error) error {
	switch {
	case os.IsNotExist(err):
		return &BackupError{Type: SourceNotFound, Path: path, Err: err}
	case os.IsPermission(err):
		return &BackupError{Type: PermissionDenied, Path: path, Err: err}
	default:
		return &BackupError{Type: CopyFailed, Path: path, Err: err}
	}
}

// Backup copies file into backupDir, creating the directory when needed.
// The source is left in place. Existing backups are never overwritten.
func Backup(file scanner.FileEntry, backupDir string) (*BackupResult, error) {
	src, err := os.Open(file.FullPath)
	if err != nil {
		return nil, classify(file.FullPath, err)
	}
	defer src.Close()

	info, err := src.Stat()
	if err != nil {
		return nil, classify(file.FullPath, err)
	}

	if err := os.MkdirAll(backupDir, 0755); err != nil {
		return nil, classify(backupDir, err)
	}

	name := UniqueName(backupDir, file.Name)
	destPath := filepath.Join(backupDir, name)

	// never overwrite an existing backup
	dst, err := os.OpenFile(destPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, info.Mode().Perm())
	if err != nil {
		return nil, classify(destPath, err)
	}

	n, err := io.Copy(dst, src)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(destPath)
		return nil, classify(destPath, err)
	}

	if err := os.Chtimes(destPath, info.ModTime(), info.ModTime()); err != nil {
		return nil, classify(destPath, err)
	}

	return &BackupResult{
		SourcePath:      file.FullPath,
		DestinationPath: destPath,
		Renamed:         name != file.Name,
		Bytes:           n,
	}, nil
}

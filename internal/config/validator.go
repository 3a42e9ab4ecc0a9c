package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"misterlister/internal/segmenter"
)

// ValidationSeverity represents the severity of a validation issue.
type ValidationSeverity string

const (
	SeverityError   ValidationSeverity = "error"
	SeverityWarning ValidationSeverity = "warning"
)

// ConfigValidationError represents a single validation issue.
type ConfigValidationError struct {
	Field    string             // Config key with issue (e.g., "layout.date_columns[1]")
	Message  string             // Human-readable description
	Severity ValidationSeverity // "error" or "warning"
}

// ValidationResult contains all validation findings.
type ValidationResult struct {
	Errors   []ConfigValidationError
	Warnings []ConfigValidationError
	Valid    bool // True if no errors (warnings OK)
}

func (r *ValidationResult) add(issues []ConfigValidationError) {
	for _, issue := range issues {
		if issue.Severity == SeverityError {
			r.Errors = append(r.Errors, issue)
		} else {
			r.Warnings = append(r.Warnings, issue)
		}
	}
}

// ValidateConfig checks the configuration for errors and returns all findings.
func ValidateConfig(cfg *Configuration) *ValidationResult {
	result := &ValidationResult{
		Errors:   []ConfigValidationError{},
		Warnings: []ConfigValidationError{},
	}

	result.add(ValidateLayout(cfg))
	result.add(ValidateSegmentation(cfg))
	result.add(ValidatePaths(cfg))
	result.add(ValidatePatterns(cfg))
	result.add(ValidateWatch(cfg))

	result.Valid = len(result.Errors) == 0
	return result
}

// ValidateLayout checks headers and date columns.
func ValidateLayout(cfg *Configuration) []ConfigValidationError {
	var issues []ConfigValidationError

	if len(cfg.Layout.Headers) == 0 {
		issues = append(issues, ConfigValidationError{
			Field:    "layout.headers",
			Message:  "at least one column is required",
			Severity: SeverityError,
		})
	}

	seen := make(map[string]int)
	for i, h := range cfg.Layout.Headers {
		name := strings.ToLower(strings.TrimSpace(h))
		if name == "" {
			issues = append(issues, ConfigValidationError{
				Field:    formatField("layout.headers", i),
				Message:  "header cannot be empty",
				Severity: SeverityError,
			})
			continue
		}
		if first, dup := seen[name]; dup {
			issues = append(issues, ConfigValidationError{
				Field:    formatField("layout.headers", i),
				Message:  "duplicate header (case-insensitive): \"" + h + "\" repeats column " + strconv.Itoa(first+1),
				Severity: SeverityError,
			})
			continue
		}
		seen[name] = i
	}

	dateSeen := make(map[int]bool)
	for i, col := range cfg.Layout.DateColumns {
		if col < 1 || col > len(cfg.Layout.Headers) {
			issues = append(issues, ConfigValidationError{
				Field:    formatField("layout.date_columns", i),
				Message:  "column " + strconv.Itoa(col) + " is outside 1.." + strconv.Itoa(len(cfg.Layout.Headers)),
				Severity: SeverityError,
			})
			continue
		}
		if dateSeen[col] {
			issues = append(issues, ConfigValidationError{
				Field:    formatField("layout.date_columns", i),
				Message:  "column " + strconv.Itoa(col) + " is listed more than once",
				Severity: SeverityWarning,
			})
		}
		dateSeen[col] = true
	}

	return issues
}

// ValidateSegmentation checks split characters and the reference year.
func ValidateSegmentation(cfg *Configuration) []ConfigValidationError {
	var issues []ConfigValidationError

	if chars := cfg.Segmentation.SplitChars; chars != "" {
		runes := []rune(chars)
		if set := segmenter.NewClassSet(runes...); set.Len() < len(runes) {
			issues = append(issues, ConfigValidationError{
				Field:    "segmentation.split_chars",
				Message:  "several characters share a class; only " + strconv.Itoa(set.Len()) + " distinct classes split (" + classNames(set) + ")",
				Severity: SeverityWarning,
			})
		}
	}

	if y := cfg.Segmentation.ReferenceYear; y < 0 || y > 9999 {
		issues = append(issues, ConfigValidationError{
			Field:    "segmentation.reference_year",
			Message:  "reference year " + strconv.Itoa(y) + " is outside 0..9999",
			Severity: SeverityError,
		})
	}

	return issues
}

// ValidatePaths checks that configured directories exist or are creatable.
func ValidatePaths(cfg *Configuration) []ConfigValidationError {
	var issues []ConfigValidationError

	if dir := cfg.Files.DefaultDir; dir != "" {
		info, err := os.Stat(dir)
		switch {
		case err != nil:
			issues = append(issues, ConfigValidationError{
				Field:    "files.default_dir",
				Message:  "directory does not exist: " + dir,
				Severity: SeverityWarning,
			})
		case !info.IsDir():
			issues = append(issues, ConfigValidationError{
				Field:    "files.default_dir",
				Message:  "path is not a directory: " + dir,
				Severity: SeverityError,
			})
		}
	}

	if dir := cfg.Files.BackupDir; dir != "" {
		if issue, ok := checkCreatableDir("files.backup_dir", dir); !ok {
			issues = append(issues, issue)
		}
	}

	if p := cfg.Store.Path; p != "" {
		if issue, ok := checkCreatableDir("store.path", filepath.Dir(p)); !ok {
			issues = append(issues, issue)
		}
	}

	if cfg.Store.RetentionDays < 0 {
		issues = append(issues, ConfigValidationError{
			Field:    "store.retention_days",
			Message:  "retention must be 0 (keep all) or a positive number of days",
			Severity: SeverityError,
		})
	}

	return issues
}

// checkCreatableDir accepts an existing directory or a missing one whose
// parent is a writable directory.
func checkCreatableDir(field, dir string) (ConfigValidationError, bool) {
	info, err := os.Stat(dir)
	if err == nil {
		if !info.IsDir() {
			return ConfigValidationError{Field: field, Message: "path exists but is not a directory: " + dir, Severity: SeverityError}, false
		}
		return ConfigValidationError{}, true
	}
	if !os.IsNotExist(err) {
		return ConfigValidationError{Field: field, Message: "error accessing directory: " + err.Error(), Severity: SeverityError}, false
	}

	parentDir := filepath.Dir(dir)
	parentInfo, parentErr := os.Stat(parentDir)
	if parentErr != nil {
		return ConfigValidationError{Field: field, Message: "parent directory does not exist: " + parentDir, Severity: SeverityError}, false
	}
	if !parentInfo.IsDir() {
		return ConfigValidationError{Field: field, Message: "parent path is not a directory: " + parentDir, Severity: SeverityError}, false
	}
	if !isDirectoryWritable(parentDir) {
		return ConfigValidationError{Field: field, Message: "parent directory is not writable: " + parentDir, Severity: SeverityError}, false
	}
	return ConfigValidationError{}, true
}

// ValidatePatterns checks that ignore patterns are well-formed globs.
func ValidatePatterns(cfg *Configuration) []ConfigValidationError {
	var issues []ConfigValidationError
	for i, p := range cfg.Files.IgnorePatterns {
		if _, err := filepath.Match(p, ""); err != nil {
			issues = append(issues, ConfigValidationError{
				Field:    formatField("files.ignore_patterns", i),
				Message:  "malformed pattern \"" + p + "\": " + err.Error(),
				Severity: SeverityError,
			})
		}
	}
	if cfg.Files.MaxDepth < -1 {
		issues = append(issues, ConfigValidationError{
			Field:    "files.max_depth",
			Message:  "max_depth must be -1 (unlimited) or a non-negative integer",
			Severity: SeverityError,
		})
	}
	if cfg.Files.Workers < 0 {
		issues = append(issues, ConfigValidationError{
			Field:    "files.workers",
			Message:  "workers must be a non-negative integer",
			Severity: SeverityError,
		})
	}
	return issues
}

// ValidateWatch checks watcher timings.
func ValidateWatch(cfg *Configuration) []ConfigValidationError {
	var issues []ConfigValidationError
	if cfg.Watch.DebounceSeconds < 0 {
		issues = append(issues, ConfigValidationError{
			Field:    "watch.debounce_seconds",
			Message:  "debounce cannot be negative",
			Severity: SeverityError,
		})
	}
	if cfg.Watch.StabilitySeconds < 0 {
		issues = append(issues, ConfigValidationError{
			Field:    "watch.stability_seconds",
			Message:  "stability threshold cannot be negative",
			Severity: SeverityError,
		})
	}
	if cfg.Watch.DebounceSeconds > 60 {
		issues = append(issues, ConfigValidationError{
			Field:    "watch.debounce_seconds",
			Message:  "debounce over a minute delays every drop",
			Severity: SeverityWarning,
		})
	}
	return issues
}

func classNames(set segmenter.ClassSet) string {
	var names []string
	for _, c := range set.Classes() {
		names = append(names, c.String())
	}
	return strings.Join(names, ", ")
}

// formatField creates a field reference string for validation errors.
func formatField(name string, index int) string {
	return name + "[" + strconv.Itoa(index) + "]"
}

// isDirectoryWritable checks if a directory is writable by attempting to create a temp file.
func isDirectoryWritable(dir string) bool {
	f, err := os.CreateTemp(dir, ".misterlister_write_test")
	if err != nil {
		return false
	}
	name := f.Name()
	f.Close()
	os.Remove(name)
	return true
}

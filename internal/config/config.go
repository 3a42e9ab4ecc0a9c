// Package config handles configuration loading and validation for MisterLister.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"misterlister/internal/normalizer"
	"misterlister/internal/scanner"
)

// ConfigErrorType represents the type of configuration error.
type ConfigErrorType string

const (
	FileNotFound    ConfigErrorType = "FILE_NOT_FOUND"
	InvalidSyntax   ConfigErrorType = "INVALID_SYNTAX"
	ValidationError ConfigErrorType = "VALIDATION_ERROR"
	UnknownKey      ConfigErrorType = "UNKNOWN_KEY"
	InvalidValue    ConfigErrorType = "INVALID_VALUE"
)

// ConfigError represents an error that occurred during configuration loading.
type ConfigError struct {
	Type    ConfigErrorType
	Path    string
	Message string
	Err     error
}

func (e *ConfigError) Error() string {
	switch e.Type {
	case FileNotFound:
		return fmt.Sprintf("configuration file not found: %s", e.Path)
	case InvalidSyntax:
		return fmt.Sprintf("invalid configuration file %s: %s", e.Path, e.Message)
	case ValidationError:
		return fmt.Sprintf("configuration validation error: %s", e.Message)
	case UnknownKey:
		return fmt.Sprintf("unknown configuration key: %s", e.Message)
	case InvalidValue:
		return fmt.Sprintf("invalid configuration value: %s", e.Message)
	default:
		return fmt.Sprintf("configuration error: %s", e.Message)
	}
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// EnvPrefix prefixes environment variables that override file settings.
// The key files.backup_dir is overridden by MISTERLISTER_FILES_BACKUP_DIR.
const EnvPrefix = "MISTERLISTER_"

// SegmentationConfig controls how filenames are split.
type SegmentationConfig struct {
	// SplitChars are sample characters whose classes start new segments.
	// Empty selects the default "A1".
	SplitChars string `json:"split_chars" yaml:"split_chars"`
	// ReferenceYear pivots two-digit years. Zero means the current year.
	ReferenceYear int `json:"reference_year" yaml:"reference_year"`
}

// LayoutConfig describes the table columns.
type LayoutConfig struct {
	Headers []string `json:"headers" yaml:"headers"`
	// DateColumns are 1-based.
	DateColumns []int `json:"date_columns" yaml:"date_columns"`
}

// FilesConfig covers intake of dropped files.
type FilesConfig struct {
	DefaultDir     string   `json:"default_dir" yaml:"default_dir"`
	RememberDir    bool     `json:"remember_dir" yaml:"remember_dir"`
	BackupDir      string   `json:"backup_dir" yaml:"backup_dir"`
	IgnorePatterns []string `json:"ignore_patterns" yaml:"ignore_patterns"`
	MaxDepth       int      `json:"max_depth" yaml:"max_depth"` // 0 = top level only, -1 = unlimited
	FollowSymlinks bool     `json:"follow_symlinks" yaml:"follow_symlinks"`
	Workers        int      `json:"workers" yaml:"workers"`
}

// WatchConfig tunes the drop-folder watcher.
type WatchConfig struct {
	DebounceSeconds  float64 `json:"debounce_seconds" yaml:"debounce_seconds"`
	StabilitySeconds float64 `json:"stability_seconds" yaml:"stability_seconds"`
}

// StoreConfig locates the table database.
type StoreConfig struct {
	Path string `json:"path" yaml:"path"`
	// RetentionDays drops history entries older than this many days when the
	// store is opened. 0 keeps everything.
	RetentionDays int `json:"retention_days,omitempty" yaml:"retention_days,omitempty"`
}

// Configuration holds all settings for MisterLister.
type Configuration struct {
	Segmentation SegmentationConfig `json:"segmentation" yaml:"segmentation"`
	Layout       LayoutConfig       `json:"layout" yaml:"layout"`
	Files        FilesConfig        `json:"files" yaml:"files"`
	Watch        WatchConfig        `json:"watch" yaml:"watch"`
	Store        StoreConfig        `json:"store" yaml:"store"`
}

// DefaultConfig returns a configuration with every default applied.
func DefaultConfig() *Configuration {
	cfg := &Configuration{}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills zero values with defaults. Explicit values are kept.
func (c *Configuration) ApplyDefaults() {
	if len(c.Layout.Headers) == 0 {
		c.Layout.Headers = []string{"lastname", "firstname", "dob", "item", "date"}
	}
	if c.Layout.DateColumns == nil {
		c.Layout.DateColumns = []int{3, 5}
	}
	if c.Files.IgnorePatterns == nil {
		c.Files.IgnorePatterns = scanner.DefaultIgnorePatterns()
	}
	if c.Files.Workers == 0 {
		c.Files.Workers = 4
	}
	if c.Watch.DebounceSeconds == 0 {
		c.Watch.DebounceSeconds = 2
	}
	if c.Watch.StabilitySeconds == 0 {
		c.Watch.StabilitySeconds = 1
	}
	if c.Store.Path == "" {
		c.Store.Path = "misterlister.db"
	}
}

// Validate checks that the configuration is usable.
func (c *Configuration) Validate() error {
	if len(c.Layout.Headers) == 0 {
		return &ConfigError{Type: ValidationError, Message: "layout.headers must contain at least one column"}
	}
	for i, h := range c.Layout.Headers {
		if strings.TrimSpace(h) == "" {
			return &ConfigError{Type: ValidationError, Message: fmt.Sprintf("layout.headers[%d] cannot be empty", i)}
		}
	}
	for i, col := range c.Layout.DateColumns {
		if col < 1 || col > len(c.Layout.Headers) {
			return &ConfigError{
				Type:    ValidationError,
				Message: fmt.Sprintf("layout.date_columns[%d] = %d is outside 1..%d", i, col, len(c.Layout.Headers)),
			}
		}
	}
	if c.Files.MaxDepth < -1 {
		return &ConfigError{Type: ValidationError, Message: "files.max_depth must be -1 or more"}
	}
	if c.Files.Workers < 0 {
		return &ConfigError{Type: ValidationError, Message: "files.workers cannot be negative"}
	}
	if c.Watch.DebounceSeconds < 0 || c.Watch.StabilitySeconds < 0 {
		return &ConfigError{Type: ValidationError, Message: "watch intervals cannot be negative"}
	}
	if c.Store.RetentionDays < 0 {
		return &ConfigError{Type: ValidationError, Message: "store.retention_days cannot be negative"}
	}
	return nil
}

// RetentionCutoff returns the time before which history entries are pruned,
// or false when history is kept forever.
func (c *Configuration) RetentionCutoff(now time.Time) (time.Time, bool) {
	if c.Store.RetentionDays <= 0 {
		return time.Time{}, false
	}
	return now.AddDate(0, 0, -c.Store.RetentionDays), true
}

// SplitRunes returns the configured split characters as runes.
func (c *Configuration) SplitRunes() []rune {
	return []rune(c.Segmentation.SplitChars)
}

// ScanOptions converts the files section into scanner options.
func (c *Configuration) ScanOptions() scanner.ScanOptions {
	policy := scanner.SymlinkPolicySkip
	if c.Files.FollowSymlinks {
		policy = scanner.SymlinkPolicyFollow
	}
	return scanner.ScanOptions{
		MaxDepth:      c.Files.MaxDepth,
		SymlinkPolicy: policy,
		Filter:        scanner.NewFileFilter(c.Files.IgnorePatterns),
	}
}

// ReferenceYear returns the configured pivot year, or now's year when unset.
func (c *Configuration) ReferenceYear(now time.Time) int {
	if c.Segmentation.ReferenceYear != 0 {
		return c.Segmentation.ReferenceYear
	}
	return now.Year()
}

// TableLayout converts the layout section into a normalizer layout.
func (c *Configuration) TableLayout() normalizer.Layout {
	cols := make([]int, 0, len(c.Layout.DateColumns))
	for _, col := range c.Layout.DateColumns {
		cols = append(cols, col-1)
	}
	return normalizer.Layout{Columns: len(c.Layout.Headers), DateColumns: cols}
}

// DebounceDuration returns the watch debounce as a time.Duration.
func (c *Configuration) DebounceDuration() time.Duration {
	return time.Duration(c.Watch.DebounceSeconds * float64(time.Second))
}

// StabilityDuration returns the watch stability threshold as a time.Duration.
func (c *Configuration) StabilityDuration() time.Duration {
	return time.Duration(c.Watch.StabilitySeconds * float64(time.Second))
}

// RememberDirectory records dir as the default directory when
// files.remember_dir is on. It reports whether anything changed.
func (c *Configuration) RememberDirectory(dir string) bool {
	if !c.Files.RememberDir || dir == "" || dir == c.Files.DefaultDir {
		return false
	}
	c.Files.DefaultDir = dir
	return true
}

func isYAML(filePath string) bool {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

func decode(filePath string, data []byte, cfg *Configuration) error {
	var err error
	if isYAML(filePath) {
		err = yaml.Unmarshal(data, cfg)
	} else {
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return &ConfigError{Type: InvalidSyntax, Path: filePath, Message: err.Error(), Err: err}
	}
	return nil
}

// Read parses a configuration file and fills in defaults without validating
// it. The format follows the extension: .yaml/.yml is YAML, anything else
// JSON.
func Read(filePath string) (*Configuration, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &ConfigError{Type: FileNotFound, Path: filePath, Err: err}
		}
		return nil, &ConfigError{Type: FileNotFound, Path: filePath, Message: err.Error(), Err: err}
	}

	var cfg Configuration
	if err := decode(filePath, data, &cfg); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	return &cfg, nil
}

// ReadOrCreate is Read, returning the defaults when the file does not exist.
func ReadOrCreate(filePath string) (*Configuration, error) {
	cfg, err := Read(filePath)
	if err != nil {
		if isNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, err
	}
	return cfg, nil
}

func isNotExist(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce) && ce.Type == FileNotFound && errors.Is(err, os.ErrNotExist)
}

// Load reads a configuration file and validates it.
func Load(filePath string) (*Configuration, error) {
	cfg, err := Read(filePath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrCreate loads config if it exists, or returns the defaults if the file doesn't exist.
func LoadOrCreate(filePath string) (*Configuration, error) {
	cfg, err := Load(filePath)
	if err != nil {
		if isNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, err
	}
	return cfg, nil
}

// Save serializes and writes a configuration to the given path.
func Save(cfg *Configuration, filePath string) error {
	var (
		data []byte
		err  error
	)
	if isYAML(filePath) {
		data, err = yaml.Marshal(cfg)
	} else {
		data, err = json.MarshalIndent(cfg, "", "  ")
	}
	if err != nil {
		return &ConfigError{Type: InvalidSyntax, Path: filePath, Message: err.Error(), Err: err}
	}

	if dir := filepath.Dir(filePath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return &ConfigError{Type: ValidationError, Path: filePath, Message: fmt.Sprintf("failed to create directory: %s", err), Err: err}
		}
	}
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return &ConfigError{
			Type:    ValidationError,
			Path:    filePath,
			Message: fmt.Sprintf("failed to write configuration file: %s", err.Error()),
			Err:     err,
		}
	}
	return nil
}

// LoadEnvFiles loads .env files into the process environment. Variables that
// are already set win. Missing files are ignored.
func LoadEnvFiles(files ...string) {
	if len(files) == 0 {
		_ = godotenv.Load()
		return
	}
	for _, f := range files {
		_ = godotenv.Load(f)
	}
}

// ApplyEnv overrides settings from MISTERLISTER_* variables. lookup is
// usually os.LookupEnv.
func (c *Configuration) ApplyEnv(lookup func(string) (string, bool)) error {
	for _, key := range Keys() {
		name := EnvName(key)
		v, ok := lookup(name)
		if !ok {
			continue
		}
		if err := c.Set(key, v); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

// EnvName returns the environment variable that overrides key.
func EnvName(key string) string {
	return EnvPrefix + strings.ToUpper(strings.NewReplacer(".", "_", "/", "_").Replace(key))
}

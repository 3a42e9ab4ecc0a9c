// Package output handles user-facing CLI text: verbose messages, a progress
// line while files are added, and table rendering.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"golang.org/x/term"
)

// Config holds output configuration.
type Config struct {
	Verbose   bool      // Enable verbose output
	Writer    io.Writer // Output destination (default: os.Stdout)
	ErrWriter io.Writer // Error output destination (default: os.Stderr)
	IsTTY     bool      // Whether output is a terminal
}

// Output writes messages and an in-place progress line.
type Output struct {
	config          Config
	progressActive  bool
	progressTotal   int
	progressCurrent int
	progressWidth   int
	progressMu      sync.Mutex
}

// New creates a new Output instance with the given configuration.
func New(config Config) *Output {
	if config.Writer == nil {
		config.Writer = os.Stdout
	}
	if config.ErrWriter == nil {
		config.ErrWriter = os.Stderr
	}
	return &Output{
		config: config,
	}
}

// DefaultConfig returns a Config writing to stdout/stderr with TTY detection.
func DefaultConfig() Config {
	return Config{
		Writer:    os.Stdout,
		ErrWriter: os.Stderr,
		IsTTY:     term.IsTerminal(int(os.Stdout.Fd())),
	}
}

// Writer returns the standard output destination.
func (o *Output) Writer() io.Writer {
	return o.config.Writer
}

// Verbose prints a message only when verbose mode is enabled.
func (o *Output) Verbose(format string, args ...interface{}) {
	if !o.config.Verbose {
		return
	}
	o.println(o.config.Writer, format, args...)
}

// Info prints an informational message (always shown).
func (o *Output) Info(format string, args ...interface{}) {
	o.println(o.config.Writer, format, args...)
}

// Error prints an error message to stderr.
func (o *Output) Error(format string, args ...interface{}) {
	o.println(o.config.ErrWriter, format, args...)
}

// Print writes s unchanged after clearing any progress line.
func (o *Output) Print(s string) {
	o.clearProgressLine()
	fmt.Fprint(o.config.Writer, s)
}

func (o *Output) println(w io.Writer, format string, args ...interface{}) {
	o.clearProgressLine()
	msg := fmt.Sprintf(format, args...)
	if !strings.HasSuffix(msg, "\n") {
		msg += "\n"
	}
	fmt.Fprint(w, msg)
}

func (o *Output) clearProgressLine() {
	o.progressMu.Lock()
	defer o.progressMu.Unlock()
	if o.progressActive && o.config.IsTTY && o.progressWidth > 0 {
		fmt.Fprint(o.config.Writer, "\r"+strings.Repeat(" ", o.progressWidth)+"\r")
		o.progressWidth = 0
	}
}

func (o *Output) progressEnabled() bool {
	return o.config.IsTTY && !o.config.Verbose
}

// StartProgress begins a progress line for total files.
func (o *Output) StartProgress(total int) {
	if !o.progressEnabled() {
		return
	}
	o.progressMu.Lock()
	defer o.progressMu.Unlock()
	o.progressActive = true
	o.progressTotal = total
	o.progressCurrent = 0
	o.progressWidth = 0
}

// UpdateProgress redraws the progress line. An empty message uses
// "Adding file".
func (o *Output) UpdateProgress(current int, message string) {
	if !o.progressEnabled() {
		return
	}
	o.progressMu.Lock()
	defer o.progressMu.Unlock()
	if !o.progressActive {
		return
	}
	o.progressCurrent = current
	if message == "" {
		message = "Adding file"
	}
	line := fmt.Sprintf("%s %d/%d...", message, current, o.progressTotal)
	pad := ""
	if n := o.progressWidth - len(line); n > 0 {
		pad = strings.Repeat(" ", n)
	}
	fmt.Fprint(o.config.Writer, "\r"+line+pad)
	o.progressWidth = len(line)
}

// EndProgress clears the progress line.
func (o *Output) EndProgress() {
	if !o.progressEnabled() {
		return
	}
	o.progressMu.Lock()
	defer o.progressMu.Unlock()
	if !o.progressActive {
		return
	}
	o.progressActive = false
	if o.progressWidth > 0 {
		fmt.Fprint(o.config.Writer, "\r"+strings.Repeat(" ", o.progressWidth)+"\r")
		o.progressWidth = 0
	}
}

// IsVerbose returns whether verbose mode is enabled.
func (o *Output) IsVerbose() bool {
	return o.config.Verbose
}

// IsTTY returns whether the output is a terminal.
func (o *Output) IsTTY() bool {
	return o.config.IsTTY
}

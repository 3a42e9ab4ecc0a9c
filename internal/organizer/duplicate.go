package organizer

import (
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// copyPattern matches names that already carry a " (N)" counter before the extension.
var copyPattern = regexp.MustCompile(`^(.*) \((\d+)\)$`)

// FileExists checks if a file exists at the given path.
func FileExists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

// UniqueName returns filename, or the first free "stem (N).ext" in destDir
// when filename is taken. A name that already ends in " (N)" continues
// counting from N+1.
//
// Examples:
//   - "scan.pdf" -> "scan (2).pdf" (if scan.pdf exists)
//   - "scan (2).pdf" -> "scan (3).pdf" (if scan (2).pdf exists)
func UniqueName(destDir, filename string) string {
	if !FileExists(filepath.Join(destDir, filename)) {
		return filename
	}

	ext := filepath.Ext(filename)
	stem := strings.TrimSuffix(filename, ext)
	next := 2

	if m := copyPattern.FindStringSubmatch(stem); m != nil {
		if n, err := strconv.Atoi(m[2]); err == nil {
			stem = m[1]
			next = n + 1
		}
	}

	for n := next; ; n++ {
		candidate := stem + " (" + strconv.Itoa(n) + ")" + ext
		if !FileExists(filepath.Join(destDir, candidate)) {
			return candidate
		}
	}
}

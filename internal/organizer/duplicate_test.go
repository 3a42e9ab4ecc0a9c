package organizer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, dir, name string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644))
}

func TestUniqueName(t *testing.T) {
	tests := []struct {
		name     string
		existing []string
		input    string
		want     string
	}{
		{"free name is kept", nil, "scan.pdf", "scan.pdf"},
		{"first collision", []string{"scan.pdf"}, "scan.pdf", "scan (2).pdf"},
		{"skips taken counters", []string{"scan.pdf", "scan (2).pdf", "scan (3).pdf"}, "scan.pdf", "scan (4).pdf"},
		{"continues an existing counter", []string{"scan (2).pdf"}, "scan (2).pdf", "scan (3).pdf"},
		{"no extension", []string{"README"}, "README", "README (2)"},
		{"dotted stem", []string{"SMITH J. 010223.pdf"}, "SMITH J. 010223.pdf", "SMITH J. 010223 (2).pdf"},
		{"parenthesised words are not counters", []string{"x (draft).pdf"}, "x (draft).pdf", "x (draft) (2).pdf"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			for _, e := range tt.existing {
				touch(t, dir, e)
			}
			assert.Equal(t, tt.want, UniqueName(dir, tt.input))
		})
	}
}

func TestUniqueName_Properties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50

	properties := gopter.NewProperties(parameters)

	properties.Property("result is free and keeps the extension", prop.ForAll(
		func(stem string, copies int) bool {
			dir := t.TempDir()
			name := stem + ".pdf"
			for i := 0; i < copies; i++ {
				touch(t, dir, UniqueName(dir, name))
			}
			got := UniqueName(dir, name)
			return !FileExists(filepath.Join(dir, got)) && strings.HasSuffix(got, ".pdf")
		},
		gen.AlphaString().SuchThat(func(s string) bool { return s != "" }),
		gen.IntRange(0, 5),
	))

	properties.TestingRun(t)
}

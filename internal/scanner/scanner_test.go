package scanner

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// DirectoryStructure represents a generated drop folder.
type DirectoryStructure struct {
	Files       []string // file names to create
	Directories []string // subdirectory names to create
}

// genFileName generates patient-style file names.
func genFileName() gopter.Gen {
	return gen.IntRange(1, 12).FlatMap(func(length interface{}) gopter.Gen {
		return gen.SliceOfN(length.(int), gen.AlphaUpperChar())
	}, reflect.TypeOf([]rune{})).Map(func(chars []rune) string {
		return string(chars) + " 010223.pdf"
	})
}

// genDirName generates valid directory names.
func genDirName() gopter.Gen {
	return gen.IntRange(1, 12).FlatMap(func(length interface{}) gopter.Gen {
		return gen.SliceOfN(length.(int), gen.AlphaLowerChar())
	}, reflect.TypeOf([]rune{})).Map(func(chars []rune) string {
		return "dir_" + string(chars)
	})
}

func unique(in []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

func genDirectoryStructure() gopter.Gen {
	return gopter.CombineGens(
		gen.SliceOfN(5, genFileName()),
		gen.SliceOfN(3, genDirName()),
	).Map(func(vals []interface{}) DirectoryStructure {
		return DirectoryStructure{
			Files:       unique(vals[0].([]string)),
			Directories: unique(vals[1].([]string)),
		}
	})
}

func setupTestDirectory(t *testing.T, structure DirectoryStructure) string {
	tmpDir := t.TempDir()
	for _, name := range structure.Files {
		writeFile(t, filepath.Join(tmpDir, name))
	}
	for _, name := range structure.Directories {
		require.NoError(t, os.Mkdir(filepath.Join(tmpDir, name), 0755))
	}
	return tmpDir
}

func writeFile(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("test content"), 0644))
}

func names(entries []FileEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Name
	}
	return out
}

func TestScannerReturnsOnlyFiles(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("Scanner returns only files, excluding subdirectories", prop.ForAll(
		func(structure DirectoryStructure) bool {
			tmpDir := setupTestDirectory(t, structure)

			entries, err := Scan(tmpDir)
			if err != nil {
				t.Logf("Scan failed: %v", err)
				return false
			}
			if len(entries) != len(structure.Files) {
				t.Logf("Expected %d files, got %d", len(structure.Files), len(entries))
				return false
			}
			for _, entry := range entries {
				info, err := os.Stat(entry.FullPath)
				if err != nil || info.IsDir() || !filepath.IsAbs(entry.FullPath) {
					return false
				}
			}
			return true
		},
		genDirectoryStructure(),
	))

	properties.TestingRun(t)
}

func TestScan_LexicalOrder(t *testing.T) {
	dir := t.TempDir()
	for _, n := range []string{"c.pdf", "a.pdf", "b.pdf"} {
		writeFile(t, filepath.Join(dir, n))
	}
	entries, err := Scan(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.pdf", "b.pdf", "c.pdf"}, names(entries))
}

func TestScan_SkipsIgnoredFiles(t *testing.T) {
	dir := t.TempDir()
	for _, n := range []string{"DOE JANE 010203.pdf", "upload.part", "x.crdownload", ".~lock.doc#", "Thumbs.db"} {
		writeFile(t, filepath.Join(dir, n))
	}

	entries, err := Scan(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"DOE JANE 010203.pdf"}, names(entries))

	all, err := ScanWithOptions(dir, ScanOptions{SymlinkPolicy: SymlinkPolicySkip})
	require.NoError(t, err)
	assert.Len(t, all, 5)
}

func TestScan_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := Scan(filepath.Join(dir, "missing"))
	var se *ScanError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, DirectoryNotFound, se.Type)
	assert.True(t, errors.Is(err, os.ErrNotExist))

	file := filepath.Join(dir, "f.txt")
	writeFile(t, file)
	_, err = Scan(file)
	require.True(t, errors.As(err, &se))
	assert.Equal(t, DirectoryNotFound, se.Type)
}

func TestSymlinkPolicyBehavior(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "target.pdf")
	writeFile(t, target)
	link := filepath.Join(dir, "link.pdf")
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	skip, err := ScanWithOptions(dir, ScanOptions{SymlinkPolicy: SymlinkPolicySkip})
	require.NoError(t, err)
	assert.Equal(t, []string{"target.pdf"}, names(skip))

	follow, err := ScanWithOptions(dir, ScanOptions{SymlinkPolicy: SymlinkPolicyFollow})
	require.NoError(t, err)
	assert.Equal(t, []string{"link.pdf", "target.pdf"}, names(follow))

	_, err = ScanWithOptions(dir, ScanOptions{SymlinkPolicy: SymlinkPolicyError})
	var se *ScanError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, SymlinkError, se.Type)
}

func TestScanDepthLimiting(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 30

	properties := gopter.NewProperties(parameters)

	properties.Property("depth bounds which nested files are returned", prop.ForAll(
		func(top, nested, depth int) bool {
			tmpDir := t.TempDir()
			for i := 0; i < top; i++ {
				writeFile(t, filepath.Join(tmpDir, fmt.Sprintf("top_%d.pdf", i)))
			}
			for i := 0; i < nested; i++ {
				writeFile(t, filepath.Join(tmpDir, "a", fmt.Sprintf("one_%d.pdf", i)))
				writeFile(t, filepath.Join(tmpDir, "a", "b", fmt.Sprintf("two_%d.pdf", i)))
			}

			entries, err := ScanWithOptions(tmpDir, ScanOptions{MaxDepth: depth, SymlinkPolicy: SymlinkPolicySkip})
			if err != nil {
				return false
			}

			want := top
			switch depth {
			case -1:
				want += 2 * nested
			case 0:
			case 1:
				want += nested
			default:
				want += 2 * nested
			}
			return len(entries) == want
		},
		gen.IntRange(0, 4),
		gen.IntRange(0, 4),
		gen.IntRange(-1, 3),
	))

	properties.TestingRun(t)
}

func TestExpand_MixedPathsInOrder(t *testing.T) {
	dir := t.TempDir()
	drop := filepath.Join(dir, "drop")
	writeFile(t, filepath.Join(drop, "B 010101.pdf"))
	writeFile(t, filepath.Join(drop, "A 010101.pdf"))
	writeFile(t, filepath.Join(drop, "partial.tmp"))
	single := filepath.Join(dir, "single.tmp")
	writeFile(t, single)

	entries, err := Expand([]string{single, drop}, DefaultScanOptions())
	require.NoError(t, err)
	// directly named files bypass the ignore filter
	assert.Equal(t, []string{"single.tmp", "A 010101.pdf", "B 010101.pdf"}, names(entries))
}

func TestExpand_Deduplicates(t *testing.T) {
	dir := t.TempDir()
	f := filepath.Join(dir, "X 010101.pdf")
	writeFile(t, f)

	entries, err := Expand([]string{f, dir, f}, DefaultScanOptions())
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestExpand_ReportsBadPathsAndKeepsGoodOnes(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "ok.pdf")
	writeFile(t, good)
	missing := filepath.Join(dir, "gone.pdf")

	entries, err := Expand([]string{missing, good}, DefaultScanOptions())
	require.Error(t, err)
	assert.Equal(t, []string{"ok.pdf"}, names(entries))

	var se *ScanError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, PathNotFound, se.Type)
	assert.Equal(t, missing, se.Path)
}

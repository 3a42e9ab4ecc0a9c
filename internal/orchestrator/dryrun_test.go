package orchestrator

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"misterlister/internal/classifier"
	"misterlister/internal/table"
)

func TestDryRun_ChangesNothing(t *testing.T) {
	dir := t.TempDir()
	backup := filepath.Join(t.TempDir(), "backup")
	writeFiles(t, dir, completeName, reviewName)

	fs := &fakeStore{}
	tbl := table.New(nil)
	o := New(tbl, fs, nil)

	opts := ingestOpts()
	opts.BackupDir = backup
	summary, err := o.DryRun(context.Background(), []string{dir}, opts)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Total)
	assert.Equal(t, 1, summary.Complete)
	assert.Equal(t, 1, summary.Review)
	assert.Equal(t, 0, tbl.Len())
	assert.Zero(t, fs.saves)
	assert.Empty(t, fs.actions)
	assert.NoDirExists(t, backup)

	for _, r := range summary.Results {
		assert.Empty(t, r.RowID)
		assert.Nil(t, r.Backup)
		assert.FileExists(t, r.Entry.FullPath)
	}
}

func TestDryRun_MatchesIngest(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, completeName, reviewName, "DOE JANE 023099 XRAY 101524")

	dry, err := New(table.New(nil), nil, nil).DryRun(context.Background(), []string{dir}, ingestOpts())
	require.NoError(t, err)

	o := New(table.New(nil), nil, nil)
	ingested, err := o.Ingest(context.Background(), []string{dir}, ingestOpts())
	require.NoError(t, err)

	require.Len(t, dry.Results, len(ingested.Results))
	for i := range dry.Results {
		assert.Equal(t, ingested.Results[i].Record, dry.Results[i].Record)
		assert.Equal(t, dry.Results[i].Record.Cells, o.Table().Rows[i].Cells)
	}
	assert.Equal(t, 1, dry.ByReason[classifier.UnresolvedDate])
}

func TestDryRun_CancelledContext(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, completeName)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(table.New(nil), nil, nil).DryRun(ctx, []string{dir}, ingestOpts())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDryRun_Properties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 30

	properties := gopter.NewProperties(parameters)

	properties.Property("dry run leaves files and table untouched", prop.ForAll(
		func(names []string) bool {
			dir := t.TempDir()
			seen := map[string]bool{}
			for _, n := range names {
				if n == "" || seen[n] {
					continue
				}
				seen[n] = true
				if err := os.WriteFile(filepath.Join(dir, n), nil, 0644); err != nil {
					return false
				}
			}

			tbl := table.New(nil)
			s, err := New(tbl, nil, nil).DryRun(context.Background(), []string{dir}, ingestOpts())
			if err != nil || tbl.Len() != 0 || s.Total != len(seen) {
				return false
			}
			entries, err := os.ReadDir(dir)
			return err == nil && len(entries) == len(seen)
		},
		gen.SliceOf(gen.AlphaString()),
	))

	properties.TestingRun(t)
}

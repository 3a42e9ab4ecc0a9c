package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"misterlister/internal/table"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "db", "table.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleTable() *table.Table {
	t := table.New(nil)
	added := time.Date(2024, 3, 5, 10, 0, 0, 123, time.UTC)
	t.Append(
		table.Row{ID: "r1", Source: "/in/SMITH JOHN 010223 MRI 030524.pdf", Cells: []string{"SMITH", "JOHN", "01-02-2023", "MRI", "03-05-2024"}, AddedAt: added},
		table.Row{ID: "r2", Source: "/in/ABC123def", Cells: []string{"ABC", "123", "def", "", ""}, Review: true, AddedAt: added.Add(time.Second)},
	)
	_ = t.Hide(1)
	return t
}

func TestOpen_CreatesDirectoryAndSchema(t *testing.T) {
	s := openTemp(t)
	_, err := os.Stat(s.Path())
	require.NoError(t, err)

	tbl, err := s.Load(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, tbl.Headers)
	assert.Equal(t, 0, tbl.Len())
}

func TestOpen_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "table.db")
	ctx := context.Background()

	s, err := Open(ctx, path)
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, sampleTable()))
	require.NoError(t, s.Close())

	s, err = Open(ctx, path)
	require.NoError(t, err)
	defer s.Close()

	tbl, err := s.Load(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, tbl.Len())
}

func TestOpen_BadPath(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0644))

	_, err := Open(context.Background(), filepath.Join(blocker, "table.db"))
	var se *StoreError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, OpenFailed, se.Type)
}

func TestSaveLoad_PreservesTable(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()
	want := sampleTable()

	require.NoError(t, s.Save(ctx, want))
	got, err := s.Load(ctx, []string{"ignored"})
	require.NoError(t, err)

	assert.Equal(t, want.Headers, got.Headers)
	assert.Equal(t, []int{1}, got.HiddenColumns())
	if diff := cmp.Diff(want.Rows, got.Rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestSave_ReplacesPreviousContents(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, sampleTable()))

	next := table.New([]string{"name", "when"})
	next.Append(table.Row{ID: "r9", Cells: []string{"x", "01-01-2000"}, AddedAt: time.Unix(0, 0).UTC()})
	require.NoError(t, s.Save(ctx, next))

	got, err := s.Load(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "when"}, got.Headers)
	assert.Empty(t, got.HiddenColumns())
	require.Equal(t, 1, got.Len())
	assert.Equal(t, "r9", got.Rows[0].ID)
}

func TestSave_KeepsRowOrder(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	tbl := sampleTable()
	require.NoError(t, tbl.SortBy(0, false))
	require.NoError(t, s.Save(ctx, tbl))

	got, err := s.Load(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, "ABC", got.Rows[0].Cells[0])
	assert.Equal(t, "SMITH", got.Rows[1].Cells[0])
}

func TestSave_DuplicateIDRollsBack(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()
	require.NoError(t, s.Save(ctx, sampleTable()))

	bad := table.New(nil)
	bad.Append(table.Row{ID: "same"}, table.Row{ID: "same"})
	err := s.Save(ctx, bad)
	var se *StoreError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, QueryFailed, se.Type)

	got, err := s.Load(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Len(), "failed save must leave the previous table")
}

func TestLoad_CancelledContext(t *testing.T) {
	s := openTemp(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.Load(ctx, nil)
	assert.Error(t, err)
}

func TestEvents_NewestFirst(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	for _, a := range []Action{ActionAdd, ActionSort, ActionDelete} {
		ev, err := s.Record(ctx, a, string(a)+" detail")
		require.NoError(t, err)
		assert.NotEmpty(t, ev.ID)
	}

	events, err := s.Events(ctx, 0)
	require.NoError(t, err)
	got := make([]Action, len(events))
	for i, e := range events {
		got[i] = e.Action
	}
	assert.Equal(t, []Action{ActionDelete, ActionSort, ActionAdd}, got)
	assert.Equal(t, "DELETE detail", events[0].Detail)

	limited, err := s.Events(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestRecord_RoundTripsEvent(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	ev, err := s.Record(ctx, ActionEdit, "row 1 col 2")
	require.NoError(t, err)

	events, err := s.Events(ctx, 1)
	require.NoError(t, err)
	require.Len(t, events, 1)
	if diff := cmp.Diff(*ev, events[0], cmpopts.EquateApproxTime(time.Microsecond)); diff != "" {
		t.Errorf("event mismatch (-want +got):\n%s", diff)
	}
}

func TestPruneEvents(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	_, err := s.Record(ctx, ActionAdd, "old")
	require.NoError(t, err)
	cutoff := time.Now().Add(time.Millisecond)
	time.Sleep(5 * time.Millisecond)
	_, err = s.Record(ctx, ActionAdd, "new")
	require.NoError(t, err)

	n, err := s.PruneEvents(ctx, cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	events, err := s.Events(ctx, 0)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "new", events[0].Detail)
}

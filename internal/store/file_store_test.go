package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	ID   string `json:"id"`
	Note string `json:"note"`
}

func TestFileCollectionMissingFileReadsEmpty(t *testing.T) {
	c := NewFileCollection[item](t.TempDir(), "things")

	items, err := c.ReadAll(context.Background())

	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestFileCollectionRoundTripKeepsOrder(t *testing.T) {
	ctx := context.Background()
	c := NewFileCollection[item](t.TempDir(), "things")
	want := []item{{ID: "b", Note: "second"}, {ID: "a", Note: "first"}, {ID: "c"}}

	require.NoError(t, c.WriteAll(ctx, want))
	got, err := c.ReadAll(ctx)

	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestFileCollectionWriteLeavesNoTempFiles(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	c := NewFileCollection[item](dir, "things")

	require.NoError(t, c.WriteAll(ctx, []item{{ID: "1"}}))
	require.NoError(t, c.WriteAll(ctx, []item{{ID: "1"}, {ID: "2"}}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "things.json", entries[0].Name())
}

func TestFileCollectionCorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "things.json"), []byte("{not json"), 0o644))
	c := NewFileCollection[item](dir, "things")

	_, err := c.ReadAll(context.Background())

	assert.Error(t, err)
}

func TestFileCollectionInit(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "nested", "data")
	c := NewFileCollection[item](dir, "things")

	require.NoError(t, c.Init(ctx))
	data, err := os.ReadFile(c.Path())
	require.NoError(t, err)
	assert.JSONEq(t, "[]", string(data))

	require.NoError(t, c.WriteAll(ctx, []item{{ID: "x"}}))
	require.NoError(t, c.Init(ctx))
	got, err := c.ReadAll(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestFileCollectionHonorsCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := NewFileCollection[item](t.TempDir(), "things")

	assert.ErrorIs(t, c.WriteAll(ctx, nil), context.Canceled)
	_, err := c.ReadAll(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uwdate/review-backend/internal/models"
)

// flakyCollection fails WriteAll once failWrites is set.
type flakyCollection struct {
	*MemoryCollection[models.ReviewRecord]
	failWrites bool
}

func (f *flakyCollection) WriteAll(ctx context.Context, items []models.ReviewRecord) error {
	if f.failWrites {
		return errors.New("disk full")
	}
	return f.MemoryCollection.WriteAll(ctx, items)
}

func ids(records []models.ReviewRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}

func TestPartitionsAppend(t *testing.T) {
	ctx := context.Background()
	p := NewPartitions(NewMemoryCollection[models.ReviewRecord](), NewMemoryCollection[models.ReviewRecord]())

	require.NoError(t, p.Append(ctx, models.ReviewRecord{ID: "r1"}))
	require.NoError(t, p.Append(ctx, models.ReviewRecord{ID: "r2"}))

	pending, err := p.ReadPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"r1", "r2"}, ids(pending))
}

func TestPartitionsMove(t *testing.T) {
	ctx := context.Background()
	p := NewPartitions(
		NewMemoryCollection(models.ReviewRecord{ID: "r1"}, models.ReviewRecord{ID: "r2"}),
		NewMemoryCollection[models.ReviewRecord](),
	)

	moved, err := p.Move(ctx, "r1", func(r *models.ReviewRecord) { r.Status = models.StatusApproved })
	require.NoError(t, err)
	assert.True(t, moved)

	pending, _ := p.ReadPending(ctx)
	approved, _ := p.ReadApproved(ctx)
	assert.Equal(t, []string{"r2"}, ids(pending))
	require.Len(t, approved, 1)
	assert.Equal(t, models.StatusApproved, approved[0].Status)
}

func TestPartitionsMoveUnknownID(t *testing.T) {
	p := NewPartitions(NewMemoryCollection[models.ReviewRecord](), NewMemoryCollection[models.ReviewRecord]())

	moved, err := p.Move(context.Background(), "missing", nil)

	require.NoError(t, err)
	assert.False(t, moved)
}

func TestPartitionsFailedPendingWriteIsReconciled(t *testing.T) {
	ctx := context.Background()
	pending := &flakyCollection{MemoryCollection: NewMemoryCollection(models.ReviewRecord{ID: "r1"})}
	approved := NewMemoryCollection[models.ReviewRecord]()
	p := NewPartitions(pending, approved)

	pending.failWrites = true
	_, err := p.Move(ctx, "r1", nil)
	require.Error(t, err)

	// The record reached approved but is still pending.
	inApproved, _ := approved.ReadAll(ctx)
	inPending, _ := pending.ReadAll(ctx)
	assert.Equal(t, []string{"r1"}, ids(inApproved))
	assert.Equal(t, []string{"r1"}, ids(inPending))

	pending.failWrites = false
	removed, err := p.Reconcile(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	inPending, _ = pending.ReadAll(ctx)
	assert.Empty(t, inPending)

	moved, err := p.Move(ctx, "r1", nil)
	require.NoError(t, err)
	assert.False(t, moved)
	inApproved, _ = approved.ReadAll(ctx)
	assert.Len(t, inApproved, 1)
}

func TestPartitionsFailedApprovedWriteKeepsPending(t *testing.T) {
	ctx := context.Background()
	pending := NewMemoryCollection(models.ReviewRecord{ID: "r1"})
	approved := &flakyCollection{MemoryCollection: NewMemoryCollection[models.ReviewRecord](), failWrites: true}
	p := NewPartitions(pending, approved)

	_, err := p.Move(ctx, "r1", nil)
	require.Error(t, err)

	inPending, _ := pending.ReadAll(ctx)
	assert.Equal(t, []string{"r1"}, ids(inPending))
}

func TestPartitionsOverFiles(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	p := NewPartitions(
		NewFileCollection[models.ReviewRecord](dir, PendingReviews),
		NewFileCollection[models.ReviewRecord](dir, ApprovedReviews),
	)

	require.NoError(t, p.Append(ctx, models.ReviewRecord{ID: "f1"}))
	moved, err := p.Move(ctx, "f1", nil)
	require.NoError(t, err)
	assert.True(t, moved)

	reopened := NewFileCollection[models.ReviewRecord](dir, ApprovedReviews)
	approved, err := reopened.ReadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"f1"}, ids(approved))
}

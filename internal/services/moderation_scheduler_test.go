package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uwdate/review-backend/internal/models"
)

type fakeQueue struct {
	mu       sync.Mutex
	pending  []models.ReviewRecord
	promoted []string
	fail     error
	block    chan struct{}
}

func (q *fakeQueue) Promote(_ context.Context, id string) (bool, error) {
	if q.block != nil {
		<-q.block
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.fail != nil {
		return false, q.fail
	}
	for i, r := range q.pending {
		if r.ID == id {
			q.pending = append(q.pending[:i], q.pending[i+1:]...)
			q.promoted = append(q.promoted, id)
			return true, nil
		}
	}
	return false, nil
}

func (q *fakeQueue) PendingRecords(context.Context) ([]models.ReviewRecord, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]models.ReviewRecord(nil), q.pending...), nil
}

func (q *fakeQueue) promotedIDs() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]string(nil), q.promoted...)
}

func pendingAt(id string, submitted time.Time) models.ReviewRecord {
	return models.ReviewRecord{ID: id, Status: models.StatusPending, SubmissionDate: submitted}
}

func TestScheduleFiresAfterDelay(t *testing.T) {
	q := &fakeQueue{pending: []models.ReviewRecord{pendingAt("r1", time.Now())}}
	s := NewModerationScheduler(q, 20*time.Millisecond)

	s.Schedule("r1", s.Delay())
	assert.Equal(t, 1, s.Scheduled())

	assert.Eventually(t, func() bool {
		return len(q.promotedIDs()) == 1
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"r1"}, q.promotedIDs())
	assert.Eventually(t, func() bool { return s.Scheduled() == 0 }, time.Second, 5*time.Millisecond)
}

func TestScheduleFailureIsSwallowed(t *testing.T) {
	q := &fakeQueue{fail: errors.New("boom")}
	s := NewModerationScheduler(q, 0)

	s.Schedule("r1", 0)

	assert.Eventually(t, func() bool { return s.Scheduled() == 0 }, time.Second, 5*time.Millisecond)
	require.NoError(t, s.Shutdown(context.Background()))
}

func TestNegativeDelayClampsToZero(t *testing.T) {
	s := NewModerationScheduler(&fakeQueue{}, -time.Second)
	assert.Zero(t, s.Delay())
}

func TestResumeSchedulesRemainingDelay(t *testing.T) {
	now := time.Now()
	q := &fakeQueue{pending: []models.ReviewRecord{
		pendingAt("overdue", now.Add(-time.Hour)),
		pendingAt("fresh", now),
	}}
	s := NewModerationScheduler(q, time.Hour)
	s.now = func() time.Time { return now }

	n, err := s.Resume(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	assert.Eventually(t, func() bool {
		return len(q.promotedIDs()) == 1
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"overdue"}, q.promotedIDs())
	assert.Equal(t, 1, s.Scheduled())

	require.NoError(t, s.Shutdown(context.Background()))
	assert.Zero(t, s.Scheduled())
}

func TestSweepPromotesOverdueWithoutTimer(t *testing.T) {
	now := time.Now()
	q := &fakeQueue{pending: []models.ReviewRecord{
		pendingAt("overdue", now.Add(-time.Minute)),
		pendingAt("timed", now.Add(-time.Minute)),
		pendingAt("fresh", now),
	}}
	s := NewModerationScheduler(q, 10*time.Second)
	s.now = func() time.Time { return now }
	s.Schedule("timed", time.Hour)

	promoted := s.Sweep(context.Background())

	assert.Equal(t, 1, promoted)
	assert.Equal(t, []string{"overdue"}, q.promotedIDs())
	require.NoError(t, s.Shutdown(context.Background()))
}

func TestStartSweep(t *testing.T) {
	s := NewModerationScheduler(&fakeQueue{}, time.Second)

	assert.Error(t, s.StartSweep("not a schedule"))
	require.NoError(t, s.StartSweep("@every 1h"))
	assert.Error(t, s.StartSweep("@every 1h"))

	require.NoError(t, s.Shutdown(context.Background()))
	assert.Error(t, s.StartSweep("@every 1h"))
}

func TestShutdownCancelsTimers(t *testing.T) {
	q := &fakeQueue{pending: []models.ReviewRecord{pendingAt("r1", time.Now())}}
	s := NewModerationScheduler(q, 30*time.Millisecond)
	s.Schedule("r1", s.Delay())

	require.NoError(t, s.Shutdown(context.Background()))
	time.Sleep(60 * time.Millisecond)

	assert.Empty(t, q.promotedIDs())
	s.Schedule("r2", 0)
	assert.Zero(t, s.Scheduled())
}

func TestShutdownWaitsForInflightPromotion(t *testing.T) {
	block := make(chan struct{})
	q := &fakeQueue{pending: []models.ReviewRecord{pendingAt("r1", time.Now())}, block: block}
	s := NewModerationScheduler(q, 0)
	s.Schedule("r1", 0)
	assert.Eventually(t, func() bool { return s.Scheduled() == 0 }, time.Second, time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, s.Shutdown(ctx), context.DeadlineExceeded)

	close(block)
	require.NoError(t, s.Shutdown(context.Background()))
	assert.Equal(t, []string{"r1"}, q.promotedIDs())
}

func TestSubmittedReviewBecomesVisibleAfterDelay(t *testing.T) {
	ctx := context.Background()
	svc, parts := newTestReviewService(t)
	search := NewSearchIndex(parts)
	s := NewModerationScheduler(svc, 10*time.Millisecond)
	t.Cleanup(func() { _ = s.Shutdown(context.Background()) })

	rec, err := svc.Submit(ctx, validInput(), nil)
	require.NoError(t, err)
	assert.Empty(t, svc.ListApproved(ctx))

	s.Schedule(rec.ID, s.Delay())

	assert.Eventually(t, func() bool {
		pending, err := parts.ReadPending(ctx)
		return err == nil && len(pending) == 0
	}, time.Second, 5*time.Millisecond)

	approved := svc.ListApproved(ctx)
	require.Len(t, approved, 1)
	assert.Equal(t, rec.ID, approved[0].ID)
	assert.Equal(t, "王**", approved[0].TargetInfo.DisplayName)

	result, err := search.Search(ctx, "王小明")
	require.NoError(t, err)
	require.Equal(t, 1, result.Count)
	require.NotNil(t, result.Results[0].ShowFullName)
	assert.True(t, *result.Results[0].ShowFullName)
	assert.Equal(t, "王小明", result.Results[0].TargetInfo.Name)

	assert.Eventually(t, func() bool { return s.Scheduled() == 0 }, time.Second, 5*time.Millisecond)
}

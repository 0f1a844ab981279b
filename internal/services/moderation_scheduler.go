package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/robfig/cron/v3"

	"github.com/uwdate/review-backend/internal/models"
)

// DefaultAutoApproveDelay is how long a submission waits before automatic
// promotion.
const DefaultAutoApproveDelay = 5 * time.Second

// ModerationQueue is what the scheduler promotes against. ReviewService
// implements it; a real moderation backend can replace the scheduler
// entirely by consuming the same queue.
type ModerationQueue interface {
	Promote(ctx context.Context, reviewID string) (bool, error)
	PendingRecords(ctx context.Context) ([]models.ReviewRecord, error)
}

// ModerationScheduler promotes pending reviews after a fixed delay. Each
// scheduled promotion is a one-shot timer whose handle is kept until it
// fires or the scheduler shuts down. Failures are logged and reported to
// Sentry, never retried by the timer itself.
type ModerationScheduler struct {
	queue ModerationQueue
	delay time.Duration
	now   func() time.Time

	mu       sync.Mutex
	timers   map[string]*time.Timer
	closed   bool
	sweeper  *cron.Cron
	inflight sync.WaitGroup
}

func NewModerationScheduler(queue ModerationQueue, delay time.Duration) *ModerationScheduler {
	if delay < 0 {
		delay = 0
	}
	return &ModerationScheduler{
		queue:  queue,
		delay:  delay,
		now:    time.Now,
		timers: make(map[string]*time.Timer),
	}
}

func (m *ModerationScheduler) Delay() time.Duration { return m.delay }

// Schedule arranges for reviewID to be promoted after delay. Scheduling an
// id that already has a timer replaces it.
func (m *ModerationScheduler) Schedule(reviewID string, delay time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	if t, ok := m.timers[reviewID]; ok {
		t.Stop()
	}
	m.timers[reviewID] = time.AfterFunc(delay, func() { m.fire(reviewID) })
}

// Scheduled returns the number of promotions waiting on a timer.
func (m *ModerationScheduler) Scheduled() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.timers)
}

func (m *ModerationScheduler) fire(reviewID string) {
	m.mu.Lock()
	delete(m.timers, reviewID)
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.inflight.Add(1)
	m.mu.Unlock()
	defer m.inflight.Done()

	m.promote(context.Background(), reviewID, "timer")
}

func (m *ModerationScheduler) promote(ctx context.Context, reviewID, source string) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("promotion panicked: %v", r)
			slog.Error("auto-approve failed", "review_id", reviewID, "action", source, "error", err)
			sentry.CaptureException(err)
		}
	}()

	if _, err := m.queue.Promote(ctx, reviewID); err != nil {
		slog.Error("auto-approve failed", "review_id", reviewID, "action", source, "error", err)
		sentry.CaptureException(err)
	}
}

// Resume schedules every pending record with whatever is left of its delay,
// measured from its submission time. It is called at startup so that
// submissions accepted before a restart are still promoted.
func (m *ModerationScheduler) Resume(ctx context.Context) (int, error) {
	records, err := m.queue.PendingRecords(ctx)
	if err != nil {
		return 0, err
	}
	now := m.now()
	for _, r := range records {
		m.Schedule(r.ID, m.remaining(r, now))
	}
	return len(records), nil
}

func (m *ModerationScheduler) remaining(r models.ReviewRecord, now time.Time) time.Duration {
	left := r.SubmissionDate.Add(m.delay).Sub(now)
	if left < 0 {
		return 0
	}
	return left
}

// StartSweep runs Sweep on the given cron spec (for example "@every 1m").
func (m *ModerationScheduler) StartSweep(spec string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return fmt.Errorf("scheduler is shut down")
	}
	if m.sweeper != nil {
		return fmt.Errorf("sweep already running")
	}
	c := cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger)))
	if _, err := c.AddFunc(spec, func() { m.Sweep(context.Background()) }); err != nil {
		return fmt.Errorf("invalid sweep spec %q: %w", spec, err)
	}
	c.Start()
	m.sweeper = c
	slog.Info("moderation sweep started", "spec", spec)
	return nil
}

// Sweep promotes pending records whose delay has elapsed and that have no
// timer waiting. It returns how many were promoted.
func (m *ModerationScheduler) Sweep(ctx context.Context) int {
	records, err := m.queue.PendingRecords(ctx)
	if err != nil {
		slog.Error("moderation sweep failed", "action", "sweep", "error", err)
		return 0
	}

	now := m.now()
	promoted := 0
	for _, r := range records {
		if m.remaining(r, now) > 0 || m.hasTimer(r.ID) {
			continue
		}
		moved, err := m.queue.Promote(ctx, r.ID)
		if err != nil {
			slog.Error("auto-approve failed", "review_id", r.ID, "action", "sweep", "error", err)
			sentry.CaptureException(err)
			continue
		}
		if moved {
			promoted++
		}
	}
	return promoted
}

func (m *ModerationScheduler) hasTimer(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.timers[id]
	return ok
}

// Shutdown cancels outstanding timers and waits for promotions already
// running. Cancelled promotions stay pending and are picked up by Resume on
// the next start.
func (m *ModerationScheduler) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	m.closed = true
	cancelled := len(m.timers)
	for id, t := range m.timers {
		t.Stop()
		delete(m.timers, id)
	}
	sweeper := m.sweeper
	m.mu.Unlock()

	if cancelled > 0 {
		slog.Info("cancelled scheduled promotions", "count", cancelled)
	}

	done := make(chan struct{})
	go func() {
		if sweeper != nil {
			<-sweeper.Stop().Done()
		}
		m.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

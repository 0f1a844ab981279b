package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/uwdate/review-backend/internal/models"
)

// Partitions owns the pending and approved review collections and is the
// single writer for both inside this process.
//
// A move writes the approved collection before removing the record from
// pending, so a crash in between leaves a duplicate rather than a lost
// record. Reconcile removes such duplicates and runs before every move.
type Partitions struct {
	mu       sync.Mutex
	pending  Collection[models.ReviewRecord]
	approved Collection[models.ReviewRecord]
}

func NewPartitions(pending, approved Collection[models.ReviewRecord]) *Partitions {
	return &Partitions{pending: pending, approved: approved}
}

func (p *Partitions) ReadPending(ctx context.Context) ([]models.ReviewRecord, error) {
	return p.pending.ReadAll(ctx)
}

func (p *Partitions) ReadApproved(ctx context.Context) ([]models.ReviewRecord, error) {
	return p.approved.ReadAll(ctx)
}

// Append adds a record to the end of the pending partition.
func (p *Partitions) Append(ctx context.Context, rec models.ReviewRecord) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	pending, err := p.pending.ReadAll(ctx)
	if err != nil {
		return fmt.Errorf("read pending: %w", err)
	}
	pending = append(pending, rec)
	if err := p.pending.WriteAll(ctx, pending); err != nil {
		return fmt.Errorf("write pending: %w", err)
	}
	return nil
}

// Move transfers the pending record with the given id to the approved
// partition after applying mutate to it. It reports false, without error,
// when no such pending record exists.
func (p *Partitions) Move(ctx context.Context, id string, mutate func(*models.ReviewRecord)) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, err := p.reconcileLocked(ctx); err != nil {
		return false, err
	}

	pending, err := p.pending.ReadAll(ctx)
	if err != nil {
		return false, fmt.Errorf("read pending: %w", err)
	}
	idx := indexOf(pending, id)
	if idx == -1 {
		return false, nil
	}

	approved, err := p.approved.ReadAll(ctx)
	if err != nil {
		return false, fmt.Errorf("read approved: %w", err)
	}

	rec := pending[idx]
	if mutate != nil {
		mutate(&rec)
	}
	approved = append(approved, rec)
	if err := p.approved.WriteAll(ctx, approved); err != nil {
		return false, fmt.Errorf("write approved: %w", err)
	}

	pending = append(pending[:idx], pending[idx+1:]...)
	if err := p.pending.WriteAll(ctx, pending); err != nil {
		return false, fmt.Errorf("write pending: %w", err)
	}
	return true, nil
}

// Reconcile drops pending copies of records that already reached the
// approved partition and returns how many were dropped.
func (p *Partitions) Reconcile(ctx context.Context) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.reconcileLocked(ctx)
}

func (p *Partitions) reconcileLocked(ctx context.Context) (int, error) {
	pending, err := p.pending.ReadAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("read pending: %w", err)
	}
	if len(pending) == 0 {
		return 0, nil
	}
	approved, err := p.approved.ReadAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("read approved: %w", err)
	}

	seen := make(map[string]struct{}, len(approved))
	for _, r := range approved {
		seen[r.ID] = struct{}{}
	}
	kept := pending[:0]
	for _, r := range pending {
		if _, dup := seen[r.ID]; !dup {
			kept = append(kept, r)
		}
	}
	removed := len(pending) - len(kept)
	if removed == 0 {
		return 0, nil
	}
	if err := p.pending.WriteAll(ctx, kept); err != nil {
		return 0, fmt.Errorf("write pending: %w", err)
	}
	return removed, nil
}

func indexOf(records []models.ReviewRecord, id string) int {
	for i := range records {
		if records[i].ID == id {
			return i
		}
	}
	return -1
}

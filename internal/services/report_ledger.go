package services

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/uwdate/review-backend/internal/models"
	"github.com/uwdate/review-backend/internal/store"
)

type FileReportInput struct {
	ReviewID      string
	Reason        string
	Details       string
	ReporterEmail string
	IP            string
}

// ReportLedger appends abuse reports. The review id is not checked against
// the review partitions: reports about removed content are still recorded.
type ReportLedger struct {
	mu      sync.Mutex
	reports store.Collection[models.Report]
	now     func() time.Time
}

func NewReportLedger(reports store.Collection[models.Report]) *ReportLedger {
	return &ReportLedger{reports: reports, now: time.Now}
}

func (l *ReportLedger) File(ctx context.Context, in FileReportInput) (*models.Report, error) {
	if strings.TrimSpace(in.ReviewID) == "" {
		return nil, invalid("缺少评价ID", "reviewId")
	}
	if strings.TrimSpace(in.Reason) == "" {
		return nil, invalid("请选择举报原因", "reason")
	}

	report := models.Report{
		ID:            uuid.NewString(),
		ReviewID:      in.ReviewID,
		ReportDate:    l.now().UTC(),
		Reason:        strings.TrimSpace(in.Reason),
		Details:       in.Details,
		ReporterEmail: optional(strings.TrimSpace(in.ReporterEmail)),
		IP:            in.IP,
		Status:        models.ReportPending,
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	reports, err := l.reports.ReadAll(ctx)
	if err != nil {
		return nil, storageErr("read reports", err)
	}
	reports = append(reports, report)
	if err := l.reports.WriteAll(ctx, reports); err != nil {
		return nil, storageErr("write reports", err)
	}

	slog.Info("report filed", "review_id", report.ReviewID, "report_id", report.ID)
	return &report, nil
}

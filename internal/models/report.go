package models

import "time"

type ReportStatus string

const (
	ReportPending   ReportStatus = "pending"
	ReportResolved  ReportStatus = "resolved"
	ReportDismissed ReportStatus = "dismissed"
)

// Report is an abuse report about a review. Reports are append-only; the
// review id is stored as given, even if no such review exists.
type Report struct {
	ID            string       `json:"id"`
	ReviewID      string       `json:"reviewId"`
	ReportDate    time.Time    `json:"reportDate"`
	Reason        string       `json:"reason"`
	Details       string       `json:"details"`
	ReporterEmail *string      `json:"reporterEmail"`
	IP            string       `json:"ip"`
	Status        ReportStatus `json:"status"`
}

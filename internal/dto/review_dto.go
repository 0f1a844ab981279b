package dto

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/uwdate/review-backend/internal/models"
)

// TagList accepts tags either as a JSON list or as one comma-delimited
// string.
type TagList []string

func (t *TagList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*t = nil
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = TagList{s}
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	*t = list
	return nil
}

// Flag accepts JSON booleans as well as the string values an HTML checkbox
// posts ("on", "true", "1").
type Flag bool

func (f *Flag) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = Flag(ParseFlag(s))
		return nil
	}
	if bytes.Equal(data, []byte("null")) {
		*f = false
		return nil
	}
	var b bool
	if err := json.Unmarshal(data, &b); err != nil {
		return err
	}
	*f = Flag(b)
	return nil
}

func ParseFlag(s string) bool {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "on" || s == "yes" {
		return true
	}
	b, _ := strconv.ParseBool(s)
	return b
}

type SubmitReviewRequest struct {
	ReviewerName     string  `json:"reviewerName"`
	ReviewerEmail    string  `json:"reviewerEmail"`
	TargetName       string  `json:"targetName"`
	TargetProgram    string  `json:"targetProgram"`
	Relationship     string  `json:"relationship"`
	Duration         string  `json:"duration"`
	Tags             TagList `json:"tags"`
	TagTypes         TagList `json:"tagTypes"`
	Content          string  `json:"content"`
	TruthDeclaration Flag    `json:"truthDeclaration"`
	PrivacyAgreement Flag    `json:"privacyAgreement"`
}

type SubmitReviewResponse struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	ReviewID string `json:"reviewId"`
	IsDemo   bool   `json:"isDemo,omitempty"`
}

type ReportReviewRequest struct {
	Reason        string `json:"reason" form:"reason"`
	Details       string `json:"details" form:"details"`
	ReporterEmail string `json:"reporterEmail" form:"reporterEmail"`
}

type ReportReviewResponse struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	ReportID string `json:"reportId"`
}

// StatsResponse carries lastUpdate as unix milliseconds.
type StatsResponse struct {
	TotalReviews   int   `json:"totalReviews"`
	PendingReviews int   `json:"pendingReviews"`
	LastUpdate     int64 `json:"lastUpdate"`
}

func NewStatsResponse(s models.Stats) StatsResponse {
	return StatsResponse{
		TotalReviews:   s.ApprovedCount,
		PendingReviews: s.PendingCount,
		LastUpdate:     s.LastUpdate.UnixMilli(),
	}
}

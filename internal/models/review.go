package models

import (
	"strings"
	"time"
)

type ReviewStatus string

const (
	StatusPending  ReviewStatus = "pending"
	StatusApproved ReviewStatus = "approved"
	StatusRejected ReviewStatus = "rejected"
)

type Polarity string

const (
	PolarityPositive Polarity = "positive"
	PolarityNegative Polarity = "negative"
	PolarityNeutral  Polarity = "neutral"
)

func (p Polarity) Valid() bool {
	switch p {
	case PolarityPositive, PolarityNegative, PolarityNeutral:
		return true
	}
	return false
}

// RelationshipTypes is the controlled set of relationship categories.
var RelationshipTypes = []string{
	"dating",
	"boyfriend_girlfriend",
	"friends",
	"classmates",
	"colleagues",
	"roommates",
	"other",
}

// DurationBuckets is the controlled set of relationship durations.
var DurationBuckets = []string{
	"less_than_1_month",
	"1-3_months",
	"3-6_months",
	"6-12_months",
	"more_than_1_year",
}

// TagVocabulary maps known tag labels to their usual polarity. Submissions
// may override the polarity per tag.
var TagVocabulary = map[string]Polarity{
	"忠诚":   PolarityPositive,
	"情绪稳定": PolarityPositive,
	"真诚付出": PolarityPositive,
	"幽默":   PolarityPositive,
	"靠谱":   PolarityPositive,
	"PUA":  PolarityNegative,
	"不可靠":  PolarityNegative,
	"出轨":   PolarityNegative,
	"冷暴力":  PolarityNegative,
	"骗钱":   PolarityNegative,
	"不成熟":  PolarityNegative,
	"骗人":   PolarityNegative,
}

func ValidRelationship(t string) bool { return contains(RelationshipTypes, t) }

func ValidDuration(d string) bool { return contains(DurationBuckets, d) }

func contains(list []string, val string) bool {
	for _, item := range list {
		if item == val {
			return true
		}
	}
	return false
}

// ReviewRecord is the stored review entity. Only PublicReview is ever
// returned to anonymous callers.
type ReviewRecord struct {
	ID               string           `json:"id"`
	SubmissionDate   time.Time        `json:"submissionDate"`
	Status           ReviewStatus     `json:"status"`
	ReviewerInfo     ReviewerInfo     `json:"reviewerInfo"`
	TargetInfo       TargetInfo       `json:"targetInfo"`
	RelationshipInfo RelationshipInfo `json:"relationshipInfo"`
	Review           ReviewBody       `json:"review"`
	Evidence         []Evidence       `json:"evidence"`
	Moderation       Moderation       `json:"moderation"`
}

type ReviewerInfo struct {
	Name      string  `json:"name"`
	Email     *string `json:"email"`
	IP        string  `json:"ip"`
	UserAgent string  `json:"userAgent"`
}

type TargetInfo struct {
	Name        string  `json:"name"`
	DisplayName string  `json:"displayName"`
	Program     *string `json:"program"`
}

type RelationshipInfo struct {
	Type     string  `json:"type"`
	Duration *string `json:"duration"`
}

type Tag struct {
	Label    string   `json:"label"`
	Polarity Polarity `json:"polarity"`
}

type ReviewBody struct {
	Tags            []Tag  `json:"tags"`
	Content         string `json:"content"`
	OriginalContent string `json:"originalContent"`
}

type Evidence struct {
	Filename     string    `json:"filename"`
	OriginalName string    `json:"originalName"`
	Size         int64     `json:"size"`
	UploadDate   time.Time `json:"uploadDate"`
}

type Moderation struct {
	AutoChecked     bool       `json:"autoChecked"`
	AutoCheckDate   *time.Time `json:"autoCheckDate"`
	HumanReviewed   bool       `json:"humanReviewed"`
	ApprovedBy      *string    `json:"approvedBy"`
	ApprovalDate    *time.Time `json:"approvalDate"`
	RejectionReason *string    `json:"rejectionReason"`
}

// PublicTarget omits the real name unless a search matched it exactly.
type PublicTarget struct {
	Name        string  `json:"name,omitempty"`
	DisplayName string  `json:"displayName"`
	Program     *string `json:"program"`
}

type PublicBody struct {
	Tags    []Tag  `json:"tags"`
	Content string `json:"content"`
}

type PublicReview struct {
	ID               string           `json:"id"`
	TargetInfo       PublicTarget     `json:"targetInfo"`
	RelationshipInfo RelationshipInfo `json:"relationshipInfo"`
	Review           PublicBody       `json:"review"`
	SubmissionDate   time.Time        `json:"submissionDate"`
	ShowFullName     *bool            `json:"showFullName,omitempty"`
}

// Public projects the record onto the fields safe for anonymous callers.
func (r *ReviewRecord) Public() PublicReview {
	tags := make([]Tag, len(r.Review.Tags))
	copy(tags, r.Review.Tags)
	return PublicReview{
		ID: r.ID,
		TargetInfo: PublicTarget{
			DisplayName: r.TargetInfo.DisplayName,
			Program:     r.TargetInfo.Program,
		},
		RelationshipInfo: r.RelationshipInfo,
		Review: PublicBody{
			Tags:    tags,
			Content: r.Review.Content,
		},
		SubmissionDate: r.SubmissionDate,
	}
}

// MatchesName reports whether term (already lower-cased) is a substring of
// the real or masked target name.
func (r *ReviewRecord) MatchesName(term string) bool {
	return strings.Contains(strings.ToLower(r.TargetInfo.Name), term) ||
		strings.Contains(strings.ToLower(r.TargetInfo.DisplayName), term)
}

type SearchResult struct {
	Query   string         `json:"query"`
	Results []PublicReview `json:"results"`
	Count   int            `json:"count"`
}

type Stats struct {
	ApprovedCount int
	PendingCount  int
	LastUpdate    time.Time
}

package services

import (
	"context"
	"errors"
	"log/slog"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/uwdate/review-backend/internal/attachments"
	"github.com/uwdate/review-backend/internal/models"
	"github.com/uwdate/review-backend/internal/privacy"
	"github.com/uwdate/review-backend/internal/store"
)

const (
	// AutoModerator is recorded as the approver of automatic promotions.
	AutoModerator = "auto-moderator"

	MaxContentLength = 1000
)

// SubmitInput carries the submitted review fields. Tags and TagTypes are
// either one comma-delimited value or a list; TagTypes, when present, gives
// the polarity of the tag at the same position.
type SubmitInput struct {
	ReviewerName     string
	ReviewerEmail    string
	TargetName       string
	TargetProgram    string
	Relationship     string
	Duration         string
	Tags             []string
	TagTypes         []string
	Content          string
	TruthDeclaration bool
	PrivacyAgreement bool
	IP               string
	UserAgent        string
}

// ReviewService manages the review lifecycle: submission into the pending
// partition, promotion into the approved partition and public reads.
type ReviewService struct {
	partitions  *store.Partitions
	attachments attachments.Store
	now         func() time.Time
}

func NewReviewService(partitions *store.Partitions, attachmentStore attachments.Store) *ReviewService {
	return &ReviewService{
		partitions:  partitions,
		attachments: attachmentStore,
		now:         time.Now,
	}
}

func (s *ReviewService) Submit(ctx context.Context, in SubmitInput, uploads []attachments.Upload) (*models.ReviewRecord, error) {
	in.ReviewerName = strings.TrimSpace(in.ReviewerName)
	in.TargetName = strings.TrimSpace(in.TargetName)
	in.Relationship = strings.TrimSpace(in.Relationship)
	in.Duration = strings.TrimSpace(in.Duration)
	in.ReviewerEmail = strings.TrimSpace(in.ReviewerEmail)
	in.TargetProgram = strings.TrimSpace(in.TargetProgram)

	tags, err := validateSubmission(&in)
	if err != nil {
		return nil, err
	}

	evidence := []models.Evidence{}
	if len(uploads) > 0 {
		evidence, err = attachments.SaveAll(ctx, s.attachments, uploads)
		var aerr *attachments.Error
		if errors.As(err, &aerr) {
			return nil, err
		}
		if err != nil {
			return nil, storageErr("save evidence", err)
		}
	}

	now := s.now().UTC()
	rec := models.ReviewRecord{
		ID:             uuid.NewString(),
		SubmissionDate: now,
		Status:         models.StatusPending,
		ReviewerInfo: models.ReviewerInfo{
			Name:      in.ReviewerName,
			Email:     optional(in.ReviewerEmail),
			IP:        in.IP,
			UserAgent: in.UserAgent,
		},
		TargetInfo: models.TargetInfo{
			Name:        in.TargetName,
			DisplayName: privacy.MaskName(in.TargetName),
			Program:     optional(in.TargetProgram),
		},
		RelationshipInfo: models.RelationshipInfo{
			Type:     in.Relationship,
			Duration: optional(in.Duration),
		},
		Review: models.ReviewBody{
			Tags:            tags,
			Content:         privacy.SanitizeContent(in.Content),
			OriginalContent: in.Content,
		},
		Evidence: evidence,
		Moderation: models.Moderation{
			AutoChecked:   true,
			AutoCheckDate: &now,
		},
	}

	if err := s.partitions.Append(ctx, rec); err != nil {
		return nil, storageErr("append pending review", err)
	}

	slog.Info("review submitted", "review_id", rec.ID, "evidence", len(evidence))
	return &rec, nil
}

func validateSubmission(in *SubmitInput) ([]models.Tag, error) {
	var missing []string
	if in.ReviewerName == "" {
		missing = append(missing, "reviewerName")
	}
	if in.TargetName == "" {
		missing = append(missing, "targetName")
	}
	if in.Relationship == "" {
		missing = append(missing, "relationship")
	}
	if strings.TrimSpace(in.Content) == "" {
		missing = append(missing, "content")
	}
	if len(missing) > 0 {
		return nil, invalid("必填字段不能为空", missing...)
	}

	if !in.TruthDeclaration || !in.PrivacyAgreement {
		var fields []string
		if !in.TruthDeclaration {
			fields = append(fields, "truthDeclaration")
		}
		if !in.PrivacyAgreement {
			fields = append(fields, "privacyAgreement")
		}
		return nil, invalid("请同意真实性声明和隐私政策", fields...)
	}

	if !models.ValidRelationship(in.Relationship) {
		return nil, invalid("关系类型无效", "relationship")
	}
	if in.Duration != "" && !models.ValidDuration(in.Duration) {
		return nil, invalid("关系时长无效", "duration")
	}
	if in.ReviewerEmail != "" {
		if _, err := mail.ParseAddress(in.ReviewerEmail); err != nil {
			return nil, invalid("请输入有效的邮箱地址", "reviewerEmail")
		}
	}
	if utf8.RuneCountInString(in.Content) > MaxContentLength {
		return nil, invalid("评价内容不能超过1000个字符", "content")
	}

	return normalizeTags(in.Tags, in.TagTypes)
}

// splitValues expands the single-string form "a,b,c" into its parts. A
// list of values is kept as is so that positions line up with tagTypes.
func splitValues(values []string) []string {
	if len(values) == 1 && strings.Contains(values[0], ",") {
		return strings.Split(values[0], ",")
	}
	return values
}

// normalizeTags pairs each label with the polarity at the same position.
// A blank label is dropped together with its polarity.
func normalizeTags(labels, types []string) ([]models.Tag, error) {
	labels = splitValues(labels)
	types = splitValues(types)
	tags := make([]models.Tag, 0, len(labels))
	for i, raw := range labels {
		label := strings.TrimSpace(raw)
		if label == "" {
			continue
		}
		polarity := models.PolarityNeutral
		if known, ok := models.TagVocabulary[label]; ok {
			polarity = known
		}
		if i < len(types) && strings.TrimSpace(types[i]) != "" {
			polarity = models.Polarity(strings.TrimSpace(types[i]))
			if !polarity.Valid() {
				return nil, invalid("标签类型无效", "tagTypes")
			}
		}
		tags = append(tags, models.Tag{Label: label, Polarity: polarity})
	}
	return tags, nil
}

// Promote moves a pending review to the approved partition. It is a no-op
// returning false when the id is not pending.
func (s *ReviewService) Promote(ctx context.Context, reviewID string) (bool, error) {
	now := s.now().UTC()
	moved, err := s.partitions.Move(ctx, reviewID, func(r *models.ReviewRecord) {
		approver := AutoModerator
		r.Status = models.StatusApproved
		r.Moderation.HumanReviewed = true
		r.Moderation.ApprovedBy = &approver
		r.Moderation.ApprovalDate = &now
	})
	if err != nil {
		return false, storageErr("promote review", err)
	}
	if moved {
		slog.Info("review auto-approved", "review_id", reviewID)
	}
	return moved, nil
}

// ListApproved returns the public projection of every approved review.
// Read failures are logged and yield an empty list.
func (s *ReviewService) ListApproved(ctx context.Context) []models.PublicReview {
	records := s.readApproved(ctx)
	out := make([]models.PublicReview, 0, len(records))
	for i := range records {
		if records[i].Status != models.StatusApproved {
			continue
		}
		out = append(out, records[i].Public())
	}
	return out
}

// PendingRecords returns the pending partition for the scheduler.
func (s *ReviewService) PendingRecords(ctx context.Context) ([]models.ReviewRecord, error) {
	records, err := s.partitions.ReadPending(ctx)
	if err != nil {
		return nil, storageErr("read pending reviews", err)
	}
	return records, nil
}

func (s *ReviewService) Stats(ctx context.Context) models.Stats {
	approved := s.readApproved(ctx)
	pending, err := s.partitions.ReadPending(ctx)
	if err != nil {
		slog.Error("failed to read pending reviews", "action", "stats", "error", err)
		pending = nil
	}

	stats := models.Stats{PendingCount: len(pending)}
	var latest time.Time
	for _, r := range approved {
		if r.Status == models.StatusApproved {
			stats.ApprovedCount++
		}
		if r.SubmissionDate.After(latest) {
			latest = r.SubmissionDate
		}
	}
	for _, r := range pending {
		if r.SubmissionDate.After(latest) {
			latest = r.SubmissionDate
		}
	}
	if latest.IsZero() {
		latest = s.now().UTC()
	}
	stats.LastUpdate = latest
	return stats
}

func (s *ReviewService) readApproved(ctx context.Context) []models.ReviewRecord {
	records, err := s.partitions.ReadApproved(ctx)
	if err != nil {
		slog.Error("failed to read approved reviews", "error", err)
		return nil
	}
	return records
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

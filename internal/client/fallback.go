package client

import (
	"context"
	"log/slog"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/uwdate/review-backend/internal/dto"
	"github.com/uwdate/review-backend/internal/models"
	"github.com/uwdate/review-backend/internal/privacy"
	"github.com/uwdate/review-backend/internal/services"
	"github.com/uwdate/review-backend/internal/store"
)

const demoSubmitMessage = "演示模式：评价已记录在本地，实际部署时将保存到数据库"

// Provider answers the operations that can be served without the server.
type Provider interface {
	ListReviews(ctx context.Context) ([]models.PublicReview, error)
	SearchReviews(ctx context.Context, query string) (*models.SearchResult, error)
	SubmitReview(ctx context.Context, s Submission) (*dto.SubmitReviewResponse, error)
	Stats(ctx context.Context) (*dto.StatsResponse, error)
}

// Policy selects which operations fall back to the Provider when the
// primary is unavailable.
type Policy struct {
	Reads      bool
	Stats      bool
	DemoSubmit bool
}

func DefaultPolicy() Policy {
	return Policy{Reads: true, Stats: true, DemoSubmit: true}
}

// FallbackClient wraps a primary Client. Operations enabled in its Policy
// are answered by the Provider when the primary is unavailable; everything
// else returns the primary's error.
type FallbackClient struct {
	primary  Client
	provider Provider
	policy   Policy
	online   atomic.Bool
}

func WithFallback(primary Client, provider Provider, policy Policy) *FallbackClient {
	f := &FallbackClient{primary: primary, provider: provider, policy: policy}
	f.online.Store(true)
	return f
}

// Online reports whether the last call reached the primary.
func (f *FallbackClient) Online() bool { return f.online.Load() }

func (f *FallbackClient) useFallback(enabled bool, op string, err error) bool {
	if !IsUnavailable(err) {
		f.online.Store(true)
		return false
	}
	f.online.Store(false)
	if enabled {
		slog.Warn("api request failed, using fallback", "action", op, "error", err)
	}
	return enabled
}

func (f *FallbackClient) ListReviews(ctx context.Context) ([]models.PublicReview, error) {
	out, err := f.primary.ListReviews(ctx)
	if err == nil {
		f.online.Store(true)
		return out, nil
	}
	if f.useFallback(f.policy.Reads, "list_reviews", err) {
		return f.provider.ListReviews(ctx)
	}
	return nil, err
}

func (f *FallbackClient) SearchReviews(ctx context.Context, query string) (*models.SearchResult, error) {
	out, err := f.primary.SearchReviews(ctx, query)
	if err == nil {
		f.online.Store(true)
		return out, nil
	}
	if f.useFallback(f.policy.Reads, "search_reviews", err) {
		return f.provider.SearchReviews(ctx, query)
	}
	return nil, err
}

func (f *FallbackClient) SubmitReview(ctx context.Context, s Submission) (*dto.SubmitReviewResponse, error) {
	out, err := f.primary.SubmitReview(ctx, s)
	if err == nil {
		f.online.Store(true)
		return out, nil
	}
	if f.useFallback(f.policy.DemoSubmit, "submit_review", err) {
		return f.provider.SubmitReview(ctx, s)
	}
	return nil, err
}

func (f *FallbackClient) ReportReview(ctx context.Context, reviewID string, req dto.ReportReviewRequest) (*dto.ReportReviewResponse, error) {
	out, err := f.primary.ReportReview(ctx, reviewID, req)
	f.useFallback(false, "report_review", err)
	return out, err
}

func (f *FallbackClient) Stats(ctx context.Context) (*dto.StatsResponse, error) {
	out, err := f.primary.Stats(ctx)
	if err == nil {
		f.online.Store(true)
		return out, nil
	}
	if f.useFallback(f.policy.Stats, "stats", err) {
		return f.provider.Stats(ctx)
	}
	return nil, err
}

func (f *FallbackClient) Health(ctx context.Context) (*dto.HealthResponse, error) {
	out, err := f.primary.Health(ctx)
	f.useFallback(false, "health", err)
	return out, err
}

// StaticProvider serves a fixed set of approved reviews with the same
// projection and search rules as the server. Demo submissions are
// acknowledged but not stored.
type StaticProvider struct {
	reviews *services.ReviewService
	search  *services.SearchIndex
	now     func() time.Time
}

func NewStaticProvider(records ...models.ReviewRecord) *StaticProvider {
	parts := store.NewPartitions(
		store.NewMemoryCollection[models.ReviewRecord](),
		store.NewMemoryCollection(records...),
	)
	return &StaticProvider{
		reviews: services.NewReviewService(parts, nil),
		search:  services.NewSearchIndex(parts),
		now:     time.Now,
	}
}

func (p *StaticProvider) ListReviews(ctx context.Context) ([]models.PublicReview, error) {
	return p.reviews.ListApproved(ctx), nil
}

func (p *StaticProvider) SearchReviews(ctx context.Context, query string) (*models.SearchResult, error) {
	return p.search.Search(ctx, query)
}

func (p *StaticProvider) SubmitReview(_ context.Context, _ Submission) (*dto.SubmitReviewResponse, error) {
	return &dto.SubmitReviewResponse{
		Success:  true,
		Message:  demoSubmitMessage,
		ReviewID: "demo-" + strconv.FormatInt(p.now().UnixMilli(), 10),
		IsDemo:   true,
	}, nil
}

func (p *StaticProvider) Stats(ctx context.Context) (*dto.StatsResponse, error) {
	stats := p.reviews.Stats(ctx)
	return &dto.StatsResponse{
		TotalReviews:   stats.ApprovedCount,
		PendingReviews: 0,
		LastUpdate:     p.now().UnixMilli(),
	}, nil
}

// SampleReviews returns the approved reviews shown when the server is
// unreachable.
func SampleReviews() []models.ReviewRecord {
	return []models.ReviewRecord{
		sampleReview("sample-1", "王某某", "CS", "dating", "1-3_months",
			[]string{"PUA", "不可靠"},
			"CS专业，在某科技公司实习，相识于某相亲APP，开始各种甜言蜜语说要一起去DC看樱花，等到确立关系后就开始冷淡，说自己压力大要专心学习，但朋友圈经常看到他和其他女生出去玩。这种变化仅发生在两周内，建议大家小心。",
			time.Date(2025, 1, 10, 10, 30, 0, 0, time.UTC)),
		sampleReview("sample-2", "李某某", "Math", "boyfriend_girlfriend", "6-12_months",
			[]string{"忠诚", "情绪稳定", "真诚付出", "幽默"},
			"Math专业的学霸，人很好，室友见了都说好。他说话有趣，经常逗得人捧腹，又极关心我的学习。虽然有时候太专注于学习，但这也是UW学生的通病。期末期间会给我买Tim Hortons，还会陪我在DC图书馆刷夜。",
			time.Date(2025, 1, 12, 14, 20, 0, 0, time.UTC)),
	}
}

func sampleReview(id, name, program, relationship, duration string, labels []string, content string, submitted time.Time) models.ReviewRecord {
	tags := make([]models.Tag, 0, len(labels))
	for _, l := range labels {
		polarity, ok := models.TagVocabulary[l]
		if !ok {
			polarity = models.PolarityNeutral
		}
		tags = append(tags, models.Tag{Label: l, Polarity: polarity})
	}
	return models.ReviewRecord{
		ID:             id,
		SubmissionDate: submitted,
		Status:         models.StatusApproved,
		TargetInfo: models.TargetInfo{
			Name:        name,
			DisplayName: privacy.MaskName(name),
			Program:     &program,
		},
		RelationshipInfo: models.RelationshipInfo{Type: relationship, Duration: &duration},
		Review: models.ReviewBody{
			Tags:            tags,
			Content:         content,
			OriginalContent: content,
		},
		Evidence: []models.Evidence{},
	}
}

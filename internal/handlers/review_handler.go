package handlers

import (
	"io"
	"mime/multipart"

	"github.com/gofiber/fiber/v2"

	"github.com/uwdate/review-backend/internal/attachments"
	"github.com/uwdate/review-backend/internal/dto"
	"github.com/uwdate/review-backend/internal/services"
)

const (
	submitSuccessMessage = "评价提交成功，我们将在30分钟内完成审核"
	submitFailedMessage  = "提交失败，请稍后重试"
)

type ReviewHandler struct {
	reviews   *services.ReviewService
	search    *services.SearchIndex
	scheduler *services.ModerationScheduler
}

func NewReviewHandler(reviews *services.ReviewService, search *services.SearchIndex, scheduler *services.ModerationScheduler) *ReviewHandler {
	return &ReviewHandler{reviews: reviews, search: search, scheduler: scheduler}
}

// Submit accepts a review as multipart form data (with optional "evidence"
// files) or as a JSON body, and schedules its automatic promotion.
func (h *ReviewHandler) Submit(c *fiber.Ctx) error {
	var (
		in      services.SubmitInput
		uploads []attachments.Upload
	)

	if c.Is("json") {
		var req dto.SubmitReviewRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: "Invalid request body",
			})
		}
		in = submitInputFromRequest(&req)
	} else {
		form, err := c.MultipartForm()
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: "Invalid request body",
			})
		}
		in = submitInputFromForm(form)
		uploads = uploadsFromForm(form)
	}
	in.IP = c.IP()
	in.UserAgent = c.Get(fiber.HeaderUserAgent)

	rec, err := h.reviews.Submit(c.UserContext(), in, uploads)
	if err != nil {
		return respondError(c, err, submitFailedMessage)
	}

	h.scheduler.Schedule(rec.ID, h.scheduler.Delay())

	return c.JSON(dto.SubmitReviewResponse{
		Success:  true,
		Message:  submitSuccessMessage,
		ReviewID: rec.ID,
	})
}

func submitInputFromRequest(req *dto.SubmitReviewRequest) services.SubmitInput {
	return services.SubmitInput{
		ReviewerName:     req.ReviewerName,
		ReviewerEmail:    req.ReviewerEmail,
		TargetName:       req.TargetName,
		TargetProgram:    req.TargetProgram,
		Relationship:     req.Relationship,
		Duration:         req.Duration,
		Tags:             req.Tags,
		TagTypes:         req.TagTypes,
		Content:          req.Content,
		TruthDeclaration: bool(req.TruthDeclaration),
		PrivacyAgreement: bool(req.PrivacyAgreement),
	}
}

func submitInputFromForm(form *multipart.Form) services.SubmitInput {
	value := func(key string) string {
		if v := form.Value[key]; len(v) > 0 {
			return v[0]
		}
		return ""
	}
	return services.SubmitInput{
		ReviewerName:     value("reviewerName"),
		ReviewerEmail:    value("reviewerEmail"),
		TargetName:       value("targetName"),
		TargetProgram:    value("targetProgram"),
		Relationship:     value("relationship"),
		Duration:         value("duration"),
		Tags:             form.Value["tags"],
		TagTypes:         form.Value["tagTypes"],
		Content:          value("content"),
		TruthDeclaration: dto.ParseFlag(value("truthDeclaration")),
		PrivacyAgreement: dto.ParseFlag(value("privacyAgreement")),
	}
}

func uploadsFromForm(form *multipart.Form) []attachments.Upload {
	files := form.File["evidence"]
	uploads := make([]attachments.Upload, 0, len(files))
	for _, fh := range files {
		uploads = append(uploads, attachments.Upload{
			OriginalName: fh.Filename,
			ContentType:  fh.Header.Get(fiber.HeaderContentType),
			Size:         fh.Size,
			Open:         func() (io.ReadCloser, error) { return fh.Open() },
		})
	}
	return uploads
}

func (h *ReviewHandler) List(c *fiber.Ctx) error {
	return c.JSON(h.reviews.ListApproved(c.UserContext()))
}

func (h *ReviewHandler) Search(c *fiber.Ctx) error {
	result, err := h.search.Search(c.UserContext(), c.Query("q"))
	if err != nil {
		return respondError(c, err, "Search failed")
	}
	return c.JSON(result)
}

func (h *ReviewHandler) Stats(c *fiber.Ctx) error {
	return c.JSON(dto.NewStatsResponse(h.reviews.Stats(c.UserContext())))
}

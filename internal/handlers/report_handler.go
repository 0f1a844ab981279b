package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/uwdate/review-backend/internal/dto"
	"github.com/uwdate/review-backend/internal/services"
)

type ReportHandler struct {
	ledger *services.ReportLedger
}

func NewReportHandler(ledger *services.ReportLedger) *ReportHandler {
	return &ReportHandler{ledger: ledger}
}

func (h *ReportHandler) Create(c *fiber.Ctx) error {
	var req dto.ReportReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	report, err := h.ledger.File(c.UserContext(), services.FileReportInput{
		ReviewID:      c.Params("reviewId"),
		Reason:        req.Reason,
		Details:       req.Details,
		ReporterEmail: req.ReporterEmail,
		IP:            c.IP(),
	})
	if err != nil {
		return respondError(c, err, "Failed to submit report")
	}

	return c.JSON(dto.ReportReviewResponse{
		Success:  true,
		Message:  "举报已提交，我们将在24小时内处理",
		ReportID: report.ID,
	})
}

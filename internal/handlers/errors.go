package handlers

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/uwdate/review-backend/internal/attachments"
	"github.com/uwdate/review-backend/internal/dto"
	"github.com/uwdate/review-backend/internal/services"
)

// respondError maps service errors to a response. Validation and attachment
// errors are shown to the caller; anything else is logged and replaced by
// fallback.
func respondError(c *fiber.Ctx, err error, fallback string) error {
	var verr *services.ValidationError
	if errors.As(err, &verr) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: verr.Message, Details: verr.Fields,
		})
	}

	var aerr *attachments.Error
	if errors.As(err, &aerr) {
		resp := dto.ErrorResponse{Error: true, Message: attachmentMessage(aerr)}
		if aerr.File != "" {
			resp.Details = []string{aerr.File}
		}
		return c.Status(fiber.StatusBadRequest).JSON(resp)
	}

	slog.Error("request failed",
		"method", c.Method(),
		"path", c.Path(),
		"request_id", requestID(c),
		"error", err,
	)
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
		Error: true, Message: fallback,
	})
}

func attachmentMessage(err *attachments.Error) string {
	switch {
	case errors.Is(err, attachments.ErrTooManyFiles):
		return "最多只能上传5个文件"
	case errors.Is(err, attachments.ErrFileTooLarge):
		return "单个文件不能超过10MB"
	default:
		return "只允许上传图片文件"
	}
}

func requestID(c *fiber.Ctx) string {
	if id, ok := c.Locals("requestid").(string); ok {
		return id
	}
	return c.GetRespHeader(fiber.HeaderXRequestID)
}

package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/uwdate/review-backend/internal/attachments"
	"github.com/uwdate/review-backend/internal/dto"
	"github.com/uwdate/review-backend/internal/models"
	"github.com/uwdate/review-backend/internal/services"
)

// ConfigHandler exposes the vocabulary the submission form is built from.
type ConfigHandler struct {
	config dto.FormConfig
}

func NewConfigHandler() *ConfigHandler {
	tags := make(map[string]string, len(models.TagVocabulary))
	for label, polarity := range models.TagVocabulary {
		tags[label] = string(polarity)
	}
	return &ConfigHandler{config: dto.FormConfig{
		RelationshipTypes: models.RelationshipTypes,
		DurationBuckets:   models.DurationBuckets,
		Tags:              tags,
		MaxFiles:          attachments.MaxFiles,
		MaxFileSize:       attachments.MaxFileSize,
		MaxContentLength:  services.MaxContentLength,
		MinQueryLength:    services.MinQueryLength,
	}}
}

func (h *ConfigHandler) GetConfig(c *fiber.Ctx) error {
	return c.JSON(h.config)
}

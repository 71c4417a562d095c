package handlers

import (
	"encoding/json"

	apperrors "cashon/internal/errors"
	"cashon/internal/logger"
	"cashon/internal/services/deposit"
	"cashon/internal/utils"

	"github.com/gofiber/fiber/v2"
)

type WebhookHandler struct {
	deposits *deposit.Service
}

func NewWebhookHandler(deposits *deposit.Service) *WebhookHandler {
	return &WebhookHandler{deposits: deposits}
}

// Cashonrails receives provider callbacks. Anything that parses is
// acknowledged with 200 so the provider does not retry on business
// outcomes; only malformed payloads get a 400.
func (h *WebhookHandler) Cashonrails(c *fiber.Ctx) error {
	var ev deposit.Event
	if err := json.Unmarshal(c.Body(), &ev); err != nil {
		logger.Warn().Err(err).Int("size", len(c.Body())).Msg("unparseable webhook body")
		return utils.Respond(c, fiber.StatusBadRequest, deposit.Ack{Success: false, Message: "invalid payload"})
	}

	ack, err := h.deposits.Ingest(c.UserContext(), &ev)
	if err != nil {
		message := "invalid payload"
		if de, ok := apperrors.As(err); ok {
			message = de.Message
		}
		return utils.Respond(c, fiber.StatusBadRequest, deposit.Ack{Success: false, Message: message})
	}
	return utils.Success(c, ack)
}

package handlers

import (
	"cashon/internal/services/activity"
	"cashon/internal/services/notification"
	"cashon/internal/utils"

	"github.com/gofiber/fiber/v2"
)

// InboxHandler serves the notification inbox and the activity feed.
type InboxHandler struct {
	notifications *notification.Service
	activities    *activity.Service
}

func NewInboxHandler(notifications *notification.Service, activities *activity.Service) *InboxHandler {
	return &InboxHandler{notifications: notifications, activities: activities}
}

func (h *InboxHandler) ListNotifications(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	p := utils.GetPagination(c, 20, 100)
	items, err := h.notifications.List(c.UserContext(), claims.UserID, p.Limit, p.Offset)
	if err != nil {
		return utils.RespondError(c, err)
	}
	return utils.Success(c, utils.NewPaginatedResponse(items, p))
}

func (h *InboxHandler) MarkRead(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}
	id, err := paramID(c, "id")
	if err != nil {
		return utils.RespondError(c, err)
	}

	if err := h.notifications.MarkRead(c.UserContext(), id, claims.UserID); err != nil {
		return utils.RespondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *InboxHandler) ListActivities(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	p := utils.GetPagination(c, 20, 100)
	items, err := h.activities.List(c.UserContext(), claims.UserID, p.Limit, p.Offset)
	if err != nil {
		return utils.RespondError(c, err)
	}
	return utils.Success(c, utils.NewPaginatedResponse(items, p))
}

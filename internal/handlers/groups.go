package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/yatube/community/internal/services"
	"github.com/yatube/community/pkg/logger"
	"github.com/yatube/community/pkg/utils"
)

const adminGroupsPageSize = 50

// GroupsHandler is the admin-only API for managing communities.
type GroupsHandler struct {
	Groups *services.GroupService
}

func NewGroupsHandler(groups *services.GroupService) *GroupsHandler {
	return &GroupsHandler{Groups: groups}
}

func (h *GroupsHandler) Create(c *fiber.Ctx) error {
	var req services.GroupInput
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	group, err := h.Groups.Create(c.UserContext(), req)
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		return utils.ValidationFailed(c, verr.Fields)
	case errors.Is(err, services.ErrConflict):
		return utils.Error(c, fiber.StatusConflict, "slug already in use")
	case err != nil:
		logger.ErrorWithUser(actorID(c), "group_create_failed", err, nil)
		return utils.Error(c, fiber.StatusInternalServerError, "failed creating group")
	}

	return utils.Success(c, fiber.StatusCreated, group)
}

func (h *GroupsHandler) List(c *fiber.Ctx) error {
	groups, err := h.Groups.List(c.UserContext())
	if err != nil {
		logger.ErrorWithUser(actorID(c), "group_list_failed", err, nil)
		return utils.Error(c, fiber.StatusInternalServerError, "failed listing groups")
	}

	items, page := utils.Paginate(groups, adminGroupsPageSize, pageNumber(c))
	return utils.Paginated(c, items, page)
}

func (h *GroupsHandler) Delete(c *fiber.Ctx) error {
	slug := c.Params("slug")
	err := h.Groups.Delete(c.UserContext(), slug)
	switch {
	case errors.Is(err, services.ErrNotFound):
		return utils.Error(c, fiber.StatusNotFound, "group not found")
	case err != nil:
		logger.ErrorWithUser(actorID(c), "group_delete_failed", err, map[string]interface{}{"slug": slug})
		return utils.Error(c, fiber.StatusInternalServerError, "failed deleting group")
	}

	logger.InfoWithUser(actorID(c), "group_deleted_by_admin", map[string]interface{}{"slug": slug})
	return utils.Success(c, fiber.StatusOK, fiber.Map{"deleted": slug})
}

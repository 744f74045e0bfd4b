package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/yatube/community/internal/middleware"
	"github.com/yatube/community/internal/models"
	"github.com/yatube/community/internal/services"
	"github.com/yatube/community/pkg/logger"
	"github.com/yatube/community/pkg/utils"
)

const editActionText = "Редактировать"

type PagesHandler struct {
	Feed   *services.FeedService
	Posts  *services.PostService
	Groups *services.GroupService
}

func NewPagesHandler(feed *services.FeedService, posts *services.PostService, groups *services.GroupService) *PagesHandler {
	return &PagesHandler{Feed: feed, Posts: posts, Groups: groups}
}

// postForm is what the new_post view shows: the submitted values and the
// errors attached to them.
type postForm struct {
	Text   string            `json:"text"`
	Group  string            `json:"group"`
	Errors map[string]string `json:"errors,omitempty"`
}

func formFromPost(post *models.Post) postForm {
	form := postForm{Text: post.Text}
	if post.Group != nil {
		form.Group = post.Group.Slug
	}
	return form
}

func pageNumber(c *fiber.Ctx) int {
	return utils.ParsePageNumber(c.Query("page"))
}

func (h *PagesHandler) Index(c *fiber.Ctx) error {
	feed, err := h.Feed.Global(c.UserContext(), pageNumber(c))
	if err != nil {
		return pageError(c, err)
	}
	return render(c, fiber.StatusOK, "index", fiber.Map{
		"page":  feed.Page,
		"posts": feed.Posts,
	})
}

func (h *PagesHandler) Group(c *fiber.Ctx) error {
	feed, err := h.Feed.Group(c.UserContext(), c.Params("slug"), pageNumber(c))
	if err != nil {
		return pageError(c, err)
	}
	return render(c, fiber.StatusOK, "group", fiber.Map{
		"group": feed.Group,
		"page":  feed.Page,
		"posts": feed.Posts,
	})
}

func (h *PagesHandler) Profile(c *fiber.Ctx) error {
	feed, err := h.Feed.Author(c.UserContext(), c.Params("username"), pageNumber(c))
	if err != nil {
		return pageError(c, err)
	}
	return render(c, fiber.StatusOK, "profile", fiber.Map{
		"profile_user":    feed.Author,
		"user_post_count": feed.PostCount,
		"page":            feed.Page,
		"posts":           feed.Posts,
	})
}

func (h *PagesHandler) Post(c *fiber.Ctx) error {
	detail, err := h.Feed.Post(c.UserContext(), c.Params("username"), c.Params("post_id"))
	if err != nil {
		return pageError(c, err)
	}
	return render(c, fiber.StatusOK, "post", fiber.Map{
		"profile_user":    detail.Author,
		"user_post_count": detail.PostCount,
		"post":            detail.Post,
		"can_edit":        services.CanEdit(middleware.GetCurrentUser(c), &detail.Post),
	})
}

func (h *PagesHandler) NewForm(c *fiber.Ctx) error {
	return h.renderForm(c, fiber.StatusOK, postForm{}, nil)
}

func (h *PagesHandler) Create(c *fiber.Ctx) error {
	var input services.PostInput
	if err := c.BodyParser(&input); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	_, err := h.Posts.Create(c.UserContext(), middleware.GetCurrentUser(c), input)
	var verr *services.ValidationError
	if errors.As(err, &verr) {
		form := postForm{Text: input.Text, Group: input.GroupSlug, Errors: verr.Fields}
		return h.renderForm(c, fiber.StatusUnprocessableEntity, form, nil)
	}
	if err != nil {
		return pageError(c, err)
	}
	return c.Redirect("/", fiber.StatusFound)
}

func (h *PagesHandler) EditForm(c *fiber.Ctx) error {
	post, err := h.Posts.Load(c.UserContext(), middleware.GetCurrentUser(c), c.Params("username"), c.Params("post_id"))
	if err != nil {
		if errors.Is(err, services.ErrForbidden) {
			logger.WarnWithUser(actorID(c), "post_edit_form_forbidden", map[string]interface{}{
				"post_id": post.ID.String(),
			})
		}
		return pageError(c, err)
	}
	return h.renderForm(c, fiber.StatusOK, formFromPost(post), post)
}

func (h *PagesHandler) Edit(c *fiber.Ctx) error {
	var input services.PostInput
	if err := c.BodyParser(&input); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	username, postID := c.Params("username"), c.Params("post_id")
	actor := middleware.GetCurrentUser(c)

	_, err := h.Posts.Edit(c.UserContext(), actor, username, postID, input)
	var verr *services.ValidationError
	if errors.As(err, &verr) {
		post, loadErr := h.Posts.Load(c.UserContext(), actor, username, postID)
		if loadErr != nil {
			return pageError(c, loadErr)
		}
		form := postForm{Text: input.Text, Group: input.GroupSlug, Errors: verr.Fields}
		return h.renderForm(c, fiber.StatusUnprocessableEntity, form, post)
	}
	if err != nil {
		return pageError(c, err)
	}
	return c.Redirect("/"+username+"/"+postID, fiber.StatusFound)
}

// renderForm shows new_post. A non-nil post switches it into edit mode.
func (h *PagesHandler) renderForm(c *fiber.Ctx, status int, form postForm, post *models.Post) error {
	groups, err := h.Groups.List(c.UserContext())
	if err != nil {
		return err
	}

	bind := fiber.Map{
		"form":   form,
		"groups": groups,
	}
	if post != nil {
		bind["action_text"] = editActionText
		bind["post"] = post
	}
	return render(c, status, "new_post", bind)
}

package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yatube/community/internal/models"
	"github.com/yatube/community/pkg/logger"
	"gorm.io/gorm"
)

// PostInput is the submitted post form. An empty GroupSlug means no group.
type PostInput struct {
	Text      string `json:"text" form:"text"`
	GroupSlug string `json:"group" form:"group"`
}

// ValidatePost normalizes input and checks the fields that need no
// database access.
func ValidatePost(input PostInput) (PostInput, error) {
	input.Text = strings.TrimSpace(input.Text)
	input.GroupSlug = strings.TrimSpace(input.GroupSlug)

	if input.Text == "" {
		return input, fieldError("text", msgRequired)
	}
	return input, nil
}

type PostService struct {
	DB     *gorm.DB
	Events EventPublisher
	now    func() time.Time
}

func NewPostService(db *gorm.DB, events EventPublisher) *PostService {
	if events == nil {
		events = NoopPublisher{}
	}
	return &PostService{DB: db, Events: events, now: time.Now}
}

func (s *PostService) Create(ctx context.Context, actor *models.User, input PostInput) (*models.Post, error) {
	if actor == nil {
		return nil, ErrUnauthenticated
	}

	input, err := ValidatePost(input)
	if err != nil {
		return nil, err
	}

	group, err := s.resolveGroup(ctx, input.GroupSlug)
	if err != nil {
		return nil, err
	}

	post := models.Post{
		Text:     input.Text,
		PubDate:  s.now().UTC(),
		AuthorID: actor.ID,
	}
	if group != nil {
		post.GroupID = &group.ID
	}

	if err := s.DB.WithContext(ctx).Omit("Author", "Group").Create(&post).Error; err != nil {
		return nil, fmt.Errorf("creating post: %w", err)
	}
	post.Author = *actor
	post.Group = group

	logger.InfoWithUser(actor.ID.String(), "post_created", map[string]interface{}{
		"post_id": post.ID.String(),
		"group":   input.GroupSlug,
	})

	if err := s.Events.PublishPostCreated(ctx, &post); err != nil {
		logger.ErrorWithUser(actor.ID.String(), "post_event_publish_failed", err, map[string]interface{}{
			"post_id": post.ID.String(),
			"event":   "created",
		})
	}

	return &post, nil
}

// Load returns the post behind the edit form, applying the same lookup and
// ownership rules as Edit.
func (s *PostService) Load(ctx context.Context, actor *models.User, username, postID string) (*models.Post, error) {
	post, err := findAuthoredPost(ctx, s.DB, username, postID)
	if err != nil {
		return nil, err
	}
	if !CanEdit(actor, post) {
		return post, ErrForbidden
	}
	return post, nil
}

// Edit replaces the text and group of a post. The publication date is never
// touched. Concurrent edits are last-writer-wins.
func (s *PostService) Edit(ctx context.Context, actor *models.User, username, postID string, input PostInput) (*models.Post, error) {
	post, err := s.Load(ctx, actor, username, postID)
	if err != nil {
		if errors.Is(err, ErrForbidden) {
			actorID := "anonymous"
			if actor != nil {
				actorID = actor.ID.String()
			}
			logger.WarnWithUser(actorID, "post_edit_forbidden", map[string]interface{}{
				"post_id":   post.ID.String(),
				"author_id": post.AuthorID.String(),
			})
		}
		return nil, err
	}

	input, err = ValidatePost(input)
	if err != nil {
		return nil, err
	}

	group, err := s.resolveGroup(ctx, input.GroupSlug)
	if err != nil {
		return nil, err
	}

	var groupID *uuid.UUID
	var groupValue interface{}
	if group != nil {
		groupID = &group.ID
		groupValue = group.ID
	}

	err = s.DB.WithContext(ctx).
		Model(&models.Post{}).
		Where("id = ?", post.ID).
		Updates(map[string]interface{}{
			"text":       input.Text,
			"group_id":   groupValue,
			"updated_at": s.now().UTC(),
		}).Error
	if err != nil {
		return nil, fmt.Errorf("updating post %s: %w", post.ID, err)
	}

	post.Text = input.Text
	post.GroupID = groupID
	post.Group = group

	logger.InfoWithUser(actor.ID.String(), "post_updated", map[string]interface{}{
		"post_id": post.ID.String(),
		"group":   input.GroupSlug,
	})

	if err := s.Events.PublishPostUpdated(ctx, post); err != nil {
		logger.ErrorWithUser(actor.ID.String(), "post_event_publish_failed", err, map[string]interface{}{
			"post_id": post.ID.String(),
			"event":   "updated",
		})
	}

	return post, nil
}

func (s *PostService) resolveGroup(ctx context.Context, slug string) (*models.Group, error) {
	if slug == "" {
		return nil, nil
	}

	var group models.Group
	if err := s.DB.WithContext(ctx).First(&group, "slug = ?", slug).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fieldError("group", msgInvalidChoice)
		}
		return nil, fmt.Errorf("loading group %q: %w", slug, err)
	}
	return &group, nil
}

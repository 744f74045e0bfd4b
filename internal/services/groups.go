package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/yatube/community/internal/models"
	"github.com/yatube/community/pkg/logger"
	"gorm.io/gorm"
)

var slugPattern = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)

const (
	groupTitleMaxLength = 200
	groupSlugMaxLength  = 255
)

type GroupInput struct {
	Title       string `json:"title"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
}

func ValidateGroup(input GroupInput) (GroupInput, error) {
	input.Title = strings.TrimSpace(input.Title)
	input.Slug = strings.TrimSpace(input.Slug)
	input.Description = strings.TrimSpace(input.Description)

	verr := &ValidationError{}
	switch {
	case input.Title == "":
		verr.add("title", msgRequired)
	case utf8.RuneCountInString(input.Title) > groupTitleMaxLength:
		verr.add("title", fmt.Sprintf("Ensure this value has at most %d characters.", groupTitleMaxLength))
	}
	switch {
	case input.Slug == "":
		verr.add("slug", msgRequired)
	case len(input.Slug) > groupSlugMaxLength:
		verr.add("slug", fmt.Sprintf("Ensure this value has at most %d characters.", groupSlugMaxLength))
	case !slugPattern.MatchString(input.Slug):
		verr.add("slug", "Enter a valid slug consisting of letters, numbers, underscores or hyphens.")
	}
	if utf8.RuneCountInString(input.Description) > models.GroupDescriptionMaxLength {
		verr.add("description", fmt.Sprintf("Ensure this value has at most %d characters.", models.GroupDescriptionMaxLength))
	}

	return input, verr.orNil()
}

type GroupService struct {
	DB *gorm.DB
}

func NewGroupService(db *gorm.DB) *GroupService {
	return &GroupService{DB: db}
}

func (s *GroupService) Create(ctx context.Context, input GroupInput) (*models.Group, error) {
	input, err := ValidateGroup(input)
	if err != nil {
		return nil, err
	}

	var existing int64
	if err := s.DB.WithContext(ctx).Model(&models.Group{}).Where("slug = ?", input.Slug).Count(&existing).Error; err != nil {
		return nil, fmt.Errorf("checking slug: %w", err)
	}
	if existing > 0 {
		return nil, fmt.Errorf("group %q: %w", input.Slug, ErrConflict)
	}

	group := models.Group{
		Title:       input.Title,
		Slug:        input.Slug,
		Description: input.Description,
	}
	if err := s.DB.WithContext(ctx).Create(&group).Error; err != nil {
		return nil, fmt.Errorf("creating group: %w", err)
	}

	logger.Info("group_created", map[string]interface{}{
		"group_id": group.ID.String(),
		"slug":     group.Slug,
	})

	return &group, nil
}

func (s *GroupService) List(ctx context.Context) ([]models.Group, error) {
	var groups []models.Group
	if err := s.DB.WithContext(ctx).Order("title ASC").Find(&groups).Error; err != nil {
		return nil, fmt.Errorf("listing groups: %w", err)
	}
	return groups, nil
}

func (s *GroupService) GetBySlug(ctx context.Context, slug string) (*models.Group, error) {
	var group models.Group
	if err := s.DB.WithContext(ctx).First(&group, "slug = ?", slug).Error; err != nil {
		return nil, notFound(err, "group %q", slug)
	}
	return &group, nil
}

// Delete removes a group. Its posts survive with no group.
func (s *GroupService) Delete(ctx context.Context, slug string) error {
	group, err := s.GetBySlug(ctx, slug)
	if err != nil {
		return err
	}

	var detached int64
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Post{}).Where("group_id = ?", group.ID).Update("group_id", nil)
		if result.Error != nil {
			return result.Error
		}
		detached = result.RowsAffected
		return tx.Delete(&models.Group{}, "id = ?", group.ID).Error
	})
	if err != nil {
		return fmt.Errorf("deleting group %q: %w", slug, err)
	}

	logger.Info("group_deleted", map[string]interface{}{
		"group_id":       group.ID.String(),
		"slug":           group.Slug,
		"posts_detached": detached,
	})
	return nil
}

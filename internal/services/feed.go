package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/yatube/community/internal/models"
	"github.com/yatube/community/pkg/utils"
	"gorm.io/gorm"
)

const DefaultPageSize = 10

type Feed struct {
	Posts []models.Post
	Page  utils.Page
}

type GroupFeed struct {
	Feed
	Group models.Group
}

type AuthorFeed struct {
	Feed
	Author    models.User
	PostCount int64
}

type PostDetail struct {
	Post      models.Post
	Author    models.User
	PostCount int64
}

type FeedService struct {
	DB       *gorm.DB
	PageSize int
}

func NewFeedService(db *gorm.DB, pageSize int) *FeedService {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	return &FeedService{DB: db, PageSize: pageSize}
}

func (s *FeedService) Global(ctx context.Context, page int) (*Feed, error) {
	return s.paged(ctx, page, nil)
}

func (s *FeedService) Group(ctx context.Context, slug string, page int) (*GroupFeed, error) {
	var group models.Group
	if err := s.DB.WithContext(ctx).First(&group, "slug = ?", slug).Error; err != nil {
		return nil, notFound(err, "group %q", slug)
	}

	feed, err := s.paged(ctx, page, func(db *gorm.DB) *gorm.DB {
		return db.Where("posts.group_id = ?", group.ID)
	})
	if err != nil {
		return nil, err
	}

	return &GroupFeed{Feed: *feed, Group: group}, nil
}

func (s *FeedService) Author(ctx context.Context, username string, page int) (*AuthorFeed, error) {
	author, err := s.userByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	feed, err := s.paged(ctx, page, byAuthor(author.ID))
	if err != nil {
		return nil, err
	}

	// Count is taken from the page so the total matches what was paginated.
	return &AuthorFeed{Feed: *feed, Author: *author, PostCount: feed.Page.Total}, nil
}

// Post loads a single post, which must belong to username.
func (s *FeedService) Post(ctx context.Context, username, postID string) (*PostDetail, error) {
	post, err := findAuthoredPost(ctx, s.DB, username, postID)
	if err != nil {
		return nil, err
	}

	var count int64
	if err := s.DB.WithContext(ctx).Model(&models.Post{}).Scopes(byAuthor(post.AuthorID)).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("counting posts: %w", err)
	}

	return &PostDetail{Post: *post, Author: post.Author, PostCount: count}, nil
}

func (s *FeedService) paged(ctx context.Context, number int, scope func(*gorm.DB) *gorm.DB) (*Feed, error) {
	query := func() *gorm.DB {
		db := s.DB.WithContext(ctx).Model(&models.Post{})
		if scope != nil {
			db = db.Scopes(scope)
		}
		return db
	}

	var total int64
	if err := query().Count(&total).Error; err != nil {
		return nil, fmt.Errorf("counting posts: %w", err)
	}

	page := utils.NewPage(total, s.PageSize, number)

	posts := make([]models.Post, 0, page.Len())
	if total > 0 {
		ordered := query().
			Preload("Author").
			Preload("Group").
			Order("posts.pub_date DESC").
			Order("posts.created_at DESC")
		if err := utils.ApplyPage(ordered, page).Find(&posts).Error; err != nil {
			return nil, fmt.Errorf("listing posts: %w", err)
		}
	}

	return &Feed{Posts: posts, Page: page}, nil
}

func (s *FeedService) userByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := s.DB.WithContext(ctx).First(&user, "username = ?", username).Error; err != nil {
		return nil, notFound(err, "user %q", username)
	}
	return &user, nil
}

func byAuthor(authorID uuid.UUID) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("posts.author_id = ?", authorID)
	}
}

// findAuthoredPost resolves the /<username>/<post_id> pair. A malformed id,
// an unknown user or a post written by someone else are all ErrNotFound.
func findAuthoredPost(ctx context.Context, db *gorm.DB, username, postID string) (*models.Post, error) {
	id, err := uuid.Parse(postID)
	if err != nil {
		return nil, fmt.Errorf("post %q: %w", postID, ErrNotFound)
	}

	var author models.User
	if err := db.WithContext(ctx).First(&author, "username = ?", username).Error; err != nil {
		return nil, notFound(err, "user %q", username)
	}

	var post models.Post
	err = db.WithContext(ctx).
		Preload("Group").
		First(&post, "posts.id = ? AND posts.author_id = ?", id, author.ID).Error
	if err != nil {
		return nil, notFound(err, "post %s", id)
	}
	post.Author = author

	return &post, nil
}

// notFound maps gorm's missing-row error onto ErrNotFound and wraps
// everything else unchanged.
func notFound(err error, format string, args ...any) error {
	what := fmt.Sprintf(format, args...)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return fmt.Errorf("loading %s: %w", what, err)
}

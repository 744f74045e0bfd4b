package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/yatube/community/internal/database"
	"github.com/yatube/community/internal/models"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(database.SQLiteDSN(":memory:")), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed opening in-memory sqlite database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed getting sql.DB from gorm: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed automigrating models: %v", err)
	}
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{Username: username, PasswordHash: "x", Role: models.UserRoleUser}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed creating test user: %v", err)
	}
	return user
}

func createTestGroup(t *testing.T, db *gorm.DB, slug string) *models.Group {
	t.Helper()
	group := &models.Group{Title: "Group " + slug, Slug: slug, Description: "test description"}
	if err := db.Create(group).Error; err != nil {
		t.Fatalf("failed creating test group: %v", err)
	}
	return group
}

// seedPosts creates n posts one minute apart, oldest first.
func seedPosts(t *testing.T, db *gorm.DB, author *models.User, group *models.Group, n int) []models.Post {
	t.Helper()
	base := time.Now().UTC().Add(-time.Duration(n) * time.Hour)
	posts := make([]models.Post, 0, n)
	for i := 1; i <= n; i++ {
		post := models.Post{
			Text:     fmt.Sprintf("%d. test post", i),
			PubDate:  base.Add(time.Duration(i) * time.Minute),
			AuthorID: author.ID,
		}
		if group != nil {
			post.GroupID = &group.ID
		}
		if err := db.Omit("Author", "Group").Create(&post).Error; err != nil {
			t.Fatalf("failed creating test post: %v", err)
		}
		posts = append(posts, post)
	}
	return posts
}

type recordedEvent struct {
	kind   string
	postID string
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []recordedEvent
	err    error
}

func (r *recordingPublisher) PublishPostCreated(_ context.Context, post *models.Post) error {
	return r.record("created", post)
}

func (r *recordingPublisher) PublishPostUpdated(_ context.Context, post *models.Post) error {
	return r.record("updated", post)
}

func (r *recordingPublisher) record(kind string, post *models.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, recordedEvent{kind: kind, postID: post.ID.String()})
	return r.err
}

func (r *recordingPublisher) recorded() []recordedEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]recordedEvent(nil), r.events...)
}

func assertValidationField(t *testing.T, err error, field string) {
	t.Helper()
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %T (%v)", err, err)
	}
	if _, ok := verr.Fields[field]; !ok {
		t.Fatalf("expected validation error on %q, got %+v", field, verr.Fields)
	}
}

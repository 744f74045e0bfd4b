package services

import (
	"context"

	"github.com/yatube/community/internal/models"
)

// EventPublisher is notified after a post write has been committed.
type EventPublisher interface {
	PublishPostCreated(ctx context.Context, post *models.Post) error
	PublishPostUpdated(ctx context.Context, post *models.Post) error
}

type NoopPublisher struct{}

func (NoopPublisher) PublishPostCreated(context.Context, *models.Post) error { return nil }
func (NoopPublisher) PublishPostUpdated(context.Context, *models.Post) error { return nil }

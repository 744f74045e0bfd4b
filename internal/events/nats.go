package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/yatube/community/internal/models"
	"github.com/yatube/community/pkg/logger"
)

const (
	KindPostCreated = "post.created"
	KindPostUpdated = "post.updated"
)

// msgPublisher is the part of *nats.Conn used here.
type msgPublisher interface {
	PublishMsg(m *nats.Msg) error
}

// PostEvent is the payload consumers of the post subjects receive.
type PostEvent struct {
	ID         string    `json:"id"`
	Kind       string    `json:"kind"`
	PostID     string    `json:"post_id"`
	AuthorID   string    `json:"author_id"`
	GroupID    *string   `json:"group_id,omitempty"`
	Excerpt    string    `json:"excerpt"`
	PubDate    time.Time `json:"pub_date"`
	OccurredAt time.Time `json:"occurred_at"`
}

type NatsPublisher struct {
	conn   msgPublisher
	prefix string
	now    func() time.Time
}

func NewNatsPublisher(nc *nats.Conn, prefix string) *NatsPublisher {
	return newPublisher(nc, prefix)
}

func newPublisher(conn msgPublisher, prefix string) *NatsPublisher {
	return &NatsPublisher{
		conn:   conn,
		prefix: strings.Trim(prefix, "."),
		now:    time.Now,
	}
}

func (p *NatsPublisher) PublishPostCreated(ctx context.Context, post *models.Post) error {
	return p.publish(ctx, KindPostCreated, post)
}

func (p *NatsPublisher) PublishPostUpdated(ctx context.Context, post *models.Post) error {
	return p.publish(ctx, KindPostUpdated, post)
}

// Subject returns the full subject for an event kind.
func (p *NatsPublisher) Subject(kind string) string {
	if p.prefix == "" {
		return kind
	}
	return p.prefix + "." + kind
}

func (p *NatsPublisher) publish(ctx context.Context, kind string, post *models.Post) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	event := NewPostEvent(kind, post, p.now())
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshalling %s event: %w", kind, err)
	}

	msg := &nats.Msg{
		Subject: p.Subject(kind),
		Data:    data,
		Header:  nats.Header{},
	}
	msg.Header.Set(nats.MsgIdHdr, event.ID)

	if err := p.conn.PublishMsg(msg); err != nil {
		return fmt.Errorf("publishing %s: %w", msg.Subject, err)
	}

	logger.Info("post_event_published", map[string]interface{}{
		"subject": msg.Subject,
		"post_id": event.PostID,
	})
	return nil
}

func NewPostEvent(kind string, post *models.Post, at time.Time) PostEvent {
	event := PostEvent{
		ID:         uuid.NewString(),
		Kind:       kind,
		PostID:     post.ID.String(),
		AuthorID:   post.AuthorID.String(),
		Excerpt:    post.Excerpt(),
		PubDate:    post.PubDate.UTC(),
		OccurredAt: at.UTC(),
	}
	if post.GroupID != nil {
		groupID := post.GroupID.String()
		event.GroupID = &groupID
	}
	return event
}

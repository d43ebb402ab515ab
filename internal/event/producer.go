package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Team-WishU/wishu-backend/internal/domain"
	pkgkafka "github.com/Team-WishU/wishu-backend/pkg/kafka"
)

// Kafka topic constants for domain events.
const (
	TopicUserRegistered      = "wishu.user.registered"
	TopicBucketCommentPosted = "wishu.bucket.comment_created"
	TopicFriendRemoved       = "wishu.friend.removed"
)

// Aggregate type constants.
const (
	AggregateTypeUser   = "user"
	AggregateTypeBucket = "shared_bucket"
)

// Source identifier for events originating from this backend.
const Source = "wishu-backend"

// UserRegisteredData is the payload for a user.registered event.
type UserRegisteredData struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Nickname string `json:"nickname"`
}

// BucketCommentPostedData is the payload for a bucket.comment_created event.
type BucketCommentPostedData struct {
	BucketID string `json:"bucket_id"`
	UserID   string `json:"user_id"`
	Text     string `json:"text"`
}

// FriendRemovedData is the payload for a friend.removed event.
type FriendRemovedData struct {
	UserID   string `json:"user_id"`
	FriendID string `json:"friend_id"`
}

// Producer publishes domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishUserRegistered publishes a user.registered event.
func (p *Producer) PublishUserRegistered(ctx context.Context, user *domain.User) error {
	data := UserRegisteredData{
		ID:       user.ID,
		Email:    user.Email,
		Nickname: user.Nickname,
	}

	event, err := pkgkafka.NewEvent(TopicUserRegistered, user.ID, AggregateTypeUser, Source, data)
	if err != nil {
		return fmt.Errorf("create user.registered event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicUserRegistered, event); err != nil {
		return fmt.Errorf("publish user.registered event: %w", err)
	}

	p.logger.DebugContext(ctx, "published user.registered event",
		slog.String("user_id", user.ID),
		slog.String("email", user.Email),
	)

	return nil
}

// PublishBucketCommentPosted publishes a bucket.comment_created event keyed
// by bucket so comment events for one bucket stay in order.
func (p *Producer) PublishBucketCommentPosted(ctx context.Context, comment *domain.Comment) error {
	data := BucketCommentPostedData{
		BucketID: comment.BucketID,
		UserID:   comment.UserID,
		Text:     comment.Text,
	}

	event, err := pkgkafka.NewEvent(TopicBucketCommentPosted, comment.BucketID, AggregateTypeBucket, Source, data)
	if err != nil {
		return fmt.Errorf("create bucket.comment_created event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicBucketCommentPosted, event); err != nil {
		return fmt.Errorf("publish bucket.comment_created event: %w", err)
	}

	p.logger.DebugContext(ctx, "published bucket.comment_created event",
		slog.String("bucket_id", comment.BucketID),
		slog.String("user_id", comment.UserID),
	)

	return nil
}

// PublishFriendRemoved publishes a friend.removed event.
func (p *Producer) PublishFriendRemoved(ctx context.Context, userID, friendID string) error {
	data := FriendRemovedData{
		UserID:   userID,
		FriendID: friendID,
	}

	event, err := pkgkafka.NewEvent(TopicFriendRemoved, userID, AggregateTypeUser, Source, data)
	if err != nil {
		return fmt.Errorf("create friend.removed event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicFriendRemoved, event); err != nil {
		return fmt.Errorf("publish friend.removed event: %w", err)
	}

	p.logger.DebugContext(ctx, "published friend.removed event",
		slog.String("user_id", userID),
		slog.String("friend_id", friendID),
	)

	return nil
}

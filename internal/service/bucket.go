package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Team-WishU/wishu-backend/internal/domain"
	"github.com/Team-WishU/wishu-backend/internal/event"
	"github.com/Team-WishU/wishu-backend/internal/repository"
	apperrors "github.com/Team-WishU/wishu-backend/pkg/errors"
)

// maxCommentLength bounds a single comment, matching the column size.
const maxCommentLength = 1000

// BucketService implements the business logic for shared buckets: pairwise
// get-or-create, the live shared wishlist view, and the comment log.
type BucketService struct {
	bucketRepo  repository.BucketRepository
	productRepo repository.ProductRepository
	userRepo    repository.UserRepository
	friendRepo  repository.FriendshipRepository
	producer    *event.Producer
	logger      *slog.Logger
}

// NewBucketService creates a new bucket service.
func NewBucketService(
	bucketRepo repository.BucketRepository,
	productRepo repository.ProductRepository,
	userRepo repository.UserRepository,
	friendRepo repository.FriendshipRepository,
	producer *event.Producer,
	logger *slog.Logger,
) *BucketService {
	return &BucketService{
		bucketRepo:  bucketRepo,
		productRepo: productRepo,
		userRepo:    userRepo,
		friendRepo:  friendRepo,
		producer:    producer,
		logger:      logger,
	}
}

// BucketView is a bucket together with the resolved display identities of
// its two participants.
type BucketView struct {
	Bucket        *domain.SharedBucket `json:"bucket"`
	Collaborators []domain.Identity    `json:"collaborators"`
}

// GetOrCreate returns the caller's shared bucket with the given friend,
// creating it if this is their first visit. Requires an existing friendship.
// Concurrent first visits by both users converge on the same bucket.
func (s *BucketService) GetOrCreate(ctx context.Context, callerID, friendID string) (*BucketView, error) {
	key, err := domain.NewPairKey(callerID, friendID)
	if err != nil {
		return nil, err
	}

	friends, err := s.friendRepo.AreFriends(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("check friendship: %w", err)
	}
	if !friends {
		return nil, apperrors.Forbidden("shared buckets require an existing friendship")
	}

	bucket, created, err := s.bucketRepo.GetOrCreate(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("get or create bucket: %w", err)
	}

	if created {
		s.logger.InfoContext(ctx, "shared bucket created",
			slog.String("bucket_id", bucket.ID),
			slog.String("user_lo", key.Lo),
			slog.String("user_hi", key.Hi),
		)
	}

	collaborators, err := s.userRepo.GetIdentities(ctx, bucket.Participants)
	if err != nil {
		return nil, fmt.Errorf("resolve collaborators: %w", err)
	}

	return &BucketView{Bucket: bucket, Collaborators: collaborators}, nil
}

// PairWishlist is the combined view behind the pair wishlist entry point:
// the bucket id, both collaborators, and the union of their saved products.
type PairWishlist struct {
	BucketID      string            `json:"bucketId"`
	Collaborators []domain.Identity `json:"collaborators"`
	Items         []domain.Product  `json:"items"`
}

// WishlistWithFriend returns the caller's shared wishlist with the given
// friend, creating the backing bucket on their first visit.
func (s *BucketService) WishlistWithFriend(ctx context.Context, callerID, friendID string) (*PairWishlist, error) {
	view, err := s.GetOrCreate(ctx, callerID, friendID)
	if err != nil {
		return nil, err
	}

	products, err := s.productRepo.FindSavedByUsers(ctx, view.Bucket.Participants)
	if err != nil {
		return nil, fmt.Errorf("find saved products: %w", err)
	}

	wl := domain.BuildSharedWishlist(products, view.Bucket.Participants)
	return &PairWishlist{
		BucketID:      view.Bucket.ID,
		Collaborators: view.Collaborators,
		Items:         wl.Items,
	}, nil
}

// BucketSummary is one entry of the caller's bucket listing: collaborators
// plus the pair's current wishlist, grouped by owner.
type BucketSummary struct {
	BucketID      string                      `json:"bucketId"`
	Collaborators []domain.Identity           `json:"collaborators"`
	Items         []domain.Product            `json:"items"`
	ItemsByUser   map[string][]domain.Product `json:"itemsByUserId"`
}

// FindMine returns all buckets the caller participates in, each with its
// collaborators resolved and its wishlist recomputed.
func (s *BucketService) FindMine(ctx context.Context, callerID string) ([]BucketSummary, error) {
	buckets, err := s.bucketRepo.FindByUser(ctx, callerID)
	if err != nil {
		return nil, fmt.Errorf("find buckets: %w", err)
	}

	summaries := make([]BucketSummary, 0, len(buckets))
	for i := range buckets {
		bucket := &buckets[i]
		collaborators, err := s.userRepo.GetIdentities(ctx, bucket.Participants)
		if err != nil {
			return nil, fmt.Errorf("resolve collaborators: %w", err)
		}
		products, err := s.productRepo.FindSavedByUsers(ctx, bucket.Participants)
		if err != nil {
			return nil, fmt.Errorf("find saved products: %w", err)
		}
		wl := domain.BuildSharedWishlist(products, bucket.Participants)
		summaries = append(summaries, BucketSummary{
			BucketID:      bucket.ID,
			Collaborators: collaborators,
			Items:         wl.Items,
			ItemsByUser:   wl.ByParticipant,
		})
	}
	return summaries, nil
}

// SharedWishlist recomputes the bucket's wishlist view from the live save
// state of both participants. Nothing is persisted: a wish removed elsewhere
// is gone from the very next read.
func (s *BucketService) SharedWishlist(ctx context.Context, callerID, bucketID string) (*domain.SharedWishlist, error) {
	bucket, err := s.authorizedBucket(ctx, callerID, bucketID)
	if err != nil {
		return nil, err
	}

	products, err := s.productRepo.FindSavedByUsers(ctx, bucket.Participants)
	if err != nil {
		return nil, fmt.Errorf("find saved products: %w", err)
	}

	view := domain.BuildSharedWishlist(products, bucket.Participants)
	return &view, nil
}

// CommentedBucket is the result of posting a comment: the bucket, the comment
// that was appended, and the full ordered log as it stands after the append.
type CommentedBucket struct {
	Bucket   *domain.SharedBucket `json:"bucket"`
	Comment  *domain.Comment      `json:"comment"`
	Comments []domain.Comment     `json:"comments"`
}

// PostComment validates and appends a comment to the bucket's log,
// snapshotting the author's display identity at posting time. It returns the
// updated log so the caller sees the bucket exactly as it stands after the
// append.
func (s *BucketService) PostComment(ctx context.Context, callerID, bucketID, text string) (*CommentedBucket, error) {
	bucket, comment, err := s.appendComment(ctx, callerID, bucketID, text)
	if err != nil {
		return nil, err
	}

	comments, err := s.bucketRepo.ListComments(ctx, bucketID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}

	return &CommentedBucket{Bucket: bucket, Comment: comment, Comments: comments}, nil
}

// AppendComment appends a comment and returns only the persisted comment.
// Used by the realtime layer, which broadcasts the comment snapshot and never
// needs the full log.
func (s *BucketService) AppendComment(ctx context.Context, callerID, bucketID, text string) (*domain.Comment, error) {
	_, comment, err := s.appendComment(ctx, callerID, bucketID, text)
	if err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *BucketService) appendComment(ctx context.Context, callerID, bucketID, text string) (*domain.SharedBucket, *domain.Comment, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil, apperrors.InvalidInput("comment text must not be empty")
	}
	if len(text) > maxCommentLength {
		return nil, nil, apperrors.InvalidInput("comment text is too long")
	}

	bucket, err := s.authorizedBucket(ctx, callerID, bucketID)
	if err != nil {
		return nil, nil, err
	}

	author, err := s.userRepo.GetByID(ctx, callerID)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve comment author: %w", err)
	}

	comment := &domain.Comment{
		UserID:       author.ID,
		Nickname:     author.Nickname,
		ProfileImage: author.ProfileImage,
		Text:         text,
	}
	if err := s.bucketRepo.AppendComment(ctx, bucketID, comment); err != nil {
		return nil, nil, fmt.Errorf("append comment: %w", err)
	}

	// Publish the event (non-blocking on failure).
	if err := s.producer.PublishBucketCommentPosted(ctx, comment); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish bucket.comment_created event",
			slog.String("bucket_id", bucketID),
			slog.String("error", err.Error()),
		)
	}

	return bucket, comment, nil
}

// ListComments returns the bucket's full comment log in append order.
func (s *BucketService) ListComments(ctx context.Context, callerID, bucketID string) ([]domain.Comment, error) {
	if _, err := s.authorizedBucket(ctx, callerID, bucketID); err != nil {
		return nil, err
	}

	comments, err := s.bucketRepo.ListComments(ctx, bucketID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return comments, nil
}

// AuthorizeParticipant checks that the caller is a participant of the bucket
// and returns it. Used by the realtime layer before admitting a client to a
// bucket room.
func (s *BucketService) AuthorizeParticipant(ctx context.Context, callerID, bucketID string) (*domain.SharedBucket, error) {
	return s.authorizedBucket(ctx, callerID, bucketID)
}

// DeleteForPair removes the bucket shared by the two users, if any. Called
// when their friendship ends; the comment log goes with it.
func (s *BucketService) DeleteForPair(ctx context.Context, userA, userB string) error {
	key, err := domain.NewPairKey(userA, userB)
	if err != nil {
		return err
	}

	if err := s.bucketRepo.DeleteByPair(ctx, key); err != nil {
		return fmt.Errorf("delete bucket for pair: %w", err)
	}

	s.logger.InfoContext(ctx, "shared bucket deleted",
		slog.String("user_lo", key.Lo),
		slog.String("user_hi", key.Hi),
	)
	return nil
}

// DeleteAllForUser removes every bucket the user participates in. Called
// when the account is deleted.
func (s *BucketService) DeleteAllForUser(ctx context.Context, userID string) error {
	if err := s.bucketRepo.DeleteAllForUser(ctx, userID); err != nil {
		return fmt.Errorf("delete buckets for user: %w", err)
	}
	return nil
}

func (s *BucketService) authorizedBucket(ctx context.Context, callerID, bucketID string) (*domain.SharedBucket, error) {
	bucket, err := s.bucketRepo.GetByID(ctx, bucketID)
	if err != nil {
		return nil, err
	}
	if !bucket.HasParticipant(callerID) {
		return nil, apperrors.Forbidden("not a participant of this bucket")
	}
	return bucket, nil
}

package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Team-WishU/wishu-backend/internal/domain"
	"github.com/Team-WishU/wishu-backend/internal/event"
	"github.com/Team-WishU/wishu-backend/internal/repository"
	apperrors "github.com/Team-WishU/wishu-backend/pkg/errors"
)

// FriendService implements the friend request workflow and the friend graph.
// Removing a friend also removes the pair's shared bucket.
type FriendService struct {
	friendRepo repository.FriendshipRepository
	bucketRepo repository.BucketRepository
	userRepo   repository.UserRepository
	producer   *event.Producer
	logger     *slog.Logger
}

// NewFriendService creates a new friend service.
func NewFriendService(
	friendRepo repository.FriendshipRepository,
	bucketRepo repository.BucketRepository,
	userRepo repository.UserRepository,
	producer *event.Producer,
	logger *slog.Logger,
) *FriendService {
	return &FriendService{
		friendRepo: friendRepo,
		bucketRepo: bucketRepo,
		userRepo:   userRepo,
		producer:   producer,
		logger:     logger,
	}
}

// RequestView is a pending friend request with the counterpart identity
// resolved for display.
type RequestView struct {
	ID        string          `json:"id"`
	User      domain.Identity `json:"user"`
	CreatedAt string          `json:"createdAt"`
}

// SendRequest records a pending request from the caller to the given user.
// If the other user already has a pending request the other way, the two
// are connected immediately instead.
func (s *FriendService) SendRequest(ctx context.Context, callerID, toUserID string) error {
	key, err := domain.NewPairKey(callerID, toUserID)
	if err != nil {
		return err
	}

	if _, err := s.userRepo.GetByID(ctx, toUserID); err != nil {
		return err
	}

	friends, err := s.friendRepo.AreFriends(ctx, key)
	if err != nil {
		return fmt.Errorf("check friendship: %w", err)
	}
	if friends {
		return apperrors.InvalidInput("already friends")
	}

	// A crossing request means both sides want the connection.
	reverse, err := s.friendRepo.HasRequest(ctx, toUserID, callerID)
	if err != nil {
		return fmt.Errorf("check reverse request: %w", err)
	}
	if reverse {
		return s.connect(ctx, key, toUserID, callerID)
	}

	pending, err := s.friendRepo.HasRequest(ctx, callerID, toUserID)
	if err != nil {
		return fmt.Errorf("check pending request: %w", err)
	}
	if pending {
		return apperrors.InvalidInput("request already pending")
	}

	req := &domain.FriendRequest{
		ID:         uuid.New().String(),
		FromUserID: callerID,
		ToUserID:   toUserID,
	}
	if err := s.friendRepo.CreateRequest(ctx, req); err != nil {
		return fmt.Errorf("create friend request: %w", err)
	}

	s.logger.InfoContext(ctx, "friend request sent",
		slog.String("from", callerID),
		slog.String("to", toUserID),
	)
	return nil
}

// AcceptRequest turns a pending request addressed to the caller into a
// friendship.
func (s *FriendService) AcceptRequest(ctx context.Context, callerID, fromUserID string) error {
	key, err := domain.NewPairKey(callerID, fromUserID)
	if err != nil {
		return err
	}

	pending, err := s.friendRepo.HasRequest(ctx, fromUserID, callerID)
	if err != nil {
		return fmt.Errorf("check pending request: %w", err)
	}
	if !pending {
		return apperrors.NotFound("friend request", fromUserID)
	}

	return s.connect(ctx, key, fromUserID, callerID)
}

// RejectRequest removes a pending request addressed to the caller.
func (s *FriendService) RejectRequest(ctx context.Context, callerID, fromUserID string) error {
	if err := s.friendRepo.DeleteRequest(ctx, fromUserID, callerID); err != nil {
		return fmt.Errorf("delete friend request: %w", err)
	}
	return nil
}

// CancelRequest withdraws a pending request the caller sent.
func (s *FriendService) CancelRequest(ctx context.Context, callerID, toUserID string) error {
	if err := s.friendRepo.DeleteRequest(ctx, callerID, toUserID); err != nil {
		return fmt.Errorf("delete friend request: %w", err)
	}
	return nil
}

// ListIncoming returns pending requests addressed to the caller with sender
// identities resolved.
func (s *FriendService) ListIncoming(ctx context.Context, callerID string) ([]RequestView, error) {
	requests, err := s.friendRepo.ListIncoming(ctx, callerID)
	if err != nil {
		return nil, fmt.Errorf("list incoming requests: %w", err)
	}
	return s.resolveRequests(ctx, requests, func(r domain.FriendRequest) string { return r.FromUserID })
}

// ListOutgoing returns pending requests the caller sent with recipient
// identities resolved.
func (s *FriendService) ListOutgoing(ctx context.Context, callerID string) ([]RequestView, error) {
	requests, err := s.friendRepo.ListOutgoing(ctx, callerID)
	if err != nil {
		return nil, fmt.Errorf("list outgoing requests: %w", err)
	}
	return s.resolveRequests(ctx, requests, func(r domain.FriendRequest) string { return r.ToUserID })
}

// ListFriends returns the caller's friends as display identities.
func (s *FriendService) ListFriends(ctx context.Context, callerID string) ([]domain.Identity, error) {
	ids, err := s.friendRepo.ListFriends(ctx, callerID)
	if err != nil {
		return nil, fmt.Errorf("list friends: %w", err)
	}
	identities, err := s.userRepo.GetIdentities(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve friends: %w", err)
	}
	return identities, nil
}

// AreFriends reports whether the caller and the given user are connected.
func (s *FriendService) AreFriends(ctx context.Context, callerID, otherID string) (bool, error) {
	key, err := domain.NewPairKey(callerID, otherID)
	if err != nil {
		return false, err
	}
	return s.friendRepo.AreFriends(ctx, key)
}

// RemoveFriend ends the friendship and deletes the pair's shared bucket
// along with its comment log.
func (s *FriendService) RemoveFriend(ctx context.Context, callerID, friendID string) error {
	key, err := domain.NewPairKey(callerID, friendID)
	if err != nil {
		return err
	}

	friends, err := s.friendRepo.AreFriends(ctx, key)
	if err != nil {
		return fmt.Errorf("check friendship: %w", err)
	}
	if !friends {
		return apperrors.NotFound("friendship", friendID)
	}

	if err := s.friendRepo.DeleteFriendship(ctx, key); err != nil {
		return fmt.Errorf("delete friendship: %w", err)
	}
	if err := s.bucketRepo.DeleteByPair(ctx, key); err != nil {
		return fmt.Errorf("delete shared bucket: %w", err)
	}

	// Publish the event (non-blocking on failure).
	if err := s.producer.PublishFriendRemoved(ctx, callerID, friendID); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish friend.removed event",
			slog.String("user_id", callerID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "friend removed",
		slog.String("user_id", callerID),
		slog.String("friend_id", friendID),
	)
	return nil
}

// connect creates the friendship and clears pending requests in both
// directions.
func (s *FriendService) connect(ctx context.Context, key domain.PairKey, userA, userB string) error {
	if err := s.friendRepo.CreateFriendship(ctx, key); err != nil {
		return fmt.Errorf("create friendship: %w", err)
	}
	if err := s.friendRepo.DeleteRequest(ctx, userA, userB); err != nil {
		return fmt.Errorf("clear friend request: %w", err)
	}
	if err := s.friendRepo.DeleteRequest(ctx, userB, userA); err != nil {
		return fmt.Errorf("clear friend request: %w", err)
	}

	s.logger.InfoContext(ctx, "friendship created",
		slog.String("user_lo", key.Lo),
		slog.String("user_hi", key.Hi),
	)
	return nil
}

func (s *FriendService) resolveRequests(ctx context.Context, requests []domain.FriendRequest, counterpart func(domain.FriendRequest) string) ([]RequestView, error) {
	ids := make([]string, 0, len(requests))
	for _, r := range requests {
		ids = append(ids, counterpart(r))
	}

	identities, err := s.userRepo.GetIdentities(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve request users: %w", err)
	}
	byID := make(map[string]domain.Identity, len(identities))
	for _, ident := range identities {
		byID[ident.ID] = ident
	}

	views := make([]RequestView, 0, len(requests))
	for _, r := range requests {
		ident, ok := byID[counterpart(r)]
		if !ok {
			// Counterpart account no longer exists; skip the stale request.
			continue
		}
		views = append(views, RequestView{
			ID:        r.ID,
			User:      ident,
			CreatedAt: r.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return views, nil
}

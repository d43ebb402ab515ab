package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Team-WishU/wishu-backend/internal/domain"
	"github.com/Team-WishU/wishu-backend/pkg/database"
	apperrors "github.com/Team-WishU/wishu-backend/pkg/errors"
)

// FriendshipRepository implements repository.FriendshipRepository using
// PostgreSQL. Friendships are stored under the canonical (user_lo, user_hi)
// pair; requests keep their direction.
type FriendshipRepository struct {
	db database.DB
}

// NewFriendshipRepository creates a new PostgreSQL-backed friendship repository.
func NewFriendshipRepository(db database.DB) *FriendshipRepository {
	return &FriendshipRepository{db: db}
}

// CreateRequest records a pending friend request.
func (r *FriendshipRepository) CreateRequest(ctx context.Context, req *domain.FriendRequest) error {
	query := `
		INSERT INTO friend_requests (id, from_user_id, to_user_id, created_at)
		VALUES ($1, $2, $3, $4)`

	req.CreatedAt = time.Now().UTC()

	_, err := r.db.Exec(ctx, query, req.ID, req.FromUserID, req.ToUserID, req.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("friend request", "to", req.ToUserID)
		}
		if isForeignKeyViolation(err) {
			return apperrors.NotFound("user", req.ToUserID)
		}
		return storeErr("insert friend request", err)
	}
	return nil
}

// DeleteRequest removes a pending request in the from→to direction. Removing
// a request that does not exist succeeds silently.
func (r *FriendshipRepository) DeleteRequest(ctx context.Context, fromUserID, toUserID string) error {
	query := `DELETE FROM friend_requests WHERE from_user_id = $1 AND to_user_id = $2`

	if _, err := r.db.Exec(ctx, query, fromUserID, toUserID); err != nil {
		return storeErr("delete friend request", err)
	}
	return nil
}

// HasRequest reports whether a pending request exists from→to.
func (r *FriendshipRepository) HasRequest(ctx context.Context, fromUserID, toUserID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM friend_requests WHERE from_user_id = $1 AND to_user_id = $2)`

	var exists bool
	if err := r.db.QueryRow(ctx, query, fromUserID, toUserID).Scan(&exists); err != nil {
		return false, storeErr("check friend request", err)
	}
	return exists, nil
}

// ListIncoming returns pending requests addressed to the user, oldest first.
func (r *FriendshipRepository) ListIncoming(ctx context.Context, userID string) ([]domain.FriendRequest, error) {
	query := `
		SELECT id, from_user_id, to_user_id, created_at
		FROM friend_requests
		WHERE to_user_id = $1
		ORDER BY created_at`

	return r.listRequests(ctx, query, userID)
}

// ListOutgoing returns pending requests sent by the user, oldest first.
func (r *FriendshipRepository) ListOutgoing(ctx context.Context, userID string) ([]domain.FriendRequest, error) {
	query := `
		SELECT id, from_user_id, to_user_id, created_at
		FROM friend_requests
		WHERE from_user_id = $1
		ORDER BY created_at`

	return r.listRequests(ctx, query, userID)
}

func (r *FriendshipRepository) listRequests(ctx context.Context, query, userID string) ([]domain.FriendRequest, error) {
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, storeErr("list friend requests", err)
	}
	defer rows.Close()

	requests := []domain.FriendRequest{}
	for rows.Next() {
		var req domain.FriendRequest
		if err := rows.Scan(&req.ID, &req.FromUserID, &req.ToUserID, &req.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan friend request row: %w", err)
		}
		requests = append(requests, req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate friend request rows: %w", err)
	}
	return requests, nil
}

// CreateFriendship records the undirected connection. Creating one that
// already exists is a no-op.
func (r *FriendshipRepository) CreateFriendship(ctx context.Context, key domain.PairKey) error {
	query := `
		INSERT INTO friendships (user_lo, user_hi, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_lo, user_hi) DO NOTHING`

	_, err := r.db.Exec(ctx, query, key.Lo, key.Hi, time.Now().UTC())
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperrors.NotFound("user", key.Lo+","+key.Hi)
		}
		return storeErr("insert friendship", err)
	}
	return nil
}

// DeleteFriendship removes the connection. Idempotent.
func (r *FriendshipRepository) DeleteFriendship(ctx context.Context, key domain.PairKey) error {
	query := `DELETE FROM friendships WHERE user_lo = $1 AND user_hi = $2`

	if _, err := r.db.Exec(ctx, query, key.Lo, key.Hi); err != nil {
		return storeErr("delete friendship", err)
	}
	return nil
}

// AreFriends reports whether the two users are connected.
func (r *FriendshipRepository) AreFriends(ctx context.Context, key domain.PairKey) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM friendships WHERE user_lo = $1 AND user_hi = $2)`

	var exists bool
	if err := r.db.QueryRow(ctx, query, key.Lo, key.Hi).Scan(&exists); err != nil {
		return false, storeErr("check friendship", err)
	}
	return exists, nil
}

// ListFriends returns the ids of the user's friends.
func (r *FriendshipRepository) ListFriends(ctx context.Context, userID string) ([]string, error) {
	query := `
		SELECT CASE WHEN user_lo = $1 THEN user_hi ELSE user_lo END
		FROM friendships
		WHERE user_lo = $1 OR user_hi = $1
		ORDER BY created_at`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, storeErr("list friends", err)
	}
	defer rows.Close()

	friends := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan friend row: %w", err)
		}
		friends = append(friends, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate friend rows: %w", err)
	}
	return friends, nil
}

// DeleteAllForUser removes every friendship and pending request the user
// takes part in. Idempotent.
func (r *FriendshipRepository) DeleteAllForUser(ctx context.Context, userID string) error {
	if _, err := r.db.Exec(ctx,
		`DELETE FROM friendships WHERE user_lo = $1 OR user_hi = $1`, userID); err != nil {
		return storeErr("delete friendships for user", err)
	}
	if _, err := r.db.Exec(ctx,
		`DELETE FROM friend_requests WHERE from_user_id = $1 OR to_user_id = $1`, userID); err != nil {
		return storeErr("delete friend requests for user", err)
	}
	return nil
}

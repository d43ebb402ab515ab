package repository

import (
	"context"

	"github.com/Team-WishU/wishu-backend/internal/domain"
)

// BucketRepository defines persistence for shared buckets and their
// append-only comment logs.
type BucketRepository interface {
	// GetOrCreate returns the bucket for the canonical pair, creating it
	// atomically if absent. Safe under concurrent invocation for the same
	// pair: all callers converge on the same bucket. The returned bool
	// reports whether a new bucket was created.
	GetOrCreate(ctx context.Context, key domain.PairKey) (*domain.SharedBucket, bool, error)

	// GetByID retrieves a bucket by its id.
	GetByID(ctx context.Context, id string) (*domain.SharedBucket, error)

	// FindByUser returns all buckets the given user participates in.
	FindByUser(ctx context.Context, userID string) ([]domain.SharedBucket, error)

	// DeleteByPair removes the bucket for the pair, if any. Idempotent.
	DeleteByPair(ctx context.Context, key domain.PairKey) error

	// DeleteAllForUser removes every bucket the user participates in. Idempotent.
	DeleteAllForUser(ctx context.Context, userID string) error

	// AppendComment atomically appends a comment to the bucket's log and
	// fills in the assigned sequence id and server timestamp.
	// Returns ErrNotFound if the bucket does not exist.
	AppendComment(ctx context.Context, bucketID string, comment *domain.Comment) error

	// ListComments returns the bucket's full comment log in append order.
	ListComments(ctx context.Context, bucketID string) ([]domain.Comment, error)
}

// ProductFilter defines filter criteria for listing products.
type ProductFilter struct {
	Category *string
	Tag      *string
	Limit    int
}

// ProductRepository defines persistence for catalog items and wish membership.
type ProductRepository interface {
	// Create inserts a new product.
	Create(ctx context.Context, product *domain.Product) error

	// GetByID retrieves a product with its savedBy set.
	GetByID(ctx context.Context, id string) (*domain.Product, error)

	// List returns products matching the filter, newest first.
	List(ctx context.Context, filter ProductFilter) ([]domain.Product, error)

	// FindSavedByUsers returns products whose savedBy set intersects the
	// given user ids, newest first. Reads the live save state.
	FindSavedByUsers(ctx context.Context, userIDs []string) ([]domain.Product, error)

	// Save adds the user to the product's savedBy set. Idempotent.
	Save(ctx context.Context, productID, userID string) error

	// Unsave removes the user from the product's savedBy set. Idempotent.
	Unsave(ctx context.Context, productID, userID string) error

	// Delete removes a product and its save memberships.
	Delete(ctx context.Context, id string) error
}

// UserRepository defines persistence for accounts and display identities.
type UserRepository interface {
	// Create inserts a new user. Returns ErrAlreadyExists on a duplicate
	// email or nickname.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by id.
	GetByID(ctx context.Context, id string) (*domain.User, error)

	// GetByEmail retrieves a user by email.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// GetIdentities resolves the given ids to display identities. Unknown
	// ids are silently omitted.
	GetIdentities(ctx context.Context, ids []string) ([]domain.Identity, error)

	// Delete removes a user account.
	Delete(ctx context.Context, id string) error
}

// FriendshipRepository defines persistence for the friend graph.
type FriendshipRepository interface {
	// CreateRequest records a pending friend request.
	CreateRequest(ctx context.Context, req *domain.FriendRequest) error

	// DeleteRequest removes a pending request between the two users, in
	// the from→to direction. Idempotent.
	DeleteRequest(ctx context.Context, fromUserID, toUserID string) error

	// HasRequest reports whether a pending request exists from→to.
	HasRequest(ctx context.Context, fromUserID, toUserID string) (bool, error)

	// ListIncoming returns pending requests addressed to the user.
	ListIncoming(ctx context.Context, userID string) ([]domain.FriendRequest, error)

	// ListOutgoing returns pending requests sent by the user.
	ListOutgoing(ctx context.Context, userID string) ([]domain.FriendRequest, error)

	// CreateFriendship records the undirected connection. Idempotent under
	// the canonical pair key.
	CreateFriendship(ctx context.Context, key domain.PairKey) error

	// DeleteFriendship removes the connection. Idempotent.
	DeleteFriendship(ctx context.Context, key domain.PairKey) error

	// AreFriends reports whether the two users are connected.
	AreFriends(ctx context.Context, key domain.PairKey) (bool, error)

	// ListFriends returns the ids of the user's friends.
	ListFriends(ctx context.Context, userID string) ([]string, error)

	// DeleteAllForUser removes every friendship and pending request the
	// user takes part in. Idempotent.
	DeleteAllForUser(ctx context.Context, userID string) error
}

// SessionStore holds chatbot conversation state per user. Implementations
// must evict entries (TTL or bounded size); state is reconstructible, so
// losing an entry only resets the conversation.
type SessionStore interface {
	// Get returns the user's session. Returns ErrNotFound if absent or evicted.
	Get(ctx context.Context, userID string) (*domain.Session, error)

	// Put stores the session, refreshing its eviction deadline.
	Put(ctx context.Context, session *domain.Session) error

	// Delete removes the session. Idempotent.
	Delete(ctx context.Context, userID string) error
}

// VerificationStore holds short-lived email verification codes.
type VerificationStore interface {
	// Put stores the code for the email, replacing any previous one.
	Put(ctx context.Context, email, code string) error

	// Consume checks the code and deletes it on match. Returns false when
	// the code is wrong, expired, or absent.
	Consume(ctx context.Context, email, code string) (bool, error)
}

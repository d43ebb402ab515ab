package domain

import (
	"time"

	"github.com/google/uuid"

	apperrors "github.com/Team-WishU/wishu-backend/pkg/errors"
)

// SharedBucket is the persisted shared space for exactly one unordered pair
// of users. At most one bucket exists per pair.
type SharedBucket struct {
	ID           string    `json:"id"`
	Participants []string  `json:"participants"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Comment is one entry of a bucket's append-only comment log. The author
// display fields are a snapshot taken at posting time and are never updated.
type Comment struct {
	ID           int64     `json:"-"`
	BucketID     string    `json:"-"`
	UserID       string    `json:"userId"`
	Nickname     string    `json:"nickname"`
	ProfileImage string    `json:"profileImage"`
	Text         string    `json:"text"`
	CreatedAt    time.Time `json:"createdAt"`
}

// PairKey is the canonical, order-independent identifier for an unordered
// pair of user ids. Lo sorts lexicographically before Hi.
type PairKey struct {
	Lo string
	Hi string
}

// NewPairKey canonicalizes two user ids into a PairKey. The result is
// identical regardless of argument order. Returns ErrInvalidIdentity if
// either id is not a well-formed user reference or the ids are equal.
func NewPairKey(userA, userB string) (PairKey, error) {
	if _, err := uuid.Parse(userA); err != nil {
		return PairKey{}, apperrors.InvalidIdentity(userA)
	}
	if _, err := uuid.Parse(userB); err != nil {
		return PairKey{}, apperrors.InvalidIdentity(userB)
	}
	if userA == userB {
		return PairKey{}, apperrors.InvalidInput("a shared bucket requires two distinct users")
	}

	if userA < userB {
		return PairKey{Lo: userA, Hi: userB}, nil
	}
	return PairKey{Lo: userB, Hi: userA}, nil
}

// Contains reports whether the given user id is one of the pair.
func (k PairKey) Contains(userID string) bool {
	return k.Lo == userID || k.Hi == userID
}

// Other returns the pair member that is not the given user id.
func (k PairKey) Other(userID string) string {
	if k.Lo == userID {
		return k.Hi
	}
	return k.Lo
}

// HasParticipant reports whether the given user id is one of the bucket's
// two participants.
func (b *SharedBucket) HasParticipant(userID string) bool {
	for _, p := range b.Participants {
		if p == userID {
			return true
		}
	}
	return false
}

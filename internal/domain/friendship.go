package domain

import "time"

// FriendRequest is a pending, directed request from one user to another.
// Accepting it creates a Friendship and removes the request.
type FriendRequest struct {
	ID         string    `json:"id"`
	FromUserID string    `json:"fromUserId"`
	ToUserID   string    `json:"toUserId"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Friendship is an undirected connection between two users, stored under
// the same canonical pair key as shared buckets.
type Friendship struct {
	Pair      PairKey   `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
}

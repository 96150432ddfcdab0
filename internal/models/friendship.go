package models

import "time"

const (
	FriendshipPending  = "pending"
	FriendshipAccepted = "accepted"
)

// Friendship is a directed friend request that becomes a mutual relationship
// once accepted. At most one row exists per unordered pair of users.
type Friendship struct {
	ID          int64     `db:"id" json:"id"`
	RequesterID int64     `db:"requester_id" json:"requester_id"`
	AddresseeID int64     `db:"addressee_id" json:"addressee_id"`
	Status      string    `db:"status" json:"status"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// FriendshipWithUser annotates a friendship with the counterpart's public
// profile fields, as seen from one side of the pair.
type FriendshipWithUser struct {
	Friendship
	FriendID    int64  `db:"friend_id" json:"friend_id"`
	FriendNick  string `db:"friend_nick" json:"friend_nick"`
	FriendEmail string `db:"friend_email" json:"friend_email"`
}

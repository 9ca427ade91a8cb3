package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Follow is a directed edge: follower follows followee. Unique per pair,
// follower must differ from followee.
type Follow struct {
	FollowerID uuid.UUID `db:"follower_id" json:"follower_id"`
	FolloweeID uuid.UUID `db:"followee_id" json:"followee_id"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

type FollowListResponse struct {
	Users []UserSummary `json:"users"`
	Count int           `json:"count"`
}

var (
	ErrAlreadyFollowing = errors.New("already following this user")
	ErrNotFollowing     = errors.New("not following this user")
	ErrCannotFollowSelf = errors.New("cannot follow yourself")
)

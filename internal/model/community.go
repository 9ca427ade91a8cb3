package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Community is a membership-gated group owning chat rooms. The owner is
// always a member; members are added only by the owner (no self-service
// join in this design).
type Community struct {
	ID          int64     `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	OwnerID     uuid.UUID `db:"owner_id" json:"owner_id"`
	IconURL     *string   `db:"icon_url" json:"icon"`
	IconKey     *string   `db:"icon_key" json:"-"`
	IsPublic    bool      `db:"is_public" json:"is_public"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// CreateCommunityRequest is the request body for creating a community.
type CreateCommunityRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	IsPublic    *bool  `json:"is_public"`
}

// AddMemberRequest adds a member by username (owner-only).
type AddMemberRequest struct {
	Username string `json:"username"`
}

// Chat is a room inside a community. chat_type distinguishes plain text
// rooms from calendar and poll rooms.
type Chat struct {
	ID          int64     `db:"id" json:"id"`
	CommunityID int64     `db:"community_id" json:"community_id"`
	Name        string    `db:"name" json:"name"`
	ChatType    string    `db:"chat_type" json:"chat_type"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Chat types.
const (
	ChatTypeText     = "text"
	ChatTypeCalendar = "calendar"
	ChatTypePoll     = "poll"
)

// CreateChatRequest is the request body for creating a chat.
type CreateChatRequest struct {
	Name     string `json:"name"`
	ChatType string `json:"chat_type"`
}

// Message is a timestamped text message in a chat.
type Message struct {
	ID       int64     `db:"id" json:"id"`
	ChatID   int64     `db:"chat_id" json:"-"`
	UserID   uuid.UUID `db:"user_id" json:"-"`
	Username string    `db:"username" json:"username"`
	Content  string    `db:"content" json:"content"`
	SentAt   time.Time `db:"sent_at" json:"sent_at"`
}

// PostMessageRequest is the request body for posting a message.
type PostMessageRequest struct {
	Content string `json:"content"`
}

// Poll is a secondary chat content type: a question with options, one vote
// per member.
type Poll struct {
	ID         int64        `db:"id" json:"id"`
	ChatID     int64        `db:"chat_id" json:"-"`
	UserID     uuid.UUID    `db:"user_id" json:"-"`
	Title      string       `db:"title" json:"title"`
	TotalVotes int          `db:"total_votes" json:"total_votes"`
	CreatedAt  time.Time    `db:"created_at" json:"created_at"`
	Options    []PollOption `json:"options"`
}

type PollOption struct {
	ID     int64  `db:"id" json:"id"`
	PollID int64  `db:"poll_id" json:"-"`
	Text   string `db:"text" json:"text"`
	Votes  int    `db:"votes" json:"votes"`
}

// CreatePollRequest is the request body for creating a poll in a poll chat.
type CreatePollRequest struct {
	Title   string   `json:"title"`
	Options []string `json:"options"`
}

// VoteRequest selects a poll option.
type VoteRequest struct {
	OptionID int64 `json:"option_id"`
}

var (
	ErrCommunityNotFound = errors.New("community not found")
	ErrChatNotFound      = errors.New("chat not found")
	ErrPollNotFound      = errors.New("poll not found")
	ErrNotCommunityOwner = errors.New("only the owner can perform this action")
	ErrNotMember         = errors.New("not a member of this community")
	ErrAlreadyVoted      = errors.New("already voted in this poll")
	ErrOptionNotInPoll   = errors.New("option does not belong to this poll")
)

package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Comment is a forum comment on a movie. Replies reference their parent;
// listings read back exactly one level of nesting even though the relation
// would permit more.
type Comment struct {
	ID         int64     `db:"id" json:"id"`
	MovieID    uuid.UUID `db:"movie_id" json:"filme"`
	UserID     uuid.UUID `db:"user_id" json:"-"`
	Text       string    `db:"texto" json:"texto"`
	ParentID   *int64    `db:"parent_id" json:"parent"`
	Reported   bool      `db:"reported" json:"reported"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
	LikesCount int       `db:"likes_count" json:"likes_count"`

	// Joined fields
	Author     *UserSummary `json:"user,omitempty"`
	MovieTitle string       `db:"movie_title" json:"filme_titulo,omitempty"`
	Replies    []Comment    `json:"replies"`

	// Liked reports whether the viewer has liked this comment. Always false
	// for anonymous listings.
	Liked bool `db:"-" json:"curtido"`
}

// CreateCommentRequest is the request body for posting a comment or reply.
type CreateCommentRequest struct {
	Text     string `json:"texto"`
	ParentID *int64 `json:"parent"`
}

// CommentListResponse is the paginated forum listing.
type CommentListResponse struct {
	Count    int       `json:"count"`
	Page     int       `json:"page"`
	PageSize int       `json:"page_size"`
	Results  []Comment `json:"results"`
}

// Forum sort modes. "recentes" is the default.
const (
	SortRecent = "recentes"
	SortOldest = "antigos"
	SortTop    = "bem_avaliados"
)

// Forum pagination (original API pages the forum at 50).
const ForumPageSize = 50

const MaxCommentLength = 5000

// Summarization fallbacks. The upstream error is never propagated to the
// caller; it collapses into the failure literal.
const (
	SummaryNoComments = "Ainda não há comentários para este filme."
	SummaryFailed     = "Não foi possível gerar o resumo dos comentários."
)

var (
	ErrCommentNotFound = errors.New("comment not found")
	ErrTextRequired    = errors.New("comment text is required")
	ErrTextTooLong     = errors.New("comment text too long")
	ErrParentMismatch  = errors.New("parent comment belongs to another movie")
)

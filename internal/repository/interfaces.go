package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"cinematch/internal/model"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	// UpdateImage swaps the avatar or banner reference, returning the
	// previous object key so the service can delete the old object.
	UpdateImage(ctx context.Context, userID uuid.UUID, imageType, url, key string) (oldKey *string, err error)
}

type RefreshTokenRepository interface {
	Create(ctx context.Context, token *model.RefreshToken) error
	FindByTokenHash(ctx context.Context, tokenHash string) (*model.RefreshToken, error)
	Revoke(ctx context.Context, id string, replacedBy *string) error
	RevokeAllForUser(ctx context.Context, userID uuid.UUID) error
	DeleteExpired(ctx context.Context, olderThan time.Duration) (int64, error)
}

type FollowRepository interface {
	// Create inserts the edge; returns false when it already existed.
	Create(ctx context.Context, followerID, followeeID uuid.UUID) (bool, error)
	// Delete removes the edge; model.ErrNotFollowing when it did not exist.
	Delete(ctx context.Context, followerID, followeeID uuid.UUID) error
	GetFollowers(ctx context.Context, userID uuid.UUID) ([]model.UserSummary, error)
	GetFollowing(ctx context.Context, userID uuid.UUID) ([]model.UserSummary, error)
	CountFollowers(ctx context.Context, userID uuid.UUID) (int, error)
	CountFollowing(ctx context.Context, userID uuid.UUID) (int, error)
}

type MovieRepository interface {
	// Upsert creates or refreshes a catalog record keyed by tmdb_id.
	// Ratings aggregates are only seeded on first insert; local votes own
	// them afterwards.
	Upsert(ctx context.Context, movie *model.Movie) (created bool, err error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Movie, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	List(ctx context.Context, page, pageSize int) ([]model.Movie, int, error)
	// ListByUserEngagement returns movies from a user's engagement actions,
	// filtered by one of the engagement flags.
	ListByUserEngagement(ctx context.Context, userID uuid.UUID, filter string, page, pageSize int) ([]model.Movie, int, error)
	// GetAggregateForUpdate reads (nota_media, total_votos) locking the
	// movie row for the remainder of the transaction.
	GetAggregateForUpdate(ctx context.Context, tx *sqlx.Tx, movieID uuid.UUID) (avg float64, count int, err error)
	UpdateAggregate(ctx context.Context, tx *sqlx.Tx, movieID uuid.UUID, avg float64, count int) error
}

type EngagementRepository interface {
	// GetOrCreate fetches the single action row for (user, movie),
	// inserting the default row when none exists yet.
	GetOrCreate(ctx context.Context, tx *sqlx.Tx, userID, movieID uuid.UUID) (*model.EngagementAction, error)
	Update(ctx context.Context, tx *sqlx.Tx, action *model.EngagementAction) error
	// RatingsForMovie returns every non-null rating for the movie. Source of
	// truth for the full re-scan.
	RatingsForMovie(ctx context.Context, tx *sqlx.Tx, movieID uuid.UUID) ([]float64, error)
	// GetRating returns the user's current rating, nil when unrated.
	GetRating(ctx context.Context, tx *sqlx.Tx, userID, movieID uuid.UUID) (*float64, error)
	UpsertRating(ctx context.Context, tx *sqlx.Tx, userID, movieID uuid.UUID, rating float64) error
	// CountWatchedAndLiked powers the profile stats endpoint.
	CountWatchedAndLiked(ctx context.Context, userID uuid.UUID) (watched, liked int, err error)
}

type CommentRepository interface {
	Create(ctx context.Context, movieID uuid.UUID, userID uuid.UUID, text string, parentID *int64) (*model.Comment, error)
	GetByID(ctx context.Context, commentID int64) (*model.Comment, error)
	// ListForMovie returns one ordered page of comments. parentID nil means
	// top-level comments only; non-nil restricts to that parent's replies.
	ListForMovie(ctx context.Context, movieID uuid.UUID, parentID *int64, sort string, page, pageSize int) ([]model.Comment, int, error)
	// RepliesFor loads the direct replies of each parent, oldest first.
	RepliesFor(ctx context.Context, parentIDs []int64) (map[int64][]model.Comment, error)
	ListByUser(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]model.Comment, int, error)
	// AllForMovie returns every comment with its like count, for
	// summarization.
	AllForMovie(ctx context.Context, movieID uuid.UUID) ([]model.Comment, error)
	// LikedByUser returns which of the given comments the user has liked.
	LikedByUser(ctx context.Context, userID uuid.UUID, commentIDs []int64) (map[int64]bool, error)
	HasLiked(ctx context.Context, tx *sqlx.Tx, commentID int64, userID uuid.UUID) (bool, error)
	AddLike(ctx context.Context, tx *sqlx.Tx, commentID int64, userID uuid.UUID) error
	RemoveLike(ctx context.Context, tx *sqlx.Tx, commentID int64, userID uuid.UUID) error
	CountLikes(ctx context.Context, tx *sqlx.Tx, commentID int64) (int, error)
	CountByUser(ctx context.Context, userID uuid.UUID) (int, error)
}

type CommunityRepository interface {
	Create(ctx context.Context, tx *sqlx.Tx, community *model.Community) error
	GetByID(ctx context.Context, id int64) (*model.Community, error)
	List(ctx context.Context) ([]model.Community, error)
	Delete(ctx context.Context, id int64) error
	// AddMember inserts membership; returns false when already a member.
	AddMember(ctx context.Context, tx *sqlx.Tx, communityID int64, userID uuid.UUID) (bool, error)
	IsMember(ctx context.Context, communityID int64, userID uuid.UUID) (bool, error)
	Members(ctx context.Context, communityID int64) ([]model.UserSummary, error)
	UpdateIcon(ctx context.Context, id int64, url, key string) (oldKey *string, err error)
}

type ChatRepository interface {
	Create(ctx context.Context, chat *model.Chat) error
	GetByID(ctx context.Context, id int64) (*model.Chat, error)
	ListByCommunity(ctx context.Context, communityID int64) ([]model.Chat, error)
	CreateMessage(ctx context.Context, msg *model.Message) error
	// ListMessages returns a chat's messages newest first, author username
	// joined in.
	ListMessages(ctx context.Context, chatID int64) ([]model.Message, error)
	CreatePoll(ctx context.Context, tx *sqlx.Tx, poll *model.Poll, options []string) error
	GetPoll(ctx context.Context, pollID int64) (*model.Poll, error)
	ListPolls(ctx context.Context, chatID int64) ([]model.Poll, error)
	// Vote registers one vote for (user, poll). model.ErrAlreadyVoted when
	// the user voted before, model.ErrOptionNotInPoll on a mismatched option.
	Vote(ctx context.Context, tx *sqlx.Tx, pollID, optionID int64, userID uuid.UUID) error
}

type EventRepository interface {
	Create(ctx context.Context, event *model.Event) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Event, error)
	Update(ctx context.Context, event *model.Event) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter model.EventFilter) ([]model.Event, error)
	// AddParticipant returns false when the user already participates.
	AddParticipant(ctx context.Context, eventID, userID uuid.UUID) (bool, error)
	// RemoveParticipant returns false when the user was not a participant.
	RemoveParticipant(ctx context.Context, eventID, userID uuid.UUID) (bool, error)
	Participants(ctx context.Context, eventID uuid.UUID) ([]model.UserSummary, error)
	Stats(ctx context.Context, username string, now time.Time) (*model.EventStats, error)
}

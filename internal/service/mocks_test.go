package service

// Hand-rolled mocks for the repository interfaces. Each mock exposes fn
// fields so a test overrides only the calls it cares about; everything else
// falls back to a not-found or zero answer.

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"cinematch/internal/model"
	"cinematch/internal/provider"
)

// txDB returns a sqlx handle whose transactions are served by sqlmock, so
// service paths that open a transaction can run against the hand-rolled
// repository mocks below. txs is the number of committed transactions the
// test will run.
func txDB(t *testing.T, txs int) *sqlx.DB {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	for i := 0; i < txs; i++ {
		mock.ExpectBegin()
		mock.ExpectCommit()
	}
	return sqlx.NewDb(db, "sqlmock")
}

type mockUserRepository struct {
	createFn           func(ctx context.Context, user *model.User) error
	getByIDFn          func(ctx context.Context, id uuid.UUID) (*model.User, error)
	getByEmailFn       func(ctx context.Context, email string) (*model.User, error)
	getByUsernameFn    func(ctx context.Context, username string) (*model.User, error)
	existsByEmailFn    func(ctx context.Context, email string) (bool, error)
	existsByUsernameFn func(ctx context.Context, username string) (bool, error)
	updateImageFn      func(ctx context.Context, userID uuid.UUID, imageType, url, key string) (*string, error)

	createCalls []*model.User
}

func (m *mockUserRepository) Create(ctx context.Context, user *model.User) error {
	m.createCalls = append(m.createCalls, user)
	if m.createFn != nil {
		return m.createFn(ctx, user)
	}
	return nil
}

func (m *mockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, model.ErrUserNotFound
}

func (m *mockUserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	if m.getByEmailFn != nil {
		return m.getByEmailFn(ctx, email)
	}
	return nil, model.ErrUserNotFound
}

func (m *mockUserRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	if m.getByUsernameFn != nil {
		return m.getByUsernameFn(ctx, username)
	}
	return nil, model.ErrUserNotFound
}

func (m *mockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	if m.existsByEmailFn != nil {
		return m.existsByEmailFn(ctx, email)
	}
	return false, nil
}

func (m *mockUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	if m.existsByUsernameFn != nil {
		return m.existsByUsernameFn(ctx, username)
	}
	return false, nil
}

func (m *mockUserRepository) UpdateImage(ctx context.Context, userID uuid.UUID, imageType, url, key string) (*string, error) {
	if m.updateImageFn != nil {
		return m.updateImageFn(ctx, userID, imageType, url, key)
	}
	return nil, nil
}

type mockFollowRepository struct {
	createFn         func(ctx context.Context, followerID, followeeID uuid.UUID) (bool, error)
	deleteFn         func(ctx context.Context, followerID, followeeID uuid.UUID) error
	getFollowersFn   func(ctx context.Context, userID uuid.UUID) ([]model.UserSummary, error)
	getFollowingFn   func(ctx context.Context, userID uuid.UUID) ([]model.UserSummary, error)
	countFollowersFn func(ctx context.Context, userID uuid.UUID) (int, error)
	countFollowingFn func(ctx context.Context, userID uuid.UUID) (int, error)
}

func (m *mockFollowRepository) Create(ctx context.Context, followerID, followeeID uuid.UUID) (bool, error) {
	if m.createFn != nil {
		return m.createFn(ctx, followerID, followeeID)
	}
	return true, nil
}

func (m *mockFollowRepository) Delete(ctx context.Context, followerID, followeeID uuid.UUID) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, followerID, followeeID)
	}
	return nil
}

func (m *mockFollowRepository) GetFollowers(ctx context.Context, userID uuid.UUID) ([]model.UserSummary, error) {
	if m.getFollowersFn != nil {
		return m.getFollowersFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockFollowRepository) GetFollowing(ctx context.Context, userID uuid.UUID) ([]model.UserSummary, error) {
	if m.getFollowingFn != nil {
		return m.getFollowingFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockFollowRepository) CountFollowers(ctx context.Context, userID uuid.UUID) (int, error) {
	if m.countFollowersFn != nil {
		return m.countFollowersFn(ctx, userID)
	}
	return 0, nil
}

func (m *mockFollowRepository) CountFollowing(ctx context.Context, userID uuid.UUID) (int, error) {
	if m.countFollowingFn != nil {
		return m.countFollowingFn(ctx, userID)
	}
	return 0, nil
}

type mockMovieRepository struct {
	upsertFn                func(ctx context.Context, movie *model.Movie) (bool, error)
	getByIDFn               func(ctx context.Context, id uuid.UUID) (*model.Movie, error)
	existsFn                func(ctx context.Context, id uuid.UUID) (bool, error)
	listFn                  func(ctx context.Context, page, pageSize int) ([]model.Movie, int, error)
	listByUserEngagementFn  func(ctx context.Context, userID uuid.UUID, filter string, page, pageSize int) ([]model.Movie, int, error)
	getAggregateForUpdateFn func(ctx context.Context, tx *sqlx.Tx, movieID uuid.UUID) (float64, int, error)
	updateAggregateFn       func(ctx context.Context, tx *sqlx.Tx, movieID uuid.UUID, avg float64, count int) error
}

func (m *mockMovieRepository) Upsert(ctx context.Context, movie *model.Movie) (bool, error) {
	if m.upsertFn != nil {
		return m.upsertFn(ctx, movie)
	}
	return true, nil
}

func (m *mockMovieRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Movie, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, model.ErrMovieNotFound
}

func (m *mockMovieRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, id)
	}
	return false, nil
}

func (m *mockMovieRepository) List(ctx context.Context, page, pageSize int) ([]model.Movie, int, error) {
	if m.listFn != nil {
		return m.listFn(ctx, page, pageSize)
	}
	return nil, 0, nil
}

func (m *mockMovieRepository) ListByUserEngagement(ctx context.Context, userID uuid.UUID, filter string, page, pageSize int) ([]model.Movie, int, error) {
	if m.listByUserEngagementFn != nil {
		return m.listByUserEngagementFn(ctx, userID, filter, page, pageSize)
	}
	return nil, 0, nil
}

func (m *mockMovieRepository) GetAggregateForUpdate(ctx context.Context, tx *sqlx.Tx, movieID uuid.UUID) (float64, int, error) {
	if m.getAggregateForUpdateFn != nil {
		return m.getAggregateForUpdateFn(ctx, tx, movieID)
	}
	return 0, 0, nil
}

func (m *mockMovieRepository) UpdateAggregate(ctx context.Context, tx *sqlx.Tx, movieID uuid.UUID, avg float64, count int) error {
	if m.updateAggregateFn != nil {
		return m.updateAggregateFn(ctx, tx, movieID, avg, count)
	}
	return nil
}

type mockEngagementRepository struct {
	getOrCreateFn          func(ctx context.Context, tx *sqlx.Tx, userID, movieID uuid.UUID) (*model.EngagementAction, error)
	updateFn               func(ctx context.Context, tx *sqlx.Tx, action *model.EngagementAction) error
	ratingsForMovieFn      func(ctx context.Context, tx *sqlx.Tx, movieID uuid.UUID) ([]float64, error)
	getRatingFn            func(ctx context.Context, tx *sqlx.Tx, userID, movieID uuid.UUID) (*float64, error)
	upsertRatingFn         func(ctx context.Context, tx *sqlx.Tx, userID, movieID uuid.UUID, rating float64) error
	countWatchedAndLikedFn func(ctx context.Context, userID uuid.UUID) (int, int, error)
}

func (m *mockEngagementRepository) GetOrCreate(ctx context.Context, tx *sqlx.Tx, userID, movieID uuid.UUID) (*model.EngagementAction, error) {
	if m.getOrCreateFn != nil {
		return m.getOrCreateFn(ctx, tx, userID, movieID)
	}
	return &model.EngagementAction{UserID: userID, MovieID: movieID}, nil
}

func (m *mockEngagementRepository) Update(ctx context.Context, tx *sqlx.Tx, action *model.EngagementAction) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, tx, action)
	}
	return nil
}

func (m *mockEngagementRepository) RatingsForMovie(ctx context.Context, tx *sqlx.Tx, movieID uuid.UUID) ([]float64, error) {
	if m.ratingsForMovieFn != nil {
		return m.ratingsForMovieFn(ctx, tx, movieID)
	}
	return nil, nil
}

func (m *mockEngagementRepository) GetRating(ctx context.Context, tx *sqlx.Tx, userID, movieID uuid.UUID) (*float64, error) {
	if m.getRatingFn != nil {
		return m.getRatingFn(ctx, tx, userID, movieID)
	}
	return nil, nil
}

func (m *mockEngagementRepository) UpsertRating(ctx context.Context, tx *sqlx.Tx, userID, movieID uuid.UUID, rating float64) error {
	if m.upsertRatingFn != nil {
		return m.upsertRatingFn(ctx, tx, userID, movieID, rating)
	}
	return nil
}

func (m *mockEngagementRepository) CountWatchedAndLiked(ctx context.Context, userID uuid.UUID) (int, int, error) {
	if m.countWatchedAndLikedFn != nil {
		return m.countWatchedAndLikedFn(ctx, userID)
	}
	return 0, 0, nil
}

type mockCommentRepository struct {
	createFn       func(ctx context.Context, movieID uuid.UUID, userID uuid.UUID, text string, parentID *int64) (*model.Comment, error)
	getByIDFn      func(ctx context.Context, commentID int64) (*model.Comment, error)
	listForMovieFn func(ctx context.Context, movieID uuid.UUID, parentID *int64, sort string, page, pageSize int) ([]model.Comment, int, error)
	repliesForFn   func(ctx context.Context, parentIDs []int64) (map[int64][]model.Comment, error)
	listByUserFn   func(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]model.Comment, int, error)
	allForMovieFn  func(ctx context.Context, movieID uuid.UUID) ([]model.Comment, error)
	likedByUserFn  func(ctx context.Context, userID uuid.UUID, commentIDs []int64) (map[int64]bool, error)
	hasLikedFn     func(ctx context.Context, tx *sqlx.Tx, commentID int64, userID uuid.UUID) (bool, error)
	addLikeFn      func(ctx context.Context, tx *sqlx.Tx, commentID int64, userID uuid.UUID) error
	removeLikeFn   func(ctx context.Context, tx *sqlx.Tx, commentID int64, userID uuid.UUID) error
	countLikesFn   func(ctx context.Context, tx *sqlx.Tx, commentID int64) (int, error)
	countByUserFn  func(ctx context.Context, userID uuid.UUID) (int, error)

	createCalls int
}

func (m *mockCommentRepository) Create(ctx context.Context, movieID uuid.UUID, userID uuid.UUID, text string, parentID *int64) (*model.Comment, error) {
	m.createCalls++
	if m.createFn != nil {
		return m.createFn(ctx, movieID, userID, text, parentID)
	}
	return &model.Comment{ID: 1, MovieID: movieID, UserID: userID, Text: text, ParentID: parentID}, nil
}

func (m *mockCommentRepository) GetByID(ctx context.Context, commentID int64) (*model.Comment, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, commentID)
	}
	return nil, model.ErrCommentNotFound
}

func (m *mockCommentRepository) ListForMovie(ctx context.Context, movieID uuid.UUID, parentID *int64, sort string, page, pageSize int) ([]model.Comment, int, error) {
	if m.listForMovieFn != nil {
		return m.listForMovieFn(ctx, movieID, parentID, sort, page, pageSize)
	}
	return nil, 0, nil
}

func (m *mockCommentRepository) RepliesFor(ctx context.Context, parentIDs []int64) (map[int64][]model.Comment, error) {
	if m.repliesForFn != nil {
		return m.repliesForFn(ctx, parentIDs)
	}
	return map[int64][]model.Comment{}, nil
}

func (m *mockCommentRepository) ListByUser(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]model.Comment, int, error) {
	if m.listByUserFn != nil {
		return m.listByUserFn(ctx, userID, page, pageSize)
	}
	return nil, 0, nil
}

func (m *mockCommentRepository) AllForMovie(ctx context.Context, movieID uuid.UUID) ([]model.Comment, error) {
	if m.allForMovieFn != nil {
		return m.allForMovieFn(ctx, movieID)
	}
	return nil, nil
}

func (m *mockCommentRepository) LikedByUser(ctx context.Context, userID uuid.UUID, commentIDs []int64) (map[int64]bool, error) {
	if m.likedByUserFn != nil {
		return m.likedByUserFn(ctx, userID, commentIDs)
	}
	return map[int64]bool{}, nil
}

func (m *mockCommentRepository) HasLiked(ctx context.Context, tx *sqlx.Tx, commentID int64, userID uuid.UUID) (bool, error) {
	if m.hasLikedFn != nil {
		return m.hasLikedFn(ctx, tx, commentID, userID)
	}
	return false, nil
}

func (m *mockCommentRepository) AddLike(ctx context.Context, tx *sqlx.Tx, commentID int64, userID uuid.UUID) error {
	if m.addLikeFn != nil {
		return m.addLikeFn(ctx, tx, commentID, userID)
	}
	return nil
}

func (m *mockCommentRepository) RemoveLike(ctx context.Context, tx *sqlx.Tx, commentID int64, userID uuid.UUID) error {
	if m.removeLikeFn != nil {
		return m.removeLikeFn(ctx, tx, commentID, userID)
	}
	return nil
}

func (m *mockCommentRepository) CountLikes(ctx context.Context, tx *sqlx.Tx, commentID int64) (int, error) {
	if m.countLikesFn != nil {
		return m.countLikesFn(ctx, tx, commentID)
	}
	return 0, nil
}

func (m *mockCommentRepository) CountByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	if m.countByUserFn != nil {
		return m.countByUserFn(ctx, userID)
	}
	return 0, nil
}

type mockCommunityRepository struct {
	createFn     func(ctx context.Context, tx *sqlx.Tx, community *model.Community) error
	getByIDFn    func(ctx context.Context, id int64) (*model.Community, error)
	listFn       func(ctx context.Context) ([]model.Community, error)
	deleteFn     func(ctx context.Context, id int64) error
	addMemberFn  func(ctx context.Context, tx *sqlx.Tx, communityID int64, userID uuid.UUID) (bool, error)
	isMemberFn   func(ctx context.Context, communityID int64, userID uuid.UUID) (bool, error)
	membersFn    func(ctx context.Context, communityID int64) ([]model.UserSummary, error)
	updateIconFn func(ctx context.Context, id int64, url, key string) (*string, error)

	isMemberCalls int
}

func (m *mockCommunityRepository) Create(ctx context.Context, tx *sqlx.Tx, community *model.Community) error {
	if m.createFn != nil {
		return m.createFn(ctx, tx, community)
	}
	community.ID = 1
	return nil
}

func (m *mockCommunityRepository) GetByID(ctx context.Context, id int64) (*model.Community, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, model.ErrCommunityNotFound
}

func (m *mockCommunityRepository) List(ctx context.Context) ([]model.Community, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

func (m *mockCommunityRepository) Delete(ctx context.Context, id int64) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func (m *mockCommunityRepository) AddMember(ctx context.Context, tx *sqlx.Tx, communityID int64, userID uuid.UUID) (bool, error) {
	if m.addMemberFn != nil {
		return m.addMemberFn(ctx, tx, communityID, userID)
	}
	return true, nil
}

func (m *mockCommunityRepository) IsMember(ctx context.Context, communityID int64, userID uuid.UUID) (bool, error) {
	m.isMemberCalls++
	if m.isMemberFn != nil {
		return m.isMemberFn(ctx, communityID, userID)
	}
	return false, nil
}

func (m *mockCommunityRepository) Members(ctx context.Context, communityID int64) ([]model.UserSummary, error) {
	if m.membersFn != nil {
		return m.membersFn(ctx, communityID)
	}
	return nil, nil
}

func (m *mockCommunityRepository) UpdateIcon(ctx context.Context, id int64, url, key string) (*string, error) {
	if m.updateIconFn != nil {
		return m.updateIconFn(ctx, id, url, key)
	}
	return nil, nil
}

type mockChatRepository struct {
	createFn          func(ctx context.Context, chat *model.Chat) error
	getByIDFn         func(ctx context.Context, id int64) (*model.Chat, error)
	listByCommunityFn func(ctx context.Context, communityID int64) ([]model.Chat, error)
	createMessageFn   func(ctx context.Context, msg *model.Message) error
	listMessagesFn    func(ctx context.Context, chatID int64) ([]model.Message, error)
	createPollFn      func(ctx context.Context, tx *sqlx.Tx, poll *model.Poll, options []string) error
	getPollFn         func(ctx context.Context, pollID int64) (*model.Poll, error)
	listPollsFn       func(ctx context.Context, chatID int64) ([]model.Poll, error)
	voteFn            func(ctx context.Context, tx *sqlx.Tx, pollID, optionID int64, userID uuid.UUID) error
}

func (m *mockChatRepository) Create(ctx context.Context, chat *model.Chat) error {
	if m.createFn != nil {
		return m.createFn(ctx, chat)
	}
	chat.ID = 1
	return nil
}

func (m *mockChatRepository) GetByID(ctx context.Context, id int64) (*model.Chat, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, model.ErrChatNotFound
}

func (m *mockChatRepository) ListByCommunity(ctx context.Context, communityID int64) ([]model.Chat, error) {
	if m.listByCommunityFn != nil {
		return m.listByCommunityFn(ctx, communityID)
	}
	return nil, nil
}

func (m *mockChatRepository) CreateMessage(ctx context.Context, msg *model.Message) error {
	if m.createMessageFn != nil {
		return m.createMessageFn(ctx, msg)
	}
	msg.ID = 1
	return nil
}

func (m *mockChatRepository) ListMessages(ctx context.Context, chatID int64) ([]model.Message, error) {
	if m.listMessagesFn != nil {
		return m.listMessagesFn(ctx, chatID)
	}
	return nil, nil
}

func (m *mockChatRepository) CreatePoll(ctx context.Context, tx *sqlx.Tx, poll *model.Poll, options []string) error {
	if m.createPollFn != nil {
		return m.createPollFn(ctx, tx, poll, options)
	}
	poll.ID = 1
	return nil
}

func (m *mockChatRepository) GetPoll(ctx context.Context, pollID int64) (*model.Poll, error) {
	if m.getPollFn != nil {
		return m.getPollFn(ctx, pollID)
	}
	return nil, model.ErrPollNotFound
}

func (m *mockChatRepository) ListPolls(ctx context.Context, chatID int64) ([]model.Poll, error) {
	if m.listPollsFn != nil {
		return m.listPollsFn(ctx, chatID)
	}
	return nil, nil
}

func (m *mockChatRepository) Vote(ctx context.Context, tx *sqlx.Tx, pollID, optionID int64, userID uuid.UUID) error {
	if m.voteFn != nil {
		return m.voteFn(ctx, tx, pollID, optionID, userID)
	}
	return nil
}

type mockEventRepository struct {
	createFn            func(ctx context.Context, event *model.Event) error
	getByIDFn           func(ctx context.Context, id uuid.UUID) (*model.Event, error)
	updateFn            func(ctx context.Context, event *model.Event) error
	deleteFn            func(ctx context.Context, id uuid.UUID) error
	listFn              func(ctx context.Context, filter model.EventFilter) ([]model.Event, error)
	addParticipantFn    func(ctx context.Context, eventID, userID uuid.UUID) (bool, error)
	removeParticipantFn func(ctx context.Context, eventID, userID uuid.UUID) (bool, error)
	participantsFn      func(ctx context.Context, eventID uuid.UUID) ([]model.UserSummary, error)
	statsFn             func(ctx context.Context, username string, now time.Time) (*model.EventStats, error)
}

func (m *mockEventRepository) Create(ctx context.Context, event *model.Event) error {
	if m.createFn != nil {
		return m.createFn(ctx, event)
	}
	return nil
}

func (m *mockEventRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Event, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, model.ErrEventNotFound
}

func (m *mockEventRepository) Update(ctx context.Context, event *model.Event) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, event)
	}
	return nil
}

func (m *mockEventRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func (m *mockEventRepository) List(ctx context.Context, filter model.EventFilter) ([]model.Event, error) {
	if m.listFn != nil {
		return m.listFn(ctx, filter)
	}
	return nil, nil
}

func (m *mockEventRepository) AddParticipant(ctx context.Context, eventID, userID uuid.UUID) (bool, error) {
	if m.addParticipantFn != nil {
		return m.addParticipantFn(ctx, eventID, userID)
	}
	return true, nil
}

func (m *mockEventRepository) RemoveParticipant(ctx context.Context, eventID, userID uuid.UUID) (bool, error) {
	if m.removeParticipantFn != nil {
		return m.removeParticipantFn(ctx, eventID, userID)
	}
	return true, nil
}

func (m *mockEventRepository) Participants(ctx context.Context, eventID uuid.UUID) ([]model.UserSummary, error) {
	if m.participantsFn != nil {
		return m.participantsFn(ctx, eventID)
	}
	return nil, nil
}

func (m *mockEventRepository) Stats(ctx context.Context, username string, now time.Time) (*model.EventStats, error) {
	if m.statsFn != nil {
		return m.statsFn(ctx, username, now)
	}
	return &model.EventStats{}, nil
}

type mockSummarizer struct {
	summarizeFn func(ctx context.Context, movieTitle string, comments []provider.CommentInput) (string, error)
	calls       int
}

func (m *mockSummarizer) SummarizeComments(ctx context.Context, movieTitle string, comments []provider.CommentInput) (string, error) {
	m.calls++
	if m.summarizeFn != nil {
		return m.summarizeFn(ctx, movieTitle, comments)
	}
	return "", nil
}

type mockSummaryCache struct {
	entries         map[uuid.UUID]string
	invalidateCalls int
}

func newMockSummaryCache() *mockSummaryCache {
	return &mockSummaryCache{entries: make(map[uuid.UUID]string)}
}

func (m *mockSummaryCache) Get(ctx context.Context, movieID uuid.UUID) (string, bool, error) {
	s, ok := m.entries[movieID]
	return s, ok, nil
}

func (m *mockSummaryCache) Set(ctx context.Context, movieID uuid.UUID, summary string) error {
	m.entries[movieID] = summary
	return nil
}

func (m *mockSummaryCache) Invalidate(ctx context.Context, movieID uuid.UUID) error {
	m.invalidateCalls++
	delete(m.entries, movieID)
	return nil
}

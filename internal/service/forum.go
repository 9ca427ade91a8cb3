package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"cinematch/internal/cache"
	"cinematch/internal/model"
	"cinematch/internal/provider"
	"cinematch/internal/repository"
)

// ForumService owns the per-movie discussion threads: posting, one-level
// threaded listings, like toggling and AI summarization of a movie's thread.
type ForumService struct {
	commentRepo repository.CommentRepository
	movieRepo   repository.MovieRepository
	summarizer  provider.Summarizer
	summaries   cache.SummaryCache
	db          *sqlx.DB
}

func NewForumService(
	commentRepo repository.CommentRepository,
	movieRepo repository.MovieRepository,
	summarizer provider.Summarizer,
	summaries cache.SummaryCache,
	db *sqlx.DB,
) *ForumService {
	return &ForumService{
		commentRepo: commentRepo,
		movieRepo:   movieRepo,
		summarizer:  summarizer,
		summaries:   summaries,
		db:          db,
	}
}

// Post creates a comment or a reply. A reply's parent must exist and belong
// to the same movie.
func (s *ForumService) Post(ctx context.Context, movieID, userID uuid.UUID, req *model.CreateCommentRequest) (*model.Comment, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, model.ErrTextRequired
	}
	if len(text) > model.MaxCommentLength {
		return nil, model.ErrTextTooLong
	}

	exists, err := s.movieRepo.Exists(ctx, movieID)
	if err != nil {
		return nil, fmt.Errorf("check movie: %w", err)
	}
	if !exists {
		return nil, model.ErrMovieNotFound
	}

	if req.ParentID != nil {
		parent, err := s.commentRepo.GetByID(ctx, *req.ParentID)
		if err != nil {
			return nil, err
		}
		if parent.MovieID != movieID {
			return nil, model.ErrParentMismatch
		}
	}

	comment, err := s.commentRepo.Create(ctx, movieID, userID, text, req.ParentID)
	if err != nil {
		return nil, err
	}

	// A new comment makes any cached summary stale.
	if s.summaries != nil {
		if err := s.summaries.Invalidate(ctx, movieID); err != nil {
			log.Printf("[forum] failed to invalidate summary cache for movie %s: %v", movieID, err)
		}
	}

	return comment, nil
}

// List returns one page of a movie's top-level comments with their direct
// replies attached. Replies deeper than one level are never loaded. A
// non-nil parentID restricts the listing to that comment's replies, without
// further nesting. When viewerID is set, each comment carries whether that
// user has liked it.
func (s *ForumService) List(ctx context.Context, movieID uuid.UUID, parentID *int64, sort string, page int, viewerID *uuid.UUID) (*model.CommentListResponse, error) {
	switch sort {
	case model.SortRecent, model.SortOldest, model.SortTop:
	case "":
		sort = model.SortRecent
	default:
		sort = model.SortRecent
	}
	if page <= 0 {
		page = 1
	}

	exists, err := s.movieRepo.Exists(ctx, movieID)
	if err != nil {
		return nil, fmt.Errorf("check movie: %w", err)
	}
	if !exists {
		return nil, model.ErrMovieNotFound
	}

	comments, total, err := s.commentRepo.ListForMovie(ctx, movieID, parentID, sort, page, model.ForumPageSize)
	if err != nil {
		return nil, err
	}

	if parentID == nil && len(comments) > 0 {
		parentIDs := make([]int64, len(comments))
		for i, c := range comments {
			parentIDs[i] = c.ID
		}

		replies, err := s.commentRepo.RepliesFor(ctx, parentIDs)
		if err != nil {
			return nil, err
		}
		for i := range comments {
			if r, ok := replies[comments[i].ID]; ok {
				comments[i].Replies = r
			} else {
				comments[i].Replies = []model.Comment{}
			}
		}
	}
	if parentID != nil {
		for i := range comments {
			comments[i].Replies = []model.Comment{}
		}
	}

	if viewerID != nil {
		if err := s.markViewerLikes(ctx, *viewerID, comments); err != nil {
			return nil, err
		}
	}

	return &model.CommentListResponse{
		Count:    total,
		Page:     page,
		PageSize: model.ForumPageSize,
		Results:  comments,
	}, nil
}

// markViewerLikes sets Liked on every comment and reply the viewer has liked,
// resolved in a single query over the page.
func (s *ForumService) markViewerLikes(ctx context.Context, viewerID uuid.UUID, comments []model.Comment) error {
	var ids []int64
	for _, c := range comments {
		ids = append(ids, c.ID)
		for _, r := range c.Replies {
			ids = append(ids, r.ID)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	liked, err := s.commentRepo.LikedByUser(ctx, viewerID, ids)
	if err != nil {
		return err
	}

	for i := range comments {
		comments[i].Liked = liked[comments[i].ID]
		for j := range comments[i].Replies {
			comments[i].Replies[j].Liked = liked[comments[i].Replies[j].ID]
		}
	}
	return nil
}

// ToggleLike flips the caller's like on a comment and returns the new state
// and count.
func (s *ForumService) ToggleLike(ctx context.Context, commentID int64, userID uuid.UUID) (liked bool, likes int, err error) {
	if _, err := s.commentRepo.GetByID(ctx, commentID); err != nil {
		return false, 0, err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	hasLiked, err := s.commentRepo.HasLiked(ctx, tx, commentID, userID)
	if err != nil {
		return false, 0, err
	}

	if hasLiked {
		if err := s.commentRepo.RemoveLike(ctx, tx, commentID, userID); err != nil {
			return false, 0, err
		}
	} else {
		if err := s.commentRepo.AddLike(ctx, tx, commentID, userID); err != nil {
			return false, 0, err
		}
	}

	likes, err = s.commentRepo.CountLikes(ctx, tx, commentID)
	if err != nil {
		return false, 0, err
	}

	if err := tx.Commit(); err != nil {
		return false, 0, fmt.Errorf("commit transaction: %w", err)
	}

	return !hasLiked, likes, nil
}

// Summarize produces a short text summary of a movie's full thread. The
// result is cached per movie; an empty thread and an upstream failure each
// collapse into a fixed fallback string rather than an error.
func (s *ForumService) Summarize(ctx context.Context, movieID uuid.UUID) (string, error) {
	movie, err := s.movieRepo.GetByID(ctx, movieID)
	if err != nil {
		return "", err
	}

	if s.summaries != nil {
		if cached, found, err := s.summaries.Get(ctx, movieID); err == nil && found {
			return cached, nil
		}
	}

	comments, err := s.commentRepo.AllForMovie(ctx, movieID)
	if err != nil {
		return "", err
	}
	if len(comments) == 0 {
		return model.SummaryNoComments, nil
	}

	input := make([]provider.CommentInput, len(comments))
	for i, c := range comments {
		input[i] = provider.CommentInput{Text: c.Text, Likes: c.LikesCount}
	}

	summary, err := s.summarizer.SummarizeComments(ctx, movie.Title, input)
	if err != nil {
		log.Printf("[forum] summarization failed for movie %s: %v", movieID, err)
		return model.SummaryFailed, nil
	}

	if s.summaries != nil {
		if err := s.summaries.Set(ctx, movieID, summary); err != nil {
			log.Printf("[forum] failed to cache summary for movie %s: %v", movieID, err)
		}
	}

	return summary, nil
}

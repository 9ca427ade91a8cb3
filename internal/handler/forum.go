package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"cinematch/internal/httputil"
	"cinematch/internal/model"
	"cinematch/internal/service"
	"cinematch/internal/transport/http/middleware"
)

type ForumHandler struct {
	forumService *service.ForumService
	userService  *service.UserService
}

func NewForumHandler(forumService *service.ForumService, userService *service.UserService) *ForumHandler {
	return &ForumHandler{
		forumService: forumService,
		userService:  userService,
	}
}

// List returns one page of a movie's thread.
// GET /movies/{id}/forum?filtro=recentes|antigos|bem_avaliados&parent=&page=
func (h *ForumHandler) List(w http.ResponseWriter, r *http.Request) {
	movieID, ok := parseMovieID(w, r)
	if !ok {
		return
	}

	var parentID *int64
	if s := r.URL.Query().Get("parent"); s != "" {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			httputil.WriteBadRequest(w, "Invalid parent ID")
			return
		}
		parentID = &id
	}

	sort := r.URL.Query().Get("filtro")

	// Anonymous listings work; a valid token additionally marks the
	// caller's own likes.
	var viewerID *uuid.UUID
	if id, ok := middleware.GetUserIDFromContext(r.Context()); ok {
		viewerID = &id
	}

	resp, err := h.forumService.List(r.Context(), movieID, parentID, sort, parsePage(r), viewerID)
	if err != nil {
		if errors.Is(err, model.ErrMovieNotFound) {
			httputil.WriteNotFound(w, "Movie not found")
			return
		}
		log.Printf("[ERROR] List forum handler: %v", err)
		httputil.WriteInternalError(w, "Failed to list comments")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, resp)
}

// Post creates a comment or a one-level reply.
// POST /movies/{id}/forum
func (h *ForumHandler) Post(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}

	movieID, ok := parseMovieID(w, r)
	if !ok {
		return
	}

	var req model.CreateCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	comment, err := h.forumService.Post(r.Context(), movieID, userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrTextRequired):
			httputil.WriteBadRequest(w, "Texto is required")
		case errors.Is(err, model.ErrTextTooLong):
			httputil.WriteBadRequest(w, "Texto is too long")
		case errors.Is(err, model.ErrMovieNotFound):
			httputil.WriteNotFound(w, "Movie not found")
		case errors.Is(err, model.ErrCommentNotFound):
			httputil.WriteNotFound(w, "Parent comment not found")
		case errors.Is(err, model.ErrParentMismatch):
			httputil.WriteBadRequest(w, "Parent comment belongs to another movie")
		default:
			log.Printf("[ERROR] Post forum handler: %v", err)
			httputil.WriteInternalError(w, "Failed to post comment")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, comment)
}

// ToggleLike flips the caller's like on a comment.
// POST /forum/{id}/like
func (h *ForumHandler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}

	commentID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid comment ID")
		return
	}

	liked, likes, err := h.forumService.ToggleLike(r.Context(), commentID, userID)
	if err != nil {
		if errors.Is(err, model.ErrCommentNotFound) {
			httputil.WriteNotFound(w, "Comment not found")
			return
		}
		log.Printf("[ERROR] ToggleLike handler: %v", err)
		httputil.WriteInternalError(w, "Failed to toggle like")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"liked":       liked,
		"likes_count": likes,
	})
}

// Report is not implemented; the endpoint exists so clients get a stable
// answer instead of a 404.
// POST /forum/{id}/report
func (h *ForumHandler) Report(w http.ResponseWriter, r *http.Request) {
	httputil.WriteNotImplemented(w, "Reporting is not implemented")
}

// ListByUser lists a user's comments across movies.
// GET /forum?user=<username>
func (h *ForumHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	username := r.URL.Query().Get("user")
	if username == "" {
		httputil.WriteBadRequest(w, "Query parameter 'user' is required")
		return
	}

	resp, err := h.userService.Comments(r.Context(), username, parsePage(r))
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			httputil.WriteNotFound(w, "User not found")
			return
		}
		log.Printf("[ERROR] ListByUser forum handler: %v", err)
		httputil.WriteInternalError(w, "Failed to list comments")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, resp)
}

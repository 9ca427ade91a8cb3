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

type MovieHandler struct {
	movieService      *service.MovieService
	engagementService *service.EngagementService
	forumService      *service.ForumService
	userService       *service.UserService
}

func NewMovieHandler(
	movieService *service.MovieService,
	engagementService *service.EngagementService,
	forumService *service.ForumService,
	userService *service.UserService,
) *MovieHandler {
	return &MovieHandler{
		movieService:      movieService,
		engagementService: engagementService,
		forumService:      forumService,
		userService:       userService,
	}
}

// List returns one page of the catalog.
// GET /movies?page=&page_size=
func (h *MovieHandler) List(w http.ResponseWriter, r *http.Request) {
	page := parsePage(r)
	pageSize := 0
	if s := r.URL.Query().Get("page_size"); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			pageSize = n
		}
	}

	resp, err := h.movieService.List(r.Context(), page, pageSize)
	if err != nil {
		log.Printf("[ERROR] List movies handler: %v", err)
		httputil.WriteInternalError(w, "Failed to list movies")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, resp)
}

// GetByID returns one movie.
// GET /movies/{id}
func (h *MovieHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	movieID, ok := parseMovieID(w, r)
	if !ok {
		return
	}

	movie, err := h.movieService.GetByID(r.Context(), movieID)
	if err != nil {
		if errors.Is(err, model.ErrMovieNotFound) {
			httputil.WriteNotFound(w, "Movie not found")
			return
		}
		log.Printf("[ERROR] GetByID movie handler: %v", err)
		httputil.WriteInternalError(w, "Failed to get movie")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, movie)
}

// GetUserAction returns (creating if needed) the caller's action row.
// GET /movies/{id}/user_action
func (h *MovieHandler) GetUserAction(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}

	movieID, ok := parseMovieID(w, r)
	if !ok {
		return
	}

	action, err := h.engagementService.GetAction(r.Context(), userID, movieID)
	if err != nil {
		if errors.Is(err, model.ErrMovieNotFound) {
			httputil.WriteNotFound(w, "Movie not found")
			return
		}
		log.Printf("[ERROR] GetUserAction handler: %v", err)
		httputil.WriteInternalError(w, "Failed to get user action")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, action)
}

// UpdateUserAction applies a partial update to the caller's action row.
// Invalid values for individual fields are silently dropped rather than
// rejected.
// POST /movies/{id}/user_action
func (h *MovieHandler) UpdateUserAction(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}

	movieID, ok := parseMovieID(w, r)
	if !ok {
		return
	}

	var update model.EngagementUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	action, err := h.engagementService.RecordAction(r.Context(), userID, movieID, update)
	if err != nil {
		if errors.Is(err, model.ErrMovieNotFound) {
			httputil.WriteNotFound(w, "Movie not found")
			return
		}
		log.Printf("[ERROR] UpdateUserAction handler: %v", err)
		httputil.WriteInternalError(w, "Failed to update user action")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, action)
}

// Rate folds a direct rating into the movie aggregate.
// POST /movies/{id}/rate
func (h *MovieHandler) Rate(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}

	movieID, ok := parseMovieID(w, r)
	if !ok {
		return
	}

	var req model.RateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	resp, err := h.engagementService.Rate(r.Context(), userID, movieID, req.Nota)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidRating):
			httputil.WriteBadRequest(w, "Nota must be between 0 and 10")
		case errors.Is(err, model.ErrMovieNotFound):
			httputil.WriteNotFound(w, "Movie not found")
		default:
			log.Printf("[ERROR] Rate handler: %v", err)
			httputil.WriteInternalError(w, "Failed to rate movie")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, resp)
}

// GetUserStats returns a user's engagement counters.
// GET /movies/user_stats/{username}
func (h *MovieHandler) GetUserStats(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	stats, err := h.userService.Stats(r.Context(), username)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			httputil.WriteNotFound(w, "User not found")
			return
		}
		log.Printf("[ERROR] GetUserStats handler: %v", err)
		httputil.WriteInternalError(w, "Failed to get stats")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, stats)
}

// SummarizeComments returns a cached or freshly generated summary of the
// movie's forum thread.
// GET /movies/{id}/summarize-comments
func (h *MovieHandler) SummarizeComments(w http.ResponseWriter, r *http.Request) {
	movieID, ok := parseMovieID(w, r)
	if !ok {
		return
	}

	summary, err := h.forumService.Summarize(r.Context(), movieID)
	if err != nil {
		if errors.Is(err, model.ErrMovieNotFound) {
			httputil.WriteNotFound(w, "Movie not found")
			return
		}
		log.Printf("[ERROR] SummarizeComments handler: %v", err)
		httputil.WriteInternalError(w, "Failed to summarize comments")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{"resumo": summary})
}

// parseMovieID reads the {id} URL parameter, writing a 400 on malformed
// input.
func parseMovieID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	movieID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid movie ID")
		return uuid.Nil, false
	}
	return movieID, true
}

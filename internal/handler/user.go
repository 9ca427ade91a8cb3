package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"cinematch/internal/httputil"
	"cinematch/internal/model"
	"cinematch/internal/service"
	"cinematch/internal/transport/http/middleware"
)

type UserHandler struct {
	userService  *service.UserService
	mediaService *service.MediaService
}

func NewUserHandler(userService *service.UserService, mediaService *service.MediaService) *UserHandler {
	return &UserHandler{
		userService:  userService,
		mediaService: mediaService,
	}
}

// GetProfile returns a user's public profile.
// GET /users/{username}
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	user, err := h.userService.GetByUsername(r.Context(), username)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			httputil.WriteNotFound(w, "User not found")
			return
		}
		log.Printf("[ERROR] GetProfile handler: %v", err)
		httputil.WriteInternalError(w, "Failed to get profile")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, user)
}

// GetMovies lists a user's movies filtered by engagement flag.
// GET /users/{username}/movies?filtro=assistidos|favoritos|assistir_depois
func (h *UserHandler) GetMovies(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	filter := r.URL.Query().Get("filtro")
	if filter == "" {
		filter = model.FilterWatched
	}

	page := parsePage(r)
	pageSize := 0
	if s := r.URL.Query().Get("page_size"); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			pageSize = n
		}
	}

	resp, err := h.userService.Movies(r.Context(), username, filter, page, pageSize)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			httputil.WriteNotFound(w, "User not found")
			return
		}
		if errors.Is(err, model.ErrInvalidFilter) {
			httputil.WriteBadRequest(w, "Invalid filter")
			return
		}
		log.Printf("[ERROR] GetMovies handler: %v", err)
		httputil.WriteInternalError(w, "Failed to list movies")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, resp)
}

// GetStats returns the per-user engagement counters.
// GET /users/{username}/stats
func (h *UserHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	stats, err := h.userService.Stats(r.Context(), username)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			httputil.WriteNotFound(w, "User not found")
			return
		}
		log.Printf("[ERROR] GetStats handler: %v", err)
		httputil.WriteInternalError(w, "Failed to get stats")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, stats)
}

// GetComments lists a user's forum comments, newest first.
// GET /users/{username}/comments
func (h *UserHandler) GetComments(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	resp, err := h.userService.Comments(r.Context(), username, parsePage(r))
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			httputil.WriteNotFound(w, "User not found")
			return
		}
		log.Printf("[ERROR] GetComments handler: %v", err)
		httputil.WriteInternalError(w, "Failed to list comments")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, resp)
}

// UploadImage replaces a user's avatar or banner. Only the profile owner may
// upload; the replaced object is deleted from storage after the database
// swap.
// POST /users/{username}/upload-image  (multipart: type=avatar|banner, image=<file>)
func (h *UserHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}

	username := chi.URLParam(r, "username")
	target, err := h.userService.GetByUsername(r.Context(), username)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			httputil.WriteNotFound(w, "User not found")
			return
		}
		httputil.WriteInternalError(w, "Failed to get user")
		return
	}
	if target.ID != userID {
		httputil.WriteForbidden(w, "Cannot change another user's images")
		return
	}

	maxFormSize := int64(model.MaxImageSizeBytes) + 1024*1024 // allow form overhead
	r.Body = http.MaxBytesReader(w, r.Body, maxFormSize)
	if err := r.ParseMultipartForm(maxFormSize); err != nil {
		httputil.WriteBadRequest(w, "Invalid form data")
		return
	}

	imageType := r.FormValue("type")
	if imageType != model.ImageTypeAvatar && imageType != model.ImageTypeBanner {
		httputil.WriteBadRequest(w, "Type must be avatar or banner")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		httputil.WriteBadRequest(w, "Image file is required")
		return
	}
	defer file.Close()

	var upload *model.UploadResult
	if imageType == model.ImageTypeAvatar {
		upload, err = h.mediaService.UploadAvatar(r.Context(), file, header)
	} else {
		upload, err = h.mediaService.UploadBanner(r.Context(), file, header)
	}
	if err != nil {
		switch {
		case errors.Is(err, model.ErrFileTooLarge):
			httputil.WriteBadRequestWithCode(w, model.CodeFileTooLarge, "Image exceeds 5MB limit")
		case errors.Is(err, model.ErrInvalidImageType):
			httputil.WriteBadRequestWithCode(w, model.CodeInvalidImageType, "Unsupported image type. Allowed: jpeg, png")
		default:
			log.Printf("[ERROR] UploadImage handler: %v", err)
			httputil.WriteInternalError(w, "Failed to upload image")
		}
		return
	}

	oldKey, err := h.userService.SetImage(r.Context(), userID, imageType, upload.URL, upload.Key)
	if err != nil {
		httputil.WriteInternalError(w, "Failed to save image")
		return
	}

	if oldKey != nil {
		if err := h.mediaService.DeleteObject(r.Context(), *oldKey); err != nil {
			log.Printf("[WARN] Failed to delete replaced image %s: %v", *oldKey, err)
		}
	}

	httputil.WriteJSON(w, http.StatusOK, upload)
}

// parsePage reads ?page= with a floor of 1.
func parsePage(r *http.Request) int {
	page := 1
	if s := r.URL.Query().Get("page"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			page = n
		}
	}
	return page
}

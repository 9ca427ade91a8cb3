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

type CommunityHandler struct {
	communityService *service.CommunityService
	mediaService     *service.MediaService
}

func NewCommunityHandler(communityService *service.CommunityService, mediaService *service.MediaService) *CommunityHandler {
	return &CommunityHandler{
		communityService: communityService,
		mediaService:     mediaService,
	}
}

// writeCommunityError maps the shared community/chat error set onto HTTP
// statuses. Existence errors come out as 404 and membership as 403; the
// services check in that order.
func writeCommunityError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, model.ErrCommunityNotFound):
		httputil.WriteNotFound(w, "Community not found")
	case errors.Is(err, model.ErrChatNotFound):
		httputil.WriteNotFound(w, "Chat not found")
	case errors.Is(err, model.ErrPollNotFound):
		httputil.WriteNotFound(w, "Poll not found")
	case errors.Is(err, model.ErrUserNotFound):
		httputil.WriteNotFound(w, "User not found")
	case errors.Is(err, model.ErrNotMember):
		httputil.WriteForbidden(w, "Not a member of this community")
	case errors.Is(err, model.ErrNotCommunityOwner):
		httputil.WriteForbidden(w, "Only the owner can perform this action")
	case errors.Is(err, model.ErrAlreadyVoted):
		httputil.WriteConflict(w, "Already voted in this poll")
	case errors.Is(err, model.ErrOptionNotInPoll):
		httputil.WriteBadRequest(w, "Option does not belong to this poll")
	default:
		log.Printf("[ERROR] %s handler: %v", op, err)
		httputil.WriteInternalError(w, "Request failed")
	}
}

func requireUser(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return uuid.Nil, false
	}
	return userID, true
}

func parseID(w http.ResponseWriter, r *http.Request, param, label string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid "+label)
		return 0, false
	}
	return id, true
}

// Create creates a community owned by the caller.
// POST /communities
func (h *CommunityHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req model.CreateCommunityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}
	if req.Name == "" {
		httputil.WriteBadRequest(w, "Name is required")
		return
	}

	community, err := h.communityService.Create(r.Context(), userID, &req)
	if err != nil {
		writeCommunityError(w, "Create community", err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, community)
}

// List returns every community.
// GET /communities
func (h *CommunityHandler) List(w http.ResponseWriter, r *http.Request) {
	communities, err := h.communityService.List(r.Context())
	if err != nil {
		writeCommunityError(w, "List communities", err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, communities)
}

// Get returns a community's details to a member.
// GET /communities/{id}
func (h *CommunityHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	communityID, ok := parseID(w, r, "id", "community ID")
	if !ok {
		return
	}

	community, err := h.communityService.Get(r.Context(), communityID, userID)
	if err != nil {
		writeCommunityError(w, "Get community", err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, community)
}

// Delete removes a community. Owner only.
// DELETE /communities/{id}/delete
func (h *CommunityHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	communityID, ok := parseID(w, r, "id", "community ID")
	if !ok {
		return
	}

	if err := h.communityService.Delete(r.Context(), communityID, userID); err != nil {
		writeCommunityError(w, "Delete community", err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// AddMember adds a user by username. Owner only.
// POST /communities/{id}/add-member
func (h *CommunityHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	communityID, ok := parseID(w, r, "id", "community ID")
	if !ok {
		return
	}

	var req model.AddMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}
	if req.Username == "" {
		httputil.WriteBadRequest(w, "Username is required")
		return
	}

	if err := h.communityService.AddMember(r.Context(), communityID, userID, req.Username); err != nil {
		writeCommunityError(w, "AddMember", err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, map[string]string{"status": "member added"})
}

// Members lists a community's members to a member.
// GET /communities/{id}/members
func (h *CommunityHandler) Members(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	communityID, ok := parseID(w, r, "id", "community ID")
	if !ok {
		return
	}

	members, err := h.communityService.Members(r.Context(), communityID, userID)
	if err != nil {
		writeCommunityError(w, "Members", err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, members)
}

// UploadIcon replaces the community icon. Owner only.
// POST /communities/{id}/upload-icon
func (h *CommunityHandler) UploadIcon(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	communityID, ok := parseID(w, r, "id", "community ID")
	if !ok {
		return
	}

	maxFormSize := int64(model.MaxImageSizeBytes) + 1024*1024
	r.Body = http.MaxBytesReader(w, r.Body, maxFormSize)
	if err := r.ParseMultipartForm(maxFormSize); err != nil {
		httputil.WriteBadRequest(w, "Invalid form data")
		return
	}

	file, header, err := r.FormFile("icon")
	if err != nil {
		httputil.WriteBadRequest(w, "Icon file is required")
		return
	}
	defer file.Close()

	upload, err := h.mediaService.UploadCommunityIcon(r.Context(), file, header)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrFileTooLarge):
			httputil.WriteBadRequestWithCode(w, model.CodeFileTooLarge, "Icon exceeds 5MB limit")
		case errors.Is(err, model.ErrInvalidImageType):
			httputil.WriteBadRequestWithCode(w, model.CodeInvalidImageType, "Unsupported image type. Allowed: jpeg, png")
		default:
			log.Printf("[ERROR] UploadIcon handler: %v", err)
			httputil.WriteInternalError(w, "Failed to upload icon")
		}
		return
	}

	oldKey, err := h.communityService.SetIcon(r.Context(), communityID, userID, upload.URL, upload.Key)
	if err != nil {
		writeCommunityError(w, "UploadIcon", err)
		return
	}

	if oldKey != nil {
		if err := h.mediaService.DeleteObject(r.Context(), *oldKey); err != nil {
			log.Printf("[WARN] Failed to delete replaced icon %s: %v", *oldKey, err)
		}
	}

	httputil.WriteJSON(w, http.StatusOK, upload)
}

// CreateChat adds a chat room. Members only.
// POST /communities/{id}/chats
func (h *CommunityHandler) CreateChat(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	communityID, ok := parseID(w, r, "id", "community ID")
	if !ok {
		return
	}

	var req model.CreateChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}
	if req.Name == "" {
		httputil.WriteBadRequest(w, "Name is required")
		return
	}

	chat, err := h.communityService.CreateChat(r.Context(), communityID, userID, &req)
	if err != nil {
		writeCommunityError(w, "CreateChat", err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, chat)
}

// Chats lists a community's chat rooms. Members only.
// GET /communities/{id}/chats
func (h *CommunityHandler) Chats(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	communityID, ok := parseID(w, r, "id", "community ID")
	if !ok {
		return
	}

	chats, err := h.communityService.Chats(r.Context(), communityID, userID)
	if err != nil {
		writeCommunityError(w, "Chats", err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, chats)
}

// PostMessage appends a text message to a chat. Members only.
// POST /communities/{id}/chats/{chatID}/messages
func (h *CommunityHandler) PostMessage(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	communityID, ok := parseID(w, r, "id", "community ID")
	if !ok {
		return
	}
	chatID, ok := parseID(w, r, "chatID", "chat ID")
	if !ok {
		return
	}

	var req model.PostMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}
	if req.Content == "" {
		httputil.WriteBadRequest(w, "Content is required")
		return
	}

	msg, err := h.communityService.PostMessage(r.Context(), communityID, chatID, userID, req.Content)
	if err != nil {
		writeCommunityError(w, "PostMessage", err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, msg)
}

// Messages lists a chat's messages, newest first. Members only.
// GET /communities/{id}/chats/{chatID}/messages
func (h *CommunityHandler) Messages(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	communityID, ok := parseID(w, r, "id", "community ID")
	if !ok {
		return
	}
	chatID, ok := parseID(w, r, "chatID", "chat ID")
	if !ok {
		return
	}

	messages, err := h.communityService.Messages(r.Context(), communityID, chatID, userID)
	if err != nil {
		writeCommunityError(w, "Messages", err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, messages)
}

// CreatePoll creates a poll in a poll chat. Members only.
// POST /communities/{id}/chats/{chatID}/polls
func (h *CommunityHandler) CreatePoll(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	communityID, ok := parseID(w, r, "id", "community ID")
	if !ok {
		return
	}
	chatID, ok := parseID(w, r, "chatID", "chat ID")
	if !ok {
		return
	}

	var req model.CreatePollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}
	if req.Title == "" {
		httputil.WriteBadRequest(w, "Title is required")
		return
	}
	if len(req.Options) < 2 {
		httputil.WriteBadRequest(w, "A poll needs at least two options")
		return
	}

	poll, err := h.communityService.CreatePoll(r.Context(), communityID, chatID, userID, &req)
	if err != nil {
		writeCommunityError(w, "CreatePoll", err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, poll)
}

// Polls lists a chat's polls. Members only.
// GET /communities/{id}/chats/{chatID}/polls
func (h *CommunityHandler) Polls(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	communityID, ok := parseID(w, r, "id", "community ID")
	if !ok {
		return
	}
	chatID, ok := parseID(w, r, "chatID", "chat ID")
	if !ok {
		return
	}

	polls, err := h.communityService.Polls(r.Context(), communityID, chatID, userID)
	if err != nil {
		writeCommunityError(w, "Polls", err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, polls)
}

// Vote casts the caller's single vote in a poll.
// POST /polls/{id}/vote
func (h *CommunityHandler) Vote(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	pollID, ok := parseID(w, r, "id", "poll ID")
	if !ok {
		return
	}

	var req model.VoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	poll, err := h.communityService.Vote(r.Context(), pollID, userID, req.OptionID)
	if err != nil {
		writeCommunityError(w, "Vote", err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, poll)
}

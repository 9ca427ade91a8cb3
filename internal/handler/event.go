package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"cinematch/internal/httputil"
	"cinematch/internal/model"
	"cinematch/internal/service"
)

type EventHandler struct {
	eventService *service.EventService
}

func NewEventHandler(eventService *service.EventService) *EventHandler {
	return &EventHandler{eventService: eventService}
}

// List returns events matching the query filters, soonest first.
// GET /events?month=YYYY-MM&user=&participating=&owned=
func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	filter := model.EventFilter{
		Username: r.URL.Query().Get("user"),
	}

	// A malformed month is ignored rather than rejected.
	if month := r.URL.Query().Get("month"); month != "" {
		if start, err := time.Parse("2006-01", month); err == nil {
			end := start.AddDate(0, 1, 0)
			filter.MonthStart = &start
			filter.MonthEnd = &end
		}
	}

	if r.URL.Query().Get("participating") == "true" {
		filter.Participating = &userID
	}
	if r.URL.Query().Get("owned") == "true" {
		filter.Owned = &userID
	}

	events, err := h.eventService.List(r.Context(), filter, userID)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			httputil.WriteNotFound(w, "User not found")
			return
		}
		log.Printf("[ERROR] List events handler: %v", err)
		httputil.WriteInternalError(w, "Failed to list events")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, events)
}

// Create creates an event owned by the caller.
// POST /events
func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req model.CreateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	event, err := h.eventService.Create(r.Context(), userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrEventTitleRequired):
			httputil.WriteBadRequest(w, "Title is required")
		case errors.Is(err, model.ErrEventTimeRequired):
			httputil.WriteBadRequest(w, "Event datetime is required")
		default:
			log.Printf("[ERROR] Create event handler: %v", err)
			httputil.WriteInternalError(w, "Failed to create event")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, event)
}

// Get returns one event.
// GET /events/{id}
func (h *EventHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	eventID, ok := parseEventID(w, r)
	if !ok {
		return
	}

	event, err := h.eventService.Get(r.Context(), eventID, userID)
	if err != nil {
		if errors.Is(err, model.ErrEventNotFound) {
			httputil.WriteNotFound(w, "Event not found")
			return
		}
		log.Printf("[ERROR] Get event handler: %v", err)
		httputil.WriteInternalError(w, "Failed to get event")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, event)
}

// Update modifies an event. Owner only.
// PUT /events/{id}
func (h *EventHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	eventID, ok := parseEventID(w, r)
	if !ok {
		return
	}

	var req model.CreateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	event, err := h.eventService.Update(r.Context(), eventID, userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrEventNotFound):
			httputil.WriteNotFound(w, "Event not found")
		case errors.Is(err, model.ErrNotEventOwner):
			httputil.WriteForbidden(w, "Only the owner can modify this event")
		default:
			log.Printf("[ERROR] Update event handler: %v", err)
			httputil.WriteInternalError(w, "Failed to update event")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, event)
}

// Delete removes an event. Owner only.
// DELETE /events/{id}
func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	eventID, ok := parseEventID(w, r)
	if !ok {
		return
	}

	if err := h.eventService.Delete(r.Context(), eventID, userID); err != nil {
		switch {
		case errors.Is(err, model.ErrEventNotFound):
			httputil.WriteNotFound(w, "Event not found")
		case errors.Is(err, model.ErrNotEventOwner):
			httputil.WriteForbidden(w, "Only the owner can delete this event")
		default:
			log.Printf("[ERROR] Delete event handler: %v", err)
			httputil.WriteInternalError(w, "Failed to delete event")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Join adds the caller to the event's participant set.
// POST /events/{id}/join
func (h *EventHandler) Join(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	eventID, ok := parseEventID(w, r)
	if !ok {
		return
	}

	if err := h.eventService.Join(r.Context(), eventID, userID); err != nil {
		switch {
		case errors.Is(err, model.ErrEventNotFound):
			httputil.WriteNotFound(w, "Event not found")
		case errors.Is(err, model.ErrAlreadyParticipant):
			httputil.WriteBadRequest(w, "Already a participant of this event")
		default:
			log.Printf("[ERROR] Join event handler: %v", err)
			httputil.WriteInternalError(w, "Failed to join event")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "joined"})
}

// Leave removes the caller from the event's participant set.
// POST /events/{id}/leave
func (h *EventHandler) Leave(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	eventID, ok := parseEventID(w, r)
	if !ok {
		return
	}

	if err := h.eventService.Leave(r.Context(), eventID, userID); err != nil {
		switch {
		case errors.Is(err, model.ErrEventNotFound):
			httputil.WriteNotFound(w, "Event not found")
		case errors.Is(err, model.ErrNotParticipant):
			httputil.WriteBadRequest(w, "Not a participant of this event")
		default:
			log.Printf("[ERROR] Leave event handler: %v", err)
			httputil.WriteInternalError(w, "Failed to leave event")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "left"})
}

// UserStats returns the per-user event summary.
// GET /events/user_stats?username=
func (h *EventHandler) UserStats(w http.ResponseWriter, r *http.Request) {
	username := r.URL.Query().Get("username")
	if username == "" {
		httputil.WriteBadRequest(w, "Query parameter 'username' is required")
		return
	}

	stats, err := h.eventService.Stats(r.Context(), username)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			httputil.WriteNotFound(w, "User not found")
			return
		}
		log.Printf("[ERROR] UserStats event handler: %v", err)
		httputil.WriteInternalError(w, "Failed to get stats")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, stats)
}

func parseEventID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	eventID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid event ID")
		return uuid.Nil, false
	}
	return eventID, true
}

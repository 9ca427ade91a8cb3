package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"cinematch/internal/model"
	"cinematch/internal/repository"
)

// EventService owns the shared calendar: events, their participant sets and
// the month/user filtered listing.
type EventService struct {
	eventRepo repository.EventRepository
	userRepo  repository.UserRepository
}

func NewEventService(eventRepo repository.EventRepository, userRepo repository.UserRepository) *EventService {
	return &EventService{
		eventRepo: eventRepo,
		userRepo:  userRepo,
	}
}

// Create creates an event owned by the caller. The owner automatically
// participates.
func (s *EventService) Create(ctx context.Context, ownerID uuid.UUID, req *model.CreateEventRequest) (*model.Event, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, model.ErrEventTitleRequired
	}
	if req.EventDatetime == nil {
		return nil, model.ErrEventTimeRequired
	}

	event := &model.Event{
		ID:            uuid.New(),
		Title:         strings.TrimSpace(req.Title),
		Description:   req.Description,
		EventDatetime: *req.EventDatetime,
		Location:      req.Location,
		ImageURL:      req.ImageURL,
		OwnerID:       ownerID,
	}

	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, err
	}

	if _, err := s.eventRepo.AddParticipant(ctx, event.ID, ownerID); err != nil {
		return nil, fmt.Errorf("add owner as participant: %w", err)
	}

	return s.Get(ctx, event.ID, ownerID)
}

// Get returns one event with owner and participants joined in.
func (s *EventService) Get(ctx context.Context, eventID, viewerID uuid.UUID) (*model.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if err := s.attachParticipants(ctx, event, viewerID); err != nil {
		return nil, err
	}
	return event, nil
}

// List returns events matching the filter, soonest first, with participants
// joined in.
func (s *EventService) List(ctx context.Context, filter model.EventFilter, viewerID uuid.UUID) ([]model.Event, error) {
	if filter.Username != "" {
		// Resolve early so an unknown username 404s instead of matching nothing.
		if _, err := s.userRepo.GetByUsername(ctx, filter.Username); err != nil {
			return nil, err
		}
	}

	events, err := s.eventRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	for i := range events {
		if err := s.attachParticipants(ctx, &events[i], viewerID); err != nil {
			return nil, err
		}
	}
	return events, nil
}

// Update modifies an event. Owner only; absent fields keep their values.
func (s *EventService) Update(ctx context.Context, eventID, callerID uuid.UUID, req *model.CreateEventRequest) (*model.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.OwnerID != callerID {
		return nil, model.ErrNotEventOwner
	}

	if strings.TrimSpace(req.Title) != "" {
		event.Title = strings.TrimSpace(req.Title)
	}
	if req.Description != nil {
		event.Description = req.Description
	}
	if req.EventDatetime != nil {
		event.EventDatetime = *req.EventDatetime
	}
	if req.Location != nil {
		event.Location = req.Location
	}
	if req.ImageURL != nil {
		event.ImageURL = req.ImageURL
	}

	if err := s.eventRepo.Update(ctx, event); err != nil {
		return nil, err
	}
	return s.Get(ctx, eventID, callerID)
}

// Delete removes an event. Owner only.
func (s *EventService) Delete(ctx context.Context, eventID, callerID uuid.UUID) error {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return err
	}
	if event.OwnerID != callerID {
		return model.ErrNotEventOwner
	}
	return s.eventRepo.Delete(ctx, eventID)
}

// Join adds the caller to an event's participant set.
func (s *EventService) Join(ctx context.Context, eventID, userID uuid.UUID) error {
	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		return err
	}

	added, err := s.eventRepo.AddParticipant(ctx, eventID, userID)
	if err != nil {
		return err
	}
	if !added {
		return model.ErrAlreadyParticipant
	}
	return nil
}

// Leave removes the caller from an event's participant set. The owner may
// leave too; ownership does not change.
func (s *EventService) Leave(ctx context.Context, eventID, userID uuid.UUID) error {
	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		return err
	}

	removed, err := s.eventRepo.RemoveParticipant(ctx, eventID, userID)
	if err != nil {
		return err
	}
	if !removed {
		return model.ErrNotParticipant
	}
	return nil
}

// Stats returns the per-user event summary.
func (s *EventService) Stats(ctx context.Context, username string) (*model.EventStats, error) {
	if _, err := s.userRepo.GetByUsername(ctx, username); err != nil {
		return nil, err
	}
	return s.eventRepo.Stats(ctx, username, time.Now())
}

func (s *EventService) attachParticipants(ctx context.Context, event *model.Event, viewerID uuid.UUID) error {
	participants, err := s.eventRepo.Participants(ctx, event.ID)
	if err != nil {
		return err
	}
	if participants == nil {
		participants = []model.UserSummary{}
	}
	event.Participants = participants

	for _, p := range participants {
		if p.ID == viewerID {
			event.IsParticipant = true
			break
		}
	}

	owner, err := s.userRepo.GetByID(ctx, event.OwnerID)
	if err == nil {
		event.Owner = &model.UserSummary{
			ID:        owner.ID,
			Username:  owner.Username,
			Name:      owner.Name,
			AvatarURL: owner.AvatarURL,
		}
	}
	return nil
}

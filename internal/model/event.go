package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Event is a calendar entry with an owner and a participant set. A user can
// own many events and participate in many events.
type Event struct {
	ID            uuid.UUID `db:"id" json:"id"`
	Title         string    `db:"title" json:"title"`
	Description   *string   `db:"description" json:"description"`
	EventDatetime time.Time `db:"event_datetime" json:"event_datetime"`
	Location      *string   `db:"location" json:"location"`
	ImageURL      *string   `db:"image" json:"image"`
	OwnerID       uuid.UUID `db:"owner_id" json:"owner_id"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`

	// Joined fields
	Owner         *UserSummary  `json:"owner,omitempty"`
	Participants  []UserSummary `json:"participants"`
	IsParticipant bool          `json:"is_participant"`
}

// EventFilter narrows the event listing. Zero values mean "no filter".
// MonthStart/MonthEnd are derived from the ?month=YYYY-MM parameter; a
// malformed month is silently ignored, as the original does.
type EventFilter struct {
	MonthStart    *time.Time
	MonthEnd      *time.Time
	Username      string
	Participating *uuid.UUID // only events this user participates in
	Owned         *uuid.UUID // only events this user owns
}

// CreateEventRequest is the request body for creating or updating an event.
type CreateEventRequest struct {
	Title         string     `json:"title"`
	Description   *string    `json:"description"`
	EventDatetime *time.Time `json:"event_datetime"`
	Location      *string    `json:"location"`
	ImageURL      *string    `json:"image"`
}

// EventStats is the per-user event summary.
type EventStats struct {
	TotalEvents    int `db:"total_events" json:"total_events"`
	OwnedEvents    int `db:"owned_events" json:"owned_events"`
	UpcomingEvents int `db:"upcoming_events" json:"upcoming_events"`
}

var (
	ErrEventNotFound      = errors.New("event not found")
	ErrNotEventOwner      = errors.New("not the owner of this event")
	ErrAlreadyParticipant = errors.New("already a participant of this event")
	ErrNotParticipant     = errors.New("not a participant of this event")
	ErrEventTitleRequired = errors.New("event title is required")
	ErrEventTimeRequired  = errors.New("event datetime is required")
)

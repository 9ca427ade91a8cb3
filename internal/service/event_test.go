package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"cinematch/internal/model"
)

func timePtr(t time.Time) *time.Time { return &t }

func eventFixture(ownerID uuid.UUID, eventID uuid.UUID) *mockEventRepository {
	return &mockEventRepository{
		getByIDFn: func(ctx context.Context, id uuid.UUID) (*model.Event, error) {
			if id == eventID {
				return &model.Event{ID: eventID, Title: "Sessão dupla", OwnerID: ownerID, EventDatetime: time.Now()}, nil
			}
			return nil, model.ErrEventNotFound
		},
	}
}

func TestEventCreate(t *testing.T) {
	owner := uuid.New()
	when := time.Date(2026, 9, 12, 20, 0, 0, 0, time.UTC)

	t.Run("missing title", func(t *testing.T) {
		svc := NewEventService(&mockEventRepository{}, &mockUserRepository{})

		_, err := svc.Create(context.Background(), owner, &model.CreateEventRequest{EventDatetime: timePtr(when)})
		if !errors.Is(err, model.ErrEventTitleRequired) {
			t.Errorf("Create error = %v, want ErrEventTitleRequired", err)
		}
	})

	t.Run("missing datetime", func(t *testing.T) {
		svc := NewEventService(&mockEventRepository{}, &mockUserRepository{})

		_, err := svc.Create(context.Background(), owner, &model.CreateEventRequest{Title: "Sessão dupla"})
		if !errors.Is(err, model.ErrEventTimeRequired) {
			t.Errorf("Create error = %v, want ErrEventTimeRequired", err)
		}
	})

	t.Run("owner joins automatically", func(t *testing.T) {
		var created *model.Event
		var participantAdded bool

		eventRepo := &mockEventRepository{
			createFn: func(ctx context.Context, event *model.Event) error {
				created = event
				return nil
			},
			getByIDFn: func(ctx context.Context, id uuid.UUID) (*model.Event, error) {
				if created != nil && id == created.ID {
					ev := *created
					return &ev, nil
				}
				return nil, model.ErrEventNotFound
			},
			addParticipantFn: func(ctx context.Context, eventID, userID uuid.UUID) (bool, error) {
				if userID == owner {
					participantAdded = true
				}
				return true, nil
			},
			participantsFn: func(ctx context.Context, eventID uuid.UUID) ([]model.UserSummary, error) {
				return []model.UserSummary{{ID: owner, Username: "ana"}}, nil
			},
		}
		userRepo := &mockUserRepository{
			getByIDFn: func(ctx context.Context, id uuid.UUID) (*model.User, error) {
				return &model.User{ID: id, Username: "ana"}, nil
			},
		}
		svc := NewEventService(eventRepo, userRepo)

		event, err := svc.Create(context.Background(), owner, &model.CreateEventRequest{
			Title:         "  Sessão dupla  ",
			EventDatetime: timePtr(when),
		})
		if err != nil {
			t.Fatalf("Create returned error: %v", err)
		}

		if event.Title != "Sessão dupla" {
			t.Errorf("title = %q, want trimmed %q", event.Title, "Sessão dupla")
		}
		if !participantAdded {
			t.Error("owner was not added as a participant")
		}
		if !event.IsParticipant {
			t.Error("IsParticipant must be true for the owner")
		}
		if len(event.Participants) != 1 {
			t.Errorf("len(Participants) = %d, want 1", len(event.Participants))
		}
	})
}

func TestEventUpdate_OwnerOnly(t *testing.T) {
	owner := uuid.New()
	eventID := uuid.New()
	svc := NewEventService(eventFixture(owner, eventID), &mockUserRepository{})

	_, err := svc.Update(context.Background(), eventID, uuid.New(), &model.CreateEventRequest{Title: "novo título"})
	if !errors.Is(err, model.ErrNotEventOwner) {
		t.Errorf("Update error = %v, want ErrNotEventOwner", err)
	}
}

func TestEventUpdate_PartialFields(t *testing.T) {
	owner := uuid.New()
	eventID := uuid.New()
	original := time.Date(2026, 9, 12, 20, 0, 0, 0, time.UTC)

	var updated *model.Event
	eventRepo := &mockEventRepository{
		getByIDFn: func(ctx context.Context, id uuid.UUID) (*model.Event, error) {
			if updated != nil {
				ev := *updated
				return &ev, nil
			}
			return &model.Event{ID: eventID, Title: "Sessão dupla", OwnerID: owner, EventDatetime: original}, nil
		},
		updateFn: func(ctx context.Context, event *model.Event) error {
			updated = event
			return nil
		},
	}
	svc := NewEventService(eventRepo, &mockUserRepository{})

	event, err := svc.Update(context.Background(), eventID, owner, &model.CreateEventRequest{Title: "Maratona"})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if event.Title != "Maratona" {
		t.Errorf("title = %q, want Maratona", event.Title)
	}
	if !event.EventDatetime.Equal(original) {
		t.Errorf("datetime changed to %v, want untouched %v", event.EventDatetime, original)
	}
}

func TestEventDelete_OwnerOnly(t *testing.T) {
	owner := uuid.New()
	eventID := uuid.New()
	svc := NewEventService(eventFixture(owner, eventID), &mockUserRepository{})

	if err := svc.Delete(context.Background(), eventID, uuid.New()); !errors.Is(err, model.ErrNotEventOwner) {
		t.Errorf("Delete error = %v, want ErrNotEventOwner", err)
	}
	if err := svc.Delete(context.Background(), uuid.New(), owner); !errors.Is(err, model.ErrEventNotFound) {
		t.Errorf("Delete of unknown event error = %v, want ErrEventNotFound", err)
	}
}

func TestEventJoinLeave(t *testing.T) {
	owner := uuid.New()
	eventID := uuid.New()

	t.Run("repeat join", func(t *testing.T) {
		eventRepo := eventFixture(owner, eventID)
		eventRepo.addParticipantFn = func(ctx context.Context, eid, uid uuid.UUID) (bool, error) {
			return false, nil
		}
		svc := NewEventService(eventRepo, &mockUserRepository{})

		if err := svc.Join(context.Background(), eventID, uuid.New()); !errors.Is(err, model.ErrAlreadyParticipant) {
			t.Errorf("Join error = %v, want ErrAlreadyParticipant", err)
		}
	})

	t.Run("leave without joining", func(t *testing.T) {
		eventRepo := eventFixture(owner, eventID)
		eventRepo.removeParticipantFn = func(ctx context.Context, eid, uid uuid.UUID) (bool, error) {
			return false, nil
		}
		svc := NewEventService(eventRepo, &mockUserRepository{})

		if err := svc.Leave(context.Background(), eventID, uuid.New()); !errors.Is(err, model.ErrNotParticipant) {
			t.Errorf("Leave error = %v, want ErrNotParticipant", err)
		}
	})

	t.Run("join unknown event", func(t *testing.T) {
		svc := NewEventService(eventFixture(owner, eventID), &mockUserRepository{})

		if err := svc.Join(context.Background(), uuid.New(), uuid.New()); !errors.Is(err, model.ErrEventNotFound) {
			t.Errorf("Join error = %v, want ErrEventNotFound", err)
		}
	})
}

func TestEventList_UnknownUsername(t *testing.T) {
	svc := NewEventService(&mockEventRepository{}, &mockUserRepository{})

	_, err := svc.List(context.Background(), model.EventFilter{Username: "ghost"}, uuid.New())
	if !errors.Is(err, model.ErrUserNotFound) {
		t.Errorf("List error = %v, want ErrUserNotFound", err)
	}
}

func TestEventStats_UnknownUsername(t *testing.T) {
	svc := NewEventService(&mockEventRepository{}, &mockUserRepository{})

	if _, err := svc.Stats(context.Background(), "ghost"); !errors.Is(err, model.ErrUserNotFound) {
		t.Errorf("Stats error = %v, want ErrUserNotFound", err)
	}
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"cinematch/internal/model"
)

type eventRepository struct {
	db *sqlx.DB
}

func NewEventRepository(db *sqlx.DB) EventRepository {
	return &eventRepository{db: db}
}

const eventColumns = `id, title, description, event_datetime, location, image, owner_id, created_at, updated_at`

func (r *eventRepository) Create(ctx context.Context, event *model.Event) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	query := `
		INSERT INTO events (id, title, description, event_datetime, location, image, owner_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		event.ID, event.Title, event.Description, event.EventDatetime,
		event.Location, event.ImageURL, event.OwnerID,
	).Scan(&event.CreatedAt, &event.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

func (r *eventRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Event, error) {
	var event model.Event
	err := r.db.GetContext(ctx, &event,
		`SELECT `+eventColumns+` FROM events WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrEventNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}
	return &event, nil
}

func (r *eventRepository) Update(ctx context.Context, event *model.Event) error {
	query := `
		UPDATE events
		SET title = $1, description = $2, event_datetime = $3, location = $4,
		    image = $5, updated_at = now()
		WHERE id = $6
		RETURNING updated_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		event.Title, event.Description, event.EventDatetime, event.Location,
		event.ImageURL, event.ID,
	).Scan(&event.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.ErrEventNotFound
	}
	if err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	return nil
}

func (r *eventRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrEventNotFound
	}
	return nil
}

// List applies the calendar filters. The username filter matches events the
// user owns or participates in, like the original's Q(owner)|Q(participants).
func (r *eventRepository) List(ctx context.Context, filter model.EventFilter) ([]model.Event, error) {
	query := `SELECT DISTINCT ` + prefixColumns("e", eventColumns) + ` FROM events e`
	var where []string
	var args []interface{}

	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Username != "" {
		query += `
			LEFT JOIN event_participants ep ON ep.event_id = e.id
			LEFT JOIN users pu ON pu.id = ep.user_id
			JOIN users ou ON ou.id = e.owner_id`
		p := arg(filter.Username)
		where = append(where, fmt.Sprintf("(ou.username = %s OR pu.username = %s)", p, p))
	}
	if filter.MonthStart != nil && filter.MonthEnd != nil {
		where = append(where, fmt.Sprintf("e.event_datetime >= %s", arg(*filter.MonthStart)))
		where = append(where, fmt.Sprintf("e.event_datetime < %s", arg(*filter.MonthEnd)))
	}
	if filter.Participating != nil {
		where = append(where, fmt.Sprintf(
			"EXISTS(SELECT 1 FROM event_participants p2 WHERE p2.event_id = e.id AND p2.user_id = %s)",
			arg(*filter.Participating)))
	}
	if filter.Owned != nil {
		where = append(where, fmt.Sprintf("e.owner_id = %s", arg(*filter.Owned)))
	}

	for i, cond := range where {
		if i == 0 {
			query += " WHERE " + cond
		} else {
			query += " AND " + cond
		}
	}
	query += " ORDER BY event_datetime ASC"

	var events []model.Event
	if err := r.db.SelectContext(ctx, &events, query, args...); err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

func (r *eventRepository) AddParticipant(ctx context.Context, eventID, userID uuid.UUID) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		INSERT INTO event_participants (event_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (event_id, user_id) DO NOTHING
	`, eventID, userID)
	if err != nil {
		return false, fmt.Errorf("add participant: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return rows > 0, nil
}

func (r *eventRepository) RemoveParticipant(ctx context.Context, eventID, userID uuid.UUID) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM event_participants WHERE event_id = $1 AND user_id = $2`,
		eventID, userID)
	if err != nil {
		return false, fmt.Errorf("remove participant: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return rows > 0, nil
}

func (r *eventRepository) Participants(ctx context.Context, eventID uuid.UUID) ([]model.UserSummary, error) {
	var users []model.UserSummary
	err := r.db.SelectContext(ctx, &users, `
		SELECT u.id, u.username, u.name, u.avatar_url
		FROM event_participants ep
		JOIN users u ON u.id = ep.user_id
		WHERE ep.event_id = $1
		ORDER BY ep.joined_at ASC
	`, eventID)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	return users, nil
}

func (r *eventRepository) Stats(ctx context.Context, username string, now time.Time) (*model.EventStats, error) {
	var stats model.EventStats
	err := r.db.GetContext(ctx, &stats, `
		WITH user_events AS (
			SELECT DISTINCT e.id, e.event_datetime, e.owner_id
			FROM events e
			JOIN users ou ON ou.id = e.owner_id
			LEFT JOIN event_participants ep ON ep.event_id = e.id
			LEFT JOIN users pu ON pu.id = ep.user_id
			WHERE ou.username = $1 OR pu.username = $1
		)
		SELECT
			COUNT(*) AS total_events,
			COUNT(*) FILTER (WHERE owner_id = (SELECT id FROM users WHERE username = $1)) AS owned_events,
			COUNT(*) FILTER (WHERE event_datetime > $2) AS upcoming_events
		FROM user_events
	`, username, now)
	if err != nil {
		return nil, fmt.Errorf("event stats: %w", err)
	}
	return &stats, nil
}

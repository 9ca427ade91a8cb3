package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"cinematch/internal/model"
)

type chatRepository struct {
	db *sqlx.DB
}

func NewChatRepository(db *sqlx.DB) ChatRepository {
	return &chatRepository{db: db}
}

func (r *chatRepository) Create(ctx context.Context, chat *model.Chat) error {
	query := `
		INSERT INTO chats (community_id, name, chat_type)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	err := r.db.QueryRowxContext(ctx, query, chat.CommunityID, chat.Name, chat.ChatType).
		Scan(&chat.ID, &chat.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert chat: %w", err)
	}
	return nil
}

func (r *chatRepository) GetByID(ctx context.Context, id int64) (*model.Chat, error) {
	var chat model.Chat
	err := r.db.GetContext(ctx, &chat,
		`SELECT id, community_id, name, chat_type, created_at FROM chats WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrChatNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get chat: %w", err)
	}
	return &chat, nil
}

func (r *chatRepository) ListByCommunity(ctx context.Context, communityID int64) ([]model.Chat, error) {
	var chats []model.Chat
	err := r.db.SelectContext(ctx, &chats, `
		SELECT id, community_id, name, chat_type, created_at
		FROM chats WHERE community_id = $1 ORDER BY created_at ASC
	`, communityID)
	if err != nil {
		return nil, fmt.Errorf("list chats: %w", err)
	}
	return chats, nil
}

func (r *chatRepository) CreateMessage(ctx context.Context, msg *model.Message) error {
	query := `
		INSERT INTO text_messages (chat_id, user_id, content)
		VALUES ($1, $2, $3)
		RETURNING id, sent_at
	`
	err := r.db.QueryRowxContext(ctx, query, msg.ChatID, msg.UserID, msg.Content).
		Scan(&msg.ID, &msg.SentAt)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

func (r *chatRepository) ListMessages(ctx context.Context, chatID int64) ([]model.Message, error) {
	var messages []model.Message
	err := r.db.SelectContext(ctx, &messages, `
		SELECT m.id, m.chat_id, m.user_id, u.username, m.content, m.sent_at
		FROM text_messages m
		JOIN users u ON u.id = m.user_id
		WHERE m.chat_id = $1
		ORDER BY m.sent_at DESC
	`, chatID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return messages, nil
}

func (r *chatRepository) CreatePoll(ctx context.Context, tx *sqlx.Tx, poll *model.Poll, options []string) error {
	query := `
		INSERT INTO polls (chat_id, user_id, title)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	err := tx.QueryRowxContext(ctx, query, poll.ChatID, poll.UserID, poll.Title).
		Scan(&poll.ID, &poll.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert poll: %w", err)
	}

	poll.Options = make([]model.PollOption, 0, len(options))
	for _, text := range options {
		var opt model.PollOption
		err := tx.QueryRowxContext(ctx, `
			INSERT INTO poll_options (poll_id, text) VALUES ($1, $2) RETURNING id
		`, poll.ID, text).Scan(&opt.ID)
		if err != nil {
			return fmt.Errorf("insert poll option: %w", err)
		}
		opt.PollID = poll.ID
		opt.Text = text
		poll.Options = append(poll.Options, opt)
	}
	return nil
}

func (r *chatRepository) GetPoll(ctx context.Context, pollID int64) (*model.Poll, error) {
	var poll model.Poll
	err := r.db.GetContext(ctx, &poll, `
		SELECT id, chat_id, user_id, title, total_votes, created_at
		FROM polls WHERE id = $1
	`, pollID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrPollNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get poll: %w", err)
	}

	err = r.db.SelectContext(ctx, &poll.Options, `
		SELECT id, poll_id, text, votes FROM poll_options WHERE poll_id = $1 ORDER BY id ASC
	`, pollID)
	if err != nil {
		return nil, fmt.Errorf("get poll options: %w", err)
	}
	return &poll, nil
}

func (r *chatRepository) ListPolls(ctx context.Context, chatID int64) ([]model.Poll, error) {
	var polls []model.Poll
	err := r.db.SelectContext(ctx, &polls, `
		SELECT id, chat_id, user_id, title, total_votes, created_at
		FROM polls WHERE chat_id = $1 ORDER BY created_at DESC
	`, chatID)
	if err != nil {
		return nil, fmt.Errorf("list polls: %w", err)
	}

	for i := range polls {
		err = r.db.SelectContext(ctx, &polls[i].Options, `
			SELECT id, poll_id, text, votes FROM poll_options WHERE poll_id = $1 ORDER BY id ASC
		`, polls[i].ID)
		if err != nil {
			return nil, fmt.Errorf("list poll options: %w", err)
		}
	}
	return polls, nil
}

// Vote registers one vote. The poll_votes table is unique per (poll, user),
// so a second vote from the same member surfaces as ErrAlreadyVoted.
func (r *chatRepository) Vote(ctx context.Context, tx *sqlx.Tx, pollID, optionID int64, userID uuid.UUID) error {
	var belongs bool
	err := tx.GetContext(ctx, &belongs,
		`SELECT EXISTS(SELECT 1 FROM poll_options WHERE id = $1 AND poll_id = $2)`,
		optionID, pollID)
	if err != nil {
		return fmt.Errorf("check poll option: %w", err)
	}
	if !belongs {
		return model.ErrOptionNotInPoll
	}

	result, err := tx.ExecContext(ctx, `
		INSERT INTO poll_votes (poll_id, option_id, user_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (poll_id, user_id) DO NOTHING
	`, pollID, optionID, userID)
	if err != nil {
		return fmt.Errorf("insert poll vote: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrAlreadyVoted
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE poll_options SET votes = votes + 1 WHERE id = $1`, optionID); err != nil {
		return fmt.Errorf("bump option votes: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE polls SET total_votes = total_votes + 1 WHERE id = $1`, pollID); err != nil {
		return fmt.Errorf("bump poll votes: %w", err)
	}
	return nil
}

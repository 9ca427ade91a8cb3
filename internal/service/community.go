package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"cinematch/internal/model"
	"cinematch/internal/repository"
)

// CommunityService owns communities, their chats and everything gated behind
// membership. Every gated operation checks existence before membership, so a
// non-member probing a missing community sees 404, never 403.
type CommunityService struct {
	communityRepo repository.CommunityRepository
	chatRepo      repository.ChatRepository
	userRepo      repository.UserRepository
	db            *sqlx.DB
}

func NewCommunityService(
	communityRepo repository.CommunityRepository,
	chatRepo repository.ChatRepository,
	userRepo repository.UserRepository,
	db *sqlx.DB,
) *CommunityService {
	return &CommunityService{
		communityRepo: communityRepo,
		chatRepo:      chatRepo,
		userRepo:      userRepo,
		db:            db,
	}
}

// requireMember loads the community and verifies the caller's membership, in
// that order.
func (s *CommunityService) requireMember(ctx context.Context, communityID int64, userID uuid.UUID) (*model.Community, error) {
	community, err := s.communityRepo.GetByID(ctx, communityID)
	if err != nil {
		return nil, err
	}

	isMember, err := s.communityRepo.IsMember(ctx, communityID, userID)
	if err != nil {
		return nil, fmt.Errorf("check membership: %w", err)
	}
	if !isMember {
		return nil, model.ErrNotMember
	}
	return community, nil
}

// Create creates a community with the caller as owner and first member.
func (s *CommunityService) Create(ctx context.Context, ownerID uuid.UUID, req *model.CreateCommunityRequest) (*model.Community, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("name is required")
	}

	community := &model.Community{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		OwnerID:     ownerID,
		IsPublic:    true,
	}
	if req.IsPublic != nil {
		community.IsPublic = *req.IsPublic
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.communityRepo.Create(ctx, tx, community); err != nil {
		return nil, err
	}

	if _, err := s.communityRepo.AddMember(ctx, tx, community.ID, ownerID); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return community, nil
}

// List returns every community. Listing is open; contents are not.
func (s *CommunityService) List(ctx context.Context) ([]model.Community, error) {
	return s.communityRepo.List(ctx)
}

// Get returns a community's details to a member.
func (s *CommunityService) Get(ctx context.Context, communityID int64, userID uuid.UUID) (*model.Community, error) {
	return s.requireMember(ctx, communityID, userID)
}

// Delete removes a community. Owner only.
func (s *CommunityService) Delete(ctx context.Context, communityID int64, userID uuid.UUID) error {
	community, err := s.communityRepo.GetByID(ctx, communityID)
	if err != nil {
		return err
	}
	if community.OwnerID != userID {
		return model.ErrNotCommunityOwner
	}
	return s.communityRepo.Delete(ctx, communityID)
}

// AddMember adds a user by username. Owner only; re-adding is a no-op.
func (s *CommunityService) AddMember(ctx context.Context, communityID int64, callerID uuid.UUID, username string) error {
	community, err := s.communityRepo.GetByID(ctx, communityID)
	if err != nil {
		return err
	}
	if community.OwnerID != callerID {
		return model.ErrNotCommunityOwner
	}

	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := s.communityRepo.AddMember(ctx, tx, communityID, user.ID); err != nil {
		return err
	}

	return tx.Commit()
}

// SetIcon swaps the community icon reference, returning the previous object
// key. Owner only.
func (s *CommunityService) SetIcon(ctx context.Context, communityID int64, callerID uuid.UUID, url, key string) (*string, error) {
	community, err := s.communityRepo.GetByID(ctx, communityID)
	if err != nil {
		return nil, err
	}
	if community.OwnerID != callerID {
		return nil, model.ErrNotCommunityOwner
	}
	return s.communityRepo.UpdateIcon(ctx, communityID, url, key)
}

// Members lists a community's members to a member.
func (s *CommunityService) Members(ctx context.Context, communityID int64, userID uuid.UUID) ([]model.UserSummary, error) {
	if _, err := s.requireMember(ctx, communityID, userID); err != nil {
		return nil, err
	}
	return s.communityRepo.Members(ctx, communityID)
}

// CreateChat adds a chat room to a community. Members only.
func (s *CommunityService) CreateChat(ctx context.Context, communityID int64, userID uuid.UUID, req *model.CreateChatRequest) (*model.Chat, error) {
	if _, err := s.requireMember(ctx, communityID, userID); err != nil {
		return nil, err
	}

	if strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("name is required")
	}

	chatType := req.ChatType
	switch chatType {
	case model.ChatTypeText, model.ChatTypeCalendar, model.ChatTypePoll:
	case "":
		chatType = model.ChatTypeText
	default:
		return nil, fmt.Errorf("unknown chat type %q", chatType)
	}

	chat := &model.Chat{
		CommunityID: communityID,
		Name:        strings.TrimSpace(req.Name),
		ChatType:    chatType,
	}
	if err := s.chatRepo.Create(ctx, chat); err != nil {
		return nil, err
	}
	return chat, nil
}

// Chats lists a community's chat rooms to a member.
func (s *CommunityService) Chats(ctx context.Context, communityID int64, userID uuid.UUID) ([]model.Chat, error) {
	if _, err := s.requireMember(ctx, communityID, userID); err != nil {
		return nil, err
	}
	return s.chatRepo.ListByCommunity(ctx, communityID)
}

// requireChat loads a chat, verifies it belongs to this community and only
// then gates on membership. Existence is checked first, so a non-member
// probing a missing chat id sees not-found rather than forbidden.
func (s *CommunityService) requireChat(ctx context.Context, communityID, chatID int64, userID uuid.UUID) (*model.Chat, error) {
	chat, err := s.chatRepo.GetByID(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if chat.CommunityID != communityID {
		return nil, model.ErrChatNotFound
	}

	if _, err := s.requireMember(ctx, communityID, userID); err != nil {
		return nil, err
	}
	return chat, nil
}

// PostMessage appends a text message to a chat.
func (s *CommunityService) PostMessage(ctx context.Context, communityID, chatID int64, userID uuid.UUID, content string) (*model.Message, error) {
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("content is required")
	}

	if _, err := s.requireChat(ctx, communityID, chatID, userID); err != nil {
		return nil, err
	}

	msg := &model.Message{
		ChatID:  chatID,
		UserID:  userID,
		Content: content,
	}
	if err := s.chatRepo.CreateMessage(ctx, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// Messages lists a chat's messages, newest first.
func (s *CommunityService) Messages(ctx context.Context, communityID, chatID int64, userID uuid.UUID) ([]model.Message, error) {
	if _, err := s.requireChat(ctx, communityID, chatID, userID); err != nil {
		return nil, err
	}
	return s.chatRepo.ListMessages(ctx, chatID)
}

// CreatePoll creates a poll with its options in a poll chat.
func (s *CommunityService) CreatePoll(ctx context.Context, communityID, chatID int64, userID uuid.UUID, req *model.CreatePollRequest) (*model.Poll, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, fmt.Errorf("title is required")
	}
	if len(req.Options) < 2 {
		return nil, fmt.Errorf("a poll needs at least two options")
	}

	chat, err := s.requireChat(ctx, communityID, chatID, userID)
	if err != nil {
		return nil, err
	}
	if chat.ChatType != model.ChatTypePoll {
		return nil, fmt.Errorf("chat does not accept polls")
	}

	poll := &model.Poll{
		ChatID: chatID,
		UserID: userID,
		Title:  strings.TrimSpace(req.Title),
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.chatRepo.CreatePoll(ctx, tx, poll, req.Options); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return poll, nil
}

// Polls lists a chat's polls with their options.
func (s *CommunityService) Polls(ctx context.Context, communityID, chatID int64, userID uuid.UUID) ([]model.Poll, error) {
	if _, err := s.requireChat(ctx, communityID, chatID, userID); err != nil {
		return nil, err
	}
	return s.chatRepo.ListPolls(ctx, chatID)
}

// Vote casts the caller's single vote and returns the updated poll. The
// community gate is resolved through the poll's chat.
func (s *CommunityService) Vote(ctx context.Context, pollID int64, userID uuid.UUID, optionID int64) (*model.Poll, error) {
	poll, err := s.chatRepo.GetPoll(ctx, pollID)
	if err != nil {
		return nil, err
	}

	chat, err := s.chatRepo.GetByID(ctx, poll.ChatID)
	if err != nil {
		return nil, err
	}

	if _, err := s.requireMember(ctx, chat.CommunityID, userID); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.chatRepo.Vote(ctx, tx, pollID, optionID, userID); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	return s.chatRepo.GetPoll(ctx, pollID)
}

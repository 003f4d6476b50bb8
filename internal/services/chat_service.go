package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tutor-central/internal/domain/account"
	"tutor-central/internal/domain/chat"
	"tutor-central/internal/repository"
	tutor_errors "tutor-central/pkg/errors"
	"tutor-central/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxReconcileAttempts = 3

type ChatService struct {
	accounts repository.AccountRepository
	chats    repository.ChatRepository
	messages repository.MessageRepository
	log      *logger.Logger
}

func NewChatService(accounts repository.AccountRepository, chats repository.ChatRepository, messages repository.MessageRepository, log *logger.Logger) *ChatService {
	return &ChatService{accounts: accounts, chats: chats, messages: messages, log: log}
}

type MessageView struct {
	Message chat.Message
	From    account.Account
	To      account.Account
}

type ChatView struct {
	Chat     chat.Chat
	Tutor    account.Account
	Student  account.Account
	Messages []MessageView // newest first
}

// FindOrCreate returns the single chat between tutorID and studentID,
// creating it when absent, and makes sure both accounts reference it.
// Running it again converges on the same chat and memberships.
func (s *ChatService) FindOrCreate(ctx context.Context, tutorID, studentID uuid.UUID) (chat.Chat, error) {
	if _, err := s.requireRole(ctx, tutorID, account.RoleTutor); err != nil {
		return chat.Chat{}, err
	}
	if _, err := s.requireRole(ctx, studentID, account.RoleStudent); err != nil {
		return chat.Chat{}, err
	}

	c, err := s.reconcile(ctx, tutorID, studentID)
	if err != nil {
		return chat.Chat{}, err
	}

	for _, memberID := range []uuid.UUID{tutorID, studentID} {
		if err := s.accounts.AddChat(ctx, memberID, c.ID); err != nil {
			return chat.Chat{}, err
		}
	}
	return c, nil
}

// reconcile looks the pair up and creates it when missing. A conflict on
// create means a concurrent caller won, so the lookup runs again.
func (s *ChatService) reconcile(ctx context.Context, tutorID, studentID uuid.UUID) (chat.Chat, error) {
	for attempt := 1; attempt <= maxReconcileAttempts; attempt++ {
		existing, err := s.chats.GetByPair(ctx, tutorID, studentID)
		if err == nil {
			return existing, nil
		}
		if !errors.Is(err, tutor_errors.ErrNotFound) {
			return chat.Chat{}, err
		}

		c := chat.Chat{
			ID:        uuid.New(),
			TutorID:   tutorID,
			StudentID: studentID,
			CreatedAt: time.Now(),
		}
		err = s.chats.Create(ctx, &c)
		if err == nil {
			return c, nil
		}
		if !tutor_errors.IsConflict(err) {
			return chat.Chat{}, err
		}
		s.log.WithContext(ctx).Logger.Warn("chat create lost race, retrying lookup",
			zap.String("tutor_id", tutorID.String()),
			zap.String("student_id", studentID.String()),
			zap.Int("attempt", attempt))
	}
	return chat.Chat{}, fmt.Errorf("%w: chat could not be reconciled", tutor_errors.ErrConflict)
}

// GetByID returns the chat with participants and messages resolved. Messages
// are ordered newest first. Only participants may read a chat.
func (s *ChatService) GetByID(ctx context.Context, actor Identity, chatID uuid.UUID) (ChatView, error) {
	c, err := s.chats.GetByID(ctx, chatID)
	if err != nil {
		return ChatView{}, err
	}
	if !c.HasMember(actor.AccountID) {
		return ChatView{}, tutor_errors.Unauthorized("not a chat participant")
	}

	resolver := newAccountResolver(s.accounts)
	tutor, err := resolver.get(ctx, c.TutorID)
	if err != nil {
		return ChatView{}, err
	}
	student, err := resolver.get(ctx, c.StudentID)
	if err != nil {
		return ChatView{}, err
	}

	stored, err := s.messages.ListByChat(ctx, c.ID)
	if err != nil {
		return ChatView{}, err
	}

	views := make([]MessageView, 0, len(stored))
	for i := len(stored) - 1; i >= 0; i-- {
		view, err := resolver.message(ctx, stored[i])
		if err != nil {
			return ChatView{}, err
		}
		views = append(views, view)
	}

	return ChatView{Chat: c, Tutor: tutor, Student: student, Messages: views}, nil
}

func (s *ChatService) requireRole(ctx context.Context, id uuid.UUID, role account.Role) (account.Account, error) {
	a, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, tutor_errors.ErrNotFound) {
			return account.Account{}, tutor_errors.NotFound(string(role))
		}
		return account.Account{}, err
	}
	if a.Role != role {
		return account.Account{}, tutor_errors.Invalid(fmt.Sprintf("account is not a %s", role))
	}
	return a, nil
}

// accountResolver memoizes account lookups for one request.
type accountResolver struct {
	accounts repository.AccountRepository
	seen     map[uuid.UUID]account.Account
}

func newAccountResolver(accounts repository.AccountRepository) *accountResolver {
	return &accountResolver{accounts: accounts, seen: make(map[uuid.UUID]account.Account)}
}

func (r *accountResolver) get(ctx context.Context, id uuid.UUID) (account.Account, error) {
	if a, ok := r.seen[id]; ok {
		return a, nil
	}
	a, err := r.accounts.GetByID(ctx, id)
	if err != nil {
		return account.Account{}, err
	}
	r.seen[id] = a
	return a, nil
}

func (r *accountResolver) message(ctx context.Context, m chat.Message) (MessageView, error) {
	from, err := r.get(ctx, m.FromID)
	if err != nil {
		return MessageView{}, err
	}
	to, err := r.get(ctx, m.ToID)
	if err != nil {
		return MessageView{}, err
	}
	return MessageView{Message: m, From: from, To: to}, nil
}


package services

import (
	"context"
	"strings"
	"time"

	"tutor-central/internal/domain/chat"
	"tutor-central/internal/repository"
	tutor_errors "tutor-central/pkg/errors"

	"github.com/google/uuid"
)

type MessageService struct {
	accounts repository.AccountRepository
	chats    repository.ChatRepository
	messages repository.MessageRepository
}

func NewMessageService(accounts repository.AccountRepository, chats repository.ChatRepository, messages repository.MessageRepository) *MessageService {
	return &MessageService{accounts: accounts, chats: chats, messages: messages}
}

type messageInput struct {
	Text string `validate:"required,max=2000"`
}

// Append stores text as a message from the caller. The recipient is the
// other participant of the chat.
func (s *MessageService) Append(ctx context.Context, actor Identity, chatID uuid.UUID, text string) (MessageView, error) {
	text = strings.TrimSpace(text)
	if err := validateStruct(messageInput{Text: text}); err != nil {
		return MessageView{}, err
	}

	c, err := s.chats.GetByID(ctx, chatID)
	if err != nil {
		return MessageView{}, err
	}
	recipientID, ok := c.Counterpart(actor.AccountID)
	if !ok {
		return MessageView{}, tutor_errors.NotFound("chat participant")
	}

	resolver := newAccountResolver(s.accounts)
	from, err := resolver.get(ctx, actor.AccountID)
	if err != nil {
		return MessageView{}, err
	}
	to, err := resolver.get(ctx, recipientID)
	if err != nil {
		return MessageView{}, err
	}

	msg := &chat.Message{
		ID:        uuid.New(),
		ChatID:    c.ID,
		FromID:    from.ID,
		ToID:      to.ID,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return MessageView{}, err
	}

	return MessageView{Message: *msg, From: from, To: to}, nil
}

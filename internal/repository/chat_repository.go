package repository

import (
	"context"

	"tutor-central/internal/domain/chat"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PostgresChatRepository struct {
	db *gorm.DB
}

func NewChatRepository(db *gorm.DB) ChatRepository {
	return &PostgresChatRepository{db: db}
}

func (r *PostgresChatRepository) Create(ctx context.Context, c *chat.Chat) error {
	return translate("chat", r.db.WithContext(ctx).Create(c).Error)
}

func (r *PostgresChatRepository) GetByID(ctx context.Context, id uuid.UUID) (chat.Chat, error) {
	var c chat.Chat
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&c).Error
	if err != nil {
		return chat.Chat{}, translate("chat", err)
	}
	return c, nil
}

func (r *PostgresChatRepository) GetByPair(ctx context.Context, tutorID, studentID uuid.UUID) (chat.Chat, error) {
	var c chat.Chat
	err := r.db.WithContext(ctx).
		Where("tutor_id = ? AND student_id = ?", tutorID, studentID).
		First(&c).Error
	if err != nil {
		return chat.Chat{}, translate("chat", err)
	}
	return c, nil
}

type PostgresMessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &PostgresMessageRepository{db: db}
}

func (r *PostgresMessageRepository) Create(ctx context.Context, m *chat.Message) error {
	return translate("message", r.db.WithContext(ctx).Create(m).Error)
}

func (r *PostgresMessageRepository) ListByChat(ctx context.Context, chatID uuid.UUID) ([]chat.Message, error) {
	var messages []chat.Message
	err := r.db.WithContext(ctx).
		Where("chat_id = ?", chatID).
		Order("seq ASC").
		Find(&messages).Error
	if err != nil {
		return nil, translate("messages", err)
	}
	return messages, nil
}

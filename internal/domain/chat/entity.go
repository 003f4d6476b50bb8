package chat

import (
	"time"

	"github.com/google/uuid"
)

// Chat represents the chats table. There is at most one chat per
// (tutor, student) pair.
type Chat struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	TutorID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_chats_pair,priority:1"`
	StudentID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_chats_pair,priority:2"`
	CreatedAt time.Time
}

// Counterpart returns the other member of the chat, or false when
// accountID is not a member.
func (c Chat) Counterpart(accountID uuid.UUID) (uuid.UUID, bool) {
	switch accountID {
	case c.TutorID:
		return c.StudentID, true
	case c.StudentID:
		return c.TutorID, true
	default:
		return uuid.Nil, false
	}
}

func (c Chat) HasMember(accountID uuid.UUID) bool {
	_, ok := c.Counterpart(accountID)
	return ok
}

// Message represents the messages table. Seq is assigned by the database
// and defines storage order.
type Message struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	ChatID    uuid.UUID `gorm:"type:uuid;not null;index:idx_messages_chat_seq,priority:1"`
	Seq       int64     `gorm:"autoIncrement;not null;index:idx_messages_chat_seq,priority:2"`
	FromID    uuid.UUID `gorm:"type:uuid;not null"`
	ToID      uuid.UUID `gorm:"type:uuid;not null"`
	Text      string    `gorm:"type:text;not null"`
	CreatedAt time.Time
}

func (Chat) TableName() string {
	return "chats"
}

func (Message) TableName() string {
	return "messages"
}

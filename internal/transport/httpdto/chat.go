package httpdto

import (
	"time"

	"tutor-central/internal/domain/chat"
	"tutor-central/internal/services"

	"github.com/samber/lo"
)

type ChatDTO struct {
	ID        string    `json:"id"`
	TutorID   string    `json:"tutorId"`
	StudentID string    `json:"studentId"`
	CreatedAt time.Time `json:"createdAt"`
}

type MessageDTO struct {
	ID        string     `json:"id"`
	ChatID    string     `json:"chatId"`
	From      AccountDTO `json:"from"`
	To        AccountDTO `json:"to"`
	Text      string     `json:"messageText"`
	CreatedAt time.Time  `json:"createdAt"`
}

// ChatViewDTO lists messages newest first.
type ChatViewDTO struct {
	ChatDTO
	Tutor    AccountDTO   `json:"tutor"`
	Student  AccountDTO   `json:"student"`
	Messages []MessageDTO `json:"messages"`
}

type SignedLinkDTO struct {
	URL     string            `json:"url"`
	Key     string            `json:"key"`
	Headers map[string]string `json:"headers,omitempty"`
}

func NewChatDTO(c chat.Chat) ChatDTO {
	return ChatDTO{
		ID:        c.ID.String(),
		TutorID:   c.TutorID.String(),
		StudentID: c.StudentID.String(),
		CreatedAt: c.CreatedAt,
	}
}

func NewMessageDTO(m services.MessageView) MessageDTO {
	return MessageDTO{
		ID:        m.Message.ID.String(),
		ChatID:    m.Message.ChatID.String(),
		From:      NewAccountDTO(m.From),
		To:        NewAccountDTO(m.To),
		Text:      m.Message.Text,
		CreatedAt: m.Message.CreatedAt,
	}
}

func NewChatViewDTO(v services.ChatView) ChatViewDTO {
	return ChatViewDTO{
		ChatDTO:  NewChatDTO(v.Chat),
		Tutor:    NewAccountDTO(v.Tutor),
		Student:  NewAccountDTO(v.Student),
		Messages: lo.Map(v.Messages, func(m services.MessageView, _ int) MessageDTO { return NewMessageDTO(m) }),
	}
}

func NewSignedLinkDTO(s services.SignedUpload) SignedLinkDTO {
	return SignedLinkDTO{URL: s.URL, Key: s.Key, Headers: s.Headers}
}

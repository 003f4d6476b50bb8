package repository

import (
	"context"

	"tutor-central/internal/domain/account"
	"tutor-central/internal/domain/chat"

	"github.com/google/uuid"
)

type AccountRepository interface {
	Create(ctx context.Context, a *account.Account) error
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (account.Account, error)
	GetByEmail(ctx context.Context, email string) (account.Account, error)
	GetByUsername(ctx context.Context, username string) (account.Account, error)
	List(ctx context.Context) ([]account.Account, error)
	Update(ctx context.Context, a account.Account) error
	UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error
	UpdatePhoto(ctx context.Context, id uuid.UUID, photo string) error

	// AddChat registers chatID on the account. Registering twice is a no-op.
	AddChat(ctx context.Context, accountID, chatID uuid.UUID) error
	ListChatIDs(ctx context.Context, accountID uuid.UUID) ([]uuid.UUID, error)

	CreateTutor(ctx context.Context, p *account.TutorProfile) error
	CreateStudent(ctx context.Context, p *account.StudentProfile) error
	GetTutorByAccountID(ctx context.Context, accountID uuid.UUID) (account.TutorProfile, error)
	GetStudentByAccountID(ctx context.Context, accountID uuid.UUID) (account.StudentProfile, error)
	GetStudentByID(ctx context.Context, id uuid.UUID) (account.StudentProfile, error)
	ListTutors(ctx context.Context) ([]account.TutorProfile, error)
}

type ChatRepository interface {
	// Create fails with ErrConflict when a chat for the same pair exists.
	Create(ctx context.Context, c *chat.Chat) error
	GetByID(ctx context.Context, id uuid.UUID) (chat.Chat, error)
	GetByPair(ctx context.Context, tutorID, studentID uuid.UUID) (chat.Chat, error)
}

type MessageRepository interface {
	// Create assigns Seq.
	Create(ctx context.Context, m *chat.Message) error
	// ListByChat returns messages oldest first.
	ListByChat(ctx context.Context, chatID uuid.UUID) ([]chat.Message, error)
}

package repository

import (
	"context"
	"fmt"
	"testing"

	"tutor-central/internal/domain/account"
	"tutor-central/internal/domain/chat"
	tutor_errors "tutor-central/pkg/errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newAccount(username, email string, role account.Role) *account.Account {
	return &account.Account{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		PasswordHash: "hash",
		Role:         role,
	}
}

func TestMemoryAccountsUniqueness(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	accounts := NewMemoryStore().Accounts()

	req.NoError(accounts.Create(ctx, newAccount("ada", "Ada@Example.com", account.RoleTutor)))

	t.Run("email is case insensitive", func(t *testing.T) {
		err := accounts.Create(ctx, newAccount("other", "ada@example.com", account.RoleStudent))
		require.ErrorIs(t, err, tutor_errors.ErrConflict)
	})

	t.Run("username is unique", func(t *testing.T) {
		err := accounts.Create(ctx, newAccount("ada", "new@example.com", account.RoleStudent))
		require.ErrorIs(t, err, tutor_errors.ErrConflict)
	})

	t.Run("lookup by mixed case email", func(t *testing.T) {
		got, err := accounts.GetByEmail(ctx, "ADA@example.com")
		require.NoError(t, err)
		require.Equal(t, "ada", got.Username)
		require.Equal(t, "ada@example.com", got.Email)
	})
}

func TestMemoryAccountsAddChatIsIdempotent(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	accounts := NewMemoryStore().Accounts()
	a := newAccount("bob", "bob@example.com", account.RoleStudent)
	req.NoError(accounts.Create(ctx, a))

	chatID := uuid.New()
	req.NoError(accounts.AddChat(ctx, a.ID, chatID))
	req.NoError(accounts.AddChat(ctx, a.ID, chatID))

	ids, err := accounts.ListChatIDs(ctx, a.ID)
	req.NoError(err)
	req.Equal([]uuid.UUID{chatID}, ids)

	err = accounts.AddChat(ctx, uuid.New(), chatID)
	req.ErrorIs(err, tutor_errors.ErrNotFound)
}

func TestMemoryAccountsUpdateKeepsIndexes(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	accounts := NewMemoryStore().Accounts()
	a := newAccount("carol", "carol@example.com", account.RoleStudent)
	b := newAccount("dave", "dave@example.com", account.RoleStudent)
	req.NoError(accounts.Create(ctx, a))
	req.NoError(accounts.Create(ctx, b))

	updated := *a
	updated.Email = "Carol2@example.com"
	req.NoError(accounts.Update(ctx, updated))

	_, err := accounts.GetByEmail(ctx, "carol@example.com")
	req.ErrorIs(err, tutor_errors.ErrNotFound)
	got, err := accounts.GetByEmail(ctx, "carol2@example.com")
	req.NoError(err)
	req.Equal(a.ID, got.ID)
	req.Equal("hash", got.PasswordHash)

	clash := *b
	clash.Username = "carol"
	req.ErrorIs(accounts.Update(ctx, clash), tutor_errors.ErrConflict)
}

func TestMemoryChatsPairIsUnique(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	chats := NewMemoryStore().Chats()
	tutorID, studentID := uuid.New(), uuid.New()

	first := &chat.Chat{TutorID: tutorID, StudentID: studentID}
	req.NoError(chats.Create(ctx, first))
	req.NotEqual(uuid.Nil, first.ID)

	err := chats.Create(ctx, &chat.Chat{TutorID: tutorID, StudentID: studentID})
	req.ErrorIs(err, tutor_errors.ErrConflict)

	// The pair is ordered.
	req.NoError(chats.Create(ctx, &chat.Chat{TutorID: studentID, StudentID: tutorID}))

	got, err := chats.GetByPair(ctx, tutorID, studentID)
	req.NoError(err)
	req.Equal(first.ID, got.ID)
}

func TestMemoryMessagesKeepInsertionOrder(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	store := NewMemoryStore()
	c := &chat.Chat{TutorID: uuid.New(), StudentID: uuid.New()}
	req.NoError(store.Chats().Create(ctx, c))

	for i := 1; i <= 3; i++ {
		msg := &chat.Message{ChatID: c.ID, FromID: c.StudentID, ToID: c.TutorID, Text: fmt.Sprintf("m%d", i)}
		req.NoError(store.Messages().Create(ctx, msg))
		req.Equal(int64(i), msg.Seq)
	}

	got, err := store.Messages().ListByChat(ctx, c.ID)
	req.NoError(err)
	req.Len(got, 3)
	req.Equal("m1", got[0].Text)
	req.Equal("m3", got[2].Text)

	err = store.Messages().Create(ctx, &chat.Message{ChatID: uuid.New(), Text: "orphan"})
	req.ErrorIs(err, tutor_errors.ErrNotFound)
}

func TestTranslate(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{name: "record not found", err: gorm.ErrRecordNotFound, want: tutor_errors.ErrNotFound},
		{name: "duplicated key", err: gorm.ErrDuplicatedKey, want: tutor_errors.ErrConflict},
		{name: "pg unique violation", err: fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"}), want: tutor_errors.ErrConflict},
		{name: "other pg error", err: &pgconn.PgError{Code: "08006"}, want: tutor_errors.ErrStorage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.ErrorIs(t, translate("op", tt.err), tt.want)
		})
	}
	require.NoError(t, translate("op", nil))
}

package services

import (
	"context"
	"testing"
	"time"

	"tutor-central/internal/domain/account"
	"tutor-central/internal/repository"
	"tutor-central/internal/storage"
	"tutor-central/pkg/logger"

	"github.com/stretchr/testify/require"
)

type testEnv struct {
	store    *repository.MemoryStore
	accounts repository.AccountRepository
	chats    repository.ChatRepository
	messages repository.MessageRepository
	objects  *storage.MemoryStore

	tokens     *TokenService
	accountSvc *AccountService
	chatSvc    *ChatService
	messageSvc *MessageService
	uploadSvc  *UploadService
	uploadCfg  UploadConfig
	testLogger *logger.Logger
	publicBase string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := repository.NewMemoryStore()
	env := &testEnv{
		store:      store,
		accounts:   store.Accounts(),
		chats:      store.Chats(),
		messages:   store.Messages(),
		publicBase: "https://cdn.example.com",
		testLogger: logger.NewNop(),
		tokens:     NewTokenService("test-secret", time.Hour),
		uploadCfg: UploadConfig{
			MaxBytes:     2 << 20,
			ReadTimeout:  2 * time.Second,
			StoreTimeout: 2 * time.Second,
		},
	}
	env.objects = storage.NewMemoryStore(env.publicBase)
	env.wire()
	return env
}

// wire rebuilds the services from the current repositories so tests can
// swap in failing doubles.
func (e *testEnv) wire() {
	e.accountSvc = NewAccountService(e.accounts, e.tokens, e.testLogger)
	e.chatSvc = NewChatService(e.accounts, e.chats, e.messages, e.testLogger)
	e.messageSvc = NewMessageService(e.accounts, e.chats, e.messages)
	e.uploadSvc = NewUploadService(e.accounts, e.objects, e.uploadCfg, e.testLogger)
}

func (e *testEnv) signup(t *testing.T, username string, role account.Role) AuthPayload {
	t.Helper()
	payload, err := e.accountSvc.CreateAccount(context.Background(), SignupInput{
		Username:  username,
		Email:     username + "@example.com",
		Password:  "correct horse",
		FirstName: username,
		Subjects:  []string{"math"},
	}, role)
	require.NoError(t, err)
	return payload
}

func identityOf(p AuthPayload) Identity {
	return Identity{AccountID: p.Account.ID, Role: p.Account.Role}
}

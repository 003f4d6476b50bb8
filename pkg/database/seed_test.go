package database

import (
	"context"
	"testing"
	"time"

	"tutor-central/internal/repository"
	"tutor-central/internal/services"
	"tutor-central/pkg/logger"

	"github.com/stretchr/testify/require"
)

func seedServices() SeedServices {
	store := repository.NewMemoryStore()
	log := logger.NewNop()
	return SeedServices{
		Accounts: services.NewAccountService(store.Accounts(), services.NewTokenService("seed", time.Hour), log),
		Chats:    services.NewChatService(store.Accounts(), store.Chats(), store.Messages(), log),
		Messages: services.NewMessageService(store.Accounts(), store.Chats(), store.Messages()),
	}
}

func TestSeed(t *testing.T) {
	req := require.New(t)
	svc := seedServices()
	ctx := context.Background()

	result, err := Seed(ctx, svc, &SeedConfig{Password: "seed password", TutorCount: 2, StudentCount: 3, Greeting: "hello"})
	req.NoError(err)
	req.Len(result.Tutors, 2)
	req.Len(result.Students, 3)
	req.Len(result.Chats, 6)
	req.Equal(6, result.Messages)

	_, err = svc.Accounts.Login(ctx, "tutor1@tutor-central.dev", "seed password")
	req.NoError(err)

	tutors, err := svc.Accounts.ListTutors(ctx)
	req.NoError(err)
	req.Len(tutors, 2)
}

func TestSeedTwiceConflicts(t *testing.T) {
	svc := seedServices()
	ctx := context.Background()

	_, err := Seed(ctx, svc, nil)
	require.NoError(t, err)
	_, err = Seed(ctx, svc, nil)
	require.Error(t, err)
}

package resolver

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"testing"
	"time"

	"tutor-central/internal/repository"
	"tutor-central/internal/services"
	"tutor-central/internal/storage"
	tutor_errors "tutor-central/pkg/errors"
	"tutor-central/pkg/logger"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	resolver *Resolver
	store    *repository.MemoryStore
	objects  *storage.MemoryStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := repository.NewMemoryStore()
	objects := storage.NewMemoryStore("https://cdn.example.com")
	log := logger.NewNop()
	tokens := services.NewTokenService("resolver-secret", time.Hour)
	r := New(Services{
		Accounts: services.NewAccountService(store.Accounts(), tokens, log),
		Chats:    services.NewChatService(store.Accounts(), store.Chats(), store.Messages(), log),
		Messages: services.NewMessageService(store.Accounts(), store.Chats(), store.Messages()),
		Uploads:  services.NewUploadService(store.Accounts(), objects, services.UploadConfig{}, log),
		Tokens:   tokens,
	}, log)
	return &fixture{resolver: r, store: store, objects: objects}
}

func signupInput(username string) services.SignupInput {
	return services.SignupInput{
		Username: username,
		Email:    username + "@example.com",
		Password: "correct horse",
		Subjects: []string{"algebra"},
	}
}

func tinyPNG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, 8, 8))))
	return buf.Bytes()
}

func TestAuthenticate(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	ctx := context.Background()
	tutor, err := f.resolver.AddTutor(ctx, signupInput("ada"))
	req.NoError(err)

	authed := f.resolver.Authenticate(ctx, tutor.Token)
	id, ok := services.IdentityFromContext(authed)
	req.True(ok)
	req.Equal(tutor.Account.ID, id.AccountID)
	req.Equal(tutor.Account.ID.String(), authed.Value(logger.AccountIdKey))

	for _, bearer := range []string{"", "   ", "garbage", tutor.Token + "x"} {
		_, ok := services.IdentityFromContext(f.resolver.Authenticate(ctx, bearer))
		req.False(ok, bearer)
	}
}

func TestOperationsRequireIdentity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tutor, err := f.resolver.AddTutor(ctx, signupInput("gated"))
	require.NoError(t, err)
	anon := f.resolver.Authenticate(ctx, "not-a-token")

	tests := []struct {
		name string
		call func() error
	}{
		{name: "me", call: func() error { _, err := f.resolver.Me(anon); return err }},
		{name: "chat", call: func() error { _, err := f.resolver.Chat(anon, uuid.NewString()); return err }},
		{name: "updateUser", call: func() error {
			_, err := f.resolver.UpdateUser(anon, services.AccountUpdate{FirstName: lo.ToPtr("x")})
			return err
		}},
		{name: "createChat", call: func() error { _, err := f.resolver.CreateChat(anon, tutor.Account.ID.String()); return err }},
		{name: "addMessage", call: func() error { _, err := f.resolver.AddMessage(anon, uuid.NewString(), "hi"); return err }},
		{name: "updatePassword", call: func() error {
			return f.resolver.UpdatePassword(anon, "gated@example.com", "correct horse", "another secret")
		}},
		{name: "singleUpload", call: func() error { _, err := f.resolver.SingleUpload(anon, bytes.NewReader(tinyPNG(t))); return err }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			require.Error(t, err)
			require.Equal(t, CodeUnauthenticated, CodeOf(err))
			require.ErrorIs(t, err, tutor_errors.ErrUnauthorized)
		})
	}

	req := require.New(t)
	chatIDs, err := f.store.Accounts().ListChatIDs(ctx, tutor.Account.ID)
	req.NoError(err)
	req.Empty(chatIDs)
	req.Equal(0, f.objects.Len())
	stored, err := f.store.Accounts().GetByID(ctx, tutor.Account.ID)
	req.NoError(err)
	req.Empty(stored.FirstName)
	_, err = f.resolver.Login(ctx, "gated@example.com", "correct horse")
	req.NoError(err)
}

func TestTutorStudentConversation(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	ctx := context.Background()

	tutor, err := f.resolver.AddTutor(ctx, signupInput("tutor_t"))
	req.NoError(err)
	req.NotNil(tutor.Tutor)
	student, err := f.resolver.AddStudent(ctx, signupInput("student_s"))
	req.NoError(err)
	req.NotNil(student.Student)

	asStudent := f.resolver.Authenticate(ctx, student.Token)
	asTutor := f.resolver.Authenticate(ctx, tutor.Token)

	c, err := f.resolver.CreateChat(asStudent, tutor.Account.ID.String())
	req.NoError(err)
	req.Equal(tutor.Account.ID, c.TutorID)
	req.Equal(student.Account.ID, c.StudentID)

	_, err = f.resolver.AddMessage(asStudent, c.ID.String(), "hello")
	req.NoError(err)

	view, err := f.resolver.Chat(asTutor, c.ID.String())
	req.NoError(err)
	req.Len(view.Messages, 1)
	req.Equal(student.Account.ID, view.Messages[0].From.ID)
	req.Equal(tutor.Account.ID, view.Messages[0].To.ID)
	req.Equal("hello", view.Messages[0].Message.Text)

	again, err := f.resolver.CreateChat(asStudent, tutor.Account.ID.String())
	req.NoError(err)
	req.Equal(c, again)

	view, err = f.resolver.Chat(asStudent, c.ID.String())
	req.NoError(err)
	req.Len(view.Messages, 1)

	me, err := f.resolver.Me(asTutor)
	req.NoError(err)
	req.Equal([]uuid.UUID{c.ID}, me.ChatIDs)
}

func TestErrorTranslation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.resolver.AddStudent(ctx, signupInput("dup"))
	require.NoError(t, err)
	asStudent := f.resolver.Authenticate(ctx, lo.Must(f.resolver.Login(ctx, "dup@example.com", "correct horse")).Token)

	tests := []struct {
		name string
		call func() error
		want Code
	}{
		{name: "wrong password", call: func() error { _, err := f.resolver.Login(ctx, "dup@example.com", "wrong"); return err }, want: CodeUnauthenticated},
		{name: "duplicate signup", call: func() error { _, err := f.resolver.AddStudent(ctx, signupInput("dup")); return err }, want: CodeConflict},
		{name: "missing user", call: func() error { _, err := f.resolver.User(ctx, "ghost"); return err }, want: CodeNotFound},
		{name: "malformed student id", call: func() error { _, err := f.resolver.Student(ctx, "abc"); return err }, want: CodeBadUserInput},
		{name: "malformed chat id", call: func() error { _, err := f.resolver.AddMessage(asStudent, "abc", "hi"); return err }, want: CodeBadUserInput},
		{name: "unknown tutor", call: func() error { _, err := f.resolver.CreateChat(asStudent, uuid.NewString()); return err }, want: CodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			require.Equal(t, tt.want, CodeOf(err))
			var re *Error
			require.ErrorAs(t, err, &re)
			require.NotEmpty(t, re.Message)
		})
	}
}

func TestTranslateHidesStorageDetail(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	cause := errors.New("dial tcp 10.0.0.5:5432: connection refused")

	err := f.resolver.translate(context.Background(), "users", tutor_errors.Storage("list accounts", cause))
	req.Equal(CodeStorage, CodeOf(err))
	req.NotContains(err.Error(), "10.0.0.5")
	req.ErrorIs(err, cause)

	err = f.resolver.translate(context.Background(), "users", cause)
	req.Equal(CodeInternal, CodeOf(err))
	req.Equal("internal error", err.Error())

	req.NoError(f.resolver.translate(context.Background(), "users", nil))
}

func TestSingleUploadSetsPhoto(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	ctx := context.Background()
	student, err := f.resolver.AddStudent(ctx, signupInput("photog"))
	req.NoError(err)

	updated, err := f.resolver.SingleUpload(f.resolver.Authenticate(ctx, student.Token), bytes.NewReader(tinyPNG(t)))
	req.NoError(err)
	req.Contains(updated.Photo, student.Account.ID.String())
	req.Equal(1, f.objects.Len())
}

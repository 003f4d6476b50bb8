package resolver

import (
	"context"
	"io"
	"strings"

	"tutor-central/internal/domain/account"
	"tutor-central/internal/domain/chat"
	"tutor-central/internal/services"
	tutor_errors "tutor-central/pkg/errors"
	"tutor-central/pkg/logger"

	"github.com/google/uuid"
)

var errNoIdentity = tutor_errors.Unauthorized("authentication required")

type Services struct {
	Accounts *services.AccountService
	Chats    *services.ChatService
	Messages *services.MessageService
	Uploads  *services.UploadService
	Tokens   *services.TokenService
}

// Resolver is the single entry point for protocol operations. It resolves the
// caller identity, dispatches to the services and translates their failures.
type Resolver struct {
	accounts *services.AccountService
	chats    *services.ChatService
	messages *services.MessageService
	uploads  *services.UploadService
	tokens   *services.TokenService
	log      *logger.Logger
}

func New(svc Services, log *logger.Logger) *Resolver {
	return &Resolver{
		accounts: svc.Accounts,
		chats:    svc.Chats,
		messages: svc.Messages,
		uploads:  svc.Uploads,
		tokens:   svc.Tokens,
		log:      log,
	}
}

// Authenticate verifies the bearer credential once per request. The returned
// context carries the identity only when verification succeeds.
func (r *Resolver) Authenticate(ctx context.Context, bearer string) context.Context {
	bearer = strings.TrimSpace(bearer)
	if bearer == "" {
		return ctx
	}
	id, err := r.tokens.Verify(bearer)
	if err != nil {
		r.log.WithContext(ctx).Warnf("rejected credential: %s", err)
		return ctx
	}
	ctx = context.WithValue(ctx, logger.AccountIdKey, id.AccountID.String())
	return services.WithIdentity(ctx, id)
}

func (r *Resolver) identity(ctx context.Context, op string) (services.Identity, error) {
	id, ok := services.IdentityFromContext(ctx)
	if !ok {
		return services.Identity{}, r.translate(ctx, op, errNoIdentity)
	}
	return id, nil
}

func parseID(what, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, tutor_errors.Invalid(what + " is not a valid id")
	}
	return id, nil
}

// Queries

func (r *Resolver) Me(ctx context.Context) (services.Profile, error) {
	id, err := r.identity(ctx, "me")
	if err != nil {
		return services.Profile{}, err
	}
	p, err := r.accounts.Me(ctx, id)
	return p, r.translate(ctx, "me", err)
}

func (r *Resolver) Users(ctx context.Context) ([]account.Account, error) {
	list, err := r.accounts.List(ctx)
	return list, r.translate(ctx, "users", err)
}

func (r *Resolver) User(ctx context.Context, username string) (account.Account, error) {
	a, err := r.accounts.GetByUsername(ctx, username)
	return a, r.translate(ctx, "user", err)
}

func (r *Resolver) Student(ctx context.Context, rawID string) (services.StudentView, error) {
	id, err := parseID("student id", rawID)
	if err != nil {
		return services.StudentView{}, r.translate(ctx, "student", err)
	}
	v, err := r.accounts.GetStudent(ctx, id)
	return v, r.translate(ctx, "student", err)
}

func (r *Resolver) Tutors(ctx context.Context) ([]services.TutorView, error) {
	list, err := r.accounts.ListTutors(ctx)
	return list, r.translate(ctx, "tutors", err)
}

func (r *Resolver) Chat(ctx context.Context, rawID string) (services.ChatView, error) {
	actor, err := r.identity(ctx, "chat")
	if err != nil {
		return services.ChatView{}, err
	}
	id, err := parseID("chat id", rawID)
	if err != nil {
		return services.ChatView{}, r.translate(ctx, "chat", err)
	}
	v, err := r.chats.GetByID(ctx, actor, id)
	return v, r.translate(ctx, "chat", err)
}

// Mutations

func (r *Resolver) SignedLink(ctx context.Context, filename string) (services.SignedUpload, error) {
	link, err := r.uploads.SignedLink(ctx, filename)
	return link, r.translate(ctx, "signedLink", err)
}

func (r *Resolver) AddStudent(ctx context.Context, in services.SignupInput) (services.AuthPayload, error) {
	p, err := r.accounts.CreateAccount(ctx, in, account.RoleStudent)
	return p, r.translate(ctx, "addStudent", err)
}

func (r *Resolver) AddTutor(ctx context.Context, in services.SignupInput) (services.AuthPayload, error) {
	p, err := r.accounts.CreateAccount(ctx, in, account.RoleTutor)
	return p, r.translate(ctx, "addTutor", err)
}

func (r *Resolver) Login(ctx context.Context, email, password string) (services.AuthPayload, error) {
	p, err := r.accounts.Login(ctx, email, password)
	return p, r.translate(ctx, "login", err)
}

// UpdateUser changes the caller's own profile fields.
func (r *Resolver) UpdateUser(ctx context.Context, in services.AccountUpdate) (account.Account, error) {
	actor, err := r.identity(ctx, "updateUser")
	if err != nil {
		return account.Account{}, err
	}
	a, err := r.accounts.UpdateProfile(ctx, actor, actor.AccountID, in)
	return a, r.translate(ctx, "updateUser", err)
}

// CreateChat opens (or returns) the chat between the calling student and
// tutorID.
func (r *Resolver) CreateChat(ctx context.Context, rawTutorID string) (chat.Chat, error) {
	actor, err := r.identity(ctx, "createChat")
	if err != nil {
		return chat.Chat{}, err
	}
	tutorID, err := parseID("tutor id", rawTutorID)
	if err != nil {
		return chat.Chat{}, r.translate(ctx, "createChat", err)
	}
	c, err := r.chats.FindOrCreate(ctx, tutorID, actor.AccountID)
	return c, r.translate(ctx, "createChat", err)
}

func (r *Resolver) AddMessage(ctx context.Context, rawChatID, text string) (services.MessageView, error) {
	actor, err := r.identity(ctx, "addMessage")
	if err != nil {
		return services.MessageView{}, err
	}
	chatID, err := parseID("chat id", rawChatID)
	if err != nil {
		return services.MessageView{}, r.translate(ctx, "addMessage", err)
	}
	m, err := r.messages.Append(ctx, actor, chatID, text)
	return m, r.translate(ctx, "addMessage", err)
}

func (r *Resolver) UpdatePassword(ctx context.Context, email, oldPassword, newPassword string) error {
	actor, err := r.identity(ctx, "updatePassword")
	if err != nil {
		return err
	}
	return r.translate(ctx, "updatePassword", r.accounts.UpdatePassword(ctx, actor, email, oldPassword, newPassword))
}

// SingleUpload runs the photo pipeline for the caller. The stream is not
// read when the caller is unauthenticated.
func (r *Resolver) SingleUpload(ctx context.Context, file io.Reader) (account.Account, error) {
	actor, err := r.identity(ctx, "singleUpload")
	if err != nil {
		return account.Account{}, err
	}
	a, err := r.uploads.Upload(ctx, actor, file)
	return a, r.translate(ctx, "singleUpload", err)
}

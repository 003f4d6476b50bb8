package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"tutor-central/internal/domain/account"
	"tutor-central/internal/repository"
	tutor_errors "tutor-central/pkg/errors"
	"tutor-central/pkg/logger"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// errIncorrectCredentials is returned for both an unknown email and a wrong
// password so callers cannot tell them apart.
var errIncorrectCredentials = tutor_errors.Unauthorized("incorrect credentials")

type AccountService struct {
	accounts repository.AccountRepository
	tokens   *TokenService
	log      *logger.Logger
}

func NewAccountService(accounts repository.AccountRepository, tokens *TokenService, log *logger.Logger) *AccountService {
	return &AccountService{accounts: accounts, tokens: tokens, log: log}
}

type SignupInput struct {
	Username   string   `json:"username" validate:"required,min=3,max=32"`
	Email      string   `json:"email" validate:"required,email"`
	Password   string   `json:"password" validate:"required,min=8,max=72"`
	FirstName  string   `json:"firstName" validate:"max=64"`
	LastName   string   `json:"lastName" validate:"max=64"`
	Bio        string   `json:"bio" validate:"max=2000"`
	Subjects   []string `json:"subjects" validate:"max=20,dive,min=1,max=64"`
	HourlyRate float64  `json:"hourlyRate" validate:"gte=0"`
	GradeLevel string   `json:"gradeLevel" validate:"max=32"`
	Goals      string   `json:"goals" validate:"max=2000"`
}

// AccountUpdate holds the mutable profile fields. Nil means unchanged.
type AccountUpdate struct {
	Username  *string `json:"username" validate:"omitempty,min=3,max=32"`
	Email     *string `json:"email" validate:"omitempty,email"`
	FirstName *string `json:"firstName" validate:"omitempty,max=64"`
	LastName  *string `json:"lastName" validate:"omitempty,max=64"`
}

type passwordInput struct {
	Password string `validate:"required,min=8,max=72"`
}

type AuthPayload struct {
	Token   string
	Account account.Account
	Tutor   *account.TutorProfile
	Student *account.StudentProfile
}

// Profile is an account with its role profile and chat references.
type Profile struct {
	Account account.Account
	Tutor   *account.TutorProfile
	Student *account.StudentProfile
	ChatIDs []uuid.UUID
}

type TutorView struct {
	Profile account.TutorProfile
	Account account.Account
}

type StudentView struct {
	Profile account.StudentProfile
	Account account.Account
}

// CreateAccount registers a new account with its role profile and issues a
// credential. A failed profile write removes the account again.
func (s *AccountService) CreateAccount(ctx context.Context, in SignupInput, role account.Role) (AuthPayload, error) {
	if !role.Valid() {
		return AuthPayload{}, tutor_errors.Invalid("unknown role")
	}
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Subjects = lo.Uniq(lo.Map(in.Subjects, func(subject string, _ int) string { return strings.TrimSpace(subject) }))
	if err := validateStruct(in); err != nil {
		return AuthPayload{}, err
	}

	if err := s.ensureIdentityAvailable(ctx, in.Email, in.Username, uuid.Nil); err != nil {
		return AuthPayload{}, err
	}

	hash, err := hashPassword(in.Password)
	if err != nil {
		return AuthPayload{}, err
	}

	now := time.Now()
	newAccount := &account.Account{
		ID:           uuid.New(),
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         role,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.accounts.Create(ctx, newAccount); err != nil {
		if tutor_errors.IsConflict(err) {
			return AuthPayload{}, fmt.Errorf("%w: email or username already registered", tutor_errors.ErrConflict)
		}
		return AuthPayload{}, err
	}

	payload := AuthPayload{Account: *newAccount}
	switch role {
	case account.RoleTutor:
		profile := &account.TutorProfile{
			ID:         uuid.New(),
			AccountID:  newAccount.ID,
			Bio:        in.Bio,
			Subjects:   in.Subjects,
			HourlyRate: in.HourlyRate,
			CreatedAt:  now,
		}
		err = s.accounts.CreateTutor(ctx, profile)
		payload.Tutor = profile
	case account.RoleStudent:
		profile := &account.StudentProfile{
			ID:         uuid.New(),
			AccountID:  newAccount.ID,
			GradeLevel: in.GradeLevel,
			Subjects:   in.Subjects,
			Goals:      in.Goals,
			CreatedAt:  now,
		}
		err = s.accounts.CreateStudent(ctx, profile)
		payload.Student = profile
	}
	if err != nil {
		s.compensate(ctx, newAccount.ID, err)
		return AuthPayload{}, tutor_errors.Storage("create profile", err)
	}

	token, err := s.tokens.Issue(*newAccount)
	if err != nil {
		return AuthPayload{}, fmt.Errorf("issue credential: %w", err)
	}
	payload.Token = token
	return payload, nil
}

func (s *AccountService) compensate(ctx context.Context, accountID uuid.UUID, cause error) {
	log := s.log.WithContext(ctx).Logger.With(zap.String("account_id", accountID.String()), zap.Error(cause))
	if err := s.accounts.Delete(ctx, accountID); err != nil {
		log.Error("profile creation failed and account cleanup failed", zap.NamedError("cleanup_error", err))
		return
	}
	log.Warn("profile creation failed, account removed")
}

func (s *AccountService) FindByEmail(ctx context.Context, email string) (account.Account, error) {
	return s.accounts.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
}

// VerifyPassword compares plaintext against the stored bcrypt hash.
func (s *AccountService) VerifyPassword(a account.Account, plaintext string) bool {
	return comparePassword(a.PasswordHash, plaintext) == nil
}

func (s *AccountService) Login(ctx context.Context, email, password string) (AuthPayload, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return AuthPayload{}, errIncorrectCredentials
	}

	a, err := s.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, tutor_errors.ErrNotFound) {
			return AuthPayload{}, errIncorrectCredentials
		}
		return AuthPayload{}, err
	}

	if !s.VerifyPassword(a, password) {
		return AuthPayload{}, errIncorrectCredentials
	}

	token, err := s.tokens.Issue(a)
	if err != nil {
		return AuthPayload{}, fmt.Errorf("issue credential: %w", err)
	}
	return AuthPayload{Token: token, Account: a}, nil
}

// UpdateProfile merges the non-nil fields of in into the caller's account.
func (s *AccountService) UpdateProfile(ctx context.Context, actor Identity, accountID uuid.UUID, in AccountUpdate) (account.Account, error) {
	if actor.AccountID != accountID {
		return account.Account{}, tutor_errors.Unauthorized("cannot update another account")
	}
	if in.Username != nil {
		*in.Username = strings.TrimSpace(*in.Username)
	}
	if in.Email != nil {
		*in.Email = strings.ToLower(strings.TrimSpace(*in.Email))
	}
	if err := validateStruct(in); err != nil {
		return account.Account{}, err
	}

	current, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return account.Account{}, err
	}

	if err := s.ensureIdentityAvailable(ctx, lo.FromPtr(in.Email), lo.FromPtr(in.Username), accountID); err != nil {
		return account.Account{}, err
	}

	current.Username = lo.FromPtrOr(in.Username, current.Username)
	current.Email = lo.FromPtrOr(in.Email, current.Email)
	current.FirstName = lo.FromPtrOr(in.FirstName, current.FirstName)
	current.LastName = lo.FromPtrOr(in.LastName, current.LastName)

	if err := s.accounts.Update(ctx, current); err != nil {
		if tutor_errors.IsConflict(err) {
			return account.Account{}, fmt.Errorf("%w: email or username already registered", tutor_errors.ErrConflict)
		}
		return account.Account{}, err
	}
	return s.accounts.GetByID(ctx, accountID)
}

// UpdatePassword re-verifies oldPassword for the caller's own email before
// storing a new hash. Every failure except a malformed new password is an
// authorization failure.
func (s *AccountService) UpdatePassword(ctx context.Context, actor Identity, email, oldPassword, newPassword string) error {
	if err := validateStruct(passwordInput{Password: newPassword}); err != nil {
		return err
	}

	a, err := s.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, tutor_errors.ErrNotFound) {
			return tutor_errors.Unauthorized("account not found")
		}
		return fmt.Errorf("%w: %w", tutor_errors.ErrUnauthorized, err)
	}
	if a.ID != actor.AccountID {
		return tutor_errors.Unauthorized("cannot change another account's password")
	}
	if !s.VerifyPassword(a, oldPassword) {
		return errIncorrectCredentials
	}

	hash, err := hashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("%w: %w", tutor_errors.ErrUnauthorized, err)
	}
	if err := s.accounts.UpdatePassword(ctx, a.ID, hash); err != nil {
		return fmt.Errorf("%w: password update failed: %w", tutor_errors.ErrUnauthorized, err)
	}
	return nil
}

// Me returns the caller's account with its role profile and chats.
func (s *AccountService) Me(ctx context.Context, actor Identity) (Profile, error) {
	a, err := s.accounts.GetByID(ctx, actor.AccountID)
	if err != nil {
		if errors.Is(err, tutor_errors.ErrNotFound) {
			return Profile{}, tutor_errors.Unauthorized("account no longer exists")
		}
		return Profile{}, err
	}

	profile := Profile{Account: a}
	switch a.Role {
	case account.RoleTutor:
		tutor, err := s.accounts.GetTutorByAccountID(ctx, a.ID)
		if err != nil && !errors.Is(err, tutor_errors.ErrNotFound) {
			return Profile{}, err
		}
		if err == nil {
			profile.Tutor = &tutor
		}
	case account.RoleStudent:
		student, err := s.accounts.GetStudentByAccountID(ctx, a.ID)
		if err != nil && !errors.Is(err, tutor_errors.ErrNotFound) {
			return Profile{}, err
		}
		if err == nil {
			profile.Student = &student
		}
	}

	profile.ChatIDs, err = s.accounts.ListChatIDs(ctx, a.ID)
	if err != nil {
		return Profile{}, err
	}
	return profile, nil
}

func (s *AccountService) List(ctx context.Context) ([]account.Account, error) {
	return s.accounts.List(ctx)
}

func (s *AccountService) GetByUsername(ctx context.Context, username string) (account.Account, error) {
	return s.accounts.GetByUsername(ctx, strings.TrimSpace(username))
}

func (s *AccountService) GetStudent(ctx context.Context, studentID uuid.UUID) (StudentView, error) {
	profile, err := s.accounts.GetStudentByID(ctx, studentID)
	if err != nil {
		return StudentView{}, err
	}
	a, err := s.accounts.GetByID(ctx, profile.AccountID)
	if err != nil {
		return StudentView{}, err
	}
	return StudentView{Profile: profile, Account: a}, nil
}

func (s *AccountService) ListTutors(ctx context.Context) ([]TutorView, error) {
	profiles, err := s.accounts.ListTutors(ctx)
	if err != nil {
		return nil, err
	}
	views := make([]TutorView, 0, len(profiles))
	for _, p := range profiles {
		a, err := s.accounts.GetByID(ctx, p.AccountID)
		if err != nil {
			if errors.Is(err, tutor_errors.ErrNotFound) {
				continue
			}
			return nil, err
		}
		views = append(views, TutorView{Profile: p, Account: a})
	}
	return views, nil
}

// ensureIdentityAvailable fails with ErrConflict when email or username is
// held by an account other than self.
func (s *AccountService) ensureIdentityAvailable(ctx context.Context, email, username string, self uuid.UUID) error {
	if email != "" {
		if a, err := s.accounts.GetByEmail(ctx, email); err == nil && a.ID != self {
			return fmt.Errorf("%w: email already registered", tutor_errors.ErrConflict)
		} else if err != nil && !errors.Is(err, tutor_errors.ErrNotFound) {
			return err
		}
	}

	if username != "" {
		if a, err := s.accounts.GetByUsername(ctx, username); err == nil && a.ID != self {
			return fmt.Errorf("%w: username already taken", tutor_errors.ErrConflict)
		} else if err != nil && !errors.Is(err, tutor_errors.ErrNotFound) {
			return err
		}
	}

	return nil
}

func hashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(bytes), nil
}

func comparePassword(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

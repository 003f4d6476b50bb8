package repository

import (
	"context"
	"strings"
	"time"

	"tutor-central/internal/domain/account"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PostgresAccountRepository struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &PostgresAccountRepository{db: db}
}

func (r *PostgresAccountRepository) Create(ctx context.Context, a *account.Account) error {
	a.Email = strings.ToLower(a.Email)
	return translate("account", r.db.WithContext(ctx).Create(a).Error)
}

func (r *PostgresAccountRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return affected("account", r.db.WithContext(ctx).Delete(&account.Account{}, "id = ?", id))
}

func (r *PostgresAccountRepository) GetByID(ctx context.Context, id uuid.UUID) (account.Account, error) {
	var a account.Account
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&a).Error
	if err != nil {
		return account.Account{}, translate("account", err)
	}
	return a, nil
}

func (r *PostgresAccountRepository) GetByEmail(ctx context.Context, email string) (account.Account, error) {
	var a account.Account
	err := r.db.WithContext(ctx).Where("email = ?", strings.ToLower(email)).First(&a).Error
	if err != nil {
		return account.Account{}, translate("account", err)
	}
	return a, nil
}

func (r *PostgresAccountRepository) GetByUsername(ctx context.Context, username string) (account.Account, error) {
	var a account.Account
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&a).Error
	if err != nil {
		return account.Account{}, translate("account", err)
	}
	return a, nil
}

func (r *PostgresAccountRepository) List(ctx context.Context) ([]account.Account, error) {
	var accounts []account.Account
	err := r.db.WithContext(ctx).Order("created_at ASC").Find(&accounts).Error
	if err != nil {
		return nil, translate("accounts", err)
	}
	return accounts, nil
}

// Update writes the mutable profile columns only.
func (r *PostgresAccountRepository) Update(ctx context.Context, a account.Account) error {
	a.Email = strings.ToLower(a.Email)
	a.UpdatedAt = time.Now()
	res := r.db.WithContext(ctx).
		Model(&account.Account{ID: a.ID}).
		Select("username", "email", "first_name", "last_name", "updated_at").
		Updates(&a)
	return affected("account", res)
}

func (r *PostgresAccountRepository) UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error {
	res := r.db.WithContext(ctx).
		Model(&account.Account{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"password_hash": hash, "updated_at": time.Now()})
	return affected("account", res)
}

func (r *PostgresAccountRepository) UpdatePhoto(ctx context.Context, id uuid.UUID, photo string) error {
	res := r.db.WithContext(ctx).
		Model(&account.Account{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"photo": photo, "updated_at": time.Now()})
	return affected("account", res)
}

func (r *PostgresAccountRepository) AddChat(ctx context.Context, accountID, chatID uuid.UUID) error {
	link := account.AccountChat{AccountID: accountID, ChatID: chatID, CreatedAt: time.Now()}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&link).Error
	return translate("account chat", err)
}

func (r *PostgresAccountRepository) ListChatIDs(ctx context.Context, accountID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&account.AccountChat{}).
		Where("account_id = ?", accountID).
		Order("created_at ASC").
		Pluck("chat_id", &ids).Error
	if err != nil {
		return nil, translate("account chats", err)
	}
	return ids, nil
}

func (r *PostgresAccountRepository) CreateTutor(ctx context.Context, p *account.TutorProfile) error {
	return translate("tutor profile", r.db.WithContext(ctx).Create(p).Error)
}

func (r *PostgresAccountRepository) CreateStudent(ctx context.Context, p *account.StudentProfile) error {
	return translate("student profile", r.db.WithContext(ctx).Create(p).Error)
}

func (r *PostgresAccountRepository) GetTutorByAccountID(ctx context.Context, accountID uuid.UUID) (account.TutorProfile, error) {
	var p account.TutorProfile
	err := r.db.WithContext(ctx).Where("account_id = ?", accountID).First(&p).Error
	if err != nil {
		return account.TutorProfile{}, translate("tutor profile", err)
	}
	return p, nil
}

func (r *PostgresAccountRepository) GetStudentByAccountID(ctx context.Context, accountID uuid.UUID) (account.StudentProfile, error) {
	var p account.StudentProfile
	err := r.db.WithContext(ctx).Where("account_id = ?", accountID).First(&p).Error
	if err != nil {
		return account.StudentProfile{}, translate("student profile", err)
	}
	return p, nil
}

func (r *PostgresAccountRepository) GetStudentByID(ctx context.Context, id uuid.UUID) (account.StudentProfile, error) {
	var p account.StudentProfile
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if err != nil {
		return account.StudentProfile{}, translate("student profile", err)
	}
	return p, nil
}

func (r *PostgresAccountRepository) ListTutors(ctx context.Context) ([]account.TutorProfile, error) {
	var tutors []account.TutorProfile
	err := r.db.WithContext(ctx).Order("created_at ASC").Find(&tutors).Error
	if err != nil {
		return nil, translate("tutor profiles", err)
	}
	return tutors, nil
}

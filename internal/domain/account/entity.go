package account

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Role string

const (
	RoleStudent Role = "student"
	RoleTutor   Role = "tutor"
)

func (r Role) Valid() bool {
	return r == RoleStudent || r == RoleTutor
}

// Account represents the accounts table
type Account struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Username     string    `gorm:"type:text;not null;uniqueIndex:idx_accounts_username"`
	Email        string    `gorm:"type:text;not null;uniqueIndex:idx_accounts_email"`
	PasswordHash string    `gorm:"type:text;not null" json:"-"`
	Role         Role      `gorm:"type:text;not null"`
	FirstName    string    `gorm:"type:text"`
	LastName     string    `gorm:"type:text"`
	Photo        string    `gorm:"type:text"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TutorProfile represents the tutor_profiles table
type TutorProfile struct {
	ID         uuid.UUID                   `gorm:"type:uuid;primaryKey"`
	AccountID  uuid.UUID                   `gorm:"type:uuid;not null;uniqueIndex:idx_tutor_profiles_account"`
	Bio        string                      `gorm:"type:text"`
	Subjects   datatypes.JSONSlice[string] `gorm:"type:jsonb"`
	HourlyRate float64
	CreatedAt  time.Time
}

// StudentProfile represents the student_profiles table
type StudentProfile struct {
	ID         uuid.UUID                   `gorm:"type:uuid;primaryKey"`
	AccountID  uuid.UUID                   `gorm:"type:uuid;not null;uniqueIndex:idx_student_profiles_account"`
	GradeLevel string                      `gorm:"type:text"`
	Subjects   datatypes.JSONSlice[string] `gorm:"type:jsonb"`
	Goals      string                      `gorm:"type:text"`
	CreatedAt  time.Time
}

// AccountChat represents the account_chats table. The composite key makes
// registering the same chat twice a no-op.
type AccountChat struct {
	AccountID uuid.UUID `gorm:"type:uuid;primaryKey"`
	ChatID    uuid.UUID `gorm:"type:uuid;primaryKey;index:idx_account_chats_chat"`
	CreatedAt time.Time
}

func (Account) TableName() string {
	return "accounts"
}

func (TutorProfile) TableName() string {
	return "tutor_profiles"
}

func (StudentProfile) TableName() string {
	return "student_profiles"
}

func (AccountChat) TableName() string {
	return "account_chats"
}

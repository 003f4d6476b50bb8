package httpdto

import (
	"time"

	"tutor-central/internal/domain/account"
	"tutor-central/internal/services"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// AccountDTO is the public shape of an account. The password hash is never
// part of it.
type AccountDTO struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	FirstName string    `json:"firstName,omitempty"`
	LastName  string    `json:"lastName,omitempty"`
	Photo     string    `json:"photo,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type TutorProfileDTO struct {
	ID         string   `json:"id"`
	AccountID  string   `json:"accountId"`
	Bio        string   `json:"bio,omitempty"`
	Subjects   []string `json:"subjects"`
	HourlyRate float64  `json:"hourlyRate"`
}

type StudentProfileDTO struct {
	ID         string   `json:"id"`
	AccountID  string   `json:"accountId"`
	GradeLevel string   `json:"gradeLevel,omitempty"`
	Subjects   []string `json:"subjects"`
	Goals      string   `json:"goals,omitempty"`
}

type AuthPayloadDTO struct {
	Token   string             `json:"token"`
	Account AccountDTO         `json:"account"`
	Tutor   *TutorProfileDTO   `json:"tutor,omitempty"`
	Student *StudentProfileDTO `json:"student,omitempty"`
}

type ProfileDTO struct {
	Account AccountDTO         `json:"account"`
	Tutor   *TutorProfileDTO   `json:"tutor,omitempty"`
	Student *StudentProfileDTO `json:"student,omitempty"`
	ChatIDs []string           `json:"chatIds"`
}

type TutorDTO struct {
	TutorProfileDTO
	Account AccountDTO `json:"account"`
}

type StudentDTO struct {
	StudentProfileDTO
	Account AccountDTO `json:"account"`
}

func NewAccountDTO(a account.Account) AccountDTO {
	return AccountDTO{
		ID:        a.ID.String(),
		Username:  a.Username,
		Email:     a.Email,
		Role:      string(a.Role),
		FirstName: a.FirstName,
		LastName:  a.LastName,
		Photo:     a.Photo,
		CreatedAt: a.CreatedAt,
	}
}

func NewAccountDTOs(list []account.Account) []AccountDTO {
	return lo.Map(list, func(a account.Account, _ int) AccountDTO { return NewAccountDTO(a) })
}

func NewTutorProfileDTO(p account.TutorProfile) TutorProfileDTO {
	return TutorProfileDTO{
		ID:         p.ID.String(),
		AccountID:  p.AccountID.String(),
		Bio:        p.Bio,
		Subjects:   subjects(p.Subjects),
		HourlyRate: p.HourlyRate,
	}
}

func NewStudentProfileDTO(p account.StudentProfile) StudentProfileDTO {
	return StudentProfileDTO{
		ID:         p.ID.String(),
		AccountID:  p.AccountID.String(),
		GradeLevel: p.GradeLevel,
		Subjects:   subjects(p.Subjects),
		Goals:      p.Goals,
	}
}

func subjects(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func tutorPtr(p *account.TutorProfile) *TutorProfileDTO {
	if p == nil {
		return nil
	}
	return lo.ToPtr(NewTutorProfileDTO(*p))
}

func studentPtr(p *account.StudentProfile) *StudentProfileDTO {
	if p == nil {
		return nil
	}
	return lo.ToPtr(NewStudentProfileDTO(*p))
}

func NewAuthPayloadDTO(p services.AuthPayload) AuthPayloadDTO {
	return AuthPayloadDTO{
		Token:   p.Token,
		Account: NewAccountDTO(p.Account),
		Tutor:   tutorPtr(p.Tutor),
		Student: studentPtr(p.Student),
	}
}

func NewProfileDTO(p services.Profile) ProfileDTO {
	return ProfileDTO{
		Account: NewAccountDTO(p.Account),
		Tutor:   tutorPtr(p.Tutor),
		Student: studentPtr(p.Student),
		ChatIDs: lo.Map(p.ChatIDs, func(id uuid.UUID, _ int) string { return id.String() }),
	}
}

func NewTutorDTOs(list []services.TutorView) []TutorDTO {
	return lo.Map(list, func(v services.TutorView, _ int) TutorDTO {
		return TutorDTO{TutorProfileDTO: NewTutorProfileDTO(v.Profile), Account: NewAccountDTO(v.Account)}
	})
}

func NewStudentDTO(v services.StudentView) StudentDTO {
	return StudentDTO{StudentProfileDTO: NewStudentProfileDTO(v.Profile), Account: NewAccountDTO(v.Account)}
}

package database

import (
	"context"
	"fmt"
	"log"

	"tutor-central/internal/domain/account"
	"tutor-central/internal/domain/chat"
	"tutor-central/internal/services"
)

// SeedConfig controls the demo data created by Seed.
type SeedConfig struct {
	Password     string
	TutorCount   int
	StudentCount int
	// Greeting is sent by every student to every tutor when non-empty.
	Greeting string
}

func DefaultSeedConfig() *SeedConfig {
	return &SeedConfig{
		Password:     "Tutor@123!",
		TutorCount:   3,
		StudentCount: 4,
		Greeting:     "Hi! Are you available this week?",
	}
}

type SeedServices struct {
	Accounts *services.AccountService
	Chats    *services.ChatService
	Messages *services.MessageService
}

type SeedResult struct {
	Tutors   []services.AuthPayload
	Students []services.AuthPayload
	Chats    []chat.Chat
	Messages int
}

var seedSubjects = [][]string{
	{"algebra", "calculus"},
	{"chemistry", "biology"},
	{"english", "history"},
	{"physics"},
}

// Seed creates demo tutors and students through the services so passwords,
// profiles and chat references are written exactly as in production.
func Seed(ctx context.Context, svc SeedServices, cfg *SeedConfig) (*SeedResult, error) {
	if cfg == nil {
		cfg = DefaultSeedConfig()
	}
	result := &SeedResult{}

	log.Println("Starting database seeding...")

	for i := 1; i <= cfg.TutorCount; i++ {
		p, err := svc.Accounts.CreateAccount(ctx, services.SignupInput{
			Username:   fmt.Sprintf("tutor%d", i),
			Email:      fmt.Sprintf("tutor%d@tutor-central.dev", i),
			Password:   cfg.Password,
			FirstName:  "Tutor",
			LastName:   fmt.Sprintf("No.%d", i),
			Bio:        "Seeded tutor account",
			Subjects:   seedSubjects[(i-1)%len(seedSubjects)],
			HourlyRate: float64(20 + 5*i),
		}, account.RoleTutor)
		if err != nil {
			return nil, fmt.Errorf("failed to seed tutor %d: %w", i, err)
		}
		result.Tutors = append(result.Tutors, p)
	}

	for i := 1; i <= cfg.StudentCount; i++ {
		p, err := svc.Accounts.CreateAccount(ctx, services.SignupInput{
			Username:   fmt.Sprintf("student%d", i),
			Email:      fmt.Sprintf("student%d@tutor-central.dev", i),
			Password:   cfg.Password,
			FirstName:  "Student",
			LastName:   fmt.Sprintf("No.%d", i),
			GradeLevel: fmt.Sprintf("%d", 8+i%5),
			Subjects:   seedSubjects[i%len(seedSubjects)],
		}, account.RoleStudent)
		if err != nil {
			return nil, fmt.Errorf("failed to seed student %d: %w", i, err)
		}
		result.Students = append(result.Students, p)
	}

	for _, student := range result.Students {
		for _, tutor := range result.Tutors {
			c, err := svc.Chats.FindOrCreate(ctx, tutor.Account.ID, student.Account.ID)
			if err != nil {
				return nil, fmt.Errorf("failed to seed chat %s/%s: %w", tutor.Account.Username, student.Account.Username, err)
			}
			result.Chats = append(result.Chats, c)

			if cfg.Greeting == "" {
				continue
			}
			actor := services.Identity{AccountID: student.Account.ID, Role: account.RoleStudent}
			if _, err := svc.Messages.Append(ctx, actor, c.ID, cfg.Greeting); err != nil {
				return nil, fmt.Errorf("failed to seed message: %w", err)
			}
			result.Messages++
		}
	}

	log.Printf("Seeded %d tutors, %d students, %d chats", len(result.Tutors), len(result.Students), len(result.Chats))
	return result, nil
}

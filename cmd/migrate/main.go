package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"time"

	"tutor-central/config"
	"tutor-central/internal/repository"
	"tutor-central/internal/services"
	"tutor-central/pkg/database"
	"tutor-central/pkg/logger"

	"gorm.io/gorm"
)

const usage = `
Tutor Central - Database CLI Tool

Usage:
  migrate [command] [flags]

Commands:
  up          Create or update tables, indexes and constraints
  status      Show database connection and table status
  seed-dev    Seed demo tutors, students, chats and messages

Flags:
  -password string   Password for seeded accounts (default "Tutor@123!")

Examples:
  go run cmd/migrate/main.go up
  go run cmd/migrate/main.go status
  go run cmd/migrate/main.go seed-dev -password secret123
`

func main() {
	password := flag.String("password", database.DefaultSeedConfig().Password, "Password for seeded accounts")

	flag.Usage = func() {
		fmt.Print(usage)
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}

	command := flag.Arg(0)

	cfg := config.LoadConfig()
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("❌ Database connection failed: %v", err)
	}
	defer database.Close()

	switch command {
	case "up":
		runMigrationsUp(db)
	case "status":
		showStatus(db)
	case "seed-dev":
		runSeedDevelopment(db, cfg, *password)
	default:
		fmt.Printf("Unknown command: %s\n", command)
		flag.Usage()
		os.Exit(1)
	}
}

func runMigrationsUp(db *gorm.DB) {
	log.Println("🚀 Running migrations UP...")

	if err := repository.InitSchema(db); err != nil {
		log.Fatalf("❌ Migration failed: %v", err)
	}

	log.Println("✅ Migrations completed successfully!")
}

func showStatus(db *gorm.DB) {
	log.Println("🔍 Checking database status...")

	if err := database.HealthCheck(); err != nil {
		log.Fatalf("❌ Database connection failed: %v", err)
	}
	log.Println("✅ Database connection: OK")

	status := repository.TableStatus(db)
	tables := make([]string, 0, len(status))
	for table := range status {
		tables = append(tables, table)
	}
	sort.Strings(tables)

	for _, table := range tables {
		if !status[table] {
			log.Printf("❌ Table %-20s does not exist", table)
			continue
		}
		var count int64
		if err := db.Table(table).Count(&count).Error; err != nil {
			log.Printf("⚠️  Error counting table %s: %v", table, err)
			continue
		}
		log.Printf("✅ Table %-20s exists (%d rows)", table, count)
	}
}

func runSeedDevelopment(db *gorm.DB, cfg *config.Config, password string) {
	log.Println("🌱 Seeding database (development mode)...")

	accounts := repository.NewAccountRepository(db)
	chats := repository.NewChatRepository(db)
	messages := repository.NewMessageRepository(db)
	l := logger.New(logger.DevelopmentMode)
	tokens := services.NewTokenService(cfg.JWTSecret, time.Duration(cfg.JWTExpiryHours)*time.Hour)

	seedCfg := database.DefaultSeedConfig()
	seedCfg.Password = password

	result, err := database.Seed(context.Background(), database.SeedServices{
		Accounts: services.NewAccountService(accounts, tokens, l),
		Chats:    services.NewChatService(accounts, chats, messages, l),
		Messages: services.NewMessageService(accounts, chats, messages),
	}, seedCfg)
	if err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}

	log.Printf("✅ Seeded %d messages; log in as %s / %s", result.Messages, result.Students[0].Account.Email, password)
}

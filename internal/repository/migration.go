package repository

import (
	"fmt"

	"tutor-central/internal/domain/account"
	"tutor-central/internal/domain/chat"

	"gorm.io/gorm"
)

// Models lists every table owned by the service, in creation order.
func Models() []interface{} {
	return []interface{}{
		&account.Account{},
		&account.TutorProfile{},
		&account.StudentProfile{},
		&account.AccountChat{},
		&chat.Chat{},
		&chat.Message{},
	}
}

// InitSchema runs the gorm auto-migration and adds the constraints gorm
// cannot express through struct tags.
func InitSchema(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto-migration failed: %w", err)
	}

	// DO blocks keep the constraints idempotent across restarts.
	constraints := []string{
		`DO $$ BEGIN
			ALTER TABLE accounts ADD CONSTRAINT chk_accounts_role CHECK (role IN ('student', 'tutor'));
		EXCEPTION
			WHEN duplicate_object THEN null;
		END $$;`,
		`DO $$ BEGIN
			ALTER TABLE chats ADD CONSTRAINT chk_chats_distinct CHECK (tutor_id <> student_id);
		EXCEPTION
			WHEN duplicate_object THEN null;
		END $$;`,
		`DO $$ BEGIN
			ALTER TABLE messages ADD CONSTRAINT fk_messages_chat FOREIGN KEY (chat_id) REFERENCES chats (id);
		EXCEPTION
			WHEN duplicate_object THEN null;
		END $$;`,
	}

	for _, stmt := range constraints {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("failed to add constraint: %w", err)
		}
	}

	return nil
}

// TableStatus reports whether each table exists.
func TableStatus(db *gorm.DB) map[string]bool {
	status := make(map[string]bool)
	for _, model := range Models() {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(model); err != nil {
			continue
		}
		status[stmt.Schema.Table] = db.Migrator().HasTable(model)
	}
	return status
}

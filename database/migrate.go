// database/migrate.go - Database Migration Runner
package database

import (
	"log"

	"gorm.io/gorm"

	"github.com/Prem30-jr/Hack-Tracker/models"
)

// RunMigrations migrates all application tables and their indexes.
func RunMigrations(db *gorm.DB) error {
	log.Println("Running database migrations...")

	if err := db.AutoMigrate(
		&models.User{},
		&models.Team{},
		&models.TeamMember{},
		&models.ChecklistItem{},
		&models.Task{},
	); err != nil {
		return err
	}

	createIndexes(db)

	log.Println("Migrations completed")
	return nil
}

func createIndexes(db *gorm.DB) {
	// AutoMigrate already builds the unique indexes declared in tags
	// (invite_code, team_id+user_id); these cover the hot lookups.
	db.Exec("CREATE INDEX IF NOT EXISTS idx_team_members_user ON team_members(user_id)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_tasks_team_status ON tasks(team_id, status)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_checklist_items_team ON checklist_items(team_id)")
}

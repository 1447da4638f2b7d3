// cmd/seed-demo - Seeds a local database with a demo team for development
package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/Prem30-jr/Hack-Tracker/database"
	"github.com/Prem30-jr/Hack-Tracker/models"
	"github.com/Prem30-jr/Hack-Tracker/services"
)

func main() {
	dbPath := flag.String("db", "./data/hacktracker_dev.db", "sqlite database path")
	template := flag.String("template", "Generic Hackathon", "template to apply to the demo team")
	flag.Parse()

	db, err := gorm.Open(sqlite.Open(*dbPath), &gorm.Config{})
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	if err := database.RunMigrations(db); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	users := []models.User{
		{AuthUID: "demo:alice", Email: "alice@example.com", DisplayName: "Alice"},
		{AuthUID: "demo:bob", Email: "bob@example.com", DisplayName: "Bob"},
	}
	for i := range users {
		if err := db.Where("auth_uid = ?", users[i].AuthUID).FirstOrCreate(&users[i]).Error; err != nil {
			log.Fatal("Failed to seed user:", err)
		}
	}

	teams := services.NewTeamService(db)
	date := time.Now().AddDate(0, 1, 0)
	team, err := teams.CreateTeam(users[0].ID, services.CreateTeamInput{
		Name:          "Demo Team",
		Description:   "Seeded workspace for local development",
		HackathonName: "Demo Hackathon",
		HackathonDate: &date,
		MemberSize:    4,
	})
	if err != nil {
		log.Fatal("Failed to create demo team:", err)
	}

	if _, err := teams.JoinTeam(team.InviteCode, users[1].ID); err != nil {
		log.Fatal("Failed to join demo team:", err)
	}

	if _, err := teams.ApplyTemplate(team.ID, *template, users[0].ID); err != nil {
		log.Fatal("Failed to apply template:", err)
	}

	fmt.Printf("Seeded team %q (invite code %s) with %d users\n", team.Name, team.InviteCode, len(users))
}

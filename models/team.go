// models/team.go
package models

import "time"

type Team struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	Name        string `json:"name" gorm:"not null;size:100"`
	Description string `json:"description" gorm:"type:text"`

	HackathonName    string     `json:"hackathon_name"`
	HackathonDate    *time.Time `json:"hackathon_date,omitempty"`
	HackathonEndDate *time.Time `json:"hackathon_end_date,omitempty"`

	// Maximum member count, enforced at join time.
	MemberSize int    `json:"member_size" gorm:"not null;default:4"`
	InviteCode string `json:"invite_code" gorm:"uniqueIndex;size:10;not null"`
	InviteLink string `json:"invite_link"`

	// Name of the template last applied, empty when none.
	Template string `json:"template"`

	GithubAccessToken string `json:"-" gorm:"type:text"`
	GithubRepoOwner   string `json:"github_repo_owner"`
	GithubRepoName    string `json:"github_repo_name"`
	GithubRepoID      int64  `json:"github_repo_id"`
	GithubRepoURL     string `json:"github_repo_url"`
	GithubConnected   bool   `json:"github_connected" gorm:"default:false"`

	CreatorID uint            `json:"creator_id" gorm:"not null"`
	Creator   *User           `json:"creator,omitempty" gorm:"foreignKey:CreatorID"`
	Members   []TeamMember    `json:"members,omitempty" gorm:"foreignKey:TeamID"`
	Checklist []ChecklistItem `json:"checklist,omitempty" gorm:"foreignKey:TeamID"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Team) TableName() string {
	return "teams"
}

// AdminCount reports how many loaded members hold the admin role.
func (t *Team) AdminCount() int {
	n := 0
	for _, m := range t.Members {
		if m.Role == TeamRoleAdmin {
			n++
		}
	}
	return n
}

// models/team_member.go
package models

import (
	"strings"
	"time"
)

type TeamRole string

const (
	TeamRoleAdmin  TeamRole = "admin"
	TeamRoleMember TeamRole = "member"
)

// ParseTeamRole accepts role input case-insensitively and rejects
// anything outside the closed set.
func ParseTeamRole(s string) (TeamRole, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(TeamRoleAdmin):
		return TeamRoleAdmin, true
	case string(TeamRoleMember):
		return TeamRoleMember, true
	}
	return "", false
}

type TeamMember struct {
	ID       uint      `json:"id" gorm:"primaryKey"`
	TeamID   uint      `json:"team_id" gorm:"not null;uniqueIndex:idx_team_user"`
	Team     *Team     `json:"team,omitempty" gorm:"foreignKey:TeamID"`
	UserID   uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_team_user"`
	User     *User     `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Role     TeamRole  `json:"role" gorm:"not null;default:'member'"`
	JoinedAt time.Time `json:"joined_at" gorm:"not null"`
}

func (TeamMember) TableName() string {
	return "team_members"
}

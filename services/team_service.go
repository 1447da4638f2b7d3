// services/team_service.go - Team, membership and checklist business logic
package services

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/Prem30-jr/Hack-Tracker/apperr"
	"github.com/Prem30-jr/Hack-Tracker/models"
)

const (
	DefaultMemberSize     = 4
	inviteCodeBytes       = 4
	inviteCodeMaxAttempts = 5
)

type TeamService struct {
	db *gorm.DB

	// Per-team join locks. The capacity check and the membership
	// insert are two statements; serializing joins on the same team
	// keeps len(members) <= member_size under concurrent requests.
	joinLocks sync.Map
}

func NewTeamService(db *gorm.DB) *TeamService {
	return &TeamService{db: db}
}

type CreateTeamInput struct {
	Name             string
	Description      string
	HackathonName    string
	HackathonDate    *time.Time
	HackathonEndDate *time.Time
	MemberSize       int
	InviteBaseURL    string
}

// CreateTeam creates a team with the creator as its sole admin member.
func (s *TeamService) CreateTeam(creatorID uint, input CreateTeamInput) (*models.Team, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, apperr.Validation("Team name is required")
	}

	memberSize := input.MemberSize
	if memberSize <= 0 {
		memberSize = DefaultMemberSize
	}

	var team *models.Team
	for attempt := 0; attempt < inviteCodeMaxAttempts; attempt++ {
		code, err := generateInviteCode()
		if err != nil {
			return nil, apperr.Internal(err)
		}

		team = &models.Team{
			Name:             strings.TrimSpace(input.Name),
			Description:      input.Description,
			HackathonName:    input.HackathonName,
			HackathonDate:    input.HackathonDate,
			HackathonEndDate: input.HackathonEndDate,
			MemberSize:       memberSize,
			InviteCode:       code,
			CreatorID:        creatorID,
		}
		if input.InviteBaseURL != "" {
			team.InviteLink = strings.TrimRight(input.InviteBaseURL, "/") + "/join/" + code
		}

		err = s.db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(team).Error; err != nil {
				return err
			}
			member := &models.TeamMember{
				TeamID:   team.ID,
				UserID:   creatorID,
				Role:     models.TeamRoleAdmin,
				JoinedAt: time.Now(),
			}
			return tx.Create(member).Error
		})
		if err == nil {
			return team, nil
		}
		// Invite codes are random; a collision is the only expected
		// uniqueness failure here, so regenerate and retry.
		if isUniqueViolation(err) {
			continue
		}
		return nil, apperr.Internal(err)
	}

	return nil, apperr.Internal(errors.New("could not allocate a unique invite code"))
}

// JoinTeam adds a user to the team matching the invite code.
func (s *TeamService) JoinTeam(inviteCode string, userID uint) (*models.Team, error) {
	var team models.Team
	if err := s.db.Where("invite_code = ?", inviteCode).First(&team).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Invalid invite code")
		}
		return nil, apperr.Internal(err)
	}

	lock := s.lockFor(team.ID)
	lock.Lock()
	defer lock.Unlock()

	var existing int64
	if err := s.db.Model(&models.TeamMember{}).
		Where("team_id = ? AND user_id = ?", team.ID, userID).
		Count(&existing).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	if existing > 0 {
		return nil, apperr.Conflict("Already a member of this team")
	}

	var memberCount int64
	if err := s.db.Model(&models.TeamMember{}).
		Where("team_id = ?", team.ID).
		Count(&memberCount).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	if memberCount >= int64(team.MemberSize) {
		return nil, apperr.Capacity("Team is already full")
	}

	member := &models.TeamMember{
		TeamID:   team.ID,
		UserID:   userID,
		Role:     models.TeamRoleMember,
		JoinedAt: time.Now(),
	}
	if err := s.db.Create(member).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, apperr.Conflict("Already a member of this team")
		}
		return nil, apperr.Internal(err)
	}

	return s.GetTeam(team.ID)
}

// GetTeam returns a team with members and checklist resolved.
func (s *TeamService) GetTeam(teamID uint) (*models.Team, error) {
	var team models.Team
	err := s.db.Where("id = ?", teamID).
		Preload("Members").
		Preload("Members.User").
		Preload("Checklist").
		Preload("Creator").
		First(&team).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Team not found")
		}
		return nil, apperr.Internal(err)
	}
	return &team, nil
}

// GetUserTeams returns every team the user is a member of.
func (s *TeamService) GetUserTeams(userID uint) ([]models.Team, error) {
	var teams []models.Team
	err := s.db.Joins("JOIN team_members ON team_members.team_id = teams.id").
		Where("team_members.user_id = ?", userID).
		Preload("Members").
		Preload("Members.User").
		Preload("Checklist").
		Find(&teams).Error
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return teams, nil
}

type UpdateTeamInput struct {
	Name             *string
	Description      *string
	HackathonName    *string
	HackathonDate    *time.Time
	HackathonEndDate *time.Time
	MemberSize       *int
}

// UpdateTeam applies a partial profile update. Shrinking member_size
// below the current member count is rejected.
func (s *TeamService) UpdateTeam(teamID uint, input UpdateTeamInput) (*models.Team, error) {
	team, err := s.GetTeam(teamID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{"updated_at": time.Now()}
	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, apperr.Validation("Team name is required")
		}
		updates["name"] = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.HackathonName != nil {
		updates["hackathon_name"] = *input.HackathonName
	}
	if input.HackathonDate != nil {
		updates["hackathon_date"] = *input.HackathonDate
	}
	if input.HackathonEndDate != nil {
		updates["hackathon_end_date"] = *input.HackathonEndDate
	}
	if input.MemberSize != nil {
		if *input.MemberSize < len(team.Members) {
			return nil, apperr.Validation("Member size cannot be less than current member count")
		}
		updates["member_size"] = *input.MemberSize
	}

	if err := s.db.Model(&models.Team{}).Where("id = ?", teamID).Updates(updates).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	return s.GetTeam(teamID)
}

// UpdateMemberRole changes a member's role. Demoting the only admin
// is rejected so every team keeps at least one.
func (s *TeamService) UpdateMemberRole(teamID, targetUserID uint, role models.TeamRole) (*models.Team, error) {
	team, err := s.GetTeam(teamID)
	if err != nil {
		return nil, err
	}

	var target *models.TeamMember
	for i := range team.Members {
		if team.Members[i].UserID == targetUserID {
			target = &team.Members[i]
			break
		}
	}
	if target == nil {
		return nil, apperr.NotFound("Member not found")
	}

	if target.Role == models.TeamRoleAdmin && role != models.TeamRoleAdmin && team.AdminCount() <= 1 {
		return nil, apperr.Conflict("Cannot remove the only admin")
	}

	if err := s.db.Model(&models.TeamMember{}).
		Where("team_id = ? AND user_id = ?", teamID, targetUserID).
		Update("role", role).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	return s.GetTeam(teamID)
}

// RemoveMember removes a member from the team.
func (s *TeamService) RemoveMember(teamID, targetUserID uint) (*models.Team, error) {
	team, err := s.GetTeam(teamID)
	if err != nil {
		return nil, err
	}

	var target *models.TeamMember
	for i := range team.Members {
		if team.Members[i].UserID == targetUserID {
			target = &team.Members[i]
			break
		}
	}
	if target == nil {
		return nil, apperr.NotFound("Member not found")
	}

	if target.Role == models.TeamRoleAdmin && team.AdminCount() <= 1 {
		return nil, apperr.Conflict("Cannot remove the only admin")
	}

	if err := s.db.Where("team_id = ? AND user_id = ?", teamID, targetUserID).
		Delete(&models.TeamMember{}).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	return s.GetTeam(teamID)
}

// ApplyTemplate replaces the team checklist with the template's items
// and seeds its tasks, all in one transaction so a failure leaves the
// workspace untouched.
func (s *TeamService) ApplyTemplate(teamID uint, templateName string, createdBy uint) (*models.Team, error) {
	tpl, ok := models.GetTemplate(templateName)
	if !ok {
		return nil, apperr.Validation("Invalid template name")
	}

	if _, err := s.GetTeam(teamID); err != nil {
		return nil, err
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("team_id = ?", teamID).Delete(&models.ChecklistItem{}).Error; err != nil {
			return err
		}
		for _, title := range tpl.Checklist {
			item := &models.ChecklistItem{TeamID: teamID, Title: title}
			if err := tx.Create(item).Error; err != nil {
				return err
			}
		}
		for _, seed := range tpl.Tasks {
			task := &models.Task{
				Title:       seed.Title,
				Description: seed.Description,
				Status:      models.TaskStatusTodo,
				Priority:    seed.Priority,
				TeamID:      teamID,
				CreatedByID: createdBy,
			}
			if err := tx.Create(task).Error; err != nil {
				return err
			}
		}
		return tx.Model(&models.Team{}).Where("id = ?", teamID).
			Updates(map[string]interface{}{"template": templateName, "updated_at": time.Now()}).Error
	})
	if err != nil {
		return nil, apperr.Internal(err)
	}

	return s.GetTeam(teamID)
}

// AddChecklistItem appends a custom checklist item.
func (s *TeamService) AddChecklistItem(teamID uint, title, description string) (*models.Team, error) {
	if strings.TrimSpace(title) == "" {
		return nil, apperr.Validation("Checklist item title is required")
	}
	if _, err := s.GetTeam(teamID); err != nil {
		return nil, err
	}

	item := &models.ChecklistItem{
		TeamID:      teamID,
		Title:       strings.TrimSpace(title),
		Description: description,
	}
	if err := s.db.Create(item).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	return s.GetTeam(teamID)
}

// ToggleChecklistItem sets the completion flag on an item belonging to
// this team's checklist.
func (s *TeamService) ToggleChecklistItem(teamID, itemID uint, completed bool) (*models.Team, error) {
	result := s.db.Model(&models.ChecklistItem{}).
		Where("id = ? AND team_id = ?", itemID, teamID).
		Updates(map[string]interface{}{"completed": completed, "updated_at": time.Now()})
	if result.Error != nil {
		return nil, apperr.Internal(result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, apperr.NotFound("Checklist item not found")
	}
	return s.GetTeam(teamID)
}

// IsTeamMember reports whether the user belongs to the team.
func (s *TeamService) IsTeamMember(userID, teamID uint) bool {
	var count int64
	s.db.Model(&models.TeamMember{}).
		Where("team_id = ? AND user_id = ?", teamID, userID).
		Count(&count)
	return count > 0
}

func (s *TeamService) lockFor(teamID uint) *sync.Mutex {
	lock, _ := s.joinLocks.LoadOrStore(teamID, &sync.Mutex{})
	return lock.(*sync.Mutex)
}

func generateInviteCode() (string, error) {
	buf := make([]byte, inviteCodeBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return strings.ToUpper(hex.EncodeToString(buf)), nil
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate key")
}

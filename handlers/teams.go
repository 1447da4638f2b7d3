// handlers/teams.go - Team, membership and checklist endpoints
package handlers

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/Prem30-jr/Hack-Tracker/apperr"
	"github.com/Prem30-jr/Hack-Tracker/middleware"
	"github.com/Prem30-jr/Hack-Tracker/models"
	"github.com/Prem30-jr/Hack-Tracker/services"
	"github.com/Prem30-jr/Hack-Tracker/utils"
)

type TeamHandler struct {
	teams  *services.TeamService
	events *services.TeamEventBus
}

func NewTeamHandler(teams *services.TeamService, events *services.TeamEventBus) *TeamHandler {
	return &TeamHandler{teams: teams, events: events}
}

type createTeamRequest struct {
	Name             string     `json:"name"`
	Description      string     `json:"description"`
	HackathonName    string     `json:"hackathonName"`
	HackathonDate    *time.Time `json:"hackathonDate"`
	HackathonEndDate *time.Time `json:"hackathonEndDate"`
	MemberSize       int        `json:"memberSize"`
}

// Create creates a team with the caller as its admin.
// POST /api/teams
func (h *TeamHandler) Create(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return utils.Error(c, apperr.Unauthenticated("User profile not synced. Please link your account first."))
	}

	var req createTeamRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, apperr.Validation("Invalid request body"))
	}

	team, err := h.teams.CreateTeam(user.ID, services.CreateTeamInput{
		Name:             req.Name,
		Description:      req.Description,
		HackathonName:    req.HackathonName,
		HackathonDate:    req.HackathonDate,
		HackathonEndDate: req.HackathonEndDate,
		MemberSize:       req.MemberSize,
		InviteBaseURL:    c.BaseURL(),
	})
	if err != nil {
		return utils.Error(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(team)
}

// Join adds the caller to the team matching the invite code.
// POST /api/teams/join/:inviteCode
func (h *TeamHandler) Join(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return utils.Error(c, apperr.Unauthenticated("User profile not synced. Please link your account first."))
	}

	team, err := h.teams.JoinTeam(c.Params("inviteCode"), user.ID)
	if err != nil {
		return utils.Error(c, err)
	}

	h.events.Publish(services.TeamEvent{
		Type:    services.EventMemberJoined,
		TeamID:  team.ID,
		Actor:   user.DisplayName,
		Payload: fiber.Map{"user_id": user.ID},
	})
	return c.JSON(team)
}

// List returns every team the caller belongs to.
// GET /api/teams
func (h *TeamHandler) List(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return utils.Error(c, apperr.Unauthenticated("User profile not synced. Please link your account first."))
	}

	teams, err := h.teams.GetUserTeams(user.ID)
	if err != nil {
		return utils.Error(c, err)
	}
	return c.JSON(teams)
}

// Get returns the team with members and checklist resolved.
// GET /api/teams/:teamId
func (h *TeamHandler) Get(c *fiber.Ctx) error {
	team, err := h.teams.GetTeam(middleware.CurrentTeam(c).ID)
	if err != nil {
		return utils.Error(c, err)
	}
	return c.JSON(team)
}

type updateTeamRequest struct {
	Name             *string    `json:"name"`
	Description      *string    `json:"description"`
	HackathonName    *string    `json:"hackathonName"`
	HackathonDate    *time.Time `json:"hackathonDate"`
	HackathonEndDate *time.Time `json:"hackathonEndDate"`
	MemberSize       *int       `json:"memberSize"`
}

// Update applies a partial profile update, admin only.
// PATCH /api/teams/:teamId
func (h *TeamHandler) Update(c *fiber.Ctx) error {
	var req updateTeamRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, apperr.Validation("Invalid request body"))
	}

	team, err := h.teams.UpdateTeam(middleware.CurrentTeam(c).ID, services.UpdateTeamInput{
		Name:             req.Name,
		Description:      req.Description,
		HackathonName:    req.HackathonName,
		HackathonDate:    req.HackathonDate,
		HackathonEndDate: req.HackathonEndDate,
		MemberSize:       req.MemberSize,
	})
	if err != nil {
		return utils.Error(c, err)
	}
	return c.JSON(team)
}

// ApplyTemplate seeds the workspace from a named template, admin only.
// POST /api/teams/:teamId/template
func (h *TeamHandler) ApplyTemplate(c *fiber.Ctx) error {
	var req struct {
		TemplateName string `json:"templateName"`
	}
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, apperr.Validation("Invalid request body"))
	}

	user := middleware.CurrentUser(c)
	team, err := h.teams.ApplyTemplate(middleware.CurrentTeam(c).ID, req.TemplateName, user.ID)
	if err != nil {
		return utils.Error(c, err)
	}

	h.events.Publish(services.TeamEvent{
		Type:    services.EventTemplateApplied,
		TeamID:  team.ID,
		Actor:   user.DisplayName,
		Payload: fiber.Map{"template": req.TemplateName},
	})
	return c.JSON(fiber.Map{
		"message": "Template " + req.TemplateName + " applied successfully",
		"team":    team,
	})
}

// AddChecklistItem appends a custom checklist item, any member.
// POST /api/teams/:teamId/checklist
func (h *TeamHandler) AddChecklistItem(c *fiber.Ctx) error {
	var req struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	}
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, apperr.Validation("Invalid request body"))
	}

	team, err := h.teams.AddChecklistItem(middleware.CurrentTeam(c).ID, req.Title, req.Description)
	if err != nil {
		return utils.Error(c, err)
	}

	h.events.Publish(services.TeamEvent{
		Type:    services.EventChecklistAdded,
		TeamID:  team.ID,
		Actor:   middleware.CurrentUser(c).DisplayName,
		Payload: fiber.Map{"title": req.Title},
	})
	return c.JSON(team)
}

// ToggleChecklistItem sets an item's completion flag, any member.
// PATCH /api/teams/:teamId/checklist/:itemId
func (h *TeamHandler) ToggleChecklistItem(c *fiber.Ctx) error {
	itemID, err := strconv.ParseUint(c.Params("itemId"), 10, 32)
	if err != nil {
		return utils.Error(c, apperr.Validation("Invalid checklist item ID"))
	}

	var req struct {
		Completed bool `json:"completed"`
	}
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, apperr.Validation("Invalid request body"))
	}

	team, err := h.teams.ToggleChecklistItem(middleware.CurrentTeam(c).ID, uint(itemID), req.Completed)
	if err != nil {
		return utils.Error(c, err)
	}

	h.events.Publish(services.TeamEvent{
		Type:    services.EventChecklistToggled,
		TeamID:  team.ID,
		Actor:   middleware.CurrentUser(c).DisplayName,
		Payload: fiber.Map{"item_id": itemID, "completed": req.Completed},
	})
	return c.JSON(team)
}

// UpdateMemberRole changes a member's role, admin only.
// PATCH /api/teams/:teamId/members/:userId
func (h *TeamHandler) UpdateMemberRole(c *fiber.Ctx) error {
	targetID, err := strconv.ParseUint(c.Params("userId"), 10, 32)
	if err != nil {
		return utils.Error(c, apperr.Validation("Invalid user ID"))
	}

	var req struct {
		Role string `json:"role"`
	}
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, apperr.Validation("Invalid request body"))
	}

	role, ok := models.ParseTeamRole(req.Role)
	if !ok {
		return utils.Error(c, apperr.Validation("Invalid role"))
	}

	team, err := h.teams.UpdateMemberRole(middleware.CurrentTeam(c).ID, uint(targetID), role)
	if err != nil {
		return utils.Error(c, err)
	}
	return c.JSON(team)
}

// RemoveMember removes a member from the team, admin only.
// DELETE /api/teams/:teamId/members/:userId
func (h *TeamHandler) RemoveMember(c *fiber.Ctx) error {
	targetID, err := strconv.ParseUint(c.Params("userId"), 10, 32)
	if err != nil {
		return utils.Error(c, apperr.Validation("Invalid user ID"))
	}

	team, err := h.teams.RemoveMember(middleware.CurrentTeam(c).ID, uint(targetID))
	if err != nil {
		return utils.Error(c, err)
	}
	return c.JSON(team)
}

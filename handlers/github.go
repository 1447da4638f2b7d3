// handlers/github.go - GitHub OAuth and repository activity endpoints
package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/Prem30-jr/Hack-Tracker/apperr"
	"github.com/Prem30-jr/Hack-Tracker/middleware"
	"github.com/Prem30-jr/Hack-Tracker/services"
	"github.com/Prem30-jr/Hack-Tracker/utils"
)

type GitHubHandler struct {
	github      *services.GitHubService
	frontendURL string
}

func NewGitHubHandler(github *services.GitHubService, frontendURL string) *GitHubHandler {
	if frontendURL == "" {
		frontendURL = "http://localhost:5173"
	}
	return &GitHubHandler{github: github, frontendURL: frontendURL}
}

// AuthRedirect hands the client the GitHub OAuth URL for this team.
// GET /api/github/auth/:teamId
func (h *GitHubHandler) AuthRedirect(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"url": h.github.AuthorizeURL(middleware.CurrentTeam(c).ID),
	})
}

// Callback receives the OAuth code from GitHub, stores the exchanged
// token on the team named in the state parameter, and sends the user
// back to the workspace.
// GET /api/github/callback
func (h *GitHubHandler) Callback(c *fiber.Ctx) error {
	teamID, err := strconv.ParseUint(c.Query("state"), 10, 32)
	if err != nil {
		return utils.Error(c, apperr.Validation("Invalid state parameter"))
	}

	if err := h.github.ExchangeCode(c.UserContext(), uint(teamID), c.Query("code")); err != nil {
		return utils.Error(c, err)
	}
	return c.Redirect(h.frontendURL + "/workspace/" + c.Query("state"))
}

// ConnectRepo links a specific repository to the team, admin only.
// POST /api/github/connect-repo/:teamId
func (h *GitHubHandler) ConnectRepo(c *fiber.Ctx) error {
	var req struct {
		Owner string `json:"owner"`
		Repo  string `json:"repo"`
	}
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, apperr.Validation("Invalid request body"))
	}
	if req.Owner == "" || req.Repo == "" {
		return utils.Error(c, apperr.Validation("Owner and repo are required"))
	}

	team, err := h.github.ConnectRepo(c.UserContext(), middleware.CurrentTeam(c).ID, req.Owner, req.Repo)
	if err != nil {
		return utils.Error(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Repository connected successfully",
		"team":    team,
	})
}

// Stats returns commits, pull requests and contributors for the
// connected repository.
// GET /api/github/stats/:teamId
func (h *GitHubHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.github.Stats(c.UserContext(), middleware.CurrentTeam(c).ID)
	if err != nil {
		return utils.Error(c, err)
	}
	return c.JSON(stats)
}

package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Prem30-jr/Hack-Tracker/database"
	"github.com/Prem30-jr/Hack-Tracker/middleware"
	"github.com/Prem30-jr/Hack-Tracker/models"
	"github.com/Prem30-jr/Hack-Tracker/services"
)

type testApp struct {
	app    *fiber.App
	db     *gorm.DB
	tokens *services.JWTTokenService
}

type fixedGenerator struct{ text string }

func (g fixedGenerator) Generate(context.Context, string) (string, error) {
	return g.text, nil
}

// newTestApp wires the API the same way main does, minus rate limiting
// and the external integrations.
func newTestApp(t *testing.T) *testApp {
	t.Helper()

	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", t.Name(), time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.RunMigrations(db))

	tokens := services.NewJWTTokenService("handlers-test-secret-32-chars-long!", time.Hour)
	eventBus := services.NewTeamEventBus()
	teamService := services.NewTeamService(db)
	taskService := services.NewTaskService(db)
	aiService := services.NewAIService(fixedGenerator{text: "Here is a refined statement."}, time.Second)

	authHandler := NewAuthHandler(db, tokens)
	teamHandler := NewTeamHandler(teamService, eventBus)
	taskHandler := NewTaskHandler(taskService, eventBus)
	aiHandler := NewAIHandler(aiService)

	app := fiber.New()
	protect := middleware.Protect(tokens, db)
	memberOnly := middleware.RequireTeamRole(db, models.TeamRoleAdmin, models.TeamRoleMember)
	adminOnly := middleware.RequireTeamRole(db, models.TeamRoleAdmin)

	api := app.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)
	authGroup.Post("/sync", protect, authHandler.Sync)
	authGroup.Get("/me", protect, authHandler.Me)

	teamGroup := api.Group("/teams", protect)
	teamGroup.Post("/", teamHandler.Create)
	teamGroup.Get("/", teamHandler.List)
	teamGroup.Post("/join/:inviteCode", teamHandler.Join)
	teamGroup.Get("/:teamId", memberOnly, teamHandler.Get)
	teamGroup.Patch("/:teamId", adminOnly, teamHandler.Update)
	teamGroup.Post("/:teamId/template", adminOnly, teamHandler.ApplyTemplate)
	teamGroup.Post("/:teamId/checklist", memberOnly, teamHandler.AddChecklistItem)
	teamGroup.Patch("/:teamId/checklist/:itemId", memberOnly, teamHandler.ToggleChecklistItem)
	teamGroup.Patch("/:teamId/members/:userId", adminOnly, teamHandler.UpdateMemberRole)
	teamGroup.Delete("/:teamId/members/:userId", adminOnly, teamHandler.RemoveMember)

	taskGroup := api.Group("/tasks", protect)
	taskGroup.Post("/:teamId", memberOnly, taskHandler.Create)
	taskGroup.Get("/:teamId", memberOnly, taskHandler.List)
	taskGroup.Patch("/:teamId/:taskId", memberOnly, taskHandler.Update)
	taskGroup.Delete("/:teamId/:taskId", adminOnly, taskHandler.Delete)

	api.Post("/ai/chat/:teamId", protect, memberOnly, aiHandler.Chat)

	return &testApp{app: app, db: db, tokens: tokens}
}

func (ta *testApp) do(t *testing.T, method, path, token string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := ta.app.Test(req, -1)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()

	var decoded map[string]interface{}
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &decoded))
	}
	return resp, decoded
}

// register creates a local account and returns its bearer token. The
// register flow already syncs a profile row.
func (ta *testApp) register(t *testing.T, email, name string) string {
	t.Helper()
	resp, body := ta.do(t, http.MethodPost, "/api/auth/register", "", fiber.Map{
		"email":        email,
		"password":     "correct-horse",
		"display_name": name,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func TestRegisterLoginMe(t *testing.T) {
	ta := newTestApp(t)

	token := ta.register(t, "alice@example.com", "Alice")

	resp, body := ta.do(t, http.MethodGet, "/api/auth/me", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "alice@example.com", body["email"])
	assert.Equal(t, "Alice", body["display_name"])
	assert.NotContains(t, body, "password_hash")

	// Duplicate registration is rejected.
	resp, body = ta.do(t, http.MethodPost, "/api/auth/register", "", fiber.Map{
		"email": "alice@example.com", "password": "correct-horse",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body["message"], "already exists")

	resp, body = ta.do(t, http.MethodPost, "/api/auth/login", "", fiber.Map{
		"email": "alice@example.com", "password": "correct-horse",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, body["token"])

	resp, body = ta.do(t, http.MethodPost, "/api/auth/login", "", fiber.Map{
		"email": "alice@example.com", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Invalid email or password", body["message"])
}

func TestSyncUpsertsProfile(t *testing.T) {
	ta := newTestApp(t)

	token, err := ta.tokens.Issue(services.Identity{
		UID: "ext-1", Email: "bob@example.com", Name: "Bob", Picture: "https://img/bob.png",
	})
	require.NoError(t, err)

	// Before sync, team routes reject the caller.
	resp, body := ta.do(t, http.MethodGet, "/api/teams/", token, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Contains(t, body["message"], "not synced")

	resp, body = ta.do(t, http.MethodPost, "/api/auth/sync", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "bob@example.com", body["email"])

	// Second sync refreshes rather than duplicates.
	token2, err := ta.tokens.Issue(services.Identity{UID: "ext-1", Email: "bob@new.example.com", Name: "Bobby"})
	require.NoError(t, err)
	resp, body = ta.do(t, http.MethodPost, "/api/auth/sync", token2, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "bob@new.example.com", body["email"])
	assert.Equal(t, "Bobby", body["display_name"])

	var count int64
	require.NoError(t, ta.db.Model(&models.User{}).Where("auth_uid = ?", "ext-1").Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestTeamLifecycle(t *testing.T) {
	ta := newTestApp(t)
	adminToken := ta.register(t, "admin@example.com", "Admin")
	memberToken := ta.register(t, "member@example.com", "Member")

	resp, team := ta.do(t, http.MethodPost, "/api/teams/", adminToken, fiber.Map{
		"name":          "Night Owls",
		"hackathonName": "SIH 2026",
		"memberSize":    2,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	teamID := int(team["id"].(float64))
	inviteCode := team["invite_code"].(string)
	require.NotEmpty(t, inviteCode)

	// Second user joins via the invite code.
	resp, _ = ta.do(t, http.MethodPost, "/api/teams/join/"+inviteCode, memberToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Same user joining twice is rejected.
	resp, body := ta.do(t, http.MethodPost, "/api/teams/join/"+inviteCode, memberToken, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Already a member of this team", body["message"])

	// A third user hits the capacity limit.
	thirdToken := ta.register(t, "third@example.com", "Third")
	resp, body = ta.do(t, http.MethodPost, "/api/teams/join/"+inviteCode, thirdToken, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Team is already full", body["message"])

	// Unknown codes are a 404.
	resp, body = ta.do(t, http.MethodPost, "/api/teams/join/XXXX0000", thirdToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Invalid invite code", body["message"])

	// Both members see the team; the outsider does not.
	resp, teamBody := ta.do(t, http.MethodGet, fmt.Sprintf("/api/teams/%d", teamID), memberToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Night Owls", teamBody["name"])
	resp, _ = ta.do(t, http.MethodGet, fmt.Sprintf("/api/teams/%d", teamID), thirdToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// Admin-only update, denied for the plain member.
	resp, _ = ta.do(t, http.MethodPatch, fmt.Sprintf("/api/teams/%d", teamID), memberToken, fiber.Map{"name": "Renamed"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp, teamBody = ta.do(t, http.MethodPatch, fmt.Sprintf("/api/teams/%d", teamID), adminToken, fiber.Map{"name": "Renamed"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Renamed", teamBody["name"])
}

func TestTemplateAndChecklistFlow(t *testing.T) {
	ta := newTestApp(t)
	adminToken := ta.register(t, "admin@example.com", "Admin")

	_, team := ta.do(t, http.MethodPost, "/api/teams/", adminToken, fiber.Map{"name": "Templated"})
	teamID := int(team["id"].(float64))

	resp, body := ta.do(t, http.MethodPost, fmt.Sprintf("/api/teams/%d/template", teamID), adminToken, fiber.Map{
		"templateName": "SIH",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body["message"], "applied successfully")

	teamBody := body["team"].(map[string]interface{})
	checklist := teamBody["checklist"].([]interface{})
	assert.NotEmpty(t, checklist)

	resp, body = ta.do(t, http.MethodPost, fmt.Sprintf("/api/teams/%d/template", teamID), adminToken, fiber.Map{
		"templateName": "No Such Template",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid template name", body["message"])

	// Custom checklist item plus toggle.
	resp, teamBody = ta.do(t, http.MethodPost, fmt.Sprintf("/api/teams/%d/checklist", teamID), adminToken, fiber.Map{
		"title": "Book travel",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	items := teamBody["checklist"].([]interface{})
	last := items[len(items)-1].(map[string]interface{})
	itemID := int(last["id"].(float64))

	resp, _ = ta.do(t, http.MethodPatch, fmt.Sprintf("/api/teams/%d/checklist/%d", teamID, itemID), adminToken, fiber.Map{
		"completed": true,
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var item models.ChecklistItem
	require.NoError(t, ta.db.First(&item, itemID).Error)
	assert.True(t, item.Completed)
}

func TestTaskEndpoints(t *testing.T) {
	ta := newTestApp(t)
	adminToken := ta.register(t, "admin@example.com", "Admin")
	memberToken := ta.register(t, "member@example.com", "Member")

	_, team := ta.do(t, http.MethodPost, "/api/teams/", adminToken, fiber.Map{"name": "Board"})
	teamID := int(team["id"].(float64))
	inviteCode := team["invite_code"].(string)
	resp, _ := ta.do(t, http.MethodPost, "/api/teams/join/"+inviteCode, memberToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, task := ta.do(t, http.MethodPost, fmt.Sprintf("/api/tasks/%d", teamID), memberToken, fiber.Map{
		"title":    "Build landing page",
		"priority": "High",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "To-Do", task["status"])
	taskID := int(task["id"].(float64))

	resp, task = ta.do(t, http.MethodPatch, fmt.Sprintf("/api/tasks/%d/%d", teamID, taskID), memberToken, fiber.Map{
		"status": "In-Progress",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "In-Progress", task["status"])

	resp, body := ta.do(t, http.MethodPatch, fmt.Sprintf("/api/tasks/%d/%d", teamID, taskID), memberToken, fiber.Map{
		"status": "Done",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body["message"], "Invalid task status")

	// Delete is admin only.
	resp, _ = ta.do(t, http.MethodDelete, fmt.Sprintf("/api/tasks/%d/%d", teamID, taskID), memberToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp, body = ta.do(t, http.MethodDelete, fmt.Sprintf("/api/tasks/%d/%d", teamID, taskID), adminToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Task removed", body["message"])
}

func TestMemberRoleManagement(t *testing.T) {
	ta := newTestApp(t)
	adminToken := ta.register(t, "admin@example.com", "Admin")
	memberToken := ta.register(t, "member@example.com", "Member")

	_, team := ta.do(t, http.MethodPost, "/api/teams/", adminToken, fiber.Map{"name": "Roles"})
	teamID := int(team["id"].(float64))
	inviteCode := team["invite_code"].(string)
	ta.do(t, http.MethodPost, "/api/teams/join/"+inviteCode, memberToken, nil)

	var member models.User
	require.NoError(t, ta.db.Where("email = ?", "member@example.com").First(&member).Error)

	resp, body := ta.do(t, http.MethodPatch,
		fmt.Sprintf("/api/teams/%d/members/%d", teamID, member.ID), adminToken, fiber.Map{"role": "Admin"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	_ = body

	resp, body = ta.do(t, http.MethodPatch,
		fmt.Sprintf("/api/teams/%d/members/%d", teamID, member.ID), adminToken, fiber.Map{"role": "owner"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid role", body["message"])

	resp, body = ta.do(t, http.MethodDelete,
		fmt.Sprintf("/api/teams/%d/members/%d", teamID, member.ID), adminToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	_ = body
}

func TestAIChat(t *testing.T) {
	ta := newTestApp(t)
	token := ta.register(t, "alice@example.com", "Alice")

	_, team := ta.do(t, http.MethodPost, "/api/teams/", token, fiber.Map{"name": "AI Team"})
	teamID := int(team["id"].(float64))

	resp, body := ta.do(t, http.MethodPost, fmt.Sprintf("/api/ai/chat/%d", teamID), token, fiber.Map{
		"prompt": "An app for farmers",
		"type":   "refine_problem",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Here is a refined statement.", body["response"])

	resp, body = ta.do(t, http.MethodPost, fmt.Sprintf("/api/ai/chat/%d", teamID), token, fiber.Map{
		"prompt": "",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Prompt is required", body["message"])
}

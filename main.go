// main.go
package main

import (
	"log"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	"github.com/Prem30-jr/Hack-Tracker/database"
	"github.com/Prem30-jr/Hack-Tracker/handlers"
	"github.com/Prem30-jr/Hack-Tracker/middleware"
	"github.com/Prem30-jr/Hack-Tracker/models"
	"github.com/Prem30-jr/Hack-Tracker/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	validateEnvironment()

	db, err := database.Connect()
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.Close(db)

	tokens := services.NewJWTTokenService(os.Getenv("JWT_SECRET"), 7*24*time.Hour)
	eventBus := services.NewTeamEventBus()
	teamService := services.NewTeamService(db)
	taskService := services.NewTaskService(db)
	aiService := services.NewAIService(services.NewGeminiClient(os.Getenv("GEMINI_API_KEY")), 30*time.Second)
	githubService := services.NewGitHubService(db, services.GitHubConfig{
		ClientID:     os.Getenv("GITHUB_CLIENT_ID"),
		ClientSecret: os.Getenv("GITHUB_CLIENT_SECRET"),
		CallbackURL:  os.Getenv("GITHUB_CALLBACK_URL"),
	})

	authHandler := handlers.NewAuthHandler(db, tokens)
	teamHandler := handlers.NewTeamHandler(teamService, eventBus)
	taskHandler := handlers.NewTaskHandler(taskService, eventBus)
	aiHandler := handlers.NewAIHandler(aiService)
	githubHandler := handlers.NewGitHubHandler(githubService, os.Getenv("FRONTEND_URL"))
	eventsHandler := handlers.NewEventsHandler(eventBus)

	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
		BodyLimit:    4 * 1024 * 1024, // 4MB
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	})

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${method} ${path} (${latency})\n",
	}))

	corsOrigins := os.Getenv("CORS_ORIGINS")
	if corsOrigins == "" {
		corsOrigins = "http://localhost:5173"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     corsOrigins,
		AllowMethods:     "GET,POST,PATCH,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
	}))

	app.Use(middleware.RateLimit())

	protect := middleware.Protect(tokens, db)
	memberOnly := middleware.RequireTeamRole(db, models.TeamRoleAdmin, models.TeamRoleMember)
	adminOnly := middleware.RequireTeamRole(db, models.TeamRoleAdmin)

	api := app.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.AuthRateLimit())
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

	aiGroup := api.Group("/ai")
	aiGroup.Post("/chat/:teamId", protect, memberOnly, aiHandler.Chat)

	githubGroup := api.Group("/github")
	githubGroup.Get("/callback", githubHandler.Callback)
	githubGroup.Get("/auth/:teamId", protect, memberOnly, githubHandler.AuthRedirect)
	githubGroup.Post("/connect-repo/:teamId", protect, adminOnly, githubHandler.ConnectRepo)
	githubGroup.Get("/stats/:teamId", protect, memberOnly, githubHandler.Stats)

	app.Get("/ws/teams/:teamId", eventsHandler.Upgrade, protect, memberOnly, eventsHandler.Stream())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":    "healthy",
			"timestamp": time.Now().Unix(),
		})
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}

	log.Printf("HTTP server starting on port %s", port)
	log.Printf("Environment: %s", getEnv("APP_ENV", "development"))

	if err := app.Listen(":" + port); err != nil {
		log.Fatal("Failed to start HTTP server:", err)
	}
}

// validateEnvironment checks for required environment variables
func validateEnvironment() {
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("FATAL: JWT_SECRET environment variable must be set. Generate one with: openssl rand -base64 64")
	}
	if len(jwtSecret) < 32 {
		log.Fatal("FATAL: JWT_SECRET must be at least 32 characters long")
	}

	if os.Getenv("APP_ENV") == "production" {
		if os.Getenv("GEMINI_API_KEY") == "" {
			log.Println("WARNING: GEMINI_API_KEY not set, AI assistance will fail")
		}
		if os.Getenv("GITHUB_CLIENT_ID") == "" || os.Getenv("GITHUB_CLIENT_SECRET") == "" {
			log.Println("WARNING: GitHub OAuth credentials not configured")
		}
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	if os.Getenv("APP_ENV") == "production" && code == 500 {
		message = "An error occurred. Please try again later."
	}

	return c.Status(code).JSON(fiber.Map{"message": message})
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

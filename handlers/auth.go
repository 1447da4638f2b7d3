// handlers/auth.go - Identity sync and local credential endpoints
package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/Prem30-jr/Hack-Tracker/apperr"
	"github.com/Prem30-jr/Hack-Tracker/middleware"
	"github.com/Prem30-jr/Hack-Tracker/models"
	"github.com/Prem30-jr/Hack-Tracker/services"
	"github.com/Prem30-jr/Hack-Tracker/utils"
)

type AuthHandler struct {
	db     *gorm.DB
	tokens *services.JWTTokenService
}

func NewAuthHandler(db *gorm.DB, tokens *services.JWTTokenService) *AuthHandler {
	return &AuthHandler{db: db, tokens: tokens}
}

// Sync upserts the local profile for the verified identity. First call
// creates the user; later calls refresh email, name and avatar.
// POST /api/auth/sync
func (h *AuthHandler) Sync(c *fiber.Ctx) error {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		return utils.Error(c, apperr.Unauthenticated("Not authorized, no token"))
	}

	var user models.User
	err := h.db.Where("auth_uid = ?", identity.UID).First(&user).Error
	switch {
	case err == nil:
		user.Email = identity.Email
		if identity.Name != "" {
			user.DisplayName = identity.Name
		}
		if identity.Picture != "" {
			user.PhotoURL = identity.Picture
		}
		if err := h.db.Save(&user).Error; err != nil {
			return utils.Error(c, apperr.Internal(err))
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		user = models.User{
			AuthUID:     identity.UID,
			Email:       identity.Email,
			DisplayName: identity.Name,
			PhotoURL:    identity.Picture,
		}
		if err := h.db.Create(&user).Error; err != nil {
			return utils.Error(c, apperr.Internal(err))
		}
	default:
		return utils.Error(c, apperr.Internal(err))
	}

	return c.Status(fiber.StatusOK).JSON(user)
}

// Me returns the synced profile of the caller.
// GET /api/auth/me
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return utils.Error(c, apperr.NotFound("User profile not found in database. Please sync."))
	}
	return c.JSON(user)
}

type registerRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

type authResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Register creates a local credential account and issues a token. This
// is the self-hosted alternative to an external identity provider.
// POST /api/auth/register
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, apperr.Validation("Invalid request body"))
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || len(req.Password) < 8 {
		return utils.Error(c, apperr.Validation("Email and a password of at least 8 characters are required"))
	}

	var count int64
	if err := h.db.Model(&models.User{}).Where("email = ?", req.Email).Count(&count).Error; err != nil {
		return utils.Error(c, apperr.Internal(err))
	}
	if count > 0 {
		return utils.Error(c, apperr.Conflict("An account with this email already exists"))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return utils.Error(c, apperr.Internal(err))
	}

	hashStr := string(hash)
	user := models.User{
		AuthUID:      "local:" + uuid.NewString(),
		Email:        req.Email,
		DisplayName:  req.DisplayName,
		PasswordHash: &hashStr,
	}
	if err := h.db.Create(&user).Error; err != nil {
		return utils.Error(c, apperr.Internal(err))
	}

	token, err := h.tokens.Issue(services.Identity{
		UID:   user.AuthUID,
		Email: user.Email,
		Name:  user.DisplayName,
	})
	if err != nil {
		return utils.Error(c, apperr.Internal(err))
	}
	return c.Status(fiber.StatusCreated).JSON(authResponse{Token: token, User: &user})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login verifies local credentials and issues a token.
// POST /api/auth/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, apperr.Validation("Invalid request body"))
	}

	var user models.User
	err := h.db.Where("email = ?", strings.TrimSpace(strings.ToLower(req.Email))).First(&user).Error
	if err != nil || user.PasswordHash == nil {
		return utils.Error(c, apperr.Unauthenticated("Invalid email or password"))
	}
	if bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(req.Password)) != nil {
		return utils.Error(c, apperr.Unauthenticated("Invalid email or password"))
	}

	token, err := h.tokens.Issue(services.Identity{
		UID:     user.AuthUID,
		Email:   user.Email,
		Name:    user.DisplayName,
		Picture: user.PhotoURL,
	})
	if err != nil {
		return utils.Error(c, apperr.Internal(err))
	}
	return c.JSON(authResponse{Token: token, User: &user})
}

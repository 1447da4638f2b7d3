// middleware/auth.go - Bearer token verification and user resolution
package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/Prem30-jr/Hack-Tracker/models"
	"github.com/Prem30-jr/Hack-Tracker/services"
)

const (
	localsIdentity = "identity"
	localsUser     = "user"
	localsTeam     = "team"
	localsRole     = "memberRole"
)

// Protect verifies the bearer token and resolves the synced local user.
// The local user may not exist yet (sync happens via /api/auth/sync);
// team-scoped routes reject that case, /api/auth/sync itself does not.
func Protect(verifier services.TokenVerifier, db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Not authorized, no token"})
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Not authorized, no token"})
		}

		identity, err := verifier.Verify(c.UserContext(), parts[1])
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Not authorized, token failed"})
		}

		var user models.User
		switch err := db.Where("auth_uid = ?", identity.UID).First(&user).Error; {
		case err == nil:
			c.Locals(localsUser, &user)
		case errors.Is(err, gorm.ErrRecordNotFound):
			// Verified identity without a synced profile.
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server Error"})
		}

		c.Locals(localsIdentity, identity)
		return c.Next()
	}
}

// CurrentIdentity returns the verified identity set by Protect.
func CurrentIdentity(c *fiber.Ctx) (*services.Identity, bool) {
	id, ok := c.Locals(localsIdentity).(*services.Identity)
	return id, ok
}

// CurrentUser returns the synced local user, or nil when the identity
// has not completed the profile sync.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(localsUser).(*models.User)
	return user
}

// CurrentTeam returns the team resolved by RequireTeamRole.
func CurrentTeam(c *fiber.Ctx) *models.Team {
	team, _ := c.Locals(localsTeam).(*models.Team)
	return team
}

// CurrentRole returns the caller's role in the resolved team.
func CurrentRole(c *fiber.Ctx) models.TeamRole {
	role, _ := c.Locals(localsRole).(models.TeamRole)
	return role
}

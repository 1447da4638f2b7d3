// middleware/teamauth.go - Team membership and role gate
package middleware

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/Prem30-jr/Hack-Tracker/models"
)

// RequireTeamRole gates a team-scoped route: the team named by the
// :teamId param must exist, the caller must have a synced profile, be
// a member, and hold one of the allowed roles. On success the team and
// the caller's role are stored on the request for downstream handlers.
func RequireTeamRole(db *gorm.DB, roles ...models.TeamRole) fiber.Handler {
	return func(c *fiber.Ctx) error {
		teamID, err := strconv.ParseUint(c.Params("teamId"), 10, 32)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid team ID"})
		}

		var team models.Team
		if err := db.Where("id = ?", teamID).Preload("Members").First(&team).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Team not found"})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server Error during team authorization"})
		}

		user := CurrentUser(c)
		if user == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "User profile not synced. Please link your account first."})
		}

		var member *models.TeamMember
		for i := range team.Members {
			if team.Members[i].UserID == user.ID {
				member = &team.Members[i]
				break
			}
		}
		if member == nil {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "Access denied. Not a team member."})
		}

		allowed := false
		for _, role := range roles {
			if member.Role == role {
				allowed = true
				break
			}
		}
		if !allowed {
			names := make([]string, len(roles))
			for i, role := range roles {
				names[i] = string(role)
			}
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"message": "Access denied. Requires one of these roles: " + strings.Join(names, ", "),
			})
		}

		c.Locals(localsTeam, &team)
		c.Locals(localsRole, member.Role)
		return c.Next()
	}
}

package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/visioneers/marketplace-api/internal/dto"
	"github.com/visioneers/marketplace-api/internal/models"
	"gorm.io/gorm"
)

// RequireRole gates a route to the given roles. Admins always pass. The role
// claim is checked first; the DB record is the fallback so role changes take
// effect without re-issuing tokens.
func RequireRole(db *gorm.DB, roles ...string) fiber.Handler {
	allowed := make(map[string]bool, len(roles)+1)
	for _, r := range roles {
		allowed[r] = true
	}
	allowed[models.RoleAdmin] = true

	return func(c *fiber.Ctx) error {
		userID, err := UserID(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Unauthorized",
			})
		}

		if allowed[UserRole(c)] {
			return c.Next()
		}

		var user models.User
		if err := db.First(&user, "id = ?", userID).Error; err == nil && allowed[user.Role] {
			return c.Next()
		}

		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Error: true, Message: "Insufficient permissions",
		})
	}
}

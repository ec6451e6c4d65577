package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/ahmetcoskunkizilkaya/resumeai-backend/internal/authctx"
	"github.com/ahmetcoskunkizilkaya/resumeai-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/resumeai-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/resumeai-backend/internal/models"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// AdminRequired lets a request through when any of these holds:
// 1. X-Admin-Token matches ADMIN_TOKEN
// 2. the JWT email or subject is listed in ADMIN_EMAILS / ADMIN_USER_IDS
// 3. the user row has the admin role
func AdminRequired(db *gorm.DB, cfg *config.Config) fiber.Handler {
	adminEmails := parseCSV(cfg.AdminEmails)
	adminUserIDs := parseCSV(cfg.AdminUserIDs)

	return func(c *fiber.Ctx) error {
		if validAdminToken(cfg.AdminToken, c.Get("X-Admin-Token")) {
			return c.Next()
		}

		userID, err := authctx.UserID(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Unauthorized", Code: "UNAUTHENTICATED",
			})
		}

		if contains(adminEmails, strings.ToLower(authctx.Email(c))) || contains(adminUserIDs, userID.String()) {
			return c.Next()
		}

		var user models.User
		if err := db.WithContext(c.UserContext()).First(&user, "id = ?", userID).Error; err == nil && user.Role == models.RoleAdmin {
			return c.Next()
		}

		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Error: true, Message: "Admin access required", Code: "FORBIDDEN",
		})
	}
}

func parseCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.ToLower(strings.TrimSpace(p))
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func contains(list []string, val string) bool {
	for _, item := range list {
		if item == val {
			return true
		}
	}
	return false
}

func validAdminToken(want, got string) bool {
	if want == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(want), []byte(got)) == 1
}

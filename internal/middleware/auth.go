package middleware

import (
	"net/url"
	"strings"

	"github.com/collabtrack/server/internal/models"
	"github.com/collabtrack/server/pkg/logger"
	"github.com/collabtrack/server/pkg/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"gorm.io/gorm"
)

const currentUserKey = "currentUser"

type AuthMiddleware struct {
	DB          *gorm.DB
	CookieName  string
	FrontendURL string
}

func NewAuthMiddleware(db *gorm.DB, cookieName, frontendURL string) *AuthMiddleware {
	return &AuthMiddleware{DB: db, CookieName: cookieName, FrontendURL: frontendURL}
}

func CORS(frontendURL string) fiber.Handler {
	origins := frontendURL
	if strings.Contains(frontendURL, "localhost") {
		loopback := strings.Replace(frontendURL, "localhost", "127.0.0.1", 1)
		origins = frontendURL + "," + loopback
	}
	return cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowCredentials: true,
	})
}

// RequireAuth accepts the session cookie or a bearer token carrying the same
// signed session.
func (a *AuthMiddleware) RequireAuth(c *fiber.Ctx) error {
	tokenString := a.sessionToken(c)
	if tokenString == "" {
		logger.Warn("auth_missing_session", map[string]interface{}{
			"ip":   c.IP(),
			"path": c.Path(),
		})
		return a.unauthenticated(c, "authentication required")
	}

	claims, err := utils.ValidateSessionToken(tokenString)
	if err != nil {
		logger.Warn("auth_session_invalid", map[string]interface{}{
			"ip":    c.IP(),
			"path":  c.Path(),
			"error": err.Error(),
		})
		return a.unauthenticated(c, "invalid or expired session")
	}

	var user models.User
	if err := a.DB.WithContext(c.UserContext()).First(&user, "id = ?", claims.UserID).Error; err != nil {
		logger.Warn("auth_user_not_found", map[string]interface{}{
			"ip":      c.IP(),
			"path":    c.Path(),
			"user_id": claims.UserID,
		})
		return a.unauthenticated(c, "user not found")
	}

	c.Locals(logger.UserIDKey, user.ID)

	if user.IsLocked {
		return utils.Error(c, fiber.StatusForbidden, "account is locked")
	}

	c.Locals(currentUserKey, &user)
	return c.Next()
}

func (a *AuthMiddleware) sessionToken(c *fiber.Ctx) string {
	if cookie := strings.TrimSpace(c.Cookies(a.CookieName)); cookie != "" {
		return cookie
	}
	authHeader := c.Get("Authorization")
	tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer"))
	if tokenString == authHeader {
		return ""
	}
	return tokenString
}

// unauthenticated answers API clients with 401 and sends browser navigations
// to the login page with a marker and the page they asked for.
func (a *AuthMiddleware) unauthenticated(c *fiber.Ctx, message string) error {
	if wantsHTML(c) && a.FrontendURL != "" {
		target := a.FrontendURL + "/login?unauthenticated=1&redirect=" + url.QueryEscape(c.OriginalURL())
		return c.Redirect(target, fiber.StatusFound)
	}
	return utils.Error(c, fiber.StatusUnauthorized, message)
}

func wantsHTML(c *fiber.Ctx) bool {
	return strings.Contains(c.Get(fiber.HeaderAccept), fiber.MIMETextHTML)
}

func requireRole(allowed func(models.UserRole) bool, message string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := GetCurrentUser(c)
		if user == nil {
			return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
		}
		if !allowed(user.Role) {
			return utils.Error(c, fiber.StatusForbidden, message)
		}
		return c.Next()
	}
}

var (
	RequireEdit   = requireRole(models.UserRole.CanEdit, "your role cannot modify records")
	RequireDelete = requireRole(models.UserRole.CanDelete, "your role cannot delete records")
	AdminOnly     = requireRole(models.UserRole.CanManageUsers, "admin access required")
)

// WriteGuard lets reads through and applies RequireEdit or RequireDelete to
// the matching methods, so one group can carry both.
func WriteGuard(c *fiber.Ctx) error {
	switch c.Method() {
	case fiber.MethodGet, fiber.MethodHead, fiber.MethodOptions:
		return c.Next()
	case fiber.MethodDelete:
		return RequireDelete(c)
	default:
		return RequireEdit(c)
	}
}

func GetCurrentUser(c *fiber.Ctx) *models.User {
	value := c.Locals(currentUserKey)
	if value == nil {
		return nil
	}
	user, ok := value.(*models.User)
	if !ok {
		return nil
	}
	return user
}

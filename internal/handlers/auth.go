package handlers

import (
	"net/url"
	"strings"
	"time"

	"github.com/collabtrack/server/internal/config"
	"github.com/collabtrack/server/internal/middleware"
	"github.com/collabtrack/server/internal/models"
	"github.com/collabtrack/server/internal/services"
	"github.com/collabtrack/server/pkg/logger"
	"github.com/collabtrack/server/pkg/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	stateCookieName    = "collabtrack_oauth_state"
	redirectCookieName = "collabtrack_login_redirect"
	stateTTL           = 10 * time.Minute
)

type AuthHandler struct {
	Cfg      *config.Config
	Provider services.IdentityProvider
	Gate     *services.AuthGate
}

func NewAuthHandler(cfg *config.Config, provider services.IdentityProvider, gate *services.AuthGate) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Provider: provider, Gate: gate}
}

func (h *AuthHandler) setCookie(c *fiber.Ctx, name, value string, ttl time.Duration) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  time.Now().Add(ttl),
		Secure:   h.Cfg.Session.CookieSecure,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func (h *AuthHandler) clearCookie(c *fiber.Ctx, name string) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		Secure:   h.Cfg.Session.CookieSecure,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// safeRedirect accepts only paths on the frontend itself.
func safeRedirect(target string) string {
	target = strings.TrimSpace(target)
	if !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.Contains(target, "\\") {
		return ""
	}
	return target
}

func (h *AuthHandler) loginError(c *fiber.Ctx, message string) error {
	return c.Redirect(h.Cfg.Server.FrontendURL + "/login?error=" + url.QueryEscape(message))
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	if h.Provider == nil {
		return utils.Error(c, fiber.StatusServiceUnavailable, "single sign-on is not configured")
	}

	state := uuid.NewString()
	h.setCookie(c, stateCookieName, state, stateTTL)
	if redirect := safeRedirect(c.Query("redirect")); redirect != "" {
		h.setCookie(c, redirectCookieName, redirect, stateTTL)
	}

	return c.Redirect(h.Provider.AuthCodeURL(state))
}

func (h *AuthHandler) Callback(c *fiber.Ctx) error {
	if h.Provider == nil {
		return utils.Error(c, fiber.StatusServiceUnavailable, "single sign-on is not configured")
	}

	expected := c.Cookies(stateCookieName)
	h.clearCookie(c, stateCookieName)
	if expected == "" || c.Query("state") != expected {
		logger.Warn("login_state_mismatch", map[string]interface{}{
			"ip": c.IP(),
		})
		return h.loginError(c, "invalid login state, please try again")
	}

	if providerErr := c.Query("error"); providerErr != "" {
		return h.loginError(c, providerErr)
	}

	code := c.Query("code")
	if code == "" {
		return h.loginError(c, "authorization code is required")
	}

	identity, err := h.Provider.Exchange(c.UserContext(), code)
	if err != nil {
		return h.loginError(c, err.Error())
	}

	decision, err := h.Gate.Authorize(c.UserContext(), *identity)
	if err != nil || !decision.Authorized {
		return h.loginError(c, decision.Message)
	}

	token, err := utils.GenerateSessionToken(decision.User)
	if err != nil {
		logger.ErrorWithUser(decision.User.ID, "session_token_failed", err, nil)
		return h.loginError(c, "failed to start session")
	}
	h.setCookie(c, h.Cfg.Session.CookieName, token, utils.SessionTTL())

	target := "/"
	if redirect := safeRedirect(c.Cookies(redirectCookieName)); redirect != "" {
		target = redirect
	}
	h.clearCookie(c, redirectCookieName)

	return c.Redirect(h.Cfg.Server.FrontendURL + target)
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	h.clearCookie(c, h.Cfg.Session.CookieName)
	return utils.Success(c, fiber.StatusOK, fiber.Map{"message": "logged out"})
}

type permissions struct {
	CanEdit        bool `json:"canEdit"`
	CanDelete      bool `json:"canDelete"`
	CanManageUsers bool `json:"canManageUsers"`
}

type meResponse struct {
	User        *models.User `json:"user"`
	Permissions permissions  `json:"permissions"`
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	user := middleware.GetCurrentUser(c)
	if user == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "authentication required")
	}
	return utils.Success(c, fiber.StatusOK, meResponse{
		User: user,
		Permissions: permissions{
			CanEdit:        user.Role.CanEdit(),
			CanDelete:      user.Role.CanDelete(),
			CanManageUsers: user.Role.CanManageUsers(),
		},
	})
}

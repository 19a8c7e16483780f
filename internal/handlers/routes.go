package handlers

import (
	"github.com/collabtrack/server/internal/config"
	"github.com/collabtrack/server/internal/middleware"
	"github.com/collabtrack/server/internal/preferences"
	"github.com/collabtrack/server/internal/services"
	"github.com/collabtrack/server/pkg/utils"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Dependencies carries what the route handlers are built from.
type Dependencies struct {
	DB          *gorm.DB
	Config      *config.Config
	Preferences *preferences.Store
	Money       *utils.MoneyFormatter
	// Provider is nil when single sign-on is not configured.
	Provider services.IdentityProvider
	Gate     *services.AuthGate
}

func RegisterRoutes(app *fiber.App, deps Dependencies) {
	authMiddleware := middleware.NewAuthMiddleware(deps.DB, deps.Config.Session.CookieName, deps.Config.Server.FrontendURL)

	authHandler := NewAuthHandler(deps.Config, deps.Provider, deps.Gate)
	companiesHandler := NewCompaniesHandler(deps.DB)
	contactsHandler := NewContactsHandler(deps.DB)
	peopleHandler := NewPeopleHandler(deps.DB)
	projectsHandler := NewProjectsHandler(deps.DB, deps.Money)
	collaborationsHandler := NewCollaborationsHandler(deps.DB)
	usersHandler := NewUsersHandler(deps.DB)
	preferencesHandler := NewPreferencesHandler(deps.Preferences)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api")
	api.Get("/version", GetVersion)

	authRoutes := api.Group("/auth")
	authRoutes.Get("/login", authHandler.Login)
	authRoutes.Get("/callback", authHandler.Callback)
	authRoutes.Post("/logout", authHandler.Logout)
	authRoutes.Get("/me", authMiddleware.RequireAuth, authHandler.Me)

	companyRoutes := api.Group("/companies", authMiddleware.RequireAuth, middleware.WriteGuard)
	companyRoutes.Get("/", companiesHandler.List)
	companyRoutes.Post("/", companiesHandler.Create)
	companyRoutes.Get("/:id", companiesHandler.Get)
	companyRoutes.Put("/:id", companiesHandler.Update)
	companyRoutes.Delete("/:id", companiesHandler.Delete)
	companyRoutes.Get("/:id/contacts", companiesHandler.Contacts)
	companyRoutes.Get("/:id/people", companiesHandler.People)
	companyRoutes.Get("/:id/collaborations", companiesHandler.Collaborations)

	for prefix, handler := range map[string]*ContactsHandler{"/contacts": contactsHandler, "/people": peopleHandler} {
		routes := api.Group(prefix, authMiddleware.RequireAuth, middleware.WriteGuard)
		routes.Get("/", handler.List)
		routes.Post("/", handler.Create)
		routes.Get("/:id", handler.Get)
		routes.Put("/:id", handler.Update)
		routes.Delete("/:id", handler.Delete)
	}

	projectRoutes := api.Group("/projects", authMiddleware.RequireAuth, middleware.WriteGuard)
	projectRoutes.Get("/", projectsHandler.List)
	projectRoutes.Post("/", projectsHandler.Create)
	projectRoutes.Get("/:id", projectsHandler.Get)
	projectRoutes.Put("/:id", projectsHandler.Update)
	projectRoutes.Delete("/:id", projectsHandler.Delete)
	projectRoutes.Get("/:id/collaborations", projectsHandler.Collaborations)
	projectRoutes.Get("/:id/summary", projectsHandler.Summary)

	collaborationRoutes := api.Group("/collaborations", authMiddleware.RequireAuth, middleware.WriteGuard)
	collaborationRoutes.Get("/", collaborationsHandler.List)
	collaborationRoutes.Post("/", collaborationsHandler.Create)
	collaborationRoutes.Get("/:id", collaborationsHandler.Get)
	collaborationRoutes.Put("/:id", collaborationsHandler.Update)
	collaborationRoutes.Delete("/:id", collaborationsHandler.Delete)

	// Preferences belong to the caller, so read-only roles may change them.
	preferenceRoutes := api.Group("/preferences", authMiddleware.RequireAuth)
	preferenceRoutes.Get("/:table", preferencesHandler.Get)
	preferenceRoutes.Put("/:table", preferencesHandler.Put)
	preferenceRoutes.Post("/:table/sort", preferencesHandler.ToggleSort)
	preferenceRoutes.Delete("/:table", preferencesHandler.Reset)

	userRoutes := api.Group("/users", authMiddleware.RequireAuth, middleware.AdminOnly)
	userRoutes.Get("/", usersHandler.List)
	userRoutes.Post("/", usersHandler.Create)
	userRoutes.Get("/:id", usersHandler.Get)
	userRoutes.Put("/:id", usersHandler.Update)
	userRoutes.Delete("/:id", usersHandler.Delete)
}

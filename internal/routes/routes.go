// Package routes assembles the HTTP application.
package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/localnerve/brokerdb/internal/auth"
	"github.com/localnerve/brokerdb/internal/config"
	"github.com/localnerve/brokerdb/internal/handlers"
	"github.com/localnerve/brokerdb/internal/middleware"
	"github.com/localnerve/brokerdb/internal/policy"
	"github.com/localnerve/brokerdb/internal/storage"
	"github.com/localnerve/brokerdb/internal/utils"
	"gorm.io/gorm"
)

// Deps are the collaborators every route needs.
type Deps struct {
	Config *config.Config
	DB     *gorm.DB
	Store  storage.Store
	Issuer *auth.Issuer
}

// NewApp creates the Fiber application with the global middleware and
// error handler, without routes.
func NewApp(cfg *config.Config) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler:          handlers.ErrorHandler,
		BodyLimit:             cfg.MaxUploadMB * 1024 * 1024,
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(cors.New())
	app.Use(compress.New())
	return app
}

// Setup registers every route of the service on app.
func Setup(app *fiber.App, d Deps) {
	// Uploaded files
	app.Static("/media", d.Config.MediaRoot)

	api := app.Group("/api")
	api.Use(middleware.VersionMiddleware())

	health := &handlers.HealthHandler{Config: d.Config, DB: d.DB, Store: d.Store}
	api.Get("/health", health.Health)

	authed := api.Group("", middleware.Auth(d.DB, d.Issuer))
	gate := middleware.RequireAccess

	account := &handlers.AccountHandler{DB: d.DB}
	authed.Get("/accounts/me", gate(policy.Account, policy.Read), account.Me)
	authed.Get("/dashboard", gate(policy.Dashboard, policy.Read), account.Dashboard)

	properties := &handlers.PropertyHandler{DB: d.DB, Store: d.Store}
	authed.Get("/properties", gate(policy.Property, policy.Read), properties.List)
	authed.Post("/properties", gate(policy.Property, policy.Create), properties.Create)
	authed.Get("/properties/:id", gate(policy.Property, policy.Read), properties.Get)
	authed.Patch("/properties/:id", gate(policy.Property, policy.Update), properties.Update)
	authed.Delete("/properties/:id", gate(policy.Property, policy.Delete), properties.Delete)

	clients := &handlers.ClientHandler{DB: d.DB, Store: d.Store}
	authed.Get("/clients", gate(policy.Client, policy.Read), clients.List)
	authed.Post("/clients", gate(policy.Client, policy.Create), clients.Create)
	authed.Get("/clients/:id", gate(policy.Client, policy.Read), clients.Get)
	authed.Patch("/clients/:id", gate(policy.Client, policy.Update), clients.Update)
	authed.Delete("/clients/:id", gate(policy.Client, policy.Delete), clients.Delete)

	contracts := &handlers.ContractHandler{DB: d.DB, Store: d.Store}
	authed.Get("/contracts", gate(policy.Contract, policy.Read), contracts.List)
	authed.Post("/contracts", gate(policy.Contract, policy.Create), contracts.Create)
	authed.Get("/contracts/:id", gate(policy.Contract, policy.Read), contracts.Get)
	authed.Patch("/contracts/:id", gate(policy.Contract, policy.Update), contracts.Update)
	authed.Delete("/contracts/:id", gate(policy.Contract, policy.Delete), contracts.Delete)

	visits := &handlers.VisitHandler{DB: d.DB}
	authed.Get("/visits", gate(policy.Visit, policy.Read), visits.List)
	authed.Post("/visits", gate(policy.Visit, policy.Create), visits.Create)
	authed.Get("/visits/:id", gate(policy.Visit, policy.Read), visits.Get)
	authed.Patch("/visits/:id", gate(policy.Visit, policy.Update), visits.Update)
	authed.Delete("/visits/:id", gate(policy.Visit, policy.Delete), visits.Delete)

	interactions := &handlers.InteractionHandler{DB: d.DB}
	authed.Get("/interactions/favorites", gate(policy.Favorite, policy.Read), interactions.ListFavorites)
	authed.Post("/interactions/favorites/:id/toggle", gate(policy.Favorite, policy.Create), interactions.ToggleFavorite)
	authed.Get("/interactions/contact-forms", gate(policy.ContactForm, policy.Read), interactions.ListContactForms)
	authed.Post("/interactions/contact-forms", gate(policy.ContactForm, policy.Create), interactions.CreateContactForm)
	authed.Get("/interactions/contact-forms/:id", gate(policy.ContactForm, policy.Read), interactions.GetContactForm)
	authed.Delete("/interactions/contact-forms/:id", gate(policy.ContactForm, policy.Delete), interactions.DeleteContactForm)

	// 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return utils.NotFoundResponse(c, "[404] Resource Not Found")
	})
}

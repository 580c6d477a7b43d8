package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"go.uber.org/zap"

	"issueapi/docs"
	"issueapi/internal/attachment"
	"issueapi/internal/http/middleware"
	"issueapi/internal/service"
)

// Deps is everything RegisterRoutes wires into the app.
type Deps struct {
	DB             Pinger
	Checks         []NamedCheck
	Issues         service.IssueService
	Files          *attachment.Store
	JWTSecret      string
	MaxUploadBytes int64
	Log            *zap.Logger
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app. Everything
// under /v1 requires a bearer token.
func RegisterRoutes(app *fiber.App, d Deps) {
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}
		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}
		return swagger.HandlerDefault(c)
	})
	app.Get("/health", HealthCheck(d.DB, d.Checks...))
	app.Get("/healthz", LivenessProbe())

	if d.Files != nil {
		app.Get("/uploads/*", ServeUpload(d.Files, log))
	}

	v1 := app.Group("/v1", middleware.Auth(d.JWTSecret))
	v1.Get("/issues", ListIssues(d.Issues, log))
	v1.Get("/issues/export", ExportIssues(d.Issues, log))
	v1.Get("/issues/categories", ListCategories(d.Issues, log))
	v1.Get("/issues/:id", GetIssue(d.Issues, log))
	v1.Get("/issues/:id/logs", IssueHistory(d.Issues, log))
	v1.Post("/issues", CreateIssue(d.Issues, d.MaxUploadBytes, log))
	v1.Patch("/issues/:id", UpdateIssue(d.Issues, d.MaxUploadBytes, log))
	v1.Delete("/issues/:id", DeleteIssue(d.Issues, log))
}

package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Pinger is a dependency the readiness probe checks. *sql.DB satisfies it;
// other checks are adapted with PingerFunc.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// PingerFunc adapts a function to Pinger.
type PingerFunc func(ctx context.Context) error

func (f PingerFunc) PingContext(ctx context.Context) error { return f(ctx) }

// HealthCheck godoc
// @Summary  Readiness probe
// @Tags     health
// @Produce  json
// @Success  200  {object}  map[string]string
// @Failure  503  {object}  errorPayload
// @Router   /health [get]
func HealthCheck(db Pinger, extra ...NamedCheck) fiber.Handler {
	checks := append([]NamedCheck{{Name: "database", Check: db}}, extra...)
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()

		body := fiber.Map{"status": "healthy"}
		for _, ch := range checks {
			if ch.Check == nil {
				continue
			}
			if err := ch.Check.PingContext(ctx); err != nil {
				return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", ch.Name+" unavailable")
			}
			body[ch.Name] = "ok"
		}
		return c.Status(fiber.StatusOK).JSON(body)
	}
}

// NamedCheck labels a Pinger in the health response.
type NamedCheck struct {
	Name  string
	Check Pinger
}

// LivenessProbe godoc
// @Summary  Liveness probe
// @Tags     health
// @Success  200
// @Router   /healthz [get]
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

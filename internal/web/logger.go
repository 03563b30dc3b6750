package web

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

const requestIDLocal = "requestid"

// RequestLogger logs one line per request and attaches a request scoped logger
// to the user context so services can log through zerolog.Ctx.
func RequestLogger(logger zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		rid, _ := c.Locals(requestIDLocal).(string)

		scoped := logger.With().Str("request_id", rid).Logger()
		c.SetUserContext(scoped.WithContext(c.UserContext()))

		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fiberErr, ok := err.(*fiber.Error); ok {
				status = fiberErr.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		evt := scoped.Info()
		if err != nil {
			evt = scoped.Error().Err(err)
		}
		evt.
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("remote_ip", c.IP()).
			Msg("request")

		return err
	}
}

// Logger returns the request scoped logger, or a disabled one outside a request.
func Logger(c *fiber.Ctx) *zerolog.Logger {
	return zerolog.Ctx(c.UserContext())
}

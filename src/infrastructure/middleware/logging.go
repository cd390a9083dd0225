package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"go-clothing-store/src/infrastructure/log"
)

const CorrelationIDHeader = "X-Correlation-ID"

// RequestLogger tags the request context with a correlation id (taken from
// the X-Correlation-ID header or freshly generated) and logs the request and
// its response. Responses of 400 and above are logged at warn level.
func RequestLogger(logger log.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		correlationID := c.Get(CorrelationIDHeader)
		if correlationID == "" {
			correlationID = uuid.NewString()
		}
		ctx := logger.WithCorrelationID(c.UserContext(), correlationID)
		c.SetUserContext(ctx)
		c.Set(CorrelationIDHeader, correlationID)

		start := time.Now()
		logger.Request(ctx, &log.Field{
			URL:         c.OriginalURL(),
			HostName:    c.Hostname(),
			HTTPMethod:  c.Method(),
			RequestBody: string(c.Body()),
			Message:     "Request received",
		})

		// Resolve the error here so the logged status matches the response.
		if err := c.Next(); err != nil {
			if handlerErr := c.App().Config().ErrorHandler(c, err); handlerErr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		status := c.Response().StatusCode()
		level := log.InfoLevel
		if status >= fiber.StatusBadRequest {
			level = log.WarnLevel
		}
		logger.ResponseWithLevel(ctx, &log.Field{
			URL:            c.OriginalURL(),
			HostName:       c.Hostname(),
			HTTPMethod:     c.Method(),
			HTTPStatusCode: status,
			Duration:       time.Since(start).Milliseconds(),
			ResponseBody:   string(c.Response().Body()),
			Message:        "Response sent",
		}, level)
		return nil
	}
}

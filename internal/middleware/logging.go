package middleware

import (
	"time"

	"github.com/collabtrack/server/pkg/logger"
	"github.com/gofiber/fiber/v2"
)

// requestIDKey matches the local fiber's requestid middleware writes to.
const requestIDKey = "requestid"

func RequestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		requestID, _ := c.Locals(requestIDKey).(string)
		if requestID == "" {
			requestID = logger.GenerateRequestID()
			c.Locals(requestIDKey, requestID)
		}

		err := c.Next()

		statusCode := c.Response().StatusCode()
		if fiberErr, ok := err.(*fiber.Error); ok {
			statusCode = fiberErr.Code
		} else if err != nil {
			statusCode = fiber.StatusInternalServerError
		}

		details := map[string]interface{}{
			"method":        c.Method(),
			"path":          c.Path(),
			"status_code":   statusCode,
			"latency_ms":    time.Since(start).Milliseconds(),
			"user_agent":    c.Get("User-Agent"),
			"ip":            c.IP(),
			"request_body":  logger.GetRequestBodySummary(c),
			"response_body": logger.GetResponseSizeSummary(c),
			"request_id":    requestID,
		}

		userID := logger.GetUserIDFromContext(c)
		switch {
		case statusCode >= 500 && userID != nil:
			logger.ErrorWithUser(*userID, "http_request", err, details)
		case statusCode >= 500:
			logger.Error("http_request", err, details)
		case statusCode >= 400 && userID != nil:
			logger.WarnWithUser(*userID, "http_request", details)
		case statusCode >= 400:
			logger.Warn("http_request", details)
		case userID != nil:
			logger.InfoWithUser(*userID, "http_request", details)
		default:
			logger.Info("http_request", details)
		}

		return err
	}
}

type securityEvent struct {
	reason    string
	anonymous string
}

var securityEvents = map[int]securityEvent{
	fiber.StatusUnauthorized: {reason: "unauthenticated", anonymous: "unauthenticated"},
	fiber.StatusForbidden:    {reason: "access_denied", anonymous: "access_denied_unauthenticated"},
	fiber.StatusNotFound:     {reason: "not_found", anonymous: "not_found_unauthenticated"},
}

func SecurityLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		event, ok := securityEvents[c.Response().StatusCode()]
		if !ok {
			return err
		}

		userID := logger.GetUserIDFromContext(c)
		details := map[string]interface{}{
			"method":  c.Method(),
			"path":    c.Path(),
			"ip":      c.IP(),
			"user_id": userID,
			"reason":  event.reason,
		}

		if userID != nil {
			logger.WarnWithUser(*userID, event.reason, details)
		} else {
			logger.Warn(event.anonymous, details)
		}

		return err
	}
}

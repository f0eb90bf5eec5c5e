package server

import (
	"errors"
	"log/slog"
	"net/http"

	"blogsite/internal/middleware"
	"blogsite/internal/models"

	"github.com/gofiber/fiber/v2"
)

// statusFor maps an error onto the HTTP status it should produce.
func statusFor(err error) int {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		switch appErr.Code {
		case models.CodeNotFound:
			return fiber.StatusNotFound
		case models.CodeForbidden:
			return fiber.StatusForbidden
		case models.CodeUnauthorized, models.CodeInvalidCredentials:
			return fiber.StatusUnauthorized
		case models.CodeValidation, models.CodeDuplicateEmail, models.CodeDuplicateTitle:
			return fiber.StatusUnprocessableEntity
		}
	}
	return fiber.StatusInternalServerError
}

// errorHandler renders every error returned by a handler. Forbidden responses
// carry no detail beyond the status text.
func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	status := statusFor(err)
	if status >= fiber.StatusInternalServerError {
		middleware.Logger.ErrorContext(c.UserContext(), "request error",
			slog.Int("status", status),
			slog.String("path", c.Path()),
			slog.String("error", err.Error()),
		)
	}

	text := http.StatusText(status)
	if status == fiber.StatusForbidden {
		c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
		return c.Status(status).SendString(text)
	}

	if rerr := s.render(c, status, "error", fiber.Map{
		"Title":   text,
		"Status":  status,
		"Message": text,
	}); rerr != nil {
		c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
		return c.Status(status).SendString(text)
	}
	return nil
}

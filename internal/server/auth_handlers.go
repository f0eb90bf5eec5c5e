package server

import (
	"errors"
	"log/slog"

	"blogsite/internal/forms"
	"blogsite/internal/middleware"
	"blogsite/internal/models"
	"blogsite/internal/observability"
	"blogsite/internal/service"
	"blogsite/internal/session"
	"blogsite/internal/web"

	"github.com/gofiber/fiber/v2"
)

// Register shows the registration form and creates an account on submit.
// The new user is logged in straight away.
func (s *Server) Register(c *fiber.Ctx) error {
	form := &forms.RegisterForm{}
	if c.Method() == fiber.MethodPost {
		if err := c.BodyParser(form); err != nil {
			return fiber.ErrBadRequest
		}
	}

	errs, ok := forms.ValidateOnSubmit(c.Method(), form)
	if !ok {
		return s.renderForm(c, "register", "Register", form, errs)
	}

	user, err := s.authService.Register(c.UserContext(), service.RegisterInput{
		Email:    form.Email,
		Password: form.Password,
		Name:     form.Name,
	})
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) && appErr.Code == models.CodeDuplicateEmail {
			web.SetFlash(c, web.FlashInfo, appErr.Message, s.secureCookies())
			return c.Redirect("/login", fiber.StatusFound)
		}
		return err
	}

	if err := s.startSession(c, user); err != nil {
		return err
	}
	middleware.Logger.InfoContext(c.UserContext(), "user registered",
		slog.Uint64("user_id", uint64(user.ID)),
		slog.Bool("is_admin", user.IsAdmin),
	)
	return c.Redirect("/", fiber.StatusFound)
}

// Login authenticates a user. Bad credentials re-render the form with an
// inline notice and no session.
func (s *Server) Login(c *fiber.Ctx) error {
	form := &forms.LoginForm{}
	if c.Method() == fiber.MethodPost {
		if err := c.BodyParser(form); err != nil {
			return fiber.ErrBadRequest
		}
	}

	errs, ok := forms.ValidateOnSubmit(c.Method(), form)
	if !ok {
		return s.renderForm(c, "login", "Log In", form, errs)
	}

	user, err := s.authService.Login(c.UserContext(), service.LoginInput{
		Email:    form.Email,
		Password: form.Password,
	})
	if err != nil {
		if !models.HasCode(err, models.CodeInvalidCredentials) {
			return err
		}
		return s.render(c, fiber.StatusUnauthorized, "login", fiber.Map{
			"Title": "Log In",
			"Form":  form,
			"Flash": &web.Flash{Kind: web.FlashError, Message: models.NewInvalidCredentialsError().Message},
		})
	}

	if err := s.startSession(c, user); err != nil {
		return err
	}
	return c.Redirect("/", fiber.StatusFound)
}

// Logout clears the session cookie and revokes the token when a store is
// configured. It always succeeds.
func (s *Server) Logout(c *fiber.Ctx) error {
	if token := c.Cookies(session.CookieName); token != "" {
		if err := s.sessions.Revoke(c.UserContext(), token); err != nil {
			middleware.Logger.WarnContext(c.UserContext(), "session revocation failed",
				slog.String("error", err.Error()))
		}
		s.metrics.AuthEvent(observability.AuthLogout)
	}
	c.Cookie(web.ExpiredCookie(session.CookieName, s.secureCookies()))
	return c.Redirect("/", fiber.StatusFound)
}

// renderForm renders a form page: 200 on display, 422 when validation failed.
func (s *Server) renderForm(c *fiber.Ctx, page, title string, form forms.Form, errs forms.Errors) error {
	status := fiber.StatusOK
	if len(errs) > 0 {
		status = fiber.StatusUnprocessableEntity
	}
	return s.render(c, status, page, fiber.Map{
		"Title":  title,
		"Form":   form,
		"Errors": errs,
	})
}

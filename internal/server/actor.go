package server

import (
	"errors"
	"log/slog"

	"blogsite/internal/middleware"
	"blogsite/internal/models"
	"blogsite/internal/observability"
	"blogsite/internal/session"
	"blogsite/internal/web"

	"github.com/gofiber/fiber/v2"
)

const actorKey = "actor"

// Actor is the identity making the current request. A nil User is anonymous.
type Actor struct {
	User *models.User
}

// Authenticated reports whether the actor is a logged-in user.
func (a *Actor) Authenticated() bool {
	return a != nil && a.User != nil
}

// Admin reports whether the actor may manage posts.
func (a *Actor) Admin() bool {
	return a.Authenticated() && a.User.IsAdmin
}

// ActorFrom returns the actor resolved by LoadActor, or an anonymous one.
func ActorFrom(c *fiber.Ctx) *Actor {
	if a, ok := c.Locals(actorKey).(*Actor); ok && a != nil {
		return a
	}
	return &Actor{}
}

// LoadActor resolves the session cookie into an Actor once per request. Any
// failure yields an anonymous actor and removes the cookie.
func (s *Server) LoadActor() fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor := &Actor{}
		if token := c.Cookies(session.CookieName); token != "" {
			user, err := s.resolveSession(c, token)
			actor.User = user
			if err != nil && sessionGone(err) {
				c.Cookie(web.ExpiredCookie(session.CookieName, s.secureCookies()))
			}
		}

		c.Locals(actorKey, actor)
		if actor.User != nil {
			c.Locals("userID", actor.User.ID)
			c.SetUserContext(middleware.WithUserID(c.UserContext(), actor.User.ID))
		}
		return c.Next()
	}
}

// resolveSession loads the user behind token. On error the request is
// anonymous; see sessionGone for whether the cookie should be dropped.
func (s *Server) resolveSession(c *fiber.Ctx, token string) (*models.User, error) {
	ctx := c.UserContext()
	claims, err := s.sessions.Parse(ctx, token)
	if err != nil {
		middleware.Logger.DebugContext(ctx, "session rejected", slog.String("error", err.Error()))
		return nil, err
	}
	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		middleware.Logger.DebugContext(ctx, "session user not loaded", slog.String("error", err.Error()))
		return nil, err
	}
	return user, nil
}

// sessionGone reports whether err means the token can never authenticate
// again. Store outages are not, so the cookie survives them.
func sessionGone(err error) bool {
	return errors.Is(err, session.ErrInvalid) ||
		errors.Is(err, session.ErrRevoked) ||
		models.HasCode(err, models.CodeNotFound)
}

// startSession issues a session cookie for user.
func (s *Server) startSession(c *fiber.Ctx, user *models.User) error {
	token, claims, err := s.sessions.Issue(user.ID)
	if err != nil {
		return models.NewInternalError(err)
	}
	c.Cookie(&fiber.Cookie{
		Name:     session.CookieName,
		Value:    token,
		Path:     "/",
		Expires:  claims.ExpiresAt,
		HTTPOnly: true,
		Secure:   s.secureCookies(),
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	c.Locals(actorKey, &Actor{User: user})
	return nil
}

// AdminRequired rejects every actor that is not an administrator with 403.
func (s *Server) AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !ActorFrom(c).Admin() {
			s.metrics.AuthEvent(observability.AuthForbidden)
			return models.NewForbiddenError()
		}
		return c.Next()
	}
}

// LoginRequired redirects anonymous actors to the login page with message.
func (s *Server) LoginRequired(message string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !ActorFrom(c).Authenticated() {
			web.SetFlash(c, web.FlashInfo, message, s.secureCookies())
			return c.Redirect("/login", fiber.StatusFound)
		}
		return c.Next()
	}
}

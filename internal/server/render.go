package server

import (
	"strconv"

	"blogsite/internal/web"

	"github.com/gofiber/fiber/v2"
)

// render executes page with the shared layout data added to data.
func (s *Server) render(c *fiber.Ctx, status int, page string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	data["Actor"] = ActorFrom(c)
	if _, ok := data["Flash"]; !ok {
		data["Flash"] = web.PopFlash(c, s.secureCookies())
	}
	token, _ := c.Locals(csrfContextKey).(string)
	data["CSRF"] = token
	return c.Status(status).Render(page, data)
}

// parseID reads the :id route parameter. Anything that is not a positive
// integer is a missing page.
func parseID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil || id == 0 {
		return 0, fiber.ErrNotFound
	}
	return uint(id), nil
}

package web

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

// FlashCookieName is the one-shot notice cookie.
const FlashCookieName = "flash"

// Flash kinds.
const (
	FlashInfo  = "info"
	FlashError = "danger"
)

// Flash is a notice shown on the next rendered page.
type Flash struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// SetFlash stores a notice for the next page render.
func SetFlash(c *fiber.Ctx, kind, message string, secure bool) {
	payload, err := json.Marshal(Flash{Kind: kind, Message: message})
	if err != nil {
		return
	}
	c.Cookie(&fiber.Cookie{
		Name:     FlashCookieName,
		Value:    base64.RawURLEncoding.EncodeToString(payload),
		Path:     "/",
		HTTPOnly: true,
		Secure:   secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// ExpiredCookie returns a cookie that deletes name on the client.
func ExpiredCookie(name string, secure bool) *fiber.Cookie {
	return &fiber.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		Secure:   secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	}
}

// PopFlash reads and clears the notice cookie.
func PopFlash(c *fiber.Ctx, secure bool) *Flash {
	raw := strings.TrimSpace(c.Cookies(FlashCookieName))
	if raw == "" {
		return nil
	}
	c.Cookie(ExpiredCookie(FlashCookieName, secure))

	decoded, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil {
		return nil
	}
	var f Flash
	if err := json.Unmarshal(decoded, &f); err != nil || strings.TrimSpace(f.Message) == "" {
		return nil
	}
	return &f
}

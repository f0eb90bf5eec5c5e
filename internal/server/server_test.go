package server

import (
	"errors"
	"net/http"
	"net/url"
	"regexp"
	"testing"

	"blogsite/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"fiber error", fiber.ErrBadRequest, http.StatusBadRequest},
		{"not found", models.NewNotFoundError("Post", 1), http.StatusNotFound},
		{"forbidden", models.NewForbiddenError(), http.StatusForbidden},
		{"invalid credentials", models.NewInvalidCredentialsError(), http.StatusUnauthorized},
		{"duplicate title", models.NewDuplicateTitleError(nil), http.StatusUnprocessableEntity},
		{"internal", models.NewInternalError(errors.New("boom")), http.StatusInternalServerError},
		{"plain", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}

func TestActor(t *testing.T) {
	var nilActor *Actor
	assert.False(t, nilActor.Authenticated())
	assert.False(t, (&Actor{}).Admin())
	assert.True(t, (&Actor{User: &models.User{ID: 2}}).Authenticated())
	assert.False(t, (&Actor{User: &models.User{ID: 2}}).Admin())
	assert.True(t, (&Actor{User: &models.User{ID: 1, IsAdmin: true}}).Admin())
}

func TestHealthAndMetrics(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	b := env.browser(t)

	resp, body := b.get("/health/live")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `"status":"up"`)

	resp, body = b.get("/health/ready")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `"database":"healthy"`)
	assert.Contains(t, body, `"redis":"disabled"`)

	require.Equal(t, http.StatusFound, b.register("a@x.com", "pw", "Alice").StatusCode)

	resp, body = b.get("/metrics")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `blog_auth_events_total{event="register"} 1`)
	assert.Contains(t, body, "blogsite")
}

func TestSecurityHeaders(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	resp, _ := env.browser(t).get("/")
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
	assert.Equal(t, "same-origin", resp.Header.Get("Referrer-Policy"))
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}

var csrfField = regexp.MustCompile(`name="csrf_token" value="([^"]+)"`)

func TestCSRF_RequiresToken(t *testing.T) {
	cfg := testConfig()
	cfg.CSRFEnabled = true
	env := newTestEnv(t, cfg, nil)
	b := env.browser(t)

	resp, body := b.get("/register")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	match := csrfField.FindStringSubmatch(body)
	require.Len(t, match, 2, "register form should carry a csrf token")

	form := url.Values{"email": {"a@x.com"}, "password": {"pw"}, "name": {"Alice"}}
	resp, _ = b.post("/register", form)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	form.Set("csrf_token", match[1])
	resp, _ = b.post("/register", form)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
}

func TestCSRF_TokenSharedAcrossInstancesViaRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cfg := testConfig()
	cfg.CSRFEnabled = true
	first := newTestEnv(t, cfg, client)
	second, err := NewServerWithDeps(cfg, first.db, client)
	require.NoError(t, err)

	b := first.browser(t)
	resp, body := b.get("/register")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	match := csrfField.FindStringSubmatch(body)
	require.Len(t, match, 2)
	assert.NotEmpty(t, mr.Keys())

	b.app = second.App()
	form := url.Values{"email": {"a@x.com"}, "password": {"pw"}, "name": {"Alice"}, "csrf_token": {match[1]}}
	resp, _ = b.post("/register", form)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
}

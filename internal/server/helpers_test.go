package server

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"blogsite/internal/config"
	"blogsite/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const testSecret = "test-secret-key-that-is-long-enough-123"

func testConfig() *config.Config {
	return &config.Config{
		Port:            "0",
		Env:             "test",
		SecretKey:       testSecret,
		SQLitePath:      "unused.db",
		SessionTTLHours: 1,
		BcryptCost:      bcrypt.MinCost,
	}
}

type testEnv struct {
	server *Server
	db     *gorm.DB
	app    *fiber.App
}

func newTestEnv(t *testing.T, cfg *config.Config, redisClient *redis.Client) *testEnv {
	t.Helper()
	if cfg == nil {
		cfg = testConfig()
	}
	db := testutil.NewSQLiteDB(t)
	s, err := NewServerWithDeps(cfg, db, redisClient)
	require.NoError(t, err)
	return &testEnv{server: s, db: db, app: s.App()}
}

// browser keeps cookies between requests the way a user agent would.
type browser struct {
	t       *testing.T
	app     *fiber.App
	cookies map[string]string
}

func (e *testEnv) browser(t *testing.T) *browser {
	return &browser{t: t, app: e.app, cookies: map[string]string{}}
}

func (b *browser) get(path string) (*http.Response, string) {
	return b.do(http.MethodGet, path, nil)
}

func (b *browser) post(path string, form url.Values) (*http.Response, string) {
	return b.do(http.MethodPost, path, form)
}

func (b *browser) do(method, path string, form url.Values) (*http.Response, string) {
	b.t.Helper()

	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, path, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for name, value := range b.cookies {
		req.AddCookie(&http.Cookie{Name: name, Value: value})
	}

	resp, err := b.app.Test(req, -1)
	require.NoError(b.t, err)
	defer func() { _ = resp.Body.Close() }()

	for _, ck := range resp.Cookies() {
		if ck.Value == "" || (!ck.Expires.IsZero() && ck.Expires.Before(time.Now())) {
			delete(b.cookies, ck.Name)
			continue
		}
		b.cookies[ck.Name] = ck.Value
	}

	raw, err := io.ReadAll(resp.Body)
	require.NoError(b.t, err)
	return resp, string(raw)
}

func (b *browser) register(email, password, name string) *http.Response {
	resp, _ := b.post("/register", url.Values{"email": {email}, "password": {password}, "name": {name}})
	return resp
}

func (b *browser) login(email, password string) *http.Response {
	resp, _ := b.post("/login", url.Values{"email": {email}, "password": {password}})
	return resp
}

func (b *browser) createPost(title string) *http.Response {
	resp, _ := b.post("/new-post", postValues(title))
	return resp
}

func postValues(title string) url.Values {
	return url.Values{
		"title":    {title},
		"subtitle": {"A subtitle"},
		"img_url":  {"https://images.example.com/cover.jpg"},
		"body":     {"<p>Body of " + title + "</p>"},
	}
}

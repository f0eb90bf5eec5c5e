package bootstrap

import (
	"context"
	"path/filepath"
	"testing"

	"blogsite/internal/config"
	"blogsite/internal/models"
	"blogsite/internal/repository"
	"blogsite/internal/service"
	"blogsite/internal/testutil"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func adminConfig() *config.Config {
	return &config.Config{
		AdminBootstrap: true,
		AdminEmail:     "Boss@Example.com",
		AdminPassword:  "s3cret",
		AdminName:      "Boss",
		BcryptCost:     bcrypt.MinCost,
	}
}

func TestEnsureAdmin_Disabled(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	require.NoError(t, EnsureAdmin(context.Background(), &config.Config{}, db))

	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestEnsureAdmin_CreatesAccount(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	ctx := context.Background()

	require.NoError(t, EnsureAdmin(ctx, adminConfig(), db))
	require.NoError(t, EnsureAdmin(ctx, adminConfig(), db))

	user, err := repository.NewUserRepository(db).GetByEmail(ctx, "boss@example.com")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.True(t, user.IsAdmin)
	assert.Equal(t, "Boss", user.Name)
	assert.True(t, service.VerifyPassword(user.Password, "s3cret"))
}

func TestEnsureAdmin_PromotesExisting(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	ctx := context.Background()
	users := repository.NewUserRepository(db)
	require.NoError(t, users.Create(ctx, &models.User{Email: "boss@example.com", Password: "keep", Name: "Boss"}))

	require.NoError(t, EnsureAdmin(ctx, adminConfig(), db))

	user, err := users.GetByEmail(ctx, "boss@example.com")
	require.NoError(t, err)
	assert.True(t, user.IsAdmin)
	assert.Equal(t, "keep", user.Password)
}

func TestEnsureAdmin_RequiresCredentials(t *testing.T) {
	cfg := adminConfig()
	cfg.AdminPassword = ""
	assert.Error(t, EnsureAdmin(context.Background(), cfg, testutil.NewSQLiteDB(t)))
}

func TestInitRuntime_SQLite(t *testing.T) {
	cfg := adminConfig()
	cfg.SQLitePath = filepath.Join(t.TempDir(), "blog.db")

	rt, err := InitRuntime(context.Background(), cfg, prometheus.NewRegistry())
	require.NoError(t, err)
	assert.NotNil(t, rt.DB)
	assert.Nil(t, rt.Redis)

	admins, err := repository.NewUserRepository(rt.DB).ListAdmins(context.Background())
	require.NoError(t, err)
	assert.Len(t, admins, 1)
}

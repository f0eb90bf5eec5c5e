package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"blogsite/internal/models"
	"blogsite/internal/repository"
	"blogsite/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func run(t *testing.T, db *gorm.DB, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd(func() (*gorm.DB, error) { return db, nil })
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestPromoteDemoteAndList(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	users := repository.NewUserRepository(db)
	u := &models.User{Email: "ann@example.com", Password: "x", Name: "Ann"}
	require.NoError(t, users.Create(context.Background(), u))

	out, err := run(t, db, "list-admins")
	require.NoError(t, err)
	assert.Contains(t, out, "No admins found")

	out, err = run(t, db, "promote", "Ann@Example.com")
	require.NoError(t, err)
	assert.Contains(t, out, "is now an admin")

	out, err = run(t, db, "promote", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "is already an admin")

	out, err = run(t, db, "list-admins")
	require.NoError(t, err)
	assert.Contains(t, out, "ann@example.com")

	out, err = run(t, db, "demote", "ann@example.com")
	require.NoError(t, err)
	assert.Contains(t, out, "is now not an admin")

	got, err := users.GetByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.False(t, got.IsAdmin)
}

func TestPromote_UnknownUser(t *testing.T) {
	db := testutil.NewSQLiteDB(t)

	_, err := run(t, db, "promote", "nobody@example.com")
	assert.True(t, models.HasCode(err, models.CodeNotFound))

	_, err = run(t, db, "promote", "42")
	assert.True(t, models.HasCode(err, models.CodeNotFound))
}

func TestSeedAndImport(t *testing.T) {
	db := testutil.NewSQLiteDB(t)

	out, err := run(t, db, "seed", "--users", "2", "--posts", "3", "--comments", "1", "--seed", "7")
	require.NoError(t, err)
	assert.Contains(t, out, "Seeded 3 users, 3 posts, 3 comments")

	path := filepath.Join(t.TempDir(), "fixture.yml")
	fixture := "users:\n  - email: z@example.com\n    password: pw\n    name: Zed\nposts:\n  - title: Imported\n    subtitle: Sub\n    img_url: https://example.com/i.png\n    body: <p>b</p>\n    author: z@example.com\n"
	require.NoError(t, os.WriteFile(path, []byte(fixture), 0o600))

	out, err = run(t, db, "import", path, "--bcrypt-cost", "4")
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 1 users, 1 posts, 0 comments")

	_, err = run(t, db, "import", filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)
}

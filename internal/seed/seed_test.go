package seed

import (
	"context"
	"strings"
	"testing"

	"blogsite/internal/models"
	"blogsite/internal/repository"
	"blogsite/internal/service"
	"blogsite/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const fixtureYAML = `
users:
  - email: Admin@Example.com
    password: secret
    name: Admin
    admin: true
  - email: reader@example.com
    password: hunter2
    name: Reader
posts:
  - title: Hello World
    subtitle: First post
    img_url: https://example.com/a.jpg
    body: <p>Hi <b>there</b></p>
    author: admin@example.com
    date: August 24, 2025
    comments:
      - author: reader@example.com
        text: <p>Nice</p>
      - author: admin@example.com
        text: <p>Thanks</p>
`

func TestDemo(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	ctx := context.Background()

	sum, err := Demo(ctx, db, Options{Users: 3, Posts: 4, CommentsPerPost: 2, Seed: 42})
	require.NoError(t, err)
	assert.Equal(t, Summary{Users: 4, Posts: 4, Comments: 8}, sum)

	admins, err := repository.NewUserRepository(db).ListAdmins(ctx)
	require.NoError(t, err)
	require.Len(t, admins, 1)
	assert.True(t, service.VerifyPassword(admins[0].Password, DemoPassword))

	posts, err := repository.NewPostRepository(db).List(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 4)
	for _, p := range posts {
		assert.Equal(t, admins[0].ID, p.AuthorID)
		assert.True(t, strings.HasPrefix(p.ImgURL, "https://picsum.photos/seed/"))
		assert.True(t, strings.HasPrefix(p.Body, "<p>"))
	}
}

func TestLoadFixture(t *testing.T) {
	f, err := LoadFixture(strings.NewReader(fixtureYAML))
	require.NoError(t, err)
	require.Len(t, f.Users, 2)
	require.Len(t, f.Posts, 1)
	assert.True(t, f.Users[0].Admin)
	assert.Equal(t, "https://example.com/a.jpg", f.Posts[0].ImgURL)
	assert.Len(t, f.Posts[0].Comments, 2)

	_, err = LoadFixture(strings.NewReader("users:\n  - email: a@b.c\n    role: admin\n"))
	assert.Error(t, err)

	empty, err := LoadFixture(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, empty.Users)
}

func TestImport(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	ctx := context.Background()

	f, err := LoadFixture(strings.NewReader(fixtureYAML))
	require.NoError(t, err)

	sum, err := Import(ctx, db, f, bcrypt.MinCost)
	require.NoError(t, err)
	assert.Equal(t, Summary{Users: 2, Posts: 1, Comments: 2}, sum)

	admin, err := repository.NewUserRepository(db).GetByEmail(ctx, "admin@example.com")
	require.NoError(t, err)
	require.NotNil(t, admin)
	assert.True(t, admin.IsAdmin)
	assert.True(t, service.VerifyPassword(admin.Password, "secret"))

	posts, err := repository.NewPostRepository(db).List(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "August 24, 2025", posts[0].Date)

	comments, err := repository.NewCommentRepository(db).ListByPost(ctx, posts[0].ID)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "Reader", comments[0].Author.Name)
}

func TestImport_RollsBackOnError(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	ctx := context.Background()

	f := &Fixture{
		Users: []FixtureUser{{Email: "a@example.com", Password: "pw", Name: "A", Admin: true}},
		Posts: []FixturePost{{
			Title: "T", Subtitle: "S", ImgURL: "https://example.com/x.png", Body: "<p>b</p>",
			Author: "nobody@example.com",
		}},
	}
	_, err := Import(ctx, db, f, bcrypt.MinCost)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown author")

	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestImport_DuplicateTitle(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	f := &Fixture{
		Users: []FixtureUser{{Email: "a@example.com", Password: "pw", Name: "A", Admin: true}},
		Posts: []FixturePost{
			{Title: "Same", Subtitle: "S", ImgURL: "https://example.com/x.png", Body: "b", Author: "a@example.com"},
			{Title: "Same", Subtitle: "S2", ImgURL: "https://example.com/y.png", Body: "b", Author: "a@example.com"},
		},
	}
	_, err := Import(context.Background(), db, f, bcrypt.MinCost)
	require.Error(t, err)

	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeDuplicateTitle, appErr.Code)
}

func TestImport_RejectsInvalidFields(t *testing.T) {
	tests := []struct {
		name    string
		fixture *Fixture
		want    string
	}{
		{
			name: "image url not a url",
			fixture: &Fixture{
				Users: []FixtureUser{{Email: "a@example.com", Password: "pw", Name: "A", Admin: true}},
				Posts: []FixturePost{{Title: "T", Subtitle: "S", ImgURL: "not a url", Body: "b", Author: "a@example.com"}},
			},
			want: "posts[0]: img_url: Invalid URL.",
		},
		{
			name: "blank user name",
			fixture: &Fixture{
				Users: []FixtureUser{{Email: "a@example.com", Password: "pw", Name: "  "}},
			},
			want: "users[0]: name: This field is required.",
		},
		{
			name: "empty comment",
			fixture: &Fixture{
				Users: []FixtureUser{{Email: "a@example.com", Password: "pw", Name: "A"}},
				Posts: []FixturePost{{
					Title: "T", Subtitle: "S", ImgURL: "https://example.com/x.png", Body: "b", Author: "a@example.com",
					Comments: []FixtureComment{{Author: "a@example.com", Text: " "}},
				}},
			},
			want: "posts[0].comments[0]: comment: This field is required.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := testutil.NewSQLiteDB(t)
			_, err := Import(context.Background(), db, tt.fixture, bcrypt.MinCost)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)

			var posts int64
			require.NoError(t, db.Model(&models.BlogPost{}).Count(&posts).Error)
			assert.Zero(t, posts)
		})
	}
}

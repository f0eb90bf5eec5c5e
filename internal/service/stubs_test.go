package service

import (
	"context"
	"testing"

	"blogsite/internal/models"

	"github.com/stretchr/testify/require"
)

// userRepoStub is a stub for repository.UserRepository.
type userRepoStub struct {
	getByIDFn          func(context.Context, uint) (*models.User, error)
	getByEmailFn       func(context.Context, string) (*models.User, error)
	createFn           func(context.Context, *models.User) error
	createFirstAdminFn func(context.Context, *models.User) error
	setAdminFn         func(context.Context, uint, bool) error
	listAdminsFn       func(context.Context) ([]models.User, error)
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) Create(ctx context.Context, u *models.User) error {
	return s.createFn(ctx, u)
}
func (s *userRepoStub) CreateFirstAdmin(ctx context.Context, u *models.User) error {
	return s.createFirstAdminFn(ctx, u)
}
func (s *userRepoStub) SetAdmin(ctx context.Context, id uint, isAdmin bool) error {
	return s.setAdminFn(ctx, id, isAdmin)
}
func (s *userRepoStub) ListAdmins(ctx context.Context) ([]models.User, error) {
	return s.listAdminsFn(ctx)
}

// memUserRepo returns a stub that keeps users in a map keyed by email.
func memUserRepo() *userRepoStub {
	users := map[string]*models.User{}
	var nextID uint
	insert := func(u *models.User) error {
		if _, ok := users[u.Email]; ok {
			return models.NewDuplicateEmailError()
		}
		nextID++
		u.ID = nextID
		cp := *u
		users[u.Email] = &cp
		return nil
	}
	return &userRepoStub{
		getByIDFn: func(_ context.Context, id uint) (*models.User, error) {
			for _, u := range users {
				if u.ID == id {
					return u, nil
				}
			}
			return nil, models.NewNotFoundError("User", id)
		},
		getByEmailFn: func(_ context.Context, email string) (*models.User, error) {
			return users[email], nil
		},
		createFn: func(_ context.Context, u *models.User) error { return insert(u) },
		createFirstAdminFn: func(_ context.Context, u *models.User) error {
			u.IsAdmin = len(users) == 0
			return insert(u)
		},
		setAdminFn: func(context.Context, uint, bool) error { return nil },
		listAdminsFn: func(context.Context) ([]models.User, error) {
			var admins []models.User
			for _, u := range users {
				if u.IsAdmin {
					admins = append(admins, *u)
				}
			}
			return admins, nil
		},
	}
}

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	createFn     func(context.Context, *models.BlogPost) error
	getByIDFn    func(context.Context, uint) (*models.BlogPost, error)
	getByTitleFn func(context.Context, string) (*models.BlogPost, error)
	listFn       func(context.Context) ([]models.BlogPost, error)
	updateFn     func(context.Context, *models.BlogPost) error
	deleteFn     func(context.Context, uint) error
}

func (s *postRepoStub) Create(ctx context.Context, p *models.BlogPost) error {
	return s.createFn(ctx, p)
}
func (s *postRepoStub) GetByID(ctx context.Context, id uint) (*models.BlogPost, error) {
	return s.getByIDFn(ctx, id)
}
func (s *postRepoStub) GetByTitle(ctx context.Context, title string) (*models.BlogPost, error) {
	return s.getByTitleFn(ctx, title)
}
func (s *postRepoStub) List(ctx context.Context) ([]models.BlogPost, error) {
	return s.listFn(ctx)
}
func (s *postRepoStub) Update(ctx context.Context, p *models.BlogPost) error {
	return s.updateFn(ctx, p)
}
func (s *postRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		createFn:     func(_ context.Context, p *models.BlogPost) error { p.ID = 1; return nil },
		getByIDFn:    func(_ context.Context, id uint) (*models.BlogPost, error) { return &models.BlogPost{ID: id}, nil },
		getByTitleFn: func(context.Context, string) (*models.BlogPost, error) { return nil, nil },
		listFn:       func(context.Context) ([]models.BlogPost, error) { return nil, nil },
		updateFn:     func(context.Context, *models.BlogPost) error { return nil },
		deleteFn:     func(context.Context, uint) error { return nil },
	}
}

// commentRepoStub is a stub for repository.CommentRepository.
type commentRepoStub struct {
	createFn     func(context.Context, *models.Comment) error
	listByPostFn func(context.Context, uint) ([]models.Comment, error)
}

func (s *commentRepoStub) Create(ctx context.Context, c *models.Comment) error {
	return s.createFn(ctx, c)
}
func (s *commentRepoStub) ListByPost(ctx context.Context, postID uint) ([]models.Comment, error) {
	return s.listByPostFn(ctx, postID)
}

func noopCommentRepo() *commentRepoStub {
	return &commentRepoStub{
		createFn:     func(_ context.Context, c *models.Comment) error { c.ID = 1; return nil },
		listByPostFn: func(context.Context, uint) ([]models.Comment, error) { return nil, nil },
	}
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	require.Truef(t, models.HasCode(err, code), "expected %s, got %v", code, err)
}

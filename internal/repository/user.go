package repository

import (
	"context"
	"errors"

	"blogsite/internal/models"
	"blogsite/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	// GetByEmail returns (nil, nil) when no user has the email.
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	// CreateFirstAdmin inserts user and marks it admin iff the table was empty.
	// The check and the insert are atomic with respect to other registrations.
	CreateFirstAdmin(ctx context.Context, user *models.User) error
	SetAdmin(ctx context.Context, id uint, isAdmin bool) error
	ListAdmins(ctx context.Context) ([]models.User, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	ctx, span := observability.StartRepositorySpan(ctx, "GetByID", "users")
	defer span.End()

	var user models.User
	err := r.db.WithContext(ctx).First(&user, id).Error
	if err != nil {
		return nil, translate(err, func() error { return models.NewNotFoundError("User", id) }, nil)
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	ctx, span := observability.StartRepositorySpan(ctx, "GetByEmail", "users")
	defer span.End()

	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	ctx, span := observability.StartRepositorySpan(ctx, "Create", "users")
	defer span.End()

	return insertUser(r.db.WithContext(ctx), user)
}

func (r *userRepository) CreateFirstAdmin(ctx context.Context, user *models.User) error {
	ctx, span := observability.StartRepositorySpan(ctx, "CreateFirstAdmin", "users")
	defer span.End()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Concurrent first registrations must not both see an empty table.
		// SHARE ROW EXCLUSIVE conflicts with itself and with inserts, but not
		// with readers. SQLite already serializes writers.
		if tx.Dialector.Name() == "postgres" {
			if err := tx.Exec("LOCK TABLE users IN SHARE ROW EXCLUSIVE MODE").Error; err != nil {
				return err
			}
		}
		var count int64
		if err := tx.Model(&models.User{}).Count(&count).Error; err != nil {
			return err
		}
		user.IsAdmin = count == 0
		return insertUser(tx, user)
	})
	var appErr *models.AppError
	if err != nil && !errors.As(err, &appErr) {
		return models.NewInternalError(err)
	}
	return err
}

func insertUser(db *gorm.DB, user *models.User) error {
	err := db.Omit(clause.Associations).Create(user).Error
	return translate(err, nil, func(error) error { return models.NewDuplicateEmailError() })
}

func (r *userRepository) SetAdmin(ctx context.Context, id uint, isAdmin bool) error {
	ctx, span := observability.StartRepositorySpan(ctx, "SetAdmin", "users")
	defer span.End()

	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("is_admin", isAdmin)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("User", id)
	}
	return nil
}

func (r *userRepository) ListAdmins(ctx context.Context) ([]models.User, error) {
	ctx, span := observability.StartRepositorySpan(ctx, "ListAdmins", "users")
	defer span.End()

	var users []models.User
	if err := r.db.WithContext(ctx).Where("is_admin = ?", true).Order("id ASC").Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

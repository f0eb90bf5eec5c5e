package repository

import (
	"context"

	"blogsite/internal/models"
	"blogsite/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CommentRepository defines persistence operations for comments.
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	ListByPost(ctx context.Context, postID uint) ([]models.Comment, error)
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository returns a new CommentRepository implementation.
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	ctx, span := observability.StartRepositorySpan(ctx, "Create", "comments")
	defer span.End()

	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(comment).Error
	return translate(err, nil, nil)
}

func (r *commentRepository) ListByPost(ctx context.Context, postID uint) ([]models.Comment, error) {
	ctx, span := observability.StartRepositorySpan(ctx, "ListByPost", "comments")
	defer span.End()

	var comments []models.Comment
	if err := r.db.WithContext(ctx).
		Preload("Author").
		Where("post_id = ?", postID).
		Order("id ASC").
		Find(&comments).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return comments, nil
}

package repository

import (
	"context"
	"errors"

	"blogsite/internal/models"
	"blogsite/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostRepository defines persistence operations for blog posts.
type PostRepository interface {
	Create(ctx context.Context, post *models.BlogPost) error
	GetByID(ctx context.Context, id uint) (*models.BlogPost, error)
	// GetByTitle returns (nil, nil) when no post has the title.
	GetByTitle(ctx context.Context, title string) (*models.BlogPost, error)
	List(ctx context.Context) ([]models.BlogPost, error)
	// Update writes title, subtitle, body, img_url and author_id. Date is never changed.
	Update(ctx context.Context, post *models.BlogPost) error
	// Delete removes the post and its comments in one transaction.
	Delete(ctx context.Context, id uint) error
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository returns a new PostRepository implementation.
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func duplicateTitle(err error) error {
	return models.NewDuplicateTitleError(err)
}

func (r *postRepository) Create(ctx context.Context, post *models.BlogPost) error {
	ctx, span := observability.StartRepositorySpan(ctx, "Create", "blog_posts")
	defer span.End()

	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(post).Error
	return translate(err, nil, duplicateTitle)
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.BlogPost, error) {
	ctx, span := observability.StartRepositorySpan(ctx, "GetByID", "blog_posts")
	defer span.End()

	var post models.BlogPost
	err := r.db.WithContext(ctx).Preload("Author").First(&post, id).Error
	if err != nil {
		return nil, translate(err, func() error { return models.NewNotFoundError("Post", id) }, nil)
	}
	return &post, nil
}

func (r *postRepository) GetByTitle(ctx context.Context, title string) (*models.BlogPost, error) {
	ctx, span := observability.StartRepositorySpan(ctx, "GetByTitle", "blog_posts")
	defer span.End()

	var post models.BlogPost
	if err := r.db.WithContext(ctx).Where("title = ?", title).First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &post, nil
}

func (r *postRepository) List(ctx context.Context) ([]models.BlogPost, error) {
	ctx, span := observability.StartRepositorySpan(ctx, "List", "blog_posts")
	defer span.End()

	var posts []models.BlogPost
	if err := r.db.WithContext(ctx).Preload("Author").Order("id ASC").Find(&posts).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) Update(ctx context.Context, post *models.BlogPost) error {
	ctx, span := observability.StartRepositorySpan(ctx, "Update", "blog_posts")
	defer span.End()

	res := r.db.WithContext(ctx).Model(&models.BlogPost{}).Where("id = ?", post.ID).Updates(map[string]interface{}{
		"title":     post.Title,
		"subtitle":  post.Subtitle,
		"body":      post.Body,
		"img_url":   post.ImgURL,
		"author_id": post.AuthorID,
	})
	if res.Error != nil {
		return translate(res.Error, nil, duplicateTitle)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Post", post.ID)
	}
	return nil
}

func (r *postRepository) Delete(ctx context.Context, id uint) error {
	ctx, span := observability.StartRepositorySpan(ctx, "Delete", "blog_posts")
	defer span.End()

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return models.NewInternalError(err)
		}
		res := tx.Delete(&models.BlogPost{}, id)
		if res.Error != nil {
			return models.NewInternalError(res.Error)
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("Post", id)
		}
		return nil
	})
}

package service

import (
	"context"
	"strings"

	"blogsite/internal/models"
	"blogsite/internal/observability"
	"blogsite/internal/repository"
)

type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
	metrics     *observability.Metrics
}

type CreateCommentInput struct {
	Author *models.User
	PostID uint
	Text   string
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	postRepo repository.PostRepository,
	metrics *observability.Metrics,
) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
		metrics:     metrics,
	}
}

func (s *CommentService) CreateComment(ctx context.Context, in CreateCommentInput) (*models.Comment, error) {
	if in.Author == nil {
		return nil, models.NewUnauthorizedError("Please log in to comment.")
	}
	if _, err := s.postRepo.GetByID(ctx, in.PostID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Text) == "" {
		return nil, models.NewFieldError("comment", "This field is required.")
	}

	comment := &models.Comment{
		Text:     in.Text,
		AuthorID: in.Author.ID,
		PostID:   in.PostID,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}
	s.metrics.CommentWritten()
	comment.Author = in.Author
	return comment, nil
}

func (s *CommentService) ListComments(ctx context.Context, postID uint) ([]models.Comment, error) {
	return s.commentRepo.ListByPost(ctx, postID)
}

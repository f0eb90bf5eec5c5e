package service

import (
	"context"
	"strings"
	"time"

	"blogsite/internal/models"
	"blogsite/internal/observability"
	"blogsite/internal/repository"
)

type PostService struct {
	postRepo repository.PostRepository
	metrics  *observability.Metrics
	now      func() time.Time
}

type PostInput struct {
	Title    string
	Subtitle string
	ImgURL   string
	Body     string
}

func NewPostService(postRepo repository.PostRepository, metrics *observability.Metrics) *PostService {
	return &PostService{
		postRepo: postRepo,
		metrics:  metrics,
		now:      time.Now,
	}
}

func (s *PostService) ListPosts(ctx context.Context) ([]models.BlogPost, error) {
	return s.postRepo.List(ctx)
}

func (s *PostService) GetPost(ctx context.Context, id uint) (*models.BlogPost, error) {
	return s.postRepo.GetByID(ctx, id)
}

// CreatePost stores a new post by author, stamping today's date.
func (s *PostService) CreatePost(ctx context.Context, author *models.User, in PostInput) (*models.BlogPost, error) {
	in = in.trimmed()
	if err := s.ensureTitleFree(ctx, in.Title, 0); err != nil {
		return nil, err
	}

	post := &models.BlogPost{
		Title:    in.Title,
		Subtitle: in.Subtitle,
		Date:     s.now().Format(models.DateLayout),
		Body:     in.Body,
		ImgURL:   in.ImgURL,
		AuthorID: author.ID,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	s.metrics.PostWritten("create")
	post.Author = author
	return post, nil
}

// UpdatePost rewrites the post's fields and makes editor its author. The date is kept.
func (s *PostService) UpdatePost(ctx context.Context, id uint, editor *models.User, in PostInput) (*models.BlogPost, error) {
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	in = in.trimmed()
	if in.Title != post.Title {
		if err := s.ensureTitleFree(ctx, in.Title, post.ID); err != nil {
			return nil, err
		}
	}

	post.Title = in.Title
	post.Subtitle = in.Subtitle
	post.ImgURL = in.ImgURL
	post.Body = in.Body
	post.AuthorID = editor.ID
	post.Author = editor
	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}
	s.metrics.PostWritten("update")
	return post, nil
}

func (s *PostService) DeletePost(ctx context.Context, id uint) error {
	if err := s.postRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.metrics.PostWritten("delete")
	return nil
}

// ensureTitleFree fails with DuplicateTitle when another post already uses title.
func (s *PostService) ensureTitleFree(ctx context.Context, title string, selfID uint) error {
	existing, err := s.postRepo.GetByTitle(ctx, title)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != selfID {
		return models.NewDuplicateTitleError(nil)
	}
	return nil
}

func (in PostInput) trimmed() PostInput {
	return PostInput{
		Title:    strings.TrimSpace(in.Title),
		Subtitle: strings.TrimSpace(in.Subtitle),
		ImgURL:   strings.TrimSpace(in.ImgURL),
		Body:     in.Body,
	}
}

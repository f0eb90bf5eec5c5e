// Package seed creates demo data for development databases. It is not used by
// the web server.
package seed

import (
	"context"
	"fmt"
	"strings"

	"blogsite/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DemoPassword is the password of every user built by Factory.
const DemoPassword = "password123"

// Options controls how much demo data Demo generates.
type Options struct {
	Users           int
	Posts           int
	CommentsPerPost int
	// Seed makes the output reproducible. Zero picks a random seed.
	Seed int64
}

// Factory builds demo entities and persists them.
type Factory struct {
	db     *gorm.DB
	faker  *gofakeit.Faker
	hashed string
}

// NewFactory creates a Factory bound to db. All users share DemoPassword,
// hashed once at bcrypt.MinCost.
func NewFactory(db *gorm.DB, seed int64) (*Factory, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), bcrypt.MinCost)
	if err != nil {
		return nil, err
	}
	return &Factory{db: db, faker: gofakeit.New(seed), hashed: string(hash)}, nil
}

// User persists a user with a unique fake email.
func (f *Factory) User(ctx context.Context, admin bool) (*models.User, error) {
	u := &models.User{
		Email:    strings.ToLower(fmt.Sprintf("%s.%s@example.com", f.faker.Username(), f.faker.LetterN(6))),
		Password: f.hashed,
		Name:     f.faker.Name(),
		IsAdmin:  admin,
	}
	if err := f.db.WithContext(ctx).Omit(clause.Associations).Create(u).Error; err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

// Post persists a post authored by author. Bodies are simple HTML paragraphs.
func (f *Factory) Post(ctx context.Context, author *models.User) (*models.BlogPost, error) {
	var body strings.Builder
	for i := 0; i < 3; i++ {
		body.WriteString("<p>")
		body.WriteString(f.faker.Paragraph(1, 4, 12, " "))
		body.WriteString("</p>")
	}
	p := &models.BlogPost{
		Title:    strings.TrimSuffix(f.faker.Sentence(5), ".") + " " + f.faker.LetterN(4),
		Subtitle: strings.TrimSuffix(f.faker.Sentence(8), "."),
		Date:     f.faker.Date().Format(models.DateLayout),
		Body:     body.String(),
		ImgURL:   fmt.Sprintf("https://picsum.photos/seed/%s/1200/600", f.faker.UUID()),
		AuthorID: author.ID,
	}
	if err := f.db.WithContext(ctx).Omit(clause.Associations).Create(p).Error; err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	p.Author = author
	return p, nil
}

// Comment persists a comment on post written by author.
func (f *Factory) Comment(ctx context.Context, author *models.User, post *models.BlogPost) (*models.Comment, error) {
	c := &models.Comment{
		Text:     "<p>" + f.faker.Sentence(12) + "</p>",
		AuthorID: author.ID,
		PostID:   post.ID,
	}
	if err := f.db.WithContext(ctx).Omit(clause.Associations).Create(c).Error; err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	return c, nil
}

// Summary counts the rows a seed run inserted.
type Summary struct {
	Users    int
	Posts    int
	Comments int
}

// Demo generates an admin author, opts.Users readers, opts.Posts posts and
// opts.CommentsPerPost comments per post, all in one transaction.
func Demo(ctx context.Context, db *gorm.DB, opts Options) (Summary, error) {
	var sum Summary
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		f, err := NewFactory(tx, opts.Seed)
		if err != nil {
			return err
		}

		admin, err := f.User(ctx, true)
		if err != nil {
			return err
		}
		readers := []*models.User{admin}
		sum.Users++
		for i := 0; i < opts.Users; i++ {
			u, err := f.User(ctx, false)
			if err != nil {
				return err
			}
			readers = append(readers, u)
			sum.Users++
		}

		for i := 0; i < opts.Posts; i++ {
			p, err := f.Post(ctx, admin)
			if err != nil {
				return err
			}
			sum.Posts++
			for j := 0; j < opts.CommentsPerPost; j++ {
				author := readers[f.faker.Number(0, len(readers)-1)]
				if _, err := f.Comment(ctx, author, p); err != nil {
					return err
				}
				sum.Comments++
			}
		}
		return nil
	})
	return sum, err
}

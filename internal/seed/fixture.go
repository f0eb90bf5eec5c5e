package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"blogsite/internal/forms"
	"blogsite/internal/models"
	"blogsite/internal/repository"
	"blogsite/internal/service"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

// Fixture is a hand-written data set loaded from YAML:
//
//	users:
//	  - email: admin@example.com
//	    password: secret
//	    name: Admin
//	    admin: true
//	posts:
//	  - title: Hello
//	    subtitle: First post
//	    img_url: https://example.com/a.jpg
//	    body: <p>Hi</p>
//	    author: admin@example.com
//	    comments:
//	      - author: admin@example.com
//	        text: <p>Nice</p>
type Fixture struct {
	Users []FixtureUser `yaml:"users"`
	Posts []FixturePost `yaml:"posts"`
}

type FixtureUser struct {
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	Admin    bool   `yaml:"admin"`
}

type FixturePost struct {
	Title    string           `yaml:"title"`
	Subtitle string           `yaml:"subtitle"`
	ImgURL   string           `yaml:"img_url"`
	Body     string           `yaml:"body"`
	Author   string           `yaml:"author"`
	Date     string           `yaml:"date"`
	Comments []FixtureComment `yaml:"comments"`
}

type FixtureComment struct {
	Author string `yaml:"author"`
	Text   string `yaml:"text"`
}

// LoadFixture decodes a Fixture. Unknown keys are rejected.
func LoadFixture(r io.Reader) (*Fixture, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f Fixture
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return &f, nil
		}
		return nil, fmt.Errorf("decode fixture: %w", err)
	}
	return &f, nil
}

// Import inserts the fixture in a single transaction. Post and comment authors
// refer to users by email, either from the fixture or already in the database.
// Any failure rolls back the whole import.
func Import(ctx context.Context, db *gorm.DB, f *Fixture, bcryptCost int) (Summary, error) {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}

	var sum Summary
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users := repository.NewUserRepository(tx)
		posts := repository.NewPostRepository(tx)
		comments := repository.NewCommentRepository(tx)

		for i, fu := range f.Users {
			form := forms.RegisterForm{Email: fu.Email, Password: fu.Password, Name: fu.Name}
			if errs := form.Validate(); len(errs) > 0 {
				return fmt.Errorf("users[%d]: %s", i, describe(errs))
			}
			email := service.NormalizeEmail(fu.Email)
			hash, err := bcrypt.GenerateFromPassword([]byte(fu.Password), bcryptCost)
			if err != nil {
				return fmt.Errorf("users[%d]: %w", i, err)
			}
			u := &models.User{Email: email, Password: string(hash), Name: strings.TrimSpace(fu.Name), IsAdmin: fu.Admin}
			if err := users.Create(ctx, u); err != nil {
				return fmt.Errorf("users[%d] %s: %w", i, email, err)
			}
			sum.Users++
		}

		lookup := func(email string) (*models.User, error) {
			u, err := users.GetByEmail(ctx, service.NormalizeEmail(email))
			if err != nil {
				return nil, err
			}
			if u == nil {
				return nil, fmt.Errorf("unknown author %q", email)
			}
			return u, nil
		}

		for i, fp := range f.Posts {
			author, err := lookup(fp.Author)
			if err != nil {
				return fmt.Errorf("posts[%d]: %w", i, err)
			}
			date := strings.TrimSpace(fp.Date)
			if date == "" {
				date = time.Now().Format(models.DateLayout)
			}
			p := &models.BlogPost{
				Title:    strings.TrimSpace(fp.Title),
				Subtitle: strings.TrimSpace(fp.Subtitle),
				ImgURL:   strings.TrimSpace(fp.ImgURL),
				Body:     fp.Body,
				Date:     date,
				AuthorID: author.ID,
			}
			form := forms.PostForm{Title: p.Title, Subtitle: p.Subtitle, ImgURL: p.ImgURL, Body: p.Body}
			if errs := form.Validate(); len(errs) > 0 {
				return fmt.Errorf("posts[%d]: %s", i, describe(errs))
			}
			if err := posts.Create(ctx, p); err != nil {
				return fmt.Errorf("posts[%d] %q: %w", i, p.Title, err)
			}
			sum.Posts++

			for j, fc := range fp.Comments {
				commenter, err := lookup(fc.Author)
				if err != nil {
					return fmt.Errorf("posts[%d].comments[%d]: %w", i, j, err)
				}
				form := forms.CommentForm{Comment: fc.Text}
				if errs := form.Validate(); len(errs) > 0 {
					return fmt.Errorf("posts[%d].comments[%d]: %s", i, j, describe(errs))
				}
				c := &models.Comment{Text: fc.Text, AuthorID: commenter.ID, PostID: p.ID}
				if err := comments.Create(ctx, c); err != nil {
					return fmt.Errorf("posts[%d].comments[%d]: %w", i, j, err)
				}
				sum.Comments++
			}
		}
		return nil
	})
	if err != nil {
		return Summary{}, err
	}
	return sum, nil
}

// describe flattens form errors into "field: message" pairs in a stable order.
func describe(errs forms.Errors) string {
	fields := make([]string, 0, len(errs))
	for field := range errs {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, field+": "+strings.Join(errs[field], " "))
	}
	return strings.Join(parts, "; ")
}

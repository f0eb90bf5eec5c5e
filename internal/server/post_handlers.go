package server

import (
	"errors"
	"fmt"

	"blogsite/internal/forms"
	"blogsite/internal/models"
	"blogsite/internal/service"

	"github.com/gofiber/fiber/v2"
)

// Index lists every post in insertion order.
func (s *Server) Index(c *fiber.Ctx) error {
	posts, err := s.postService.ListPosts(c.UserContext())
	if err != nil {
		return err
	}
	return s.render(c, fiber.StatusOK, "index", fiber.Map{"Posts": posts})
}

// ShowPost renders a post with its comments and an empty comment form.
func (s *Server) ShowPost(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	post, err := s.postService.GetPost(c.UserContext(), id)
	if err != nil {
		return err
	}
	return s.renderPost(c, fiber.StatusOK, post, &forms.CommentForm{}, nil)
}

// AddComment stores a comment by the current actor on post :id.
func (s *Server) AddComment(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	ctx := c.UserContext()
	post, err := s.postService.GetPost(ctx, id)
	if err != nil {
		return err
	}

	form := &forms.CommentForm{}
	if err := c.BodyParser(form); err != nil {
		return fiber.ErrBadRequest
	}
	if errs, ok := forms.ValidateOnSubmit(c.Method(), form); !ok {
		return s.renderPost(c, fiber.StatusUnprocessableEntity, post, form, errs)
	}

	if _, err := s.commentService.CreateComment(ctx, service.CreateCommentInput{
		Author: ActorFrom(c).User,
		PostID: post.ID,
		Text:   form.Comment,
	}); err != nil {
		return err
	}
	return c.Redirect(postURL(post.ID), fiber.StatusFound)
}

func (s *Server) renderPost(c *fiber.Ctx, status int, post *models.BlogPost, form *forms.CommentForm, errs forms.Errors) error {
	comments, err := s.commentService.ListComments(c.UserContext(), post.ID)
	if err != nil {
		return err
	}
	return s.render(c, status, "post", fiber.Map{
		"Title":    post.Title,
		"Post":     post,
		"Comments": comments,
		"Form":     form,
		"Errors":   errs,
	})
}

// NewPost shows the post editor and creates the post on submit.
func (s *Server) NewPost(c *fiber.Ctx) error {
	form := &forms.PostForm{}
	if c.Method() == fiber.MethodPost {
		if err := c.BodyParser(form); err != nil {
			return fiber.ErrBadRequest
		}
	}

	errs, ok := forms.ValidateOnSubmit(c.Method(), form)
	if !ok {
		return s.renderEditor(c, form, errs, "/new-post", false)
	}

	_, err := s.postService.CreatePost(c.UserContext(), ActorFrom(c).User, postInput(form))
	if err != nil {
		if fieldErrs, ok := fieldErrors(err); ok {
			return s.renderEditor(c, form, fieldErrs, "/new-post", false)
		}
		return err
	}
	return c.Redirect("/", fiber.StatusFound)
}

// EditPost shows the editor pre-filled from post :id and saves it on submit.
// The editing admin becomes the post's author.
func (s *Server) EditPost(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	ctx := c.UserContext()
	post, err := s.postService.GetPost(ctx, id)
	if err != nil {
		return err
	}

	action := fmt.Sprintf("/edit-post/%d", post.ID)
	form := &forms.PostForm{
		Title:    post.Title,
		Subtitle: post.Subtitle,
		ImgURL:   post.ImgURL,
		Body:     post.Body,
	}
	if c.Method() == fiber.MethodPost {
		form = &forms.PostForm{}
		if err := c.BodyParser(form); err != nil {
			return fiber.ErrBadRequest
		}
	}

	errs, ok := forms.ValidateOnSubmit(c.Method(), form)
	if !ok {
		return s.renderEditor(c, form, errs, action, true)
	}

	if _, err := s.postService.UpdatePost(ctx, post.ID, ActorFrom(c).User, postInput(form)); err != nil {
		if fieldErrs, ok := fieldErrors(err); ok {
			return s.renderEditor(c, form, fieldErrs, action, true)
		}
		return err
	}
	return c.Redirect(postURL(post.ID), fiber.StatusFound)
}

// DeletePost removes post :id together with its comments.
func (s *Server) DeletePost(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := s.postService.DeletePost(c.UserContext(), id); err != nil {
		return err
	}
	return c.Redirect("/", fiber.StatusFound)
}

func (s *Server) renderEditor(c *fiber.Ctx, form *forms.PostForm, errs forms.Errors, action string, isEdit bool) error {
	status := fiber.StatusOK
	if len(errs) > 0 {
		status = fiber.StatusUnprocessableEntity
	}
	title := "New Post"
	if isEdit {
		title = "Edit Post"
	}
	return s.render(c, status, "make-post", fiber.Map{
		"Title":  title,
		"Form":   form,
		"Errors": errs,
		"Action": action,
		"IsEdit": isEdit,
	})
}

// fieldErrors converts an AppError carrying a form field into form errors.
func fieldErrors(err error) (forms.Errors, bool) {
	var appErr *models.AppError
	if !errors.As(err, &appErr) || appErr.Field == "" {
		return nil, false
	}
	errs := forms.Errors{}
	errs.Add(appErr.Field, appErr.Message)
	return errs, true
}

func postInput(form *forms.PostForm) service.PostInput {
	return service.PostInput{
		Title:    form.Title,
		Subtitle: form.Subtitle,
		ImgURL:   form.ImgURL,
		Body:     form.Body,
	}
}

func postURL(id uint) string {
	return fmt.Sprintf("/post/%d", id)
}

// About renders the static about page.
func (s *Server) About(c *fiber.Ctx) error {
	return s.render(c, fiber.StatusOK, "about", fiber.Map{"Title": "About"})
}

// Contact renders the static contact page.
func (s *Server) Contact(c *fiber.Ctx) error {
	return s.render(c, fiber.StatusOK, "contact", fiber.Map{"Title": "Contact"})
}

// Package forms declares the site's input forms and their validation rules.
package forms

import (
	"net"
	"net/http"
	"net/url"
	"regexp"
	"strings"
)

// Validation messages.
const (
	MsgRequired   = "This field is required."
	MsgInvalidURL = "Invalid URL."
)

// Errors maps a field name to its validation messages.
type Errors map[string][]string

// Add appends msg to field.
func (e Errors) Add(field, msg string) {
	e[field] = append(e[field], msg)
}

// Get returns the first message for field, or "".
func (e Errors) Get(field string) string {
	if msgs := e[field]; len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

// Has reports whether field has any message.
func (e Errors) Has(field string) bool {
	return len(e[field]) > 0
}

// Form is implemented by every input form.
type Form interface {
	Validate() Errors
}

// ValidateOnSubmit validates f only for a submitting (POST) request. It
// returns (nil, false) for any other method so a form is never accepted on
// initial display.
func ValidateOnSubmit(method string, f Form) (Errors, bool) {
	if method != http.MethodPost {
		return nil, false
	}
	errs := f.Validate()
	return errs, len(errs) == 0
}

func required(errs Errors, field, value string) {
	if strings.TrimSpace(value) == "" {
		errs.Add(field, MsgRequired)
	}
}

type RegisterForm struct {
	Email    string `form:"email"`
	Password string `form:"password"`
	Name     string `form:"name"`
}

func (f *RegisterForm) Validate() Errors {
	errs := Errors{}
	required(errs, "email", f.Email)
	required(errs, "password", f.Password)
	required(errs, "name", f.Name)
	return errs
}

type LoginForm struct {
	Email    string `form:"email"`
	Password string `form:"password"`
}

func (f *LoginForm) Validate() Errors {
	errs := Errors{}
	required(errs, "email", f.Email)
	required(errs, "password", f.Password)
	return errs
}

// PostForm is used for both creating and editing a post. Body is rich text.
type PostForm struct {
	Title    string `form:"title"`
	Subtitle string `form:"subtitle"`
	ImgURL   string `form:"img_url"`
	Body     string `form:"body"`
}

func (f *PostForm) Validate() Errors {
	errs := Errors{}
	required(errs, "title", f.Title)
	required(errs, "subtitle", f.Subtitle)
	required(errs, "img_url", f.ImgURL)
	if strings.TrimSpace(f.ImgURL) != "" && !IsURL(f.ImgURL) {
		errs.Add("img_url", MsgInvalidURL)
	}
	required(errs, "body", f.Body)
	return errs
}

type CommentForm struct {
	Comment string `form:"comment"`
}

func (f *CommentForm) Validate() Errors {
	errs := Errors{}
	required(errs, "comment", f.Comment)
	return errs
}

var (
	schemePattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*$`)
	labelPattern  = regexp.MustCompile(`^[a-zA-Z0-9]([a-zA-Z0-9-]*[a-zA-Z0-9])?$`)
	tldPattern    = regexp.MustCompile(`^[a-zA-Z]{2,}$`)
)

// IsURL reports whether raw is an absolute URL with a scheme and a host that
// is a dotted domain name, an IP address or localhost.
func IsURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" || !schemePattern.MatchString(u.Scheme) {
		return false
	}
	host := u.Hostname()
	if host == "localhost" || net.ParseIP(host) != nil {
		return true
	}
	labels := strings.Split(host, ".")
	if len(labels) < 2 || !tldPattern.MatchString(labels[len(labels)-1]) {
		return false
	}
	for _, l := range labels {
		if !labelPattern.MatchString(l) {
			return false
		}
	}
	return true
}

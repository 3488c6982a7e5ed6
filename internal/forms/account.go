package forms

import (
	"errors"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	MaxUsernameLength = 150
	// bcrypt ignores input past 72 bytes, so longer passwords are refused.
	MaxPasswordBytes = 72
)

var ErrPasswordMismatch = errors.New("passwords did not match")

var usernamePattern = regexp.MustCompile(`^[\p{L}\p{N}_.@+-]+$`)

// SignupInput is the submitted signup form.
type SignupInput struct {
	Username  string
	Password1 string
	Password2 string
}

func SignupInputFromValues(values url.Values) SignupInput {
	return SignupInput{
		Username:  strings.TrimSpace(values.Get("username")),
		Password1: values.Get("password1"),
		Password2: values.Get("password2"),
	}
}

// Validate returns ErrPasswordMismatch when the two passwords differ, and
// FieldErrors for any other problem.
func (in SignupInput) Validate() error {
	if in.Password1 != in.Password2 {
		return ErrPasswordMismatch
	}
	var errs FieldErrors
	switch {
	case in.Username == "":
		errs.add("username", "Username is required.")
	case utf8.RuneCountInString(in.Username) > MaxUsernameLength:
		errs.add("username", "Username must be at most 150 characters.")
	case !usernamePattern.MatchString(in.Username):
		errs.add("username", "Username may contain only letters, numbers, and @/./+/-/_ characters.")
	}
	switch {
	case in.Password1 == "":
		errs.add("password1", "Password is required.")
	case len(in.Password1) > MaxPasswordBytes:
		errs.add("password1", "Password is too long.")
	}
	return errs.orNil()
}

// LoginInput is the submitted login form.
type LoginInput struct {
	Username string
	Password string
	Next     string
}

func LoginInputFromValues(values url.Values) LoginInput {
	return LoginInput{
		Username: strings.TrimSpace(values.Get("username")),
		Password: values.Get("password"),
		Next:     values.Get("next"),
	}
}

// SafeNext returns next when it is a path on this site, otherwise fallback.
func SafeNext(next, fallback string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.ContainsAny(next, "\\\r\n") {
		return fallback
	}
	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return fallback
	}
	return next
}

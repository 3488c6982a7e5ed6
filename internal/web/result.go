package web

import (
	"errors"

	"github.com/hray3182/todolist/internal/auth"
	"github.com/hray3182/todolist/internal/forms"
	"github.com/hray3182/todolist/internal/models"
)

// ErrMethodNotAllowed is returned in Failed when an action that only accepts
// form submissions is called with another method.
var ErrMethodNotAllowed = errors.New("method not allowed")

// Result is what an action decided to do with a request.
type Result interface {
	isResult()
}

// Rendered shows View with Page.
type Rendered struct {
	View string
	Page Page
}

// Redirected sends the client to Target with 303 See Other.
type Redirected struct {
	Target string
}

// NotFound is returned for missing todos and todos owned by someone else.
type NotFound struct{}

// Failed carries an error the action could not recover from.
type Failed struct {
	Err error
}

func (Rendered) isResult()   {}
func (Redirected) isResult() {}
func (NotFound) isResult()   {}
func (Failed) isResult()     {}

// Page is the data every template receives. User and CSRF are filled in by
// the HTTP layer.
type Page struct {
	User        *auth.Identity
	CSRF        string
	Error       string
	FieldErrors forms.FieldErrors
	Username    string
	Next        string
	Todo        *models.Todo
	Form        forms.TodoInput
	Todos       []*models.Todo
	Status      int
	StatusText  string
}

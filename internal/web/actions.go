package web

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/hray3182/todolist/internal/auth"
	"github.com/hray3182/todolist/internal/forms"
	"github.com/hray3182/todolist/internal/models"
	"github.com/hray3182/todolist/internal/repository"
)

const (
	pathHome      = "/"
	pathLogin     = "/login"
	pathCurrent   = "/current"
	pathCompleted = "/completed"
)

const (
	msgPasswordMismatch = "Passwords did not match."
	msgUsernameTaken    = "Username already exist. Choose a different one."
	msgLoginFailed      = "Username or password did not match."
	msgBadTodoData      = "Bad data passed in. Try again."
	msgBadTodoInfo      = "Bad info. Try again."
)

// UserStore persists accounts.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

// TodoStore persists todos. Every single-todo call is scoped by owner and
// returns repository.ErrNotFound when the owner does not match.
type TodoStore interface {
	Create(ctx context.Context, todo *models.Todo) error
	GetByID(ctx context.Context, todoID, userID int64) (*models.Todo, error)
	Update(ctx context.Context, todo *models.Todo) error
	Complete(ctx context.Context, todo *models.Todo, at time.Time) error
	Delete(ctx context.Context, todoID, userID int64) error
	ListActive(ctx context.Context, userID int64) ([]*models.Todo, error)
	ListCompleted(ctx context.Context, userID int64) ([]*models.Todo, error)
}

// Request is everything an action may look at.
type Request struct {
	Method  string
	Path    string
	Query   url.Values
	Form    url.Values
	TodoID  string
	Session *auth.Session
}

func (r *Request) submitted() bool {
	return r.Method == http.MethodPost
}

// Action handles one user action.
type Action func(ctx context.Context, req *Request) Result

// App holds the actions and the stores they use.
type App struct {
	users UserStore
	todos TodoStore
	now   func() time.Time
}

func NewApp(users UserStore, todos TodoStore) *App {
	return &App{users: users, todos: todos, now: time.Now}
}

func (a *App) Home(ctx context.Context, req *Request) Result {
	return Rendered{View: "home"}
}

func (a *App) Signup(ctx context.Context, req *Request) Result {
	if !req.submitted() {
		return Rendered{View: "signup"}
	}

	input := forms.SignupInputFromValues(req.Form)
	page := Page{Username: input.Username}
	if err := input.Validate(); err != nil {
		if errors.Is(err, forms.ErrPasswordMismatch) {
			page.Error = msgPasswordMismatch
			return Rendered{View: "signup", Page: page}
		}
		var fieldErrs forms.FieldErrors
		if errors.As(err, &fieldErrs) {
			page.Error = fieldErrs[0].Message
			page.FieldErrors = fieldErrs
			return Rendered{View: "signup", Page: page}
		}
		return Failed{Err: err}
	}

	hash, err := auth.HashPassword(input.Password1)
	if err != nil {
		return Failed{Err: err}
	}
	user := &models.User{Username: input.Username, PasswordHash: hash}
	if err := a.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrUsernameTaken) {
			page.Error = msgUsernameTaken
			return Rendered{View: "signup", Page: page}
		}
		return Failed{Err: err}
	}

	req.Session.Establish(user)
	return Redirected{Target: pathCurrent}
}

func (a *App) Login(ctx context.Context, req *Request) Result {
	if !req.submitted() {
		return Rendered{View: "login", Page: Page{Next: req.Query.Get("next")}}
	}

	input := forms.LoginInputFromValues(req.Form)
	user, err := auth.Authenticate(ctx, a.users, input.Username, input.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		return Rendered{View: "login", Page: Page{
			Error:    msgLoginFailed,
			Username: input.Username,
			Next:     input.Next,
		}}
	}
	if err != nil {
		return Failed{Err: err}
	}

	req.Session.Establish(user)
	return Redirected{Target: forms.SafeNext(input.Next, pathCurrent)}
}

func (a *App) Logout(ctx context.Context, req *Request) Result {
	if _, res := loginRequired(req); res != nil {
		return res
	}
	if !req.submitted() {
		return Failed{Err: ErrMethodNotAllowed}
	}
	req.Session.End()
	return Redirected{Target: pathHome}
}

func (a *App) CreateTodo(ctx context.Context, req *Request) Result {
	identity, res := loginRequired(req)
	if res != nil {
		return res
	}
	if !req.submitted() {
		return Rendered{View: "create"}
	}

	input := forms.TodoInputFromValues(req.Form)
	todo, err := input.NewTodo()
	if err != nil {
		var fieldErrs forms.FieldErrors
		if !errors.As(err, &fieldErrs) {
			return Failed{Err: err}
		}
		return Rendered{View: "create", Page: Page{
			Error:       msgBadTodoData,
			FieldErrors: fieldErrs,
			Form:        input,
		}}
	}

	todo.UserID = identity.UserID
	if err := a.todos.Create(ctx, todo); err != nil {
		return Failed{Err: err}
	}
	return Redirected{Target: pathCurrent}
}

func (a *App) TodoDetail(ctx context.Context, req *Request) Result {
	identity, res := loginRequired(req)
	if res != nil {
		return res
	}
	todo, res := a.ownedTodo(ctx, req, identity)
	if res != nil {
		return res
	}
	if !req.submitted() {
		return Rendered{View: "detail", Page: Page{Todo: todo, Form: forms.TodoInputFromTodo(todo)}}
	}

	input := forms.TodoInputFromValues(req.Form)
	if err := input.ApplyTo(todo); err != nil {
		var fieldErrs forms.FieldErrors
		if !errors.As(err, &fieldErrs) {
			return Failed{Err: err}
		}
		return Rendered{View: "detail", Page: Page{
			Todo:        todo,
			Form:        input,
			Error:       msgBadTodoInfo,
			FieldErrors: fieldErrs,
		}}
	}

	if err := a.todos.Update(ctx, todo); err != nil {
		return storeFailure(err)
	}
	return Redirected{Target: pathCurrent}
}

func (a *App) CompleteTodo(ctx context.Context, req *Request) Result {
	identity, res := loginRequired(req)
	if res != nil {
		return res
	}
	todo, res := a.ownedTodo(ctx, req, identity)
	if res != nil {
		return res
	}
	if !req.submitted() {
		return Failed{Err: ErrMethodNotAllowed}
	}
	if err := a.todos.Complete(ctx, todo, a.now()); err != nil {
		return storeFailure(err)
	}
	return Redirected{Target: pathCurrent}
}

func (a *App) DeleteTodo(ctx context.Context, req *Request) Result {
	identity, res := loginRequired(req)
	if res != nil {
		return res
	}
	todo, res := a.ownedTodo(ctx, req, identity)
	if res != nil {
		return res
	}
	if !req.submitted() {
		return Failed{Err: ErrMethodNotAllowed}
	}
	if err := a.todos.Delete(ctx, todo.TodoID, identity.UserID); err != nil {
		return storeFailure(err)
	}
	return Redirected{Target: pathCurrent}
}

func (a *App) CurrentTodos(ctx context.Context, req *Request) Result {
	identity, res := loginRequired(req)
	if res != nil {
		return res
	}
	todos, err := a.todos.ListActive(ctx, identity.UserID)
	if err != nil {
		return Failed{Err: err}
	}
	return Rendered{View: "current", Page: Page{Todos: todos}}
}

func (a *App) CompletedTodos(ctx context.Context, req *Request) Result {
	identity, res := loginRequired(req)
	if res != nil {
		return res
	}
	todos, err := a.todos.ListCompleted(ctx, identity.UserID)
	if err != nil {
		return Failed{Err: err}
	}
	return Rendered{View: "completed", Page: Page{Todos: todos}}
}

// loginRequired returns the current identity, or a redirect to the login
// page when the request is anonymous.
func loginRequired(req *Request) (*auth.Identity, Result) {
	if identity := req.Session.Identity(); identity != nil {
		return identity, nil
	}
	target := pathLogin
	if !req.submitted() && req.Path != "" {
		target += "?next=" + url.QueryEscape(req.Path)
	}
	return nil, Redirected{Target: target}
}

// ownedTodo loads the todo named in the route if identity owns it.
func (a *App) ownedTodo(ctx context.Context, req *Request, identity *auth.Identity) (*models.Todo, Result) {
	todoID, err := strconv.ParseInt(req.TodoID, 10, 64)
	if err != nil || todoID <= 0 {
		return nil, NotFound{}
	}
	todo, err := a.todos.GetByID(ctx, todoID, identity.UserID)
	if err != nil {
		return nil, storeFailure(err)
	}
	return todo, nil
}

func storeFailure(err error) Result {
	if errors.Is(err, repository.ErrNotFound) {
		return NotFound{}
	}
	return Failed{Err: err}
}

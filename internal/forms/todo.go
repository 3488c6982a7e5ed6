package forms

import (
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/hray3182/todolist/internal/models"
)

const MaxTitleLength = 100

// TodoInput is the submitted todo form.
type TodoInput struct {
	Title string
	Memo  string
}

func TodoInputFromValues(values url.Values) TodoInput {
	return TodoInput{
		Title: strings.TrimSpace(values.Get("title")),
		Memo:  values.Get("memo"),
	}
}

// TodoInputFromTodo binds an existing todo into the form.
func TodoInputFromTodo(todo *models.Todo) TodoInput {
	return TodoInput{Title: todo.Title, Memo: todo.Memo}
}

// Validate checks the input without side effects.
func (in TodoInput) Validate() error {
	var errs FieldErrors
	switch {
	case in.Title == "":
		errs.add("title", "Title is required.")
	case utf8.RuneCountInString(in.Title) > MaxTitleLength:
		errs.add("title", "Title must be at most 100 characters.")
	case !storableText(in.Title):
		errs.add("title", "Title contains characters that cannot be saved.")
	}
	if !storableText(in.Memo) {
		errs.add("memo", "Memo contains characters that cannot be saved.")
	}
	return errs.orNil()
}

// storableText reports whether s can be stored in a Postgres text column,
// which refuses NUL bytes and invalid UTF-8.
func storableText(s string) bool {
	return utf8.ValidString(s) && !strings.ContainsRune(s, 0)
}

// NewTodo returns an unsaved todo built from valid input. The owner is left
// for the caller to set.
func (in TodoInput) NewTodo() (*models.Todo, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	return &models.Todo{Title: in.Title, Memo: in.Memo}, nil
}

// ApplyTo copies title and memo onto todo. Nothing is changed when the input
// is invalid.
func (in TodoInput) ApplyTo(todo *models.Todo) error {
	if err := in.Validate(); err != nil {
		return err
	}
	todo.Title = in.Title
	todo.Memo = in.Memo
	return nil
}

package web

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/hray3182/todolist/internal/models"
	"github.com/hray3182/todolist/internal/repository"
)

// memStore is an in-memory UserStore and TodoStore with the same ownership
// and not-found behavior as the Postgres repositories.
type memStore struct {
	mu         sync.Mutex
	users      map[string]*models.User
	todos      []*models.Todo
	nextUserID int64
	nextTodoID int64
	err        error
}

func newMemStore() *memStore {
	return &memStore{users: make(map[string]*models.User)}
}

type memUsers struct{ *memStore }

type memTodos struct{ *memStore }

func (s memUsers) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	if _, ok := s.users[user.Username]; ok {
		return repository.ErrUsernameTaken
	}
	s.nextUserID++
	user.UserID = s.nextUserID
	user.CreatedAt = time.Now()
	stored := *user
	s.users[user.Username] = &stored
	return nil
}

func (s memUsers) GetByUsername(_ context.Context, username string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	user, ok := s.users[username]
	if !ok {
		return nil, repository.ErrNotFound
	}
	found := *user
	return &found, nil
}

func (s memTodos) Create(_ context.Context, todo *models.Todo) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.nextTodoID++
	todo.TodoID = s.nextTodoID
	todo.CreatedAt = time.Now()
	stored := *todo
	s.todos = append(s.todos, &stored)
	return nil
}

func (s memTodos) find(todoID, userID int64) (*models.Todo, int) {
	for i, todo := range s.todos {
		if todo.TodoID == todoID && todo.UserID == userID {
			return todo, i
		}
	}
	return nil, -1
}

func (s memTodos) GetByID(_ context.Context, todoID, userID int64) (*models.Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	todo, _ := s.find(todoID, userID)
	if todo == nil {
		return nil, repository.ErrNotFound
	}
	found := *todo
	return &found, nil
}

func (s memTodos) Update(_ context.Context, todo *models.Todo) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	stored, _ := s.find(todo.TodoID, todo.UserID)
	if stored == nil {
		return repository.ErrNotFound
	}
	stored.Title = todo.Title
	stored.Memo = todo.Memo
	return nil
}

func (s memTodos) Complete(_ context.Context, todo *models.Todo, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	stored, _ := s.find(todo.TodoID, todo.UserID)
	if stored == nil {
		return repository.ErrNotFound
	}
	if stored.DateCompleted == nil {
		stored.DateCompleted = &at
	}
	completed := *stored.DateCompleted
	todo.DateCompleted = &completed
	return nil
}

func (s memTodos) Delete(_ context.Context, todoID, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	_, i := s.find(todoID, userID)
	if i < 0 {
		return repository.ErrNotFound
	}
	s.todos = slices.Delete(s.todos, i, i+1)
	return nil
}

func (s memTodos) ListActive(_ context.Context, userID int64) ([]*models.Todo, error) {
	return s.filter(userID, func(todo *models.Todo) bool { return todo.DateCompleted == nil })
}

func (s memTodos) ListCompleted(_ context.Context, userID int64) ([]*models.Todo, error) {
	todos, err := s.filter(userID, func(todo *models.Todo) bool { return todo.DateCompleted != nil })
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(todos, func(a, b *models.Todo) int {
		return b.DateCompleted.Compare(*a.DateCompleted)
	})
	return todos, nil
}

func (s memTodos) filter(userID int64, keep func(*models.Todo) bool) ([]*models.Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	var todos []*models.Todo
	for _, todo := range s.todos {
		if todo.UserID == userID && keep(todo) {
			found := *todo
			todos = append(todos, &found)
		}
	}
	return todos, nil
}

func (s *memStore) fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

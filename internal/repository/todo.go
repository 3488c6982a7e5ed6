package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/hray3182/todolist/internal/database"
	"github.com/hray3182/todolist/internal/models"
	"github.com/jackc/pgx/v5"
)

const todoColumns = `todo_id, user_id, title, memo, created_at, date_completed`

type TodoRepository struct {
	db *database.DB
}

func NewTodoRepository(db *database.DB) *TodoRepository {
	return &TodoRepository{db: db}
}

func (r *TodoRepository) Create(ctx context.Context, todo *models.Todo) error {
	err := r.db.Pool.QueryRow(ctx,
		`INSERT INTO todo (user_id, title, memo)
		 VALUES ($1, $2, $3)
		 RETURNING todo_id, created_at`,
		todo.UserID, todo.Title, todo.Memo,
	).Scan(&todo.TodoID, &todo.CreatedAt)
	if err != nil {
		return fmt.Errorf("create todo: %w", err)
	}
	return nil
}

// GetByID returns the todo only when userID owns it.
func (r *TodoRepository) GetByID(ctx context.Context, todoID, userID int64) (*models.Todo, error) {
	row := r.db.Pool.QueryRow(ctx,
		`SELECT `+todoColumns+` FROM todo WHERE todo_id = $1 AND user_id = $2`,
		todoID, userID,
	)
	todo, err := scanTodo(row)
	if err != nil {
		return nil, notFound(err)
	}
	return todo, nil
}

// Update writes title and memo. Owner, created_at and date_completed are
// never touched here.
func (r *TodoRepository) Update(ctx context.Context, todo *models.Todo) error {
	tag, err := r.db.Pool.Exec(ctx,
		`UPDATE todo SET title = $1, memo = $2 WHERE todo_id = $3 AND user_id = $4`,
		todo.Title, todo.Memo, todo.TodoID, todo.UserID,
	)
	if err != nil {
		return fmt.Errorf("update todo: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Complete stamps date_completed with at unless the todo is already
// completed, in which case the first completion time is kept. The stored
// completion time is written back to todo.
func (r *TodoRepository) Complete(ctx context.Context, todo *models.Todo, at time.Time) error {
	var completed time.Time
	err := r.db.Pool.QueryRow(ctx,
		`UPDATE todo SET date_completed = COALESCE(date_completed, $1)
		 WHERE todo_id = $2 AND user_id = $3
		 RETURNING date_completed`,
		at, todo.TodoID, todo.UserID,
	).Scan(&completed)
	if err != nil {
		return notFound(err)
	}
	todo.DateCompleted = &completed
	return nil
}

func (r *TodoRepository) Delete(ctx context.Context, todoID, userID int64) error {
	tag, err := r.db.Pool.Exec(ctx,
		`DELETE FROM todo WHERE todo_id = $1 AND user_id = $2`,
		todoID, userID,
	)
	if err != nil {
		return fmt.Errorf("delete todo: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListActive returns the user's todos without a completion time, oldest first.
func (r *TodoRepository) ListActive(ctx context.Context, userID int64) ([]*models.Todo, error) {
	return r.list(ctx,
		`SELECT `+todoColumns+` FROM todo
		 WHERE user_id = $1 AND date_completed IS NULL
		 ORDER BY todo_id ASC`,
		userID,
	)
}

// ListCompleted returns the user's completed todos, most recently completed
// first.
func (r *TodoRepository) ListCompleted(ctx context.Context, userID int64) ([]*models.Todo, error) {
	return r.list(ctx,
		`SELECT `+todoColumns+` FROM todo
		 WHERE user_id = $1 AND date_completed IS NOT NULL
		 ORDER BY date_completed DESC, todo_id DESC`,
		userID,
	)
}

func (r *TodoRepository) list(ctx context.Context, query string, args ...any) ([]*models.Todo, error) {
	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	defer rows.Close()

	var todos []*models.Todo
	for rows.Next() {
		todo, err := scanTodo(rows)
		if err != nil {
			return nil, fmt.Errorf("scan todo: %w", err)
		}
		todos = append(todos, todo)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	return todos, nil
}

func scanTodo(row pgx.Row) (*models.Todo, error) {
	todo := &models.Todo{}
	err := row.Scan(&todo.TodoID, &todo.UserID, &todo.Title, &todo.Memo,
		&todo.CreatedAt, &todo.DateCompleted)
	if err != nil {
		return nil, err
	}
	return todo, nil
}

package models

import "time"

type Todo struct {
	TodoID        int64      `json:"todo_id"`
	UserID        int64      `json:"user_id"`
	Title         string     `json:"title"`
	Memo          string     `json:"memo"`
	CreatedAt     time.Time  `json:"created_at"`
	DateCompleted *time.Time `json:"date_completed"`
}

func (t *Todo) IsCompleted() bool {
	return t.DateCompleted != nil
}

package models

import (
	"time"

	"github.com/google/uuid"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

type Task struct {
	ID          uuid.UUID `json:"id"`
	ColumnID    uuid.UUID `json:"columnId"`
	BoardID     uuid.UUID `json:"boardId"`
	Title       string    `json:"title"`
	Description *string   `json:"description,omitempty"`
	Priority    Priority  `json:"priority"`
	Order       int       `json:"order"`
	AuthorID    uuid.UUID `json:"authorId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

package models

import (
	"time"

	"github.com/google/uuid"
)

type Board struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	OwnerID   uuid.UUID `json:"ownerId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BoardListItem is a board row in the dashboard listing.
type BoardListItem struct {
	Board
	ColumnCount int `json:"columnCount"`
	TaskCount   int `json:"taskCount"`
}

// BoardAggregate is the nested board shape rendered by clients: columns in
// visual order, each with its tasks in visual order.
type BoardAggregate struct {
	Board
	Columns []ColumnWithTasks `json:"columns"`
}

type ColumnWithTasks struct {
	Column
	Tasks []Task `json:"tasks"`
}

// BoardSummary is the counts-only variant of BoardAggregate.
type BoardSummary struct {
	Board
	Columns []ColumnCount `json:"columns"`
}

type ColumnCount struct {
	Column
	TaskCount int `json:"taskCount"`
}

// Column returns the column with the given id.
func (b *BoardAggregate) Column(id uuid.UUID) (*ColumnWithTasks, bool) {
	for i := range b.Columns {
		if b.Columns[i].ID == id {
			return &b.Columns[i], true
		}
	}
	return nil, false
}

// Clone returns a deep copy so callers can patch it without touching the original.
func (b BoardAggregate) Clone() BoardAggregate {
	out := b
	out.Columns = make([]ColumnWithTasks, len(b.Columns))
	for i, col := range b.Columns {
		out.Columns[i] = col
		out.Columns[i].Tasks = make([]Task, len(col.Tasks))
		for j, task := range col.Tasks {
			if task.Description != nil {
				d := *task.Description
				task.Description = &d
			}
			out.Columns[i].Tasks[j] = task
		}
	}
	return out
}

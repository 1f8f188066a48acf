// Package reconcile applies drag-and-drop moves to a local board snapshot
// before the server confirms them, and reconciles or rolls back once the
// move request resolves.
package reconcile

import (
	"errors"
	"fmt"
	"kanban/internal/database/models"
	"kanban/internal/ordering"

	"github.com/google/uuid"
)

var (
	ErrUnknownTask   = errors.New("reconcile: task not on board")
	ErrUnknownColumn = errors.New("reconcile: column not on board")
)

type Kind int

const (
	TaskDrag Kind = iota
	ColumnDrag
)

func (k Kind) String() string {
	if k == ColumnDrag {
		return "column"
	}
	return "task"
}

// DragResult is a completed drop. For a task drag ToColumn is the drop
// column; Index is always the zero-based visual index at the drop target.
type DragResult struct {
	Kind     Kind
	ID       uuid.UUID
	ToColumn uuid.UUID
	Index    int
}

// MoveTask builds the drag result for dropping a task.
func MoveTask(taskID, toColumn uuid.UUID, index int) DragResult {
	return DragResult{Kind: TaskDrag, ID: taskID, ToColumn: toColumn, Index: index}
}

// MoveColumn builds the drag result for dropping a column.
func MoveColumn(columnID uuid.UUID, index int) DragResult {
	return DragResult{Kind: ColumnDrag, ID: columnID, Index: index}
}

// Apply returns the snapshot as it looks after the drop. The input is never
// modified. Orders are renumbered the same way the server does, so a
// successful refetch normally leaves the view unchanged.
func Apply(snapshot models.BoardAggregate, ev DragResult) (models.BoardAggregate, error) {
	switch ev.Kind {
	case TaskDrag:
		return applyTask(snapshot, ev)
	case ColumnDrag:
		return applyColumn(snapshot, ev)
	default:
		return snapshot, fmt.Errorf("reconcile: unknown drag kind %d", ev.Kind)
	}
}

func applyTask(snapshot models.BoardAggregate, ev DragResult) (models.BoardAggregate, error) {
	from, ok := findTask(&snapshot, ev.ID)
	if !ok {
		return snapshot, ErrUnknownTask
	}
	if _, ok := snapshot.Column(ev.ToColumn); !ok {
		return snapshot, ErrUnknownColumn
	}

	next := snapshot.Clone()
	src, _ := next.Column(from)
	dst, _ := next.Column(ev.ToColumn)

	plan, err := ordering.Move(ev.ID, from, models.TaskItems(src.Tasks), ev.ToColumn, models.TaskItems(dst.Tasks), ev.Index)
	if err != nil {
		return snapshot, err
	}
	if plan.Empty() {
		return next, nil
	}

	byID := make(map[uuid.UUID]models.Task, len(src.Tasks)+len(dst.Tasks))
	for _, t := range src.Tasks {
		byID[t.ID] = t
	}
	for _, t := range dst.Tasks {
		byID[t.ID] = t
	}
	if !plan.SameParent() {
		src.Tasks = rebuildTasks(plan.Source, byID, src.ID)
	}
	dst.Tasks = rebuildTasks(plan.Dest, byID, dst.ID)
	return next, nil
}

func rebuildTasks(items []ordering.Item, byID map[uuid.UUID]models.Task, columnID uuid.UUID) []models.Task {
	out := make([]models.Task, 0, len(items))
	for _, it := range items {
		t := byID[it.ID]
		t.ColumnID = columnID
		t.Order = it.Order
		out = append(out, t)
	}
	return out
}

func applyColumn(snapshot models.BoardAggregate, ev DragResult) (models.BoardAggregate, error) {
	cols := make([]models.Column, len(snapshot.Columns))
	for i, c := range snapshot.Columns {
		cols[i] = c.Column
	}
	plan, err := ordering.Move(ev.ID, snapshot.ID, models.ColumnItems(cols), snapshot.ID, nil, ev.Index)
	if errors.Is(err, ordering.ErrNotFound) {
		return snapshot, ErrUnknownColumn
	}
	if err != nil {
		return snapshot, err
	}

	next := snapshot.Clone()
	if plan.Empty() {
		return next, nil
	}
	byID := make(map[uuid.UUID]models.ColumnWithTasks, len(next.Columns))
	for _, c := range next.Columns {
		byID[c.ID] = c
	}
	next.Columns = next.Columns[:0]
	for _, it := range plan.Dest {
		c := byID[it.ID]
		c.Order = it.Order
		next.Columns = append(next.Columns, c)
	}
	return next, nil
}

func findTask(b *models.BoardAggregate, taskID uuid.UUID) (uuid.UUID, bool) {
	for _, c := range b.Columns {
		for _, t := range c.Tasks {
			if t.ID == taskID {
				return c.ID, true
			}
		}
	}
	return uuid.Nil, false
}

package kanban

import (
	"context"
	"kanban/internal/apperr"
	"kanban/internal/database/dto"
	"kanban/internal/database/models"
	"kanban/internal/ordering"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// CreateTask appends a task to the end of the column.
func (s *Service) CreateTask(ctx context.Context, userID, columnID uuid.UUID, req dto.CreateTask) (*models.Task, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	var task *models.Task
	err := s.write(ctx, func(r repos) (uuid.UUID, error) {
		column, err := lockColumn(ctx, r, columnID, userID)
		if err != nil {
			return uuid.Nil, err
		}
		siblings, err := r.tasks.ListByColumn(ctx, column.ID)
		if err != nil {
			return uuid.Nil, err
		}
		task = &models.Task{
			ColumnID:    column.ID,
			BoardID:     column.BoardID,
			Title:       req.Title,
			Description: req.Description,
			Order:       ordering.Append(models.TaskItems(siblings)),
			AuthorID:    userID,
		}
		if req.Priority != nil {
			task.Priority = *req.Priority
		}
		return column.BoardID, r.tasks.Create(ctx, task)
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

// UpdateTask applies field edits and, when a column or order is given, moves
// the task. The move and the edits commit together or not at all.
//
// The target column defaults to the task's current one. The order is the
// zero-based index in the destination after the task has left its source
// and is clamped to the destination's length; a cross-column move without
// an order appends. A target column on another board is FORBIDDEN.
func (s *Service) UpdateTask(ctx context.Context, userID, taskID uuid.UUID, req dto.UpdateTask) (*models.Task, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	var task *models.Task
	err := s.write(ctx, func(r repos) (uuid.UUID, error) {
		var err error
		task, err = lockTask(ctx, r, taskID, userID)
		if err != nil {
			return uuid.Nil, err
		}
		if req.IsMove() {
			if err := s.moveTask(ctx, r, task, req.ColumnID, req.Order); err != nil {
				return uuid.Nil, err
			}
		}
		edited := applyTaskEdits(task, req)
		if edited {
			if err := r.tasks.Update(ctx, task); err != nil {
				return uuid.Nil, err
			}
		}
		if req.IsMove() && !edited {
			// Place stamps updated_at in SQL only.
			if task, err = r.tasks.GetByID(ctx, task.ID); err != nil {
				return uuid.Nil, err
			}
		}
		return task.BoardID, nil
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

// MoveTask is UpdateTask restricted to a move.
func (s *Service) MoveTask(ctx context.Context, userID, taskID, columnID uuid.UUID, index int) (*models.Task, error) {
	return s.UpdateTask(ctx, userID, taskID, dto.UpdateTask{ColumnID: &columnID, Order: &index})
}

func (s *Service) moveTask(ctx context.Context, r repos, task *models.Task, columnID *uuid.UUID, order *int) error {
	from := task.ColumnID
	to := from
	if columnID != nil {
		to = *columnID
	}

	if to != from {
		target, err := r.columns.GetByID(ctx, to)
		if err != nil {
			return err
		}
		if target.BoardID != task.BoardID {
			return apperr.Forbidden("target column belongs to another board")
		}
	}

	source, err := r.tasks.ListByColumn(ctx, from)
	if err != nil {
		return err
	}
	sourceItems := models.TaskItems(source)

	var destItems []ordering.Item
	if to != from {
		dest, err := r.tasks.ListByColumn(ctx, to)
		if err != nil {
			return err
		}
		destItems = models.TaskItems(dest)
	}

	index := len(destItems)
	if to == from {
		index = ordering.IndexOf(sourceItems, task.ID)
	}
	if order != nil {
		index = *order
	}

	plan, err := ordering.Move(task.ID, from, sourceItems, to, destItems, index)
	if err != nil {
		return err
	}
	for _, change := range plan.Changes() {
		if err := r.tasks.Place(ctx, change.ID, change.Parent, change.Order); err != nil {
			return err
		}
	}
	task.ColumnID = to
	task.Order = plan.Moved.Order

	s.log.WithFields(log.Fields{
		"board":   task.BoardID,
		"task":    task.ID,
		"from":    from,
		"to":      to,
		"index":   index,
		"changes": len(plan.Changes()),
	}).Debug("task moved")
	return nil
}

// applyTaskEdits copies the non-move fields of req onto task and reports
// whether anything changed. An empty description clears it.
func applyTaskEdits(task *models.Task, req dto.UpdateTask) bool {
	changed := false
	if req.Title != nil && *req.Title != task.Title {
		task.Title = *req.Title
		changed = true
	}
	if req.Description != nil {
		var next *string
		if *req.Description != "" {
			d := *req.Description
			next = &d
		}
		if !sameString(task.Description, next) {
			task.Description = next
			changed = true
		}
	}
	if req.Priority != nil && *req.Priority != task.Priority {
		task.Priority = *req.Priority
		changed = true
	}
	return changed
}

func sameString(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// DeleteTask removes the task and its comments. Siblings keep their order values.
func (s *Service) DeleteTask(ctx context.Context, userID, taskID uuid.UUID) error {
	return s.write(ctx, func(r repos) (uuid.UUID, error) {
		task, err := lockTask(ctx, r, taskID, userID)
		if err != nil {
			return uuid.Nil, err
		}
		return task.BoardID, r.tasks.Delete(ctx, task.ID)
	})
}

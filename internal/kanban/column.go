package kanban

import (
	"context"
	"kanban/internal/database/dto"
	"kanban/internal/database/models"
	"kanban/internal/ordering"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// CreateColumn appends a column after the board's current last column.
func (s *Service) CreateColumn(ctx context.Context, userID, boardID uuid.UUID, req dto.CreateColumn) (*models.Column, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	column := &models.Column{BoardID: boardID, Title: req.Title}
	err := s.write(ctx, func(r repos) (uuid.UUID, error) {
		if _, err := lockBoard(ctx, r, boardID, userID); err != nil {
			return uuid.Nil, err
		}
		siblings, err := r.columns.ListByBoard(ctx, boardID)
		if err != nil {
			return uuid.Nil, err
		}
		column.Order = ordering.Append(models.ColumnItems(siblings))
		return boardID, r.columns.Create(ctx, column)
	})
	if err != nil {
		return nil, err
	}
	return column, nil
}

// UpdateColumn renames the column and/or moves it to a new visual index
// among the board's columns.
func (s *Service) UpdateColumn(ctx context.Context, userID, columnID uuid.UUID, req dto.UpdateColumn) (*models.Column, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	var column *models.Column
	err := s.write(ctx, func(r repos) (uuid.UUID, error) {
		var err error
		column, err = lockColumn(ctx, r, columnID, userID)
		if err != nil {
			return uuid.Nil, err
		}
		if req.Title != nil && *req.Title != column.Title {
			column.Title = *req.Title
			if err := r.columns.Rename(ctx, column); err != nil {
				return uuid.Nil, err
			}
		}
		if req.Order != nil {
			if err := s.moveColumn(ctx, r, column, *req.Order); err != nil {
				return uuid.Nil, err
			}
		}
		return column.BoardID, nil
	})
	if err != nil {
		return nil, err
	}
	return column, nil
}

func (s *Service) moveColumn(ctx context.Context, r repos, column *models.Column, index int) error {
	siblings, err := r.columns.ListByBoard(ctx, column.BoardID)
	if err != nil {
		return err
	}
	items := models.ColumnItems(siblings)
	plan, err := ordering.Move(column.ID, column.BoardID, items, column.BoardID, nil, index)
	if err != nil {
		return err
	}
	for _, change := range plan.Changes() {
		if err := r.columns.SetPosition(ctx, change.ID, change.Order); err != nil {
			return err
		}
	}
	column.Order = plan.Moved.Order
	s.log.WithFields(log.Fields{
		"board":   column.BoardID,
		"column":  column.ID,
		"index":   index,
		"changes": len(plan.Changes()),
	}).Debug("column moved")
	return nil
}

// DeleteColumn removes the column with its tasks and their comments. The
// remaining columns keep their order values.
func (s *Service) DeleteColumn(ctx context.Context, userID, columnID uuid.UUID) error {
	return s.write(ctx, func(r repos) (uuid.UUID, error) {
		column, err := lockColumn(ctx, r, columnID, userID)
		if err != nil {
			return uuid.Nil, err
		}
		return column.BoardID, r.columns.Delete(ctx, column.ID)
	})
}

package kanban

import (
	"context"
	"kanban/internal/database/dto"
	"kanban/internal/database/models"
	"kanban/internal/database/repositories"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// ListBoards returns one page of the user's boards with column and task counts.
func (s *Service) ListBoards(ctx context.Context, userID uuid.UUID, page dto.Page) (*dto.BoardPage, error) {
	if err := page.Normalize(); err != nil {
		return nil, err
	}
	boards := repositories.NewBoardRepository(s.db.DB())
	total, err := boards.Count(ctx, userID)
	if err != nil {
		return nil, err
	}
	items, err := boards.List(ctx, userID, page.Limit(), page.Offset())
	if err != nil {
		return nil, err
	}
	return &dto.BoardPage{
		Boards:     items,
		Page:       page.Page,
		PageSize:   page.PageSize,
		Total:      total,
		TotalPages: page.TotalPages(total),
	}, nil
}

func (s *Service) CreateBoard(ctx context.Context, userID uuid.UUID, req dto.CreateBoard) (*models.Board, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	board := &models.Board{Name: req.Name, OwnerID: userID}
	if err := repositories.NewBoardRepository(s.db.DB()).Create(ctx, board); err != nil {
		return nil, err
	}
	s.log.WithFields(log.Fields{"board": board.ID, "user": userID}).Debug("board created")
	return board, nil
}

func (s *Service) RenameBoard(ctx context.Context, userID, boardID uuid.UUID, req dto.UpdateBoard) (*models.Board, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	var board *models.Board
	err := s.write(ctx, func(r repos) (uuid.UUID, error) {
		var err error
		board, err = lockBoard(ctx, r, boardID, userID)
		if err != nil {
			return uuid.Nil, err
		}
		board.Name = req.Name
		return board.ID, r.boards.Rename(ctx, board)
	})
	if err != nil {
		return nil, err
	}
	return board, nil
}

// DeleteBoard removes the board together with its columns, tasks and comments.
func (s *Service) DeleteBoard(ctx context.Context, userID, boardID uuid.UUID) error {
	return s.write(ctx, func(r repos) (uuid.UUID, error) {
		if _, err := lockBoard(ctx, r, boardID, userID); err != nil {
			return uuid.Nil, err
		}
		return boardID, r.boards.Delete(ctx, boardID)
	})
}

// LoadBoard returns the board with columns and tasks in visual order. A board
// owned by someone else is FORBIDDEN, a missing one NOT_FOUND.
func (s *Service) LoadBoard(ctx context.Context, userID, boardID uuid.UUID) (*models.BoardAggregate, error) {
	if agg, ok := s.cache.Aggregate(ctx, boardID); ok {
		if err := authorize(&agg.Board, userID); err != nil {
			return nil, err
		}
		return agg, nil
	}

	stamp := s.cache.Stamp(ctx, boardID)
	var agg *models.BoardAggregate
	err := s.read(ctx, func(r repos) error {
		board, err := ownedBoard(ctx, r, boardID, userID)
		if err != nil {
			return err
		}
		columns, err := r.columns.ListByBoard(ctx, boardID)
		if err != nil {
			return err
		}
		tasks, err := r.tasks.ListByBoard(ctx, boardID)
		if err != nil {
			return err
		}
		agg = assemble(*board, columns, tasks)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.cache.StoreAggregate(ctx, agg, stamp)
	return agg, nil
}

// LoadBoardSummary is the counts-only variant of LoadBoard.
func (s *Service) LoadBoardSummary(ctx context.Context, userID, boardID uuid.UUID) (*models.BoardSummary, error) {
	if sum, ok := s.cache.Summary(ctx, boardID); ok {
		if err := authorize(&sum.Board, userID); err != nil {
			return nil, err
		}
		return sum, nil
	}

	stamp := s.cache.Stamp(ctx, boardID)
	var sum *models.BoardSummary
	err := s.read(ctx, func(r repos) error {
		board, err := ownedBoard(ctx, r, boardID, userID)
		if err != nil {
			return err
		}
		counts, err := r.columns.CountTasks(ctx, boardID)
		if err != nil {
			return err
		}
		sum = &models.BoardSummary{Board: *board, Columns: counts}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.cache.StoreSummary(ctx, sum, stamp)
	return sum, nil
}

// assemble nests tasks under their columns, both in visual order.
func assemble(board models.Board, columns []models.Column, tasks []models.Task) *models.BoardAggregate {
	models.SortColumns(columns)
	byColumn := make(map[uuid.UUID][]models.Task, len(columns))
	for _, t := range tasks {
		byColumn[t.ColumnID] = append(byColumn[t.ColumnID], t)
	}
	agg := &models.BoardAggregate{Board: board, Columns: make([]models.ColumnWithTasks, 0, len(columns))}
	for _, c := range columns {
		colTasks := byColumn[c.ID]
		if colTasks == nil {
			colTasks = []models.Task{}
		}
		models.SortTasks(colTasks)
		agg.Columns = append(agg.Columns, models.ColumnWithTasks{Column: c, Tasks: colTasks})
	}
	return agg
}

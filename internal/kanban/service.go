// Package kanban implements board, column, task and comment operations on top
// of the repositories. Every write that touches sibling order runs in one
// transaction holding the owning board's row lock, so concurrent moves on the
// same board are serialized by the database rather than by this process.
package kanban

import (
	"context"
	"database/sql"
	"kanban/internal/apperr"
	"kanban/internal/cache"
	"kanban/internal/database"
	"kanban/internal/database/models"
	"kanban/internal/database/repositories"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

type Service struct {
	db    database.Service
	cache *cache.BoardCache
	log   *log.Logger
}

func NewService(db database.Service, boardCache *cache.BoardCache, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Service{db: db, cache: boardCache, log: logger}
}

// repos bundles the repositories bound to one transaction.
type repos struct {
	boards   repositories.BoardRepository
	columns  repositories.ColumnRepository
	tasks    repositories.TaskRepository
	comments repositories.CommentRepository
}

func newRepos(db repositories.DBTX) repos {
	return repos{
		boards:   repositories.NewBoardRepository(db),
		columns:  repositories.NewColumnRepository(db),
		tasks:    repositories.NewTaskRepository(db),
		comments: repositories.NewCommentRepository(db),
	}
}

// write runs fn in a read-committed transaction and evicts the cached views
// of the board it reports as touched once the transaction has committed.
func (s *Service) write(ctx context.Context, fn func(r repos) (uuid.UUID, error)) error {
	var boardID uuid.UUID
	err := s.db.WithTx(ctx, nil, func(tx *sql.Tx) error {
		var err error
		boardID, err = fn(newRepos(tx))
		return err
	})
	if err != nil {
		return err
	}
	if boardID != uuid.Nil {
		s.cache.Evict(ctx, boardID)
	}
	return nil
}

// read runs fn in a read-only repeatable-read transaction so nested reads
// see one snapshot.
func (s *Service) read(ctx context.Context, fn func(r repos) error) error {
	opts := &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}
	return s.db.WithTx(ctx, opts, func(tx *sql.Tx) error {
		return fn(newRepos(tx))
	})
}

func authorize(board *models.Board, userID uuid.UUID) error {
	if board.OwnerID != userID {
		return apperr.Forbidden("board belongs to another user")
	}
	return nil
}

// ownedBoard loads the board and checks ownership without locking.
func ownedBoard(ctx context.Context, r repos, boardID, userID uuid.UUID) (*models.Board, error) {
	board, err := r.boards.GetByID(ctx, boardID)
	if err != nil {
		return nil, err
	}
	return board, authorize(board, userID)
}

// lockBoard takes the board row lock and checks ownership.
func lockBoard(ctx context.Context, r repos, boardID, userID uuid.UUID) (*models.Board, error) {
	board, err := r.boards.Lock(ctx, boardID)
	if err != nil {
		return nil, err
	}
	return board, authorize(board, userID)
}

// lockColumn resolves a column, locks its board and checks ownership. The
// column is re-read after the lock so its values are current.
func lockColumn(ctx context.Context, r repos, columnID, userID uuid.UUID) (*models.Column, error) {
	column, err := r.columns.GetByID(ctx, columnID)
	if err != nil {
		return nil, err
	}
	if _, err := lockBoard(ctx, r, column.BoardID, userID); err != nil {
		return nil, err
	}
	return r.columns.GetByID(ctx, columnID)
}

// lockTask resolves a task, locks its board and checks ownership. The task is
// re-read after the lock so its column and position are current.
func lockTask(ctx context.Context, r repos, taskID, userID uuid.UUID) (*models.Task, error) {
	task, err := r.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if _, err := lockBoard(ctx, r, task.BoardID, userID); err != nil {
		return nil, err
	}
	return r.tasks.GetByID(ctx, taskID)
}

// ownedTask resolves a task and checks ownership of its board without locking.
func ownedTask(ctx context.Context, r repos, taskID, userID uuid.UUID) (*models.Task, error) {
	task, err := r.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if _, err := ownedBoard(ctx, r, task.BoardID, userID); err != nil {
		return nil, err
	}
	return task, nil
}

package repositories

import (
	"context"
	"database/sql"
	"errors"
	"kanban/internal/apperr"
	"kanban/internal/database"
	"kanban/internal/database/models"

	"github.com/google/uuid"
)

type BoardRepository interface {
	Create(ctx context.Context, board *models.Board) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Board, error)
	// Lock reads the board with a row lock held until the transaction ends.
	// Every ordering mutation inside a board takes this lock first.
	Lock(ctx context.Context, id uuid.UUID) (*models.Board, error)
	List(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]models.BoardListItem, error)
	Count(ctx context.Context, ownerID uuid.UUID) (int, error)
	Rename(ctx context.Context, board *models.Board) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type boardRepository struct {
	db DBTX
}

func NewBoardRepository(db DBTX) BoardRepository {
	return &boardRepository{db: db}
}

func (r *boardRepository) Create(ctx context.Context, board *models.Board) error {
	query := `
		INSERT INTO boards (name, owner_id, created_at, updated_at)
		VALUES ($1, $2, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		RETURNING id, created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query, board.Name, board.OwnerID).Scan(&board.ID, &board.CreatedAt, &board.UpdatedAt)
	if err != nil {
		return database.MapError("error creating board", err)
	}
	return nil
}

func (r *boardRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Board, error) {
	return r.get(ctx, `SELECT id, name, owner_id, created_at, updated_at FROM boards WHERE id = $1`, id)
}

func (r *boardRepository) Lock(ctx context.Context, id uuid.UUID) (*models.Board, error) {
	return r.get(ctx, `SELECT id, name, owner_id, created_at, updated_at FROM boards WHERE id = $1 FOR UPDATE`, id)
}

func (r *boardRepository) get(ctx context.Context, query string, id uuid.UUID) (*models.Board, error) {
	board := models.Board{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&board.ID, &board.Name, &board.OwnerID, &board.CreatedAt, &board.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("board")
	}
	if err != nil {
		return nil, database.MapError("error getting board", err)
	}
	return &board, nil
}

func (r *boardRepository) List(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]models.BoardListItem, error) {
	query := `
		SELECT b.id, b.name, b.owner_id, b.created_at, b.updated_at,
		       (SELECT COUNT(*) FROM columns c WHERE c.board_id = b.id),
		       (SELECT COUNT(*) FROM tasks t WHERE t.board_id = b.id)
		FROM boards b
		WHERE b.owner_id = $1
		ORDER BY b.created_at DESC, b.id
		LIMIT $2 OFFSET $3`
	result, err := r.db.QueryContext(ctx, query, ownerID, limit, offset)
	if err != nil {
		return nil, database.MapError("error querying boards", err)
	}
	defer result.Close()
	boards := []models.BoardListItem{}
	for result.Next() {
		var b models.BoardListItem
		err := result.Scan(
			&b.ID,
			&b.Name,
			&b.OwnerID,
			&b.CreatedAt,
			&b.UpdatedAt,
			&b.ColumnCount,
			&b.TaskCount,
		)
		if err != nil {
			return nil, database.MapError("error scanning board", err)
		}
		boards = append(boards, b)
	}
	if err = result.Err(); err != nil {
		return nil, database.MapError("error iterating boards", err)
	}
	return boards, nil
}

func (r *boardRepository) Count(ctx context.Context, ownerID uuid.UUID) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM boards WHERE owner_id = $1`, ownerID).Scan(&n)
	if err != nil {
		return 0, database.MapError("error counting boards", err)
	}
	return n, nil
}

func (r *boardRepository) Rename(ctx context.Context, board *models.Board) error {
	query := `
		UPDATE boards
		SET name = $1, updated_at = CURRENT_TIMESTAMP
		WHERE id = $2
		RETURNING updated_at`
	err := r.db.QueryRowContext(ctx, query, board.Name, board.ID).Scan(&board.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.NotFound("board")
	}
	if err != nil {
		return database.MapError("error updating board", err)
	}
	return nil
}

// Delete removes the board; columns, tasks and comments cascade.
func (r *boardRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM boards WHERE id = $1`, id)
	if err != nil {
		return database.MapError("error deleting board", err)
	}
	return expectRows(result, "board")
}

func expectRows(result sql.Result, entity string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return database.MapError("error getting rows affected", err)
	}
	if rowsAffected == 0 {
		return apperr.NotFound(entity)
	}
	return nil
}

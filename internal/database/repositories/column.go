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

type ColumnRepository interface {
	Create(ctx context.Context, column *models.Column) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Column, error)
	ListByBoard(ctx context.Context, boardID uuid.UUID) ([]models.Column, error)
	CountTasks(ctx context.Context, boardID uuid.UUID) ([]models.ColumnCount, error)
	Rename(ctx context.Context, column *models.Column) error
	SetPosition(ctx context.Context, id uuid.UUID, position int) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type columnRepository struct {
	db DBTX
}

func NewColumnRepository(db DBTX) ColumnRepository {
	return &columnRepository{db: db}
}

const columnFields = `id, board_id, title, position, created_at, updated_at`

func scanColumn(row interface{ Scan(...any) error }, c *models.Column) error {
	return row.Scan(&c.ID, &c.BoardID, &c.Title, &c.Order, &c.CreatedAt, &c.UpdatedAt)
}

func (r *columnRepository) Create(ctx context.Context, column *models.Column) error {
	query := `
		INSERT INTO columns (board_id, title, position, created_at, updated_at)
		VALUES ($1, $2, $3, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		RETURNING id, created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query, column.BoardID, column.Title, column.Order).Scan(&column.ID, &column.CreatedAt, &column.UpdatedAt)
	if err != nil {
		return database.MapError("error creating column", err)
	}
	return nil
}

func (r *columnRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Column, error) {
	column := models.Column{}
	err := scanColumn(r.db.QueryRowContext(ctx, `SELECT `+columnFields+` FROM columns WHERE id = $1`, id), &column)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("column")
	}
	if err != nil {
		return nil, database.MapError("error getting column", err)
	}
	return &column, nil
}

func (r *columnRepository) ListByBoard(ctx context.Context, boardID uuid.UUID) ([]models.Column, error) {
	query := `SELECT ` + columnFields + ` FROM columns WHERE board_id = $1 ORDER BY position, created_at, id`
	result, err := r.db.QueryContext(ctx, query, boardID)
	if err != nil {
		return nil, database.MapError("error querying columns", err)
	}
	defer result.Close()
	columns := []models.Column{}
	for result.Next() {
		var c models.Column
		if err := scanColumn(result, &c); err != nil {
			return nil, database.MapError("error scanning column", err)
		}
		columns = append(columns, c)
	}
	if err = result.Err(); err != nil {
		return nil, database.MapError("error iterating columns", err)
	}
	models.SortColumns(columns)
	return columns, nil
}

func (r *columnRepository) CountTasks(ctx context.Context, boardID uuid.UUID) ([]models.ColumnCount, error) {
	query := `
		SELECT c.id, c.board_id, c.title, c.position, c.created_at, c.updated_at, COUNT(t.id)
		FROM columns c
		LEFT JOIN tasks t ON t.column_id = c.id
		WHERE c.board_id = $1
		GROUP BY c.id
		ORDER BY c.position, c.created_at, c.id`
	result, err := r.db.QueryContext(ctx, query, boardID)
	if err != nil {
		return nil, database.MapError("error counting tasks", err)
	}
	defer result.Close()
	counts := []models.ColumnCount{}
	for result.Next() {
		var cc models.ColumnCount
		err := result.Scan(&cc.ID, &cc.BoardID, &cc.Title, &cc.Order, &cc.CreatedAt, &cc.UpdatedAt, &cc.TaskCount)
		if err != nil {
			return nil, database.MapError("error scanning column count", err)
		}
		counts = append(counts, cc)
	}
	if err = result.Err(); err != nil {
		return nil, database.MapError("error iterating column counts", err)
	}
	return counts, nil
}

func (r *columnRepository) Rename(ctx context.Context, column *models.Column) error {
	query := `
		UPDATE columns
		SET title = $1, updated_at = CURRENT_TIMESTAMP
		WHERE id = $2
		RETURNING updated_at`
	err := r.db.QueryRowContext(ctx, query, column.Title, column.ID).Scan(&column.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.NotFound("column")
	}
	if err != nil {
		return database.MapError("error updating column", err)
	}
	return nil
}

func (r *columnRepository) SetPosition(ctx context.Context, id uuid.UUID, position int) error {
	query := `UPDATE columns SET position = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, position, id)
	if err != nil {
		return database.MapError("error moving column", err)
	}
	return expectRows(result, "column")
}

// Delete removes the column; its tasks and their comments cascade.
func (r *columnRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM columns WHERE id = $1`, id)
	if err != nil {
		return database.MapError("error deleting column", err)
	}
	return expectRows(result, "column")
}

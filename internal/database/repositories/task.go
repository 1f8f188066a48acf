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

type TaskRepository interface {
	Create(ctx context.Context, task *models.Task) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Task, error)
	ListByColumn(ctx context.Context, columnID uuid.UUID) ([]models.Task, error)
	ListByBoard(ctx context.Context, boardID uuid.UUID) ([]models.Task, error)
	Update(ctx context.Context, task *models.Task) error
	// Place sets the task's column and position. Only the ordering
	// code in the kanban service calls it.
	Place(ctx context.Context, id, columnID uuid.UUID, position int) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type taskRepository struct {
	db DBTX
}

func NewTaskRepository(db DBTX) TaskRepository {
	return &taskRepository{db: db}
}

const taskFields = `id, column_id, board_id, title, description, priority, position, author_id, created_at, updated_at`

func scanTask(row interface{ Scan(...any) error }, t *models.Task) error {
	var description sql.NullString
	err := row.Scan(
		&t.ID,
		&t.ColumnID,
		&t.BoardID,
		&t.Title,
		&description,
		&t.Priority,
		&t.Order,
		&t.AuthorID,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	t.Description = stringPtr(description)
	return err
}

func (r *taskRepository) Create(ctx context.Context, task *models.Task) error {
	if task.Priority == "" {
		task.Priority = models.PriorityMedium
	}
	query := `
		INSERT INTO tasks (column_id, board_id, title, description, priority, position, author_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		RETURNING id, created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query,
		task.ColumnID, task.BoardID, task.Title, nullString(task.Description), string(task.Priority), task.Order, task.AuthorID,
	).Scan(&task.ID, &task.CreatedAt, &task.UpdatedAt)
	if err != nil {
		return database.MapError("error creating task", err)
	}
	return nil
}

func (r *taskRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	task := models.Task{}
	err := scanTask(r.db.QueryRowContext(ctx, `SELECT `+taskFields+` FROM tasks WHERE id = $1`, id), &task)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("task")
	}
	if err != nil {
		return nil, database.MapError("error getting task", err)
	}
	return &task, nil
}

func (r *taskRepository) ListByColumn(ctx context.Context, columnID uuid.UUID) ([]models.Task, error) {
	return r.list(ctx, `SELECT `+taskFields+` FROM tasks WHERE column_id = $1 ORDER BY position, created_at, id`, columnID)
}

func (r *taskRepository) ListByBoard(ctx context.Context, boardID uuid.UUID) ([]models.Task, error) {
	return r.list(ctx, `SELECT `+taskFields+` FROM tasks WHERE board_id = $1 ORDER BY column_id, position, created_at, id`, boardID)
}

func (r *taskRepository) list(ctx context.Context, query string, id uuid.UUID) ([]models.Task, error) {
	result, err := r.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, database.MapError("error querying tasks", err)
	}
	defer result.Close()
	tasks := []models.Task{}
	for result.Next() {
		var task models.Task
		if err := scanTask(result, &task); err != nil {
			return nil, database.MapError("error scanning task", err)
		}
		tasks = append(tasks, task)
	}
	if err = result.Err(); err != nil {
		return nil, database.MapError("error iterating tasks", err)
	}
	return tasks, nil
}

func (r *taskRepository) Update(ctx context.Context, task *models.Task) error {
	query := `
		UPDATE tasks
		SET title = $1, description = $2, priority = $3, updated_at = CURRENT_TIMESTAMP
		WHERE id = $4
		RETURNING updated_at`
	err := r.db.QueryRowContext(ctx, query, task.Title, nullString(task.Description), string(task.Priority), task.ID).Scan(&task.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.NotFound("task")
	}
	if err != nil {
		return database.MapError("error updating task", err)
	}
	return nil
}

func (r *taskRepository) Place(ctx context.Context, id, columnID uuid.UUID, position int) error {
	query := `
		UPDATE tasks
		SET column_id = $1, position = $2, updated_at = CURRENT_TIMESTAMP
		WHERE id = $3`
	result, err := r.db.ExecContext(ctx, query, columnID, position, id)
	if err != nil {
		return database.MapError("error moving task", err)
	}
	return expectRows(result, "task")
}

// Delete removes the task; its comments cascade.
func (r *taskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return database.MapError("error deleting task", err)
	}
	return expectRows(result, "task")
}

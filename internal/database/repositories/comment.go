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

type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Comment, error)
	ListByTask(ctx context.Context, taskID uuid.UUID) ([]models.Comment, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type commentRepository struct {
	db DBTX
}

func NewCommentRepository(db DBTX) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	query := `
		INSERT INTO comments (task_id, author_id, body, created_at)
		VALUES ($1, $2, $3, CURRENT_TIMESTAMP)
		RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, query, comment.TaskID, comment.AuthorID, comment.Body).Scan(&comment.ID, &comment.CreatedAt)
	if err != nil {
		return database.MapError("error creating comment", err)
	}
	return nil
}

func (r *commentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	comment := models.Comment{}
	query := `SELECT id, task_id, author_id, body, created_at FROM comments WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(&comment.ID, &comment.TaskID, &comment.AuthorID, &comment.Body, &comment.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("comment")
	}
	if err != nil {
		return nil, database.MapError("error getting comment", err)
	}
	return &comment, nil
}

func (r *commentRepository) ListByTask(ctx context.Context, taskID uuid.UUID) ([]models.Comment, error) {
	query := `SELECT id, task_id, author_id, body, created_at FROM comments WHERE task_id = $1 ORDER BY created_at, id`
	result, err := r.db.QueryContext(ctx, query, taskID)
	if err != nil {
		return nil, database.MapError("error querying comments", err)
	}
	defer result.Close()
	comments := []models.Comment{}
	for result.Next() {
		var comment models.Comment
		err := result.Scan(
			&comment.ID,
			&comment.TaskID,
			&comment.AuthorID,
			&comment.Body,
			&comment.CreatedAt,
		)
		if err != nil {
			return nil, database.MapError("error scanning comment", err)
		}
		comments = append(comments, comment)
	}
	if err = result.Err(); err != nil {
		return nil, database.MapError("error iterating comments", err)
	}
	return comments, nil
}

func (r *commentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return database.MapError("error deleting comment", err)
	}
	return expectRows(result, "comment")
}

package kanban

import (
	"context"
	"kanban/internal/apperr"
	"kanban/internal/database/dto"
	"kanban/internal/database/models"
	"kanban/internal/database/repositories"

	"github.com/google/uuid"
)

// ListComments returns the task's comments, oldest first.
func (s *Service) ListComments(ctx context.Context, userID, taskID uuid.UUID) ([]models.Comment, error) {
	var comments []models.Comment
	err := s.read(ctx, func(r repos) error {
		if _, err := ownedTask(ctx, r, taskID, userID); err != nil {
			return err
		}
		var err error
		comments, err = r.comments.ListByTask(ctx, taskID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return comments, nil
}

func (s *Service) AddComment(ctx context.Context, userID, taskID uuid.UUID, req dto.CreateComment) (*models.Comment, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	comment := &models.Comment{TaskID: taskID, AuthorID: userID, Body: req.Body}
	err := s.write(ctx, func(r repos) (uuid.UUID, error) {
		if _, err := ownedTask(ctx, r, taskID, userID); err != nil {
			return uuid.Nil, err
		}
		// Comments are not part of the cached board views.
		return uuid.Nil, r.comments.Create(ctx, comment)
	})
	if err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *Service) DeleteComment(ctx context.Context, userID, taskID, commentID uuid.UUID) error {
	return s.write(ctx, func(r repos) (uuid.UUID, error) {
		if _, err := ownedTask(ctx, r, taskID, userID); err != nil {
			return uuid.Nil, err
		}
		comment, err := r.comments.GetByID(ctx, commentID)
		if err != nil {
			return uuid.Nil, err
		}
		if comment.TaskID != taskID {
			return uuid.Nil, apperr.NotFound("comment")
		}
		return uuid.Nil, r.comments.Delete(ctx, commentID)
	})
}

const maxSearchResults = 50

// SearchTasks finds tasks on the user's boards by title or description.
func (s *Service) SearchTasks(ctx context.Context, userID uuid.UUID, query string) ([]models.Task, error) {
	return repositories.NewSearchRepository(s.db.DB()).SearchTasks(ctx, query, userID, maxSearchResults)
}

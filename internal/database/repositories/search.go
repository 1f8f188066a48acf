package repositories

import (
	"context"
	"kanban/internal/database"
	"kanban/internal/database/models"
	"strings"
	"unicode"

	"github.com/google/uuid"
)

type SearchRepository interface {
	SearchTasks(ctx context.Context, query string, ownerID uuid.UUID, limit int) ([]models.Task, error)
}

type searchRepository struct {
	db DBTX
}

func NewSearchRepository(db DBTX) SearchRepository {
	return &searchRepository{db: db}
}

// SearchTasks runs a prefix full-text search over the titles and descriptions
// of tasks on boards owned by ownerID, best matches first.
func (s *searchRepository) SearchTasks(ctx context.Context, query string, ownerID uuid.UUID, limit int) ([]models.Task, error) {
	formatted := formatTsQuery(query)
	if formatted == "" {
		return []models.Task{}, nil
	}
	tasksQuery := `
		SELECT t.id, t.column_id, t.board_id, t.title, t.description, t.priority, t.position, t.author_id, t.created_at, t.updated_at
		FROM tasks t
		JOIN boards b ON b.id = t.board_id
		WHERE b.owner_id = $2
		  AND to_tsvector('english', t.title || ' ' || coalesce(t.description, '')) @@ to_tsquery('english', $1)
		ORDER BY ts_rank(to_tsvector('english', t.title || ' ' || coalesce(t.description, '')), to_tsquery('english', $1)) DESC, t.id
		LIMIT $3`

	rows, err := s.db.QueryContext(ctx, tasksQuery, formatted, ownerID, limit)
	if err != nil {
		return nil, database.MapError("error searching tasks", err)
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		var task models.Task
		if err := scanTask(rows, &task); err != nil {
			return nil, database.MapError("error scanning task", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, database.MapError("error iterating tasks", err)
	}
	return tasks, nil
}

func formatTsQuery(query string) string {
	// Split the query into words
	words := strings.FieldsFunc(query, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	// Prefix-match every word
	for i, word := range words {
		words[i] = word + ":*"
	}

	// Join with & for AND operations
	return strings.Join(words, " & ")
}

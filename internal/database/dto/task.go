package dto

import (
	"kanban/internal/database/models"
	"strings"

	"github.com/google/uuid"
)

type CreateTask struct {
	Title       string           `json:"title"`
	Description *string          `json:"description"`
	Priority    *models.Priority `json:"priority"`
}

func (t *CreateTask) Validate() error {
	t.Title = strings.TrimSpace(t.Title)
	v := validator{}
	if v.require("title", t.Title) {
		v.maxLen("title", t.Title, maxTitleLength)
	}
	t.Description = normalizeDescription(&v, t.Description)
	validatePriority(&v, t.Priority)
	return v.err()
}

// UpdateTask edits task fields and/or moves the task. ColumnID is the target
// column (absent or equal to the current one for an in-column reorder) and
// Order the target zero-based visual index inside it.
type UpdateTask struct {
	ColumnID    *uuid.UUID       `json:"columnId"`
	Order       *int             `json:"order"`
	Title       *string          `json:"title"`
	Description *string          `json:"description"`
	Priority    *models.Priority `json:"priority"`
}

func (t *UpdateTask) Validate() error {
	v := validator{}
	if t.ColumnID == nil && t.Order == nil && t.Title == nil && t.Description == nil && t.Priority == nil {
		v.add("body", "no fields to update")
	}
	if t.ColumnID != nil && *t.ColumnID == uuid.Nil {
		v.add("columnId", "must be a valid id")
	}
	v.nonNegative("order", t.Order)
	if t.Title != nil {
		title := strings.TrimSpace(*t.Title)
		t.Title = &title
		if v.require("title", title) {
			v.maxLen("title", title, maxTitleLength)
		}
	}
	if t.Description != nil {
		d := strings.TrimSpace(*t.Description)
		t.Description = &d
		v.maxLen("description", d, maxBodyLength)
	}
	validatePriority(&v, t.Priority)
	return v.err()
}

// IsMove reports whether the update changes the task's column or position.
func (t *UpdateTask) IsMove() bool {
	return t.ColumnID != nil || t.Order != nil
}

func normalizeDescription(v *validator, d *string) *string {
	if d == nil {
		return nil
	}
	s := strings.TrimSpace(*d)
	if s == "" {
		return nil
	}
	v.maxLen("description", s, maxBodyLength)
	return &s
}

func validatePriority(v *validator, p *models.Priority) {
	if p != nil && !p.Valid() {
		v.add("priority", "must be one of low, medium, high")
	}
}

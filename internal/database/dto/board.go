package dto

import (
	"kanban/internal/database/models"
	"strings"
)

const (
	maxNameLength  = 200
	maxTitleLength = 200
	maxBodyLength  = 10000
)

type CreateBoard struct {
	Name string `json:"name"`
}

func (b *CreateBoard) Validate() error {
	b.Name = strings.TrimSpace(b.Name)
	v := validator{}
	if v.require("name", b.Name) {
		v.maxLen("name", b.Name, maxNameLength)
	}
	return v.err()
}

type UpdateBoard struct {
	Name string `json:"name"`
}

func (b *UpdateBoard) Validate() error {
	b.Name = strings.TrimSpace(b.Name)
	v := validator{}
	if v.require("name", b.Name) {
		v.maxLen("name", b.Name, maxNameLength)
	}
	return v.err()
}

type BoardResponse struct {
	Board *models.BoardAggregate `json:"board"`
}

type BoardSummaryResponse struct {
	Board *models.BoardSummary `json:"board"`
}

type BoardPage struct {
	Boards     []models.BoardListItem `json:"boards"`
	Page       int                    `json:"page"`
	PageSize   int                    `json:"pageSize"`
	Total      int                    `json:"total"`
	TotalPages int                    `json:"totalPages"`
}

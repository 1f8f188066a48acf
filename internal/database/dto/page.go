package dto

import "kanban/internal/apperr"

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Page is a 1-based page request.
type Page struct {
	Page     int `query:"page"`
	PageSize int `query:"pageSize"`
}

// Normalize fills defaults and rejects out-of-range values.
func (p *Page) Normalize() error {
	v := validator{}
	if p.Page == 0 {
		p.Page = 1
	}
	if p.PageSize == 0 {
		p.PageSize = DefaultPageSize
	}
	if p.Page < 1 {
		v.add("page", "must be at least 1")
	}
	if p.PageSize < 1 || p.PageSize > MaxPageSize {
		v.add("pageSize", "must be between 1 and 100")
	}
	return v.err()
}

func (p Page) Offset() int { return (p.Page - 1) * p.PageSize }

func (p Page) Limit() int { return p.PageSize }

// TotalPages is the number of pages needed for total rows, at least 1.
func (p Page) TotalPages(total int) int {
	if total <= 0 || p.PageSize <= 0 {
		return 1
	}
	return (total + p.PageSize - 1) / p.PageSize
}

// ErrorEnvelope is the body of every non-2xx response.
type ErrorEnvelope struct {
	Error ErrorBody `json:"error"`
}

type ErrorBody struct {
	Code    apperr.Code     `json:"code"`
	Message string          `json:"message"`
	Details []apperr.Detail `json:"details,omitempty"`
}

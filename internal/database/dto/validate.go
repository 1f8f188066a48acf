package dto

import (
	"fmt"
	"kanban/internal/apperr"
	"strings"
	"unicode/utf8"
)

// validator collects field errors so one response can report all of them.
type validator struct {
	details []apperr.Detail
}

func (v *validator) add(field, msg string) {
	v.details = append(v.details, apperr.Detail{Field: field, Message: msg})
}

func (v *validator) require(field, value string) bool {
	if strings.TrimSpace(value) == "" {
		v.add(field, "is required")
		return false
	}
	return true
}

func (v *validator) maxLen(field, value string, max int) {
	if utf8.RuneCountInString(value) > max {
		v.add(field, fmt.Sprintf("must be at most %d characters", max))
	}
}

func (v *validator) nonNegative(field string, value *int) {
	if value != nil && *value < 0 {
		v.add(field, "must be a non-negative integer")
	}
}

func (v *validator) err() error {
	if len(v.details) == 0 {
		return nil
	}
	return apperr.Validation("validation failed", v.details...)
}

package dto

import "strings"

type CreateColumn struct {
	Title string `json:"title"`
}

func (c *CreateColumn) Validate() error {
	c.Title = strings.TrimSpace(c.Title)
	v := validator{}
	if v.require("title", c.Title) {
		v.maxLen("title", c.Title, maxTitleLength)
	}
	return v.err()
}

// UpdateColumn renames a column and/or moves it. Order is the target
// zero-based visual index among the board's columns.
type UpdateColumn struct {
	Title *string `json:"title"`
	Order *int    `json:"order"`
}

func (c *UpdateColumn) Validate() error {
	v := validator{}
	if c.Title == nil && c.Order == nil {
		v.add("body", "at least one of title or order is required")
	}
	if c.Title != nil {
		t := strings.TrimSpace(*c.Title)
		c.Title = &t
		if v.require("title", t) {
			v.maxLen("title", t, maxTitleLength)
		}
	}
	v.nonNegative("order", c.Order)
	return v.err()
}

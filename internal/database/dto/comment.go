package dto

import "strings"

type CreateComment struct {
	Body string `json:"body"`
}

func (c *CreateComment) Validate() error {
	c.Body = strings.TrimSpace(c.Body)
	v := validator{}
	if v.require("body", c.Body) {
		v.maxLen("body", c.Body, maxBodyLength)
	}
	return v.err()
}

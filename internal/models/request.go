package models

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidRequest marks requests rejected during validation.
var ErrInvalidRequest = errors.New("invalid request")

// AskRequest is a question submitted to the assistant.
type AskRequest struct {
	Question  string `json:"question"`
	TopK      int    `json:"top_k,omitempty"`
	MaxImages int    `json:"max_images,omitempty"`
}

// Validate ensures the request has valid fields and sets defaults.
// Returns an error if the question is empty; otherwise normalizes the
// context and image limits.
func (r *AskRequest) Validate() error {
	if strings.TrimSpace(r.Question) == "" {
		return fmt.Errorf("%w: question cannot be empty", ErrInvalidRequest)
	}
	if r.TopK <= 0 {
		r.TopK = 5
	}
	if r.TopK > 20 {
		r.TopK = 20
	}
	if r.MaxImages <= 0 {
		r.MaxImages = 2
	}
	if r.MaxImages > 10 {
		r.MaxImages = 10
	}
	return nil
}

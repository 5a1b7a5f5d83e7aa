// Package library persists the prompt library: saved system prompts
// with their model and temperature settings, plus export and import of
// the whole collection.
package library

import (
	"time"
)

// Prompt is one saved library entry. Name is unique across the library.
type Prompt struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	SystemPrompt string    `json:"system_prompt"`
	Objective    string    `json:"objective"`
	Model        string    `json:"model"`
	Temperature  float64   `json:"temperature"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

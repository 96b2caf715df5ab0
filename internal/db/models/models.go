// Package models defines the tables of the local operation history
package models

const (
	// DefaultLimit is the max number of rows that are retrieved per listing call
	DefaultLimit = 50
)

// ListOptions represents pagination and filtering options for list operations
type ListOptions struct {
	Limit  int    `json:"limit"`
	Offset int    `json:"offset"`
	Kind   string `json:"kind,omitempty"`
}

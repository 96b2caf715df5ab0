package models

import (
	"fmt"

	"github.com/google/uuid"
)

// Export types accepted by the API
const (
	ExportTypePackage     = "package"
	ExportTypeApplication = "application"
)

// ExportRequest is the json part of an export submission
type ExportRequest struct {
	UUIDs       []uuid.UUID `json:"uuids"`
	ExportType  string      `json:"exportType"`
	Name        string      `json:"name,omitempty"`
	Description string      `json:"description,omitempty"`
}

// Validate ensures that the export request is well formed
func (r *ExportRequest) Validate() error {
	if len(r.UUIDs) == 0 {
		return fmt.Errorf("at least one uuid must be provided")
	}
	switch r.ExportType {
	case ExportTypePackage:
		if len(r.UUIDs) != 1 {
			return fmt.Errorf("export type %q requires exactly one uuid, got %d", ExportTypePackage, len(r.UUIDs))
		}
	case ExportTypeApplication:
	default:
		return fmt.Errorf("export type must be %q or %q, got %q", ExportTypePackage, ExportTypeApplication, r.ExportType)
	}
	return nil
}

// ExportResponse is returned both by an export submission and by the export status query
type ExportResponse struct {
	UUID   uuid.UUID    `json:"uuid"`
	URL    string       `json:"url"`
	Status ExportStatus `json:"status"`
}

// Validate ensures the document carries an id and a status
func (r *ExportResponse) Validate() error {
	if r.UUID == uuid.Nil {
		return fmt.Errorf("export document is missing uuid")
	}
	if r.Status == "" {
		return fmt.Errorf("export document is missing status")
	}
	return nil
}

package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DatabaseScript names one database script and its execution order inside a deployment
type DatabaseScript struct {
	FileName string `json:"fileName"`
	OrderID  string `json:"orderId"`
}

// DeploymentRequest is the json part of a deployment (import) submission
type DeploymentRequest struct {
	Name                         string           `json:"name"`
	Description                  string           `json:"description,omitempty"`
	AdminConsoleSettingsFileName string           `json:"adminConsoleSettingsFileName,omitempty"`
	PackageFileName              string           `json:"packageFileName,omitempty"`
	CustomizationFileName        string           `json:"customizationFileName,omitempty"`
	PluginsFileName              string           `json:"pluginsFileName,omitempty"`
	DataSource                   string           `json:"dataSource,omitempty"`
	DatabaseScripts              []DatabaseScript `json:"databaseScripts,omitempty"`
}

// Validate ensures that the deployment request is complete
func (r *DeploymentRequest) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("deployment name cannot be empty")
	}
	if r.PackageFileName == "" {
		return fmt.Errorf("package file name cannot be empty")
	}
	return nil
}

// DeployResponse is returned by a deployment submission.
// Status is informational free text at submission time.
type DeployResponse struct {
	UUID   uuid.UUID `json:"uuid"`
	URL    string    `json:"url"`
	Status string    `json:"status"`
}

// Validate ensures the server assigned an operation id
func (r *DeployResponse) Validate() error {
	if r.UUID == uuid.Nil {
		return fmt.Errorf("response is missing the operation uuid")
	}
	return nil
}

// DeploymentStatusResponse is the status document of a deployment.
// Only Status takes part in the terminal decision.
type DeploymentStatusResponse struct {
	DeploymentID uuid.UUID        `json:"deploymentId"`
	Status       DeploymentStatus `json:"status"`
	CurrentStep  *string          `json:"currentStep,omitempty"`
	ResultLinks  []string         `json:"resultLinks,omitempty"`
	CreatedAt    *time.Time       `json:"createdAt,omitempty"`
	UpdatedAt    *time.Time       `json:"updatedAt,omitempty"`
}

// Validate ensures the document carries a status
func (r *DeploymentStatusResponse) Validate() error {
	if r.Status == "" {
		return fmt.Errorf("deployment status document is missing status")
	}
	return nil
}

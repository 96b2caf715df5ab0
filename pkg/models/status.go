package models

import (
	"encoding/json"
	"fmt"
)

// All status enumerations below are closed: a token outside the listed set is a
// decoding error, never a default. Each has exactly one non-terminal member (IN_PROGRESS).

// DeploymentStatus is the status reported while a deployment (import) runs
type DeploymentStatus string

// Deployment status constants
const (
	// DeploymentStatusInProgress is the only non-terminal deployment status
	DeploymentStatusInProgress DeploymentStatus = "IN_PROGRESS"
	// DeploymentStatusSucceeded is a terminal status
	DeploymentStatusSucceeded DeploymentStatus = "SUCCEEDED"
	// DeploymentStatusFailed is a terminal status
	DeploymentStatusFailed DeploymentStatus = "FAILED"
	// DeploymentStatusRolledBack is a terminal status
	DeploymentStatusRolledBack DeploymentStatus = "ROLLED_BACK"
)

// ParseDeploymentStatus converts a string to a DeploymentStatus
func ParseDeploymentStatus(str string) (DeploymentStatus, error) {
	switch DeploymentStatus(str) {
	case DeploymentStatusInProgress, DeploymentStatusSucceeded, DeploymentStatusFailed, DeploymentStatusRolledBack:
		return DeploymentStatus(str), nil
	default:
		return "", fmt.Errorf("invalid deployment status: %q", str)
	}
}

// String returns the string representation of the deployment status
func (s DeploymentStatus) String() string {
	return string(s)
}

// IsTerminal reports whether the deployment has finished
func (s DeploymentStatus) IsTerminal() bool {
	switch s {
	case DeploymentStatusSucceeded, DeploymentStatusFailed, DeploymentStatusRolledBack:
		return true
	default:
		return false
	}
}

// IsSuccess reports whether the deployment finished successfully
func (s DeploymentStatus) IsSuccess() bool {
	return s == DeploymentStatusSucceeded
}

// UnmarshalJSON implements json.Unmarshaler for DeploymentStatus
func (s *DeploymentStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	status, err := ParseDeploymentStatus(str)
	if err != nil {
		return err
	}
	*s = status
	return nil
}

// ExportStatus is the status of an export operation
type ExportStatus string

// Export status constants
const (
	// ExportStatusInProgress is the only non-terminal export status
	ExportStatusInProgress ExportStatus = "IN_PROGRESS"
	// ExportStatusCompleted is a terminal status
	ExportStatusCompleted ExportStatus = "COMPLETED"
	// ExportStatusCompletedWithErrors is a terminal status
	ExportStatusCompletedWithErrors ExportStatus = "COMPLETED_WITH_ERRORS"
	// ExportStatusCompletedWithExportErrors is a terminal status returned by newer servers
	ExportStatusCompletedWithExportErrors ExportStatus = "COMPLETED_WITH_EXPORT_ERRORS"
	// ExportStatusFailed is a terminal status
	ExportStatusFailed ExportStatus = "FAILED"
)

// ParseExportStatus converts a string to an ExportStatus
func ParseExportStatus(str string) (ExportStatus, error) {
	switch ExportStatus(str) {
	case ExportStatusInProgress, ExportStatusCompleted, ExportStatusCompletedWithErrors,
		ExportStatusCompletedWithExportErrors, ExportStatusFailed:
		return ExportStatus(str), nil
	default:
		return "", fmt.Errorf("invalid export status: %q", str)
	}
}

// String returns the string representation of the export status
func (s ExportStatus) String() string {
	return string(s)
}

// IsTerminal reports whether the export has finished
func (s ExportStatus) IsTerminal() bool {
	switch s {
	case ExportStatusCompleted, ExportStatusCompletedWithErrors, ExportStatusCompletedWithExportErrors, ExportStatusFailed:
		return true
	default:
		return false
	}
}

// IsSuccess reports whether the export completed without errors
func (s ExportStatus) IsSuccess() bool {
	return s == ExportStatusCompleted
}

// UnmarshalJSON implements json.Unmarshaler for ExportStatus
func (s *ExportStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	status, err := ParseExportStatus(str)
	if err != nil {
		return err
	}
	*s = status
	return nil
}

// ImportDeploymentStatus is the status carried by import results. It is richer than
// DeploymentStatus and only appears in results documents.
type ImportDeploymentStatus string

// Import deployment status constants
const (
	ImportDeploymentStatusInProgress                 ImportDeploymentStatus = "IN_PROGRESS"
	ImportDeploymentStatusCompleted                  ImportDeploymentStatus = "COMPLETED"
	ImportDeploymentStatusCompletedWithImportErrors  ImportDeploymentStatus = "COMPLETED_WITH_IMPORT_ERRORS"
	ImportDeploymentStatusCompletedWithPublishErrors ImportDeploymentStatus = "COMPLETED_WITH_PUBLISH_ERRORS"
	ImportDeploymentStatusFailed                     ImportDeploymentStatus = "FAILED"
	ImportDeploymentStatusPendingReview              ImportDeploymentStatus = "PENDING_REVIEW"
	ImportDeploymentStatusRejected                   ImportDeploymentStatus = "REJECTED"
)

// ParseImportDeploymentStatus converts a string to an ImportDeploymentStatus
func ParseImportDeploymentStatus(str string) (ImportDeploymentStatus, error) {
	switch ImportDeploymentStatus(str) {
	case ImportDeploymentStatusInProgress, ImportDeploymentStatusCompleted,
		ImportDeploymentStatusCompletedWithImportErrors, ImportDeploymentStatusCompletedWithPublishErrors,
		ImportDeploymentStatusFailed, ImportDeploymentStatusPendingReview, ImportDeploymentStatusRejected:
		return ImportDeploymentStatus(str), nil
	default:
		return "", fmt.Errorf("invalid import deployment status: %q", str)
	}
}

// String returns the string representation of the import deployment status
func (s ImportDeploymentStatus) String() string {
	return string(s)
}

// IsTerminal reports whether the import has finished
func (s ImportDeploymentStatus) IsTerminal() bool {
	switch s {
	case ImportDeploymentStatusCompleted, ImportDeploymentStatusCompletedWithImportErrors,
		ImportDeploymentStatusCompletedWithPublishErrors, ImportDeploymentStatusFailed,
		ImportDeploymentStatusPendingReview, ImportDeploymentStatusRejected:
		return true
	default:
		return false
	}
}

// IsSuccess reports whether the import completed without errors
func (s ImportDeploymentStatus) IsSuccess() bool {
	return s == ImportDeploymentStatusCompleted
}

// UnmarshalJSON implements json.Unmarshaler for ImportDeploymentStatus
func (s *ImportDeploymentStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	status, err := ParseImportDeploymentStatus(str)
	if err != nil {
		return err
	}
	*s = status
	return nil
}

// InspectionOperationStatus is the status of a package inspection
type InspectionOperationStatus string

// Inspection status constants
const (
	// InspectionStatusInProgress is the only non-terminal inspection status
	InspectionStatusInProgress InspectionOperationStatus = "IN_PROGRESS"
	// InspectionStatusCompleted is a terminal status
	InspectionStatusCompleted InspectionOperationStatus = "COMPLETED"
	// InspectionStatusFailed is a terminal status
	InspectionStatusFailed InspectionOperationStatus = "FAILED"
)

// ParseInspectionOperationStatus converts a string to an InspectionOperationStatus
func ParseInspectionOperationStatus(str string) (InspectionOperationStatus, error) {
	switch InspectionOperationStatus(str) {
	case InspectionStatusInProgress, InspectionStatusCompleted, InspectionStatusFailed:
		return InspectionOperationStatus(str), nil
	default:
		return "", fmt.Errorf("invalid inspection status: %q", str)
	}
}

// String returns the string representation of the inspection status
func (s InspectionOperationStatus) String() string {
	return string(s)
}

// IsTerminal reports whether the inspection has finished
func (s InspectionOperationStatus) IsTerminal() bool {
	return s == InspectionStatusCompleted || s == InspectionStatusFailed
}

// IsSuccess reports whether the inspection completed
func (s InspectionOperationStatus) IsSuccess() bool {
	return s == InspectionStatusCompleted
}

// UnmarshalJSON implements json.Unmarshaler for InspectionOperationStatus
func (s *InspectionOperationStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	status, err := ParseInspectionOperationStatus(str)
	if err != nil {
		return err
	}
	*s = status
	return nil
}

var (
	_ Status = DeploymentStatus("")
	_ Status = ExportStatus("")
	_ Status = ImportDeploymentStatus("")
	_ Status = InspectionOperationStatus("")
)

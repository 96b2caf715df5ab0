package models

import (
	"fmt"

	"github.com/google/uuid"
)

// InspectionRequest is the json part of an inspection submission
type InspectionRequest struct {
	AdminConsoleSettingsFileName string `json:"adminConsoleSettingsFileName,omitempty"`
	PackageFileName              string `json:"packageFileName"`
	CustomizationFileName        string `json:"customizationFileName,omitempty"`
}

// InspectionResponse is returned by an inspection submission
type InspectionResponse struct {
	UUID uuid.UUID `json:"uuid"`
	URL  string    `json:"url"`
}

// Validate ensures the server assigned an operation id
func (r *InspectionResponse) Validate() error {
	if r.UUID == uuid.Nil {
		return fmt.Errorf("response is missing the operation uuid")
	}
	return nil
}

// InspectionStatusResponse is the subset of the inspection document needed to poll it.
// The summary is absent while the inspection is still running.
type InspectionStatusResponse struct {
	UUID   uuid.UUID                 `json:"uuid,omitempty"`
	Status InspectionOperationStatus `json:"status"`
}

// Validate ensures the document carries a status
func (r *InspectionStatusResponse) Validate() error {
	if r.Status == "" {
		return fmt.Errorf("inspection document is missing status")
	}
	return nil
}

// InspectionCountSummary counts expected objects by outcome
type InspectionCountSummary struct {
	Total    uint32 `json:"total"`
	Imported uint32 `json:"imported"`
	Failed   uint32 `json:"failed"`
	Skipped  uint32 `json:"skipped"`
}

// InspectionErrorEntry is one blocking problem found by an inspection
type InspectionErrorEntry struct {
	ErrorMessage string `json:"errorMessage"`
	ObjectName   string `json:"objectName"`
	ObjectUUID   string `json:"objectUuid"`
}

// InspectionWarningEntry is one non-blocking problem found by an inspection
type InspectionWarningEntry struct {
	WarningMessage string `json:"warningMessage"`
	ObjectName     string `json:"objectName"`
	ObjectUUID     string `json:"objectUuid"`
}

// InspectionProblemsSummary groups the problems found by an inspection
type InspectionProblemsSummary struct {
	TotalErrors   uint32                   `json:"totalErrors"`
	TotalWarnings uint32                   `json:"totalWarnings"`
	Errors        []InspectionErrorEntry   `json:"errors"`
	Warnings      []InspectionWarningEntry `json:"warnings"`
}

// InspectionSummary is the summary section of inspection results
type InspectionSummary struct {
	AdminConsoleSettingsExpected InspectionCountSummary    `json:"adminConsoleSettingsExpected"`
	ObjectsExpected              InspectionCountSummary    `json:"objectsExpected"`
	Problems                     InspectionProblemsSummary `json:"problems"`
}

// InspectionResults is the final results document of an inspection
type InspectionResults struct {
	Summary *InspectionSummary        `json:"summary"`
	Status  InspectionOperationStatus `json:"status"`
}

// Validate ensures both the summary and the status are present
func (r *InspectionResults) Validate() error {
	if r.Status == "" {
		return fmt.Errorf("inspection results are missing status")
	}
	if r.Summary == nil {
		return fmt.Errorf("inspection results are missing summary")
	}
	return nil
}

func (*InspectionResults) isResultsDocument() {}

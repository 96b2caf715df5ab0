package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ResultsDocument is implemented by the final results documents of every operation kind
type ResultsDocument interface {
	isResultsDocument()
}

// ResultsShape names which variant a DeploymentResults holds
type ResultsShape string

// Results shapes
const (
	ResultsShapeImport ResultsShape = "import"
	ResultsShapeExport ResultsShape = "export"
)

// ErrUnknownResultsShape is returned when a results body matches neither known shape
var ErrUnknownResultsShape = errors.New("deployment results match neither the import nor the export shape")

// ErrAmbiguousResultsShape is returned when a results body matches more than one shape
var ErrAmbiguousResultsShape = errors.New("deployment results match more than one shape")

// AdminConsoleSettingsSummary counts Admin Console settings by outcome
type AdminConsoleSettingsSummary struct {
	Total    uint32 `json:"total"`
	Imported uint32 `json:"imported"`
	Failed   uint32 `json:"failed"`
	Skipped  uint32 `json:"skipped"`
}

// ObjectsSummary counts design objects by outcome
type ObjectsSummary struct {
	Total    uint32 `json:"total"`
	Imported uint32 `json:"imported"`
	Failed   uint32 `json:"failed"`
	Skipped  uint32 `json:"skipped"`
}

// PluginsSummary counts plug-ins by outcome
type PluginsSummary struct {
	Total    uint32 `json:"total"`
	Imported uint32 `json:"imported"`
	Skipped  uint32 `json:"skipped"`
}

// ImportSummary is the summary section of import results
type ImportSummary struct {
	DatabaseScripts      uint32                      `json:"databaseScripts"`
	AdminConsoleSettings AdminConsoleSettingsSummary `json:"adminConsoleSettings"`
	Plugins              PluginsSummary              `json:"plugins"`
	Objects              ObjectsSummary              `json:"objects"`
	DeploymentLogURL     string                      `json:"deploymentLogUrl"`
}

// ImportDeploymentResults are the results of a deployment (import)
type ImportDeploymentResults struct {
	Summary ImportSummary          `json:"summary"`
	Status  ImportDeploymentStatus `json:"status,omitempty"`
}

// ExportedDatabaseScript is a database script produced by an export
type ExportedDatabaseScript struct {
	FileName string `json:"fileName"`
	OrderID  int    `json:"orderId"`
	URL      string `json:"url"`
}

// ExportDeploymentResults are the results of an export. Every artifact link is nullable.
type ExportDeploymentResults struct {
	PackageZip                *string                  `json:"packageZip"`
	DataSource                *string                  `json:"dataSource"`
	DatabaseScripts           []ExportedDatabaseScript `json:"databaseScripts"`
	PluginsZip                *string                  `json:"pluginsZip"`
	CustomizationFile         *string                  `json:"customizationFile"`
	CustomizationFileTemplate *string                  `json:"customizationFileTemplate"`
	DeploymentLogURL          *string                  `json:"deploymentLogUrl"`
	Status                    ExportStatus             `json:"status,omitempty"`
}

// DeploymentResults holds exactly one of the import or export results shapes.
// The server sends no discriminant, so decoding matches the body structurally.
type DeploymentResults struct {
	Import *ImportDeploymentResults
	Export *ExportDeploymentResults
}

func (*DeploymentResults) isResultsDocument() {}

// Shape returns which variant is populated
func (r *DeploymentResults) Shape() ResultsShape {
	if r.Import != nil {
		return ResultsShapeImport
	}
	return ResultsShapeExport
}

// Status returns the status carried by the populated variant, or nil if it has none
func (r *DeploymentResults) Status() Status {
	switch {
	case r.Import != nil && r.Import.Status != "":
		return r.Import.Status
	case r.Export != nil && r.Export.Status != "":
		return r.Export.Status
	default:
		return nil
	}
}

// exportFields are the top-level keys that only the export shape carries
var exportFields = []string{
	"packageZip",
	"pluginsZip",
	"databaseScripts",
	"customizationFile",
	"customizationFileTemplate",
	"dataSource",
	"deploymentLogUrl",
}

// resultsCandidate is one shape DeploymentResults may decode into
type resultsCandidate struct {
	shape   ResultsShape
	matches func(fields map[string]json.RawMessage) bool
	decode  func(data []byte, r *DeploymentResults) error
}

// resultsCandidates are tried in order; the import shape is the most specific.
var resultsCandidates = []resultsCandidate{
	{
		shape:   ResultsShapeImport,
		matches: isImportShape,
		decode: func(data []byte, r *DeploymentResults) error {
			var v ImportDeploymentResults
			if err := json.Unmarshal(data, &v); err != nil {
				return err
			}
			r.Import = &v
			return nil
		},
	},
	{
		shape:   ResultsShapeExport,
		matches: isExportShape,
		decode: func(data []byte, r *DeploymentResults) error {
			var v ExportDeploymentResults
			if err := json.Unmarshal(data, &v); err != nil {
				return err
			}
			r.Export = &v
			return nil
		},
	},
}

// isImportShape reports whether the body has a summary.adminConsoleSettings object
func isImportShape(fields map[string]json.RawMessage) bool {
	raw, ok := fields["summary"]
	if !ok {
		return false
	}
	var summary map[string]json.RawMessage
	if err := json.Unmarshal(raw, &summary); err != nil || summary == nil {
		return false
	}
	return isJSONObject(summary["adminConsoleSettings"])
}

// isExportShape reports whether the body carries any export artifact field
func isExportShape(fields map[string]json.RawMessage) bool {
	for _, name := range exportFields {
		if _, ok := fields[name]; ok {
			return true
		}
	}
	return false
}

func isJSONObject(raw json.RawMessage) bool {
	return bytes.HasPrefix(bytes.TrimSpace(raw), []byte("{"))
}

// UnmarshalJSON implements json.Unmarshaler for DeploymentResults
func (r *DeploymentResults) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("deployment results: %w", err)
	}

	var matched []resultsCandidate
	for _, c := range resultsCandidates {
		if c.matches(fields) {
			matched = append(matched, c)
		}
	}

	switch len(matched) {
	case 0:
		return ErrUnknownResultsShape
	case 1:
	default:
		shapes := make([]string, len(matched))
		for i, c := range matched {
			shapes[i] = string(c.shape)
		}
		return fmt.Errorf("%w: %s", ErrAmbiguousResultsShape, strings.Join(shapes, ", "))
	}

	var decoded DeploymentResults
	if err := matched[0].decode(data, &decoded); err != nil {
		return fmt.Errorf("deployment results (%s shape): %w", matched[0].shape, err)
	}
	*r = decoded
	return nil
}

// MarshalJSON implements json.Marshaler for DeploymentResults
func (r DeploymentResults) MarshalJSON() ([]byte, error) {
	switch {
	case r.Import != nil:
		return json.Marshal(r.Import)
	case r.Export != nil:
		return json.Marshal(r.Export)
	default:
		return []byte("null"), nil
	}
}

// Validate ensures one variant was decoded
func (r *DeploymentResults) Validate() error {
	if r.Import == nil && r.Export == nil {
		return ErrUnknownResultsShape
	}
	return nil
}

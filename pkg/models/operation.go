// Package models defines the documents exchanged with the deployment-management API
// and the client-side view of the asynchronous operations it runs.
package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// OperationKind identifies which family of server operation a UUID refers to
type OperationKind string

// Operation kinds
const (
	// OperationKindDeployment is an import of a package into the target environment
	OperationKindDeployment OperationKind = "deployment"
	// OperationKindExport is an export of applications or a package into artifacts
	OperationKindExport OperationKind = "export"
	// OperationKindInspection is a pre-deployment inspection of a package
	OperationKindInspection OperationKind = "inspection"
)

// String returns the string representation of the operation kind
func (k OperationKind) String() string {
	return string(k)
}

// ParseOperationKind converts a string to an OperationKind.
// An empty string selects OperationKindDeployment.
func ParseOperationKind(str string) (OperationKind, error) {
	switch str {
	case "", string(OperationKindDeployment):
		return OperationKindDeployment, nil
	case string(OperationKindExport):
		return OperationKindExport, nil
	case string(OperationKindInspection):
		return OperationKindInspection, nil
	default:
		return "", fmt.Errorf("invalid operation kind: %q (expected deployment, export or inspection)", str)
	}
}

// Operation is a server-tracked unit of work. The client never mutates it,
// it only observes it through snapshots.
type Operation struct {
	ID   uuid.UUID     `json:"uuid"`
	Kind OperationKind `json:"kind"`
}

// Status is implemented by every operation status enumeration
type Status interface {
	fmt.Stringer
	// IsTerminal reports whether the server will no longer change the outcome
	IsTerminal() bool
	// IsSuccess reports whether the status is the clean-success terminal member
	IsSuccess() bool
}

// Snapshot is one observed status of an operation at a point in time
type Snapshot struct {
	Operation  Operation `json:"operation"`
	Status     Status    `json:"-"`
	ObservedAt time.Time `json:"observed_at"`
	// Document is the decoded status document the status was read from
	Document interface{} `json:"document,omitempty"`
}

// NewSnapshot records a status observed now
func NewSnapshot(op Operation, status Status, doc interface{}) Snapshot {
	return Snapshot{
		Operation:  op,
		Status:     status,
		ObservedAt: time.Now(),
		Document:   doc,
	}
}

// Terminal reports whether the snapshot holds a terminal status
func (s Snapshot) Terminal() bool {
	return s.Status != nil && s.Status.IsTerminal()
}

// MarshalJSON implements json.Marshaler for Snapshot
func (s Snapshot) MarshalJSON() ([]byte, error) {
	type Alias Snapshot
	status := ""
	if s.Status != nil {
		status = s.Status.String()
	}
	return json.Marshal(struct {
		Alias
		Status   string `json:"status"`
		Terminal bool   `json:"terminal"`
	}{
		Alias:    Alias(s),
		Status:   status,
		Terminal: s.Terminal(),
	})
}

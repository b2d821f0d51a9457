package storage

import (
	"context"
	"encoding/json"
	"time"
)

// Action is the lifecycle operation a record describes
type Action string

const (
	ActionDeploy   Action = "deploy"
	ActionUndeploy Action = "undeploy"
)

// DeploymentRecord is one entry in the deployment history
type DeploymentRecord struct {
	ID          string          `json:"id" yaml:"id"`
	Name        string          `json:"name" yaml:"name"`
	ProcessorID string          `json:"processorId" yaml:"processorId"`
	PipelineID  string          `json:"pipelineId" yaml:"pipelineId"`
	Kind        string          `json:"kind" yaml:"kind"`
	Action      Action          `json:"action" yaml:"action"`
	Descriptor  json.RawMessage `json:"descriptor,omitempty" yaml:"-"`
	Error       string          `json:"error,omitempty" yaml:"error,omitempty"`
	Time        time.Time       `json:"time" yaml:"time"`
}

// Succeeded reports whether the recorded operation succeeded
func (r *DeploymentRecord) Succeeded() bool {
	return r.Error == ""
}

// DeploymentStore defines the interface for persistent storage of the deployment history
type DeploymentStore interface {
	// Open initializes the storage and makes it ready for use
	Open() error

	// Close closes the storage and releases any resources
	Close() error

	// Record stores a new record; an empty ID or zero Time are filled in
	Record(ctx context.Context, record *DeploymentRecord) error

	// Get retrieves a record by its ID
	Get(ctx context.Context, id string) (*DeploymentRecord, error)

	// List retrieves records newest first, optionally filtered by deployment
	// name. A limit of zero or less returns all records.
	List(ctx context.Context, name string, limit int) ([]*DeploymentRecord, error)
}

// ErrRecordNotFound is returned when a record with the specified ID is not found
type ErrRecordNotFound struct {
	ID string
}

// Error implements the error interface
func (e ErrRecordNotFound) Error() string {
	return "deployment record not found: " + e.ID
}

// IsNotFound returns true if the error is ErrRecordNotFound
func IsNotFound(err error) bool {
	_, ok := err.(ErrRecordNotFound)
	return ok
}

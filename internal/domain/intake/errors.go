package intake

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Stage identifies how far a submission progressed before failing.
type Stage string

const (
	StageReceived          Stage = "received"
	StageValidated         Stage = "validated"
	StageDuplicatesChecked Stage = "duplicates_checked"
	StagePersistedBase     Stage = "persisted_base"
	StageGenerated         Stage = "generated"
	StagePersistedPlan     Stage = "persisted_plan"
	StageComplete          Stage = "complete"
)

// FieldError is a single failed validation rule.
type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// ValidationError carries every failed rule for a submission; the request
// never proceeds past validation when one is returned.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Message
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// PersistenceError indicates the store failed at the given stage.
type PersistenceError struct {
	Stage Stage
	Err   error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failed at stage %s: %v", e.Stage, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// GenerationError indicates plan generation failed after the base records
// were committed. The created identifiers are carried so clients can retry
// or inspect the partial state.
type GenerationError struct {
	Err        error
	PatientID  uuid.UUID
	ProviderID uuid.UUID
	OrderID    uuid.UUID
	Warnings   []Warning
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation failed for order %s: %v", e.OrderID, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

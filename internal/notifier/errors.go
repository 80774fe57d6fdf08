package notifier

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a per-item failure in a RunSummary.
type ErrorKind string

const (
	KindEvaluation    ErrorKind = "evaluation"
	KindPersistence   ErrorKind = "persistence"
	KindConfiguration ErrorKind = "configuration"
)

var (
	// ErrRunInProgress is returned when a run is requested while another is executing.
	ErrRunInProgress = errors.New("reminder run already in progress")
	// ErrLoadFailed wraps the only fatal run condition: candidates could not be loaded.
	ErrLoadFailed = errors.New("load reminder candidates")
	// ErrAlreadyNotified is returned by the writer when the storage-level
	// uniqueness constraint rejects the occurrence.
	ErrAlreadyNotified = errors.New("occurrence already notified")
)

// EvaluationError means a rule evaluator could not judge an entity, because
// of malformed entity data, invalid preferences, or a panic.
type EvaluationError struct {
	EntityType SourceKind
	EntityID   string
	Err        error
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("evaluate %s %s: %v", e.EntityType, e.EntityID, e.Err)
}

func (e *EvaluationError) Unwrap() error { return e.Err }

// PersistenceError means a dedup lookup or a write failed.
type PersistenceError struct {
	Op         string
	EntityType SourceKind
	EntityID   string
	Err        error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s %s %s: %v", e.Op, e.EntityType, e.EntityID, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// ConfigurationError means a user's preferences were missing; defaults were used.
// It is logged, never counted as a failure.
type ConfigurationError struct {
	UserID string
	Err    error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("preferences for user %s: %v", e.UserID, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// kindOf maps an item error onto its summary kind.
func kindOf(err error) ErrorKind {
	var pe *PersistenceError
	if errors.As(err, &pe) {
		return KindPersistence
	}
	var ce *ConfigurationError
	if errors.As(err, &ce) {
		return KindConfiguration
	}
	return KindEvaluation
}

package tracker

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/pathakanu/myPlants/internal/store"
)

var (
	// ErrUnauthenticated is returned when no verified user id accompanies a call.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrNotFound is returned when the resource does not exist for the acting user.
	// Resources owned by someone else report ErrNotFound too, so their existence is not leaked.
	ErrNotFound = errors.New("not found")
)

// ValidationError reports malformed input. The operation was not attempted.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// PersistenceError wraps a failure of the storage backend.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// ScheduleUpdateError means the watering event was stored but the plant's
// schedule could not be recomputed. The event is kept; callers may retry the
// recompute alone with RecomputeSchedule.
type ScheduleUpdateError struct {
	EventID uuid.UUID
	PlantID uuid.UUID
	Err     error
}

func (e *ScheduleUpdateError) Error() string {
	return fmt.Sprintf("watering event %s recorded but schedule update for plant %s failed: %v", e.EventID, e.PlantID, e.Err)
}

func (e *ScheduleUpdateError) Unwrap() error { return e.Err }

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// storeErr maps a store failure for op onto the service taxonomy.
func storeErr(op string, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	return &PersistenceError{Op: op, Err: err}
}

package machine

import (
	"fmt"

	"github.com/Nadrieril/rustorio/internal/domain/catalog"
)

// ErrMachineTypeUnavailable indicates no machine of the required entity type
// exists at all. Distinct from "all busy": it persists until the host places
// one, so it surfaces as a sustained blocked status rather than a failure.
type ErrMachineTypeUnavailable struct {
	Entity catalog.EntityType
}

func (e *ErrMachineTypeUnavailable) Error() string {
	return fmt.Sprintf("no machine of type %q exists", e.Entity)
}

// ErrMachineBusy indicates a machine could not accept a batch.
type ErrMachineBusy struct {
	MachineID string
}

func (e *ErrMachineBusy) Error() string {
	return fmt.Sprintf("machine %s cannot accept more work", e.MachineID)
}

// ErrWrongEntityType indicates a recipe was offered to a pool of another
// entity type.
type ErrWrongEntityType struct {
	Entity   catalog.EntityType
	Required catalog.EntityType
}

func (e *ErrWrongEntityType) Error() string {
	return fmt.Sprintf("recipe requires entity type %q, pool is %q", e.Required, e.Entity)
}

// ErrOutputNotReady indicates output was collected before processing ended.
type ErrOutputNotReady struct {
	MachineID string
	TaskID    string
}

func (e *ErrOutputNotReady) Error() string {
	return fmt.Sprintf("machine %s has no ready output for task %s", e.MachineID, e.TaskID)
}

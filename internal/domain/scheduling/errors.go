package scheduling

import "fmt"

// ErrInvalidTaskTransition indicates an illegal task state transition.
type ErrInvalidTaskTransition struct {
	TaskID      string
	From        TaskState
	To          TaskState
	Description string
}

func (e *ErrInvalidTaskTransition) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("invalid task transition for %s: %s -> %s: %s",
			e.TaskID, e.From, e.To, e.Description)
	}
	return fmt.Sprintf("invalid task transition for %s: %s -> %s",
		e.TaskID, e.From, e.To)
}

// ErrTaskNotFound indicates a task ID unknown to the scheduler.
type ErrTaskNotFound struct {
	TaskID string
}

func (e *ErrTaskNotFound) Error() string {
	return fmt.Sprintf("task not found: %s", e.TaskID)
}

// ErrTaskAlreadyRegistered indicates a task was registered twice.
type ErrTaskAlreadyRegistered struct {
	TaskID string
}

func (e *ErrTaskAlreadyRegistered) Error() string {
	return fmt.Sprintf("task already registered: %s", e.TaskID)
}

package scheduling

import (
	"fmt"

	"github.com/Nadrieril/rustorio/internal/domain/catalog"
)

// WaitKind distinguishes the two things a suspended task can wait for.
type WaitKind string

const (
	// WaitOnTask means the task resumes when another task completes.
	WaitOnTask WaitKind = "TASK_COMPLETION"

	// WaitOnProducer means the task resumes when a machine of the given
	// entity type frees enough capacity. The task is then owned by that
	// pool's producer queue until woken.
	WaitOnProducer WaitKind = "PRODUCER_OUTPUT"
)

// WaitCondition is the tagged variant a task in the WAITING state holds.
// Exactly one of the kind-specific fields is meaningful.
type WaitCondition struct {
	Kind     WaitKind
	TaskID   string             // WaitOnTask: the task being waited on
	Entity   catalog.EntityType // WaitOnProducer: the pool being waited on
	Quantity int                // WaitOnProducer: output units requested
}

// UponTaskCompletion builds the condition for waiting on another task.
func UponTaskCompletion(taskID string) WaitCondition {
	return WaitCondition{Kind: WaitOnTask, TaskID: taskID}
}

// UponProducerOutput builds the condition for waiting on a machine pool.
func UponProducerOutput(entity catalog.EntityType, quantity int) WaitCondition {
	return WaitCondition{Kind: WaitOnProducer, Entity: entity, Quantity: quantity}
}

func (c WaitCondition) String() string {
	switch c.Kind {
	case WaitOnTask:
		return fmt.Sprintf("upon completion of task %s", c.TaskID)
	case WaitOnProducer:
		return fmt.Sprintf("upon %d units of output from %s", c.Quantity, c.Entity)
	default:
		return "unknown wait condition"
	}
}

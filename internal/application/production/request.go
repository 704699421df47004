package production

import (
	"fmt"

	"github.com/Nadrieril/rustorio/internal/domain/catalog"
)

// RequestState represents the lifecycle state of a production request.
type RequestState string

const (
	RequestStatePending    RequestState = "PENDING"
	RequestStateInProgress RequestState = "IN_PROGRESS"
	RequestStateCompleted  RequestState = "COMPLETED"
	RequestStateFailed     RequestState = "FAILED"
)

// RequestHandle identifies a submitted production request.
type RequestHandle struct {
	id string
}

func (h *RequestHandle) ID() string {
	return h.id
}

// BlockedEntity describes tasks of a request parked on a producer queue.
type BlockedEntity struct {
	Entity     catalog.EntityType
	Waiting    int
	NoMachines bool
}

// Status is a point-in-time view of a request.
type Status struct {
	State         RequestState
	FailureReason string
	BlockedOn     []BlockedEntity
}

// ErrRequestNotFound indicates an operation on an unknown request handle.
type ErrRequestNotFound struct {
	RequestID string
}

func (e *ErrRequestNotFound) Error() string {
	return fmt.Sprintf("request %s not found", e.RequestID)
}

type request struct {
	id         string
	resource   catalog.ResourceType
	quantity   int
	rootTaskID string
	state      RequestState
	failure    string
	createdAt  uint64
	finishedAt uint64
}

func (r *request) terminal() bool {
	return r.state == RequestStateCompleted || r.state == RequestStateFailed
}

func (r *request) snapshot() RequestSnapshot {
	return RequestSnapshot{
		RequestID:  r.id,
		Resource:   r.resource,
		Quantity:   r.quantity,
		State:      string(r.state),
		Failure:    r.failure,
		CreatedAt:  r.createdAt,
		FinishedAt: r.finishedAt,
	}
}

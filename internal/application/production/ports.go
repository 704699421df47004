package production

import "github.com/Nadrieril/rustorio/internal/domain/catalog"

// TaskTransition is one task state change, as reported to the journal.
type TaskTransition struct {
	RequestID string
	TaskID    string
	Tick      uint64
	From      string
	To        string
	Detail    string
}

// RequestSnapshot is the journal's view of a request's lifecycle.
type RequestSnapshot struct {
	RequestID  string
	Resource   catalog.ResourceType
	Quantity   int
	State      string
	Failure    string
	CreatedAt  uint64
	FinishedAt uint64
}

// Journal records request and task history. Recording is best-effort: the
// engine logs errors and keeps ticking.
type Journal interface {
	RecordRequest(snapshot RequestSnapshot) error
	RecordTaskTransition(transition TaskTransition) error
}

// Metrics is the engine's metrics sink.
type Metrics interface {
	SetQueueDepth(entity catalog.EntityType, depth int)
	SetPoolLoad(entity catalog.EntityType, load int)
	ObserveTaskTransition(to string)
	ObserveRequestFinished(state string)
	SetRunnableTasks(count int)
}

// nopJournal and nopMetrics are the defaults when no adapter is wired.

type nopJournal struct{}

func (nopJournal) RecordRequest(RequestSnapshot) error        { return nil }
func (nopJournal) RecordTaskTransition(TaskTransition) error { return nil }

type nopMetrics struct{}

func (nopMetrics) SetQueueDepth(catalog.EntityType, int) {}
func (nopMetrics) SetPoolLoad(catalog.EntityType, int)   {}
func (nopMetrics) ObserveTaskTransition(string)          {}
func (nopMetrics) ObserveRequestFinished(string)         {}
func (nopMetrics) SetRunnableTasks(int)                  {}

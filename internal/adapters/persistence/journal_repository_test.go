package persistence_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nadrieril/rustorio/internal/adapters/persistence"
	"github.com/Nadrieril/rustorio/internal/application/production"
	"github.com/Nadrieril/rustorio/test/helpers"
)

func TestRequestJournal_RecordAndFind(t *testing.T) {
	db := helpers.NewTestDB(t)
	journal := persistence.NewGormRequestJournal(db)

	snapshot := production.RequestSnapshot{
		RequestID: "req-1",
		Resource:  "GearWheel",
		Quantity:  20,
		State:     "IN_PROGRESS",
		CreatedAt: 1,
	}
	require.NoError(t, journal.RecordRequest(snapshot))

	found, err := journal.FindRequest(context.Background(), "req-1")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "GearWheel", found.Resource)
	assert.Equal(t, 20, found.Quantity)
	assert.Equal(t, "IN_PROGRESS", found.State)
}

func TestRequestJournal_RecordUpserts(t *testing.T) {
	db := helpers.NewTestDB(t)
	journal := persistence.NewGormRequestJournal(db)

	snapshot := production.RequestSnapshot{
		RequestID: "req-1",
		Resource:  "GearWheel",
		Quantity:  20,
		State:     "IN_PROGRESS",
		CreatedAt: 1,
	}
	require.NoError(t, journal.RecordRequest(snapshot))

	snapshot.State = "COMPLETED"
	snapshot.FinishedAt = 42
	require.NoError(t, journal.RecordRequest(snapshot))

	requests, err := journal.ListRequests(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, requests, 1, "re-recording the same request must not duplicate it")
	assert.Equal(t, "COMPLETED", requests[0].State)
	assert.Equal(t, uint64(42), requests[0].FinishedAt)
}

func TestRequestJournal_FindUnknownRequest(t *testing.T) {
	db := helpers.NewTestDB(t)
	journal := persistence.NewGormRequestJournal(db)

	found, err := journal.FindRequest(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestRequestJournal_ListRequestsNewestFirst(t *testing.T) {
	db := helpers.NewTestDB(t)
	journal := persistence.NewGormRequestJournal(db)

	for i, id := range []string{"req-1", "req-2", "req-3"} {
		require.NoError(t, journal.RecordRequest(production.RequestSnapshot{
			RequestID: id,
			Resource:  "IronPlate",
			Quantity:  1,
			State:     "COMPLETED",
			CreatedAt: uint64(i + 1),
		}))
	}

	requests, err := journal.ListRequests(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, requests, 2)
	assert.Equal(t, "req-3", requests[0].ID)
	assert.Equal(t, "req-2", requests[1].ID)
}

func TestRequestJournal_TaskTransitions(t *testing.T) {
	db := helpers.NewTestDB(t)
	journal := persistence.NewGormRequestJournal(db)

	transitions := []production.TaskTransition{
		{RequestID: "req-1", TaskID: "task-a", Tick: 1, From: "PENDING", To: "POLLING"},
		{RequestID: "req-1", TaskID: "task-a", Tick: 1, From: "POLLING", To: "WAITING", Detail: "waiting for task task-b"},
		{RequestID: "req-1", TaskID: "task-a", Tick: 5, From: "POLLING", To: "COMPLETED"},
		{RequestID: "req-2", TaskID: "task-z", Tick: 3, From: "POLLING", To: "FAILED", Detail: "no recipe"},
	}
	for _, tr := range transitions {
		require.NoError(t, journal.RecordTaskTransition(tr))
	}

	got, err := journal.TransitionsForRequest(context.Background(), "req-1")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "POLLING", got[0].ToState)
	assert.Equal(t, "WAITING", got[1].ToState)
	assert.Equal(t, uint64(5), got[2].Tick)
}

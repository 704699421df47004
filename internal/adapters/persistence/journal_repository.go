package persistence

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Nadrieril/rustorio/internal/application/production"
)

// GormRequestJournal implements the engine's Journal port using GORM
type GormRequestJournal struct {
	db *gorm.DB
}

// NewGormRequestJournal creates a new GORM request journal
func NewGormRequestJournal(db *gorm.DB) *GormRequestJournal {
	return &GormRequestJournal{db: db}
}

// RecordRequest upserts the latest state of a request
func (r *GormRequestJournal) RecordRequest(snapshot production.RequestSnapshot) error {
	model := &RequestModel{
		ID:         snapshot.RequestID,
		Resource:   string(snapshot.Resource),
		Quantity:   snapshot.Quantity,
		State:      snapshot.State,
		Failure:    snapshot.Failure,
		CreatedAt:  snapshot.CreatedAt,
		FinishedAt: snapshot.FinishedAt,
	}

	result := r.db.WithContext(context.Background()).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(model)
	if result.Error != nil {
		return fmt.Errorf("failed to record request: %w", result.Error)
	}
	return nil
}

// RecordTaskTransition appends one task state change
func (r *GormRequestJournal) RecordTaskTransition(transition production.TaskTransition) error {
	model := &TaskTransitionModel{
		RequestID: transition.RequestID,
		TaskID:    transition.TaskID,
		Tick:      transition.Tick,
		FromState: transition.From,
		ToState:   transition.To,
		Detail:    transition.Detail,
	}

	if err := r.db.WithContext(context.Background()).Create(model).Error; err != nil {
		return fmt.Errorf("failed to record task transition: %w", err)
	}
	return nil
}

// ListRequests returns the most recent requests, newest first
func (r *GormRequestJournal) ListRequests(ctx context.Context, limit int) ([]RequestModel, error) {
	var models []RequestModel
	q := r.db.WithContext(ctx).Order("created_at_tick DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}
	return models, nil
}

// FindRequest retrieves one request by ID, nil when unknown
func (r *GormRequestJournal) FindRequest(ctx context.Context, id string) (*RequestModel, error) {
	var model RequestModel
	result := r.db.WithContext(ctx).Where("id = ?", id).First(&model)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find request: %w", result.Error)
	}
	return &model, nil
}

// TransitionsForRequest returns a request's task transitions in tick order
func (r *GormRequestJournal) TransitionsForRequest(ctx context.Context, requestID string) ([]TaskTransitionModel, error) {
	var models []TaskTransitionModel
	result := r.db.WithContext(ctx).
		Where("request_id = ?", requestID).
		Order("tick ASC, id ASC").
		Find(&models)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to find task transitions: %w", result.Error)
	}
	return models, nil
}

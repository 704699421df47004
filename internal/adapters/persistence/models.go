package persistence

import "time"

// RequestModel is the database model for a production request
type RequestModel struct {
	ID         string    `gorm:"column:id;primaryKey;not null"`
	Resource   string    `gorm:"column:resource;not null"`
	Quantity   int       `gorm:"column:quantity;not null"`
	State      string    `gorm:"column:state;not null"`
	Failure    string    `gorm:"column:failure"`
	CreatedAt  uint64    `gorm:"column:created_at_tick;not null"`
	FinishedAt uint64    `gorm:"column:finished_at_tick"`
	RecordedAt time.Time `gorm:"column:recorded_at;autoUpdateTime"`
}

func (RequestModel) TableName() string {
	return "requests"
}

// TaskTransitionModel is the database model for one task state change
type TaskTransitionModel struct {
	ID         int       `gorm:"column:id;primaryKey;autoIncrement"`
	RequestID  string    `gorm:"column:request_id;index;not null"`
	TaskID     string    `gorm:"column:task_id;index;not null"`
	Tick       uint64    `gorm:"column:tick;not null"`
	FromState  string    `gorm:"column:from_state;not null"`
	ToState    string    `gorm:"column:to_state;not null"`
	Detail     string    `gorm:"column:detail"`
	RecordedAt time.Time `gorm:"column:recorded_at;autoCreateTime"`
}

func (TaskTransitionModel) TableName() string {
	return "task_transitions"
}

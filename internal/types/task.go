package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Task status values.
const (
	TaskStatusTodo       = "todo"
	TaskStatusInProgress = "in_progress"
	TaskStatusDone       = "done"
)

type Task struct {
	gorm.Model
	ID           uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Title        string     `gorm:"not null;column:title" json:"title"`
	Description  string     `gorm:"column:description" json:"description"`
	Status       string     `gorm:"not null;default:'todo';index;column:status" json:"status"`
	Urgent       bool       `gorm:"not null;default:false;index;column:urgent" json:"urgent"`
	Deadline     *time.Time `gorm:"index;column:deadline" json:"deadline,omitempty"`
	AssigneeID   uuid.UUID  `gorm:"type:uuid;index;not null;column:assignee_id" json:"assignee_id"`
	Assignee     *User      `gorm:"constraint:OnDelete:CASCADE;foreignKey:AssigneeID;references:ID" json:"-"`
	SupervisorID *uuid.UUID `gorm:"type:uuid;index;column:supervisor_id" json:"supervisor_id,omitempty"`
	CreatedAt    time.Time  `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"not null;default:now()" json:"updated_at"`
}

func (Task) TableName() string {
	return "task"
}

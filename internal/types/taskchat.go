package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TaskChat struct {
	gorm.Model
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	TaskID    uuid.UUID `gorm:"type:uuid;index;not null;column:task_id" json:"task_id"`
	Task      *Task     `gorm:"constraint:OnDelete:CASCADE;foreignKey:TaskID;references:ID" json:"-"`
	Name      string    `gorm:"not null;column:name" json:"name"`
	CreatedBy uuid.UUID `gorm:"type:uuid;not null;column:created_by" json:"created_by"`
	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (TaskChat) TableName() string {
	return "task_chat"
}

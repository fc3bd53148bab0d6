package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type AICallLog struct {
	ID         uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID     *uuid.UUID     `gorm:"type:uuid;index" json:"user_id,omitempty"`
	CallType   string         `gorm:"column:call_type;not null" json:"call_type"`
	Provider   string         `gorm:"column:provider;not null" json:"provider"`
	Model      string         `gorm:"column:model;not null" json:"model"`
	Prompt     string         `gorm:"column:prompt" json:"prompt"`
	Response   string         `gorm:"column:response" json:"response"`
	Success    bool           `gorm:"column:success;not null" json:"success"`
	Cached     bool           `gorm:"column:cached;not null;default:false" json:"cached"`
	Error      string         `gorm:"column:error" json:"error"`
	DurationMs int64          `gorm:"column:duration_ms;not null;default:0" json:"duration_ms"`
	Usage      datatypes.JSON `gorm:"type:jsonb;column:usage" json:"usage"`
	CreatedAt  time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"not null;default:now()" json:"updated_at"`
}

func (AICallLog) TableName() string {
	return "ai_call_log"
}

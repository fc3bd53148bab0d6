package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Chat message roles. Assistant messages carry a nil UserID.
const (
	ChatRoleUser      = "user"
	ChatRoleAssistant = "assistant"
	ChatRoleSystem    = "system"
)

type ChatMessage struct {
	gorm.Model
	ID        uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ChatID    uuid.UUID  `gorm:"type:uuid;index;not null;column:chat_id" json:"chat_id"`
	Chat      *TaskChat  `gorm:"constraint:OnDelete:CASCADE;foreignKey:ChatID;references:ID" json:"-"`
	UserID    *uuid.UUID `gorm:"type:uuid;index;column:user_id" json:"user_id,omitempty"`
	Role      string     `gorm:"not null;column:role" json:"role"`
	Content   string     `gorm:"not null;column:content" json:"content"`
	CreatedAt time.Time  `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time  `gorm:"not null;default:now()" json:"updated_at"`
}

func (ChatMessage) TableName() string {
	return "chat_message"
}

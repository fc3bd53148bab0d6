package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ConversationHistory struct {
	gorm.Model
	ID         uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID     uuid.UUID `gorm:"type:uuid;index;not null;column:user_id" json:"user_id"`
	SessionID  string    `gorm:"index;not null;column:session_id" json:"session_id"`
	Role       string    `gorm:"not null;column:role" json:"role"`
	Message    string    `gorm:"not null;column:message" json:"message"`
	TokensUsed int       `gorm:"not null;default:0;column:tokens_used" json:"tokens_used"`
	CreatedAt  time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (ConversationHistory) TableName() string {
	return "conversation_history"
}

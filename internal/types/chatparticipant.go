package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ChatParticipant struct {
	gorm.Model
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ChatID    uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_chat_participant;not null;column:chat_id" json:"chat_id"`
	Chat      *TaskChat `gorm:"constraint:OnDelete:CASCADE;foreignKey:ChatID;references:ID" json:"-"`
	UserID    uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_chat_participant;not null;column:user_id" json:"user_id"`
	User      *User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"-"`
	JoinedAt  time.Time `gorm:"not null;default:now();column:joined_at" json:"joined_at"`
	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (ChatParticipant) TableName() string {
	return "chat_participant"
}

package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ContextSummary struct {
	gorm.Model
	ID          uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID      uuid.UUID      `gorm:"type:uuid;index;not null;column:user_id" json:"user_id"`
	SummaryType string         `gorm:"not null;column:summary_type" json:"summary_type"`
	Title       string         `gorm:"not null;column:title" json:"title"`
	Summary     string         `gorm:"not null;column:summary" json:"summary"`
	Metadata    datatypes.JSON `gorm:"type:jsonb;column:metadata" json:"metadata,omitempty"`
	Date        time.Time      `gorm:"not null;default:now();column:date" json:"date"`
	CreatedAt   time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"not null;default:now()" json:"updated_at"`
}

func (ContextSummary) TableName() string {
	return "context_summary"
}

package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Memory type buckets.
const (
	MemoryTypePreference = "preference"
	MemoryTypePattern    = "pattern"
	MemoryTypeInsight    = "insight"
	MemoryTypeGoal       = "goal"
)

// IsValidMemoryType reports whether t is one of the known buckets.
func IsValidMemoryType(t string) bool {
	switch t {
	case MemoryTypePreference, MemoryTypePattern, MemoryTypeInsight, MemoryTypeGoal:
		return true
	}
	return false
}

// UserMemory is one durable fact about a user. A (user_id, memory_type, key)
// triple identifies it; writes to the same triple update in place.
type UserMemory struct {
	gorm.Model
	ID           uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID       uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_user_memory_key;not null;column:user_id" json:"user_id"`
	MemoryType   string    `gorm:"uniqueIndex:idx_user_memory_key;not null;column:memory_type" json:"memory_type"`
	Key          string    `gorm:"uniqueIndex:idx_user_memory_key;not null;column:key" json:"key"`
	Value        string    `gorm:"not null;column:value" json:"value"`
	Confidence   float64   `gorm:"not null;default:1.0;column:confidence" json:"confidence"`
	AccessCount  int       `gorm:"not null;default:0;column:access_count" json:"access_count"`
	LastAccessed time.Time `gorm:"not null;default:now();column:last_accessed" json:"last_accessed"`
	CreatedAt    time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt    time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (UserMemory) TableName() string {
	return "user_memory"
}

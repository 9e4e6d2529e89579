package domain

import (
	"time"

	"gorm.io/datatypes"
)

// AuditLogEntry is one append-only record of a mutation. Entries are never
// updated or deleted.
type AuditLogEntry struct {
	ID         uint64         `json:"id" gorm:"primaryKey"`
	CreatedAt  time.Time      `json:"created_at" gorm:"index"`
	UserID     uint64         `json:"user_id"`
	Action     string         `json:"action"`      // e.g. "save_version", "complete_review"
	EntityType string         `json:"entity_type"` // e.g. "document", "review_schedule"
	EntityID   string         `json:"entity_id,omitempty"`
	Details    datatypes.JSON `json:"details,omitempty"`
}

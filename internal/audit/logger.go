package audit

import (
	"context"
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"qms-document-control/internal/domain"
)

// Logger is the append-only sink for mutation records. Entries are never
// updated or deleted.
type Logger interface {
	Append(ctx context.Context, entry domain.AuditLogEntry) error
	List(ctx context.Context, page, pageSize int) ([]domain.AuditLogEntry, Meta, error)
}

type Meta struct {
	Total       int64 `json:"total"`
	CurrentPage int   `json:"current_page"`
	PerPage     int   `json:"per_page"`
	TotalPage   int   `json:"total_page"`
}

type GormLogger struct {
	db *gorm.DB
}

// NewLogger creates an audit logger backed by the relational store.
func NewLogger(db *gorm.DB) Logger {
	return &GormLogger{db: db}
}

func (l *GormLogger) Append(ctx context.Context, entry domain.AuditLogEntry) error {
	entry.ID = 0
	entry.CreatedAt = time.Now().UTC()
	return l.db.WithContext(ctx).Create(&entry).Error
}

func (l *GormLogger) List(ctx context.Context, page, pageSize int) ([]domain.AuditLogEntry, Meta, error) {
	var entries []domain.AuditLogEntry
	var totalRecords int64

	// Count total records
	if err := l.db.WithContext(ctx).Model(&domain.AuditLogEntry{}).Count(&totalRecords).Error; err != nil {
		return entries, Meta{}, err
	}

	offset := (page - 1) * pageSize
	err := l.db.WithContext(ctx).
		Order("created_at DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&entries).Error

	totalPages := int((totalRecords + int64(pageSize) - 1) / int64(pageSize))

	return entries, Meta{
		Total:       totalRecords,
		PerPage:     pageSize,
		TotalPage:   totalPages,
		CurrentPage: page,
	}, err
}

// Entry builds a log record with JSON-encoded details.
func Entry(userID uint64, action, entityType, entityID string, details map[string]any) domain.AuditLogEntry {
	var payload datatypes.JSON
	if details != nil {
		if raw, err := json.Marshal(details); err == nil {
			payload = datatypes.JSON(raw)
		}
	}
	return domain.AuditLogEntry{
		UserID:     userID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Details:    payload,
	}
}

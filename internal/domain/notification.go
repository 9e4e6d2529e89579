package domain

import "time"

// NotificationType identifies one kind of transient UI notification.
type NotificationType string

const (
	NotifyApprovalPending NotificationType = "approval_pending"
	NotifyReviewDueSoon   NotificationType = "review_due_soon"
	NotifyReviewOverdue   NotificationType = "review_overdue"
	NotifyExpiringSoon    NotificationType = "expiring_soon"
)

// Notification is a transient, derived alert. It is recomputed on every
// relevant data change and never persisted.
type Notification struct {
	Type         NotificationType `json:"type"`
	DocumentCode string           `json:"document_code"`
	Message      string           `json:"message"`
	DueDate      *time.Time       `json:"due_date,omitempty"`
}

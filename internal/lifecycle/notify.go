package lifecycle

import (
	"fmt"
	"time"

	"qms-document-control/internal/domain"
)

const (
	reviewDueWindowDays = 7
	expiryWindowDays    = 30
)

// DeriveNotifications sweeps documents and open review cycles for alerts
// relevant to one user: approvals waiting on them, reviews due or overdue
// for cycles they are responsible for, and upcoming expiries of documents
// they review. Admins see everything. The sweep is read-only and
// deduplicated by (type, document code); results are transient, never
// persisted.
func DeriveNotifications(docs []domain.Document, schedules []domain.ReviewSchedule, user domain.User, today time.Time) []domain.Notification {
	today = DateOnly(today)
	seen := map[string]bool{}
	var out []domain.Notification

	add := func(n domain.Notification) {
		key := string(n.Type) + ":" + n.DocumentCode
		if seen[key] {
			return
		}
		seen[key] = true
		out = append(out, n)
	}

	admin := user.Role == domain.RoleAdmin

	for _, d := range docs {
		if d.Status == domain.DocumentPendingApproval && (admin || d.ApproverID == user.ID) {
			add(domain.Notification{
				Type:         domain.NotifyApprovalPending,
				DocumentCode: d.Code,
				Message:      fmt.Sprintf("Document %s is pending your approval", d.Code),
			})
		}
		if d.ExpiryDate != nil && d.Status != domain.DocumentExpired && (admin || d.ReviewerID == user.ID) {
			if days := daysUntil(*d.ExpiryDate, today); days >= 0 && days <= expiryWindowDays {
				due := DateOnly(*d.ExpiryDate)
				add(domain.Notification{
					Type:         domain.NotifyExpiringSoon,
					DocumentCode: d.Code,
					Message:      fmt.Sprintf("Document %s expires in %d days", d.Code, days),
					DueDate:      &due,
				})
			}
		}
	}

	for _, s := range schedules {
		if s.Completed() || s.ActualReviewDate != nil {
			continue
		}
		if !admin && s.ResponsibleID != user.ID {
			continue
		}
		due := DateOnly(s.NextReviewDate)
		switch days := daysUntil(s.NextReviewDate, today); {
		case days < 0:
			add(domain.Notification{
				Type:         domain.NotifyReviewOverdue,
				DocumentCode: s.DocumentCode,
				Message:      fmt.Sprintf("Review of document %s is overdue by %d days", s.DocumentCode, -days),
				DueDate:      &due,
			})
		case days <= reviewDueWindowDays:
			add(domain.Notification{
				Type:         domain.NotifyReviewDueSoon,
				DocumentCode: s.DocumentCode,
				Message:      fmt.Sprintf("Review of document %s is due in %d days", s.DocumentCode, days),
				DueDate:      &due,
			})
		}
	}

	return out
}

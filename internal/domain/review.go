package domain

import "time"

// ReviewResult is the outcome recorded when a review cycle is completed.
type ReviewResult string

const (
	ReviewContinue      ReviewResult = "continue"
	ReviewNeedsRevision ReviewResult = "needs_revision"
	ReviewWithdrawn     ReviewResult = "withdrawn"
)

// ReviewSchedule is one review cycle of a document. A schedule with both
// ActualReviewDate and Result set is completed; completion is one-way, the
// next cycle is always a new row.
type ReviewSchedule struct {
	ID               string       `json:"id"`
	DocumentCode     string       `json:"document_code"`
	FrequencyID      string       `json:"frequency_id"`
	NextReviewDate   time.Time    `json:"next_review_date"`
	ResponsibleID    uint64       `json:"responsible_id"`
	ActualReviewDate *time.Time   `json:"actual_review_date,omitempty"`
	Result           ReviewResult `json:"result,omitempty"`
	Notes            string       `json:"notes,omitempty"`
}

// Completed reports whether this cycle has been closed.
func (s ReviewSchedule) Completed() bool {
	return s.ActualReviewDate != nil && s.Result != ""
}

// ReviewFrequency is a lookup row used to compute the next review due date.
type ReviewFrequency struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	MonthCount int    `json:"month_count"`
}

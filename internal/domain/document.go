package domain

import (
	"time"
)

// DocumentStatus is the derived lifecycle status of a controlled document.
// It is never set directly by a user action (except initial creation as
// draft); the lifecycle package recomputes it from version and review state.
type DocumentStatus string

const (
	DocumentDraft           DocumentStatus = "draft"
	DocumentUnderReview     DocumentStatus = "under_review"
	DocumentPendingApproval DocumentStatus = "pending_approval"
	DocumentPublished       DocumentStatus = "published"
	DocumentExpired         DocumentStatus = "expired"
)

// VersionStatus is the status of a single document version.
type VersionStatus string

const (
	VersionDraft           VersionStatus = "draft"
	VersionPendingApproval VersionStatus = "pending_approval"
	VersionPublished       VersionStatus = "published"
	VersionRecalled        VersionStatus = "recalled"
)

// Document is the root entity. Versions, review schedules and distributions
// reference it by Code, which is unique and stable for the document's
// lifetime.
type Document struct {
	Code          string         `json:"code"`
	Title         string         `json:"title"`
	IssueDate     time.Time      `json:"issue_date"`
	EffectiveDate time.Time      `json:"effective_date"`
	ExpiryDate    *time.Time     `json:"expiry_date,omitempty"`
	Status        DocumentStatus `json:"status"`
	ReviewerID    uint64         `json:"reviewer_id"`
	ApproverID    uint64         `json:"approver_id"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// Version is one revision of a document. At most one version per document
// has IsLatest set at any time.
type Version struct {
	ID           string        `json:"id"`
	DocumentCode string        `json:"document_code"`
	Label        string        `json:"label"`
	ReleaseDate  time.Time     `json:"release_date"`
	Status       VersionStatus `json:"status"`
	IsLatest     bool          `json:"is_latest"`
}

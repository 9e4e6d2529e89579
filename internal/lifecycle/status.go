package lifecycle

import (
	"time"

	"qms-document-control/internal/domain"
)

// LatestVersion finds the version flagged as latest for a document.
// A missing latest version degrades to "no match" rather than an error.
func LatestVersion(code string, versions []domain.Version) (domain.Version, bool) {
	for _, v := range versions {
		if v.DocumentCode == code && v.IsLatest {
			return v, true
		}
	}
	return domain.Version{}, false
}

// baseStatus derives the pre-override status from the latest version.
// Written as an explicit table over (latest version status, current document
// status); the draft and no-latest rows differ for new vs. previously
// published documents.
func baseStatus(doc domain.Document, latest domain.Version, found bool) domain.DocumentStatus {
	if !found {
		// No latest version: a previously published document with its
		// versions withdrawn goes back under review.
		if doc.Status == domain.DocumentPublished {
			return domain.DocumentUnderReview
		}
		return doc.Status
	}

	switch latest.Status {
	case domain.VersionPublished:
		return domain.DocumentPublished
	case domain.VersionPendingApproval:
		return domain.DocumentPendingApproval
	case domain.VersionDraft:
		// A draft latest version on an already circulated document means a
		// revision is in progress; a brand-new draft document stays draft.
		if doc.Status != domain.DocumentDraft {
			return domain.DocumentUnderReview
		}
		return doc.Status
	default: // recalled
		return doc.Status
	}
}

// reviewDue reports whether any open review cycle for the document is due.
func reviewDue(code string, schedules []domain.ReviewSchedule, today time.Time) bool {
	for _, s := range schedules {
		if s.DocumentCode != code || s.Completed() {
			continue
		}
		if s.ActualReviewDate == nil && onOrBefore(s.NextReviewDate, today) {
			return true
		}
	}
	return false
}

// DeriveStatus computes a document's status from its latest version, expiry
// date and open review cycles. Priority: expiry beats everything; a due
// review drags a published document back under review.
func DeriveStatus(doc domain.Document, versions []domain.Version, schedules []domain.ReviewSchedule, today time.Time) domain.DocumentStatus {
	latest, found := LatestVersion(doc.Code, versions)
	status := baseStatus(doc, latest, found)

	if doc.ExpiryDate != nil && onOrBefore(*doc.ExpiryDate, today) {
		return domain.DocumentExpired
	}

	if status == domain.DocumentPublished && reviewDue(doc.Code, schedules, today) {
		return domain.DocumentUnderReview
	}

	return status
}

// RefreshStatuses re-derives every document's status and returns a new slice
// plus whether anything changed. Run on snapshot load, on the daily tick and
// after every mutation, so date-crossing events are caught without a user
// action.
func RefreshStatuses(docs []domain.Document, versions []domain.Version, schedules []domain.ReviewSchedule, today time.Time) ([]domain.Document, bool) {
	next := make([]domain.Document, len(docs))
	changed := false
	for i, d := range docs {
		status := DeriveStatus(d, versions, schedules, today)
		if status != d.Status {
			d.Status = status
			changed = true
		}
		next[i] = d
	}
	return next, changed
}

package lifecycle

import (
	"github.com/google/uuid"

	"qms-document-control/internal/domain"
	"qms-document-control/internal/errors"
)

// ReviewCompletion is the outcome of closing a review cycle.
type ReviewCompletion struct {
	Schedules []domain.ReviewSchedule
	// StatusPatch is the candidate status for the owning document, still
	// subject to the derivation priority rules (expiry wins).
	StatusPatch domain.DocumentStatus
	// NextSchedule is the freshly spawned successor cycle; nil unless the
	// result was "continue" with a usable frequency.
	NextSchedule *domain.ReviewSchedule
	Completed    domain.ReviewSchedule
}

// UpsertSchedule inserts or replaces a review schedule by id, assigning a
// fresh id to inserts. Used for plain edits of a pending cycle.
func UpsertSchedule(s domain.ReviewSchedule, schedules []domain.ReviewSchedule) []domain.ReviewSchedule {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	next := make([]domain.ReviewSchedule, 0, len(schedules)+1)
	replaced := false
	for _, existing := range schedules {
		if existing.ID == s.ID {
			next = append(next, s)
			replaced = true
			continue
		}
		next = append(next, existing)
	}
	if !replaced {
		next = append(next, s)
	}
	return next
}

// CompleteReview closes a review cycle and, for a "continue" result, spawns
// the next cycle as a brand-new row. Completion is one-way: the closed row
// keeps its actual date and result; the successor always gets a new id, so
// re-running a completion produces a distinguishable new record rather than
// silently reusing the old one.
func CompleteReview(s domain.ReviewSchedule, schedules []domain.ReviewSchedule, freqs []domain.ReviewFrequency) (ReviewCompletion, error) {
	if s.ActualReviewDate == nil || s.Result == "" {
		return ReviewCompletion{}, errors.Validation("completing a review requires an actual review date and a result")
	}

	var patch domain.DocumentStatus
	switch s.Result {
	case domain.ReviewContinue:
		patch = domain.DocumentPublished
	case domain.ReviewNeedsRevision:
		patch = domain.DocumentUnderReview
	case domain.ReviewWithdrawn:
		patch = domain.DocumentExpired
	default:
		return ReviewCompletion{}, errors.Validation("unknown review result " + string(s.Result))
	}

	// Completing an existing cycle that is not in the collection is a direct
	// mutation of a missing target, not a lenient lookup.
	if s.ID != "" {
		found := false
		for _, existing := range schedules {
			if existing.ID == s.ID {
				found = true
				break
			}
		}
		if !found {
			return ReviewCompletion{}, errors.EntityNotFound("review_schedule", s.ID)
		}
	}

	actual := DateOnly(*s.ActualReviewDate)
	s.ActualReviewDate = &actual
	next := UpsertSchedule(s, schedules)

	completion := ReviewCompletion{
		Schedules:   next,
		StatusPatch: patch,
		Completed:   s,
	}

	if s.Result != domain.ReviewContinue {
		return completion, nil
	}

	// A missing or month-less frequency skips recurrence instead of failing.
	for _, f := range freqs {
		if f.ID != s.FrequencyID || f.MonthCount <= 0 {
			continue
		}
		successor := domain.ReviewSchedule{
			ID:             uuid.NewString(),
			DocumentCode:   s.DocumentCode,
			FrequencyID:    s.FrequencyID,
			NextReviewDate: AddMonths(actual, f.MonthCount),
			ResponsibleID:  s.ResponsibleID,
		}
		completion.Schedules = append(completion.Schedules, successor)
		completion.NextSchedule = &successor
		break
	}

	return completion, nil
}

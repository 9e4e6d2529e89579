package qms

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"qms-document-control/internal/audit"
	"qms-document-control/internal/domain"
	"qms-document-control/internal/errors"
	"qms-document-control/internal/lifecycle"
	"qms-document-control/internal/store"
	"qms-document-control/redis"
)

const stateVersionKey = "qms:state:version"

// Persister schedules background persistence of a snapshot.
type Persister interface {
	Schedule(snapshot *domain.Snapshot) bool
}

type Service interface {
	GetState(ctx context.Context) (*domain.Snapshot, error)
	SaveDocument(ctx context.Context, userID uint64, doc domain.Document) (*domain.Document, error)
	DeleteDocument(ctx context.Context, userID uint64, code string) error
	SaveVersion(ctx context.Context, userID uint64, v domain.Version) (*domain.Version, error)
	DeleteVersion(ctx context.Context, userID uint64, id string) error
	SaveReview(ctx context.Context, userID uint64, s domain.ReviewSchedule) (*ReviewSaveResult, error)
	SaveFrequency(ctx context.Context, userID uint64, f domain.ReviewFrequency) (*domain.ReviewFrequency, error)
	DeleteFrequency(ctx context.Context, userID uint64, id string) error
	RefreshStatuses(ctx context.Context) (int, error)
	Notifications(ctx context.Context, user domain.User) []domain.Notification
}

type DefaultService struct {
	store     *store.Store
	persister Persister
	auditLog  audit.Logger
	clock     lifecycle.Clock
	cache     *redis.Cache
	logger    zerolog.Logger
}

func NewService(
	st *store.Store,
	persister Persister,
	auditLog audit.Logger,
	clock lifecycle.Clock,
	cache *redis.Cache,
	logger zerolog.Logger,
) Service {
	return &DefaultService{
		store:     st,
		persister: persister,
		auditLog:  auditLog,
		clock:     clock,
		cache:     cache,
		logger:    logger,
	}
}

// commit swaps in the next snapshot, records the audit entry, invalidates
// cached state and schedules a background persist. One audit entry per
// mutation; an audit write failure is logged, not propagated, so the state
// change is never half-applied.
func (s *DefaultService) commit(ctx context.Context, next *domain.Snapshot, entry domain.AuditLogEntry) {
	s.store.Replace(next)
	if err := s.auditLog.Append(ctx, entry); err != nil {
		s.logger.Error().Err(err).Str("action", entry.Action).Msg("audit append failed")
	}
	s.cache.IncrementVersion(ctx, stateVersionKey)
	s.persister.Schedule(next)
}

func (s *DefaultService) GetState(ctx context.Context) (*domain.Snapshot, error) {
	v := s.cache.GetVersion(ctx, stateVersionKey)
	cacheKey := fmt.Sprintf("qms:state:v:%d", v)

	var cached domain.Snapshot
	found, _ := s.cache.Get(ctx, cacheKey, &cached)
	if found {
		return &cached, nil
	}

	snapshot := s.store.Get()
	// set value to cache
	go s.cache.Set(context.Background(), cacheKey, snapshot, 24*time.Hour)

	return snapshot, nil
}

// SaveDocument creates or updates a document. A new document starts as a
// draft with an initial draft version 1.0; updates touch metadata only and
// never set the derived status directly.
func (s *DefaultService) SaveDocument(ctx context.Context, userID uint64, doc domain.Document) (*domain.Document, error) {
	if doc.Code == "" {
		return nil, errors.Validation("document requires a code")
	}
	if doc.Title == "" {
		return nil, errors.Validation("document requires a title")
	}

	today := s.clock.Today()
	next := s.store.Clone()
	now := time.Now().UTC()

	existing, found := next.DocumentByCode(doc.Code)
	action := "update_document"
	if !found {
		action = "create_document"
		doc.Status = domain.DocumentDraft
		doc.CreatedAt = now

		initial := domain.Version{
			DocumentCode: doc.Code,
			Label:        "1.0",
			ReleaseDate:  doc.IssueDate,
			Status:       domain.VersionDraft,
			IsLatest:     true,
		}
		result, err := lifecycle.ApplyVersionSave(initial, next.Versions)
		if err != nil {
			return nil, err
		}
		next.Versions = result.Versions
	} else {
		doc.Status = existing.Status
		doc.CreatedAt = existing.CreatedAt
	}
	doc.UpdatedAt = now

	doc.Status = lifecycle.DeriveStatus(doc, next.Versions, next.ReviewSchedules, today)
	if !found {
		next.Documents = append(next.Documents, doc)
	} else {
		for i := range next.Documents {
			if next.Documents[i].Code == doc.Code {
				next.Documents[i] = doc
				break
			}
		}
	}

	s.commit(ctx, next, audit.Entry(userID, action, "document", doc.Code, map[string]any{
		"title":  doc.Title,
		"status": doc.Status,
	}))

	return &doc, nil
}

// DeleteDocument removes a document and cascades to its versions, review
// schedules and distributions.
func (s *DefaultService) DeleteDocument(ctx context.Context, userID uint64, code string) error {
	next := s.store.Clone()

	if _, found := next.DocumentByCode(code); !found {
		return errors.EntityNotFound("document", code)
	}

	docs := next.Documents[:0:0]
	for _, d := range next.Documents {
		if d.Code != code {
			docs = append(docs, d)
		}
	}
	next.Documents = docs

	versions := next.Versions[:0:0]
	for _, v := range next.Versions {
		if v.DocumentCode != code {
			versions = append(versions, v)
		}
	}
	next.Versions = versions

	schedules := next.ReviewSchedules[:0:0]
	for _, rs := range next.ReviewSchedules {
		if rs.DocumentCode != code {
			schedules = append(schedules, rs)
		}
	}
	next.ReviewSchedules = schedules

	distributions := next.Distributions[:0:0]
	for _, d := range next.Distributions {
		if d.DocumentCode != code {
			distributions = append(distributions, d)
		}
	}
	next.Distributions = distributions

	s.commit(ctx, next, audit.Entry(userID, "delete_document", "document", code, nil))
	return nil
}

// SaveVersion applies the version transition rules, then re-derives the
// owning document's status and syncs its dates from the newly latest
// published version. A missing owner document only skips the document
// update.
func (s *DefaultService) SaveVersion(ctx context.Context, userID uint64, v domain.Version) (*domain.Version, error) {
	today := s.clock.Today()
	next := s.store.Clone()

	result, err := lifecycle.ApplyVersionSave(v, next.Versions)
	if err != nil {
		return nil, err
	}
	next.Versions = result.Versions

	s.rederiveDocument(next, result.DocumentCode, today, true)

	s.commit(ctx, next, audit.Entry(userID, "save_version", "version", result.Saved.ID, map[string]any{
		"document_code": result.DocumentCode,
		"label":         result.Saved.Label,
		"status":        result.Saved.Status,
		"is_latest":     result.Saved.IsLatest,
	}))

	return &result.Saved, nil
}

func (s *DefaultService) DeleteVersion(ctx context.Context, userID uint64, id string) error {
	today := s.clock.Today()
	next := s.store.Clone()

	versions, code, err := lifecycle.RemoveVersion(id, next.Versions)
	if err != nil {
		return err
	}
	next.Versions = versions

	s.rederiveDocument(next, code, today, false)

	s.commit(ctx, next, audit.Entry(userID, "delete_version", "version", id, map[string]any{
		"document_code": code,
	}))
	return nil
}

// ReviewSaveResult reports what a review save did.
type ReviewSaveResult struct {
	Schedule     domain.ReviewSchedule  `json:"schedule"`
	Completed    bool                   `json:"completed"`
	NextSchedule *domain.ReviewSchedule `json:"next_schedule,omitempty"`
}

// SaveReview edits a pending cycle, or completes it when both the actual
// review date and the result are set. Completion patches the owning
// document's status (expiry still wins) and, for a "continue" result,
// spawns the successor cycle.
func (s *DefaultService) SaveReview(ctx context.Context, userID uint64, schedule domain.ReviewSchedule) (*ReviewSaveResult, error) {
	if schedule.DocumentCode == "" {
		return nil, errors.Validation("review schedule requires a document code")
	}

	today := s.clock.Today()
	next := s.store.Clone()

	if !schedule.Completed() {
		if schedule.ActualReviewDate != nil || schedule.Result != "" {
			return nil, errors.Validation("completing a review requires both an actual review date and a result")
		}
		next.ReviewSchedules = lifecycle.UpsertSchedule(schedule, next.ReviewSchedules)
		saved := next.ReviewSchedules[len(next.ReviewSchedules)-1]
		for _, rs := range next.ReviewSchedules {
			if rs.ID == schedule.ID {
				saved = rs
				break
			}
		}

		s.rederiveDocument(next, schedule.DocumentCode, today, false)

		s.commit(ctx, next, audit.Entry(userID, "save_review_schedule", "review_schedule", saved.ID, map[string]any{
			"document_code":    saved.DocumentCode,
			"next_review_date": saved.NextReviewDate,
		}))
		return &ReviewSaveResult{Schedule: saved}, nil
	}

	completion, err := lifecycle.CompleteReview(schedule, next.ReviewSchedules, next.ReviewFrequencies)
	if err != nil {
		return nil, err
	}
	next.ReviewSchedules = completion.Schedules

	// The status patch is a candidate override: an already passed expiry
	// date still takes precedence.
	for i := range next.Documents {
		if next.Documents[i].Code != schedule.DocumentCode {
			continue
		}
		next.Documents[i].Status = completion.StatusPatch
		if d := next.Documents[i].ExpiryDate; d != nil && !lifecycle.DateOnly(*d).After(today) {
			next.Documents[i].Status = domain.DocumentExpired
		}
		next.Documents[i].UpdatedAt = time.Now().UTC()
		break
	}

	s.commit(ctx, next, audit.Entry(userID, "complete_review", "review_schedule", completion.Completed.ID, map[string]any{
		"document_code": completion.Completed.DocumentCode,
		"result":        completion.Completed.Result,
	}))

	return &ReviewSaveResult{
		Schedule:     completion.Completed,
		Completed:    true,
		NextSchedule: completion.NextSchedule,
	}, nil
}

func (s *DefaultService) SaveFrequency(ctx context.Context, userID uint64, f domain.ReviewFrequency) (*domain.ReviewFrequency, error) {
	if f.MonthCount <= 0 {
		return nil, errors.Validation("review frequency requires a positive month count")
	}
	if f.ID == "" {
		f.ID = fmt.Sprintf("freq-%d", f.MonthCount)
	}

	next := s.store.Clone()
	replaced := false
	for i := range next.ReviewFrequencies {
		if next.ReviewFrequencies[i].ID == f.ID {
			next.ReviewFrequencies[i] = f
			replaced = true
			break
		}
	}
	if !replaced {
		next.ReviewFrequencies = append(next.ReviewFrequencies, f)
	}

	s.commit(ctx, next, audit.Entry(userID, "save_frequency", "review_frequency", f.ID, map[string]any{
		"month_count": f.MonthCount,
	}))
	return &f, nil
}

// DeleteFrequency removes a lookup row, refusing while an open review cycle
// still references it.
func (s *DefaultService) DeleteFrequency(ctx context.Context, userID uint64, id string) error {
	next := s.store.Clone()

	if _, found := next.FrequencyByID(id); !found {
		return errors.EntityNotFound("review_frequency", id)
	}
	for _, rs := range next.ReviewSchedules {
		if rs.FrequencyID == id && !rs.Completed() {
			return errors.InvalidState("frequency is referenced by an open review schedule")
		}
	}

	freqs := next.ReviewFrequencies[:0:0]
	for _, f := range next.ReviewFrequencies {
		if f.ID != id {
			freqs = append(freqs, f)
		}
	}
	next.ReviewFrequencies = freqs

	s.commit(ctx, next, audit.Entry(userID, "delete_frequency", "review_frequency", id, nil))
	return nil
}

// RefreshStatuses re-derives every document's status against today. Run at
// snapshot load and on the daily tick, so date-crossing events (expiry,
// review due) are caught without an explicit user action. Returns how many
// documents changed.
func (s *DefaultService) RefreshStatuses(ctx context.Context) (int, error) {
	today := s.clock.Today()
	next := s.store.Clone()

	docs, changed := lifecycle.RefreshStatuses(next.Documents, next.Versions, next.ReviewSchedules, today)
	if !changed {
		return 0, nil
	}

	count := 0
	for i := range docs {
		if docs[i].Status != next.Documents[i].Status {
			count++
		}
	}
	next.Documents = docs

	s.commit(ctx, next, audit.Entry(0, "refresh_statuses", "document", "", map[string]any{
		"changed": count,
	}))
	return count, nil
}

// Notifications runs the read-only sweep for the given user.
func (s *DefaultService) Notifications(ctx context.Context, user domain.User) []domain.Notification {
	snapshot := s.store.Get()
	return lifecycle.DeriveNotifications(snapshot.Documents, snapshot.ReviewSchedules, user, s.clock.Today())
}

// rederiveDocument refreshes one document's derived status (and optionally
// its dates) after a version or schedule mutation. A missing document
// degrades to a no-op: the lookup only feeds derivation.
func (s *DefaultService) rederiveDocument(next *domain.Snapshot, code string, today time.Time, syncDates bool) {
	for i := range next.Documents {
		if next.Documents[i].Code != code {
			continue
		}
		if syncDates {
			next.Documents[i] = lifecycle.SyncDocumentDates(next.Documents[i], next.Versions)
		}
		next.Documents[i].Status = lifecycle.DeriveStatus(next.Documents[i], next.Versions, next.ReviewSchedules, today)
		next.Documents[i].UpdatedAt = time.Now().UTC()
		return
	}
	s.logger.Debug().Str("document_code", code).Msg("mutation for unknown document, skipping status derivation")
}

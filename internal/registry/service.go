package registry

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"qms-document-control/internal/audit"
	"qms-document-control/internal/domain"
	"qms-document-control/internal/errors"
	"qms-document-control/internal/qms"
	"qms-document-control/internal/store"
	"qms-document-control/redis"
)

// Service manages the auxiliary registers: controlled-copy distributions,
// internal audits and risks. Each entity kind gets its own typed upsert and
// delete; there is no stringly-keyed collection dispatch.
type Service interface {
	SaveDistribution(ctx context.Context, userID uint64, d domain.Distribution) (*domain.Distribution, error)
	DeleteDistribution(ctx context.Context, userID uint64, id string) error
	SaveInternalAudit(ctx context.Context, userID uint64, a domain.InternalAudit) (*domain.InternalAudit, error)
	DeleteInternalAudit(ctx context.Context, userID uint64, id string) error
	SaveRisk(ctx context.Context, userID uint64, r domain.Risk) (*domain.Risk, error)
	DeleteRisk(ctx context.Context, userID uint64, id string) error
}

type DefaultService struct {
	store     *store.Store
	persister qms.Persister
	auditLog  audit.Logger
	cache     *redis.Cache
	logger    zerolog.Logger
}

func NewService(
	st *store.Store,
	persister qms.Persister,
	auditLog audit.Logger,
	cache *redis.Cache,
	logger zerolog.Logger,
) Service {
	return &DefaultService{
		store:     st,
		persister: persister,
		auditLog:  auditLog,
		cache:     cache,
		logger:    logger,
	}
}

func (s *DefaultService) commit(ctx context.Context, next *domain.Snapshot, entry domain.AuditLogEntry) {
	s.store.Replace(next)
	if err := s.auditLog.Append(ctx, entry); err != nil {
		s.logger.Error().Err(err).Str("action", entry.Action).Msg("audit append failed")
	}
	s.cache.IncrementVersion(ctx, "qms:state:version")
	s.persister.Schedule(next)
}

func (s *DefaultService) SaveDistribution(ctx context.Context, userID uint64, d domain.Distribution) (*domain.Distribution, error) {
	if d.DocumentCode == "" {
		return nil, errors.Validation("distribution requires a document code")
	}
	if d.Recipient == "" {
		return nil, errors.Validation("distribution requires a recipient")
	}

	next := s.store.Clone()

	// Distributing a document that does not exist is a direct reference,
	// not a lenient lookup.
	if _, found := next.DocumentByCode(d.DocumentCode); !found {
		return nil, errors.EntityNotFound("document", d.DocumentCode)
	}

	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	replaced := false
	for i := range next.Distributions {
		if next.Distributions[i].ID == d.ID {
			next.Distributions[i] = d
			replaced = true
			break
		}
	}
	if !replaced {
		next.Distributions = append(next.Distributions, d)
	}

	s.commit(ctx, next, audit.Entry(userID, "save_distribution", "distribution", d.ID, map[string]any{
		"document_code": d.DocumentCode,
		"recipient":     d.Recipient,
	}))
	return &d, nil
}

func (s *DefaultService) DeleteDistribution(ctx context.Context, userID uint64, id string) error {
	next := s.store.Clone()

	kept, removed := next.Distributions[:0:0], false
	for _, d := range next.Distributions {
		if d.ID == id {
			removed = true
			continue
		}
		kept = append(kept, d)
	}
	if !removed {
		return errors.EntityNotFound("distribution", id)
	}
	next.Distributions = kept

	s.commit(ctx, next, audit.Entry(userID, "delete_distribution", "distribution", id, nil))
	return nil
}

func (s *DefaultService) SaveInternalAudit(ctx context.Context, userID uint64, a domain.InternalAudit) (*domain.InternalAudit, error) {
	if a.Scope == "" {
		return nil, errors.Validation("internal audit requires a scope")
	}
	if a.Status == "" {
		a.Status = domain.AuditPlanned
	}

	next := s.store.Clone()

	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	replaced := false
	for i := range next.InternalAudits {
		if next.InternalAudits[i].ID == a.ID {
			next.InternalAudits[i] = a
			replaced = true
			break
		}
	}
	if !replaced {
		next.InternalAudits = append(next.InternalAudits, a)
	}

	s.commit(ctx, next, audit.Entry(userID, "save_internal_audit", "internal_audit", a.ID, map[string]any{
		"scope":  a.Scope,
		"status": a.Status,
	}))
	return &a, nil
}

func (s *DefaultService) DeleteInternalAudit(ctx context.Context, userID uint64, id string) error {
	next := s.store.Clone()

	kept, removed := next.InternalAudits[:0:0], false
	for _, a := range next.InternalAudits {
		if a.ID == id {
			removed = true
			continue
		}
		kept = append(kept, a)
	}
	if !removed {
		return errors.EntityNotFound("internal_audit", id)
	}
	next.InternalAudits = kept

	s.commit(ctx, next, audit.Entry(userID, "delete_internal_audit", "internal_audit", id, nil))
	return nil
}

func (s *DefaultService) SaveRisk(ctx context.Context, userID uint64, r domain.Risk) (*domain.Risk, error) {
	if r.Description == "" {
		return nil, errors.Validation("risk requires a description")
	}
	if r.Likelihood < 1 || r.Likelihood > 5 || r.Impact < 1 || r.Impact > 5 {
		return nil, errors.Validation("likelihood and impact must be between 1 and 5")
	}
	if r.Status == "" {
		r.Status = domain.RiskOpen
	}

	next := s.store.Clone()

	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	replaced := false
	for i := range next.Risks {
		if next.Risks[i].ID == r.ID {
			next.Risks[i] = r
			replaced = true
			break
		}
	}
	if !replaced {
		next.Risks = append(next.Risks, r)
	}

	s.commit(ctx, next, audit.Entry(userID, "save_risk", "risk", r.ID, map[string]any{
		"score":  r.Score(),
		"status": r.Status,
	}))
	return &r, nil
}

func (s *DefaultService) DeleteRisk(ctx context.Context, userID uint64, id string) error {
	next := s.store.Clone()

	kept, removed := next.Risks[:0:0], false
	for _, r := range next.Risks {
		if r.ID == id {
			removed = true
			continue
		}
		kept = append(kept, r)
	}
	if !removed {
		return errors.EntityNotFound("risk", id)
	}
	next.Risks = kept

	s.commit(ctx, next, audit.Entry(userID, "delete_risk", "risk", id, nil))
	return nil
}

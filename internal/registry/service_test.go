package registry

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"qms-document-control/internal/audit"
	"qms-document-control/internal/domain"
	apperrors "qms-document-control/internal/errors"
	"qms-document-control/internal/store"
	"qms-document-control/redis"
)

type MockAuditLogger struct {
	mock.Mock
}

func (m *MockAuditLogger) Append(ctx context.Context, entry domain.AuditLogEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockAuditLogger) List(ctx context.Context, page, pageSize int) ([]domain.AuditLogEntry, audit.Meta, error) {
	args := m.Called(ctx, page, pageSize)
	if args.Get(0) == nil {
		return nil, audit.Meta{}, args.Error(2)
	}
	return args.Get(0).([]domain.AuditLogEntry), args.Get(1).(audit.Meta), args.Error(2)
}

type fakePersister struct {
	scheduled int
}

func (p *fakePersister) Schedule(snapshot *domain.Snapshot) bool {
	p.scheduled++
	return true
}

type fixture struct {
	service   Service
	store     *store.Store
	persister *fakePersister
	auditLog  *MockAuditLogger
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	snapshot := domain.NewSnapshot()
	snapshot.Documents = append(snapshot.Documents, domain.Document{
		Code:   "QM-001",
		Title:  "Quality Manual",
		Status: domain.DocumentPublished,
	})

	st := store.New(snapshot)
	persister := &fakePersister{}
	auditLog := new(MockAuditLogger)
	auditLog.On("Append", mock.Anything, mock.Anything).Return(nil)

	return &fixture{
		service:   NewService(st, persister, auditLog, redis.NewDisabledCache(), zerolog.Nop()),
		store:     st,
		persister: persister,
		auditLog:  auditLog,
	}
}

func TestSaveDistribution_Create(t *testing.T) {
	f := newFixture(t)

	saved, err := f.service.SaveDistribution(context.Background(), 1, domain.Distribution{
		DocumentCode: "QM-001",
		Recipient:    "Production Floor",
		CopyNumber:   3,
		IssuedDate:   time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)

	state := f.store.Get()
	require.Len(t, state.Distributions, 1)
	assert.Equal(t, "Production Floor", state.Distributions[0].Recipient)
	assert.Equal(t, 1, f.persister.scheduled)
}

func TestSaveDistribution_UnknownDocument(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.SaveDistribution(context.Background(), 1, domain.Distribution{
		DocumentCode: "SOP-404",
		Recipient:    "Production Floor",
	})

	var notFound *apperrors.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Empty(t, f.store.Get().Distributions)
	assert.Equal(t, 0, f.persister.scheduled)
}

func TestDeleteDistribution(t *testing.T) {
	f := newFixture(t)

	saved, err := f.service.SaveDistribution(context.Background(), 1, domain.Distribution{
		DocumentCode: "QM-001",
		Recipient:    "QA Office",
	})
	require.NoError(t, err)

	require.NoError(t, f.service.DeleteDistribution(context.Background(), 1, saved.ID))
	assert.Empty(t, f.store.Get().Distributions)

	err = f.service.DeleteDistribution(context.Background(), 1, saved.ID)
	var notFound *apperrors.NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestSaveInternalAudit_DefaultsToPlanned(t *testing.T) {
	f := newFixture(t)

	saved, err := f.service.SaveInternalAudit(context.Background(), 1, domain.InternalAudit{
		AuditDate: time.Date(2024, time.September, 10, 0, 0, 0, 0, time.UTC),
		Scope:     "Document control process",
		AuditorID: 5,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.AuditPlanned, saved.Status)

	// update keeps the same ID and replaces in place
	saved.Status = domain.AuditClosed
	saved.Findings = "Two minor nonconformities"
	updated, err := f.service.SaveInternalAudit(context.Background(), 1, *saved)
	require.NoError(t, err)
	assert.Equal(t, saved.ID, updated.ID)

	state := f.store.Get()
	require.Len(t, state.InternalAudits, 1)
	assert.Equal(t, domain.AuditClosed, state.InternalAudits[0].Status)
}

func TestSaveInternalAudit_RequiresScope(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.SaveInternalAudit(context.Background(), 1, domain.InternalAudit{})

	var validation *apperrors.ValidationError
	assert.ErrorAs(t, err, &validation)
}

func TestSaveRisk_ScoreBounds(t *testing.T) {
	f := newFixture(t)

	saved, err := f.service.SaveRisk(context.Background(), 1, domain.Risk{
		Description: "Obsolete documents in circulation",
		Category:    "document_control",
		Likelihood:  3,
		Impact:      4,
		OwnerID:     2,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.RiskOpen, saved.Status)
	assert.Equal(t, 12, saved.Score())

	_, err = f.service.SaveRisk(context.Background(), 1, domain.Risk{
		Description: "Out of range",
		Likelihood:  0,
		Impact:      4,
	})
	var validation *apperrors.ValidationError
	assert.ErrorAs(t, err, &validation)

	_, err = f.service.SaveRisk(context.Background(), 1, domain.Risk{
		Description: "Out of range",
		Likelihood:  3,
		Impact:      6,
	})
	assert.ErrorAs(t, err, &validation)
}

func TestDeleteRisk_Missing(t *testing.T) {
	f := newFixture(t)

	err := f.service.DeleteRisk(context.Background(), 1, "risk-404")

	var notFound *apperrors.NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

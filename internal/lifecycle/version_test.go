package lifecycle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"qms-document-control/internal/domain"
	apperrors "qms-document-control/internal/errors"
)

func TestApplyVersionSave_InsertAssignsID(t *testing.T) {
	v := domain.Version{
		DocumentCode: "QM-001",
		Label:        "1.0",
		ReleaseDate:  date(2024, time.January, 1),
		Status:       domain.VersionDraft,
		IsLatest:     true,
	}

	result, err := ApplyVersionSave(v, nil)
	assert.NoError(t, err)
	assert.Len(t, result.Versions, 1)
	assert.NotEmpty(t, result.Saved.ID)
	assert.Equal(t, "QM-001", result.DocumentCode)
}

func TestApplyVersionSave_ReplaceByID(t *testing.T) {
	existing := []domain.Version{{
		ID:           "v-1",
		DocumentCode: "QM-001",
		Label:        "1.0",
		Status:       domain.VersionDraft,
		IsLatest:     true,
	}}

	v := existing[0]
	v.Status = domain.VersionPendingApproval

	result, err := ApplyVersionSave(v, existing)
	assert.NoError(t, err)
	assert.Len(t, result.Versions, 1)
	assert.Equal(t, domain.VersionPendingApproval, result.Versions[0].Status)

	// Input untouched.
	assert.Equal(t, domain.VersionDraft, existing[0].Status)
}

// Saving a new published latest version recalls the previously published one
// and leaves the newcomer as the sole latest.
func TestApplyVersionSave_RecallsPublishedSibling(t *testing.T) {
	existing := []domain.Version{{
		ID:           "v-1",
		DocumentCode: "QM-001",
		Label:        "1.0",
		Status:       domain.VersionPublished,
		IsLatest:     true,
	}}

	v := domain.Version{
		DocumentCode: "QM-001",
		Label:        "2.0",
		ReleaseDate:  date(2024, time.March, 1),
		Status:       domain.VersionPublished,
		IsLatest:     true,
	}

	result, err := ApplyVersionSave(v, existing)
	assert.NoError(t, err)
	assert.Len(t, result.Versions, 2)

	old := result.Versions[0]
	assert.Equal(t, domain.VersionRecalled, old.Status)
	assert.False(t, old.IsLatest)

	latestCount := 0
	publishedCount := 0
	for _, rv := range result.Versions {
		if rv.IsLatest {
			latestCount++
		}
		if rv.Status == domain.VersionPublished {
			publishedCount++
		}
	}
	assert.Equal(t, 1, latestCount)
	assert.Equal(t, 1, publishedCount)
}

func TestApplyVersionSave_DraftLatestDemotesWithoutRecall(t *testing.T) {
	existing := []domain.Version{{
		ID:           "v-1",
		DocumentCode: "QM-001",
		Label:        "1.0",
		Status:       domain.VersionPublished,
		IsLatest:     true,
	}}

	v := domain.Version{
		DocumentCode: "QM-001",
		Label:        "1.1",
		Status:       domain.VersionDraft,
		IsLatest:     true,
	}

	result, err := ApplyVersionSave(v, existing)
	assert.NoError(t, err)
	assert.False(t, result.Versions[0].IsLatest)
	// Still published: only a published incoming version recalls it.
	assert.Equal(t, domain.VersionPublished, result.Versions[0].Status)
}

func TestApplyVersionSave_OtherDocumentsUntouched(t *testing.T) {
	existing := []domain.Version{{
		ID:           "v-other",
		DocumentCode: "SOP-002",
		Label:        "1.0",
		Status:       domain.VersionPublished,
		IsLatest:     true,
	}}

	v := domain.Version{
		DocumentCode: "QM-001",
		Label:        "1.0",
		Status:       domain.VersionPublished,
		IsLatest:     true,
	}

	result, err := ApplyVersionSave(v, existing)
	assert.NoError(t, err)
	assert.True(t, result.Versions[0].IsLatest)
	assert.Equal(t, domain.VersionPublished, result.Versions[0].Status)
}

func TestApplyVersionSave_Validation(t *testing.T) {
	_, err := ApplyVersionSave(domain.Version{Label: "1.0"}, nil)
	assert.Error(t, err)

	_, err = ApplyVersionSave(domain.Version{DocumentCode: "QM-001"}, nil)
	assert.Error(t, err)
}

func TestRemoveVersion(t *testing.T) {
	versions := []domain.Version{
		{ID: "v-1", DocumentCode: "QM-001", Status: domain.VersionRecalled},
		{ID: "v-2", DocumentCode: "QM-001", Status: domain.VersionPublished, IsLatest: true},
	}

	next, code, err := RemoveVersion("v-1", versions)
	assert.NoError(t, err)
	assert.Equal(t, "QM-001", code)
	assert.Len(t, next, 1)
	assert.Len(t, versions, 2)
}

func TestRemoveVersion_LatestRejected(t *testing.T) {
	versions := []domain.Version{
		{ID: "v-2", DocumentCode: "QM-001", Status: domain.VersionPublished, IsLatest: true},
	}

	_, _, err := RemoveVersion("v-2", versions)
	var invalid *apperrors.InvalidStateError
	assert.ErrorAs(t, err, &invalid)
}

func TestRemoveVersion_Missing(t *testing.T) {
	_, _, err := RemoveVersion("nope", nil)
	var notFound *apperrors.NotFoundError
	assert.ErrorAs(t, err, &notFound)
	assert.Equal(t, "version", notFound.Entity)
}

func TestSyncDocumentDates(t *testing.T) {
	doc := domain.Document{
		Code:          "QM-001",
		IssueDate:     date(2023, time.January, 1),
		EffectiveDate: date(2023, time.January, 15),
	}
	versions := []domain.Version{{
		ID:           "v-1",
		DocumentCode: "QM-001",
		ReleaseDate:  date(2024, time.March, 1),
		Status:       domain.VersionPublished,
		IsLatest:     true,
	}}

	updated := SyncDocumentDates(doc, versions)
	assert.Equal(t, date(2024, time.March, 1), updated.IssueDate)
	assert.Equal(t, date(2024, time.March, 1), updated.EffectiveDate)

	// Latest version not published: dates stay.
	versions[0].Status = domain.VersionDraft
	assert.Equal(t, doc, SyncDocumentDates(doc, versions))
}

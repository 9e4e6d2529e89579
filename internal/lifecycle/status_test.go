package lifecycle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"qms-document-control/internal/domain"
)

func publishedDoc(code string) domain.Document {
	return domain.Document{
		Code:   code,
		Title:  "Quality Manual",
		Status: domain.DocumentPublished,
	}
}

func latestVersionOf(code string, status domain.VersionStatus) domain.Version {
	return domain.Version{
		ID:           "v-" + code,
		DocumentCode: code,
		Label:        "1.0",
		Status:       status,
		IsLatest:     true,
	}
}

func TestDeriveStatus_FollowsLatestVersion(t *testing.T) {
	today := date(2024, time.June, 1)

	cases := []struct {
		name    string
		current domain.DocumentStatus
		latest  domain.VersionStatus
		want    domain.DocumentStatus
	}{
		{"published latest publishes", domain.DocumentDraft, domain.VersionPublished, domain.DocumentPublished},
		{"pending approval latest", domain.DocumentPublished, domain.VersionPendingApproval, domain.DocumentPendingApproval},
		{"draft latest on circulated doc", domain.DocumentPublished, domain.VersionDraft, domain.DocumentUnderReview},
		{"draft latest on new doc stays draft", domain.DocumentDraft, domain.VersionDraft, domain.DocumentDraft},
		{"recalled latest keeps current", domain.DocumentUnderReview, domain.VersionRecalled, domain.DocumentUnderReview},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			doc := domain.Document{Code: "QM-001", Status: tc.current}
			versions := []domain.Version{latestVersionOf("QM-001", tc.latest)}
			assert.Equal(t, tc.want, DeriveStatus(doc, versions, nil, today))
		})
	}
}

func TestDeriveStatus_NoLatestVersion(t *testing.T) {
	today := date(2024, time.June, 1)

	// A previously published document whose latest version vanished goes
	// back under review; anything else keeps its current status.
	doc := publishedDoc("QM-001")
	assert.Equal(t, domain.DocumentUnderReview, DeriveStatus(doc, nil, nil, today))

	doc.Status = domain.DocumentDraft
	assert.Equal(t, domain.DocumentDraft, DeriveStatus(doc, nil, nil, today))
}

// Expiry dominates every other rule.
func TestDeriveStatus_ExpiryOverride(t *testing.T) {
	today := date(2024, time.June, 1)
	expiry := date(2024, time.May, 31)

	doc := publishedDoc("QM-001")
	doc.ExpiryDate = &expiry
	versions := []domain.Version{latestVersionOf("QM-001", domain.VersionPublished)}

	assert.Equal(t, domain.DocumentExpired, DeriveStatus(doc, versions, nil, today))
}

func TestDeriveStatus_ExpiryOnTodayCounts(t *testing.T) {
	today := date(2024, time.June, 1)
	expiry := date(2024, time.June, 1)

	doc := publishedDoc("QM-001")
	doc.ExpiryDate = &expiry

	assert.Equal(t, domain.DocumentExpired,
		DeriveStatus(doc, []domain.Version{latestVersionOf("QM-001", domain.VersionPublished)}, nil, today))
}

func TestDeriveStatus_FutureExpiryIgnored(t *testing.T) {
	today := date(2024, time.June, 1)
	expiry := date(2024, time.June, 2)

	doc := publishedDoc("QM-001")
	doc.ExpiryDate = &expiry

	assert.Equal(t, domain.DocumentPublished,
		DeriveStatus(doc, []domain.Version{latestVersionOf("QM-001", domain.VersionPublished)}, nil, today))
}

func TestDeriveStatus_DueReviewPullsPublishedUnderReview(t *testing.T) {
	today := date(2024, time.June, 1)

	doc := publishedDoc("QM-001")
	versions := []domain.Version{latestVersionOf("QM-001", domain.VersionPublished)}
	schedules := []domain.ReviewSchedule{{
		ID:             "rs-1",
		DocumentCode:   "QM-001",
		NextReviewDate: date(2024, time.January, 1),
	}}

	assert.Equal(t, domain.DocumentUnderReview, DeriveStatus(doc, versions, schedules, today))
}

func TestDeriveStatus_CompletedReviewDoesNotTrigger(t *testing.T) {
	today := date(2024, time.June, 1)
	actual := date(2024, time.January, 2)

	doc := publishedDoc("QM-001")
	versions := []domain.Version{latestVersionOf("QM-001", domain.VersionPublished)}
	schedules := []domain.ReviewSchedule{{
		ID:               "rs-1",
		DocumentCode:     "QM-001",
		NextReviewDate:   date(2024, time.January, 1),
		ActualReviewDate: &actual,
		Result:           domain.ReviewContinue,
	}}

	assert.Equal(t, domain.DocumentPublished, DeriveStatus(doc, versions, schedules, today))
}

func TestDeriveStatus_ReviewDueOnlyAffectsPublished(t *testing.T) {
	today := date(2024, time.June, 1)

	doc := domain.Document{Code: "QM-001", Status: domain.DocumentPendingApproval}
	versions := []domain.Version{latestVersionOf("QM-001", domain.VersionPendingApproval)}
	schedules := []domain.ReviewSchedule{{
		ID:             "rs-1",
		DocumentCode:   "QM-001",
		NextReviewDate: date(2024, time.January, 1),
	}}

	assert.Equal(t, domain.DocumentPendingApproval, DeriveStatus(doc, versions, schedules, today))
}

// Derivation is pure: identical inputs, identical output, no mutation.
func TestDeriveStatus_PureAndIdempotent(t *testing.T) {
	today := date(2024, time.June, 1)
	doc := publishedDoc("QM-001")
	versions := []domain.Version{latestVersionOf("QM-001", domain.VersionPublished)}
	schedules := []domain.ReviewSchedule{{
		ID:             "rs-1",
		DocumentCode:   "QM-001",
		NextReviewDate: date(2025, time.January, 1),
	}}

	first := DeriveStatus(doc, versions, schedules, today)
	second := DeriveStatus(doc, versions, schedules, today)
	assert.Equal(t, first, second)

	// Already-correct status yields no change.
	doc.Status = first
	assert.Equal(t, first, DeriveStatus(doc, versions, schedules, today))

	assert.True(t, versions[0].IsLatest)
	assert.Equal(t, domain.VersionPublished, versions[0].Status)
}

func TestRefreshStatuses(t *testing.T) {
	today := date(2024, time.June, 1)
	expiry := date(2024, time.May, 1)

	expired := publishedDoc("QM-001")
	expired.ExpiryDate = &expiry
	stable := publishedDoc("QM-002")

	versions := []domain.Version{
		latestVersionOf("QM-001", domain.VersionPublished),
		latestVersionOf("QM-002", domain.VersionPublished),
	}

	docs, changed := RefreshStatuses([]domain.Document{expired, stable}, versions, nil, today)
	assert.True(t, changed)
	assert.Equal(t, domain.DocumentExpired, docs[0].Status)
	assert.Equal(t, domain.DocumentPublished, docs[1].Status)

	// Second pass is a no-op.
	_, changed = RefreshStatuses(docs, versions, nil, today)
	assert.False(t, changed)

	// Input slice untouched.
	assert.Equal(t, domain.DocumentPublished, expired.Status)
}

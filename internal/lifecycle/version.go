package lifecycle

import (
	"github.com/google/uuid"

	"qms-document-control/internal/domain"
	"qms-document-control/internal/errors"
)

// VersionSaveResult carries the updated version collection and the owning
// document code, so the caller can re-derive that document's status.
type VersionSaveResult struct {
	Versions     []domain.Version
	DocumentCode string
	Saved        domain.Version
}

// ApplyVersionSave inserts or replaces a version. When the incoming version
// is flagged latest, every other version of the same document loses the
// flag, and a currently published sibling is recalled if the incoming
// version is itself published. Input slices are never mutated.
func ApplyVersionSave(v domain.Version, versions []domain.Version) (VersionSaveResult, error) {
	if v.DocumentCode == "" {
		return VersionSaveResult{}, errors.Validation("version requires a document code")
	}
	if v.Label == "" {
		return VersionSaveResult{}, errors.Validation("version requires a label")
	}

	v.ReleaseDate = DateOnly(v.ReleaseDate)
	if v.ID == "" {
		v.ID = uuid.NewString()
	}

	next := make([]domain.Version, 0, len(versions)+1)
	replaced := false
	for _, existing := range versions {
		if existing.ID == v.ID {
			next = append(next, v)
			replaced = true
			continue
		}
		if v.IsLatest && existing.DocumentCode == v.DocumentCode {
			existing.IsLatest = false
			if v.Status == domain.VersionPublished && existing.Status == domain.VersionPublished {
				existing.Status = domain.VersionRecalled
			}
		}
		next = append(next, existing)
	}
	if !replaced {
		next = append(next, v)
	}

	return VersionSaveResult{
		Versions:     next,
		DocumentCode: v.DocumentCode,
		Saved:        v,
	}, nil
}

// RemoveVersion deletes a version by id. Deleting the latest version is
// rejected: the caller must promote another version first.
func RemoveVersion(id string, versions []domain.Version) ([]domain.Version, string, error) {
	var target domain.Version
	found := false
	for _, v := range versions {
		if v.ID == id {
			target = v
			found = true
			break
		}
	}
	if !found {
		return nil, "", errors.EntityNotFound("version", id)
	}
	if target.IsLatest {
		return nil, "", errors.InvalidState("cannot delete the latest version; promote another version first")
	}

	next := make([]domain.Version, 0, len(versions)-1)
	for _, v := range versions {
		if v.ID != id {
			next = append(next, v)
		}
	}
	return next, target.DocumentCode, nil
}

// SyncDocumentDates aligns a document's issue and effective dates with its
// latest published version, if it has one.
func SyncDocumentDates(doc domain.Document, versions []domain.Version) domain.Document {
	latest, found := LatestVersion(doc.Code, versions)
	if !found || latest.Status != domain.VersionPublished {
		return doc
	}
	doc.IssueDate = latest.ReleaseDate
	if doc.EffectiveDate.Before(latest.ReleaseDate) {
		doc.EffectiveDate = latest.ReleaseDate
	}
	return doc
}

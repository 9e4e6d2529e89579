package domain

// Snapshot is the full in-memory representation of the document-control
// state, as exchanged with the remote blob store. Personnel and the audit
// trail are relational and not part of the snapshot.
type Snapshot struct {
	Documents         []Document        `json:"documents"`
	Versions          []Version         `json:"versions"`
	ReviewSchedules   []ReviewSchedule  `json:"review_schedules"`
	ReviewFrequencies []ReviewFrequency `json:"review_frequencies"`
	Distributions     []Distribution    `json:"distributions"`
	InternalAudits    []InternalAudit   `json:"internal_audits"`
	Risks             []Risk            `json:"risks"`
}

// NewSnapshot returns an empty snapshot with all collections allocated.
func NewSnapshot() *Snapshot {
	return &Snapshot{
		Documents:         []Document{},
		Versions:          []Version{},
		ReviewSchedules:   []ReviewSchedule{},
		ReviewFrequencies: []ReviewFrequency{},
		Distributions:     []Distribution{},
		InternalAudits:    []InternalAudit{},
		Risks:             []Risk{},
	}
}

// Clone returns a copy with all collection slices duplicated, so a mutation
// built on the clone never leaks into the current snapshot.
func (s *Snapshot) Clone() *Snapshot {
	next := &Snapshot{
		Documents:         make([]Document, len(s.Documents)),
		Versions:          make([]Version, len(s.Versions)),
		ReviewSchedules:   make([]ReviewSchedule, len(s.ReviewSchedules)),
		ReviewFrequencies: make([]ReviewFrequency, len(s.ReviewFrequencies)),
		Distributions:     make([]Distribution, len(s.Distributions)),
		InternalAudits:    make([]InternalAudit, len(s.InternalAudits)),
		Risks:             make([]Risk, len(s.Risks)),
	}
	copy(next.Documents, s.Documents)
	copy(next.Versions, s.Versions)
	copy(next.ReviewSchedules, s.ReviewSchedules)
	copy(next.ReviewFrequencies, s.ReviewFrequencies)
	copy(next.Distributions, s.Distributions)
	copy(next.InternalAudits, s.InternalAudits)
	copy(next.Risks, s.Risks)
	return next
}

// DocumentByCode finds a document in the snapshot by its code.
func (s *Snapshot) DocumentByCode(code string) (Document, bool) {
	for _, d := range s.Documents {
		if d.Code == code {
			return d, true
		}
	}
	return Document{}, false
}

// FrequencyByID finds a review frequency lookup row.
func (s *Snapshot) FrequencyByID(id string) (ReviewFrequency, bool) {
	for _, f := range s.ReviewFrequencies {
		if f.ID == id {
			return f, true
		}
	}
	return ReviewFrequency{}, false
}

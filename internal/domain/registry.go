package domain

import "time"

// Distribution records the issuance of a controlled copy of a document.
type Distribution struct {
	ID            string     `json:"id"`
	DocumentCode  string     `json:"document_code"`
	Recipient     string     `json:"recipient"`
	CopyNumber    int        `json:"copy_number"`
	IssuedDate    time.Time  `json:"issued_date"`
	RetrievedDate *time.Time `json:"retrieved_date,omitempty"`
}

// AuditStatus is the state of an internal audit.
type AuditStatus string

const (
	AuditPlanned    AuditStatus = "planned"
	AuditInProgress AuditStatus = "in_progress"
	AuditClosed     AuditStatus = "closed"
)

// InternalAudit is a planned or executed internal quality audit.
type InternalAudit struct {
	ID        string      `json:"id"`
	AuditDate time.Time   `json:"audit_date"`
	Scope     string      `json:"scope"`
	AuditorID uint64      `json:"auditor_id"`
	Findings  string      `json:"findings,omitempty"`
	Status    AuditStatus `json:"status"`
}

// RiskStatus is the state of a risk register entry.
type RiskStatus string

const (
	RiskOpen      RiskStatus = "open"
	RiskMitigated RiskStatus = "mitigated"
	RiskAccepted  RiskStatus = "accepted"
	RiskClosed    RiskStatus = "closed"
)

// Risk is a risk register entry. Likelihood and Impact are 1..5.
type Risk struct {
	ID          string     `json:"id"`
	Description string     `json:"description"`
	Category    string     `json:"category"`
	Likelihood  int        `json:"likelihood"`
	Impact      int        `json:"impact"`
	Status      RiskStatus `json:"status"`
	OwnerID     uint64     `json:"owner_id"`
}

// Score is the risk matrix score (likelihood x impact), derived on read.
func (r Risk) Score() int {
	return r.Likelihood * r.Impact
}

package registry

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"qms-document-control/internal/domain"
	"qms-document-control/internal/errors"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

const dateLayout = "2006-01-02"

func currentUserID(c *gin.Context) uint64 {
	userID, _ := c.Get("user_id")
	id, _ := userID.(uint64)
	return id
}

type DistributionRequest struct {
	ID            string `json:"id"`
	DocumentCode  string `json:"document_code" binding:"required"`
	Recipient     string `json:"recipient" binding:"required,max=255"`
	CopyNumber    int    `json:"copy_number" binding:"required,min=1"`
	IssuedDate    string `json:"issued_date" binding:"required,datetime=2006-01-02"`
	RetrievedDate string `json:"retrieved_date" binding:"omitempty,datetime=2006-01-02"`
}

func (h *Handler) SaveDistribution(c *gin.Context) {
	var form DistributionRequest
	if err := c.ShouldBindJSON(&form); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	issuedDate, _ := time.Parse(dateLayout, form.IssuedDate)
	var retrievedDate *time.Time
	if form.RetrievedDate != "" {
		d, _ := time.Parse(dateLayout, form.RetrievedDate)
		retrievedDate = &d
	}

	saved, err := h.service.SaveDistribution(c.Request.Context(), currentUserID(c), domain.Distribution{
		ID:            form.ID,
		DocumentCode:  form.DocumentCode,
		Recipient:     form.Recipient,
		CopyNumber:    form.CopyNumber,
		IssuedDate:    issuedDate,
		RetrievedDate: retrievedDate,
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, saved)
}

func (h *Handler) DeleteDistribution(c *gin.Context) {
	if err := h.service.DeleteDistribution(c.Request.Context(), currentUserID(c), c.Param("id")); err != nil {
		c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

type InternalAuditRequest struct {
	ID        string `json:"id"`
	AuditDate string `json:"audit_date" binding:"required,datetime=2006-01-02"`
	Scope     string `json:"scope" binding:"required,max=500"`
	AuditorID uint64 `json:"auditor_id" binding:"required"`
	Findings  string `json:"findings" binding:"max=5000"`
	Status    string `json:"status" binding:"omitempty,oneof=planned in_progress closed"`
}

func (h *Handler) SaveInternalAudit(c *gin.Context) {
	var form InternalAuditRequest
	if err := c.ShouldBindJSON(&form); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	auditDate, _ := time.Parse(dateLayout, form.AuditDate)

	saved, err := h.service.SaveInternalAudit(c.Request.Context(), currentUserID(c), domain.InternalAudit{
		ID:        form.ID,
		AuditDate: auditDate,
		Scope:     form.Scope,
		AuditorID: form.AuditorID,
		Findings:  form.Findings,
		Status:    domain.AuditStatus(form.Status),
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, saved)
}

func (h *Handler) DeleteInternalAudit(c *gin.Context) {
	if err := h.service.DeleteInternalAudit(c.Request.Context(), currentUserID(c), c.Param("id")); err != nil {
		c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

type RiskRequest struct {
	ID          string `json:"id"`
	Description string `json:"description" binding:"required,max=1000"`
	Category    string `json:"category" binding:"max=64"`
	Likelihood  int    `json:"likelihood" binding:"required,min=1,max=5"`
	Impact      int    `json:"impact" binding:"required,min=1,max=5"`
	Status      string `json:"status" binding:"omitempty,oneof=open mitigated accepted closed"`
	OwnerID     uint64 `json:"owner_id"`
}

func (h *Handler) SaveRisk(c *gin.Context) {
	var form RiskRequest
	if err := c.ShouldBindJSON(&form); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	saved, err := h.service.SaveRisk(c.Request.Context(), currentUserID(c), domain.Risk{
		ID:          form.ID,
		Description: form.Description,
		Category:    form.Category,
		Likelihood:  form.Likelihood,
		Impact:      form.Impact,
		Status:      domain.RiskStatus(form.Status),
		OwnerID:     form.OwnerID,
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, saved)
}

func (h *Handler) DeleteRisk(c *gin.Context) {
	if err := h.service.DeleteRisk(c.Request.Context(), currentUserID(c), c.Param("id")); err != nil {
		c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

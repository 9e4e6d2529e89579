package qms

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

func parseDate(value string) (time.Time, error) {
	return time.Parse(dateLayout, value)
}

func parseOptionalDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	d, err := parseDate(value)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func currentUserID(c *gin.Context) uint64 {
	userID, _ := c.Get("user_id")
	id, _ := userID.(uint64)
	return id
}

// GetState returns the full snapshot for the UI to load.
func (h *Handler) GetState(c *gin.Context) {
	state, err := h.service.GetState(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, state)
}

type DocumentRequest struct {
	Code          string `json:"code" binding:"required,max=64"`
	Title         string `json:"title" binding:"required,min=1,max=255"`
	IssueDate     string `json:"issue_date" binding:"required,datetime=2006-01-02"`
	EffectiveDate string `json:"effective_date" binding:"required,datetime=2006-01-02"`
	ExpiryDate    string `json:"expiry_date" binding:"omitempty,datetime=2006-01-02"`
	ReviewerID    uint64 `json:"reviewer_id"`
	ApproverID    uint64 `json:"approver_id"`
}

func (h *Handler) SaveDocument(c *gin.Context) {
	var form DocumentRequest
	if err := c.ShouldBindJSON(&form); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	issueDate, _ := parseDate(form.IssueDate)
	effectiveDate, _ := parseDate(form.EffectiveDate)
	expiryDate, _ := parseOptionalDate(form.ExpiryDate)

	doc := domain.Document{
		Code:          form.Code,
		Title:         form.Title,
		IssueDate:     issueDate,
		EffectiveDate: effectiveDate,
		ExpiryDate:    expiryDate,
		ReviewerID:    form.ReviewerID,
		ApproverID:    form.ApproverID,
	}

	saved, err := h.service.SaveDocument(c.Request.Context(), currentUserID(c), doc)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, saved)
}

func (h *Handler) DeleteDocument(c *gin.Context) {
	code := c.Param("code")

	if err := h.service.DeleteDocument(c.Request.Context(), currentUserID(c), code); err != nil {
		c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}

type VersionRequest struct {
	ID          string `json:"id"`
	Label       string `json:"label" binding:"required,max=32"`
	ReleaseDate string `json:"release_date" binding:"required,datetime=2006-01-02"`
	Status      string `json:"status" binding:"required,oneof=draft pending_approval published recalled"`
	IsLatest    bool   `json:"is_latest"`
}

func (h *Handler) SaveVersion(c *gin.Context) {
	code := c.Param("code")

	var form VersionRequest
	if err := c.ShouldBindJSON(&form); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	releaseDate, _ := parseDate(form.ReleaseDate)

	version := domain.Version{
		ID:           form.ID,
		DocumentCode: code,
		Label:        form.Label,
		ReleaseDate:  releaseDate,
		Status:       domain.VersionStatus(form.Status),
		IsLatest:     form.IsLatest,
	}

	saved, err := h.service.SaveVersion(c.Request.Context(), currentUserID(c), version)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, saved)
}

func (h *Handler) DeleteVersion(c *gin.Context) {
	id := c.Param("id")

	if err := h.service.DeleteVersion(c.Request.Context(), currentUserID(c), id); err != nil {
		c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}

type ReviewRequest struct {
	ID               string `json:"id"`
	DocumentCode     string `json:"document_code" binding:"required"`
	FrequencyID      string `json:"frequency_id" binding:"required"`
	NextReviewDate   string `json:"next_review_date" binding:"required,datetime=2006-01-02"`
	ResponsibleID    uint64 `json:"responsible_id" binding:"required"`
	ActualReviewDate string `json:"actual_review_date" binding:"omitempty,datetime=2006-01-02"`
	Result           string `json:"result" binding:"omitempty,oneof=continue needs_revision withdrawn"`
	Notes            string `json:"notes" binding:"max=2000"`
}

// SaveReview saves a review cycle; with an actual date and result set it
// completes the cycle and may spawn the next one.
func (h *Handler) SaveReview(c *gin.Context) {
	var form ReviewRequest
	if err := c.ShouldBindJSON(&form); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	nextReviewDate, _ := parseDate(form.NextReviewDate)
	actualReviewDate, _ := parseOptionalDate(form.ActualReviewDate)

	schedule := domain.ReviewSchedule{
		ID:               form.ID,
		DocumentCode:     form.DocumentCode,
		FrequencyID:      form.FrequencyID,
		NextReviewDate:   nextReviewDate,
		ResponsibleID:    form.ResponsibleID,
		ActualReviewDate: actualReviewDate,
		Result:           domain.ReviewResult(form.Result),
		Notes:            form.Notes,
	}

	result, err := h.service.SaveReview(c.Request.Context(), currentUserID(c), schedule)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, result)
}

type FrequencyRequest struct {
	ID         string `json:"id"`
	Name       string `json:"name" binding:"required,max=64"`
	MonthCount int    `json:"month_count" binding:"required,min=1,max=120"`
}

func (h *Handler) SaveFrequency(c *gin.Context) {
	var form FrequencyRequest
	if err := c.ShouldBindJSON(&form); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	saved, err := h.service.SaveFrequency(c.Request.Context(), currentUserID(c), domain.ReviewFrequency{
		ID:         form.ID,
		Name:       form.Name,
		MonthCount: form.MonthCount,
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, saved)
}

func (h *Handler) DeleteFrequency(c *gin.Context) {
	id := c.Param("id")

	if err := h.service.DeleteFrequency(c.Request.Context(), currentUserID(c), id); err != nil {
		c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) Notifications(c *gin.Context) {
	user := domain.User{
		ID:   currentUserID(c),
		Role: c.GetString("user_role"),
	}

	notifications := h.service.Notifications(c.Request.Context(), user)
	if notifications == nil {
		notifications = []domain.Notification{}
	}

	c.JSON(http.StatusOK, notifications)
}

// RefreshStatuses forces a derivation pass over all documents.
func (h *Handler) RefreshStatuses(c *gin.Context) {
	changed, err := h.service.RefreshStatuses(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"changed": changed})
}

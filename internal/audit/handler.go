package audit

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"qms-document-control/internal/utils"
)

type Handler struct {
	logger Logger
}

func NewHandler(logger Logger) *Handler {
	return &Handler{logger: logger}
}

// List returns the audit trail, newest first.
func (h *Handler) List(c *gin.Context) {
	page, pageSize := utils.GetPaginationParams(c)

	entries, meta, err := h.logger.List(c.Request.Context(), page, pageSize)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": entries, "meta": meta})
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"moneylens/internal/models"
	"moneylens/internal/observability"
	"moneylens/internal/services"
)

// BulkUploadHandler handles bulk-upload requests.
type BulkUploadHandler struct {
	bulkUploadService services.BulkUploadServicer
	auditService      services.AuditServicer
	metrics           *observability.Metrics
}

// NewBulkUploadHandler creates a new BulkUploadHandler.
func NewBulkUploadHandler(bulkUploadService services.BulkUploadServicer, auditService services.AuditServicer, metrics *observability.Metrics) *BulkUploadHandler {
	return &BulkUploadHandler{bulkUploadService: bulkUploadService, auditService: auditService, metrics: metrics}
}

// CommitRequest names the preview to commit.
type CommitRequest struct {
	PreviewID string `json:"preview_id" binding:"required"`
}

// BulkInsert handles a direct bulk upload
// @Summary     Bulk insert
// @Description Create the listed reference rows and insert every transaction in one database transaction
// @Tags        bulk-upload
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body models.BulkPayload true "Bulk-upload document"
// @Success     201 {object} models.BulkResult "What was created"
// @Failure     400 {object} ErrorResponse "Invalid document"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /transactions/bulk [post]
func (h *BulkUploadHandler) BulkInsert(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var payload models.BulkPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		invalidInput(c, err)
		return
	}

	result, err := h.bulkUploadService.BulkInsert(c.Request.Context(), userID, payload)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.metrics.BulkRowsInserted(result.Inserted)
	h.auditService.Log(c.Request.Context(), userID, "BULK_INSERT", "transaction", "", c.ClientIP(),
		map[string]interface{}{"inserted": result.Inserted})
	c.JSON(http.StatusCreated, gin.H{"result": result})
}

// Preview prepares a bulk upload for confirmation
// @Summary     Preview bulk upload
// @Description Validate the document, report new reference rows, totals and likely duplicates, and hold it for commit
// @Tags        bulk-upload
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       date    query string            false "Move every row to this date (YYYY-MM-DD)"
// @Param       request body  models.BulkPayload true  "Bulk-upload document"
// @Success     200 {object} models.BulkPreview "Preview"
// @Failure     400 {object} ErrorResponse "Invalid document"
// @Router      /bulk-upload/preview [post]
func (h *BulkUploadHandler) Preview(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	targetDate, err := queryDate(c, "date")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var payload models.BulkPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		invalidInput(c, err)
		return
	}

	preview, err := h.bulkUploadService.Preview(c.Request.Context(), userID, payload, targetDate)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"preview": preview})
}

// Commit inserts a previewed bulk upload
// @Summary     Commit bulk upload
// @Description A preview can be committed once, before it expires
// @Tags        bulk-upload
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CommitRequest true "Preview to commit"
// @Success     201 {object} models.BulkResult "What was created"
// @Failure     404 {object} ErrorResponse "Preview not found or expired"
// @Router      /bulk-upload/commit [post]
func (h *BulkUploadHandler) Commit(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CommitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidInput(c, err)
		return
	}

	result, err := h.bulkUploadService.Commit(c.Request.Context(), userID, req.PreviewID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.metrics.BulkRowsInserted(result.Inserted)
	h.auditService.Log(c.Request.Context(), userID, "BULK_COMMIT", "transaction", req.PreviewID, c.ClientIP(),
		map[string]interface{}{"inserted": result.Inserted})
	c.JSON(http.StatusCreated, gin.H{"result": result})
}

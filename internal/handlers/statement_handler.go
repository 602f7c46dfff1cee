package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "moneylens/internal/errors"
	"moneylens/internal/services"
)

// StatementHandler serves PDF statements.
type StatementHandler struct {
	statementService services.StatementServicer
}

// NewStatementHandler creates a new StatementHandler.
func NewStatementHandler(statementService services.StatementServicer) *StatementHandler {
	return &StatementHandler{statementService: statementService}
}

// GetStatement renders the statement for a date range
// @Summary     Download statement
// @Tags        statements
// @Produce     application/pdf
// @Security    BearerAuth
// @Param       from query string true "First day (YYYY-MM-DD)"
// @Param       to   query string true "Last day (YYYY-MM-DD)"
// @Success     200 {file} binary "PDF statement"
// @Failure     400 {object} ErrorResponse "Invalid range"
// @Router      /statements [get]
func (h *StatementHandler) GetStatement(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	from, err := queryDate(c, "from")
	if err != nil {
		respondWithError(c, err)
		return
	}
	to, err := queryDate(c, "to")
	if err != nil {
		respondWithError(c, err)
		return
	}
	if from == nil || to == nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "from and to are required"))
		return
	}
	if to.Before(from.Time) {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "to must not be before from"))
		return
	}

	pdf, err := h.statementService.Render(c.Request.Context(), userID, *from, *to)
	if err != nil {
		respondWithError(c, err)
		return
	}

	filename := "statement-" + from.String() + "-" + to.String() + ".pdf"
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}

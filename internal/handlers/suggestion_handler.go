package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "moneylens/internal/errors"
	"moneylens/internal/observability"
	"moneylens/internal/services"
)

// SuggestionHandler serves category suggestions.
type SuggestionHandler struct {
	suggestionService services.SuggestionServicer
	metrics           *observability.Metrics
}

// NewSuggestionHandler creates a new SuggestionHandler.
func NewSuggestionHandler(suggestionService services.SuggestionServicer, metrics *observability.Metrics) *SuggestionHandler {
	return &SuggestionHandler{suggestionService: suggestionService, metrics: metrics}
}

// SuggestCategories proposes categories for uncategorized transactions
// @Summary     Suggest categories
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       type  query string true  "earn, spend or save"
// @Param       limit query int    false "At most this many transactions"
// @Success     200 {object} map[string][]models.CategorySuggestion "Suggestions"
// @Failure     502 {object} ErrorResponse "Model call failed"
// @Failure     503 {object} ErrorResponse "Suggestions not configured"
// @Router      /transactions/suggestions [get]
func (h *SuggestionHandler) SuggestCategories(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	txType, err := queryType(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	if txType == nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "type is required"))
		return
	}
	limit, err := queryInt(c, "limit")
	if err != nil {
		respondWithError(c, err)
		return
	}

	suggestions, err := h.suggestionService.SuggestCategories(c.Request.Context(), userID, *txType, limit)
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) && appErr.Code == apperrors.ErrUpstream.Code {
			h.metrics.UpstreamError("gemini")
		}
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"suggestions": suggestions})
}

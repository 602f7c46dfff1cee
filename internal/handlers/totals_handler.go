package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"moneylens/internal/models"
	"moneylens/internal/services"
)

// TotalsHandler serves the per-period aggregates.
type TotalsHandler struct {
	totalsService services.TotalsServicer
	now           func() time.Time
}

// NewTotalsHandler creates a new TotalsHandler.
func NewTotalsHandler(totalsService services.TotalsServicer) *TotalsHandler {
	return &TotalsHandler{totalsService: totalsService, now: time.Now}
}

// OverviewResponse is a month overview with its net figure.
type OverviewResponse struct {
	models.MonthOverview
	Net decimal.Decimal `json:"net"`
}

// totalsRequest is what every totals route reads from the query string.
type totalsRequest struct {
	userID  string
	period  *models.Date
	tagsAny []string
}

func parseTotalsRequest(c *gin.Context, periodKey string) (*totalsRequest, bool) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return nil, false
	}
	req := &totalsRequest{userID: userID, tagsAny: queryList(c, "tags_any")}
	if periodKey != "" {
		if req.period, err = queryDate(c, periodKey); err != nil {
			respondWithError(c, err)
			return nil, false
		}
	}
	return req, true
}

func respondTotals[T any](c *gin.Context, rows []T, err error) {
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"totals": rows})
}

// MonthlyTotals returns per-month totals by type
// @Summary     Monthly totals
// @Tags        totals
// @Produce     json
// @Security    BearerAuth
// @Param       month query string false "Any day of the month (YYYY-MM-DD); all months when omitted"
// @Success     200 {object} map[string][]models.MonthlyTotal "Totals"
// @Failure     400 {object} ErrorResponse "Invalid month"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /totals/monthly [get]
func (h *TotalsHandler) MonthlyTotals(c *gin.Context) {
	req, ok := parseTotalsRequest(c, "month")
	if !ok {
		return
	}
	rows, err := h.totalsService.MonthlyTotals(c.Request.Context(), req.userID, req.period)
	respondTotals(c, rows, err)
}

// YearlyTotals returns per-year totals by type
// @Summary     Yearly totals
// @Tags        totals
// @Produce     json
// @Security    BearerAuth
// @Param       year query string false "Any day of the year (YYYY-MM-DD); all years when omitted"
// @Success     200 {object} map[string][]models.YearlyTotal "Totals"
// @Failure     400 {object} ErrorResponse "Invalid year"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /totals/yearly [get]
func (h *TotalsHandler) YearlyTotals(c *gin.Context) {
	req, ok := parseTotalsRequest(c, "year")
	if !ok {
		return
	}
	rows, err := h.totalsService.YearlyTotals(c.Request.Context(), req.userID, req.period)
	respondTotals(c, rows, err)
}

// MonthlyCategoryTotals returns per-month totals by category and type
// @Summary     Monthly category totals
// @Tags        totals
// @Produce     json
// @Security    BearerAuth
// @Param       month query string false "Any day of the month (YYYY-MM-DD)"
// @Success     200 {object} map[string][]models.MonthlyCategoryTotal "Totals"
// @Failure     400 {object} ErrorResponse "Invalid month"
// @Router      /totals/monthly/categories [get]
func (h *TotalsHandler) MonthlyCategoryTotals(c *gin.Context) {
	req, ok := parseTotalsRequest(c, "month")
	if !ok {
		return
	}
	rows, err := h.totalsService.MonthlyCategoryTotals(c.Request.Context(), req.userID, req.period)
	respondTotals(c, rows, err)
}

// YearlyCategoryTotals returns per-year totals by category and type
// @Summary     Yearly category totals
// @Tags        totals
// @Produce     json
// @Security    BearerAuth
// @Param       year query string false "Any day of the year (YYYY-MM-DD)"
// @Success     200 {object} map[string][]models.YearlyCategoryTotal "Totals"
// @Failure     400 {object} ErrorResponse "Invalid year"
// @Router      /totals/yearly/categories [get]
func (h *TotalsHandler) YearlyCategoryTotals(c *gin.Context) {
	req, ok := parseTotalsRequest(c, "year")
	if !ok {
		return
	}
	rows, err := h.totalsService.YearlyCategoryTotals(c.Request.Context(), req.userID, req.period)
	respondTotals(c, rows, err)
}

// MonthlyTaggedTypeTotals returns per-month totals by tag list and type
// @Summary     Monthly tagged totals
// @Tags        totals
// @Produce     json
// @Security    BearerAuth
// @Param       month    query string false "Any day of the month (YYYY-MM-DD)"
// @Param       tags_any query string false "Comma-separated tags"
// @Success     200 {object} map[string][]models.MonthlyTaggedTypeTotal "Totals"
// @Router      /totals/monthly/tagged [get]
func (h *TotalsHandler) MonthlyTaggedTypeTotals(c *gin.Context) {
	req, ok := parseTotalsRequest(c, "month")
	if !ok {
		return
	}
	rows, err := h.totalsService.MonthlyTaggedTypeTotals(c.Request.Context(), req.userID, req.period, req.tagsAny)
	respondTotals(c, rows, err)
}

// YearlyTaggedTypeTotals returns per-year totals by tag list and type
// @Summary     Yearly tagged totals
// @Tags        totals
// @Produce     json
// @Security    BearerAuth
// @Param       year     query string false "Any day of the year (YYYY-MM-DD)"
// @Param       tags_any query string false "Comma-separated tags"
// @Success     200 {object} map[string][]models.YearlyTaggedTypeTotal "Totals"
// @Router      /totals/yearly/tagged [get]
func (h *TotalsHandler) YearlyTaggedTypeTotals(c *gin.Context) {
	req, ok := parseTotalsRequest(c, "year")
	if !ok {
		return
	}
	rows, err := h.totalsService.YearlyTaggedTypeTotals(c.Request.Context(), req.userID, req.period, req.tagsAny)
	respondTotals(c, rows, err)
}

// TaggedTypeTotals returns all-time totals by tag list and type
// @Summary     Tagged totals
// @Tags        totals
// @Produce     json
// @Security    BearerAuth
// @Param       tags_any query string false "Comma-separated tags"
// @Success     200 {object} map[string][]models.TaggedTypeTotal "Totals"
// @Router      /totals/tagged [get]
func (h *TotalsHandler) TaggedTypeTotals(c *gin.Context) {
	req, ok := parseTotalsRequest(c, "")
	if !ok {
		return
	}
	rows, err := h.totalsService.TaggedTypeTotals(c.Request.Context(), req.userID, req.tagsAny)
	respondTotals(c, rows, err)
}

// CurrentMonthCategoryTotals returns this month's category totals
// @Summary     Current month category totals
// @Tags        totals
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} map[string][]models.MonthlyCategoryTotal "Totals"
// @Router      /totals/current-month/categories [get]
func (h *TotalsHandler) CurrentMonthCategoryTotals(c *gin.Context) {
	req, ok := parseTotalsRequest(c, "")
	if !ok {
		return
	}
	rows, err := h.totalsService.CurrentMonthCategoryTotals(c.Request.Context(), req.userID)
	respondTotals(c, rows, err)
}

// CurrentYearCategoryTotals returns this year's category totals
// @Summary     Current year category totals
// @Tags        totals
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} map[string][]models.YearlyCategoryTotal "Totals"
// @Router      /totals/current-year/categories [get]
func (h *TotalsHandler) CurrentYearCategoryTotals(c *gin.Context) {
	req, ok := parseTotalsRequest(c, "")
	if !ok {
		return
	}
	rows, err := h.totalsService.CurrentYearCategoryTotals(c.Request.Context(), req.userID)
	respondTotals(c, rows, err)
}

// MonthOverview returns the dashboard figures of one month
// @Summary     Month overview
// @Tags        totals
// @Produce     json
// @Security    BearerAuth
// @Param       month query string false "Any day of the month (YYYY-MM-DD); defaults to the current month"
// @Success     200 {object} OverviewResponse "Overview"
// @Failure     400 {object} ErrorResponse "Invalid month"
// @Router      /totals/overview [get]
func (h *TotalsHandler) MonthOverview(c *gin.Context) {
	req, ok := parseTotalsRequest(c, "month")
	if !ok {
		return
	}
	month := models.DateOf(h.now())
	if req.period != nil {
		month = *req.period
	}

	overview, err := h.totalsService.MonthOverview(c.Request.Context(), req.userID, month)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"overview": OverviewResponse{MonthOverview: *overview, Net: overview.Net()}})
}

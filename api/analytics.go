package api

import (
	"expensetracker/database"
	"expensetracker/middleware"
	"expensetracker/service"

	"github.com/gin-gonic/gin"
)

// AnalyticsHandler serves breakdown and summary routes.
type AnalyticsHandler struct{}

// NewAnalyticsHandler creates an analytics handler.
func NewAnalyticsHandler() *AnalyticsHandler {
	return &AnalyticsHandler{}
}

// CategoryBreakdown groups spending and income by category
// @Summary Category breakdown
// @Description Groups expenses by category and income by source within an optional date window, sorted by summed amount descending.
// @Tags analytics
// @Produce json
// @Security BearerAuth
// @Param startDate query string false "window start (2006-01-02)"
// @Param endDate query string false "window end, inclusive (2006-01-02)"
// @Success 200 {object} Response "breakdowns"
// @Failure 400 {object} Response "invalid date"
// @Failure 401 {object} Response "unauthorized"
// @Router /api/v1/analytics/category-breakdown [get]
func (h *AnalyticsHandler) CategoryBreakdown(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	start, end, err := parseDashboardRange(c)
	if err != nil {
		BadRequest(c, err.Error())
		return
	}

	agg := service.NewAggregationService(database.DB)

	expensesByCategory, err := agg.ExpenseCategoryBreakdown(userID, start, end, 0)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "failed to load expense breakdown"))
		return
	}

	incomeBySource, err := agg.IncomeSourceBreakdown(userID, start, end, 0)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "failed to load income breakdown"))
		return
	}

	Success(c, gin.H{
		"expenses_by_category": expensesByCategory,
		"income_by_source":     incomeBySource,
	})
}

// Summary returns windowed totals
// @Summary Totals summary
// @Description Returns summed income, summed expenses and the net balance for an optional date window.
// @Tags analytics
// @Produce json
// @Security BearerAuth
// @Param startDate query string false "window start (2006-01-02)"
// @Param endDate query string false "window end, inclusive (2006-01-02)"
// @Success 200 {object} Response "totals"
// @Failure 400 {object} Response "invalid date"
// @Failure 401 {object} Response "unauthorized"
// @Router /api/v1/analytics/summary [get]
func (h *AnalyticsHandler) Summary(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	start, end, err := parseDashboardRange(c)
	if err != nil {
		BadRequest(c, err.Error())
		return
	}

	agg := service.NewAggregationService(database.DB)

	totalIncome, err := agg.IncomeTotal(userID, start, end)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "failed to load income total"))
		return
	}

	totalExpenses, err := agg.ExpenseTotal(userID, start, end)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "failed to load expense total"))
		return
	}

	Success(c, gin.H{
		"total_income":   totalIncome,
		"total_expenses": totalExpenses,
		"net_balance":    totalIncome - totalExpenses,
	})
}

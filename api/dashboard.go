package api

import (
	"time"

	"expensetracker/database"
	"expensetracker/middleware"
	"expensetracker/models"
	"expensetracker/service"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

// DashboardHandler serves the aggregated dashboard view.
type DashboardHandler struct {
	mailer service.Mailer
}

// NewDashboardHandler creates a dashboard handler.
func NewDashboardHandler(mailer service.Mailer) *DashboardHandler {
	return &DashboardHandler{mailer: mailer}
}

// parseDashboardRange reads the optional startDate/endDate query parameters.
// The end date is inclusive, so the returned window is [start, end+1d).
func parseDashboardRange(c *gin.Context) (time.Time, time.Time, error) {
	var start, end time.Time

	if s := c.Query("startDate"); s != "" {
		t, err := parseEntryDate(s)
		if err != nil {
			return start, end, err
		}
		start = t
	}
	if s := c.Query("endDate"); s != "" {
		t, err := parseEntryDate(s)
		if err != nil {
			return start, end, err
		}
		end = t.AddDate(0, 0, 1)
	}
	return start, end, nil
}

// Get returns the dashboard
// @Summary Dashboard
// @Description Returns balance totals, recent transactions, a top-category breakdown and the budget status in one response. The underlying queries run concurrently.
// @Tags dashboard
// @Produce json
// @Security BearerAuth
// @Param startDate query string false "start of the totals window (2006-01-02)"
// @Param endDate query string false "end of the totals window, inclusive (2006-01-02)"
// @Success 200 {object} Response "dashboard data"
// @Failure 400 {object} Response "invalid date"
// @Failure 401 {object} Response "unauthorized"
// @Router /api/v1/dashboard [get]
func (h *DashboardHandler) Get(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	start, end, err := parseDashboardRange(c)
	if err != nil {
		BadRequest(c, err.Error())
		return
	}

	now := time.Now()
	agg := service.NewAggregationService(database.DB)
	budgets := service.NewBudgetService(database.DB, h.mailer)

	var (
		totalIncome        float64
		totalExpense       float64
		last30DaysExpenses float64
		last60DaysIncome   []models.Income
		topCategories      []service.CategoryStat
		recent             []service.Transaction
		budgetStatus       *service.BudgetStatus
	)

	g, _ := errgroup.WithContext(c.Request.Context())

	g.Go(func() error {
		var err error
		totalIncome, err = agg.IncomeTotal(userID, start, end)
		return err
	})
	g.Go(func() error {
		var err error
		totalExpense, err = agg.ExpenseTotal(userID, start, end)
		return err
	})
	g.Go(func() error {
		var err error
		last30DaysExpenses, err = agg.ExpenseTotal(userID, now.AddDate(0, 0, -30), time.Time{})
		return err
	})
	g.Go(func() error {
		return database.DB.Where("user_id = ? AND date >= ?", userID, now.AddDate(0, 0, -60)).
			Order("date DESC").Find(&last60DaysIncome).Error
	})
	g.Go(func() error {
		var err error
		topCategories, err = agg.ExpenseCategoryBreakdown(userID, start, end, 5)
		return err
	})
	g.Go(func() error {
		var err error
		recent, err = agg.RecentTransactions(userID, 5)
		return err
	})
	g.Go(func() error {
		var err error
		budgetStatus, err = budgets.Evaluate(userID, now)
		return err
	})

	if err := g.Wait(); err != nil {
		InternalError(c, SafeErrorMessage(err, "failed to load dashboard"))
		return
	}

	Success(c, gin.H{
		"total_income":          totalIncome,
		"total_expenses":        totalExpense,
		"total_balance":         totalIncome - totalExpense,
		"last_30_days_expenses": last30DaysExpenses,
		"last_60_days_income":   last60DaysIncome,
		"top_categories":        topCategories,
		"recent_transactions":   recent,
		"budget":                budgetStatus,
	})
}

package api

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var incomeCols = []string{"id", "user_id", "source", "amount", "date", "icon", "created_at", "updated_at", "deleted_at"}

func TestDashboardHandler_Get(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()
	testConfig(t)

	// the dashboard queries run concurrently
	mock.MatchExpectationsInOrder(false)

	// totals over the open window
	mock.ExpectQuery("SELECT COALESCE\\(SUM\\(amount\\), 0\\) FROM `incomes`").
		WithArgs(uint(1)).
		WillReturnRows(sqlmock.NewRows([]string{"total"}).AddRow(3000.0))
	mock.ExpectQuery("SELECT COALESCE\\(SUM\\(amount\\), 0\\) FROM `expenses`").
		WithArgs(uint(1)).
		WillReturnRows(sqlmock.NewRows([]string{"total"}).AddRow(800.0))

	// last 30 days of spending
	mock.ExpectQuery("SELECT COALESCE\\(SUM\\(amount\\), 0\\) FROM `expenses`").
		WithArgs(uint(1), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"total"}).AddRow(250.0))

	// last 60 days of income entries
	mock.ExpectQuery("SELECT .* FROM `incomes` WHERE \\(?user_id = \\? AND date >= \\?\\)?").
		WithArgs(uint(1), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(incomeCols).
			AddRow(3, 1, "Salary", 3000.0, time.Now().AddDate(0, 0, -10), "", time.Now(), time.Now(), nil))

	// top categories
	mock.ExpectQuery("SELECT category, SUM\\(amount\\) as amount, COUNT\\(\\*\\) as count FROM `expenses`").
		WithArgs(uint(1)).
		WillReturnRows(sqlmock.NewRows([]string{"category", "amount", "count"}).
			AddRow("Rent", 600.0, 1).
			AddRow("Food", 200.0, 4))

	// recent transactions, expenses then incomes
	mock.ExpectQuery("SELECT .* FROM `expenses`").
		WithArgs(uint(1)).
		WillReturnRows(sqlmock.NewRows(expenseCols).
			AddRow(1, 1, "Food", 50.0, time.Now().AddDate(0, 0, -1), "", time.Now(), time.Now(), nil))
	mock.ExpectQuery("SELECT .* FROM `incomes`").
		WithArgs(uint(1)).
		WillReturnRows(sqlmock.NewRows(incomeCols).
			AddRow(3, 1, "Salary", 3000.0, time.Now().AddDate(0, 0, -10), "", time.Now(), time.Now(), nil))

	// budget status
	expectBudgetLookup(mock, sqlmock.NewRows(budgetCols))

	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.GET("/dashboard", NewDashboardHandler(disabledMailer()).Get)

	req := httptest.NewRequest("GET", "/dashboard", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp struct {
		Data struct {
			TotalIncome        float64                  `json:"total_income"`
			TotalExpenses      float64                  `json:"total_expenses"`
			TotalBalance       float64                  `json:"total_balance"`
			Last30DaysExpenses float64                  `json:"last_30_days_expenses"`
			TopCategories      []map[string]interface{} `json:"top_categories"`
			RecentTransactions []map[string]interface{} `json:"recent_transactions"`
			Budget             struct {
				HasBudget bool `json:"has_budget"`
			} `json:"budget"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.Equal(t, 3000.0, resp.Data.TotalIncome)
	assert.Equal(t, 800.0, resp.Data.TotalExpenses)
	assert.Equal(t, 2200.0, resp.Data.TotalBalance)
	assert.Equal(t, 250.0, resp.Data.Last30DaysExpenses)
	require.Len(t, resp.Data.TopCategories, 2)
	assert.Equal(t, "Rent", resp.Data.TopCategories[0]["category"])
	require.Len(t, resp.Data.RecentTransactions, 2)
	// newest entry first
	assert.Equal(t, "expense", resp.Data.RecentTransactions[0]["type"])
	assert.False(t, resp.Data.Budget.HasBudget)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDashboardHandler_Get_InvalidDate(t *testing.T) {
	_, cleanup := setupMockDB(t)
	defer cleanup()
	testConfig(t)

	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.GET("/dashboard", NewDashboardHandler(disabledMailer()).Get)

	req := httptest.NewRequest("GET", "/dashboard?startDate=not-a-date", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 400, w.Code)
}

func TestAnalyticsHandler_Summary(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()
	testConfig(t)

	mock.ExpectQuery("SELECT COALESCE\\(SUM\\(amount\\), 0\\) FROM `incomes`").
		WithArgs(uint(1), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"total"}).AddRow(3000.0))
	mock.ExpectQuery("SELECT COALESCE\\(SUM\\(amount\\), 0\\) FROM `expenses`").
		WithArgs(uint(1), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"total"}).AddRow(1200.0))

	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.GET("/analytics/summary", NewAnalyticsHandler().Summary)

	req := httptest.NewRequest("GET", "/analytics/summary?startDate=2024-05-01&endDate=2024-05-31", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp struct {
		Data struct {
			TotalIncome   float64 `json:"total_income"`
			TotalExpenses float64 `json:"total_expenses"`
			NetBalance    float64 `json:"net_balance"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 3000.0, resp.Data.TotalIncome)
	assert.Equal(t, 1200.0, resp.Data.TotalExpenses)
	assert.Equal(t, 1800.0, resp.Data.NetBalance)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAnalyticsHandler_CategoryBreakdown(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()
	testConfig(t)

	mock.ExpectQuery("SELECT category, SUM\\(amount\\) as amount, COUNT\\(\\*\\) as count FROM `expenses`").
		WithArgs(uint(1)).
		WillReturnRows(sqlmock.NewRows([]string{"category", "amount", "count"}).
			AddRow("Food", 150.0, 2))
	mock.ExpectQuery("SELECT source as category, SUM\\(amount\\) as amount, COUNT\\(\\*\\) as count FROM `incomes`").
		WithArgs(uint(1)).
		WillReturnRows(sqlmock.NewRows([]string{"category", "amount", "count"}).
			AddRow("Salary", 3000.0, 1))

	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.GET("/analytics/category-breakdown", NewAnalyticsHandler().CategoryBreakdown)

	req := httptest.NewRequest("GET", "/analytics/category-breakdown", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp struct {
		Data struct {
			ExpensesByCategory []map[string]interface{} `json:"expenses_by_category"`
			IncomeBySource     []map[string]interface{} `json:"income_by_source"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data.ExpensesByCategory, 1)
	require.Len(t, resp.Data.IncomeBySource, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}

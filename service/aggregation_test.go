package service

import (
	"testing"
	"time"

	"expensetracker/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(d int) time.Time {
	return time.Date(2024, 5, d, 0, 0, 0, 0, time.UTC)
}

func TestMergeTransactions(t *testing.T) {
	expenses := []models.Expense{
		{ID: 1, Category: "Food", Amount: 100, Date: day(10)},
		{ID: 2, Category: "Fuel", Amount: 30, Date: day(2)},
		{ID: 3, Category: "Rent", Amount: 800, Date: day(20)},
	}
	incomes := []models.Income{
		{ID: 4, Source: "Salary", Amount: 3000, Date: day(1)},
		{ID: 5, Source: "Freelance", Amount: 200, Date: day(15)},
		{ID: 6, Source: "Dividends", Amount: 50, Date: day(25)},
	}

	merged := MergeTransactions(expenses, incomes, 5)

	// the 5 most recent across both lists, newest first
	require.Len(t, merged, 5)
	assert.Equal(t, "income", merged[0].Type)
	assert.Equal(t, "Dividends", merged[0].Label)
	assert.Equal(t, "expense", merged[1].Type)
	assert.Equal(t, "Rent", merged[1].Label)
	assert.Equal(t, "Freelance", merged[2].Label)
	assert.Equal(t, "Food", merged[3].Label)
	assert.Equal(t, "Fuel", merged[4].Label)

	for i := 1; i < len(merged); i++ {
		assert.False(t, merged[i].Date.After(merged[i-1].Date), "dates must be descending")
	}
}

func TestMergeTransactionsNoLimit(t *testing.T) {
	merged := MergeTransactions(
		[]models.Expense{{ID: 1, Category: "Food", Amount: 10, Date: day(1)}},
		nil,
		0,
	)
	require.Len(t, merged, 1)
	assert.Equal(t, "expense", merged[0].Type)
	assert.Equal(t, uint(1), merged[0].ID)
}

func TestExpenseCategoryBreakdown(t *testing.T) {
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT category, SUM\\(amount\\) as amount, COUNT\\(\\*\\) as count FROM `expenses`").
		WithArgs(uint(1)).
		WillReturnRows(sqlmock.NewRows([]string{"category", "amount", "count"}).
			AddRow("Food", 150.0, 2).
			AddRow("Fuel", 30.0, 1))

	agg := NewAggregationService(db)
	stats, err := agg.ExpenseCategoryBreakdown(1, time.Time{}, time.Time{}, 0)
	require.NoError(t, err)

	require.Len(t, stats, 2)
	assert.Equal(t, CategoryStat{Category: "Food", Amount: 150, Count: 2}, stats[0])
	assert.Equal(t, CategoryStat{Category: "Fuel", Amount: 30, Count: 1}, stats[1])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestIncomeSourceBreakdown(t *testing.T) {
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT source as category, SUM\\(amount\\) as amount, COUNT\\(\\*\\) as count FROM `incomes`").
		WithArgs(uint(7)).
		WillReturnRows(sqlmock.NewRows([]string{"category", "amount", "count"}).
			AddRow("Salary", 5000.0, 1))

	agg := NewAggregationService(db)
	stats, err := agg.IncomeSourceBreakdown(7, time.Time{}, time.Time{}, 0)
	require.NoError(t, err)

	require.Len(t, stats, 1)
	assert.Equal(t, "Salary", stats[0].Category)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExpenseTotalWindow(t *testing.T) {
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()

	start := day(1)
	end := day(1).AddDate(0, 1, 0)

	mock.ExpectQuery("SELECT COALESCE\\(SUM\\(amount\\), 0\\) FROM `expenses`").
		WithArgs(uint(1), start, end).
		WillReturnRows(sqlmock.NewRows([]string{"total"}).AddRow(123.45))

	agg := NewAggregationService(db)
	total, err := agg.ExpenseTotal(1, start, end)
	require.NoError(t, err)
	assert.InDelta(t, 123.45, total, 0.001)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecentTransactions(t *testing.T) {
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()

	expenseCols := []string{"id", "user_id", "category", "amount", "date", "icon", "created_at", "updated_at", "deleted_at"}
	incomeCols := []string{"id", "user_id", "source", "amount", "date", "icon", "created_at", "updated_at", "deleted_at"}

	mock.ExpectQuery("SELECT .* FROM `expenses`").
		WithArgs(uint(1)).
		WillReturnRows(sqlmock.NewRows(expenseCols).
			AddRow(1, 1, "Food", 100.0, day(10), "", time.Now(), time.Now(), nil).
			AddRow(2, 1, "Fuel", 30.0, day(2), "", time.Now(), time.Now(), nil))

	mock.ExpectQuery("SELECT .* FROM `incomes`").
		WithArgs(uint(1)).
		WillReturnRows(sqlmock.NewRows(incomeCols).
			AddRow(3, 1, "Salary", 3000.0, day(28), "", time.Now(), time.Now(), nil))

	agg := NewAggregationService(db)
	txs, err := agg.RecentTransactions(1, 5)
	require.NoError(t, err)

	require.Len(t, txs, 3)
	assert.Equal(t, "Salary", txs[0].Label)
	assert.Equal(t, "Food", txs[1].Label)
	assert.Equal(t, "Fuel", txs[2].Label)
	require.NoError(t, mock.ExpectationsWereMet())
}

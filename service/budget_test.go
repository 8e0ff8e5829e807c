package service

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var budgetCols = []string{"id", "user_id", "year", "month", "amount", "notified", "created_at", "updated_at", "deleted_at"}

func budgetRow(amount float64, notified bool) *sqlmock.Rows {
	return sqlmock.NewRows(budgetCols).
		AddRow(1, 1, 2024, 5, amount, notified, time.Now(), time.Now(), nil)
}

func sumRow(total float64) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"total"}).AddRow(total)
}

func evalNow() time.Time {
	return time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC)
}

func expectEvaluate(mock sqlmock.Sqlmock, budgetAmount float64, notified bool, expenses, income float64) {
	now := evalNow()
	start, end := MonthWindow(now)

	mock.ExpectQuery("SELECT .* FROM `monthly_budgets`").
		WithArgs(uint(1), 2024, 5).
		WillReturnRows(budgetRow(budgetAmount, notified))
	mock.ExpectQuery("SELECT COALESCE\\(SUM\\(amount\\), 0\\) FROM `expenses`").
		WithArgs(uint(1), start, end).
		WillReturnRows(sumRow(expenses))
	mock.ExpectQuery("SELECT COALESCE\\(SUM\\(amount\\), 0\\) FROM `incomes`").
		WithArgs(uint(1), start, end).
		WillReturnRows(sumRow(income))
}

func expectNotifiedUpdate(mock sqlmock.Sqlmock, notified bool) {
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `monthly_budgets`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
}

func TestMonthWindow(t *testing.T) {
	start, end := MonthWindow(time.Date(2024, 5, 15, 13, 45, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), end)

	// December rolls over into January
	start, end = MonthWindow(time.Date(2024, 12, 31, 23, 59, 59, 0, time.UTC))
	assert.Equal(t, time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), end)
}

func TestEvaluateNoBudget(t *testing.T) {
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .* FROM `monthly_budgets`").
		WithArgs(uint(1), 2024, 5).
		WillReturnRows(sqlmock.NewRows(budgetCols))

	svc := NewBudgetService(db, newFakeMailer())
	status, err := svc.Evaluate(1, evalNow())
	require.NoError(t, err)

	assert.False(t, status.HasBudget)
	assert.False(t, status.IsReached)
	assert.False(t, status.JustCrossed)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEvaluateZeroAmountDisablesBudget(t *testing.T) {
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .* FROM `monthly_budgets`").
		WithArgs(uint(1), 2024, 5).
		WillReturnRows(budgetRow(0, false))

	svc := NewBudgetService(db, newFakeMailer())
	status, err := svc.Evaluate(1, evalNow())
	require.NoError(t, err)

	// amount 0 means no budget, not "always reached"
	assert.False(t, status.HasBudget)
	assert.False(t, status.IsReached)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEvaluateBelowBudget(t *testing.T) {
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()

	expectEvaluate(mock, 1000, false, 900, 2000)

	svc := NewBudgetService(db, newFakeMailer())
	status, err := svc.Evaluate(1, evalNow())
	require.NoError(t, err)

	assert.True(t, status.HasBudget)
	assert.Equal(t, 1000.0, status.BudgetAmount)
	assert.Equal(t, 900.0, status.TotalExpenses)
	assert.Equal(t, 2000.0, status.TotalIncome)
	assert.False(t, status.IsReached)
	assert.False(t, status.JustCrossed)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEvaluateCrossing(t *testing.T) {
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()

	expectEvaluate(mock, 1000, false, 1000, 0)

	svc := NewBudgetService(db, newFakeMailer())
	status, err := svc.Evaluate(1, evalNow())
	require.NoError(t, err)

	assert.True(t, status.IsReached)
	assert.True(t, status.JustCrossed)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEvaluateAlreadyNotified(t *testing.T) {
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()

	expectEvaluate(mock, 1000, true, 1500, 0)

	svc := NewBudgetService(db, newFakeMailer())
	status, err := svc.Evaluate(1, evalNow())
	require.NoError(t, err)

	assert.True(t, status.IsReached)
	assert.False(t, status.JustCrossed, "an already-notified crossing must not re-report")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckAndNotifyFiresOnce(t *testing.T) {
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()

	mailer := newFakeMailer()
	svc := NewBudgetService(db, mailer)
	userCols := []string{"id", "full_name", "email", "password", "profile_image_url", "created_at", "updated_at", "deleted_at"}

	// first check: spend 900 of 1000, nothing fires
	expectEvaluate(mock, 1000, false, 900, 0)
	status, err := svc.CheckAndNotify(1, evalNow())
	require.NoError(t, err)
	assert.False(t, status.IsReached)
	assert.Equal(t, 0, mailer.alertCount())

	// second check: spend reaches 1000, the alert fires and notified persists
	expectEvaluate(mock, 1000, false, 1000, 0)
	mock.ExpectQuery("SELECT .* FROM `users`").
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows(userCols).
			AddRow(1, "Alice", "alice@example.com", "x", "", time.Now(), time.Now(), nil))
	expectNotifiedUpdate(mock, true)

	status, err = svc.CheckAndNotify(1, evalNow())
	require.NoError(t, err)
	assert.True(t, status.IsReached)
	assert.True(t, status.Notified)
	assert.Equal(t, 1, mailer.alertCount())

	// third check: still at 1000, notified=true, no second alert
	expectEvaluate(mock, 1000, true, 1000, 0)
	status, err = svc.CheckAndNotify(1, evalNow())
	require.NoError(t, err)
	assert.True(t, status.IsReached)
	assert.Equal(t, 1, mailer.alertCount(), "exactly one alert per crossing")

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckAndNotifyResetsAfterRaise(t *testing.T) {
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()

	mailer := newFakeMailer()
	svc := NewBudgetService(db, mailer)

	// budget raised to 2000 while notified=true and spend=1000
	expectEvaluate(mock, 2000, true, 1000, 0)
	expectNotifiedUpdate(mock, false)

	status, err := svc.CheckAndNotify(1, evalNow())
	require.NoError(t, err)
	assert.False(t, status.IsReached)
	assert.False(t, status.Notified)
	assert.Equal(t, 0, mailer.alertCount())

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckAndNotifyMailerNotReady(t *testing.T) {
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()

	mailer := newFakeMailer()
	mailer.ready = false
	svc := NewBudgetService(db, mailer)

	// crossing with a cold mail channel: skipped, flag untouched so a later
	// check can still alert
	expectEvaluate(mock, 1000, false, 1200, 0)

	status, err := svc.CheckAndNotify(1, evalNow())
	require.NoError(t, err)
	assert.True(t, status.IsReached)
	assert.False(t, status.Notified)
	assert.Equal(t, 0, mailer.alertCount())

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckAndNotifyNoBudget(t *testing.T) {
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .* FROM `monthly_budgets`").
		WithArgs(uint(1), 2024, 5).
		WillReturnRows(sqlmock.NewRows(budgetCols))

	mailer := newFakeMailer()
	svc := NewBudgetService(db, mailer)

	status, err := svc.CheckAndNotify(1, evalNow())
	require.NoError(t, err)
	assert.False(t, status.HasBudget)
	assert.Equal(t, 0, mailer.alertCount(), "no budget means the dispatcher is never called")

	require.NoError(t, mock.ExpectationsWereMet())
}

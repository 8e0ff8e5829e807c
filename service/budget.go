package service

import (
	"errors"
	"time"

	"expensetracker/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BudgetStatus is the outcome of evaluating a user's budget for one month.
type BudgetStatus struct {
	HasBudget     bool    `json:"has_budget"`
	BudgetAmount  float64 `json:"budget_amount"`
	TotalExpenses float64 `json:"total_expenses"`
	TotalIncome   float64 `json:"total_income"`
	IsReached     bool    `json:"is_reached"`
	Notified      bool    `json:"notified"`
	// JustCrossed marks the below-to-at-or-above transition; the caller owns
	// dispatching the alert and persisting the notified flag.
	JustCrossed bool `json:"-"`
}

// BudgetService evaluates monthly budgets and maintains the notified flag.
//
// The read-modify-write around Notified is intentionally unguarded; two
// simultaneous requests for the same user may race, which is an accepted
// risk for this domain.
type BudgetService struct {
	db     *gorm.DB
	agg    *AggregationService
	mailer Mailer
}

// NewBudgetService creates a budget service.
func NewBudgetService(db *gorm.DB, mailer Mailer) *BudgetService {
	return &BudgetService{
		db:     db,
		agg:    NewAggregationService(db),
		mailer: mailer,
	}
}

// MonthWindow returns the half-open window [first of month, first of next
// month) containing now.
func MonthWindow(now time.Time) (time.Time, time.Time) {
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return start, start.AddDate(0, 1, 0)
}

// GetBudget returns the user's budget row for the month containing now, or
// nil when none is set.
func (s *BudgetService) GetBudget(userID uint, now time.Time) (*models.MonthlyBudget, error) {
	var budget models.MonthlyBudget
	err := s.db.Where("user_id = ? AND year = ? AND month = ?",
		userID, now.Year(), int(now.Month())).First(&budget).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &budget, nil
}

// SetBudget upserts the budget amount for the month containing now. The
// notified flag of an existing row is preserved; Evaluate corrects it.
func (s *BudgetService) SetBudget(userID uint, amount float64, now time.Time) (*models.MonthlyBudget, error) {
	budget := models.MonthlyBudget{
		UserID: userID,
		Year:   now.Year(),
		Month:  int(now.Month()),
		Amount: amount,
	}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "year"}, {Name: "month"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"amount": amount}),
	}).Create(&budget).Error
	if err != nil {
		return nil, err
	}

	// Re-read so callers see the stored notified flag after an update.
	stored, err := s.GetBudget(userID, now)
	if err != nil {
		return nil, err
	}
	if stored != nil {
		return stored, nil
	}
	return &budget, nil
}

// Evaluate reports whether month-to-date spend has reached the budget for
// the month containing now. Pure read, no side effects.
//
// No budget row, or an amount of exactly 0, means no budget is configured:
// HasBudget is false and nothing else is computed.
func (s *BudgetService) Evaluate(userID uint, now time.Time) (*BudgetStatus, error) {
	budget, err := s.GetBudget(userID, now)
	if err != nil {
		return nil, err
	}
	if budget == nil || budget.Amount <= 0 {
		return &BudgetStatus{HasBudget: false}, nil
	}

	start, end := MonthWindow(now)
	totalExpenses, err := s.agg.ExpenseTotal(userID, start, end)
	if err != nil {
		return nil, err
	}
	totalIncome, err := s.agg.IncomeTotal(userID, start, end)
	if err != nil {
		return nil, err
	}

	isReached := totalExpenses >= budget.Amount
	return &BudgetStatus{
		HasBudget:     true,
		BudgetAmount:  budget.Amount,
		TotalExpenses: totalExpenses,
		TotalIncome:   totalIncome,
		IsReached:     isReached,
		Notified:      budget.Notified,
		JustCrossed:   isReached && !budget.Notified,
	}, nil
}

// MarkNotified persists notified=true for the month containing now.
func (s *BudgetService) MarkNotified(userID uint, now time.Time) error {
	return s.db.Model(&models.MonthlyBudget{}).
		Where("user_id = ? AND year = ? AND month = ?", userID, now.Year(), int(now.Month())).
		Update("notified", true).Error
}

// ResetNotified persists notified=false so a future crossing can alert again.
func (s *BudgetService) ResetNotified(userID uint, now time.Time) error {
	return s.db.Model(&models.MonthlyBudget{}).
		Where("user_id = ? AND year = ? AND month = ?", userID, now.Year(), int(now.Month())).
		Update("notified", false).Error
}

// CheckAndNotify evaluates the budget and, on a threshold crossing, sends
// the alert email and persists the notified flag. Mail failures are logged
// and swallowed; they never fail the request that triggered the check.
func (s *BudgetService) CheckAndNotify(userID uint, now time.Time) (*BudgetStatus, error) {
	status, err := s.Evaluate(userID, now)
	if err != nil {
		return nil, err
	}
	if !status.HasBudget {
		return status, nil
	}

	switch {
	case status.JustCrossed:
		if s.mailer == nil || !s.mailer.IsReady() {
			logrus.WithField("user_id", userID).
				Warn("mail channel not ready, skipping budget alert")
			return status, nil
		}

		var user models.User
		if err := s.db.First(&user, userID).Error; err != nil {
			logrus.WithField("user_id", userID).
				WithError(err).Warn("budget alert: user lookup failed")
			return status, nil
		}

		if err := s.mailer.SendBudgetAlert(user.Email, user.FullName, now, status); err != nil {
			logrus.WithField("user_id", userID).
				WithError(err).Warn("budget alert send failed")
			return status, nil
		}

		// Persist only after a successful send so a skipped or failed alert
		// can still fire on a later check.
		if err := s.MarkNotified(userID, now); err != nil {
			logrus.WithField("user_id", userID).
				WithError(err).Warn("budget alert: persisting notified flag failed")
		} else {
			status.Notified = true
		}

	case !status.IsReached && status.Notified:
		// The user raised the budget above current spend.
		if err := s.ResetNotified(userID, now); err != nil {
			logrus.WithField("user_id", userID).
				WithError(err).Warn("resetting notified flag failed")
		} else {
			status.Notified = false
		}
	}

	return status, nil
}

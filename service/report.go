package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"expensetracker/models"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// MonthlyReport summarizes one user's finances for one calendar month.
type MonthlyReport struct {
	Year               int            `json:"year"`
	Month              time.Month     `json:"month"`
	TotalIncome        float64        `json:"total_income"`
	TotalExpenses      float64        `json:"total_expenses"`
	NetBalance         float64        `json:"net_balance"`
	ExpensesByCategory []CategoryStat `json:"expenses_by_category"`
	IncomeBySource     []CategoryStat `json:"income_by_source"`
}

// BatchResult reports the outcome of one monthly report run.
type BatchResult struct {
	Total     int `json:"total"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
	Skipped   int `json:"skipped"`
}

// ReportService builds monthly reports and mails them to every user.
type ReportService struct {
	db     *gorm.DB
	agg    *AggregationService
	mailer Mailer
}

// NewReportService creates a report service.
func NewReportService(db *gorm.DB, mailer Mailer) *ReportService {
	return &ReportService{
		db:     db,
		agg:    NewAggregationService(db),
		mailer: mailer,
	}
}

// BuildMonthlyReport computes one user's totals and breakdowns for the given
// month. Totals are derived from the grouped sums.
func (s *ReportService) BuildMonthlyReport(userID uint, year int, month time.Month) (*MonthlyReport, error) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.Local)
	end := start.AddDate(0, 1, 0)

	expensesByCategory, err := s.agg.ExpenseCategoryBreakdown(userID, start, end, 0)
	if err != nil {
		return nil, err
	}
	incomeBySource, err := s.agg.IncomeSourceBreakdown(userID, start, end, 0)
	if err != nil {
		return nil, err
	}

	var totalExpenses, totalIncome float64
	for _, c := range expensesByCategory {
		totalExpenses += c.Amount
	}
	for _, c := range incomeBySource {
		totalIncome += c.Amount
	}

	return &MonthlyReport{
		Year:               year,
		Month:              month,
		TotalIncome:        totalIncome,
		TotalExpenses:      totalExpenses,
		NetBalance:         totalIncome - totalExpenses,
		ExpensesByCategory: expensesByCategory,
		IncomeBySource:     incomeBySource,
	}, nil
}

// RunMonthlyReportBatch mails every user a report for the calendar month
// preceding now. Per-user failures are isolated: one failed send never
// cancels the others, it is only counted and logged. The same function backs
// the scheduled trigger and the HTTP route.
func (s *ReportService) RunMonthlyReportBatch(ctx context.Context, now time.Time) (BatchResult, error) {
	var result BatchResult

	if s.mailer == nil || !s.mailer.IsReady() {
		logrus.Warn("mail channel not ready, skipping monthly report batch")
		return result, nil
	}

	// Report on the month that just ended.
	firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	prior := firstOfMonth.AddDate(0, -1, 0)
	year, month := prior.Year(), prior.Month()

	var users []models.User
	if err := s.db.Find(&users).Error; err != nil {
		return result, err
	}
	result.Total = len(users)
	if len(users) == 0 {
		return result, nil
	}

	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)

	for _, user := range users {
		user := user
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}

			log := logrus.WithFields(logrus.Fields{
				"user_id": user.ID,
				"email":   user.Email,
			})

			report, err := s.BuildMonthlyReport(user.ID, year, month)
			if err != nil {
				log.WithError(err).Error("monthly report build failed")
				mu.Lock()
				result.Failed++
				mu.Unlock()
				return nil
			}

			switch err := s.mailer.SendMonthlyReport(user.Email, user.FullName, report); {
			case err == nil:
				log.Info("monthly report sent")
				mu.Lock()
				result.Succeeded++
				mu.Unlock()
			case errors.Is(err, ErrRecipientNotAllowed):
				mu.Lock()
				result.Skipped++
				mu.Unlock()
			default:
				log.WithError(err).Error("monthly report send failed")
				mu.Lock()
				result.Failed++
				mu.Unlock()
			}
			return nil
		})
	}

	// Workers never return an error; Wait only joins them.
	_ = g.Wait()

	logrus.WithFields(logrus.Fields{
		"total":     result.Total,
		"succeeded": result.Succeeded,
		"failed":    result.Failed,
		"skipped":   result.Skipped,
	}).Info("monthly report batch finished")

	return result, nil
}

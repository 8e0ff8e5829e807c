package scheduler

import (
	"context"
	"time"

	"expensetracker/service"

	"github.com/sirupsen/logrus"
)

// reportHour is the local hour on the first of the month at which the
// monthly report batch runs.
const reportHour = 9

// MonthlyReportScheduler fires the monthly report batch on the first day of
// each month, independent of any HTTP request.
type MonthlyReportScheduler struct {
	reports *service.ReportService
}

// NewMonthlyReportScheduler creates a scheduler around the report service.
func NewMonthlyReportScheduler(reports *service.ReportService) *MonthlyReportScheduler {
	return &MonthlyReportScheduler{reports: reports}
}

// NextRun returns the next first-of-month run time strictly after now.
func NextRun(now time.Time) time.Time {
	next := time.Date(now.Year(), now.Month(), 1, reportHour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 1, 0)
	}
	return next
}

// Start runs the scheduling loop until ctx is cancelled. It blocks; run it
// in its own goroutine.
func (s *MonthlyReportScheduler) Start(ctx context.Context) {
	for {
		next := NextRun(time.Now())
		logrus.WithField("next_run", next.Format(time.RFC3339)).
			Info("monthly report batch scheduled")

		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			logrus.Info("monthly report scheduler stopped")
			return
		case now := <-timer.C:
			result, err := s.reports.RunMonthlyReportBatch(ctx, now)
			if err != nil {
				logrus.WithError(err).Error("monthly report batch failed")
				continue
			}
			logrus.WithFields(logrus.Fields{
				"succeeded": result.Succeeded,
				"failed":    result.Failed,
				"skipped":   result.Skipped,
			}).Info("monthly report batch completed")
		}
	}
}

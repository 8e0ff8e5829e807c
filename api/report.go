package api

import (
	"time"

	"expensetracker/database"
	"expensetracker/service"

	"github.com/gin-gonic/gin"
)

// ReportHandler exposes the monthly report batch over HTTP. The same batch
// runs from the scheduler on the first of the month.
type ReportHandler struct {
	mailer service.Mailer
}

// NewReportHandler creates a report handler.
func NewReportHandler(mailer service.Mailer) *ReportHandler {
	return &ReportHandler{mailer: mailer}
}

// RunMonthly triggers the monthly report batch
// @Summary Run the monthly report batch
// @Description Builds the prior month's report for every user and emails it. Per-user failures are counted, never fatal.
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=service.BatchResult} "batch counts"
// @Failure 401 {object} Response "unauthorized"
// @Failure 500 {object} Response "batch could not run"
// @Router /api/v1/reports/monthly [post]
func (h *ReportHandler) RunMonthly(c *gin.Context) {
	reports := service.NewReportService(database.DB, h.mailer)

	result, err := reports.RunMonthlyReportBatch(c.Request.Context(), time.Now())
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "failed to run report batch"))
		return
	}

	SuccessWithMessage(c, "report batch completed", result)
}

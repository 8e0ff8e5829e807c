package api

import (
	"time"

	"expensetracker/database"
	"expensetracker/middleware"
	"expensetracker/service"

	"github.com/gin-gonic/gin"
)

// BudgetHandler serves the monthly budget routes.
type BudgetHandler struct {
	mailer service.Mailer
}

// NewBudgetHandler creates a budget handler.
func NewBudgetHandler(mailer service.Mailer) *BudgetHandler {
	return &BudgetHandler{mailer: mailer}
}

func (h *BudgetHandler) budgets() *service.BudgetService {
	return service.NewBudgetService(database.DB, h.mailer)
}

// SetBudgetRequest is the budget upsert payload. An amount of 0 removes the
// budget for the current month.
type SetBudgetRequest struct {
	Amount *float64 `json:"amount" binding:"required,gte=0" example:"1000"`
}

// Get returns the current month's budget status
// @Summary Get monthly budget
// @Description Returns the budget for the current month together with month-to-date totals.
// @Tags budget
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=service.BudgetStatus} "status"
// @Failure 401 {object} Response "unauthorized"
// @Router /api/v1/budget [get]
func (h *BudgetHandler) Get(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	status, err := h.budgets().Evaluate(userID, time.Now())
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "failed to evaluate budget"))
		return
	}

	Success(c, status)
}

// Set creates or updates the current month's budget
// @Summary Set monthly budget
// @Description Upserts the budget amount for the current month and immediately re-checks it. Lowering the budget below spend can trigger the alert; raising it re-arms the notification.
// @Tags budget
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body SetBudgetRequest true "budget amount"
// @Success 200 {object} Response{data=service.BudgetStatus} "status after the update"
// @Failure 400 {object} Response "invalid payload"
// @Failure 401 {object} Response "unauthorized"
// @Router /api/v1/budget [post]
func (h *BudgetHandler) Set(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req SetBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}

	now := time.Now()
	svc := h.budgets()

	if _, err := svc.SetBudget(userID, *req.Amount, now); err != nil {
		InternalError(c, SafeErrorMessage(err, "failed to save budget"))
		return
	}

	// Re-check straight away so a budget set below current spend alerts
	// without waiting for the next expense.
	status, err := svc.CheckAndNotify(userID, now)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "failed to evaluate budget"))
		return
	}

	SuccessWithMessage(c, "budget saved", status)
}

package api

import (
	"errors"
	"fmt"
	"time"

	"expensetracker/database"
	"expensetracker/middleware"
	"expensetracker/models"
	"expensetracker/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ExpenseHandler serves expense entry routes.
type ExpenseHandler struct {
	mailer service.Mailer
}

// NewExpenseHandler creates an expense handler. The mailer is used for the
// budget check that follows every new expense.
func NewExpenseHandler(mailer service.Mailer) *ExpenseHandler {
	return &ExpenseHandler{mailer: mailer}
}

func (h *ExpenseHandler) budgets() *service.BudgetService {
	return service.NewBudgetService(database.DB, h.mailer)
}

// parseEntryDate accepts a plain date or a full timestamp.
func parseEntryDate(s string) (time.Time, error) {
	if t, err := time.ParseInLocation("2006-01-02", s, time.Local); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid date %q, expected 2006-01-02", s)
}

// AddExpenseRequest is the expense creation payload.
type AddExpenseRequest struct {
	Icon     string  `json:"icon" binding:"omitempty,max=100"`
	Category string  `json:"category" binding:"required,min=1,max=100" example:"Food"`
	Amount   float64 `json:"amount" binding:"required,gt=0" example:"42.50"`
	Date     string  `json:"date" binding:"required" example:"2024-05-15"`
}

// Add records an expense entry
// @Summary Add an expense
// @Description Creates an expense and re-checks the monthly budget. A threshold crossing triggers the alert email; mail failures never fail this request.
// @Tags expense
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body AddExpenseRequest true "expense fields"
// @Success 200 {object} Response "created"
// @Failure 400 {object} Response "invalid payload"
// @Failure 401 {object} Response "unauthorized"
// @Router /api/v1/expense/add [post]
func (h *ExpenseHandler) Add(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req AddExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}

	date, err := parseEntryDate(req.Date)
	if err != nil {
		BadRequest(c, err.Error())
		return
	}

	expense := models.Expense{
		UserID:   userID,
		Category: req.Category,
		Amount:   req.Amount,
		Date:     date,
		Icon:     req.Icon,
	}
	if err := database.DB.Create(&expense).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "failed to create expense"))
		return
	}

	// Best effort; the entry is already stored.
	status, err := h.budgets().CheckAndNotify(userID, time.Now())
	if err != nil {
		status = nil
	}

	SuccessWithMessage(c, "expense added", gin.H{
		"expense":       expense,
		"budget_status": status,
	})
}

// List returns the user's expenses, newest first
// @Summary List expenses
// @Tags expense
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=[]models.Expense} "expenses"
// @Failure 401 {object} Response "unauthorized"
// @Router /api/v1/expense/get [get]
func (h *ExpenseHandler) List(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var expenses []models.Expense
	if err := database.DB.Where("user_id = ?", userID).
		Order("date DESC").Find(&expenses).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "failed to load expenses"))
		return
	}

	Success(c, expenses)
}

// Delete removes one expense entry
// @Summary Delete an expense
// @Description Deletes the entry only if it belongs to the authenticated user.
// @Tags expense
// @Produce json
// @Security BearerAuth
// @Param id path int true "expense id"
// @Success 200 {object} Response "deleted"
// @Failure 404 {object} Response "not found"
// @Router /api/v1/expense/{id} [delete]
func (h *ExpenseHandler) Delete(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id := c.Param("id")

	var expense models.Expense
	err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&expense).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		NotFound(c, "expense not found")
		return
	}
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "failed to load expense"))
		return
	}

	if err := database.DB.Delete(&expense).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "failed to delete expense"))
		return
	}

	SuccessWithMessage(c, "expense deleted", nil)
}

// DownloadExcel exports all expenses as a workbook
// @Summary Download expenses as Excel
// @Tags expense
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Success 200 {file} file "workbook"
// @Failure 401 {object} Response "unauthorized"
// @Router /api/v1/expense/downloadexcel [get]
func (h *ExpenseHandler) DownloadExcel(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var expenses []models.Expense
	if err := database.DB.Where("user_id = ?", userID).
		Order("date DESC").Find(&expenses).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "failed to load expenses"))
		return
	}

	headers := []string{"ID", "Category", "Amount", "Date", "Created At"}
	rows := make([][]interface{}, 0, len(expenses))
	var total float64
	for _, e := range expenses {
		rows = append(rows, []interface{}{
			e.ID,
			e.Category,
			e.Amount,
			e.Date.Format("2006-01-02"),
			e.CreatedAt.Format("2006-01-02 15:04:05"),
		})
		total += e.Amount
	}

	filename := fmt.Sprintf("expenses_%s.xlsx", time.Now().Format("2006-01-02"))
	writeExcel(c, "Expenses", filename, headers, rows, total)
}

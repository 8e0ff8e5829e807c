package api

import (
	"errors"
	"fmt"
	"time"

	"expensetracker/database"
	"expensetracker/middleware"
	"expensetracker/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// IncomeHandler serves income entry routes.
type IncomeHandler struct{}

// NewIncomeHandler creates an income handler.
func NewIncomeHandler() *IncomeHandler {
	return &IncomeHandler{}
}

// AddIncomeRequest is the income creation payload.
type AddIncomeRequest struct {
	Icon   string  `json:"icon" binding:"omitempty,max=100"`
	Source string  `json:"source" binding:"required,min=1,max=100" example:"Salary"`
	Amount float64 `json:"amount" binding:"required,gt=0" example:"3000"`
	Date   string  `json:"date" binding:"required" example:"2024-05-01"`
}

// Add records an income entry
// @Summary Add an income
// @Tags income
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body AddIncomeRequest true "income fields"
// @Success 200 {object} Response{data=models.Income} "created"
// @Failure 400 {object} Response "invalid payload"
// @Failure 401 {object} Response "unauthorized"
// @Router /api/v1/income/add [post]
func (h *IncomeHandler) Add(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req AddIncomeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}

	date, err := parseEntryDate(req.Date)
	if err != nil {
		BadRequest(c, err.Error())
		return
	}

	income := models.Income{
		UserID: userID,
		Source: req.Source,
		Amount: req.Amount,
		Date:   date,
		Icon:   req.Icon,
	}
	if err := database.DB.Create(&income).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "failed to create income"))
		return
	}

	SuccessWithMessage(c, "income added", income)
}

// List returns the user's income entries, newest first
// @Summary List income
// @Tags income
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=[]models.Income} "income entries"
// @Failure 401 {object} Response "unauthorized"
// @Router /api/v1/income/get [get]
func (h *IncomeHandler) List(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var incomes []models.Income
	if err := database.DB.Where("user_id = ?", userID).
		Order("date DESC").Find(&incomes).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "failed to load income"))
		return
	}

	Success(c, incomes)
}

// Delete removes one income entry
// @Summary Delete an income
// @Tags income
// @Produce json
// @Security BearerAuth
// @Param id path int true "income id"
// @Success 200 {object} Response "deleted"
// @Failure 404 {object} Response "not found"
// @Router /api/v1/income/{id} [delete]
func (h *IncomeHandler) Delete(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id := c.Param("id")

	var income models.Income
	err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&income).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		NotFound(c, "income not found")
		return
	}
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "failed to load income"))
		return
	}

	if err := database.DB.Delete(&income).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "failed to delete income"))
		return
	}

	SuccessWithMessage(c, "income deleted", nil)
}

// DownloadExcel exports all income entries as a workbook
// @Summary Download income as Excel
// @Tags income
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Success 200 {file} file "workbook"
// @Failure 401 {object} Response "unauthorized"
// @Router /api/v1/income/downloadexcel [get]
func (h *IncomeHandler) DownloadExcel(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var incomes []models.Income
	if err := database.DB.Where("user_id = ?", userID).
		Order("date DESC").Find(&incomes).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "failed to load income"))
		return
	}

	headers := []string{"ID", "Source", "Amount", "Date", "Created At"}
	rows := make([][]interface{}, 0, len(incomes))
	var total float64
	for _, in := range incomes {
		rows = append(rows, []interface{}{
			in.ID,
			in.Source,
			in.Amount,
			in.Date.Format("2006-01-02"),
			in.CreatedAt.Format("2006-01-02 15:04:05"),
		})
		total += in.Amount
	}

	filename := fmt.Sprintf("income_%s.xlsx", time.Now().Format("2006-01-02"))
	writeExcel(c, "Income", filename, headers, rows, total)
}

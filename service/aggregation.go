package service

import (
	"sort"
	"time"

	"expensetracker/models"

	"gorm.io/gorm"
)

// CategoryStat is one group in a category/source breakdown.
type CategoryStat struct {
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
	Count    int64   `json:"count"`
}

// Transaction is a unified view over income and expense entries.
type Transaction struct {
	Type   string    `json:"type"` // "income" or "expense"
	ID     uint      `json:"id"`
	Label  string    `json:"label"` // category or source
	Icon   string    `json:"icon"`
	Amount float64   `json:"amount"`
	Date   time.Time `json:"date"`
}

// AggregationService runs read-only summary queries over the entry tables.
type AggregationService struct {
	db *gorm.DB
}

// NewAggregationService creates an aggregation service.
func NewAggregationService(db *gorm.DB) *AggregationService {
	return &AggregationService{db: db}
}

// withDateRange applies the half-open window [start, end). Zero bounds are
// left open.
func withDateRange(query *gorm.DB, start, end time.Time) *gorm.DB {
	if !start.IsZero() {
		query = query.Where("date >= ?", start)
	}
	if !end.IsZero() {
		query = query.Where("date < ?", end)
	}
	return query
}

// ExpenseCategoryBreakdown groups the user's expenses by category, summing
// amounts and counting entries, sorted by summed amount descending.
// limit <= 0 returns all groups.
func (s *AggregationService) ExpenseCategoryBreakdown(userID uint, start, end time.Time, limit int) ([]CategoryStat, error) {
	var stats []CategoryStat
	query := s.db.Model(&models.Expense{}).
		Select("category, SUM(amount) as amount, COUNT(*) as count").
		Where("user_id = ?", userID)
	query = withDateRange(query, start, end).Group("category").Order("amount DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Scan(&stats).Error; err != nil {
		return nil, err
	}
	return stats, nil
}

// IncomeSourceBreakdown groups the user's income by source, same shape as
// the expense breakdown.
func (s *AggregationService) IncomeSourceBreakdown(userID uint, start, end time.Time, limit int) ([]CategoryStat, error) {
	var stats []CategoryStat
	query := s.db.Model(&models.Income{}).
		Select("source as category, SUM(amount) as amount, COUNT(*) as count").
		Where("user_id = ?", userID)
	query = withDateRange(query, start, end).Group("source").Order("amount DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Scan(&stats).Error; err != nil {
		return nil, err
	}
	return stats, nil
}

// ExpenseTotal sums expense amounts for the user within [start, end).
func (s *AggregationService) ExpenseTotal(userID uint, start, end time.Time) (float64, error) {
	var total float64
	query := s.db.Model(&models.Expense{}).Where("user_id = ?", userID)
	query = withDateRange(query, start, end)
	if err := query.Select("COALESCE(SUM(amount), 0)").Scan(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

// IncomeTotal sums income amounts for the user within [start, end).
func (s *AggregationService) IncomeTotal(userID uint, start, end time.Time) (float64, error) {
	var total float64
	query := s.db.Model(&models.Income{}).Where("user_id = ?", userID)
	query = withDateRange(query, start, end)
	if err := query.Select("COALESCE(SUM(amount), 0)").Scan(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

// RecentTransactions returns the user's most recent limit entries across
// both tables, merged and re-sorted by date descending.
func (s *AggregationService) RecentTransactions(userID uint, limit int) ([]Transaction, error) {
	var expenses []models.Expense
	if err := s.db.Where("user_id = ?", userID).
		Order("date DESC").Limit(limit).Find(&expenses).Error; err != nil {
		return nil, err
	}

	var incomes []models.Income
	if err := s.db.Where("user_id = ?", userID).
		Order("date DESC").Limit(limit).Find(&incomes).Error; err != nil {
		return nil, err
	}

	return MergeTransactions(expenses, incomes, limit), nil
}

// MergeTransactions combines expense and income entries into one list sorted
// by date descending, truncated to limit. limit <= 0 keeps everything.
func MergeTransactions(expenses []models.Expense, incomes []models.Income, limit int) []Transaction {
	merged := make([]Transaction, 0, len(expenses)+len(incomes))
	for _, e := range expenses {
		merged = append(merged, Transaction{
			Type:   "expense",
			ID:     e.ID,
			Label:  e.Category,
			Icon:   e.Icon,
			Amount: e.Amount,
			Date:   e.Date,
		})
	}
	for _, in := range incomes {
		merged = append(merged, Transaction{
			Type:   "income",
			ID:     in.ID,
			Label:  in.Source,
			Icon:   in.Icon,
			Amount: in.Amount,
			Date:   in.Date,
		})
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Date.After(merged[j].Date)
	})

	if limit > 0 && len(merged) > limit {
		merged = merged[:limit]
	}
	return merged
}

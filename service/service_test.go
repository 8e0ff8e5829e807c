package service

import (
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, func()) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock, func() { sqlDB.Close() }
}

// fakeMailer records sends and can fail or skip selected recipients.
type fakeMailer struct {
	mu      sync.Mutex
	ready   bool
	failFor map[string]error

	alerts  []string
	reports []string
}

func newFakeMailer() *fakeMailer {
	return &fakeMailer{ready: true, failFor: map[string]error{}}
}

func (m *fakeMailer) IsReady() bool { return m.ready }

func (m *fakeMailer) SendBudgetAlert(toEmail, fullName string, now time.Time, status *BudgetStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.failFor[toEmail]; ok {
		return err
	}
	m.alerts = append(m.alerts, toEmail)
	return nil
}

func (m *fakeMailer) SendMonthlyReport(toEmail, fullName string, report *MonthlyReport) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.failFor[toEmail]; ok {
		return err
	}
	m.reports = append(m.reports, toEmail)
	return nil
}

func (m *fakeMailer) alertCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.alerts)
}

func (m *fakeMailer) reportCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.reports)
}

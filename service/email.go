package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"expensetracker/config"

	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"
)

// ErrRecipientNotAllowed is returned in release mode when the recipient is
// not on the configured allow list. Callers treat it as a skip, not a
// failure.
var ErrRecipientNotAllowed = errors.New("recipient not on allowed list")

// Mailer is the outbound mail capability. Callers must check IsReady before
// dispatching; a not-ready mailer means dispatch is skipped, never that the
// triggering request fails.
type Mailer interface {
	IsReady() bool
	SendBudgetAlert(toEmail, fullName string, now time.Time, status *BudgetStatus) error
	SendMonthlyReport(toEmail, fullName string, report *MonthlyReport) error
}

// EmailService sends mail over SMTP via gomail.
type EmailService struct {
	cfg *config.EmailConfig
}

// NewEmailService creates an email service.
func NewEmailService(cfg *config.EmailConfig) *EmailService {
	return &EmailService{cfg: cfg}
}

// IsReady reports whether the mail channel is configured for sending.
func (s *EmailService) IsReady() bool {
	return s.cfg.Enabled && s.cfg.Host != "" && s.cfg.From != ""
}

// resolveRecipient applies the delivery policy: in development mail goes to
// the user's real address; in release mode only to allow-listed addresses.
func (s *EmailService) resolveRecipient(email string) (string, error) {
	if !config.IsProduction() {
		return email, nil
	}
	for _, allowed := range s.cfg.AllowedRecipients {
		if strings.EqualFold(allowed, email) {
			return email, nil
		}
	}
	return "", ErrRecipientNotAllowed
}

// SendBudgetAlert sends the threshold-crossing alert for the month
// containing now.
func (s *EmailService) SendBudgetAlert(toEmail, fullName string, now time.Time, status *BudgetStatus) error {
	if !s.IsReady() {
		return errors.New("mail channel not ready")
	}

	to, err := s.resolveRecipient(toEmail)
	if err != nil {
		logrus.WithField("email", toEmail).Warn("budget alert recipient not allowed, skipping")
		return err
	}

	monthName := now.Month().String()
	subject := fmt.Sprintf("Budget Alert - %s", monthName)
	body := s.generateBudgetAlertBody(fullName, monthName, status)

	return s.sendEmail(to, subject, body)
}

// generateBudgetAlertBody renders the alert email.
func (s *EmailService) generateBudgetAlertBody(fullName, monthName string, status *BudgetStatus) string {
	name := fullName
	if name == "" {
		name = "there"
	}
	return fmt.Sprintf(`
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px; color: #34495e;">
  <h2 style="color: #e74c3c;">Budget Limit Reached</h2>
  <p>Hi %s,</p>
  <p>You have reached your monthly budget limit for <strong>%s</strong>.</p>
  <ul>
    <li><strong>Budget:</strong> %.2f</li>
    <li><strong>Total Expenses (month-to-date):</strong> %.2f</li>
    <li><strong>Total Income (month-to-date):</strong> %.2f</li>
  </ul>
  <p>Please review your spending in the app.</p>
  <p style="color:#888; font-size:12px;">This is an automated notification from Expense Tracker.</p>
</div>
`, name, monthName, status.BudgetAmount, status.TotalExpenses, status.TotalIncome)
}

// SendMonthlyReport sends the monthly financial report.
func (s *EmailService) SendMonthlyReport(toEmail, fullName string, report *MonthlyReport) error {
	if !s.IsReady() {
		return errors.New("mail channel not ready")
	}

	to, err := s.resolveRecipient(toEmail)
	if err != nil {
		logrus.WithField("email", toEmail).Warn("monthly report recipient not allowed, skipping")
		return err
	}

	subject := fmt.Sprintf("Monthly Financial Report - %s %d", report.Month.String(), report.Year)
	body := s.generateMonthlyReportBody(fullName, report)

	return s.sendEmail(to, subject, body)
}

// generateMonthlyReportBody renders the report email.
func (s *EmailService) generateMonthlyReportBody(fullName string, report *MonthlyReport) string {
	name := fullName
	if name == "" {
		name = "there"
	}

	var categories strings.Builder
	for _, c := range report.ExpensesByCategory {
		fmt.Fprintf(&categories, "<tr><td>%s</td><td style=\"text-align:right;\">%.2f</td></tr>", c.Category, c.Amount)
	}
	if len(report.ExpensesByCategory) == 0 {
		categories.WriteString("<tr><td colspan=\"2\">No expenses recorded</td></tr>")
	}

	var sources strings.Builder
	for _, c := range report.IncomeBySource {
		fmt.Fprintf(&sources, "<tr><td>%s</td><td style=\"text-align:right;\">%.2f</td></tr>", c.Category, c.Amount)
	}
	if len(report.IncomeBySource) == 0 {
		sources.WriteString("<tr><td colspan=\"2\">No income recorded</td></tr>")
	}

	balanceColor := "#27ae60"
	if report.NetBalance < 0 {
		balanceColor = "#e74c3c"
	}

	return fmt.Sprintf(`
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px; color: #34495e;">
  <h2 style="color: #2c3e50;">Monthly Financial Report - %s %d</h2>
  <p>Hi %s, here is your summary for the past month.</p>
  <ul>
    <li><strong>Total Income:</strong> %.2f</li>
    <li><strong>Total Expenses:</strong> %.2f</li>
    <li><strong>Net Balance:</strong> <span style="color:%s;">%.2f</span></li>
  </ul>
  <h3>Expenses by Category</h3>
  <table style="width:100%%; border-collapse: collapse;">%s</table>
  <h3>Income by Source</h3>
  <table style="width:100%%; border-collapse: collapse;">%s</table>
  <p style="color:#888; font-size:12px;">This is an automated report from Expense Tracker.</p>
</div>
`, report.Month.String(), report.Year, name,
		report.TotalIncome, report.TotalExpenses, balanceColor, report.NetBalance,
		categories.String(), sources.String())
}

// sendEmail delivers one message over SMTP.
func (s *EmailService) sendEmail(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", m.FormatAddress(s.cfg.From, "Expense Tracker"))
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	d := gomail.NewDialer(s.cfg.Host, s.cfg.Port, s.cfg.Username, s.cfg.Password)

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("send email: %w", err)
	}

	return nil
}

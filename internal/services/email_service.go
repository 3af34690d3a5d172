package services

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"

	"github.com/ledgerbooks/ledgerbooks-api/internal/config"
	"github.com/ledgerbooks/ledgerbooks-api/internal/models"
	"github.com/ledgerbooks/ledgerbooks-api/pkg/logger"
	"github.com/resend/resend-go/v2"
)

//go:embed templates/email/*.html
var emailTemplates embed.FS

type EmailService struct {
	config       *config.Config
	resendClient *resend.Client
}

func NewEmailService(cfg *config.Config) *EmailService {
	client := resend.NewClient(cfg.ResendAPIKey)
	return &EmailService{
		config:       cfg,
		resendClient: client,
	}
}

// Helper function to safely get string from pointer
func getStringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (s *EmailService) SendAccountCreated(ctx context.Context, user *models.User) error {
	data := struct {
		Name   string
		AppURL string
	}{
		Name:   user.FullName,
		AppURL: s.config.AppURL,
	}

	return s.send(user.Email, "Welcome to LedgerBooks", "account_created.html", data)
}

func (s *EmailService) SendVoucherSubmitted(ctx context.Context, approver *models.User, voucher *models.VoucherHeader) error {
	data := struct {
		Name        string
		Number      string
		Payee       string
		Total       string
		SubmittedAt string
		AppURL      string
	}{
		Name:        approver.FullName,
		Number:      voucher.Number,
		Payee:       getStringValue(voucher.Payee),
		Total:       fmt.Sprintf("%.2f", voucher.Total),
		SubmittedAt: voucher.UpdatedAt.Format("02/01/2006 15:04"),
		AppURL:      s.config.AppURL,
	}

	return s.send(approver.Email, fmt.Sprintf("Voucher %s pending approval", voucher.Number), "voucher_submitted.html", data)
}

func (s *EmailService) SendVoucherPosted(ctx context.Context, recipient *models.User, voucher *models.VoucherHeader) error {
	postedAt := ""
	if voucher.PostedAt != nil {
		postedAt = voucher.PostedAt.Format("02/01/2006 15:04")
	}

	data := struct {
		Name     string
		Number   string
		Payee    string
		Total    string
		PostedAt string
		AppURL   string
	}{
		Name:     recipient.FullName,
		Number:   voucher.Number,
		Payee:    getStringValue(voucher.Payee),
		Total:    fmt.Sprintf("%.2f", voucher.Total),
		PostedAt: postedAt,
		AppURL:   s.config.AppURL,
	}

	return s.send(recipient.Email, fmt.Sprintf("Voucher %s posted", voucher.Number), "voucher_posted.html", data)
}

func (s *EmailService) SendPeriodClosed(ctx context.Context, recipient *models.User, period *models.AccountingPeriod) error {
	data := struct {
		Name   string
		Period string
		AppURL string
	}{
		Name:   recipient.FullName,
		Period: period.Label(),
		AppURL: s.config.AppURL,
	}

	return s.send(recipient.Email, fmt.Sprintf("Period %s closed", period.Label()), "period_closed.html", data)
}

func (s *EmailService) send(to, subject, templateName string, data interface{}) error {
	body, err := s.renderTemplate(templateName, data)
	if err != nil {
		return err
	}

	params := &resend.SendEmailRequest{
		From:    s.config.FromEmail,
		To:      []string{to},
		Subject: subject,
		Html:    body,
	}
	if _, err := s.resendClient.Emails.Send(params); err != nil {
		logger.Error("failed to send email", "to", to, "subject", subject, "error", err)
		return err
	}

	logger.Info("email sent", "to", to, "subject", subject)
	return nil
}

func (s *EmailService) renderTemplate(name string, data interface{}) (string, error) {
	tmpl, err := template.ParseFS(emailTemplates, "templates/email/"+name)
	if err != nil {
		return "", fmt.Errorf("failed to parse template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", name, err)
	}

	return buf.String(), nil
}

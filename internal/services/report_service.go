package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"html/template"
	"os"
	"time"

	"github.com/SebastiaanKlippert/go-wkhtmltopdf"
	"github.com/ledgerbooks/ledgerbooks-api/internal/models"
	"github.com/ledgerbooks/ledgerbooks-api/internal/repository"
)

type ReportService struct {
	voucherRepo repository.VoucherRepository
	ledgerRepo  repository.LedgerRepository
}

func NewReportService(
	voucherRepo repository.VoucherRepository,
	ledgerRepo repository.LedgerRepository,
) *ReportService {
	return &ReportService{
		voucherRepo: voucherRepo,
		ledgerRepo:  ledgerRepo,
	}
}

// GenerateLedgerCSV dumps the general ledger book, optionally filtered by
// account, module or date range. Pagination is disabled so the export is
// complete.
func (s *ReportService) GenerateLedgerCSV(ctx context.Context, query *repository.LedgerQuery) (*bytes.Buffer, error) {
	if query == nil {
		query = &repository.LedgerQuery{ListQuery: repository.NewListQuery()}
	}
	query.PerPage = 0

	entries, _, err := s.ledgerRepo.List(ctx, query)
	if err != nil {
		return nil, err
	}

	b := &bytes.Buffer{}
	w := csv.NewWriter(b)

	header := []string{"Date", "Reference", "Module", "Account", "Account Name", "Sub-Account", "Description", "Debit", "Credit"}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for _, e := range entries {
		record := []string{
			e.Date.Format("2006-01-02"),
			e.Reference,
			e.Module,
			e.AccountNumber,
			e.AccountName,
			getStringValue(e.SubAccountName),
			e.Description,
			fmt.Sprintf("%.2f", e.Debit),
			fmt.Sprintf("%.2f", e.Credit),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}

	return b, nil
}

// GenerateTrialBalanceCSV exports per-account debit/credit totals for a date
// range, with a grand-total row. A balanced book shows equal totals.
func (s *ReportService) GenerateTrialBalanceCSV(ctx context.Context, from, to time.Time) (*bytes.Buffer, error) {
	totals, err := s.ledgerRepo.AccountTotals(ctx, from, to)
	if err != nil {
		return nil, err
	}

	b := &bytes.Buffer{}
	w := csv.NewWriter(b)

	header := []string{"Account", "Account Name", "Debit", "Credit", "Balance"}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	var grandDebit, grandCredit float64
	for _, t := range totals {
		grandDebit += t.Debit
		grandCredit += t.Credit
		record := []string{
			t.AccountNumber,
			t.AccountName,
			fmt.Sprintf("%.2f", t.Debit),
			fmt.Sprintf("%.2f", t.Credit),
			fmt.Sprintf("%.2f", t.Debit-t.Credit),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}

	total := []string{
		"", "TOTAL",
		fmt.Sprintf("%.2f", grandDebit),
		fmt.Sprintf("%.2f", grandCredit),
		fmt.Sprintf("%.2f", grandDebit-grandCredit),
	}
	if err := w.Write(total); err != nil {
		return nil, err
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}

	return b, nil
}

// GenerateVoucherPDF renders a printable voucher with its detail lines and
// signature blocks.
func (s *ReportService) GenerateVoucherPDF(ctx context.Context, voucherID uint) (*bytes.Buffer, error) {
	voucher, err := s.voucherRepo.FindByIDWithDetails(ctx, voucherID)
	if err != nil {
		return nil, err
	}

	titles := map[string]string{
		models.VoucherTypeCheck:     "CHECK VOUCHER",
		models.VoucherTypeJournal:   "JOURNAL VOUCHER",
		models.VoucherTypeOrderSlip: "CUSTOMER ORDER SLIP",
	}
	title := titles[voucher.VoucherType]
	if title == "" {
		title = "VOUCHER"
	}

	type lineData struct {
		AccountNumber  string
		AccountName    string
		SubAccountName string
		Debit          string
		Credit         string
	}

	var lines []lineData
	for _, d := range voucher.Details {
		lines = append(lines, lineData{
			AccountNumber:  d.AccountNumber,
			AccountName:    d.AccountName,
			SubAccountName: getStringValue(d.SubAccountName),
			Debit:          fmt.Sprintf("%.2f", d.Debit),
			Credit:         fmt.Sprintf("%.2f", d.Credit),
		})
	}

	preparedBy := ""
	if voucher.CreatedBy.ID != 0 {
		preparedBy = voucher.CreatedBy.FullName
	}
	approvedBy := ""
	if voucher.ApprovedBy != nil && voucher.ApprovedBy.ID != 0 {
		approvedBy = voucher.ApprovedBy.FullName
	}

	data := map[string]interface{}{
		"Title":       title,
		"Number":      voucher.Number,
		"Date":        voucher.Date.Format("02/01/2006"),
		"Payee":       getStringValue(voucher.Payee),
		"Particulars": getStringValue(voucher.Particulars),
		"Status":      voucher.Status,
		"CheckNumber": getStringValue(voucher.CheckNumber),
		"Lines":       lines,
		"TotalDebit":  fmt.Sprintf("%.2f", voucher.TotalDebit()),
		"TotalCredit": fmt.Sprintf("%.2f", voucher.TotalCredit()),
		"PreparedBy":  preparedBy,
		"ApprovedBy":  approvedBy,
	}

	return s.generatePDF("voucher_print.html", data)
}

// Helper to generate PDF from HTML template
func (s *ReportService) generatePDF(templateName string, data interface{}) (*bytes.Buffer, error) {
	// Try path relative to project root (Prod)
	tmplPath := fmt.Sprintf("internal/services/templates/reports/%s", templateName)
	if _, err := os.Stat(tmplPath); os.IsNotExist(err) {
		// Try path relative to package (Test)
		tmplPath = fmt.Sprintf("templates/reports/%s", templateName)
	}

	tmpl, err := template.ParseFiles(tmplPath)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template %s (path: %s): %w", templateName, tmplPath, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to execute template: %w", err)
	}

	pdfg, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		return nil, fmt.Errorf("failed to create pdf generator: %w", err)
	}

	pdfg.Dpi.Set(300)
	pdfg.Orientation.Set(wkhtmltopdf.OrientationPortrait)
	pdfg.Grayscale.Set(false)

	page := wkhtmltopdf.NewPageReader(bytes.NewReader(buf.Bytes()))
	page.EnableLocalFileAccess.Set(true)
	pdfg.AddPage(page)

	if err := pdfg.Create(); err != nil {
		return nil, fmt.Errorf("failed to create pdf: %w", err)
	}

	return pdfg.Buffer(), nil
}

package services

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/ledgerbooks/ledgerbooks-api/internal/repository"
	"github.com/xuri/excelize/v2"
)

type ExportService struct {
	ledgerRepo repository.LedgerRepository
}

func NewExportService(ledgerRepo repository.LedgerRepository) *ExportService {
	return &ExportService{ledgerRepo: ledgerRepo}
}

// ExportLedgerXLSX writes the filtered general ledger book to a spreadsheet
func (s *ExportService) ExportLedgerXLSX(ctx context.Context, query *repository.LedgerQuery) ([]byte, string, error) {
	if query == nil {
		query = &repository.LedgerQuery{ListQuery: repository.NewListQuery()}
	}
	query.PerPage = 0

	entries, _, err := s.ledgerRepo.List(ctx, query)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "General Ledger"
	_ = f.SetSheetName("Sheet1", sheet)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})

	headers := []string{"Date", "Reference", "Module", "Account", "Account Name", "Sub-Account", "Description", "Debit", "Credit"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
		_ = f.SetCellStyle(sheet, cell, cell, headerStyle)
	}

	var totalDebit, totalCredit float64
	for i, e := range entries {
		row := i + 2
		_ = f.SetCellValue(sheet, fmt.Sprintf("A%d", row), e.Date.Format("2006-01-02"))
		_ = f.SetCellValue(sheet, fmt.Sprintf("B%d", row), e.Reference)
		_ = f.SetCellValue(sheet, fmt.Sprintf("C%d", row), e.Module)
		_ = f.SetCellValue(sheet, fmt.Sprintf("D%d", row), e.AccountNumber)
		_ = f.SetCellValue(sheet, fmt.Sprintf("E%d", row), e.AccountName)
		_ = f.SetCellValue(sheet, fmt.Sprintf("F%d", row), getStringValue(e.SubAccountName))
		_ = f.SetCellValue(sheet, fmt.Sprintf("G%d", row), e.Description)
		_ = f.SetCellValue(sheet, fmt.Sprintf("H%d", row), e.Debit)
		_ = f.SetCellValue(sheet, fmt.Sprintf("I%d", row), e.Credit)
		totalDebit += e.Debit
		totalCredit += e.Credit
	}

	totalRow := len(entries) + 2
	_ = f.SetCellValue(sheet, fmt.Sprintf("G%d", totalRow), "TOTAL")
	_ = f.SetCellValue(sheet, fmt.Sprintf("H%d", totalRow), totalDebit)
	_ = f.SetCellValue(sheet, fmt.Sprintf("I%d", totalRow), totalCredit)
	_ = f.SetCellStyle(sheet, fmt.Sprintf("G%d", totalRow), fmt.Sprintf("I%d", totalRow), headerStyle)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("general_ledger_%s.xlsx", time.Now().Format("2006-01-02"))
	return buf.Bytes(), filename, nil
}

// ExportTrialBalanceXLSX writes per-account debit/credit totals for a range
func (s *ExportService) ExportTrialBalanceXLSX(ctx context.Context, from, to time.Time) ([]byte, string, error) {
	totals, err := s.ledgerRepo.AccountTotals(ctx, from, to)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Trial Balance"
	_ = f.SetSheetName("Sheet1", sheet)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})

	_ = f.SetCellValue(sheet, "A1", fmt.Sprintf("Trial Balance %s to %s", from.Format("2006-01-02"), to.Format("2006-01-02")))
	_ = f.SetCellStyle(sheet, "A1", "A1", headerStyle)

	headers := []string{"Account", "Account Name", "Debit", "Credit", "Balance"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 3)
		_ = f.SetCellValue(sheet, cell, h)
		_ = f.SetCellStyle(sheet, cell, cell, headerStyle)
	}

	var grandDebit, grandCredit float64
	for i, t := range totals {
		row := i + 4
		_ = f.SetCellValue(sheet, fmt.Sprintf("A%d", row), t.AccountNumber)
		_ = f.SetCellValue(sheet, fmt.Sprintf("B%d", row), t.AccountName)
		_ = f.SetCellValue(sheet, fmt.Sprintf("C%d", row), t.Debit)
		_ = f.SetCellValue(sheet, fmt.Sprintf("D%d", row), t.Credit)
		_ = f.SetCellValue(sheet, fmt.Sprintf("E%d", row), t.Debit-t.Credit)
		grandDebit += t.Debit
		grandCredit += t.Credit
	}

	totalRow := len(totals) + 4
	_ = f.SetCellValue(sheet, fmt.Sprintf("B%d", totalRow), "TOTAL")
	_ = f.SetCellValue(sheet, fmt.Sprintf("C%d", totalRow), grandDebit)
	_ = f.SetCellValue(sheet, fmt.Sprintf("D%d", totalRow), grandCredit)
	_ = f.SetCellValue(sheet, fmt.Sprintf("E%d", totalRow), grandDebit-grandCredit)
	_ = f.SetCellStyle(sheet, fmt.Sprintf("B%d", totalRow), fmt.Sprintf("E%d", totalRow), headerStyle)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("trial_balance_%s.xlsx", time.Now().Format("2006-01-02"))
	return buf.Bytes(), filename, nil
}

// ExportTrialBalancePDF renders the trial balance as a simple tabular PDF
func (s *ExportService) ExportTrialBalancePDF(ctx context.Context, from, to time.Time) ([]byte, string, error) {
	totals, err := s.ledgerRepo.AccountTotals(ctx, from, to)
	if err != nil {
		return nil, "", err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, "Trial Balance")
	pdf.Ln(8)

	pdf.SetFont("Arial", "", 10)
	pdf.Cell(80, 8, fmt.Sprintf("%s to %s", from.Format("2006-01-02"), to.Format("2006-01-02")))
	pdf.Ln(12)

	pdf.SetFont("Arial", "B", 10)
	pdf.Cell(25, 8, "Account")
	pdf.Cell(75, 8, "Account Name")
	pdf.Cell(30, 8, "Debit")
	pdf.Cell(30, 8, "Credit")
	pdf.Cell(30, 8, "Balance")
	pdf.Ln(8)

	pdf.SetFont("Arial", "", 10)
	var grandDebit, grandCredit float64
	for _, t := range totals {
		pdf.Cell(25, 7, t.AccountNumber)
		pdf.Cell(75, 7, t.AccountName)
		pdf.CellFormat(30, 7, fmt.Sprintf("%.2f", t.Debit), "", 0, "R", false, 0, "")
		pdf.CellFormat(30, 7, fmt.Sprintf("%.2f", t.Credit), "", 0, "R", false, 0, "")
		pdf.CellFormat(30, 7, fmt.Sprintf("%.2f", t.Debit-t.Credit), "", 0, "R", false, 0, "")
		pdf.Ln(7)
		grandDebit += t.Debit
		grandCredit += t.Credit
	}

	pdf.SetFont("Arial", "B", 10)
	pdf.Cell(100, 8, "TOTAL")
	pdf.CellFormat(30, 8, fmt.Sprintf("%.2f", grandDebit), "", 0, "R", false, 0, "")
	pdf.CellFormat(30, 8, fmt.Sprintf("%.2f", grandCredit), "", 0, "R", false, 0, "")
	pdf.CellFormat(30, 8, fmt.Sprintf("%.2f", grandDebit-grandCredit), "", 0, "R", false, 0, "")
	pdf.Ln(8)

	buf := new(bytes.Buffer)
	if err := pdf.Output(buf); err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("trial_balance_%s.pdf", time.Now().Format("2006-01-02"))
	return buf.Bytes(), filename, nil
}

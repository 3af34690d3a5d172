package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ledgerbooks/ledgerbooks-api/internal/repository"
	"github.com/ledgerbooks/ledgerbooks-api/internal/services"
)

type LedgerHandler struct {
	ledgerRepo    repository.LedgerRepository
	reportService *services.ReportService
	exportService *services.ExportService
}

func NewLedgerHandler(ledgerRepo repository.LedgerRepository, reportService *services.ReportService, exportService *services.ExportService) *LedgerHandler {
	return &LedgerHandler{
		ledgerRepo:    ledgerRepo,
		reportService: reportService,
		exportService: exportService,
	}
}

func ledgerQueryFrom(c *gin.Context) *repository.LedgerQuery {
	query := &repository.LedgerQuery{ListQuery: repository.NewListQuery()}
	query.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	query.PerPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "50"))
	query.AccountNumber = c.Query("account_number")
	query.Module = c.Query("module")
	query.Reference = c.Query("reference")
	query.DateFrom = c.Query("date_from")
	query.DateTo = c.Query("date_to")
	return query
}

// @Summary List Ledger Entries
// @Description Browse the general ledger book, ordered by date and reference
// @Tags Ledger
// @Accept json
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(50)
// @Param account_number query string false "Filter by account"
// @Param module query string false "Filter by source module"
// @Param reference query string false "Filter by voucher number"
// @Param date_from query string false "Date from (YYYY-MM-DD)"
// @Param date_to query string false "Date to (YYYY-MM-DD)"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /ledger [get]
func (h *LedgerHandler) Index(c *gin.Context) {
	query := ledgerQueryFrom(c)

	entries, total, err := h.ledgerRepo.List(c.Request.Context(), query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var responses []interface{}
	for _, e := range entries {
		responses = append(responses, e.ToResponse())
	}

	c.JSON(http.StatusOK, gin.H{
		"entries": responses,
		"pagination": gin.H{
			"page":     query.Page,
			"per_page": query.PerPage,
			"total":    total,
		},
	})
}

// @Summary Trial Balance
// @Description Per-account debit/credit totals over a date range
// @Tags Ledger
// @Accept json
// @Produce json
// @Param date_from query string true "Date from (YYYY-MM-DD)"
// @Param date_to query string true "Date to (YYYY-MM-DD)"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /ledger/trial_balance [get]
func (h *LedgerHandler) TrialBalance(c *gin.Context) {
	from, to, err := parseDateRange(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	totals, err := h.ledgerRepo.AccountTotals(c.Request.Context(), from, to)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var debit, credit float64
	for _, t := range totals {
		debit += t.Debit
		credit += t.Credit
	}

	c.JSON(http.StatusOK, gin.H{
		"accounts":     totals,
		"total_debit":  debit,
		"total_credit": credit,
	})
}

// @Summary Export Ledger CSV
// @Description Download the general ledger book as CSV
// @Tags Ledger
// @Produce text/csv
// @Success 200 {file} file "general_ledger.csv"
// @Security BearerAuth
// @Router /ledger/export_csv [get]
func (h *LedgerHandler) ExportCSV(c *gin.Context) {
	buf, err := h.reportService.GenerateLedgerCSV(c.Request.Context(), ledgerQueryFrom(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", "attachment; filename=general_ledger.csv")
	c.String(http.StatusOK, buf.String())
}

// @Summary Export Ledger XLSX
// @Description Download the general ledger book as a spreadsheet
// @Tags Ledger
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} file "general_ledger.xlsx"
// @Security BearerAuth
// @Router /ledger/export_xlsx [get]
func (h *LedgerHandler) ExportXLSX(c *gin.Context) {
	data, filename, err := h.exportService.ExportLedgerXLSX(c.Request.Context(), ledgerQueryFrom(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

// @Summary Trial Balance CSV
// @Description Download the trial balance as CSV
// @Tags Ledger
// @Produce text/csv
// @Param date_from query string true "Date from (YYYY-MM-DD)"
// @Param date_to query string true "Date to (YYYY-MM-DD)"
// @Success 200 {file} file "trial_balance.csv"
// @Security BearerAuth
// @Router /ledger/trial_balance_csv [get]
func (h *LedgerHandler) TrialBalanceCSV(c *gin.Context) {
	from, to, err := parseDateRange(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	buf, err := h.reportService.GenerateTrialBalanceCSV(c.Request.Context(), from, to)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", "attachment; filename=trial_balance.csv")
	c.String(http.StatusOK, buf.String())
}

// @Summary Trial Balance XLSX
// @Description Download the trial balance as a spreadsheet
// @Tags Ledger
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param date_from query string true "Date from (YYYY-MM-DD)"
// @Param date_to query string true "Date to (YYYY-MM-DD)"
// @Success 200 {file} file "trial_balance.xlsx"
// @Security BearerAuth
// @Router /ledger/trial_balance_xlsx [get]
func (h *LedgerHandler) TrialBalanceXLSX(c *gin.Context) {
	from, to, err := parseDateRange(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	data, filename, err := h.exportService.ExportTrialBalanceXLSX(c.Request.Context(), from, to)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

// @Summary Trial Balance PDF
// @Description Download the trial balance as PDF
// @Tags Ledger
// @Produce application/pdf
// @Param date_from query string true "Date from (YYYY-MM-DD)"
// @Param date_to query string true "Date to (YYYY-MM-DD)"
// @Success 200 {file} file "trial_balance.pdf"
// @Security BearerAuth
// @Router /ledger/trial_balance_pdf [get]
func (h *LedgerHandler) TrialBalancePDF(c *gin.Context) {
	from, to, err := parseDateRange(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	data, filename, err := h.exportService.ExportTrialBalancePDF(c.Request.Context(), from, to)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(http.StatusOK, "application/pdf", data)
}

// @Summary Print Voucher PDF
// @Description Download a printable voucher with signature blocks
// @Tags Reports
// @Produce application/pdf
// @Param voucher_id path int true "Voucher ID"
// @Success 200 {file} file "voucher.pdf"
// @Security BearerAuth
// @Router /vouchers/{voucher_id}/print [get]
func (h *LedgerHandler) VoucherPDF(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("voucher_id"), 10, 32)
	buf, err := h.reportService.GenerateVoucherPDF(c.Request.Context(), uint(id))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=voucher_%d.pdf", id))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

func parseDateRange(c *gin.Context) (time.Time, time.Time, error) {
	from, err := time.Parse("2006-01-02", c.Query("date_from"))
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("date_from must have YYYY-MM-DD format")
	}
	to, err := time.Parse("2006-01-02", c.Query("date_to"))
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("date_to must have YYYY-MM-DD format")
	}
	return from, to, nil
}

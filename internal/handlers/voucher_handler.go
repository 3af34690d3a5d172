package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ledgerbooks/ledgerbooks-api/internal/middleware"
	"github.com/ledgerbooks/ledgerbooks-api/internal/models"
	"github.com/ledgerbooks/ledgerbooks-api/internal/repository"
	"github.com/ledgerbooks/ledgerbooks-api/internal/services"
	"github.com/ledgerbooks/ledgerbooks-api/internal/storage"
)

type VoucherHandler struct {
	voucherService *services.VoucherService
	postingService *services.PostingService
	storage        *storage.LocalStorage
}

func NewVoucherHandler(voucherService *services.VoucherService, postingService *services.PostingService, storage *storage.LocalStorage) *VoucherHandler {
	return &VoucherHandler{
		voucherService: voucherService,
		postingService: postingService,
		storage:        storage,
	}
}

// voucherError maps service sentinels to HTTP responses
func voucherError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Voucher not found"})
	case errors.Is(err, services.ErrPeriodClosed):
		c.JSON(http.StatusConflict, gin.H{"error": "The accounting period for this date is closed"})
	case errors.Is(err, services.ErrInvalidState):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "The voucher state does not allow this operation"})
	case errors.Is(err, services.ErrUnbalancedEntry):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Debits and credits do not balance"})
	case errors.Is(err, services.ErrPaymentRecorded):
		c.JSON(http.StatusConflict, gin.H{"error": "Payments are recorded against this voucher; undo them first"})
	case errors.Is(err, services.ErrEmptyDetails):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "The voucher has no detail lines"})
	default:
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	}
}

// @Summary List Vouchers
// @Description Get a paginated list of vouchers
// @Tags Vouchers
// @Accept json
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Param search_term query string false "Search term"
// @Param voucher_type query string false "Filter by type (check, journal, order_slip)"
// @Param status query string false "Filter by status"
// @Param date_from query string false "Date from (YYYY-MM-DD)"
// @Param date_to query string false "Date to (YYYY-MM-DD)"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /vouchers [get]
func (h *VoucherHandler) Index(c *gin.Context) {
	query := &repository.VoucherQuery{ListQuery: repository.NewListQuery()}
	query.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	query.PerPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "20"))
	query.Search = c.Query("search_term")
	query.SortBy = c.Query("sort_by")
	query.SortDir = c.Query("sort_dir")
	query.VoucherType = c.Query("voucher_type")
	query.Status = c.Query("status")
	query.DateFrom = c.Query("date_from")
	query.DateTo = c.Query("date_to")

	vouchers, total, err := h.voucherService.List(c.Request.Context(), query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var responses []interface{}
	for _, v := range vouchers {
		responses = append(responses, v.ToResponse())
	}

	c.JSON(http.StatusOK, gin.H{
		"vouchers": responses,
		"pagination": gin.H{
			"page":        query.Page,
			"per_page":    query.PerPage,
			"total":       total,
			"total_pages": (total + int64(query.PerPage) - 1) / int64(query.PerPage),
		},
	})
}

// @Summary Get Voucher
// @Description Get a voucher with its detail lines
// @Tags Vouchers
// @Accept json
// @Produce json
// @Param voucher_id path int true "Voucher ID"
// @Success 200 {object} models.VoucherResponse
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /vouchers/{voucher_id} [get]
func (h *VoucherHandler) Show(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("voucher_id"), 10, 32)
	voucher, err := h.voucherService.FindByID(c.Request.Context(), uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Voucher not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"voucher": voucher.ToResponse()})
}

type VoucherDetailRequest struct {
	AccountNumber  string  `json:"account_number" binding:"required"`
	AccountName    string  `json:"account_name"`
	Debit          float64 `json:"debit"`
	Credit         float64 `json:"credit"`
	SubAccountKind string  `json:"sub_account_kind"`
	SubAccountID   *uint   `json:"sub_account_id"`
}

type AmortizationRequest struct {
	StartDate       string `json:"start_date" binding:"required"`
	OccurrenceTotal int    `json:"occurrence_total" binding:"required,gte=1"`
}

type CreateVoucherRequest struct {
	VoucherType  string                 `json:"voucher_type" binding:"required,oneof=check journal order_slip"`
	Date         string                 `json:"date" binding:"required"`
	Payee        *string                `json:"payee"`
	Particulars  *string                `json:"particulars"`
	CheckNumber  *string                `json:"check_number"`
	BankID       *uint                  `json:"bank_id"`
	JournalKind  *string                `json:"journal_kind"`
	Details      []VoucherDetailRequest `json:"details" binding:"required,min=1"`
	Amortization *AmortizationRequest   `json:"amortization"`
}

func toDetailModels(reqs []VoucherDetailRequest) []models.VoucherDetail {
	details := make([]models.VoucherDetail, 0, len(reqs))
	for _, r := range reqs {
		details = append(details, models.VoucherDetail{
			AccountNumber:  r.AccountNumber,
			AccountName:    r.AccountName,
			Debit:          r.Debit,
			Credit:         r.Credit,
			SubAccountKind: models.SubAccountKind(r.SubAccountKind),
			SubAccountID:   r.SubAccountID,
		})
	}
	return details
}

// @Summary Create Voucher
// @Description Draft a new voucher with detail lines
// @Tags Vouchers
// @Accept json
// @Produce json
// @Param request body CreateVoucherRequest true "Voucher Data"
// @Success 201 {object} models.VoucherResponse
// @Failure 400,409,422 {object} map[string]string
// @Security BearerAuth
// @Router /vouchers [post]
func (h *VoucherHandler) Create(c *gin.Context) {
	var req CreateVoucherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Date must have YYYY-MM-DD format"})
		return
	}

	input := &services.CreateVoucherInput{
		VoucherType: req.VoucherType,
		Date:        date,
		Payee:       req.Payee,
		Particulars: req.Particulars,
		CheckNumber: req.CheckNumber,
		BankID:      req.BankID,
		JournalKind: req.JournalKind,
		Details:     toDetailModels(req.Details),
	}
	if req.Amortization != nil {
		start, err := time.Parse("2006-01-02", req.Amortization.StartDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Amortization start date must have YYYY-MM-DD format"})
			return
		}
		input.Amortization = &services.AmortizationInput{
			StartDate:       start,
			OccurrenceTotal: req.Amortization.OccurrenceTotal,
		}
	}

	voucher, err := h.voucherService.Create(c.Request.Context(), input,
		middleware.GetUserID(c), c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		voucherError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"voucher": voucher.ToResponse(), "message": "Voucher created"})
}

type UpdateVoucherRequest struct {
	Date        *string                `json:"date"`
	Payee       *string                `json:"payee"`
	Particulars *string                `json:"particulars"`
	CheckNumber *string                `json:"check_number"`
	BankID      *uint                  `json:"bank_id"`
	Details     []VoucherDetailRequest `json:"details"`
}

// @Summary Update Voucher
// @Description Edit a voucher; editing reverts the status to draft and clears approvals
// @Tags Vouchers
// @Accept json
// @Produce json
// @Param voucher_id path int true "Voucher ID"
// @Param request body UpdateVoucherRequest true "Voucher Data"
// @Success 200 {object} models.VoucherResponse
// @Failure 400,404,409,422 {object} map[string]string
// @Security BearerAuth
// @Router /vouchers/{voucher_id} [patch]
func (h *VoucherHandler) Update(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("voucher_id"), 10, 32)
	var req UpdateVoucherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input := &services.UpdateVoucherInput{
		Payee:       req.Payee,
		Particulars: req.Particulars,
		CheckNumber: req.CheckNumber,
		BankID:      req.BankID,
	}
	if req.Date != nil {
		date, err := time.Parse("2006-01-02", *req.Date)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Date must have YYYY-MM-DD format"})
			return
		}
		input.Date = &date
	}
	if req.Details != nil {
		input.Details = toDetailModels(req.Details)
	}

	voucher, err := h.voucherService.Update(c.Request.Context(), uint(id), input,
		middleware.GetUserID(c), c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		voucherError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"voucher": voucher.ToResponse(), "message": "Voucher updated"})
}

// @Summary Submit Voucher
// @Description Send a draft voucher for approval
// @Tags Vouchers
// @Accept json
// @Produce json
// @Param voucher_id path int true "Voucher ID"
// @Success 200 {object} models.VoucherResponse
// @Failure 404,409,422 {object} map[string]string
// @Security BearerAuth
// @Router /vouchers/{voucher_id}/submit [post]
func (h *VoucherHandler) Submit(c *gin.Context) {
	h.transition(c, h.voucherService.Submit, "Voucher submitted for approval")
}

// @Summary Approve Voucher
// @Description Approve a submitted voucher for posting
// @Tags Vouchers
// @Accept json
// @Produce json
// @Param voucher_id path int true "Voucher ID"
// @Success 200 {object} models.VoucherResponse
// @Failure 404,409,422 {object} map[string]string
// @Security BearerAuth
// @Router /vouchers/{voucher_id}/approve [post]
func (h *VoucherHandler) Approve(c *gin.Context) {
	h.transition(c, h.voucherService.Approve, "Voucher approved")
}

// @Summary Cancel Voucher
// @Description Abandon an unposted voucher
// @Tags Vouchers
// @Accept json
// @Produce json
// @Param voucher_id path int true "Voucher ID"
// @Success 200 {object} models.VoucherResponse
// @Failure 404,409,422 {object} map[string]string
// @Security BearerAuth
// @Router /vouchers/{voucher_id}/cancel [post]
func (h *VoucherHandler) Cancel(c *gin.Context) {
	h.transition(c, h.voucherService.Cancel, "Voucher canceled")
}

// @Summary Post Voucher
// @Description Post an approved voucher to the general ledger
// @Tags Vouchers
// @Accept json
// @Produce json
// @Param voucher_id path int true "Voucher ID"
// @Success 200 {object} models.VoucherResponse
// @Failure 404,409,422 {object} map[string]string
// @Security BearerAuth
// @Router /vouchers/{voucher_id}/post [post]
func (h *VoucherHandler) Post(c *gin.Context) {
	h.transition(c, h.postingService.Post, "Voucher posted to the general ledger")
}

// @Summary Unpost Voucher
// @Description Reverse a posting; ledger rows are removed as a unit
// @Tags Vouchers
// @Accept json
// @Produce json
// @Param voucher_id path int true "Voucher ID"
// @Success 200 {object} models.VoucherResponse
// @Failure 404,409,422 {object} map[string]string
// @Security BearerAuth
// @Router /vouchers/{voucher_id}/unpost [post]
func (h *VoucherHandler) Unpost(c *gin.Context) {
	h.transition(c, h.postingService.Unpost, "Voucher posting reversed")
}

// @Summary Void Voucher
// @Description Void a posted voucher; its ledger rows are removed and the document is terminal
// @Tags Vouchers
// @Accept json
// @Produce json
// @Param voucher_id path int true "Voucher ID"
// @Success 200 {object} models.VoucherResponse
// @Failure 404,409,422 {object} map[string]string
// @Security BearerAuth
// @Router /vouchers/{voucher_id}/void [post]
func (h *VoucherHandler) Void(c *gin.Context) {
	h.transition(c, h.postingService.Void, "Voucher voided")
}

func (h *VoucherHandler) transition(
	c *gin.Context,
	op func(ctx context.Context, voucherID, actorID uint, ip, userAgent string) (*models.VoucherHeader, error),
	message string,
) {
	id, _ := strconv.ParseUint(c.Param("voucher_id"), 10, 32)
	voucher, err := op(c.Request.Context(), uint(id),
		middleware.GetUserID(c), c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		voucherError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"voucher": voucher.ToResponse(), "message": message})
}

// @Summary Upload Voucher Attachment
// @Description Attach a supporting document (PDF or image) to a voucher
// @Tags Vouchers
// @Accept multipart/form-data
// @Produce json
// @Param voucher_id path int true "Voucher ID"
// @Param file formData file true "Attachment"
// @Success 200 {object} models.VoucherResponse
// @Failure 400,404,409,422 {object} map[string]string
// @Security BearerAuth
// @Router /vouchers/{voucher_id}/attachment [post]
func (h *VoucherHandler) UploadAttachment(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("voucher_id"), 10, 32)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A file is required"})
		return
	}
	if fileHeader.Size > storage.MaxFileSize() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File exceeds the 10MB limit"})
		return
	}
	if !storage.IsValidContentType(fileHeader.Header.Get("Content-Type")) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only PDF and image files are allowed"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Could not read the uploaded file"})
		return
	}
	defer file.Close()

	voucher, err := h.voucherService.UploadAttachment(c.Request.Context(), uint(id), file, fileHeader, middleware.GetUserID(c))
	if err != nil {
		voucherError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"voucher": voucher.ToResponse(), "message": "Attachment uploaded"})
}

// @Summary Download Voucher Attachment
// @Description Download the supporting document attached to a voucher
// @Tags Vouchers
// @Produce application/octet-stream
// @Param voucher_id path int true "Voucher ID"
// @Success 200 {file} file
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /vouchers/{voucher_id}/attachment [get]
func (h *VoucherHandler) DownloadAttachment(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("voucher_id"), 10, 32)
	voucher, err := h.voucherService.FindByID(c.Request.Context(), uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Voucher not found"})
		return
	}
	path := voucher.AttachmentPath
	if path == nil || *path == "" || !h.storage.Exists(*path) {
		c.JSON(http.StatusNotFound, gin.H{"error": "This voucher has no attachment"})
		return
	}
	c.File(h.storage.GetFullPath(*path))
}

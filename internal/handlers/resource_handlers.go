package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/ledgerbooks/ledgerbooks-api/internal/middleware"
	"github.com/ledgerbooks/ledgerbooks-api/internal/models"
	"github.com/ledgerbooks/ledgerbooks-api/internal/repository"
	"github.com/ledgerbooks/ledgerbooks-api/internal/services"
)

type AccountHandler struct {
	accountService *services.AccountService
}

func NewAccountHandler(accountService *services.AccountService) *AccountHandler {
	return &AccountHandler{accountService: accountService}
}

// @Summary List Accounts
// @Description Get a paginated list of chart-of-accounts rows
// @Tags Accounts
// @Accept json
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(50)
// @Param search_term query string false "Search term"
// @Param account_type query string false "Filter by type"
// @Param active query string false "Filter by active flag"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /accounts [get]
func (h *AccountHandler) Index(c *gin.Context) {
	query := repository.NewListQuery()
	query.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	query.PerPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "50"))
	query.Search = c.Query("search_term")
	query.Filters["account_type"] = c.Query("account_type")
	query.Filters["active"] = c.Query("active")

	accounts, total, err := h.accountService.List(c.Request.Context(), query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"accounts": accounts, "pagination": gin.H{"total": total}})
}

// @Summary Get Account
// @Description Get a chart-of-accounts row by ID
// @Tags Accounts
// @Accept json
// @Produce json
// @Param account_id path int true "Account ID"
// @Success 200 {object} models.ChartOfAccount
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /accounts/{account_id} [get]
func (h *AccountHandler) Show(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("account_id"), 10, 32)
	account, err := h.accountService.FindByID(c.Request.Context(), uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"account": account})
}

// @Summary Create Account
// @Description Create a new chart-of-accounts row
// @Tags Accounts
// @Accept json
// @Produce json
// @Param request body models.ChartOfAccount true "Account Data"
// @Success 201 {object} models.ChartOfAccount
// @Security BearerAuth
// @Router /accounts [post]
func (h *AccountHandler) Create(c *gin.Context) {
	var account models.ChartOfAccount
	if err := c.ShouldBindJSON(&account); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.accountService.Create(c.Request.Context(), &account, middleware.GetUserID(c)); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"account": account})
}

// @Summary Update Account
// @Description Update a chart-of-accounts row
// @Tags Accounts
// @Accept json
// @Produce json
// @Param account_id path int true "Account ID"
// @Param request body models.ChartOfAccount true "Account Data"
// @Success 200 {object} models.ChartOfAccount
// @Security BearerAuth
// @Router /accounts/{account_id} [put]
func (h *AccountHandler) Update(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("account_id"), 10, 32)
	var account models.ChartOfAccount
	if err := c.ShouldBindJSON(&account); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	account.ID = uint(id)

	if err := h.accountService.Update(c.Request.Context(), &account, middleware.GetUserID(c)); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"account": account})
}

// @Summary Deactivate Account
// @Description Retire an account from new postings; ledger history is untouched
// @Tags Accounts
// @Accept json
// @Produce json
// @Param account_id path int true "Account ID"
// @Success 200 {object} map[string]string
// @Security BearerAuth
// @Router /accounts/{account_id} [delete]
func (h *AccountHandler) Deactivate(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("account_id"), 10, 32)
	account, err := h.accountService.Deactivate(c.Request.Context(), uint(id), middleware.GetUserID(c))
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"account": account, "message": "Account deactivated"})
}

type SubAccountHandler struct {
	subAccountService *services.SubAccountService
}

func NewSubAccountHandler(subAccountService *services.SubAccountService) *SubAccountHandler {
	return &SubAccountHandler{subAccountService: subAccountService}
}

func masterListQuery(c *gin.Context) *repository.ListQuery {
	query := repository.NewListQuery()
	query.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	query.PerPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "50"))
	query.Search = c.Query("search_term")
	query.Filters["active"] = c.Query("active")
	return query
}

// @Summary List Sub-Accounts
// @Description List one sub-account master (suppliers, customers, employees, banks, companies)
// @Tags SubAccounts
// @Accept json
// @Produce json
// @Param kind path string true "Master kind" Enums(suppliers, customers, employees, banks, companies)
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(50)
// @Param search_term query string false "Search term"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /sub_accounts/{kind} [get]
func (h *SubAccountHandler) Index(c *gin.Context) {
	query := masterListQuery(c)
	ctx := c.Request.Context()

	var rows interface{}
	var total int64
	var err error

	switch c.Param("kind") {
	case "suppliers":
		rows, total, err = h.subAccountService.ListSuppliers(ctx, query)
	case "customers":
		rows, total, err = h.subAccountService.ListCustomers(ctx, query)
	case "employees":
		rows, total, err = h.subAccountService.ListEmployees(ctx, query)
	case "banks":
		rows, total, err = h.subAccountService.ListBanks(ctx, query)
	case "companies":
		rows, total, err = h.subAccountService.ListCompanies(ctx, query)
	default:
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown sub-account kind"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"sub_accounts": rows, "pagination": gin.H{"total": total}})
}

type NotificationHandler struct {
	notificationService *services.NotificationService
}

func NewNotificationHandler(notificationService *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// @Summary List Notifications
// @Description Get a paginated list of notifications for the current user
// @Tags Notifications
// @Accept json
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /notifications [get]
func (h *NotificationHandler) Index(c *gin.Context) {
	userID := middleware.GetUserID(c)
	query := repository.NewListQuery()
	query.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	query.PerPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "20"))

	notifications, total, err := h.notificationService.FindByUser(c.Request.Context(), userID, query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var responses []interface{}
	for _, n := range notifications {
		responses = append(responses, n.ToResponse())
	}

	c.JSON(http.StatusOK, gin.H{"notifications": responses, "pagination": gin.H{"total": total}})
}

// @Summary Mark Notification Read
// @Description Mark a notification as read
// @Tags Notifications
// @Accept json
// @Produce json
// @Param notification_id path int true "Notification ID"
// @Success 200 {object} map[string]string
// @Security BearerAuth
// @Router /notifications/{notification_id} [put]
func (h *NotificationHandler) Update(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("notification_id"), 10, 32)
	if err := h.notificationService.MarkAsRead(c.Request.Context(), uint(id)); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notification marked as read"})
}

// @Summary Delete Notification
// @Description Delete a notification
// @Tags Notifications
// @Accept json
// @Produce json
// @Param notification_id path int true "Notification ID"
// @Success 200 {object} map[string]string
// @Security BearerAuth
// @Router /notifications/{notification_id} [delete]
func (h *NotificationHandler) Delete(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("notification_id"), 10, 32)
	if err := h.notificationService.Delete(c.Request.Context(), uint(id)); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notification deleted"})
}

// @Summary Mark All Notifications Read
// @Description Mark all notifications as read for current user
// @Tags Notifications
// @Accept json
// @Produce json
// @Success 200 {object} map[string]string
// @Security BearerAuth
// @Router /notifications/mark_all_as_read [post]
func (h *NotificationHandler) MarkAllAsRead(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if err := h.notificationService.MarkAllAsRead(c.Request.Context(), userID); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "All notifications marked as read"})
}

type AuditHandler struct {
	auditService *services.AuditService
}

func NewAuditHandler(auditService *services.AuditService) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

// @Summary List Audit Logs
// @Description Get a paginated list of system audit logs
// @Tags Audit
// @Accept json
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(50)
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /audits [get]
func (h *AuditHandler) Index(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "50"))
	offset := (page - 1) * perPage

	logs, total, err := h.auditService.List(c.Request.Context(), perPage, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"audits": logs, "pagination": gin.H{"total": total, "page": page, "per_page": perPage}})
}

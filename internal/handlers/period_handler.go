package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/ledgerbooks/ledgerbooks-api/internal/middleware"
	"github.com/ledgerbooks/ledgerbooks-api/internal/services"
)

type PeriodHandler struct {
	periodService *services.PeriodService
}

func NewPeriodHandler(periodService *services.PeriodService) *PeriodHandler {
	return &PeriodHandler{periodService: periodService}
}

// @Summary List Periods
// @Description List accounting periods, optionally by year
// @Tags Periods
// @Accept json
// @Produce json
// @Param year query int false "Year"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /periods [get]
func (h *PeriodHandler) Index(c *gin.Context) {
	year, _ := strconv.Atoi(c.Query("year"))
	periods, err := h.periodService.List(c.Request.Context(), year)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"periods": periods})
}

type PeriodRequest struct {
	Year  int `json:"year" binding:"required,gte=2000,lte=2100"`
	Month int `json:"month" binding:"required,gte=1,lte=12"`
}

// @Summary Close Period
// @Description Lock an accounting month; documents dated within it become immutable
// @Tags Periods
// @Accept json
// @Produce json
// @Param request body PeriodRequest true "Year and Month"
// @Success 200 {object} map[string]interface{}
// @Failure 400,422 {object} map[string]string
// @Security BearerAuth
// @Router /periods/close [post]
func (h *PeriodHandler) Close(c *gin.Context) {
	var req PeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	period, err := h.periodService.Close(c.Request.Context(), req.Year, req.Month,
		middleware.GetUserID(c), c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		if errors.Is(err, services.ErrInvalidState) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "The period is already closed"})
			return
		}
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"period": period, "message": "Period closed"})
}

// @Summary Reopen Period
// @Description Unlock a closed accounting month (Admin)
// @Tags Periods
// @Accept json
// @Produce json
// @Param request body PeriodRequest true "Year and Month"
// @Success 200 {object} map[string]interface{}
// @Failure 400,404,422 {object} map[string]string
// @Security BearerAuth
// @Router /periods/reopen [post]
func (h *PeriodHandler) Reopen(c *gin.Context) {
	var req PeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	period, err := h.periodService.Reopen(c.Request.Context(), req.Year, req.Month,
		middleware.GetUserID(c), c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Period not found"})
		case errors.Is(err, services.ErrInvalidState):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "The period is not closed"})
		default:
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"period": period, "message": "Period reopened"})
}

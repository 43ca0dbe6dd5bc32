package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/Raiterion-coder/finance-manager/internal/errors"
	"github.com/Raiterion-coder/finance-manager/internal/models"
	"github.com/Raiterion-coder/finance-manager/internal/services"
)

// ReportHandler serves chart data and ledger summaries.
type ReportHandler struct {
	reportService services.ReportServicer
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(reportService services.ReportServicer) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// GetBalanceHistory returns the running balance per date for charting
// @Summary     Balance history
// @Description Per-date running balance of an account, anchored on its stored balance
// @Tags        reports
// @Produce     json
// @Security    ApiKeyAuth
// @Param       id path int true "Account ID"
// @Success     200 {object} services.BalanceHistory "Balance series"
// @Failure     400 {object} ErrorResponse "Invalid account ID"
// @Failure     404 {object} ErrorResponse "Account not found or no transactions"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /accounts/{id}/balance-history [get]
func (h *ReportHandler) GetBalanceHistory(c *gin.Context) {
	accountID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	history, err := h.reportService.GetBalanceHistory(accountID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, history)
}

// ReconcileAccount reports drift between stored and recomputed balance
// @Summary     Reconcile account balance
// @Tags        reports
// @Produce     json
// @Security    ApiKeyAuth
// @Param       id path int true "Account ID"
// @Success     200 {object} services.Reconciliation "Reconciliation"
// @Failure     400 {object} ErrorResponse "Invalid account ID"
// @Failure     404 {object} ErrorResponse "Account not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /accounts/{id}/reconciliation [get]
func (h *ReportHandler) ReconcileAccount(c *gin.Context) {
	accountID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	rec, err := h.reportService.ReconcileAccount(accountID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, rec)
}

// RepairBalance rewrites the stored balance from transaction history
// @Summary     Repair account balance
// @Tags        reports
// @Produce     json
// @Security    ApiKeyAuth
// @Param       id path int true "Account ID"
// @Success     200 {object} services.Reconciliation "Reconciliation after repair"
// @Failure     400 {object} ErrorResponse "Invalid account ID"
// @Failure     404 {object} ErrorResponse "Account not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /accounts/{id}/reconciliation [post]
func (h *ReportHandler) RepairBalance(c *gin.Context) {
	accountID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	rec, err := h.reportService.RepairBalance(accountID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, rec)
}

// GetCategorySummary totals income and expense per category
// @Summary     Category summary
// @Tags        reports
// @Produce     json
// @Security    ApiKeyAuth
// @Param       account_id query int    false "Restrict to an account"
// @Param       from_date  query string false "Inclusive start date (YYYY-MM-DD)"
// @Param       to_date    query string false "Inclusive end date (YYYY-MM-DD)"
// @Success     200 {object} map[string][]services.CategoryTotal "Totals per category"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Account not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /reports/categories [get]
func (h *ReportHandler) GetCategorySummary(c *gin.Context) {
	var filter services.SummaryFilter

	accountID, err := parseQueryID(c, "account_id")
	if err != nil {
		respondWithError(c, err)
		return
	}
	filter.AccountID = accountID

	if v := c.Query("from_date"); v != "" {
		if _, err := models.ParseDate(v); err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid from_date format, use YYYY-MM-DD"))
			return
		}
		filter.FromDate = &v
	}
	if v := c.Query("to_date"); v != "" {
		if _, err := models.ParseDate(v); err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid to_date format, use YYYY-MM-DD"))
			return
		}
		filter.ToDate = &v
	}

	totals, err := h.reportService.GetCategorySummary(filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"categories": totals})
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	reportshandler "shopledger-system/internal/services/reports/handler"

	"shopledger-system/internal/models"
)

type ReportsHTTPHandler struct {
	reports *reportshandler.ReportsHandler
}

func NewReportsHTTPHandler(reports *reportshandler.ReportsHandler) *ReportsHTTPHandler {
	return &ReportsHTTPHandler{
		reports: reports,
	}
}

type DismissAlertRequest struct {
	Barcode string `json:"barcode" binding:"required"`
}

func (h *ReportsHTTPHandler) GetProfit(c *gin.Context) {
	window, err := reportshandler.ParseWindow(c.Query("window"))
	if err != nil {
		respondError(c, err)
		return
	}
	profit, err := h.reports.Profit(window, c.Query("user"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("Profit computed successfully", gin.H{
		"window": c.DefaultQuery("window", "all"),
		"profit": models.Money(profit),
	}))
}

func (h *ReportsHTTPHandler) GetBalance(c *gin.Context) {
	window, err := reportshandler.ParseWindow(c.Query("window"))
	if err != nil {
		respondError(c, err)
		return
	}
	user := c.Query("user")

	cashBalance, err := h.reports.CashBalance()
	if err != nil {
		respondError(c, err)
		return
	}
	salesTotal, err := h.reports.SalesTotal(window, user)
	if err != nil {
		respondError(c, err)
		return
	}
	purchasesTotal, err := h.reports.PurchasesTotal(window, user)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("Balance computed successfully", gin.H{
		"window":          c.DefaultQuery("window", "all"),
		"cash_balance":    models.Money(cashBalance),
		"sales_total":     models.Money(salesTotal),
		"purchases_total": models.Money(purchasesTotal),
		"total_balance":   models.Money(cashBalance.Add(salesTotal).Sub(purchasesTotal)),
	}))
}

func (h *ReportsHTTPHandler) GetNotifications(c *gin.Context) {
	notifications := h.reports.Notifications(h.reports.Clock())
	c.JSON(http.StatusOK, successResponse("Notifications retrieved successfully", notifications))
}

func (h *ReportsHTTPHandler) GetDashboard(c *gin.Context) {
	dashboard, err := h.reports.Dashboard(c.Request.Context(), c.Query("user"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("Dashboard retrieved successfully", dashboard))
}

func (h *ReportsHTTPHandler) DismissAlert(c *gin.Context) {
	var req DismissAlertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request body: "+err.Error()))
		return
	}

	if err := h.reports.DismissAlert(c.Request.Context(), req.Barcode); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("Alert dismissed successfully", nil))
}

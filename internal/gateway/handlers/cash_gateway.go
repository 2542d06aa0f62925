package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	cashhandler "shopledger-system/internal/services/cash/handler"

	"shopledger-system/internal/models"
)

type CashHTTPHandler struct {
	cash *cashhandler.CashHandler
}

func NewCashHTTPHandler(cash *cashhandler.CashHandler) *CashHTTPHandler {
	return &CashHTTPHandler{
		cash: cash,
	}
}

// Request structs
type RecordCashRequest struct {
	Amount      string `json:"amount" binding:"required"`
	Type        string `json:"type" binding:"required"`
	Description string `json:"description"`
	User        string `json:"user" binding:"required"`
}

type PaySalaryRequest struct {
	Employee string `json:"employee" binding:"required"`
	Amount   string `json:"amount" binding:"required"`
	Source   string `json:"source" binding:"required"`
	Note     string `json:"note"`
	User     string `json:"user" binding:"required"`
}

func (h *CashHTTPHandler) RecordTransaction(c *gin.Context) {
	var req RecordCashRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request body: "+err.Error()))
		return
	}

	tx, err := h.cash.Record(c.Request.Context(), req.Amount, req.Type, req.Description, req.User)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, successResponse("Transaction recorded successfully", tx))
}

func (h *CashHTTPHandler) ListTransactions(c *gin.Context) {
	c.JSON(http.StatusOK, successResponse("Transactions retrieved successfully", h.cash.List()))
}

func (h *CashHTTPHandler) GetBalance(c *gin.Context) {
	balance, err := h.cash.Balance()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("Balance retrieved successfully", gin.H{
		"balance": models.Money(balance),
	}))
}

func (h *CashHTTPHandler) DeleteTransaction(c *gin.Context) {
	dateStr := c.Query("date")
	if dateStr == "" {
		c.JSON(http.StatusBadRequest, errorResponse("date query parameter required"))
		return
	}
	date, err := time.Parse(time.RFC3339, dateStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid date timestamp"))
		return
	}

	if err := h.cash.DeleteByDate(c.Request.Context(), date); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("Transaction deleted successfully", nil))
}

func (h *CashHTTPHandler) PaySalary(c *gin.Context) {
	var req PaySalaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request body: "+err.Error()))
		return
	}

	payment, err := h.cash.PaySalary(c.Request.Context(), req.Employee, req.Amount, req.Source, req.Note, req.User)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, successResponse("Salary payment recorded successfully", payment))
}

func (h *CashHTTPHandler) ListSalaryPayments(c *gin.Context) {
	c.JSON(http.StatusOK, successResponse("Salary payments retrieved successfully", h.cash.ListPayments()))
}

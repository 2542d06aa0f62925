package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	poshandler "shopledger-system/internal/services/pos/handler"
)

type POSHTTPHandler struct {
	pos *poshandler.POSHandler
}

func NewPOSHTTPHandler(pos *poshandler.POSHandler) *POSHTTPHandler {
	return &POSHTTPHandler{
		pos: pos,
	}
}

// Request structs
type SellLineRequest struct {
	Barcode  string `json:"barcode" binding:"required"`
	Quantity int    `json:"quantity" binding:"required,min=1"`
	Price    string `json:"price,omitempty"`
	Discount bool   `json:"discount,omitempty"`
}

type SellRequest struct {
	User  string            `json:"user" binding:"required"`
	Items []SellLineRequest `json:"items" binding:"required,min=1,dive"`
}

type EditSaleLineRequest struct {
	Quantity  int    `json:"quantity" binding:"required,min=1"`
	SalePrice string `json:"sale_price" binding:"required"`
}

func (h *POSHTTPHandler) Sell(c *gin.Context) {
	var req SellRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request body: "+err.Error()))
		return
	}

	lines := make([]poshandler.SellLine, 0, len(req.Items))
	for _, item := range req.Items {
		lines = append(lines, poshandler.SellLine{
			Barcode:  item.Barcode,
			Quantity: item.Quantity,
			Price:    item.Price,
			Discount: item.Discount,
		})
	}

	order, lowStock, err := h.pos.Sell(c.Request.Context(), lines, req.User)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse("Sale recorded successfully", gin.H{
		"order":     order,
		"low_stock": lowStock,
	}))
}

func (h *POSHTTPHandler) ListSales(c *gin.Context) {
	filter := poshandler.SaleFilter{User: c.Query("user")}
	if since := c.Query("since"); since != "" {
		t, err := time.Parse(time.RFC3339, since)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse("Invalid since timestamp"))
			return
		}
		filter.Since = &t
	}
	if until := c.Query("until"); until != "" {
		t, err := time.Parse(time.RFC3339, until)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse("Invalid until timestamp"))
			return
		}
		filter.Until = &t
	}

	orders := h.pos.ListOrders(filter)

	// Newest first.
	for i, j := 0, len(orders)-1; i < j; i, j = i+1, j-1 {
		orders[i], orders[j] = orders[j], orders[i]
	}
	c.JSON(http.StatusOK, successResponse("Sales retrieved successfully", orders))
}

func (h *POSHTTPHandler) GetSale(c *gin.Context) {
	order, err := h.pos.GetOrder(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("Sale retrieved successfully", order))
}

func (h *POSHTTPHandler) EditSaleLine(c *gin.Context) {
	var req EditSaleLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request body: "+err.Error()))
		return
	}

	order, err := h.pos.EditLine(c.Request.Context(), c.Param("id"), c.Param("barcode"), req.Quantity, req.SalePrice)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("Sale updated successfully", order))
}

func (h *POSHTTPHandler) DeleteSale(c *gin.Context) {
	if err := h.pos.DeleteOrder(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("Sale deleted successfully", nil))
}

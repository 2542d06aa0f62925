package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	purchasinghandler "shopledger-system/internal/services/purchasing/handler"
)

type PurchasingHTTPHandler struct {
	purchasing *purchasinghandler.PurchasingHandler
}

func NewPurchasingHTTPHandler(purchasing *purchasinghandler.PurchasingHandler) *PurchasingHTTPHandler {
	return &PurchasingHTTPHandler{
		purchasing: purchasing,
	}
}

// Request structs
type RestockRequest struct {
	ProductName     string `json:"product_name" binding:"required"`
	RefNumber       string `json:"ref_number,omitempty"`
	Description     string `json:"description"`
	Price           string `json:"price" binding:"required"`
	SellingPrice    string `json:"selling_price" binding:"required"`
	MinSellingPrice string `json:"min_selling_price" binding:"required"`
	Quantity        int    `json:"quantity" binding:"required,min=1"`
	User            string `json:"user" binding:"required"`
}

type UpdateOrderRequest struct {
	ProductName     *string `json:"product_name,omitempty"`
	Description     *string `json:"description,omitempty"`
	Price           *string `json:"price,omitempty"`
	SellingPrice    *string `json:"selling_price,omitempty"`
	MinSellingPrice *string `json:"min_selling_price,omitempty"`
	Quantity        *int    `json:"quantity,omitempty"`
}

func (h *PurchasingHTTPHandler) Restock(c *gin.Context) {
	var req RestockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request body: "+err.Error()))
		return
	}

	order, err := h.purchasing.Restock(c.Request.Context(), purchasinghandler.RestockRequest{
		ProductName:     req.ProductName,
		RefNumber:       req.RefNumber,
		Description:     req.Description,
		Price:           req.Price,
		SellingPrice:    req.SellingPrice,
		MinSellingPrice: req.MinSellingPrice,
		Quantity:        req.Quantity,
		User:            req.User,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, successResponse("Order placed and inventory updated", order))
}

func (h *PurchasingHTTPHandler) ListOrders(c *gin.Context) {
	orders := h.purchasing.ListOrders(purchasinghandler.OrderFilter{
		User:       c.Query("user"),
		DatePrefix: c.Query("date"),
	})

	// Newest first.
	for i, j := 0, len(orders)-1; i < j; i, j = i+1, j-1 {
		orders[i], orders[j] = orders[j], orders[i]
	}
	c.JSON(http.StatusOK, successResponse("Orders retrieved successfully", orders))
}

func (h *PurchasingHTTPHandler) GetOrder(c *gin.Context) {
	order, err := h.purchasing.GetOrder(c.Param("number"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("Order retrieved successfully", order))
}

func (h *PurchasingHTTPHandler) UpdateOrder(c *gin.Context) {
	var req UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request body: "+err.Error()))
		return
	}

	order, err := h.purchasing.EditOrder(c.Request.Context(), c.Param("number"), purchasinghandler.UpdateOrderFields{
		ProductName:     req.ProductName,
		Description:     req.Description,
		Price:           req.Price,
		SellingPrice:    req.SellingPrice,
		MinSellingPrice: req.MinSellingPrice,
		Quantity:        req.Quantity,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("Order updated successfully", order))
}

func (h *PurchasingHTTPHandler) DeleteOrder(c *gin.Context) {
	if err := h.purchasing.DeleteOrder(c.Request.Context(), c.Param("number")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("Order deleted successfully", nil))
}

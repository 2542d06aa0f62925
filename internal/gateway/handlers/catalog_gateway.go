package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	cataloghandler "shopledger-system/internal/services/catalog/handler"

	"shopledger-system/internal/models"
)

type CatalogHTTPHandler struct {
	catalog *cataloghandler.CatalogHandler
}

func NewCatalogHTTPHandler(catalog *cataloghandler.CatalogHandler) *CatalogHTTPHandler {
	return &CatalogHTTPHandler{
		catalog: catalog,
	}
}

// Request structs
type CreateItemRequest struct {
	Barcode         string `json:"barcode" binding:"required"`
	ProductName     string `json:"product_name" binding:"required"`
	Description     string `json:"description"`
	PurchasePrice   string `json:"purchase_price" binding:"required"`
	SellingPrice    string `json:"selling_price" binding:"required"`
	MinSellingPrice string `json:"min_selling_price" binding:"required"`
	Quantity        int    `json:"quantity" binding:"min=0"`
	Owner           string `json:"owner"`
}

type UpdateItemRequest struct {
	Barcode         *string `json:"barcode,omitempty"`
	ProductName     *string `json:"product_name,omitempty"`
	Description     *string `json:"description,omitempty"`
	PurchasePrice   *string `json:"purchase_price,omitempty"`
	SellingPrice    *string `json:"selling_price,omitempty"`
	MinSellingPrice *string `json:"min_selling_price,omitempty"`
	Quantity        *int    `json:"quantity,omitempty"`
}

type AddQuantityRequest struct {
	Ref      string `json:"ref" binding:"required"`
	Quantity int    `json:"quantity" binding:"required,min=1"`
}

func (h *CatalogHTTPHandler) ListItems(c *gin.Context) {
	items := h.catalog.List(c.Query("owner"))

	// Newest first, like the admin item list.
	for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
		items[i], items[j] = items[j], items[i]
	}
	c.JSON(http.StatusOK, successResponse("Items retrieved successfully", items))
}

func (h *CatalogHTTPHandler) GetItem(c *gin.Context) {
	item, err := h.catalog.Get(c.Param("barcode"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("Item retrieved successfully", item))
}

func (h *CatalogHTTPHandler) CreateItem(c *gin.Context) {
	var req CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request body: "+err.Error()))
		return
	}

	item, err := h.catalog.Add(c.Request.Context(), models.Item{
		Barcode:         req.Barcode,
		ProductName:     req.ProductName,
		Description:     req.Description,
		PurchasePrice:   req.PurchasePrice,
		SellingPrice:    req.SellingPrice,
		MinSellingPrice: req.MinSellingPrice,
		Quantity:        req.Quantity,
		Owner:           req.Owner,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, successResponse("Item created successfully", item))
}

func (h *CatalogHTTPHandler) UpdateItem(c *gin.Context) {
	var req UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request body: "+err.Error()))
		return
	}

	item, err := h.catalog.Update(c.Request.Context(), c.Param("barcode"), cataloghandler.UpdateItemFields{
		Barcode:         req.Barcode,
		ProductName:     req.ProductName,
		Description:     req.Description,
		PurchasePrice:   req.PurchasePrice,
		SellingPrice:    req.SellingPrice,
		MinSellingPrice: req.MinSellingPrice,
		Quantity:        req.Quantity,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("Item updated successfully", item))
}

func (h *CatalogHTTPHandler) DeleteItem(c *gin.Context) {
	if err := h.catalog.Delete(c.Request.Context(), c.Param("barcode")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("Item deleted successfully", nil))
}

func (h *CatalogHTTPHandler) AddQuantity(c *gin.Context) {
	var req AddQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request body: "+err.Error()))
		return
	}

	item, err := h.catalog.AddQuantity(c.Request.Context(), req.Ref, req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("Quantity updated successfully", item))
}

func (h *CatalogHTTPHandler) GenerateBarcode(c *gin.Context) {
	c.JSON(http.StatusOK, successResponse("Barcode generated successfully", gin.H{
		"barcode": h.catalog.Generate(),
	}))
}

package models

import "time"

type SaleOrder struct {
	OrderID         string     `json:"order_id"`
	User            string     `json:"user"`
	Date            time.Time  `json:"date"`
	Items           []SaleLine `json:"items"`
	TotalOrderPrice string     `json:"total_order_price"`
}

type SaleLine struct {
	Barcode     string `json:"barcode"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
	SalePrice   string `json:"sale_price"`
	TotalPrice  string `json:"total_price"`
	// PurchasePrice is the item's purchase price at the time of sale, frozen
	// here so profit figures stay stable when the catalog price changes.
	PurchasePrice string `json:"purchase_price"`
}

type PurchaseOrder struct {
	OrderNumber     string    `json:"order_number"`
	ProductName     string    `json:"product_name"`
	RefNumber       string    `json:"ref_number,omitempty"`
	Description     string    `json:"description"`
	Price           string    `json:"price"`
	SellingPrice    string    `json:"selling_price"`
	MinSellingPrice string    `json:"min_selling_price"`
	Quantity        int       `json:"quantity"`
	TotalPrice      string    `json:"total_price"`
	Date            time.Time `json:"date"`
	User            string    `json:"user"`
}

package main

import (
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"shopledger-system/config"
	"shopledger-system/internal/gateway/handlers"
	"shopledger-system/internal/gateway/middleware"
	"shopledger-system/internal/models"
	cashhandler "shopledger-system/internal/services/cash/handler"
	cataloghandler "shopledger-system/internal/services/catalog/handler"
	poshandler "shopledger-system/internal/services/pos/handler"
	purchasinghandler "shopledger-system/internal/services/purchasing/handler"
	reportshandler "shopledger-system/internal/services/reports/handler"
	"shopledger-system/internal/store"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.LoadConfig()

	if err := os.MkdirAll(cfg.Data.Dir, 0o755); err != nil {
		log.Fatalf("Failed to create data directory %s: %v", cfg.Data.Dir, err)
	}

	items, err := store.Open[models.Item](filepath.Join(cfg.Data.Dir, "items.json"))
	if err != nil {
		log.Fatalf("Failed to open item catalog: %v", err)
	}
	sales, err := store.Open[models.SaleOrder](filepath.Join(cfg.Data.Dir, "sales.json"))
	if err != nil {
		log.Fatalf("Failed to open sale ledger: %v", err)
	}
	orders, err := store.Open[models.PurchaseOrder](filepath.Join(cfg.Data.Dir, "orders.json"))
	if err != nil {
		log.Fatalf("Failed to open order ledger: %v", err)
	}
	cash, err := store.Open[models.CashTransaction](filepath.Join(cfg.Data.Dir, "kasse.json"))
	if err != nil {
		log.Fatalf("Failed to open cash ledger: %v", err)
	}
	salaries, err := store.Open[models.SalaryPayment](filepath.Join(cfg.Data.Dir, "salary_payments.json"))
	if err != nil {
		log.Fatalf("Failed to open salary ledger: %v", err)
	}
	dismissals, err := store.Open[models.AlertDismissal](filepath.Join(cfg.Data.Dir, "dismissed_alerts.json"))
	if err != nil {
		log.Fatalf("Failed to open alert dismissals: %v", err)
	}

	redisClient := config.NewRedisClient(cfg.Redis)

	catalogService := cataloghandler.NewCatalogHandler(items, redisClient)
	posService := poshandler.NewPOSHandler(items, sales, redisClient)
	posService.LowStockThreshold = cfg.Stock.LowStockThreshold
	purchasingService := purchasinghandler.NewPurchasingHandler(items, orders, redisClient)
	cashService := cashhandler.NewCashHandler(cash, salaries, redisClient)
	reportsService := reportshandler.NewReportsHandler(items, sales, orders, cash, dismissals, redisClient)
	reportsService.LowStockThreshold = cfg.Stock.LowStockThreshold
	reportsService.AgingDays = cfg.Stock.AgingDays

	catalogHandler := handlers.NewCatalogHTTPHandler(catalogService)
	posHandler := handlers.NewPOSHTTPHandler(posService)
	purchasingHandler := handlers.NewPurchasingHTTPHandler(purchasingService)
	cashHandler := handlers.NewCashHTTPHandler(cashService)
	reportsHandler := handlers.NewReportsHTTPHandler(reportsService)

	r := gin.Default()
	r.Use(middleware.RateLimit(cfg.Server.RateLimit))

	api := r.Group("/api/v1")
	{
		itemsGroup := api.Group("/items")
		{
			itemsGroup.GET("", catalogHandler.ListItems)
			itemsGroup.POST("", catalogHandler.CreateItem)
			itemsGroup.GET("/:barcode", catalogHandler.GetItem)
			itemsGroup.PUT("/:barcode", catalogHandler.UpdateItem)
			itemsGroup.DELETE("/:barcode", catalogHandler.DeleteItem)
			itemsGroup.POST("/quantity", catalogHandler.AddQuantity)
			itemsGroup.POST("/barcode", catalogHandler.GenerateBarcode)
		}

		salesGroup := api.Group("/sales")
		{
			salesGroup.POST("", posHandler.Sell)
			salesGroup.GET("", posHandler.ListSales)
			salesGroup.GET("/:id", posHandler.GetSale)
			salesGroup.PUT("/:id/items/:barcode", posHandler.EditSaleLine)
			salesGroup.DELETE("/:id", posHandler.DeleteSale)
		}

		ordersGroup := api.Group("/orders")
		{
			ordersGroup.POST("", purchasingHandler.Restock)
			ordersGroup.GET("", purchasingHandler.ListOrders)
			ordersGroup.GET("/:number", purchasingHandler.GetOrder)
			ordersGroup.PUT("/:number", purchasingHandler.UpdateOrder)
			ordersGroup.DELETE("/:number", purchasingHandler.DeleteOrder)
		}

		cashGroup := api.Group("/cash")
		{
			cashGroup.POST("", cashHandler.RecordTransaction)
			cashGroup.GET("", cashHandler.ListTransactions)
			cashGroup.GET("/balance", cashHandler.GetBalance)
			cashGroup.DELETE("", cashHandler.DeleteTransaction)
		}

		salariesGroup := api.Group("/salaries")
		{
			salariesGroup.POST("", cashHandler.PaySalary)
			salariesGroup.GET("", cashHandler.ListSalaryPayments)
		}

		reportsGroup := api.Group("/reports")
		{
			reportsGroup.GET("/profit", reportsHandler.GetProfit)
			reportsGroup.GET("/balance", reportsHandler.GetBalance)
			reportsGroup.GET("/notifications", reportsHandler.GetNotifications)
			reportsGroup.GET("/dashboard", reportsHandler.GetDashboard)
		}

		alertsGroup := api.Group("/alerts")
		{
			alertsGroup.POST("/dismiss", reportsHandler.DismissAlert)
		}
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"message":   "Server is running",
			"timestamp": time.Now(),
		})
	})

	port := ":" + cfg.Server.Port
	log.Printf("Starting server on port %s", port)
	if err := r.Run(port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

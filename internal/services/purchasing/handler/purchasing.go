package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"

	cataloghandler "shopledger-system/internal/services/catalog/handler"
	reportshandler "shopledger-system/internal/services/reports/handler"

	"shopledger-system/internal/models"
	"shopledger-system/internal/store"
)

type RestockRequest struct {
	ProductName     string
	RefNumber       string
	Description     string
	Price           string
	SellingPrice    string
	MinSellingPrice string
	Quantity        int
	User            string
}

type OrderFilter struct {
	User       string
	DatePrefix string
}

// --- Handler ---

type PurchasingHandler struct {
	items  *store.Collection[models.Item]
	orders *store.Collection[models.PurchaseOrder]
	redis  *redis.Client

	Clock func() time.Time
}

func NewPurchasingHandler(items *store.Collection[models.Item], orders *store.Collection[models.PurchaseOrder], redisClient *redis.Client) *PurchasingHandler {
	return &PurchasingHandler{
		items:  items,
		orders: orders,
		redis:  redisClient,
		Clock:  time.Now,
	}
}

func (s *PurchasingHandler) InvalidatePurchasingCaches(ctx context.Context) {
	if s.redis == nil {
		return
	}
	_ = s.redis.Del(ctx, reportshandler.DashboardCacheKey)
}

type RestockEvent struct {
	EventType   string    `json:"event_type"`
	OrderNumber string    `json:"order_number"`
	ProductName string    `json:"product_name"`
	Quantity    int       `json:"quantity"`
	User        string    `json:"user"`
	Timestamp   time.Time `json:"timestamp"`
}

func (s *PurchasingHandler) publishRestockEvent(ctx context.Context, event RestockEvent) error {
	if s.redis == nil {
		return nil
	}
	eventJSON, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	channel := fmt.Sprintf("shop:events:%s", event.EventType)
	if err := s.redis.Publish(ctx, channel, eventJSON).Err(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

// --- Restock ---

// Restock records one purchase event: it assigns a barcode (validating a
// manual reference number or generating a fresh one), upserts the catalog
// item, and appends the purchase order. Barcode resolution completes before
// any mutation, and catalog and ledger commit together.
func (s *PurchasingHandler) Restock(ctx context.Context, req RestockRequest) (*models.PurchaseOrder, error) {
	req.ProductName = strings.TrimSpace(req.ProductName)
	req.RefNumber = strings.TrimSpace(req.RefNumber)

	if req.ProductName == "" {
		return nil, &models.ValidationError{Field: "product_name", Reason: "must not be empty"}
	}
	if req.Quantity < 1 {
		return nil, &models.ValidationError{Field: "quantity", Reason: "must be at least 1"}
	}
	price, err := models.ParseMoney("price", req.Price)
	if err != nil {
		return nil, err
	}
	if _, err := models.ParseMoney("selling_price", req.SellingPrice); err != nil {
		return nil, err
	}
	if _, err := models.ParseMoney("min_selling_price", req.MinSellingPrice); err != nil {
		return nil, err
	}
	user := req.User
	if user == "" {
		user = models.SharedOwner
	}

	var order models.PurchaseOrder

	err = store.Transact(s.items, s.orders, func(items []models.Item, orders []models.PurchaseOrder) ([]models.Item, []models.PurchaseOrder, error) {
		barcode := req.RefNumber
		if barcode != "" {
			if err := cataloghandler.ValidateManualBarcode(barcode, items); err != nil {
				return nil, nil, err
			}
		} else {
			barcode = cataloghandler.GenerateBarcode(items)
		}

		now := s.Clock()
		items, _ = cataloghandler.UpsertItem(items, cataloghandler.UpsertFields{
			ProductName:     req.ProductName,
			Barcode:         barcode,
			Description:     req.Description,
			Owner:           user,
			PurchasePrice:   models.Money(price),
			SellingPrice:    req.SellingPrice,
			MinSellingPrice: req.MinSellingPrice,
			Quantity:        req.Quantity,
		}, now)

		order = models.PurchaseOrder{
			OrderNumber:     barcode,
			ProductName:     req.ProductName,
			RefNumber:       req.RefNumber,
			Description:     req.Description,
			Price:           models.Money(price),
			SellingPrice:    req.SellingPrice,
			MinSellingPrice: req.MinSellingPrice,
			Quantity:        req.Quantity,
			TotalPrice:      models.Money(price.Mul(decimal.NewFromInt(int64(req.Quantity)))),
			Date:            now,
			User:            user,
		}

		return items, append(orders, order), nil
	})
	if err != nil {
		return nil, err
	}

	s.InvalidatePurchasingCaches(ctx)
	_ = s.publishRestockEvent(ctx, RestockEvent{
		EventType:   "restock",
		OrderNumber: order.OrderNumber,
		ProductName: order.ProductName,
		Quantity:    order.Quantity,
		User:        order.User,
		Timestamp:   order.Date,
	})

	return &order, nil
}

// --- Purchase orders ---

func (s *PurchasingHandler) GetOrder(orderNumber string) (*models.PurchaseOrder, error) {
	for _, order := range s.orders.Snapshot() {
		if order.OrderNumber == orderNumber {
			return &order, nil
		}
	}
	return nil, &models.NotFoundError{Kind: "purchase order", Key: orderNumber}
}

func (s *PurchasingHandler) ListOrders(filter OrderFilter) []models.PurchaseOrder {
	orders := s.orders.Snapshot()
	result := make([]models.PurchaseOrder, 0, len(orders))
	for _, order := range orders {
		if filter.User != "" && order.User != filter.User {
			continue
		}
		if filter.DatePrefix != "" && !strings.HasPrefix(order.Date.Format(time.RFC3339), filter.DatePrefix) {
			continue
		}
		result = append(result, order)
	}
	return result
}

type UpdateOrderFields struct {
	ProductName     *string
	Description     *string
	Price           *string
	SellingPrice    *string
	MinSellingPrice *string
	Quantity        *int
}

// EditOrder updates a recorded purchase order and recomputes its total from
// price and quantity. Ledger correction only; the catalog is not replayed.
func (s *PurchasingHandler) EditOrder(ctx context.Context, orderNumber string, fields UpdateOrderFields) (*models.PurchaseOrder, error) {
	var updated models.PurchaseOrder

	err := s.orders.Update(func(orders []models.PurchaseOrder) ([]models.PurchaseOrder, error) {
		for i := range orders {
			if orders[i].OrderNumber != orderNumber {
				continue
			}
			order := orders[i]

			if fields.ProductName != nil {
				order.ProductName = strings.TrimSpace(*fields.ProductName)
				if order.ProductName == "" {
					return nil, &models.ValidationError{Field: "product_name", Reason: "must not be empty"}
				}
			}
			if fields.Description != nil {
				order.Description = *fields.Description
			}
			if fields.Price != nil {
				order.Price = *fields.Price
			}
			if fields.SellingPrice != nil {
				order.SellingPrice = *fields.SellingPrice
			}
			if fields.MinSellingPrice != nil {
				order.MinSellingPrice = *fields.MinSellingPrice
			}
			if fields.Quantity != nil {
				if *fields.Quantity < 1 {
					return nil, &models.ValidationError{Field: "quantity", Reason: "must be at least 1"}
				}
				order.Quantity = *fields.Quantity
			}

			price, err := models.ParseMoney("price", order.Price)
			if err != nil {
				return nil, err
			}
			if _, err := models.ParseMoney("selling_price", order.SellingPrice); err != nil {
				return nil, err
			}
			order.TotalPrice = models.Money(price.Mul(decimal.NewFromInt(int64(order.Quantity))))

			orders[i] = order
			updated = order
			return orders, nil
		}
		return nil, &models.NotFoundError{Kind: "purchase order", Key: orderNumber}
	})
	if err != nil {
		return nil, err
	}

	s.InvalidatePurchasingCaches(ctx)
	return &updated, nil
}

func (s *PurchasingHandler) DeleteOrder(ctx context.Context, orderNumber string) error {
	err := s.orders.Update(func(orders []models.PurchaseOrder) ([]models.PurchaseOrder, error) {
		for i := range orders {
			if orders[i].OrderNumber == orderNumber {
				return append(orders[:i], orders[i+1:]...), nil
			}
		}
		return nil, &models.NotFoundError{Kind: "purchase order", Key: orderNumber}
	})
	if err != nil {
		return err
	}
	s.InvalidatePurchasingCaches(ctx)
	return nil
}

package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	cataloghandler "shopledger-system/internal/services/catalog/handler"
	reportshandler "shopledger-system/internal/services/reports/handler"

	"shopledger-system/internal/models"
	"shopledger-system/internal/store"
)

const DefaultLowStockThreshold = 5

// SellLine is one requested line of a sale. Price is only honored when
// Discount is set; otherwise the item's selling price applies.
type SellLine struct {
	Barcode  string
	Quantity int
	Price    string
	Discount bool
}

type SaleFilter struct {
	User  string
	Since *time.Time
	Until *time.Time
}

// --- Handler ---

type POSHandler struct {
	items *store.Collection[models.Item]
	sales *store.Collection[models.SaleOrder]
	redis *redis.Client

	LowStockThreshold int
	Clock             func() time.Time
}

func NewPOSHandler(items *store.Collection[models.Item], sales *store.Collection[models.SaleOrder], redisClient *redis.Client) *POSHandler {
	return &POSHandler{
		items:             items,
		sales:             sales,
		redis:             redisClient,
		LowStockThreshold: DefaultLowStockThreshold,
		Clock:             time.Now,
	}
}

func (s *POSHandler) InvalidatePOSCaches(ctx context.Context) {
	if s.redis == nil {
		return
	}
	_ = s.redis.Del(ctx, reportshandler.DashboardCacheKey)
}

type SaleEvent struct {
	EventType string            `json:"event_type"`
	OrderID   string            `json:"order_id"`
	User      string            `json:"user"`
	Total     string            `json:"total"`
	Timestamp time.Time         `json:"timestamp"`
	Order     *models.SaleOrder `json:"order,omitempty"`
	LowStock  []LowStockItem    `json:"low_stock,omitempty"`
}

type LowStockItem struct {
	Barcode     string `json:"barcode"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
}

func (s *POSHandler) publishSaleEvent(ctx context.Context, event SaleEvent) error {
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

// --- Sell ---

// Sell performs a multi-line sale as a single unit: every line is validated
// against the stock snapshot taken at the start of the call, and only when
// all lines pass are the decrements applied and the composite order appended.
// A failure on any line leaves both collections untouched.
func (s *POSHandler) Sell(ctx context.Context, lines []SellLine, seller string) (*models.SaleOrder, []LowStockItem, error) {
	if len(lines) == 0 {
		return nil, nil, &models.ValidationError{Field: "items", Reason: "sale must have at least one line"}
	}
	if seller == "" {
		return nil, nil, &models.ValidationError{Field: "user", Reason: "seller required"}
	}

	var (
		order    models.SaleOrder
		lowStock []LowStockItem
	)

	err := store.Transact(s.items, s.sales, func(items []models.Item, sales []models.SaleOrder) ([]models.Item, []models.SaleOrder, error) {
		lowStock = lowStock[:0]

		// Phase 1: validate every line and price it. Stock is decremented on
		// the working copy as lines resolve, so a barcode repeated across
		// lines is checked against what the earlier lines left over. A
		// failure discards the copy, leaving both collections untouched.
		type resolved struct {
			idx  int
			line models.SaleLine
		}
		resolvedLines := make([]resolved, 0, len(lines))
		totalOrderPrice := decimal.Zero

		for _, req := range lines {
			if req.Barcode == "" {
				return nil, nil, &models.ValidationError{Field: "barcode", Reason: "must not be empty"}
			}
			idx := cataloghandler.FindByBarcode(items, req.Barcode)
			if idx < 0 {
				return nil, nil, &models.NotFoundError{Kind: "item", Key: req.Barcode}
			}
			item := items[idx]

			if req.Quantity < 1 {
				return nil, nil, &models.ValidationError{Field: "quantity", Reason: "must be at least 1"}
			}
			if req.Quantity > item.Quantity {
				return nil, nil, &models.InsufficientStockError{
					Barcode:   item.Barcode,
					Requested: req.Quantity,
					Available: item.Quantity,
				}
			}
			items[idx].Quantity -= req.Quantity

			salePrice, err := resolveSalePrice(req, item)
			if err != nil {
				return nil, nil, err
			}

			lineTotal := salePrice.Mul(decimal.NewFromInt(int64(req.Quantity)))
			totalOrderPrice = totalOrderPrice.Add(lineTotal)

			resolvedLines = append(resolvedLines, resolved{
				idx: idx,
				line: models.SaleLine{
					Barcode:       item.Barcode,
					ProductName:   item.ProductName,
					Quantity:      req.Quantity,
					SalePrice:     models.Money(salePrice),
					TotalPrice:    models.Money(lineTotal),
					PurchasePrice: item.PurchasePrice,
				},
			})
		}

		// Phase 2: assemble the composite order and collect the low-stock
		// signal, one entry per distinct item.
		now := s.Clock()
		order = models.SaleOrder{
			OrderID:         uuid.NewString(),
			User:            seller,
			Date:            now,
			Items:           make([]models.SaleLine, 0, len(resolvedLines)),
			TotalOrderPrice: models.Money(totalOrderPrice),
		}
		seen := make(map[int]bool, len(resolvedLines))
		for _, r := range resolvedLines {
			order.Items = append(order.Items, r.line)
			if seen[r.idx] {
				continue
			}
			seen[r.idx] = true
			if items[r.idx].Quantity <= s.LowStockThreshold {
				lowStock = append(lowStock, LowStockItem{
					Barcode:     items[r.idx].Barcode,
					ProductName: items[r.idx].ProductName,
					Quantity:    items[r.idx].Quantity,
				})
			}
		}

		return items, append(sales, order), nil
	})
	if err != nil {
		return nil, nil, err
	}

	s.InvalidatePOSCaches(ctx)
	_ = s.publishSaleEvent(ctx, SaleEvent{
		EventType: "sale-created",
		OrderID:   order.OrderID,
		User:      order.User,
		Total:     order.TotalOrderPrice,
		Timestamp: order.Date,
		Order:     &order,
	})
	if len(lowStock) > 0 {
		_ = s.publishSaleEvent(ctx, SaleEvent{
			EventType: "low-stock",
			OrderID:   order.OrderID,
			User:      order.User,
			Timestamp: order.Date,
			LowStock:  lowStock,
		})
	}

	return &order, lowStock, nil
}

// resolveSalePrice applies the discount override when requested, otherwise
// the catalog selling price. Either way the price must be positive.
func resolveSalePrice(req SellLine, item models.Item) (decimal.Decimal, error) {
	if req.Discount {
		price, err := decimal.NewFromString(req.Price)
		if err != nil || !price.IsPositive() {
			return decimal.Zero, &models.ValidationError{Field: "price", Reason: "discount price must be a positive amount"}
		}
		return price, nil
	}
	price, err := decimal.NewFromString(item.SellingPrice)
	if err != nil || !price.IsPositive() {
		return decimal.Zero, &models.ValidationError{
			Field:  "selling_price",
			Reason: fmt.Sprintf("item %s has no valid selling price", item.Barcode),
		}
	}
	return price, nil
}

// --- Sale orders ---

func (s *POSHandler) GetOrder(orderID string) (*models.SaleOrder, error) {
	for _, order := range s.sales.Snapshot() {
		if order.OrderID == orderID {
			return &order, nil
		}
	}
	return nil, &models.NotFoundError{Kind: "sale order", Key: orderID}
}

func (s *POSHandler) ListOrders(filter SaleFilter) []models.SaleOrder {
	orders := s.sales.Snapshot()
	result := make([]models.SaleOrder, 0, len(orders))
	for _, order := range orders {
		if filter.User != "" && order.User != filter.User {
			continue
		}
		if filter.Since != nil && order.Date.Before(*filter.Since) {
			continue
		}
		if filter.Until != nil && order.Date.After(*filter.Until) {
			continue
		}
		result = append(result, order)
	}
	return result
}

// EditLine updates quantity and sale price of one line in a recorded sale
// order and recomputes the line and order totals. It adjusts the ledger only;
// stock corrections go through the catalog.
func (s *POSHandler) EditLine(ctx context.Context, orderID, barcode string, quantity int, salePrice string) (*models.SaleOrder, error) {
	if quantity < 1 {
		return nil, &models.ValidationError{Field: "quantity", Reason: "must be at least 1"}
	}
	price, err := decimal.NewFromString(salePrice)
	if err != nil || !price.IsPositive() {
		return nil, &models.ValidationError{Field: "sale_price", Reason: "must be a positive amount"}
	}

	var updated models.SaleOrder
	err = s.sales.Update(func(sales []models.SaleOrder) ([]models.SaleOrder, error) {
		for i := range sales {
			if sales[i].OrderID != orderID {
				continue
			}
			order := sales[i]
			order.Items = append([]models.SaleLine(nil), order.Items...)

			lineIdx := -1
			for j := range order.Items {
				if order.Items[j].Barcode == barcode {
					lineIdx = j
					break
				}
			}
			if lineIdx < 0 {
				return nil, &models.NotFoundError{Kind: "sale line", Key: barcode}
			}

			order.Items[lineIdx].Quantity = quantity
			order.Items[lineIdx].SalePrice = models.Money(price)
			order.Items[lineIdx].TotalPrice = models.Money(price.Mul(decimal.NewFromInt(int64(quantity))))

			total := decimal.Zero
			for _, line := range order.Items {
				lineTotal, err := decimal.NewFromString(line.TotalPrice)
				if err != nil {
					return nil, &models.ValidationError{Field: "total_price", Reason: "stored line total is not a decimal amount"}
				}
				total = total.Add(lineTotal)
			}
			order.TotalOrderPrice = models.Money(total)

			sales[i] = order
			updated = order
			return sales, nil
		}
		return nil, &models.NotFoundError{Kind: "sale order", Key: orderID}
	})
	if err != nil {
		return nil, err
	}

	s.InvalidatePOSCaches(ctx)
	return &updated, nil
}

func (s *POSHandler) DeleteOrder(ctx context.Context, orderID string) error {
	err := s.sales.Update(func(sales []models.SaleOrder) ([]models.SaleOrder, error) {
		for i := range sales {
			if sales[i].OrderID == orderID {
				return append(sales[:i], sales[i+1:]...), nil
			}
		}
		return nil, &models.NotFoundError{Kind: "sale order", Key: orderID}
	})
	if err != nil {
		return err
	}
	s.InvalidatePOSCaches(ctx)
	return nil
}

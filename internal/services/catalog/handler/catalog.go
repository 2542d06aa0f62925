package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"

	reportshandler "shopledger-system/internal/services/reports/handler"

	"shopledger-system/internal/models"
	"shopledger-system/internal/store"
)

// --- Helpers ---

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// FindByBarcode returns the index of the item with the given barcode, or -1.
func FindByBarcode(items []models.Item, barcode string) int {
	for i := range items {
		if items[i].Barcode == barcode {
			return i
		}
	}
	return -1
}

// FindByName matches case-insensitively on the product name, or -1.
func FindByName(items []models.Item, name string) int {
	for i := range items {
		if strings.EqualFold(items[i].ProductName, name) {
			return i
		}
	}
	return -1
}

// --- Handler ---

type CatalogHandler struct {
	items *store.Collection[models.Item]
	redis *redis.Client

	Clock func() time.Time
}

func NewCatalogHandler(items *store.Collection[models.Item], redisClient *redis.Client) *CatalogHandler {
	return &CatalogHandler{
		items: items,
		redis: redisClient,
		Clock: time.Now,
	}
}

func (s *CatalogHandler) InvalidateCatalogCaches(ctx context.Context) {
	if s.redis == nil {
		return
	}
	_ = s.redis.Del(ctx, reportshandler.DashboardCacheKey)
}

type ItemEvent struct {
	EventType string      `json:"event_type"`
	Barcode   string      `json:"barcode"`
	Timestamp time.Time   `json:"timestamp"`
	Item      models.Item `json:"item"`
}

func (s *CatalogHandler) publishItemEvent(ctx context.Context, event ItemEvent) error {
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

// --- Item Catalog ---

func (s *CatalogHandler) Get(barcode string) (*models.Item, error) {
	items := s.items.Snapshot()
	idx := FindByBarcode(items, barcode)
	if idx < 0 {
		return nil, &models.NotFoundError{Kind: "item", Key: barcode}
	}
	item := items[idx]
	return &item, nil
}

// List returns all items, or only the shared pool plus the given seller's
// own items when owner is set.
func (s *CatalogHandler) List(owner string) []models.Item {
	items := s.items.Snapshot()
	if owner == "" {
		return items
	}
	filtered := make([]models.Item, 0, len(items))
	for _, item := range items {
		if item.Owner == models.SharedOwner || item.Owner == owner {
			filtered = append(filtered, item)
		}
	}
	return filtered
}

// Add creates a new catalog record with an admin-supplied barcode.
func (s *CatalogHandler) Add(ctx context.Context, item models.Item) (*models.Item, error) {
	item.Normalize()
	if item.AddedDate.IsZero() {
		item.AddedDate = s.Clock()
	}
	if err := item.Validate(); err != nil {
		return nil, err
	}

	err := s.items.Update(func(items []models.Item) ([]models.Item, error) {
		if FindByBarcode(items, item.Barcode) >= 0 {
			return nil, &models.DuplicateBarcodeError{Barcode: item.Barcode}
		}
		return append(items, item), nil
	})
	if err != nil {
		return nil, err
	}

	s.InvalidateCatalogCaches(ctx)
	_ = s.publishItemEvent(ctx, ItemEvent{
		EventType: "item-added",
		Barcode:   item.Barcode,
		Timestamp: s.Clock(),
		Item:      item,
	})
	return &item, nil
}

type UpdateItemFields struct {
	Barcode         *string
	ProductName     *string
	Description     *string
	PurchasePrice   *string
	SellingPrice    *string
	MinSellingPrice *string
	Quantity        *int
}

func (s *CatalogHandler) Update(ctx context.Context, barcode string, fields UpdateItemFields) (*models.Item, error) {
	var updated models.Item

	err := s.items.Update(func(items []models.Item) ([]models.Item, error) {
		idx := FindByBarcode(items, barcode)
		if idx < 0 {
			return nil, &models.NotFoundError{Kind: "item", Key: barcode}
		}
		item := items[idx]

		if fields.Barcode != nil && *fields.Barcode != item.Barcode {
			if FindByBarcode(items, *fields.Barcode) >= 0 {
				return nil, &models.DuplicateBarcodeError{Barcode: *fields.Barcode}
			}
			item.Barcode = *fields.Barcode
		}
		if fields.ProductName != nil {
			item.ProductName = strings.TrimSpace(*fields.ProductName)
		}
		if fields.Description != nil {
			item.Description = *fields.Description
		}
		if fields.PurchasePrice != nil {
			item.PurchasePrice = *fields.PurchasePrice
		}
		if fields.SellingPrice != nil {
			item.SellingPrice = *fields.SellingPrice
		}
		if fields.MinSellingPrice != nil {
			item.MinSellingPrice = *fields.MinSellingPrice
		}
		if fields.Quantity != nil {
			item.Quantity = *fields.Quantity
		}

		if err := item.Validate(); err != nil {
			return nil, err
		}
		items[idx] = item
		updated = item
		return items, nil
	})
	if err != nil {
		return nil, err
	}

	s.InvalidateCatalogCaches(ctx)
	return &updated, nil
}

func (s *CatalogHandler) Delete(ctx context.Context, barcode string) error {
	err := s.items.Update(func(items []models.Item) ([]models.Item, error) {
		idx := FindByBarcode(items, barcode)
		if idx < 0 {
			return nil, &models.NotFoundError{Kind: "item", Key: barcode}
		}
		return append(items[:idx], items[idx+1:]...), nil
	})
	if err != nil {
		return err
	}
	s.InvalidateCatalogCaches(ctx)
	return nil
}

// AddQuantity increases an item's stock, located by barcode or by product
// name. A ref that is all digits is treated as a barcode first.
func (s *CatalogHandler) AddQuantity(ctx context.Context, ref string, qty int) (*models.Item, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, &models.ValidationError{Field: "ref", Reason: "product name or barcode required"}
	}
	if qty < 1 {
		return nil, &models.ValidationError{Field: "quantity", Reason: "must be at least 1"}
	}

	var updated models.Item
	err := s.items.Update(func(items []models.Item) ([]models.Item, error) {
		idx := FindByBarcode(items, ref)
		if idx < 0 {
			idx = FindByName(items, ref)
		}
		if idx < 0 {
			return nil, &models.NotFoundError{Kind: "item", Key: ref}
		}
		items[idx].Quantity += qty
		updated = items[idx]
		return items, nil
	})
	if err != nil {
		return nil, err
	}

	s.InvalidateCatalogCaches(ctx)
	return &updated, nil
}

// Decrement subtracts stock, failing before any change when qty exceeds the
// available quantity.
func (s *CatalogHandler) Decrement(ctx context.Context, barcode string, qty int) (*models.Item, error) {
	if qty < 1 {
		return nil, &models.ValidationError{Field: "quantity", Reason: "must be at least 1"}
	}

	var updated models.Item
	err := s.items.Update(func(items []models.Item) ([]models.Item, error) {
		idx := FindByBarcode(items, barcode)
		if idx < 0 {
			return nil, &models.NotFoundError{Kind: "item", Key: barcode}
		}
		if qty > items[idx].Quantity {
			return nil, &models.InsufficientStockError{
				Barcode:   barcode,
				Requested: qty,
				Available: items[idx].Quantity,
			}
		}
		items[idx].Quantity -= qty
		updated = items[idx]
		return items, nil
	})
	if err != nil {
		return nil, err
	}

	s.InvalidateCatalogCaches(ctx)
	return &updated, nil
}

// --- Upsert (restock path) ---

type UpsertFields struct {
	ProductName     string
	Barcode         string
	Description     string
	Owner           string
	PurchasePrice   string
	SellingPrice    string
	MinSellingPrice string
	Quantity        int
}

// UpsertItem locates an item by barcode, then by case-insensitive name; on a
// match it adds the quantity and overwrites prices and description, otherwise
// it creates a new record. It operates on the caller's working copy so
// restock can run it inside a catalog+ledger transaction.
func UpsertItem(items []models.Item, f UpsertFields, now time.Time) ([]models.Item, models.Item) {
	idx := -1
	if f.Barcode != "" {
		idx = FindByBarcode(items, f.Barcode)
	}
	if idx < 0 {
		idx = FindByName(items, f.ProductName)
	}

	if idx >= 0 {
		items[idx].Quantity += f.Quantity
		items[idx].PurchasePrice = f.PurchasePrice
		items[idx].SellingPrice = f.SellingPrice
		items[idx].MinSellingPrice = f.MinSellingPrice
		items[idx].Description = f.Description
		return items, items[idx]
	}

	item := models.Item{
		Barcode:         f.Barcode,
		ProductName:     f.ProductName,
		Description:     f.Description,
		PurchasePrice:   f.PurchasePrice,
		SellingPrice:    f.SellingPrice,
		MinSellingPrice: f.MinSellingPrice,
		Quantity:        f.Quantity,
		Owner:           f.Owner,
		AddedDate:       now,
	}
	item.Normalize()
	return append(items, item), item
}

// UpsertByNameOrBarcode applies UpsertItem directly against the catalog for
// callers outside the restock transaction.
func (s *CatalogHandler) UpsertByNameOrBarcode(ctx context.Context, f UpsertFields) (*models.Item, error) {
	var result models.Item
	err := s.items.Update(func(items []models.Item) ([]models.Item, error) {
		var next []models.Item
		next, result = UpsertItem(items, f, s.Clock())
		if err := result.Validate(); err != nil {
			return nil, err
		}
		return next, nil
	})
	if err != nil {
		return nil, err
	}
	s.InvalidateCatalogCaches(ctx)
	return &result, nil
}

package handler

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopledger-system/internal/models"
	"shopledger-system/internal/store"
)

func newTestCatalog(t *testing.T) *CatalogHandler {
	t.Helper()
	items, err := store.Open[models.Item](filepath.Join(t.TempDir(), "items.json"))
	require.NoError(t, err)
	h := NewCatalogHandler(items, nil)
	h.Clock = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }
	return h
}

func testItem(barcode, name string, qty int) models.Item {
	return models.Item{
		Barcode:         barcode,
		ProductName:     name,
		PurchasePrice:   "3.00",
		SellingPrice:    "5.00",
		MinSellingPrice: "4.00",
		Quantity:        qty,
	}
}

func TestAddAndGet(t *testing.T) {
	h := newTestCatalog(t)
	ctx := context.Background()

	added, err := h.Add(ctx, testItem("123456789012", "Cola", 10))
	require.NoError(t, err)
	assert.Equal(t, models.SharedOwner, added.Owner)
	assert.False(t, added.AddedDate.IsZero())

	got, err := h.Get("123456789012")
	require.NoError(t, err)
	assert.Equal(t, "Cola", got.ProductName)
	assert.Equal(t, 10, got.Quantity)
}

func TestAddDuplicateBarcodeRejected(t *testing.T) {
	h := newTestCatalog(t)
	ctx := context.Background()

	_, err := h.Add(ctx, testItem("123456789012", "Cola", 10))
	require.NoError(t, err)

	_, err = h.Add(ctx, testItem("123456789012", "Fanta", 5))
	var dup *models.DuplicateBarcodeError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "123456789012", dup.Barcode)

	// The first record is untouched.
	got, err := h.Get("123456789012")
	require.NoError(t, err)
	assert.Equal(t, "Cola", got.ProductName)
}

func TestGetUnknownBarcode(t *testing.T) {
	h := newTestCatalog(t)

	_, err := h.Get("000000000000")
	require.ErrorIs(t, err, models.ErrNotFound)
}

func TestListFiltersByOwner(t *testing.T) {
	h := newTestCatalog(t)
	ctx := context.Background()

	shared := testItem("111111111111", "Shared", 1)
	owned := testItem("222222222222", "Mine", 1)
	owned.Owner = "alice"
	foreign := testItem("333333333333", "Theirs", 1)
	foreign.Owner = "bob"

	for _, item := range []models.Item{shared, owned, foreign} {
		_, err := h.Add(ctx, item)
		require.NoError(t, err)
	}

	assert.Len(t, h.List(""), 3)

	visible := h.List("alice")
	require.Len(t, visible, 2)
	assert.Equal(t, "Shared", visible[0].ProductName)
	assert.Equal(t, "Mine", visible[1].ProductName)
}

func TestUpdateFields(t *testing.T) {
	h := newTestCatalog(t)
	ctx := context.Background()

	_, err := h.Add(ctx, testItem("123456789012", "Cola", 10))
	require.NoError(t, err)

	updated, err := h.Update(ctx, "123456789012", UpdateItemFields{
		ProductName:  strPtr("Cola Zero"),
		SellingPrice: strPtr("6.50"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Cola Zero", updated.ProductName)
	assert.Equal(t, "6.50", updated.SellingPrice)
	assert.Equal(t, 10, updated.Quantity)
}

func TestUpdateRejectsBarcodeCollision(t *testing.T) {
	h := newTestCatalog(t)
	ctx := context.Background()

	_, err := h.Add(ctx, testItem("111111111111", "Cola", 10))
	require.NoError(t, err)
	_, err = h.Add(ctx, testItem("222222222222", "Fanta", 5))
	require.NoError(t, err)

	_, err = h.Update(ctx, "222222222222", UpdateItemFields{Barcode: strPtr("111111111111")})
	var dup *models.DuplicateBarcodeError
	require.ErrorAs(t, err, &dup)
}

func TestDelete(t *testing.T) {
	h := newTestCatalog(t)
	ctx := context.Background()

	_, err := h.Add(ctx, testItem("123456789012", "Cola", 10))
	require.NoError(t, err)

	require.NoError(t, h.Delete(ctx, "123456789012"))
	_, err = h.Get("123456789012")
	require.ErrorIs(t, err, models.ErrNotFound)

	err = h.Delete(ctx, "123456789012")
	require.ErrorIs(t, err, models.ErrNotFound)
}

func TestAddQuantityByBarcodeAndName(t *testing.T) {
	h := newTestCatalog(t)
	ctx := context.Background()

	_, err := h.Add(ctx, testItem("123456789012", "Cola", 10))
	require.NoError(t, err)

	updated, err := h.AddQuantity(ctx, "123456789012", 5)
	require.NoError(t, err)
	assert.Equal(t, 15, updated.Quantity)

	updated, err = h.AddQuantity(ctx, "cola", 5)
	require.NoError(t, err)
	assert.Equal(t, 20, updated.Quantity)

	_, err = h.AddQuantity(ctx, "Unknown", 5)
	require.ErrorIs(t, err, models.ErrNotFound)

	_, err = h.AddQuantity(ctx, "Cola", 0)
	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestDecrementInsufficientStock(t *testing.T) {
	h := newTestCatalog(t)
	ctx := context.Background()

	_, err := h.Add(ctx, testItem("123456789012", "Cola", 3))
	require.NoError(t, err)

	_, err = h.Decrement(ctx, "123456789012", 5)
	var stockErr *models.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 5, stockErr.Requested)
	assert.Equal(t, 3, stockErr.Available)

	// Stock unchanged after the refused decrement.
	got, err := h.Get("123456789012")
	require.NoError(t, err)
	assert.Equal(t, 3, got.Quantity)

	updated, err := h.Decrement(ctx, "123456789012", 3)
	require.NoError(t, err)
	assert.Equal(t, 0, updated.Quantity)
}

func TestUpsertItemMatchesByBarcodeThenName(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	items := []models.Item{testItem("111111111111", "Cola", 50)}

	// Name match, case-insensitive, accumulates quantity and overwrites prices.
	items, result := UpsertItem(items, UpsertFields{
		ProductName:     "COLA",
		Barcode:         "999999999999",
		PurchasePrice:   "2.50",
		SellingPrice:    "4.50",
		MinSellingPrice: "3.50",
		Quantity:        10,
	}, now)
	require.Len(t, items, 1)
	assert.Equal(t, 60, result.Quantity)
	assert.Equal(t, "2.50", result.PurchasePrice)
	assert.Equal(t, "111111111111", result.Barcode)

	// No match creates a new record.
	items, result = UpsertItem(items, UpsertFields{
		ProductName:     "Fanta",
		Barcode:         "222222222222",
		PurchasePrice:   "1.00",
		SellingPrice:    "2.00",
		MinSellingPrice: "1.50",
		Quantity:        5,
	}, now)
	require.Len(t, items, 2)
	assert.Equal(t, "Fanta", result.ProductName)
	assert.Equal(t, now, result.AddedDate)
	assert.Equal(t, models.SharedOwner, result.Owner)
}

func TestStateSurvivesReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "items.json")

	items, err := store.Open[models.Item](path)
	require.NoError(t, err)
	h := NewCatalogHandler(items, nil)

	_, err = h.Add(context.Background(), testItem("123456789012", "Cola", 10))
	require.NoError(t, err)

	reloaded, err := store.Open[models.Item](path)
	require.NoError(t, err)
	h2 := NewCatalogHandler(reloaded, nil)

	got, err := h2.Get("123456789012")
	require.NoError(t, err)
	assert.Equal(t, "Cola", got.ProductName)
}

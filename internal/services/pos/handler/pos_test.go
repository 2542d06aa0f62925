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

func newTestPOS(t *testing.T, seed ...models.Item) (*POSHandler, *store.Collection[models.Item]) {
	t.Helper()
	dir := t.TempDir()
	items, err := store.Open[models.Item](filepath.Join(dir, "items.json"))
	require.NoError(t, err)
	for _, item := range seed {
		require.NoError(t, items.Append(item))
	}
	sales, err := store.Open[models.SaleOrder](filepath.Join(dir, "sales.json"))
	require.NoError(t, err)

	h := NewPOSHandler(items, sales, nil)
	h.Clock = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }
	return h, items
}

func stockedItem(barcode, name string, qty int, sellingPrice string) models.Item {
	return models.Item{
		Barcode:         barcode,
		ProductName:     name,
		PurchasePrice:   "3.00",
		SellingPrice:    sellingPrice,
		MinSellingPrice: "4.00",
		Quantity:        qty,
		Owner:           models.SharedOwner,
	}
}

func TestSellDecrementsStockAndRecordsOrder(t *testing.T) {
	h, items := newTestPOS(t, stockedItem("111111111111", "Cola", 10, "5.00"))
	ctx := context.Background()

	order, lowStock, err := h.Sell(ctx, []SellLine{{Barcode: "111111111111", Quantity: 3}}, "alice")
	require.NoError(t, err)
	require.Len(t, order.Items, 1)
	assert.NotEmpty(t, order.OrderID)
	assert.Equal(t, "alice", order.User)
	assert.Equal(t, "5.00", order.Items[0].SalePrice)
	assert.Equal(t, "15.00", order.Items[0].TotalPrice)
	assert.Equal(t, "15.00", order.TotalOrderPrice)
	assert.Equal(t, "3.00", order.Items[0].PurchasePrice)
	assert.Empty(t, lowStock)

	assert.Equal(t, 7, items.Snapshot()[0].Quantity)
}

func TestSellInsufficientStockLeavesEverythingUntouched(t *testing.T) {
	h, items := newTestPOS(t, stockedItem("111111111111", "Cola", 7, "5.00"))
	ctx := context.Background()

	_, _, err := h.Sell(ctx, []SellLine{{Barcode: "111111111111", Quantity: 20}}, "alice")
	var stockErr *models.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 20, stockErr.Requested)
	assert.Equal(t, 7, stockErr.Available)

	assert.Equal(t, 7, items.Snapshot()[0].Quantity)
	assert.Empty(t, h.ListOrders(SaleFilter{}))
}

func TestSellMultiLineAllOrNothing(t *testing.T) {
	h, items := newTestPOS(t,
		stockedItem("111111111111", "Cola", 10, "5.00"),
		stockedItem("222222222222", "Fanta", 2, "4.00"),
	)
	ctx := context.Background()

	// Second line fails, so the first line's decrement must not happen.
	_, _, err := h.Sell(ctx, []SellLine{
		{Barcode: "111111111111", Quantity: 3},
		{Barcode: "222222222222", Quantity: 5},
	}, "alice")
	var stockErr *models.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, "222222222222", stockErr.Barcode)

	snap := items.Snapshot()
	assert.Equal(t, 10, snap[0].Quantity)
	assert.Equal(t, 2, snap[1].Quantity)
	assert.Empty(t, h.ListOrders(SaleFilter{}))
}

func TestSellRepeatedBarcodeCountsAgainstCombinedStock(t *testing.T) {
	h, items := newTestPOS(t, stockedItem("111111111111", "Cola", 10, "5.00"))
	ctx := context.Background()

	// Two lines for the same barcode must be checked against the stock that
	// remains after the earlier line, not each against the full snapshot.
	_, _, err := h.Sell(ctx, []SellLine{
		{Barcode: "111111111111", Quantity: 6},
		{Barcode: "111111111111", Quantity: 6},
	}, "alice")
	var stockErr *models.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 6, stockErr.Requested)
	assert.Equal(t, 4, stockErr.Available)

	assert.Equal(t, 10, items.Snapshot()[0].Quantity)
	assert.Empty(t, h.ListOrders(SaleFilter{}))

	// Repeated lines that fit in stock commit as one order.
	order, lowStock, err := h.Sell(ctx, []SellLine{
		{Barcode: "111111111111", Quantity: 6},
		{Barcode: "111111111111", Quantity: 4},
	}, "alice")
	require.NoError(t, err)
	require.Len(t, order.Items, 2)
	assert.Equal(t, "50.00", order.TotalOrderPrice)
	assert.Equal(t, 0, items.Snapshot()[0].Quantity)

	// One low-stock entry for the item, not one per line.
	require.Len(t, lowStock, 1)
	assert.Equal(t, 0, lowStock[0].Quantity)
}

func TestSellMultiLineTotals(t *testing.T) {
	h, _ := newTestPOS(t,
		stockedItem("111111111111", "Cola", 10, "5.00"),
		stockedItem("222222222222", "Fanta", 10, "4.00"),
	)

	order, _, err := h.Sell(context.Background(), []SellLine{
		{Barcode: "111111111111", Quantity: 2},
		{Barcode: "222222222222", Quantity: 3},
	}, "alice")
	require.NoError(t, err)
	require.Len(t, order.Items, 2)
	assert.Equal(t, "10.00", order.Items[0].TotalPrice)
	assert.Equal(t, "12.00", order.Items[1].TotalPrice)
	assert.Equal(t, "22.00", order.TotalOrderPrice)
}

func TestSellDiscountPriceOverride(t *testing.T) {
	h, _ := newTestPOS(t, stockedItem("111111111111", "Cola", 10, "5.00"))
	ctx := context.Background()

	order, _, err := h.Sell(ctx, []SellLine{
		{Barcode: "111111111111", Quantity: 2, Price: "4.25", Discount: true},
	}, "alice")
	require.NoError(t, err)
	assert.Equal(t, "4.25", order.Items[0].SalePrice)
	assert.Equal(t, "8.50", order.TotalOrderPrice)

	// Discount flag without a usable price is refused.
	_, _, err = h.Sell(ctx, []SellLine{
		{Barcode: "111111111111", Quantity: 1, Discount: true},
	}, "alice")
	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestSellUnknownBarcode(t *testing.T) {
	h, _ := newTestPOS(t, stockedItem("111111111111", "Cola", 10, "5.00"))

	_, _, err := h.Sell(context.Background(), []SellLine{
		{Barcode: "000000000000", Quantity: 1},
	}, "alice")
	require.ErrorIs(t, err, models.ErrNotFound)
}

func TestSellValidation(t *testing.T) {
	h, _ := newTestPOS(t, stockedItem("111111111111", "Cola", 10, "5.00"))
	ctx := context.Background()

	var verr *models.ValidationError

	_, _, err := h.Sell(ctx, nil, "alice")
	require.ErrorAs(t, err, &verr)

	_, _, err = h.Sell(ctx, []SellLine{{Barcode: "111111111111", Quantity: 1}}, "")
	require.ErrorAs(t, err, &verr)

	_, _, err = h.Sell(ctx, []SellLine{{Barcode: "111111111111", Quantity: 0}}, "alice")
	require.ErrorAs(t, err, &verr)
}

func TestSellReportsLowStock(t *testing.T) {
	h, _ := newTestPOS(t, stockedItem("111111111111", "Cola", 8, "5.00"))

	order, lowStock, err := h.Sell(context.Background(), []SellLine{
		{Barcode: "111111111111", Quantity: 4},
	}, "alice")
	require.NoError(t, err)
	assert.NotNil(t, order)
	require.Len(t, lowStock, 1)
	assert.Equal(t, "111111111111", lowStock[0].Barcode)
	assert.Equal(t, 4, lowStock[0].Quantity)
}

func TestRestockedStockSellsAgain(t *testing.T) {
	h, items := newTestPOS(t, stockedItem("111111111111", "Cola", 1, "5.00"))
	ctx := context.Background()

	_, _, err := h.Sell(ctx, []SellLine{{Barcode: "111111111111", Quantity: 1}}, "alice")
	require.NoError(t, err)

	_, _, err = h.Sell(ctx, []SellLine{{Barcode: "111111111111", Quantity: 1}}, "alice")
	var stockErr *models.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)

	// Restock through the catalog collection, then the sale succeeds.
	require.NoError(t, items.Update(func(recs []models.Item) ([]models.Item, error) {
		recs[0].Quantity += 5
		return recs, nil
	}))

	_, _, err = h.Sell(ctx, []SellLine{{Barcode: "111111111111", Quantity: 1}}, "alice")
	require.NoError(t, err)
	assert.Equal(t, 4, items.Snapshot()[0].Quantity)
}

func TestListOrdersFilter(t *testing.T) {
	h, _ := newTestPOS(t, stockedItem("111111111111", "Cola", 20, "5.00"))
	ctx := context.Background()

	_, _, err := h.Sell(ctx, []SellLine{{Barcode: "111111111111", Quantity: 1}}, "alice")
	require.NoError(t, err)
	_, _, err = h.Sell(ctx, []SellLine{{Barcode: "111111111111", Quantity: 1}}, "bob")
	require.NoError(t, err)

	assert.Len(t, h.ListOrders(SaleFilter{}), 2)
	assert.Len(t, h.ListOrders(SaleFilter{User: "alice"}), 1)

	future := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.Empty(t, h.ListOrders(SaleFilter{Since: &future}))
}

func TestEditLineRecomputesTotals(t *testing.T) {
	h, _ := newTestPOS(t,
		stockedItem("111111111111", "Cola", 10, "5.00"),
		stockedItem("222222222222", "Fanta", 10, "4.00"),
	)
	ctx := context.Background()

	order, _, err := h.Sell(ctx, []SellLine{
		{Barcode: "111111111111", Quantity: 2},
		{Barcode: "222222222222", Quantity: 1},
	}, "alice")
	require.NoError(t, err)

	updated, err := h.EditLine(ctx, order.OrderID, "111111111111", 3, "6.00")
	require.NoError(t, err)
	assert.Equal(t, "18.00", updated.Items[0].TotalPrice)
	assert.Equal(t, "22.00", updated.TotalOrderPrice)

	_, err = h.EditLine(ctx, order.OrderID, "000000000000", 1, "1.00")
	require.ErrorIs(t, err, models.ErrNotFound)

	_, err = h.EditLine(ctx, "missing", "111111111111", 1, "1.00")
	require.ErrorIs(t, err, models.ErrNotFound)
}

func TestDeleteOrder(t *testing.T) {
	h, _ := newTestPOS(t, stockedItem("111111111111", "Cola", 10, "5.00"))
	ctx := context.Background()

	order, _, err := h.Sell(ctx, []SellLine{{Barcode: "111111111111", Quantity: 1}}, "alice")
	require.NoError(t, err)

	require.NoError(t, h.DeleteOrder(ctx, order.OrderID))
	_, err = h.GetOrder(order.OrderID)
	require.ErrorIs(t, err, models.ErrNotFound)

	err = h.DeleteOrder(ctx, order.OrderID)
	require.ErrorIs(t, err, models.ErrNotFound)
}

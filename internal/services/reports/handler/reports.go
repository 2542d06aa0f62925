package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"

	"shopledger-system/internal/models"
	"shopledger-system/internal/store"
)

const (
	DashboardCacheKey = "reports:dashboard"
	cacheTTLShort     = 5 * time.Minute

	DefaultLowStockThreshold = 5
	DefaultAgingDays         = 21
	dismissalRemindAfter     = 72 * time.Hour
)

// --- Windows ---

type Window int32

const (
	WindowAll Window = iota
	WindowDay
	WindowMonth
)

func ParseWindow(s string) (Window, error) {
	switch s {
	case "", "all":
		return WindowAll, nil
	case "day":
		return WindowDay, nil
	case "month":
		return WindowMonth, nil
	}
	return WindowAll, &models.ValidationError{Field: "window", Reason: "must be day, month or all"}
}

// Contains reports whether t falls inside the window anchored at now.
func (w Window) Contains(now, t time.Time) bool {
	switch w {
	case WindowDay:
		ny, nm, nd := now.Date()
		ty, tm, td := t.Date()
		return ny == ty && nm == tm && nd == td
	case WindowMonth:
		return now.Year() == t.Year() && now.Month() == t.Month()
	default:
		return true
	}
}

// --- Handler ---

// ReportsHandler is read-only over the ledgers: every figure is a pure fold
// over point-in-time snapshots, so it never takes part in the write locking.
type ReportsHandler struct {
	items      *store.Collection[models.Item]
	sales      *store.Collection[models.SaleOrder]
	orders     *store.Collection[models.PurchaseOrder]
	cash       *store.Collection[models.CashTransaction]
	dismissals *store.Collection[models.AlertDismissal]
	redis      *redis.Client

	LowStockThreshold int
	AgingDays         int
	Clock             func() time.Time
}

func NewReportsHandler(
	items *store.Collection[models.Item],
	sales *store.Collection[models.SaleOrder],
	orders *store.Collection[models.PurchaseOrder],
	cash *store.Collection[models.CashTransaction],
	dismissals *store.Collection[models.AlertDismissal],
	redisClient *redis.Client,
) *ReportsHandler {
	return &ReportsHandler{
		items:             items,
		sales:             sales,
		orders:            orders,
		cash:              cash,
		dismissals:        dismissals,
		redis:             redisClient,
		LowStockThreshold: DefaultLowStockThreshold,
		AgingDays:         DefaultAgingDays,
		Clock:             time.Now,
	}
}

// --- Aggregation ---

// badRecord reports a stored money field that no longer parses. Every writer
// goes through models.Money, so this only happens to hand-edited ledger files;
// the fold refuses to return a figure built on it.
func (s *ReportsHandler) badRecord(path, detail string) error {
	return &models.PersistenceError{
		Op:   "decode",
		Path: path,
		Err:  fmt.Errorf("%s", detail),
	}
}

// Profit sums (sale price − purchase price at sale) × quantity over every
// sale line whose order date falls in the window.
func (s *ReportsHandler) Profit(window Window, user string) (decimal.Decimal, error) {
	now := s.Clock()
	profit := decimal.Zero
	for _, order := range s.sales.Snapshot() {
		if user != "" && order.User != user {
			continue
		}
		if !window.Contains(now, order.Date) {
			continue
		}
		for _, line := range order.Items {
			salePrice, err := decimal.NewFromString(line.SalePrice)
			if err != nil {
				return decimal.Zero, s.badRecord(s.sales.Path(), fmt.Sprintf("sale order %s: bad sale_price %q", order.OrderID, line.SalePrice))
			}
			purchasePrice, err := decimal.NewFromString(line.PurchasePrice)
			if err != nil {
				return decimal.Zero, s.badRecord(s.sales.Path(), fmt.Sprintf("sale order %s: bad purchase_price %q", order.OrderID, line.PurchasePrice))
			}
			qty := decimal.NewFromInt(int64(line.Quantity))
			profit = profit.Add(salePrice.Sub(purchasePrice).Mul(qty))
		}
	}
	return profit, nil
}

// SalesTotal sums line totals of sales in the window.
func (s *ReportsHandler) SalesTotal(window Window, user string) (decimal.Decimal, error) {
	now := s.Clock()
	total := decimal.Zero
	for _, order := range s.sales.Snapshot() {
		if user != "" && order.User != user {
			continue
		}
		if !window.Contains(now, order.Date) {
			continue
		}
		for _, line := range order.Items {
			lineTotal, err := decimal.NewFromString(line.TotalPrice)
			if err != nil {
				return decimal.Zero, s.badRecord(s.sales.Path(), fmt.Sprintf("sale order %s: bad total_price %q", order.OrderID, line.TotalPrice))
			}
			total = total.Add(lineTotal)
		}
	}
	return total, nil
}

// PurchasesTotal sums purchase order totals in the window.
func (s *ReportsHandler) PurchasesTotal(window Window, user string) (decimal.Decimal, error) {
	now := s.Clock()
	total := decimal.Zero
	for _, order := range s.orders.Snapshot() {
		if user != "" && order.User != user {
			continue
		}
		if !window.Contains(now, order.Date) {
			continue
		}
		orderTotal, err := decimal.NewFromString(order.TotalPrice)
		if err != nil {
			return decimal.Zero, s.badRecord(s.orders.Path(), fmt.Sprintf("purchase order %s: bad total_price %q", order.OrderNumber, order.TotalPrice))
		}
		total = total.Add(orderTotal)
	}
	return total, nil
}

// CashBalance is the running sum of the cash ledger, window-independent.
func (s *ReportsHandler) CashBalance() (decimal.Decimal, error) {
	balance := decimal.Zero
	for _, tx := range s.cash.Snapshot() {
		amount, err := decimal.NewFromString(tx.Amount)
		if err != nil {
			return decimal.Zero, s.badRecord(s.cash.Path(), fmt.Sprintf("transaction at %s: bad amount %q", tx.Date.Format(time.RFC3339), tx.Amount))
		}
		balance = balance.Add(amount)
	}
	return balance, nil
}

// Balance derives the total balance for a window:
// cash balance + sales total − purchases total.
func (s *ReportsHandler) Balance(window Window, user string) (decimal.Decimal, error) {
	cash, err := s.CashBalance()
	if err != nil {
		return decimal.Zero, err
	}
	sales, err := s.SalesTotal(window, user)
	if err != nil {
		return decimal.Zero, err
	}
	purchases, err := s.PurchasesTotal(window, user)
	if err != nil {
		return decimal.Zero, err
	}
	return cash.Add(sales).Sub(purchases), nil
}

// --- Notifications ---

type Notification struct {
	Date    time.Time `json:"date"`
	Message string    `json:"message"`
	Barcode string    `json:"barcode"`
}

// Notifications produces the mailbox list in one pass: low-stock entries
// first, then aging entries for items in stock longer than AgingDays.
// Barcodes with an active dismissal are suppressed.
func (s *ReportsHandler) Notifications(now time.Time) []Notification {
	dismissed := make(map[string]time.Time)
	for _, d := range s.dismissals.Snapshot() {
		dismissed[d.Barcode] = d.RemindDate
	}
	suppressed := func(barcode string) bool {
		remind, ok := dismissed[barcode]
		return ok && remind.After(now)
	}

	items := s.items.Snapshot()
	notifications := make([]Notification, 0)

	for _, item := range items {
		if suppressed(item.Barcode) {
			continue
		}
		if item.Quantity <= s.LowStockThreshold {
			notifications = append(notifications, Notification{
				Date:    now,
				Message: fmt.Sprintf("Low stock for %q: only %d left", item.ProductName, item.Quantity),
				Barcode: item.Barcode,
			})
		}
	}

	threshold := now.AddDate(0, 0, -s.AgingDays)
	for _, item := range items {
		if suppressed(item.Barcode) {
			continue
		}
		if !item.AddedDate.IsZero() && item.AddedDate.Before(threshold) {
			days := int(now.Sub(item.AddedDate).Hours() / 24)
			notifications = append(notifications, Notification{
				Date:    item.AddedDate,
				Message: fmt.Sprintf("%q has been in stock for %d days", item.ProductName, days),
				Barcode: item.Barcode,
			})
		}
	}

	return notifications
}

// DismissAlert suppresses a barcode's notifications until a remind date
// three days out; dismissing again pushes the remind date forward.
func (s *ReportsHandler) DismissAlert(ctx context.Context, barcode string) error {
	if barcode == "" {
		return &models.ValidationError{Field: "barcode", Reason: "must not be empty"}
	}
	remind := s.Clock().Add(dismissalRemindAfter)

	err := s.dismissals.Update(func(dismissals []models.AlertDismissal) ([]models.AlertDismissal, error) {
		for i := range dismissals {
			if dismissals[i].Barcode == barcode {
				dismissals[i].RemindDate = remind
				return dismissals, nil
			}
		}
		return append(dismissals, models.AlertDismissal{Barcode: barcode, RemindDate: remind}), nil
	})
	if err != nil {
		return err
	}

	if s.redis != nil {
		_ = s.redis.Del(ctx, DashboardCacheKey)
	}
	return nil
}

// --- Dashboard ---

type Dashboard struct {
	DailyProfit           string         `json:"daily_profit"`
	MonthlyProfit         string         `json:"monthly_profit"`
	AllTimeProfit         string         `json:"all_time_profit"`
	DailySalesTotal       string         `json:"daily_sales_total"`
	DailyPurchasesTotal   string         `json:"daily_purchases_total"`
	MonthlySalesTotal     string         `json:"monthly_sales_total"`
	MonthlyPurchasesTotal string         `json:"monthly_purchases_total"`
	CashBalance           string         `json:"cash_balance"`
	TotalBalance          string         `json:"total_balance"`
	Notifications         []Notification `json:"notifications"`
	GeneratedAt           time.Time      `json:"generated_at"`
}

// Dashboard assembles the admin view (user == "") or a seller's view. The
// admin view is cached briefly in redis; mutating handlers invalidate it.
func (s *ReportsHandler) Dashboard(ctx context.Context, user string) (*Dashboard, error) {
	if user == "" && s.redis != nil {
		if cached, err := s.redis.Get(ctx, DashboardCacheKey).Result(); err == nil {
			var d Dashboard
			if json.Unmarshal([]byte(cached), &d) == nil {
				return &d, nil
			}
		}
	}

	now := s.Clock()
	d := &Dashboard{
		Notifications: s.Notifications(now),
		GeneratedAt:   now,
	}
	for _, f := range []struct {
		dst    *string
		figure func() (decimal.Decimal, error)
	}{
		{&d.DailyProfit, func() (decimal.Decimal, error) { return s.Profit(WindowDay, user) }},
		{&d.MonthlyProfit, func() (decimal.Decimal, error) { return s.Profit(WindowMonth, user) }},
		{&d.AllTimeProfit, func() (decimal.Decimal, error) { return s.Profit(WindowAll, user) }},
		{&d.DailySalesTotal, func() (decimal.Decimal, error) { return s.SalesTotal(WindowDay, user) }},
		{&d.DailyPurchasesTotal, func() (decimal.Decimal, error) { return s.PurchasesTotal(WindowDay, user) }},
		{&d.MonthlySalesTotal, func() (decimal.Decimal, error) { return s.SalesTotal(WindowMonth, user) }},
		{&d.MonthlyPurchasesTotal, func() (decimal.Decimal, error) { return s.PurchasesTotal(WindowMonth, user) }},
		{&d.CashBalance, func() (decimal.Decimal, error) { return s.CashBalance() }},
		{&d.TotalBalance, func() (decimal.Decimal, error) { return s.Balance(WindowDay, user) }},
	} {
		value, err := f.figure()
		if err != nil {
			return nil, err
		}
		*f.dst = models.Money(value)
	}

	if user == "" && s.redis != nil {
		if data, err := json.Marshal(d); err == nil {
			_ = s.redis.Set(ctx, DashboardCacheKey, data, cacheTTLShort).Err()
		}
	}
	return d, nil
}

package handler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"

	reportshandler "shopledger-system/internal/services/reports/handler"

	"shopledger-system/internal/models"
	"shopledger-system/internal/store"
)

// --- Handler ---

type CashHandler struct {
	transactions *store.Collection[models.CashTransaction]
	salaries     *store.Collection[models.SalaryPayment]
	redis        *redis.Client

	Clock func() time.Time
}

func NewCashHandler(transactions *store.Collection[models.CashTransaction], salaries *store.Collection[models.SalaryPayment], redisClient *redis.Client) *CashHandler {
	return &CashHandler{
		transactions: transactions,
		salaries:     salaries,
		redis:        redisClient,
		Clock:        time.Now,
	}
}

func (s *CashHandler) InvalidateCashCaches(ctx context.Context) {
	if s.redis == nil {
		return
	}
	_ = s.redis.Del(ctx, reportshandler.DashboardCacheKey)
}

// --- Cash ledger ---

// Record appends one manual cash movement. The sign is normalized from the
// type: withdrawals are forced negative, deposits positive.
func (s *CashHandler) Record(ctx context.Context, amount, txType, description, user string) (*models.CashTransaction, error) {
	txType = strings.ToLower(strings.TrimSpace(txType))
	if txType != models.CashDeposit && txType != models.CashWithdrawal {
		return nil, &models.ValidationError{Field: "type", Reason: "must be deposit or withdrawal"}
	}

	value, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, &models.ValidationError{Field: "amount", Reason: "not a decimal amount"}
	}
	if value.IsZero() {
		return nil, &models.ValidationError{Field: "amount", Reason: "must not be zero"}
	}

	value = value.Abs()
	if txType == models.CashWithdrawal {
		value = value.Neg()
	}

	tx := models.CashTransaction{
		Date:        s.Clock(),
		Amount:      models.Money(value),
		Type:        txType,
		Description: strings.TrimSpace(description),
		User:        user,
	}

	if err := s.transactions.Append(tx); err != nil {
		return nil, err
	}

	s.InvalidateCashCaches(ctx)
	return &tx, nil
}

// Balance folds the signed amounts of every recorded movement. No caching;
// the ledger is the source of truth. A stored amount that no longer parses
// means the file was edited by hand and the fold cannot be trusted.
func (s *CashHandler) Balance() (decimal.Decimal, error) {
	balance := decimal.Zero
	for _, tx := range s.transactions.Snapshot() {
		amount, err := decimal.NewFromString(tx.Amount)
		if err != nil {
			return decimal.Zero, &models.PersistenceError{
				Op:   "decode",
				Path: s.transactions.Path(),
				Err:  fmt.Errorf("transaction at %s: bad amount %q", tx.Date.Format(time.RFC3339), tx.Amount),
			}
		}
		balance = balance.Add(amount)
	}
	return balance, nil
}

// List returns cash movements newest first.
func (s *CashHandler) List() []models.CashTransaction {
	txs := s.transactions.Snapshot()
	for i, j := 0, len(txs)-1; i < j; i, j = i+1, j-1 {
		txs[i], txs[j] = txs[j], txs[i]
	}
	return txs
}

// DeleteByDate removes the movement recorded at exactly the given time.
func (s *CashHandler) DeleteByDate(ctx context.Context, date time.Time) error {
	err := s.transactions.Update(func(txs []models.CashTransaction) ([]models.CashTransaction, error) {
		for i := range txs {
			if txs[i].Date.Equal(date) {
				return append(txs[:i], txs[i+1:]...), nil
			}
		}
		return nil, &models.NotFoundError{Kind: "cash transaction", Key: date.Format(time.RFC3339)}
	})
	if err != nil {
		return err
	}
	s.InvalidateCashCaches(ctx)
	return nil
}

// --- Salary payments ---

func (s *CashHandler) PaySalary(ctx context.Context, employee, amount, source, note, user string) (*models.SalaryPayment, error) {
	employee = strings.TrimSpace(employee)
	if employee == "" {
		return nil, &models.ValidationError{Field: "employee", Reason: "must not be empty"}
	}
	value, err := decimal.NewFromString(amount)
	if err != nil || !value.IsPositive() {
		return nil, &models.ValidationError{Field: "amount", Reason: "must be a positive amount"}
	}
	if strings.TrimSpace(source) == "" {
		return nil, &models.ValidationError{Field: "source", Reason: "must not be empty"}
	}

	payment := models.SalaryPayment{
		Employee: employee,
		Amount:   models.Money(value),
		Source:   source,
		Note:     note,
		Date:     s.Clock(),
		User:     user,
	}

	if err := s.salaries.Append(payment); err != nil {
		return nil, err
	}

	s.InvalidateCashCaches(ctx)
	return &payment, nil
}

// ListPayments returns salary payments newest first.
func (s *CashHandler) ListPayments() []models.SalaryPayment {
	payments := s.salaries.Snapshot()
	for i, j := 0, len(payments)-1; i < j; i, j = i+1, j-1 {
		payments[i], payments[j] = payments[j], payments[i]
	}
	return payments
}

package models

import "time"

const (
	CashDeposit    = "deposit"
	CashWithdrawal = "withdrawal"
)

// CashTransaction records a manual cash movement. Amount carries the sign:
// deposits positive, withdrawals negative.
type CashTransaction struct {
	Date        time.Time `json:"date"`
	Amount      string    `json:"amount"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	User        string    `json:"user"`
}

type SalaryPayment struct {
	Employee string    `json:"employee"`
	Amount   string    `json:"amount"`
	Source   string    `json:"source"`
	Note     string    `json:"note"`
	Date     time.Time `json:"date"`
	User     string    `json:"user"`
}

// AlertDismissal suppresses notifications for a barcode until RemindDate.
type AlertDismissal struct {
	Barcode    string    `json:"barcode"`
	RemindDate time.Time `json:"remind_date"`
}

package payroll

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

type PaymentRecord struct {
	ID     string          `json:"id"`
	Amount decimal.Decimal `json:"amount"`
	Method string          `json:"method,omitempty"`
	Note   string          `json:"note,omitempty"`
	PaidAt time.Time       `json:"paid_at"`
}

type Staff struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Role     string          `json:"role,omitempty"`
	Salary   decimal.Decimal `json:"salary"`
	Payments []PaymentRecord `json:"payments,omitempty"`
}

// LedgerEntry is one payment with the amount still due after it.
type LedgerEntry struct {
	Payment PaymentRecord   `json:"payment"`
	Due     decimal.Decimal `json:"due"`
}

type Ledger struct {
	StaffID   string          `json:"staff_id"`
	Salary    decimal.Decimal `json:"salary"`
	Paid      decimal.Decimal `json:"paid"`
	AmountDue decimal.Decimal `json:"amount_due"`
	Settled   bool            `json:"settled"`
	Entries   []LedgerEntry   `json:"entries"`
}

// BuildLedger folds the payments in date order against the salary.
func BuildLedger(staff Staff) Ledger {
	payments := append([]PaymentRecord(nil), staff.Payments...)
	sort.SliceStable(payments, func(i, j int) bool {
		return payments[i].PaidAt.Before(payments[j].PaidAt)
	})

	ledger := Ledger{
		StaffID: staff.ID,
		Salary:  staff.Salary,
		Paid:    decimal.Zero,
		Entries: make([]LedgerEntry, 0, len(payments)),
	}
	due := staff.Salary
	for _, p := range payments {
		due = due.Sub(p.Amount)
		ledger.Paid = ledger.Paid.Add(p.Amount)
		ledger.Entries = append(ledger.Entries, LedgerEntry{Payment: p, Due: due})
	}
	ledger.AmountDue = due
	ledger.Settled = !due.IsPositive()
	return ledger
}

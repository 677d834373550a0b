package payroll

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/appetiteclub/pos/internal/api"
	"github.com/shopspring/decimal"
)

var ErrInvalidAmount = errors.New("payment amount must be positive")

// NewPayment is the body of a recorded staff payment.
type NewPayment struct {
	Amount decimal.Decimal `json:"amount"`
	Method string          `json:"method,omitempty"`
	Note   string          `json:"note,omitempty"`
}

// DataAccess wraps the /staff endpoints.
type DataAccess struct {
	client *api.Client
}

func NewDataAccess(client *api.Client) *DataAccess {
	return &DataAccess{client: client}
}

func (da *DataAccess) ListStaff(ctx context.Context) ([]Staff, error) {
	if da == nil || da.client == nil {
		return nil, fmt.Errorf("payroll client not configured")
	}

	var staff []Staff
	if err := da.client.Get(ctx, "/staff", &staff); err != nil {
		return nil, err
	}
	return staff, nil
}

func (da *DataAccess) ListPayments(ctx context.Context, staffID string) ([]PaymentRecord, error) {
	if da == nil || da.client == nil {
		return nil, fmt.Errorf("payroll client not configured")
	}
	if staffID == "" {
		return nil, fmt.Errorf("missing staff id")
	}

	var payments []PaymentRecord
	if err := da.client.Get(ctx, paymentsPath(staffID), &payments); err != nil {
		return nil, err
	}
	return payments, nil
}

func (da *DataAccess) RecordPayment(ctx context.Context, staffID string, payment NewPayment) (*PaymentRecord, error) {
	if da == nil || da.client == nil {
		return nil, fmt.Errorf("payroll client not configured")
	}
	if staffID == "" {
		return nil, fmt.Errorf("missing staff id")
	}
	if !payment.Amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	payment.Note = strings.TrimSpace(payment.Note)

	var record PaymentRecord
	if err := da.client.Post(ctx, paymentsPath(staffID), payment, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// Ledger loads a staff member's payments and folds them against salary.
func (da *DataAccess) Ledger(ctx context.Context, staff Staff) (Ledger, error) {
	payments, err := da.ListPayments(ctx, staff.ID)
	if err != nil {
		return Ledger{}, err
	}
	staff.Payments = payments
	return BuildLedger(staff), nil
}

func paymentsPath(staffID string) string {
	return fmt.Sprintf("/staff/%s/payments", url.PathEscape(staffID))
}

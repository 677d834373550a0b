package settings

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/appetiteclub/pos/internal/api"
	"github.com/shopspring/decimal"
)

func TestPaymentSettings(t *testing.T) {
	s := PaymentSettings{Methods: []PaymentMethod{
		{ID: "cash", Name: "Cash", Enabled: true},
		{ID: "card", Name: "Card", Enabled: true},
		{ID: "voucher", Name: "Voucher", Enabled: false},
	}}

	if got := s.Enabled(); len(got) != 2 {
		t.Errorf("Enabled() = %v, want 2 methods", got)
	}

	tests := []struct {
		id   string
		want bool
	}{
		{id: "cash", want: true},
		{id: "CARD", want: true},
		{id: "voucher", want: false},
		{id: "crypto", want: false},
	}
	for _, tt := range tests {
		if got := s.Allows(tt.id); got != tt.want {
			t.Errorf("Allows(%s) = %v, want %v", tt.id, got, tt.want)
		}
	}

	if !(PaymentSettings{}).Allows("anything") {
		t.Error("empty settings should allow any method")
	}
}

func TestMoneyFormat(t *testing.T) {
	tests := []struct {
		name   string
		loc    Localization
		amount string
		want   string
	}{
		{name: "english", loc: Localization{Language: "en", Currency: "USD", CurrencySymbol: "$"}, amount: "1234.5", want: "$1,234.50"},
		{name: "rounding", loc: Localization{Language: "en", CurrencySymbol: "$"}, amount: "0.456", want: "$0.46"},
		{name: "negative", loc: Localization{Language: "en", CurrencySymbol: "$"}, amount: "-12", want: "-$12.00"},
		{name: "codeFallback", loc: Localization{Language: "en", Currency: "eur"}, amount: "3", want: "EUR 3.00"},
		{name: "unknownLanguage", loc: Localization{Language: "??", CurrencySymbol: "$"}, amount: "1000", want: "$1,000.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewMoney(tt.loc).Format(decimal.RequireFromString(tt.amount))
			if got != tt.want {
				t.Errorf("Format() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMoneyFormatLocaleSeparators(t *testing.T) {
	got := NewMoney(Localization{Language: "de", CurrencySymbol: "€"}).Format(decimal.RequireFromString("1234.5"))
	if !strings.HasSuffix(got, ",50") {
		t.Errorf("Format() = %q, want German decimal comma", got)
	}
}

func TestDataAccess(t *testing.T) {
	var saved PaymentSettings
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/settings/payments":
			json.NewEncoder(w).Encode(map[string]interface{}{"data": PaymentSettings{Methods: []PaymentMethod{{ID: "cash", Name: "Cash", Enabled: true}}}})
		case r.Method == http.MethodPost && r.URL.Path == "/settings/payments":
			json.NewDecoder(r.Body).Decode(&saved)
			w.WriteHeader(http.StatusNoContent)
		case r.Method == http.MethodGet && r.URL.Path == "/settings/localization":
			json.NewEncoder(w).Encode(Localization{Language: "es", Currency: "EUR", CurrencySymbol: "€"})
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	da := NewDataAccess(api.NewClient(server.URL))
	ctx := context.Background()

	payments, err := da.GetPayments(ctx)
	if err != nil || len(payments.Methods) != 1 {
		t.Fatalf("GetPayments() = %+v, %v", payments, err)
	}

	next := PaymentSettings{Methods: []PaymentMethod{{ID: "cash", Enabled: true}, {ID: "card", Enabled: true}}}
	got, err := da.SavePayments(ctx, next)
	if err != nil {
		t.Fatalf("SavePayments() error = %v", err)
	}
	if len(got.Methods) != 2 || len(saved.Methods) != 2 {
		t.Errorf("SavePayments() = %+v, backend saw %+v", got, saved)
	}

	if _, err := da.SavePayments(ctx, PaymentSettings{Methods: []PaymentMethod{{Name: "nameless"}}}); err == nil {
		t.Error("SavePayments(no id) error = nil, want error")
	}

	loc, err := da.GetLocalization(ctx)
	if err != nil || loc.Currency != "EUR" {
		t.Errorf("GetLocalization() = %+v, %v", loc, err)
	}
}

func TestDataAccessNilClient(t *testing.T) {
	var da *DataAccess
	ctx := context.Background()

	if _, err := da.GetPayments(ctx); err == nil {
		t.Error("GetPayments() error = nil, want error")
	}
	if _, err := da.SavePayments(ctx, PaymentSettings{}); err == nil {
		t.Error("SavePayments() error = nil, want error")
	}
	if _, err := da.GetLocalization(ctx); err == nil {
		t.Error("GetLocalization() error = nil, want error")
	}
}

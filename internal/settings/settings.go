package settings

import (
	"context"
	"fmt"
	"strings"

	"github.com/appetiteclub/pos/internal/api"
)

type PaymentMethod struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Enabled bool   `json:"enabled"`
}

type PaymentSettings struct {
	Methods []PaymentMethod `json:"methods"`
}

// Enabled lists the methods staff may take payments with.
func (s PaymentSettings) Enabled() []PaymentMethod {
	var out []PaymentMethod
	for _, m := range s.Methods {
		if m.Enabled {
			out = append(out, m)
		}
	}
	return out
}

// Allows reports whether id names an enabled method. An empty configuration
// allows everything.
func (s PaymentSettings) Allows(id string) bool {
	if len(s.Methods) == 0 {
		return id != ""
	}
	for _, m := range s.Methods {
		if m.Enabled && strings.EqualFold(m.ID, id) {
			return true
		}
	}
	return false
}

type Localization struct {
	Language       string `json:"language"`
	Currency       string `json:"currency"`
	CurrencySymbol string `json:"currency_symbol,omitempty"`
}

// DataAccess wraps the /settings endpoints.
type DataAccess struct {
	client *api.Client
}

func NewDataAccess(client *api.Client) *DataAccess {
	return &DataAccess{client: client}
}

func (da *DataAccess) GetPayments(ctx context.Context) (PaymentSettings, error) {
	if da == nil || da.client == nil {
		return PaymentSettings{}, fmt.Errorf("settings client not configured")
	}

	var settings PaymentSettings
	if err := da.client.Get(ctx, "/settings/payments", &settings); err != nil {
		return PaymentSettings{}, err
	}
	return settings, nil
}

func (da *DataAccess) SavePayments(ctx context.Context, settings PaymentSettings) (PaymentSettings, error) {
	if da == nil || da.client == nil {
		return PaymentSettings{}, fmt.Errorf("settings client not configured")
	}
	for _, m := range settings.Methods {
		if strings.TrimSpace(m.ID) == "" {
			return PaymentSettings{}, fmt.Errorf("payment method without id")
		}
	}

	saved := settings
	if err := da.client.Post(ctx, "/settings/payments", settings, &saved); err != nil {
		return PaymentSettings{}, err
	}
	return saved, nil
}

func (da *DataAccess) GetLocalization(ctx context.Context) (Localization, error) {
	if da == nil || da.client == nil {
		return Localization{}, fmt.Errorf("settings client not configured")
	}

	var loc Localization
	if err := da.client.Get(ctx, "/settings/localization", &loc); err != nil {
		return Localization{}, err
	}
	return loc, nil
}

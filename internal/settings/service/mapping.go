package service

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/smallbiznis/storefront/internal/settings/domain"
)

// settingKeys pins every key the invoice core reads to its category.
var settingKeys = map[string]string{
	domain.KeyStoreName:          domain.CategoryShop,
	domain.KeyStoreAddress:       domain.CategoryShop,
	domain.KeyStorePhone:         domain.CategoryShop,
	domain.KeyStoreEmail:         domain.CategoryShop,
	domain.KeyInvoiceHeaderImage: domain.CategoryShop,
	domain.KeyInvoiceFooterImage: domain.CategoryShop,
	domain.KeyGSTNumber:          domain.CategoryBilling,
	domain.KeyPANNumber:          domain.CategoryBilling,
	domain.KeyEnableGST:          domain.CategoryBilling,
	domain.KeyTaxRate:            domain.CategoryBilling,
}

// defaults returns the values used for every missing key, and for the
// whole read when the store is unreachable.
func defaults(brandName string) (domain.CompanySettings, domain.TaxConfig) {
	return domain.CompanySettings{StoreName: brandName}, domain.TaxConfig{Enabled: false, Rate: 0}
}

// mapSettings converts raw rows into typed settings. Rows in the wrong
// category or with unknown keys are ignored.
func mapSettings(rows []*domain.Setting, brandName string) (domain.CompanySettings, domain.TaxConfig) {
	values := make(map[string]string, len(settingKeys))
	for _, row := range rows {
		if row == nil {
			continue
		}
		key := strings.TrimSpace(row.Key)
		category, ok := settingKeys[key]
		if !ok || category != strings.TrimSpace(row.Category) {
			continue
		}
		values[key] = textValue(row)
	}

	company, taxCfg := defaults(brandName)
	company.StoreAddress = values[domain.KeyStoreAddress]
	company.StorePhone = values[domain.KeyStorePhone]
	company.StoreEmail = values[domain.KeyStoreEmail]
	company.GSTNumber = values[domain.KeyGSTNumber]
	company.PANNumber = values[domain.KeyPANNumber]
	company.HeaderImageURL = values[domain.KeyInvoiceHeaderImage]
	company.FooterImageURL = values[domain.KeyInvoiceFooterImage]
	if name := values[domain.KeyStoreName]; name != "" {
		company.StoreName = name
	}

	// Only the literal "true" enables tax; any other value, including a
	// configured rate, leaves it off at zero.
	if values[domain.KeyEnableGST] == "true" {
		taxCfg.Enabled = true
		taxCfg.Rate = parseRate(values[domain.KeyTaxRate])
	}

	return company, taxCfg
}

// textValue normalises a row to plain text according to its data type.
// JSON string values are unquoted; every other type is kept verbatim so
// boolean flags still have to match exactly.
func textValue(row *domain.Setting) string {
	raw := strings.TrimSpace(row.Value)
	switch row.DataType {
	case domain.DataTypeJSON:
		var s string
		if err := json.Unmarshal([]byte(raw), &s); err == nil {
			return strings.TrimSpace(s)
		}
		return raw
	default:
		return raw
	}
}

// parseRate accepts finite percentages in [0, 100). Anything else is 0.
func parseRate(raw string) float64 {
	rate, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(rate) || math.IsInf(rate, 0) || rate < 0 || rate >= 100 {
		return 0
	}
	return rate
}

package types

import "github.com/coopmercado/coopmercado-backend/pkg/enums"

// CompanyTheme carries the per-tenant branding applied by the portal UI.
type CompanyTheme struct {
	PrimaryColor   string `json:"primary_color"`
	SecondaryColor string `json:"secondary_color"`
	AccentColor    string `json:"accent_color"`
	LogoURL        string `json:"logo_url,omitempty"`
	FaviconURL     string `json:"favicon_url,omitempty"`
	CustomCSS      string `json:"custom_css,omitempty"`
}

// BusinessSettings holds the tenant-level commercial defaults. TaxRatePercent
// is kept as a string so the stored value round-trips without float drift;
// services parse it with shopspring/decimal.
type BusinessSettings struct {
	Currency       enums.Currency `json:"currency"`
	Timezone       string         `json:"timezone"`
	TaxRatePercent string         `json:"tax_rate_percent"`
	PaymentTerms   string         `json:"payment_terms,omitempty"`
}

package model

import "github.com/rotisserie/eris"

// Hard failures. Everything else is reported as a Warning or an Insufficiency.
var (
	// ErrUnpriced means the primary subject of an analysis cannot be priced at all.
	ErrUnpriced = eris.New("subject cannot be priced")
	// ErrInvalidAssumptions means caller-supplied assumptions violate an invariant.
	ErrInvalidAssumptions = eris.New("invalid assumptions")
)

// WarningCode classifies a non-fatal data-quality issue.
type WarningCode string

const (
	WarnCurrencyMismatch WarningCode = "currency_mismatch"
	WarnSynergyBasis     WarningCode = "synergy_basis_fallback"
	WarnHighLeverage     WarningCode = "high_leverage"
	WarnBookValue        WarningCode = "book_value_missing"
	WarnDefaultBeta      WarningCode = "default_beta"
	WarnDefaultCostDebt  WarningCode = "default_cost_of_debt"
	WarnTaxRateClamped   WarningCode = "tax_rate_clamped"
	WarnDefaultTaxRate   WarningCode = "default_tax_rate"
	WarnSamplesDiscarded WarningCode = "samples_discarded"
)

// Warning is a data-quality anomaly returned alongside an otherwise valid result.
type Warning struct {
	Code    WarningCode `json:"code"`
	Message string      `json:"message"`
}

// Insufficiency explains why a figure could not be computed.
type Insufficiency struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// Warnings accumulates warnings in insertion order.
type Warnings []Warning

// Add appends a warning.
func (w *Warnings) Add(code WarningCode, msg string) {
	*w = append(*w, Warning{Code: code, Message: msg})
}

// Has reports whether a warning with the code was recorded.
func (w Warnings) Has(code WarningCode) bool {
	for _, x := range w {
		if x.Code == code {
			return true
		}
	}
	return false
}

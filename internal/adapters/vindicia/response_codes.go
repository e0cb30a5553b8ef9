package vindicia

import (
	pkgerrors "github.com/omnibill/vindicia/pkg/errors"
)

// CashBox return codes. Success whitelists are per-operation and
// deliberately not unified: each operation's set is an explicit,
// separately sourced constant because the processor documents no general
// rule.
const (
	codeOK               = "200" // plain success
	codeTaxServiceDown   = "202" // succeeded, but the tax service was unavailable
	codePartialPropagate = "228" // payment method updated, but not on every subscription
)

var (
	// defaultSuccessCodes covers every operation without a bespoke set
	defaultSuccessCodes = []string{codeOK}

	// calculateSalesTaxSuccessCodes: a 202 means the quote proceeded
	// with the tax service degraded
	calculateSalesTaxSuccessCodes = []string{codeOK, codeTaxServiceDown}

	// paymentMethodSuccessCodes: a 228 means the method was saved but
	// could not be propagated to every subscription using it
	paymentMethodSuccessCodes = []string{codeOK, codePartialPropagate}
)

// ResponseCodeInfo contains detailed information about a return code
type ResponseCodeInfo struct {
	Code        string
	Description string
	IsRetriable bool
	Category    pkgerrors.ErrorCategory
}

var responseCodes = map[string]ResponseCodeInfo{
	"200": {
		Code:        "200",
		Description: "OK",
		Category:    pkgerrors.CategoryApproved,
	},
	"202": {
		Code:        "202",
		Description: "Processed, tax service unavailable",
		Category:    pkgerrors.CategoryApproved,
	},
	"228": {
		Code:        "228",
		Description: "Payment method saved, not propagated to all subscriptions",
		Category:    pkgerrors.CategoryApproved,
	},
	"400": {
		Code:        "400",
		Description: "Malformed request",
		Category:    pkgerrors.CategoryInvalidRequest,
	},
	"402": {
		Code:        "402",
		Description: "Transaction declined",
		Category:    pkgerrors.CategoryDeclined,
	},
	"404": {
		Code:        "404",
		Description: "Object not found",
		Category:    pkgerrors.CategoryInvalidRequest,
	},
	"409": {
		Code:        "409",
		Description: "Chargeback risk score above threshold",
		Category:    pkgerrors.CategoryFraud,
	},
	"500": {
		Code:        "500",
		Description: "Internal processor error",
		IsRetriable: true,
		Category:    pkgerrors.CategorySystemError,
	},
	"503": {
		Code:        "503",
		Description: "Processor temporarily unavailable",
		IsRetriable: true,
		Category:    pkgerrors.CategorySystemError,
	},
}

// GetResponseCode retrieves information for a CashBox return code
func GetResponseCode(code string) ResponseCodeInfo {
	if info, exists := responseCodes[code]; exists {
		return info
	}
	return ResponseCodeInfo{
		Code:        code,
		Description: "Unknown return code",
		Category:    pkgerrors.CategoryDeclined,
	}
}

// containsCode reports whitelist membership
func containsCode(codes []string, code string) bool {
	for _, c := range codes {
		if c == code {
			return true
		}
	}
	return false
}

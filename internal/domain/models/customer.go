package models

// Customer represents a CashBox Account. Identity is either the
// merchant-assigned id or the gateway-assigned VID reference; lookups
// require exactly one, responses may carry both.
type Customer struct {
	ID        string // merchantAccountId
	Reference string // VID
	Name      string
	Email     string

	TaxExemptions *TaxExemptionBag
	Attributes    *AttributeBag
}

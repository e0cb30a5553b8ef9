package models

// Product represents a CashBox Product
type Product struct {
	ID        string // merchantProductId
	Reference string // VID

	Plan *Plan // default billing plan

	TaxClassification string
	Prices            *PriceBag
	Attributes        *AttributeBag
}

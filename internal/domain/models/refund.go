package models

import (
	"github.com/shopspring/decimal"
)

// Refund represents a CashBox Refund
type Refund struct {
	ID        string // merchantRefundId
	Reference string // VID
	Currency  string
	Amount    decimal.Decimal
	Note      string

	Transaction *Transaction
	Items       *RefundItemBag

	Status     string
	Attributes *AttributeBag
}

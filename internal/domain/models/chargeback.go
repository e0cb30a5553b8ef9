package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Chargeback represents a CashBox Chargeback. The processor never
// assigns these a merchant id, only a VID reference.
type Chargeback struct {
	Reference string // VID
	Currency  string
	Amount    decimal.Decimal

	Status                string
	StatusChangedTime     *time.Time
	ProcessorReceivedTime *time.Time

	TransactionID string // merchantTransactionId of the disputed transaction
	ReasonCode    string
	CaseNumber    string

	// Bank-reporting fields passed through as received
	DivisionNumber      string
	MerchantNumber      string
	PresentmentAmount   decimal.Decimal
	PresentmentCurrency string
	PostedTime          *time.Time
	ReferenceNumber     string
}

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionStatus is a single entry in a transaction's status history
type TransactionStatus struct {
	Status            string
	Timestamp         time.Time
	AuthorizationCode string
}

// Transaction represents a CashBox Transaction
type Transaction struct {
	ID        string // merchantTransactionId
	Reference string // VID
	Currency  string
	Amount    decimal.Decimal

	Customer      *Customer
	PaymentMethod *PaymentMethod
	Items         *ItemBag

	Status         string
	StatusLog      []TransactionStatus
	AVSCode        string
	CVNCode        string
	PayPalRedirect string

	Attributes *AttributeBag
}

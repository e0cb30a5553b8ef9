package models

// PaymentMethodType is the closed set of payment method types the
// adapter supports
type PaymentMethodType string

const (
	PaymentMethodCreditCard PaymentMethodType = "CreditCard"
	PaymentMethodPayPal     PaymentMethodType = "PayPal"
	PaymentMethodApplePay   PaymentMethodType = "ApplePay"
	PaymentMethodToken      PaymentMethodType = "Token"
)

// Card holds card details as returned by the processor. Account numbers
// are always masked on read; only the last four digits survive a round
// trip.
type Card struct {
	MaskedNumber string
	ExpiryMonth  int
	ExpiryYear   int
	Brand        string
	Name         string
	Address      string
	City         string
	State        string
	PostalCode   string
	Country      string
}

// PaymentMethod represents a CashBox PaymentMethod. The type-specific
// substructures are mutually exclusive: a credit-card method carries
// Card, a PayPal method carries the PayPal email.
type PaymentMethod struct {
	ID        string // merchantPaymentMethodId
	Reference string // VID
	Type      PaymentMethodType

	Card        *Card
	PayPalEmail string

	Active     bool
	Attributes *AttributeBag
}

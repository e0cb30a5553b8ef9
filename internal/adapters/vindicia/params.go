package vindicia

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/omnibill/vindicia/internal/domain/models"
)

// CardParams carries raw card details supplied by the caller. These are
// only ever sent outbound; replies carry masked data.
type CardParams struct {
	Number      string
	ExpiryMonth int
	ExpiryYear  int
	CVV         string
	Name        string
	Address     string
	City        string
	State       string
	PostalCode  string
	Country     string
}

// CustomerParams are the inputs to create/update customer operations.
// Identity is CustomerID (merchant-assigned) or CustomerReference
// (gateway VID).
type CustomerParams struct {
	CustomerID        string
	CustomerReference string
	Name              string
	Email             string

	// Card creates an initial payment method alongside the account.
	// Forbidden on update: card changes go through the payment method
	// path.
	Card            *CardParams
	PaymentMethodID string

	TaxExemptions []models.TaxExemption
	Attributes    map[string]interface{}
}

// TransactionParams are the inputs to authorize and purchase
type TransactionParams struct {
	Amount   decimal.Decimal
	Currency string

	TransactionID string // merchant-assigned; generated when empty

	CustomerID        string
	CustomerReference string

	PaymentMethodID        string
	PaymentMethodReference string
	PaymentMethodType      models.PaymentMethodType
	Card                   *CardParams

	// ReturnURL/CancelURL drive the redirect-based PayPal method and,
	// when no explicit type is given, identify it
	ReturnURL string
	CancelURL string

	Items []models.Item

	TaxClassification        string
	IP                       string
	StatementDescriptor      string
	MinChargebackProbability *int

	Attributes map[string]interface{}
}

// CaptureParams identify the transactions to capture in one call
type CaptureParams struct {
	TransactionIDs        []string
	TransactionReferences []string
}

// VoidParams identify the transactions to void in one call
type VoidParams struct {
	TransactionIDs        []string
	TransactionReferences []string
}

// RefundParams are the inputs to a refund. Distribution strategy is
// derived: items present means item-level, amount only means flat, and
// neither means the transaction's remaining balance.
type RefundParams struct {
	TransactionID        string
	TransactionReference string

	RefundID string
	Amount   *decimal.Decimal
	Items    []models.RefundItem
	Note     string

	Attributes map[string]interface{}
}

// PaymentMethodParams are the inputs to create/update payment method
type PaymentMethodParams struct {
	PaymentMethodID        string
	PaymentMethodReference string
	Type                   models.PaymentMethodType

	Card        *CardParams
	ReturnURL   string
	CancelURL   string
	PayPalEmail string

	// CustomerID/Reference attach the method to an account
	CustomerID        string
	CustomerReference string

	// Validate asks the processor to verify the method with its payment
	// network before saving
	Validate bool

	Attributes map[string]interface{}
}

// SubscriptionParams are the inputs to create/update subscription
type SubscriptionParams struct {
	SubscriptionID        string
	SubscriptionReference string
	Currency              string

	CustomerID        string
	CustomerReference string

	ProductID        string
	ProductReference string

	PlanID        string
	PlanReference string

	PaymentMethodID        string
	PaymentMethodReference string
	Card                   *CardParams

	Items      []models.Item
	BillingDay int
	StartTime  *time.Time

	StatementDescriptor      string
	MinChargebackProbability *int

	Attributes map[string]interface{}
}

// CancelSubscriptionParams are the inputs to cancel a single
// subscription
type CancelSubscriptionParams struct {
	SubscriptionID        string
	SubscriptionReference string
	CancelReason          string

	// Settle issues a final bill for any outstanding balance instead of
	// discarding it
	Settle bool
}

// CancelSubscriptionsParams cancel several of a customer's
// subscriptions in one call; with no ids, all of them.
type CancelSubscriptionsParams struct {
	CustomerID        string
	CustomerReference string
	SubscriptionIDs   []string
}

// PlanParams are the inputs to create/update billing plan. Price and
// Prices are mutually exclusive.
type PlanParams struct {
	PlanID        string
	PlanReference string

	IntervalUnit  models.PlanIntervalUnit
	IntervalCount int

	TaxClassification string
	Price             *models.Price
	Prices            []models.Price

	Attributes map[string]interface{}
}

// ProductParams are the inputs to create/update product. Price and
// Prices are mutually exclusive.
type ProductParams struct {
	ProductID        string
	ProductReference string

	PlanID        string
	PlanReference string

	TaxClassification string
	Price             *models.Price
	Prices            []models.Price

	Attributes map[string]interface{}
}

// FetchParams identify a single record by merchant id or gateway
// reference; exactly one must be set
type FetchParams struct {
	ID        string
	Reference string
}

// FetchListParams select records either by owning customer or by a time
// range; the two selection modes are mutually exclusive and a range
// requires both bounds
type FetchListParams struct {
	CustomerID        string
	CustomerReference string
	StartTime         *time.Time
	EndTime           *time.Time
}

// FetchChargebacksParams select chargebacks by the disputed
// transaction's merchant id, by the chargeback's own gateway reference,
// or by time range
type FetchChargebacksParams struct {
	TransactionID       string
	ChargebackReference string
	StartTime           *time.Time
	EndTime             *time.Time
}

// CalculateSalesTaxParams are the inputs to a sales tax quote
type CalculateSalesTaxParams struct {
	Amount            decimal.Decimal
	Currency          string
	TaxClassification string

	CustomerID        string
	CustomerReference string
	PostalCode        string
	Country           string
}

// MakePaymentParams bill a subscription's outstanding balance now
type MakePaymentParams struct {
	SubscriptionID        string
	SubscriptionReference string

	PaymentMethodID        string
	PaymentMethodReference string

	Amount   *decimal.Decimal
	Currency string
	Note     string
}

// UpdateChargebackParams update a chargeback's local state. Chargebacks
// carry no merchant id, only the gateway reference.
type UpdateChargebackParams struct {
	ChargebackReference string
	Status              string
	CaseNumber          string
}

// CompletePayPalParams finalize a PayPal purchase after the buyer
// returns from the redirect
type CompletePayPalParams struct {
	TransactionReference string
	PayPalTransactionID  string
	Success              bool
}

// ApplePaySessionParams validate a merchant session with Apple's
// servers. The validation URL comes from the browser's payment session
// event; authentication is a TLS client certificate.
type ApplePaySessionParams struct {
	ValidationURL      string
	MerchantIdentifier string
	DisplayName        string
	DomainName         string
	CertFile           string
	KeyFile            string
}

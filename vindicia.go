// Package vindicia is a client for the Vindicia CashBox subscription
// billing platform. It translates a conventional payments API (authorize,
// capture, refund, customers, payment methods, subscriptions) into
// CashBox's SOAP contract, including the hosted (Web Session) flow where
// card data is posted by the browser directly to the processor.
//
// The implementation lives under internal/; this package is the public
// surface. Construct a Gateway (or the PayPal/HOA variants) with a
// Config and a transport:
//
//	cfg, err := vindicia.LoadConfigFromEnv()
//	if err != nil {
//		...
//	}
//	gw := vindicia.New(cfg, vindicia.NewSoapClient(cfg.Timeout, logger), logger)
//	resp, err := gw.Purchase(ctx, vindicia.TransactionParams{...})
package vindicia

import (
	"time"

	"go.uber.org/zap"

	"github.com/omnibill/vindicia/internal/adapters/ports"
	adapter "github.com/omnibill/vindicia/internal/adapters/vindicia"
	"github.com/omnibill/vindicia/internal/config"
	"github.com/omnibill/vindicia/internal/domain/models"
)

// Configuration
type (
	Config       = config.Config
	LoggerConfig = config.LoggerConfig
)

// DefaultTaxClassification is applied where no classification is given
const DefaultTaxClassification = config.DefaultTaxClassification

// LoadConfigFromEnv reads the VINDICIA_* environment variables
func LoadConfigFromEnv() (*Config, error) {
	return config.LoadFromEnv()
}

// Gateway facades and the transport they dispatch through. Transport is
// an interface so tests and callers may substitute their own; SoapClient
// is the HTTP implementation used in production.
type (
	Gateway       = adapter.Gateway
	PayPalGateway = adapter.PayPalGateway
	HOAGateway    = adapter.HOAGateway

	Transport  = ports.SoapClient
	SoapCall   = ports.SoapCall
	SoapReply  = ports.SoapReply
	SoapClient = adapter.SoapClient
)

// New creates the direct (server-to-server) gateway
func New(cfg *Config, client Transport, logger *zap.Logger) *Gateway {
	return adapter.New(cfg, client, logger)
}

// NewPayPal creates the redirect-based PayPal gateway
func NewPayPal(cfg *Config, client Transport, logger *zap.Logger) *PayPalGateway {
	return adapter.NewPayPal(cfg, client, logger)
}

// NewHOA creates the hosted (Web Session) gateway
func NewHOA(cfg *Config, client Transport, logger *zap.Logger) *HOAGateway {
	return adapter.NewHOA(cfg, client, logger)
}

// NewSoapClient creates the HTTP transport used in production
func NewSoapClient(timeout time.Duration, logger *zap.Logger) *SoapClient {
	return adapter.NewSoapClient(timeout, logger)
}

// Request parameters
type (
	CardParams                = adapter.CardParams
	CustomerParams            = adapter.CustomerParams
	TransactionParams         = adapter.TransactionParams
	CaptureParams             = adapter.CaptureParams
	VoidParams                = adapter.VoidParams
	RefundParams              = adapter.RefundParams
	PaymentMethodParams       = adapter.PaymentMethodParams
	SubscriptionParams        = adapter.SubscriptionParams
	CancelSubscriptionParams  = adapter.CancelSubscriptionParams
	CancelSubscriptionsParams = adapter.CancelSubscriptionsParams
	PlanParams                = adapter.PlanParams
	ProductParams             = adapter.ProductParams
	FetchParams               = adapter.FetchParams
	FetchListParams           = adapter.FetchListParams
	FetchChargebacksParams    = adapter.FetchChargebacksParams
	CalculateSalesTaxParams   = adapter.CalculateSalesTaxParams
	MakePaymentParams         = adapter.MakePaymentParams
	UpdateChargebackParams    = adapter.UpdateChargebackParams
	CompletePayPalParams      = adapter.CompletePayPalParams
	ApplePaySessionParams     = adapter.ApplePaySessionParams
	HOAParams                 = adapter.HOAParams
	CompleteHOAParams         = adapter.CompleteHOAParams
)

// Responses
type (
	Response                = adapter.Response
	CaptureResponse         = adapter.CaptureResponse
	PayPalPurchaseResponse  = adapter.PayPalPurchaseResponse
	HOAInitializeResponse   = adapter.HOAInitializeResponse
	HOAResponse             = adapter.HOAResponse
	ApplePaySessionResponse = adapter.ApplePaySessionResponse
	ResponseCodeInfo        = adapter.ResponseCodeInfo
)

// GetResponseCode retrieves metadata for a CashBox return code
func GetResponseCode(code string) ResponseCodeInfo {
	return adapter.GetResponseCode(code)
}

// Domain objects carried by responses
type (
	Customer      = models.Customer
	PaymentMethod = models.PaymentMethod
	Card          = models.Card
	Transaction   = models.Transaction
	Subscription  = models.Subscription
	Plan          = models.Plan
	Product       = models.Product
	Refund        = models.Refund
	Chargeback    = models.Chargeback

	Item         = models.Item
	RefundItem   = models.RefundItem
	Price        = models.Price
	TaxExemption = models.TaxExemption

	PaymentMethodType = models.PaymentMethodType
	PlanIntervalUnit  = models.PlanIntervalUnit
)

// Payment method types
const (
	PaymentMethodCreditCard = models.PaymentMethodCreditCard
	PaymentMethodPayPal     = models.PaymentMethodPayPal
	PaymentMethodApplePay   = models.PaymentMethodApplePay
	PaymentMethodToken      = models.PaymentMethodToken
)

// Billing plan interval units
const (
	IntervalDay   = models.IntervalDay
	IntervalWeek  = models.IntervalWeek
	IntervalMonth = models.IntervalMonth
	IntervalYear  = models.IntervalYear
)

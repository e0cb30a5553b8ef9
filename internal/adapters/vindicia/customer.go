package vindicia

import (
	"context"

	"github.com/omnibill/vindicia/internal/adapters/ports"
	pkgerrors "github.com/omnibill/vindicia/pkg/errors"
)

// Account operations. Create and update both map to the remote `update`
// method (the processor upserts); the distinction is purely local
// validation, fixed at the call site.

// saveCustomer builds and dispatches an account update
func (g *Gateway) saveCustomer(ctx context.Context, p CustomerParams, update bool) (*Response, error) {
	account, err := buildAccountObject(p, update)
	if err != nil {
		return nil, err
	}
	// An initial card supplied at creation becomes the account's first
	// payment method
	if p.Card != nil {
		method, err := embeddedPaymentMethodObject(PaymentMethodParams{
			PaymentMethodID: p.PaymentMethodID,
			Card:            p.Card,
		})
		if err != nil {
			return nil, err
		}
		account.Set("paymentMethods", []*ports.Object{method})
	}
	args := ports.NewObject("Account")
	args.Set("account", account)
	return g.send(ctx, "Account", "update", args, defaultSuccessCodes)
}

// CreateCustomer creates an account; the merchant id is mandatory
func (g *Gateway) CreateCustomer(ctx context.Context, p CustomerParams) (*Response, error) {
	return g.saveCustomer(ctx, p, false)
}

// UpdateCustomer updates an account identified by id or reference. Card
// details are rejected here: they change through the payment method
// path.
func (g *Gateway) UpdateCustomer(ctx context.Context, p CustomerParams) (*Response, error) {
	return g.saveCustomer(ctx, p, true)
}

// FetchCustomer fetches one account by merchant id or reference
func (g *Gateway) FetchCustomer(ctx context.Context, p FetchParams) (*Response, error) {
	action, field, value, err := resolveFetch(p.ID, p.Reference,
		"customerId", "customerReference",
		"fetchByMerchantAccountId", "fetchByVid", "merchantAccountId")
	if err != nil {
		return nil, err
	}
	args := ports.NewObject("Account")
	args.Set(field, value)
	return g.send(ctx, "Account", action, args, defaultSuccessCodes)
}

// MakePayment collects payment against a subscription's outstanding
// balance immediately, outside the normal billing cycle
func (g *Gateway) MakePayment(ctx context.Context, p MakePaymentParams) (*Response, error) {
	if p.SubscriptionID == "" && p.SubscriptionReference == "" {
		return nil, pkgerrors.NewValidationError("subscriptionId",
			"either subscriptionId or subscriptionReference is required")
	}

	autobill := ports.NewObject("AutoBill")
	if p.SubscriptionID != "" {
		autobill.Set("merchantAutoBillId", p.SubscriptionID)
	}
	if p.SubscriptionReference != "" {
		autobill.Set("VID", p.SubscriptionReference)
	}

	args := ports.NewObject("AutoBill")
	args.Set("autobill", autobill)
	if p.PaymentMethodID != "" || p.PaymentMethodReference != "" {
		method := ports.NewObject("PaymentMethod")
		if p.PaymentMethodID != "" {
			method.Set("merchantPaymentMethodId", p.PaymentMethodID)
		}
		if p.PaymentMethodReference != "" {
			method.Set("VID", p.PaymentMethodReference)
		}
		args.Set("paymentMethod", method)
	} else {
		args.Set("paymentMethod", nil)
	}
	if p.Amount != nil {
		args.Set("amount", wireAmount(*p.Amount))
	} else {
		args.Set("amount", nil)
	}
	if p.Currency != "" {
		args.Set("currency", p.Currency)
	}
	if p.Note != "" {
		args.Set("note", p.Note)
	}
	return g.send(ctx, "AutoBill", "makePayment", args, defaultSuccessCodes)
}

package vindicia

import (
	"context"

	"github.com/omnibill/vindicia/internal/adapters/ports"
)

// PaymentMethod operations. As with accounts, create and update share
// the remote `update` method; a 228 reply means the method was saved but
// could not be propagated to every subscription that uses it, which
// still counts as success.

// savePaymentMethod builds and dispatches a payment method update
func (g *Gateway) savePaymentMethod(ctx context.Context, p PaymentMethodParams, update bool) (*Response, error) {
	method, err := buildPaymentMethodObject(p, update)
	if err != nil {
		return nil, err
	}

	// When a customer is named, the method rides the account update so
	// the processor attaches it; otherwise it is saved standalone.
	if p.CustomerID != "" || p.CustomerReference != "" {
		account, err := accountStub(p.CustomerID, p.CustomerReference)
		if err != nil {
			return nil, err
		}
		args := ports.NewObject("Account")
		args.Set("account", account)
		args.Set("paymentMethod", method)
		args.Set("updateBehavior", "Update")
		args.Set("validatePaymentMethod", p.Validate)
		args.Set("minChargebackProbability", g.cfg.MinChargebackProbability)
		args.Set("sourceIp", nil)
		return g.send(ctx, "Account", "updatePaymentMethod", args, paymentMethodSuccessCodes)
	}

	args := ports.NewObject("PaymentMethod")
	args.Set("paymentMethod", method)
	args.Set("validate", p.Validate)
	args.Set("minChargebackProbability", g.cfg.MinChargebackProbability)
	args.Set("sourceIp", nil)
	return g.send(ctx, "PaymentMethod", "update", args, paymentMethodSuccessCodes)
}

// CreatePaymentMethod saves a new payment method; the merchant id is
// mandatory and the type is explicit or inferred from the fields present
func (g *Gateway) CreatePaymentMethod(ctx context.Context, p PaymentMethodParams) (*Response, error) {
	return g.savePaymentMethod(ctx, p, false)
}

// UpdatePaymentMethod updates a stored method identified by id or
// reference. The type is never altered on update.
func (g *Gateway) UpdatePaymentMethod(ctx context.Context, p PaymentMethodParams) (*Response, error) {
	return g.savePaymentMethod(ctx, p, true)
}

// FetchPaymentMethod fetches one payment method by merchant id or
// reference
func (g *Gateway) FetchPaymentMethod(ctx context.Context, p FetchParams) (*Response, error) {
	action, field, value, err := resolveFetch(p.ID, p.Reference,
		"paymentMethodId", "paymentMethodReference",
		"fetchByMerchantPaymentMethodId", "fetchByVid", "merchantPaymentMethodId")
	if err != nil {
		return nil, err
	}
	args := ports.NewObject("PaymentMethod")
	args.Set(field, value)
	return g.send(ctx, "PaymentMethod", action, args, defaultSuccessCodes)
}

package vindicia

import (
	"context"

	"github.com/omnibill/vindicia/internal/adapters/ports"
	pkgerrors "github.com/omnibill/vindicia/pkg/errors"
)

// PayPal flow: a purchase with a PayPal payment method does not settle
// inline. The reply's status log carries a redirect URL the buyer must
// visit; after the buyer returns, CompletePurchase finalizes the
// authorization with the processor.

// PayPalPurchaseResponse adds redirect extraction to the base response
type PayPalPurchaseResponse struct {
	*Response
}

// RedirectURL returns the PayPal URL the buyer must be sent to, or ""
// when the reply carries none
func (r *PayPalPurchaseResponse) RedirectURL() string {
	txn := r.Transaction()
	if txn == nil {
		return ""
	}
	return txn.PayPalRedirect
}

// Purchase starts a PayPal purchase. ReturnURL and CancelURL are
// required: the processor redirects the buyer to one of them.
func (g *PayPalGateway) Purchase(ctx context.Context, p TransactionParams) (*PayPalPurchaseResponse, error) {
	if p.ReturnURL == "" {
		return nil, pkgerrors.NewValidationError("returnUrl", "returnUrl is required")
	}
	if p.CancelURL == "" {
		return nil, pkgerrors.NewValidationError("cancelUrl", "cancelUrl is required")
	}
	p.PaymentMethodType = ""
	base, err := g.Gateway.Purchase(ctx, p)
	if err != nil {
		return nil, err
	}
	return &PayPalPurchaseResponse{Response: base}, nil
}

// CompletePurchase finalizes a PayPal purchase after the buyer returns.
// Success reports whether the buyer approved; a false flag tells the
// processor the buyer cancelled.
func (g *PayPalGateway) CompletePurchase(ctx context.Context, p CompletePayPalParams) (*Response, error) {
	if p.TransactionReference == "" {
		return nil, pkgerrors.NewValidationError("transactionReference",
			"transactionReference is required")
	}
	if p.Success && p.PayPalTransactionID == "" {
		return nil, pkgerrors.NewValidationError("payPalTransactionId",
			"payPalTransactionId is required to finalize an approved purchase")
	}

	txn := ports.NewObject("Transaction")
	txn.Set("VID", p.TransactionReference)

	args := ports.NewObject("Transaction")
	args.Set("transaction", txn)
	args.Set("payPalTransactionId", p.PayPalTransactionID)
	args.Set("success", p.Success)
	return g.send(ctx, "Transaction", "finalizePayPalAuth", args, defaultSuccessCodes)
}

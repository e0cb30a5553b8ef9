package vindicia

import (
	"context"

	"github.com/omnibill/vindicia/internal/adapters/ports"
	pkgerrors "github.com/omnibill/vindicia/pkg/errors"
)

// Transaction operations: auth, authCapture, capture, cancel,
// calculateSalesTax. Authorize and Purchase differ only in the remote
// method: authCapture settles immediately.

// authorizeArgs builds the shared argument list for auth/authCapture
func (g *Gateway) authorizeArgs(p TransactionParams) (*ports.Object, error) {
	txn, err := buildTransactionObject(p, g.cfg)
	if err != nil {
		return nil, err
	}
	args := ports.NewObject("Transaction")
	args.Set("transaction", txn)
	args.Set("minChargebackProbability", minChargebackProbability(p.MinChargebackProbability, g.cfg))
	args.Set("sendEmailNotification", false)
	args.Set("campaignCode", nil)
	args.Set("dryrun", false)
	return args, nil
}

// Authorize reserves funds without settling
func (g *Gateway) Authorize(ctx context.Context, p TransactionParams) (*Response, error) {
	args, err := g.authorizeArgs(p)
	if err != nil {
		return nil, err
	}
	return g.send(ctx, "Transaction", "auth", args, defaultSuccessCodes)
}

// Purchase authorizes and captures in one call
func (g *Gateway) Purchase(ctx context.Context, p TransactionParams) (*Response, error) {
	args, err := g.authorizeArgs(p)
	if err != nil {
		return nil, err
	}
	return g.send(ctx, "Transaction", "authCapture", args, defaultSuccessCodes)
}

// transactionRefs builds the transaction list for capture and void.
// Each entry may be identified by merchant id or by gateway reference.
func transactionRefs(ids, references []string) ([]*ports.Object, error) {
	if len(ids) == 0 && len(references) == 0 {
		return nil, pkgerrors.NewValidationError("transactionId",
			"either transactionId or transactionReference is required")
	}
	refs := make([]*ports.Object, 0, len(ids)+len(references))
	for _, id := range ids {
		obj := ports.NewObject("Transaction")
		obj.Set("merchantTransactionId", id)
		refs = append(refs, obj)
	}
	for _, vid := range references {
		obj := ports.NewObject("Transaction")
		obj.Set("VID", vid)
		refs = append(refs, obj)
	}
	return refs, nil
}

// Capture settles previously authorized transactions. Several may be
// captured in one call; the reply is checked for counter consistency.
func (g *Gateway) Capture(ctx context.Context, p CaptureParams) (*CaptureResponse, error) {
	refs, err := transactionRefs(p.TransactionIDs, p.TransactionReferences)
	if err != nil {
		return nil, err
	}
	args := ports.NewObject("Transaction")
	args.Set("transactions", refs)

	reply, err := g.dispatch(ctx, "Transaction", "capture", args)
	if err != nil {
		return nil, err
	}
	resp, err := newCaptureResponse("capture", reply)
	if err != nil {
		return nil, err
	}
	g.observe("Transaction", "capture", resp.Code())
	return resp, nil
}

// Void cancels authorized but unsettled transactions
func (g *Gateway) Void(ctx context.Context, p VoidParams) (*CaptureResponse, error) {
	refs, err := transactionRefs(p.TransactionIDs, p.TransactionReferences)
	if err != nil {
		return nil, err
	}
	args := ports.NewObject("Transaction")
	args.Set("transactions", refs)

	reply, err := g.dispatch(ctx, "Transaction", "cancel", args)
	if err != nil {
		return nil, err
	}
	resp, err := newCaptureResponse("cancel", reply)
	if err != nil {
		return nil, err
	}
	g.observe("Transaction", "cancel", resp.Code())
	return resp, nil
}

// CalculateSalesTax quotes the tax on a prospective transaction. A 202
// means the quote proceeded with the tax service degraded and is still a
// success.
func (g *Gateway) CalculateSalesTax(ctx context.Context, p CalculateSalesTaxParams) (*Response, error) {
	if p.Amount.IsZero() {
		return nil, pkgerrors.NewValidationError("amount", "amount is required")
	}
	if p.Currency == "" {
		return nil, pkgerrors.NewValidationError("currency", "currency is required")
	}

	txn := ports.NewObject("Transaction")
	txn.Set("currency", p.Currency)
	txn.Set("amount", wireAmount(p.Amount))
	if p.CustomerID != "" || p.CustomerReference != "" {
		account, err := accountStub(p.CustomerID, p.CustomerReference)
		if err != nil {
			return nil, err
		}
		txn.Set("account", account)
	}
	tax := p.TaxClassification
	if tax == "" {
		tax = g.cfg.TaxClassification
	}
	item := ports.NewObject("TransactionItem")
	item.Set("sku", "0")
	item.Set("name", "Item")
	item.Set("price", wireAmount(p.Amount))
	item.Set("quantity", 1)
	item.Set("taxClassification", tax)
	txn.Set("transactionItems", []*ports.Object{item})
	if p.PostalCode != "" || p.Country != "" {
		addr := ports.NewObject("Address")
		if p.PostalCode != "" {
			addr.Set("postalCode", p.PostalCode)
		}
		if p.Country != "" {
			addr.Set("country", p.Country)
		}
		txn.Set("shippingAddress", addr)
	}

	args := ports.NewObject("Transaction")
	args.Set("transaction", txn)
	return g.send(ctx, "Transaction", "calculateSalesTax", args, calculateSalesTaxSuccessCodes)
}

// FetchTransaction fetches one transaction by merchant id or reference
func (g *Gateway) FetchTransaction(ctx context.Context, p FetchParams) (*Response, error) {
	action, field, value, err := resolveFetch(p.ID, p.Reference,
		"transactionId", "transactionReference",
		"fetchByMerchantTransactionId", "fetchByVid", "merchantTransactionId")
	if err != nil {
		return nil, err
	}
	args := ports.NewObject("Transaction")
	args.Set(field, value)
	return g.send(ctx, "Transaction", action, args, defaultSuccessCodes)
}

// FetchTransactions lists transactions by owning customer or by time
// range; the two selection modes cannot be combined
func (g *Gateway) FetchTransactions(ctx context.Context, p FetchListParams) (*Response, error) {
	action, args, err := resolveListSelection(p, "Transaction")
	if err != nil {
		return nil, err
	}
	return g.send(ctx, "Transaction", action, args, defaultSuccessCodes)
}

// resolveListSelection validates and builds the by-customer vs by-range
// fork shared by the list fetches
func resolveListSelection(p FetchListParams, objectType string) (string, *ports.Object, error) {
	hasIdentity := p.CustomerID != "" || p.CustomerReference != ""
	hasRange := p.StartTime != nil || p.EndTime != nil

	switch {
	case hasIdentity && hasRange:
		return "", nil, pkgerrors.NewValidationError("customerId",
			"identity-based and time-range-based lookups cannot be combined")
	case hasRange:
		if p.StartTime == nil || p.EndTime == nil {
			return "", nil, pkgerrors.NewValidationError("startTime",
				"both startTime and endTime are required for a range fetch")
		}
		args := ports.NewObject(objectType)
		args.Set("timestamp", p.StartTime.Format(wireTimeFormat))
		args.Set("endTimestamp", p.EndTime.Format(wireTimeFormat))
		return "fetchDeltaSince", args, nil
	case hasIdentity:
		account, err := accountStub(p.CustomerID, p.CustomerReference)
		if err != nil {
			return "", nil, err
		}
		args := ports.NewObject(objectType)
		args.Set("account", account)
		return "fetchByAccount", args, nil
	default:
		return "", nil, pkgerrors.NewValidationError("customerId",
			"either a customer identity or a time range is required")
	}
}

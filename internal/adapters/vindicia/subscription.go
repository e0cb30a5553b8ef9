package vindicia

import (
	"context"

	"github.com/omnibill/vindicia/internal/adapters/ports"
	pkgerrors "github.com/omnibill/vindicia/pkg/errors"
)

// AutoBill operations. Subscription listing is the one place the
// processor refuses to treat pagination as optional: fetchByAccount
// requires explicit page and pageSize, so fixed values are always sent.
const (
	subscriptionFetchPage     = 0
	subscriptionFetchPageSize = 10000
)

// buildSubscriptionObject builds the AutoBill payload
func buildSubscriptionObject(g *Gateway, p SubscriptionParams, update bool) (*ports.Object, error) {
	if err := requireIdentity(update, p.SubscriptionID, p.SubscriptionReference, "subscriptionId", "subscriptionReference"); err != nil {
		return nil, err
	}
	if !update {
		if p.ProductID == "" && p.ProductReference == "" {
			return nil, pkgerrors.NewValidationError("productId",
				"either productId or productReference is required")
		}
		if p.PlanID == "" && p.PlanReference == "" {
			return nil, pkgerrors.NewValidationError("planId",
				"either planId or planReference is required")
		}
	}

	autobill := ports.NewObject("AutoBill")
	if p.SubscriptionID != "" {
		autobill.Set("merchantAutoBillId", p.SubscriptionID)
	}
	if p.SubscriptionReference != "" {
		autobill.Set("VID", p.SubscriptionReference)
	}
	if p.Currency != "" {
		autobill.Set("currency", p.Currency)
	}

	if p.CustomerID != "" || p.CustomerReference != "" {
		account, err := accountStub(p.CustomerID, p.CustomerReference)
		if err != nil {
			return nil, err
		}
		autobill.Set("account", account)
	} else if !update {
		return nil, pkgerrors.NewValidationError("customerId",
			"either customerId or customerReference is required")
	}

	if p.ProductID != "" || p.ProductReference != "" {
		product := ports.NewObject("Product")
		if p.ProductID != "" {
			product.Set("merchantProductId", p.ProductID)
		}
		if p.ProductReference != "" {
			product.Set("VID", p.ProductReference)
		}
		item := ports.NewObject("AutoBillItem")
		item.Set("product", product)
		autobill.Set("items", []*ports.Object{item})
	}

	if p.PlanID != "" || p.PlanReference != "" {
		plan := ports.NewObject("BillingPlan")
		if p.PlanID != "" {
			plan.Set("merchantBillingPlanId", p.PlanID)
		}
		if p.PlanReference != "" {
			plan.Set("VID", p.PlanReference)
		}
		autobill.Set("billingPlan", plan)
	}

	if p.PaymentMethodID != "" || p.PaymentMethodReference != "" || p.Card != nil {
		method, err := embeddedPaymentMethodObject(PaymentMethodParams{
			PaymentMethodID:        p.PaymentMethodID,
			PaymentMethodReference: p.PaymentMethodReference,
			Card:                   p.Card,
		})
		if err != nil {
			return nil, err
		}
		autobill.Set("paymentMethod", method)
	}

	if p.BillingDay > 0 {
		autobill.Set("billingDay", p.BillingDay)
	}
	if p.StartTime != nil {
		autobill.Set("startTimestamp", p.StartTime.Format(wireTimeFormat))
	}
	statement := p.StatementDescriptor
	if statement == "" {
		statement = g.cfg.StatementDescriptor
	}
	if statement != "" {
		autobill.Set("billingStatementIdentifier", statement)
	}
	nameValues, err := buildNameValues(p.Attributes)
	if err != nil {
		return nil, err
	}
	if nameValues != nil {
		autobill.Set("nameValues", nameValues)
	}
	return autobill, nil
}

// saveSubscription builds and dispatches an autobill update
func (g *Gateway) saveSubscription(ctx context.Context, p SubscriptionParams, update bool) (*Response, error) {
	autobill, err := buildSubscriptionObject(g, p, update)
	if err != nil {
		return nil, err
	}
	args := ports.NewObject("AutoBill")
	args.Set("autobill", autobill)
	args.Set("duplicateBehavior", "Fail")
	args.Set("validatePaymentMethod", false)
	args.Set("minChargebackProbability", minChargebackProbability(p.MinChargebackProbability, g.cfg))
	args.Set("immediateAuthFailurePolicy", "doNotSaveAutoBill")
	args.Set("dryrun", false)
	return g.send(ctx, "AutoBill", "update", args, defaultSuccessCodes)
}

// CreateSubscription creates an autobill; merchant id, customer,
// product and plan are all required
func (g *Gateway) CreateSubscription(ctx context.Context, p SubscriptionParams) (*Response, error) {
	return g.saveSubscription(ctx, p, false)
}

// UpdateSubscription updates an autobill identified by id or reference
func (g *Gateway) UpdateSubscription(ctx context.Context, p SubscriptionParams) (*Response, error) {
	return g.saveSubscription(ctx, p, true)
}

// CancelSubscription cancels one autobill
func (g *Gateway) CancelSubscription(ctx context.Context, p CancelSubscriptionParams) (*Response, error) {
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
	if p.CancelReason != "" {
		autobill.Set("cancelReason", p.CancelReason)
	}

	args := ports.NewObject("AutoBill")
	args.Set("autobill", autobill)
	args.Set("disentitle", false)
	args.Set("force", false)
	args.Set("settle", p.Settle)
	args.Set("sendCancellationNotice", false)
	return g.send(ctx, "AutoBill", "cancel", args, defaultSuccessCodes)
}

// CancelSubscriptions cancels several of a customer's autobills in one
// call; with no explicit ids, all of them
func (g *Gateway) CancelSubscriptions(ctx context.Context, p CancelSubscriptionsParams) (*Response, error) {
	account, err := accountStub(p.CustomerID, p.CustomerReference)
	if err != nil {
		return nil, err
	}
	args := ports.NewObject("AutoBill")
	args.Set("account", account)
	if len(p.SubscriptionIDs) > 0 {
		args.Set("merchantAutoBillIds", p.SubscriptionIDs)
	}
	args.Set("disentitle", false)
	return g.send(ctx, "AutoBill", "stopAutoBilling", args, defaultSuccessCodes)
}

// FetchSubscription fetches one autobill by merchant id or reference
func (g *Gateway) FetchSubscription(ctx context.Context, p FetchParams) (*Response, error) {
	action, field, value, err := resolveFetch(p.ID, p.Reference,
		"subscriptionId", "subscriptionReference",
		"fetchByMerchantAutoBillId", "fetchByVid", "merchantAutoBillId")
	if err != nil {
		return nil, err
	}
	args := ports.NewObject("AutoBill")
	args.Set(field, value)
	return g.send(ctx, "AutoBill", action, args, defaultSuccessCodes)
}

// FetchSubscriptions lists autobills by customer or by time range. The
// by-account method demands pagination parameters, so the fixed
// page/pageSize pair always rides along.
func (g *Gateway) FetchSubscriptions(ctx context.Context, p FetchListParams) (*Response, error) {
	action, args, err := resolveListSelection(p, "AutoBill")
	if err != nil {
		return nil, err
	}
	args.Set("page", subscriptionFetchPage)
	args.Set("pageSize", subscriptionFetchPageSize)
	return g.send(ctx, "AutoBill", action, args, defaultSuccessCodes)
}

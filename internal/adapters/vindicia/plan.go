package vindicia

import (
	"context"

	"github.com/omnibill/vindicia/internal/adapters/ports"
	"github.com/omnibill/vindicia/internal/domain/models"
	pkgerrors "github.com/omnibill/vindicia/pkg/errors"
)

// BillingPlan operations.

// resolvePrices enforces the flat-price vs price-list exclusivity and
// returns the wire price list
func resolvePrices(price *models.Price, prices []models.Price) ([]*ports.Object, error) {
	if price != nil && len(prices) > 0 {
		return nil, pkgerrors.NewValidationError("price",
			"price and prices cannot both be supplied")
	}
	if price != nil {
		prices = []models.Price{*price}
	}
	if len(prices) == 0 {
		return nil, nil
	}
	// Bag construction enforces currency uniqueness
	bag, err := models.NewPriceBag(prices)
	if err != nil {
		return nil, pkgerrors.NewValidationError("prices", err.Error())
	}
	objects := make([]*ports.Object, 0, bag.Count())
	for _, p := range bag.All() {
		obj := ports.NewObject("Price")
		obj.Set("currency", p.Currency)
		obj.Set("amount", wireAmount(p.Amount))
		objects = append(objects, obj)
	}
	return objects, nil
}

// buildPlanObject builds the BillingPlan payload
func buildPlanObject(g *Gateway, p PlanParams, update bool) (*ports.Object, error) {
	if err := requireIdentity(update, p.PlanID, p.PlanReference, "planId", "planReference"); err != nil {
		return nil, err
	}
	if !update {
		if p.IntervalUnit == "" || p.IntervalCount <= 0 {
			return nil, pkgerrors.NewValidationError("interval",
				"intervalUnit and a positive intervalCount are required")
		}
	}

	plan := ports.NewObject("BillingPlan")
	if p.PlanID != "" {
		plan.Set("merchantBillingPlanId", p.PlanID)
	}
	if p.PlanReference != "" {
		plan.Set("VID", p.PlanReference)
	}
	tax := p.TaxClassification
	if tax == "" {
		tax = g.cfg.TaxClassification
	}
	plan.Set("taxClassification", tax)

	if p.IntervalUnit != "" {
		period := ports.NewObject("BillingPlanPeriod")
		period.Set("type", string(p.IntervalUnit))
		period.Set("quantity", p.IntervalCount)
		period.Set("cycles", 0)
		prices, err := resolvePrices(p.Price, p.Prices)
		if err != nil {
			return nil, err
		}
		if prices != nil {
			period.Set("prices", prices)
		}
		plan.Set("periods", []*ports.Object{period})
	} else if p.Price != nil || len(p.Prices) > 0 {
		return nil, pkgerrors.NewValidationError("interval",
			"prices require a billing period")
	}

	nameValues, err := buildNameValues(p.Attributes)
	if err != nil {
		return nil, err
	}
	if nameValues != nil {
		plan.Set("nameValues", nameValues)
	}
	return plan, nil
}

// savePlan builds and dispatches a billing plan update
func (g *Gateway) savePlan(ctx context.Context, p PlanParams, update bool) (*Response, error) {
	plan, err := buildPlanObject(g, p, update)
	if err != nil {
		return nil, err
	}
	args := ports.NewObject("BillingPlan")
	args.Set("billingPlan", plan)
	return g.send(ctx, "BillingPlan", "update", args, defaultSuccessCodes)
}

// CreatePlan creates a billing plan; the merchant id is mandatory
func (g *Gateway) CreatePlan(ctx context.Context, p PlanParams) (*Response, error) {
	return g.savePlan(ctx, p, false)
}

// UpdatePlan updates a billing plan identified by id or reference
func (g *Gateway) UpdatePlan(ctx context.Context, p PlanParams) (*Response, error) {
	return g.savePlan(ctx, p, true)
}

// FetchPlan fetches one billing plan by merchant id or reference
func (g *Gateway) FetchPlan(ctx context.Context, p FetchParams) (*Response, error) {
	action, field, value, err := resolveFetch(p.ID, p.Reference,
		"planId", "planReference",
		"fetchByMerchantBillingPlanId", "fetchByVid", "merchantBillingPlanId")
	if err != nil {
		return nil, err
	}
	args := ports.NewObject("BillingPlan")
	args.Set(field, value)
	return g.send(ctx, "BillingPlan", action, args, defaultSuccessCodes)
}

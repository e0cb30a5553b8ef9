package vindicia

import (
	"context"

	"github.com/omnibill/vindicia/internal/adapters/ports"
)

// Product operations.

// buildProductObject builds the Product payload
func buildProductObject(g *Gateway, p ProductParams, update bool) (*ports.Object, error) {
	if err := requireIdentity(update, p.ProductID, p.ProductReference, "productId", "productReference"); err != nil {
		return nil, err
	}

	product := ports.NewObject("Product")
	if p.ProductID != "" {
		product.Set("merchantProductId", p.ProductID)
	}
	if p.ProductReference != "" {
		product.Set("VID", p.ProductReference)
	}
	tax := p.TaxClassification
	if tax == "" {
		tax = g.cfg.TaxClassification
	}
	product.Set("taxClassification", tax)

	if p.PlanID != "" || p.PlanReference != "" {
		plan := ports.NewObject("BillingPlan")
		if p.PlanID != "" {
			plan.Set("merchantBillingPlanId", p.PlanID)
		}
		if p.PlanReference != "" {
			plan.Set("VID", p.PlanReference)
		}
		product.Set("defaultBillingPlan", plan)
	}

	prices, err := resolvePrices(p.Price, p.Prices)
	if err != nil {
		return nil, err
	}
	if prices != nil {
		product.Set("prices", prices)
	}

	nameValues, err := buildNameValues(p.Attributes)
	if err != nil {
		return nil, err
	}
	if nameValues != nil {
		product.Set("nameValues", nameValues)
	}
	return product, nil
}

// saveProduct builds and dispatches a product update
func (g *Gateway) saveProduct(ctx context.Context, p ProductParams, update bool) (*Response, error) {
	product, err := buildProductObject(g, p, update)
	if err != nil {
		return nil, err
	}
	args := ports.NewObject("Product")
	args.Set("product", product)
	args.Set("duplicateBehavior", "Fail")
	return g.send(ctx, "Product", "update", args, defaultSuccessCodes)
}

// CreateProduct creates a product; the merchant id is mandatory
func (g *Gateway) CreateProduct(ctx context.Context, p ProductParams) (*Response, error) {
	return g.saveProduct(ctx, p, false)
}

// UpdateProduct updates a product identified by id or reference
func (g *Gateway) UpdateProduct(ctx context.Context, p ProductParams) (*Response, error) {
	return g.saveProduct(ctx, p, true)
}

// FetchProduct fetches one product by merchant id or reference
func (g *Gateway) FetchProduct(ctx context.Context, p FetchParams) (*Response, error) {
	action, field, value, err := resolveFetch(p.ID, p.Reference,
		"productId", "productReference",
		"fetchByMerchantProductId", "fetchByVid", "merchantProductId")
	if err != nil {
		return nil, err
	}
	args := ports.NewObject("Product")
	args.Set(field, value)
	return g.send(ctx, "Product", action, args, defaultSuccessCodes)
}

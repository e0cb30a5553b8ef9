package vindicia

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/omnibill/vindicia/internal/adapters/ports"
	"github.com/omnibill/vindicia/internal/domain/models"
	pkgerrors "github.com/omnibill/vindicia/pkg/errors"
)

// Refund distribution strategies. The strategy is never supplied by the
// caller; it is derived from which inputs are present.
const (
	refundFlat             = "FlatAmount"
	refundItemized         = "SpecifiedItems"
	refundRemainingBalance = "RemainingBalance"
)

// resolveRefundStrategy derives the distribution strategy and validates
// the amount/items combination. Items with an amount must sum to it.
func resolveRefundStrategy(amount *decimal.Decimal, items *models.RefundItemBag) (string, error) {
	if items.Count() > 0 {
		if amount != nil && !items.Total().Equal(*amount) {
			return "", pkgerrors.NewValidationError("items",
				"sum of refund item amounts does not equal the refund amount")
		}
		return refundItemized, nil
	}
	if amount != nil {
		return refundFlat, nil
	}
	return refundRemainingBalance, nil
}

// Refund gives back part or all of a settled transaction
func (g *Gateway) Refund(ctx context.Context, p RefundParams) (*Response, error) {
	if p.TransactionID == "" && p.TransactionReference == "" {
		return nil, pkgerrors.NewValidationError("transactionId",
			"either transactionId or transactionReference is required")
	}
	bag := models.NewRefundItemBag(p.Items)
	strategy, err := resolveRefundStrategy(p.Amount, bag)
	if err != nil {
		return nil, err
	}

	refund := ports.NewObject("Refund")
	refundID := p.RefundID
	if refundID == "" {
		refundID = uuid.NewString()
	}
	refund.Set("merchantRefundId", refundID)

	txn := ports.NewObject("Transaction")
	if p.TransactionID != "" {
		txn.Set("merchantTransactionId", p.TransactionID)
	}
	if p.TransactionReference != "" {
		txn.Set("VID", p.TransactionReference)
	}
	refund.Set("transaction", txn)

	if p.Amount != nil {
		refund.Set("amount", wireAmount(*p.Amount))
	}
	refund.Set("refundDistributionStrategy", strategy)
	if strategy == refundItemized {
		items := make([]*ports.Object, 0, bag.Count())
		for _, item := range bag.All() {
			obj := ports.NewObject("RefundItem")
			if item.SKU != "" {
				obj.Set("sku", item.SKU)
			} else {
				obj.Set("transactionItemIndexNumber", item.TransactionItemIndex)
			}
			obj.Set("amount", wireAmount(item.Amount))
			if item.TaxOnly {
				obj.Set("taxOnly", true)
			}
			items = append(items, obj)
		}
		refund.Set("refundItems", items)
	}
	if p.Note != "" {
		refund.Set("note", p.Note)
	}
	nameValues, err := buildNameValues(p.Attributes)
	if err != nil {
		return nil, err
	}
	if nameValues != nil {
		refund.Set("nameValues", nameValues)
	}

	args := ports.NewObject("Refund")
	args.Set("refunds", []*ports.Object{refund})
	return g.send(ctx, "Refund", "perform", args, defaultSuccessCodes)
}

// FetchRefunds lists refunds by customer or by time range
func (g *Gateway) FetchRefunds(ctx context.Context, p FetchListParams) (*Response, error) {
	action, args, err := resolveListSelection(p, "Refund")
	if err != nil {
		return nil, err
	}
	return g.send(ctx, "Refund", action, args, defaultSuccessCodes)
}
